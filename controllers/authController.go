package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rajagopika181204/website-backend/models"
	"github.com/rajagopika181204/website-backend/services"
)

const (
	msgUserCreated  = "User registered successfully"
	msgLoginSuccess = "Login successful"
)

type AuthController struct {
	auth *services.AuthGate
}

func NewAuthController(auth *services.AuthGate) *AuthController {
	return &AuthController{auth: auth}
}

// Signup handles user registration
func (c *AuthController) Signup(ctx *gin.Context) {
	var signUpData models.SignupData
	if err := ctx.ShouldBindJSON(&signUpData); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	user, err := c.auth.Signup(ctx.Request.Context(), signUpData)
	if err != nil {
		respondWithError(ctx, err)
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{"success": true, "message": msgUserCreated, "user": user})
}

// Login handles user authentication
func (c *AuthController) Login(ctx *gin.Context) {
	var loginData models.LoginData
	if err := ctx.ShouldBindJSON(&loginData); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	user, token, err := c.auth.Login(ctx.Request.Context(), loginData)
	if err != nil {
		respondWithError(ctx, err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"success": true, "message": msgLoginSuccess, "user": user, "token": token})
}
