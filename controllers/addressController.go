package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rajagopika181204/website-backend/services"
)

type AddressController struct {
	addresses *services.AddressBook
}

func NewAddressController(addresses *services.AddressBook) *AddressController {
	return &AddressController{addresses: addresses}
}

func (c *AddressController) GetAddress(ctx *gin.Context) {
	address, err := c.addresses.GetLatest(ctx.Request.Context(), ctx.Param("email"))
	if err != nil {
		if services.IsKind(err, services.KindNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "No saved address found.")
			return
		}
		respondWithError(ctx, err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"success": true, "address": address})
}

func (c *AddressController) SaveAddress(ctx *gin.Context) {
	var body services.Customer
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}
	body = body.Normalize()
	if body.Name == "" || body.Address == "" || body.City == "" || body.Pincode == "" || body.Phone == "" {
		sendErrorResponse(ctx, http.StatusBadRequest, "Missing required fields")
		return
	}

	address, err := c.addresses.Upsert(ctx.Request.Context(), nil, strings.TrimSpace(body.Email), body)
	if err != nil {
		respondWithError(ctx, err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"success": true, "address": address})
}

func (c *AddressController) DeleteAddress(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if err := c.addresses.Delete(ctx.Request.Context(), id); err != nil {
		respondWithError(ctx, err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"success": true})
}
