package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rajagopika181204/website-backend/services"
	"go.uber.org/zap"
)

const userKey = "user"

type TokenParser interface {
	ParseToken(tokenString string) (*services.Claims, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// token's claims under "user".
func RequireAuth(parser TokenParser) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		log := Logger(ctx)

		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Missing authorization header")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Missing authorization header"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			log.Warn("Invalid authorization header format")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid authorization header format"})
			return
		}

		claims, err := parser.ParseToken(parts[1])
		if err != nil {
			log.Warn("Invalid or expired token", zap.Error(err))
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired token"})
			return
		}

		ctx.Set(userKey, claims)
		ctx.Next()
	}
}

// CurrentUser returns the claims stored by RequireAuth.
func CurrentUser(ctx *gin.Context) (*services.Claims, bool) {
	v, ok := ctx.Get(userKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*services.Claims)
	return claims, ok
}
