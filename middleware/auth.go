package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"newswire/utils"
)

// ContextUserIDKey is the key used to store the authenticated user id in the
// Gin context.
const ContextUserIDKey = "user_id"

// AuthRequired ensures the request carries a valid bearer token and resolves
// it to a user id.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, ok := BearerToken(ctx)
		if !ok {
			ctx.Abort()
			return
		}

		userID, ok := utils.ResolveToken(token)
		if !ok {
			utils.Error(ctx, http.StatusUnauthorized, 40104, "invalid or revoked token")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, userID)
		ctx.Next()
	}
}

// BearerToken extracts the token from the Authorization header, writing a
// 401 response when the header is missing or malformed.
func BearerToken(ctx *gin.Context) (string, bool) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "authorization header missing")
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid authorization header format")
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		utils.Error(ctx, http.StatusUnauthorized, 40103, "empty bearer token")
		return "", false
	}
	return token, true
}
