package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sugarstop/sugarstop/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUsernameKey stores the username inside Gin context.
	ContextUsernameKey = "username"
	// ContextTokenKey stores the raw bearer token for handlers that need to
	// revoke it, such as logout.
	ContextTokenKey = "auth_token"
	// ContextTokenExpiryKey stores the token's expiration time.
	ContextTokenExpiryKey = "auth_token_expiry"
)

// AuthRequired ensures the request is authenticated via JWT.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authorization header missing")
			ctx.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid authorization header format")
			ctx.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40103, "empty bearer token")
			ctx.Abort()
			return
		}

		if utils.IsTokenBlacklisted(tokenString) {
			utils.Error(ctx, http.StatusUnauthorized, 40104, "token revoked")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextUsernameKey, claims.Username)
		ctx.Set(ContextTokenKey, tokenString)
		if claims.ExpiresAt != nil {
			ctx.Set(ContextTokenExpiryKey, claims.ExpiresAt.Time)
		}
		ctx.Next()
	}
}

// TokenFromContext returns the bearer token and its expiry stored by
// AuthRequired.
func TokenFromContext(ctx *gin.Context) (string, time.Time, bool) {
	raw, ok := ctx.Get(ContextTokenKey)
	if !ok {
		return "", time.Time{}, false
	}
	token, ok := raw.(string)
	if !ok || token == "" {
		return "", time.Time{}, false
	}
	var expiry time.Time
	if v, ok := ctx.Get(ContextTokenExpiryKey); ok {
		expiry, _ = v.(time.Time)
	}
	return token, expiry, true
}
