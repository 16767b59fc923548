package middleware

import (
	"net/http"
	"strings"

	"github.com/ecochain/token-catalog/internal/auth"
	"github.com/ecochain/token-catalog/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	userIDKey  = "userID"
	addressKey = "address"
	tokenKey   = "token"
)

// OptionalAuth reads a wallet session from the Authorization header when one
// is present. Requests without a header pass through anonymously; a header
// that does not carry a valid session is rejected.
func OptionalAuth(issuer *auth.Issuer, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || issuer == nil {
			c.Next()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			utils.SendErrorResponse(c, http.StatusUnauthorized, "Invalid authorization format")
			c.Abort()
			return
		}

		claims, err := issuer.Validate(token)
		if err != nil {
			logger.Debug("Invalid token", zap.Error(err))
			utils.SendErrorResponse(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(addressKey, claims.Address)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// CallerID returns the user ID of the session, empty when anonymous
func CallerID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// CallerAddress returns the wallet address of the session, empty when anonymous
func CallerAddress(c *gin.Context) string {
	return c.GetString(addressKey)
}
