package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"storefront-service/internal/auth"
	"storefront-service/internal/models"
)

// SessionAuth validates the bearer session token issued at login and puts the
// admin identity on the request context. Admin routes only; the storefront
// stays public.
func SessionAuth(authenticator auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "MISSING_TOKEN",
					Message: "Authorization header is required",
				},
			})
			c.Abort()
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "INVALID_TOKEN_FORMAT",
					Message: "Authorization header must be in format: Bearer <token>",
				},
			})
			c.Abort()
			return
		}

		claims, err := authenticator.Verify(tokenParts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "INVALID_TOKEN",
					Message: "Invalid or expired token",
				},
			})
			c.Abort()
			return
		}

		c.Set("admin_email", claims.Email)
		c.Set("session_id", claims.SessionID)
		c.Next()
	}
}
