package middleware

import (
	"crypto/subtle"

	"render-service/internal/config"
	"render-service/utils"

	"github.com/gin-gonic/gin"
)

const AuthTokenHeader = "X-Auth-Token"

type AuthMiddleware struct {
	config *config.Config
}

func NewAuthMiddleware(cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{config: cfg}
}

// RequireAuthToken guards the render endpoints with the shared AUTH_TOKEN.
// The renderKey cookie forwarded to the rendered page is a separate,
// per-request credential and is not validated here.
func (a *AuthMiddleware) RequireAuthToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(AuthTokenHeader)
		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(a.config.AuthToken)) != 1 {
			utils.RespondWithUnauthorized(c, "Invalid auth token")
			c.Abort()
			return
		}
		c.Next()
	}
}
