package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/omomfi/district-reports-api/internal/models"
	appErrors "github.com/omomfi/district-reports-api/pkg/errors"
	"github.com/omomfi/district-reports-api/pkg/response"
)

// RequireRoles gates a route to the listed roles. Finer-grained decisions
// (ownership, district scope) live in the policy package; this only stops
// requests that no policy check could ever allow.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrWrongRole)
			c.Abort()
			return
		}
		c.Next()
	}
}
