package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	shipports "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/ports"
	apierrors "github.com/chaintrack/shipment-tracking-api/internal/shared/errors"
)

const (
	headerCallerID   = "X-Caller-Id"
	headerCallerRole = "X-Caller-Role"
)

// RequireRole guards a route group. The caller role comes from the resolver
// when one is configured and the request names a caller, otherwise from the
// X-Caller-Role header. Requests without role information default to viewer.
func RequireRole(resolver shipports.RoleResolver, allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := callerRole(c, resolver)
		if err != nil {
			c.Abort()
			respondError(c, http.StatusInternalServerError, err)
			return
		}
		for _, candidate := range allowed {
			if candidate == role {
				c.Next()
				return
			}
		}
		c.Abort()
		respondProblem(c, apierrors.ErrForbidden.WithDetail("role "+role+" may not perform this operation"))
	}
}

func callerRole(c *gin.Context, resolver shipports.RoleResolver) (string, error) {
	callerID := strings.TrimSpace(c.GetHeader(headerCallerID))
	if resolver != nil && callerID != "" {
		return resolver.Resolve(c.Request.Context(), callerID)
	}
	if role := strings.TrimSpace(c.GetHeader(headerCallerRole)); role != "" {
		return role, nil
	}
	return shipports.RoleViewer, nil
}
