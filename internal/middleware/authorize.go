package middleware

import (
	"net/http"

	"github.com/bookahq/booka_backend/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// OperationPolicy is a declarative authorization descriptor for one route:
// the role set allowed to call it, plus the implicit tenant-scoping predicate
// (the token's tenant must match the tenantID path parameter). Policies are
// evaluated by the single Authorize middleware; handlers never re-check roles.
type OperationPolicy struct {
	Name  string
	Roles []domain.TenantRole
}

// Authorize returns a middleware enforcing the given policy. It expects
// AuthMiddleware to have stored the caller's tenant claims beforehand.
func Authorize(policy OperationPolicy) gin.HandlerFunc {
	allowed := make(map[domain.TenantRole]bool, len(policy.Roles))
	for _, role := range policy.Roles {
		allowed[role] = true
	}

	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		claims, ok := GetTenantClaimsFromContext(c)
		if !ok {
			logger.Error("Tenant claims missing from context", "operation", policy.Name)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		// Tenant-scoping predicate: the token must belong to the tenant
		// named in the path. Cross-tenant access is never valid.
		tenantID := c.Param("tenantID")
		if tenantID == "" || claims.TenantID != tenantID {
			logger.Warn("Tenant scope violation",
				"operation", policy.Name,
				"token_tenant", claims.TenantID,
				"path_tenant", tenantID)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}

		if !allowed[claims.Role] {
			logger.Warn("Role not permitted for operation",
				"operation", policy.Name,
				"role", string(claims.Role))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}

		c.Next()
	}
}
