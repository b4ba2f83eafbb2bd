package middleware

import (
	"context"

	"github.com/bookahq/booka_backend/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// userIDKey is the key used to store the authenticated user's ID.
const userIDKey = contextKey("userID")

// claimsKey is the key used to store the authenticated tenant claims.
const claimsKey = contextKey("tenantClaims")

// TenantClaims is the tenant membership carried by the identity service's JWT.
type TenantClaims struct {
	UserID   string
	TenantID string
	Role     domain.TenantRole
}

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal := c.Request.Context().Value(userIDKey)
	if userIDVal == nil {
		return "", false
	}
	userID, ok := userIDVal.(string)
	return userID, ok
}

// GetTenantClaimsFromContext retrieves the tenant claims set by AuthMiddleware.
func GetTenantClaimsFromContext(c *gin.Context) (*TenantClaims, bool) {
	claimsVal := c.Request.Context().Value(claimsKey)
	if claimsVal == nil {
		return nil, false
	}
	claims, ok := claimsVal.(*TenantClaims)
	return claims, ok
}

func withAuthContext(ctx context.Context, claims *TenantClaims) context.Context {
	ctx = context.WithValue(ctx, userIDKey, claims.UserID)
	return context.WithValue(ctx, claimsKey, claims)
}
