package middleware

import "github.com/gin-gonic/gin"

const (
	userIDKey     = contextKey("userID")
	businessIDKey = contextKey("businessID")
	roleKey       = contextKey("role")
)

// GetUserIDFromContext retrieves the authenticated user ID from the Gin
// context. The boolean reports whether it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	return getStringFromContext(c, userIDKey)
}

// GetBusinessIDFromContext retrieves the caller's tenant ID from the Gin
// context. Every ledger operation is scoped to this business.
func GetBusinessIDFromContext(c *gin.Context) (string, bool) {
	return getStringFromContext(c, businessIDKey)
}

// GetRoleFromContext retrieves the caller's role from the Gin context.
func GetRoleFromContext(c *gin.Context) (string, bool) {
	return getStringFromContext(c, roleKey)
}

func getStringFromContext(c *gin.Context, key contextKey) (string, bool) {
	val, exists := c.Get(string(key))
	if !exists {
		return "", false
	}
	s, ok := val.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
