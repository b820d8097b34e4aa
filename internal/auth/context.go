package auth

import "github.com/gin-gonic/gin"

const (
	ctxUserID    = "userID"
	ctxUserEmail = "userEmail"
	ctxUserRole  = "userRole"
)

// Identity is the resolved caller identity attached to every request by
// the AuthRequired middleware. It is passed explicitly into service
// operations instead of being read from ambient state.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

// GetIdentity returns the authenticated caller's identity and whether one
// is present on the context.
func GetIdentity(c *gin.Context) (Identity, bool) {
	id := Identity{
		UserID: getString(c, ctxUserID),
		Email:  getString(c, ctxUserEmail),
		Role:   getString(c, ctxUserRole),
	}
	return id, id.UserID != ""
}

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	return getString(c, ctxUserID)
}

func getString(c *gin.Context, key string) string {
	if v, ok := c.Get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
