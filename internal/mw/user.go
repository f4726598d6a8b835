package mw

import (
	"strings"

	"github.com/gin-gonic/gin"

	"inventory-backend/internal/auditlog"
)

// UserHeader names the acting user recorded in the audit log.
const UserHeader = "X-User"

// ActingUser stores the caller named in UserHeader on the request context.
func ActingUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := strings.TrimSpace(c.GetHeader(UserHeader))
		c.Request = c.Request.WithContext(auditlog.WithUser(c.Request.Context(), user))
		c.Next()
	}
}
