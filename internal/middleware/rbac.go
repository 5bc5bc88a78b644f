package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kelaslive/kelaslive-backend/internal/model"
	"github.com/kelaslive/kelaslive-backend/internal/response"
	"github.com/kelaslive/kelaslive-backend/internal/service"
)

// RequireSession rejects requests without a verified caller (401) and, when
// roles are given, callers whose role is not listed (403).
func RequireSession(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := GetIdentity(c)
		if !ok {
			abortUnauthenticated(c)
			return
		}
		if err := service.RequireRole(id, roles...); err != nil {
			response.AbortFail(c, http.StatusForbidden, roleDeniedCode(roles))
			return
		}
		c.Next()
	}
}

func roleDeniedCode(roles []model.Role) response.ErrCode {
	if len(roles) != 1 {
		return response.ErrForbidden
	}
	switch roles[0] {
	case model.RoleTeacher:
		return response.ErrTeacherAccessOnly
	case model.RoleStudent:
		return response.ErrStudentAccessOnly
	default:
		return response.ErrForbidden
	}
}
