package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"discussify/internal/model"
	"discussify/internal/pkg"
	"discussify/internal/repository/mysql"
	"discussify/internal/repository/redis"
)

const (
	// ContextUserIDKey carries the authenticated account ID through the
	// request context.
	ContextUserIDKey = "user_id"
	ContextRoleKey   = "user_role"
)

// Auth validates the bearer token, checks it is the account's single active
// session and slides the session window.
func Auth(sessions *redis.SessionRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		claims, err := pkg.ParseAccess(tokenStr)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, pkg.ErrTokenExpired) {
				msg = "token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": msg})
			return
		}

		stored, err := sessions.Get(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "session expired, please log in again"})
			return
		}
		if stored != tokenStr {
			// a newer login displaced this session
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "logged in elsewhere"})
			return
		}
		_ = sessions.Extend(claims.UserID)

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextRoleKey, claims.Role)
		c.Next()
	}
}

// UserID returns the authenticated account ID set by Auth.
func UserID(c *gin.Context) uint64 {
	v, _ := c.Get(ContextUserIDKey)
	id, _ := v.(uint64)
	return id
}

// RequireAdmin loads the account and admits only active sitewide admins.
// It re-reads the row so a demoted or deactivated admin is cut off even
// while their token is still live.
func RequireAdmin(db *gorm.DB) gin.HandlerFunc {
	users := &mysql.UserRepository{DB: db}
	return func(c *gin.Context) {
		user, err := users.FindByID(UserID(c))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"msg": "server error"})
			return
		}
		if user == nil || !user.IsActive || user.Role != model.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"msg": "admin access required"})
			return
		}
		c.Next()
	}
}
