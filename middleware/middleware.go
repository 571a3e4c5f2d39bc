package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ariebrainware/medibook/appointment"
	"github.com/ariebrainware/medibook/model"
	"github.com/ariebrainware/medibook/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Context keys set by the middleware chain.
const (
	DBKey    = "db"
	StoreKey = "appointment_store"
	// UserIDKey holds the authenticated user's id as uint.
	UserIDKey = "user_id"
	// RoleIDKey holds the authenticated user's role id as uint32.
	RoleIDKey = "role_id"
)

func setCorsHeaders(c *gin.Context) {
	h := c.Writer.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
	h.Set("Access-Control-Allow-Headers", "X-Requested-With, Content-Type, Authorization, session-token")
	h.Set("Access-Control-Max-Age", "86400")
	h.Set("Access-Control-Allow-Credentials", "true")
}

// CORSMiddleware configures CORS headers for incoming requests.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		setCorsHeaders(c)

		// For preflight requests, respond with 204 and abort further processing.
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// tokenValidator reports whether the request carries the expected
// Authorization header, responding 401 when it does not. Preflight requests
// always pass.
func tokenValidator(c *gin.Context, expected string) bool {
	if c.Request.Method == http.MethodOptions {
		return true
	}
	if c.GetHeader("Authorization") != expected {
		util.CallUserNotAuthorized(c, util.APIErrorParams{
			Msg: "Invalid API token",
			Err: fmt.Errorf("invalid or missing API token"),
		})
		c.Abort()
		return false
	}
	return true
}

// ValidateAPIToken requires "Authorization: Bearer <apiToken>" on every
// request. An empty apiToken disables the check.
func ValidateAPIToken(apiToken string) gin.HandlerFunc {
	expected := "Bearer " + apiToken
	return func(c *gin.Context) {
		if apiToken == "" {
			c.Next()
			return
		}
		if !tokenValidator(c, expected) {
			return
		}
		c.Next()
	}
}

// DatabaseMiddleware makes db available to handlers through GetDB.
func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(DBKey, db)
		c.Next()
	}
}

// GetDB returns the request's database handle or nil.
func GetDB(c *gin.Context) *gorm.DB {
	v, ok := c.Get(DBKey)
	if !ok {
		return nil
	}
	db, _ := v.(*gorm.DB)
	return db
}

// AppointmentStore makes the appointment store available through GetStore.
func AppointmentStore(store *appointment.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(StoreKey, store)
		c.Next()
	}
}

// GetStore returns the request's appointment store or nil.
func GetStore(c *gin.Context) *appointment.Store {
	v, ok := c.Get(StoreKey)
	if !ok {
		return nil
	}
	store, _ := v.(*appointment.Store)
	return store
}

// ValidateLoginToken authenticates the session-token header. The Redis
// session cache is consulted first; on a miss or an unreadable entry the
// session table is used. On success the user and role ids are set in the
// context.
func ValidateLoginToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("session-token")
		if token == "" {
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Session token not provided",
				Err: fmt.Errorf("session token not provided"),
			})
			c.Abort()
			return
		}

		db := GetDB(c)
		if db == nil {
			util.CallServerError(c, util.APIErrorParams{
				Msg: "Database connection not available",
				Err: fmt.Errorf("db is nil"),
			})
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		if uid, rid, err := util.LookupCachedSession(ctx, token); err == nil {
			setIdentity(c, uid, rid)
			c.Next()
			return
		}

		uid, rid, err := lookupSession(db.WithContext(ctx), token)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				util.CallUserNotAuthorized(c, util.APIErrorParams{
					Msg: "Invalid or expired session",
					Err: fmt.Errorf("session not found"),
				})
			} else {
				util.CallServerError(c, util.APIErrorParams{
					Msg: "Failed to validate session",
					Err: err,
				})
			}
			c.Abort()
			return
		}

		setIdentity(c, uid, rid)
		c.Next()
	}
}

func lookupSession(db *gorm.DB, token string) (uint, uint32, error) {
	var session model.Session
	err := db.Where("session_token = ? AND expires_at > ?", token, time.Now()).First(&session).Error
	if err != nil {
		return 0, 0, err
	}
	var user model.User
	if err := db.Select("id", "role_id").First(&user, session.UserID).Error; err != nil {
		return 0, 0, err
	}
	return user.ID, user.RoleID, nil
}

func setIdentity(c *gin.Context, userID uint, roleID uint32) {
	c.Set(UserIDKey, userID)
	c.Set(RoleIDKey, roleID)
}

// GetUserID returns the authenticated user id set by ValidateLoginToken.
func GetUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// GetRoleID returns the authenticated role id set by ValidateLoginToken.
func GetRoleID(c *gin.Context) (uint32, bool) {
	v, ok := c.Get(RoleIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint32)
	return id, ok
}
