package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ariebrainware/medibook/util"
	"github.com/gin-gonic/gin"
)

var unloggedMethods = []string{http.MethodOptions, http.MethodHead}

// EndpointCallLogger logs each HTTP request as an endpoint event once the
// handler chain finishes. Preflight and swagger requests are skipped.
func EndpointCallLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if util.Contains(c.Request.Method, unloggedMethods) || strings.HasPrefix(c.Request.URL.Path, "/swagger") {
			return
		}

		status := c.Writer.Status()
		userID, _ := GetUserID(c)
		roleID, _ := GetRoleID(c)

		details := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"raw_path":    c.Request.URL.Path,
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			details["query"] = q
		}
		if roleID != 0 {
			details["role_id"] = roleID
		}

		event := util.SecurityEvent{
			EventType: util.EventEndpointCall,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Resource:  c.Request.Method + " " + c.Request.URL.Path,
			Message:   fmt.Sprintf("%s %s -> %d", c.Request.Method, c.Request.URL.Path, status),
			Details:   details,
		}
		if userID != 0 {
			event.UserID = fmt.Sprintf("%d", userID)
			event.Email = util.GetUserEmail(GetDB(c), userID)
		}
		util.LogSecurityEvent(event)
	}
}
