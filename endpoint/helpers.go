package endpoint

import (
	"fmt"

	"github.com/ariebrainware/medibook/middleware"
	"github.com/ariebrainware/medibook/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// bindJSONOrRespond binds the request body into dst and answers 400 when it
// cannot be decoded or fails binding rules.
func bindJSONOrRespond(c *gin.Context, dst interface{}, msg string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: msg, Err: err})
		return false
	}
	return true
}

// helper: ensure DB is available in context or respond with server error
func getDBOrRespond(c *gin.Context) (*gorm.DB, bool) {
	db := middleware.GetDB(c)
	if db == nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Database connection not available",
			Err: fmt.Errorf("db is nil"),
		})
		return nil, false
	}
	return db, true
}

func getIDParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if id == "" {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Missing appointment ID",
			Err: fmt.Errorf("appointment ID is required"),
		})
		return "", false
	}
	return id, true
}
