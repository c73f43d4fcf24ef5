package server

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/revshare/internal/observability/context"
)

func parseIDParam(c *gin.Context, name string) (snowflake.ID, bool) {
	raw := strings.TrimSpace(c.Param(name))
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || parsed <= 0 {
		AbortWithError(c, ErrInvalidRequest)
		return 0, false
	}
	return snowflake.ParseInt64(parsed), true
}

func parseIDQuery(c *gin.Context, name string) (snowflake.ID, bool) {
	raw := strings.TrimSpace(c.Query(name))
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || parsed <= 0 {
		AbortWithError(c, ErrInvalidRequest)
		return 0, false
	}
	return snowflake.ParseInt64(parsed), true
}

func snowflakeID(raw int64) snowflake.ID {
	if raw <= 0 {
		return 0
	}
	return snowflake.ParseInt64(raw)
}

// actorID resolves the acting principal for audit attribution. Requests
// without an X-Actor-Id header record as system.
func actorID(c *gin.Context) string {
	if actor := obscontext.ActorIDFromContext(c.Request.Context()); actor != "" {
		return actor
	}
	return "system"
}
