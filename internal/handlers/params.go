package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/httperr"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/middleware"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// pathID reads a positive numeric path parameter, writing a 400 otherwise.
func pathID(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		httperr.BadRequest(c, "invalid_id", "Invalid "+name+".")
		return 0, false
	}
	return uint(n), true
}

func queryID(c *gin.Context, name string) uint {
	n, err := strconv.ParseUint(c.Query(name), 10, 64)
	if err != nil {
		return 0
	}
	return uint(n)
}

type pagination struct {
	Page   int
	Limit  int
	Offset int
}

func paginate(c *gin.Context) pagination {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}

	return pagination{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// queryDate parses an optional YYYY-MM-DD query value. ok is false only
// when the value is present and malformed.
func queryDate(c *gin.Context, name string) (*time.Time, bool) {
	s := c.Query(name)
	if s == "" {
		return nil, true
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", name+" must look like 2006-01-02.")
		return nil, false
	}
	return &d, true
}

// actorOf is only used behind AuthMiddleware, where the actor is set.
func actorOf(c *gin.Context) identity.Actor {
	actor, _ := middleware.ActorFrom(c)
	return actor
}
