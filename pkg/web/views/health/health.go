package health

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nexussign/supply/pkg/common/code"
	"github.com/nexussign/supply/pkg/middleware/db"
	"github.com/nexussign/supply/pkg/middleware/logger"
	"github.com/nexussign/supply/pkg/middleware/redis"
)

const (
	stateOK       = "ok"
	stateDown     = "down"
	stateNotReady = "not_ready"
)

// Check is one dependency the API needs before it takes traffic.
type Check struct {
	Name string
	Run  func(ctx context.Context) error
}

type Handle struct{ checks []Check }

func NewHandle(checks ...Check) *Handle {
	return &Handle{checks: checks}
}

// Postgres pings the global datastore.
func Postgres() Check {
	return Check{Name: "postgres", Run: func(ctx context.Context) error {
		ds := db.DB()
		if ds == nil {
			return code.DependencyNotInitErr
		}
		sqlDB, err := ds.DBIns().DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}}
}

// Redis pings the client behind locks and change broadcasts.
func Redis() Check {
	return Check{Name: "redis", Run: func(ctx context.Context) error {
		rc := redis.GetClient()
		if rc == nil {
			return code.DependencyNotInitErr
		}
		return rc.Ping(ctx).Err()
	}}
}

func (h *Handle) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": stateOK})
}

func (h *Handle) Live(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": stateOK})
}

func (h *Handle) Ready(ctx *gin.Context) {
	checks := make(gin.H, len(h.checks))
	status := http.StatusOK
	for _, c := range h.checks {
		if err := c.Run(ctx.Request.Context()); err != nil {
			logger.Warnf(ctx, "readiness check %s err: %+v", c.Name, err)
			checks[c.Name] = stateDown
			status = http.StatusServiceUnavailable
			continue
		}
		checks[c.Name] = stateOK
	}

	state := "ready"
	if status != http.StatusOK {
		state = stateNotReady
	}
	ctx.JSON(status, gin.H{"status": state, "checks": checks})
}
