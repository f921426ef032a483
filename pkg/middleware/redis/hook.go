package redis

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/nexussign/supply/pkg/middleware/logger"
	"github.com/redis/go-redis/extra/rediscmd/v9"
	r "github.com/redis/go-redis/v9"
)

// cmdLogHook logs failed and slow commands.
type cmdLogHook struct {
	slow time.Duration
}

var _ r.Hook = (*cmdLogHook)(nil)

func (h *cmdLogHook) DialHook(next r.DialHook) r.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			logger.Errorf(ctx, "redis dial %s err: %+v", addr, err)
		}
		return conn, err
	}
}

func (h *cmdLogHook) ProcessHook(next r.ProcessHook) r.ProcessHook {
	return func(ctx context.Context, cmd r.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.log(ctx, rediscmd.CmdString(cmd), time.Since(start), err)
		return err
	}
}

func (h *cmdLogHook) ProcessPipelineHook(next r.ProcessPipelineHook) r.ProcessPipelineHook {
	return func(ctx context.Context, cmds []r.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		summary, _ := rediscmd.CmdsString(cmds)
		h.log(ctx, summary, time.Since(start), err)
		return err
	}
}

func (h *cmdLogHook) log(ctx context.Context, cmd string, cost time.Duration, err error) {
	switch {
	case err != nil && !errors.Is(err, r.Nil):
		logger.Errorf(ctx, "redis cmd [%s] %s err: %+v", cost, cmd, err)
	case cost > h.slow:
		logger.Warnf(ctx, "redis slow cmd [%s] %s", cost, cmd)
	}
}
