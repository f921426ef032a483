package lock

import (
	"context"
	"time"

	"github.com/nexussign/supply/pkg/common/code"
	"github.com/nexussign/supply/pkg/common/uuid"
	"github.com/nexussign/supply/pkg/middleware/logger"
	"github.com/nexussign/supply/pkg/middleware/redis"
	"github.com/nexussign/supply/pkg/repo"
	r "github.com/redis/go-redis/v9"
)

const keyPrefix = "supply:lock:"

// releaseScript deletes the key only while it still carries our token.
var releaseScript = r.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLocker struct {
	client *r.Client
}

func NewLocker() repo.Locker {
	return &redisLocker{client: redis.GetClient()}
}

func NewWithClient(client *r.Client) repo.Locker {
	return &redisLocker{client: client}
}

func (l *redisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context), error) {
	token := uuid.NewV4().String()
	ok, err := l.client.SetNX(ctx, keyPrefix+key, token, ttl).Result()
	if err != nil {
		logger.Errorf(ctx, "acquire lock %s err: %+v", key, err)
		return nil, code.LockAcquireErr.WithErr(err)
	}
	if !ok {
		return nil, code.UnitBusyErr.WithMsgf("%s is locked by another operator", key)
	}

	return func(ctx context.Context) {
		if err := releaseScript.Run(ctx, l.client, []string{keyPrefix + key}, token).Err(); err != nil && err != r.Nil {
			logger.Warnf(ctx, "release lock %s err: %+v", key, err)
		}
	}, nil
}
