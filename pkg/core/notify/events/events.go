package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/nexussign/supply/pkg/common/code"
	"github.com/nexussign/supply/pkg/common/uuid"
	"github.com/nexussign/supply/pkg/core/notify"
	"github.com/nexussign/supply/pkg/middleware/logger"
	"github.com/nexussign/supply/pkg/middleware/redis"
	"github.com/nexussign/supply/pkg/utils"
	r "github.com/redis/go-redis/v9"
)

// Events fans messages out across processes through redis pub/sub.
var (
	once   sync.Once
	center *Events
)

type Events struct {
	actions sync.Map
	subs    sync.Map
	client  *r.Client
	wait    sync.WaitGroup
}

func NewEvents() notify.MsgCenter {
	once.Do(func() {
		center = New(redis.GetClient())
	})

	return center
}

// New builds a center on client without touching the process singleton.
func New(client *r.Client) *Events {
	return &Events{client: client}
}

func (e *Events) Registry(ctx context.Context, msgName notify.Action, handleFunc notify.HandleFunc) error {
	if _, ok := e.actions.LoadOrStore(msgName, handleFunc); ok {
		return code.NotifyActionAlreadyRegistryErr.WithMsg(string(msgName))
	}

	sub := e.client.Subscribe(ctx, string(msgName))
	e.subs.Store(msgName, sub)

	e.wait.Add(1)
	utils.SafelyGo(func() {
		defer e.wait.Done()
		defer e.unsubscribe(ctx, msgName)

		ch := sub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					logger.Infof(ctx, "exit redis channel name: %s", msgName)
					return
				}
				if msg == nil {
					continue
				}
				if err := handleFunc(ctx, msg.Payload); err != nil {
					logger.Errorf(ctx, "handle redis msg fail name: %s, err: %+v", msgName, err)
				}
			case <-ctx.Done():
				logger.Infof(ctx, "exit redis channel name: %s", msgName)
				return
			}
		}
	}, func(err error) {
		logger.Errorf(ctx, "Registry handle msg err: %+v", err)
	})
	return nil
}

func (e *Events) unsubscribe(ctx context.Context, msgName notify.Action) {
	if v, ok := e.subs.LoadAndDelete(msgName); ok {
		if err := v.(*r.PubSub).Close(); err != nil {
			logger.Errorf(ctx, "unsubscribe fail msg name: %s, err: %+v", msgName, err)
		}
	}
	e.actions.Delete(msgName)
}

func (e *Events) Broadcast(ctx context.Context, msg *notify.SendMsg) error {
	msg.Timestamp = time.Now().Unix()
	if msg.UUID.IsNil() {
		msg.UUID = uuid.NewV4()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return code.NotifySendMsgErr.WithErr(err)
	}
	if err := e.client.Publish(ctx, string(msg.Channel), data).Err(); err != nil {
		logger.Errorf(ctx, "send msg fail action: %s, err: %+v", msg.Channel, err)
		return code.NotifySendMsgErr.WithErr(err)
	}

	return nil
}

// Close stops every subscription and waits for the readers to exit.
func (e *Events) Close(_ context.Context) error {
	e.subs.Range(func(k, _ any) bool {
		if v, ok := e.subs.LoadAndDelete(k); ok {
			_ = v.(*r.PubSub).Close()
		}
		return true
	})
	e.wait.Wait()
	return nil
}
