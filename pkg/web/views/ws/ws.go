package ws

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/nexussign/supply/pkg/core/notify"
	"github.com/nexussign/supply/pkg/core/notify/events"
	"github.com/nexussign/supply/pkg/middleware/logger"
	"github.com/olahol/melody"
)

const maxMessageSize = 4 << 10

// Handle relays requirement-modify broadcasts to every connected workbench.
type Handle struct {
	wsClient *melody.Melody
}

func NewHandle(ctx context.Context) *Handle {
	return New(ctx, events.NewEvents())
}

func New(ctx context.Context, center notify.MsgCenter) *Handle {
	wsClient := melody.New()
	wsClient.Config.MaxMessageSize = maxMessageSize
	h := &Handle{wsClient: wsClient}
	h.initWebSocket()

	if err := center.Registry(ctx, notify.RequirementModify, h.relay); err != nil {
		logger.Errorf(ctx, "requirement ws registry err: %+v", err)
	}
	return h
}

func (h *Handle) relay(_ context.Context, msg string) error {
	if err := h.wsClient.Broadcast([]byte(msg)); err != nil && !errors.Is(err, melody.ErrClosed) {
		return err
	}
	return nil
}

func (h *Handle) Requirements(ctx *gin.Context) {
	if err := h.wsClient.HandleRequestWithKeys(ctx.Writer, ctx.Request, map[string]any{
		"ctx": ctx,
	}); err != nil {
		logger.Errorf(ctx, "requirement ws HandleRequestWithKeys err: %+v", err)
	}
}

func (h *Handle) Close(_ context.Context) error {
	if err := h.wsClient.Close(); err != nil && !errors.Is(err, melody.ErrClosed) {
		return err
	}
	return nil
}

func (h *Handle) initWebSocket() {
	h.wsClient.HandleConnect(func(s *melody.Session) {
		if ctx, ok := s.Get("ctx"); ok {
			logger.Infof(ctx.(context.Context), "requirement ws connect remote: %s", s.RemoteAddr())
		}
	})

	h.wsClient.HandleDisconnect(func(s *melody.Session) {
		if ctx, ok := s.Get("ctx"); ok {
			logger.Infof(ctx.(context.Context), "requirement ws disconnected remote: %s", s.RemoteAddr())
		}
	})

	h.wsClient.HandleError(func(s *melody.Session, err error) {
		if errors.Is(err, melody.ErrMessageBufferFull) {
			return
		}
		if closeErr, ok := err.(*websocket.CloseError); ok {
			if closeErr.Code == websocket.CloseGoingAway || closeErr.Code == websocket.CloseNormalClosure {
				return
			}
		}
		if ctx, ok := s.Get("ctx"); ok {
			logger.Errorf(ctx.(context.Context), "requirement ws error remote: %s, err: %+v", s.RemoteAddr(), err)
		}
	})

	// the feed is one way
	h.wsClient.HandleMessage(func(_ *melody.Session, _ []byte) {})
	h.wsClient.HandleSentMessage(func(_ *melody.Session, _ []byte) {})
	h.wsClient.HandleSentMessageBinary(func(_ *melody.Session, _ []byte) {})
}
