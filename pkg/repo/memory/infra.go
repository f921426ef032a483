package memory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nexussign/supply/pkg/common/code"
	"github.com/nexussign/supply/pkg/common/uuid"
	"github.com/nexussign/supply/pkg/core/notify"
	"github.com/nexussign/supply/pkg/repo"
)

func (s *Store) Acquire(_ context.Context, key string, ttl time.Duration) (func(context.Context), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if exp, ok := s.locks[key]; ok && time.Now().Before(exp) {
		return nil, code.UnitBusyErr.WithMsgf("%s is locked by another operator", key)
	}
	exp := time.Now().Add(ttl)
	s.locks[key] = exp
	return func(context.Context) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if cur, ok := s.locks[key]; ok && cur.Equal(exp) {
			delete(s.locks, key)
		}
	}, nil
}

func (s *Store) Send(_ context.Context, msg *repo.MailMessage) error {
	if s.FailMail != nil {
		if err := s.FailMail(msg); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *msg
	s.sent = append(s.sent, &c)
	return nil
}

func (s *Store) Registry(_ context.Context, msgName notify.Action, handleFunc notify.HandleFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[string(msgName)] = append(s.handlers[string(msgName)], handleFunc)
	return nil
}

// Broadcast delivers synchronously to every registered handler.
func (s *Store) Broadcast(ctx context.Context, msg *notify.SendMsg) error {
	if s.FailBroadcast != nil {
		return s.FailBroadcast
	}
	msg.Timestamp = time.Now().Unix()
	if msg.UUID.IsNil() {
		msg.UUID = uuid.NewV4()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return code.NotifySendMsgErr.WithErr(err)
	}

	s.mu.Lock()
	s.published = append(s.published, msg.Data)
	handlers := append([]func(context.Context, string) error(nil), s.handlers[string(msg.Channel)]...)
	s.mu.Unlock()

	for _, h := range handlers {
		if err := h(ctx, string(data)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.handlers)
	return nil
}
