package notify

import (
	"context"

	"github.com/nexussign/supply/pkg/common/uuid"
)

type Action string

const (
	RequirementModify Action = "requirement-modify"
)

type ChangeKind string

const (
	ChangeCreate  ChangeKind = "create"
	ChangeUpdate  ChangeKind = "update"
	ChangeHold    ChangeKind = "hold"
	ChangeReceive ChangeKind = "receive"
	ChangeSubmit  ChangeKind = "submit"
)

// RequirementChange tells sessions which requirements to reload.
type RequirementChange struct {
	Kind           ChangeKind `json:"kind"`
	RequirementIDs []int64    `json:"requirement_ids"`
}

type SendMsg struct {
	Channel   Action    `json:"action"`
	Data      any       `json:"data"`
	UUID      uuid.UUID `json:"uuid"`
	Timestamp int64     `json:"timestamp"`
}

type HandleFunc func(ctx context.Context, msg string) error

type MsgCenter interface {
	Registry(ctx context.Context, msgName Action, handleFunc HandleFunc) error
	Broadcast(ctx context.Context, msg *SendMsg) error
	Close(ctx context.Context) error
}

// Changed broadcasts a requirement change. Failures are returned for logging only;
// the mutation that triggered them has already committed.
func Changed(ctx context.Context, center MsgCenter, kind ChangeKind, ids ...int64) error {
	if center == nil || len(ids) == 0 {
		return nil
	}
	return center.Broadcast(ctx, &SendMsg{
		Channel: RequirementModify,
		Data:    &RequirementChange{Kind: kind, RequirementIDs: ids},
	})
}
