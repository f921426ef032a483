package workbench

import (
	"errors"

	"github.com/nexussign/supply/pkg/common/code"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Notice is what the operator sees after an operation.
type Notice struct {
	Level         Level
	Op            string
	RequirementID int64
	Kind          code.Kind
	Code          int
	Message       string
}

type Notifier interface {
	Notify(n Notice)
}

type NotifierFunc func(n Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

func errNotice(op string, id int64, err error) Notice {
	n := Notice{Level: LevelError, Op: op, RequirementID: id, Kind: code.KindOf(err), Message: err.Error()}
	var e *code.ErrCode
	if errors.As(err, &e) {
		n.Code = e.Code
		n.Message = e.Msg
	}
	return n
}
