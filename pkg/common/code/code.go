package code

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// Kind classifies an error for the operator and for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindTransport:
		return "transport"
	default:
		return "internal"
	}
}

type ErrCode struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Kind Kind   `json:"-"`
	err  error
}

var registry sync.Map

func newCode(c int, kind Kind, msg string) *ErrCode {
	e := &ErrCode{Code: c, Msg: msg, Kind: kind}
	if _, loaded := registry.LoadOrStore(c, e); loaded {
		panic(fmt.Sprintf("duplicate error code %d", c))
	}
	return e
}

func (e *ErrCode) Error() string {
	if e.err != nil {
		return fmt.Sprintf("code: %d, msg: %s, err: %v", e.Code, e.Msg, e.err)
	}
	return fmt.Sprintf("code: %d, msg: %s", e.Code, e.Msg)
}

func (e *ErrCode) Unwrap() error { return e.err }

// Is matches by code so copies produced by WithMsg/WithErr compare equal to their base.
func (e *ErrCode) Is(target error) bool {
	t, ok := target.(*ErrCode)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func (e *ErrCode) WithMsg(msg string) *ErrCode {
	c := *e
	c.Msg = msg
	return &c
}

func (e *ErrCode) WithMsgf(format string, args ...any) *ErrCode {
	return e.WithMsg(fmt.Sprintf(format, args...))
}

func (e *ErrCode) WithErr(err error) *ErrCode {
	c := *e
	c.err = err
	return &c
}

// FromCode rebuilds a registered error from a wire code. Unknown codes become UnDefineErr.
func FromCode(c int, msg string) *ErrCode {
	if v, ok := registry.Load(c); ok {
		e := v.(*ErrCode)
		if msg == "" {
			return e
		}
		return e.WithMsg(msg)
	}
	return UnDefineErr.WithMsgf("code %d: %s", c, msg)
}

// KindOf reports the taxonomy kind of err; anything uncoded is internal.
func KindOf(err error) Kind {
	var e *ErrCode
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func HTTPStatus(k Kind) int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

var (
	Success     = newCode(0, KindInternal, "success")
	UnDefineErr = newCode(1, KindInternal, "undefined error")
	ParamErr    = newCode(2, KindValidation, "parameter error")

	// storage
	RecordNotFound = newCode(1001, KindNotFound, "record not found")
	QueryRecordErr = newCode(1002, KindInternal, "query record error")
	CreateDataErr  = newCode(1003, KindInternal, "create data error")
	UpdateDataErr  = newCode(1004, KindInternal, "update data error")
	DeleteDataErr  = newCode(1005, KindInternal, "delete data error")

	// requirement
	RequirementNotFound      = newCode(2001, KindNotFound, "requirement not found")
	RequirementInvalidErr    = newCode(2002, KindValidation, "requirement fields invalid")
	VendorHoldConflictErr    = newCode(2003, KindConflict, "held requirement cannot carry an external vendor")
	ReceiveNeedsReconcileErr = newCode(2004, KindConflict, "requirement holds a vinyl unit, receive it through reconciliation")
	RequirementClosedErr     = newCode(2005, KindConflict, "requirement is already received or cancelled")

	// hold
	HoldNotFound         = newCode(3001, KindNotFound, "requirement has no hold")
	HoldKindConflictErr  = newCode(3002, KindConflict, "requirement already holds a unit of the other kind")
	HoldQuantityEmptyErr = newCode(3003, KindValidation, "custom hold quantity is empty")
	StockUnavailableErr  = newCode(3004, KindConflict, "stock no longer available")
	HoldTargetInvalidErr = newCode(3005, KindValidation, "hold target does not fit the requirement")
	UnitNotFound         = newCode(3006, KindNotFound, "inventory unit not found")

	// receipt
	UnitBusyErr        = newCode(4001, KindConflict, "inventory unit is being received by another operator")
	UnitConsumedErr    = newCode(4002, KindConflict, "vinyl unit already consumed")
	NotCompetingErr    = newCode(4003, KindValidation, "requirement does not hold this vinyl unit")
	ReceiveItemFailErr = newCode(4004, KindInternal, "receive item failed")
	LockAcquireErr     = newCode(4005, KindTransport, "acquire inventory lock failed")

	// purchase
	SupplierNotFound       = newCode(5001, KindNotFound, "supplier not found")
	SupplierNotExternalErr = newCode(5002, KindValidation, "supplier is an internal sourcing sentinel")
	DraftPOEmptyErr        = newCode(5003, KindValidation, "draft purchase order has no requirements")
	DraftPOStaleErr        = newCode(5004, KindConflict, "requirement no longer belongs to the draft purchase order")
	DeliveryMethodErr      = newCode(5005, KindValidation, "invalid delivery method")
	EmailFieldsErr         = newCode(5006, KindValidation, "invalid email fields")
	MailSendErr            = newCode(5007, KindTransport, "send supplier email failed")
	PurchaseOrderCreateErr = newCode(5008, KindInternal, "create purchase order failed")
	EmailDispatchRejectErr = newCode(5009, KindInternal, "email dispatch pool rejected task")

	// transport
	RPCHttpErr     = newCode(6001, KindTransport, "remote request failed")
	RPCHttpCodeErr = newCode(6002, KindTransport, "remote request returned unexpected status")
	RPCDecodeErr   = newCode(6003, KindTransport, "remote response decode failed")

	// notify
	NotifyActionAlreadyRegistryErr = newCode(7001, KindInternal, "notify action already registered")
	NotifySendMsgErr               = newCode(7002, KindInternal, "notify send message failed")
	UnmarshalWSDataErr             = newCode(7003, KindValidation, "unmarshal websocket data error")

	// health
	DependencyNotInitErr = newCode(8001, KindInternal, "dependency not initialized")
)
