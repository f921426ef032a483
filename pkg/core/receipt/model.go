package receipt

import (
	"time"

	"github.com/nexussign/supply/pkg/core/requirement"
)

type OtherHoldsReq struct {
	RequirementID int64 `form:"requirement_id" json:"requirement_id" binding:"required,gt=0"`
	VinylID       int64 `form:"vinyl_id" json:"vinyl_id" binding:"required,gt=0"`
}

// OtherHold is a competing claim on the same vinyl piece, offered for joint receipt.
type OtherHold struct {
	RequirementID int64             `json:"requirement_id"`
	VinylID       int64             `json:"vinyl_id"`
	QuantityHeld  string            `json:"quantity_held"`
	HeldAt        time.Time         `json:"held_at"`
	Requirement   *requirement.View `json:"requirement"`
}

type ReceiveReq struct {
	RequirementID int64      `json:"requirement_id" binding:"required,gt=0"`
	ReceivedDate  *time.Time `json:"received_date"`
	// AlsoReceive must be a subset of the requirement's other holds.
	AlsoReceive []int64 `json:"also_receive_requirement_ids"`
}

type ItemAction string

const (
	ActionReceived ItemAction = "received"
	ActionReleased ItemAction = "released"
)

// ItemResult reports one competing requirement. A failed receive is followed by a
// release so the consumed piece never backs a live hold.
type ItemResult struct {
	RequirementID int64      `json:"requirement_id"`
	Action        ItemAction `json:"action"`
	OK            bool       `json:"ok"`
	Released      bool       `json:"released"`
	Code          int        `json:"code,omitempty"`
	Error         string     `json:"error,omitempty"`
}

type ReceiveResp struct {
	Primary *requirement.View `json:"primary"`
	VinylID *int64            `json:"vinyl_id,omitempty"`
	Items   []*ItemResult     `json:"items"`
}

// Failed lists the items that did not reach their intended action.
func (r *ReceiveResp) Failed() []*ItemResult {
	out := make([]*ItemResult, 0)
	for _, it := range r.Items {
		if !it.OK {
			out = append(out, it)
		}
	}
	return out
}
