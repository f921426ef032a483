package hold

import (
	"strings"
	"time"

	"github.com/nexussign/supply/pkg/common/code"
	"github.com/nexussign/supply/pkg/repo/model"
)

type Kind string

const (
	KindVinyl   Kind = "vinyl"
	KindGeneral Kind = "general"
)

type QuantityMode string

const (
	QuantityWhole  QuantityMode = "whole"
	QuantityCustom QuantityMode = "custom"
)

// Target names the physical unit: a vinyl piece or a supplier product row.
type Target struct {
	Kind Kind  `json:"kind" binding:"required,oneof=vinyl general"`
	ID   int64 `json:"id" binding:"required,gt=0"`
}

type Quantity struct {
	Mode  QuantityMode `json:"mode" binding:"required,oneof=whole custom"`
	Value string       `json:"value"`
}

// Held returns the stored quantity text for the mode.
func (q Quantity) Held() (string, error) {
	switch q.Mode {
	case QuantityWhole:
		return model.WholePiece, nil
	case QuantityCustom:
		v := strings.TrimSpace(q.Value)
		if v == "" {
			return "", code.HoldQuantityEmptyErr
		}
		return v, nil
	default:
		return "", code.ParamErr.WithMsgf("unknown quantity mode %q", q.Mode)
	}
}

type PlaceReq struct {
	RequirementID int64    `json:"requirement_id" binding:"required,gt=0"`
	Target        Target   `json:"target"`
	Quantity      Quantity `json:"quantity"`
}

type RequirementReq struct {
	RequirementID int64 `uri:"requirement_id" binding:"required,gt=0"`
}

type HoldView struct {
	RequirementID int64     `json:"requirement_id"`
	Kind          Kind      `json:"kind"`
	UnitID        int64     `json:"unit_id"`
	QuantityHeld  string    `json:"quantity_held"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Quantity reports the view's quantity in request form, for pre-populating an edit.
func (h *HoldView) Quantity() Quantity {
	if h.QuantityHeld == model.WholePiece {
		return Quantity{Mode: QuantityWhole}
	}
	return Quantity{Mode: QuantityCustom, Value: h.QuantityHeld}
}

type VinylCandidate struct {
	Unit  *model.VinylInventory `json:"unit"`
	Holds []*model.VinylHold    `json:"holds"`
}

type CandidatesResp struct {
	RequirementID int64                    `json:"requirement_id"`
	Kind          Kind                     `json:"kind"`
	Vinyl         []*VinylCandidate        `json:"vinyl"`
	Products      []*model.SupplierProduct `json:"products"`
	Current       *HoldView                `json:"current,omitempty"`
}

type StockCheckReq struct {
	RequirementID     *int64 `json:"requirement_id"`
	ArchetypeID       *int64 `json:"archetype_id"`
	VinylProductID    *int64 `json:"vinyl_product_id"`
	SupplierProductID *int64 `json:"supplier_product_id"`
}

type StockAvailability struct {
	HasStock  bool `json:"has_stock"`
	StockType Kind `json:"stock_type"`
}
