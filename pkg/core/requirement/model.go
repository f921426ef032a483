package requirement

import (
	"time"

	"github.com/nexussign/supply/pkg/common"
	"github.com/nexussign/supply/pkg/repo"
	"github.com/nexussign/supply/pkg/repo/model"
	"github.com/shopspring/decimal"
)

type CreateReq struct {
	OrderID           *int64          `json:"order_id"`
	IsStockItem       bool            `json:"is_stock_item"`
	ArchetypeID       *int64          `json:"archetype_id"`
	VinylProductID    *int64          `json:"vinyl_product_id"`
	SupplierProductID *int64          `json:"supplier_product_id"`
	CustomProductType *string         `json:"custom_product_type"`
	QuantityOrdered   decimal.Decimal `json:"quantity_ordered"`
	Unit              string          `json:"unit" binding:"required"`
	SupplierID        *int64          `json:"supplier_id"`
	EntryDate         *time.Time      `json:"entry_date"`
	Notes             string          `json:"notes"`
}

// Patch converts the request into the reducer's input so creation follows the edit rules.
func (c *CreateReq) Patch() *Patch {
	p := &Patch{
		QuantityOrdered: common.Some(c.QuantityOrdered),
		Unit:            common.Some(c.Unit),
		Notes:           common.Some(c.Notes),
	}
	if c.OrderID != nil {
		p.OrderID = common.Some(*c.OrderID)
	}
	if c.IsStockItem {
		p.IsStockItem = common.Some(true)
	}
	if c.ArchetypeID != nil {
		p.ArchetypeID = common.Some(*c.ArchetypeID)
	}
	if c.VinylProductID != nil {
		p.VinylProductID = common.Some(*c.VinylProductID)
	}
	if c.SupplierProductID != nil {
		p.SupplierProductID = common.Some(*c.SupplierProductID)
	}
	if c.CustomProductType != nil {
		p.CustomProductType = common.Some(*c.CustomProductType)
	}
	if c.SupplierID != nil {
		p.SupplierID = common.Some(*c.SupplierID)
	}
	if c.EntryDate != nil {
		p.EntryDate = common.Some(*c.EntryDate)
	}
	return p
}

type ListReq struct {
	common.PageReq

	Statuses   []model.RequirementStatus `form:"status" json:"status"`
	StockType  repo.StockType            `form:"stock_type" json:"stock_type" binding:"omitempty,oneof=stock order"`
	SupplierID *int64                    `form:"supplier_id" json:"supplier_id"`
	EntryFrom  *time.Time                `form:"entry_from" json:"entry_from" time_format:"2006-01-02"`
	EntryTo    *time.Time                `form:"entry_to" json:"entry_to" time_format:"2006-01-02"`
	Search     string                    `form:"search" json:"search"`
}

type IDReq struct {
	ID int64 `uri:"id" binding:"required,gt=0"`
}

// View is a stored requirement plus its derived status.
type View struct {
	*model.MaterialRequirement
	ComputedStatus ComputedStatus `json:"computed_status"`
}

func NewView(m *model.MaterialRequirement) *View {
	return &View{MaterialRequirement: m, ComputedStatus: Derive(m)}
}

func NewViews(ms []*model.MaterialRequirement) []*View {
	res := make([]*View, 0, len(ms))
	for _, m := range ms {
		res = append(res, NewView(m))
	}
	return res
}
