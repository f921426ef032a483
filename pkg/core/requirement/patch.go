package requirement

import (
	"strings"
	"time"

	"github.com/nexussign/supply/pkg/common"
	"github.com/nexussign/supply/pkg/common/code"
	"github.com/nexussign/supply/pkg/repo/model"
	"github.com/nexussign/supply/pkg/utils"
	"github.com/shopspring/decimal"
)

// Patch is a partial update. Absent fields are left alone; null clears the field.
// Hold linkage and purchase order fields are not patchable; they move only through
// the hold, receipt and purchase flows.
type Patch struct {
	OrderID           common.Optional[int64]                   `json:"order_id,omitzero"`
	IsStockItem       common.Optional[bool]                    `json:"is_stock_item,omitzero"`
	ArchetypeID       common.Optional[int64]                   `json:"archetype_id,omitzero"`
	VinylProductID    common.Optional[int64]                   `json:"vinyl_product_id,omitzero"`
	SupplierProductID common.Optional[int64]                   `json:"supplier_product_id,omitzero"`
	CustomProductType common.Optional[string]                  `json:"custom_product_type,omitzero"`
	QuantityOrdered   common.Optional[decimal.Decimal]         `json:"quantity_ordered,omitzero"`
	Unit              common.Optional[string]                  `json:"unit,omitzero"`
	SupplierID        common.Optional[int64]                   `json:"supplier_id,omitzero"`
	EntryDate         common.Optional[time.Time]               `json:"entry_date,omitzero"`
	OrderedDate       common.Optional[time.Time]               `json:"ordered_date,omitzero"`
	ReceivedDate      common.Optional[time.Time]               `json:"received_date,omitzero"`
	Status            common.Optional[model.RequirementStatus] `json:"status,omitzero"`
	DeliveryMethod    common.Optional[model.DeliveryMethod]    `json:"delivery_method,omitzero"`
	Notes             common.Optional[string]                  `json:"notes,omitzero"`
}

// Empty reports a patch without any field.
func (p *Patch) Empty() bool {
	return !(p.OrderID.Set || p.IsStockItem.Set || p.ArchetypeID.Set || p.VinylProductID.Set ||
		p.SupplierProductID.Set || p.CustomProductType.Set || p.QuantityOrdered.Set || p.Unit.Set ||
		p.SupplierID.Set || p.EntryDate.Set || p.OrderedDate.Set || p.ReceivedDate.Set ||
		p.Status.Set || p.DeliveryMethod.Set || p.Notes.Set)
}

// ApplyPatch is ApplyPatchAt with the wall clock.
func ApplyPatch(current *model.MaterialRequirement, p *Patch) (*model.MaterialRequirement, error) {
	return ApplyPatchAt(current, p, time.Now())
}

// ApplyPatchAt is the single reducer for requirement edits. The server runs it before
// writing and the client runs it for its optimistic copy, so both see the same cascades.
// now dates a receipt that arrives without received_date. current is never modified.
func ApplyPatchAt(current *model.MaterialRequirement, p *Patch, now time.Time) (*model.MaterialRequirement, error) {
	next := current.Clone()
	if p == nil {
		return next, nil
	}

	if err := applyOrigin(next, p); err != nil {
		return nil, err
	}
	if err := applyProduct(next, p); err != nil {
		return nil, err
	}

	if p.QuantityOrdered.Set {
		if p.QuantityOrdered.Null || p.QuantityOrdered.Value.IsNegative() {
			return nil, code.RequirementInvalidErr.WithMsg("quantity ordered must be a non-negative number")
		}
		next.QuantityOrdered = p.QuantityOrdered.Value
	}
	if p.Unit.Set {
		next.Unit = p.Unit.Value
	}

	if p.SupplierID.Set {
		if p.SupplierID.Null {
			next.SupplierID = nil
		} else {
			id := p.SupplierID.Value
			if !ValidSupplierID(id) {
				return nil, code.RequirementInvalidErr.WithMsgf("supplier id %d is not a vendor or a sourcing sentinel", id)
			}
			if id > 0 && next.Held() {
				return nil, code.VendorHoldConflictErr.WithMsg("release the hold before assigning an external vendor")
			}
			next.SupplierID = &id
		}
	}

	if p.EntryDate.Set {
		if p.EntryDate.Null {
			return nil, code.RequirementInvalidErr.WithMsg("entry date cannot be cleared")
		}
		next.EntryDate = p.EntryDate.Value
	}
	if p.ReceivedDate.Set {
		next.ReceivedDate = p.ReceivedDate.Ptr()
	}
	if p.DeliveryMethod.Set {
		if p.DeliveryMethod.Present() && !p.DeliveryMethod.Value.Valid() {
			return nil, code.DeliveryMethodErr.WithMsgf("unknown delivery method %q", p.DeliveryMethod.Value)
		}
		next.DeliveryMethod = p.DeliveryMethod.Ptr()
	}

	if p.OrderedDate.Set {
		if p.OrderedDate.Null {
			// the computed ordered states hang off ordered_date, so the PO link goes with it
			next.OrderedDate = nil
			next.SupplierOrderNumber = nil
			next.SupplierOrderID = nil
			next.Status = model.StatusPending
		} else {
			d := p.OrderedDate.Value
			next.OrderedDate = &d
		}
	}

	if p.Status.Set {
		if p.Status.Null || !p.Status.Value.Valid() {
			return nil, code.RequirementInvalidErr.WithMsgf("unknown status %q", p.Status.Value)
		}
		if p.Status.Value == model.StatusReceived && current.Status != model.StatusReceived && next.HeldVinylID != nil {
			return nil, code.ReceiveNeedsReconcileErr
		}
		next.Status = p.Status.Value
	}
	if next.Status == model.StatusReceived && current.Status != model.StatusReceived && next.ReceivedDate == nil {
		today := utils.TruncateDay(now)
		next.ReceivedDate = &today
	}

	if p.Notes.Set {
		next.Notes = p.Notes.Value
	}

	if _, err := FromModel(next); err != nil {
		return nil, err
	}
	return next, nil
}

func applyOrigin(next *model.MaterialRequirement, p *Patch) error {
	if p.OrderID.Set {
		if p.OrderID.Null {
			next.OrderID = nil
			next.IsStockItem = true
		} else {
			id := p.OrderID.Value
			next.OrderID = &id
			next.IsStockItem = false
		}
	}
	if p.IsStockItem.Set {
		stock := p.IsStockItem.Present() && p.IsStockItem.Value
		switch {
		case stock && p.OrderID.Present():
			return code.RequirementInvalidErr.WithMsg("a stock item cannot carry an order id")
		case stock:
			next.OrderID = nil
			next.IsStockItem = true
		case next.OrderID == nil:
			return code.RequirementInvalidErr.WithMsg("clearing the stock item flag needs an order id")
		default:
			next.IsStockItem = false
		}
	}
	return nil
}

func applyProduct(next *model.MaterialRequirement, p *Patch) error {
	present := 0
	for _, set := range []bool{p.VinylProductID.Present(), p.SupplierProductID.Present(), p.CustomProductType.Present()} {
		if set {
			present++
		}
	}
	if present > 1 {
		return code.RequirementInvalidErr.WithMsg("set only one of vinyl product, supplier product or custom product type")
	}

	if p.ArchetypeID.Set {
		next.ArchetypeID = p.ArchetypeID.Ptr()
	}

	switch {
	case p.VinylProductID.Present():
		id := p.VinylProductID.Value
		next.VinylProductID = &id
		next.SupplierProductID = nil
		next.CustomProductType = nil
		if !p.ArchetypeID.Set {
			vinyl := model.ArchetypeVinyl
			next.ArchetypeID = &vinyl
		}
	case p.SupplierProductID.Present():
		id := p.SupplierProductID.Value
		next.SupplierProductID = &id
		next.VinylProductID = nil
		next.CustomProductType = nil
	case p.CustomProductType.Present():
		text := strings.TrimSpace(p.CustomProductType.Value)
		if text == "" {
			return code.RequirementInvalidErr.WithMsg("custom product type is empty")
		}
		next.CustomProductType = &text
		next.VinylProductID = nil
		next.SupplierProductID = nil
	}

	if p.VinylProductID.Cleared() {
		next.VinylProductID = nil
	}
	if p.SupplierProductID.Cleared() {
		next.SupplierProductID = nil
	}
	if p.CustomProductType.Cleared() {
		next.CustomProductType = nil
	}
	return nil
}
