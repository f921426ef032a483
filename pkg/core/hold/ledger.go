package hold

import (
	"context"
	"fmt"
	"time"

	"github.com/nexussign/supply/pkg/repo"
	"github.com/nexussign/supply/pkg/repo/model"
)

// Ledger moves hold rows together with the requirement's held_* linkage. It works on a
// requirement the caller has locked inside its transaction and never saves it.
type Ledger struct {
	Holds     repo.HoldRepo
	Inventory repo.InventoryRepo
}

func NewLedger(stores *repo.Stores) *Ledger {
	return &Ledger{Holds: stores.Holds, Inventory: stores.Inventory}
}

// Release drops req's hold and leaves it unsourced.
func (l *Ledger) Release(ctx context.Context, req *model.MaterialRequirement) error {
	if req.HeldVinylID != nil {
		if err := l.Holds.DeleteVinylHold(ctx, req.ID); err != nil {
			return err
		}
	}
	if req.HeldSupplierProductID != nil {
		if err := l.Holds.DeleteGeneralHold(ctx, req.ID); err != nil {
			return err
		}
	}
	req.HeldVinylID = nil
	req.HeldSupplierProductID = nil
	req.SupplierID = nil
	return nil
}

// Consume converts req's hold into a consumption record dated on. markUnit marks the
// vinyl piece used; a piece shared by several receipts is marked once. Returns nil when
// req holds nothing.
func (l *Ledger) Consume(ctx context.Context, req *model.MaterialRequirement, on time.Time, markUnit bool) (*model.InventoryConsumption, error) {
	switch {
	case req.HeldVinylID != nil:
		vinylID := *req.HeldVinylID
		h, err := l.Holds.GetVinylHold(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		qty := model.WholePiece
		if h != nil {
			qty = h.QuantityHeld
		}
		if markUnit {
			if err := l.Inventory.MarkVinylUsed(ctx, vinylID, on, fmt.Sprintf("received for requirement %d", req.ID)); err != nil {
				return nil, err
			}
		}
		rec := &model.InventoryConsumption{
			RequirementID: req.ID,
			Kind:          model.ConsumptionVinyl,
			VinylID:       &vinylID,
			Quantity:      qty,
			ConsumedDate:  on,
		}
		if err := l.Inventory.CreateConsumption(ctx, rec); err != nil {
			return nil, err
		}
		if err := l.Holds.DeleteVinylHold(ctx, req.ID); err != nil {
			return nil, err
		}
		req.HeldVinylID = nil
		return rec, nil

	case req.HeldSupplierProductID != nil:
		productID := *req.HeldSupplierProductID
		h, err := l.Holds.GetGeneralHold(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		qty := model.WholePiece
		if h != nil {
			qty = h.QuantityHeld
		}
		if err := l.Inventory.ConsumeProductStock(ctx, productID, req.QuantityOrdered); err != nil {
			return nil, err
		}
		rec := &model.InventoryConsumption{
			RequirementID:     req.ID,
			Kind:              model.ConsumptionGeneral,
			SupplierProductID: &productID,
			Quantity:          qty,
			ConsumedDate:      on,
		}
		if err := l.Inventory.CreateConsumption(ctx, rec); err != nil {
			return nil, err
		}
		if err := l.Holds.DeleteGeneralHold(ctx, req.ID); err != nil {
			return nil, err
		}
		req.HeldSupplierProductID = nil
		return rec, nil
	}
	return nil, nil
}
