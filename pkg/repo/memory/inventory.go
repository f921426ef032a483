package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/nexussign/supply/pkg/common/code"
	"github.com/nexussign/supply/pkg/repo"
	"github.com/nexussign/supply/pkg/repo/model"
	"github.com/shopspring/decimal"
)

func (s *Store) GetVinyl(_ context.Context, id int64) (*model.VinylInventory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data.vinyl[id]
	if !ok {
		return nil, code.UnitNotFound.WithMsgf("vinyl %d not found", id)
	}
	c := *v
	return &c, nil
}

func (s *Store) LockVinyl(ctx context.Context, id int64) (*model.VinylInventory, error) {
	return s.GetVinyl(ctx, id)
}

func (s *Store) MarkVinylUsed(_ context.Context, id int64, usageDate time.Time, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data.vinyl[id]
	if !ok {
		return code.UnitNotFound.WithMsgf("vinyl %d not found", id)
	}
	c := *v
	c.Disposition = model.DispositionUsed
	c.UsageDate = &usageDate
	c.UsageNote = note
	c.UpdatedAt = time.Now()
	s.data.vinyl[id] = &c
	return nil
}

func (s *Store) ListAvailableVinyl(_ context.Context, q repo.VinylStockQuery) ([]*model.VinylInventory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	claimed := map[int64]bool{}
	for _, h := range s.data.vinylHolds {
		if h.QuantityHeld == model.WholePiece {
			claimed[h.VinylID] = true
		}
	}
	out := make([]*model.VinylInventory, 0)
	for _, v := range s.data.vinyl {
		if v.Disposition != model.DispositionInStock || claimed[v.ID] {
			continue
		}
		if q.VinylProductID != nil && (v.VinylProductID == nil || *v.VinylProductID != *q.VinylProductID) {
			continue
		}
		c := *v
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *model.VinylInventory) int {
		if c := a.StorageDate.Compare(b.StorageDate); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) GetSupplierProduct(_ context.Context, id int64) (*model.SupplierProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.data.products[id]
	if !ok {
		return nil, code.UnitNotFound.WithMsgf("supplier product %d not found", id)
	}
	c := *p
	return &c, nil
}

func (s *Store) LockSupplierProduct(ctx context.Context, id int64) (*model.SupplierProduct, error) {
	return s.GetSupplierProduct(ctx, id)
}

func (s *Store) ListAvailableProducts(_ context.Context, q repo.ProductStockQuery) ([]*model.SupplierProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.SupplierProduct, 0)
	for _, p := range s.data.products {
		if !p.IsActive || !p.QuantityOnHand.IsPositive() {
			continue
		}
		if q.SupplierProductID != nil && p.ID != *q.SupplierProductID {
			continue
		}
		if q.ArchetypeID != nil && (p.ArchetypeID == nil || *p.ArchetypeID != *q.ArchetypeID) {
			continue
		}
		c := *p
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *model.SupplierProduct) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) ConsumeProductStock(_ context.Context, id int64, qty decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.data.products[id]
	if !ok {
		return code.UnitNotFound.WithMsgf("supplier product %d not found", id)
	}
	c := *p
	c.QuantityOnHand = decimal.Max(c.QuantityOnHand.Sub(qty), decimal.Zero)
	c.UpdatedAt = time.Now()
	s.data.products[id] = &c
	return nil
}

func (s *Store) CreateConsumption(_ context.Context, data *model.InventoryConsumption) error {
	if s.FailConsumption != nil {
		if err := s.FailConsumption(data.RequirementID); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data.ID = s.data.id()
	data.CreatedAt, data.UpdatedAt = time.Now(), time.Now()
	c := *data
	s.data.consumptions = append(s.data.consumptions, &c)
	return nil
}
