package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/nexussign/supply/pkg/common/code"
	"github.com/nexussign/supply/pkg/repo"
	"github.com/nexussign/supply/pkg/repo/model"
)

func (s *Store) CreateRequirement(_ context.Context, data *model.MaterialRequirement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if data.ID == 0 {
		data.ID = s.data.id()
	}
	now := time.Now()
	data.CreatedAt, data.UpdatedAt = now, now
	s.data.requirements[data.ID] = data.Clone()
	return nil
}

func (s *Store) GetRequirement(_ context.Context, id int64) (*model.MaterialRequirement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.data.requirements[id]
	if !ok {
		return nil, code.RequirementNotFound.WithMsgf("requirement %d not found", id)
	}
	return r.Clone(), nil
}

func (s *Store) GetRequirements(_ context.Context, ids []int64) ([]*model.MaterialRequirement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.MaterialRequirement, 0, len(ids))
	for _, id := range ids {
		if r, ok := s.data.requirements[id]; ok {
			out = append(out, r.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *model.MaterialRequirement) int { return cmp.Compare(a.ID, b.ID) })
	return slices.CompactFunc(out, func(a, b *model.MaterialRequirement) bool { return a.ID == b.ID }), nil
}

func (s *Store) LockRequirements(ctx context.Context, ids []int64) ([]*model.MaterialRequirement, error) {
	return s.GetRequirements(ctx, ids)
}

func (s *Store) SaveRequirement(_ context.Context, data *model.MaterialRequirement) error {
	if s.FailSave != nil {
		if err := s.FailSave(data.ID); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data.UpdatedAt = time.Now()
	s.data.requirements[data.ID] = data.Clone()
	return nil
}

func (s *Store) ListRequirements(_ context.Context, q repo.RequirementQuery) ([]*model.MaterialRequirement, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(q.Search)
	matched := make([]*model.MaterialRequirement, 0, len(s.data.requirements))
	for _, r := range s.data.requirements {
		if len(q.Statuses) > 0 && !slices.Contains(q.Statuses, r.Status) {
			continue
		}
		if q.StockType == repo.StockTypeStock && !r.IsStockItem {
			continue
		}
		if q.StockType == repo.StockTypeOrder && r.OrderID == nil {
			continue
		}
		if q.SupplierID != nil && (r.SupplierID == nil || *r.SupplierID != *q.SupplierID) {
			continue
		}
		if q.EntryFrom != nil && r.EntryDate.Before(*q.EntryFrom) {
			continue
		}
		if q.EntryTo != nil && r.EntryDate.After(*q.EntryTo) {
			continue
		}
		if search != "" && !matchSearch(r, search) {
			continue
		}
		matched = append(matched, r)
	}
	slices.SortFunc(matched, func(a, b *model.MaterialRequirement) int {
		if c := b.EntryDate.Compare(a.EntryDate); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	total := int64(len(matched))
	if q.Limit <= 0 {
		q.Limit = 50
	}
	start := min(q.Offset, len(matched))
	end := min(start+q.Limit, len(matched))
	out := make([]*model.MaterialRequirement, 0, end-start)
	for _, r := range matched[start:end] {
		out = append(out, r.Clone())
	}
	return out, total, nil
}

func matchSearch(r *model.MaterialRequirement, search string) bool {
	fields := []string{r.Notes, r.Unit}
	if r.CustomProductType != nil {
		fields = append(fields, *r.CustomProductType)
	}
	if r.SupplierOrderNumber != nil {
		fields = append(fields, *r.SupplierOrderNumber)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

func (s *Store) ListDraftRequirements(_ context.Context) ([]*model.MaterialRequirement, error) {
	out := s.filterRequirements(func(r *model.MaterialRequirement) bool {
		return r.SupplierID != nil && *r.SupplierID > 0 && r.SupplierOrderNumber == nil
	})
	slices.SortFunc(out, func(a, b *model.MaterialRequirement) int {
		if c := cmp.Compare(*a.SupplierID, *b.SupplierID); c != 0 {
			return c
		}
		return byEntry(a, b)
	})
	return out, nil
}

func (s *Store) ListUnassigned(_ context.Context) ([]*model.MaterialRequirement, error) {
	out := s.filterRequirements(func(r *model.MaterialRequirement) bool {
		return r.SupplierID == nil && !r.Held() && !r.Status.Closed()
	})
	slices.SortFunc(out, byEntry)
	return out, nil
}

func (s *Store) filterRequirements(keep func(*model.MaterialRequirement) bool) []*model.MaterialRequirement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.MaterialRequirement, 0)
	for _, r := range s.data.requirements {
		if keep(r) {
			out = append(out, r.Clone())
		}
	}
	return out
}

func byEntry(a, b *model.MaterialRequirement) int {
	if c := a.EntryDate.Compare(b.EntryDate); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
