package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/nexussign/supply/pkg/common/code"
	"github.com/nexussign/supply/pkg/repo/model"
	"github.com/nexussign/supply/pkg/repo/purchase"
)

func (s *Store) GetSupplier(_ context.Context, id int64) (*model.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sp, ok := s.data.suppliers[id]
	if !ok {
		return nil, code.SupplierNotFound.WithMsgf("supplier %d not found", id)
	}
	c := *sp
	return &c, nil
}

func (s *Store) GetSuppliers(_ context.Context, ids []int64) (map[int64]*model.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64]*model.Supplier, len(ids))
	for _, id := range ids {
		if sp, ok := s.data.suppliers[id]; ok {
			c := *sp
			out[id] = &c
		}
	}
	return out, nil
}

func (s *Store) GetContacts(_ context.Context, supplierIDs []int64) (map[int64][]*model.SupplierContact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64][]*model.SupplierContact, len(supplierIDs))
	for _, id := range supplierIDs {
		cs := slices.Clone(s.data.contacts[id])
		slices.SortStableFunc(cs, func(a, b *model.SupplierContact) int {
			if a.IsPrimary != b.IsPrimary {
				if a.IsPrimary {
					return -1
				}
				return 1
			}
			return cmp.Compare(a.ID, b.ID)
		})
		if len(cs) > 0 {
			out[id] = cs
		}
	}
	return out, nil
}

func (s *Store) NextOrderNumber(_ context.Context, day time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.poSeq++
	return purchase.FormatOrderNumber(day, s.data.poSeq), nil
}

func (s *Store) CreateSupplierOrder(_ context.Context, data *model.SupplierOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data.ID = s.data.id()
	data.CreatedAt, data.UpdatedAt = time.Now(), time.Now()
	c := *data
	s.data.orders = append(s.data.orders, &c)
	return nil
}

func (s *Store) CreateEmailLog(_ context.Context, data *model.EmailLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data.ID = s.data.id()
	data.CreatedAt, data.UpdatedAt = time.Now(), time.Now()
	c := *data
	s.data.emails[data.ID] = &c
	return nil
}

func (s *Store) UpdateEmailStatus(_ context.Context, id int64, status model.EmailStatus, errMsg string, sentAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data.emails[id]
	if !ok {
		return code.RecordNotFound.WithMsgf("email log %d not found", id)
	}
	c := *e
	c.Status, c.Error, c.SentAt = status, errMsg, sentAt
	c.UpdatedAt = time.Now()
	s.data.emails[id] = &c
	return nil
}
