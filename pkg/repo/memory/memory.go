// Package memory keeps every repository in process. Core service tests run against it.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/nexussign/supply/pkg/repo"
	"github.com/nexussign/supply/pkg/repo/model"
)

type txKey struct{}

// Store implements every repository interface plus the transactor, locker, mailer and
// message center. Stored rows are never mutated in place, so a shallow copy of the
// tables is a consistent snapshot.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data tables

	locks map[string]time.Time

	// Failure hooks. A non-nil return aborts the call with that error.
	FailSave        func(requirementID int64) error
	FailConsumption func(requirementID int64) error
	FailMail        func(msg *repo.MailMessage) error
	FailBroadcast   error

	sent      []*repo.MailMessage
	published []any
	handlers  map[string][]func(ctx context.Context, msg string) error
}

func New() *Store {
	return &Store{
		data:     newTables(),
		locks:    map[string]time.Time{},
		handlers: map[string][]func(ctx context.Context, msg string) error{},
	}
}

// Stores exposes s through the repository bundle.
func (s *Store) Stores() *repo.Stores {
	return &repo.Stores{
		Tx:           s,
		Requirements: s,
		Inventory:    s,
		Holds:        s,
		Suppliers:    s,
		Purchases:    s,
	}
}

// ExecTx serialises outer transactions and restores the snapshot taken on entry when fn
// fails. Nested calls behave like savepoints.
func (s *Store) ExecTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if ctx.Value(txKey{}) == nil {
		s.txMu.Lock()
		defer s.txMu.Unlock()
		ctx = context.WithValue(ctx, txKey{}, true)
	}

	s.mu.RLock()
	snap := s.data.clone()
	s.mu.RUnlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.data = snap
		s.mu.Unlock()
		return err
	}
	return nil
}

type tables struct {
	nextID       int64
	poSeq        int64
	requirements map[int64]*model.MaterialRequirement
	vinyl        map[int64]*model.VinylInventory
	products     map[int64]*model.SupplierProduct
	vinylHolds   map[int64]*model.VinylHold
	generalHolds map[int64]*model.GeneralInventoryHold
	consumptions []*model.InventoryConsumption
	suppliers    map[int64]*model.Supplier
	contacts     map[int64][]*model.SupplierContact
	orders       []*model.SupplierOrder
	emails       map[int64]*model.EmailLog
}

func newTables() tables {
	return tables{
		requirements: map[int64]*model.MaterialRequirement{},
		vinyl:        map[int64]*model.VinylInventory{},
		products:     map[int64]*model.SupplierProduct{},
		vinylHolds:   map[int64]*model.VinylHold{},
		generalHolds: map[int64]*model.GeneralInventoryHold{},
		suppliers:    map[int64]*model.Supplier{},
		contacts:     map[int64][]*model.SupplierContact{},
		emails:       map[int64]*model.EmailLog{},
	}
}

func (t tables) clone() tables {
	c := t
	c.requirements = maps.Clone(t.requirements)
	c.vinyl = maps.Clone(t.vinyl)
	c.products = maps.Clone(t.products)
	c.vinylHolds = maps.Clone(t.vinylHolds)
	c.generalHolds = maps.Clone(t.generalHolds)
	c.consumptions = append([]*model.InventoryConsumption(nil), t.consumptions...)
	c.suppliers = maps.Clone(t.suppliers)
	c.contacts = maps.Clone(t.contacts)
	c.orders = append([]*model.SupplierOrder(nil), t.orders...)
	c.emails = maps.Clone(t.emails)
	return c
}

func (t *tables) id() int64 {
	t.nextID++
	return t.nextID
}
