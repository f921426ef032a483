package memory

import (
	"time"

	"github.com/nexussign/supply/pkg/core/notify"
	"github.com/nexussign/supply/pkg/repo"
	"github.com/nexussign/supply/pkg/repo/model"
)

// Seed helpers assign an id when the row has none and return it.

func (s *Store) AddRequirement(r *model.MaterialRequirement) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == 0 {
		r.ID = s.data.id()
	}
	if r.Status == "" {
		r.Status = model.StatusPending
	}
	if r.EntryDate.IsZero() {
		r.EntryDate = time.Now()
	}
	s.data.requirements[r.ID] = r.Clone()
	return r.ID
}

func (s *Store) AddVinyl(v *model.VinylInventory) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == 0 {
		v.ID = s.data.id()
	}
	if v.Disposition == "" {
		v.Disposition = model.DispositionInStock
	}
	c := *v
	s.data.vinyl[v.ID] = &c
	return v.ID
}

func (s *Store) AddProduct(p *model.SupplierProduct) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.data.id()
	}
	c := *p
	s.data.products[p.ID] = &c
	return p.ID
}

func (s *Store) AddSupplier(sp *model.Supplier, contacts ...*model.SupplierContact) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sp.ID == 0 {
		sp.ID = s.data.id()
	}
	c := *sp
	s.data.suppliers[sp.ID] = &c
	for _, ct := range contacts {
		if ct.ID == 0 {
			ct.ID = s.data.id()
		}
		ct.SupplierID = sp.ID
		cc := *ct
		s.data.contacts[sp.ID] = append(s.data.contacts[sp.ID], &cc)
	}
	return sp.ID
}

// AddVinylHold writes a hold row and the requirement's linkage together.
func (s *Store) AddVinylHold(requirementID, vinylID int64, qty string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.data.vinylHolds[requirementID] = &model.VinylHold{
		BaseModel:     model.BaseModel{ID: s.data.id(), CreatedAt: now, UpdatedAt: now},
		RequirementID: requirementID,
		VinylID:       vinylID,
		QuantityHeld:  qty,
	}
	if r, ok := s.data.requirements[requirementID]; ok {
		c := r.Clone()
		c.HeldVinylID = &vinylID
		c.SupplierID = nil
		s.data.requirements[requirementID] = c
	}
}

func (s *Store) AddGeneralHold(requirementID, productID int64, qty string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.data.generalHolds[requirementID] = &model.GeneralInventoryHold{
		BaseModel:         model.BaseModel{ID: s.data.id(), CreatedAt: now, UpdatedAt: now},
		RequirementID:     requirementID,
		SupplierProductID: productID,
		QuantityHeld:      qty,
	}
	if r, ok := s.data.requirements[requirementID]; ok {
		c := r.Clone()
		c.HeldSupplierProductID = &productID
		c.SupplierID = nil
		s.data.requirements[requirementID] = c
	}
}

// Requirement reads a row without a context, for assertions.
func (s *Store) Requirement(id int64) *model.MaterialRequirement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.requirements[id].Clone()
}

func (s *Store) Vinyl(id int64) *model.VinylInventory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data.vinyl[id]
	if !ok {
		return nil
	}
	c := *v
	return &c
}

func (s *Store) Product(id int64) *model.SupplierProduct {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.data.products[id]
	if !ok {
		return nil
	}
	c := *p
	return &c
}

func (s *Store) VinylHolds() []*model.VinylHold {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.VinylHold, 0, len(s.data.vinylHolds))
	for _, h := range s.data.vinylHolds {
		c := *h
		out = append(out, &c)
	}
	return out
}

func (s *Store) GeneralHolds() []*model.GeneralInventoryHold {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.GeneralInventoryHold, 0, len(s.data.generalHolds))
	for _, h := range s.data.generalHolds {
		c := *h
		out = append(out, &c)
	}
	return out
}

func (s *Store) Consumptions() []*model.InventoryConsumption {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.InventoryConsumption, 0, len(s.data.consumptions))
	for _, c := range s.data.consumptions {
		cc := *c
		out = append(out, &cc)
	}
	return out
}

func (s *Store) Orders() []*model.SupplierOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.SupplierOrder, 0, len(s.data.orders))
	for _, o := range s.data.orders {
		c := *o
		out = append(out, &c)
	}
	return out
}

func (s *Store) EmailLog(id int64) *model.EmailLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data.emails[id]
	if !ok {
		return nil
	}
	c := *e
	return &c
}

func (s *Store) SentMail() []*repo.MailMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*repo.MailMessage(nil), s.sent...)
}

// Changes returns every broadcast requirement change in publish order.
func (s *Store) Changes() []*notify.RequirementChange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*notify.RequirementChange, 0, len(s.published))
	for _, p := range s.published {
		if c, ok := p.(*notify.RequirementChange); ok {
			out = append(out, c)
		}
	}
	return out
}
