package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/nexussign/supply/pkg/repo/model"
)

func (s *Store) GetVinylHold(_ context.Context, requirementID int64) (*model.VinylHold, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.data.vinylHolds[requirementID]
	if !ok {
		return nil, nil
	}
	c := *h
	return &c, nil
}

func (s *Store) GetGeneralHold(_ context.Context, requirementID int64) (*model.GeneralInventoryHold, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.data.generalHolds[requirementID]
	if !ok {
		return nil, nil
	}
	c := *h
	return &c, nil
}

func (s *Store) UpsertVinylHold(_ context.Context, data *model.VinylHold) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if old, ok := s.data.vinylHolds[data.RequirementID]; ok {
		data.ID, data.CreatedAt = old.ID, old.CreatedAt
	} else {
		data.ID, data.CreatedAt = s.data.id(), now
	}
	data.UpdatedAt = now
	c := *data
	s.data.vinylHolds[data.RequirementID] = &c
	return nil
}

func (s *Store) UpsertGeneralHold(_ context.Context, data *model.GeneralInventoryHold) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if old, ok := s.data.generalHolds[data.RequirementID]; ok {
		data.ID, data.CreatedAt = old.ID, old.CreatedAt
	} else {
		data.ID, data.CreatedAt = s.data.id(), now
	}
	data.UpdatedAt = now
	c := *data
	s.data.generalHolds[data.RequirementID] = &c
	return nil
}

func (s *Store) DeleteVinylHold(_ context.Context, requirementID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data.vinylHolds, requirementID)
	return nil
}

func (s *Store) DeleteGeneralHold(_ context.Context, requirementID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data.generalHolds, requirementID)
	return nil
}

func (s *Store) ListVinylHolds(_ context.Context, vinylIDs ...int64) ([]*model.VinylHold, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.VinylHold, 0)
	for _, h := range s.data.vinylHolds {
		if slices.Contains(vinylIDs, h.VinylID) {
			c := *h
			out = append(out, &c)
		}
	}
	// ids are handed out in creation order
	slices.SortFunc(out, func(a, b *model.VinylHold) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}
