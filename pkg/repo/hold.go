package repo

import (
	"context"

	"github.com/nexussign/supply/pkg/repo/model"
)

type HoldRepo interface {
	// Get* return nil, nil when the requirement has no hold of that kind.
	GetVinylHold(ctx context.Context, requirementID int64) (*model.VinylHold, error)
	GetGeneralHold(ctx context.Context, requirementID int64) (*model.GeneralInventoryHold, error)
	// Upsert* replace the requirement's hold of the same kind.
	UpsertVinylHold(ctx context.Context, data *model.VinylHold) error
	UpsertGeneralHold(ctx context.Context, data *model.GeneralInventoryHold) error
	DeleteVinylHold(ctx context.Context, requirementID int64) error
	DeleteGeneralHold(ctx context.Context, requirementID int64) error
	// ListVinylHolds returns holds on the given units ordered by creation.
	ListVinylHolds(ctx context.Context, vinylIDs ...int64) ([]*model.VinylHold, error)
}
