package repo

import (
	"context"
	"time"

	"github.com/nexussign/supply/pkg/repo/model"
)

type StockType string

const (
	StockTypeAll   StockType = ""
	StockTypeStock StockType = "stock"
	StockTypeOrder StockType = "order"
)

type RequirementQuery struct {
	Statuses   []model.RequirementStatus
	StockType  StockType
	SupplierID *int64
	EntryFrom  *time.Time
	EntryTo    *time.Time
	// Search matches notes, custom product text, unit and PO number.
	Search string
	Offset int
	Limit  int
}

type RequirementRepo interface {
	CreateRequirement(ctx context.Context, data *model.MaterialRequirement) error
	GetRequirement(ctx context.Context, id int64) (*model.MaterialRequirement, error)
	GetRequirements(ctx context.Context, ids []int64) ([]*model.MaterialRequirement, error)
	// LockRequirements reads rows FOR UPDATE in id order. Missing ids are simply absent.
	LockRequirements(ctx context.Context, ids []int64) ([]*model.MaterialRequirement, error)
	// SaveRequirement writes every column, nulls included.
	SaveRequirement(ctx context.Context, data *model.MaterialRequirement) error
	ListRequirements(ctx context.Context, q RequirementQuery) ([]*model.MaterialRequirement, int64, error)
	// ListDraftRequirements returns rows with an external supplier and no PO number.
	ListDraftRequirements(ctx context.Context) ([]*model.MaterialRequirement, error)
	// ListUnassigned returns open rows with neither supplier nor hold.
	ListUnassigned(ctx context.Context) ([]*model.MaterialRequirement, error)
}
