package requirement

import (
	"context"
	"errors"
	"strings"

	"github.com/nexussign/supply/pkg/common/code"
	"github.com/nexussign/supply/pkg/middleware/db"
	"github.com/nexussign/supply/pkg/middleware/logger"
	"github.com/nexussign/supply/pkg/repo"
	"github.com/nexussign/supply/pkg/repo/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// likeEscaper makes search text match literally under the default LIKE escape.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type requirementImpl struct {
	*db.Datastore
}

func NewRequirementRepo() repo.RequirementRepo {
	return &requirementImpl{Datastore: db.DB()}
}

// NewWithStore binds the repo to an explicit datastore.
func NewWithStore(ds *db.Datastore) repo.RequirementRepo {
	return &requirementImpl{Datastore: ds}
}

func (r *requirementImpl) CreateRequirement(ctx context.Context, data *model.MaterialRequirement) error {
	if err := r.DBWithContext(ctx).Create(data).Error; err != nil {
		logger.Errorf(ctx, "CreateRequirement err: %+v", err)
		return code.CreateDataErr.WithErr(err)
	}
	return nil
}

func (r *requirementImpl) GetRequirement(ctx context.Context, id int64) (*model.MaterialRequirement, error) {
	data := &model.MaterialRequirement{}
	if err := r.DBWithContext(ctx).Where("id = ?", id).Take(data).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.RequirementNotFound.WithMsgf("requirement %d not found", id)
		}
		logger.Errorf(ctx, "GetRequirement id: %d err: %+v", id, err)
		return nil, code.QueryRecordErr.WithErr(err)
	}
	return data, nil
}

func (r *requirementImpl) GetRequirements(ctx context.Context, ids []int64) ([]*model.MaterialRequirement, error) {
	datas := make([]*model.MaterialRequirement, 0, len(ids))
	if len(ids) == 0 {
		return datas, nil
	}
	if err := r.DBWithContext(ctx).Where("id IN ?", ids).Order("id").Find(&datas).Error; err != nil {
		logger.Errorf(ctx, "GetRequirements err: %+v", err)
		return nil, code.QueryRecordErr.WithErr(err)
	}
	return datas, nil
}

func (r *requirementImpl) LockRequirements(ctx context.Context, ids []int64) ([]*model.MaterialRequirement, error) {
	datas := make([]*model.MaterialRequirement, 0, len(ids))
	if len(ids) == 0 {
		return datas, nil
	}
	if err := r.DBWithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id IN ?", ids).
		Order("id").
		Find(&datas).Error; err != nil {
		logger.Errorf(ctx, "LockRequirements err: %+v", err)
		return nil, code.QueryRecordErr.WithErr(err)
	}
	return datas, nil
}

func (r *requirementImpl) SaveRequirement(ctx context.Context, data *model.MaterialRequirement) error {
	if err := r.DBWithContext(ctx).Save(data).Error; err != nil {
		logger.Errorf(ctx, "SaveRequirement id: %d err: %+v", data.ID, err)
		return code.UpdateDataErr.WithErr(err)
	}
	return nil
}

func (r *requirementImpl) ListRequirements(ctx context.Context, q repo.RequirementQuery) ([]*model.MaterialRequirement, int64, error) {
	query := r.DBWithContext(ctx).Model(&model.MaterialRequirement{})
	if len(q.Statuses) > 0 {
		query = query.Where("status IN ?", q.Statuses)
	}
	switch q.StockType {
	case repo.StockTypeStock:
		query = query.Where("is_stock_item = ?", true)
	case repo.StockTypeOrder:
		query = query.Where("order_id IS NOT NULL")
	}
	if q.SupplierID != nil {
		query = query.Where("supplier_id = ?", *q.SupplierID)
	}
	if q.EntryFrom != nil {
		query = query.Where("entry_date >= ?", *q.EntryFrom)
	}
	if q.EntryTo != nil {
		query = query.Where("entry_date <= ?", *q.EntryTo)
	}
	if q.Search != "" {
		like := "%" + likeEscaper.Replace(q.Search) + "%"
		query = query.Where("(notes ILIKE ? OR custom_product_type ILIKE ? OR unit ILIKE ? OR supplier_order_number ILIKE ?)",
			like, like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Errorf(ctx, "ListRequirements count err: %+v", err)
		return nil, 0, code.QueryRecordErr.WithErr(err)
	}

	if q.Limit <= 0 {
		q.Limit = 50
	}
	datas := make([]*model.MaterialRequirement, 0, q.Limit)
	if err := query.Order("entry_date DESC, id DESC").Offset(q.Offset).Limit(q.Limit).Find(&datas).Error; err != nil {
		logger.Errorf(ctx, "ListRequirements err: %+v", err)
		return nil, 0, code.QueryRecordErr.WithErr(err)
	}
	return datas, total, nil
}

func (r *requirementImpl) ListDraftRequirements(ctx context.Context) ([]*model.MaterialRequirement, error) {
	datas := make([]*model.MaterialRequirement, 0, 64)
	if err := r.DBWithContext(ctx).
		Where("supplier_id > 0 AND supplier_order_number IS NULL").
		Order("supplier_id, entry_date, id").
		Find(&datas).Error; err != nil {
		logger.Errorf(ctx, "ListDraftRequirements err: %+v", err)
		return nil, code.QueryRecordErr.WithErr(err)
	}
	return datas, nil
}

func (r *requirementImpl) ListUnassigned(ctx context.Context) ([]*model.MaterialRequirement, error) {
	datas := make([]*model.MaterialRequirement, 0, 64)
	if err := r.DBWithContext(ctx).
		Where("supplier_id IS NULL AND held_vinyl_id IS NULL AND held_supplier_product_id IS NULL").
		Where("status NOT IN ?", []model.RequirementStatus{model.StatusReceived, model.StatusCancelled}).
		Order("entry_date, id").
		Find(&datas).Error; err != nil {
		logger.Errorf(ctx, "ListUnassigned err: %+v", err)
		return nil, code.QueryRecordErr.WithErr(err)
	}
	return datas, nil
}
