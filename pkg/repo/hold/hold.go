package hold

import (
	"context"
	"errors"
	"time"

	"github.com/nexussign/supply/pkg/common/code"
	"github.com/nexussign/supply/pkg/middleware/db"
	"github.com/nexussign/supply/pkg/middleware/logger"
	"github.com/nexussign/supply/pkg/repo"
	"github.com/nexussign/supply/pkg/repo/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type holdImpl struct {
	*db.Datastore
}

func NewHoldRepo() repo.HoldRepo {
	return &holdImpl{Datastore: db.DB()}
}

func NewWithStore(ds *db.Datastore) repo.HoldRepo {
	return &holdImpl{Datastore: ds}
}

func (h *holdImpl) GetVinylHold(ctx context.Context, requirementID int64) (*model.VinylHold, error) {
	data := &model.VinylHold{}
	if err := h.DBWithContext(ctx).Where("requirement_id = ?", requirementID).Take(data).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Errorf(ctx, "GetVinylHold requirement: %d err: %+v", requirementID, err)
		return nil, code.QueryRecordErr.WithErr(err)
	}
	return data, nil
}

func (h *holdImpl) GetGeneralHold(ctx context.Context, requirementID int64) (*model.GeneralInventoryHold, error) {
	data := &model.GeneralInventoryHold{}
	if err := h.DBWithContext(ctx).Where("requirement_id = ?", requirementID).Take(data).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Errorf(ctx, "GetGeneralHold requirement: %d err: %+v", requirementID, err)
		return nil, code.QueryRecordErr.WithErr(err)
	}
	return data, nil
}

func (h *holdImpl) UpsertVinylHold(ctx context.Context, data *model.VinylHold) error {
	data.UpdatedAt = time.Now()
	if err := h.DBWithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "requirement_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"vinyl_id", "quantity_held", "updated_at"}),
	}).Create(data).Error; err != nil {
		logger.Errorf(ctx, "UpsertVinylHold requirement: %d err: %+v", data.RequirementID, err)
		return code.CreateDataErr.WithErr(err)
	}
	return nil
}

func (h *holdImpl) UpsertGeneralHold(ctx context.Context, data *model.GeneralInventoryHold) error {
	data.UpdatedAt = time.Now()
	if err := h.DBWithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "requirement_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"supplier_product_id", "quantity_held", "updated_at"}),
	}).Create(data).Error; err != nil {
		logger.Errorf(ctx, "UpsertGeneralHold requirement: %d err: %+v", data.RequirementID, err)
		return code.CreateDataErr.WithErr(err)
	}
	return nil
}

func (h *holdImpl) DeleteVinylHold(ctx context.Context, requirementID int64) error {
	if err := h.DBWithContext(ctx).Where("requirement_id = ?", requirementID).Delete(&model.VinylHold{}).Error; err != nil {
		logger.Errorf(ctx, "DeleteVinylHold requirement: %d err: %+v", requirementID, err)
		return code.DeleteDataErr.WithErr(err)
	}
	return nil
}

func (h *holdImpl) DeleteGeneralHold(ctx context.Context, requirementID int64) error {
	if err := h.DBWithContext(ctx).Where("requirement_id = ?", requirementID).Delete(&model.GeneralInventoryHold{}).Error; err != nil {
		logger.Errorf(ctx, "DeleteGeneralHold requirement: %d err: %+v", requirementID, err)
		return code.DeleteDataErr.WithErr(err)
	}
	return nil
}

func (h *holdImpl) ListVinylHolds(ctx context.Context, vinylIDs ...int64) ([]*model.VinylHold, error) {
	datas := make([]*model.VinylHold, 0, len(vinylIDs))
	if len(vinylIDs) == 0 {
		return datas, nil
	}
	if err := h.DBWithContext(ctx).Where("vinyl_id IN ?", vinylIDs).Order("created_at, id").Find(&datas).Error; err != nil {
		logger.Errorf(ctx, "ListVinylHolds err: %+v", err)
		return nil, code.QueryRecordErr.WithErr(err)
	}
	return datas, nil
}
