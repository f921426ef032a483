package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/nexussign/supply/pkg/common/code"
	"github.com/nexussign/supply/pkg/middleware/db"
	"github.com/nexussign/supply/pkg/middleware/logger"
	"github.com/nexussign/supply/pkg/repo"
	"github.com/nexussign/supply/pkg/repo/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type inventoryImpl struct {
	*db.Datastore
}

func NewInventoryRepo() repo.InventoryRepo {
	return &inventoryImpl{Datastore: db.DB()}
}

func NewWithStore(ds *db.Datastore) repo.InventoryRepo {
	return &inventoryImpl{Datastore: ds}
}

func (i *inventoryImpl) GetVinyl(ctx context.Context, id int64) (*model.VinylInventory, error) {
	return i.takeVinyl(ctx, i.DBWithContext(ctx), id)
}

func (i *inventoryImpl) LockVinyl(ctx context.Context, id int64) (*model.VinylInventory, error) {
	return i.takeVinyl(ctx, i.DBWithContext(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}), id)
}

func (i *inventoryImpl) takeVinyl(ctx context.Context, tx *gorm.DB, id int64) (*model.VinylInventory, error) {
	data := &model.VinylInventory{}
	if err := tx.Where("id = ?", id).Take(data).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.UnitNotFound.WithMsgf("vinyl %d not found", id)
		}
		logger.Errorf(ctx, "take vinyl id: %d err: %+v", id, err)
		return nil, code.QueryRecordErr.WithErr(err)
	}
	return data, nil
}

func (i *inventoryImpl) MarkVinylUsed(ctx context.Context, id int64, usageDate time.Time, note string) error {
	res := i.DBWithContext(ctx).Model(&model.VinylInventory{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"disposition": model.DispositionUsed,
			"usage_date":  usageDate,
			"usage_note":  note,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		logger.Errorf(ctx, "MarkVinylUsed id: %d err: %+v", id, res.Error)
		return code.UpdateDataErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.UnitNotFound.WithMsgf("vinyl %d not found", id)
	}
	return nil
}

func (i *inventoryImpl) ListAvailableVinyl(ctx context.Context, q repo.VinylStockQuery) ([]*model.VinylInventory, error) {
	query := i.DBWithContext(ctx).Model(&model.VinylInventory{}).
		Where("disposition = ?", model.DispositionInStock).
		Where("NOT EXISTS (SELECT 1 FROM vinyl_holds h WHERE h.vinyl_id = vinyl_inventory.id AND h.quantity_held = ?)", model.WholePiece)
	if q.VinylProductID != nil {
		query = query.Where("vinyl_product_id = ?", *q.VinylProductID)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	datas := make([]*model.VinylInventory, 0, 16)
	if err := query.Order("storage_date, id").Find(&datas).Error; err != nil {
		logger.Errorf(ctx, "ListAvailableVinyl err: %+v", err)
		return nil, code.QueryRecordErr.WithErr(err)
	}
	return datas, nil
}

func (i *inventoryImpl) GetSupplierProduct(ctx context.Context, id int64) (*model.SupplierProduct, error) {
	return i.takeProduct(ctx, i.DBWithContext(ctx), id)
}

func (i *inventoryImpl) LockSupplierProduct(ctx context.Context, id int64) (*model.SupplierProduct, error) {
	return i.takeProduct(ctx, i.DBWithContext(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}), id)
}

func (i *inventoryImpl) takeProduct(ctx context.Context, tx *gorm.DB, id int64) (*model.SupplierProduct, error) {
	data := &model.SupplierProduct{}
	if err := tx.Where("id = ?", id).Take(data).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.UnitNotFound.WithMsgf("supplier product %d not found", id)
		}
		logger.Errorf(ctx, "take supplier product id: %d err: %+v", id, err)
		return nil, code.QueryRecordErr.WithErr(err)
	}
	return data, nil
}

func (i *inventoryImpl) ListAvailableProducts(ctx context.Context, q repo.ProductStockQuery) ([]*model.SupplierProduct, error) {
	query := i.DBWithContext(ctx).Model(&model.SupplierProduct{}).
		Where("is_active = ? AND quantity_on_hand > 0", true)
	if q.SupplierProductID != nil {
		query = query.Where("id = ?", *q.SupplierProductID)
	} else if q.ArchetypeID != nil {
		query = query.Where("archetype_id = ?", *q.ArchetypeID)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	datas := make([]*model.SupplierProduct, 0, 16)
	if err := query.Order("name, id").Find(&datas).Error; err != nil {
		logger.Errorf(ctx, "ListAvailableProducts err: %+v", err)
		return nil, code.QueryRecordErr.WithErr(err)
	}
	return datas, nil
}

func (i *inventoryImpl) ConsumeProductStock(ctx context.Context, id int64, qty decimal.Decimal) error {
	res := i.DBWithContext(ctx).Model(&model.SupplierProduct{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"quantity_on_hand": gorm.Expr("GREATEST(quantity_on_hand - ?, 0)", qty),
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		logger.Errorf(ctx, "ConsumeProductStock id: %d err: %+v", id, res.Error)
		return code.UpdateDataErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.UnitNotFound.WithMsgf("supplier product %d not found", id)
	}
	return nil
}

func (i *inventoryImpl) CreateConsumption(ctx context.Context, data *model.InventoryConsumption) error {
	if err := i.DBWithContext(ctx).Create(data).Error; err != nil {
		logger.Errorf(ctx, "CreateConsumption requirement: %d err: %+v", data.RequirementID, err)
		return code.CreateDataErr.WithErr(err)
	}
	return nil
}
