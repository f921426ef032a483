package migrate

import (
	"context"

	"github.com/nexussign/supply/pkg/middleware/db"
	"github.com/nexussign/supply/pkg/middleware/logger"
	"github.com/nexussign/supply/pkg/repo/model"
	"github.com/nexussign/supply/pkg/utils"
	"gorm.io/gorm"
)

func Table(ctx context.Context) error {
	return Run(ctx, db.DB().DBWithContext(ctx))
}

// Run migrates every table on d. Integration tests call it against a throwaway database.
func Run(ctx context.Context, d *gorm.DB) error {
	models := []any{
		&model.MaterialRequirement{},
		&model.VinylProduct{},
		&model.VinylInventory{},
		&model.SupplierProduct{},
		&model.VinylHold{},
		&model.GeneralInventoryHold{},
		&model.InventoryConsumption{},
		&model.Supplier{},
		&model.SupplierContact{},
		&model.SupplierOrder{},
		&model.EmailLog{},
	}
	return utils.IfErrReturn(func() error {
		for _, m := range models {
			if err := d.AutoMigrate(m); err != nil {
				logger.Errorf(ctx, "migrate table err: %+v", err)
				return err
			}
		}
		return nil
	}, func() error {
		// draft grouping scans this pair on every load
		return d.Exec(`CREATE INDEX IF NOT EXISTS idx_requirement_draft ON material_requirements (supplier_id) WHERE supplier_order_number IS NULL`).Error
	}, func() error {
		return d.Exec(`CREATE SEQUENCE IF NOT EXISTS supplier_order_number_seq`).Error
	})
}
