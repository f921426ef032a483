package repo

import (
	"context"
	"time"

	"github.com/nexussign/supply/pkg/repo/model"
	"github.com/shopspring/decimal"
)

type VinylStockQuery struct {
	VinylProductID *int64
	Limit          int
}

type ProductStockQuery struct {
	SupplierProductID *int64
	ArchetypeID       *int64
	Limit             int
}

type InventoryRepo interface {
	GetVinyl(ctx context.Context, id int64) (*model.VinylInventory, error)
	LockVinyl(ctx context.Context, id int64) (*model.VinylInventory, error)
	MarkVinylUsed(ctx context.Context, id int64, usageDate time.Time, note string) error
	// ListAvailableVinyl returns in-stock pieces that no whole-piece hold has claimed.
	ListAvailableVinyl(ctx context.Context, q VinylStockQuery) ([]*model.VinylInventory, error)

	GetSupplierProduct(ctx context.Context, id int64) (*model.SupplierProduct, error)
	LockSupplierProduct(ctx context.Context, id int64) (*model.SupplierProduct, error)
	// ListAvailableProducts returns active products with positive on-hand quantity.
	ListAvailableProducts(ctx context.Context, q ProductStockQuery) ([]*model.SupplierProduct, error)
	// ConsumeProductStock lowers on-hand quantity, never below zero.
	ConsumeProductStock(ctx context.Context, id int64, qty decimal.Decimal) error

	CreateConsumption(ctx context.Context, data *model.InventoryConsumption) error
}
