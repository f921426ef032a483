package pgstore

import (
	"github.com/nexussign/supply/pkg/middleware/db"
	"github.com/nexussign/supply/pkg/repo"
	"github.com/nexussign/supply/pkg/repo/hold"
	"github.com/nexussign/supply/pkg/repo/inventory"
	"github.com/nexussign/supply/pkg/repo/purchase"
	"github.com/nexussign/supply/pkg/repo/requirement"
	"github.com/nexussign/supply/pkg/repo/supplier"
)

// New binds every gorm repository to ds.
func New(ds *db.Datastore) *repo.Stores {
	return &repo.Stores{
		Tx:           ds,
		Requirements: requirement.NewWithStore(ds),
		Inventory:    inventory.NewWithStore(ds),
		Holds:        hold.NewWithStore(ds),
		Suppliers:    supplier.NewWithStore(ds),
		Purchases:    purchase.NewWithStore(ds),
	}
}

// Default binds to the process datastore opened by db.InitPostgres.
func Default() *repo.Stores {
	return New(db.DB())
}
