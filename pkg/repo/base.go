package repo

import "context"

// Transactor runs fn in a transaction carried by txCtx. Nested calls open savepoints.
type Transactor interface {
	ExecTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

// Stores bundles the repositories a core service needs.
type Stores struct {
	Tx           Transactor
	Requirements RequirementRepo
	Inventory    InventoryRepo
	Holds        HoldRepo
	Suppliers    SupplierRepo
	Purchases    PurchaseRepo
}
