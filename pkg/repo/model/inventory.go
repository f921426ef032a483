package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type VinylProduct struct {
	BaseModel
	Brand        string          `gorm:"type:varchar(128);not null" json:"brand"`
	Series       string          `gorm:"type:varchar(128)" json:"series"`
	Colour       string          `gorm:"type:varchar(128)" json:"colour"`
	DefaultWidth decimal.Decimal `gorm:"type:numeric(8,2)" json:"default_width"`
	IsActive     bool            `gorm:"not null" json:"is_active"`
}

func (*VinylProduct) TableName() string {
	return "vinyl_products"
}

type VinylDisposition string

const (
	DispositionInStock  VinylDisposition = "in_stock"
	DispositionUsed     VinylDisposition = "used"
	DispositionWaste    VinylDisposition = "waste"
	DispositionReturned VinylDisposition = "returned"
)

// VinylInventory is one physical vinyl piece.
type VinylInventory struct {
	BaseModel
	VinylProductID *int64           `gorm:"index" json:"vinyl_product_id"`
	Brand          string           `gorm:"type:varchar(128)" json:"brand"`
	Series         string           `gorm:"type:varchar(128)" json:"series"`
	Colour         string           `gorm:"type:varchar(128)" json:"colour"`
	Width          decimal.Decimal  `gorm:"type:numeric(8,2)" json:"width"`
	LengthYards    decimal.Decimal  `gorm:"type:numeric(8,2)" json:"length_yards"`
	Disposition    VinylDisposition `gorm:"type:varchar(16);not null;index" json:"disposition"`
	StorageDate    time.Time        `gorm:"type:date" json:"storage_date"`
	UsageDate      *time.Time       `gorm:"type:date" json:"usage_date"`
	UsageNote      string           `gorm:"type:text" json:"usage_note"`
	Location       string           `gorm:"type:varchar(64)" json:"location"`
}

func (*VinylInventory) TableName() string {
	return "vinyl_inventory"
}

// SupplierProduct is a catalogue row that also tracks on-hand stock.
type SupplierProduct struct {
	BaseModel
	SupplierID     int64           `gorm:"not null;index" json:"supplier_id"`
	ArchetypeID    *int64          `gorm:"index" json:"archetype_id"`
	Name           string          `gorm:"type:varchar(255);not null" json:"name"`
	SKU            string          `gorm:"type:varchar(64)" json:"sku"`
	QuantityOnHand decimal.Decimal `gorm:"type:numeric(12,3);not null" json:"quantity_on_hand"`
	Unit           string          `gorm:"type:varchar(32)" json:"unit"`
	IsActive       bool            `gorm:"not null" json:"is_active"`
}

func (*SupplierProduct) TableName() string {
	return "supplier_products"
}

type VinylHold struct {
	BaseModel
	RequirementID int64  `gorm:"not null;uniqueIndex" json:"requirement_id"`
	VinylID       int64  `gorm:"not null;index" json:"vinyl_id"`
	QuantityHeld  string `gorm:"type:varchar(64);not null" json:"quantity_held"`
}

func (*VinylHold) TableName() string {
	return "vinyl_holds"
}

type GeneralInventoryHold struct {
	BaseModel
	RequirementID     int64  `gorm:"not null;uniqueIndex" json:"requirement_id"`
	SupplierProductID int64  `gorm:"not null;index" json:"supplier_product_id"`
	QuantityHeld      string `gorm:"type:varchar(64);not null" json:"quantity_held"`
}

func (*GeneralInventoryHold) TableName() string {
	return "general_inventory_holds"
}

type ConsumptionKind string

const (
	ConsumptionVinyl   ConsumptionKind = "vinyl"
	ConsumptionGeneral ConsumptionKind = "general"
)

// InventoryConsumption is what a hold becomes once its requirement is received.
type InventoryConsumption struct {
	BaseModel
	RequirementID     int64           `gorm:"not null;index" json:"requirement_id"`
	Kind              ConsumptionKind `gorm:"type:varchar(16);not null" json:"kind"`
	VinylID           *int64          `gorm:"index" json:"vinyl_id"`
	SupplierProductID *int64          `gorm:"index" json:"supplier_product_id"`
	Quantity          string          `gorm:"type:varchar(64)" json:"quantity"`
	ConsumedDate      time.Time       `gorm:"type:date;not null" json:"consumed_date"`
}

func (*InventoryConsumption) TableName() string {
	return "inventory_consumptions"
}
