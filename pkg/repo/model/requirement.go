package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reserved supplier ids. A non-positive supplier id means the material is sourced internally.
const (
	SupplierInStock          int64 = -1
	SupplierInHouse          int64 = -2
	SupplierCustomerProvided int64 = -3
)

// ArchetypeVinyl marks a requirement whose product is a vinyl roll.
const ArchetypeVinyl int64 = -1

// WholePiece is the quantity token for a hold that claims the entire unit.
const WholePiece = "whole piece"

func IsSentinelSupplier(id int64) bool {
	return id == SupplierInStock || id == SupplierInHouse || id == SupplierCustomerProvided
}

type RequirementStatus string

const (
	StatusPending         RequirementStatus = "pending"
	StatusOrdered         RequirementStatus = "ordered"
	StatusBackordered     RequirementStatus = "backordered"
	StatusPartialReceived RequirementStatus = "partial_received"
	StatusReceived        RequirementStatus = "received"
	StatusCancelled       RequirementStatus = "cancelled"
)

func (s RequirementStatus) Valid() bool {
	switch s {
	case StatusPending, StatusOrdered, StatusBackordered, StatusPartialReceived, StatusReceived, StatusCancelled:
		return true
	}
	return false
}

// Closed statuses take the requirement out of sourcing.
func (s RequirementStatus) Closed() bool {
	return s == StatusReceived || s == StatusCancelled
}

type DeliveryMethod string

const (
	DeliveryShipping DeliveryMethod = "shipping"
	DeliveryPickup   DeliveryMethod = "pickup"
)

func (d DeliveryMethod) Valid() bool {
	return d == DeliveryShipping || d == DeliveryPickup
}

type MaterialRequirement struct {
	BaseModel
	OrderID               *int64            `gorm:"index" json:"order_id"`
	IsStockItem           bool              `gorm:"not null" json:"is_stock_item"`
	ArchetypeID           *int64            `gorm:"index" json:"archetype_id"`
	VinylProductID        *int64            `gorm:"index" json:"vinyl_product_id"`
	SupplierProductID     *int64            `gorm:"index" json:"supplier_product_id"`
	CustomProductType     *string           `gorm:"type:varchar(255)" json:"custom_product_type"`
	QuantityOrdered       decimal.Decimal   `gorm:"type:numeric(12,3);not null" json:"quantity_ordered"`
	Unit                  string            `gorm:"type:varchar(32)" json:"unit"`
	SupplierID            *int64            `gorm:"index" json:"supplier_id"`
	EntryDate             time.Time         `gorm:"type:date;not null" json:"entry_date"`
	OrderedDate           *time.Time        `gorm:"type:date" json:"ordered_date"`
	ReceivedDate          *time.Time        `gorm:"type:date" json:"received_date"`
	Status                RequirementStatus `gorm:"type:varchar(32);not null;index" json:"status"`
	DeliveryMethod        *DeliveryMethod   `gorm:"type:varchar(16)" json:"delivery_method"`
	SupplierOrderID       *int64            `gorm:"index" json:"supplier_order_id"`
	SupplierOrderNumber   *string           `gorm:"type:varchar(64);index" json:"supplier_order_number"`
	HeldVinylID           *int64            `gorm:"index" json:"held_vinyl_id"`
	HeldSupplierProductID *int64            `gorm:"index" json:"held_supplier_product_id"`
	Notes                 string            `gorm:"type:text" json:"notes"`
}

func (*MaterialRequirement) TableName() string {
	return "material_requirements"
}

// Held reports whether either hold linkage is set.
func (m *MaterialRequirement) Held() bool {
	return m.HeldVinylID != nil || m.HeldSupplierProductID != nil
}

// Clone copies the row including every pointer target.
func (m *MaterialRequirement) Clone() *MaterialRequirement {
	if m == nil {
		return nil
	}
	c := *m
	c.OrderID = clonePtr(m.OrderID)
	c.ArchetypeID = clonePtr(m.ArchetypeID)
	c.VinylProductID = clonePtr(m.VinylProductID)
	c.SupplierProductID = clonePtr(m.SupplierProductID)
	c.CustomProductType = clonePtr(m.CustomProductType)
	c.SupplierID = clonePtr(m.SupplierID)
	c.OrderedDate = clonePtr(m.OrderedDate)
	c.ReceivedDate = clonePtr(m.ReceivedDate)
	c.DeliveryMethod = clonePtr(m.DeliveryMethod)
	c.SupplierOrderID = clonePtr(m.SupplierOrderID)
	c.SupplierOrderNumber = clonePtr(m.SupplierOrderNumber)
	c.HeldVinylID = clonePtr(m.HeldVinylID)
	c.HeldSupplierProductID = clonePtr(m.HeldSupplierProductID)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
