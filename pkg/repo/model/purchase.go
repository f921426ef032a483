package model

import (
	"time"

	"gorm.io/datatypes"
)

type Supplier struct {
	BaseModel
	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	Website  string `gorm:"type:varchar(255)" json:"website"`
	Notes    string `gorm:"type:text" json:"notes"`
	IsActive bool   `gorm:"not null" json:"is_active"`
}

func (*Supplier) TableName() string {
	return "suppliers"
}

type SupplierContact struct {
	BaseModel
	SupplierID int64  `gorm:"not null;index" json:"supplier_id"`
	Name       string `gorm:"type:varchar(128)" json:"name"`
	Email      string `gorm:"type:varchar(255)" json:"email"`
	Phone      string `gorm:"type:varchar(64)" json:"phone"`
	Role       string `gorm:"type:varchar(64)" json:"role"`
	IsPrimary  bool   `gorm:"not null" json:"is_primary"`
}

func (*SupplierContact) TableName() string {
	return "supplier_contacts"
}

type SupplierOrderStatus string

const SupplierOrderSubmitted SupplierOrderStatus = "submitted"

// SupplierOrder is the durable purchase order created by draft submission.
type SupplierOrder struct {
	BaseModel
	SupplierID     int64                      `gorm:"not null;index" json:"supplier_id"`
	OrderNumber    string                     `gorm:"type:varchar(64);not null;uniqueIndex" json:"order_number"`
	DeliveryMethod DeliveryMethod             `gorm:"type:varchar(16);not null" json:"delivery_method"`
	OrderDate      time.Time                  `gorm:"type:date;not null" json:"order_date"`
	Status         SupplierOrderStatus        `gorm:"type:varchar(16);not null" json:"status"`
	RequirementIDs datatypes.JSONSlice[int64] `gorm:"type:jsonb" json:"requirement_ids"`
}

func (*SupplierOrder) TableName() string {
	return "supplier_orders"
}

type EmailStatus string

const (
	EmailPending EmailStatus = "pending"
	EmailSent    EmailStatus = "sent"
	EmailFailed  EmailStatus = "failed"
)

const (
	EmailTypePurchaseOrder = "purchase_order"
	RelatedSupplierOrder   = "supplier_order"
)

type EmailLog struct {
	BaseModel
	EmailType     string                      `gorm:"type:varchar(32);not null" json:"email_type"`
	RelatedToType string                      `gorm:"type:varchar(32);index:idx_email_related" json:"related_to_type"`
	RelatedToID   int64                       `gorm:"index:idx_email_related" json:"related_to_id"`
	ToEmail       string                      `gorm:"type:varchar(255);not null" json:"to_email"`
	CC            datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"cc"`
	BCC           datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"bcc"`
	Subject       string                      `gorm:"type:varchar(255)" json:"subject"`
	Body          string                      `gorm:"type:text" json:"body"`
	Status        EmailStatus                 `gorm:"type:varchar(16);not null;index" json:"status"`
	Error         string                      `gorm:"type:text" json:"error"`
	SentAt        *time.Time                  `json:"sent_at"`
}

func (*EmailLog) TableName() string {
	return "email_logs"
}
