package requirement

import (
	"time"

	"github.com/nexussign/supply/pkg/repo/model"
)

type ComputedStatus string

const (
	ComputedPending         ComputedStatus = "pending"
	ComputedOrderedPickup   ComputedStatus = "ordered_pickup"
	ComputedOrderedShipping ComputedStatus = "ordered_shipping"
	ComputedToBePicked      ComputedStatus = "to_be_picked"
	ComputedBackordered     ComputedStatus = "backordered"
	ComputedPartialReceived ComputedStatus = "partial_received"
	ComputedFulfilled       ComputedStatus = "fulfilled"
	ComputedCancelled       ComputedStatus = "cancelled"
)

var AllComputedStatuses = []ComputedStatus{
	ComputedPending,
	ComputedOrderedPickup,
	ComputedOrderedShipping,
	ComputedToBePicked,
	ComputedBackordered,
	ComputedPartialReceived,
	ComputedFulfilled,
	ComputedCancelled,
}

// StatusFields is the snapshot the computed status depends on.
type StatusFields struct {
	Status         model.RequirementStatus
	ReceivedDate   *time.Time
	SupplierID     *int64
	OrderedDate    *time.Time
	DeliveryMethod *model.DeliveryMethod
}

func FieldsOf(m *model.MaterialRequirement) StatusFields {
	return StatusFields{
		Status:         m.Status,
		ReceivedDate:   m.ReceivedDate,
		SupplierID:     m.SupplierID,
		OrderedDate:    m.OrderedDate,
		DeliveryMethod: m.DeliveryMethod,
	}
}

// DeriveStatus maps stored fields to the displayed status. The first matching rule wins.
// Terminal states need received_date so a stale status alone never closes a requirement.
func DeriveStatus(f StatusFields) ComputedStatus {
	switch {
	case f.Status == model.StatusReceived && f.ReceivedDate != nil:
		return ComputedFulfilled
	case f.Status == model.StatusCancelled && f.ReceivedDate != nil:
		return ComputedCancelled
	case f.Status == model.StatusBackordered:
		return ComputedBackordered
	case f.Status == model.StatusPartialReceived:
		return ComputedPartialReceived
	case f.SupplierID != nil && *f.SupplierID == model.SupplierInStock:
		return ComputedToBePicked
	case f.OrderedDate != nil && f.DeliveryMethod != nil:
		switch *f.DeliveryMethod {
		case model.DeliveryPickup:
			return ComputedOrderedPickup
		case model.DeliveryShipping:
			return ComputedOrderedShipping
		}
	}
	return ComputedPending
}

func Derive(m *model.MaterialRequirement) ComputedStatus {
	return DeriveStatus(FieldsOf(m))
}
