package requirement

import (
	"strings"

	"github.com/nexussign/supply/pkg/common/code"
	"github.com/nexussign/supply/pkg/repo/model"
	"github.com/shopspring/decimal"
)

// Origin is either a customer order or stock replenishment.
type Origin interface{ isOrigin() }

type CustomerOrder struct{ OrderID int64 }

type StockReplenishment struct{}

func (CustomerOrder) isOrigin()      {}
func (StockReplenishment) isOrigin() {}

// Product is one of a catalogued vinyl, a supplier product or free text.
type Product interface{ isProduct() }

type VinylProduct struct{ VinylProductID int64 }

type SupplierProduct struct{ SupplierProductID int64 }

type CustomProduct struct{ Description string }

func (VinylProduct) isProduct()    {}
func (SupplierProduct) isProduct() {}
func (CustomProduct) isProduct()   {}

// Hold is nil for a holdless requirement.
type Hold interface{ isHold() }

type VinylHold struct{ VinylID int64 }

type GeneralHold struct{ SupplierProductID int64 }

func (VinylHold) isHold()   {}
func (GeneralHold) isHold() {}

// SupplierRef wraps the nullable supplier id.
type SupplierRef struct{ id *int64 }

func NewSupplierRef(id *int64) SupplierRef {
	if id == nil {
		return SupplierRef{}
	}
	v := *id
	return SupplierRef{id: &v}
}

func (s SupplierRef) None() bool { return s.id == nil }

// External returns the vendor id when the supplier is a real vendor.
func (s SupplierRef) External() (int64, bool) {
	if s.id == nil || *s.id <= 0 {
		return 0, false
	}
	return *s.id, true
}

func (s SupplierRef) InStock() bool {
	return s.id != nil && *s.id == model.SupplierInStock
}

func (s SupplierRef) Sentinel() bool {
	return s.id != nil && model.IsSentinelSupplier(*s.id)
}

// ValidSupplierID accepts vendor ids and the internal sourcing sentinels.
func ValidSupplierID(id int64) bool {
	return id > 0 || model.IsSentinelSupplier(id)
}

// Requirement is the validated view of a MaterialRequirement row.
type Requirement struct {
	ID          int64
	Origin      Origin
	ArchetypeID *int64
	Product     Product
	Quantity    decimal.Decimal
	Unit        string
	Supplier    SupplierRef
	Hold        Hold
	Status      model.RequirementStatus
}

func (r *Requirement) IsVinyl() bool {
	if _, ok := r.Product.(VinylProduct); ok {
		return true
	}
	return r.ArchetypeID != nil && *r.ArchetypeID == model.ArchetypeVinyl
}

// FromModel rejects rows that break the exclusivity rules.
func FromModel(m *model.MaterialRequirement) (*Requirement, error) {
	r := &Requirement{
		ID:          m.ID,
		ArchetypeID: m.ArchetypeID,
		Quantity:    m.QuantityOrdered,
		Unit:        m.Unit,
		Supplier:    NewSupplierRef(m.SupplierID),
		Status:      m.Status,
	}

	switch {
	case m.OrderID != nil && m.IsStockItem:
		return nil, code.RequirementInvalidErr.WithMsg("requirement cannot be both a customer order and a stock item")
	case m.OrderID != nil:
		r.Origin = CustomerOrder{OrderID: *m.OrderID}
	case m.IsStockItem:
		r.Origin = StockReplenishment{}
	default:
		return nil, code.RequirementInvalidErr.WithMsg("requirement needs an order or the stock item flag")
	}

	products := 0
	if m.VinylProductID != nil {
		products++
		r.Product = VinylProduct{VinylProductID: *m.VinylProductID}
	}
	if m.SupplierProductID != nil {
		products++
		r.Product = SupplierProduct{SupplierProductID: *m.SupplierProductID}
	}
	if m.CustomProductType != nil {
		if strings.TrimSpace(*m.CustomProductType) == "" {
			return nil, code.RequirementInvalidErr.WithMsg("custom product type is empty")
		}
		products++
		r.Product = CustomProduct{Description: *m.CustomProductType}
	}
	if products != 1 {
		return nil, code.RequirementInvalidErr.WithMsg("requirement needs exactly one of vinyl product, supplier product or custom product type")
	}
	if _, ok := r.Product.(VinylProduct); ok && (m.ArchetypeID == nil || *m.ArchetypeID != model.ArchetypeVinyl) {
		return nil, code.RequirementInvalidErr.WithMsg("vinyl product requires the vinyl archetype")
	}

	switch {
	case m.HeldVinylID != nil && m.HeldSupplierProductID != nil:
		return nil, code.RequirementInvalidErr.WithMsg("requirement holds both a vinyl unit and a general product")
	case m.HeldVinylID != nil:
		r.Hold = VinylHold{VinylID: *m.HeldVinylID}
	case m.HeldSupplierProductID != nil:
		r.Hold = GeneralHold{SupplierProductID: *m.HeldSupplierProductID}
	}

	if m.QuantityOrdered.IsNegative() {
		return nil, code.RequirementInvalidErr.WithMsg("quantity ordered is negative")
	}
	if m.SupplierID != nil && !ValidSupplierID(*m.SupplierID) {
		return nil, code.RequirementInvalidErr.WithMsgf("supplier id %d is not a vendor or a sourcing sentinel", *m.SupplierID)
	}
	if _, ext := r.Supplier.External(); ext && r.Hold != nil {
		return nil, code.VendorHoldConflictErr
	}
	if !m.Status.Valid() {
		return nil, code.RequirementInvalidErr.WithMsgf("unknown status %q", m.Status)
	}
	if m.DeliveryMethod != nil && !m.DeliveryMethod.Valid() {
		return nil, code.DeliveryMethodErr.WithMsgf("unknown delivery method %q", *m.DeliveryMethod)
	}
	return r, nil
}
