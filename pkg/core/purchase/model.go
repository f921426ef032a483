package purchase

import (
	"github.com/nexussign/supply/pkg/core/requirement"
	"github.com/nexussign/supply/pkg/repo/model"
)

// DraftGroup is the live draft purchase order for one supplier. It is recomputed on
// every read and never stored.
type DraftGroup struct {
	Supplier     *model.Supplier          `json:"supplier"`
	Contacts     []*model.SupplierContact `json:"contacts"`
	Requirements []*requirement.View      `json:"requirements"`
}

// PrimaryEmail returns the address the order email defaults to.
func (g *DraftGroup) PrimaryEmail() string {
	for _, c := range g.Contacts {
		if c.Email != "" {
			return c.Email
		}
	}
	return ""
}

type EmailFields struct {
	To      string   `json:"to"`
	CC      []string `json:"cc"`
	BCC     []string `json:"bcc"`
	Subject string   `json:"subject"`
	// Body is generated from the order lines when empty.
	Body string `json:"body"`
}

type SubmitReq struct {
	SupplierID     int64                `json:"supplier_id"`
	RequirementIDs []int64              `json:"requirement_ids"`
	DeliveryMethod model.DeliveryMethod `json:"delivery_method"`
	Email          EmailFields          `json:"email"`
}

type SubmitResp struct {
	Order        *model.SupplierOrder `json:"order"`
	EmailLogID   int64                `json:"email_log_id"`
	Requirements []*requirement.View  `json:"requirements"`
}
