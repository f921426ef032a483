package repo

import (
	"context"
	"time"

	"github.com/nexussign/supply/pkg/repo/model"
)

type SupplierRepo interface {
	GetSupplier(ctx context.Context, id int64) (*model.Supplier, error)
	GetSuppliers(ctx context.Context, ids []int64) (map[int64]*model.Supplier, error)
	// GetContacts groups contacts by supplier, primary contact first.
	GetContacts(ctx context.Context, supplierIDs []int64) (map[int64][]*model.SupplierContact, error)
}

type PurchaseRepo interface {
	// NextOrderNumber returns PO-YYYYMMDD-NNNN for day.
	NextOrderNumber(ctx context.Context, day time.Time) (string, error)
	CreateSupplierOrder(ctx context.Context, data *model.SupplierOrder) error
	CreateEmailLog(ctx context.Context, data *model.EmailLog) error
	UpdateEmailStatus(ctx context.Context, id int64, status model.EmailStatus, errMsg string, sentAt *time.Time) error
}

type MailMessage struct {
	FromAddress string
	FromName    string
	To          string
	CC          []string
	BCC         []string
	Subject     string
	Body        string
}

type Mailer interface {
	Send(ctx context.Context, msg *MailMessage) error
}

type Locker interface {
	// Acquire fails with code.UnitBusyErr while another holder owns key.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context), err error)
}
