package purchase

import (
	"context"
	"fmt"
	"time"

	"github.com/nexussign/supply/pkg/common/code"
	"github.com/nexussign/supply/pkg/middleware/db"
	"github.com/nexussign/supply/pkg/middleware/logger"
	"github.com/nexussign/supply/pkg/repo"
	"github.com/nexussign/supply/pkg/repo/model"
)

type purchaseImpl struct {
	*db.Datastore
}

func NewPurchaseRepo() repo.PurchaseRepo {
	return &purchaseImpl{Datastore: db.DB()}
}

func NewWithStore(ds *db.Datastore) repo.PurchaseRepo {
	return &purchaseImpl{Datastore: ds}
}

// FormatOrderNumber renders the PO number for day and sequence value seq.
func FormatOrderNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("PO-%s-%04d", day.Format("20060102"), seq%10000)
}

func (p *purchaseImpl) NextOrderNumber(ctx context.Context, day time.Time) (string, error) {
	var seq int64
	if err := p.DBWithContext(ctx).Raw("SELECT nextval('supplier_order_number_seq')").Scan(&seq).Error; err != nil {
		logger.Errorf(ctx, "NextOrderNumber err: %+v", err)
		return "", code.PurchaseOrderCreateErr.WithErr(err)
	}
	return FormatOrderNumber(day, seq), nil
}

func (p *purchaseImpl) CreateSupplierOrder(ctx context.Context, data *model.SupplierOrder) error {
	if err := p.DBWithContext(ctx).Create(data).Error; err != nil {
		logger.Errorf(ctx, "CreateSupplierOrder number: %s err: %+v", data.OrderNumber, err)
		return code.PurchaseOrderCreateErr.WithErr(err)
	}
	return nil
}

func (p *purchaseImpl) CreateEmailLog(ctx context.Context, data *model.EmailLog) error {
	if err := p.DBWithContext(ctx).Create(data).Error; err != nil {
		logger.Errorf(ctx, "CreateEmailLog err: %+v", err)
		return code.CreateDataErr.WithErr(err)
	}
	return nil
}

func (p *purchaseImpl) UpdateEmailStatus(ctx context.Context, id int64, status model.EmailStatus, errMsg string, sentAt *time.Time) error {
	if err := p.DBWithContext(ctx).Model(&model.EmailLog{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"error":      errMsg,
			"sent_at":    sentAt,
			"updated_at": time.Now(),
		}).Error; err != nil {
		logger.Errorf(ctx, "UpdateEmailStatus id: %d err: %+v", id, err)
		return code.UpdateDataErr.WithErr(err)
	}
	return nil
}
