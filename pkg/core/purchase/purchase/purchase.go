package purchase

import (
	"cmp"
	"context"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/nexussign/supply/internal/config"
	"github.com/nexussign/supply/pkg/common/code"
	"github.com/nexussign/supply/pkg/core/notify"
	"github.com/nexussign/supply/pkg/core/notify/events"
	core "github.com/nexussign/supply/pkg/core/purchase"
	"github.com/nexussign/supply/pkg/core/requirement"
	"github.com/nexussign/supply/pkg/middleware/logger"
	"github.com/nexussign/supply/pkg/repo"
	"github.com/nexussign/supply/pkg/repo/mailer"
	"github.com/nexussign/supply/pkg/repo/model"
	"github.com/nexussign/supply/pkg/repo/pgstore"
	"github.com/nexussign/supply/pkg/utils"
	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("github.com/nexussign/supply/pkg/core/purchase")
	meter  = otel.Meter("github.com/nexussign/supply/pkg/core/purchase")

	submittedCounter, _ = meter.Int64Counter("purchase_orders.submitted")
	emailCounter, _     = meter.Int64Counter("purchase_orders.emails")
)

// Sender is the From identity of supplier emails.
type Sender struct {
	Address string
	Name    string
}

type purchaseImpl struct {
	stores *repo.Stores
	mailer repo.Mailer
	center notify.MsgCenter
	sender Sender
	pool   *ants.Pool
	wait   sync.WaitGroup
	now    func() time.Time
}

func New() core.Service {
	conf := config.Global()
	return NewWithStores(pgstore.Default(), mailer.NewMailer(), events.NewEvents(),
		Sender{Address: conf.Mail.FromAddress, Name: conf.Mail.FromName}, conf.Job.EmailPoolSize)
}

func NewWithStores(stores *repo.Stores, m repo.Mailer, center notify.MsgCenter, sender Sender, poolSize int) core.Service {
	if poolSize <= 0 {
		poolSize = ants.DefaultAntsPoolSize
	}
	pool, err := ants.NewPool(poolSize, ants.WithExpiryDuration(10*time.Second))
	if err != nil {
		logger.Errorf(context.Background(), "failed to create email pool, using default err: %+v", err)
		pool, _ = ants.NewPool(ants.DefaultAntsPoolSize)
	}
	return &purchaseImpl{
		stores: stores,
		mailer: m,
		center: center,
		sender: sender,
		pool:   pool,
		now:    time.Now,
	}
}

func (p *purchaseImpl) DraftGroups(ctx context.Context) ([]*core.DraftGroup, error) {
	rows, err := p.stores.Requirements.ListDraftRequirements(ctx)
	if err != nil {
		return nil, err
	}

	groups := make(map[int64]*core.DraftGroup)
	supplierIDs := make([]int64, 0)
	for _, row := range rows {
		sid := *row.SupplierID
		g, ok := groups[sid]
		if !ok {
			g = &core.DraftGroup{Contacts: []*model.SupplierContact{}}
			groups[sid] = g
			supplierIDs = append(supplierIDs, sid)
		}
		g.Requirements = append(g.Requirements, requirement.NewView(row))
	}
	if len(groups) == 0 {
		return []*core.DraftGroup{}, nil
	}

	suppliers, err := p.stores.Suppliers.GetSuppliers(ctx, supplierIDs)
	if err != nil {
		return nil, err
	}
	contacts, err := p.stores.Suppliers.GetContacts(ctx, supplierIDs)
	if err != nil {
		return nil, err
	}

	res := make([]*core.DraftGroup, 0, len(groups))
	for _, sid := range supplierIDs {
		g := groups[sid]
		g.Supplier = suppliers[sid]
		if g.Supplier == nil {
			logger.Warnf(ctx, "draft group references missing supplier: %d", sid)
			g.Supplier = &model.Supplier{BaseModel: model.BaseModel{ID: sid}, Name: fmt.Sprintf("supplier %d", sid)}
		}
		if cs, ok := contacts[sid]; ok {
			g.Contacts = cs
		}
		slices.SortFunc(g.Requirements, func(a, b *requirement.View) int {
			if c := a.EntryDate.Compare(b.EntryDate); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		})
		res = append(res, g)
	}
	slices.SortFunc(res, func(a, b *core.DraftGroup) int {
		if c := cmp.Compare(strings.ToLower(a.Supplier.Name), strings.ToLower(b.Supplier.Name)); c != 0 {
			return c
		}
		return cmp.Compare(a.Supplier.ID, b.Supplier.ID)
	})
	return res, nil
}

func (p *purchaseImpl) Unassigned(ctx context.Context) ([]*requirement.View, error) {
	rows, err := p.stores.Requirements.ListUnassigned(ctx)
	if err != nil {
		return nil, err
	}
	return requirement.NewViews(rows), nil
}

func (p *purchaseImpl) Submit(ctx context.Context, req *core.SubmitReq) (*core.SubmitResp, error) {
	ctx, span := tracer.Start(ctx, "purchase.Submit", trace.WithAttributes(
		attribute.Int64("supplier_id", req.SupplierID),
		attribute.Int64Slice("requirement_ids", req.RequirementIDs),
	))
	defer span.End()

	ids, err := validateSubmit(req)
	if err != nil {
		return nil, err
	}

	today := utils.TruncateDay(p.now())
	resp := &core.SubmitResp{}
	var emailLog *model.EmailLog
	err = p.stores.Tx.ExecTx(ctx, func(txCtx context.Context) error {
		supplier, err := p.stores.Suppliers.GetSupplier(txCtx, req.SupplierID)
		if err != nil {
			return err
		}

		rows, err := p.stores.Requirements.LockRequirements(txCtx, ids)
		if err != nil {
			return err
		}
		if len(rows) != len(ids) {
			return code.DraftPOStaleErr.WithMsgf("%d of %d requirements no longer exist", len(ids)-len(rows), len(ids))
		}
		for _, row := range rows {
			if row.SupplierID == nil || *row.SupplierID != req.SupplierID {
				return code.DraftPOStaleErr.WithMsgf("requirement %d moved to another supplier", row.ID)
			}
			if row.SupplierOrderNumber != nil {
				return code.DraftPOStaleErr.WithMsgf("requirement %d is already on %s", row.ID, *row.SupplierOrderNumber)
			}
		}

		number, err := p.stores.Purchases.NextOrderNumber(txCtx, today)
		if err != nil {
			return err
		}
		order := &model.SupplierOrder{
			SupplierID:     req.SupplierID,
			OrderNumber:    number,
			DeliveryMethod: req.DeliveryMethod,
			OrderDate:      today,
			Status:         model.SupplierOrderSubmitted,
			RequirementIDs: ids,
		}
		if err := p.stores.Purchases.CreateSupplierOrder(txCtx, order); err != nil {
			return err
		}

		method := req.DeliveryMethod
		for _, row := range rows {
			row.SupplierOrderID = &order.ID
			row.SupplierOrderNumber = &order.OrderNumber
			// a received or cancelled row only takes the PO link; its lifecycle is settled
			if !row.Status.Closed() {
				row.OrderedDate = &today
				row.DeliveryMethod = &method
				row.Status = model.StatusOrdered
			}
			if err := p.stores.Requirements.SaveRequirement(txCtx, row); err != nil {
				return err
			}
		}

		body := req.Email.Body
		if strings.TrimSpace(body) == "" {
			body = orderBody(supplier, order, rows)
		}
		emailLog = &model.EmailLog{
			EmailType:     model.EmailTypePurchaseOrder,
			RelatedToType: model.RelatedSupplierOrder,
			RelatedToID:   order.ID,
			ToEmail:       strings.TrimSpace(req.Email.To),
			CC:            req.Email.CC,
			BCC:           req.Email.BCC,
			Subject:       req.Email.Subject,
			Body:          body,
			Status:        model.EmailPending,
		}
		if err := p.stores.Purchases.CreateEmailLog(txCtx, emailLog); err != nil {
			return err
		}

		resp.Order = order
		resp.Requirements = requirement.NewViews(rows)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		logger.Warnf(ctx, "submit draft po supplier: %d err: %+v", req.SupplierID, err)
		return nil, err
	}

	submittedCounter.Add(ctx, 1)
	resp.EmailLogID = emailLog.ID
	p.dispatch(ctx, emailLog)

	if err := notify.Changed(ctx, p.center, notify.ChangeSubmit, ids...); err != nil {
		logger.Warnf(ctx, "broadcast po %s err: %+v", resp.Order.OrderNumber, err)
	}
	return resp, nil
}

func (p *purchaseImpl) Ready(_ context.Context) error {
	if p.pool.IsClosed() {
		return code.EmailDispatchRejectErr.WithMsg("email dispatch pool is closed")
	}
	return nil
}

func (p *purchaseImpl) Close(_ context.Context) error {
	p.wait.Wait()
	p.pool.Release()
	return nil
}

// dispatch sends the supplier email after commit. The request context may already be
// gone by then, so the send runs detached from its cancellation.
func (p *purchaseImpl) dispatch(ctx context.Context, emailLog *model.EmailLog) {
	bg := context.WithoutCancel(ctx)
	msg := &repo.MailMessage{
		FromAddress: p.sender.Address,
		FromName:    p.sender.Name,
		To:          emailLog.ToEmail,
		CC:          emailLog.CC,
		BCC:         emailLog.BCC,
		Subject:     emailLog.Subject,
		Body:        emailLog.Body,
	}

	p.wait.Add(1)
	if err := p.pool.Submit(func() {
		defer p.wait.Done()
		if err := utils.SafelyRun(func() { p.send(bg, emailLog.ID, msg) }); err != nil {
			logger.Errorf(bg, "send po email panic log: %d err: %+v", emailLog.ID, err)
			p.record(bg, emailLog.ID, model.EmailFailed, err.Error())
		}
	}); err != nil {
		p.wait.Done()
		logger.Errorf(bg, "submit po email task log: %d err: %+v", emailLog.ID, err)
		p.record(bg, emailLog.ID, model.EmailFailed, code.EmailDispatchRejectErr.WithErr(err).Error())
	}
}

func (p *purchaseImpl) send(ctx context.Context, logID int64, msg *repo.MailMessage) {
	if err := p.mailer.Send(ctx, msg); err != nil {
		logger.Warnf(ctx, "send po email log: %d to: %s err: %+v", logID, msg.To, err)
		p.record(ctx, logID, model.EmailFailed, err.Error())
		return
	}
	p.record(ctx, logID, model.EmailSent, "")
}

func (p *purchaseImpl) record(ctx context.Context, logID int64, status model.EmailStatus, errMsg string) {
	emailCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(status))))
	var sentAt *time.Time
	if status == model.EmailSent {
		now := p.now()
		sentAt = &now
	}
	if err := p.stores.Purchases.UpdateEmailStatus(ctx, logID, status, errMsg, sentAt); err != nil {
		logger.Errorf(ctx, "record email status log: %d status: %s err: %+v", logID, status, err)
	}
}

func validateSubmit(req *core.SubmitReq) ([]int64, error) {
	if req.SupplierID <= 0 {
		return nil, code.SupplierNotExternalErr.WithMsgf("supplier %d cannot receive a purchase order", req.SupplierID)
	}
	ids := utils.Distinct(utils.FilterSlice(req.RequirementIDs, func(id int64) (int64, bool) { return id, id > 0 }))
	if len(ids) == 0 {
		return nil, code.DraftPOEmptyErr
	}
	if !req.DeliveryMethod.Valid() {
		return nil, code.DeliveryMethodErr.WithMsgf("unknown delivery method %q", req.DeliveryMethod)
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(req.Email.To)); err != nil {
		return nil, code.EmailFieldsErr.WithMsgf("invalid to address %q", req.Email.To)
	}
	if strings.TrimSpace(req.Email.Subject) == "" {
		return nil, code.EmailFieldsErr.WithMsg("subject is required")
	}
	for _, list := range [][]string{req.Email.CC, req.Email.BCC} {
		for _, addr := range list {
			if _, err := mail.ParseAddress(addr); err != nil {
				return nil, code.EmailFieldsErr.WithMsgf("invalid copy address %q", addr)
			}
		}
	}
	return ids, nil
}

func orderBody(supplier *model.Supplier, order *model.SupplierOrder, rows []*model.MaterialRequirement) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", supplier.Name)
	fmt.Fprintf(&b, "Please find purchase order %s dated %s (%s).\n\n",
		order.OrderNumber, order.OrderDate.Format(time.DateOnly), order.DeliveryMethod)
	for _, row := range rows {
		fmt.Fprintf(&b, "- %s %s %s\n", row.QuantityOrdered.String(), row.Unit, describe(row))
	}
	b.WriteString("\nThank you.\n")
	return b.String()
}

func describe(row *model.MaterialRequirement) string {
	switch {
	case row.CustomProductType != nil:
		return *row.CustomProductType
	case row.SupplierProductID != nil:
		return fmt.Sprintf("supplier product #%d", *row.SupplierProductID)
	case row.VinylProductID != nil:
		return fmt.Sprintf("vinyl product #%d", *row.VinylProductID)
	}
	return fmt.Sprintf("requirement #%d", row.ID)
}
