package receipt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nexussign/supply/internal/config"
	"github.com/nexussign/supply/pkg/common/code"
	"github.com/nexussign/supply/pkg/core/hold"
	"github.com/nexussign/supply/pkg/core/notify"
	"github.com/nexussign/supply/pkg/core/notify/events"
	core "github.com/nexussign/supply/pkg/core/receipt"
	"github.com/nexussign/supply/pkg/core/requirement"
	"github.com/nexussign/supply/pkg/middleware/logger"
	"github.com/nexussign/supply/pkg/repo"
	"github.com/nexussign/supply/pkg/repo/lock"
	"github.com/nexussign/supply/pkg/repo/model"
	"github.com/nexussign/supply/pkg/repo/pgstore"
	"github.com/nexussign/supply/pkg/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("github.com/nexussign/supply/pkg/core/receipt")
	meter  = otel.Meter("github.com/nexussign/supply/pkg/core/receipt")

	itemsCounter, _ = meter.Int64Counter("receipts.items")
)

type receiptImpl struct {
	stores  *repo.Stores
	ledger  *hold.Ledger
	locker  repo.Locker
	center  notify.MsgCenter
	lockTTL time.Duration
	now     func() time.Time
}

func New() core.Service {
	return NewWithStores(pgstore.Default(), lock.NewLocker(), events.NewEvents(), config.Global().Job.ReceiptLockTTL)
}

func NewWithStores(stores *repo.Stores, locker repo.Locker, center notify.MsgCenter, lockTTL time.Duration) core.Service {
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}
	return &receiptImpl{
		stores:  stores,
		ledger:  hold.NewLedger(stores),
		locker:  locker,
		center:  center,
		lockTTL: lockTTL,
		now:     time.Now,
	}
}

func (r *receiptImpl) OtherHolds(ctx context.Context, req *core.OtherHoldsReq) ([]*core.OtherHold, error) {
	if _, err := r.stores.Requirements.GetRequirement(ctx, req.RequirementID); err != nil {
		return nil, err
	}
	holds, err := r.stores.Holds.ListVinylHolds(ctx, req.VinylID)
	if err != nil {
		return nil, err
	}
	holds = utils.FilterSlice(holds, func(h *model.VinylHold) (*model.VinylHold, bool) {
		return h, h.RequirementID != req.RequirementID
	})

	ids := utils.FilterSlice(holds, func(h *model.VinylHold) (int64, bool) { return h.RequirementID, true })
	rows, err := r.stores.Requirements.GetRequirements(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*model.MaterialRequirement, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	res := make([]*core.OtherHold, 0, len(holds))
	for _, h := range holds {
		item := &core.OtherHold{
			RequirementID: h.RequirementID,
			VinylID:       h.VinylID,
			QuantityHeld:  h.QuantityHeld,
			HeldAt:        h.CreatedAt,
		}
		if row, ok := byID[h.RequirementID]; ok {
			item.Requirement = requirement.NewView(row)
		}
		res = append(res, item)
	}
	return res, nil
}

func (r *receiptImpl) Receive(ctx context.Context, req *core.ReceiveReq) (*core.ReceiveResp, error) {
	ctx, span := tracer.Start(ctx, "receipt.Receive", trace.WithAttributes(
		attribute.Int64("requirement_id", req.RequirementID),
		attribute.Int64Slice("also_receive", req.AlsoReceive),
	))
	defer span.End()

	on := utils.TruncateDay(r.now())
	if req.ReceivedDate != nil {
		on = utils.TruncateDay(*req.ReceivedDate)
	}
	also := utils.Distinct(req.AlsoReceive)
	if utils.Contains(also, req.RequirementID) {
		return nil, code.NotCompetingErr.WithMsg("the primary requirement cannot be in its own receive subset")
	}

	primary, err := r.stores.Requirements.GetRequirement(ctx, req.RequirementID)
	if err != nil {
		return nil, err
	}

	var resp *core.ReceiveResp
	if primary.HeldVinylID == nil {
		if len(also) > 0 {
			return nil, code.NotCompetingErr.WithMsgf("requirement %d holds no vinyl piece", req.RequirementID)
		}
		resp, err = r.receivePlain(ctx, req.RequirementID, on)
	} else {
		resp, err = r.receiveVinyl(ctx, req.RequirementID, *primary.HeldVinylID, also, on)
	}
	if err != nil {
		span.RecordError(err)
		logger.Warnf(ctx, "receive requirement: %d err: %+v", req.RequirementID, err)
		return nil, err
	}

	ids := []int64{req.RequirementID}
	for _, it := range resp.Items {
		ids = append(ids, it.RequirementID)
	}
	itemsCounter.Add(ctx, int64(len(ids)), metric.WithAttributes(attribute.Bool("vinyl", resp.VinylID != nil)))
	if err := notify.Changed(ctx, r.center, notify.ChangeReceive, ids...); err != nil {
		logger.Warnf(ctx, "broadcast receipt %v err: %+v", ids, err)
	}
	return resp, nil
}

func (r *receiptImpl) receivePlain(ctx context.Context, id int64, on time.Time) (*core.ReceiveResp, error) {
	resp := &core.ReceiveResp{Items: []*core.ItemResult{}}
	err := r.stores.Tx.ExecTx(ctx, func(txCtx context.Context) error {
		row, err := r.lockOpen(txCtx, id)
		if err != nil {
			return err
		}
		if row.HeldVinylID != nil {
			return code.StockUnavailableErr.WithMsgf("requirement %d picked up a vinyl hold, retry the receipt", id)
		}
		if err := r.markReceived(txCtx, row, on, false); err != nil {
			return err
		}
		resp.Primary = requirement.NewView(row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (r *receiptImpl) receiveVinyl(ctx context.Context, id, vinylID int64, also []int64, on time.Time) (*core.ReceiveResp, error) {
	release, err := r.locker.Acquire(ctx, fmt.Sprintf("receipt:vinyl:%d", vinylID), r.lockTTL)
	if err != nil {
		return nil, err
	}
	defer release(context.WithoutCancel(ctx))

	resp := &core.ReceiveResp{VinylID: &vinylID, Items: []*core.ItemResult{}}
	err = r.stores.Tx.ExecTx(ctx, func(txCtx context.Context) error {
		row, err := r.lockOpen(txCtx, id)
		if err != nil {
			return err
		}
		if row.HeldVinylID == nil || *row.HeldVinylID != vinylID {
			return code.StockUnavailableErr.WithMsgf("requirement %d no longer holds vinyl %d", id, vinylID)
		}

		unit, err := r.stores.Inventory.LockVinyl(txCtx, vinylID)
		if err != nil {
			return err
		}
		if unit.Disposition != model.DispositionInStock {
			return code.UnitConsumedErr.WithMsgf("vinyl %d is %s", vinylID, unit.Disposition)
		}

		holds, err := r.stores.Holds.ListVinylHolds(txCtx, vinylID)
		if err != nil {
			return err
		}
		others := utils.FilterSlice(holds, func(h *model.VinylHold) (int64, bool) {
			return h.RequirementID, h.RequirementID != id
		})
		for _, a := range also {
			if !utils.Contains(others, a) {
				return code.NotCompetingErr.WithMsgf("requirement %d does not hold vinyl %d", a, vinylID)
			}
		}

		if err := r.markReceived(txCtx, row, on, true); err != nil {
			return err
		}
		resp.Primary = requirement.NewView(row)

		for _, other := range others {
			if utils.Contains(also, other) {
				resp.Items = append(resp.Items, r.receiveMember(txCtx, other, vinylID, on))
			} else {
				resp.Items = append(resp.Items, r.releaseMember(txCtx, other, vinylID))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// receiveMember receives one selected competitor in its own savepoint. A failure is
// reported on the item and the member's hold is released instead.
func (r *receiptImpl) receiveMember(ctx context.Context, id, vinylID int64, on time.Time) *core.ItemResult {
	item := &core.ItemResult{RequirementID: id, Action: core.ActionReceived}
	err := r.stores.Tx.ExecTx(ctx, func(txCtx context.Context) error {
		row, err := r.lockOpen(txCtx, id)
		if err != nil {
			return err
		}
		if row.HeldVinylID == nil || *row.HeldVinylID != vinylID {
			return code.NotCompetingErr.WithMsgf("requirement %d no longer holds vinyl %d", id, vinylID)
		}
		return r.markReceived(txCtx, row, on, false)
	})
	if err == nil {
		item.OK = true
		return item
	}

	logger.Warnf(ctx, "receive competing requirement: %d vinyl: %d err: %+v", id, vinylID, err)
	fillErr(item, err)
	if rel := r.releaseMember(ctx, id, vinylID); rel.OK {
		item.Released = true
	}
	return item
}

func (r *receiptImpl) releaseMember(ctx context.Context, id, vinylID int64) *core.ItemResult {
	item := &core.ItemResult{RequirementID: id, Action: core.ActionReleased}
	err := r.stores.Tx.ExecTx(ctx, func(txCtx context.Context) error {
		rows, err := r.stores.Requirements.LockRequirements(txCtx, []int64{id})
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return code.RequirementNotFound.WithMsgf("requirement %d not found", id)
		}
		row := rows[0]
		if row.HeldVinylID == nil || *row.HeldVinylID != vinylID {
			// already off this piece; only the orphan hold row can remain
			return r.stores.Holds.DeleteVinylHold(txCtx, id)
		}
		if err := r.ledger.Release(txCtx, row); err != nil {
			return err
		}
		return r.stores.Requirements.SaveRequirement(txCtx, row)
	})
	if err != nil {
		logger.Errorf(ctx, "release competing requirement: %d vinyl: %d err: %+v", id, vinylID, err)
		fillErr(item, err)
		return item
	}
	item.OK = true
	item.Released = true
	return item
}

func (r *receiptImpl) lockOpen(ctx context.Context, id int64) (*model.MaterialRequirement, error) {
	rows, err := r.stores.Requirements.LockRequirements(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, code.RequirementNotFound.WithMsgf("requirement %d not found", id)
	}
	if rows[0].Status.Closed() {
		return nil, code.RequirementClosedErr.WithMsgf("requirement %d is already %s", id, rows[0].Status)
	}
	return rows[0], nil
}

// markReceived converts any hold into consumption and stamps the receipt.
func (r *receiptImpl) markReceived(ctx context.Context, row *model.MaterialRequirement, on time.Time, markUnit bool) error {
	if _, err := r.ledger.Consume(ctx, row, on, markUnit); err != nil {
		return err
	}
	row.Status = model.StatusReceived
	row.ReceivedDate = &on
	return r.stores.Requirements.SaveRequirement(ctx, row)
}

func fillErr(item *core.ItemResult, err error) {
	item.Error = err.Error()
	var e *code.ErrCode
	if errors.As(err, &e) {
		item.Code = e.Code
		item.Error = e.Msg
	}
}
