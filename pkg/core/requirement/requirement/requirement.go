package requirement

import (
	"context"
	"time"

	"github.com/nexussign/supply/pkg/common"
	"github.com/nexussign/supply/pkg/common/code"
	"github.com/nexussign/supply/pkg/core/hold"
	"github.com/nexussign/supply/pkg/core/notify"
	"github.com/nexussign/supply/pkg/core/notify/events"
	core "github.com/nexussign/supply/pkg/core/requirement"
	"github.com/nexussign/supply/pkg/middleware/logger"
	"github.com/nexussign/supply/pkg/repo"
	"github.com/nexussign/supply/pkg/repo/model"
	"github.com/nexussign/supply/pkg/repo/pgstore"
	"github.com/nexussign/supply/pkg/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/nexussign/supply/pkg/core/requirement")

type requirementImpl struct {
	stores *repo.Stores
	ledger *hold.Ledger
	center notify.MsgCenter
	now    func() time.Time
}

func New() core.Service {
	return NewWithStores(pgstore.Default(), events.NewEvents())
}

func NewWithStores(stores *repo.Stores, center notify.MsgCenter) core.Service {
	return &requirementImpl{
		stores: stores,
		ledger: hold.NewLedger(stores),
		center: center,
		now:    time.Now,
	}
}

func (r *requirementImpl) Create(ctx context.Context, req *core.CreateReq) (*core.View, error) {
	ctx, span := tracer.Start(ctx, "requirement.Create")
	defer span.End()

	today := utils.TruncateDay(r.now())
	blank := &model.MaterialRequirement{Status: model.StatusPending, EntryDate: today}
	data, err := core.ApplyPatchAt(blank, req.Patch(), today)
	if err != nil {
		return nil, err
	}
	if err := r.stores.Requirements.CreateRequirement(ctx, data); err != nil {
		span.RecordError(err)
		return nil, err
	}

	r.broadcast(ctx, notify.ChangeCreate, data.ID)
	return core.NewView(data), nil
}

func (r *requirementImpl) Get(ctx context.Context, id int64) (*core.View, error) {
	data, err := r.stores.Requirements.GetRequirement(ctx, id)
	if err != nil {
		return nil, err
	}
	return core.NewView(data), nil
}

func (r *requirementImpl) List(ctx context.Context, req *core.ListReq) (*common.PageResp[[]*core.View], error) {
	req.Normalize()
	for _, s := range req.Statuses {
		if !s.Valid() {
			return nil, code.ParamErr.WithMsgf("unknown status %q", s)
		}
	}

	datas, total, err := r.stores.Requirements.ListRequirements(ctx, repo.RequirementQuery{
		Statuses:   req.Statuses,
		StockType:  req.StockType,
		SupplierID: req.SupplierID,
		EntryFrom:  req.EntryFrom,
		EntryTo:    req.EntryTo,
		Search:     req.Search,
		Offset:     req.Offest(),
		Limit:      req.PageSize,
	})
	if err != nil {
		return nil, err
	}

	return &common.PageResp[[]*core.View]{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Data:     core.NewViews(datas),
	}, nil
}

func (r *requirementImpl) Update(ctx context.Context, id int64, patch *core.Patch) (*core.View, error) {
	ctx, span := tracer.Start(ctx, "requirement.Update", trace.WithAttributes(attribute.Int64("requirement_id", id)))
	defer span.End()

	if patch == nil || patch.Empty() {
		return nil, code.ParamErr.WithMsg("patch has no fields")
	}

	var saved *model.MaterialRequirement
	err := r.stores.Tx.ExecTx(ctx, func(txCtx context.Context) error {
		rows, err := r.stores.Requirements.LockRequirements(txCtx, []int64{id})
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return code.RequirementNotFound.WithMsgf("requirement %d not found", id)
		}
		current := rows[0]

		next, err := core.ApplyPatchAt(current, patch, r.now())
		if err != nil {
			return err
		}

		// vinyl holds are refused by the reducer; a general hold converts to consumption here
		if next.Status == model.StatusReceived && current.Status != model.StatusReceived && next.HeldSupplierProductID != nil {
			if _, err := r.ledger.Consume(txCtx, next, *next.ReceivedDate, false); err != nil {
				return err
			}
		}

		if err := r.stores.Requirements.SaveRequirement(txCtx, next); err != nil {
			return err
		}
		saved = next
		return nil
	})
	if err != nil {
		span.RecordError(err)
		logger.Warnf(ctx, "update requirement: %d err: %+v", id, err)
		return nil, err
	}

	r.broadcast(ctx, notify.ChangeUpdate, id)
	return core.NewView(saved), nil
}

func (r *requirementImpl) broadcast(ctx context.Context, kind notify.ChangeKind, ids ...int64) {
	if err := notify.Changed(ctx, r.center, kind, ids...); err != nil {
		logger.Warnf(ctx, "broadcast requirement change %v err: %+v", ids, err)
	}
}
