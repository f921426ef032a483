package hold

import (
	"context"
	"errors"

	"github.com/nexussign/supply/pkg/common/code"
	core "github.com/nexussign/supply/pkg/core/hold"
	"github.com/nexussign/supply/pkg/core/notify"
	"github.com/nexussign/supply/pkg/core/notify/events"
	"github.com/nexussign/supply/pkg/core/requirement"
	"github.com/nexussign/supply/pkg/middleware/logger"
	"github.com/nexussign/supply/pkg/repo"
	"github.com/nexussign/supply/pkg/repo/model"
	"github.com/nexussign/supply/pkg/repo/pgstore"
	"github.com/nexussign/supply/pkg/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const candidateLimit = 100

var (
	tracer = otel.Tracer("github.com/nexussign/supply/pkg/core/hold")
	meter  = otel.Meter("github.com/nexussign/supply/pkg/core/hold")

	placedCounter, _   = meter.Int64Counter("holds.placed")
	releasedCounter, _ = meter.Int64Counter("holds.released")
)

type holdImpl struct {
	stores *repo.Stores
	ledger *core.Ledger
	center notify.MsgCenter
}

func New() core.Service {
	return NewWithStores(pgstore.Default(), events.NewEvents())
}

func NewWithStores(stores *repo.Stores, center notify.MsgCenter) core.Service {
	return &holdImpl{
		stores: stores,
		ledger: core.NewLedger(stores),
		center: center,
	}
}

func (h *holdImpl) PlaceHold(ctx context.Context, req *core.PlaceReq) (*core.HoldView, error) {
	ctx, span := tracer.Start(ctx, "hold.PlaceHold", trace.WithAttributes(
		attribute.Int64("requirement_id", req.RequirementID),
		attribute.String("kind", string(req.Target.Kind)),
		attribute.Int64("unit_id", req.Target.ID),
	))
	defer span.End()

	qty, err := validatePlace(req)
	if err != nil {
		return nil, err
	}

	var view *core.HoldView
	err = h.stores.Tx.ExecTx(ctx, func(txCtx context.Context) error {
		r, err := h.lockRequirement(txCtx, req.RequirementID)
		if err != nil {
			return err
		}
		view, err = h.place(txCtx, r, req.Target, qty)
		return err
	})
	if err != nil {
		span.RecordError(err)
		logger.Warnf(ctx, "place hold requirement: %d target: %s/%d err: %+v", req.RequirementID, req.Target.Kind, req.Target.ID, err)
		return nil, err
	}

	placedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(view.Kind))))
	h.broadcast(ctx, req.RequirementID)
	return view, nil
}

func (h *holdImpl) ReleaseHold(ctx context.Context, requirementID int64) error {
	ctx, span := tracer.Start(ctx, "hold.ReleaseHold", trace.WithAttributes(attribute.Int64("requirement_id", requirementID)))
	defer span.End()

	err := h.stores.Tx.ExecTx(ctx, func(txCtx context.Context) error {
		r, err := h.lockRequirement(txCtx, requirementID)
		if err != nil {
			return err
		}
		if !r.Held() {
			return code.HoldNotFound.WithMsgf("requirement %d has no hold", requirementID)
		}
		if err := h.ledger.Release(txCtx, r); err != nil {
			return err
		}
		return h.stores.Requirements.SaveRequirement(txCtx, r)
	})
	if err != nil {
		span.RecordError(err)
		logger.Warnf(ctx, "release hold requirement: %d err: %+v", requirementID, err)
		return err
	}

	releasedCounter.Add(ctx, 1)
	h.broadcast(ctx, requirementID)
	return nil
}

func (h *holdImpl) EditHold(ctx context.Context, req *core.PlaceReq) (*core.HoldView, error) {
	ctx, span := tracer.Start(ctx, "hold.EditHold", trace.WithAttributes(attribute.Int64("requirement_id", req.RequirementID)))
	defer span.End()

	qty, err := validatePlace(req)
	if err != nil {
		return nil, err
	}

	var view *core.HoldView
	err = h.stores.Tx.ExecTx(ctx, func(txCtx context.Context) error {
		r, err := h.lockRequirement(txCtx, req.RequirementID)
		if err != nil {
			return err
		}
		if !r.Held() {
			return code.HoldNotFound.WithMsgf("requirement %d has no hold to edit", req.RequirementID)
		}
		if err := h.ledger.Release(txCtx, r); err != nil {
			return err
		}
		view, err = h.place(txCtx, r, req.Target, qty)
		return err
	})
	if err != nil {
		span.RecordError(err)
		logger.Warnf(ctx, "edit hold requirement: %d err: %+v", req.RequirementID, err)
		return nil, err
	}

	h.broadcast(ctx, req.RequirementID)
	return view, nil
}

func (h *holdImpl) CurrentHold(ctx context.Context, requirementID int64) (*core.HoldView, error) {
	r, err := h.stores.Requirements.GetRequirement(ctx, requirementID)
	if err != nil {
		return nil, err
	}
	return h.currentHold(ctx, r)
}

func (h *holdImpl) Candidates(ctx context.Context, requirementID int64) (*core.CandidatesResp, error) {
	r, err := h.stores.Requirements.GetRequirement(ctx, requirementID)
	if err != nil {
		return nil, err
	}
	dom, err := requirement.FromModel(r)
	if err != nil {
		return nil, err
	}

	resp := &core.CandidatesResp{
		RequirementID: requirementID,
		Vinyl:         []*core.VinylCandidate{},
		Products:      []*model.SupplierProduct{},
	}
	if cur, err := h.currentHold(ctx, r); err == nil {
		resp.Current = cur
	} else if !errors.Is(err, code.HoldNotFound) {
		return nil, err
	}

	switch {
	case dom.IsVinyl():
		resp.Kind = core.KindVinyl
		q := repo.VinylStockQuery{Limit: candidateLimit}
		if p, ok := dom.Product.(requirement.VinylProduct); ok {
			q.VinylProductID = &p.VinylProductID
		}
		units, err := h.stores.Inventory.ListAvailableVinyl(ctx, q)
		if err != nil {
			return nil, err
		}
		ids := utils.FilterSlice(units, func(u *model.VinylInventory) (int64, bool) { return u.ID, true })
		holds, err := h.stores.Holds.ListVinylHolds(ctx, ids...)
		if err != nil {
			return nil, err
		}
		byUnit := make(map[int64][]*model.VinylHold, len(units))
		for _, hd := range holds {
			byUnit[hd.VinylID] = append(byUnit[hd.VinylID], hd)
		}
		for _, u := range units {
			resp.Vinyl = append(resp.Vinyl, &core.VinylCandidate{Unit: u, Holds: byUnit[u.ID]})
		}

	default:
		q := repo.ProductStockQuery{Limit: candidateLimit, ArchetypeID: dom.ArchetypeID}
		if p, ok := dom.Product.(requirement.SupplierProduct); ok {
			q.SupplierProductID = &p.SupplierProductID
		}
		if q.SupplierProductID == nil && q.ArchetypeID == nil {
			return resp, nil
		}
		resp.Kind = core.KindGeneral
		products, err := h.stores.Inventory.ListAvailableProducts(ctx, q)
		if err != nil {
			return nil, err
		}
		resp.Products = products
	}
	return resp, nil
}

func (h *holdImpl) CheckStock(ctx context.Context, req *core.StockCheckReq) (*core.StockAvailability, error) {
	q := *req
	if req.RequirementID != nil {
		r, err := h.stores.Requirements.GetRequirement(ctx, *req.RequirementID)
		if err != nil {
			return nil, err
		}
		// a held or vendor-sourced requirement is not offered the hold action
		_, external := requirement.NewSupplierRef(r.SupplierID).External()
		if r.Held() || external || r.Status.Closed() {
			return &core.StockAvailability{HasStock: false, StockType: stockKind(r.ArchetypeID, r.VinylProductID)}, nil
		}
		q = core.StockCheckReq{
			ArchetypeID:       r.ArchetypeID,
			VinylProductID:    r.VinylProductID,
			SupplierProductID: r.SupplierProductID,
		}
		if q.VinylProductID == nil && q.SupplierProductID == nil && q.ArchetypeID == nil {
			return &core.StockAvailability{}, nil
		}
	}

	switch stockKind(q.ArchetypeID, q.VinylProductID) {
	case core.KindVinyl:
		units, err := h.stores.Inventory.ListAvailableVinyl(ctx, repo.VinylStockQuery{VinylProductID: q.VinylProductID, Limit: 1})
		if err != nil {
			return nil, err
		}
		return &core.StockAvailability{HasStock: len(units) > 0, StockType: core.KindVinyl}, nil
	default:
		if q.SupplierProductID == nil && q.ArchetypeID == nil {
			return nil, code.ParamErr.WithMsg("stock check needs an archetype, vinyl product or supplier product")
		}
		products, err := h.stores.Inventory.ListAvailableProducts(ctx, repo.ProductStockQuery{
			SupplierProductID: q.SupplierProductID,
			ArchetypeID:       q.ArchetypeID,
			Limit:             1,
		})
		if err != nil {
			return nil, err
		}
		return &core.StockAvailability{HasStock: len(products) > 0, StockType: core.KindGeneral}, nil
	}
}

func stockKind(archetypeID, vinylProductID *int64) core.Kind {
	if vinylProductID != nil || (archetypeID != nil && *archetypeID == model.ArchetypeVinyl) {
		return core.KindVinyl
	}
	return core.KindGeneral
}

// fitsVinyl applies the same filter the stock check uses for vinyl units.
func fitsVinyl(r *model.MaterialRequirement, unit *model.VinylInventory) error {
	if stockKind(r.ArchetypeID, r.VinylProductID) != core.KindVinyl {
		return code.HoldTargetInvalidErr.WithMsgf("requirement %d is not a vinyl requirement", r.ID)
	}
	if r.VinylProductID != nil && (unit.VinylProductID == nil || *unit.VinylProductID != *r.VinylProductID) {
		return code.HoldTargetInvalidErr.WithMsgf("vinyl %d is not vinyl product %d", unit.ID, *r.VinylProductID)
	}
	return nil
}

// fitsProduct applies the same filter the stock check uses for supplier products.
func fitsProduct(r *model.MaterialRequirement, product *model.SupplierProduct) error {
	if stockKind(r.ArchetypeID, r.VinylProductID) != core.KindGeneral {
		return code.HoldTargetInvalidErr.WithMsgf("requirement %d needs a vinyl unit", r.ID)
	}
	if r.SupplierProductID == nil && r.ArchetypeID == nil {
		return code.HoldTargetInvalidErr.WithMsgf("requirement %d has no product or archetype to match", r.ID)
	}
	if r.SupplierProductID != nil && product.ID != *r.SupplierProductID {
		return code.HoldTargetInvalidErr.WithMsgf("supplier product %d is not product %d", product.ID, *r.SupplierProductID)
	}
	if r.ArchetypeID != nil && (product.ArchetypeID == nil || *product.ArchetypeID != *r.ArchetypeID) {
		return code.HoldTargetInvalidErr.WithMsgf("supplier product %d is not archetype %d", product.ID, *r.ArchetypeID)
	}
	return nil
}

func validatePlace(req *core.PlaceReq) (string, error) {
	if req.RequirementID <= 0 {
		return "", code.ParamErr.WithMsg("requirement_id is required")
	}
	if req.Target.ID <= 0 || (req.Target.Kind != core.KindVinyl && req.Target.Kind != core.KindGeneral) {
		return "", code.HoldTargetInvalidErr.WithMsgf("invalid hold target %s/%d", req.Target.Kind, req.Target.ID)
	}
	return req.Quantity.Held()
}

func (h *holdImpl) lockRequirement(ctx context.Context, id int64) (*model.MaterialRequirement, error) {
	rows, err := h.stores.Requirements.LockRequirements(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, code.RequirementNotFound.WithMsgf("requirement %d not found", id)
	}
	return rows[0], nil
}

// place re-validates the unit under lock; the earlier stock check may be stale.
func (h *holdImpl) place(ctx context.Context, r *model.MaterialRequirement, target core.Target, qty string) (*core.HoldView, error) {
	if r.Status.Closed() {
		return nil, code.RequirementClosedErr.WithMsgf("requirement %d is %s", r.ID, r.Status)
	}

	switch target.Kind {
	case core.KindVinyl:
		if r.HeldSupplierProductID != nil {
			return nil, code.HoldKindConflictErr.WithMsgf("requirement %d holds supplier product %d", r.ID, *r.HeldSupplierProductID)
		}
		unit, err := h.stores.Inventory.LockVinyl(ctx, target.ID)
		if err != nil {
			if errors.Is(err, code.UnitNotFound) {
				return nil, code.StockUnavailableErr.WithMsgf("vinyl %d no longer exists", target.ID)
			}
			return nil, err
		}
		if unit.Disposition != model.DispositionInStock {
			return nil, code.StockUnavailableErr.WithMsgf("vinyl %d is %s", target.ID, unit.Disposition)
		}
		if err := fitsVinyl(r, unit); err != nil {
			return nil, err
		}
		if err := h.stores.Holds.UpsertVinylHold(ctx, &model.VinylHold{
			RequirementID: r.ID,
			VinylID:       target.ID,
			QuantityHeld:  qty,
		}); err != nil {
			return nil, err
		}
		id := target.ID
		r.HeldVinylID = &id

	case core.KindGeneral:
		if r.HeldVinylID != nil {
			return nil, code.HoldKindConflictErr.WithMsgf("requirement %d holds vinyl %d", r.ID, *r.HeldVinylID)
		}
		product, err := h.stores.Inventory.LockSupplierProduct(ctx, target.ID)
		if err != nil {
			if errors.Is(err, code.UnitNotFound) {
				return nil, code.StockUnavailableErr.WithMsgf("supplier product %d no longer exists", target.ID)
			}
			return nil, err
		}
		if !product.IsActive || !product.QuantityOnHand.IsPositive() {
			return nil, code.StockUnavailableErr.WithMsgf("supplier product %d has no stock on hand", target.ID)
		}
		if err := fitsProduct(r, product); err != nil {
			return nil, err
		}
		if err := h.stores.Holds.UpsertGeneralHold(ctx, &model.GeneralInventoryHold{
			RequirementID:     r.ID,
			SupplierProductID: target.ID,
			QuantityHeld:      qty,
		}); err != nil {
			return nil, err
		}
		id := target.ID
		r.HeldSupplierProductID = &id
	}

	// the hold is now the sourcing indicator; an external vendor cannot stay next to it
	if r.SupplierID != nil && *r.SupplierID > 0 {
		r.SupplierID = nil
	}
	if err := h.stores.Requirements.SaveRequirement(ctx, r); err != nil {
		return nil, err
	}
	return &core.HoldView{
		RequirementID: r.ID,
		Kind:          target.Kind,
		UnitID:        target.ID,
		QuantityHeld:  qty,
		UpdatedAt:     r.UpdatedAt,
	}, nil
}

func (h *holdImpl) currentHold(ctx context.Context, r *model.MaterialRequirement) (*core.HoldView, error) {
	switch {
	case r.HeldVinylID != nil:
		view := &core.HoldView{RequirementID: r.ID, Kind: core.KindVinyl, UnitID: *r.HeldVinylID}
		hd, err := h.stores.Holds.GetVinylHold(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		if hd != nil {
			view.QuantityHeld = hd.QuantityHeld
			view.UpdatedAt = hd.UpdatedAt
		}
		return view, nil
	case r.HeldSupplierProductID != nil:
		view := &core.HoldView{RequirementID: r.ID, Kind: core.KindGeneral, UnitID: *r.HeldSupplierProductID}
		hd, err := h.stores.Holds.GetGeneralHold(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		if hd != nil {
			view.QuantityHeld = hd.QuantityHeld
			view.UpdatedAt = hd.UpdatedAt
		}
		return view, nil
	}
	return nil, code.HoldNotFound.WithMsgf("requirement %d has no hold", r.ID)
}

func (h *holdImpl) broadcast(ctx context.Context, ids ...int64) {
	if err := notify.Changed(ctx, h.center, notify.ChangeHold, ids...); err != nil {
		logger.Warnf(ctx, "broadcast hold change %v err: %+v", ids, err)
	}
}
