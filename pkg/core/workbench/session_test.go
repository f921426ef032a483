package workbench_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nexussign/supply/pkg/common"
	"github.com/nexussign/supply/pkg/common/code"
	"github.com/nexussign/supply/pkg/core/hold"
	holdImpl "github.com/nexussign/supply/pkg/core/hold/hold"
	"github.com/nexussign/supply/pkg/core/notify"
	"github.com/nexussign/supply/pkg/core/purchase"
	purchaseImpl "github.com/nexussign/supply/pkg/core/purchase/purchase"
	"github.com/nexussign/supply/pkg/core/receipt"
	receiptImpl "github.com/nexussign/supply/pkg/core/receipt/receipt"
	"github.com/nexussign/supply/pkg/core/requirement"
	requirementImpl "github.com/nexussign/supply/pkg/core/requirement/requirement"
	"github.com/nexussign/supply/pkg/core/workbench"
	"github.com/nexussign/supply/pkg/repo/memory"
	"github.com/nexussign/supply/pkg/repo/model"
	"github.com/nexussign/supply/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// localStore serves the workbench from in-process services. failNext makes the next
// mutation fail as if the network dropped.
type localStore struct {
	requirements requirement.Service
	holds        hold.Service
	receipts     receipt.Service
	purchases    purchase.Service
	failNext     error
	updates      int
	beforeUpdate func()
}

func newLocalStore(t *testing.T, store *memory.Store) *localStore {
	t.Helper()
	stores := store.Stores()
	p := purchaseImpl.NewWithStores(stores, store, store, purchaseImpl.Sender{Address: "buyer@example.com"}, 1)
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return &localStore{
		requirements: requirementImpl.NewWithStores(stores, store),
		holds:        holdImpl.NewWithStores(stores, store),
		receipts:     receiptImpl.NewWithStores(stores, store, store, time.Minute),
		purchases:    p,
	}
}

func (l *localStore) takeFailure() error {
	err := l.failNext
	l.failNext = nil
	return err
}

func (l *localStore) ListRequirements(ctx context.Context, req *requirement.ListReq) (*common.PageResp[[]*requirement.View], error) {
	return l.requirements.List(ctx, req)
}

func (l *localStore) GetRequirement(ctx context.Context, id int64) (*requirement.View, error) {
	return l.requirements.Get(ctx, id)
}

func (l *localStore) UpdateRequirement(ctx context.Context, id int64, patch *requirement.Patch) (*requirement.View, error) {
	l.updates++
	if l.beforeUpdate != nil {
		l.beforeUpdate()
	}
	if err := l.takeFailure(); err != nil {
		return nil, err
	}
	return l.requirements.Update(ctx, id, patch)
}

func (l *localStore) PlaceHold(ctx context.Context, req *hold.PlaceReq) (*hold.HoldView, error) {
	if err := l.takeFailure(); err != nil {
		return nil, err
	}
	return l.holds.PlaceHold(ctx, req)
}

func (l *localStore) EditHold(ctx context.Context, req *hold.PlaceReq) (*hold.HoldView, error) {
	return l.holds.EditHold(ctx, req)
}

func (l *localStore) ReleaseHold(ctx context.Context, requirementID int64) error {
	return l.holds.ReleaseHold(ctx, requirementID)
}

func (l *localStore) CurrentHold(ctx context.Context, requirementID int64) (*hold.HoldView, error) {
	return l.holds.CurrentHold(ctx, requirementID)
}

func (l *localStore) Candidates(ctx context.Context, requirementID int64) (*hold.CandidatesResp, error) {
	return l.holds.Candidates(ctx, requirementID)
}

func (l *localStore) CheckStock(ctx context.Context, req *hold.StockCheckReq) (*hold.StockAvailability, error) {
	return l.holds.CheckStock(ctx, req)
}

func (l *localStore) OtherHolds(ctx context.Context, req *receipt.OtherHoldsReq) ([]*receipt.OtherHold, error) {
	return l.receipts.OtherHolds(ctx, req)
}

func (l *localStore) Receive(ctx context.Context, req *receipt.ReceiveReq) (*receipt.ReceiveResp, error) {
	return l.receipts.Receive(ctx, req)
}

func (l *localStore) DraftGroups(ctx context.Context) ([]*purchase.DraftGroup, error) {
	return l.purchases.DraftGroups(ctx)
}

func (l *localStore) Unassigned(ctx context.Context) ([]*requirement.View, error) {
	return l.purchases.Unassigned(ctx)
}

func (l *localStore) SubmitDraft(ctx context.Context, req *purchase.SubmitReq) (*purchase.SubmitResp, error) {
	return l.purchases.Submit(ctx, req)
}

type recorder struct{ notices []workbench.Notice }

func (r *recorder) Notify(n workbench.Notice) { r.notices = append(r.notices, n) }

func newSession(t *testing.T) (*memory.Store, *localStore, *recorder, *workbench.Session) {
	t.Helper()
	store := memory.New()
	local := newLocalStore(t, store)
	rec := &recorder{}
	return store, local, rec, workbench.NewSession(local, rec, &requirement.ListReq{})
}

func TestSessionOptimisticUpdate(t *testing.T) {
	ctx := context.Background()
	store, _, rec, s := newSession(t)
	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	id := store.AddRequirement(&model.MaterialRequirement{
		OrderID:             utils.Ptr(int64(1)),
		CustomProductType:   utils.Ptr("laminate"),
		SupplierID:          utils.Ptr(int64(4)),
		OrderedDate:         &day,
		DeliveryMethod:      utils.Ptr(model.DeliveryPickup),
		Status:              model.StatusOrdered,
		SupplierOrderNumber: utils.Ptr("PO-123"),
	})
	require.NoError(t, s.Load(ctx))
	require.Len(t, s.Requirements(), 1)
	assert.Equal(t, requirement.ComputedOrderedPickup, s.Requirements()[0].ComputedStatus)

	view, err := s.Update(ctx, id, &requirement.Patch{OrderedDate: common.Null[time.Time]()})
	require.NoError(t, err)
	assert.Nil(t, view.SupplierOrderNumber)

	local, ok := s.Requirement(id)
	require.True(t, ok)
	assert.Equal(t, requirement.ComputedPending, local.ComputedStatus)
	assert.Nil(t, local.SupplierOrderNumber)
	assert.Nil(t, store.Requirement(id).SupplierOrderNumber)
	assert.Empty(t, rec.notices)
}

func TestSessionOptimisticReceiveIsDated(t *testing.T) {
	ctx := context.Background()
	store, local, _, s := newSession(t)
	id := store.AddRequirement(&model.MaterialRequirement{OrderID: utils.Ptr(int64(1)), CustomProductType: utils.Ptr("ink")})
	require.NoError(t, s.Load(ctx))

	var optimistic *requirement.View
	local.beforeUpdate = func() { optimistic, _ = s.Requirement(id) }

	saved, err := s.Update(ctx, id, &requirement.Patch{Status: common.Some(model.StatusReceived)})
	require.NoError(t, err)
	require.NotNil(t, optimistic)
	require.NotNil(t, optimistic.ReceivedDate)
	assert.Equal(t, requirement.ComputedFulfilled, optimistic.ComputedStatus)
	assert.Equal(t, requirement.ComputedFulfilled, saved.ComputedStatus)
	assert.True(t, saved.ReceivedDate.Equal(*optimistic.ReceivedDate))
}

func TestSessionUpdateFailureReloads(t *testing.T) {
	ctx := context.Background()
	store, local, rec, s := newSession(t)
	id := store.AddRequirement(&model.MaterialRequirement{OrderID: utils.Ptr(int64(1)), CustomProductType: utils.Ptr("ink"), Notes: "before"})
	require.NoError(t, s.Load(ctx))

	// someone else edits the row meanwhile
	other := store.Requirement(id)
	other.Notes = "server side"
	require.NoError(t, store.SaveRequirement(ctx, other))

	local.failNext = code.RPCHttpErr.WithMsg("connection reset")
	_, err := s.Update(ctx, id, &requirement.Patch{Notes: common.Some("mine")})
	assert.ErrorIs(t, err, code.RPCHttpErr)

	require.Len(t, rec.notices, 1)
	assert.Equal(t, workbench.LevelError, rec.notices[0].Level)
	assert.Equal(t, code.KindTransport, rec.notices[0].Kind)
	assert.Equal(t, id, rec.notices[0].RequirementID)

	got, ok := s.Requirement(id)
	require.True(t, ok)
	assert.Equal(t, "server side", got.Notes)
	assert.Equal(t, 1, local.updates)
}

func TestSessionRejectsInvalidPatchLocally(t *testing.T) {
	ctx := context.Background()
	store, local, rec, s := newSession(t)
	id := store.AddRequirement(&model.MaterialRequirement{OrderID: utils.Ptr(int64(1)), CustomProductType: utils.Ptr("ink")})
	require.NoError(t, s.Load(ctx))

	_, err := s.Update(ctx, id, &requirement.Patch{DeliveryMethod: common.Some(model.DeliveryMethod("drone"))})
	assert.ErrorIs(t, err, code.DeliveryMethodErr)
	assert.Zero(t, local.updates)
	require.Len(t, rec.notices, 1)
	assert.Equal(t, code.KindValidation, rec.notices[0].Kind)
}

func TestSessionHoldFailureNotifies(t *testing.T) {
	ctx := context.Background()
	store, _, rec, s := newSession(t)
	id := store.AddRequirement(&model.MaterialRequirement{
		IsStockItem: true, ArchetypeID: utils.Ptr(model.ArchetypeVinyl), CustomProductType: utils.Ptr("wrap"),
	})
	used := store.AddVinyl(&model.VinylInventory{Brand: "3M", Disposition: model.DispositionUsed})
	free := store.AddVinyl(&model.VinylInventory{Brand: "3M"})
	require.NoError(t, s.Load(ctx))

	avail, err := s.CheckStock(ctx, id)
	require.NoError(t, err)
	assert.True(t, avail.HasStock)

	_, err = s.PlaceHold(ctx, &hold.PlaceReq{RequirementID: id, Target: hold.Target{Kind: hold.KindVinyl, ID: used}, Quantity: hold.Quantity{Mode: hold.QuantityWhole}})
	assert.ErrorIs(t, err, code.StockUnavailableErr)
	require.Len(t, rec.notices, 1)
	assert.Equal(t, code.KindConflict, rec.notices[0].Kind)

	_, err = s.PlaceHold(ctx, &hold.PlaceReq{RequirementID: id, Target: hold.Target{Kind: hold.KindVinyl, ID: free}, Quantity: hold.Quantity{Mode: hold.QuantityWhole}})
	require.NoError(t, err)
	got, _ := s.Requirement(id)
	assert.Equal(t, free, *got.HeldVinylID)

	current, err := s.EditHold(ctx, id, nil)
	require.NoError(t, err)
	assert.Equal(t, hold.Quantity{Mode: hold.QuantityWhole}, current.Quantity())

	require.NoError(t, s.ReleaseHold(ctx, id))
	got, _ = s.Requirement(id)
	assert.False(t, got.Held())
}

func TestSessionReceiveFlow(t *testing.T) {
	ctx := context.Background()
	store, _, rec, s := newSession(t)
	unit := store.AddVinyl(&model.VinylInventory{BaseModel: model.BaseModel{ID: 42}, Brand: "Avery"})
	vinyl := func() int64 {
		return store.AddRequirement(&model.MaterialRequirement{
			IsStockItem: true, ArchetypeID: utils.Ptr(model.ArchetypeVinyl), CustomProductType: utils.Ptr("wrap"),
		})
	}
	primary, a, b := vinyl(), vinyl(), vinyl()
	store.AddVinylHold(primary, unit, model.WholePiece)
	store.AddVinylHold(a, unit, "50 sq ft")
	store.AddVinylHold(b, unit, "20 sq ft")
	store.FailConsumption = func(id int64) error {
		if id == a {
			return code.CreateDataErr
		}
		return nil
	}
	require.NoError(t, s.Load(ctx))

	plan, err := s.BeginReceive(ctx, primary, nil)
	require.NoError(t, err)
	assert.Nil(t, plan.Done)
	assert.Equal(t, unit, plan.VinylID)
	require.Len(t, plan.Others, 2)

	resp, err := s.ConfirmReceive(ctx, plan, []int64{a}, nil)
	require.NoError(t, err)
	require.Len(t, resp.Failed(), 1)

	require.Len(t, rec.notices, 1)
	assert.Equal(t, workbench.LevelWarn, rec.notices[0].Level)
	assert.Equal(t, a, rec.notices[0].RequirementID)

	got, _ := s.Requirement(primary)
	assert.Equal(t, requirement.ComputedFulfilled, got.ComputedStatus)
	for _, id := range []int64{a, b} {
		got, _ := s.Requirement(id)
		assert.False(t, got.Held(), "requirement %d", id)
	}

	// nothing competes for a plain requirement, so it is received straight away
	plain := store.AddRequirement(&model.MaterialRequirement{OrderID: utils.Ptr(int64(2)), CustomProductType: utils.Ptr("ink")})
	require.NoError(t, s.Load(ctx))
	plan, err = s.BeginReceive(ctx, plain, nil)
	require.NoError(t, err)
	require.NotNil(t, plan.Done)
	assert.Equal(t, requirement.ComputedFulfilled, plan.Done.Primary.ComputedStatus)
}

func TestSessionReloadsOnBroadcast(t *testing.T) {
	ctx := context.Background()
	store, _, _, s := newSession(t)
	id := store.AddRequirement(&model.MaterialRequirement{OrderID: utils.Ptr(int64(1)), CustomProductType: utils.Ptr("ink")})
	require.NoError(t, s.Load(ctx))
	require.NoError(t, store.Registry(ctx, notify.RequirementModify, s.HandleMessage))

	other := workbench.NewSession(newLocalStore(t, store), nil, &requirement.ListReq{})
	require.NoError(t, other.Load(ctx))
	_, err := other.Update(ctx, id, &requirement.Patch{Notes: common.Some("from the other desk")})
	require.NoError(t, err)

	got, _ := s.Requirement(id)
	assert.Equal(t, "from the other desk", got.Notes)

	raw, err := json.Marshal(&notify.SendMsg{Channel: "other-action", Data: map[string]int{"id": 1}})
	require.NoError(t, err)
	assert.NoError(t, s.HandleMessage(ctx, string(raw)))
	assert.ErrorIs(t, s.HandleMessage(ctx, "{"), code.UnmarshalWSDataErr)
}
