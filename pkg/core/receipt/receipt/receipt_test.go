package receipt

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nexussign/supply/pkg/common/code"
	"github.com/nexussign/supply/pkg/core/notify"
	core "github.com/nexussign/supply/pkg/core/receipt"
	"github.com/nexussign/supply/pkg/core/requirement"
	"github.com/nexussign/supply/pkg/repo/memory"
	"github.com/nexussign/supply/pkg/repo/model"
	"github.com/nexussign/supply/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*memory.Store, core.Service) {
	t.Helper()
	store := memory.New()
	return store, NewWithStores(store.Stores(), store, store, time.Minute)
}

func addVinylRequirement(store *memory.Store) int64 {
	return store.AddRequirement(&model.MaterialRequirement{
		IsStockItem:       true,
		ArchetypeID:       utils.Ptr(model.ArchetypeVinyl),
		CustomProductType: utils.Ptr("gloss black wrap"),
		Unit:              "sq ft",
	})
}

func itemsByID(resp *core.ReceiveResp) map[int64]*core.ItemResult {
	out := map[int64]*core.ItemResult{}
	for _, it := range resp.Items {
		out[it.RequirementID] = it
	}
	return out
}

func TestReceiveSelectedSubset(t *testing.T) {
	ctx := context.Background()
	store, svc := newService(t)
	unit := store.AddVinyl(&model.VinylInventory{Brand: "3M"})
	primary := addVinylRequirement(store)
	a, b, c := addVinylRequirement(store), addVinylRequirement(store), addVinylRequirement(store)
	store.AddVinylHold(primary, unit, model.WholePiece)
	store.AddVinylHold(a, unit, "10 sq ft")
	store.AddVinylHold(b, unit, "12 sq ft")
	store.AddVinylHold(c, unit, "8 sq ft")

	others, err := svc.OtherHolds(ctx, &core.OtherHoldsReq{RequirementID: primary, VinylID: unit})
	require.NoError(t, err)
	require.Len(t, others, 3)
	assert.Equal(t, []int64{a, b, c}, []int64{others[0].RequirementID, others[1].RequirementID, others[2].RequirementID})
	assert.Equal(t, "10 sq ft", others[0].QuantityHeld)
	assert.NotNil(t, others[0].Requirement)

	resp, err := svc.Receive(ctx, &core.ReceiveReq{RequirementID: primary, AlsoReceive: []int64{a, b}})
	require.NoError(t, err)
	assert.Equal(t, requirement.ComputedFulfilled, resp.Primary.ComputedStatus)
	assert.Empty(t, resp.Failed())

	items := itemsByID(resp)
	assert.Equal(t, core.ActionReceived, items[a].Action)
	assert.Equal(t, core.ActionReceived, items[b].Action)
	assert.Equal(t, core.ActionReleased, items[c].Action)

	for _, id := range []int64{primary, a, b} {
		row := store.Requirement(id)
		assert.Equal(t, requirement.ComputedFulfilled, requirement.Derive(row), "requirement %d", id)
		assert.Nil(t, row.HeldVinylID)
	}
	loser := store.Requirement(c)
	assert.Nil(t, loser.HeldVinylID)
	assert.Nil(t, loser.SupplierID)
	assert.Equal(t, model.StatusPending, loser.Status)

	assert.Equal(t, model.DispositionUsed, store.Vinyl(unit).Disposition)
	assert.Empty(t, store.VinylHolds())
	assert.Len(t, store.Consumptions(), 3)

	changes := store.Changes()
	require.Len(t, changes, 1)
	assert.Equal(t, notify.ChangeReceive, changes[0].Kind)
	assert.ElementsMatch(t, []int64{primary, a, b, c}, changes[0].RequirementIDs)
}

func TestReceiveReleasesUnselectedPartialHold(t *testing.T) {
	ctx := context.Background()
	store, svc := newService(t)
	unit := store.AddVinyl(&model.VinylInventory{BaseModel: model.BaseModel{ID: 42}, Brand: "Avery"})
	first := addVinylRequirement(store)
	second := addVinylRequirement(store)
	store.AddVinylHold(first, unit, model.WholePiece)
	store.AddVinylHold(second, unit, "50 sq ft")

	day := time.Date(2026, 6, 1, 15, 30, 0, 0, time.UTC)
	resp, err := svc.Receive(ctx, &core.ReceiveReq{RequirementID: first, ReceivedDate: &day})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, core.ActionReleased, resp.Items[0].Action)
	assert.True(t, resp.Items[0].OK)

	got := store.Requirement(first)
	assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), *got.ReceivedDate)

	loser := store.Requirement(second)
	assert.False(t, loser.Held())
	assert.Nil(t, loser.SupplierID)
	assert.Equal(t, requirement.ComputedPending, requirement.Derive(loser))
}

func TestReceiveReportsMemberFailure(t *testing.T) {
	ctx := context.Background()
	store, svc := newService(t)
	unit := store.AddVinyl(&model.VinylInventory{Brand: "3M"})
	primary := addVinylRequirement(store)
	a, b := addVinylRequirement(store), addVinylRequirement(store)
	store.AddVinylHold(primary, unit, model.WholePiece)
	store.AddVinylHold(a, unit, "1 yd")
	store.AddVinylHold(b, unit, "2 yd")
	store.FailConsumption = func(id int64) error {
		if id == b {
			return code.CreateDataErr.WithMsg("disk full")
		}
		return nil
	}

	resp, err := svc.Receive(ctx, &core.ReceiveReq{RequirementID: primary, AlsoReceive: []int64{a, b}})
	require.NoError(t, err)
	assert.Equal(t, requirement.ComputedFulfilled, resp.Primary.ComputedStatus)

	items := itemsByID(resp)
	assert.True(t, items[a].OK)
	assert.False(t, items[b].OK)
	assert.True(t, items[b].Released)
	assert.Equal(t, code.CreateDataErr.Code, items[b].Code)
	require.Len(t, resp.Failed(), 1)

	failed := store.Requirement(b)
	assert.False(t, failed.Held())
	assert.NotEqual(t, model.StatusReceived, failed.Status)
	assert.Equal(t, model.StatusReceived, store.Requirement(a).Status)
	assert.Empty(t, store.VinylHolds())
}

func TestReceiveKeepsCancelledRequirements(t *testing.T) {
	ctx := context.Background()
	store, svc := newService(t)
	unit := store.AddVinyl(&model.VinylInventory{Brand: "3M"})
	cancelled := store.AddRequirement(&model.MaterialRequirement{
		IsStockItem:       true,
		ArchetypeID:       utils.Ptr(model.ArchetypeVinyl),
		CustomProductType: utils.Ptr("gloss black wrap"),
		Status:            model.StatusCancelled,
	})
	primary := addVinylRequirement(store)
	store.AddVinylHold(cancelled, unit, "4 yd")
	store.AddVinylHold(primary, unit, model.WholePiece)

	_, err := svc.Receive(ctx, &core.ReceiveReq{RequirementID: cancelled})
	assert.ErrorIs(t, err, code.RequirementClosedErr)
	assert.Equal(t, model.StatusCancelled, store.Requirement(cancelled).Status)
	assert.Len(t, store.VinylHolds(), 2)

	resp, err := svc.Receive(ctx, &core.ReceiveReq{RequirementID: primary, AlsoReceive: []int64{cancelled}})
	require.NoError(t, err)
	assert.Equal(t, requirement.ComputedFulfilled, resp.Primary.ComputedStatus)

	item := itemsByID(resp)[cancelled]
	require.NotNil(t, item)
	assert.False(t, item.OK)
	assert.True(t, item.Released)
	assert.Equal(t, code.RequirementClosedErr.Code, item.Code)

	row := store.Requirement(cancelled)
	assert.Equal(t, model.StatusCancelled, row.Status)
	assert.Nil(t, row.ReceivedDate)
	assert.False(t, row.Held())
	assert.Empty(t, store.VinylHolds())
}

func TestReceiveRejectsInvalidSubset(t *testing.T) {
	ctx := context.Background()
	store, svc := newService(t)
	unit := store.AddVinyl(&model.VinylInventory{Brand: "3M"})
	primary := addVinylRequirement(store)
	stranger := addVinylRequirement(store)
	store.AddVinylHold(primary, unit, model.WholePiece)

	_, err := svc.Receive(ctx, &core.ReceiveReq{RequirementID: primary, AlsoReceive: []int64{stranger}})
	assert.ErrorIs(t, err, code.NotCompetingErr)
	assert.Equal(t, code.KindValidation, code.KindOf(err))

	assert.Equal(t, model.DispositionInStock, store.Vinyl(unit).Disposition)
	assert.Equal(t, unit, *store.Requirement(primary).HeldVinylID)
	assert.Empty(t, store.Consumptions())

	_, err = svc.Receive(ctx, &core.ReceiveReq{RequirementID: primary, AlsoReceive: []int64{primary}})
	assert.ErrorIs(t, err, code.NotCompetingErr)
}

func TestReceiveUnitBusy(t *testing.T) {
	ctx := context.Background()
	store, svc := newService(t)
	unit := store.AddVinyl(&model.VinylInventory{Brand: "3M"})
	primary := addVinylRequirement(store)
	store.AddVinylHold(primary, unit, model.WholePiece)

	release, err := store.Acquire(ctx, fmt.Sprintf("receipt:vinyl:%d", unit), time.Minute)
	require.NoError(t, err)

	_, err = svc.Receive(ctx, &core.ReceiveReq{RequirementID: primary})
	assert.ErrorIs(t, err, code.UnitBusyErr)
	assert.Equal(t, code.KindConflict, code.KindOf(err))

	release(ctx)
	_, err = svc.Receive(ctx, &core.ReceiveReq{RequirementID: primary})
	require.NoError(t, err)
}

func TestReceiveConsumedUnit(t *testing.T) {
	ctx := context.Background()
	store, svc := newService(t)
	unit := store.AddVinyl(&model.VinylInventory{Brand: "3M", Disposition: model.DispositionUsed})
	primary := addVinylRequirement(store)
	store.AddVinylHold(primary, unit, model.WholePiece)

	_, err := svc.Receive(ctx, &core.ReceiveReq{RequirementID: primary})
	assert.ErrorIs(t, err, code.UnitConsumedErr)
	assert.Equal(t, model.StatusPending, store.Requirement(primary).Status)
}

func TestReceivePlain(t *testing.T) {
	ctx := context.Background()
	store, svc := newService(t)
	id := store.AddRequirement(&model.MaterialRequirement{OrderID: utils.Ptr(int64(3)), CustomProductType: utils.Ptr("ink")})

	_, err := svc.Receive(ctx, &core.ReceiveReq{RequirementID: id, AlsoReceive: []int64{99}})
	assert.ErrorIs(t, err, code.NotCompetingErr)

	resp, err := svc.Receive(ctx, &core.ReceiveReq{RequirementID: id})
	require.NoError(t, err)
	assert.Nil(t, resp.VinylID)
	assert.Empty(t, resp.Items)
	assert.Equal(t, requirement.ComputedFulfilled, resp.Primary.ComputedStatus)

	_, err = svc.Receive(ctx, &core.ReceiveReq{RequirementID: id})
	assert.ErrorIs(t, err, code.RequirementClosedErr)
}
