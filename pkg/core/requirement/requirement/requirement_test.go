package requirement

import (
	"context"
	"testing"
	"time"

	"github.com/nexussign/supply/pkg/common"
	"github.com/nexussign/supply/pkg/common/code"
	"github.com/nexussign/supply/pkg/core/notify"
	core "github.com/nexussign/supply/pkg/core/requirement"
	"github.com/nexussign/supply/pkg/repo/memory"
	"github.com/nexussign/supply/pkg/repo/model"
	"github.com/nexussign/supply/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*memory.Store, core.Service) {
	t.Helper()
	store := memory.New()
	return store, NewWithStores(store.Stores(), store)
}

func TestCreateRunsReducer(t *testing.T) {
	ctx := context.Background()
	store, svc := newService(t)

	view, err := svc.Create(ctx, &core.CreateReq{
		IsStockItem:     true,
		VinylProductID:  utils.Ptr(int64(3)),
		QuantityOrdered: decimal.NewFromInt(10),
		Unit:            "yd",
	})
	require.NoError(t, err)
	assert.NotZero(t, view.ID)
	assert.Equal(t, model.ArchetypeVinyl, *view.ArchetypeID)
	assert.Equal(t, model.StatusPending, view.Status)
	assert.Equal(t, core.ComputedPending, view.ComputedStatus)
	assert.False(t, view.EntryDate.IsZero())
	assert.NotNil(t, store.Requirement(view.ID))

	_, err = svc.Create(ctx, &core.CreateReq{Unit: "yd", CustomProductType: utils.Ptr("foam")})
	assert.ErrorIs(t, err, code.RequirementInvalidErr)

	changes := store.Changes()
	require.Len(t, changes, 1)
	assert.Equal(t, notify.ChangeCreate, changes[0].Kind)
}

func TestUpdateOrderedDateCascade(t *testing.T) {
	ctx := context.Background()
	store, svc := newService(t)
	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	id := store.AddRequirement(&model.MaterialRequirement{
		OrderID:             utils.Ptr(int64(301)),
		CustomProductType:   utils.Ptr("foam board"),
		SupplierID:          utils.Ptr(int64(4)),
		OrderedDate:         &day,
		Status:              model.StatusOrdered,
		DeliveryMethod:      utils.Ptr(model.DeliveryPickup),
		SupplierOrderID:     utils.Ptr(int64(77)),
		SupplierOrderNumber: utils.Ptr("PO-123"),
	})

	before, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, core.ComputedOrderedPickup, before.ComputedStatus)

	view, err := svc.Update(ctx, id, &core.Patch{OrderedDate: common.Null[time.Time]()})
	require.NoError(t, err)
	assert.Nil(t, view.SupplierOrderNumber)
	assert.Nil(t, view.SupplierOrderID)
	assert.Equal(t, model.StatusPending, view.Status)

	stored := store.Requirement(id)
	assert.Nil(t, stored.SupplierOrderNumber)
	assert.Equal(t, model.StatusPending, stored.Status)
	assert.Equal(t, int64(4), *stored.SupplierID)
}

func TestUpdateReceivesGeneralHold(t *testing.T) {
	ctx := context.Background()
	store, svc := newService(t)
	id := store.AddRequirement(&model.MaterialRequirement{
		OrderID:           utils.Ptr(int64(301)),
		ArchetypeID:       utils.Ptr(int64(12)),
		CustomProductType: utils.Ptr("tape"),
		QuantityOrdered:   decimal.NewFromInt(3),
	})
	product := store.AddProduct(&model.SupplierProduct{Name: "tape", IsActive: true, QuantityOnHand: decimal.NewFromInt(5)})
	store.AddGeneralHold(id, product, model.WholePiece)

	view, err := svc.Update(ctx, id, &core.Patch{Status: common.Some(model.StatusReceived)})
	require.NoError(t, err)
	assert.Equal(t, core.ComputedFulfilled, view.ComputedStatus)
	assert.NotNil(t, view.ReceivedDate)
	assert.Nil(t, view.HeldSupplierProductID)

	assert.True(t, decimal.NewFromInt(2).Equal(store.Product(product).QuantityOnHand))
	assert.Empty(t, store.GeneralHolds())
	cons := store.Consumptions()
	require.Len(t, cons, 1)
	assert.Equal(t, model.ConsumptionGeneral, cons[0].Kind)
}

func TestUpdateVinylReceiveRefused(t *testing.T) {
	ctx := context.Background()
	store, svc := newService(t)
	id := store.AddRequirement(&model.MaterialRequirement{
		IsStockItem:       true,
		ArchetypeID:       utils.Ptr(model.ArchetypeVinyl),
		CustomProductType: utils.Ptr("wrap"),
	})
	unit := store.AddVinyl(&model.VinylInventory{Brand: "3M"})
	store.AddVinylHold(id, unit, model.WholePiece)

	_, err := svc.Update(ctx, id, &core.Patch{Status: common.Some(model.StatusReceived)})
	assert.ErrorIs(t, err, code.ReceiveNeedsReconcileErr)
	assert.Equal(t, model.StatusPending, store.Requirement(id).Status)
	assert.Empty(t, store.Changes())
}

func TestUpdateErrors(t *testing.T) {
	ctx := context.Background()
	store, svc := newService(t)

	_, err := svc.Update(ctx, 404, &core.Patch{Notes: common.Some("x")})
	assert.ErrorIs(t, err, code.RequirementNotFound)

	id := store.AddRequirement(&model.MaterialRequirement{IsStockItem: true, CustomProductType: utils.Ptr("foam")})
	_, err = svc.Update(ctx, id, &core.Patch{})
	assert.ErrorIs(t, err, code.ParamErr)

	store.FailSave = func(int64) error { return code.UpdateDataErr }
	_, err = svc.Update(ctx, id, &core.Patch{Notes: common.Some("x")})
	assert.ErrorIs(t, err, code.UpdateDataErr)
	assert.Empty(t, store.Requirement(id).Notes)
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	store, svc := newService(t)
	store.AddRequirement(&model.MaterialRequirement{IsStockItem: true, CustomProductType: utils.Ptr("foam"), Notes: "for lobby"})
	store.AddRequirement(&model.MaterialRequirement{OrderID: utils.Ptr(int64(1)), CustomProductType: utils.Ptr("tape"), Status: model.StatusBackordered})
	store.AddRequirement(&model.MaterialRequirement{OrderID: utils.Ptr(int64(2)), CustomProductType: utils.Ptr("ink")})

	resp, err := svc.List(ctx, &core.ListReq{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Total)
	assert.Equal(t, 1, resp.Page)

	resp, err = svc.List(ctx, &core.ListReq{StockType: "order", Statuses: []model.RequirementStatus{model.StatusBackordered}})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, core.ComputedBackordered, resp.Data[0].ComputedStatus)

	resp, err = svc.List(ctx, &core.ListReq{Search: "LOBBY"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Total)

	_, err = svc.List(ctx, &core.ListReq{Statuses: []model.RequirementStatus{"lost"}})
	assert.ErrorIs(t, err, code.ParamErr)
}
