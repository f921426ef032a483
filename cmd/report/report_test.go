package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nexussign/supply/pkg/common"
	"github.com/nexussign/supply/pkg/common/code"
	"github.com/nexussign/supply/pkg/core/purchase"
	"github.com/nexussign/supply/pkg/core/requirement"
	"github.com/nexussign/supply/pkg/core/workbench"
	"github.com/nexussign/supply/pkg/repo/model"
	"github.com/nexussign/supply/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderedView() *requirement.View {
	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	return requirement.NewView(&model.MaterialRequirement{
		BaseModel:           model.BaseModel{ID: 3},
		OrderID:             utils.Ptr(int64(900)),
		CustomProductType:   utils.Ptr("matte laminate"),
		QuantityOrdered:     decimal.NewFromInt(2),
		Unit:                "roll",
		SupplierID:          utils.Ptr(int64(7)),
		OrderedDate:         &day,
		DeliveryMethod:      utils.Ptr(model.DeliveryPickup),
		Status:              model.StatusOrdered,
		SupplierOrderNumber: utils.Ptr("PO-2026-0001"),
	})
}

func TestRenderRequirements(t *testing.T) {
	stock := requirement.NewView(&model.MaterialRequirement{
		BaseModel:   model.BaseModel{ID: 4},
		IsStockItem: true,
		SupplierID:  utils.Ptr(model.SupplierInStock),
		HeldVinylID: utils.Ptr(int64(42)),
		Status:      model.StatusPending,
	})
	out := renderRequirements([]*requirement.View{orderedView(), stock}, 9)

	for _, want := range []string{"order 900", "matte laminate", "2 roll", "#7", "ordered_pickup", "PO-2026-0001",
		"stock", "in stock", "to_be_picked", "vinyl 42", "2 of 9 shown"} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, renderRequirements(nil, 0), "no requirements match")
}

func TestRenderDraftsAndNotices(t *testing.T) {
	out := renderDrafts([]*purchase.DraftGroup{{
		Supplier:     &model.Supplier{BaseModel: model.BaseModel{ID: 7}, Name: "Zenith Films"},
		Contacts:     []*model.SupplierContact{{Email: "orders@zenith.example", IsPrimary: true}},
		Requirements: []*requirement.View{orderedView()},
	}})
	assert.Contains(t, out, "Zenith Films")
	assert.Contains(t, out, "<orders@zenith.example>")
	assert.Contains(t, out, "matte laminate")

	n := renderNotice(workbench.Notice{Level: workbench.LevelWarn, Op: "receive", RequirementID: 12, Message: "hold released"})
	assert.Contains(t, n, "WARN")
	assert.Contains(t, n, "receive #12: hold released")
}

func TestRunReadsEnvironment(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(&common.Resp{Data: &common.PageResp[[]*requirement.View]{
			Data:  []*requirement.View{orderedView()},
			Total: 1,
		}})
	}))
	defer srv.Close()
	t.Setenv("SUPPLY_API_ADDR", srv.URL)
	t.Setenv("SUPPLY_API_TIMEOUT", "2s")

	require.NoError(t, run(context.Background(), &options{statuses: []string{"ordered"}, pageSize: 20}))
	assert.Contains(t, query, "status=ordered")
	assert.Contains(t, query, "page_size=20")

	srv.Close()
	err := run(context.Background(), &options{})
	assert.ErrorIs(t, err, code.RPCHttpErr)
}
