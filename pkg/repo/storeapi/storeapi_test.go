package storeapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nexussign/supply/pkg/common"
	"github.com/nexussign/supply/pkg/common/code"
	"github.com/nexussign/supply/pkg/core/hold"
	"github.com/nexussign/supply/pkg/core/requirement"
	"github.com/nexussign/supply/pkg/repo/model"
	"github.com/nexussign/supply/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reply(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestListRequirementsQuery(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		reply(w, http.StatusOK, &common.Resp{Data: &common.PageResp[[]*requirement.View]{
			Data: []*requirement.View{requirement.NewView(&model.MaterialRequirement{
				BaseModel: model.BaseModel{ID: 7},
				Status:    model.StatusPending,
			})},
			Total: 1, Page: 2, PageSize: 10,
		}})
	}))
	defer srv.Close()

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	req := &requirement.ListReq{
		Statuses:   []model.RequirementStatus{model.StatusPending, model.StatusOrdered},
		StockType:  "order",
		SupplierID: utils.Ptr(int64(3)),
		EntryFrom:  &from,
		Search:     "PO-1",
	}
	req.Page, req.PageSize = 2, 10

	page, err := New(srv.URL, time.Second).ListRequirements(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, int64(7), page.Data[0].ID)
	assert.Equal(t, requirement.ComputedPending, page.Data[0].ComputedStatus)
	assert.Equal(t, int64(1), page.Total)

	require.NotNil(t, got)
	assert.Equal(t, "/api/v1/requirements", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, []string{"pending", "ordered"}, q["status"])
	assert.Equal(t, "order", q.Get("stock_type"))
	assert.Equal(t, "3", q.Get("supplier_id"))
	assert.Equal(t, "2026-03-01", q.Get("entry_from"))
	assert.Equal(t, "PO-1", q.Get("search"))
	assert.Equal(t, "2", q.Get("page"))
	assert.Empty(t, q.Get("entry_to"))
}

func TestUpdateSendsExplicitNull(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v1/requirements/12", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		reply(w, http.StatusOK, &common.Resp{Data: requirement.NewView(&model.MaterialRequirement{BaseModel: model.BaseModel{ID: 12}})})
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).UpdateRequirement(context.Background(), 12, &requirement.Patch{
		OrderedDate: common.Null[time.Time](),
		Notes:       common.Some("call first"),
	})
	require.NoError(t, err)

	v, ok := body["ordered_date"]
	assert.True(t, ok)
	assert.Nil(t, v)
	assert.Equal(t, "call first", body["notes"])
	assert.NotContains(t, body, "supplier_id")
}

func TestCodedErrorsRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusConflict, &common.Resp{Code: code.StockUnavailableErr.Code, Msg: "vinyl 9 is used"})
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).PlaceHold(context.Background(), &hold.PlaceReq{
		RequirementID: 1,
		Target:        hold.Target{Kind: hold.KindVinyl, ID: 9},
		Quantity:      hold.Quantity{Mode: hold.QuantityWhole},
	})
	assert.ErrorIs(t, err, code.StockUnavailableErr)
	assert.Equal(t, code.KindConflict, code.KindOf(err))
	assert.Contains(t, err.Error(), "vinyl 9 is used")
}

func TestTransportFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	c := New(srv.URL, time.Second)
	_, err := c.GetRequirement(context.Background(), 1)
	assert.ErrorIs(t, err, code.RPCHttpCodeErr)

	srv.Close()
	err = c.ReleaseHold(context.Background(), 1)
	assert.ErrorIs(t, err, code.RPCHttpErr)
	assert.Equal(t, code.KindTransport, code.KindOf(err))
}
