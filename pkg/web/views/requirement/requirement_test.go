package requirement

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nexussign/supply/pkg/common"
	"github.com/nexussign/supply/pkg/common/code"
	coreRequirement "github.com/nexussign/supply/pkg/core/requirement"
	requirementImpl "github.com/nexussign/supply/pkg/core/requirement/requirement"
	"github.com/nexussign/supply/pkg/middleware/logger"
	"github.com/nexussign/supply/pkg/repo/memory"
	"github.com/nexussign/supply/pkg/repo/model"
	"github.com/nexussign/supply/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newRouter(store *memory.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &Handle{svc: requirementImpl.NewWithStores(store.Stores(), store)}
	g := gin.New()
	r := g.Group("/api/v1/requirements")
	r.GET("", h.List)
	r.POST("", h.Create)
	r.GET("/:id", h.Get)
	r.PATCH("/:id", h.Update)
	return g
}

func do[T any](t *testing.T, g *gin.Engine, method, path, body string) (int, *common.RespT[T]) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	g.ServeHTTP(w, req)
	ret := &common.RespT[T]{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), ret), w.Body.String())
	return w.Code, ret
}

func TestCreateAndGet(t *testing.T) {
	store := memory.New()
	g := newRouter(store)

	status, ret := do[*coreRequirement.View](t, g, http.MethodPost, "/api/v1/requirements",
		`{"order_id": 11, "custom_product_type": "matte laminate", "quantity_ordered": "2.5", "unit": "roll"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, code.Success.Code, ret.Code)
	assert.Equal(t, coreRequirement.ComputedPending, ret.Data.ComputedStatus)
	assert.Equal(t, "roll", ret.Data.Unit)

	status, got := do[*coreRequirement.View](t, g, http.MethodGet, "/api/v1/requirements/"+strconv.FormatInt(ret.Data.ID, 10), "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "matte laminate", *got.Data.CustomProductType)

	status, missing := do[any](t, g, http.MethodGet, "/api/v1/requirements/999", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, code.RequirementNotFound.Code, missing.Code)

	status, bad := do[any](t, g, http.MethodPost, "/api/v1/requirements", `{"order_id": 11}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, code.ParamErr.Code, bad.Code)
}

func TestPatchNullCascades(t *testing.T) {
	store := memory.New()
	g := newRouter(store)
	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	id := store.AddRequirement(&model.MaterialRequirement{
		OrderID:             utils.Ptr(int64(1)),
		CustomProductType:   utils.Ptr("ink"),
		SupplierID:          utils.Ptr(int64(4)),
		OrderedDate:         &day,
		DeliveryMethod:      utils.Ptr(model.DeliveryShipping),
		Status:              model.StatusOrdered,
		SupplierOrderNumber: utils.Ptr("PO-77"),
	})

	status, ret := do[*coreRequirement.View](t, g, http.MethodPatch, "/api/v1/requirements/"+strconv.FormatInt(id, 10), `{"ordered_date": null}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, coreRequirement.ComputedPending, ret.Data.ComputedStatus)
	assert.Nil(t, ret.Data.SupplierOrderNumber)
	assert.Equal(t, int64(4), *ret.Data.SupplierID)

	status, bad := do[any](t, g, http.MethodPatch, "/api/v1/requirements/"+strconv.FormatInt(id, 10), `{"delivery_method": "drone"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, code.DeliveryMethodErr.Code, bad.Code)
}

func TestListFilters(t *testing.T) {
	store := memory.New()
	g := newRouter(store)
	store.AddRequirement(&model.MaterialRequirement{OrderID: utils.Ptr(int64(1)), CustomProductType: utils.Ptr("ink")})
	ordered := store.AddRequirement(&model.MaterialRequirement{
		OrderID: utils.Ptr(int64(2)), CustomProductType: utils.Ptr("tape"), Status: model.StatusOrdered,
	})

	status, ret := do[*common.PageResp[[]*coreRequirement.View]](t, g, http.MethodGet, "/api/v1/requirements?status=ordered", "")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, ret.Data.Data, 1)
	assert.Equal(t, ordered, ret.Data.Data[0].ID)

	status, bad := do[any](t, g, http.MethodGet, "/api/v1/requirements?stock_type=bogus", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, code.ParamErr.Code, bad.Code)
}

func TestBindFailuresAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	t.Cleanup(logger.Replace(zap.New(core)))

	store := memory.New()
	g := newRouter(store)
	id := store.AddRequirement(&model.MaterialRequirement{OrderID: utils.Ptr(int64(1)), CustomProductType: utils.Ptr("ink")})

	status, ret := do[any](t, g, http.MethodPatch, "/api/v1/requirements/abc", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, code.ParamErr.Code, ret.Code)

	status, _ = do[any](t, g, http.MethodPatch, "/api/v1/requirements/"+strconv.FormatInt(id, 10), `{"notes": 5}`)
	assert.Equal(t, http.StatusBadRequest, status)

	require.Equal(t, 2, logs.Len())
	assert.Contains(t, logs.All()[0].Message, "parse Update param err")
	assert.Contains(t, logs.All()[1].Message, "parse Update body err")
	assert.Equal(t, "ink", *store.Requirement(id).CustomProductType)
}
