package hold

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nexussign/supply/pkg/common"
	"github.com/nexussign/supply/pkg/common/code"
	coreHold "github.com/nexussign/supply/pkg/core/hold"
	holdImpl "github.com/nexussign/supply/pkg/core/hold/hold"
	"github.com/nexussign/supply/pkg/repo/memory"
	"github.com/nexussign/supply/pkg/repo/model"
	"github.com/nexussign/supply/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(g *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	g.ServeHTTP(w, req)
	return w
}

func TestHoldRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := memory.New()
	h := &Handle{svc: holdImpl.NewWithStores(store.Stores(), store)}
	g := gin.New()
	g.POST("/holds", h.Place)
	g.GET("/holds/:requirement_id", h.Current)
	g.DELETE("/holds/:requirement_id", h.Release)
	g.POST("/stock/check", h.CheckStock)

	reqID := store.AddRequirement(&model.MaterialRequirement{
		IsStockItem: true, ArchetypeID: utils.Ptr(model.ArchetypeVinyl), CustomProductType: utils.Ptr("wrap"),
	})
	unit := store.AddVinyl(&model.VinylInventory{Brand: "Oracal"})
	used := store.AddVinyl(&model.VinylInventory{Brand: "Oracal", Disposition: model.DispositionUsed})
	id := strconv.FormatInt(reqID, 10)

	w := serve(g, http.MethodPost, "/holds", `{"requirement_id": `+id+`, "target": {"kind": "vinyl", "id": `+strconv.FormatInt(used, 10)+`}, "quantity": {"mode": "whole"}}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	ret := &common.Resp{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), ret))
	assert.Equal(t, code.StockUnavailableErr.Code, ret.Code)

	w = serve(g, http.MethodPost, "/holds", `{"requirement_id": `+id+`, "target": {"kind": "roll", "id": 1}, "quantity": {"mode": "whole"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(g, http.MethodPost, "/holds", `{"requirement_id": `+id+`, "target": {"kind": "vinyl", "id": `+strconv.FormatInt(unit, 10)+`}, "quantity": {"mode": "custom", "value": "3 yd"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = serve(g, http.MethodGet, "/holds/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	view := &common.RespT[*coreHold.HoldView]{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), view))
	assert.Equal(t, unit, view.Data.UnitID)
	assert.Equal(t, "3 yd", view.Data.QuantityHeld)

	w = serve(g, http.MethodPost, "/stock/check", `{"requirement_id": `+id+`}`)
	require.Equal(t, http.StatusOK, w.Code)
	avail := &common.RespT[*coreHold.StockAvailability]{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), avail))
	assert.False(t, avail.Data.HasStock)

	w = serve(g, http.MethodDelete, "/holds/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, store.Requirement(reqID).HeldVinylID)

	w = serve(g, http.MethodDelete, "/holds/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
