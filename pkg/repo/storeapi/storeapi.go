package storeapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/nexussign/supply/internal/config"
	"github.com/nexussign/supply/pkg/common"
	"github.com/nexussign/supply/pkg/common/code"
	"github.com/nexussign/supply/pkg/core/hold"
	"github.com/nexussign/supply/pkg/core/purchase"
	"github.com/nexussign/supply/pkg/core/receipt"
	"github.com/nexussign/supply/pkg/core/requirement"
	"github.com/nexussign/supply/pkg/core/workbench"
	"github.com/nexussign/supply/pkg/middleware/logger"
)

const dateLayout = "2006-01-02"

// Client reaches the supply API over HTTP. Every call is made once; failures come back
// as coded errors for the session to report.
type Client struct {
	client *resty.Client
}

var _ workbench.RequirementStore = (*Client)(nil)

func NewClient() *Client {
	conf := config.Global().Client
	return New(conf.APIAddr, conf.Timeout)
}

func New(addr string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		client: resty.New().
			SetTimeout(timeout).
			SetBaseURL(addr).
			SetHeader("Content-Type", "application/json"),
	}
}

// call runs r against path and unwraps the reply envelope. A reply carrying an error code
// is rebuilt into the registered error so callers can match it with errors.Is.
func call[T any](ctx context.Context, r *resty.Request, method, path string) (T, error) {
	var zero T
	ret := &common.RespT[T]{}
	res, err := r.SetContext(ctx).
		SetResult(ret).
		SetError(ret).
		Execute(method, path)
	if err != nil {
		logger.Errorf(ctx, "supply api %s %s err: %+v", method, path, err)
		return zero, code.RPCHttpErr.WithErr(err)
	}
	if ret.Code != code.Success.Code {
		return zero, code.FromCode(ret.Code, ret.Msg)
	}
	if res.StatusCode() != http.StatusOK {
		logger.Errorf(ctx, "supply api %s %s http code: %d", method, path, res.StatusCode())
		return zero, code.RPCHttpCodeErr.WithMsgf("%s %s code: %d", method, path, res.StatusCode())
	}
	return ret.Data, nil
}

func listQuery(req *requirement.ListReq) url.Values {
	v := url.Values{}
	if req == nil {
		return v
	}
	if req.Page > 0 {
		v.Set("page", strconv.Itoa(req.Page))
	}
	if req.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(req.PageSize))
	}
	for _, s := range req.Statuses {
		v.Add("status", string(s))
	}
	if req.StockType != "" {
		v.Set("stock_type", string(req.StockType))
	}
	if req.SupplierID != nil {
		v.Set("supplier_id", strconv.FormatInt(*req.SupplierID, 10))
	}
	if req.EntryFrom != nil {
		v.Set("entry_from", req.EntryFrom.Format(dateLayout))
	}
	if req.EntryTo != nil {
		v.Set("entry_to", req.EntryTo.Format(dateLayout))
	}
	if req.Search != "" {
		v.Set("search", req.Search)
	}
	return v
}

func (c *Client) ListRequirements(ctx context.Context, req *requirement.ListReq) (*common.PageResp[[]*requirement.View], error) {
	return call[*common.PageResp[[]*requirement.View]](ctx,
		c.client.R().SetQueryParamsFromValues(listQuery(req)), http.MethodGet, "/api/v1/requirements")
}

func (c *Client) GetRequirement(ctx context.Context, id int64) (*requirement.View, error) {
	return call[*requirement.View](ctx, c.client.R(), http.MethodGet, fmt.Sprintf("/api/v1/requirements/%d", id))
}

func (c *Client) CreateRequirement(ctx context.Context, req *requirement.CreateReq) (*requirement.View, error) {
	return call[*requirement.View](ctx, c.client.R().SetBody(req), http.MethodPost, "/api/v1/requirements")
}

func (c *Client) UpdateRequirement(ctx context.Context, id int64, patch *requirement.Patch) (*requirement.View, error) {
	return call[*requirement.View](ctx, c.client.R().SetBody(patch), http.MethodPatch, fmt.Sprintf("/api/v1/requirements/%d", id))
}

func (c *Client) PlaceHold(ctx context.Context, req *hold.PlaceReq) (*hold.HoldView, error) {
	return call[*hold.HoldView](ctx, c.client.R().SetBody(req), http.MethodPost, "/api/v1/holds")
}

func (c *Client) EditHold(ctx context.Context, req *hold.PlaceReq) (*hold.HoldView, error) {
	return call[*hold.HoldView](ctx, c.client.R().SetBody(req), http.MethodPut, "/api/v1/holds")
}

func (c *Client) ReleaseHold(ctx context.Context, requirementID int64) error {
	_, err := call[any](ctx, c.client.R(), http.MethodDelete, fmt.Sprintf("/api/v1/holds/%d", requirementID))
	return err
}

func (c *Client) CurrentHold(ctx context.Context, requirementID int64) (*hold.HoldView, error) {
	return call[*hold.HoldView](ctx, c.client.R(), http.MethodGet, fmt.Sprintf("/api/v1/holds/%d", requirementID))
}

func (c *Client) Candidates(ctx context.Context, requirementID int64) (*hold.CandidatesResp, error) {
	return call[*hold.CandidatesResp](ctx, c.client.R(), http.MethodGet, fmt.Sprintf("/api/v1/holds/%d/candidates", requirementID))
}

func (c *Client) CheckStock(ctx context.Context, req *hold.StockCheckReq) (*hold.StockAvailability, error) {
	return call[*hold.StockAvailability](ctx, c.client.R().SetBody(req), http.MethodPost, "/api/v1/stock/check")
}

func (c *Client) OtherHolds(ctx context.Context, req *receipt.OtherHoldsReq) ([]*receipt.OtherHold, error) {
	return call[[]*receipt.OtherHold](ctx, c.client.R().SetQueryParams(map[string]string{
		"requirement_id": strconv.FormatInt(req.RequirementID, 10),
		"vinyl_id":       strconv.FormatInt(req.VinylID, 10),
	}), http.MethodGet, "/api/v1/receipts/other-holds")
}

func (c *Client) Receive(ctx context.Context, req *receipt.ReceiveReq) (*receipt.ReceiveResp, error) {
	return call[*receipt.ReceiveResp](ctx, c.client.R().SetBody(req), http.MethodPost, "/api/v1/receipts/receive")
}

func (c *Client) DraftGroups(ctx context.Context) ([]*purchase.DraftGroup, error) {
	return call[[]*purchase.DraftGroup](ctx, c.client.R(), http.MethodGet, "/api/v1/purchase/drafts")
}

func (c *Client) Unassigned(ctx context.Context) ([]*requirement.View, error) {
	return call[[]*requirement.View](ctx, c.client.R(), http.MethodGet, "/api/v1/purchase/unassigned")
}

func (c *Client) SubmitDraft(ctx context.Context, req *purchase.SubmitReq) (*purchase.SubmitResp, error) {
	return call[*purchase.SubmitResp](ctx, c.client.R().SetBody(req), http.MethodPost, "/api/v1/purchase/submit")
}
