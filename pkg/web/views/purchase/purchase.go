package purchase

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/nexussign/supply/pkg/common"
	"github.com/nexussign/supply/pkg/common/code"
	corePurchase "github.com/nexussign/supply/pkg/core/purchase"
	purchaseImpl "github.com/nexussign/supply/pkg/core/purchase/purchase"
	"github.com/nexussign/supply/pkg/middleware/logger"
)

type Handle struct{ svc corePurchase.Service }

func NewHandle() *Handle { return &Handle{svc: purchaseImpl.New()} }

func (h *Handle) Drafts(ctx *gin.Context) {
	resp, err := h.svc.DraftGroups(ctx)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Unassigned(ctx *gin.Context) {
	resp, err := h.svc.Unassigned(ctx)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Submit(ctx *gin.Context) {
	in := &corePurchase.SubmitReq{}
	if err := ctx.ShouldBindJSON(in); err != nil {
		logger.Errorf(ctx, "parse Submit param err: %+v", err)
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.svc.Submit(ctx, in)
	common.Reply(ctx, err, resp)
}

// Ready reports whether supplier emails can still be dispatched.
func (h *Handle) Ready(ctx context.Context) error {
	return h.svc.Ready(ctx)
}

// Close waits for queued supplier emails.
func (h *Handle) Close(ctx context.Context) error {
	return h.svc.Close(ctx)
}
