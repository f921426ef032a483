package receipt

import (
	"github.com/gin-gonic/gin"
	"github.com/nexussign/supply/pkg/common"
	"github.com/nexussign/supply/pkg/common/code"
	coreReceipt "github.com/nexussign/supply/pkg/core/receipt"
	receiptImpl "github.com/nexussign/supply/pkg/core/receipt/receipt"
	"github.com/nexussign/supply/pkg/middleware/logger"
)

type Handle struct{ svc coreReceipt.Service }

func NewHandle() *Handle { return &Handle{svc: receiptImpl.New()} }

func (h *Handle) OtherHolds(ctx *gin.Context) {
	in := &coreReceipt.OtherHoldsReq{}
	if err := ctx.ShouldBindQuery(in); err != nil {
		logger.Errorf(ctx, "parse OtherHolds param err: %+v", err)
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.svc.OtherHolds(ctx, in)
	common.Reply(ctx, err, resp)
}

// Receive replies 200 even when some selected holds failed; the per-item results say which.
func (h *Handle) Receive(ctx *gin.Context) {
	in := &coreReceipt.ReceiveReq{}
	if err := ctx.ShouldBindJSON(in); err != nil {
		logger.Errorf(ctx, "parse Receive param err: %+v", err)
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.svc.Receive(ctx, in)
	common.Reply(ctx, err, resp)
}
