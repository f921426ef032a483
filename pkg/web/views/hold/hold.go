package hold

import (
	"github.com/gin-gonic/gin"
	"github.com/nexussign/supply/pkg/common"
	"github.com/nexussign/supply/pkg/common/code"
	coreHold "github.com/nexussign/supply/pkg/core/hold"
	holdImpl "github.com/nexussign/supply/pkg/core/hold/hold"
	"github.com/nexussign/supply/pkg/middleware/logger"
)

type Handle struct{ svc coreHold.Service }

func NewHandle() *Handle { return &Handle{svc: holdImpl.New()} }

func (h *Handle) Place(ctx *gin.Context) {
	in := &coreHold.PlaceReq{}
	if err := ctx.ShouldBindJSON(in); err != nil {
		logger.Errorf(ctx, "parse Place param err: %+v", err)
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.svc.PlaceHold(ctx, in)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Edit(ctx *gin.Context) {
	in := &coreHold.PlaceReq{}
	if err := ctx.ShouldBindJSON(in); err != nil {
		logger.Errorf(ctx, "parse Edit param err: %+v", err)
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.svc.EditHold(ctx, in)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Current(ctx *gin.Context) {
	in := &coreHold.RequirementReq{}
	if err := ctx.ShouldBindUri(in); err != nil {
		logger.Errorf(ctx, "parse Current param err: %+v", err)
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.svc.CurrentHold(ctx, in.RequirementID)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Release(ctx *gin.Context) {
	in := &coreHold.RequirementReq{}
	if err := ctx.ShouldBindUri(in); err != nil {
		logger.Errorf(ctx, "parse Release param err: %+v", err)
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	common.Reply(ctx, h.svc.ReleaseHold(ctx, in.RequirementID))
}

func (h *Handle) Candidates(ctx *gin.Context) {
	in := &coreHold.RequirementReq{}
	if err := ctx.ShouldBindUri(in); err != nil {
		logger.Errorf(ctx, "parse Candidates param err: %+v", err)
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.svc.Candidates(ctx, in.RequirementID)
	common.Reply(ctx, err, resp)
}

func (h *Handle) CheckStock(ctx *gin.Context) {
	in := &coreHold.StockCheckReq{}
	if err := ctx.ShouldBindJSON(in); err != nil {
		logger.Errorf(ctx, "parse CheckStock param err: %+v", err)
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.svc.CheckStock(ctx, in)
	common.Reply(ctx, err, resp)
}
