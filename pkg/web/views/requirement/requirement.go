package requirement

import (
	"github.com/gin-gonic/gin"
	"github.com/nexussign/supply/pkg/common"
	"github.com/nexussign/supply/pkg/common/code"
	coreRequirement "github.com/nexussign/supply/pkg/core/requirement"
	requirementImpl "github.com/nexussign/supply/pkg/core/requirement/requirement"
	"github.com/nexussign/supply/pkg/middleware/logger"
)

type Handle struct{ svc coreRequirement.Service }

func NewHandle() *Handle { return &Handle{svc: requirementImpl.New()} }

func (h *Handle) List(ctx *gin.Context) {
	in := &coreRequirement.ListReq{}
	if err := ctx.ShouldBindQuery(in); err != nil {
		logger.Errorf(ctx, "parse List param err: %+v", err)
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.svc.List(ctx, in)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Create(ctx *gin.Context) {
	in := &coreRequirement.CreateReq{}
	if err := ctx.ShouldBindJSON(in); err != nil {
		logger.Errorf(ctx, "parse Create param err: %+v", err)
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.svc.Create(ctx, in)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Get(ctx *gin.Context) {
	in := &coreRequirement.IDReq{}
	if err := ctx.ShouldBindUri(in); err != nil {
		logger.Errorf(ctx, "parse Get param err: %+v", err)
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.svc.Get(ctx, in.ID)
	common.Reply(ctx, err, resp)
}

// Update takes a partial body. A key set to null clears the field; a missing key leaves it.
func (h *Handle) Update(ctx *gin.Context) {
	in := &coreRequirement.IDReq{}
	if err := ctx.ShouldBindUri(in); err != nil {
		logger.Errorf(ctx, "parse Update param err: %+v", err)
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	patch := &coreRequirement.Patch{}
	if err := ctx.ShouldBindJSON(patch); err != nil {
		logger.Errorf(ctx, "parse Update body err: %+v", err)
		common.ReplyErr(ctx, code.ParamErr.WithMsg(err.Error()))
		return
	}
	resp, err := h.svc.Update(ctx, in.ID, patch)
	common.Reply(ctx, err, resp)
}
