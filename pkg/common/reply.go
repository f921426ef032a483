package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nexussign/supply/pkg/common/code"
)

type Resp struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data,omitempty"`
}

// RespT is Resp with a typed payload, for clients decoding replies.
type RespT[T any] struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data T      `json:"data"`
}

func ReplyOk(ctx *gin.Context, data ...any) {
	resp := &Resp{Code: code.Success.Code, Msg: code.Success.Msg}
	if len(data) > 0 {
		resp.Data = data[0]
	}
	ctx.JSON(http.StatusOK, resp)
}

func ReplyErr(ctx *gin.Context, err error, msgs ...string) {
	var e *code.ErrCode
	if !errors.As(err, &e) {
		e = code.UnDefineErr.WithErr(err)
	}
	msg := e.Msg
	if len(msgs) > 0 && msgs[0] != "" {
		msg = msgs[0]
	}
	ctx.AbortWithStatusJSON(code.HTTPStatus(e.Kind), &Resp{Code: e.Code, Msg: msg})
}

// Reply writes data on success and the coded error otherwise.
func Reply(ctx *gin.Context, err error, data ...any) {
	if err != nil {
		ReplyErr(ctx, err)
		return
	}
	ReplyOk(ctx, data...)
}
