// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"context"
	"errors"

	"github.com/elsendo/elsendo-server/internal/app"
	"github.com/elsendo/elsendo-server/internal/middleware"
	pkgapp "github.com/elsendo/elsendo-server/pkg/app"
	"github.com/elsendo/elsendo-server/pkg/code"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 基础 Handler 结构体，封装 App Container
// 所有 API Handler 都应该嵌入此结构体以获得依赖注入能力
type Handler struct {
	App *app.App
}

// NewHandler 创建基础 Handler 实例
func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

// logError 记录带 Trace ID 的错误日志
func (h *Handler) logError(ctx context.Context, operation string, err error) {
	h.App.Logger().Error(operation,
		zap.String("trace_id", middleware.GetTraceID(ctx)),
		zap.Error(err))
}

// errorResponse 统一错误响应处理
// 业务错误直接透传错误码，未知错误收敛为内部错误
func (h *Handler) errorResponse(c *gin.Context, err error) {
	response := pkgapp.NewResponse(c)

	var codeErr *code.Code
	if errors.As(err, &codeErr) {
		response.ToResponse(codeErr)
		return
	}
	response.ToResponse(code.ErrorServerInternal.WithDetails(err.Error()))
}
