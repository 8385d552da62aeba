package api_router

import (
	"github.com/elsendo/elsendo-server/internal/app"
	"github.com/elsendo/elsendo-server/internal/dto"
	pkgapp "github.com/elsendo/elsendo-server/pkg/app"
	"github.com/elsendo/elsendo-server/pkg/code"

	"github.com/gin-gonic/gin"
)

// ShareHandler share API router handler
// ShareHandler 分享 API 路由处理器
type ShareHandler struct {
	*Handler
}

// NewShareHandler creates ShareHandler instance
// NewShareHandler 创建 ShareHandler 实例
func NewShareHandler(a *app.App) *ShareHandler {
	return &ShareHandler{
		Handler: NewHandler(a),
	}
}

// Create creates a share link or returns the existing active one
// Create 创建分享链接，已有有效链接时直接返回
func (h *ShareHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.ShareCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	shareDTO, err := h.App.ShareService.Create(ctx, pkgapp.GetUID(c), params.NoteID)
	if err != nil {
		h.logError(ctx, "ShareHandler.Create", err)
		h.errorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(shareDTO))
}

// Revoke deactivates a share link
// Revoke 撤销分享链接
func (h *ShareHandler) Revoke(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.ShareRevokeRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	if err := h.App.ShareService.Revoke(ctx, pkgapp.GetUID(c), params.Token); err != nil {
		h.logError(ctx, "ShareHandler.Revoke", err)
		h.errorResponse(c, err)
		return
	}

	response.ToResponse(code.Success)
}

// SharedNote returns the read-only note behind a share token, no auth required
// SharedNote 返回分享 Token 对应的只读笔记内容，无需登录
func (h *ShareHandler) SharedNote(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	token := c.Param("token")
	if token == "" {
		response.ToResponse(code.ErrorInvalidParams)
		return
	}

	ctx := c.Request.Context()
	noteDTO, err := h.App.ShareService.GetSharedNote(ctx, token)
	if err != nil {
		h.logError(ctx, "ShareHandler.SharedNote", err)
		h.errorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(noteDTO))
}

// List lists all share links of the current user
// List 列出当前用户的所有分享链接
func (h *ShareHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	ctx := c.Request.Context()
	shares, err := h.App.ShareService.List(ctx, pkgapp.GetUID(c))
	if err != nil {
		h.logError(ctx, "ShareHandler.List", err)
		h.errorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(shares))
}
