package api_router

import (
	"github.com/elsendo/elsendo-server/internal/app"
	"github.com/elsendo/elsendo-server/internal/dto"
	pkgapp "github.com/elsendo/elsendo-server/pkg/app"
	"github.com/elsendo/elsendo-server/pkg/code"

	"github.com/gin-gonic/gin"
)

// NoteHandler note API router handler
// NoteHandler 笔记 API 路由处理器
type NoteHandler struct {
	*Handler
}

// NewNoteHandler creates NoteHandler instance
// NewNoteHandler 创建 NoteHandler 实例
func NewNoteHandler(a *app.App) *NoteHandler {
	return &NoteHandler{
		Handler: NewHandler(a),
	}
}

// Create creates a note
// Create 创建笔记
func (h *NoteHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	noteDTO, err := h.App.NoteService.Create(ctx, pkgapp.GetUID(c), params)
	if err != nil {
		h.logError(ctx, "NoteHandler.Create", err)
		h.errorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(noteDTO))
}

// Get returns a single note with content
// Get 获取单条笔记
func (h *NoteHandler) Get(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	id := c.Param("id")
	if id == "" {
		response.ToResponse(code.ErrorInvalidParams)
		return
	}

	ctx := c.Request.Context()
	noteDTO, err := h.App.NoteService.Get(ctx, pkgapp.GetUID(c), id)
	if err != nil {
		h.logError(ctx, "NoteHandler.Get", err)
		h.errorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(noteDTO))
}

// List returns a page of notes without content
// List 分页获取笔记列表
func (h *NoteHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	page := pkgapp.GetPage(c)
	pageSize := pkgapp.GetPageSize(c)

	ctx := c.Request.Context()
	items, count, err := h.App.NoteService.List(ctx, pkgapp.GetUID(c), page, pageSize)
	if err != nil {
		h.logError(ctx, "NoteHandler.List", err)
		h.errorResponse(c, err)
		return
	}

	response.ToResponseList(code.Success, items, int(count))
}

// Delete soft deletes a note
// Delete 软删除笔记
func (h *NoteHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteDeleteRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	if err := h.App.NoteService.Delete(ctx, pkgapp.GetUID(c), params.ID); err != nil {
		h.logError(ctx, "NoteHandler.Delete", err)
		h.errorResponse(c, err)
		return
	}

	response.ToResponse(code.Success)
}

// Content queues an edit through the debounced autosave pipeline
// Content 将编辑提交到防抖自动保存管道，响应当前保存状态
func (h *NoteHandler) Content(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteContentRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	state, err := h.App.NoteService.SubmitContent(ctx, pkgapp.GetUID(c), params)
	if err != nil {
		h.logError(ctx, "NoteHandler.Content", err)
		h.errorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(state))
}

// SaveState reports the autosave state of a note
// SaveState 查询笔记的自动保存状态
func (h *NoteHandler) SaveState(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteSaveStateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	state := h.App.NoteService.SaveState(pkgapp.GetUID(c), params.ID)
	response.ToResponse(code.Success.WithData(state))
}
