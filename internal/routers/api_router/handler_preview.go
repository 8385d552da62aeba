package api_router

import (
	"errors"
	"net/http"

	"github.com/elsendo/elsendo-server/internal/app"
	pkgapp "github.com/elsendo/elsendo-server/pkg/app"
	"github.com/elsendo/elsendo-server/pkg/code"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PreviewHandler share preview gateway handler
// PreviewHandler 分享预览网关处理器
// Crawlers get a crawler-facing OG document, human visitors get the web app shell
// 爬虫访问返回 OG 页面，普通访客返回前端应用壳
type PreviewHandler struct {
	*Handler
	indexContent []byte
}

// NewPreviewHandler creates PreviewHandler instance
// NewPreviewHandler 创建 PreviewHandler 实例
func NewPreviewHandler(a *app.App, indexContent []byte) *PreviewHandler {
	return &PreviewHandler{
		Handler:      NewHandler(a),
		indexContent: indexContent,
	}
}

// SharedEntry serves GET /shared/:token for both crawlers and humans
// SharedEntry 处理分享页入口，按 User-Agent 分流
func (h *PreviewHandler) SharedEntry(c *gin.Context) {
	token := c.Param("token")
	ctx := c.Request.Context()

	if h.App.PreviewService.IsCrawler(c.Request.UserAgent()) {
		h.App.CountShareHit("crawler")

		meta, err := h.App.PreviewService.Resolve(ctx, token)
		if err != nil {
			c.Data(http.StatusNotFound, "text/html; charset=utf-8",
				[]byte("<!DOCTYPE html><html><body><p>Not found</p></body></html>"))
			return
		}

		html, err := h.App.PreviewService.RenderHTML(meta, pkgapp.GetAccessHost(c))
		if err != nil {
			h.logError(ctx, "PreviewHandler.SharedEntry", err)
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", html)
		return
	}

	h.App.CountShareHit("visitor")

	// 有效访问计入统计，解析失败的 Token 交给前端展示错误
	if _, err := h.App.PreviewService.Resolve(ctx, token); err == nil {
		h.App.ShareService.RecordView(token)
	} else {
		h.App.Logger().Debug("shared entry with unresolvable token",
			zap.String("token", token),
			zap.Error(err))
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", h.indexContent)
}

// OGHTML serves the crawler-facing document directly
// OGHTML 直接返回 OG 页面，供调试和反向代理使用
func (h *PreviewHandler) OGHTML(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	ctx := c.Request.Context()
	meta, err := h.App.PreviewService.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, code.ErrorShareNotFound) || errors.Is(err, code.ErrorShareRevoked) {
			c.Status(http.StatusNotFound)
			return
		}
		h.logError(ctx, "PreviewHandler.OGHTML", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	html, err := h.App.PreviewService.RenderHTML(meta, pkgapp.GetAccessHost(c))
	if err != nil {
		h.logError(ctx, "PreviewHandler.OGHTML", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

// OGImage serves the preview card PNG for a token
// OGImage 返回 Token 对应的预览卡片，解析失败时回退到品牌卡片
func (h *PreviewHandler) OGImage(c *gin.Context) {
	ctx := c.Request.Context()

	png, err := h.App.PreviewService.RenderImage(ctx, c.Param("token"))
	if err != nil {
		h.logError(ctx, "PreviewHandler.OGImage", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}

// OGImageDefault serves the generic branded card PNG
// OGImageDefault 返回通用品牌卡片
func (h *PreviewHandler) OGImageDefault(c *gin.Context) {
	png, err := h.App.PreviewService.RenderDefaultImage()
	if err != nil {
		h.logError(c.Request.Context(), "PreviewHandler.OGImageDefault", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", png)
}
