// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"strings"

	"github.com/elsendo/elsendo-server/internal/domain"
	"github.com/elsendo/elsendo-server/pkg/code"
	"github.com/elsendo/elsendo-server/pkg/ogimage"
	"github.com/elsendo/elsendo-server/pkg/util"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Preview text budgets
// 预览文本长度预算
const (
	metaDescriptionLength = 200 // og:description // 元描述
	imagePreviewLength    = 150 // preview text drawn on the card // 卡片上绘制的摘要
)

// ShareMeta resolved metadata of a shared note
// ShareMeta 分享笔记解析出的元数据
type ShareMeta struct {
	Token       string // Share token // 分享 Token
	Title       string // Resolved title with fallback applied // 应用回退后的标题
	Description string // Resolved description with fallback applied // 应用回退后的描述
}

// PreviewService defines the share preview gateway interface
// PreviewService 定义分享预览网关接口
type PreviewService interface {
	// IsCrawler reports whether a User-Agent belongs to a known social crawler
	// IsCrawler 判断 User-Agent 是否属于已知社交爬虫
	IsCrawler(userAgent string) bool

	// Resolve resolves a share token into preview metadata
	// Resolve 将分享 Token 解析为预览元数据
	Resolve(ctx context.Context, token string) (*ShareMeta, error)

	// RenderHTML renders the crawler-facing OG document
	// RenderHTML 渲染面向爬虫的 OG 页面
	RenderHTML(meta *ShareMeta, baseURL string) ([]byte, error)

	// RenderImage renders the preview card PNG for a token
	// RenderImage 渲染 Token 对应的预览卡片 PNG
	RenderImage(ctx context.Context, token string) ([]byte, error)

	// RenderDefaultImage renders the generic branded card PNG
	// RenderDefaultImage 渲染通用品牌卡片 PNG
	RenderDefaultImage() ([]byte, error)
}

// ogTemplate crawler-facing document: meta tags plus a redirect for human visitors
// ogTemplate 面向爬虫的页面：meta 标签加上对真实访客的跳转
var ogTemplate = template.Must(template.New("og").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} - {{.SiteName}}</title>
<meta name="description" content="{{.Description}}">
<meta property="og:type" content="article">
<meta property="og:url" content="{{.URL}}">
<meta property="og:title" content="{{.Title}}">
<meta property="og:description" content="{{.Description}}">
<meta property="og:image" content="{{.ImageURL}}">
<meta property="og:site_name" content="{{.SiteName}}">
<meta name="twitter:card" content="summary_large_image">
<meta name="twitter:url" content="{{.URL}}">
<meta name="twitter:title" content="{{.Title}}">
<meta name="twitter:description" content="{{.Description}}">
<meta name="twitter:image" content="{{.ImageURL}}">
<meta http-equiv="refresh" content="0;url={{.URL}}">
</head>
<body>
<p>Redirecting to <a href="{{.URL}}">{{.Title}}</a>...</p>
<script>window.location.replace({{.URL}});</script>
</body>
</html>
`))

// ogTemplateData og 页面模板数据
type ogTemplateData struct {
	Title       string
	Description string
	URL         string
	ImageURL    string
	SiteName    string
}

// previewService implementation of PreviewService interface
// previewService 实现 PreviewService 接口
type previewService struct {
	shareRepo domain.ShareLinkRepository
	noteRepo  domain.NoteRepository
	renderer  *ogimage.Renderer
	logger    *zap.Logger
	config    *ServiceConfig

	// sf collapses concurrent resolutions of the same token
	// sf 合并同一 Token 的并发解析
	sf singleflight.Group
}

// NewPreviewService creates PreviewService instance
// NewPreviewService 创建 PreviewService 实例
func NewPreviewService(shareRepo domain.ShareLinkRepository, noteRepo domain.NoteRepository, renderer *ogimage.Renderer, logger *zap.Logger, config *ServiceConfig) PreviewService {
	return &previewService{
		shareRepo: shareRepo,
		noteRepo:  noteRepo,
		renderer:  renderer,
		logger:    logger,
		config:    config,
	}
}

// IsCrawler 判断 User-Agent 是否属于已知社交爬虫
// 大小写不敏感的子串匹配，空 UA 视为普通访客
func (s *previewService) IsCrawler(userAgent string) bool {
	if userAgent == "" {
		return false
	}
	ua := strings.ToLower(userAgent)
	for _, sig := range s.config.Preview.CrawlerSignatures {
		if strings.Contains(ua, strings.ToLower(sig)) {
			return true
		}
	}
	return false
}

// Resolve 将分享 Token 解析为预览元数据
// 已删除的笔记按不存在处理，标题与描述回退到站点文案
func (s *previewService) Resolve(ctx context.Context, token string) (*ShareMeta, error) {
	v, err, _ := s.sf.Do(token, func() (interface{}, error) {
		return s.resolve(ctx, token)
	})
	if err != nil {
		return nil, err
	}
	return v.(*ShareMeta), nil
}

func (s *previewService) resolve(ctx context.Context, token string) (*ShareMeta, error) {
	share, err := s.shareRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorShareNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if !share.IsViewable() {
		return nil, code.ErrorShareRevoked
	}

	note, err := s.noteRepo.GetByIDPublic(ctx, share.NoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorShareNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if note.IsDeleted {
		return nil, code.ErrorShareNotFound
	}

	meta := &ShareMeta{
		Token:       token,
		Title:       strings.TrimSpace(note.Title),
		Description: util.TruncateRunes(util.StripHTML(note.Content), metaDescriptionLength),
	}
	if meta.Title == "" {
		meta.Title = s.config.Preview.FallbackTitle
	}
	if meta.Description == "" {
		meta.Description = s.config.Preview.Tagline
	}
	return meta, nil
}

// RenderHTML 渲染面向爬虫的 OG 页面
func (s *previewService) RenderHTML(meta *ShareMeta, baseURL string) ([]byte, error) {
	base := s.config.Preview.PublicURL
	if base == "" {
		base = baseURL
	}
	base = strings.TrimRight(base, "/")

	var buf bytes.Buffer
	err := ogTemplate.Execute(&buf, ogTemplateData{
		Title:       meta.Title,
		Description: meta.Description,
		URL:         base + "/shared/" + meta.Token,
		ImageURL:    base + "/api/og-image/" + meta.Token,
		SiteName:    s.config.Preview.SiteName,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderImage 渲染 Token 对应的预览卡片 PNG
// 解析失败时回退到通用品牌卡片
func (s *previewService) RenderImage(ctx context.Context, token string) ([]byte, error) {
	meta, err := s.Resolve(ctx, token)
	if err != nil {
		s.logger.Debug("share image fallback",
			zap.String("token", token),
			zap.Error(err))
		return s.renderer.RenderDefault()
	}

	preview := util.TruncateRunes(meta.Description, imagePreviewLength)
	return s.renderer.Render(meta.Title, preview)
}

// RenderDefaultImage 渲染通用品牌卡片 PNG
func (s *previewService) RenderDefaultImage() ([]byte, error) {
	return s.renderer.RenderDefault()
}
