package routers

import (
	"embed"
	"io/fs"
	"net/http"
	"time"

	"github.com/elsendo/elsendo-server/internal/app"
	"github.com/elsendo/elsendo-server/internal/middleware"
	"github.com/elsendo/elsendo-server/internal/routers/api_router"
	"github.com/elsendo/elsendo-server/pkg/limiter"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var methodLimiters = limiter.NewMethodLimiter().AddBuckets(
	limiter.BucketRule{
		Key:          "/auth",
		FillInterval: time.Second,
		Capacity:     10,
		Quantum:      10,
	},
)

func NewRouter(frontendFiles embed.FS, appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {

	// 获取配置
	cfg := appContainer.Config()

	frontendAssets, _ := fs.Sub(frontendFiles, "frontend/assets")
	frontendIndexContent, _ := frontendFiles.ReadFile("frontend/index.html")

	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", frontendIndexContent)
	})

	cacheMiddleware := func(c *gin.Context) {
		// 设置强缓存，缓存一年
		c.Header("Cache-Control", "public, s-maxage=31536000, max-age=31536000, must-revalidate")
		c.Next()
	}

	r.Group("/assets", cacheMiddleware).StaticFS("/", http.FS(frontendAssets))

	// 创建 Handlers（注入 App Container）
	userHandler := api_router.NewUserHandler(appContainer)
	noteHandler := api_router.NewNoteHandler(appContainer)
	shareHandler := api_router.NewShareHandler(appContainer)
	previewHandler := api_router.NewPreviewHandler(appContainer, frontendIndexContent)
	versionHandler := api_router.NewVersionHandler(appContainer)

	// 分享页入口：爬虫取 OG 页面，访客取前端应用壳
	r.GET("/shared/:token", previewHandler.SharedEntry)

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfo(app.Name, appContainer.Version().Version))
		if cfg.Tracer.Enabled {
			api.Use(middleware.TraceMiddleware(cfg.Tracer.Header))
		}
		api.Use(middleware.RateLimiter(methodLimiters))
		api.Use(middleware.ContextTimeout(time.Duration(cfg.App.DefaultContextTimeout) * time.Second))
		api.Use(middleware.CORS())
		api.Use(middleware.LangWithTranslator(uni))
		api.Use(middleware.AccessLogWithLogger(appContainer.Logger()))
		api.Use(middleware.RecoveryWithLogger(appContainer.Logger()))
		if appContainer.Metrics != nil {
			api.Use(appContainer.Metrics.Handler())
		}

		api.POST("/user/register", userHandler.Register)
		api.POST("/user/login", userHandler.Login)

		// 添加服务端版本号接口（无需认证）
		api.GET("/version", versionHandler.ServerVersion)

		// 预览网关接口（无需认证，面向爬虫和反向代理）
		api.GET("/og/:token", previewHandler.OGHTML)
		api.GET("/og-image", previewHandler.OGImageDefault)
		api.GET("/og-image/:token", previewHandler.OGImage)

		// 分享页面只读内容接口（无需认证）
		api.GET("/shared/:token", shareHandler.SharedNote)

		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).GET("/user/info", userHandler.Info)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).POST("/user/change_password", userHandler.ChangePassword)

		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).POST("/note", noteHandler.Create)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).GET("/note/:id", noteHandler.Get)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).DELETE("/note", noteHandler.Delete)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).GET("/notes", noteHandler.List)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).POST("/note/content", noteHandler.Content)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).GET("/note/save-state", noteHandler.SaveState)

		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).POST("/share", shareHandler.Create)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).DELETE("/share", shareHandler.Revoke)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).GET("/shares", shareHandler.List)
	}

	// 指标端点（不经过 /api 中间件链）
	if cfg.Metrics.Enabled && appContainer.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(appContainer.Registry, promhttp.HandlerOpts{})))
	}

	r.Use(middleware.CORS())
	r.NoRoute(middleware.NoFound())

	return r
}
