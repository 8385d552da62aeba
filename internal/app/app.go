// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/elsendo/elsendo-server/internal/dao"
	"github.com/elsendo/elsendo-server/internal/domain"
	"github.com/elsendo/elsendo-server/internal/middleware"
	"github.com/elsendo/elsendo-server/internal/service"
	pkgapp "github.com/elsendo/elsendo-server/pkg/app"
	"github.com/elsendo/elsendo-server/pkg/autosave"
	"github.com/elsendo/elsendo-server/pkg/ogimage"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao

	// 自动保存会话管理
	autosaveMgr *autosave.Manager

	// Repository 层
	NoteRepo  domain.NoteRepository
	ShareRepo domain.ShareLinkRepository
	UserRepo  domain.UserRepository

	// Service 层
	UserService    service.UserService
	NoteService    service.NoteService
	ShareService   service.ShareService
	PreviewService service.PreviewService

	// 基础设施组件
	TokenManager pkgapp.TokenManager
	Registry     *prometheus.Registry
	Metrics      *middleware.Metrics

	// 关闭控制
	shutdownCh chan struct{}
	wg         sync.WaitGroup
}

// NewApp 创建应用容器实例
// 初始化所有依赖并进行依赖注入
// cfg: 应用配置（必须）
// logger: zap 日志器（必须）
// db: 数据库连接（必须）
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	a := &App{
		config:     cfg,
		logger:     logger,
		DB:         db,
		shutdownCh: make(chan struct{}),
	}

	// 初始化 DAO
	a.Dao = dao.New(db)

	// 初始化自动保存会话管理器
	autosaveCfg := cfg.GetAutosaveConfig()
	a.autosaveMgr = autosave.New(&autosaveCfg, logger)

	// 初始化 TokenManager
	a.TokenManager = pkgapp.NewTokenManager(pkgapp.TokenConfig{
		SecretKey: cfg.Security.AuthTokenKey,
		Issuer:    "elsendo-server",
		Expiry:    cfg.GetTokenExpiry(),
	})

	// 初始化指标
	if cfg.Metrics.Enabled {
		a.Registry = prometheus.NewRegistry()
		a.Metrics = middleware.NewMetrics(a.Registry)
	}

	// 初始化 Repository 层
	a.NoteRepo = dao.NewNoteRepository(a.Dao)
	a.ShareRepo = dao.NewShareLinkRepository(a.Dao)
	a.UserRepo = dao.NewUserRepository(a.Dao)

	// 创建 ServiceConfig（从 AppConfig 提取 Service 层需要的配置）
	svcConfig := &service.ServiceConfig{
		User: service.UserServiceConfig{
			RegisterIsEnable: cfg.User.RegisterIsEnable,
		},
		App: service.AppServiceConfig{
			SoftDeleteRetentionTime: cfg.App.SoftDeleteRetentionTime,
		},
		Preview: service.PreviewServiceConfig{
			SiteName:          cfg.Preview.SiteName,
			Tagline:           cfg.Preview.Tagline,
			FallbackTitle:     cfg.Preview.FallbackTitle,
			PublicURL:         cfg.Preview.PublicURL,
			CrawlerSignatures: cfg.Preview.CrawlerSignatures,
		},
	}

	// 初始化预览卡片渲染器
	renderer, err := ogimage.NewRenderer(cfg.Preview.SiteName, cfg.Preview.Tagline)
	if err != nil {
		return nil, fmt.Errorf("init og image renderer: %w", err)
	}

	// 初始化 Service 层（依赖注入）
	a.UserService = service.NewUserService(a.UserRepo, a.TokenManager, logger, svcConfig)
	a.NoteService = service.NewNoteService(a.NoteRepo, a.autosaveMgr, logger, svcConfig)
	a.ShareService = service.NewShareService(a.ShareRepo, a.NoteRepo, logger, svcConfig)
	a.PreviewService = service.NewPreviewService(a.ShareRepo, a.NoteRepo, renderer, logger, svcConfig)

	logger.Info("App container initialized successfully",
		zap.Duration("autosaveDelay", autosaveCfg.Delay),
		zap.Bool("metricsEnabled", cfg.Metrics.Enabled))

	return a, nil
}

// Close 释放应用容器持有的资源
func (a *App) Close() error {
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		a.logger.Info("Database connection closed")
	}
	return nil
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Version 获取版本信息
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// GetAuthTokenKey 获取 Token 密钥
func (a *App) GetAuthTokenKey() string {
	return a.config.Security.AuthTokenKey
}

// IsProductionMode 是否为生产模式
// 根据日志配置中的 Production 字段判断
func (a *App) IsProductionMode() bool {
	return a.config.Log.Production
}

// CountShareHit 记录分享页访问的访客类型
// 指标未启用时为空操作
func (a *App) CountShareHit(kind string) {
	if a.Metrics != nil {
		a.Metrics.CountShareHit(kind)
	}
}

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// Shutdown 优雅关闭应用容器
// 按顺序关闭：自动保存会话（冲刷未落盘内容） -> 分享统计 -> 数据库
// ctx 用于控制关闭超时，如果为 nil 则使用默认 30 秒超时
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("App container shutting down...")

	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
	}

	// 标记关闭
	select {
	case <-a.shutdownCh:
		// 已经关闭
		return nil
	default:
		close(a.shutdownCh)
	}

	var errs []error

	// 1. 冲刷自动保存会话中未落盘的内容
	if a.NoteService != nil {
		a.logger.Info("Flushing pending autosave sessions...")
		if err := a.NoteService.Shutdown(ctx); err != nil {
			a.logger.Warn("Autosave flush error", zap.Error(err))
			errs = append(errs, fmt.Errorf("autosave flush: %w", err))
		}
	}

	// 2. 冲刷分享浏览统计
	if a.ShareService != nil {
		a.logger.Info("Shutting down share service...")
		if err := a.ShareService.Shutdown(ctx); err != nil {
			a.logger.Warn("Share service shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("share service shutdown: %w", err))
		}
	}

	// 3. 等待所有后台操作完成
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		a.logger.Info("All background operations completed")
	case <-ctx.Done():
		a.logger.Warn("Shutdown timeout waiting for background operations")
		errs = append(errs, fmt.Errorf("background operations timeout: %w", ctx.Err()))
	}

	// 4. 关闭数据库连接
	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		a.logger.Warn("App container shutdown completed with errors",
			zap.Int("errorCount", len(errs)))
		return fmt.Errorf("shutdown completed with %d errors: %v", len(errs), errs)
	}

	a.logger.Info("App container shutdown completed successfully")
	return nil
}

// IsShuttingDown 检查应用是否正在关闭
func (a *App) IsShuttingDown() bool {
	select {
	case <-a.shutdownCh:
		return true
	default:
		return false
	}
}

// ShutdownCh 返回关闭信号通道（用于监听关闭事件）
func (a *App) ShutdownCh() <-chan struct{} {
	return a.shutdownCh
}

// TrackOperation 跟踪后台操作（用于优雅关闭时等待）
// 返回一个函数，在操作完成时调用
func (a *App) TrackOperation() func() {
	a.wg.Add(1)
	return func() {
		a.wg.Done()
	}
}
