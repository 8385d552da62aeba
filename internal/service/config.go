// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	User    UserServiceConfig    // User related config // 用户相关配置
	App     AppServiceConfig     // App related config // 应用相关配置
	Preview PreviewServiceConfig // Share preview gateway config // 分享预览网关配置
}

// UserServiceConfig user service configuration
// UserServiceConfig 用户服务配置
type UserServiceConfig struct {
	RegisterIsEnable bool // Whether registration is enabled // 注册是否启用
}

// AppServiceConfig app service configuration
// AppServiceConfig 应用服务配置
type AppServiceConfig struct {
	SoftDeleteRetentionTime string // Soft delete retention time (e.g., 7d, 24h, 0/empty for no cleanup) // 软删除保留时间（支持格式：7d、24h，0 或空表示不自动清理）
}

// PreviewServiceConfig share preview gateway configuration
// PreviewServiceConfig 分享预览网关配置
type PreviewServiceConfig struct {
	SiteName          string   // Site name used in og:site_name // og:site_name 使用的站点名
	Tagline           string   // Fallback description // 回退描述
	FallbackTitle     string   // Fallback title // 回退标题
	PublicURL         string   // External base URL, derived from request when empty // 对外地址，留空时按请求推断
	CrawlerSignatures []string // Crawler UA substrings, case-insensitive // 爬虫 UA 特征，大小写不敏感
}
