// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/elsendo/elsendo-server/internal/dao"
	"github.com/elsendo/elsendo-server/pkg/autosave"
	"github.com/elsendo/elsendo-server/pkg/util"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AppConfig 应用配置
type AppConfig struct {
	File     string         `yaml:"-"` // 配置文件路径，不序列化
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	App      AppSettings    `yaml:"app"`
	User     UserConfig     `yaml:"user"`
	Security SecurityConfig `yaml:"security"`
	Preview  PreviewConfig  `yaml:"preview"`
	Tracer   TracerConfig   `yaml:"tracer"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"warn"`
	// File 日志文件路径，默认为 stderr
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production" default:"true"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// RunMode 运行模式
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort HTTP 端口
	HttpPort string `yaml:"http-port" default:":9000"`
	// ReadTimeout 读取超时（秒）
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout 写入超时（秒）
	WriteTimeout int `yaml:"write-timeout" default:"60"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AuthTokenKey string `yaml:"auth-token-key" default:"elsendo-Auth-Token"`
	// TokenExpiry Token 过期时间，支持格式：7d（天）、24h（小时）、30m（分钟）
	TokenExpiry string `yaml:"token-expiry" default:"30d"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type 数据库类型: sqlite / mysql / postgres
	Type string `yaml:"type" default:"sqlite"`
	// Path SQLite 数据库文件路径
	Path string `yaml:"path" default:"storage/database/db.sqlite3"`
	// UserName 用户名
	UserName string `yaml:"username"`
	// Password 密码
	Password string `yaml:"password"`
	// Host 主机
	Host string `yaml:"host"`
	// Port 端口（postgres）
	Port int `yaml:"port" default:"5432"`
	// Name 数据库名
	Name string `yaml:"name"`
	// TablePrefix 表前缀
	TablePrefix string `yaml:"table-prefix"`
	// AutoMigrate 是否启用自动迁移
	AutoMigrate bool `yaml:"auto-migrate" default:"true"`
	// Charset 字符集
	Charset string `yaml:"charset" default:"utf8mb4"`
	// ParseTime 是否解析时间
	ParseTime bool `yaml:"parse-time" default:"true"`
	// MaxIdleConns 最大闲置连接数，默认 10
	MaxIdleConns int `yaml:"max-idle-conns" default:"10"`
	// MaxOpenConns 最大打开连接数，默认 100
	MaxOpenConns int `yaml:"max-open-conns" default:"100"`
	// ConnMaxLifetime 连接最大生命周期，支持格式：30m（分钟）、1h（小时），默认 30m
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"30m"`
	// ConnMaxIdleTime 空闲连接最大生命周期，支持格式：10m（分钟）、1h（小时），默认 10m
	ConnMaxIdleTime string `yaml:"conn-max-idle-time" default:"10m"`
}

// UserConfig 用户配置
type UserConfig struct {
	// RegisterIsEnable 注册是否启用
	RegisterIsEnable bool `yaml:"register-is-enable" default:"true"`
}

// AppSettings 应用设置
type AppSettings struct {
	// DefaultPageSize 默认页面大小
	DefaultPageSize int `yaml:"default-page-size" default:"10"`
	// MaxPageSize 最大页面大小
	MaxPageSize int `yaml:"max-page-size" default:"100"`
	// DefaultContextTimeout 默认上下文超时时间（秒）
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"60"`
	// SoftDeleteRetentionTime 软删除笔记保留时间
	SoftDeleteRetentionTime string `yaml:"soft-delete-retention-time" default:"30d"`

	// AutosaveDelay 自动保存防抖窗口，支持格式：500ms、1s、2m
	AutosaveDelay string `yaml:"autosave-delay" default:"1s"`
	// AutosaveIdleTime 自动保存会话空闲回收时间
	AutosaveIdleTime string `yaml:"autosave-idle-time" default:"10m"`
}

// PreviewConfig 分享预览网关配置
type PreviewConfig struct {
	// SiteName 站点名，出现在 og:site_name 和回退标题中
	SiteName string `yaml:"site-name" default:"Elsendo"`
	// Tagline 回退描述
	Tagline string `yaml:"tagline" default:"A note shared via Elsendo"`
	// FallbackTitle 回退标题
	FallbackTitle string `yaml:"fallback-title" default:"Shared Note"`
	// PublicURL 对外地址，留空时按请求头推断
	PublicURL string `yaml:"public-url"`
	// CrawlerSignatures 爬虫 UA 特征，大小写不敏感的子串匹配
	CrawlerSignatures []string `yaml:"crawler-signatures"`
}

// DefaultCrawlerSignatures 内置的爬虫 UA 特征表
var DefaultCrawlerSignatures = []string{
	"facebookexternalhit",
	"Facebot",
	"Twitterbot",
	"WhatsApp",
	"LinkedInBot",
	"Pinterest",
	"Slackbot",
	"TelegramBot",
	"Discordbot",
}

// TracerConfig 请求追踪配置
type TracerConfig struct {
	// Enabled 是否启用追踪
	Enabled bool `yaml:"enabled" default:"true"`
	// Header 追踪 ID 请求头名称，默认 X-Trace-ID
	Header string `yaml:"header" default:"X-Trace-ID"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	// Enabled 是否开放 /metrics
	Enabled bool `yaml:"enabled" default:"true"`
}

// LoadConfig 从文件加载配置
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	c := new(AppConfig)
	c.File = realpath

	// 设置默认值
	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "set default config failed")
	}

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	err = yaml.Unmarshal(file, c)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "parse config file failed")
	}

	// 再次设置默认值，以填充 YAML 中存在但值为空的字段
	// defaults.Set 只有在字段为该类型的零值时才会填充
	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "re-set default config failed")
	}

	if len(c.Preview.CrawlerSignatures) == 0 {
		c.Preview.CrawlerSignatures = DefaultCrawlerSignatures
	}

	return c, realpath, nil
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}

	err = os.WriteFile(c.File, data, 0644)
	if err != nil {
		return errors.Wrap(err, "write config file failed")
	}

	return nil
}

// GetAutosaveConfig 获取自动保存配置
func (c *AppConfig) GetAutosaveConfig() autosave.Config {
	cfg := autosave.DefaultConfig()

	if c.App.AutosaveDelay != "" {
		if delay, err := util.ParseDuration(c.App.AutosaveDelay); err == nil {
			cfg.Delay = delay
		}
	}
	if c.App.AutosaveIdleTime != "" {
		if idleTime, err := util.ParseDuration(c.App.AutosaveIdleTime); err == nil {
			cfg.IdleTimeout = idleTime
		}
	}

	return cfg
}

// GetTokenExpiry 获取 Token 过期时间
func (c *AppConfig) GetTokenExpiry() time.Duration {
	if expiry, err := util.ParseDuration(c.Security.TokenExpiry); err == nil {
		return expiry
	}
	return 30 * 24 * time.Hour // 理论上不会走到这里，因为有默认值
}

// GetSoftDeleteRetention 获取软删除保留时间
func (c *AppConfig) GetSoftDeleteRetention() time.Duration {
	if d, err := util.ParseDuration(c.App.SoftDeleteRetentionTime); err == nil {
		return d
	}
	return 30 * 24 * time.Hour
}

// GetDBConfig 转换为数据访问层的数据库配置
func (c *AppConfig) GetDBConfig() dao.DBConfig {
	return dao.DBConfig{
		Type:            c.Database.Type,
		Path:            c.Database.Path,
		UserName:        c.Database.UserName,
		Password:        c.Database.Password,
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		Name:            c.Database.Name,
		TablePrefix:     c.Database.TablePrefix,
		Charset:         c.Database.Charset,
		ParseTime:       c.Database.ParseTime,
		AutoMigrate:     c.Database.AutoMigrate,
		MaxIdleConns:    c.Database.MaxIdleConns,
		MaxOpenConns:    c.Database.MaxOpenConns,
		ConnMaxLifetime: c.Database.GetConnMaxLifetime(),
		ConnMaxIdleTime: c.Database.GetConnMaxIdleTime(),
		RunMode:         c.Server.RunMode,
	}
}

// GetConnMaxLifetime 获取数据库连接最大生命周期
func (c *DatabaseConfig) GetConnMaxLifetime() time.Duration {
	if d, err := util.ParseDuration(c.ConnMaxLifetime); err == nil {
		return d
	}
	return 30 * time.Minute
}

// GetConnMaxIdleTime 获取数据库空闲连接最大生命周期
func (c *DatabaseConfig) GetConnMaxIdleTime() time.Duration {
	if d, err := util.ParseDuration(c.ConnMaxIdleTime); err == nil {
		return d
	}
	return 10 * time.Minute
}
