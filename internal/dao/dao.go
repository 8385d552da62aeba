// Package dao 提供数据访问实现
package dao

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/elsendo/elsendo-server/internal/model"
	"github.com/elsendo/elsendo-server/pkg/fileurl"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// DBConfig 数据库连接配置
type DBConfig struct {
	Type            string
	Path            string
	UserName        string
	Password        string
	Host            string
	Port            int
	Name            string
	TablePrefix     string
	Charset         string
	ParseTime       bool
	AutoMigrate     bool
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	RunMode         string
}

// Dao 持有数据库连接
type Dao struct {
	db *gorm.DB
}

// New 创建 Dao 实例
func New(db *gorm.DB) *Dao {
	return &Dao{db: db}
}

// DB 返回底层 gorm 连接
func (d *Dao) DB() *gorm.DB {
	return d.db
}

func dialector(c DBConfig) (gorm.Dialector, error) {
	switch c.Type {
	case "mysql":
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=%t&loc=Local",
			c.UserName,
			c.Password,
			c.Host,
			c.Name,
			c.Charset,
			c.ParseTime,
		)), nil
	case "postgres":
		return postgres.Open(fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			c.Host,
			c.Port,
			c.UserName,
			c.Password,
			c.Name,
		)), nil
	case "sqlite":
		dir := filepath.Dir(c.Path)
		if !fileurl.IsExist(dir) {
			if err := fileurl.CreatePath(dir, os.ModePerm); err != nil {
				return nil, errors.Wrap(err, "create sqlite dir failed")
			}
		}
		return sqlite.Open(c.Path), nil
	}
	return nil, errors.Errorf("unsupported database type: %s", c.Type)
}

// NewDBEngine 按配置初始化 GORM 连接
func NewDBEngine(c DBConfig) (*gorm.DB, error) {
	dial, err := dialector(c)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix,
			SingularTable: false,
		},
	})
	if err != nil {
		return nil, err
	}
	if c.RunMode == "debug" {
		db.Config.Logger = logger.Default.LogMode(logger.Info)
	}

	// 获取通用数据库对象 sql.DB ，然后使用其提供的功能
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// SetMaxIdleConns 用于设置连接池中空闲连接的最大数量。
	sqlDB.SetMaxIdleConns(c.MaxIdleConns)

	// SetMaxOpenConns 设置打开数据库连接的最大数量。
	sqlDB.SetMaxOpenConns(c.MaxOpenConns)

	// SetConnMaxLifetime 设置了连接可复用的最大时间。
	sqlDB.SetConnMaxLifetime(c.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(c.ConnMaxIdleTime)

	if c.AutoMigrate {
		if err := model.AutoMigrateAll(db); err != nil {
			return nil, errors.Wrap(err, "auto migrate failed")
		}
	}

	return db, nil
}
