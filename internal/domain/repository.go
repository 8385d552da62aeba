// Package domain 定义领域模型和接口
package domain

import (
	"context"
	"time"
)

// NoteRepository 笔记仓储接口
type NoteRepository interface {
	// GetByID 根据ID获取笔记（排除已删除，按用户隔离）
	GetByID(ctx context.Context, id string, uid int64) (*Note, error)

	// GetByIDPublic 根据ID获取笔记（不做用户隔离，供分享网关使用）
	GetByIDPublic(ctx context.Context, id string) (*Note, error)

	// Create 创建笔记
	Create(ctx context.Context, note *Note) (*Note, error)

	// UpdateContent 更新笔记标题和内容
	UpdateContent(ctx context.Context, id string, uid int64, title, content string) error

	// SoftDelete 标记笔记为已删除
	SoftDelete(ctx context.Context, id string, uid int64) error

	// List 分页获取用户的笔记列表（按更新时间倒序）
	List(ctx context.Context, uid int64, page, pageSize int) ([]*Note, error)

	// ListCount 获取用户的笔记数量
	ListCount(ctx context.Context, uid int64) (int64, error)

	// PurgeDeletedBefore 物理删除指定时间之前标记删除的笔记
	PurgeDeletedBefore(ctx context.Context, before time.Time) (int64, error)
}

// ShareLinkRepository 分享链接仓储接口
type ShareLinkRepository interface {
	// Create 创建分享链接
	Create(ctx context.Context, share *ShareLink) error

	// GetByToken 根据 token 获取分享链接（包含已撤销）
	GetByToken(ctx context.Context, token string) (*ShareLink, error)

	// GetByNoteID 获取指定笔记的分享链接
	GetByNoteID(ctx context.Context, noteID string, uid int64) (*ShareLink, error)

	// SetActive 设置分享链接的启用状态
	SetActive(ctx context.Context, token string, uid int64, active bool) error

	// UpdateViewStats 累加访问次数并记录最后访问时间
	UpdateViewStats(ctx context.Context, token string, viewCountIncr int64, lastViewedAt time.Time) error

	// ListByUID 获取用户的全部分享链接
	ListByUID(ctx context.Context, uid int64) ([]*ShareLink, error)
}

// UserRepository 用户仓储接口
type UserRepository interface {
	// GetByUID 根据UID获取用户
	GetByUID(ctx context.Context, uid int64) (*User, error)

	// GetByEmail 根据邮箱获取用户
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Create 创建用户
	Create(ctx context.Context, user *User) (*User, error)

	// UpdatePassword 更新用户密码哈希
	UpdatePassword(ctx context.Context, uid int64, password string) error
}
