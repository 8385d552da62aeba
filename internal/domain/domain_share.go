package domain

import (
	"errors"
	"time"
)

var (
	ErrShareRevoked  = errors.New("share link has been revoked")
	ErrShareNotFound = errors.New("share link not found")
)

// ShareLink 笔记分享链接领域模型
type ShareLink struct {
	ID           int64
	Token        string
	NoteID       string
	UID          int64
	IsActive     bool
	ViewCount    int64
	LastViewedAt time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsViewable 判断分享是否可被访问
func (s *ShareLink) IsViewable() bool {
	return s.IsActive
}
