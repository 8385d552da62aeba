package dto

import "time"

// ShareCreateRequest 创建分享请求
type ShareCreateRequest struct {
	NoteID string `json:"noteId" form:"noteId" binding:"required,uuid4"` // 笔记 ID
}

// ShareRevokeRequest 撤销分享请求
type ShareRevokeRequest struct {
	Token string `json:"token" form:"token" binding:"required"` // 分享 Token
}

// SharedNoteDTO 分享页面对外只读笔记内容
type SharedNoteDTO struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ShareDTO 分享链接数据传输对象
type ShareDTO struct {
	Token        string    `json:"token"`
	NoteID       string    `json:"noteId"`
	URL          string    `json:"url"` // 完整分享地址
	IsActive     bool      `json:"isActive"`
	ViewCount    int64     `json:"viewCount"`
	LastViewedAt time.Time `json:"lastViewedAt"`
	CreatedAt    time.Time `json:"createdAt"`
}
