// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

import "time"

// NoteCreateRequest 创建笔记请求参数
type NoteCreateRequest struct {
	Title   string `json:"title" form:"title"`
	Content string `json:"content" form:"content"`
}

// NoteContentRequest 自动保存提交的内容请求参数
type NoteContentRequest struct {
	ID      string `json:"id" form:"id" binding:"required,uuid4"`
	Title   string `json:"title" form:"title"`
	Content string `json:"content" form:"content"`
}

// NoteSaveStateRequest 保存状态查询参数
type NoteSaveStateRequest struct {
	ID string `json:"id" form:"id" binding:"required,uuid4"`
}

// NoteDeleteRequest 删除笔记请求参数
type NoteDeleteRequest struct {
	ID string `json:"id" form:"id" binding:"required,uuid4"`
}

// NoteListRequest 笔记列表请求参数
type NoteListRequest struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"pageSize" form:"pageSize"`
}

// NoteDTO 笔记数据传输对象
type NoteDTO struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// NoteListItemDTO 列表项，不携带正文
type NoteListItemDTO struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Preview   string    `json:"preview"`
	UpdatedAt time.Time `json:"updatedAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// NoteSaveStateDTO 保存状态响应
type NoteSaveStateDTO struct {
	ID    string `json:"id"`
	State string `json:"state"` // saved / unsaved / saving
}
