// Package domain 定义领域模型和接口
package domain

import "time"

// Note 笔记领域模型
type Note struct {
	ID        string
	UID       int64
	Title     string
	Content   string
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EmptyContent 空笔记的内容占位
const EmptyContent = "<p></p>"

// IsActive 判断笔记是否活跃（未删除）
func (n *Note) IsActive() bool {
	return !n.IsDeleted
}

// IsEmpty 判断笔记是否没有实际内容
func (n *Note) IsEmpty() bool {
	return n.Content == "" || n.Content == EmptyContent
}
