package model

import "time"

const TableNameNote = "notes"

// Note mapped from table <notes>
type Note struct {
	ID        string    `gorm:"column:id;primaryKey;size:36" json:"id" form:"id"`
	UID       int64     `gorm:"column:uid;not null;index:idx_note_uid" json:"uid" form:"uid"`
	Title     string    `gorm:"column:title;not null" json:"title" form:"title"`
	Content   string    `gorm:"column:content;type:text" json:"content" form:"content"`
	IsDeleted bool      `gorm:"column:is_deleted;default:false;index:idx_note_deleted" json:"isDeleted" form:"isDeleted"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt" form:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt" form:"updatedAt"`
}

// TableName Note's table name
func (*Note) TableName() string {
	return TableNameNote
}
