package model

import "time"

const TableNameShareLink = "shared_notes"

// ShareLink mapped from table <shared_notes>
type ShareLink struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	Token        string    `gorm:"column:token;not null;uniqueIndex:idx_share_token;size:21" json:"token" form:"token"`
	NoteID       string    `gorm:"column:note_id;not null;index:idx_share_note;size:36" json:"noteId" form:"noteId"`
	UID          int64     `gorm:"column:uid;not null;index:idx_share_uid" json:"uid" form:"uid"`
	IsActive     bool      `gorm:"column:is_active;default:true" json:"isActive" form:"isActive"`
	ViewCount    int64     `gorm:"column:view_count;default:0" json:"viewCount" form:"viewCount"`
	LastViewedAt time.Time `gorm:"column:last_viewed_at;default:NULL" json:"lastViewedAt" form:"lastViewedAt"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt" form:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt" form:"updatedAt"`
}

// TableName ShareLink's table name
func (*ShareLink) TableName() string {
	return TableNameShareLink
}
