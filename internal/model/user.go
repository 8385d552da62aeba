package model

import "time"

const TableNameUser = "users"

// User mapped from table <users>
type User struct {
	UID       int64     `gorm:"column:uid;primaryKey;autoIncrement" json:"uid" form:"uid"`
	Email     string    `gorm:"column:email;not null;uniqueIndex:idx_user_email" json:"email" form:"email"`
	Username  string    `gorm:"column:username;not null" json:"username" form:"username"`
	Password  string    `gorm:"column:password;not null" json:"-" form:"-"`
	IsDeleted bool      `gorm:"column:is_deleted;default:false" json:"isDeleted" form:"isDeleted"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt" form:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt" form:"updatedAt"`
}

// TableName User's table name
func (*User) TableName() string {
	return TableNameUser
}
