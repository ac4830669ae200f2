package model

import "time"

// User 用户模型
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;comment:用户标识" json:"id"`
	UserName  string    `gorm:"size:255;not null;uniqueIndex;comment:用户名" json:"user_name"`
	Password  string    `gorm:"size:255;not null;comment:密码" json:"-"` // json:"-" 序列化时忽略密码
	UserRole  string    `gorm:"size:50;not null;default:'user';comment:用户角色" json:"user_role"`
	CreatedAt time.Time `gorm:"autoCreateTime;comment:创建时间" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;comment:更新时间" json:"updated_at"`

	// 关联关系
	Lists []FavoriteList `gorm:"foreignKey:UserID" json:"lists,omitempty"`
}

func (User) TableName() string {
	return "users"
}
