package model

import "time"

// Performer 演员模型
type Performer struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;comment:演员标识" json:"id"`
	Name      string    `gorm:"size:200;not null;uniqueIndex;comment:姓名" json:"name"`
	ImageURL  *string   `gorm:"size:1000;comment:头像地址" json:"image_url"`
	DebutYear *int      `gorm:"comment:出道年份" json:"debut_year"`
	CreatedAt time.Time `gorm:"autoCreateTime;comment:创建时间" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;comment:更新时间" json:"updated_at"`

	// 关联关系
	Products []Product `gorm:"many2many:product_performers" json:"products,omitempty"`
}

func (Performer) TableName() string {
	return "performers"
}
