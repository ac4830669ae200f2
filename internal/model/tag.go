package model

import "time"

// 标签类别
const (
	TagCategoryGenre     = "genre"
	TagCategorySituation = "situation"
	TagCategoryPlay      = "play"
	TagCategoryBody      = "body"
	TagCategoryCostume   = "costume"
)

// Tag 标签模型，计数为派生值不落库
type Tag struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;comment:标签标识" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex;comment:标签名" json:"name"`
	NameJA    string    `gorm:"size:100;comment:日文名" json:"name_ja"`
	Category  string    `gorm:"size:20;default:'genre';index:idx_tags_category;comment:类别" json:"category"`
	CreatedAt time.Time `gorm:"autoCreateTime;comment:创建时间" json:"created_at"`

	// 关联关系
	Products []Product `gorm:"many2many:product_tags" json:"products,omitempty"`
}

func (Tag) TableName() string {
	return "tags"
}
