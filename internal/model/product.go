package model

import (
	"time"

	"gorm.io/datatypes"
)

// Product 商品（影片）模型
type Product struct {
	ID             int64          `gorm:"primaryKey;autoIncrement;comment:商品标识" json:"id"`
	Code           string         `gorm:"size:100;not null;uniqueIndex;comment:规范化品番" json:"code"`
	Title          string         `gorm:"size:500;not null;comment:标题" json:"title"`
	Description    string         `gorm:"type:text;comment:简介" json:"description"`
	ReleaseDate    *time.Time     `gorm:"index:idx_products_release_date;comment:发售日" json:"release_date"`
	Duration       int            `gorm:"default:0;comment:时长（分钟）" json:"duration"`
	ThumbnailURL   string         `gorm:"size:1000;comment:默认封面地址" json:"thumbnail_url"`
	MirrorThumbURL string         `gorm:"size:1000;comment:镜像封面地址" json:"mirror_thumb_url"`
	SampleVideoURL string         `gorm:"size:1000;comment:样片地址" json:"sample_video_url"`
	Rating         float64        `gorm:"default:0;index:idx_products_rating;comment:平均评分" json:"rating"`
	RatingCount    int64          `gorm:"default:0;comment:评分人数" json:"rating_count"`
	Embedding      datatypes.JSON `gorm:"comment:向量表示（可选）" json:"-"`
	CreatedAt      time.Time      `gorm:"autoCreateTime;comment:创建时间" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime;comment:更新时间" json:"updated_at"`

	// 关联关系
	Performers []Performer     `gorm:"many2many:product_performers" json:"performers,omitempty"`
	Tags       []Tag           `gorm:"many2many:product_tags" json:"tags,omitempty"`
	Sources    []ProductSource `gorm:"foreignKey:ProductID" json:"sources,omitempty"`
}

func (Product) TableName() string {
	return "products"
}
