package repository

import (
	"avdb-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

// GetOrCreateByName 按标签名取标签，不存在则创建（摄取用）
func (r *TagRepository) GetOrCreateByName(name, category string) (*model.Tag, error) {
	tag := &model.Tag{Name: name, Category: category}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(tag).Error
	if err != nil {
		return nil, err
	}
	if tag.ID == 0 {
		if err := r.db.Where("name = ?", name).First(tag).Error; err != nil {
			return nil, err
		}
	}
	return tag, nil
}

// TagWithCount 标签及其派生的商品计数
type TagWithCount struct {
	model.Tag
	ProductCount int64 `json:"product_count"`
}

// ListWithCounts 列出标签（可按类别过滤），商品计数现算不落库
func (r *TagRepository) ListWithCounts(category string) ([]TagWithCount, error) {
	query := r.db.Model(&model.Tag{}).
		Select("tags.*, COUNT(pt.product_id) AS product_count").
		Joins("LEFT JOIN product_tags pt ON pt.tag_id = tags.id").
		Group("tags.id")
	if category != "" {
		query = query.Where("tags.category = ?", category)
	}

	var tags []TagWithCount
	err := query.Order("product_count DESC, tags.name ASC").Scan(&tags).Error
	return tags, err
}
