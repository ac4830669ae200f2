package repository

import (
	"time"

	"avdb-go/internal/model"

	"gorm.io/gorm"
)

type SaleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) *SaleRepository {
	return &SaleRepository{db: db}
}

// activeScope 只保留生效且未过期的特价行
// 过期行在查询时过滤，不做物理删除
func activeScope(db *gorm.DB, now time.Time) *gorm.DB {
	return db.Where("product_sales.is_active = ? AND product_sales.end_at > ?", true, now)
}

// ListActive 生效中的特价列表（按折扣倒序）
func (r *SaleRepository) ListActive(skip, limit int) ([]model.ProductSale, int64, error) {
	now := time.Now()
	query := activeScope(r.db.Model(&model.ProductSale{}), now)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sales []model.ProductSale
	err := query.
		Order("discount_percent DESC, end_at ASC").
		Offset(skip).Limit(limit).
		Preload("Source").
		Preload("Source.Product").
		Find(&sales).Error
	if err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

// ListActiveByPerformers 收藏演员参演商品的生效特价
func (r *SaleRepository) ListActiveByPerformers(performerIDs []int64, limit int) ([]model.ProductSale, error) {
	if len(performerIDs) == 0 {
		return nil, nil
	}

	var sales []model.ProductSale
	err := activeScope(r.db.Model(&model.ProductSale{}), time.Now()).
		Joins("JOIN product_sources src ON src.id = product_sales.source_id").
		Where("EXISTS (SELECT 1 FROM product_performers pp WHERE pp.product_id = src.product_id AND pp.performer_id IN ?)", performerIDs).
		Order("discount_percent DESC, end_at ASC").
		Limit(limit).
		Preload("Source").
		Preload("Source.Product").
		Find(&sales).Error
	return sales, err
}

// ListActiveByRelatedTags 与近期浏览商品共享标签的商品的生效特价
// 近期商品本身排除在外
func (r *SaleRepository) ListActiveByRelatedTags(recentProductIDs []int64, limit int) ([]model.ProductSale, error) {
	if len(recentProductIDs) == 0 {
		return nil, nil
	}

	var sales []model.ProductSale
	err := activeScope(r.db.Model(&model.ProductSale{}), time.Now()).
		Joins("JOIN product_sources src ON src.id = product_sales.source_id").
		Where("src.product_id NOT IN ?", recentProductIDs).
		Where(`EXISTS (
			SELECT 1 FROM product_tags pt
			WHERE pt.product_id = src.product_id
			  AND pt.tag_id IN (SELECT tag_id FROM product_tags WHERE product_id IN ?)
		)`, recentProductIDs).
		Order("discount_percent DESC, end_at ASC").
		Limit(limit).
		Preload("Source").
		Preload("Source.Product").
		Find(&sales).Error
	return sales, err
}

// ListTopDiscount 折扣最高的生效特价（兜底填充用）
func (r *SaleRepository) ListTopDiscount(limit int) ([]model.ProductSale, error) {
	var sales []model.ProductSale
	err := activeScope(r.db.Model(&model.ProductSale{}), time.Now()).
		Order("discount_percent DESC, end_at ASC").
		Limit(limit).
		Preload("Source").
		Preload("Source.Product").
		Find(&sales).Error
	return sales, err
}

// ListActiveBySourceIDs 指定供货行的生效特价（商品详情用）
func (r *SaleRepository) ListActiveBySourceIDs(sourceIDs []int64) ([]model.ProductSale, error) {
	if len(sourceIDs) == 0 {
		return nil, nil
	}
	var sales []model.ProductSale
	err := activeScope(r.db.Model(&model.ProductSale{}), time.Now()).
		Where("source_id IN ?", sourceIDs).
		Find(&sales).Error
	return sales, err
}

// Upsert 创建或更新特价行（摄取用）
func (r *SaleRepository) Upsert(sale *model.ProductSale) error {
	var existing model.ProductSale
	err := r.db.Where("source_id = ? AND is_active = ?", sale.SourceID, true).First(&existing).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return r.db.Create(sale).Error
		}
		return err
	}
	sale.ID = existing.ID
	return r.db.Save(sale).Error
}

// DeactivateExpired 把已过期但仍标记生效的特价行置为失效
// 返回受影响行数（check-sales 定时任务用）
func (r *SaleRepository) DeactivateExpired(now time.Time) (int64, error) {
	result := r.db.Model(&model.ProductSale{}).
		Where("is_active = ? AND end_at <= ?", true, now).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}
