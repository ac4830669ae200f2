package repository

import (
	"avdb-go/internal/model"

	"gorm.io/gorm"
)

type FavoriteListRepository struct {
	db *gorm.DB
}

func NewFavoriteListRepository(db *gorm.DB) *FavoriteListRepository {
	return &FavoriteListRepository{db: db}
}

// Create 创建收藏清单
func (r *FavoriteListRepository) Create(list *model.FavoriteList) error {
	return r.db.Create(list).Error
}

// GetByID 根据 ID 获取清单（含条目与商品）
func (r *FavoriteListRepository) GetByID(id int64) (*model.FavoriteList, error) {
	var list model.FavoriteList
	err := r.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("favorite_list_items.position ASC, favorite_list_items.id ASC")
		}).
		Preload("Items.Product").
		Where("id = ?", id).
		First(&list).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// ListByUser 获取用户自己的清单（分页）
func (r *FavoriteListRepository) ListByUser(userID int64, skip, limit int) ([]model.FavoriteList, int64, error) {
	query := r.db.Model(&model.FavoriteList{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var lists []model.FavoriteList
	err := query.Order("updated_at DESC").Offset(skip).Limit(limit).Find(&lists).Error
	if err != nil {
		return nil, 0, err
	}
	return lists, total, nil
}

// ListPublic 公开清单列表（分页，按点赞数倒序）
func (r *FavoriteListRepository) ListPublic(skip, limit int) ([]model.FavoriteList, int64, error) {
	query := r.db.Model(&model.FavoriteList{}).Where("is_public = ?", true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var lists []model.FavoriteList
	err := query.Order("like_count DESC, updated_at DESC").Offset(skip).Limit(limit).Find(&lists).Error
	if err != nil {
		return nil, 0, err
	}
	return lists, total, nil
}

// Update 更新清单字段
func (r *FavoriteListRepository) Update(id int64, updates map[string]interface{}) error {
	result := r.db.Model(&model.FavoriteList{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete 删除清单并级联删除其条目
// 条目删除按 list_id 限定，不会波及其他清单
func (r *FavoriteListRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("list_id = ?", id).Delete(&model.FavoriteListItem{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&model.FavoriteList{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// AddItem 向清单追加条目，position 取当前最大值 +1
func (r *FavoriteListRepository) AddItem(item *model.FavoriteListItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var maxPos int
		if err := tx.Model(&model.FavoriteListItem{}).
			Where("list_id = ?", item.ListID).
			Select("COALESCE(MAX(position), 0)").
			Scan(&maxPos).Error; err != nil {
			return err
		}
		item.Position = maxPos + 1
		return tx.Create(item).Error
	})
}

// RemoveItem 从清单移除指定商品条目
func (r *FavoriteListRepository) RemoveItem(listID, productID int64) (bool, error) {
	result := r.db.Where("list_id = ? AND product_id = ?", listID, productID).
		Delete(&model.FavoriteListItem{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// HasItem 检查清单中是否已有该商品
func (r *FavoriteListRepository) HasItem(listID, productID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.FavoriteListItem{}).
		Where("list_id = ? AND product_id = ?", listID, productID).
		Count(&count).Error
	return count > 0, err
}

// IncrementLikeCount 清单点赞数 +1
func (r *FavoriteListRepository) IncrementLikeCount(id int64) error {
	return r.db.Model(&model.FavoriteList{}).Where("id = ?", id).
		UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
}

// ProductIDsByUser 用户全部清单中最近收藏的商品 ID（推荐用）
func (r *FavoriteListRepository) ProductIDsByUser(userID int64, limit int) ([]int64, error) {
	var ids []int64
	err := r.db.Table("favorite_list_items AS fli").
		Joins("JOIN favorite_lists fl ON fl.id = fli.list_id").
		Where("fl.user_id = ?", userID).
		Order("fli.created_at DESC").
		Limit(limit).
		Pluck("fli.product_id", &ids).Error
	return ids, err
}

// PerformerIDsByUser 用户收藏商品涉及的演员 ID，按出现次数排序（推荐用）
func (r *FavoriteListRepository) PerformerIDsByUser(userID int64, limit int) ([]int64, error) {
	var ids []int64
	err := r.db.Table("product_performers AS pp").
		Joins("JOIN favorite_list_items fli ON fli.product_id = pp.product_id").
		Joins("JOIN favorite_lists fl ON fl.id = fli.list_id").
		Where("fl.user_id = ?", userID).
		Group("pp.performer_id").
		Order("COUNT(*) DESC").
		Limit(limit).
		Pluck("pp.performer_id", &ids).Error
	return ids, err
}
