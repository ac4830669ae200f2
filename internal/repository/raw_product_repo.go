package repository

import (
	"time"

	"avdb-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RawProductRepository struct {
	db *gorm.DB
}

func NewRawProductRepository(db *gorm.DB) *RawProductRepository {
	return &RawProductRepository{db: db}
}

// Upsert 按 (asp_name, original_id) Upsert 暂存行
// 已处理过的行重新抓到时回到 pending 状态，等待下一轮归一化
func (r *RawProductRepository) Upsert(raw *model.RawProduct) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "asp_name"}, {Name: "original_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"payload": raw.Payload,
			"status":  model.RawStatusPending,
			"error":   "",
		}),
	}).Create(raw).Error
}

// ListPending 取一批待处理的暂存行（先进先出）
func (r *RawProductRepository) ListPending(limit int) ([]model.RawProduct, error) {
	var rows []model.RawProduct
	err := r.db.
		Where("status = ?", model.RawStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// CountPending 统计待处理行数
func (r *RawProductRepository) CountPending() (int64, error) {
	var count int64
	err := r.db.Model(&model.RawProduct{}).
		Where("status = ?", model.RawStatusPending).
		Count(&count).Error
	return count, err
}

// MarkProcessed 标记处理成功
func (r *RawProductRepository) MarkProcessed(id int64) error {
	now := time.Now()
	return r.db.Model(&model.RawProduct{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       model.RawStatusProcessed,
			"error":        "",
			"processed_at": &now,
		}).Error
}

// MarkFailed 标记处理失败并记录原因
func (r *RawProductRepository) MarkFailed(id int64, reason string) error {
	now := time.Now()
	return r.db.Model(&model.RawProduct{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       model.RawStatusFailed,
			"error":        reason,
			"processed_at": &now,
		}).Error
}
