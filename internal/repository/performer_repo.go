package repository

import (
	"avdb-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PerformerRepository struct {
	db *gorm.DB
}

func NewPerformerRepository(db *gorm.DB) *PerformerRepository {
	return &PerformerRepository{db: db}
}

// GetByID 根据 ID 获取演员
func (r *PerformerRepository) GetByID(id int64) (*model.Performer, error) {
	var performer model.Performer
	if err := r.db.Where("id = ?", id).First(&performer).Error; err != nil {
		return nil, err
	}
	return &performer, nil
}

// Search 按名字模糊搜索演员
func (r *PerformerRepository) Search(query string, limit int) ([]model.Performer, int64, error) {
	q := r.db.Model(&model.Performer{})
	if query != "" {
		q = q.Where("name ILIKE ?", "%"+query+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var performers []model.Performer
	err := q.Order("name ASC").Limit(limit).Find(&performers).Error
	if err != nil {
		return nil, 0, err
	}
	return performers, total, nil
}

// GetOrCreateByName 按名字取演员，不存在则创建（摄取用）
func (r *PerformerRepository) GetOrCreateByName(name string) (*model.Performer, error) {
	performer := &model.Performer{Name: name}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(performer).Error
	if err != nil {
		return nil, err
	}
	// DoNothing 时不回填 ID，需要再查一次
	if performer.ID == 0 {
		if err := r.db.Where("name = ?", name).First(performer).Error; err != nil {
			return nil, err
		}
	}
	return performer, nil
}

// CountProducts 统计演员的参演商品数
func (r *PerformerRepository) CountProducts(performerID int64) (int64, error) {
	var count int64
	err := r.db.Table("product_performers").
		Where("performer_id = ?", performerID).
		Count(&count).Error
	return count, err
}

// ListAll 分页列出全部演员（搜索索引同步用）
func (r *PerformerRepository) ListAll(skip, limit int) ([]model.Performer, error) {
	var performers []model.Performer
	err := r.db.Order("id ASC").Offset(skip).Limit(limit).Find(&performers).Error
	return performers, err
}

// PerformerWithCount 演员及其参演商品数
type PerformerWithCount struct {
	model.Performer
	ProductCount int64 `json:"product_count"`
}

// ListWithCounts 分页列出演员及参演商品数，query 非空时按名字模糊过滤
// 作品数多的排前面，参演数用 LEFT JOIN 现算不落库
func (r *PerformerRepository) ListWithCounts(query string, skip, limit int) ([]PerformerWithCount, int64, error) {
	countQ := r.db.Model(&model.Performer{})
	if query != "" {
		countQ = countQ.Where("name ILIKE ?", "%"+query+"%")
	}

	var total int64
	if err := countQ.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rowsQ := r.db.Table("performers").
		Select("performers.*, COUNT(pp.product_id) AS product_count").
		Joins("LEFT JOIN product_performers pp ON pp.performer_id = performers.id").
		Group("performers.id").
		Order("product_count DESC, performers.name ASC").
		Offset(skip).Limit(limit)
	if query != "" {
		rowsQ = rowsQ.Where("performers.name ILIKE ?", "%"+query+"%")
	}

	var rows []PerformerWithCount
	if err := rowsQ.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// CoStarRow 共演网络查询的原始行
type CoStarRow struct {
	PerformerID int64  `json:"performer_id"`
	Name        string `json:"name"`
	ViaID       int64  `json:"via_id"`
	Hop         int    `json:"hop"`
	SharedCount int64  `json:"shared_count"`
}

// CoStarNetwork 共演网络查询：从种子演员出发，逐跳找出共演次数最多的演员。
// 每跳按共演商品数取前 perHopLimit 名，后一跳排除前面已出现的演员。
// 图遍历全部交给数据库的多段 CTE 完成，应用层只传参数。
func (r *PerformerRepository) CoStarNetwork(performerID int64, hops, perHopLimit int) ([]CoStarRow, error) {
	if hops < 1 {
		hops = 1
	}
	if hops > 2 {
		hops = 2
	}
	if perHopLimit < 1 || perHopLimit > 12 {
		perHopLimit = 12
	}

	// hop1：与种子同片共演的演员，按共演数取前 N
	// hop2：与 hop1 演员共演、且不在 {种子} ∪ hop1 中的演员，
	//       先对每个来源取最强关联，再整体按共演数取前 N
	query := `
		WITH hop1 AS (
			SELECT pp2.performer_id AS performer_id,
			       ? ::bigint        AS via_id,
			       COUNT(*)          AS shared_count
			FROM product_performers pp1
			JOIN product_performers pp2
			  ON pp1.product_id = pp2.product_id
			 AND pp2.performer_id != pp1.performer_id
			WHERE pp1.performer_id = ?
			GROUP BY pp2.performer_id
			ORDER BY shared_count DESC, pp2.performer_id ASC
			LIMIT ?
		), hop2_all AS (
			SELECT pp2.performer_id AS performer_id,
			       h1.performer_id  AS via_id,
			       COUNT(*)         AS shared_count,
			       ROW_NUMBER() OVER (
			           PARTITION BY pp2.performer_id
			           ORDER BY COUNT(*) DESC, h1.performer_id ASC
			       ) AS rn
			FROM hop1 h1
			JOIN product_performers pp1 ON pp1.performer_id = h1.performer_id
			JOIN product_performers pp2
			  ON pp1.product_id = pp2.product_id
			 AND pp2.performer_id != pp1.performer_id
			WHERE pp2.performer_id != ?
			  AND pp2.performer_id NOT IN (SELECT performer_id FROM hop1)
			GROUP BY pp2.performer_id, h1.performer_id
		), hop2 AS (
			SELECT performer_id, via_id, shared_count
			FROM hop2_all
			WHERE rn = 1
			ORDER BY shared_count DESC, performer_id ASC
			LIMIT ?
		), combined AS (
			SELECT performer_id, via_id, shared_count, 1 AS hop FROM hop1
			UNION ALL
			SELECT performer_id, via_id, shared_count, 2 AS hop FROM hop2 WHERE ? >= 2
		)
		SELECT c.performer_id, p.name, c.via_id, c.hop, c.shared_count
		FROM combined c
		JOIN performers p ON p.id = c.performer_id
		ORDER BY c.hop ASC, c.shared_count DESC, c.performer_id ASC
	`

	var rows []CoStarRow
	err := r.db.Raw(query,
		performerID, performerID, perHopLimit,
		performerID, perHopLimit,
		hops,
	).Scan(&rows).Error
	return rows, err
}
