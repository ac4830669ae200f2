package repository

import (
	"time"

	"avdb-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 商品列表排序方式（白名单，未知值回落到 releaseDateDesc）
var productSortOrders = map[string]string{
	"releaseDateDesc": "release_date DESC NULLS LAST",
	"releaseDateAsc":  "release_date ASC NULLS LAST",
	"priceDesc":       "(SELECT MIN(ps.price) FROM product_sources ps WHERE ps.product_id = products.id) DESC NULLS LAST",
	"priceAsc":        "(SELECT MIN(ps.price) FROM product_sources ps WHERE ps.product_id = products.id) ASC NULLS LAST",
	"ratingDesc":      "rating DESC",
	"ratingAsc":       "rating ASC",
	"titleAsc":        "title ASC",
}

// DefaultProductSort 默认排序
const DefaultProductSort = "releaseDateDesc"

// ProductFilter 商品分面筛选条件，所有字段可选
// 各筛选类别之间永远是 AND 关系，列表类条件为空时不产生谓词
type ProductFilter struct {
	ActressID   *int64
	Tags        []string
	ExcludeTags []string
	Providers   []string
	MinPrice    *int
	MaxPrice    *int
	HasVideo    *bool
	HasImage    *bool
	Query       string
	Sort        string
	Page        int
	PageSize    int
}

// Normalize 对非法的分页/排序输入做钳制而不是报错
// 列表接口只做尽力修正，没有严格校验失败路径
func (f *ProductFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}
	if _, ok := productSortOrders[f.Sort]; !ok {
		f.Sort = DefaultProductSort
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		f.MinPrice, f.MaxPrice = f.MaxPrice, f.MinPrice
	}
}

// Offset 返回分页偏移量
func (f *ProductFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// applyFilter 把筛选条件翻译为一组 AND 谓词
// 关联表条件使用 EXISTS 子查询，主查询不产生重复行
func applyFilter(query *gorm.DB, f *ProductFilter) *gorm.DB {
	if f.ActressID != nil {
		query = query.Where(
			"EXISTS (SELECT 1 FROM product_performers pp WHERE pp.product_id = products.id AND pp.performer_id = ?)",
			*f.ActressID,
		)
	}

	if len(f.Tags) > 0 {
		query = query.Where(
			"EXISTS (SELECT 1 FROM product_tags pt JOIN tags t ON t.id = pt.tag_id WHERE pt.product_id = products.id AND t.name IN ?)",
			f.Tags,
		)
	}
	if len(f.ExcludeTags) > 0 {
		query = query.Where(
			"NOT EXISTS (SELECT 1 FROM product_tags pt JOIN tags t ON t.id = pt.tag_id WHERE pt.product_id = products.id AND t.name IN ?)",
			f.ExcludeTags,
		)
	}

	// 供货条件（ASP、价格区间）合并到同一个 EXISTS 里：
	// 价格区间作用于被选中 ASP 的供货价，而不是任意供货价
	if len(f.Providers) > 0 || f.MinPrice != nil || f.MaxPrice != nil {
		sub := "SELECT 1 FROM product_sources ps WHERE ps.product_id = products.id"
		args := make([]interface{}, 0, 3)
		if len(f.Providers) > 0 {
			sub += " AND ps.asp_name IN ?"
			args = append(args, f.Providers)
		}
		if f.MinPrice != nil {
			sub += " AND ps.price >= ?"
			args = append(args, *f.MinPrice)
		}
		if f.MaxPrice != nil {
			sub += " AND ps.price <= ?"
			args = append(args, *f.MaxPrice)
		}
		query = query.Where("EXISTS ("+sub+")", args...)
	}

	if f.HasVideo != nil {
		if *f.HasVideo {
			query = query.Where("sample_video_url != ''")
		} else {
			query = query.Where("sample_video_url = ''")
		}
	}
	if f.HasImage != nil {
		if *f.HasImage {
			query = query.Where("thumbnail_url != ''")
		} else {
			query = query.Where("thumbnail_url = ''")
		}
	}

	if f.Query != "" {
		pattern := "%" + f.Query + "%"
		query = query.Where("title ILIKE ? OR code ILIKE ?", pattern, pattern)
	}

	return query
}

// List 商品列表查询（分面筛选、分页、排序）
// 计数查询与数据查询复用同一组谓词，分页总数与当前页始终一致
func (r *ProductRepository) List(f *ProductFilter) ([]model.Product, int64, error) {
	f.Normalize()

	query := applyFilter(r.db.Model(&model.Product{}), f)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []model.Product
	err := query.
		Order(productSortOrders[f.Sort]).
		Offset(f.Offset()).
		Limit(f.PageSize).
		Preload("Performers").
		Preload("Tags").
		Preload("Sources").
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// GetByID 根据 ID 获取商品（含关联）
func (r *ProductRepository) GetByID(id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.
		Preload("Performers").
		Preload("Tags").
		Preload("Sources").
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetByIDs 批量获取商品（含关联），搜索结果回表用
func (r *ProductRepository) GetByIDs(ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []model.Product
	err := r.db.
		Preload("Performers").
		Preload("Tags").
		Preload("Sources").
		Where("id IN ?", ids).
		Find(&products).Error
	return products, err
}

// GetByCode 根据规范化品番获取商品
func (r *ProductRepository) GetByCode(code string) (*model.Product, error) {
	var product model.Product
	err := r.db.Where("code = ?", code).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListAllWithAssociations 按 ID 顺序分页取全量商品（索引重建用）
func (r *ProductRepository) ListAllWithAssociations(skip, limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.
		Preload("Performers").
		Preload("Tags").
		Preload("Sources").
		Order("id ASC").
		Offset(skip).Limit(limit).
		Find(&products).Error
	return products, err
}

// SearchBrief 标题/品番轻量模糊检索（自动补全用），只取必要列
func (r *ProductRepository) SearchBrief(query string, limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Select("id, code, title").
		Where("title ILIKE ? OR code ILIKE ?", "%"+query+"%", "%"+query+"%").
		Order("release_date DESC NULLS LAST").
		Limit(limit).
		Find(&products).Error
	return products, err
}

// Upsert 按品番 Upsert 商品（摄取用）
func (r *ProductRepository) Upsert(product *model.Product) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "description", "release_date", "duration",
			"thumbnail_url", "sample_video_url", "updated_at",
		}),
	}).Create(product).Error
}

// UpsertSource 按 (product_id, asp_name) Upsert 供货行
func (r *ProductRepository) UpsertSource(source *model.ProductSource) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_id"}, {Name: "asp_name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"price", "affiliate_url", "original_id", "updated_at",
		}),
	}).Create(source).Error
}

// ReplacePerformers 重建商品与演员的关联
func (r *ProductRepository) ReplacePerformers(product *model.Product, performers []model.Performer) error {
	return r.db.Model(product).Association("Performers").Replace(performers)
}

// ReplaceTags 重建商品与标签的关联
func (r *ProductRepository) ReplaceTags(product *model.Product, tags []model.Tag) error {
	return r.db.Model(product).Association("Tags").Replace(tags)
}

// Update 更新商品字段
func (r *ProductRepository) Update(id int64, updates map[string]interface{}) error {
	result := r.db.Model(&model.Product{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListMissingDescription 查找缺少简介的商品（内容增强用）
// 简介由演员和标签拼装，关联必须一并带出
func (r *ProductRepository) ListMissingDescription(limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.
		Preload("Performers").
		Preload("Tags").
		Where("description = ''").
		Order("created_at ASC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

// ListMissingMirrorThumb 查找未镜像封面的商品（内容增强用）
func (r *ProductRepository) ListMissingMirrorThumb(limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.
		Where("thumbnail_url != '' AND mirror_thumb_url = ''").
		Order("created_at ASC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

// ListRecentlyUpdated 查找最近更新的商品（搜索索引同步、SEO 推送用）
func (r *ProductRepository) ListRecentlyUpdated(since time.Time, limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.
		Preload("Performers").
		Preload("Tags").
		Preload("Sources").
		Where("updated_at >= ?", since).
		Order("updated_at ASC").
		Limit(limit).
		Find(&products).Error
	return products, err
}
