package service

import (
	"context"
	"encoding/json"
	"errors"

	"avdb-go/internal/api/dto"
	infraRedis "avdb-go/internal/infra/redis"
	"avdb-go/internal/model"
	"avdb-go/internal/repository"

	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("商品不存在")

// ProductStore 商品服务依赖的存储接口
type ProductStore interface {
	List(f *repository.ProductFilter) ([]model.Product, int64, error)
	GetByID(id int64) (*model.Product, error)
}

// SaleLookup 按供货 ID 批量查询生效中特价
type SaleLookup interface {
	ListActiveBySourceIDs(sourceIDs []int64) ([]model.ProductSale, error)
}

// TagLister 标签列表查询
type TagLister interface {
	ListWithCounts(category string) ([]repository.TagWithCount, error)
}

type ProductService struct {
	productStore ProductStore
	saleLookup   SaleLookup
	tagLister    TagLister
	cache        *infraRedis.Cache
}

func NewProductService(productStore ProductStore, saleLookup SaleLookup, tagLister TagLister, cache *infraRedis.Cache) *ProductService {
	return &ProductService{productStore: productStore, saleLookup: saleLookup, tagLister: tagLister, cache: cache}
}

// ListTags 列出标签及商品计数，category 为空时不过滤
func (s *ProductService) ListTags(category string) ([]dto.TagWithCountInfo, error) {
	rows, err := s.tagLister.ListWithCounts(category)
	if err != nil {
		return nil, err
	}
	infos := make([]dto.TagWithCountInfo, 0, len(rows))
	for i := range rows {
		infos = append(infos, dto.TagWithCountInfo{
			ID:           rows[i].ID,
			Name:         rows[i].Name,
			NameJA:       rows[i].NameJA,
			Category:     rows[i].Category,
			ProductCount: rows[i].ProductCount,
		})
	}
	return infos, nil
}

// List 按筛选条件查询商品列表，同一组条件在缓存 TTL 内只查一次库
// 过滤条件在 Normalize 中做宽松纠正而不是报错，非法值回退默认
func (s *ProductService) List(f *repository.ProductFilter) (*dto.ProductListData, error) {
	f.Normalize()

	ctx := context.Background()
	cacheKey := productListCacheKey(f)
	var cached dto.ProductListData
	if err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	products, total, err := s.productStore.List(f)
	if err != nil {
		return nil, err
	}

	sales, err := s.activeSalesFor(products)
	if err != nil {
		return nil, err
	}

	infos := make([]dto.ProductInfo, 0, len(products))
	for i := range products {
		infos = append(infos, toProductInfo(&products[i], sales, f.MinPrice, f.MaxPrice))
	}

	data := &dto.ProductListData{
		Products:   infos,
		Total:      total,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: totalPages(total, f.PageSize),
	}
	s.cache.SetJSON(ctx, cacheKey, data)
	return data, nil
}

// productListCacheKey 归一化后的筛选条件序列化为缓存键
// 特价有时效，键只能依赖默认 TTL 兜底过期
func productListCacheKey(f *repository.ProductFilter) string {
	raw, err := json.Marshal(f)
	if err != nil {
		return ""
	}
	return "products:list:" + string(raw)
}

// GetByID 查询商品详情
func (s *ProductService) GetByID(id int64) (*dto.ProductInfo, error) {
	product, err := s.productStore.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	sales, err := s.activeSalesFor([]model.Product{*product})
	if err != nil {
		return nil, err
	}

	info := toProductInfo(product, sales, nil, nil)
	return &info, nil
}

// activeSalesFor 为一批商品的全部供货批量加载生效中的特价，按供货 ID 索引
func (s *ProductService) activeSalesFor(products []model.Product) (map[int64]*model.ProductSale, error) {
	if s.saleLookup == nil {
		return nil, nil
	}

	var sourceIDs []int64
	for i := range products {
		for j := range products[i].Sources {
			sourceIDs = append(sourceIDs, products[i].Sources[j].ID)
		}
	}
	if len(sourceIDs) == 0 {
		return nil, nil
	}

	sales, err := s.saleLookup.ListActiveBySourceIDs(sourceIDs)
	if err != nil {
		return nil, err
	}

	bySource := make(map[int64]*model.ProductSale, len(sales))
	for i := range sales {
		bySource[sales[i].SourceID] = &sales[i]
	}
	return bySource, nil
}

// matchPrice 判断价格是否落在筛选区间内，nil 边界视为无穷
func matchPrice(price int, minPrice, maxPrice *int) bool {
	if minPrice != nil && price < *minPrice {
		return false
	}
	if maxPrice != nil && price > *maxPrice {
		return false
	}
	return true
}

// pickDisplaySource 选择展示价对应的供货：区间内最便宜的一条
// 区间内没有命中时退回全部供货中最便宜的，无供货返回 nil
func pickDisplaySource(sources []model.ProductSource, minPrice, maxPrice *int) *model.ProductSource {
	var inRange, cheapest *model.ProductSource
	for i := range sources {
		src := &sources[i]
		if cheapest == nil || src.Price < cheapest.Price {
			cheapest = src
		}
		if matchPrice(src.Price, minPrice, maxPrice) {
			if inRange == nil || src.Price < inRange.Price {
				inRange = src
			}
		}
	}
	if inRange != nil {
		return inRange
	}
	return cheapest
}

// pickThumbnail 优先使用镜像封面，缺失时退回 ASP 原始封面
func pickThumbnail(p *model.Product) string {
	if p.MirrorThumbURL != "" {
		return p.MirrorThumbURL
	}
	return p.ThumbnailURL
}

// toProductInfo 将商品模型折叠为响应结构，多条供货合为数组
func toProductInfo(p *model.Product, sales map[int64]*model.ProductSale, minPrice, maxPrice *int) dto.ProductInfo {
	performers := make([]dto.PerformerBrief, 0, len(p.Performers))
	for i := range p.Performers {
		performers = append(performers, dto.PerformerBrief{
			ID:       p.Performers[i].ID,
			Name:     p.Performers[i].Name,
			ImageURL: p.Performers[i].ImageURL,
		})
	}

	tags := make([]dto.TagBrief, 0, len(p.Tags))
	for i := range p.Tags {
		tags = append(tags, dto.TagBrief{
			ID:       p.Tags[i].ID,
			Name:     p.Tags[i].Name,
			Category: p.Tags[i].Category,
		})
	}

	sources := make([]dto.SourceInfo, 0, len(p.Sources))
	for i := range p.Sources {
		src := &p.Sources[i]
		info := dto.SourceInfo{
			ID:           src.ID,
			ASPName:      src.ASPName,
			Price:        src.Price,
			AffiliateURL: src.AffiliateURL,
		}
		if sale, ok := sales[src.ID]; ok {
			info.OnSale = true
			info.SalePrice = sale.SalePrice
			info.DiscountPercent = sale.DiscountPercent
		}
		sources = append(sources, info)
	}

	info := dto.ProductInfo{
		ID:             p.ID,
		Code:           p.Code,
		Title:          p.Title,
		Description:    p.Description,
		ReleaseDate:    p.ReleaseDate,
		Duration:       p.Duration,
		ThumbnailURL:   pickThumbnail(p),
		SampleVideoURL: p.SampleVideoURL,
		Rating:         p.Rating,
		RatingCount:    p.RatingCount,
		Performers:     performers,
		Tags:           tags,
		Sources:        sources,
		CreatedAt:      p.CreatedAt,
	}

	if display := pickDisplaySource(p.Sources, minPrice, maxPrice); display != nil {
		info.DisplayPrice = display.Price
		info.DisplayASP = display.ASPName
	}

	return info
}

// totalPages 计算总页数，向上取整
func totalPages(total int64, pageSize int) int64 {
	if pageSize <= 0 {
		return 0
	}
	return (total + int64(pageSize) - 1) / int64(pageSize)
}
