package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"avdb-go/internal/api/dto"
	infraES "avdb-go/internal/infra/elasticsearch"
	infraRedis "avdb-go/internal/infra/redis"
	"avdb-go/internal/model"
	"avdb-go/internal/repository"
	"avdb-go/pkg/logger"

	"go.uber.org/zap"
)

const (
	autocompleteLimit    = 8
	autocompleteCacheTTL = 30 * time.Second
	searchTimeout        = 10 * time.Second
)

// SearchProductStore 搜索服务依赖的商品存储接口
type SearchProductStore interface {
	List(f *repository.ProductFilter) ([]model.Product, int64, error)
	GetByIDs(ids []int64) ([]model.Product, error)
	SearchBrief(query string, limit int) ([]model.Product, error)
}

// PerformerSearcher 演员名字检索
type PerformerSearcher interface {
	Search(query string, limit int) ([]model.Performer, int64, error)
}

type SearchService struct {
	productStore SearchProductStore
	performers   PerformerSearcher
	saleLookup   SaleLookup
	cache        *infraRedis.Cache
}

func NewSearchService(productStore SearchProductStore, performers PerformerSearcher, saleLookup SaleLookup, cache *infraRedis.Cache) *SearchService {
	return &SearchService{
		productStore: productStore,
		performers:   performers,
		saleLookup:   saleLookup,
		cache:        cache,
	}
}

// SearchProducts 全文搜索商品（ES 优先，失败则降级到 DB）
func (s *SearchService) SearchProducts(query string, page, pageSize int) (*dto.ProductListData, error) {
	page, pageSize = normalizePage(page, pageSize)
	query = strings.TrimSpace(query)

	if infraES.Enabled() {
		data, err := s.searchFromES(query, page, pageSize)
		if err == nil {
			return data, nil
		}
		logger.Warn("ES search failed, fallback to DB", zap.Error(err))
	}
	return s.searchFromDB(query, page, pageSize)
}

// Autocomplete 搜索自动补全，结果缓存 30 秒
func (s *SearchService) Autocomplete(query string) (*dto.AutocompleteData, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &dto.AutocompleteData{
			Products:  []dto.AutocompleteProduct{},
			Actresses: []dto.AutocompleteActress{},
		}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
	defer cancel()

	cacheKey := "autocomplete:" + strings.ToLower(query)
	var cached dto.AutocompleteData
	if s.cache != nil {
		if err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	data := &dto.AutocompleteData{
		Products:  []dto.AutocompleteProduct{},
		Actresses: []dto.AutocompleteActress{},
	}

	if infraES.Enabled() {
		if err := s.autocompleteFromES(ctx, query, data); err != nil {
			logger.Warn("ES autocomplete failed, fallback to DB", zap.Error(err))
			if err := s.autocompleteFromDB(query, data); err != nil {
				return nil, err
			}
		}
	} else if err := s.autocompleteFromDB(query, data); err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.SetJSONWithTTL(ctx, cacheKey, data, autocompleteCacheTTL)
	}
	return data, nil
}

func (s *SearchService) searchFromES(query string, page, pageSize int) (*dto.ProductListData, error) {
	boolQ := map[string]interface{}{
		"must": []interface{}{},
	}
	if query != "" {
		boolQ["must"] = append(boolQ["must"].([]interface{}),
			map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":    query,
					"fields":   []string{"title^3", "performer_names^2", "description", "code"},
					"type":     "best_fields",
					"operator": "or",
				},
			},
		)
	}

	esQuery := map[string]interface{}{
		"query":   map[string]interface{}{"bool": boolQ},
		"_source": []string{"id"},
		"from":    (page - 1) * pageSize,
		"size":    pageSize,
		"sort": []interface{}{
			map[string]interface{}{"_score": map[string]string{"order": "desc"}},
			map[string]interface{}{"release_date": map[string]string{"order": "desc"}},
		},
	}

	queryJSON, err := json.Marshal(esQuery)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
	defer cancel()

	resp, err := infraES.Search(ctx, infraES.ProductsIndexName(), bytes.NewReader(queryJSON))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return nil, fmt.Errorf("ES search error: %s", resp.String())
	}

	var esResp struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source struct {
					ID int64 `json:"id"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&esResp); err != nil {
		return nil, err
	}

	productIDs := make([]int64, 0, len(esResp.Hits.Hits))
	for _, h := range esResp.Hits.Hits {
		productIDs = append(productIDs, h.Source.ID)
	}

	total := esResp.Hits.Total.Value
	products, err := s.productStore.GetByIDs(productIDs)
	if err != nil {
		return nil, err
	}

	// 按 ES 评分顺序重排回表结果
	productMap := make(map[int64]*model.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}
	ordered := make([]model.Product, 0, len(productIDs))
	for _, id := range productIDs {
		if p, ok := productMap[id]; ok {
			ordered = append(ordered, *p)
		}
	}

	return s.buildListData(ordered, total, page, pageSize)
}

func (s *SearchService) searchFromDB(query string, page, pageSize int) (*dto.ProductListData, error) {
	f := &repository.ProductFilter{Query: query, Page: page, PageSize: pageSize}
	f.Normalize()

	products, total, err := s.productStore.List(f)
	if err != nil {
		return nil, err
	}
	return s.buildListData(products, total, f.Page, f.PageSize)
}

func (s *SearchService) buildListData(products []model.Product, total int64, page, pageSize int) (*dto.ProductListData, error) {
	var sales map[int64]*model.ProductSale
	if s.saleLookup != nil {
		var sourceIDs []int64
		for i := range products {
			for j := range products[i].Sources {
				sourceIDs = append(sourceIDs, products[i].Sources[j].ID)
			}
		}
		if len(sourceIDs) > 0 {
			rows, err := s.saleLookup.ListActiveBySourceIDs(sourceIDs)
			if err != nil {
				return nil, err
			}
			sales = make(map[int64]*model.ProductSale, len(rows))
			for i := range rows {
				sales[rows[i].SourceID] = &rows[i]
			}
		}
	}

	infos := make([]dto.ProductInfo, 0, len(products))
	for i := range products {
		infos = append(infos, toProductInfo(&products[i], sales, nil, nil))
	}
	return &dto.ProductListData{
		Products:   infos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

func (s *SearchService) autocompleteFromES(ctx context.Context, query string, data *dto.AutocompleteData) error {
	productQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title.autocomplete^2", "title", "code"},
			},
		},
		"_source": []string{"id", "code", "title"},
		"size":    autocompleteLimit,
	}
	var productResp struct {
		Hits struct {
			Hits []struct {
				Source dto.AutocompleteProduct `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := s.runESQuery(ctx, infraES.ProductsIndexName(), productQuery, &productResp); err != nil {
		return err
	}
	for _, h := range productResp.Hits.Hits {
		data.Products = append(data.Products, h.Source)
	}

	performerQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"match_phrase_prefix": map[string]interface{}{
				"name": query,
			},
		},
		"_source": []string{"id", "name"},
		"size":    autocompleteLimit,
	}
	var performerResp struct {
		Hits struct {
			Hits []struct {
				Source dto.AutocompleteActress `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := s.runESQuery(ctx, infraES.PerformersIndexName(), performerQuery, &performerResp); err != nil {
		return err
	}
	for _, h := range performerResp.Hits.Hits {
		data.Actresses = append(data.Actresses, h.Source)
	}
	return nil
}

func (s *SearchService) runESQuery(ctx context.Context, index string, query map[string]interface{}, dest interface{}) error {
	queryJSON, err := json.Marshal(query)
	if err != nil {
		return err
	}

	resp, err := infraES.Search(ctx, index, bytes.NewReader(queryJSON))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return fmt.Errorf("ES query error: %s", resp.String())
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

func (s *SearchService) autocompleteFromDB(query string, data *dto.AutocompleteData) error {
	products, err := s.productStore.SearchBrief(query, autocompleteLimit)
	if err != nil {
		return err
	}
	for i := range products {
		data.Products = append(data.Products, dto.AutocompleteProduct{
			ID:    products[i].ID,
			Code:  products[i].Code,
			Title: products[i].Title,
		})
	}

	performers, _, err := s.performers.Search(query, autocompleteLimit)
	if err != nil {
		return err
	}
	for i := range performers {
		data.Actresses = append(data.Actresses, dto.AutocompleteActress{
			ID:   performers[i].ID,
			Name: performers[i].Name,
		})
	}
	return nil
}
