package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"avdb-go/internal/api/dto"
	"avdb-go/internal/config"
	infraES "avdb-go/internal/infra/elasticsearch"
	infraMinio "avdb-go/internal/infra/minio"
	infraRedis "avdb-go/internal/infra/redis"
	"avdb-go/internal/model"
	"avdb-go/internal/repository"
	"avdb-go/pkg/logger"

	"go.uber.org/zap"
)

var ErrUnknownJobType = errors.New("未知的任务类型")

// 内容增强与 SEO 任务的类型参数
const (
	EnhanceTypeDescription = "description"
	EnhanceTypeImages      = "images"
	SEOTypeIndexing        = "indexing"
	SEOTypeMetadata        = "metadata"
)

const seoMetaCacheTTL = 24 * time.Hour

// EnrichProductStore 内容增强依赖的商品存储接口
type EnrichProductStore interface {
	ListMissingDescription(limit int) ([]model.Product, error)
	ListMissingMirrorThumb(limit int) ([]model.Product, error)
	ListRecentlyUpdated(since time.Time, limit int) ([]model.Product, error)
	ListAllWithAssociations(skip, limit int) ([]model.Product, error)
	Update(id int64, updates map[string]interface{}) error
}

// SaleMaintainer 特价维护接口
type SaleMaintainer interface {
	DeactivateExpired(now time.Time) (int64, error)
}

// PerformerIndexSource 演员索引同步数据源
type PerformerIndexSource interface {
	ListWithCounts(query string, skip, limit int) ([]repository.PerformerWithCount, int64, error)
}

// SEOMeta 缓存给前端渲染的 SEO 元信息
type SEOMeta struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	CanonicalURL string `json:"canonical_url"`
}

type EnrichService struct {
	productStore EnrichProductStore
	sales        SaleMaintainer
	performerSrc PerformerIndexSource
	cache        *infraRedis.Cache
	httpClient   *http.Client
}

func NewEnrichService(productStore EnrichProductStore, sales SaleMaintainer, performerSrc PerformerIndexSource, cache *infraRedis.Cache) *EnrichService {
	return &EnrichService{
		productStore: productStore,
		sales:        sales,
		performerSrc: performerSrc,
		cache:        cache,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// EnhanceContent 内容增强任务入口，type 取 description 或 images
func (s *EnrichService) EnhanceContent(ctx context.Context, jobType string) (*dto.CronSummary, error) {
	switch jobType {
	case EnhanceTypeDescription:
		return s.enhanceDescriptions(ctx)
	case EnhanceTypeImages:
		return s.mirrorThumbnails(ctx)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownJobType, jobType)
	}
}

// SEOEnhance SEO 增强任务入口，type 取 indexing 或 metadata
func (s *EnrichService) SEOEnhance(ctx context.Context, jobType string) (*dto.CronSummary, error) {
	switch jobType {
	case SEOTypeIndexing:
		return s.pingIndexingAPI(ctx)
	case SEOTypeMetadata:
		return s.refreshSEOMetadata(ctx)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownJobType, jobType)
	}
}

// CheckSales 清理过期特价
func (s *EnrichService) CheckSales(ctx context.Context) (*dto.CronSummary, error) {
	start := time.Now()

	deactivated, err := s.sales.DeactivateExpired(start)
	if err != nil {
		return nil, err
	}

	return &dto.CronSummary{
		Processed:  int(deactivated),
		DurationMS: time.Since(start).Milliseconds(),
		Message:    fmt.Sprintf("已下线 %d 条过期特价", deactivated),
	}, nil
}

// SyncSearchIndex 全量重建搜索索引：商品走 Bulk，演员逐条
func (s *EnrichService) SyncSearchIndex(ctx context.Context) (*dto.CronSummary, error) {
	start := time.Now()
	if !infraES.Enabled() {
		return &dto.CronSummary{Message: "搜索引擎未启用，跳过"}, nil
	}

	cronCfg := config.GetCron()
	deadline := start.Add(cronCfg.Timebox())
	batch := cronCfg.BatchLimit()

	summary := &dto.CronSummary{}
	for skip := 0; ; skip += batch {
		if time.Now().After(deadline) || ctx.Err() != nil {
			summary.Message = "时间片用尽，索引同步未完成"
			break
		}

		products, err := s.productStore.ListAllWithAssociations(skip, batch)
		if err != nil {
			return nil, err
		}
		if len(products) == 0 {
			break
		}

		success, failed, err := infraES.BulkSyncProducts(ctx, products)
		if err != nil {
			logger.Error("Bulk sync products failed", zap.Int("skip", skip), zap.Error(err))
			summary.Failed += len(products)
			continue
		}
		summary.Processed += success
		summary.Failed += failed
	}

	for skip := 0; ; skip += batch {
		if time.Now().After(deadline) || ctx.Err() != nil {
			summary.Message = "时间片用尽，索引同步未完成"
			break
		}

		performers, _, err := s.performerSrc.ListWithCounts("", skip, batch)
		if err != nil {
			return nil, err
		}
		if len(performers) == 0 {
			break
		}

		for i := range performers {
			if err := infraES.SyncPerformer(ctx, &performers[i].Performer, performers[i].ProductCount); err != nil {
				logger.Warn("Sync performer failed", zap.Int64("performer_id", performers[i].ID), zap.Error(err))
				summary.Failed++
				continue
			}
			summary.Processed++
		}
	}

	summary.DurationMS = time.Since(start).Milliseconds()
	return summary, nil
}

// enhanceDescriptions 为缺简介的商品生成描述文案
func (s *EnrichService) enhanceDescriptions(ctx context.Context) (*dto.CronSummary, error) {
	start := time.Now()
	cronCfg := config.GetCron()
	deadline := start.Add(cronCfg.Timebox())

	products, err := s.productStore.ListMissingDescription(cronCfg.BatchLimit())
	if err != nil {
		return nil, err
	}

	summary := &dto.CronSummary{}
	for i := range products {
		if time.Now().After(deadline) || ctx.Err() != nil {
			summary.Skipped = len(products) - i
			summary.Message = "时间片用尽，剩余商品留待下次执行"
			break
		}

		p := &products[i]
		description := buildDescription(p)
		if description == "" {
			summary.Skipped++
			continue
		}
		if err := s.productStore.Update(p.ID, map[string]interface{}{"description": description}); err != nil {
			logger.Warn("Update description failed", zap.Int64("product_id", p.ID), zap.Error(err))
			summary.Failed++
			continue
		}
		summary.Processed++
	}

	summary.DurationMS = time.Since(start).Milliseconds()
	return summary, nil
}

// mirrorThumbnails 把伙伴侧封面镜像到对象存储，避免直接外链
func (s *EnrichService) mirrorThumbnails(ctx context.Context) (*dto.CronSummary, error) {
	start := time.Now()
	if !infraMinio.Enabled() {
		return &dto.CronSummary{Message: "对象存储未启用，跳过"}, nil
	}

	cronCfg := config.GetCron()
	deadline := start.Add(cronCfg.Timebox())
	delay := cronCfg.FetchDelayDuration()

	products, err := s.productStore.ListMissingMirrorThumb(cronCfg.BatchLimit())
	if err != nil {
		return nil, err
	}

	summary := &dto.CronSummary{}
	for i := range products {
		if time.Now().After(deadline) || ctx.Err() != nil {
			summary.Skipped = len(products) - i
			summary.Message = "时间片用尽，剩余商品留待下次执行"
			break
		}

		p := &products[i]
		if err := s.mirrorOne(ctx, p); err != nil {
			logger.Warn("Mirror thumbnail failed", zap.Int64("product_id", p.ID), zap.Error(err))
			summary.Failed++
		} else {
			summary.Processed++
		}

		// 固定间隔限速，避免打爆伙伴侧图床
		time.Sleep(delay)
	}

	summary.DurationMS = time.Since(start).Milliseconds()
	return summary, nil
}

func (s *EnrichService) mirrorOne(ctx context.Context, p *model.Product) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.ThumbnailURL, nil)
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download thumbnail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download thumbnail: unexpected status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	objectName := fmt.Sprintf("products/%d.jpg", p.ID)
	if _, err := infraMinio.UploadObject(ctx, infraMinio.ThumbBucket, objectName, resp.Body, resp.ContentLength, contentType); err != nil {
		return fmt.Errorf("upload thumbnail: %w", err)
	}

	return s.productStore.Update(p.ID, map[string]interface{}{
		"mirror_thumb_url": infraMinio.PublicURL(infraMinio.ThumbBucket, objectName),
	})
}

// pingIndexingAPI 把近期更新的商品页提交给搜索引擎收录接口
func (s *EnrichService) pingIndexingAPI(ctx context.Context) (*dto.CronSummary, error) {
	start := time.Now()
	enrichCfg := config.GetEnrichment()
	if enrichCfg.IndexingEndpoint == "" || enrichCfg.IndexingAPIKey == "" {
		return &dto.CronSummary{Message: "收录接口未配置，跳过"}, nil
	}

	cronCfg := config.GetCron()
	deadline := start.Add(cronCfg.Timebox())
	delay := cronCfg.FetchDelayDuration()

	products, err := s.productStore.ListRecentlyUpdated(start.Add(-24*time.Hour), cronCfg.BatchLimit())
	if err != nil {
		return nil, err
	}

	summary := &dto.CronSummary{}
	for i := range products {
		if time.Now().After(deadline) || ctx.Err() != nil {
			summary.Skipped = len(products) - i
			summary.Message = "时间片用尽，剩余商品留待下次执行"
			break
		}

		pageURL := productPageURL(enrichCfg.SiteBaseURL, products[i].ID)
		if err := s.submitURL(ctx, enrichCfg, pageURL); err != nil {
			logger.Warn("Submit URL for indexing failed", zap.String("url", pageURL), zap.Error(err))
			summary.Failed++
		} else {
			summary.Processed++
		}

		time.Sleep(delay)
	}

	summary.DurationMS = time.Since(start).Milliseconds()
	return summary, nil
}

func (s *EnrichService) submitURL(ctx context.Context, cfg *config.EnrichmentConfig, pageURL string) error {
	body, err := json.Marshal(map[string]string{"url": pageURL, "type": "URL_UPDATED"})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.IndexingEndpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.IndexingAPIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("indexing API status %d", resp.StatusCode)
	}
	return nil
}

// refreshSEOMetadata 为近期更新的商品重算 SEO 元信息并写入缓存
func (s *EnrichService) refreshSEOMetadata(ctx context.Context) (*dto.CronSummary, error) {
	start := time.Now()
	if s.cache == nil {
		return &dto.CronSummary{Message: "缓存未启用，跳过"}, nil
	}

	cronCfg := config.GetCron()
	enrichCfg := config.GetEnrichment()

	products, err := s.productStore.ListRecentlyUpdated(start.Add(-24*time.Hour), cronCfg.BatchLimit())
	if err != nil {
		return nil, err
	}

	summary := &dto.CronSummary{}
	for i := range products {
		p := &products[i]
		meta := &SEOMeta{
			Title:        buildSEOTitle(p),
			Description:  truncateRunes(firstNonEmpty(p.Description, buildDescription(p)), 160),
			CanonicalURL: productPageURL(enrichCfg.SiteBaseURL, p.ID),
		}
		s.cache.SetJSONWithTTL(ctx, fmt.Sprintf("seo:meta:%d", p.ID), meta, seoMetaCacheTTL)
		summary.Processed++
	}

	summary.DurationMS = time.Since(start).Milliseconds()
	return summary, nil
}

// buildDescription 用商品元数据拼装兜底描述，信息不足时返回空串
func buildDescription(p *model.Product) string {
	var parts []string
	if len(p.Performers) > 0 {
		names := make([]string, 0, len(p.Performers))
		for i := range p.Performers {
			names = append(names, p.Performers[i].Name)
		}
		parts = append(parts, strings.Join(names, "、")+"出演")
	}
	if p.Duration > 0 {
		parts = append(parts, fmt.Sprintf("収録時間%d分", p.Duration))
	}
	if len(p.Tags) > 0 {
		names := make([]string, 0, len(p.Tags))
		for i := range p.Tags {
			names = append(names, p.Tags[i].Name)
		}
		parts = append(parts, "ジャンル："+strings.Join(names, "、"))
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf("「%s」（品番：%s）。%s。", p.Title, p.Code, strings.Join(parts, "。"))
}

func buildSEOTitle(p *model.Product) string {
	title := p.Title
	if len(p.Performers) > 0 {
		title = p.Performers[0].Name + " " + title
	}
	return truncateRunes(title+" ("+p.Code+")", 60)
}

func productPageURL(baseURL string, productID int64) string {
	return fmt.Sprintf("%s/products/%d", strings.TrimRight(baseURL, "/"), productID)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
