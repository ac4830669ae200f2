package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"avdb-go/internal/api/dto"
	"avdb-go/internal/asp"
	"avdb-go/internal/config"
	infraES "avdb-go/internal/infra/elasticsearch"
	infraKafka "avdb-go/internal/infra/kafka"
	"avdb-go/internal/model"
	"avdb-go/pkg/logger"
	"avdb-go/pkg/utils"

	"go.uber.org/zap"
)

// RawProductStore 摄取暂存表接口
type RawProductStore interface {
	ListPending(limit int) ([]model.RawProduct, error)
	CountPending() (int64, error)
	MarkProcessed(id int64) error
	MarkFailed(id int64, reason string) error
}

// CatalogStore 摄取写入正式目录的接口
type CatalogStore interface {
	Upsert(product *model.Product) error
	UpsertSource(source *model.ProductSource) error
	ReplacePerformers(product *model.Product, performers []model.Performer) error
	ReplaceTags(product *model.Product, tags []model.Tag) error
	GetByCode(code string) (*model.Product, error)
	GetByID(id int64) (*model.Product, error)
}

// PerformerCreator 摄取时按名字建演员
type PerformerCreator interface {
	GetOrCreateByName(name string) (*model.Performer, error)
}

// TagCreator 摄取时按名字建标签
type TagCreator interface {
	GetOrCreateByName(name, category string) (*model.Tag, error)
}

// SaleWriter 摄取时写入特价行
type SaleWriter interface {
	Upsert(sale *model.ProductSale) error
}

type IngestService struct {
	rawStore     RawProductStore
	catalogStore CatalogStore
	performers   PerformerCreator
	tags         TagCreator
	sales        SaleWriter
}

func NewIngestService(rawStore RawProductStore, catalogStore CatalogStore, performers PerformerCreator, tags TagCreator, sales SaleWriter) *IngestService {
	return &IngestService{
		rawStore:     rawStore,
		catalogStore: catalogStore,
		performers:   performers,
		tags:         tags,
		sales:        sales,
	}
}

// EnqueueFetchJobs 为每个已配置的 ASP 投递抓取任务
// 抓取本身由 worker 消费 Kafka 执行，本方法只负责派发
func (s *IngestService) EnqueueFetchJobs(ctx context.Context, aspNames []string, pages int) (*dto.CronSummary, error) {
	start := time.Now()
	if pages < 1 {
		pages = 1
	}

	topic := config.GetKafka().Topics["product_fetch"]
	summary := &dto.CronSummary{}
	for _, name := range aspNames {
		for page := 1; page <= pages; page++ {
			job := &infraKafka.FetchJob{ASPName: name, Page: page}
			if err := infraKafka.SendFetchJob(ctx, topic, job); err != nil {
				logger.Error("Enqueue fetch job failed",
					zap.String("asp", name), zap.Int("page", page), zap.Error(err))
				summary.Failed++
				continue
			}
			summary.Processed++
		}
	}

	summary.DurationMS = time.Since(start).Milliseconds()
	summary.Message = fmt.Sprintf("已派发 %d 个抓取任务", summary.Processed)
	return summary, nil
}

// ProcessRawData 将暂存的原始数据归一化为正式商品
// 在时间片内分批处理，单条失败记入 failed 后继续，不中断整批
func (s *IngestService) ProcessRawData(ctx context.Context) (*dto.CronSummary, error) {
	start := time.Now()
	cronCfg := config.GetCron()
	deadline := start.Add(cronCfg.Timebox())

	summary := &dto.CronSummary{}
	for {
		if time.Now().After(deadline) || ctx.Err() != nil {
			summary.Message = "时间片用尽，剩余数据留待下次执行"
			break
		}

		batch, err := s.rawStore.ListPending(cronCfg.BatchLimit())
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}

		for i := range batch {
			if time.Now().After(deadline) || ctx.Err() != nil {
				summary.Message = "时间片用尽，剩余数据留待下次执行"
				break
			}

			raw := &batch[i]
			if err := s.processOne(ctx, raw); err != nil {
				logger.Warn("Process raw product failed",
					zap.Int64("raw_id", raw.ID),
					zap.String("asp", raw.ASPName),
					zap.Error(err))
				if markErr := s.rawStore.MarkFailed(raw.ID, err.Error()); markErr != nil {
					logger.Error("Mark raw product failed error", zap.Int64("raw_id", raw.ID), zap.Error(markErr))
				}
				summary.Failed++
				continue
			}
			if err := s.rawStore.MarkProcessed(raw.ID); err != nil {
				logger.Error("Mark raw product processed error", zap.Int64("raw_id", raw.ID), zap.Error(err))
			}
			summary.Processed++
		}
	}

	summary.DurationMS = time.Since(start).Milliseconds()
	return summary, nil
}

// processOne 归一化单条原始数据：商品、供货、演员、标签，最后同步搜索索引
func (s *IngestService) processOne(ctx context.Context, raw *model.RawProduct) error {
	var item asp.Item
	if err := json.Unmarshal(raw.Payload, &item); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if item.Title == "" {
		return fmt.Errorf("payload missing title")
	}

	code := normalizeCode(raw.ASPName, item.OriginalID)
	if code == "" {
		return fmt.Errorf("cannot derive product code from %q", item.OriginalID)
	}

	product := &model.Product{
		Code:           code,
		Title:          item.Title,
		Description:    item.Description,
		Duration:       item.Duration,
		ThumbnailURL:   item.ImageURL,
		SampleVideoURL: item.SampleURL,
	}
	if item.ReleaseDate != "" {
		if t, err := time.Parse("2006-01-02", item.ReleaseDate); err == nil {
			product.ReleaseDate = &t
		}
	}

	if err := s.catalogStore.Upsert(product); err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	// 冲突更新时部分驱动不回填主键，按品番补查一次
	if product.ID == 0 {
		existing, err := s.catalogStore.GetByCode(code)
		if err != nil {
			return fmt.Errorf("reload product after upsert: %w", err)
		}
		product = existing
	}

	source := &model.ProductSource{
		ProductID:    product.ID,
		ASPName:      raw.ASPName,
		Price:        item.Price,
		AffiliateURL: normalizeAffiliateURL(raw.ASPName, item.AffiliateURL),
		OriginalID:   item.OriginalID,
	}
	if err := s.catalogStore.UpsertSource(source); err != nil {
		return fmt.Errorf("upsert source: %w", err)
	}

	// 定价低于原价时视为特卖中，记一条特价行
	if s.sales != nil && item.ListPrice > item.Price && item.Price > 0 {
		sale := &model.ProductSale{
			SourceID:        source.ID,
			RegularPrice:    item.ListPrice,
			SalePrice:       item.Price,
			DiscountPercent: (item.ListPrice - item.Price) * 100 / item.ListPrice,
			StartAt:         time.Now(),
			IsActive:        true,
		}
		if t, err := time.Parse("2006-01-02", item.SaleEndDate); err == nil {
			sale.EndAt = t
		} else {
			// 伙伴未给出结束时间时按一周处理
			sale.EndAt = time.Now().AddDate(0, 0, 7)
		}
		if err := s.sales.Upsert(sale); err != nil {
			return fmt.Errorf("upsert sale: %w", err)
		}
	}

	if len(item.Performers) > 0 {
		performers := make([]model.Performer, 0, len(item.Performers))
		for _, name := range item.Performers {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			performer, err := s.performers.GetOrCreateByName(name)
			if err != nil {
				return fmt.Errorf("get or create performer %q: %w", name, err)
			}
			performers = append(performers, *performer)
		}
		if err := s.catalogStore.ReplacePerformers(product, performers); err != nil {
			return fmt.Errorf("replace performers: %w", err)
		}
	}

	if len(item.Tags) > 0 {
		tags := make([]model.Tag, 0, len(item.Tags))
		for _, name := range item.Tags {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			tag, err := s.tags.GetOrCreateByName(name, model.TagCategoryGenre)
			if err != nil {
				return fmt.Errorf("get or create tag %q: %w", name, err)
			}
			tags = append(tags, *tag)
		}
		if err := s.catalogStore.ReplaceTags(product, tags); err != nil {
			return fmt.Errorf("replace tags: %w", err)
		}
	}

	// 索引同步失败不影响入库，下次 sync-search-index 会补
	if infraES.Enabled() {
		if full, err := s.catalogStore.GetByID(product.ID); err == nil {
			if err := infraES.SyncProduct(ctx, full); err != nil {
				logger.Warn("Sync product to ES failed", zap.Int64("product_id", product.ID), zap.Error(err))
			}
		}
	}

	return nil
}

// PendingCount 当前待处理的暂存行数
func (s *IngestService) PendingCount() (int64, error) {
	return s.rawStore.CountPending()
}

// normalizeCode 从伙伴侧原始 ID 推导规范化品番
func normalizeCode(aspName, originalID string) string {
	switch aspName {
	case asp.ASPMgs:
		return utils.NormalizeMGSProductID(originalID)
	default:
		return strings.ToUpper(strings.TrimSpace(originalID))
	}
}

// normalizeAffiliateURL 归一化联盟链接
// FANZA 的跳转链接先解出 lurl 直链，其余只做修整
func normalizeAffiliateURL(aspName, rawURL string) string {
	if aspName == asp.ASPFanza {
		rawURL = utils.ConvertFanzaToDirectURL(rawURL)
	}
	return utils.GetAffiliateURL(rawURL)
}
