package handler

import (
	"context"
	"errors"
	"strconv"

	"avdb-go/internal/api/response"
	"avdb-go/internal/asp"
	"avdb-go/internal/config"
	"avdb-go/internal/service"
	"avdb-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CronHandler 定时任务端点
// 全部挂在 CronAuthRequired 后面，由外部调度器带密钥触发
type CronHandler struct {
	ingestService *service.IngestService
	enrichService *service.EnrichService
	aspClient     *asp.Client
}

func NewCronHandler(ingestService *service.IngestService, enrichService *service.EnrichService, aspClient *asp.Client) *CronHandler {
	return &CronHandler{
		ingestService: ingestService,
		enrichService: enrichService,
		aspClient:     aspClient,
	}
}

// cronContext 带时间片的任务上下文，超时后任务收尾退出
func cronContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), config.GetCron().Timebox())
}

// FetchProducts GET /api/cron/fetch-products
// 为每个已配置的 ASP 派发抓取任务到 Kafka
func (h *CronHandler) FetchProducts(c *gin.Context) {
	ctx, cancel := cronContext(c)
	defer cancel()

	pages, _ := strconv.Atoi(c.DefaultQuery("pages", "1"))
	if pages < 1 || pages > 50 {
		pages = 1
	}

	summary, err := h.ingestService.EnqueueFetchJobs(ctx, h.aspClient.Names(), pages)
	if err != nil {
		logger.Error("Enqueue fetch jobs failed", zap.Error(err))
		response.InternalError(c, "派发抓取任务失败")
		return
	}

	response.OK(c, "抓取任务已派发", summary)
}

// ProcessRawData GET /api/cron/process-raw-data
// 把暂存的原始数据归一化为正式商品
func (h *CronHandler) ProcessRawData(c *gin.Context) {
	ctx, cancel := cronContext(c)
	defer cancel()

	summary, err := h.ingestService.ProcessRawData(ctx)
	if err != nil {
		logger.Error("Process raw data failed", zap.Error(err))
		response.InternalError(c, "处理原始数据失败")
		return
	}

	response.OK(c, "处理完成", summary)
}

// EnhanceContent GET /api/cron/enhance-content?type=description|images
func (h *CronHandler) EnhanceContent(c *gin.Context) {
	ctx, cancel := cronContext(c)
	defer cancel()

	summary, err := h.enrichService.EnhanceContent(ctx, c.Query("type"))
	if err != nil {
		handleCronError(c, err)
		return
	}

	response.OK(c, "内容增强完成", summary)
}

// SEOEnhance GET /api/cron/seo-enhance?type=indexing|metadata
func (h *CronHandler) SEOEnhance(c *gin.Context) {
	ctx, cancel := cronContext(c)
	defer cancel()

	summary, err := h.enrichService.SEOEnhance(ctx, c.Query("type"))
	if err != nil {
		handleCronError(c, err)
		return
	}

	response.OK(c, "SEO 增强完成", summary)
}

// SyncSearchIndex GET /api/cron/sync-search-index
func (h *CronHandler) SyncSearchIndex(c *gin.Context) {
	ctx, cancel := cronContext(c)
	defer cancel()

	summary, err := h.enrichService.SyncSearchIndex(ctx)
	if err != nil {
		logger.Error("Sync search index failed", zap.Error(err))
		response.InternalError(c, "同步搜索索引失败")
		return
	}

	response.OK(c, "索引同步完成", summary)
}

// CheckSales GET /api/cron/check-sales
func (h *CronHandler) CheckSales(c *gin.Context) {
	ctx, cancel := cronContext(c)
	defer cancel()

	summary, err := h.enrichService.CheckSales(ctx)
	if err != nil {
		logger.Error("Check sales failed", zap.Error(err))
		response.InternalError(c, "检查特卖失败")
		return
	}

	response.OK(c, "特卖检查完成", summary)
}

func handleCronError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownJobType):
		response.BadRequest(c, err.Error())
	default:
		logger.Error("Cron job failed", zap.Error(err))
		response.InternalError(c, "任务执行失败")
	}
}
