package handler

import (
	"strconv"
	"strings"

	"avdb-go/internal/api/middleware"
	"avdb-go/internal/api/response"
	"avdb-go/internal/service"
	"avdb-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SaleHandler struct {
	saleService *service.SaleService
}

func NewSaleHandler(saleService *service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// List 特卖列表
// @Summary 特卖列表
// @Description 生效中的限时特价，按折扣降序
// @Tags 特卖
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页条数"
// @Success 200 {object} response.Response{data=dto.SaleListData} "获取成功"
// @Router /sales [get]
func (h *SaleHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)

	data, err := h.saleService.List(page, pageSize)
	if err != nil {
		logger.Error("List sales failed", zap.Error(err))
		response.InternalError(c, "获取特卖列表失败")
		return
	}

	response.OK(c, "获取成功", data)
}

// ForYou 个性化特卖推荐
// @Summary 个性化特卖推荐
// @Description 按调用方提供的演员和商品信号做特卖推荐，不传信号且已登录时用收藏推导
// @Tags 特卖
// @Produce json
// @Param favorite_performer_ids query string false "关注的演员 ID，逗号分隔"
// @Param recent_product_ids query string false "最近看过的商品 ID，逗号分隔"
// @Param limit query int false "返回条数上限（1-50，默认 20）"
// @Success 200 {object} response.Response{data=dto.ForYouData} "获取成功"
// @Router /sales/for-you [get]
func (h *SaleHandler) ForYou(c *gin.Context) {
	userID, _ := middleware.GetCurrentUserID(c)

	performerIDs := parseIDList(c.Query("favorite_performer_ids"))
	recentProductIDs := parseIDList(c.Query("recent_product_ids"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	data, err := h.saleService.ForYou(userID, performerIDs, recentProductIDs, limit)
	if err != nil {
		logger.Error("ForYou recommendations failed", zap.Int64("user_id", userID), zap.Error(err))
		response.InternalError(c, "获取推荐失败")
		return
	}

	response.OK(c, "获取成功", data)
}

// parseIDList 解析逗号分隔的 ID 列表，非法片段跳过
func parseIDList(raw string) []int64 {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || v <= 0 {
			continue
		}
		ids = append(ids, v)
	}
	return ids
}
