package handler

import (
	"avdb-go/internal/api/response"
	"avdb-go/internal/service"
	"avdb-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SearchHandler struct {
	searchService *service.SearchService
}

func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search 全文搜索商品
// @Summary 商品搜索
// @Description 标题、品番、演员名全文检索，搜索引擎不可用时降级为数据库模糊匹配
// @Tags 搜索
// @Produce json
// @Param q query string true "关键词"
// @Param page query int false "页码"
// @Param page_size query int false "每页条数"
// @Success 200 {object} response.Response{data=dto.ProductListData} "搜索成功"
// @Router /search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	page, pageSize := parsePagination(c)

	data, err := h.searchService.SearchProducts(c.Query("q"), page, pageSize)
	if err != nil {
		logger.Error("Search products failed", zap.String("q", c.Query("q")), zap.Error(err))
		response.InternalError(c, "搜索失败")
		return
	}

	response.OK(c, "搜索成功", data)
}

// Autocomplete 搜索自动补全
func (h *SearchHandler) Autocomplete(c *gin.Context) {
	data, err := h.searchService.Autocomplete(c.Query("q"))
	if err != nil {
		logger.Error("Autocomplete failed", zap.String("q", c.Query("q")), zap.Error(err))
		response.InternalError(c, "获取补全候选失败")
		return
	}

	response.OK(c, "获取成功", data)
}
