package handler

import (
	"errors"
	"strconv"
	"strings"

	"avdb-go/internal/api/response"
	"avdb-go/internal/repository"
	"avdb-go/internal/service"
	"avdb-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProductHandler struct {
	productService *service.ProductService
}

func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List 商品列表
// @Summary 商品列表
// @Description 按演员、标签、供货商、价格区间等条件分页检索商品，非法参数回退默认值
// @Tags 商品
// @Produce json
// @Param query query string false "标题/品番关键词"
// @Param actress_id query int false "演员 ID"
// @Param tags query []string false "包含标签（可重复）"
// @Param exclude_tags query []string false "排除标签（可重复）"
// @Param providers query []string false "供货商（FANZA/MGS/SOKMIL/DUGA，可重复）"
// @Param min_price query int false "最低价（日元）"
// @Param max_price query int false "最高价（日元）"
// @Param has_video query bool false "仅带样片"
// @Param has_image query bool false "仅带封面"
// @Param sort query string false "排序（releaseDateDesc 等）"
// @Param page query int false "页码"
// @Param page_size query int false "每页条数"
// @Success 200 {object} response.Response{data=dto.ProductListData} "获取成功"
// @Failure 500 {object} response.ErrorResponse "服务器错误"
// @Router /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	filter := parseProductFilter(c)

	data, err := h.productService.List(filter)
	if err != nil {
		logger.Error("List products failed", zap.Error(err))
		response.InternalError(c, "获取商品列表失败")
		return
	}

	response.OK(c, "获取成功", data)
}

// Get 商品详情
// @Summary 商品详情
// @Tags 商品
// @Produce json
// @Param id path int true "商品 ID"
// @Success 200 {object} response.Response{data=dto.ProductInfo} "获取成功"
// @Failure 404 {object} response.ErrorResponse "商品不存在"
// @Router /products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的商品 ID")
		return
	}

	info, err := h.productService.GetByID(id)
	if err != nil {
		handleProductError(c, err)
		return
	}

	response.OK(c, "获取成功", info)
}

// ListTags 标签列表
// @Summary 标签列表
// @Tags 商品
// @Produce json
// @Param category query string false "标签类别"
// @Success 200 {object} response.Response{data=[]dto.TagWithCountInfo} "获取成功"
// @Router /tags [get]
func (h *ProductHandler) ListTags(c *gin.Context) {
	tags, err := h.productService.ListTags(c.Query("category"))
	if err != nil {
		logger.Error("List tags failed", zap.Error(err))
		response.InternalError(c, "获取标签列表失败")
		return
	}

	response.OK(c, "获取成功", tags)
}

// parseProductFilter 从查询串组装筛选条件
// 数值类参数解析失败时按未提供处理，不报 400
func parseProductFilter(c *gin.Context) *repository.ProductFilter {
	filter := &repository.ProductFilter{
		Query:       strings.TrimSpace(c.Query("query")),
		Tags:        c.QueryArray("tags"),
		ExcludeTags: c.QueryArray("exclude_tags"),
		Providers:   c.QueryArray("providers"),
		Sort:        c.Query("sort"),
	}
	filter.Page, filter.PageSize = parsePagination(c)

	if v, err := strconv.ParseInt(c.Query("actress_id"), 10, 64); err == nil && v > 0 {
		filter.ActressID = &v
	}
	if v, err := strconv.Atoi(c.Query("min_price")); err == nil && v >= 0 {
		filter.MinPrice = &v
	}
	if v, err := strconv.Atoi(c.Query("max_price")); err == nil && v >= 0 {
		filter.MaxPrice = &v
	}
	if v, err := strconv.ParseBool(c.Query("has_video")); err == nil {
		filter.HasVideo = &v
	}
	if v, err := strconv.ParseBool(c.Query("has_image")); err == nil {
		filter.HasImage = &v
	}

	return filter
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func parseIDParam(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func handleProductError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		response.NotFound(c, err.Error())
	default:
		logger.Error("Product operation failed", zap.Error(err))
		response.InternalError(c, "操作失败")
	}
}
