package handler

import (
	"errors"
	"strconv"

	"avdb-go/internal/api/response"
	"avdb-go/internal/service"
	"avdb-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PerformerHandler struct {
	performerService *service.PerformerService
}

func NewPerformerHandler(performerService *service.PerformerService) *PerformerHandler {
	return &PerformerHandler{performerService: performerService}
}

// List 演员列表
// @Summary 演员列表
// @Tags 演员
// @Produce json
// @Param query query string false "名字关键词"
// @Param page query int false "页码"
// @Param page_size query int false "每页条数"
// @Success 200 {object} response.Response{data=dto.PerformerListData} "获取成功"
// @Router /actresses [get]
func (h *PerformerHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)

	data, err := h.performerService.List(c.Query("query"), page, pageSize)
	if err != nil {
		logger.Error("List performers failed", zap.Error(err))
		response.InternalError(c, "获取演员列表失败")
		return
	}

	response.OK(c, "获取成功", data)
}

// Get 演员详情
func (h *PerformerHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的演员 ID")
		return
	}

	info, err := h.performerService.GetByID(id)
	if err != nil {
		handlePerformerError(c, err)
		return
	}

	response.OK(c, "获取成功", info)
}

// Relations 共演网络
// @Summary 演员共演网络
// @Description 从该演员出发的共演关系图，hops 最多 2 跳，每跳最多 12 人
// @Tags 演员
// @Produce json
// @Param id path int true "演员 ID"
// @Param hops query int false "跳数（1-2，默认 2）"
// @Param limit query int false "每跳人数上限（1-12，默认 12）"
// @Success 200 {object} response.Response{data=dto.RelationGraphData} "获取成功"
// @Failure 404 {object} response.ErrorResponse "演员不存在"
// @Router /performers/{id}/relations [get]
func (h *PerformerHandler) Relations(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的演员 ID")
		return
	}

	hops, _ := strconv.Atoi(c.DefaultQuery("hops", "2"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))

	graph, err := h.performerService.Relations(id, hops, limit)
	if err != nil {
		handlePerformerError(c, err)
		return
	}

	response.OK(c, "获取成功", graph)
}

func handlePerformerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPerformerNotFound):
		response.NotFound(c, err.Error())
	default:
		logger.Error("Performer operation failed", zap.Error(err))
		response.InternalError(c, "操作失败")
	}
}
