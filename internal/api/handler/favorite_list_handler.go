package handler

import (
	"errors"
	"strconv"

	"avdb-go/internal/api/dto"
	"avdb-go/internal/api/middleware"
	"avdb-go/internal/api/response"
	"avdb-go/internal/service"
	"avdb-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FavoriteListHandler struct {
	listService *service.FavoriteListService
}

func NewFavoriteListHandler(listService *service.FavoriteListService) *FavoriteListHandler {
	return &FavoriteListHandler{listService: listService}
}

// Create 创建收藏列表
// @Summary 创建收藏列表
// @Tags 收藏
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateListRequest true "列表信息"
// @Success 201 {object} response.Response{data=dto.ListInfo} "创建成功"
// @Failure 400 {object} response.ErrorResponse "参数无效"
// @Router /lists [post]
func (h *FavoriteListHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "无法获取用户信息")
		return
	}

	var req dto.CreateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	info, err := h.listService.Create(userID, &req)
	if err != nil {
		handleListError(c, err)
		return
	}

	response.Created(c, "创建成功", info)
}

// ListMine 我的收藏列表
func (h *FavoriteListHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "无法获取用户信息")
		return
	}

	page, pageSize := parsePagination(c)
	data, err := h.listService.ListMine(userID, page, pageSize)
	if err != nil {
		handleListError(c, err)
		return
	}

	response.OK(c, "获取成功", data)
}

// Get 收藏列表详情
// 私有列表仅所有者可见，匿名访问公开列表也走本接口
func (h *FavoriteListHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的列表 ID")
		return
	}

	// 未登录时 viewerID 为 0，只能看到公开列表
	viewerID, _ := middleware.GetCurrentUserID(c)

	detail, err := h.listService.Get(id, viewerID)
	if err != nil {
		handleListError(c, err)
		return
	}

	response.OK(c, "获取成功", detail)
}

// Update 更新收藏列表
func (h *FavoriteListHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "无法获取用户信息")
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的列表 ID")
		return
	}

	var req dto.UpdateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	info, err := h.listService.Update(id, userID, &req)
	if err != nil {
		handleListError(c, err)
		return
	}

	response.OK(c, "更新成功", info)
}

// Delete 删除收藏列表
// @Summary 删除收藏列表
// @Description 删除列表及其全部条目，仅所有者可操作
// @Tags 收藏
// @Produce json
// @Security BearerAuth
// @Param id path int true "列表 ID"
// @Success 200 {object} response.Response "删除成功"
// @Failure 403 {object} response.ErrorResponse "没有权限"
// @Failure 404 {object} response.ErrorResponse "列表不存在"
// @Router /lists/{id} [delete]
func (h *FavoriteListHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "无法获取用户信息")
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的列表 ID")
		return
	}

	if err := h.listService.Delete(id, userID); err != nil {
		handleListError(c, err)
		return
	}

	response.OK(c, "删除成功", nil)
}

// AddItem 向列表添加商品
func (h *FavoriteListHandler) AddItem(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "无法获取用户信息")
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的列表 ID")
		return
	}

	var req dto.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	if err := h.listService.AddItem(id, userID, &req); err != nil {
		handleListError(c, err)
		return
	}

	response.Created(c, "添加成功", nil)
}

// RemoveItem 从列表移除商品
func (h *FavoriteListHandler) RemoveItem(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "无法获取用户信息")
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的列表 ID")
		return
	}

	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的商品 ID")
		return
	}

	if err := h.listService.RemoveItem(id, userID, productID); err != nil {
		handleListError(c, err)
		return
	}

	response.OK(c, "移除成功", nil)
}

// ListPublic 公开收藏列表广场
// @Summary 公开收藏列表
// @Description 全站公开列表，按点赞数降序
// @Tags 收藏
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页条数"
// @Success 200 {object} response.Response{data=dto.FavoriteListData} "获取成功"
// @Router /public-lists [get]
func (h *FavoriteListHandler) ListPublic(c *gin.Context) {
	page, pageSize := parsePagination(c)

	data, err := h.listService.ListPublic(page, pageSize)
	if err != nil {
		handleListError(c, err)
		return
	}

	response.OK(c, "获取成功", data)
}

// Like 给公开列表点赞
func (h *FavoriteListHandler) Like(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的列表 ID")
		return
	}

	if err := h.listService.Like(id); err != nil {
		handleListError(c, err)
		return
	}

	response.OK(c, "点赞成功", nil)
}

func handleListError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrListNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrNotListOwner):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrListPrivate):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrDuplicateItem):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrItemNotFound):
		response.NotFound(c, err.Error())
	default:
		logger.Error("Favorite list operation failed", zap.Error(err))
		response.InternalError(c, "操作失败")
	}
}
