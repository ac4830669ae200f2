package dto

import "time"

// CreateListRequest 创建收藏列表请求
type CreateListRequest struct {
	Title       string `json:"title" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
	IsPublic    bool   `json:"is_public"`
}

// UpdateListRequest 更新收藏列表请求，nil 字段不修改
type UpdateListRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	IsPublic    *bool   `json:"is_public"`
}

// AddItemRequest 向列表添加商品请求
type AddItemRequest struct {
	ProductID int64  `json:"product_id" binding:"required"`
	Note      string `json:"note" binding:"max=200"`
}

// ListInfo 收藏列表概要
type ListInfo struct {
	ID          int64     `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsPublic    bool      `json:"is_public"`
	LikeCount   int64     `json:"like_count"`
	ItemCount   int       `json:"item_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListItemInfo 收藏列表中的一个商品条目
type ListItemInfo struct {
	ProductID int64        `json:"product_id"`
	Position  int          `json:"position"`
	Note      string       `json:"note,omitempty"`
	Product   *ProductInfo `json:"product,omitempty"`
}

// ListDetail 收藏列表详情，含全部条目
type ListDetail struct {
	ListInfo
	Items []ListItemInfo `json:"items"`
}

// FavoriteListData 收藏列表分页响应数据
type FavoriteListData struct {
	Lists      []ListInfo `json:"lists"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int64      `json:"total_pages"`
}
