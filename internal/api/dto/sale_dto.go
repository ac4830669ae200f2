package dto

import "time"

// 推荐来源标识
const (
	SaleReasonFavoritePerformer = "favorite_performer"
	SaleReasonSimilar           = "similar"
	SaleReasonTopDiscount       = "top_discount"
)

// SaleInfo 特卖条目
type SaleInfo struct {
	ID              int64      `json:"id"`
	ProductID       int64      `json:"product_id"`
	Code            string     `json:"code"`
	Title           string     `json:"title"`
	ThumbnailURL    string     `json:"thumbnail_url"`
	ASPName         string     `json:"asp_name"`
	RegularPrice    int        `json:"regular_price"`
	SalePrice       int        `json:"sale_price"`
	DiscountPercent int        `json:"discount_percent"`
	EndAt           *time.Time `json:"end_at,omitempty"`
	AffiliateURL    string     `json:"affiliate_url,omitempty"`
	Reason          string     `json:"reason,omitempty"`
}

// SaleListData 特卖列表响应数据
type SaleListData struct {
	Sales      []SaleInfo `json:"sales"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int64      `json:"total_pages"`
}

// ForYouData 个性化特卖推荐响应数据
type ForYouData struct {
	Sales []SaleInfo `json:"sales"`
	Limit int        `json:"limit"`
}
