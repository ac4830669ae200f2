package dto

import "time"

// PerformerBrief 商品中嵌套的演员简要信息
type PerformerBrief struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	ImageURL *string `json:"image_url,omitempty"`
}

// TagBrief 商品中嵌套的标签简要信息
type TagBrief struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// SourceInfo 商品的单个 ASP 供货信息
type SourceInfo struct {
	ID              int64  `json:"id"`
	ASPName         string `json:"asp_name"`
	Price           int    `json:"price"`
	AffiliateURL    string `json:"affiliate_url,omitempty"`
	OnSale          bool   `json:"on_sale"`
	SalePrice       int    `json:"sale_price,omitempty"`
	DiscountPercent int    `json:"discount_percent,omitempty"`
}

// ProductInfo 商品详情
// 同一商品的多个供货已折叠为数组，display_price 为价格区间内最便宜的供货价
type ProductInfo struct {
	ID             int64            `json:"id"`
	Code           string           `json:"code"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	ReleaseDate    *time.Time       `json:"release_date"`
	Duration       int              `json:"duration"`
	ThumbnailURL   string           `json:"thumbnail_url"`
	SampleVideoURL string           `json:"sample_video_url,omitempty"`
	Rating         float64          `json:"rating"`
	RatingCount    int64            `json:"rating_count"`
	DisplayPrice   int              `json:"display_price"`
	DisplayASP     string           `json:"display_asp,omitempty"`
	Performers     []PerformerBrief `json:"performers"`
	Tags           []TagBrief       `json:"tags"`
	Sources        []SourceInfo     `json:"sources"`
	CreatedAt      time.Time        `json:"created_at"`
}

// TagWithCountInfo 标签及商品计数
type TagWithCountInfo struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	NameJA       string `json:"name_ja,omitempty"`
	Category     string `json:"category"`
	ProductCount int64  `json:"product_count"`
}

// ProductListData 商品列表响应数据
type ProductListData struct {
	Products   []ProductInfo `json:"products"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int64         `json:"total_pages"`
}
