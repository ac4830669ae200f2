package model

import "time"

// ProductSource 商品在某个联盟伙伴（ASP）侧的供货信息
// 同一商品同一 ASP 至多一行，由唯一索引保证，摄取时走 Upsert
type ProductSource struct {
	ID           int64     `gorm:"primaryKey;autoIncrement;comment:供货标识" json:"id"`
	ProductID    int64     `gorm:"not null;uniqueIndex:uq_product_asp;index:idx_sources_product_id;comment:商品ID" json:"product_id"`
	ASPName      string    `gorm:"size:50;not null;uniqueIndex:uq_product_asp;index:idx_sources_asp_name;comment:ASP名称" json:"asp_name"`
	Price        int       `gorm:"default:0;index:idx_sources_price;comment:价格（日元）" json:"price"`
	AffiliateURL string    `gorm:"size:1000;comment:联盟链接" json:"affiliate_url"`
	OriginalID   string    `gorm:"size:200;comment:伙伴侧原始ID" json:"original_id"`
	CreatedAt    time.Time `gorm:"autoCreateTime;comment:创建时间" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime;comment:更新时间" json:"updated_at"`

	// 关联关系
	Product Product       `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Sales   []ProductSale `gorm:"foreignKey:SourceID" json:"sales,omitempty"`
}

func (ProductSource) TableName() string {
	return "product_sources"
}
