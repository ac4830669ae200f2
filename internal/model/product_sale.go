package model

import "time"

// ProductSale 供货的限时特价记录
// is_active 为真时 end_at 必须在未来；过期行在查询时过滤，不做删除
type ProductSale struct {
	ID              int64     `gorm:"primaryKey;autoIncrement;comment:特价记录ID" json:"id"`
	SourceID        int64     `gorm:"not null;index:idx_sales_source_id;comment:供货ID" json:"source_id"`
	RegularPrice    int       `gorm:"not null;comment:原价（日元）" json:"regular_price"`
	SalePrice       int       `gorm:"not null;comment:特价（日元）" json:"sale_price"`
	DiscountPercent int       `gorm:"default:0;index:idx_sales_discount;comment:折扣百分比" json:"discount_percent"`
	StartAt         time.Time `gorm:"comment:开始时间" json:"start_at"`
	EndAt           time.Time `gorm:"index:idx_sales_end_at;comment:结束时间" json:"end_at"`
	IsActive        bool      `gorm:"default:true;index:idx_sales_is_active;comment:是否生效" json:"is_active"`
	CreatedAt       time.Time `gorm:"autoCreateTime;comment:创建时间" json:"created_at"`

	// 关联关系
	Source ProductSource `gorm:"foreignKey:SourceID" json:"source,omitempty"`
}

func (ProductSale) TableName() string {
	return "product_sales"
}
