package model

import (
	"time"

	"gorm.io/datatypes"
)

// 原始数据处理状态
const (
	RawStatusPending   = "pending"
	RawStatusProcessed = "processed"
	RawStatusFailed    = "failed"
)

// RawProduct 摄取暂存行：worker 抓取的伙伴侧原始载荷
// 由 process-raw-data 定时任务按批归一化为正式商品数据
type RawProduct struct {
	ID          int64          `gorm:"primaryKey;autoIncrement;comment:暂存行标识" json:"id"`
	ASPName     string         `gorm:"size:50;not null;uniqueIndex:uq_raw_asp_original;comment:ASP名称" json:"asp_name"`
	OriginalID  string         `gorm:"size:200;not null;uniqueIndex:uq_raw_asp_original;comment:伙伴侧原始ID" json:"original_id"`
	Payload     datatypes.JSON `gorm:"not null;comment:原始载荷" json:"payload"`
	Status      string         `gorm:"size:20;default:'pending';index:idx_raw_status;comment:处理状态" json:"status"`
	Error       string         `gorm:"type:text;comment:最近一次失败原因" json:"error"`
	ProcessedAt *time.Time     `gorm:"comment:处理时间" json:"processed_at"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;index:idx_raw_created_at;comment:入库时间" json:"created_at"`
}

func (RawProduct) TableName() string {
	return "raw_products"
}
