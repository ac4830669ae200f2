package dto

// CronSummary 定时任务执行摘要
// 单条数据失败时跳过并继续，Failed 只计数不中断
type CronSummary struct {
	Processed  int    `json:"processed"`
	Failed     int    `json:"failed"`
	Skipped    int    `json:"skipped"`
	DurationMS int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}
