package dto

// PerformerInfo 演员详情
type PerformerInfo struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	ImageURL     *string `json:"image_url,omitempty"`
	DebutYear    *int    `json:"debut_year,omitempty"`
	ProductCount int64   `json:"product_count"`
}

// PerformerListData 演员列表响应数据
type PerformerListData struct {
	Performers []PerformerInfo `json:"performers"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int64           `json:"total_pages"`
}

// RelationNode 共演网络中的一个演员节点
type RelationNode struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Hop         int    `json:"hop"`
	SharedCount int    `json:"shared_count"`
}

// RelationEdge 共演关系边，Weight 为共演作品数
type RelationEdge struct {
	Source int64 `json:"source"`
	Target int64 `json:"target"`
	Weight int   `json:"weight"`
}

// RelationGraphData 演员共演网络响应数据
type RelationGraphData struct {
	Center RelationNode   `json:"center"`
	Nodes  []RelationNode `json:"nodes"`
	Edges  []RelationEdge `json:"edges"`
}
