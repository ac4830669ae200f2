package service

import (
	"context"
	"errors"
	"fmt"

	"avdb-go/internal/api/dto"
	infraRedis "avdb-go/internal/infra/redis"
	"avdb-go/internal/model"
	"avdb-go/internal/repository"

	"gorm.io/gorm"
)

var ErrPerformerNotFound = errors.New("演员不存在")

// 共演网络参数上限
const (
	MaxRelationHops        = 2
	MaxRelationPerHopLimit = 12
)

// PerformerStore 演员服务依赖的存储接口
type PerformerStore interface {
	GetByID(id int64) (*model.Performer, error)
	ListWithCounts(query string, skip, limit int) ([]repository.PerformerWithCount, int64, error)
	CountProducts(performerID int64) (int64, error)
	CoStarNetwork(performerID int64, hops, perHopLimit int) ([]repository.CoStarRow, error)
}

type PerformerService struct {
	performerStore PerformerStore
	cache          *infraRedis.Cache
}

func NewPerformerService(performerStore PerformerStore, cache *infraRedis.Cache) *PerformerService {
	return &PerformerService{performerStore: performerStore, cache: cache}
}

// List 分页查询演员列表
func (s *PerformerService) List(query string, page, pageSize int) (*dto.PerformerListData, error) {
	page, pageSize = normalizePage(page, pageSize)

	rows, total, err := s.performerStore.ListWithCounts(query, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}

	infos := make([]dto.PerformerInfo, 0, len(rows))
	for i := range rows {
		infos = append(infos, dto.PerformerInfo{
			ID:           rows[i].ID,
			Name:         rows[i].Name,
			ImageURL:     rows[i].ImageURL,
			DebutYear:    rows[i].DebutYear,
			ProductCount: rows[i].ProductCount,
		})
	}

	return &dto.PerformerListData{
		Performers: infos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

// GetByID 查询演员详情
func (s *PerformerService) GetByID(id int64) (*dto.PerformerInfo, error) {
	performer, err := s.performerStore.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPerformerNotFound
		}
		return nil, err
	}

	count, err := s.performerStore.CountProducts(id)
	if err != nil {
		return nil, err
	}

	return &dto.PerformerInfo{
		ID:           performer.ID,
		Name:         performer.Name,
		ImageURL:     performer.ImageURL,
		DebutYear:    performer.DebutYear,
		ProductCount: count,
	}, nil
}

// Relations 查询演员的共演网络
// hops 超出 [1,2] 与 perHopLimit 超出 [1,12] 时收敛到边界而不是报错
// 图查询是整个接口里最重的递归 SQL，结果按参数组缓存
func (s *PerformerService) Relations(id int64, hops, perHopLimit int) (*dto.RelationGraphData, error) {
	center, err := s.performerStore.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPerformerNotFound
		}
		return nil, err
	}

	if hops < 1 {
		hops = 1
	}
	if hops > MaxRelationHops {
		hops = MaxRelationHops
	}
	if perHopLimit < 1 || perHopLimit > MaxRelationPerHopLimit {
		perHopLimit = MaxRelationPerHopLimit
	}

	ctx := context.Background()
	cacheKey := fmt.Sprintf("performers:relations:%d:%d:%d", id, hops, perHopLimit)
	var cached dto.RelationGraphData
	if err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	rows, err := s.performerStore.CoStarNetwork(id, hops, perHopLimit)
	if err != nil {
		return nil, err
	}

	graph := &dto.RelationGraphData{
		Center: dto.RelationNode{ID: center.ID, Name: center.Name, Hop: 0},
		Nodes:  make([]dto.RelationNode, 0, len(rows)),
		Edges:  make([]dto.RelationEdge, 0, len(rows)),
	}
	for _, row := range rows {
		graph.Nodes = append(graph.Nodes, dto.RelationNode{
			ID:          row.PerformerID,
			Name:        row.Name,
			Hop:         row.Hop,
			SharedCount: int(row.SharedCount),
		})
		graph.Edges = append(graph.Edges, dto.RelationEdge{
			Source: row.ViaID,
			Target: row.PerformerID,
			Weight: int(row.SharedCount),
		})
	}

	s.cache.SetJSON(ctx, cacheKey, graph)
	return graph, nil
}

// normalizePage 页码参数宽松纠正
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
