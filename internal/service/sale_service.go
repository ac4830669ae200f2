package service

import (
	"avdb-go/internal/api/dto"
	"avdb-go/internal/model"
	"avdb-go/pkg/logger"

	"go.uber.org/zap"
)

// 个性化推荐取样上限
const (
	forYouMaxLimit          = 50
	forYouDefaultLimit      = 20
	forYouFavoriteProducts  = 50
	forYouFavoritePerformer = 10
)

// SaleStore 特卖服务依赖的存储接口
type SaleStore interface {
	ListActive(skip, limit int) ([]model.ProductSale, int64, error)
	ListActiveByPerformers(performerIDs []int64, limit int) ([]model.ProductSale, error)
	ListActiveByRelatedTags(recentProductIDs []int64, limit int) ([]model.ProductSale, error)
	ListTopDiscount(limit int) ([]model.ProductSale, error)
}

// FavoriteSignals 从收藏数据提取推荐信号
type FavoriteSignals interface {
	ProductIDsByUser(userID int64, limit int) ([]int64, error)
	PerformerIDsByUser(userID int64, limit int) ([]int64, error)
}

type SaleService struct {
	saleStore SaleStore
	signals   FavoriteSignals
}

func NewSaleService(saleStore SaleStore, signals FavoriteSignals) *SaleService {
	return &SaleService{saleStore: saleStore, signals: signals}
}

// List 分页查询生效中的特卖，按折扣降序
func (s *SaleService) List(page, pageSize int) (*dto.SaleListData, error) {
	page, pageSize = normalizePage(page, pageSize)

	sales, total, err := s.saleStore.ListActive((page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}

	infos := make([]dto.SaleInfo, 0, len(sales))
	for i := range sales {
		infos = append(infos, toSaleInfo(&sales[i], ""))
	}

	return &dto.SaleListData{
		Sales:      infos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

// ForYou 个性化特卖推荐
// 推荐信号（关注的演员、最近看过的商品）由调用方通过参数提供；
// 参数缺省且已登录时退回到用户收藏推导。
// 按优先级依次取三路候选：收藏演员的新特卖、与信号商品同标签的相似特卖、
// 全站高折扣兜底。同一商品只出现一次，作为信号的商品不再推荐。
// 某一路查询失败时记日志并继续，推荐结果宁缺毋断。
func (s *SaleService) ForYou(userID int64, performerIDs, recentProductIDs []int64, limit int) (*dto.ForYouData, error) {
	if limit < 1 || limit > forYouMaxLimit {
		limit = forYouDefaultLimit
	}

	if len(recentProductIDs) == 0 && userID > 0 {
		ids, err := s.signals.ProductIDsByUser(userID, forYouFavoriteProducts)
		if err != nil {
			return nil, err
		}
		recentProductIDs = ids
	}
	if len(performerIDs) == 0 && userID > 0 {
		ids, err := s.signals.PerformerIDsByUser(userID, forYouFavoritePerformer)
		if err != nil {
			return nil, err
		}
		performerIDs = ids
	}

	// 信号商品本身不进推荐
	seen := make(map[int64]struct{}, len(recentProductIDs))
	for _, id := range recentProductIDs {
		seen[id] = struct{}{}
	}

	result := make([]dto.SaleInfo, 0, limit)
	appendBucket := func(sales []model.ProductSale, reason string) {
		for i := range sales {
			if len(result) >= limit {
				return
			}
			productID := sales[i].Source.ProductID
			if _, dup := seen[productID]; dup {
				continue
			}
			seen[productID] = struct{}{}
			result = append(result, toSaleInfo(&sales[i], reason))
		}
	}

	if len(performerIDs) > 0 {
		sales, err := s.saleStore.ListActiveByPerformers(performerIDs, limit)
		if err != nil {
			logger.Warn("ForYou favorite performer bucket failed", zap.Error(err))
		} else {
			appendBucket(sales, dto.SaleReasonFavoritePerformer)
		}
	}

	if len(result) < limit && len(recentProductIDs) > 0 {
		sales, err := s.saleStore.ListActiveByRelatedTags(recentProductIDs, limit)
		if err != nil {
			logger.Warn("ForYou similar bucket failed", zap.Error(err))
		} else {
			appendBucket(sales, dto.SaleReasonSimilar)
		}
	}

	if len(result) < limit {
		sales, err := s.saleStore.ListTopDiscount(limit)
		if err != nil {
			logger.Warn("ForYou top discount bucket failed", zap.Error(err))
		} else {
			appendBucket(sales, dto.SaleReasonTopDiscount)
		}
	}

	return &dto.ForYouData{Sales: result, Limit: limit}, nil
}

// toSaleInfo 将特价记录折叠为响应结构，商品信息来自预加载的供货关联
func toSaleInfo(sale *model.ProductSale, reason string) dto.SaleInfo {
	info := dto.SaleInfo{
		ID:              sale.ID,
		ProductID:       sale.Source.ProductID,
		ASPName:         sale.Source.ASPName,
		RegularPrice:    sale.RegularPrice,
		SalePrice:       sale.SalePrice,
		DiscountPercent: sale.DiscountPercent,
		AffiliateURL:    sale.Source.AffiliateURL,
		Reason:          reason,
	}
	if !sale.EndAt.IsZero() {
		endAt := sale.EndAt
		info.EndAt = &endAt
	}
	if product := &sale.Source.Product; product.ID != 0 {
		info.Code = product.Code
		info.Title = product.Title
		info.ThumbnailURL = pickThumbnail(product)
	}
	return info
}
