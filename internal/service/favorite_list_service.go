package service

import (
	"errors"

	"avdb-go/internal/api/dto"
	"avdb-go/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrListNotFound  = errors.New("收藏列表不存在")
	ErrNotListOwner  = errors.New("没有权限操作该收藏列表")
	ErrListPrivate   = errors.New("该收藏列表未公开")
	ErrDuplicateItem = errors.New("商品已在列表中")
	ErrItemNotFound  = errors.New("列表中不存在该商品")
)

// FavoriteListStore 收藏列表服务依赖的存储接口
type FavoriteListStore interface {
	Create(list *model.FavoriteList) error
	GetByID(id int64) (*model.FavoriteList, error)
	ListByUser(userID int64, skip, limit int) ([]model.FavoriteList, int64, error)
	ListPublic(skip, limit int) ([]model.FavoriteList, int64, error)
	Update(id int64, updates map[string]interface{}) error
	Delete(id int64) error
	AddItem(item *model.FavoriteListItem) error
	RemoveItem(listID, productID int64) (bool, error)
	HasItem(listID, productID int64) (bool, error)
	IncrementLikeCount(id int64) error
}

type FavoriteListService struct {
	listStore FavoriteListStore
}

func NewFavoriteListService(listStore FavoriteListStore) *FavoriteListService {
	return &FavoriteListService{listStore: listStore}
}

// Create 创建收藏列表
func (s *FavoriteListService) Create(userID int64, req *dto.CreateListRequest) (*dto.ListInfo, error) {
	list := &model.FavoriteList{
		UserID:      userID,
		Slug:        uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	}
	if err := s.listStore.Create(list); err != nil {
		return nil, err
	}
	info := toListInfo(list)
	return &info, nil
}

// Get 查询收藏列表详情
// 私有列表仅所有者可见，viewerID 为 0 表示匿名访问
func (s *FavoriteListService) Get(id, viewerID int64) (*dto.ListDetail, error) {
	list, err := s.loadList(id)
	if err != nil {
		return nil, err
	}
	if !list.IsPublic && list.UserID != viewerID {
		return nil, ErrListPrivate
	}

	detail := &dto.ListDetail{
		ListInfo: toListInfo(list),
		Items:    make([]dto.ListItemInfo, 0, len(list.Items)),
	}
	for i := range list.Items {
		item := &list.Items[i]
		itemInfo := dto.ListItemInfo{
			ProductID: item.ProductID,
			Position:  item.Position,
			Note:      item.Note,
		}
		if item.Product.ID != 0 {
			product := toProductInfo(&item.Product, nil, nil, nil)
			itemInfo.Product = &product
		}
		detail.Items = append(detail.Items, itemInfo)
	}
	return detail, nil
}

// ListMine 查询当前用户的收藏列表
func (s *FavoriteListService) ListMine(userID int64, page, pageSize int) (*dto.FavoriteListData, error) {
	page, pageSize = normalizePage(page, pageSize)

	lists, total, err := s.listStore.ListByUser(userID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	return toFavoriteListData(lists, total, page, pageSize), nil
}

// ListPublic 查询公开收藏列表，按点赞数排序
func (s *FavoriteListService) ListPublic(page, pageSize int) (*dto.FavoriteListData, error) {
	page, pageSize = normalizePage(page, pageSize)

	lists, total, err := s.listStore.ListPublic((page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	return toFavoriteListData(lists, total, page, pageSize), nil
}

// Update 更新收藏列表，仅所有者可操作，nil 字段不修改
func (s *FavoriteListService) Update(id, userID int64, req *dto.UpdateListRequest) (*dto.ListInfo, error) {
	list, err := s.requireOwner(id, userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}
	if len(updates) > 0 {
		if err := s.listStore.Update(id, updates); err != nil {
			return nil, err
		}
		if list, err = s.loadList(id); err != nil {
			return nil, err
		}
	}

	info := toListInfo(list)
	return &info, nil
}

// Delete 删除收藏列表及其全部条目，仅所有者可操作
// 级联删除只波及本列表的条目，其他列表引用同一商品不受影响
func (s *FavoriteListService) Delete(id, userID int64) error {
	if _, err := s.requireOwner(id, userID); err != nil {
		return err
	}
	return s.listStore.Delete(id)
}

// AddItem 向列表追加商品，重复添加报错
func (s *FavoriteListService) AddItem(listID, userID int64, req *dto.AddItemRequest) error {
	if _, err := s.requireOwner(listID, userID); err != nil {
		return err
	}

	exists, err := s.listStore.HasItem(listID, req.ProductID)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateItem
	}

	return s.listStore.AddItem(&model.FavoriteListItem{
		ListID:    listID,
		ProductID: req.ProductID,
		Note:      req.Note,
	})
}

// RemoveItem 从列表移除商品
func (s *FavoriteListService) RemoveItem(listID, userID, productID int64) error {
	if _, err := s.requireOwner(listID, userID); err != nil {
		return err
	}

	removed, err := s.listStore.RemoveItem(listID, productID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrItemNotFound
	}
	return nil
}

// Like 给公开列表点赞，私有列表不可点赞
func (s *FavoriteListService) Like(id int64) error {
	list, err := s.loadList(id)
	if err != nil {
		return err
	}
	if !list.IsPublic {
		return ErrListPrivate
	}
	return s.listStore.IncrementLikeCount(id)
}

func (s *FavoriteListService) loadList(id int64) (*model.FavoriteList, error) {
	list, err := s.listStore.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListNotFound
		}
		return nil, err
	}
	return list, nil
}

// requireOwner 读取列表并校验所有权
func (s *FavoriteListService) requireOwner(id, userID int64) (*model.FavoriteList, error) {
	list, err := s.loadList(id)
	if err != nil {
		return nil, err
	}
	if list.UserID != userID {
		return nil, ErrNotListOwner
	}
	return list, nil
}

func toListInfo(list *model.FavoriteList) dto.ListInfo {
	return dto.ListInfo{
		ID:          list.ID,
		Slug:        list.Slug,
		Title:       list.Title,
		Description: list.Description,
		IsPublic:    list.IsPublic,
		LikeCount:   list.LikeCount,
		ItemCount:   len(list.Items),
		CreatedAt:   list.CreatedAt,
		UpdatedAt:   list.UpdatedAt,
	}
}

func toFavoriteListData(lists []model.FavoriteList, total int64, page, pageSize int) *dto.FavoriteListData {
	infos := make([]dto.ListInfo, 0, len(lists))
	for i := range lists {
		infos = append(infos, toListInfo(&lists[i]))
	}
	return &dto.FavoriteListData{
		Lists:      infos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}
}
