package service

import (
	"errors"
	"testing"

	"avdb-go/internal/api/dto"
	"avdb-go/internal/model"

	"gorm.io/gorm"
)

type mockFavoriteListStore struct {
	lists       map[int64]*model.FavoriteList
	deleteCalls []int64
	addedItems  []*model.FavoriteListItem
	hasItem     bool
}

func (m *mockFavoriteListStore) Create(list *model.FavoriteList) error {
	list.ID = int64(len(m.lists) + 1)
	m.lists[list.ID] = list
	return nil
}

func (m *mockFavoriteListStore) GetByID(id int64) (*model.FavoriteList, error) {
	list, ok := m.lists[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return list, nil
}

func (m *mockFavoriteListStore) ListByUser(userID int64, skip, limit int) ([]model.FavoriteList, int64, error) {
	return nil, 0, nil
}

func (m *mockFavoriteListStore) ListPublic(skip, limit int) ([]model.FavoriteList, int64, error) {
	return nil, 0, nil
}

func (m *mockFavoriteListStore) Update(id int64, updates map[string]interface{}) error {
	return nil
}

func (m *mockFavoriteListStore) Delete(id int64) error {
	m.deleteCalls = append(m.deleteCalls, id)
	delete(m.lists, id)
	return nil
}

func (m *mockFavoriteListStore) AddItem(item *model.FavoriteListItem) error {
	m.addedItems = append(m.addedItems, item)
	return nil
}

func (m *mockFavoriteListStore) RemoveItem(listID, productID int64) (bool, error) {
	return true, nil
}

func (m *mockFavoriteListStore) HasItem(listID, productID int64) (bool, error) {
	return m.hasItem, nil
}

func (m *mockFavoriteListStore) IncrementLikeCount(id int64) error {
	if list, ok := m.lists[id]; ok {
		list.LikeCount++
	}
	return nil
}

func newListStore() *mockFavoriteListStore {
	return &mockFavoriteListStore{lists: map[int64]*model.FavoriteList{
		1: {ID: 1, UserID: 100, Slug: "slug-1", Title: "私有清单", IsPublic: false},
		2: {ID: 2, UserID: 100, Slug: "slug-2", Title: "公开清单", IsPublic: true},
	}}
}

func TestFavoriteListGetAccess(t *testing.T) {
	svc := NewFavoriteListService(newListStore())

	t.Run("所有者可见私有列表", func(t *testing.T) {
		if _, err := svc.Get(1, 100); err != nil {
			t.Errorf("owner access failed: %v", err)
		}
	})

	t.Run("他人不可见私有列表", func(t *testing.T) {
		if _, err := svc.Get(1, 200); !errors.Is(err, ErrListPrivate) {
			t.Errorf("want ErrListPrivate, got %v", err)
		}
	})

	t.Run("匿名不可见私有列表", func(t *testing.T) {
		if _, err := svc.Get(1, 0); !errors.Is(err, ErrListPrivate) {
			t.Errorf("want ErrListPrivate, got %v", err)
		}
	})

	t.Run("公开列表人人可见", func(t *testing.T) {
		if _, err := svc.Get(2, 0); err != nil {
			t.Errorf("public list access failed: %v", err)
		}
	})

	t.Run("不存在的列表", func(t *testing.T) {
		if _, err := svc.Get(404, 100); !errors.Is(err, ErrListNotFound) {
			t.Errorf("want ErrListNotFound, got %v", err)
		}
	})
}

func TestFavoriteListDeleteOwnership(t *testing.T) {
	store := newListStore()
	svc := NewFavoriteListService(store)

	// 非所有者删除被拒
	if err := svc.Delete(1, 200); !errors.Is(err, ErrNotListOwner) {
		t.Fatalf("want ErrNotListOwner, got %v", err)
	}
	if len(store.deleteCalls) != 0 {
		t.Fatal("store.Delete should not have been called")
	}

	// 所有者删除只波及该列表
	if err := svc.Delete(1, 100); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if len(store.deleteCalls) != 1 || store.deleteCalls[0] != 1 {
		t.Fatalf("want exactly one delete of list 1, got %v", store.deleteCalls)
	}
	if _, ok := store.lists[2]; !ok {
		t.Fatal("unrelated list must survive the delete")
	}
}

func TestFavoriteListAddItem(t *testing.T) {
	store := newListStore()
	svc := NewFavoriteListService(store)

	req := &dto.AddItemRequest{ProductID: 55}

	if err := svc.AddItem(1, 200, req); !errors.Is(err, ErrNotListOwner) {
		t.Fatalf("want ErrNotListOwner, got %v", err)
	}

	if err := svc.AddItem(1, 100, req); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if len(store.addedItems) != 1 || store.addedItems[0].ProductID != 55 {
		t.Fatalf("item not stored: %+v", store.addedItems)
	}

	// 重复添加
	store.hasItem = true
	if err := svc.AddItem(1, 100, req); !errors.Is(err, ErrDuplicateItem) {
		t.Fatalf("want ErrDuplicateItem, got %v", err)
	}
}

func TestFavoriteListLike(t *testing.T) {
	store := newListStore()
	svc := NewFavoriteListService(store)

	if err := svc.Like(1); !errors.Is(err, ErrListPrivate) {
		t.Fatalf("private list must not be likeable, got %v", err)
	}

	if err := svc.Like(2); err != nil {
		t.Fatalf("like failed: %v", err)
	}
	if store.lists[2].LikeCount != 1 {
		t.Fatalf("like count not incremented: %d", store.lists[2].LikeCount)
	}
}

func TestFavoriteListCreateGeneratesSlug(t *testing.T) {
	store := newListStore()
	svc := NewFavoriteListService(store)

	info, err := svc.Create(100, &dto.CreateListRequest{Title: "新清单"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if info.Slug == "" {
		t.Fatal("slug must be generated")
	}
}
