package service

import (
	"errors"
	"testing"
	"time"

	infraRedis "avdb-go/internal/infra/redis"
	"avdb-go/internal/model"
	"avdb-go/internal/repository"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type mockProductStore struct {
	listFunc    func(f *repository.ProductFilter) ([]model.Product, int64, error)
	getByIDFunc func(id int64) (*model.Product, error)
	lastFilter  *repository.ProductFilter
}

func (m *mockProductStore) List(f *repository.ProductFilter) ([]model.Product, int64, error) {
	m.lastFilter = f
	return m.listFunc(f)
}

func (m *mockProductStore) GetByID(id int64) (*model.Product, error) {
	return m.getByIDFunc(id)
}

type mockSaleLookup struct {
	sales []model.ProductSale
	err   error
}

func (m *mockSaleLookup) ListActiveBySourceIDs(sourceIDs []int64) ([]model.ProductSale, error) {
	return m.sales, m.err
}

func intp(v int) *int { return &v }

func TestMatchPrice(t *testing.T) {
	cases := []struct {
		name     string
		price    int
		min, max *int
		want     bool
	}{
		{"双边都未设视为无穷", 9800, nil, nil, true},
		{"区间内", 2000, intp(1000), intp(3000), true},
		{"低于下界", 500, intp(1000), nil, false},
		{"等于下界", 1000, intp(1000), nil, true},
		{"高于上界", 5000, nil, intp(3000), false},
		{"等于上界", 3000, nil, intp(3000), true},
		{"零价无下界", 0, nil, intp(3000), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := matchPrice(tc.price, tc.min, tc.max); got != tc.want {
				t.Errorf("matchPrice(%d) = %v, want %v", tc.price, got, tc.want)
			}
		})
	}
}

func TestPickDisplaySource(t *testing.T) {
	sources := []model.ProductSource{
		{ID: 1, ASPName: "FANZA", Price: 2980},
		{ID: 2, ASPName: "MGS", Price: 1980},
		{ID: 3, ASPName: "DUGA", Price: 3980},
	}

	t.Run("无区间取最便宜", func(t *testing.T) {
		got := pickDisplaySource(sources, nil, nil)
		if got == nil || got.ASPName != "MGS" {
			t.Fatalf("want MGS, got %+v", got)
		}
	})

	t.Run("区间内最便宜", func(t *testing.T) {
		got := pickDisplaySource(sources, intp(2500), intp(5000))
		if got == nil || got.ASPName != "FANZA" {
			t.Fatalf("want FANZA, got %+v", got)
		}
	})

	t.Run("区间无命中退回全局最便宜", func(t *testing.T) {
		got := pickDisplaySource(sources, intp(10000), nil)
		if got == nil || got.ASPName != "MGS" {
			t.Fatalf("want MGS fallback, got %+v", got)
		}
	})

	t.Run("无供货返回 nil", func(t *testing.T) {
		if got := pickDisplaySource(nil, nil, nil); got != nil {
			t.Fatalf("want nil, got %+v", got)
		}
	})
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total    int64
		pageSize int
		want     int64
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{100, 7, 15},
	}
	for _, tc := range cases {
		if got := totalPages(tc.total, tc.pageSize); got != tc.want {
			t.Errorf("totalPages(%d, %d) = %d, want %d", tc.total, tc.pageSize, got, tc.want)
		}
	}
}

func TestProductServiceList(t *testing.T) {
	product := model.Product{
		ID:             7,
		Code:           "ABC-123",
		Title:          "テスト作品",
		ThumbnailURL:   "https://asp.example.com/abc123.jpg",
		MirrorThumbURL: "https://cdn.example.com/products/7.jpg",
		Sources: []model.ProductSource{
			{ID: 11, ProductID: 7, ASPName: "FANZA", Price: 2980},
			{ID: 12, ProductID: 7, ASPName: "MGS", Price: 1980},
		},
	}
	store := &mockProductStore{
		listFunc: func(f *repository.ProductFilter) ([]model.Product, int64, error) {
			return []model.Product{product}, 41, nil
		},
	}
	sales := &mockSaleLookup{sales: []model.ProductSale{
		{ID: 1, SourceID: 12, RegularPrice: 1980, SalePrice: 980, DiscountPercent: 50},
	}}

	svc := NewProductService(store, sales, nil, nil)

	data, err := svc.List(&repository.ProductFilter{Page: -1, PageSize: 999})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	// 非法分页已被钳制
	if store.lastFilter.Page != 1 || store.lastFilter.PageSize != 20 {
		t.Errorf("filter not normalized: page=%d size=%d", store.lastFilter.Page, store.lastFilter.PageSize)
	}
	if data.Total != 41 || data.TotalPages != 3 {
		t.Errorf("got total=%d totalPages=%d, want 41/3", data.Total, data.TotalPages)
	}
	if len(data.Products) != 1 {
		t.Fatalf("want 1 product, got %d", len(data.Products))
	}

	info := data.Products[0]
	if info.ThumbnailURL != product.MirrorThumbURL {
		t.Errorf("mirror thumbnail should win, got %q", info.ThumbnailURL)
	}
	if info.DisplayPrice != 1980 || info.DisplayASP != "MGS" {
		t.Errorf("got displayPrice=%d asp=%q, want 1980/MGS", info.DisplayPrice, info.DisplayASP)
	}

	var onSale int
	for _, src := range info.Sources {
		if src.OnSale {
			onSale++
			if src.SalePrice != 980 || src.DiscountPercent != 50 {
				t.Errorf("sale fields wrong: %+v", src)
			}
		}
	}
	if onSale != 1 {
		t.Errorf("want exactly one source on sale, got %d", onSale)
	}
}

// newServiceTestCache 基于内存 Redis 的缓存实例
func newServiceTestCache(t *testing.T) *infraRedis.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return infraRedis.NewCache(client, time.Minute)
}

// 同一组筛选条件在 TTL 内只查一次库，条件不同时各查各的
func TestProductServiceListMemoized(t *testing.T) {
	listCalls := 0
	store := &mockProductStore{
		listFunc: func(f *repository.ProductFilter) ([]model.Product, int64, error) {
			listCalls++
			return []model.Product{{ID: 1, Code: "ABC-001", Title: "テスト"}}, 1, nil
		},
	}
	svc := NewProductService(store, &mockSaleLookup{}, nil, newServiceTestCache(t))

	for i := 0; i < 3; i++ {
		data, err := svc.List(&repository.ProductFilter{Page: 1, PageSize: 20})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(data.Products) != 1 || data.Products[0].Code != "ABC-001" {
			t.Fatalf("round %d: unexpected data %+v", i, data.Products)
		}
	}
	if listCalls != 1 {
		t.Errorf("store queried %d times, want 1", listCalls)
	}

	if _, err := svc.List(&repository.ProductFilter{Page: 2, PageSize: 20}); err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if listCalls != 2 {
		t.Errorf("different filter should miss the cache, store queried %d times", listCalls)
	}
}

func TestProductServiceGetByIDNotFound(t *testing.T) {
	store := &mockProductStore{
		getByIDFunc: func(id int64) (*model.Product, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := NewProductService(store, &mockSaleLookup{}, nil, nil)

	_, err := svc.GetByID(404)
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("want ErrProductNotFound, got %v", err)
	}
}
