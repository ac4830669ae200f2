package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"avdb-go/internal/model"
	"avdb-go/internal/repository"
	"avdb-go/internal/service"
	"avdb-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.InitDiscard()
	os.Exit(m.Run())
}

type stubProductStore struct {
	products   []model.Product
	total      int64
	lastFilter *repository.ProductFilter
}

func (s *stubProductStore) List(f *repository.ProductFilter) ([]model.Product, int64, error) {
	s.lastFilter = f
	return s.products, s.total, nil
}

func (s *stubProductStore) GetByID(id int64) (*model.Product, error) {
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type stubSaleLookup struct{}

func (s *stubSaleLookup) ListActiveBySourceIDs(sourceIDs []int64) ([]model.ProductSale, error) {
	return nil, nil
}

type stubTagLister struct{}

func (s *stubTagLister) ListWithCounts(category string) ([]repository.TagWithCount, error) {
	return nil, nil
}

func productTestRouter(store *stubProductStore) *gin.Engine {
	svc := service.NewProductService(store, &stubSaleLookup{}, &stubTagLister{}, nil)
	h := NewProductHandler(svc)
	r := gin.New()
	r.GET("/products", h.List)
	r.GET("/products/:id", h.Get)
	return r
}

func TestProductListReturnsEnvelope(t *testing.T) {
	store := &stubProductStore{
		products: []model.Product{{
			ID:    1,
			Code:  "ABC-001",
			Title: "テスト作品",
			Sources: []model.ProductSource{
				{ID: 11, ProductID: 1, ASPName: "FANZA", Price: 1980},
			},
		}},
		total: 1,
	}
	r := productTestRouter(store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    struct {
			Products []struct {
				ID           int64  `json:"id"`
				Code         string `json:"code"`
				DisplayPrice int    `json:"display_price"`
			} `json:"products"`
			Total      int64 `json:"total"`
			Page       int   `json:"page"`
			PageSize   int   `json:"page_size"`
			TotalPages int64 `json:"total_pages"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !body.Success {
		t.Error("success should be true")
	}
	if len(body.Data.Products) != 1 || body.Data.Products[0].Code != "ABC-001" {
		t.Fatalf("unexpected products: %+v", body.Data.Products)
	}
	if body.Data.Products[0].DisplayPrice != 1980 {
		t.Errorf("display_price = %d, want 1980", body.Data.Products[0].DisplayPrice)
	}
	if body.Data.Page != 1 || body.Data.PageSize != 20 || body.Data.TotalPages != 1 {
		t.Errorf("pagination = %+v", body.Data)
	}
}

// 非法数值参数按未提供处理，不报 400
func TestProductListLenientQueryParams(t *testing.T) {
	store := &stubProductStore{}
	r := productTestRouter(store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/products?page=abc&page_size=-3&min_price=xx&actress_id=0&sort=priceAsc%3Bdrop", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", w.Code, w.Body.String())
	}
	f := store.lastFilter
	if f == nil {
		t.Fatal("store not called")
	}
	if f.Page != 1 || f.PageSize != 20 {
		t.Errorf("page/pageSize = %d/%d, want 1/20", f.Page, f.PageSize)
	}
	if f.MinPrice != nil || f.ActressID != nil {
		t.Errorf("bad numerics should be dropped: %+v", f)
	}
	if f.Sort != repository.DefaultProductSort {
		t.Errorf("sort = %q, want default", f.Sort)
	}
}

func TestProductGetNotFound(t *testing.T) {
	r := productTestRouter(&stubProductStore{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/999", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", w.Code)
	}
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code int    `json:"code"`
			Type string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Success {
		t.Error("success should be false")
	}
	if body.Error.Code != http.StatusNotFound {
		t.Errorf("error.code = %d", body.Error.Code)
	}
}

func TestProductGetBadID(t *testing.T) {
	r := productTestRouter(&stubProductStore{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/not-a-number", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", w.Code)
	}
}
