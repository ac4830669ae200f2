package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"avdb-go/internal/api/middleware"
	"avdb-go/internal/model"
	"avdb-go/internal/service"

	"github.com/gin-gonic/gin"
)

type stubSaleStore struct {
	byPerformers []model.ProductSale

	lastPerformerIDs []int64
	lastRecentIDs    []int64
}

func (s *stubSaleStore) ListActive(skip, limit int) ([]model.ProductSale, int64, error) {
	return nil, 0, nil
}

func (s *stubSaleStore) ListActiveByPerformers(performerIDs []int64, limit int) ([]model.ProductSale, error) {
	s.lastPerformerIDs = performerIDs
	return s.byPerformers, nil
}

func (s *stubSaleStore) ListActiveByRelatedTags(recentProductIDs []int64, limit int) ([]model.ProductSale, error) {
	s.lastRecentIDs = recentProductIDs
	return nil, nil
}

func (s *stubSaleStore) ListTopDiscount(limit int) ([]model.ProductSale, error) {
	return nil, nil
}

type stubSignals struct {
	queried bool
}

func (s *stubSignals) ProductIDsByUser(userID int64, limit int) ([]int64, error) {
	s.queried = true
	return nil, nil
}

func (s *stubSignals) PerformerIDsByUser(userID int64, limit int) ([]int64, error) {
	s.queried = true
	return nil, nil
}

// 推荐信号走查询参数，匿名即可调用，非法 ID 片段跳过
func TestForYouAcceptsSignalQueryParams(t *testing.T) {
	store := &stubSaleStore{
		byPerformers: []model.ProductSale{{
			ID: 1,
			Source: model.ProductSource{
				ID:        10,
				ProductID: 20,
				ASPName:   "FANZA",
				Product:   model.Product{ID: 20, Code: "ABC-001", Title: "テスト"},
			},
		}},
	}
	signals := &stubSignals{}
	h := NewSaleHandler(service.NewSaleService(store, signals))

	r := gin.New()
	r.GET("/sales/for-you", middleware.OptionalAuth(), h.ForYou)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/sales/for-you?favorite_performer_ids=7,x,8&recent_product_ids=100,-1,101&limit=5", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("want 200 without token, got %d: %s", w.Code, w.Body.String())
	}
	if signals.queried {
		t.Error("favorite lookup must not run when signals are supplied")
	}
	if len(store.lastPerformerIDs) != 2 || store.lastPerformerIDs[1] != 8 {
		t.Errorf("performer ids = %v, want [7 8]", store.lastPerformerIDs)
	}

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Sales []struct {
				ProductID int64  `json:"product_id"`
				Reason    string `json:"reason"`
			} `json:"sales"`
			Limit int `json:"limit"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !body.Success || body.Data.Limit != 5 {
		t.Errorf("unexpected envelope: %s", w.Body.String())
	}
	if len(body.Data.Sales) != 1 || body.Data.Sales[0].Reason != "favorite_performer" {
		t.Errorf("unexpected sales: %+v", body.Data.Sales)
	}
}

func TestParseIDList(t *testing.T) {
	cases := []struct {
		raw  string
		want []int64
	}{
		{"", nil},
		{"1,2,3", []int64{1, 2, 3}},
		{" 1 , 2 ", []int64{1, 2}},
		{"1,abc,-5,0,2", []int64{1, 2}},
	}
	for _, tc := range cases {
		got := parseIDList(tc.raw)
		if len(got) != len(tc.want) {
			t.Errorf("parseIDList(%q) = %v, want %v", tc.raw, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("parseIDList(%q) = %v, want %v", tc.raw, got, tc.want)
				break
			}
		}
	}
}
