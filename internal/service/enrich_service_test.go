package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"avdb-go/internal/model"
)

func TestBuildDescription(t *testing.T) {
	p := &model.Product{
		Code:     "ABC-001",
		Title:    "テスト作品",
		Duration: 120,
		Performers: []model.Performer{
			{Name: "白石かんな"},
			{Name: "三上悠亜"},
		},
		Tags: []model.Tag{{Name: "単体作品"}},
	}

	got := buildDescription(p)
	for _, want := range []string{"テスト作品", "ABC-001", "白石かんな、三上悠亜出演", "収録時間120分", "ジャンル：単体作品"} {
		if !strings.Contains(got, want) {
			t.Errorf("description missing %q: %s", want, got)
		}
	}
}

func TestBuildDescriptionEmptyWithoutMetadata(t *testing.T) {
	p := &model.Product{Code: "ABC-002", Title: "メタデータなし"}
	if got := buildDescription(p); got != "" {
		t.Errorf("want empty description without metadata, got %q", got)
	}
}

func TestBuildSEOTitle(t *testing.T) {
	p := &model.Product{
		Code:       "ABC-001",
		Title:      "テスト作品",
		Performers: []model.Performer{{Name: "白石かんな"}},
	}
	got := buildSEOTitle(p)
	if !strings.HasPrefix(got, "白石かんな ") {
		t.Errorf("lead performer should prefix the title: %q", got)
	}
	if !strings.Contains(got, "(ABC-001)") {
		t.Errorf("code missing: %q", got)
	}
}

func TestBuildSEOTitleTruncated(t *testing.T) {
	p := &model.Product{
		Code:  "ABC-003",
		Title: strings.Repeat("あ", 100),
	}
	got := buildSEOTitle(p)
	if n := len([]rune(got)); n > 60 {
		t.Errorf("title not truncated: %d runes", n)
	}
}

func TestProductPageURL(t *testing.T) {
	if got := productPageURL("https://example.com/", 42); got != "https://example.com/products/42" {
		t.Errorf("trailing slash not collapsed: %q", got)
	}
	if got := productPageURL("https://example.com", 42); got != "https://example.com/products/42" {
		t.Errorf("got %q", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	// 按字符数截断，多字节字符不能截出半个
	if got := truncateRunes("あいうえお", 3); got != "あいう" {
		t.Errorf("got %q", got)
	}
	if got := truncateRunes("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
}

type mockEnrichProductStore struct {
	missingDescription []model.Product
	updates            map[int64]map[string]interface{}
}

func (m *mockEnrichProductStore) ListMissingDescription(limit int) ([]model.Product, error) {
	return m.missingDescription, nil
}

func (m *mockEnrichProductStore) ListMissingMirrorThumb(limit int) ([]model.Product, error) {
	return nil, nil
}

func (m *mockEnrichProductStore) ListRecentlyUpdated(since time.Time, limit int) ([]model.Product, error) {
	return nil, nil
}

func (m *mockEnrichProductStore) ListAllWithAssociations(skip, limit int) ([]model.Product, error) {
	return nil, nil
}

func (m *mockEnrichProductStore) Update(id int64, updates map[string]interface{}) error {
	if m.updates == nil {
		m.updates = make(map[int64]map[string]interface{})
	}
	m.updates[id] = updates
	return nil
}

// 简介由演员和标签拼装，缺简介查询必须带出关联才能生成完整文案；
// 只有时长的商品也不能被跳过
func TestEnhanceContentWritesDescriptionsFromAssociations(t *testing.T) {
	store := &mockEnrichProductStore{
		missingDescription: []model.Product{
			{
				ID:    1,
				Code:  "ABC-001",
				Title: "テスト作品",
				Performers: []model.Performer{
					{Name: "白石かんな"},
				},
				Tags: []model.Tag{{Name: "単体作品"}},
			},
			{
				// 无时长，但演员标签齐全，仍应生成简介
				ID:         2,
				Code:       "ABC-002",
				Title:      "時間なし",
				Performers: []model.Performer{{Name: "三上悠亜"}},
			},
			{
				// 什么元数据都没有才跳过
				ID:    3,
				Code:  "ABC-003",
				Title: "素材なし",
			},
		},
	}
	svc := NewEnrichService(store, nil, nil, nil)

	summary, err := svc.EnhanceContent(context.Background(), EnhanceTypeDescription)
	if err != nil {
		t.Fatalf("EnhanceContent failed: %v", err)
	}
	if summary.Processed != 2 || summary.Skipped != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	first, ok := store.updates[1]["description"].(string)
	if !ok {
		t.Fatal("product 1 not updated")
	}
	for _, want := range []string{"白石かんな", "単体作品"} {
		if !strings.Contains(first, want) {
			t.Errorf("description missing %q: %s", want, first)
		}
	}

	second, ok := store.updates[2]["description"].(string)
	if !ok {
		t.Fatal("product without duration must still get a description")
	}
	if !strings.Contains(second, "三上悠亜") {
		t.Errorf("description missing performer: %s", second)
	}

	if _, updated := store.updates[3]; updated {
		t.Error("product without any metadata should be skipped, not updated")
	}
}

type mockSaleMaintainer struct {
	deactivated int64
}

func (m *mockSaleMaintainer) DeactivateExpired(now time.Time) (int64, error) {
	return m.deactivated, nil
}

func TestCheckSales(t *testing.T) {
	svc := NewEnrichService(nil, &mockSaleMaintainer{deactivated: 3}, nil, nil)

	summary, err := svc.CheckSales(context.Background())
	if err != nil {
		t.Fatalf("CheckSales failed: %v", err)
	}
	if summary.Processed != 3 {
		t.Errorf("processed = %d, want 3", summary.Processed)
	}
}
