package service

import (
	"context"
	"strings"
	"testing"

	"avdb-go/internal/asp"
	"avdb-go/internal/model"
)

type mockRawStore struct {
	pending   []model.RawProduct
	processed []int64
	failed    map[int64]string
}

func newMockRawStore(rows ...model.RawProduct) *mockRawStore {
	return &mockRawStore{pending: rows, failed: make(map[int64]string)}
}

// ListPending 一次性吐出全部待处理行，之后返回空表结束循环
func (m *mockRawStore) ListPending(limit int) ([]model.RawProduct, error) {
	rows := m.pending
	m.pending = nil
	return rows, nil
}

func (m *mockRawStore) CountPending() (int64, error) {
	return int64(len(m.pending)), nil
}

func (m *mockRawStore) MarkProcessed(id int64) error {
	m.processed = append(m.processed, id)
	return nil
}

func (m *mockRawStore) MarkFailed(id int64, reason string) error {
	m.failed[id] = reason
	return nil
}

type mockCatalogStore struct {
	nextID     int64
	products   map[string]*model.Product
	sources    []model.ProductSource
	performers map[int64][]model.Performer
	tags       map[int64][]model.Tag
}

func newMockCatalogStore() *mockCatalogStore {
	return &mockCatalogStore{
		products:   make(map[string]*model.Product),
		performers: make(map[int64][]model.Performer),
		tags:       make(map[int64][]model.Tag),
	}
}

func (m *mockCatalogStore) Upsert(product *model.Product) error {
	if existing, ok := m.products[product.Code]; ok {
		product.ID = existing.ID
	} else {
		m.nextID++
		product.ID = m.nextID
	}
	saved := *product
	m.products[product.Code] = &saved
	return nil
}

func (m *mockCatalogStore) UpsertSource(source *model.ProductSource) error {
	source.ID = int64(len(m.sources) + 1)
	m.sources = append(m.sources, *source)
	return nil
}

func (m *mockCatalogStore) ReplacePerformers(product *model.Product, performers []model.Performer) error {
	m.performers[product.ID] = performers
	return nil
}

func (m *mockCatalogStore) ReplaceTags(product *model.Product, tags []model.Tag) error {
	m.tags[product.ID] = tags
	return nil
}

func (m *mockCatalogStore) GetByCode(code string) (*model.Product, error) {
	return m.products[code], nil
}

func (m *mockCatalogStore) GetByID(id int64) (*model.Product, error) {
	for _, p := range m.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

type mockPerformerCreator struct {
	nextID int64
}

func (m *mockPerformerCreator) GetOrCreateByName(name string) (*model.Performer, error) {
	m.nextID++
	return &model.Performer{ID: m.nextID, Name: name}, nil
}

type mockTagCreator struct {
	nextID int64
}

func (m *mockTagCreator) GetOrCreateByName(name, category string) (*model.Tag, error) {
	m.nextID++
	return &model.Tag{ID: m.nextID, Name: name, Category: category}, nil
}

type mockSaleWriter struct {
	sales []model.ProductSale
}

func (m *mockSaleWriter) Upsert(sale *model.ProductSale) error {
	m.sales = append(m.sales, *sale)
	return nil
}

func TestProcessRawDataNormalizesMGSCode(t *testing.T) {
	rawStore := newMockRawStore(model.RawProduct{
		ID:         1,
		ASPName:    asp.ASPMgs,
		OriginalID: "300mium123",
		Payload:    []byte(`{"content_id":"300mium123","title":"テスト作品","price":1980}`),
	})
	catalog := newMockCatalogStore()
	svc := NewIngestService(rawStore, catalog, &mockPerformerCreator{}, &mockTagCreator{}, &mockSaleWriter{})

	summary, err := svc.ProcessRawData(context.Background())
	if err != nil {
		t.Fatalf("ProcessRawData failed: %v", err)
	}
	if summary.Processed != 1 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if _, ok := catalog.products["300MIUM-123"]; !ok {
		t.Errorf("product code not normalized, stored codes: %v", keys(catalog.products))
	}
	if len(rawStore.processed) != 1 || rawStore.processed[0] != 1 {
		t.Errorf("raw row not marked processed: %v", rawStore.processed)
	}
}

func TestProcessRawDataConvertsFanzaURL(t *testing.T) {
	payload := `{"content_id":"ssis00123","title":"テスト","price":1980,` +
		`"affiliate_url":"https://al.fanza.co.jp/?lurl=https%3A%2F%2Fwww.dmm.co.jp%2Fdigital%2Fvideoa%2F-%2Fdetail%2F%3D%2Fcid%3Dssis00123%2F&af_id=demo-001"}`
	rawStore := newMockRawStore(model.RawProduct{
		ID:         1,
		ASPName:    asp.ASPFanza,
		OriginalID: "ssis00123",
		Payload:    []byte(payload),
	})
	catalog := newMockCatalogStore()
	svc := NewIngestService(rawStore, catalog, &mockPerformerCreator{}, &mockTagCreator{}, &mockSaleWriter{})

	if _, err := svc.ProcessRawData(context.Background()); err != nil {
		t.Fatalf("ProcessRawData failed: %v", err)
	}
	if len(catalog.sources) != 1 {
		t.Fatalf("want 1 source, got %d", len(catalog.sources))
	}
	got := catalog.sources[0].AffiliateURL
	if !strings.HasPrefix(got, "https://www.dmm.co.jp/") {
		t.Errorf("affiliate URL not converted to direct link: %q", got)
	}
}

func TestProcessRawDataCreatesSaleFromListPrice(t *testing.T) {
	rawStore := newMockRawStore(model.RawProduct{
		ID:         1,
		ASPName:    asp.ASPSokmil,
		OriginalID: "abc-001",
		Payload:    []byte(`{"content_id":"abc-001","title":"テスト","price":980,"list_price":1980,"sale_end_date":"2026-09-30"}`),
	})
	catalog := newMockCatalogStore()
	sales := &mockSaleWriter{}
	svc := NewIngestService(rawStore, catalog, &mockPerformerCreator{}, &mockTagCreator{}, sales)

	if _, err := svc.ProcessRawData(context.Background()); err != nil {
		t.Fatalf("ProcessRawData failed: %v", err)
	}
	if len(sales.sales) != 1 {
		t.Fatalf("want 1 sale, got %d", len(sales.sales))
	}
	sale := sales.sales[0]
	if sale.RegularPrice != 1980 || sale.SalePrice != 980 {
		t.Errorf("sale prices = %d/%d", sale.RegularPrice, sale.SalePrice)
	}
	if sale.DiscountPercent != 50 {
		t.Errorf("discount = %d, want 50", sale.DiscountPercent)
	}
	if sale.EndAt.Format("2006-01-02") != "2026-09-30" {
		t.Errorf("end date = %v", sale.EndAt)
	}
	if !sale.IsActive {
		t.Error("sale should be active")
	}
}

func TestProcessRawDataNoSaleWithoutDiscount(t *testing.T) {
	rawStore := newMockRawStore(model.RawProduct{
		ID:         1,
		ASPName:    asp.ASPSokmil,
		OriginalID: "abc-002",
		Payload:    []byte(`{"content_id":"abc-002","title":"テスト","price":1980,"list_price":1980}`),
	})
	sales := &mockSaleWriter{}
	svc := NewIngestService(rawStore, newMockCatalogStore(), &mockPerformerCreator{}, &mockTagCreator{}, sales)

	if _, err := svc.ProcessRawData(context.Background()); err != nil {
		t.Fatalf("ProcessRawData failed: %v", err)
	}
	if len(sales.sales) != 0 {
		t.Errorf("no sale expected, got %d", len(sales.sales))
	}
}

func TestProcessRawDataSkipsBadRowsAndContinues(t *testing.T) {
	rawStore := newMockRawStore(
		model.RawProduct{ID: 1, ASPName: asp.ASPDuga, OriginalID: "x", Payload: []byte(`not json`)},
		model.RawProduct{ID: 2, ASPName: asp.ASPDuga, OriginalID: "y", Payload: []byte(`{"content_id":"y","title":""}`)},
		model.RawProduct{ID: 3, ASPName: asp.ASPDuga, OriginalID: "good-01", Payload: []byte(`{"content_id":"good-01","title":"テスト"}`)},
	)
	svc := NewIngestService(rawStore, newMockCatalogStore(), &mockPerformerCreator{}, &mockTagCreator{}, &mockSaleWriter{})

	summary, err := svc.ProcessRawData(context.Background())
	if err != nil {
		t.Fatalf("ProcessRawData failed: %v", err)
	}
	if summary.Processed != 1 || summary.Failed != 2 {
		t.Fatalf("summary = %+v", summary)
	}
	if len(rawStore.failed) != 2 {
		t.Errorf("failed marks = %v", rawStore.failed)
	}
	if len(rawStore.processed) != 1 || rawStore.processed[0] != 3 {
		t.Errorf("processed marks = %v", rawStore.processed)
	}
}

func TestProcessRawDataAttachesPerformersAndTags(t *testing.T) {
	rawStore := newMockRawStore(model.RawProduct{
		ID:         1,
		ASPName:    asp.ASPSokmil,
		OriginalID: "abc-003",
		Payload:    []byte(`{"content_id":"abc-003","title":"テスト","performers":["白石かんな"," ","三上悠亜"],"tags":["単体作品","中出し"]}`),
	})
	catalog := newMockCatalogStore()
	svc := NewIngestService(rawStore, catalog, &mockPerformerCreator{}, &mockTagCreator{}, &mockSaleWriter{})

	if _, err := svc.ProcessRawData(context.Background()); err != nil {
		t.Fatalf("ProcessRawData failed: %v", err)
	}
	product := catalog.products["ABC-003"]
	if product == nil {
		t.Fatal("product not stored")
	}
	if got := catalog.performers[product.ID]; len(got) != 2 {
		t.Errorf("want 2 performers after blank filtered, got %d", len(got))
	}
	if got := catalog.tags[product.ID]; len(got) != 2 {
		t.Errorf("want 2 tags, got %d", len(got))
	}
}

func keys(m map[string]*model.Product) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
