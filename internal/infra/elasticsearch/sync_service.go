package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"avdb-go/internal/model"
	"avdb-go/pkg/logger"

	"go.uber.org/zap"
)

// ESProductDoc ES 商品文档结构
type ESProductDoc struct {
	ID             int64    `json:"id"`
	Code           string   `json:"code"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	PerformerNames []string `json:"performer_names"`
	TagNames       []string `json:"tag_names"`
	ASPNames       []string `json:"asp_names"`
	MinPrice       int      `json:"min_price"`
	Rating         float64  `json:"rating"`
	ReleaseDate    string   `json:"release_date,omitempty"`
	CreatedAt      string   `json:"created_at"`
}

// ESPerformerDoc ES 演员文档结构
type ESPerformerDoc struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	ProductCount int64  `json:"product_count"`
}

// productToESDoc 组装商品文档，关联数据需已 Preload
func productToESDoc(p *model.Product) *ESProductDoc {
	doc := &ESProductDoc{
		ID:          p.ID,
		Code:        p.Code,
		Title:       p.Title,
		Description: p.Description,
		Rating:      p.Rating,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
	if p.ReleaseDate != nil {
		doc.ReleaseDate = p.ReleaseDate.Format(time.RFC3339)
	}
	for _, perf := range p.Performers {
		doc.PerformerNames = append(doc.PerformerNames, perf.Name)
	}
	for _, t := range p.Tags {
		doc.TagNames = append(doc.TagNames, t.Name)
	}
	minPrice := 0
	for _, s := range p.Sources {
		doc.ASPNames = append(doc.ASPNames, s.ASPName)
		if s.Price > 0 && (minPrice == 0 || s.Price < minPrice) {
			minPrice = s.Price
		}
	}
	doc.MinPrice = minPrice
	return doc
}

// SyncProduct 同步单个商品到 ES
func SyncProduct(ctx context.Context, p *model.Product) error {
	doc := productToESDoc(p)
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	resp, err := Index(ctx, ProductsIndexName(), fmt.Sprintf("%d", p.ID), bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return fmt.Errorf("index document failed: %s", resp.String())
	}

	logger.Debug("Product synced to ES", zap.Int64("product_id", p.ID))
	return nil
}

// SyncPerformer 同步单个演员到 ES
func SyncPerformer(ctx context.Context, perf *model.Performer, productCount int64) error {
	doc := &ESPerformerDoc{ID: perf.ID, Name: perf.Name, ProductCount: productCount}
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	resp, err := Index(ctx, PerformersIndexName(), fmt.Sprintf("%d", perf.ID), bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return fmt.Errorf("index document failed: %s", resp.String())
	}
	return nil
}

// DeleteProduct 从 ES 删除商品
func DeleteProduct(ctx context.Context, productID int64) error {
	resp, err := Delete(ctx, ProductsIndexName(), fmt.Sprintf("%d", productID))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.IsError() && resp.StatusCode != 404 {
		return fmt.Errorf("delete document failed: %s", resp.String())
	}
	return nil
}

// BulkSyncProducts 批量同步商品到 ES
func BulkSyncProducts(ctx context.Context, products []model.Product) (success, failed int, err error) {
	indexName := ProductsIndexName()

	var buf strings.Builder
	for i := range products {
		doc := productToESDoc(&products[i])
		docBody, _ := json.Marshal(doc)

		buf.WriteString(fmt.Sprintf(`{"index":{"_index":"%s","_id":"%d"}}`, indexName, doc.ID))
		buf.WriteString("\n")
		buf.Write(docBody)
		buf.WriteString("\n")
	}

	if buf.Len() == 0 {
		return 0, 0, nil
	}

	resp, err := Bulk(ctx, strings.NewReader(buf.String()))
	if err != nil {
		return 0, len(products), err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return 0, len(products), fmt.Errorf("bulk failed: %s", resp.String())
	}

	var bulkResp struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				Status int `json:"status"`
			} `json:"index"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&bulkResp); err != nil {
		return len(products), 0, nil
	}

	for _, item := range bulkResp.Items {
		if item.Index.Status >= 200 && item.Index.Status < 300 {
			success++
		} else {
			failed++
		}
	}

	logger.Info("Bulk sync to ES completed", zap.Int("success", success), zap.Int("failed", failed))
	return success, failed, nil
}
