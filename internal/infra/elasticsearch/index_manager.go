package elasticsearch

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"avdb-go/internal/config"
	"avdb-go/pkg/logger"

	"go.uber.org/zap"
)

// GetProductsIndexMapping 返回 products 索引的 mapping（kuromoji 日文分词 + 前缀补全）
func GetProductsIndexMapping() string {
	return `{
		"settings": {
			"number_of_shards": 1,
			"number_of_replicas": 0,
			"analysis": {
				"analyzer": {
					"ja_analyzer": {
						"type": "custom",
						"tokenizer": "kuromoji_tokenizer",
						"filter": ["kuromoji_baseform", "lowercase"]
					},
					"autocomplete_analyzer": {
						"type": "custom",
						"tokenizer": "autocomplete_tokenizer",
						"filter": ["lowercase"]
					}
				},
				"tokenizer": {
					"autocomplete_tokenizer": {
						"type": "edge_ngram",
						"min_gram": 1,
						"max_gram": 15,
						"token_chars": ["letter", "digit"]
					}
				}
			}
		},
		"mappings": {
			"properties": {
				"id": {"type": "long"},
				"code": {"type": "keyword"},
				"title": {
					"type": "text",
					"analyzer": "ja_analyzer",
					"fields": {
						"keyword": {"type": "keyword", "ignore_above": 500},
						"autocomplete": {"type": "text", "analyzer": "autocomplete_analyzer", "search_analyzer": "standard"}
					}
				},
				"description": {"type": "text", "analyzer": "ja_analyzer"},
				"performer_names": {"type": "text", "analyzer": "ja_analyzer", "fields": {"keyword": {"type": "keyword"}}},
				"tag_names": {"type": "keyword"},
				"asp_names": {"type": "keyword"},
				"min_price": {"type": "integer"},
				"rating": {"type": "float"},
				"release_date": {"type": "date", "format": "strict_date_optional_time||epoch_millis"},
				"created_at": {"type": "date", "format": "strict_date_optional_time||epoch_millis"}
			}
		}
	}`
}

// GetPerformersIndexMapping 返回 performers 索引的 mapping（仅补全用）
func GetPerformersIndexMapping() string {
	return `{
		"settings": {"number_of_shards": 1, "number_of_replicas": 0},
		"mappings": {
			"properties": {
				"id": {"type": "long"},
				"name": {
					"type": "text",
					"fields": {"keyword": {"type": "keyword", "ignore_above": 200}}
				},
				"product_count": {"type": "long"}
			}
		}
	}`
}

// ProductsIndexName 返回 products 索引名
func ProductsIndexName() string {
	name := config.GetElasticsearch().Index["products"]
	if name == "" {
		name = "products"
	}
	return name
}

// PerformersIndexName 返回 performers 索引名
func PerformersIndexName() string {
	name := config.GetElasticsearch().Index["performers"]
	if name == "" {
		name = "performers"
	}
	return name
}

func ensureIndex(ctx context.Context, name, mapping string) error {
	exists, err := IndicesExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	if exists {
		logger.Info("Elasticsearch index already exists", zap.String("index", name))
		return nil
	}

	resp, err := IndicesCreate(ctx, name, bytes.NewReader([]byte(mapping)))
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return fmt.Errorf("create index failed: %s", resp.String())
	}

	logger.Info("Elasticsearch index created", zap.String("index", name))
	return nil
}

// InitIndexes 初始化所有索引（启动时调用）
func InitIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := ensureIndex(ctx, ProductsIndexName(), GetProductsIndexMapping()); err != nil {
		return err
	}
	return ensureIndex(ctx, PerformersIndexName(), GetPerformersIndexMapping())
}
