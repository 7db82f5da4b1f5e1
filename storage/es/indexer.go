package es

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

// RecordDoc 已提交的发票/合同在 ES 中的文档
type RecordDoc struct {
	RecordID   string   `json:"record_id"`
	UserID     string   `json:"user_id"`
	Type       string   `json:"type"`
	DocumentID string   `json:"document_id,omitempty"`
	VendorName string   `json:"vendor_name,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	Content    string   `json:"content"`
	Amount     *float64 `json:"amount,omitempty"`
	Date       string   `json:"date,omitempty"` // due_date / end_date, YYYY-MM-DD
}

type RecordIndex struct {
	client *elasticsearch.Client
	index  string
	log    *zap.Logger
}

// NewRecordIndex 初始化 ES 客户端并确保索引存在
func NewRecordIndex(ctx context.Context, addresses []string, indexName string, log *zap.Logger) (*RecordIndex, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("error creating the client: %w", err)
	}

	idx := &RecordIndex{client: es, index: indexName, log: log.Named("es")}
	if err := idx.initMapping(ctx); err != nil {
		return nil, err
	}
	return idx, nil
}

func (e *RecordIndex) initMapping(ctx context.Context) error {
	// 1. 检查索引是否存在
	res, err := e.client.Indices.Exists([]string{e.index}, e.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return err
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	// 2. 定义 Mapping
	mapping := `
	{
	  "settings": {
		"number_of_shards": 1,
		"number_of_replicas": 0
	  },
	  "mappings": {
		"properties": {
		  "record_id":   { "type": "keyword" },
		  "user_id":     { "type": "keyword" },
		  "type":        { "type": "keyword" },
		  "document_id": { "type": "keyword" },
		  "vendor_name": {
			"type": "text",
			"fields": { "keyword": { "type": "keyword" } }
		  },
		  "summary": { "type": "text" },
		  "content": { "type": "text" },
		  "amount":  { "type": "double" },
		  "date":    { "type": "date", "format": "yyyy-MM-dd" }
		}
	  }
	}`

	e.log.Info("creating index", zap.String("index", e.index))
	res, err = e.client.Indices.Create(
		e.index,
		e.client.Indices.Create.WithBody(strings.NewReader(mapping)),
		e.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index error: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index response error: %s", res.String())
	}
	return nil
}

// Index 写入/覆盖一条记录，record_id 作为 _id
func (e *RecordIndex) Index(ctx context.Context, doc RecordDoc) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      e.index,
		DocumentID: doc.RecordID,
		Body:       strings.NewReader(string(data)),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("ES index request failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("ES index response error: %s", res.String())
	}
	return nil
}
