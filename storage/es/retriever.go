package es

import (
	"context"
	"docuflow/types"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string    `json:"_id"`
			Score  float64   `json:"_score"`
			Source RecordDoc `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search 在当前用户的记录里做全文检索
// docType 为空表示发票和合同都查
func (e *RecordIndex) Search(ctx context.Context, ownerID, query, docType string, limit int) ([]types.SearchHit, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	// 1. 构建查询语句
	var buf strings.Builder
	if err := json.NewEncoder(&buf).Encode(buildQuery(ownerID, query, docType, limit)); err != nil {
		return nil, fmt.Errorf("error encoding query: %w", err)
	}
	e.log.Debug("search", zap.String("query", buf.String()))

	// 2. 执行搜索
	req := esapi.SearchRequest{
		Index: []string{e.index},
		Body:  strings.NewReader(buf.String()),
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return nil, fmt.Errorf("error getting response: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("error response: %s", res.String())
	}

	// 3. 解析结果
	var result searchResponse
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("error parsing response body: %w", err)
	}

	hits := make([]types.SearchHit, 0, len(result.Hits.Hits))
	for _, h := range result.Hits.Hits {
		id := h.Source.RecordID
		if id == "" {
			id = h.ID
		}
		hits = append(hits, types.SearchHit{
			RecordID:   id,
			Type:       types.DocumentType(h.Source.Type),
			DocumentID: h.Source.DocumentID,
			VendorName: h.Source.VendorName,
			Summary:    h.Source.Summary,
			Score:      h.Score,
		})
	}
	e.log.Debug("search done", zap.Int("hits", len(hits)))
	return hits, nil
}

func buildQuery(ownerID, query, docType string, limit int) map[string]any {
	filter := []any{
		map[string]any{"term": map[string]any{"user_id": ownerID}},
	}
	if docType != "" {
		filter = append(filter, map[string]any{"term": map[string]any{"type": docType}})
	}
	return map[string]any{
		"size": limit,
		"query": map[string]any{
			"bool": map[string]any{
				"must": []any{
					map[string]any{
						"multi_match": map[string]any{
							"query":  query,
							"fields": []string{"vendor_name^3", "summary^2", "content"},
						},
					},
				},
				"filter": filter,
			},
		},
	}
}
