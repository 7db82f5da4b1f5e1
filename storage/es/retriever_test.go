package es

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

// fakeES answers just enough of the API for the index and search calls.
func fakeES(t *testing.T, lastBody *string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		body, _ := io.ReadAll(r.Body)
		*lastBody = string(body)

		switch {
		case r.Method == http.MethodHead:
			w.WriteHeader(http.StatusOK)
		case strings.HasSuffix(r.URL.Path, "/_search"):
			_, _ = w.Write([]byte(`{"hits":{"hits":[
				{"_id":"r1","_score":2.5,"_source":{"record_id":"r1","type":"invoice","vendor_name":"Acme Co","summary":"Widgets"}},
				{"_id":"r2","_score":1.1,"_source":{"type":"contract","summary":"Lease"}}
			]}}`))
		case r.Method == http.MethodPut:
			_, _ = w.Write([]byte(`{"result":"created"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{}`))
		}
	}))
}

func TestSearch(t *testing.T) {
	var body string
	srv := fakeES(t, &body)
	defer srv.Close()

	idx, err := NewRecordIndex(context.Background(), []string{srv.URL}, "docuflow_records", zap.NewNop())
	if err != nil {
		t.Fatalf("NewRecordIndex: %v", err)
	}

	hits, err := idx.Search(context.Background(), "user-1", "widgets", "invoice", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].VendorName != "Acme Co" || hits[0].Score != 2.5 {
		t.Errorf("unexpected first hit: %+v", hits[0])
	}
	if hits[1].RecordID != "r2" {
		t.Errorf("expected _id fallback, got %q", hits[1].RecordID)
	}
	if !strings.Contains(body, `"user_id":"user-1"`) || !strings.Contains(body, `"type":"invoice"`) {
		t.Errorf("query should filter by owner and type: %s", body)
	}
}

func TestIndex(t *testing.T) {
	var body string
	srv := fakeES(t, &body)
	defer srv.Close()

	idx, err := NewRecordIndex(context.Background(), []string{srv.URL}, "docuflow_records", zap.NewNop())
	if err != nil {
		t.Fatalf("NewRecordIndex: %v", err)
	}
	amount := 150.0
	err = idx.Index(context.Background(), RecordDoc{RecordID: "r1", UserID: "user-1", Type: "invoice", Amount: &amount})
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if !strings.Contains(body, `"amount":150`) {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestBuildQueryWithoutType(t *testing.T) {
	q := buildQuery("user-1", "lease", "", 10)
	filter := q["query"].(map[string]any)["bool"].(map[string]any)["filter"].([]any)
	if len(filter) != 1 {
		t.Errorf("expected only the owner filter, got %d", len(filter))
	}
}
