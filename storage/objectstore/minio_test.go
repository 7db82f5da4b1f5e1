package objectstore

import (
	"context"
	"strings"
	"testing"
	"time"

	"docuflow/config"
)

func TestNewMinioStore(t *testing.T) {
	store, err := NewMinioStore(config.StorageConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "test",
		SecretKey: "test",
		Bucket:    "documents",
		Region:    "us-east-1",
	})
	if err != nil {
		t.Fatalf("NewMinioStore: %v", err)
	}
	if store == nil {
		t.Fatal("Expected non-nil store")
	}
}

func TestPresignGet(t *testing.T) {
	store, err := NewMinioStore(config.StorageConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "test",
		SecretKey: "test",
		Bucket:    "documents",
		Region:    "us-east-1",
	})
	if err != nil {
		t.Fatalf("NewMinioStore: %v", err)
	}

	// signing is local when the region is known
	url, err := store.PresignGet(context.Background(), "user-1/1700000000000_inv.pdf", 60*time.Second)
	if err != nil {
		t.Fatalf("PresignGet: %v", err)
	}
	if !strings.HasPrefix(url, "http://localhost:9000/documents/user-1/1700000000000_inv.pdf?") {
		t.Errorf("unexpected url: %s", url)
	}
	if !strings.Contains(url, "X-Amz-Expires=60") {
		t.Errorf("expected 60s expiry in url: %s", url)
	}
}
