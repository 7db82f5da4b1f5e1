package service

import (
	"context"
	"docuflow/service/mailer"
	"docuflow/storage/es"
	"docuflow/types"
	"io"
	"time"
)

// ObjectStore 文件存储（minio / S3）
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Extractor turns raw file bytes into a validated draft.
type Extractor interface {
	Extract(ctx context.Context, docType types.DocumentType, fileName string, data []byte) (types.Draft, error)
}

// Mailer 发送提醒邮件，未配置时为 nil
type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// RecordIndex 已提交记录的全文索引，ES 未启用时为 nil
type RecordIndex interface {
	Index(ctx context.Context, doc es.RecordDoc) error
	Search(ctx context.Context, ownerID, query, docType string, limit int) ([]types.SearchHit, error)
}

// TaskQueue schedules background extraction for a document.
type TaskQueue interface {
	Enqueue(documentID string) *Task
}
