package service

import (
	"context"
	"docuflow/logic/extract"
	"docuflow/storage/postgres"
	"docuflow/types"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// 允许上传的扩展名：图片 + PDF
var allowedExt = map[string]bool{
	".pdf": true, ".png": true, ".jpg": true, ".jpeg": true, ".webp": true, ".gif": true,
}

type UploadInput struct {
	OwnerID  string
	FileName string
	FileType types.DocumentType
	Size     int64
	Body     io.Reader
}

type DocumentService struct {
	store   *postgres.Store
	objects ObjectStore
	queue   TaskQueue
	urlTTL  time.Duration
	log     *zap.Logger
}

func NewDocumentService(store *postgres.Store, objects ObjectStore, queue TaskQueue, urlTTL time.Duration, log *zap.Logger) *DocumentService {
	return &DocumentService{store: store, objects: objects, queue: queue, urlTTL: urlTTL, log: log.Named("documents")}
}

// Upload 存文件 -> 建记录(processing) -> 异步提取，不等待提取结果
func (s *DocumentService) Upload(ctx context.Context, in UploadInput) (*postgres.Document, *Task, error) {
	name := filepath.Base(strings.TrimSpace(in.FileName))
	if name == "" || name == "." || name == "/" {
		return nil, nil, fmt.Errorf("%w: file name is empty", types.ErrInvalidInput)
	}
	if !allowedExt[strings.ToLower(filepath.Ext(name))] {
		return nil, nil, fmt.Errorf("%w: only PDF and image files are accepted", types.ErrInvalidInput)
	}

	path := StoragePath(in.OwnerID, name, time.Now())
	if err := s.objects.Put(ctx, path, in.Body, in.Size, extract.MIMEType(name)); err != nil {
		return nil, nil, fmt.Errorf("upload %s: %w", name, err)
	}

	doc := &postgres.Document{
		UserID:   in.OwnerID,
		FileName: name,
		FilePath: path,
		FileType: in.FileType,
	}
	if err := s.store.Documents.Create(ctx, doc); err != nil {
		if delErr := s.objects.Delete(context.WithoutCancel(ctx), path); delErr != nil {
			s.log.Warn("orphaned upload", zap.String("path", path), zap.Error(delErr))
		}
		return nil, nil, fmt.Errorf("create document: %w", err)
	}

	task := s.queue.Enqueue(doc.ID)
	s.log.Info("document uploaded",
		zap.String("document_id", doc.ID),
		zap.String("task_id", task.ID),
		zap.String("type", string(doc.FileType)),
	)
	return doc, task, nil
}

// StoragePath {owner}/{unixMillis}_{fileName}
func StoragePath(ownerID, fileName string, now time.Time) string {
	return fmt.Sprintf("%s/%d_%s", ownerID, now.UnixMilli(), fileName)
}

func (s *DocumentService) Get(ctx context.Context, ownerID, id string) (*postgres.Document, error) {
	return s.store.Documents.Get(ctx, ownerID, id)
}

func (s *DocumentService) ListRecent(ctx context.Context, ownerID string, limit int) ([]postgres.Document, error) {
	return s.store.Documents.ListRecent(ctx, ownerID, limit)
}

// DownloadURL returns a short-lived signed URL for the original file.
func (s *DocumentService) DownloadURL(ctx context.Context, ownerID, id string) (string, error) {
	doc, err := s.store.Documents.Get(ctx, ownerID, id)
	if err != nil {
		return "", err
	}
	return s.objects.PresignGet(ctx, doc.FilePath, s.urlTTL)
}
