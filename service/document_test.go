package service

import (
	"context"
	"docuflow/storage/lock"
	"docuflow/types"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

type recordingQueue struct {
	ids []string
}

func (q *recordingQueue) Enqueue(documentID string) *Task {
	q.ids = append(q.ids, documentID)
	t := &Task{ID: "task-" + documentID, DocumentID: documentID, done: make(chan struct{})}
	close(t.done)
	return t
}

func TestUpload(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	objects := newFakeObjects()
	q := &recordingQueue{}
	svc := NewDocumentService(store, objects, q, time.Minute, zap.NewNop())

	doc, task, err := svc.Upload(ctx, UploadInput{
		OwnerID:  "user-1",
		FileName: "../Invoice March.pdf",
		FileType: types.DocumentTypeInvoice,
		Size:     8,
		Body:     strings.NewReader("%PDF-1.4"),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if doc.Status != types.StatusProcessing || doc.FileName != "Invoice March.pdf" {
		t.Errorf("unexpected document %+v", doc)
	}
	if !strings.HasPrefix(doc.FilePath, "user-1/") || !strings.HasSuffix(doc.FilePath, "_Invoice March.pdf") {
		t.Errorf("file_path = %q", doc.FilePath)
	}
	if string(objects.files[doc.FilePath]) != "%PDF-1.4" {
		t.Error("file was not stored")
	}
	if len(q.ids) != 1 || q.ids[0] != doc.ID || task.DocumentID != doc.ID {
		t.Errorf("extraction not enqueued: %v", q.ids)
	}

	got, err := svc.Get(ctx, "user-1", doc.ID)
	if err != nil || got.FileType != types.DocumentTypeInvoice {
		t.Errorf("Get = %+v, %v", got, err)
	}
	if _, err := svc.Get(ctx, "user-2", doc.ID); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("other owner should not see the document: %v", err)
	}

	url, err := svc.DownloadURL(ctx, "user-1", doc.ID)
	if err != nil || !strings.Contains(url, "expires=60") {
		t.Errorf("DownloadURL = %q, %v", url, err)
	}

	list, err := svc.ListRecent(ctx, "user-1", 10)
	if err != nil || len(list) != 1 {
		t.Errorf("ListRecent = %d, %v", len(list), err)
	}
}

func TestUploadRejectsUnsupportedFiles(t *testing.T) {
	store := newTestStore(t)
	objects := newFakeObjects()
	q := &recordingQueue{}
	svc := NewDocumentService(store, objects, q, time.Minute, zap.NewNop())

	for _, name := range []string{"payload.exe", "notes.docx", ""} {
		_, _, err := svc.Upload(context.Background(), UploadInput{OwnerID: "user-1", FileName: name, Body: strings.NewReader("x")})
		if !errors.Is(err, types.ErrInvalidInput) {
			t.Errorf("%q: expected ErrInvalidInput, got %v", name, err)
		}
	}
	if len(objects.files) != 0 || len(q.ids) != 0 {
		t.Error("rejected uploads must not store or enqueue anything")
	}
}

func TestStoragePath(t *testing.T) {
	now := time.UnixMilli(1718000000123)
	if got := StoragePath("user-1", "scan.png", now); got != "user-1/1718000000123_scan.png" {
		t.Errorf("StoragePath = %q", got)
	}
}

func TestUploadThroughDispatcher(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	objects := newFakeObjects()
	ex := &fakeExtractor{draft: contractDraft()}
	worker := NewExtractionWorker(store, objects, ex, lock.NewLocalLocker(), zap.NewNop())
	d := NewDispatcher(worker, 2, time.Minute, zap.NewNop())
	defer func() { _ = d.Shutdown(ctx) }()

	svc := NewDocumentService(store, objects, d, time.Minute, zap.NewNop())
	doc, task, err := svc.Upload(ctx, UploadInput{
		OwnerID: "user-1", FileName: "lease.pdf", FileType: types.DocumentTypeContract,
		Size: 4, Body: strings.NewReader("%PDF"),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	waitTask(t, task)
	if task.Err() != nil {
		t.Fatalf("task err: %v", task.Err())
	}
	got, _ := store.Documents.Get(ctx, "user-1", doc.ID)
	if got.Status != types.StatusReady {
		t.Errorf("status = %s, want ready", got.Status)
	}
}
