package service

import (
	"bytes"
	"context"
	"docuflow/service/mailer"
	"docuflow/storage/es"
	"docuflow/storage/postgres"
	"docuflow/types"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *postgres.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := postgres.OpenSQLite(dsn, logger.Silent)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	s := postgres.NewStore(db)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

type fakeObjects struct {
	mu      sync.Mutex
	files   map[string][]byte
	getErr  error
	deleted []string
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{files: map[string][]byte{}}
}

func (f *fakeObjects) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[key] = data
	return nil
}

func (f *fakeObjects) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.files[key]
	if !ok {
		return nil, types.ErrNotFound
	}
	return bytes.Clone(data), nil
}

func (f *fakeObjects) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeObjects) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("https://files.test/%s?expires=%d", key, int(ttl.Seconds())), nil
}

type fakeExtractor struct {
	draft types.Draft
	err   error
	calls int
}

func (f *fakeExtractor) Extract(_ context.Context, docType types.DocumentType, _ string, _ []byte) (types.Draft, error) {
	f.calls++
	if f.err != nil {
		return types.Draft{}, f.err
	}
	d := f.draft
	d.Type = docType
	return d, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakeIndex struct {
	docs []es.RecordDoc
	err  error
}

func (f *fakeIndex) Index(_ context.Context, doc es.RecordDoc) error {
	f.docs = append(f.docs, doc)
	return f.err
}

func (f *fakeIndex) Search(_ context.Context, _, query, _ string, _ int) ([]types.SearchHit, error) {
	var hits []types.SearchHit
	for _, d := range f.docs {
		if d.VendorName == query {
			hits = append(hits, types.SearchHit{RecordID: d.RecordID, Type: types.DocumentType(d.Type), VendorName: d.VendorName})
		}
	}
	return hits, nil
}

var errBoom = errors.New("boom")

func invoiceDraft() types.Draft {
	return types.Draft{
		Type: types.DocumentTypeInvoice,
		Invoice: &types.InvoiceDraft{
			SummaryText:     "Office chairs",
			ConfidenceScore: 0.92,
		},
	}
}

func contractDraft() types.Draft {
	return types.Draft{
		Type: types.DocumentTypeContract,
		Contract: &types.ContractDraft{
			Parties:         []string{"Acme Co", "Globex"},
			SummaryText:     "Office lease",
			ConfidenceScore: 0.75,
		},
	}
}

// newDocument 建一个 processing 文档，并在对象存储里放好文件
func newDocument(t *testing.T, s *postgres.Store, objects *fakeObjects, owner string, docType types.DocumentType) *postgres.Document {
	t.Helper()
	doc := &postgres.Document{
		UserID:   owner,
		FileName: "scan.pdf",
		FilePath: StoragePath(owner, uuid.NewString()[:8]+"_scan.pdf", time.Now()),
		FileType: docType,
	}
	if err := s.Documents.Create(context.Background(), doc); err != nil {
		t.Fatalf("create document: %v", err)
	}
	if objects != nil {
		objects.files[doc.FilePath] = []byte("%PDF-1.4")
	}
	return doc
}

func newReadyDocument(t *testing.T, s *postgres.Store, objects *fakeObjects, owner string, draft types.Draft) *postgres.Document {
	t.Helper()
	doc := newDocument(t, s, objects, owner, draft.Type)
	if err := s.Documents.MarkReady(context.Background(), doc.ID, draft); err != nil {
		t.Fatalf("mark ready: %v", err)
	}
	doc.Status = types.StatusReady
	return doc
}
