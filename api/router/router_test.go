package router

import (
	"bytes"
	"context"
	"docuflow/api/handler"
	"docuflow/api/middleware"
	"docuflow/config"
	"docuflow/service"
	"docuflow/storage/lock"
	"docuflow/storage/postgres"
	"docuflow/types"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const secret = "router-test-secret"

type memObjects struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (m *memObjects) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[key] = data
	return nil
}

func (m *memObjects) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[key]
	if !ok {
		return nil, types.ErrNotFound
	}
	return data, nil
}

func (m *memObjects) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, key)
	return nil
}

func (m *memObjects) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://files.test/" + key, nil
}

type stubExtractor struct{}

func (stubExtractor) Extract(_ context.Context, docType types.DocumentType, _ string, _ []byte) (types.Draft, error) {
	total := 150.0
	number := "INV-7"
	return types.Draft{
		Type: docType,
		Invoice: &types.InvoiceDraft{
			InvoiceNumber:   &number,
			TotalAmount:     &total,
			Items:           []types.LineItem{{Description: "Chair", Quantity: 2, UnitPrice: 75, Amount: 150}},
			SummaryText:     "Two chairs",
			ConfidenceScore: 0.9,
		},
	}, nil
}

// slowExtractor 模拟卡住的模型调用
type slowExtractor struct{}

func (slowExtractor) Extract(ctx context.Context, _ types.DocumentType, _ string, _ []byte) (types.Draft, error) {
	select {
	case <-ctx.Done():
		return types.Draft{}, ctx.Err()
	case <-time.After(10 * time.Second):
		return types.Draft{}, nil
	}
}

// manualQueue 不自动执行，测试里通过 process-document 同步触发
type manualQueue struct{}

func (manualQueue) Enqueue(documentID string) *service.Task {
	return &service.Task{ID: uuid.NewString(), DocumentID: documentID}
}

type testEnv struct {
	engine  *gin.Engine
	store   *postgres.Store
	objects *memObjects
	token   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, stubExtractor{}, 0)
}

func newTestEnvWith(t *testing.T, extractor service.Extractor, taskTimeout time.Duration) *testEnv {
	t.Helper()
	db, err := postgres.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), logger.Silent)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	store := postgres.NewStore(db)
	t.Cleanup(func() { _ = store.Close() })

	log := zap.NewNop()
	objects := &memObjects{files: map[string][]byte{}}
	worker := service.NewExtractionWorker(store, objects, extractor, lock.NewLocalLocker(), log)

	h := handler.NewHandler(handler.Deps{
		Documents: service.NewDocumentService(store, objects, manualQueue{}, time.Minute, log),
		Review:    service.NewReviewService(store, objects, nil, log),
		Poller:    service.NewPoller(store.Documents, config.PollerConfig{Interval: time.Millisecond, MaxInterval: time.Millisecond, MaxAttempts: 3, Timeout: time.Second}, log),
		Worker:    worker,
		Reminders: service.NewReminderService(store, nil, nil, 3, log),
		Vendors:   service.NewVendorService(store),
		Records:   service.NewRecordService(store),
		Alerts:    service.NewAlertService(store),
		Dashboard: service.NewDashboardService(store, nil),

		MaxUpload:   1 << 20,
		TaskTimeout: taskTimeout,
	})

	token, err := middleware.GenerateToken("user-1", secret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return &testEnv{
		engine:  New(Config{JWTSecret: secret, Logger: log}, h),
		store:   store,
		objects: objects,
		token:   token,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+e.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doJSON(t *testing.T, method, path string, v any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if v != nil {
		raw, _ := json.Marshal(v)
		body = bytes.NewReader(raw)
	}
	return e.do(t, method, path, body, "application/json")
}

func (e *testEnv) upload(t *testing.T, fileName, fileType string) string {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("file_type", fileType)
	part, _ := mw.CreateFormFile("file", fileName)
	_, _ = part.Write([]byte("%PDF-1.4 test"))
	_ = mw.Close()

	w := e.do(t, http.MethodPost, "/api/v1/documents", &buf, mw.FormDataContentType())
	if w.Code != http.StatusCreated {
		t.Fatalf("upload status = %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Data struct {
			Document postgres.Document `json:"document"`
			TaskID   string            `json:"task_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.TaskID == "" || resp.Data.Document.Status != types.StatusProcessing {
		t.Fatalf("unexpected upload response %s", w.Body.String())
	}
	return resp.Data.Document.ID
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	env := struct {
		Code int             `json:"code"`
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, w.Body.String())
	}
	if env.Code != 0 {
		t.Fatalf("code = %d body=%s", env.Code, w.Body.String())
	}
	if v != nil {
		if err := json.Unmarshal(env.Data, v); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
}

func TestPublicRoutes(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("health = %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodOptions, "/functions/v1/process-document", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w = httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("preflight = %d %q", w.Code, w.Body.String())
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("allow-origin = %q", w.Header().Get("Access-Control-Allow-Origin"))
	}

	w = httptest.NewRecorder()
	env.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated = %d", w.Code)
	}
}

func TestDocumentFlow(t *testing.T) {
	env := newTestEnv(t)
	id := env.upload(t, "march.pdf", "invoice")

	// process-document runs the worker synchronously
	w := env.doJSON(t, http.MethodPost, "/functions/v1/process-document", map[string]string{"documentId": id})
	if w.Code != http.StatusOK {
		t.Fatalf("process-document = %d %s", w.Code, w.Body.String())
	}
	var rpc struct {
		Success bool               `json:"success"`
		Data    types.InvoiceDraft `json:"data"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &rpc)
	if !rpc.Success || rpc.Data.SummaryText != "Two chairs" {
		t.Errorf("unexpected rpc body %s", w.Body.String())
	}

	// running it again is a conflict
	w = env.doJSON(t, http.MethodPost, "/functions/v1/process-document", map[string]string{"documentId": id})
	if w.Code != http.StatusConflict {
		t.Errorf("second process-document = %d", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/v1/documents/"+id+"/wait", nil, "")
	var status struct {
		Status types.DocumentStatus `json:"status"`
	}
	decodeData(t, w, &status)
	if status.Status != types.StatusReady {
		t.Fatalf("status = %s", status.Status)
	}

	w = env.do(t, http.MethodGet, "/api/v1/documents/"+id+"/draft", nil, "")
	var draft struct {
		Form types.CommitRequest `json:"form"`
	}
	decodeData(t, w, &draft)
	if draft.Form.TotalAmount != "150" || draft.Form.InvoiceNumber != "INV-7" {
		t.Errorf("unexpected form %+v", draft.Form)
	}

	// vendor missing
	w = env.doJSON(t, http.MethodPost, "/api/v1/documents/"+id+"/commit", map[string]any{"total_amount": 150})
	if w.Code != http.StatusBadRequest {
		t.Errorf("commit without vendor = %d", w.Code)
	}
	// bad date
	w = env.doJSON(t, http.MethodPost, "/api/v1/documents/"+id+"/commit", map[string]any{"vendor_name": "Acme Co", "due_date": "soon"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("commit with bad date = %d", w.Code)
	}

	form := draft.Form
	form.VendorName = "Acme Co"
	form.DueDate = "2030-01-15"
	w = env.doJSON(t, http.MethodPost, "/api/v1/documents/"+id+"/commit", form)
	var res service.CommitResult
	decodeData(t, w, &res)
	if res.Invoice == nil || res.Contract != nil || res.VendorID == "" {
		t.Fatalf("unexpected commit result %s", w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/api/v1/invoices", nil, "")
	var invoices []postgres.InvoiceRecord
	decodeData(t, w, &invoices)
	if len(invoices) != 1 || invoices[0].Vendor == nil || invoices[0].Vendor.Name != "Acme Co" {
		t.Errorf("unexpected invoices %s", w.Body.String())
	}

	w = env.doJSON(t, http.MethodPatch, "/api/v1/invoices/"+res.RecordID+"/payment-status", map[string]string{"payment_status": "paid"})
	if w.Code != http.StatusOK {
		t.Errorf("payment status = %d %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/api/v1/dashboard", nil, "")
	var stats types.DashboardStats
	decodeData(t, w, &stats)
	if stats.TotalInvoices != 1 || stats.TotalVendors != 1 || stats.PendingPayments != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}

	// committed documents cannot be cancelled
	w = env.do(t, http.MethodPost, "/api/v1/documents/"+id+"/cancel", nil, "")
	if w.Code != http.StatusConflict {
		t.Errorf("cancel saved = %d", w.Code)
	}
}

func TestCancelFlow(t *testing.T) {
	env := newTestEnv(t)
	id := env.upload(t, "scan.png", "invoice")

	if w := env.doJSON(t, http.MethodPost, "/functions/v1/process-document", map[string]string{"documentId": id}); w.Code != http.StatusOK {
		t.Fatalf("process-document = %d", w.Code)
	}
	w := env.do(t, http.MethodGet, "/api/v1/documents/"+id+"/download", nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("download url = %d", w.Code)
	}

	w = env.do(t, http.MethodPost, "/api/v1/documents/"+id+"/cancel", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("cancel = %d %s", w.Code, w.Body.String())
	}
	if len(env.objects.files) != 0 {
		t.Error("file should be removed from storage")
	}
	w = env.do(t, http.MethodGet, "/api/v1/documents/"+id, nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("get after cancel = %d", w.Code)
	}
}

func TestRPCErrors(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodPost, "/functions/v1/process-document", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing id = %d", w.Code)
	}
	w = env.doJSON(t, http.MethodPost, "/functions/v1/process-document", map[string]string{"documentId": uuid.NewString()})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown id = %d", w.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if _, ok := body["error"]; !ok {
		t.Errorf("rpc errors carry an error field: %s", w.Body.String())
	}

	w = env.doJSON(t, http.MethodPost, "/functions/v1/send-reminders", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if w.Code != http.StatusOK || body["success"] != true || body["reminders_sent"] != float64(0) {
		t.Errorf("send-reminders = %d %s", w.Code, w.Body.String())
	}
}

func TestProcessDocumentTimeout(t *testing.T) {
	env := newTestEnvWith(t, slowExtractor{}, 50*time.Millisecond)
	id := env.upload(t, "slow.pdf", "invoice")

	start := time.Now()
	w := env.doJSON(t, http.MethodPost, "/functions/v1/process-document", map[string]string{"documentId": id})
	if w.Code != http.StatusInternalServerError {
		t.Errorf("process-document = %d %s", w.Code, w.Body.String())
	}
	if took := time.Since(start); took > 5*time.Second {
		t.Errorf("request held for %v", took)
	}

	w = env.do(t, http.MethodGet, "/api/v1/documents/"+id+"/status", nil, "")
	var status struct {
		Status types.DocumentStatus `json:"status"`
	}
	decodeData(t, w, &status)
	if status.Status != types.StatusError {
		t.Errorf("status = %s, want error", status.Status)
	}
}

func TestUploadValidation(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("file_type", "receipt")
	part, _ := mw.CreateFormFile("file", "a.pdf")
	_, _ = part.Write([]byte("x"))
	_ = mw.Close()
	if w := env.do(t, http.MethodPost, "/api/v1/documents", &buf, mw.FormDataContentType()); w.Code != http.StatusBadRequest {
		t.Errorf("bad file_type = %d", w.Code)
	}

	buf.Reset()
	mw = multipart.NewWriter(&buf)
	_ = mw.WriteField("file_type", "invoice")
	_ = mw.Close()
	if w := env.do(t, http.MethodPost, "/api/v1/documents", &buf, mw.FormDataContentType()); w.Code != http.StatusBadRequest {
		t.Errorf("missing file = %d", w.Code)
	}
}
