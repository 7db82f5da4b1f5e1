package service

import (
	"context"
	"docuflow/pkg/metrics"
	"docuflow/storage/lock"
	"docuflow/storage/postgres"
	"docuflow/types"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// 失败状态写回的超时，和任务本身的 ctx 无关
const failWriteTimeout = 10 * time.Second

// ExtractionWorker processes one document: download, extract, store the draft.
// Every failure after the document is loaded ends in status=error.
type ExtractionWorker struct {
	store     *postgres.Store
	objects   ObjectStore
	extractor Extractor
	locker    lock.Locker
	log       *zap.Logger
}

func NewExtractionWorker(store *postgres.Store, objects ObjectStore, extractor Extractor, locker lock.Locker, log *zap.Logger) *ExtractionWorker {
	return &ExtractionWorker{
		store:     store,
		objects:   objects,
		extractor: extractor,
		locker:    locker,
		log:       log.Named("worker"),
	}
}

func (w *ExtractionWorker) Process(ctx context.Context, documentID string) (types.Draft, error) {
	release, ok, err := w.locker.Acquire(ctx, "extract:"+documentID)
	if err != nil {
		return types.Draft{}, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return types.Draft{}, types.ErrAlreadyProcessing
	}
	defer release()

	doc, err := w.store.Documents.GetByID(ctx, documentID)
	if err != nil {
		return types.Draft{}, err
	}
	if doc.Status != types.StatusProcessing {
		return types.Draft{}, fmt.Errorf("%w: document is %s", types.ErrInvalidTransition, doc.Status)
	}

	log := w.log.With(zap.String("document_id", doc.ID), zap.String("type", string(doc.FileType)))
	start := time.Now()
	defer func() {
		metrics.ExtractionDuration.WithLabelValues(string(doc.FileType)).Observe(time.Since(start).Seconds())
	}()

	draft, err := w.extract(ctx, doc)
	if err == nil {
		err = w.store.Documents.MarkReady(ctx, doc.ID, draft)
	}
	if err != nil {
		w.fail(ctx, doc, err, log)
		return types.Draft{}, err
	}

	metrics.ExtractionTotal.WithLabelValues(string(doc.FileType), "ready").Inc()
	metrics.ConfidenceScore.Observe(draft.ConfidenceScore())
	log.Info("document ready",
		zap.Float64("confidence", draft.ConfidenceScore()),
		zap.Duration("took", time.Since(start)),
	)
	return draft, nil
}

func (w *ExtractionWorker) extract(ctx context.Context, doc *postgres.Document) (types.Draft, error) {
	data, err := w.objects.Get(ctx, doc.FilePath)
	if err != nil {
		return types.Draft{}, fmt.Errorf("failed to download file: %w", err)
	}
	return w.extractor.Extract(ctx, doc.FileType, doc.FileName, data)
}

// fail 写 status=error；任务 ctx 可能已超时，所以另起一个
func (w *ExtractionWorker) fail(ctx context.Context, doc *postgres.Document, cause error, log *zap.Logger) {
	metrics.ExtractionTotal.WithLabelValues(string(doc.FileType), "error").Inc()
	log.Error("extraction failed", zap.Error(cause))

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failWriteTimeout)
	defer cancel()
	if err := w.store.Documents.MarkError(wctx, doc.ID, cause.Error()); err != nil {
		log.Error("mark document error failed", zap.Error(err))
	}
}

// Fail marks a document whose extraction never started as failed, e.g. a task
// still queued when the dispatcher shuts down.
func (w *ExtractionWorker) Fail(ctx context.Context, documentID string, cause error) error {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failWriteTimeout)
	defer cancel()
	if err := w.store.Documents.MarkError(wctx, documentID, cause.Error()); err != nil {
		return err
	}
	w.log.Warn("document failed before extraction", zap.String("document_id", documentID), zap.Error(cause))
	return nil
}
