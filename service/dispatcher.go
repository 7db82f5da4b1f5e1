package service

import (
	"context"
	"docuflow/pkg/metrics"
	"docuflow/types"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

var ErrDispatcherClosed = errors.New("dispatcher is shut down")

// Processor runs extraction for one document. Fail writes the terminal error
// status for a document that was never processed.
type Processor interface {
	Process(ctx context.Context, documentID string) (types.Draft, error)
	Fail(ctx context.Context, documentID string, cause error) error
}

// Task is a handle to one background extraction.
type Task struct {
	ID         string
	DocumentID string

	done chan struct{}
	err  error
}

// Done is closed when the task has finished, successfully or not.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err 任务结束后才有意义
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Dispatcher 后台执行提取任务，并发数由信号量限制
type Dispatcher struct {
	proc    Processor
	sem     *semaphore.Weighted
	timeout time.Duration
	log     *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewDispatcher(proc Processor, concurrency int, timeout time.Duration, log *zap.Logger) *Dispatcher {
	if concurrency < 1 {
		concurrency = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		proc:    proc,
		sem:     semaphore.NewWeighted(int64(concurrency)),
		timeout: timeout,
		log:     log.Named("dispatcher"),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Enqueue starts processing in the background and returns immediately.
func (d *Dispatcher) Enqueue(documentID string) *Task {
	t := &Task{ID: uuid.NewString(), DocumentID: documentID, done: make(chan struct{})}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		t.err = ErrDispatcherClosed
		close(t.done)
		return t
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go d.run(t)
	return t
}

func (d *Dispatcher) run(t *Task) {
	defer d.wg.Done()
	defer close(t.done)

	if err := d.sem.Acquire(d.ctx, 1); err != nil {
		t.err = err
		d.log.Warn("task dropped before start", zap.String("document_id", t.DocumentID), zap.Error(err))
		// 排队中被关停：文档不能停在 processing
		if ferr := d.proc.Fail(d.ctx, t.DocumentID, fmt.Errorf("extraction not started: %w", err)); ferr != nil {
			d.log.Error("mark dropped document failed", zap.String("document_id", t.DocumentID), zap.Error(ferr))
		}
		return
	}
	defer d.sem.Release(1)

	metrics.TasksInFlight.Inc()
	defer metrics.TasksInFlight.Dec()

	ctx := d.ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	_, t.err = d.proc.Process(ctx, t.DocumentID)
	if t.err != nil {
		d.log.Warn("task failed", zap.String("task_id", t.ID), zap.String("document_id", t.DocumentID), zap.Error(t.err))
		return
	}
	d.log.Debug("task done", zap.String("task_id", t.ID), zap.String("document_id", t.DocumentID))
}

// Shutdown stops accepting tasks and waits for running ones. When ctx expires
// first, in-flight tasks are cancelled and ctx.Err() is returned.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	waited := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(waited)
	}()

	select {
	case <-waited:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-waited
		return ctx.Err()
	}
}
