package service

import (
	"context"
	"docuflow/config"
	"docuflow/storage/postgres"
	"docuflow/types"
	"time"

	"go.uber.org/zap"
)

// DocumentFinder is the read side the poller needs.
type DocumentFinder interface {
	Get(ctx context.Context, ownerID, id string) (*postgres.Document, error)
}

// Poller 轮询文档直到提取结束（ready / error），有次数和总时长上限
type Poller struct {
	docs DocumentFinder
	cfg  config.PollerConfig
	log  *zap.Logger
}

func NewPoller(docs DocumentFinder, cfg config.PollerConfig, log *zap.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 2 * time.Second
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 1
	}
	if cfg.MaxInterval < cfg.Interval {
		cfg.MaxInterval = cfg.Interval
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Poller{docs: docs, cfg: cfg, log: log.Named("poller")}
}

// Wait re-fetches the document until extraction has settled. It returns
// types.ErrPollTimeout once the attempt or time budget is spent, and the
// caller's ctx error if ctx is cancelled first.
func (p *Poller) Wait(ctx context.Context, ownerID, id string) (*postgres.Document, error) {
	pctx := ctx
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	interval := p.cfg.Interval
	timer := time.NewTimer(interval)
	defer timer.Stop()
	timer.Stop()

	for attempt := 1; ; attempt++ {
		doc, err := p.docs.Get(pctx, ownerID, id)
		if err != nil {
			if pctx.Err() != nil {
				return nil, p.expired(ctx)
			}
			return nil, err
		}
		if doc.Status.Settled() {
			return doc, nil
		}
		if attempt >= p.cfg.MaxAttempts {
			p.log.Warn("poll attempts exhausted", zap.String("document_id", id), zap.Int("attempts", attempt))
			return nil, types.ErrPollTimeout
		}

		timer.Reset(interval)
		select {
		case <-pctx.Done():
			return nil, p.expired(ctx)
		case <-timer.C:
		}

		interval = time.Duration(float64(interval) * p.cfg.Multiplier)
		if interval > p.cfg.MaxInterval {
			interval = p.cfg.MaxInterval
		}
	}
}

// expired 区分调用方取消和轮询超时
func (p *Poller) expired(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return types.ErrPollTimeout
}
