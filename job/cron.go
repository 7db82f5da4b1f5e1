package job

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReminderSweeper 到期提醒
type ReminderSweeper interface {
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// ContractExpirer 把过期合同标记为 expired
type ContractExpirer interface {
	ExpireContracts(ctx context.Context, now time.Time) (int64, error)
}

type Schedule struct {
	Reminders      string
	ContractExpiry string
	// 单次执行超时
	Timeout time.Duration
}

// StartCronJob registers the periodic jobs and starts the scheduler.
// Specs use the seconds field, e.g. "0 0 8 * * *".
func StartCronJob(s Schedule, reminders ReminderSweeper, contracts ContractExpirer, log *zap.Logger) (*cron.Cron, error) {
	log = log.Named("cron")
	if s.Timeout <= 0 {
		s.Timeout = 5 * time.Minute
	}
	c := cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC))

	if reminders != nil && s.Reminders != "" {
		_, err := c.AddFunc(s.Reminders, func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
			defer cancel()
			n, err := reminders.Sweep(ctx, time.Now())
			if err != nil {
				log.Error("reminder sweep failed", zap.Error(err))
				return
			}
			log.Info("reminder sweep done", zap.Int("alerts", n))
		})
		if err != nil {
			return nil, err
		}
	}

	if contracts != nil && s.ContractExpiry != "" {
		// 默认每天凌晨 2 点
		_, err := c.AddFunc(s.ContractExpiry, func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
			defer cancel()
			rows, err := contracts.ExpireContracts(ctx, time.Now())
			if err != nil {
				log.Error("expire contracts failed", zap.Error(err))
				return
			}
			log.Info("contracts expired", zap.Int64("rows", rows))
		})
		if err != nil {
			return nil, err
		}
	}

	c.Start()
	return c, nil
}
