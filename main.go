package main

import (
	"context"
	"docuflow/api/handler"
	"docuflow/api/router"
	"docuflow/config"
	"docuflow/job"
	"docuflow/logic/chat"
	"docuflow/logic/extract"
	"docuflow/pkg/logger"
	"docuflow/pkg/metrics"
	"docuflow/pkg/retry"
	"docuflow/service"
	"docuflow/service/mailer"
	"docuflow/storage/es"
	"docuflow/storage/lock"
	"docuflow/storage/objectstore"
	"docuflow/storage/postgres"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register(prometheus.DefaultRegisterer)

	// 1. 初始化 DB
	db, err := postgres.InitDB(cfg.Database, zlog)
	if err != nil {
		return err
	}
	store := postgres.NewStore(db)
	defer store.Close()

	// 2. 对象存储
	objects, err := objectstore.NewMinioStore(cfg.Storage)
	if err != nil {
		return err
	}
	if err := objects.EnsureBucket(ctx); err != nil {
		return err
	}

	// 3. 文档锁：有 redis 用分布式锁，否则进程内
	var locker lock.Locker = lock.NewLocalLocker()
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = lock.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, cfg.Worker.LockTTL)
		zlog.Info("redis lock enabled", zap.String("addr", cfg.Redis.Addr))
	}

	// 4. ES 检索（可选）
	var index service.RecordIndex
	if len(cfg.Elasticsearch.Addresses) > 0 {
		idx, err := es.NewRecordIndex(ctx, cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Index, zlog)
		if err != nil {
			zlog.Warn("elasticsearch disabled", zap.Error(err))
		} else {
			index = idx
		}
	}

	// 5. 初始化 LLM Model + 提取器
	cm, err := chat.New(ctx, cfg.LLM)
	if err != nil {
		return err
	}
	retryCfg := retry.DefaultConfig()
	if cfg.LLM.Retries > 0 {
		retryCfg.MaxAttempts = cfg.LLM.Retries
	}
	opts := []extract.Option{extract.WithRetry(retryCfg)}
	if !cfg.LLM.Vision {
		p, err := extract.NewPDFParser(ctx)
		if err != nil {
			return err
		}
		opts = append(opts, extract.WithTextFallback(p))
	}
	extractor, err := extract.New(cm, zlog, opts...)
	if err != nil {
		return err
	}

	// 6. 邮件（可选）
	var mail service.Mailer
	if cfg.Email.Enabled() {
		m, err := mailer.NewResendMailer(cfg.Email.APIKey, cfg.Email.From, "", zlog)
		if err != nil {
			return err
		}
		mail = m
	}

	// 7. 初始化 Service (业务层)
	worker := service.NewExtractionWorker(store, objects, extractor, locker, zlog)
	dispatcher := service.NewDispatcher(worker, cfg.Worker.Concurrency, cfg.Worker.TaskTimeout, zlog)
	reminders := service.NewReminderService(store, mail, cfg.Email.To, cfg.Reminders.WindowDays, zlog)

	h := handler.NewHandler(handler.Deps{
		Documents: service.NewDocumentService(store, objects, dispatcher, cfg.Storage.URLTTL, zlog),
		Review:    service.NewReviewService(store, objects, index, zlog),
		Poller:    service.NewPoller(store.Documents, cfg.Poller, zlog),
		Worker:    worker,
		Reminders: reminders,
		Vendors:   service.NewVendorService(store),
		Records:   service.NewRecordService(store),
		Alerts:    service.NewAlertService(store),
		Dashboard: service.NewDashboardService(store, index),

		MaxUpload:   cfg.Server.MaxUploadMB << 20,
		TaskTimeout: cfg.Worker.TaskTimeout,
	})

	// 8. 定时任务
	schedule := job.Schedule{ContractExpiry: cfg.Reminders.ExpirySchedule}
	if cfg.Reminders.Enabled {
		schedule.Reminders = cfg.Reminders.Schedule
	}
	scheduler, err := job.StartCronJob(schedule, reminders, store.Contracts, zlog)
	if err != nil {
		return fmt.Errorf("start cron: %w", err)
	}

	// 9. 启动 Web Server
	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router.New(router.Config{JWTSecret: cfg.Auth.JWTSecret, Logger: zlog.Named("http")}, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	zlog.Info("shutting down")

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		zlog.Warn("http shutdown", zap.Error(err))
	}
	<-scheduler.Stop().Done()
	if err := dispatcher.Shutdown(sctx); err != nil {
		zlog.Warn("dispatcher shutdown", zap.Error(err))
	}
	return nil
}
