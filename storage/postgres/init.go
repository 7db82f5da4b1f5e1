package postgres

import (
	"fmt"
	"strings"
	"time"

	"docuflow/config"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB 初始化数据库连接并迁移表结构
// dsn 格式: "host=localhost user=postgres password=root dbname=mydb port=5432 sslmode=disable"
// 以 "sqlite:" 开头时使用本地 SQLite（单机/开发）
func InitDB(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.LogSQL {
		level = logger.Info // 开发阶段开启日志，方便看 SQL
	}

	if path, ok := strings.CutPrefix(cfg.DSN, "sqlite:"); ok {
		db, err := OpenSQLite(path, level)
		if err != nil {
			return nil, err
		}
		log.Info("database connected", zap.String("dialect", "sqlite"), zap.String("path", path))
		return db, nil
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("connect db failed: %w", err)
	}

	// 设置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("database connected", zap.String("dialect", "postgres"))
	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Document{}, &Vendor{}, &InvoiceRecord{}, &ContractRecord{}, &Alert{}); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}
