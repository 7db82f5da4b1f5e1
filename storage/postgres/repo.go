package postgres

import (
	"context"
	"docuflow/types"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Store 聚合所有 repo，事务内通过 Transaction 拿到绑定同一个 tx 的副本
type Store struct {
	db        *gorm.DB
	Documents *DocumentRepo
	Vendors   *VendorRepo
	Invoices  *InvoiceRepo
	Contracts *ContractRepo
	Alerts    *AlertRepo
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:        db,
		Documents: NewDocumentRepo(db),
		Vendors:   NewVendorRepo(db),
		Invoices:  NewInvoiceRepo(db),
		Contracts: NewContractRepo(db),
		Alerts:    NewAlertRepo(db),
	}
}

// Transaction runs fn against a Store bound to one database transaction.
// Any error returned by fn rolls every write back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func (s *Store) DB() *gorm.DB { return s.db }

// Close 关闭底层连接池
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.ErrNotFound
	}
	return err
}

// DateOnly 截断到 UTC 零点，所有 date 列都按这个形式读写
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// documentColumns 关联查询文档时不带 draft_data
func documentColumns(db *gorm.DB) *gorm.DB {
	return db.Select("id", "user_id", "file_name", "file_path", "file_type", "status", "created_at", "updated_at")
}
