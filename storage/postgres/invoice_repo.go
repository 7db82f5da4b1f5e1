package postgres

import (
	"context"
	"docuflow/types"
	"time"

	"gorm.io/gorm"
)

type InvoiceRepo struct {
	db *gorm.DB
}

func NewInvoiceRepo(db *gorm.DB) *InvoiceRepo {
	return &InvoiceRepo{db: db}
}

func (r *InvoiceRepo) Create(ctx context.Context, rec *InvoiceRecord) error {
	return r.db.WithContext(ctx).Omit("Vendor", "Document").Create(rec).Error
}

func (r *InvoiceRepo) Get(ctx context.Context, ownerID, id string) (*InvoiceRecord, error) {
	var rec InvoiceRecord
	err := r.db.WithContext(ctx).
		Preload("Vendor").
		Preload("Document", documentColumns).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&rec).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &rec, nil
}

// List 最新的在前，带供应商名和原始文件路径
func (r *InvoiceRepo) List(ctx context.Context, ownerID string) ([]InvoiceRecord, error) {
	var recs []InvoiceRecord
	err := r.db.WithContext(ctx).
		Preload("Vendor").
		Preload("Document", documentColumns).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&recs).Error
	return recs, err
}

func (r *InvoiceRepo) UpdatePaymentStatus(ctx context.Context, ownerID, id, status string) error {
	res := r.db.WithContext(ctx).
		Model(&InvoiceRecord{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Update("payment_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.ErrNotFound
	}
	return nil
}

// FindDueBetween 所有用户中 pending 且到期日落在 [from, to] 的发票（提醒任务用）
func (r *InvoiceRepo) FindDueBetween(ctx context.Context, from, to time.Time) ([]InvoiceRecord, error) {
	var recs []InvoiceRecord
	err := r.db.WithContext(ctx).
		Preload("Vendor").
		Where("payment_status = ? AND due_date >= ? AND due_date <= ?",
			types.PaymentPending, DateOnly(from), DateOnly(to)).
		Order("due_date ASC").
		Find(&recs).Error
	return recs, err
}

func (r *InvoiceRepo) Count(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&InvoiceRecord{}).Where("user_id = ?", ownerID).Count(&n).Error
	return n, err
}

func (r *InvoiceRepo) CountByPaymentStatus(ctx context.Context, ownerID, status string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&InvoiceRecord{}).
		Where("user_id = ? AND payment_status = ?", ownerID, status).
		Count(&n).Error
	return n, err
}

// CountDueBetween 首页 "即将到期"：未付款且到期日在区间内
func (r *InvoiceRepo) CountDueBetween(ctx context.Context, ownerID string, from, to time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&InvoiceRecord{}).
		Where("user_id = ? AND payment_status = ? AND due_date >= ? AND due_date <= ?",
			ownerID, types.PaymentPending, DateOnly(from), DateOnly(to)).
		Count(&n).Error
	return n, err
}
