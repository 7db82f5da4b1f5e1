package postgres

import (
	"context"
	"docuflow/types"

	"gorm.io/gorm"
)

type AlertRepo struct {
	db *gorm.DB
}

func NewAlertRepo(db *gorm.DB) *AlertRepo {
	return &AlertRepo{db: db}
}

// CreateBatch 一次插入所有提醒
func (r *AlertRepo) CreateBatch(ctx context.Context, alerts []Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(alerts, 100).Error
}

func (r *AlertRepo) List(ctx context.Context, ownerID string, limit int) ([]Alert, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var alerts []Alert
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&alerts).Error
	return alerts, err
}

func (r *AlertRepo) MarkRead(ctx context.Context, ownerID, id string) error {
	res := r.db.WithContext(ctx).
		Model(&Alert{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (r *AlertRepo) CountUnread(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Alert{}).
		Where("user_id = ? AND is_read = ?", ownerID, false).
		Count(&n).Error
	return n, err
}
