package postgres

import (
	"context"
	"docuflow/types"
	"time"

	"gorm.io/gorm"
)

// ContractRepo 封装对 contract_data 表的所有操作
type ContractRepo struct {
	db *gorm.DB
}

func NewContractRepo(db *gorm.DB) *ContractRepo {
	return &ContractRepo{db: db}
}

func (r *ContractRepo) Create(ctx context.Context, rec *ContractRecord) error {
	return r.db.WithContext(ctx).Omit("Vendor", "Document").Create(rec).Error
}

func (r *ContractRepo) Get(ctx context.Context, ownerID, id string) (*ContractRecord, error) {
	var rec ContractRecord
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

func (r *ContractRepo) List(ctx context.Context, ownerID string) ([]ContractRecord, error) {
	var recs []ContractRecord
	err := r.db.WithContext(ctx).
		Preload("Vendor").
		Preload("Document", documentColumns).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&recs).Error
	return recs, err
}

// ExpireContracts 用于定时任务批量更新过期状态
func (r *ContractRepo) ExpireContracts(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&ContractRecord{}).
		Where("status = ? AND end_date < ?", types.ContractActive, DateOnly(now)).
		Update("status", types.ContractExpired)
	return result.RowsAffected, result.Error
}
