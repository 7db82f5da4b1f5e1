package postgres

import (
	"context"
	"docuflow/types"
	"strings"

	"gorm.io/gorm"
)

type VendorRepo struct {
	db *gorm.DB
}

func NewVendorRepo(db *gorm.DB) *VendorRepo {
	return &VendorRepo{db: db}
}

func (r *VendorRepo) Create(ctx context.Context, v *Vendor) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *VendorRepo) Get(ctx context.Context, ownerID, id string) (*Vendor, error) {
	var v Vendor
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&v).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &v, nil
}

// List 按名称排序，q 非空时做不区分大小写的模糊匹配
func (r *VendorRepo) List(ctx context.Context, ownerID, q string) ([]Vendor, error) {
	tx := r.db.WithContext(ctx).Where("user_id = ?", ownerID)
	if q = strings.TrimSpace(q); q != "" {
		tx = tx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	var vendors []Vendor
	err := tx.Order("name ASC").Find(&vendors).Error
	return vendors, err
}

func (r *VendorRepo) Update(ctx context.Context, ownerID, id string, in types.VendorInput) (*Vendor, error) {
	res := r.db.WithContext(ctx).
		Model(&Vendor{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(map[string]any{
			"name":    strings.TrimSpace(in.Name),
			"email":   in.Email,
			"phone":   in.Phone,
			"address": in.Address,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, types.ErrNotFound
	}
	return r.Get(ctx, ownerID, id)
}

func (r *VendorRepo) Count(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Vendor{}).Where("user_id = ?", ownerID).Count(&n).Error
	return n, err
}
