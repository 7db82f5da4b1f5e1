package postgres

import (
	"context"
	"docuflow/types"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentRepo struct {
	db *gorm.DB
}

func NewDocumentRepo(db *gorm.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Create 新文档一律从 processing 开始
func (r *DocumentRepo) Create(ctx context.Context, doc *Document) error {
	doc.Status = types.StatusProcessing
	return r.db.WithContext(ctx).Create(doc).Error
}

// Get 按 owner 查询，跨用户访问视为不存在
func (r *DocumentRepo) Get(ctx context.Context, ownerID, id string) (*Document, error) {
	var doc Document
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&doc).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &doc, nil
}

// GetByID is used by the extraction worker, which acts on behalf of the system.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*Document, error) {
	var doc Document
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &doc, nil
}

func (r *DocumentRepo) ListRecent(ctx context.Context, ownerID string, limit int) ([]Document, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var docs []Document
	err := r.db.WithContext(ctx).
		Omit("draft_data").
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&docs).Error
	return docs, err
}

// MarkReady processing -> ready, storing the validated draft.
func (r *DocumentRepo) MarkReady(ctx context.Context, id string, draft types.Draft) error {
	raw, err := draft.MarshalJSON()
	if err != nil {
		return err
	}
	return r.transition(ctx, id, types.StatusProcessing, types.StatusReady, map[string]any{
		"draft_data": datatypes.JSON(raw),
		"error_msg":  nil,
	})
}

// MarkError processing -> error.
func (r *DocumentRepo) MarkError(ctx context.Context, id, msg string) error {
	return r.transition(ctx, id, types.StatusProcessing, types.StatusError, map[string]any{
		"error_msg": msg,
	})
}

// MarkSaved ready -> saved; draft_data is left in place but no longer read.
func (r *DocumentRepo) MarkSaved(ctx context.Context, id string) error {
	return r.transition(ctx, id, types.StatusReady, types.StatusSaved, nil)
}

// DeleteReady removes a ready document row (cancel). Any other status is rejected.
func (r *DocumentRepo) DeleteReady(ctx context.Context, ownerID, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND status = ?", id, ownerID, types.StatusReady).
		Delete(&Document{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		doc, err := r.Get(ctx, ownerID, id)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: document is %s, only ready documents can be cancelled", types.ErrInvalidTransition, doc.Status)
	}
	return nil
}

// transition 条件更新：WHERE status = from，并发下只有一个写入能成功
func (r *DocumentRepo) transition(ctx context.Context, id string, from, to types.DocumentStatus, extra map[string]any) error {
	if !types.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", types.ErrInvalidTransition, from, to)
	}
	updates := map[string]any{"status": to}
	for k, v := range extra {
		updates[k] = v
	}
	res := r.db.WithContext(ctx).
		Model(&Document{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.explainMiss(ctx, id, from)
	}
	return nil
}

func (r *DocumentRepo) explainMiss(ctx context.Context, id string, expected types.DocumentStatus) error {
	doc, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: document is %s, expected %s", types.ErrInvalidTransition, doc.Status, expected)
}
