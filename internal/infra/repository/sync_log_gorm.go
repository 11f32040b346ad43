package repository

import (
	"context"
	"errors"
	"time"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/domain/model"
	repo "github.com/tropictechindo-project/TropicWeb2-sub002/internal/repository"

	"gorm.io/gorm"
)

type SyncLogGormRepository struct {
	db *gorm.DB
}

func NewSyncLogGormRepository(db *gorm.DB) *SyncLogGormRepository {
	return &SyncLogGormRepository{db: db}
}

func (r *SyncLogGormRepository) Create(ctx context.Context, e model.InventorySyncLogEntry) error {
	return r.db.WithContext(ctx).Create(&e).Error
}

func (r *SyncLogGormRepository) FindByID(ctx context.Context, id int64) (model.InventorySyncLogEntry, error) {
	var e model.InventorySyncLogEntry
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.InventorySyncLogEntry{}, repo.ErrNotFound
	}
	if err != nil {
		return model.InventorySyncLogEntry{}, err
	}
	return e, nil
}

// 未解消のコンフリクト一覧（古い順）
func (r *SyncLogGormRepository) ListUnresolved(ctx context.Context, limit int) ([]model.InventorySyncLogEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var entries []model.InventorySyncLogEntry
	err := r.db.WithContext(ctx).
		Where("conflict = ? AND resolved = ?", true, false).
		Order("id asc").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return []model.InventorySyncLogEntry{}, err
	}
	return entries, nil
}

// 未解消のときだけresolvedにする
func (r *SyncLogGormRepository) Resolve(ctx context.Context, id int64, adminID int64, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.InventorySyncLogEntry{}).
		Where("id = ? AND resolved = ?", id, false).
		Updates(map[string]interface{}{
			"resolved":            true,
			"resolved_by_user_id": adminID,
			"resolved_at":         at,
		})

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}
