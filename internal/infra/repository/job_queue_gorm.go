package repository

import (
	"context"
	"errors"
	"time"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/domain/model"
	repo "github.com/tropictechindo-project/TropicWeb2-sub002/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type JobQueueGormRepository struct {
	db *gorm.DB
}

func NewJobQueueGormRepository(db *gorm.DB) *JobQueueGormRepository {
	return &JobQueueGormRepository{db: db}
}

func (r *JobQueueGormRepository) Enqueue(ctx context.Context, e model.JobQueueEntry) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&e).Error; err != nil {
		return 0, err
	}
	return e.ID, nil
}

// run_atを過ぎた最古のPENDINGを行ロック付きで取得。
// 後続のMarkProcessingと同一Txで使う（select+markを1つの原子操作にする）
func (r *JobQueueGormRepository) FindOldestReadyForUpdate(ctx context.Context, now time.Time) (model.JobQueueEntry, bool, error) {
	var e model.JobQueueEntry
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("status = ? AND run_at <= ?", model.JobStatusPending, now).
		Order("run_at asc, id asc").
		First(&e).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 実行対象なしは正常
		return model.JobQueueEntry{}, false, nil
	}
	if err != nil {
		return model.JobQueueEntry{}, false, err
	}
	return e, true, nil
}

// PENDINGのときだけPROCESSINGへ
func (r *JobQueueGormRepository) MarkProcessing(ctx context.Context, id int64, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.JobQueueEntry{}).
		Where("id = ? AND status = ?", id, model.JobStatusPending).
		Updates(map[string]interface{}{
			"status":    model.JobStatusProcessing,
			"locked_at": at,
		})

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

func (r *JobQueueGormRepository) MarkDone(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Model(&model.JobQueueEntry{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":    model.JobStatusDone,
			"locked_at": nil,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *JobQueueGormRepository) Requeue(ctx context.Context, id int64, runAt time.Time, lastError string) error {
	res := r.db.WithContext(ctx).Model(&model.JobQueueEntry{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      model.JobStatusPending,
			"retry_count": gorm.Expr("retry_count + 1"),
			"run_at":      runAt,
			"last_error":  lastError,
			"locked_at":   nil,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *JobQueueGormRepository) MarkFailed(ctx context.Context, id int64, lastError string) error {
	res := r.db.WithContext(ctx).Model(&model.JobQueueEntry{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     model.JobStatusFailed,
			"last_error": lastError,
			"locked_at":  nil,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// リース切れのPROCESSINGをPENDINGに戻す。retry_countは増やさない
func (r *JobQueueGormRepository) ReclaimExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.JobQueueEntry{}).
		Where("status = ? AND locked_at < ?", model.JobStatusProcessing, cutoff).
		Updates(map[string]interface{}{
			"status":     model.JobStatusPending,
			"locked_at":  nil,
			"last_error": "processing lease expired, reclaimed",
		})

	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
