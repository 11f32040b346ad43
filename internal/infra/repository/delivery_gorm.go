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

type DeliveryGormRepository struct {
	db *gorm.DB
}

func NewDeliveryGormRepository(db *gorm.DB) *DeliveryGormRepository {
	return &DeliveryGormRepository{db: db}
}

func (r *DeliveryGormRepository) FindByID(ctx context.Context, deliveryID int64) (model.Delivery, error) {
	var d model.Delivery
	err := r.db.WithContext(ctx).Where("id = ?", deliveryID).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Delivery{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Delivery{}, err
	}
	return d, nil
}

// 行ロック付き取得。ガード判定と書き込みを同一Txで行うときに使う
func (r *DeliveryGormRepository) FindByIDForUpdate(ctx context.Context, deliveryID int64) (model.Delivery, error) {
	var d model.Delivery
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", deliveryID).
		First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Delivery{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Delivery{}, err
	}
	return d, nil
}

// 未クレームのプール
func (r *DeliveryGormRepository) ListQueued(ctx context.Context) ([]model.Delivery, error) {
	var ds []model.Delivery
	err := r.db.WithContext(ctx).
		Where("status = ? AND claimed_by_user_id IS NULL", model.DeliveryStatusQueued).
		Order("scheduled_date asc, id asc").
		Find(&ds).Error
	if err != nil {
		return []model.Delivery{}, err
	}
	return ds, nil
}

func (r *DeliveryGormRepository) ListByClaimant(ctx context.Context, workerID int64) ([]model.Delivery, error) {
	var ds []model.Delivery
	err := r.db.WithContext(ctx).
		Where("claimed_by_user_id = ?", workerID).
		Order("scheduled_date asc, id asc").
		Find(&ds).Error
	if err != nil {
		return []model.Delivery{}, err
	}
	return ds, nil
}

func (r *DeliveryGormRepository) Create(ctx context.Context, d model.Delivery) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&d).Error; err != nil {
		return 0, err
	}
	return d.ID, nil
}

func (r *DeliveryGormRepository) CreateItems(ctx context.Context, deliveryID int64, items []model.DeliveryItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].DeliveryID = deliveryID
		items[i].Position = i
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *DeliveryGormRepository) ListItems(ctx context.Context, deliveryID int64) ([]model.DeliveryItem, error) {
	var items []model.DeliveryItem
	err := r.db.WithContext(ctx).
		Where("delivery_id = ?", deliveryID).
		Order("position asc").
		Find(&items).Error
	if err != nil {
		return []model.DeliveryItem{}, err
	}
	return items, nil
}

// QUEUEDかつ未クレームのときだけ取得させる。
// ガードと書き込みを1文にして、同時クレームの勝者を1人にする
func (r *DeliveryGormRepository) Claim(ctx context.Context, deliveryID int64, workerID int64, vehicleID int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Delivery{}).
		Where("id = ? AND status = ? AND claimed_by_user_id IS NULL",
			deliveryID, model.DeliveryStatusQueued).
		Updates(map[string]interface{}{
			"status":             model.DeliveryStatusClaimed,
			"claimed_by_user_id": workerID,
			"vehicle_id":         vehicleID,
		})

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

func (r *DeliveryGormRepository) UpdateStatusFrom(ctx context.Context, deliveryID int64, from, to model.DeliveryStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Delivery{}).
		Where("id = ? AND status = ?", deliveryID, from).
		Update("status", to)

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

// クレーム本人かつ未完了のときだけCOMPLETEDへ
func (r *DeliveryGormRepository) Complete(ctx context.Context, deliveryID int64, workerID int64, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Delivery{}).
		Where("id = ? AND claimed_by_user_id = ? AND status NOT IN ?",
			deliveryID, workerID,
			[]model.DeliveryStatus{model.DeliveryStatusCompleted, model.DeliveryStatusCanceled}).
		Updates(map[string]interface{}{
			"status":       model.DeliveryStatusCompleted,
			"completed_at": at,
		})

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

type DeliveryLogGormRepository struct {
	db *gorm.DB
}

func NewDeliveryLogGormRepository(db *gorm.DB) *DeliveryLogGormRepository {
	return &DeliveryLogGormRepository{db: db}
}

func (r *DeliveryLogGormRepository) Create(ctx context.Context, l model.DeliveryLog) error {
	return r.db.WithContext(ctx).Create(&l).Error
}

func (r *DeliveryLogGormRepository) ListByDeliveryID(ctx context.Context, deliveryID int64) ([]model.DeliveryLog, error) {
	var logs []model.DeliveryLog
	err := r.db.WithContext(ctx).
		Where("delivery_id = ?", deliveryID).
		Order("id asc").
		Find(&logs).Error
	if err != nil {
		return []model.DeliveryLog{}, err
	}
	return logs, nil
}
