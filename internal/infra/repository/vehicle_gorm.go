package repository

import (
	"context"
	"errors"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/domain/model"
	repo "github.com/tropictechindo-project/TropicWeb2-sub002/internal/repository"

	"gorm.io/gorm"
)

type VehicleGormRepository struct {
	db *gorm.DB
}

func NewVehicleGormRepository(db *gorm.DB) *VehicleGormRepository {
	return &VehicleGormRepository{db: db}
}

func (r *VehicleGormRepository) FindByID(ctx context.Context, vehicleID int64) (model.Vehicle, error) {
	var v model.Vehicle
	err := r.db.WithContext(ctx).Where("id = ?", vehicleID).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Vehicle{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Vehicle{}, err
	}
	return v, nil
}

// AVAILABLEのときだけ取得できる
func (r *VehicleGormRepository) Acquire(ctx context.Context, vehicleID int64, deliveryID int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Vehicle{}).
		Where("id = ? AND status = ?", vehicleID, model.VehicleStatusAvailable).
		Updates(map[string]interface{}{
			"status":              model.VehicleStatusInUse,
			"current_delivery_id": deliveryID,
		})

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

// 該当配送に割り当たっているときだけ解放する
func (r *VehicleGormRepository) Release(ctx context.Context, vehicleID int64, deliveryID int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Vehicle{}).
		Where("id = ? AND current_delivery_id = ?", vehicleID, deliveryID).
		Updates(map[string]interface{}{
			"status":              model.VehicleStatusAvailable,
			"current_delivery_id": nil,
		})

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}
