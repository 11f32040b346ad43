package repository

import (
	"context"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/domain/model"
)

type VehicleRepository interface {
	FindByID(ctx context.Context, vehicleID int64) (model.Vehicle, error)

	// AVAILABLEのときだけIN_USEへ。falseなら他の配送に取られている
	Acquire(ctx context.Context, vehicleID int64, deliveryID int64) (bool, error)

	// 該当配送に割り当たっているときだけ解放
	Release(ctx context.Context, vehicleID int64, deliveryID int64) (bool, error)
}
