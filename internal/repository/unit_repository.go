package repository

import (
	"context"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/domain/model"
)

type UnitRepository interface {
	FindByID(ctx context.Context, unitID int64) (model.Unit, error)
	ListByOrderID(ctx context.Context, orderID int64) ([]model.Unit, error)
	ListByVariantID(ctx context.Context, variantID int64) ([]model.Unit, error)
	CreateBulk(ctx context.Context, units []model.Unit) error

	// 現在statusが一致するときだけ遷移させる（同時更新ガード）。
	// assignedOrderID は遷移後の値（RESERVED/RENTED以外はnil）。
	UpdateStatusIfCurrent(ctx context.Context, unitID int64, from, to model.UnitStatus, assignedOrderID *int64) (bool, error)

	// stock = AVAILABLE + RESERVED の実数、reserved = RESERVED の実数
	CountByVariant(ctx context.Context, variantID int64) (stock int64, reserved int64, err error)
}

type UnitHistoryRepository interface {
	Create(ctx context.Context, h model.UnitHistory) error
	ListByUnitID(ctx context.Context, unitID int64) ([]model.UnitHistory, error)
}
