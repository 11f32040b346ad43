package repository

import (
	"context"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/domain/model"
)

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)

	// 現在statusが一致するときだけ更新（同時更新ガード）
	UpdateStatusFrom(ctx context.Context, orderID int64, from, to model.OrderStatus) (bool, error)
}

type OrderItemRepository interface {
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}
