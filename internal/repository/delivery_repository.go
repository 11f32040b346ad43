package repository

import (
	"context"
	"time"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/domain/model"
)

type DeliveryRepository interface {
	FindByID(ctx context.Context, deliveryID int64) (model.Delivery, error)

	// FOR UPDATEで行ロックして取得。ガード判定はこの行に対して行う
	FindByIDForUpdate(ctx context.Context, deliveryID int64) (model.Delivery, error)

	ListQueued(ctx context.Context) ([]model.Delivery, error)
	ListByClaimant(ctx context.Context, workerID int64) ([]model.Delivery, error)

	Create(ctx context.Context, d model.Delivery) (int64, error)
	CreateItems(ctx context.Context, deliveryID int64, items []model.DeliveryItem) error
	ListItems(ctx context.Context, deliveryID int64) ([]model.DeliveryItem, error)

	// QUEUEDかつ未クレームのときだけ取得させる。falseなら先約あり
	Claim(ctx context.Context, deliveryID int64, workerID int64, vehicleID int64) (bool, error)

	UpdateStatusFrom(ctx context.Context, deliveryID int64, from, to model.DeliveryStatus) (bool, error)

	// クレーム本人かつ未完了のときだけCOMPLETEDへ
	Complete(ctx context.Context, deliveryID int64, workerID int64, at time.Time) (bool, error)
}

type DeliveryLogRepository interface {
	Create(ctx context.Context, l model.DeliveryLog) error
	ListByDeliveryID(ctx context.Context, deliveryID int64) ([]model.DeliveryLog, error)
}
