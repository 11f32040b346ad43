package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/domain/model"
	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/logger"
	repo "github.com/tropictechindo-project/TropicWeb2-sub002/internal/repository"

	"go.uber.org/zap"
)

// 配送完了の外部レポート。Txの外で呼ぶベストエフォートな副作用
type Reporter interface {
	ReportDeliveryCompleted(ctx context.Context, deliveryID int64, completedAt time.Time) error
}

type DeliveryUsecase struct {
	tx       repo.TransactionManager
	reporter Reporter
}

func NewDeliveryUsecase(tx repo.TransactionManager, reporter Reporter) *DeliveryUsecase {
	return &DeliveryUsecase{tx: tx, reporter: reporter}
}

type DeliveryItemOutput struct {
	VariantID int64 `json:"variant_id"`
	Quantity  int64 `json:"quantity"`
}

type DeliveryOutput struct {
	ID              int64                `json:"id"`
	InvoiceID       int64                `json:"invoice_id"`
	Status          string               `json:"status"`
	ClaimedByUserID *int64               `json:"claimed_by_user_id"`
	VehicleID       *int64               `json:"vehicle_id"`
	ScheduledDate   time.Time            `json:"scheduled_date"`
	CompletedAt     *time.Time           `json:"completed_at"`
	Items           []DeliveryItemOutput `json:"items"`
}

// 未クレームの配送プール
func (u *DeliveryUsecase) ListQueued(ctx context.Context) ([]DeliveryOutput, error) {
	var outs []DeliveryOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		ds, err := r.Deliveries().ListQueued(ctx)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		outs, err = toDeliveryOutputs(ctx, r, ds)
		return err
	})

	if err != nil {
		return []DeliveryOutput{}, err
	}
	return outs, nil
}

// 自分がクレームした配送の一覧
func (u *DeliveryUsecase) ListMine(ctx context.Context, workerID int64) ([]DeliveryOutput, error) {
	if workerID <= 0 {
		return []DeliveryOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var outs []DeliveryOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		ds, err := r.Deliveries().ListByClaimant(ctx, workerID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		outs, err = toDeliveryOutputs(ctx, r, ds)
		return err
	})

	if err != nil {
		return []DeliveryOutput{}, err
	}
	return outs, nil
}

type ClaimInput struct {
	VehicleID int64
}

// 配送のクレーム。ガード確認と書き込みは同一Tx（同時クレームの勝者は1人だけ）。
// 負けた側には409を返す。別の配送・車両で再試行してもらう
func (u *DeliveryUsecase) Claim(ctx context.Context, workerID int64, deliveryID int64, in ClaimInput) (DeliveryOutput, error) {
	if workerID <= 0 {
		return DeliveryOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if deliveryID <= 0 {
		return DeliveryOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.VehicleID <= 0 {
		return DeliveryOutput{}, NewHTTPError(http.StatusBadRequest, "invalid vehicle_id")
	}

	var out DeliveryOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//行ロック付きで再読み込みしてからガード判定
		d, err := r.Deliveries().FindByIDForUpdate(ctx, deliveryID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if d.Status != model.DeliveryStatusQueued || d.ClaimedByUserID != nil {
			return NewHTTPError(http.StatusConflict, "already claimed")
		}

		v, err := r.Vehicles().FindByID(ctx, in.VehicleID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "vehicle not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if v.Status != model.VehicleStatusAvailable {
			return NewHTTPError(http.StatusConflict, "vehicle unavailable")
		}

		ok, err := r.Deliveries().Claim(ctx, deliveryID, workerID, in.VehicleID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			return NewHTTPError(http.StatusConflict, "already claimed")
		}

		ok, err = r.Vehicles().Acquire(ctx, in.VehicleID, deliveryID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			return NewHTTPError(http.StatusConflict, "vehicle unavailable")
		}

		if err := r.DeliveryLogs().Create(ctx, model.DeliveryLog{
			DeliveryID:  deliveryID,
			Event:       model.DeliveryEventClaimed,
			ActorUserID: workerID,
			PayloadJSON: fmt.Sprintf(`{"vehicle_id":%d}`, in.VehicleID),
			CreatedAt:   time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		d.Status = model.DeliveryStatusClaimed
		d.ClaimedByUserID = &workerID
		d.VehicleID = &in.VehicleID
		out, err = toDeliveryOutput(ctx, r, d)
		return err
	})

	if err != nil {
		return DeliveryOutput{}, err
	}
	return out, nil
}

type UpdateDeliveryStatusInput struct {
	Status string
}

// クレーム中の配送のステータス更新（OUT_FOR_DELIVERY / PAUSED / DELAYED）
func (u *DeliveryUsecase) UpdateStatus(ctx context.Context, workerID int64, deliveryID int64, in UpdateDeliveryStatusInput) (DeliveryOutput, error) {
	if workerID <= 0 {
		return DeliveryOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if deliveryID <= 0 {
		return DeliveryOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	to := model.DeliveryStatus(strings.TrimSpace(in.Status))
	switch to {
	case model.DeliveryStatusOutForDelivery, model.DeliveryStatusPaused, model.DeliveryStatusDelayed:
		// OK
	default:
		return DeliveryOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var out DeliveryOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		d, err := r.Deliveries().FindByIDForUpdate(ctx, deliveryID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if d.ClaimedByUserID == nil || *d.ClaimedByUserID != workerID {
			return NewHTTPError(http.StatusForbidden, "not claimant")
		}

		switch d.Status {
		case model.DeliveryStatusClaimed, model.DeliveryStatusOutForDelivery,
			model.DeliveryStatusPaused, model.DeliveryStatusDelayed:
			// 遷移可
		default:
			return NewHTTPError(http.StatusBadRequest, "invalid transition")
		}

		ok, err := r.Deliveries().UpdateStatusFrom(ctx, deliveryID, d.Status, to)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			return NewHTTPError(http.StatusConflict, "delivery state changed")
		}

		if err := r.DeliveryLogs().Create(ctx, model.DeliveryLog{
			DeliveryID:  deliveryID,
			Event:       model.DeliveryEventStatusChanged,
			ActorUserID: workerID,
			PayloadJSON: fmt.Sprintf(`{"from":"%s","to":"%s"}`, d.Status, to),
			CreatedAt:   time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		d.Status = to
		out, err = toDeliveryOutput(ctx, r, d)
		return err
	})

	if err != nil {
		return DeliveryOutput{}, err
	}
	return out, nil
}

type CompleteInput struct {
	Proof string
}

// 配送完了。車両解放・ログ追記・明細ごとの観測ログまでを同一Txで行い、
// 外部レポートはcommit後にベストエフォートで送る（失敗してもロールバックしない）
func (u *DeliveryUsecase) Complete(ctx context.Context, workerID int64, deliveryID int64, in CompleteInput) (DeliveryOutput, error) {
	if workerID <= 0 {
		return DeliveryOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if deliveryID <= 0 {
		return DeliveryOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out DeliveryOutput
	now := time.Now()

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		d, err := r.Deliveries().FindByIDForUpdate(ctx, deliveryID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if d.ClaimedByUserID == nil || *d.ClaimedByUserID != workerID {
			return NewHTTPError(http.StatusForbidden, "not claimant")
		}
		if d.Status == model.DeliveryStatusCompleted {
			return NewHTTPError(http.StatusBadRequest, "already completed")
		}
		if d.Status == model.DeliveryStatusCanceled {
			return NewHTTPError(http.StatusBadRequest, "already canceled")
		}

		ok, err := r.Deliveries().Complete(ctx, deliveryID, workerID, now)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			return NewHTTPError(http.StatusConflict, "delivery state changed")
		}

		//車両をプールに返す
		if d.VehicleID != nil {
			released, err := r.Vehicles().Release(ctx, *d.VehicleID, deliveryID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !released {
				// この配送に紐付いていない車両。完了は止めないが記録する
				logger.Get().Warn("vehicle not bound to completed delivery",
					zap.Int64("delivery_id", deliveryID),
					zap.Int64("vehicle_id", *d.VehicleID),
				)
			}
		}

		if err := r.DeliveryLogs().Create(ctx, model.DeliveryLog{
			DeliveryID:  deliveryID,
			Event:       model.DeliveryEventCompleted,
			ActorUserID: workerID,
			PayloadJSON: fmt.Sprintf(`{"proof":%q}`, in.Proof),
			CreatedAt:   now,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 明細ごとに観測ログを1件。この経路はコンフリクトを作らない
		items, err := r.Deliveries().ListItems(ctx, deliveryID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		for _, it := range items {
			variant, err := r.Variants().FindByID(ctx, it.VariantID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if err := r.SyncLogs().Create(ctx, model.InventorySyncLogEntry{
				VariantID:        it.VariantID,
				OldQuantity:      variant.StockQuantity,
				NewQuantity:      variant.StockQuantity,
				Source:           model.SyncSourceDeliveryComplete,
				ActorUserID:      &workerID,
				Conflict:         false,
				Resolved:         true,
				ResolvedByUserID: &workerID,
				ResolvedAt:       &now,
				Note:             fmt.Sprintf("delivery %d completed", deliveryID),
				CreatedAt:        now,
			}); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		d.Status = model.DeliveryStatusCompleted
		d.CompletedAt = &now
		out, err = toDeliveryOutput(ctx, r, d)
		return err
	})

	if err != nil {
		return DeliveryOutput{}, err
	}

	// commit後の外部レポート。失敗はログだけ残して握りつぶす
	if u.reporter != nil {
		if err := u.reporter.ReportDeliveryCompleted(ctx, deliveryID, now); err != nil {
			logger.Get().Warn("delivery completion report failed",
				zap.Int64("delivery_id", deliveryID),
				zap.Error(err),
			)
		}
	}

	return out, nil
}

func toDeliveryOutput(ctx context.Context, r repo.TxRepos, d model.Delivery) (DeliveryOutput, error) {
	items, err := r.Deliveries().ListItems(ctx, d.ID)
	if err != nil {
		return DeliveryOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outItems := make([]DeliveryItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, DeliveryItemOutput{
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
		})
	}

	return DeliveryOutput{
		ID:              d.ID,
		InvoiceID:       d.InvoiceID,
		Status:          string(d.Status),
		ClaimedByUserID: d.ClaimedByUserID,
		VehicleID:       d.VehicleID,
		ScheduledDate:   d.ScheduledDate,
		CompletedAt:     d.CompletedAt,
		Items:           outItems,
	}, nil
}

func toDeliveryOutputs(ctx context.Context, r repo.TxRepos, ds []model.Delivery) ([]DeliveryOutput, error) {
	outs := make([]DeliveryOutput, 0, len(ds))
	for _, d := range ds {
		out, err := toDeliveryOutput(ctx, r, d)
		if err != nil {
			return nil, err
		}
		outs = append(outs, out)
	}
	return outs, nil
}
