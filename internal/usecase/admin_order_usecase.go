package usecase

import (
	"context"
	"net/http"
	"time"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/domain/model"
	repo "github.com/tropictechindo-project/TropicWeb2-sub002/internal/repository"
)

type AdminOrderUsecase struct {
	tx repo.TransactionManager
}

func NewAdminOrderUsecase(tx repo.TransactionManager) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx}
}

type OrderOutput struct {
	ID         int64     `json:"id"`
	UserID     *int64    `json:"user_id"`
	Status     string    `json:"status"`
	TotalPrice int64     `json:"total_price"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
}

// 注文キャンセル。割り当て済みUnitの解放と注文ステータス更新を同一Txで行う
func (u *AdminOrderUsecase) CancelOrder(ctx context.Context, adminID int64, orderID int64) (OrderOutput, error) {
	if adminID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 終端ガード
		if o.Status == model.OrderStatusCancelled {
			return NewHTTPError(http.StatusBadRequest, "already cancelled")
		}
		if o.Status == model.OrderStatusCompleted {
			return NewHTTPError(http.StatusBadRequest, "cannot cancel completed order")
		}

		// 割り当て済みUnitをAVAILABLEに戻す（assigned_orderはクリアされる）
		units, err := r.Units().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		for _, unit := range units {
			if unit.Status != model.UnitStatusReserved && unit.Status != model.UnitStatusRented {
				continue
			}
			if err := transitionUnit(ctx, r, unit, model.UnitStatusAvailable, nil, adminID, "order cancelled"); err != nil {
				return err
			}
		}

		ok, err := r.Orders().UpdateStatusFrom(ctx, orderID, o.Status, model.OrderStatusCancelled)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			return NewHTTPError(http.StatusConflict, "order state changed")
		}

		// ★監査ログ（CANCEL_ORDER）
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminID,
			Action:       model.AuditActionCancelOrder,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   statusJSON(string(o.Status)),
			AfterJSON:    statusJSON(string(model.OrderStatusCancelled)),
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = OrderOutput{
			ID:         o.ID,
			UserID:     o.UserID,
			Status:     string(model.OrderStatusCancelled),
			TotalPrice: o.TotalPrice,
			StartDate:  o.StartDate,
			EndDate:    o.EndDate,
		}
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}
