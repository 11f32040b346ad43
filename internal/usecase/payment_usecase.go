package usecase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/domain/model"
	repo "github.com/tropictechindo-project/TropicWeb2-sub002/internal/repository"
)

type PaymentUsecase struct {
	tx repo.TransactionManager
}

func NewPaymentUsecase(tx repo.TransactionManager) *PaymentUsecase {
	return &PaymentUsecase{tx: tx}
}

type ConfirmPaymentOutput struct {
	TransactionID int64     `json:"transaction_id"`
	OrderID       int64     `json:"order_id"`
	OrderStatus   string    `json:"order_status"`
	InvoiceID     int64     `json:"invoice_id"`
	DeliveryID    int64     `json:"delivery_id"`
	VerifiedAt    time.Time `json:"verified_at"`
}

// 支払い承認（決済の確定）。
// 金額一致ガード、注文PAID化、Unit遷移、カウンタ再計算、請求書PAID化、
// 配送ジョブ作成、通知ジョブ登録、監査ログまでを1つのTxでまとめてcommitする。
// 途中で失敗したら全部ロールバック（部分確定を残さない）
func (u *PaymentUsecase) ConfirmPayment(ctx context.Context, adminID int64, transactionID int64) (ConfirmPaymentOutput, error) {
	if adminID <= 0 {
		return ConfirmPaymentOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if transactionID <= 0 {
		return ConfirmPaymentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out ConfirmPaymentOutput
	now := time.Now()

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Payments().FindByID(ctx, transactionID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if p.Status != model.PaymentStatusPendingVerification {
			return NewHTTPError(http.StatusBadRequest, "invalid transaction status")
		}

		o, err := r.Orders().FindByID(ctx, p.OrderID)
		if err == repo.ErrNotFound {
			//支払いだけ残って注文がないのは整合性エラー
			return NewHTTPError(http.StatusBadRequest, "order missing")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 完全一致。許容誤差なし（ずれは改ざんか古い見積もり）
		if p.Amount != o.TotalPrice {
			return NewHTTPError(http.StatusBadRequest, "amount mismatch")
		}

		ok, err := r.Payments().Confirm(ctx, p.ID, adminID, now)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			//同時に別の管理者が承認した
			return NewHTTPError(http.StatusConflict, "already confirmed")
		}

		ok, err = r.Orders().UpdateStatusFrom(ctx, o.ID, o.Status, model.OrderStatusPaid)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			return NewHTTPError(http.StatusConflict, "order state changed")
		}

		// 注文に割り当たっているUnitをRESERVED→RENTEDへ。
		// カウンタ再計算で stock/reserved が数量ぶん減る
		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		before := map[int64]int64{}
		for _, it := range items {
			v, err := r.Variants().FindByID(ctx, it.VariantID)
			if err != nil {
				return NewHTTPError(http.StatusBadRequest, "variant missing")
			}
			before[it.VariantID] = v.StockQuantity
		}

		units, err := r.Units().ListByOrderID(ctx, o.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		for _, unit := range units {
			if unit.Status != model.UnitStatusReserved {
				continue
			}
			orderID := o.ID
			if err := transitionUnit(ctx, r, unit, model.UnitStatusRented, &orderID, adminID, "payment confirmed"); err != nil {
				return err
			}
		}

		// バリアントごとに観測ログ。この経路のold/newはカウンタ再計算の前後値
		for variantID, oldStock := range before {
			v, err := r.Variants().FindByID(ctx, variantID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if err := r.SyncLogs().Create(ctx, model.InventorySyncLogEntry{
				VariantID:   variantID,
				OldQuantity: oldStock,
				NewQuantity: v.StockQuantity,
				Source:      model.SyncSourceSettlement,
				ActorUserID: &adminID,
				Conflict:    false,
				Resolved:    true,
				Note:        fmt.Sprintf("order %d settled", o.ID),
				CreatedAt:   now,
			}); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		// 請求書があればPAID、無ければPAIDで作る
		inv, found, err := r.Invoices().FindByOrderID(ctx, o.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		var invoiceID int64
		if found {
			if err := r.Invoices().UpdateStatus(ctx, inv.ID, model.InvoiceStatusPaid); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			invoiceID = inv.ID
		} else {
			invoiceID, err = r.Invoices().Create(ctx, model.Invoice{
				OrderID:  o.ID,
				Subtotal: o.TotalPrice,
				Total:    o.TotalPrice,
				Status:   model.InvoiceStatusPaid,
			})
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		// 配送をQUEUEDで作る（明細は注文明細から）
		deliveryID, err := r.Deliveries().Create(ctx, model.Delivery{
			InvoiceID:     invoiceID,
			Status:        model.DeliveryStatusQueued,
			ScheduledDate: o.StartDate,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		dItems := make([]model.DeliveryItem, 0, len(items))
		for _, it := range items {
			dItems = append(dItems, model.DeliveryItem{
				VariantID: it.VariantID,
				Quantity:  it.Quantity,
			})
		}
		if err := r.Deliveries().CreateItems(ctx, deliveryID, dItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 通知＋未クレームアラートをキューへ（同一Txなのでrollbackで消える）
		if err := enqueueJob(ctx, r, model.JobTypeNotification,
			notificationPayload{OrderID: o.ID}, now); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := enqueueJob(ctx, r, model.JobTypeUnclaimedDeliveryAlert,
			unclaimedAlertPayload{DeliveryID: deliveryID}, now.Add(unclaimedAlertDelay)); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// ★監査ログ（CONFIRM_PAYMENT）
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminID,
			Action:       model.AuditActionConfirmPayment,
			ResourceType: model.AuditResourcePayment,
			ResourceID:   p.ID,
			BeforeJSON:   statusJSON(string(model.PaymentStatusPendingVerification)),
			AfterJSON:    statusJSON(string(model.PaymentStatusConfirmed)),
			CreatedAt:    now,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = ConfirmPaymentOutput{
			TransactionID: p.ID,
			OrderID:       o.ID,
			OrderStatus:   string(model.OrderStatusPaid),
			InvoiceID:     invoiceID,
			DeliveryID:    deliveryID,
			VerifiedAt:    now,
		}
		return nil
	})

	if err != nil {
		return ConfirmPaymentOutput{}, err
	}
	return out, nil
}
