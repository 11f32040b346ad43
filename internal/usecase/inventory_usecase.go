package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/domain/model"
	repo "github.com/tropictechindo-project/TropicWeb2-sub002/internal/repository"
)

// Unitの状態遷移＋履歴追記＋カウンタ再計算を同一Txで行う。
// 遷移を起こす業務処理（支払い承認・キャンセルなど）のWithinTxの中から呼ぶこと。
func transitionUnit(ctx context.Context, r repo.TxRepos, unit model.Unit, to model.UnitStatus, orderID *int64, actorID int64, reason string) error {
	if !unit.Status.CanTransitionTo(to) {
		return NewHTTPError(http.StatusBadRequest, "invalid unit transition")
	}

	// RESERVED/RENTEDに入るときはassigned_orderを設定、出るときはクリア
	var assigned *int64
	if to.RequiresAssignedOrder() {
		if orderID == nil {
			return NewHTTPError(http.StatusBadRequest, "assigned order required")
		}
		assigned = orderID
	}

	ok, err := r.Units().UpdateStatusIfCurrent(ctx, unit.ID, unit.Status, to, assigned)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !ok {
		//別Txが先に遷移させた
		return NewHTTPError(http.StatusConflict, "unit state changed")
	}

	if err := r.UnitHistories().Create(ctx, model.UnitHistory{
		UnitID:      unit.ID,
		OldStatus:   unit.Status,
		NewStatus:   to,
		ActorUserID: actorID,
		Reason:      reason,
		CreatedAt:   time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return recomputeVariantCounters(ctx, r, unit.VariantID)
}

// キャッシュカウンタはUnitの実数から再計算する。Txを跨いで古い値を残さない
func recomputeVariantCounters(ctx context.Context, r repo.TxRepos, variantID int64) error {
	stock, reserved, err := r.Units().CountByVariant(ctx, variantID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if err := r.Variants().UpdateCounters(ctx, variantID, stock, reserved); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

type InventoryUsecase struct {
	tx repo.TransactionManager
}

func NewInventoryUsecase(tx repo.TransactionManager) *InventoryUsecase {
	return &InventoryUsecase{tx: tx}
}

type IntakeUnitsInput struct {
	VariantID     int64
	SerialNumbers []string
}

type UnitOutput struct {
	ID              int64      `json:"id"`
	VariantID       int64      `json:"variant_id"`
	SerialNumber    string     `json:"serial_number"`
	Status          string     `json:"status"`
	AssignedOrderID *int64     `json:"assigned_order_id"`
	PurchasedAt     *time.Time `json:"purchased_at"`
}

// 入庫。Unitを作成してカウンタを再計算し、観測ログを1件残す
func (u *InventoryUsecase) IntakeUnits(ctx context.Context, adminID int64, in IntakeUnitsInput) ([]UnitOutput, error) {
	if adminID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.VariantID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid variant_id")
	}
	if len(in.SerialNumbers) == 0 || len(in.SerialNumbers) > 100 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid serial_numbers")
	}
	for _, sn := range in.SerialNumbers {
		if strings.TrimSpace(sn) == "" {
			return nil, NewHTTPError(http.StatusBadRequest, "invalid serial_numbers")
		}
	}

	var outs []UnitOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		variant, err := r.Variants().FindByID(ctx, in.VariantID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		now := time.Now()
		units := make([]model.Unit, 0, len(in.SerialNumbers))
		for _, sn := range in.SerialNumbers {
			units = append(units, model.Unit{
				VariantID:    in.VariantID,
				SerialNumber: strings.TrimSpace(sn),
				Status:       model.UnitStatusAvailable,
				PurchasedAt:  &now,
			})
		}
		if err := r.Units().CreateBulk(ctx, units); err != nil {
			if err == repo.ErrDuplicate {
				return NewHTTPError(http.StatusBadRequest, "duplicate serial number")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := recomputeVariantCounters(ctx, r, in.VariantID); err != nil {
			return err
		}

		// 入庫も在庫カウンタ書き込みなので観測ログを残す
		newStock, _, err := r.Units().CountByVariant(ctx, in.VariantID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.SyncLogs().Create(ctx, model.InventorySyncLogEntry{
			VariantID:   in.VariantID,
			OldQuantity: variant.StockQuantity,
			NewQuantity: newStock,
			Source:      model.SyncSourceIntake,
			ActorUserID: &adminID,
			Conflict:    false,
			Resolved:    true,
			CreatedAt:   now,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminID,
			Action:       model.AuditActionIntakeUnits,
			ResourceType: model.AuditResourceVariant,
			ResourceID:   in.VariantID,
			BeforeJSON:   quantityJSON(variant.StockQuantity),
			AfterJSON:    quantityJSON(newStock),
			CreatedAt:    now,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]UnitOutput, 0, len(units))
		for _, unit := range units {
			outs = append(outs, toUnitOutput(unit))
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return outs, nil
}

type UpdateUnitStatusInput struct {
	Status string
	Reason string
}

// 管理者によるUnitステータス更新（MAINTENANCE / LOST / AVAILABLEのみ）
func (u *InventoryUsecase) UpdateUnitStatus(ctx context.Context, adminID int64, unitID int64, in UpdateUnitStatusInput) (UnitOutput, error) {
	if adminID <= 0 {
		return UnitOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if unitID <= 0 {
		return UnitOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	to := model.UnitStatus(strings.TrimSpace(in.Status))
	switch to {
	case model.UnitStatusMaintenance, model.UnitStatusLost, model.UnitStatusAvailable:
		// OK。RESERVED/RENTEDへは業務処理経由でしか入れない
	default:
		return UnitOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var out UnitOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		unit, err := r.Units().FindByID(ctx, unitID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// AVAILABLEへ戻せるのは整備明けのみ。予約・貸出中の解放は
		// キャンセル・完了の業務処理が行う
		if to == model.UnitStatusAvailable && unit.Status != model.UnitStatusMaintenance {
			return NewHTTPError(http.StatusBadRequest, "invalid unit transition")
		}

		if err := transitionUnit(ctx, r, unit, to, nil, adminID, in.Reason); err != nil {
			return err
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminID,
			Action:       model.AuditActionUpdateUnitStatus,
			ResourceType: model.AuditResourceUnit,
			ResourceID:   unitID,
			BeforeJSON:   statusJSON(string(unit.Status)),
			AfterJSON:    statusJSON(string(to)),
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		unit.Status = to
		if !to.RequiresAssignedOrder() {
			unit.AssignedOrderID = nil
		}
		out = toUnitOutput(unit)
		return nil
	})

	if err != nil {
		return UnitOutput{}, err
	}
	return out, nil
}

func toUnitOutput(unit model.Unit) UnitOutput {
	return UnitOutput{
		ID:              unit.ID,
		VariantID:       unit.VariantID,
		SerialNumber:    unit.SerialNumber,
		Status:          string(unit.Status),
		AssignedOrderID: unit.AssignedOrderID,
		PurchasedAt:     unit.PurchasedAt,
	}
}

func statusJSON(status string) string {
	return `{"status":"` + status + `"}`
}
