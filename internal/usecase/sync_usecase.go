package usecase

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/domain/model"
	repo "github.com/tropictechindo-project/TropicWeb2-sub002/internal/repository"
)

type SyncUsecase struct {
	tx repo.TransactionManager
}

func NewSyncUsecase(tx repo.TransactionManager) *SyncUsecase {
	return &SyncUsecase{tx: tx}
}

type ReconcileStockInput struct {
	NewQuantity int64
	Note        string
}

type ReconcileStockOutput struct {
	VariantID   int64 `json:"variant_id"`
	OldQuantity int64 `json:"old_quantity"`
	NewQuantity int64 `json:"new_quantity"`
	Derived     int64 `json:"derived_quantity"`
	Conflict    bool  `json:"conflict"`
}

// 在庫カウンタの手動補正。観測値がUnit実数からの導出値と食い違ったら
// conflict=trueでログに残す（補正自体はブロックしない）
func (u *SyncUsecase) ReconcileStock(ctx context.Context, adminID int64, variantID int64, in ReconcileStockInput) (ReconcileStockOutput, error) {
	if adminID <= 0 {
		return ReconcileStockOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if variantID <= 0 {
		return ReconcileStockOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.NewQuantity < 0 {
		return ReconcileStockOutput{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}
	if len(in.Note) > 255 {
		return ReconcileStockOutput{}, NewHTTPError(http.StatusBadRequest, "note too long")
	}

	var out ReconcileStockOutput
	now := time.Now()

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		v, err := r.Variants().FindByID(ctx, variantID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		derived, _, err := r.Units().CountByVariant(ctx, variantID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.Variants().UpdateStock(ctx, variantID, in.NewQuantity); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		conflict := in.NewQuantity != derived

		if err := r.SyncLogs().Create(ctx, model.InventorySyncLogEntry{
			VariantID:   variantID,
			OldQuantity: v.StockQuantity,
			NewQuantity: in.NewQuantity,
			Source:      model.SyncSourceAdminReconcile,
			ActorUserID: &adminID,
			Conflict:    conflict,
			Resolved:    false,
			Note:        in.Note,
			CreatedAt:   now,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// ★監査ログ（RECONCILE_STOCK）
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminID,
			Action:       model.AuditActionReconcileStock,
			ResourceType: model.AuditResourceVariant,
			ResourceID:   variantID,
			BeforeJSON:   quantityJSON(v.StockQuantity),
			AfterJSON:    quantityJSON(in.NewQuantity),
			CreatedAt:    now,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = ReconcileStockOutput{
			VariantID:   variantID,
			OldQuantity: v.StockQuantity,
			NewQuantity: in.NewQuantity,
			Derived:     derived,
			Conflict:    conflict,
		}
		return nil
	})

	if err != nil {
		return ReconcileStockOutput{}, err
	}
	return out, nil
}

type ConflictOutput struct {
	ID          int64     `json:"id"`
	VariantID   int64     `json:"variant_id"`
	OldQuantity int64     `json:"old_quantity"`
	NewQuantity int64     `json:"new_quantity"`
	Source      string    `json:"source"`
	Note        string    `json:"note"`
	CreatedAt   time.Time `json:"created_at"`
}

// 未解消のコンフリクト一覧
func (u *SyncUsecase) ListConflicts(ctx context.Context, limit int) ([]ConflictOutput, error) {
	var outs []ConflictOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		entries, err := r.SyncLogs().ListUnresolved(ctx, limit)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]ConflictOutput, 0, len(entries))
		for _, e := range entries {
			outs = append(outs, ConflictOutput{
				ID:          e.ID,
				VariantID:   e.VariantID,
				OldQuantity: e.OldQuantity,
				NewQuantity: e.NewQuantity,
				Source:      e.Source,
				Note:        e.Note,
				CreatedAt:   e.CreatedAt,
			})
		}
		return nil
	})

	if err != nil {
		return []ConflictOutput{}, err
	}
	return outs, nil
}

// コンフリクト解消は管理者の明示操作のみ。自動では解消しない
func (u *SyncUsecase) ResolveConflict(ctx context.Context, adminID int64, entryID int64) error {
	if adminID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if entryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	now := time.Now()

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		e, err := r.SyncLogs().FindByID(ctx, entryID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if e.Resolved {
			return NewHTTPError(http.StatusBadRequest, "already resolved")
		}

		ok, err := r.SyncLogs().Resolve(ctx, entryID, adminID, now)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			return NewHTTPError(http.StatusConflict, "entry state changed")
		}

		// ★監査ログ（RESOLVE_CONFLICT）
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminID,
			Action:       model.AuditActionResolveConflict,
			ResourceType: model.AuditResourceSyncLog,
			ResourceID:   entryID,
			BeforeJSON:   `{"resolved":false}`,
			AfterJSON:    `{"resolved":true}`,
			CreatedAt:    now,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return nil
	})
}

func quantityJSON(q int64) string {
	return `{"stock_quantity":` + strconv.FormatInt(q, 10) + `}`
}
