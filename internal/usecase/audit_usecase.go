package usecase

import (
	"context"
	"net/http"
	"time"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/domain/model"
	repo "github.com/tropictechindo-project/TropicWeb2-sub002/internal/repository"
)

type AuditUsecase struct {
	tx repo.TransactionManager
}

func NewAuditUsecase(tx repo.TransactionManager) *AuditUsecase {
	return &AuditUsecase{tx: tx}
}

type AuditLogOutput struct {
	ID           int64     `json:"id"`
	ActorUserID  int64     `json:"actor_user_id"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resource_type"`
	ResourceID   int64     `json:"resource_id"`
	BeforeJSON   string    `json:"before_json"`
	AfterJSON    string    `json:"after_json"`
	CreatedAt    time.Time `json:"created_at"`
}

// 監査ログ一覧（管理者向け）
func (u *AuditUsecase) List(ctx context.Context, filter repo.AuditLogFilter) ([]AuditLogOutput, error) {
	var outs []AuditLogOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		logs, err := r.AuditLogs().List(ctx, filter)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]AuditLogOutput, 0, len(logs))
		for _, l := range logs {
			outs = append(outs, toAuditLogOutput(l))
		}
		return nil
	})

	if err != nil {
		return []AuditLogOutput{}, err
	}
	return outs, nil
}

func toAuditLogOutput(l model.AuditLog) AuditLogOutput {
	return AuditLogOutput{
		ID:           l.ID,
		ActorUserID:  l.ActorUserID,
		Action:       string(l.Action),
		ResourceType: string(l.ResourceType),
		ResourceID:   l.ResourceID,
		BeforeJSON:   l.BeforeJSON,
		AfterJSON:    l.AfterJSON,
		CreatedAt:    l.CreatedAt,
	}
}
