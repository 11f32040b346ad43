package repository

import (
	"context"
	"time"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/domain/model"
)

type SyncLogRepository interface {
	Create(ctx context.Context, e model.InventorySyncLogEntry) error
	FindByID(ctx context.Context, id int64) (model.InventorySyncLogEntry, error)
	ListUnresolved(ctx context.Context, limit int) ([]model.InventorySyncLogEntry, error)

	// 未解消のときだけresolvedにする
	Resolve(ctx context.Context, id int64, adminID int64, at time.Time) (bool, error)
}
