package repository

import (
	"context"
	"errors"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/domain/model"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

type VariantRepository interface {
	FindByID(ctx context.Context, variantID int64) (model.ProductVariant, error)

	// キャッシュカウンタをUnit実数からの再計算値で置き換える
	UpdateCounters(ctx context.Context, variantID int64, stock int64, reserved int64) error

	// 管理者の手動補正用。stock_quantityだけを直接書く
	UpdateStock(ctx context.Context, variantID int64, newStock int64) error
}
