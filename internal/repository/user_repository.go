package repository

import (
	"context"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/domain/model"
)

type UserRepository interface {
	FindByID(ctx context.Context, userID int64) (model.User, error)
	ListByRole(ctx context.Context, role model.Role) ([]model.User, error)
}
