package repository

import (
	"context"
	"errors"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/domain/model"
	repo "github.com/tropictechindo-project/TropicWeb2-sub002/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type UnitGormRepository struct {
	db *gorm.DB
}

func NewUnitGormRepository(db *gorm.DB) *UnitGormRepository {
	return &UnitGormRepository{db: db}
}

func (r *UnitGormRepository) FindByID(ctx context.Context, unitID int64) (model.Unit, error) {
	var u model.Unit
	err := r.db.WithContext(ctx).Where("id = ?", unitID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Unit{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Unit{}, err
	}
	return u, nil
}

func (r *UnitGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.Unit, error) {
	var units []model.Unit
	err := r.db.WithContext(ctx).
		Where("assigned_order_id = ?", orderID).
		Order("id asc").
		Find(&units).Error
	if err != nil {
		return []model.Unit{}, err
	}
	return units, nil
}

func (r *UnitGormRepository) ListByVariantID(ctx context.Context, variantID int64) ([]model.Unit, error) {
	var units []model.Unit
	err := r.db.WithContext(ctx).
		Where("variant_id = ?", variantID).
		Order("id asc").
		Find(&units).Error
	if err != nil {
		return []model.Unit{}, err
	}
	return units, nil
}

func (r *UnitGormRepository) CreateBulk(ctx context.Context, units []model.Unit) error {
	if len(units) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Create(&units).Error
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return repo.ErrDuplicate
	}
	return err
}

// 現在statusが一致するときだけ遷移させる（同時更新ガード）
func (r *UnitGormRepository) UpdateStatusIfCurrent(ctx context.Context, unitID int64, from, to model.UnitStatus, assignedOrderID *int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Unit{}).
		Where("id = ? AND status = ?", unitID, from).
		Updates(map[string]interface{}{
			"status":            to,
			"assigned_order_id": assignedOrderID,
		})

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

// stock = AVAILABLE+RESERVED、reserved = RESERVED
func (r *UnitGormRepository) CountByVariant(ctx context.Context, variantID int64) (int64, int64, error) {
	var stock int64
	err := r.db.WithContext(ctx).Model(&model.Unit{}).
		Where("variant_id = ? AND status IN ?", variantID,
			[]model.UnitStatus{model.UnitStatusAvailable, model.UnitStatusReserved}).
		Count(&stock).Error
	if err != nil {
		return 0, 0, err
	}

	var reserved int64
	err = r.db.WithContext(ctx).Model(&model.Unit{}).
		Where("variant_id = ? AND status = ?", variantID, model.UnitStatusReserved).
		Count(&reserved).Error
	if err != nil {
		return 0, 0, err
	}

	return stock, reserved, nil
}

type UnitHistoryGormRepository struct {
	db *gorm.DB
}

func NewUnitHistoryGormRepository(db *gorm.DB) *UnitHistoryGormRepository {
	return &UnitHistoryGormRepository{db: db}
}

func (r *UnitHistoryGormRepository) Create(ctx context.Context, h model.UnitHistory) error {
	return r.db.WithContext(ctx).Create(&h).Error
}

func (r *UnitHistoryGormRepository) ListByUnitID(ctx context.Context, unitID int64) ([]model.UnitHistory, error) {
	var hs []model.UnitHistory
	err := r.db.WithContext(ctx).
		Where("unit_id = ?", unitID).
		Order("id desc").
		Find(&hs).Error
	if err != nil {
		return []model.UnitHistory{}, err
	}
	return hs, nil
}
