package repository

import (
	"context"
	"errors"
	"time"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/domain/model"
	repo "github.com/tropictechindo-project/TropicWeb2-sub002/internal/repository"

	"gorm.io/gorm"
)

type PaymentGormRepository struct {
	db *gorm.DB
}

func NewPaymentGormRepository(db *gorm.DB) *PaymentGormRepository {
	return &PaymentGormRepository{db: db}
}

func (r *PaymentGormRepository) FindByID(ctx context.Context, txID int64) (model.PaymentTransaction, error) {
	var p model.PaymentTransaction
	err := r.db.WithContext(ctx).Where("id = ?", txID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.PaymentTransaction{}, repo.ErrNotFound
	}
	if err != nil {
		return model.PaymentTransaction{}, err
	}
	return p, nil
}

// PENDING_VERIFICATIONのときだけCONFIRMEDへ
func (r *PaymentGormRepository) Confirm(ctx context.Context, txID int64, adminID int64, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.PaymentTransaction{}).
		Where("id = ? AND status = ?", txID, model.PaymentStatusPendingVerification).
		Updates(map[string]interface{}{
			"status":              model.PaymentStatusConfirmed,
			"verified_by_user_id": adminID,
			"verified_at":         at,
		})

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

type InvoiceGormRepository struct {
	db *gorm.DB
}

func NewInvoiceGormRepository(db *gorm.DB) *InvoiceGormRepository {
	return &InvoiceGormRepository{db: db}
}

func (r *InvoiceGormRepository) FindByOrderID(ctx context.Context, orderID int64) (model.Invoice, bool, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Invoice{}, false, nil
	}
	if err != nil {
		return model.Invoice{}, false, err
	}
	return inv, true, nil
}

func (r *InvoiceGormRepository) Create(ctx context.Context, inv model.Invoice) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&inv).Error; err != nil {
		return 0, err
	}
	return inv.ID, nil
}

func (r *InvoiceGormRepository) UpdateStatus(ctx context.Context, invoiceID int64, status model.InvoiceStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("id = ?", invoiceID).
		Update("status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
