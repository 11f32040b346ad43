package repository

import (
	"context"
	"time"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/domain/model"
)

type PaymentRepository interface {
	FindByID(ctx context.Context, txID int64) (model.PaymentTransaction, error)

	// PENDING_VERIFICATIONのときだけCONFIRMEDへ（select+markを1文で）
	Confirm(ctx context.Context, txID int64, adminID int64, at time.Time) (bool, error)
}

type InvoiceRepository interface {
	FindByOrderID(ctx context.Context, orderID int64) (model.Invoice, bool, error)
	Create(ctx context.Context, inv model.Invoice) (int64, error)
	UpdateStatus(ctx context.Context, invoiceID int64, status model.InvoiceStatus) error
}
