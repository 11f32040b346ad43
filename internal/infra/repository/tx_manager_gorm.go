package repository

import (
	"context"

	repo "github.com/tropictechindo-project/TropicWeb2-sub002/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	units         repo.UnitRepository
	unitHistories repo.UnitHistoryRepository
	variants      repo.VariantRepository
	orders        repo.OrderRepository
	orderItems    repo.OrderItemRepository
	payments      repo.PaymentRepository
	invoices      repo.InvoiceRepository
	vehicles      repo.VehicleRepository
	deliveries    repo.DeliveryRepository
	deliveryLogs  repo.DeliveryLogRepository
	jobQueue      repo.JobQueueRepository
	syncLogs      repo.SyncLogRepository
	auditLogs     repo.AuditLogRepository
	users         repo.UserRepository
}

func (r *txReposGorm) Units() repo.UnitRepository                { return r.units }
func (r *txReposGorm) UnitHistories() repo.UnitHistoryRepository { return r.unitHistories }
func (r *txReposGorm) Variants() repo.VariantRepository          { return r.variants }
func (r *txReposGorm) Orders() repo.OrderRepository              { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository      { return r.orderItems }
func (r *txReposGorm) Payments() repo.PaymentRepository          { return r.payments }
func (r *txReposGorm) Invoices() repo.InvoiceRepository          { return r.invoices }
func (r *txReposGorm) Vehicles() repo.VehicleRepository          { return r.vehicles }
func (r *txReposGorm) Deliveries() repo.DeliveryRepository       { return r.deliveries }
func (r *txReposGorm) DeliveryLogs() repo.DeliveryLogRepository  { return r.deliveryLogs }
func (r *txReposGorm) JobQueue() repo.JobQueueRepository         { return r.jobQueue }
func (r *txReposGorm) SyncLogs() repo.SyncLogRepository          { return r.syncLogs }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository        { return r.auditLogs }
func (r *txReposGorm) Users() repo.UserRepository                { return r.users }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			units:         NewUnitGormRepository(tx),
			unitHistories: NewUnitHistoryGormRepository(tx),
			variants:      NewVariantGormRepository(tx),
			orders:        NewOrderGormRepository(tx),
			orderItems:    NewOrderItemGormRepository(tx),
			payments:      NewPaymentGormRepository(tx),
			invoices:      NewInvoiceGormRepository(tx),
			vehicles:      NewVehicleGormRepository(tx),
			deliveries:    NewDeliveryGormRepository(tx),
			deliveryLogs:  NewDeliveryLogGormRepository(tx),
			jobQueue:      NewJobQueueGormRepository(tx),
			syncLogs:      NewSyncLogGormRepository(tx),
			auditLogs:     NewAuditLogGormRepository(tx),
			users:         NewUserGormRepository(tx),
		}
		return fn(r)
	})
}
