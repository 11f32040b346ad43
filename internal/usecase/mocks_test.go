package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/domain/model"
	repo "github.com/tropictechindo-project/TropicWeb2-sub002/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
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

func (r *TxReposMock) Units() repo.UnitRepository                 { return r.units }
func (r *TxReposMock) UnitHistories() repo.UnitHistoryRepository  { return r.unitHistories }
func (r *TxReposMock) Variants() repo.VariantRepository           { return r.variants }
func (r *TxReposMock) Orders() repo.OrderRepository               { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository       { return r.orderItems }
func (r *TxReposMock) Payments() repo.PaymentRepository           { return r.payments }
func (r *TxReposMock) Invoices() repo.InvoiceRepository           { return r.invoices }
func (r *TxReposMock) Vehicles() repo.VehicleRepository           { return r.vehicles }
func (r *TxReposMock) Deliveries() repo.DeliveryRepository        { return r.deliveries }
func (r *TxReposMock) DeliveryLogs() repo.DeliveryLogRepository   { return r.deliveryLogs }
func (r *TxReposMock) JobQueue() repo.JobQueueRepository          { return r.jobQueue }
func (r *TxReposMock) SyncLogs() repo.SyncLogRepository           { return r.syncLogs }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository         { return r.auditLogs }
func (r *TxReposMock) Users() repo.UserRepository                 { return r.users }

// =====================
// Repository mocks
// =====================

type UnitRepoMock struct{ mock.Mock }

func (m *UnitRepoMock) FindByID(ctx context.Context, unitID int64) (model.Unit, error) {
	args := m.Called(ctx, unitID)
	u, _ := args.Get(0).(model.Unit)
	return u, args.Error(1)
}

func (m *UnitRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.Unit, error) {
	args := m.Called(ctx, orderID)
	us, _ := args.Get(0).([]model.Unit)
	return us, args.Error(1)
}

func (m *UnitRepoMock) ListByVariantID(ctx context.Context, variantID int64) ([]model.Unit, error) {
	args := m.Called(ctx, variantID)
	us, _ := args.Get(0).([]model.Unit)
	return us, args.Error(1)
}

func (m *UnitRepoMock) CreateBulk(ctx context.Context, units []model.Unit) error {
	args := m.Called(ctx, units)
	return args.Error(0)
}

func (m *UnitRepoMock) UpdateStatusIfCurrent(ctx context.Context, unitID int64, from, to model.UnitStatus, assignedOrderID *int64) (bool, error) {
	args := m.Called(ctx, unitID, from, to, assignedOrderID)
	return args.Bool(0), args.Error(1)
}

func (m *UnitRepoMock) CountByVariant(ctx context.Context, variantID int64) (int64, int64, error) {
	args := m.Called(ctx, variantID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

type UnitHistoryRepoMock struct{ mock.Mock }

func (m *UnitHistoryRepoMock) Create(ctx context.Context, h model.UnitHistory) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func (m *UnitHistoryRepoMock) ListByUnitID(ctx context.Context, unitID int64) ([]model.UnitHistory, error) {
	args := m.Called(ctx, unitID)
	hs, _ := args.Get(0).([]model.UnitHistory)
	return hs, args.Error(1)
}

type VariantRepoMock struct{ mock.Mock }

func (m *VariantRepoMock) FindByID(ctx context.Context, variantID int64) (model.ProductVariant, error) {
	args := m.Called(ctx, variantID)
	v, _ := args.Get(0).(model.ProductVariant)
	return v, args.Error(1)
}

func (m *VariantRepoMock) UpdateCounters(ctx context.Context, variantID int64, stock int64, reserved int64) error {
	args := m.Called(ctx, variantID, stock, reserved)
	return args.Error(0)
}

func (m *VariantRepoMock) UpdateStock(ctx context.Context, variantID int64, newStock int64) error {
	args := m.Called(ctx, variantID, newStock)
	return args.Error(0)
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) UpdateStatusFrom(ctx context.Context, orderID int64, from, to model.OrderStatus) (bool, error) {
	args := m.Called(ctx, orderID, from, to)
	return args.Bool(0), args.Error(1)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type PaymentRepoMock struct{ mock.Mock }

func (m *PaymentRepoMock) FindByID(ctx context.Context, txID int64) (model.PaymentTransaction, error) {
	args := m.Called(ctx, txID)
	p, _ := args.Get(0).(model.PaymentTransaction)
	return p, args.Error(1)
}

func (m *PaymentRepoMock) Confirm(ctx context.Context, txID int64, adminID int64, at time.Time) (bool, error) {
	args := m.Called(ctx, txID, adminID)
	return args.Bool(0), args.Error(1)
}

type InvoiceRepoMock struct{ mock.Mock }

func (m *InvoiceRepoMock) FindByOrderID(ctx context.Context, orderID int64) (model.Invoice, bool, error) {
	args := m.Called(ctx, orderID)
	inv, _ := args.Get(0).(model.Invoice)
	return inv, args.Bool(1), args.Error(2)
}

func (m *InvoiceRepoMock) Create(ctx context.Context, inv model.Invoice) (int64, error) {
	args := m.Called(ctx, inv)
	return args.Get(0).(int64), args.Error(1)
}

func (m *InvoiceRepoMock) UpdateStatus(ctx context.Context, invoiceID int64, status model.InvoiceStatus) error {
	args := m.Called(ctx, invoiceID, status)
	return args.Error(0)
}

type VehicleRepoMock struct{ mock.Mock }

func (m *VehicleRepoMock) FindByID(ctx context.Context, vehicleID int64) (model.Vehicle, error) {
	args := m.Called(ctx, vehicleID)
	v, _ := args.Get(0).(model.Vehicle)
	return v, args.Error(1)
}

func (m *VehicleRepoMock) Acquire(ctx context.Context, vehicleID int64, deliveryID int64) (bool, error) {
	args := m.Called(ctx, vehicleID, deliveryID)
	return args.Bool(0), args.Error(1)
}

func (m *VehicleRepoMock) Release(ctx context.Context, vehicleID int64, deliveryID int64) (bool, error) {
	args := m.Called(ctx, vehicleID, deliveryID)
	return args.Bool(0), args.Error(1)
}

type DeliveryRepoMock struct{ mock.Mock }

func (m *DeliveryRepoMock) FindByID(ctx context.Context, deliveryID int64) (model.Delivery, error) {
	args := m.Called(ctx, deliveryID)
	d, _ := args.Get(0).(model.Delivery)
	return d, args.Error(1)
}

func (m *DeliveryRepoMock) FindByIDForUpdate(ctx context.Context, deliveryID int64) (model.Delivery, error) {
	args := m.Called(ctx, deliveryID)
	d, _ := args.Get(0).(model.Delivery)
	return d, args.Error(1)
}

func (m *DeliveryRepoMock) ListQueued(ctx context.Context) ([]model.Delivery, error) {
	args := m.Called(ctx)
	ds, _ := args.Get(0).([]model.Delivery)
	return ds, args.Error(1)
}

func (m *DeliveryRepoMock) ListByClaimant(ctx context.Context, workerID int64) ([]model.Delivery, error) {
	args := m.Called(ctx, workerID)
	ds, _ := args.Get(0).([]model.Delivery)
	return ds, args.Error(1)
}

func (m *DeliveryRepoMock) Create(ctx context.Context, d model.Delivery) (int64, error) {
	args := m.Called(ctx, d)
	return args.Get(0).(int64), args.Error(1)
}

func (m *DeliveryRepoMock) CreateItems(ctx context.Context, deliveryID int64, items []model.DeliveryItem) error {
	args := m.Called(ctx, deliveryID, items)
	return args.Error(0)
}

func (m *DeliveryRepoMock) ListItems(ctx context.Context, deliveryID int64) ([]model.DeliveryItem, error) {
	args := m.Called(ctx, deliveryID)
	items, _ := args.Get(0).([]model.DeliveryItem)
	return items, args.Error(1)
}

func (m *DeliveryRepoMock) Claim(ctx context.Context, deliveryID int64, workerID int64, vehicleID int64) (bool, error) {
	args := m.Called(ctx, deliveryID, workerID, vehicleID)
	return args.Bool(0), args.Error(1)
}

func (m *DeliveryRepoMock) UpdateStatusFrom(ctx context.Context, deliveryID int64, from, to model.DeliveryStatus) (bool, error) {
	args := m.Called(ctx, deliveryID, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *DeliveryRepoMock) Complete(ctx context.Context, deliveryID int64, workerID int64, at time.Time) (bool, error) {
	args := m.Called(ctx, deliveryID, workerID)
	return args.Bool(0), args.Error(1)
}

type DeliveryLogRepoMock struct{ mock.Mock }

func (m *DeliveryLogRepoMock) Create(ctx context.Context, l model.DeliveryLog) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *DeliveryLogRepoMock) ListByDeliveryID(ctx context.Context, deliveryID int64) ([]model.DeliveryLog, error) {
	args := m.Called(ctx, deliveryID)
	ls, _ := args.Get(0).([]model.DeliveryLog)
	return ls, args.Error(1)
}

type JobQueueRepoMock struct{ mock.Mock }

func (m *JobQueueRepoMock) Enqueue(ctx context.Context, e model.JobQueueEntry) (int64, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(int64), args.Error(1)
}

func (m *JobQueueRepoMock) FindOldestReadyForUpdate(ctx context.Context, now time.Time) (model.JobQueueEntry, bool, error) {
	args := m.Called(ctx)
	e, _ := args.Get(0).(model.JobQueueEntry)
	return e, args.Bool(1), args.Error(2)
}

func (m *JobQueueRepoMock) MarkProcessing(ctx context.Context, id int64, at time.Time) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *JobQueueRepoMock) MarkDone(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *JobQueueRepoMock) Requeue(ctx context.Context, id int64, runAt time.Time, lastError string) error {
	args := m.Called(ctx, id, runAt, lastError)
	return args.Error(0)
}

func (m *JobQueueRepoMock) MarkFailed(ctx context.Context, id int64, lastError string) error {
	args := m.Called(ctx, id, lastError)
	return args.Error(0)
}

func (m *JobQueueRepoMock) ReclaimExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type SyncLogRepoMock struct{ mock.Mock }

func (m *SyncLogRepoMock) Create(ctx context.Context, e model.InventorySyncLogEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *SyncLogRepoMock) FindByID(ctx context.Context, id int64) (model.InventorySyncLogEntry, error) {
	args := m.Called(ctx, id)
	e, _ := args.Get(0).(model.InventorySyncLogEntry)
	return e, args.Error(1)
}

func (m *SyncLogRepoMock) ListUnresolved(ctx context.Context, limit int) ([]model.InventorySyncLogEntry, error) {
	args := m.Called(ctx, limit)
	es, _ := args.Get(0).([]model.InventorySyncLogEntry)
	return es, args.Error(1)
}

func (m *SyncLogRepoMock) Resolve(ctx context.Context, id int64, adminID int64, at time.Time) (bool, error) {
	args := m.Called(ctx, id, adminID)
	return args.Bool(0), args.Error(1)
}

type AuditLogRepoMock struct{ mock.Mock }

func (m *AuditLogRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditLogRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	args := m.Called(ctx, role)
	us, _ := args.Get(0).([]model.User)
	return us, args.Error(1)
}

// =====================
// Helper: error contains（HTTPErrorの実装詳細に依存しない）
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}
