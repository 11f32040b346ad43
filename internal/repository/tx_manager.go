package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Units() UnitRepository
	UnitHistories() UnitHistoryRepository
	Variants() VariantRepository
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Payments() PaymentRepository
	Invoices() InvoiceRepository
	Vehicles() VehicleRepository
	Deliveries() DeliveryRepository
	DeliveryLogs() DeliveryLogRepository
	JobQueue() JobQueueRepository
	SyncLogs() SyncLogRepository
	AuditLogs() AuditLogRepository
	Users() UserRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// ガード付きの読み書きは必ず同一のWithinTxの中で行う。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
