package model

import "time"

// 管理者操作の種類
type AuditAction string

const (
	//支払いを承認した操作。
	AuditActionConfirmPayment AuditAction = "CONFIRM_PAYMENT"
	//注文をキャンセルした操作。
	AuditActionCancelOrder AuditAction = "CANCEL_ORDER"
	//在庫カウンタを手動補正した操作。
	AuditActionReconcileStock AuditAction = "RECONCILE_STOCK"
	//在庫コンフリクトを解消した操作。
	AuditActionResolveConflict AuditAction = "RESOLVE_CONFLICT"
	//Unitのステータスを更新した操作。
	AuditActionUpdateUnitStatus AuditAction = "UPDATE_UNIT_STATUS"
	//Unitを入庫した操作。
	AuditActionIntakeUnits AuditAction = "INTAKE_UNITS"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourcePayment AuditResourceType = "payment_transaction"
	AuditResourceOrder   AuditResourceType = "order"
	AuditResourceVariant AuditResourceType = "product_variant"
	AuditResourceUnit    AuditResourceType = "unit"
	AuditResourceSyncLog AuditResourceType = "inventory_sync_log"
)

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作したユーザー（主に管理者）のID。
	ActorUserID int64 `gorm:"not null;index" json:"actor_user_id"`

	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`
	ResourceID   int64             `gorm:"not null;index" json:"resource_id"`

	//変更前後はJSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
