package model

import "time"

// 在庫カウンタ書き込みの発生源
const (
	SyncSourceAdminReconcile   = "ADMIN_RECONCILE"
	SyncSourceSettlement       = "SETTLEMENT"
	SyncSourceDeliveryComplete = "DELIVERY_COMPLETE"
	SyncSourceIntake           = "INTAKE"
)

// 在庫カウント観測のログ。カウンタに書き込むたびに1件追記する。
// 観測値がUnit実数からの導出値と食い違ったら conflict=true。
// conflictは管理者が明示的に解消するまで残る（自動解消しない）。
type InventorySyncLogEntry struct {
	ID               int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	VariantID        int64      `gorm:"not null;index" json:"variant_id"`
	OldQuantity      int64      `gorm:"not null" json:"old_quantity"`
	NewQuantity      int64      `gorm:"not null" json:"new_quantity"`
	Source           string     `gorm:"type:varchar(40);not null" json:"source"`
	ActorUserID      *int64     `json:"actor_user_id"`
	Conflict         bool       `gorm:"not null;default:false;index" json:"conflict"`
	Resolved         bool       `gorm:"not null;default:false;index" json:"resolved"`
	ResolvedByUserID *int64     `json:"resolved_by_user_id"`
	ResolvedAt       *time.Time `json:"resolved_at"`
	Note             string     `gorm:"type:varchar(255)" json:"note"`
	CreatedAt        time.Time  `gorm:"not null;index" json:"created_at"`
}
