package model

import "time"

type DeliveryStatus string

const (
	DeliveryStatusQueued         DeliveryStatus = "QUEUED"
	DeliveryStatusClaimed        DeliveryStatus = "CLAIMED"
	DeliveryStatusOutForDelivery DeliveryStatus = "OUT_FOR_DELIVERY"
	DeliveryStatusPaused         DeliveryStatus = "PAUSED"
	DeliveryStatusDelayed        DeliveryStatus = "DELAYED"
	DeliveryStatusCompleted      DeliveryStatus = "COMPLETED"
	DeliveryStatusCanceled       DeliveryStatus = "CANCELED"
)

// 配送1件。QUEUEDの間は claimed_by_user_id / vehicle_id とも NULL、
// CLAIMED以降は両方非NULL。完了時に車両は解放される。
type Delivery struct {
	ID              int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	InvoiceID       int64          `gorm:"not null;index" json:"invoice_id"`
	Status          DeliveryStatus `gorm:"type:varchar(30);not null;index" json:"status"`
	ClaimedByUserID *int64         `gorm:"index" json:"claimed_by_user_id"`
	VehicleID       *int64         `gorm:"index" json:"vehicle_id"`
	ScheduledDate   time.Time      `gorm:"not null" json:"scheduled_date"`
	CompletedAt     *time.Time     `json:"completed_at"`
	CreatedAt       time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

type DeliveryItem struct {
	ID         int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	DeliveryID int64 `gorm:"not null;index" json:"delivery_id"`
	VariantID  int64 `gorm:"not null;index" json:"variant_id"`
	Quantity   int64 `gorm:"not null" json:"quantity"`
	// 積み込み順
	Position int `gorm:"not null;default:0" json:"position"`
}

type DeliveryEvent string

const (
	DeliveryEventClaimed       DeliveryEvent = "CLAIMED"
	DeliveryEventStatusChanged DeliveryEvent = "STATUS_CHANGED"
	DeliveryEventCompleted     DeliveryEvent = "COMPLETED"
)

// 配送単位のイベントログ。追記のみ。
type DeliveryLog struct {
	ID          int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	DeliveryID  int64         `gorm:"not null;index" json:"delivery_id"`
	Event       DeliveryEvent `gorm:"type:varchar(30);not null" json:"event"`
	ActorUserID int64         `gorm:"not null" json:"actor_user_id"`
	PayloadJSON string        `gorm:"type:text" json:"payload_json"`
	CreatedAt   time.Time     `gorm:"not null;index" json:"created_at"`
}
