package model

import "time"

type OrderStatus string

const (
	OrderStatusPending              OrderStatus = "PENDING"
	OrderStatusPaymentPendingVerify OrderStatus = "PAYMENT_PENDING_VERIFICATION"
	OrderStatusPaid                 OrderStatus = "PAID"
	OrderStatusInProgress           OrderStatus = "IN_PROGRESS"
	OrderStatusCompleted            OrderStatus = "COMPLETED"
	OrderStatusCancelled            OrderStatus = "CANCELLED"
)

// レンタル契約。UserIDがNULLならゲスト注文。
type Order struct {
	ID         int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     *int64      `gorm:"index" json:"user_id"`
	GuestEmail string      `gorm:"type:varchar(255)" json:"guest_email"`
	Status     OrderStatus `gorm:"type:varchar(40);not null;index" json:"status"`
	TotalPrice int64       `gorm:"not null" json:"total_price"`
	StartDate  time.Time   `gorm:"not null" json:"start_date"`
	EndDate    time.Time   `gorm:"not null" json:"end_date"`
	CreatedAt  time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

type OrderItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64     `gorm:"not null;index" json:"order_id"`
	VariantID int64     `gorm:"not null;index" json:"variant_id"`
	// 特定Unitに紐づく場合のみ非NULL
	UnitID            *int64    `gorm:"index" json:"unit_id"`
	Quantity          int64     `gorm:"not null" json:"quantity"`
	UnitPriceSnapshot int64     `gorm:"not null" json:"unit_price_snapshot"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
