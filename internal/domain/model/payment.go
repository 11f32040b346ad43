package model

import "time"

type PaymentStatus string

const (
	PaymentStatusInitiated           PaymentStatus = "INITIATED"
	PaymentStatusPendingVerification PaymentStatus = "PENDING_VERIFICATION"
	PaymentStatusConfirmed           PaymentStatus = "CONFIRMED"
)

// 注文に対する1回の支払い試行。
// amount == Order.TotalPrice のチェックは作成時ではなく承認時に行う。
type PaymentTransaction struct {
	ID               int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID          int64         `gorm:"not null;index" json:"order_id"`
	Provider         string        `gorm:"type:varchar(50);not null" json:"provider"`
	Amount           int64         `gorm:"not null" json:"amount"`
	Currency         string        `gorm:"type:varchar(10);not null" json:"currency"`
	Status           PaymentStatus `gorm:"type:varchar(30);not null;index" json:"status"`
	ProofRef         string        `gorm:"type:varchar(255)" json:"proof_ref"`
	VerifiedByUserID *int64        `json:"verified_by_user_id"`
	VerifiedAt       *time.Time    `json:"verified_at"`
	CreatedAt        time.Time     `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time     `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

type InvoiceStatus string

const (
	InvoiceStatusSent InvoiceStatus = "SENT"
	InvoiceStatusPaid InvoiceStatus = "PAID"
)

// 注文から導出される請求。TotalはOrder.TotalPriceと乖離させない。
type Invoice struct {
	ID          int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     int64         `gorm:"not null;uniqueIndex" json:"order_id"`
	Subtotal    int64         `gorm:"not null" json:"subtotal"`
	Tax         int64         `gorm:"not null" json:"tax"`
	DeliveryFee int64         `gorm:"not null" json:"delivery_fee"`
	Discount    int64         `gorm:"not null" json:"discount"`
	Total       int64         `gorm:"not null" json:"total"`
	Status      InvoiceStatus `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt   time.Time     `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
