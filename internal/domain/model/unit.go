package model

import "time"

type UnitStatus string

const (
	UnitStatusAvailable   UnitStatus = "AVAILABLE"
	UnitStatusReserved    UnitStatus = "RESERVED"
	UnitStatusRented      UnitStatus = "RENTED"
	UnitStatusMaintenance UnitStatus = "MAINTENANCE"
	UnitStatusLost        UnitStatus = "LOST"
)

// 正常系は AVAILABLE → RESERVED → RENTED → AVAILABLE。
// MAINTENANCE / LOST はどの状態からでも入れる（管理者のみ）。
func (s UnitStatus) CanTransitionTo(to UnitStatus) bool {
	// LOSTは終端
	if s == UnitStatusLost {
		return false
	}
	if to == UnitStatusMaintenance || to == UnitStatusLost {
		return s != to
	}
	switch s {
	case UnitStatusAvailable:
		return to == UnitStatusReserved
	case UnitStatusReserved:
		return to == UnitStatusRented || to == UnitStatusAvailable
	case UnitStatusRented:
		return to == UnitStatusAvailable
	case UnitStatusMaintenance:
		return to == UnitStatusAvailable
	}
	return false
}

// assigned_order_id はこの2状態のときだけ非NULL
func (s UnitStatus) RequiresAssignedOrder() bool {
	return s == UnitStatusReserved || s == UnitStatusRented
}

// シリアル管理される物理在庫1点。
// 過去の注文から参照されるため物理削除しない。
type Unit struct {
	ID              int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	VariantID       int64      `gorm:"not null;index" json:"variant_id"`
	SerialNumber    string     `gorm:"type:varchar(100);not null;uniqueIndex" json:"serial_number"`
	Status          UnitStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	AssignedOrderID *int64     `gorm:"index" json:"assigned_order_id"`
	PurchasedAt     *time.Time `json:"purchased_at"`
	LastServicedAt  *time.Time `json:"last_serviced_at"`
	CreatedAt       time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 状態遷移の監査履歴。追記のみで更新・削除しない。
type UnitHistory struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UnitID      int64      `gorm:"not null;index" json:"unit_id"`
	OldStatus   UnitStatus `gorm:"type:varchar(20);not null" json:"old_status"`
	NewStatus   UnitStatus `gorm:"type:varchar(20);not null" json:"new_status"`
	ActorUserID int64      `gorm:"not null" json:"actor_user_id"`
	Reason      string     `gorm:"type:varchar(255)" json:"reason"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"created_at"`
}
