package model

import "time"

type VehicleStatus string

const (
	VehicleStatusAvailable VehicleStatus = "AVAILABLE"
	VehicleStatusInUse     VehicleStatus = "IN_USE"
)

// 配送車両。current_delivery_id は IN_USE のときだけ非NULL。
type Vehicle struct {
	ID                int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Name              string        `gorm:"type:varchar(255);not null" json:"name"`
	PlateNumber       string        `gorm:"type:varchar(50);not null;uniqueIndex" json:"plate_number"`
	Status            VehicleStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CurrentDeliveryID *int64        `gorm:"index" json:"current_delivery_id"`
	CreatedAt         time.Time     `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time     `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
