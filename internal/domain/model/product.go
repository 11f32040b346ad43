package model

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	IsActive    bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt   time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// バリアントごとの在庫カウンタ。
// stock_quantity / reserved_quantity はキャッシュ値で、Unitの実数から
// 同一Tx内で再計算する（独立に加減算してドリフトさせない）。
// stock_quantity = AVAILABLE + RESERVED、reserved_quantity = RESERVED。
type ProductVariant struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID        int64     `gorm:"not null;index" json:"product_id"`
	SKU              string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"sku"`
	Name             string    `gorm:"type:varchar(255);not null" json:"name"`
	PricePerDay      int64     `gorm:"not null" json:"price_per_day"`
	StockQuantity    int64     `gorm:"not null;default:0" json:"stock_quantity"`
	ReservedQuantity int64     `gorm:"not null;default:0" json:"reserved_quantity"`
	CreatedAt        time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
