package model

import "time"

type Role string

const (
	RoleUser   Role = "USER"
	RoleWorker Role = "WORKER"
	RoleAdmin  Role = "ADMIN"
)

// 認証トークンの発行は外部。ここではrole判定と通知先にだけ使う。
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Role      Role      `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
