package model

import "time"

type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusDone       JobStatus = "DONE"
	JobStatusFailed     JobStatus = "FAILED"
)

// ジョブ種別はクローズドなenum。stringテーブルでのディスパッチはしない。
type JobType string

const (
	JobTypeEmail                  JobType = "EMAIL"
	JobTypeNotification           JobType = "NOTIFICATION"
	JobTypeUnclaimedDeliveryAlert JobType = "UNCLAIMED_DELIVERY_ALERT"
)

// 非同期タスク1件。Job Queue Processorだけが消費する。
// locked_at はPROCESSINGのリース開始時刻。リース切れはtick側で回収する。
type JobQueueEntry struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	JobKey      string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"job_key"`
	JobType     JobType    `gorm:"type:varchar(40);not null;index" json:"job_type"`
	PayloadJSON string     `gorm:"type:text" json:"payload_json"`
	Status      JobStatus  `gorm:"type:varchar(20);not null;index" json:"status"`
	RunAt       time.Time  `gorm:"not null;index" json:"run_at"`
	RetryCount  int        `gorm:"not null;default:0" json:"retry_count"`
	LastError   string     `gorm:"type:text" json:"last_error"`
	LockedAt    *time.Time `json:"locked_at"`
	CreatedAt   time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
