package repository

import (
	"context"
	"time"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/domain/model"
)

type JobQueueRepository interface {
	Enqueue(ctx context.Context, e model.JobQueueEntry) (int64, error)

	// run_atを過ぎた最古のPENDINGをFOR UPDATEで取得。
	// MarkProcessingと同一Txで使うこと（二重取得防止）。
	FindOldestReadyForUpdate(ctx context.Context, now time.Time) (model.JobQueueEntry, bool, error)

	// PENDINGのときだけPROCESSINGへ。falseなら別のtickに取られた
	MarkProcessing(ctx context.Context, id int64, at time.Time) (bool, error)

	MarkDone(ctx context.Context, id int64) error

	// リトライ再登録：PENDINGに戻しretry_count+1、次回実行時刻とエラーを記録
	Requeue(ctx context.Context, id int64, runAt time.Time, lastError string) error

	// 恒久失敗。以後自動では再実行しない
	MarkFailed(ctx context.Context, id int64, lastError string) error

	// リース切れのPROCESSINGをPENDINGに戻す（クラッシュ回収）
	ReclaimExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
