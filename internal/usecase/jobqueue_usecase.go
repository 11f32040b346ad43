package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/domain/model"
	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/logger"
	repo "github.com/tropictechindo-project/TropicWeb2-sub002/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	//1回の失敗＋3回リトライで計4回試行
	maxJobRetries = 3
	retryDelay    = 5 * time.Minute

	//PROCESSINGのままこの時間を超えたらクラッシュとみなして回収する
	processingLease = 10 * time.Minute

	//支払い確定後、この時間クレームされなかったらアラート
	unclaimedAlertDelay = time.Hour
)

// 通知の送信先。メール・プッシュの実体は外部サービス
type Notifier interface {
	NotifyOrderPaid(ctx context.Context, orderID int64) error
	NotifyUnclaimedDelivery(ctx context.Context, deliveryID int64) error
	SendEmail(ctx context.Context, to string, subject string, body string) error
}

type notificationPayload struct {
	OrderID int64 `json:"order_id"`
}

type unclaimedAlertPayload struct {
	DeliveryID int64 `json:"delivery_id"`
}

type emailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// 他のusecaseのTxの中からジョブを積む（rollbackされればジョブも消える）
func enqueueJob(ctx context.Context, r repo.TxRepos, jobType model.JobType, payload interface{}, runAt time.Time) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = r.JobQueue().Enqueue(ctx, model.JobQueueEntry{
		JobKey:      uuid.NewString(),
		JobType:     jobType,
		PayloadJSON: string(raw),
		Status:      model.JobStatusPending,
		RunAt:       runAt,
	})
	return err
}

type JobQueueUsecase struct {
	tx       repo.TransactionManager
	notifier Notifier
}

func NewJobQueueUsecase(tx repo.TransactionManager, notifier Notifier) *JobQueueUsecase {
	return &JobQueueUsecase{tx: tx, notifier: notifier}
}

type TickOutput struct {
	Processed int    `json:"processed"`
	JobID     *int64 `json:"job_id,omitempty"`
}

// 1回のtickで最大1件dequeueして処理する。
// select+markは同一Txの原子操作なので、tickが重なっても同じジョブを
// 2回取ることはない。対象なしは正常（processed=0）
func (u *JobQueueUsecase) Tick(ctx context.Context) (TickOutput, error) {
	now := time.Now()

	var entry model.JobQueueEntry
	found := false

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// リース切れPROCESSINGの回収
		reclaimed, err := r.JobQueue().ReclaimExpired(ctx, now.Add(-processingLease))
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if reclaimed > 0 {
			logger.Get().Warn("reclaimed expired queue jobs", zap.Int64("count", reclaimed))
		}

		e, ok, err := r.JobQueue().FindOldestReadyForUpdate(ctx, now)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			return nil
		}

		locked, err := r.JobQueue().MarkProcessing(ctx, e.ID, now)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !locked {
			//別のtickが先に取った
			return nil
		}

		entry = e
		found = true
		return nil
	})

	if err != nil {
		return TickOutput{}, err
	}
	if !found {
		return TickOutput{Processed: 0}, nil
	}

	handlerErr := u.dispatch(ctx, entry)

	// 結果の書き戻し。ハンドラ実行はTxの外なのでここは別Tx
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if handlerErr == nil {
			if err := r.JobQueue().MarkDone(ctx, entry.ID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			return nil
		}

		if entry.RetryCount < maxJobRetries {
			//5分後に再実行
			if err := r.JobQueue().Requeue(ctx, entry.ID, now.Add(retryDelay), handlerErr.Error()); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			return nil
		}

		//リトライ上限。手動調査用にFAILEDで止める
		if err := r.JobQueue().MarkFailed(ctx, entry.ID, handlerErr.Error()); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})

	if err != nil {
		return TickOutput{}, err
	}

	if handlerErr != nil {
		logger.Get().Warn("queue job failed",
			zap.Int64("job_id", entry.ID),
			zap.String("job_type", string(entry.JobType)),
			zap.Int("retry_count", entry.RetryCount),
			zap.Error(handlerErr),
		)
	}

	return TickOutput{Processed: 1, JobID: &entry.ID}, nil
}

// ジョブ種別で分岐。クローズドなenumなのでここが唯一のディスパッチ箇所
func (u *JobQueueUsecase) dispatch(ctx context.Context, e model.JobQueueEntry) error {
	switch e.JobType {
	case model.JobTypeNotification:
		var p notificationPayload
		if err := json.Unmarshal([]byte(e.PayloadJSON), &p); err != nil {
			return fmt.Errorf("bad payload: %w", err)
		}
		return u.notifier.NotifyOrderPaid(ctx, p.OrderID)

	case model.JobTypeUnclaimedDeliveryAlert:
		var p unclaimedAlertPayload
		if err := json.Unmarshal([]byte(e.PayloadJSON), &p); err != nil {
			return fmt.Errorf("bad payload: %w", err)
		}
		return u.handleUnclaimedAlert(ctx, p.DeliveryID)

	case model.JobTypeEmail:
		var p emailPayload
		if err := json.Unmarshal([]byte(e.PayloadJSON), &p); err != nil {
			return fmt.Errorf("bad payload: %w", err)
		}
		return u.notifier.SendEmail(ctx, p.To, p.Subject, p.Body)

	default:
		return fmt.Errorf("unknown job type: %s", e.JobType)
	}
}

// クレーム済みならアラート不要。未クレームならADMIN宛のメールジョブも積む
func (u *JobQueueUsecase) handleUnclaimedAlert(ctx context.Context, deliveryID int64) error {
	var stillQueued bool

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		d, err := r.Deliveries().FindByID(ctx, deliveryID)
		if err == repo.ErrNotFound {
			//配送ごと消えていたら何もしない
			return nil
		}
		if err != nil {
			return err
		}
		if d.Status != model.DeliveryStatusQueued {
			return nil
		}
		stillQueued = true

		admins, err := r.Users().ListByRole(ctx, model.RoleAdmin)
		if err != nil {
			return err
		}
		for _, a := range admins {
			p := emailPayload{
				To:      a.Email,
				Subject: fmt.Sprintf("未クレーム配送 #%d", deliveryID),
				Body:    fmt.Sprintf("配送 %d が1時間以上クレームされていません。配送キューを確認してください。", deliveryID),
			}
			if err := enqueueJob(ctx, r, model.JobTypeEmail, p, time.Now()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if !stillQueued {
		return nil
	}
	return u.notifier.NotifyUnclaimedDelivery(ctx, deliveryID)
}
