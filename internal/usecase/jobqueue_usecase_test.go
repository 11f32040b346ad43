package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/domain/model"
	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// 通知呼び出しの記録用
type NotifierMock struct {
	paidOrders          []int64
	unclaimedDeliveries []int64
	emails              []string
	err                 error
}

func (m *NotifierMock) NotifyOrderPaid(ctx context.Context, orderID int64) error {
	m.paidOrders = append(m.paidOrders, orderID)
	return m.err
}

func (m *NotifierMock) NotifyUnclaimedDelivery(ctx context.Context, deliveryID int64) error {
	m.unclaimedDeliveries = append(m.unclaimedDeliveries, deliveryID)
	return m.err
}

func (m *NotifierMock) SendEmail(ctx context.Context, to string, subject string, body string) error {
	m.emails = append(m.emails, to)
	return m.err
}

func TestJobQueueUsecase_Tick_Empty(t *testing.T) {
	tx := new(TxManagerMock)
	jobQueue := new(JobQueueRepoMock)

	tx.Repos = &TxReposMock{jobQueue: jobQueue}
	tx.On("WithinTx", mock.Anything).Return(nil)

	jobQueue.On("ReclaimExpired", mock.Anything).Return(int64(0), nil)
	jobQueue.On("FindOldestReadyForUpdate", mock.Anything).
		Return(model.JobQueueEntry{}, false, nil)

	uc := usecase.NewJobQueueUsecase(tx, &NotifierMock{})

	out, err := uc.Tick(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, out.Processed)
	assert.Nil(t, out.JobID)

	jobQueue.AssertNotCalled(t, "MarkProcessing", mock.Anything, mock.Anything)
}

func TestJobQueueUsecase_Tick_NotificationSuccess(t *testing.T) {
	tx := new(TxManagerMock)
	jobQueue := new(JobQueueRepoMock)

	tx.Repos = &TxReposMock{jobQueue: jobQueue}
	tx.On("WithinTx", mock.Anything).Return(nil)

	entry := model.JobQueueEntry{
		ID:          1,
		JobType:     model.JobTypeNotification,
		PayloadJSON: `{"order_id":10}`,
		Status:      model.JobStatusPending,
	}

	jobQueue.On("ReclaimExpired", mock.Anything).Return(int64(0), nil)
	jobQueue.On("FindOldestReadyForUpdate", mock.Anything).Return(entry, true, nil)
	jobQueue.On("MarkProcessing", mock.Anything, int64(1)).Return(true, nil)
	jobQueue.On("MarkDone", mock.Anything, int64(1)).Return(nil)

	notifier := &NotifierMock{}
	uc := usecase.NewJobQueueUsecase(tx, notifier)

	out, err := uc.Tick(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, out.Processed)
	assert.Equal(t, int64(1), *out.JobID)
	assert.Equal(t, []int64{10}, notifier.paidOrders)

	jobQueue.AssertExpectations(t)
}

// 別のtickに先を越されたら何もしない（二重実行しない）
func TestJobQueueUsecase_Tick_LostRace(t *testing.T) {
	tx := new(TxManagerMock)
	jobQueue := new(JobQueueRepoMock)

	tx.Repos = &TxReposMock{jobQueue: jobQueue}
	tx.On("WithinTx", mock.Anything).Return(nil)

	entry := model.JobQueueEntry{ID: 1, JobType: model.JobTypeNotification}

	jobQueue.On("ReclaimExpired", mock.Anything).Return(int64(0), nil)
	jobQueue.On("FindOldestReadyForUpdate", mock.Anything).Return(entry, true, nil)
	jobQueue.On("MarkProcessing", mock.Anything, int64(1)).Return(false, nil)

	notifier := &NotifierMock{}
	uc := usecase.NewJobQueueUsecase(tx, notifier)

	out, err := uc.Tick(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, out.Processed)
	assert.Empty(t, notifier.paidOrders)

	jobQueue.AssertNotCalled(t, "MarkDone", mock.Anything, mock.Anything)
}

// 失敗は5分後に再実行。retry_countはrepo側でインクリメント
func TestJobQueueUsecase_Tick_FailureRequeues(t *testing.T) {
	tx := new(TxManagerMock)
	jobQueue := new(JobQueueRepoMock)

	tx.Repos = &TxReposMock{jobQueue: jobQueue}
	tx.On("WithinTx", mock.Anything).Return(nil)

	entry := model.JobQueueEntry{
		ID:          1,
		JobType:     model.JobTypeNotification,
		PayloadJSON: `{"order_id":10}`,
		RetryCount:  1,
	}

	jobQueue.On("ReclaimExpired", mock.Anything).Return(int64(0), nil)
	jobQueue.On("FindOldestReadyForUpdate", mock.Anything).Return(entry, true, nil)
	jobQueue.On("MarkProcessing", mock.Anything, int64(1)).Return(true, nil)
	jobQueue.On("Requeue", mock.Anything, int64(1),
		mock.MatchedBy(func(runAt time.Time) bool {
			d := time.Until(runAt)
			return d > 4*time.Minute && d < 6*time.Minute
		}),
		"smtp down").Return(nil)

	notifier := &NotifierMock{err: errors.New("smtp down")}
	uc := usecase.NewJobQueueUsecase(tx, notifier)

	out, err := uc.Tick(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, out.Processed)

	jobQueue.AssertExpectations(t)
	jobQueue.AssertNotCalled(t, "MarkDone", mock.Anything, mock.Anything)
	jobQueue.AssertNotCalled(t, "MarkFailed", mock.Anything, mock.Anything, mock.Anything)
}

// リトライ上限に達したら恒久失敗で止める
func TestJobQueueUsecase_Tick_RetryLimitMarksFailed(t *testing.T) {
	tx := new(TxManagerMock)
	jobQueue := new(JobQueueRepoMock)

	tx.Repos = &TxReposMock{jobQueue: jobQueue}
	tx.On("WithinTx", mock.Anything).Return(nil)

	entry := model.JobQueueEntry{
		ID:          1,
		JobType:     model.JobTypeNotification,
		PayloadJSON: `{"order_id":10}`,
		RetryCount:  3,
	}

	jobQueue.On("ReclaimExpired", mock.Anything).Return(int64(0), nil)
	jobQueue.On("FindOldestReadyForUpdate", mock.Anything).Return(entry, true, nil)
	jobQueue.On("MarkProcessing", mock.Anything, int64(1)).Return(true, nil)
	jobQueue.On("MarkFailed", mock.Anything, int64(1), "smtp down").Return(nil)

	notifier := &NotifierMock{err: errors.New("smtp down")}
	uc := usecase.NewJobQueueUsecase(tx, notifier)

	out, err := uc.Tick(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, out.Processed)

	jobQueue.AssertExpectations(t)
	jobQueue.AssertNotCalled(t, "Requeue", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// 壊れたペイロードもリトライ経路に乗る
func TestJobQueueUsecase_Tick_BadPayloadRequeues(t *testing.T) {
	tx := new(TxManagerMock)
	jobQueue := new(JobQueueRepoMock)

	tx.Repos = &TxReposMock{jobQueue: jobQueue}
	tx.On("WithinTx", mock.Anything).Return(nil)

	entry := model.JobQueueEntry{
		ID:          1,
		JobType:     model.JobTypeNotification,
		PayloadJSON: `not json`,
	}

	jobQueue.On("ReclaimExpired", mock.Anything).Return(int64(0), nil)
	jobQueue.On("FindOldestReadyForUpdate", mock.Anything).Return(entry, true, nil)
	jobQueue.On("MarkProcessing", mock.Anything, int64(1)).Return(true, nil)
	jobQueue.On("Requeue", mock.Anything, int64(1), mock.Anything, mock.Anything).Return(nil)

	notifier := &NotifierMock{}
	uc := usecase.NewJobQueueUsecase(tx, notifier)

	out, err := uc.Tick(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, out.Processed)
	assert.Empty(t, notifier.paidOrders)
}

// 未クレームアラート：まだQUEUEDなら通知する
func TestJobQueueUsecase_Tick_UnclaimedAlert_StillQueued(t *testing.T) {
	tx := new(TxManagerMock)
	jobQueue := new(JobQueueRepoMock)
	deliveries := new(DeliveryRepoMock)
	users := new(UserRepoMock)

	tx.Repos = &TxReposMock{jobQueue: jobQueue, deliveries: deliveries, users: users}
	tx.On("WithinTx", mock.Anything).Return(nil)

	entry := model.JobQueueEntry{
		ID:          1,
		JobType:     model.JobTypeUnclaimedDeliveryAlert,
		PayloadJSON: `{"delivery_id":5}`,
	}

	jobQueue.On("ReclaimExpired", mock.Anything).Return(int64(0), nil)
	jobQueue.On("FindOldestReadyForUpdate", mock.Anything).Return(entry, true, nil)
	jobQueue.On("MarkProcessing", mock.Anything, int64(1)).Return(true, nil)
	deliveries.On("FindByID", mock.Anything, int64(5)).
		Return(model.Delivery{ID: 5, Status: model.DeliveryStatusQueued}, nil)
	users.On("ListByRole", mock.Anything, model.RoleAdmin).Return([]model.User{
		{ID: 1, Email: "ops1@example.com", Role: model.RoleAdmin},
		{ID: 2, Email: "ops2@example.com", Role: model.RoleAdmin},
	}, nil)
	// 管理者ごとにメールジョブを積む
	jobQueue.On("Enqueue", mock.Anything, mock.MatchedBy(func(e model.JobQueueEntry) bool {
		return e.JobType == model.JobTypeEmail && strings.Contains(e.PayloadJSON, "ops1@example.com")
	})).Return(int64(100), nil).Once()
	jobQueue.On("Enqueue", mock.Anything, mock.MatchedBy(func(e model.JobQueueEntry) bool {
		return e.JobType == model.JobTypeEmail && strings.Contains(e.PayloadJSON, "ops2@example.com")
	})).Return(int64(101), nil).Once()
	jobQueue.On("MarkDone", mock.Anything, int64(1)).Return(nil)

	notifier := &NotifierMock{}
	uc := usecase.NewJobQueueUsecase(tx, notifier)

	out, err := uc.Tick(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, out.Processed)
	assert.Equal(t, []int64{5}, notifier.unclaimedDeliveries)

	jobQueue.AssertExpectations(t)
}

// クレーム済みならアラートは出さずDONEで終わる
func TestJobQueueUsecase_Tick_UnclaimedAlert_AlreadyClaimed(t *testing.T) {
	tx := new(TxManagerMock)
	jobQueue := new(JobQueueRepoMock)
	deliveries := new(DeliveryRepoMock)
	users := new(UserRepoMock)

	tx.Repos = &TxReposMock{jobQueue: jobQueue, deliveries: deliveries, users: users}
	tx.On("WithinTx", mock.Anything).Return(nil)

	entry := model.JobQueueEntry{
		ID:          1,
		JobType:     model.JobTypeUnclaimedDeliveryAlert,
		PayloadJSON: `{"delivery_id":5}`,
	}

	jobQueue.On("ReclaimExpired", mock.Anything).Return(int64(0), nil)
	jobQueue.On("FindOldestReadyForUpdate", mock.Anything).Return(entry, true, nil)
	jobQueue.On("MarkProcessing", mock.Anything, int64(1)).Return(true, nil)
	deliveries.On("FindByID", mock.Anything, int64(5)).
		Return(model.Delivery{ID: 5, Status: model.DeliveryStatusClaimed, ClaimedByUserID: int64ptr(7)}, nil)
	jobQueue.On("MarkDone", mock.Anything, int64(1)).Return(nil)

	notifier := &NotifierMock{}
	uc := usecase.NewJobQueueUsecase(tx, notifier)

	out, err := uc.Tick(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, out.Processed)
	assert.Empty(t, notifier.unclaimedDeliveries)

	users.AssertNotCalled(t, "ListByRole", mock.Anything, mock.Anything)
	jobQueue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
	jobQueue.AssertExpectations(t)
}

// リース切れのPROCESSINGはtickの先頭で回収される
func TestJobQueueUsecase_Tick_ReclaimsExpired(t *testing.T) {
	tx := new(TxManagerMock)
	jobQueue := new(JobQueueRepoMock)

	tx.Repos = &TxReposMock{jobQueue: jobQueue}
	tx.On("WithinTx", mock.Anything).Return(nil)

	jobQueue.On("ReclaimExpired", mock.Anything).Return(int64(2), nil)
	jobQueue.On("FindOldestReadyForUpdate", mock.Anything).
		Return(model.JobQueueEntry{}, false, nil)

	uc := usecase.NewJobQueueUsecase(tx, &NotifierMock{})

	out, err := uc.Tick(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, out.Processed)

	jobQueue.AssertExpectations(t)
}
