package scheduler

import (
	"context"
	"time"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/logger"
	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/usecase"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ジョブキューのtickを定期実行するスケジューラ
type Scheduler struct {
	cron *cron.Cron
	uc   *usecase.JobQueueUsecase
}

func New(uc *usecase.JobQueueUsecase, tickSpec string) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{cron: c, uc: uc}

	if _, err := c.AddFunc(tickSpec, s.tick); err != nil {
		return nil, err
	}

	return s, nil
}

// 1tickで最大1件処理する。空なら何もしない
func (s *Scheduler) tick() {
	defer func() {
		if r := recover(); r != nil {
			logger.Get().Error("queue tick panicked", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	out, err := s.uc.Tick(ctx)
	if err != nil {
		logger.Get().Warn("queue tick failed", zap.Error(err))
		return
	}
	if out.Processed > 0 {
		logger.Get().Info("queue tick processed job",
			zap.Int("processed", out.Processed),
			zap.Int64p("job_id", out.JobID))
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Get().Info("queue scheduler started")
}

// Stopは走行中のtickが終わるまで待つ
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Get().Info("queue scheduler stopped")
}
