package notify

import (
	"context"

	"github.com/tropictechindo-project/TropicWeb2-sub002/internal/logger"

	"go.uber.org/zap"
)

// 通知のログ出力実装。dev環境ではこれをそのまま使う
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) NotifyOrderPaid(ctx context.Context, orderID int64) error {
	logger.Get().Info("notify: order paid", zap.Int64("order_id", orderID))
	return nil
}

func (n *LogNotifier) NotifyUnclaimedDelivery(ctx context.Context, deliveryID int64) error {
	logger.Get().Warn("notify: delivery unclaimed", zap.Int64("delivery_id", deliveryID))
	return nil
}

func (n *LogNotifier) SendEmail(ctx context.Context, to string, subject string, body string) error {
	logger.Get().Info("notify: email",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_len", len(body)))
	return nil
}
