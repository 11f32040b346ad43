package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// 配送完了を外部のレポート基盤へ送るクライアント。
// ベストエフォートで呼ばれる前提なので、失敗はそのままerrorで返すだけ
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

type deliveryCompletedRequest struct {
	DeliveryID  int64     `json:"delivery_id"`
	CompletedAt time.Time `json:"completed_at"`
}

func (c *Client) ReportDeliveryCompleted(ctx context.Context, deliveryID int64, completedAt time.Time) error {
	//レポート先未設定なら何もしない
	if c.baseURL == "" {
		return nil
	}

	body, err := json.Marshal(deliveryCompletedRequest{
		DeliveryID:  deliveryID,
		CompletedAt: completedAt,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/deliveries/completed", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		return fmt.Errorf("report failed: status %d", res.StatusCode)
	}
	return nil
}
