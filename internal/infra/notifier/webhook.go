package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"app/internal/domain/model"

	"go.uber.org/zap"
)

// 注文を外部Webhookへ転送する。
// 2xx以外も通信エラーも同じ失敗として返す（呼び出し側は成否しか見ない）。
type OrderWebhook struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// DI
func NewOrderWebhook(url string, timeout time.Duration, logger *zap.Logger) *OrderWebhook {
	return &OrderWebhook{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (w *OrderWebhook) Notify(ctx context.Context, o model.Order) error {
	err := postJSON(ctx, w.client, w.url, o)
	if err != nil {
		w.logger.Warn("order webhook failed", zap.Error(err))
		return err
	}

	w.logger.Info("order sent", zap.String("name", o.Name), zap.String("total", o.Total))
	return nil
}

// 問い合わせフォームを外部Webhookへ転送する。
type ContactWebhook struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// DI
func NewContactWebhook(url string, timeout time.Duration, logger *zap.Logger) *ContactWebhook {
	return &ContactWebhook{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (w *ContactWebhook) Forward(ctx context.Context, name string, email string, message string) error {
	payload := map[string]string{
		"name":    name,
		"email":   email,
		"message": message,
	}

	err := postJSON(ctx, w.client, w.url, payload)
	if err != nil {
		w.logger.Warn("contact webhook failed", zap.Error(err))
		return err
	}

	return nil
}

func postJSON(ctx context.Context, client *http.Client, url string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return fmt.Errorf("webhook status %d: %s", res.StatusCode, string(b))
	}

	return nil
}
