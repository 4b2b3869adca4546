package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент сервиса уведомлений.
// Все методы fire-and-forget: уведомления не критичны для бизнес-операций,
// ошибки доставки логируются и никогда не пробрасываются вызывающему.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента сервиса уведомлений.
// Пустой baseURL выключает отправку: все вызовы становятся no-op.
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// PenaltyAssessed уведомляет о начисленном штрафе за позднюю отмену
func (c *Client) PenaltyAssessed(ctx context.Context, bookingID int64, party string, amount float64) {
	c.send(ctx, notificationEvent{
		Type:      eventPenaltyAssessed,
		BookingID: bookingID,
		Payload: map[string]interface{}{
			"party":  party,
			"amount": amount,
		},
	})
}

// DisputeOpened уведомляет об открытии спора
func (c *Client) DisputeOpened(ctx context.Context, bookingID int64, reason string) {
	c.send(ctx, notificationEvent{
		Type:      eventDisputeOpened,
		BookingID: bookingID,
		Payload: map[string]interface{}{
			"reason": reason,
		},
	})
}

// DisputeResolved уведомляет о разрешении спора администратором
func (c *Client) DisputeResolved(ctx context.Context, bookingID int64, resolution string) {
	c.send(ctx, notificationEvent{
		Type:      eventDisputeResolved,
		BookingID: bookingID,
		Payload: map[string]interface{}{
			"resolution": resolution,
		},
	})
}

// BookingAutoCompleted уведомляет об автозавершении бронирования свипером
func (c *Client) BookingAutoCompleted(ctx context.Context, bookingID int64) {
	c.send(ctx, notificationEvent{
		Type:      eventBookingAutoCompleted,
		BookingID: bookingID,
	})
}

func (c *Client) send(ctx context.Context, event notificationEvent) {
	if c.baseURL == "" {
		return
	}

	if err := c.post(ctx, event); err != nil {
		// Graceful degradation: сервис уведомлений не на критическом пути
		c.log.Error("Notifier: failed to deliver %s for booking=%d: %v", event.Type, event.BookingID, err)
		return
	}

	c.log.Info("Notifier: delivered %s for booking=%d", event.Type, event.BookingID)
}

func (c *Client) post(ctx context.Context, event notificationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal event: %v", ErrInternal, err)
	}

	url := fmt.Sprintf("%s/internal/notifications", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}

	return nil
}
