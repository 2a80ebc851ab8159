package gateway

import (
	"encoding/json"
	"fmt"
)

const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"

	StatusCaptured = "captured"
)

// PaymentEntity is the part of the webhook payload settlement reads.
type PaymentEntity struct {
	ID       string            `json:"id"`
	OrderID  string            `json:"order_id"`
	Status   string            `json:"status"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Notes    map[string]string `json:"notes"`
}

type WebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity PaymentEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// ParseWebhook decodes a body whose signature has already been verified.
func ParseWebhook(raw []byte) (*WebhookEvent, error) {
	var evt WebhookEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		return nil, fmt.Errorf("decode webhook: %w", err)
	}
	if evt.Payload.Payment.Entity.OrderID == "" {
		return nil, fmt.Errorf("decode webhook: payment entity has no order id")
	}
	return &evt, nil
}

func (e *WebhookEvent) Payment() PaymentEntity {
	return e.Payload.Payment.Entity
}
