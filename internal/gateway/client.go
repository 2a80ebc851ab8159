// Package gateway talks to the payment gateway (Razorpay-compatible
// orders API with Route transfers) and verifies its webhook signatures.
package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/wtppaul/course-marketplace/internal/config"
)

// Transfer routes part of an order to a linked account.
type Transfer struct {
	Account  string            `json:"account"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type OrderRequest struct {
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency"`
	Receipt   string            `json:"receipt,omitempty"`
	Notes     map[string]string `json:"notes,omitempty"`
	Transfers []Transfer        `json:"transfers,omitempty"`
}

// Order is the gateway's view of a created order; the client hands it to
// the checkout widget.
type Order struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt,omitempty"`
	Status   string            `json:"status"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// Client is built once at start-up and shared.
type Client struct {
	http  *resty.Client
	keyID string
}

func NewClient(cfg config.GatewayConfig) *Client {
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetBasicAuth(cfg.KeyID, cfg.KeySecret).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	return &Client{http: http, keyID: cfg.KeyID}
}

// KeyID is the public key the checkout widget needs.
func (c *Client) KeyID() string {
	return c.keyID
}

func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	var (
		order  Order
		failed apiError
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&order).
		SetError(&failed).
		Post("/v1/orders")
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	if resp.IsError() {
		if failed.Error.Description != "" {
			return nil, fmt.Errorf("create order: gateway returned %d: %s (%s)",
				resp.StatusCode(), failed.Error.Description, failed.Error.Code)
		}
		return nil, fmt.Errorf("create order: gateway returned %d", resp.StatusCode())
	}
	if order.ID == "" {
		return nil, fmt.Errorf("create order: gateway response has no order id")
	}
	return &order, nil
}

// VerifySignature checks a hex HMAC-SHA256 of the raw, unparsed body.
func VerifySignature(raw []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	expected, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(raw)
	return hmac.Equal(mac.Sum(nil), expected)
}

// Sign produces the signature VerifySignature accepts.
func Sign(raw []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(raw)
	return hex.EncodeToString(mac.Sum(nil))
}
