package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/olusegun-dev/bankcore/internal/apperrors"
	"github.com/olusegun-dev/bankcore/internal/gateway"
	"github.com/olusegun-dev/bankcore/internal/logger"
)

const (
	defaultBaseURL = "https://api.paystack.co"
	defaultTimeout = 15 * time.Second

	currency = "NGN"
)

// Amounts cross the Paystack API in kobo, the minor currency unit
var minorUnit = decimal.NewFromInt(100)

type Config struct {
	// Secret key for bearer auth. Required
	SecretKey string

	// Where Paystack redirects the customer after a hosted payment
	CallbackURL string

	// BaseURL and Timeout have sensible defaults
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	baseURL     string
	secretKey   string
	callbackURL string

	client *http.Client
	logger logger.Logger
}

func NewClient(cfg Config, l logger.Logger) (*Client, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("paystack secret key must not be empty")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if l == nil {
		l = logger.NewNoOp()
	}

	return &Client{
		baseURL:     cfg.BaseURL,
		secretKey:   cfg.SecretKey,
		callbackURL: cfg.CallbackURL,
		client:      &http.Client{Timeout: cfg.Timeout},
		logger:      l,
	}, nil
}

// envelope is the common Paystack response wrapper
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) InitializeDeposit(ctx context.Context, email string, amount decimal.Decimal) (gateway.DepositIntent, error) {
	var intent gateway.DepositIntent

	params := map[string]any{
		"email":        email,
		"amount":       toMinorUnits(amount),
		"channels":     []string{"card", "bank_transfer"},
		"callback_url": c.callbackURL,
		"reference":    uuid.NewString(),
	}

	var data struct {
		AuthorizationURL string `json:"authorization_url"`
		Reference        string `json:"reference"`
	}
	if err := c.post(ctx, "/transaction/initialize", params, &data); err != nil {
		return intent, err
	}

	intent.Reference = data.Reference
	intent.AuthorizationURL = data.AuthorizationURL
	return intent, nil
}

func (c *Client) VerifyDeposit(ctx context.Context, reference string, expected decimal.Decimal) (bool, error) {
	var data struct {
		Amount int64  `json:"amount"`
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/transaction/verify/"+reference, &data); err != nil {
		return false, err
	}

	if data.Status != "success" {
		c.logger.Warn("Payment not settled", "reference", reference, "status", data.Status)
		return false, nil
	}
	if data.Amount != toMinorUnits(expected) {
		c.logger.Warn("Payment amount mismatch", "reference", reference, "amount_kobo", data.Amount)
		return false, nil
	}

	return true, nil
}

func (c *Client) CreateRecipient(ctx context.Context, accountNumber string, accountName string, bankCode string) (string, error) {
	params := map[string]any{
		"type":           "nuban",
		"name":           accountName,
		"account_number": accountNumber,
		"bank_code":      bankCode,
		"currency":       currency,
	}

	var data struct {
		RecipientCode string `json:"recipient_code"`
	}
	if err := c.post(ctx, "/transferrecipient", params, &data); err != nil {
		return "", err
	}

	return data.RecipientCode, nil
}

func (c *Client) InitiatePayout(ctx context.Context, recipientID string, amount decimal.Decimal, note string) (gateway.PayoutIntent, error) {
	var intent gateway.PayoutIntent

	reference := uuid.NewString()
	params := map[string]any{
		"source":    "balance",
		"reason":    note,
		"amount":    toMinorUnits(amount),
		"recipient": recipientID,
		"reference": reference,
		"currency":  currency,
	}

	var data struct {
		TransferCode string `json:"transfer_code"`
	}
	if err := c.post(ctx, "/transfer", params, &data); err != nil {
		return intent, err
	}

	intent.Reference = reference
	intent.TransferCode = data.TransferCode
	return intent, nil
}

func (c *Client) post(ctx context.Context, path string, params any, out any) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("Paystack request failed", "path", req.URL.Path, "error", err)
		return fmt.Errorf("%w: %w", apperrors.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close() // nolint:errcheck

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		c.logger.Warn("Failed to decode Paystack response", "path", req.URL.Path, "error", err)
		return fmt.Errorf("%w: failed to decode response: %w", apperrors.ErrGatewayUnavailable, err)
	}

	if resp.StatusCode >= 300 || !env.Status {
		c.logger.Warn("Paystack call rejected", "path", req.URL.Path, "status_code", resp.StatusCode, "message", env.Message)
		return fmt.Errorf("%w: %s", apperrors.ErrGatewayUnavailable, env.Message)
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: failed to decode response data: %w", apperrors.ErrGatewayUnavailable, err)
	}

	return nil
}

func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(minorUnit).IntPart()
}
