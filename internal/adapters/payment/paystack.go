package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/bookahq/booka_backend/internal/apperrors"
	"github.com/bookahq/booka_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

const paystackBaseURL = "https://api.paystack.co"

// PaystackClient talks to the Paystack transaction API.
type PaystackClient struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

// NewPaystackClient creates a Paystack client with the given secret key.
func NewPaystackClient(secretKey string) *PaystackClient {
	return &PaystackClient{
		secretKey:  secretKey,
		baseURL:    paystackBaseURL,
		httpClient: defaultHTTPClient(),
	}
}

var _ Client = (*PaystackClient)(nil)

type paystackInitializeRequest struct {
	Email    string            `json:"email"`
	Amount   int64             `json:"amount"` // minor units
	Currency string            `json:"currency,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type paystackResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type paystackTransactionData struct {
	AuthorizationURL string            `json:"authorization_url"`
	Reference        string            `json:"reference"`
	Status           string            `json:"status"`
	Amount           int64             `json:"amount"`
	Currency         string            `json:"currency"`
	Metadata         map[string]string `json:"metadata"`
}

// CreateDepositIntent initializes a hosted Paystack transaction and returns
// its reference and authorization URL.
func (c *PaystackClient) CreateDepositIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	payload := paystackInitializeRequest{
		Email:    req.Email,
		Amount:   req.AmountMinor,
		Currency: req.Currency,
		Metadata: req.Metadata,
	}
	body, raw, err := c.do(ctx, http.MethodPost, "/transaction/initialize", payload)
	if err != nil {
		return nil, err
	}

	var data paystackTransactionData
	if err := json.Unmarshal(body.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: paystack: decoding initialize response: %v", apperrors.ErrProvider, err)
	}

	return &Intent{
		ID:         data.Reference,
		Status:     domain.TransactionPending,
		Provider:   domain.ProviderPaystack,
		PaymentURL: data.AuthorizationURL,
		Raw:        raw,
	}, nil
}

// Retry verifies a previously initialized transaction by its reference.
// A verified "success" resolves the retry; any other status is a provider
// failure the retry worker will count against the attempt ceiling.
func (c *PaystackClient) Retry(ctx context.Context, txn domain.Transaction) (*Intent, error) {
	if txn.ProviderRef == "" {
		return nil, fmt.Errorf("%w: paystack: transaction %s has no provider reference", apperrors.ErrProvider, txn.TransactionID)
	}
	body, raw, err := c.do(ctx, http.MethodGet, "/transaction/verify/"+txn.ProviderRef, nil)
	if err != nil {
		return nil, err
	}

	var data paystackTransactionData
	if err := json.Unmarshal(body.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: paystack: decoding verify response: %v", apperrors.ErrProvider, err)
	}

	if data.Status != "success" {
		return nil, fmt.Errorf("%w: paystack: transaction %s not settled, status %q", apperrors.ErrProvider, txn.ProviderRef, data.Status)
	}
	if expected := MajorToMinor(txn.Amount); data.Amount != expected {
		return nil, fmt.Errorf("%w: paystack: transaction %s settled for %d minor units, expected %d", apperrors.ErrProvider, txn.ProviderRef, data.Amount, expected)
	}

	return &Intent{
		ID:       data.Reference,
		Status:   domain.TransactionSuccess,
		Provider: domain.ProviderPaystack,
		Raw:      raw,
	}, nil
}

// VerifyWebhookSignature checks the x-paystack-signature header, an
// HMAC-SHA512 hex digest of the exact raw body keyed by the secret key.
func (c *PaystackClient) VerifyWebhookSignature(body []byte, signatureHeader string) error {
	if signatureHeader == "" {
		return fmt.Errorf("%w: missing x-paystack-signature header", apperrors.ErrSignature)
	}
	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signatureHeader)) {
		return fmt.Errorf("%w: x-paystack-signature mismatch", apperrors.ErrSignature)
	}
	return nil
}

type paystackWebhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		Reference string          `json:"reference"`
		Amount    int64           `json:"amount"`
		Currency  string          `json:"currency"`
		Status    string          `json:"status"`
		Metadata  json.RawMessage `json:"metadata"`
	} `json:"data"`
}

// ParseWebhook maps a verified Paystack event body to the common shape.
func (c *PaystackClient) ParseWebhook(body []byte) (*WebhookEvent, error) {
	var payload paystackWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: paystack webhook body is not valid JSON", apperrors.ErrValidation)
	}
	if payload.Event == "" {
		return nil, fmt.Errorf("%w: paystack webhook body has no event field", apperrors.ErrValidation)
	}

	event := &WebhookEvent{
		Provider:    domain.ProviderPaystack,
		EventType:   payload.Event,
		Status:      paystackEventStatus(payload.Event, payload.Data.Status),
		ProviderRef: payload.Data.Reference,
		AmountMinor: payload.Data.Amount,
		Currency:    payload.Data.Currency,
	}

	// Metadata sometimes arrives as an empty string rather than an object.
	var meta map[string]any
	if len(payload.Data.Metadata) > 0 && json.Unmarshal(payload.Data.Metadata, &meta) == nil {
		event.TenantID = metadataString(meta, "tenant_id")
		event.ReservationID = metadataString(meta, "reservation_id")
	}

	return event, nil
}

func paystackEventStatus(eventType, dataStatus string) domain.TransactionStatus {
	switch {
	case eventType == "charge.success" || dataStatus == "success":
		return domain.TransactionSuccess
	case dataStatus == "failed" || eventType == "charge.failed":
		return domain.TransactionFailed
	case dataStatus == "pending":
		return domain.TransactionPending
	default:
		return domain.TransactionUnknown
	}
}

func (c *PaystackClient) do(ctx context.Context, method, path string, payload any) (*paystackResponse, json.RawMessage, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("paystack: encoding request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("paystack: building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("paystack: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("paystack: reading response: %w", err)
	}

	var body paystackResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, nil, fmt.Errorf("%w: paystack: non-JSON response (HTTP %d)", apperrors.ErrProvider, resp.StatusCode)
	}
	if resp.StatusCode >= 400 || !body.Status {
		return nil, nil, fmt.Errorf("%w: paystack: %s (HTTP %d)", apperrors.ErrProvider, body.Message, resp.StatusCode)
	}
	return &body, raw, nil
}

func metadataString(meta map[string]any, key string) *string {
	val, ok := meta[key].(string)
	if !ok || val == "" {
		return nil
	}
	return &val
}

// MajorToMinor converts a major-unit amount to provider minor units.
func MajorToMinor(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(minorUnitFactor)).IntPart()
}
