package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bookahq/booka_backend/internal/apperrors"
	"github.com/bookahq/booka_backend/internal/core/domain"
)

const stripeBaseURL = "https://api.stripe.com"

// stripeSignatureTolerance bounds how old a webhook timestamp may be before
// the delivery is rejected as a possible replay.
const stripeSignatureTolerance = 5 * time.Minute

// StripeClient talks to the Stripe Checkout API.
type StripeClient struct {
	secretKey     string
	webhookSecret string
	baseURL       string
	httpClient    *http.Client
	now           func() time.Time
}

// NewStripeClient creates a Stripe client. The webhook secret is separate
// from the API key; Stripe issues it per webhook endpoint.
func NewStripeClient(secretKey, webhookSecret string) *StripeClient {
	return &StripeClient{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		baseURL:       stripeBaseURL,
		httpClient:    defaultHTTPClient(),
		now:           time.Now,
	}
}

var _ Client = (*StripeClient)(nil)

type stripeCheckoutSession struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	PaymentStatus string            `json:"payment_status"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	Metadata      map[string]string `json:"metadata"`
}

// CreateDepositIntent creates a hosted Checkout session and returns its id
// and redirect URL.
func (c *StripeClient) CreateDepositIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("customer_email", req.Email)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(req.Currency))
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(req.AmountMinor, 10))
	form.Set("line_items[0][price_data][product_data][name]", "Booking deposit")
	for key, value := range req.Metadata {
		form.Set("metadata["+key+"]", value)
	}

	session, raw, err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", form)
	if err != nil {
		return nil, err
	}

	return &Intent{
		ID:         session.ID,
		Status:     domain.TransactionPending,
		Provider:   domain.ProviderStripe,
		PaymentURL: session.URL,
		Raw:        raw,
	}, nil
}

// Retry re-reads a Checkout session. "paid" resolves the retry; any other
// payment status is a provider failure counted by the retry worker.
func (c *StripeClient) Retry(ctx context.Context, txn domain.Transaction) (*Intent, error) {
	if txn.ProviderRef == "" {
		return nil, fmt.Errorf("%w: stripe: transaction %s has no provider reference", apperrors.ErrProvider, txn.TransactionID)
	}
	session, raw, err := c.do(ctx, http.MethodGet, "/v1/checkout/sessions/"+txn.ProviderRef, nil)
	if err != nil {
		return nil, err
	}

	if session.PaymentStatus != "paid" {
		return nil, fmt.Errorf("%w: stripe: session %s not settled, payment_status %q", apperrors.ErrProvider, txn.ProviderRef, session.PaymentStatus)
	}

	return &Intent{
		ID:       session.ID,
		Status:   domain.TransactionSuccess,
		Provider: domain.ProviderStripe,
		Raw:      raw,
	}, nil
}

// VerifyWebhookSignature checks the stripe-signature header; the v1 scheme is
// an HMAC-SHA256 hex digest of "<t>.<raw body>" keyed by the webhook secret.
func (c *StripeClient) VerifyWebhookSignature(body []byte, signatureHeader string) error {
	if signatureHeader == "" {
		return fmt.Errorf("%w: missing stripe-signature header", apperrors.ErrSignature)
	}

	var timestamp string
	var candidates []string
	for _, part := range strings.Split(signatureHeader, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "v1":
			candidates = append(candidates, value)
		}
	}
	if timestamp == "" || len(candidates) == 0 {
		return fmt.Errorf("%w: malformed stripe-signature header", apperrors.ErrSignature)
	}

	unix, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: malformed stripe-signature timestamp", apperrors.ErrSignature)
	}
	if c.now().Sub(time.Unix(unix, 0)) > stripeSignatureTolerance {
		return fmt.Errorf("%w: stripe-signature timestamp outside tolerance", apperrors.ErrSignature)
	}

	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, candidate := range candidates {
		if hmac.Equal([]byte(expected), []byte(candidate)) {
			return nil
		}
	}
	return fmt.Errorf("%w: stripe-signature mismatch", apperrors.ErrSignature)
}

type stripeWebhookPayload struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object stripeCheckoutSession `json:"object"`
	} `json:"data"`
}

// ParseWebhook maps a verified Stripe event body to the common shape.
func (c *StripeClient) ParseWebhook(body []byte) (*WebhookEvent, error) {
	var payload stripeWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: stripe webhook body is not valid JSON", apperrors.ErrValidation)
	}
	if payload.Type == "" {
		return nil, fmt.Errorf("%w: stripe webhook body has no type field", apperrors.ErrValidation)
	}

	object := payload.Data.Object
	event := &WebhookEvent{
		Provider:    domain.ProviderStripe,
		EventType:   payload.Type,
		Status:      stripeEventStatus(payload.Type, object.PaymentStatus),
		ProviderRef: object.ID,
		AmountMinor: object.AmountTotal,
		Currency:    strings.ToUpper(object.Currency),
	}
	if tenantID, ok := object.Metadata["tenant_id"]; ok && tenantID != "" {
		event.TenantID = &tenantID
	}
	if reservationID, ok := object.Metadata["reservation_id"]; ok && reservationID != "" {
		event.ReservationID = &reservationID
	}
	return event, nil
}

func stripeEventStatus(eventType, paymentStatus string) domain.TransactionStatus {
	switch {
	case eventType == "checkout.session.completed" && paymentStatus == "paid":
		return domain.TransactionSuccess
	case eventType == "checkout.session.expired" || eventType == "checkout.session.async_payment_failed":
		return domain.TransactionFailed
	case paymentStatus == "unpaid":
		return domain.TransactionPending
	default:
		return domain.TransactionUnknown
	}
}

func (c *StripeClient) do(ctx context.Context, method, path string, form url.Values) (*stripeCheckoutSession, json.RawMessage, error) {
	var reqBody io.Reader
	if form != nil {
		reqBody = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("stripe: building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("stripe: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("stripe: reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(raw, &apiErr)
		return nil, nil, fmt.Errorf("%w: stripe: %s (HTTP %d)", apperrors.ErrProvider, apiErr.Error.Message, resp.StatusCode)
	}

	var session stripeCheckoutSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, nil, fmt.Errorf("%w: stripe: decoding response", apperrors.ErrProvider)
	}
	return &session, raw, nil
}
