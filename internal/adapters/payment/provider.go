// Package payment holds the payment provider adapters. Each variant owns its
// own wire-format translation; callers only depend on the common shapes here.
// Retries and backoff are the retry worker's concern, never the adapter's.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bookahq/booka_backend/internal/core/domain"
)

// IntentRequest describes a hosted-payment intent to create with a provider.
// Amount is in minor currency units, as both providers expect on the wire.
type IntentRequest struct {
	AmountMinor int64
	Currency    string
	Email       string
	Metadata    map[string]string
}

// Intent is the provider-agnostic result of creating (or verifying) an intent.
type Intent struct {
	ID         string
	Status     domain.TransactionStatus
	Provider   domain.PaymentProvider
	PaymentURL string
	Raw        json.RawMessage // untranslated provider response
}

// WebhookEvent is the common shape a verified provider webhook maps to.
type WebhookEvent struct {
	Provider      domain.PaymentProvider
	EventType     string
	Status        domain.TransactionStatus
	ProviderRef   string
	AmountMinor   int64
	Currency      string
	TenantID      *string // from metadata; nil produces an orphaned transaction
	ReservationID *string
}

// Client is the capability set every payment provider variant implements.
type Client interface {
	// CreateDepositIntent creates a hosted-payment intent and returns the
	// provider reference plus the redirect URL for the customer.
	CreateDepositIntent(ctx context.Context, req IntentRequest) (*Intent, error)

	// Retry re-checks a previously initiated transaction with the provider.
	// It returns a successful intent or an error; it never sleeps or loops.
	Retry(ctx context.Context, txn domain.Transaction) (*Intent, error)

	// VerifyWebhookSignature checks the provider's signature header against
	// the exact raw request body. A mismatch returns apperrors.ErrSignature.
	VerifyWebhookSignature(body []byte, signatureHeader string) error

	// ParseWebhook translates a verified raw body to the common event shape.
	ParseWebhook(body []byte) (*WebhookEvent, error)
}

// Registry selects a concrete provider client by explicit enum. There is no
// runtime shape detection; callers always name the provider.
type Registry struct {
	clients map[domain.PaymentProvider]Client
}

// NewRegistry builds a registry from the configured provider clients.
// Nil clients are skipped so a deployment can enable a single provider.
func NewRegistry(paystack, stripe Client) *Registry {
	clients := make(map[domain.PaymentProvider]Client, 2)
	if paystack != nil {
		clients[domain.ProviderPaystack] = paystack
	}
	if stripe != nil {
		clients[domain.ProviderStripe] = stripe
	}
	return &Registry{clients: clients}
}

// ErrNotConfigured is returned when a provider is unknown or has no client
// configured for this deployment. It is distinct from ErrValidation so
// callers can tell a deployment gap from a malformed payload.
var ErrNotConfigured = errors.New("payment provider not configured")

// Client returns the client for the named provider, or ErrNotConfigured when
// the provider is unknown or not configured for this deployment.
func (r *Registry) Client(provider domain.PaymentProvider) (Client, error) {
	client, ok := r.clients[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotConfigured, provider)
	}
	return client, nil
}

// minorUnitFactor converts between major and minor units for the supported
// currencies. Both providers use a factor of 100.
const minorUnitFactor = 100

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
