package services

import (
	"context"
	"time"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/webhook"
)

// PaymentGateway abstracts the payment collaborator so business logic
// can be tested against a fake.
type PaymentGateway interface {
	CreateSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error)
	VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error)
}

// StripeService wraps the Stripe SDK. Every outbound call carries a
// bounded timeout so a stalled Stripe call fails the enclosing request
// instead of hanging.
type StripeService struct {
	WebhookKey string
	Timeout    time.Duration
}

func NewStripeService(secretKey, webhookKey string, timeout time.Duration) *StripeService {
	stripe.Key = secretKey
	return &StripeService{WebhookKey: webhookKey, Timeout: timeout}
}

func (s *StripeService) CreateSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	params.Context = ctx
	return session.New(params)
}

func (s *StripeService) RetrieveSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	return session.Get(sessionID, params)
}

// VerifyWebhook checks the signature over the exact raw request bytes.
// The payload must not have been re-serialized before this call.
func (s *StripeService) VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, s.WebhookKey)
}
