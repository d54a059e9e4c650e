package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"checkout-service/events"
	"checkout-service/models"
	"checkout-service/repository"

	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

// EventDeduper is the optional fast-path cache for already processed
// webhook event IDs. Implemented by cache.EventCache.
type EventDeduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, eventID string) error
}

// CheckoutService holds the checkout and payment-confirmation logic.
type CheckoutService interface {
	CreateCheckoutSession(ctx context.Context, req *models.CheckoutRequest) (string, *ServiceError)
	HandleWebhookEvent(ctx context.Context, payload []byte, sigHeader string) *ServiceError
	ConfirmPayment(ctx context.Context, sessionID string) (bool, *ServiceError)
	GetOrder(ctx context.Context, sessionID string) (*models.Order, *ServiceError)
}

// Options configures the checkout flow.
type Options struct {
	Currency   string
	SuccessURL string
	CancelURL  string
	TopicArn   string // SNS topic for order_recorded events, empty disables publishing
}

type checkoutServiceImpl struct {
	gateway   PaymentGateway
	repo      repository.OrderRepository
	publisher events.Publisher
	dedupe    EventDeduper
	opts      Options
	logger    *zap.Logger
}

// NewCheckoutService creates a CheckoutService. publisher and dedupe
// may be nil; both are optional collaborators.
func NewCheckoutService(
	gateway PaymentGateway,
	repo repository.OrderRepository,
	publisher events.Publisher,
	dedupe EventDeduper,
	opts Options,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutServiceImpl{
		gateway:   gateway,
		repo:      repo,
		publisher: publisher,
		dedupe:    dedupe,
		opts:      opts,
		logger:    logger,
	}
}

// CreateCheckoutSession validates the cart, prices it in minor units
// and delegates session creation to Stripe. The original cart and the
// customer ID are serialized into session metadata so the confirmation
// handler can rebuild the order without another round trip.
func (s *checkoutServiceImpl) CreateCheckoutSession(ctx context.Context, req *models.CheckoutRequest) (string, *ServiceError) {
	if len(req.Cart) == 0 {
		return "", badRequest("cart is empty")
	}

	normalized := make([]models.CartItem, 0, len(req.Cart))
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Cart))
	for i, item := range req.Cart {
		if strings.TrimSpace(item.Name) == "" {
			return "", badRequest(fmt.Sprintf("cart item %d has no name", i))
		}
		if math.IsNaN(item.Price) || math.IsInf(item.Price, 0) || item.Price < 0 {
			return "", badRequest(fmt.Sprintf("invalid price for item %q", item.Name))
		}
		if item.Quantity < 0 {
			return "", badRequest(fmt.Sprintf("invalid quantity for item %q", item.Name))
		}
		qty := item.Quantity
		if qty == 0 {
			qty = 1
		}

		// Round, don't truncate: 19.999 euros must become 2000 cents.
		// The confirmation handler applies the same rule when it
		// cross-checks the metadata cart against amount_total.
		unitAmount := int64(math.Round(item.Price * 100))

		normalized = append(normalized, models.CartItem{Name: item.Name, Price: item.Price, Quantity: qty})
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(s.opts.Currency),
				UnitAmount: stripe.Int64(unitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
			Quantity: stripe.Int64(int64(qty)),
		})
	}

	cartJSON, err := json.Marshal(normalized)
	if err != nil {
		return "", internal("failed to serialize cart")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(s.opts.SuccessURL),
		CancelURL:          stripe.String(s.opts.CancelURL),
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.AddMetadata("cart", string(cartJSON))
	if req.CustomerID != "" {
		params.AddMetadata("customer_id", req.CustomerID)
	}

	sess, err := s.gateway.CreateSession(ctx, params)
	if err != nil {
		// No automatic retry: session creation is not idempotent on
		// Stripe's side, a blind retry could mint a duplicate session.
		s.logger.Error("Stripe checkout session creation failed", zap.Error(err))
		return "", internal(err.Error())
	}

	s.logger.Info("Checkout session created",
		zap.String("session_id", sess.ID),
		zap.Int("items", len(lineItems)),
	)
	return sess.URL, nil
}

// HandleWebhookEvent authenticates a pushed notification and, for
// completed checkouts, records the order. Once the signature has been
// verified the event is always acknowledged (nil return), even when the
// store write fails, so Stripe does not retry forever; failed writes
// are logged for manual reconciliation.
func (s *checkoutServiceImpl) HandleWebhookEvent(ctx context.Context, payload []byte, sigHeader string) *ServiceError {
	event, err := s.gateway.VerifyWebhook(payload, sigHeader)
	if err != nil {
		s.logger.Warn("Webhook signature verification failed", zap.Error(err))
		return badRequest("invalid signature")
	}

	switch event.Type {
	case "checkout.session.completed":
		s.handleCheckoutCompleted(ctx, event)
	case "checkout.session.expired":
		s.logger.Info("Checkout session expired", zap.String("event_id", event.ID))
	default:
		s.logger.Info("Unhandled webhook event type",
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.ID),
		)
	}
	return nil
}

func (s *checkoutServiceImpl) handleCheckoutCompleted(ctx context.Context, event stripe.Event) {
	if s.dedupe != nil {
		seen, err := s.dedupe.Seen(ctx, event.ID)
		if err != nil {
			s.logger.Warn("Event dedupe cache unavailable", zap.Error(err))
		} else if seen {
			s.logger.Info("Skipping already processed event", zap.String("event_id", event.ID))
			return
		}
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		s.logger.Error("Failed to unmarshal checkout session from event",
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
		return
	}

	order := s.orderFromSession(&sess)
	if _, err := s.recordOrder(ctx, order); err != nil {
		// The one failure mode that must not be lost: a confirmed
		// payment with no order record. Log every fact needed for
		// manual reconciliation before acknowledging.
		s.logger.Error("Failed to record order after verified payment",
			zap.String("session_id", order.SessionID),
			zap.Float64("amount", order.Amount),
			zap.String("currency", order.Currency),
			zap.Error(err),
		)
		return
	}

	if s.dedupe != nil {
		if err := s.dedupe.MarkProcessed(ctx, event.ID); err != nil {
			s.logger.Warn("Failed to mark event as processed", zap.String("event_id", event.ID), zap.Error(err))
		}
	}
}

// ConfirmPayment is the pull-mode counterpart of the webhook: the
// client supplies a session ID and we ask Stripe whether it was paid.
// Both paths converge on the same order record via recordOrder.
func (s *checkoutServiceImpl) ConfirmPayment(ctx context.Context, sessionID string) (bool, *ServiceError) {
	if sessionID == "" {
		return false, badRequest("missing sessionId")
	}

	sess, err := s.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		s.logger.Error("Failed to retrieve checkout session",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return false, internal(err.Error())
	}

	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return false, nil
	}

	order := s.orderFromSession(sess)
	if _, err := s.recordOrder(ctx, order); err != nil {
		// Unlike the webhook path the caller is waiting synchronously,
		// so a store failure is surfaced.
		s.logger.Error("Failed to record order on confirmation",
			zap.String("session_id", order.SessionID),
			zap.Float64("amount", order.Amount),
			zap.String("currency", order.Currency),
			zap.Error(err),
		)
		return false, internal("failed to record order")
	}
	return true, nil
}

func (s *checkoutServiceImpl) GetOrder(ctx context.Context, sessionID string) (*models.Order, *ServiceError) {
	if sessionID == "" {
		return nil, badRequest("missing sessionId")
	}
	order, err := s.repo.GetOrderBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "order not found"}
		}
		s.logger.Error("Failed to load order", zap.String("session_id", sessionID), zap.Error(err))
		return nil, internal("failed to load order")
	}
	return order, nil
}

// orderFromSession extracts the order facts from a completed session.
// amount_total is authoritative for the charged amount; the metadata
// cart copy is authoritative for item detail. A mismatch between the
// two is a reconciliation flag, not an error.
func (s *checkoutServiceImpl) orderFromSession(sess *stripe.CheckoutSession) *models.Order {
	email := sess.CustomerEmail
	if sess.CustomerDetails != nil && sess.CustomerDetails.Email != "" {
		email = sess.CustomerDetails.Email
	}

	var items []models.OrderItem
	if raw := sess.Metadata["cart"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			s.logger.Warn("Cart metadata is not valid JSON",
				zap.String("session_id", sess.ID),
				zap.Error(err),
			)
			items = nil
		}
	}

	if len(items) > 0 {
		var sum int64
		for _, it := range items {
			qty := int64(it.Quantity)
			if qty <= 0 {
				qty = 1
			}
			sum += int64(math.Round(it.Price*100)) * qty
		}
		if sum != sess.AmountTotal {
			s.logger.Warn("Cart metadata total does not match session amount",
				zap.String("session_id", sess.ID),
				zap.Int64("metadata_total", sum),
				zap.Int64("amount_total", sess.AmountTotal),
			)
		}
	}

	return &models.Order{
		SessionID:     sess.ID,
		CustomerEmail: email,
		Amount:        float64(sess.AmountTotal) / 100,
		Currency:      string(sess.Currency),
		Status:        models.OrderStatusPaid,
		Items:         items,
		CreatedAt:     time.Now().UTC(),
	}
}

// recordOrder performs the idempotent conditional insert and, on a
// first-time write, publishes an order_recorded event.
func (s *checkoutServiceImpl) recordOrder(ctx context.Context, order *models.Order) (bool, error) {
	created, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		return false, err
	}
	if !created {
		s.logger.Info("Order already recorded", zap.String("session_id", order.SessionID))
		return false, nil
	}

	s.logger.Info("Order recorded",
		zap.String("session_id", order.SessionID),
		zap.Float64("amount", order.Amount),
		zap.String("currency", order.Currency),
	)
	s.publishOrderRecorded(ctx, order)
	return true, nil
}

func (s *checkoutServiceImpl) publishOrderRecorded(ctx context.Context, order *models.Order) {
	if s.publisher == nil || s.opts.TopicArn == "" {
		return
	}
	payload, _ := json.Marshal(models.OrderEvent{
		Type:      "order_recorded",
		SessionID: order.SessionID,
		Email:     order.CustomerEmail,
		Amount:    order.Amount,
		Currency:  order.Currency,
		Timestamp: time.Now().UTC(),
	})
	if err := s.publisher.Publish(ctx, s.opts.TopicArn, payload); err != nil {
		s.logger.Error("Failed to publish order event",
			zap.String("session_id", order.SessionID),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("Order event published", zap.String("session_id", order.SessionID))
}
