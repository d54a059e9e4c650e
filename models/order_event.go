package models

import "time"

// OrderEvent is the JSON payload published to SNS when an order is
// recorded for the first time. Downstream consumers (fulfilment,
// reconciliation) key on SessionID.
type OrderEvent struct {
	Type      string    `json:"type"` // "order_recorded"
	SessionID string    `json:"session_id"`
	Email     string    `json:"email,omitempty"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Timestamp time.Time `json:"timestamp"`
}
