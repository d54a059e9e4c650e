package models

import "time"

const OrderStatusPaid = "paid"

// OrderItem is a line item copied from the original cart at checkout
// time. Price is in major currency units, as submitted by the client.
type OrderItem struct {
	Name     string  `bson:"name" json:"name"`
	Price    float64 `bson:"price" json:"price"`
	Quantity int     `bson:"quantity" json:"quantity"`
}

// Order is the persisted record of a completed checkout session, keyed
// by the Stripe session ID. At most one order exists per session; the
// record is never mutated after creation.
type Order struct {
	SessionID     string      `bson:"session_id" json:"sessionId"`
	CustomerEmail string      `bson:"customer_email,omitempty" json:"customerEmail,omitempty"`
	Amount        float64     `bson:"amount" json:"amount"` // major units, e.g. 19.00
	Currency      string      `bson:"currency" json:"currency"`
	Status        string      `bson:"status" json:"status"`
	Items         []OrderItem `bson:"items" json:"items"`
	CreatedAt     time.Time   `bson:"created_at" json:"createdAt"`
}
