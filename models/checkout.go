package models

// CartItem is one line of a submitted cart. Quantity 0 means "not
// provided" and defaults to 1 during validation.
type CartItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// CheckoutRequest is the body of POST /create-checkout-session.
type CheckoutRequest struct {
	Cart          []CartItem `json:"cart"`
	CustomerEmail string     `json:"customerEmail"`
	CustomerID    string     `json:"customerId"`
}

// ConfirmPaymentRequest is the body of POST /confirm-payment.
type ConfirmPaymentRequest struct {
	SessionID string `json:"sessionId"`
}
