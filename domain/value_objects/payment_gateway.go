package value_objects

import "time"

type Payer struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	TaxID     string `json:"tax_id,omitempty"`
}

// CreatePaymentReq is what the engine hands to a gateway adapter.
type CreatePaymentReq struct {
	IdempotencyKey string
	Amount         int64
	Currency       string
	Description    string
	Payer          Payer
	// CardToken is the tokenised card for card payments.
	CardToken string
}

type PaymentCreated struct {
	PaymentID  string
	Status     string
	PixPayload string
	QRImage    string
	ExpiresAt  *time.Time
}

type PaymentStatus struct {
	PaymentID    string
	Status       string
	StatusDetail string
}

// GatewayWebhook is the message the HTTP layer drops on the webhook queue.
type GatewayWebhook struct {
	Gateway   string `json:"gateway"`
	PaymentID string `json:"payment_id"`
}
