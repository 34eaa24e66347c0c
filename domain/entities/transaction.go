package entities

import "time"

type PaymentMethod string

const (
	PaymentMethodPix  PaymentMethod = "pix"
	PaymentMethodCard PaymentMethod = "card"
)

type Transaction struct {
	ID               string        `json:"id" bson:"_id"`
	Gateway          string        `json:"gateway" bson:"gateway"`
	GatewayPaymentID string        `json:"gateway_payment_id" bson:"gateway_payment_id,omitempty"`
	Amount           int64         `json:"amount" bson:"amount"`
	Currency         string        `json:"currency" bson:"currency"`
	PaymentMethod    PaymentMethod `json:"payment_method" bson:"payment_method"`
	Status           EntityStatus  `json:"status" bson:"status"`

	BotID     string `json:"bot_id" bson:"bot_id"`
	ContactID string `json:"contact_id" bson:"contact_id"`
	PlanID    string `json:"plan_id" bson:"plan_id"`
	CycleID   string `json:"cycle_id" bson:"cycle_id,omitempty"`

	Metadata TransactionMetadata `json:"metadata" bson:"metadata"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// AccessExpiresAt returns when the paid period ends. The value recorded at
// approval wins; otherwise it is derived from the cycle length. ok is false
// when no cycle is known, meaning access has no end.
func (t *Transaction) AccessExpiresAt(cycle *Cycle) (at time.Time, ok bool) {
	if t.Metadata.AccessExpiresAt != nil {
		return *t.Metadata.AccessExpiresAt, true
	}
	if cycle == nil || cycle.Days <= 0 {
		return time.Time{}, false
	}
	return t.CreatedAt.AddDate(0, 0, cycle.Days), true
}

func (t *Transaction) IsPix() bool {
	return t.PaymentMethod == PaymentMethodPix
}

// WasApproved reports whether the transaction ever granted access.
func (t *Transaction) WasApproved() bool {
	return t.Metadata.ApprovedAt != nil
}
