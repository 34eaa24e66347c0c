package stripe_gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
	"github.com/stripe/stripe-go/v72/webhook"

	"access-system/domain/constants"
	"access-system/domain/value_objects"
	"access-system/errors"
)

// Gateway charges tokenised cards through PaymentIntents. PIX is not offered
// through this processor.
type Gateway struct {
	api           *client.API
	webhookSecret string
}

func NewStripeGateway(secretKey, webhookSecret string, backends *stripe.Backends) *Gateway {
	return &Gateway{
		api:           client.New(secretKey, backends),
		webhookSecret: webhookSecret,
	}
}

func (g *Gateway) Name() string {
	return constants.GatewayStripe
}

func (g *Gateway) CreatePixPayment(ctx context.Context, req value_objects.CreatePaymentReq) (value_objects.PaymentCreated, error) {
	return value_objects.PaymentCreated{}, fmt.Errorf("%w: pix via %s", errors.ErrMethodNotSupported, constants.GatewayStripe)
}

func (g *Gateway) CreateCardPayment(ctx context.Context, req value_objects.CreatePaymentReq) (value_objects.PaymentCreated, error) {
	if req.CardToken == "" {
		return value_objects.PaymentCreated{}, fmt.Errorf("%w: card token required", errors.ErrMethodNotSupported)
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.Amount),
		Currency:           stripe.String(strings.ToLower(req.Currency)),
		Description:        stripe.String(req.Description),
		PaymentMethod:      stripe.String(req.CardToken),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Confirm:            stripe.Bool(true),
	}
	if req.Payer.Email != "" {
		params.ReceiptEmail = stripe.String(req.Payer.Email)
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey)
	params.AddMetadata("transaction_id", req.IdempotencyKey)

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return value_objects.PaymentCreated{}, mapError(err, "")
	}
	return value_objects.PaymentCreated{PaymentID: pi.ID, Status: rawStatus(pi)}, nil
}

func (g *Gateway) GetPayment(ctx context.Context, paymentID string) (value_objects.PaymentStatus, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := g.api.PaymentIntents.Get(paymentID, params)
	if err != nil {
		return value_objects.PaymentStatus{}, mapError(err, paymentID)
	}

	detail := string(pi.Status)
	if pi.LastPaymentError != nil {
		detail = string(pi.LastPaymentError.Code)
	}
	return value_objects.PaymentStatus{PaymentID: pi.ID, Status: rawStatus(pi), StatusDetail: detail}, nil
}

// ParseWebhook verifies a signed event and extracts the payment intent it is
// about. Events that carry no payment intent return an empty PaymentID.
func (g *Gateway) ParseWebhook(payload []byte, signature string) (value_objects.GatewayWebhook, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return value_objects.GatewayWebhook{}, err
	}

	hook := value_objects.GatewayWebhook{Gateway: constants.GatewayStripe}
	if !strings.HasPrefix(event.Type, "payment_intent.") {
		return hook, nil
	}
	var pi stripe.PaymentIntent
	if err = json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return value_objects.GatewayWebhook{}, err
	}
	hook.PaymentID = pi.ID
	return hook, nil
}

// rawStatus folds a PaymentIntent onto the processor-neutral vocabulary
// approved|pending|rejected|cancelled|refunded|charged_back.
func rawStatus(pi *stripe.PaymentIntent) string {
	if pi.Charges != nil {
		for _, ch := range pi.Charges.Data {
			if ch.Disputed {
				return "charged_back"
			}
			if ch.Refunded {
				return "refunded"
			}
		}
	}
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return "approved"
	case stripe.PaymentIntentStatusCanceled:
		return "cancelled"
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		if pi.LastPaymentError != nil {
			return "rejected"
		}
	}
	return "pending"
}

func mapError(err error, paymentID string) error {
	stripeErr, ok := err.(*stripe.Error)
	if !ok {
		return fmt.Errorf("%s%w", constants.SERVICE_GATEWAY_ERROR, err)
	}
	switch {
	case stripeErr.Code == stripe.ErrorCodeResourceMissing:
		return fmt.Errorf("%w: %s", errors.ErrPaymentNotFound, paymentID)
	case stripeErr.Type == stripe.ErrorTypeCard,
		stripeErr.Type == stripe.ErrorTypeInvalidRequest && stripeErr.HTTPStatusCode != http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", errors.ErrPaymentRefused, stripeErr.Msg)
	}
	return fmt.Errorf("%s%w", constants.SERVICE_GATEWAY_ERROR, err)
}
