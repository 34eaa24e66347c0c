package mercadopago

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"access-system/domain/constants"
	"access-system/domain/value_objects"
	"access-system/errors"
	"access-system/utils/configs"
	"access-system/utils/helpers"
)

type Client struct {
	conf   configs.MercadoPago
	client *http.Client
	logger *zap.Logger
	pixTTL time.Duration
}

func NewMercadoPagoClient(conf configs.MercadoPago, pixTTL time.Duration, logger *zap.Logger) *Client {
	timeout := time.Duration(conf.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		conf:   conf,
		client: &http.Client{Timeout: timeout},
		logger: logger,
		pixTTL: pixTTL,
	}
}

type identification struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

type payer struct {
	Email          string          `json:"email"`
	FirstName      string          `json:"first_name,omitempty"`
	Identification *identification `json:"identification,omitempty"`
}

type paymentReq struct {
	TransactionAmount json.Number `json:"transaction_amount"`
	Description       string      `json:"description"`
	PaymentMethodID   string      `json:"payment_method_id,omitempty"`
	Token             string      `json:"token,omitempty"`
	Installments      int         `json:"installments,omitempty"`
	ExternalReference string      `json:"external_reference"`
	DateOfExpiration  string      `json:"date_of_expiration,omitempty"`
	Payer             payer       `json:"payer"`
}

type paymentRes struct {
	ID                 int64  `json:"id"`
	Status             string `json:"status"`
	StatusDetail       string `json:"status_detail"`
	DateOfExpiration   string `json:"date_of_expiration"`
	Message            string `json:"message"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

func (c *Client) Name() string {
	return constants.GatewayMercadoPago
}

// amount renders centavos as the decimal reais the API expects.
func amount(centavos int64) json.Number {
	return json.Number(decimal.New(centavos, -2).StringFixed(2))
}

func toPayer(p value_objects.Payer) payer {
	out := payer{Email: p.Email, FirstName: p.FirstName}
	if p.TaxID != "" {
		out.Identification = &identification{Type: "CPF", Number: p.TaxID}
	}
	return out
}

func (c *Client) CreatePixPayment(ctx context.Context, req value_objects.CreatePaymentReq) (value_objects.PaymentCreated, error) {
	body := paymentReq{
		TransactionAmount: amount(req.Amount),
		Description:       req.Description,
		PaymentMethodID:   "pix",
		ExternalReference: req.IdempotencyKey,
		Payer:             toPayer(req.Payer),
	}
	if c.pixTTL > 0 {
		body.DateOfExpiration = helpers.GetCurrentTime().Add(c.pixTTL).Format("2006-01-02T15:04:05.000-07:00")
	}
	return c.create(ctx, req.IdempotencyKey, body)
}

func (c *Client) CreateCardPayment(ctx context.Context, req value_objects.CreatePaymentReq) (value_objects.PaymentCreated, error) {
	if req.CardToken == "" {
		return value_objects.PaymentCreated{}, fmt.Errorf("%w: card token required", errors.ErrMethodNotSupported)
	}
	return c.create(ctx, req.IdempotencyKey, paymentReq{
		TransactionAmount: amount(req.Amount),
		Description:       req.Description,
		Token:             req.CardToken,
		Installments:      1,
		ExternalReference: req.IdempotencyKey,
		Payer:             toPayer(req.Payer),
	})
}

func (c *Client) create(ctx context.Context, idempotencyKey string, body paymentReq) (value_objects.PaymentCreated, error) {
	var res paymentRes
	status, err := helpers.HttpRequest(ctx, helpers.HttpRequestParams{
		Client: c.client,
		Logger: c.logger,
		Uri:    c.conf.BaseURL,
		Path:   "/v1/payments",
		Method: http.MethodPost,
		Headers: map[string]string{
			"Authorization":     "Bearer " + c.conf.AccessToken,
			"X-Idempotency-Key": idempotencyKey,
		},
		Body:     body,
		Response: &res,
	})
	if err != nil {
		return value_objects.PaymentCreated{}, err
	}
	if refused(status) {
		return value_objects.PaymentCreated{}, fmt.Errorf("%w: status %d: %s", errors.ErrPaymentRefused, status, res.Message)
	}
	if status >= 300 {
		return value_objects.PaymentCreated{}, fmt.Errorf("%screate payment: status %d: %s", constants.SERVICE_GATEWAY_ERROR, status, res.Message)
	}

	created := value_objects.PaymentCreated{
		PaymentID:  fmt.Sprint(res.ID),
		Status:     res.Status,
		PixPayload: res.PointOfInteraction.TransactionData.QRCode,
		QRImage:    res.PointOfInteraction.TransactionData.QRCodeBase64,
	}
	if at, err := time.Parse(time.RFC3339, res.DateOfExpiration); err == nil {
		created.ExpiresAt = &at
	}
	return created, nil
}

// refused tells request errors apart from throttling and timeouts, which
// are worth another attempt.
func refused(status int) bool {
	return status >= 400 && status < 500 && status != http.StatusRequestTimeout && status != http.StatusTooManyRequests
}

func (c *Client) GetPayment(ctx context.Context, paymentID string) (value_objects.PaymentStatus, error) {
	var res paymentRes
	status, err := helpers.HttpRequest(ctx, helpers.HttpRequestParams{
		Client:   c.client,
		Logger:   c.logger,
		Uri:      c.conf.BaseURL,
		Path:     "/v1/payments/" + paymentID,
		Method:   http.MethodGet,
		Headers:  map[string]string{"Authorization": "Bearer " + c.conf.AccessToken},
		Response: &res,
	})
	if err != nil {
		return value_objects.PaymentStatus{}, err
	}
	if status == http.StatusNotFound {
		return value_objects.PaymentStatus{}, fmt.Errorf("%w: %s", errors.ErrPaymentNotFound, paymentID)
	}
	if status >= 300 {
		return value_objects.PaymentStatus{}, fmt.Errorf("%sget payment %s: status %d: %s", constants.SERVICE_GATEWAY_ERROR, paymentID, status, res.Message)
	}
	return value_objects.PaymentStatus{PaymentID: paymentID, Status: res.Status, StatusDetail: res.StatusDetail}, nil
}
