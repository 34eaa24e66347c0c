package repositories

import (
	"context"

	"access-system/domain/value_objects"
)

// IGateway is a payment processor. GetPayment must return
// errors.ErrPaymentNotFound for unknown ids.
type IGateway interface {
	Name() string
	CreatePixPayment(ctx context.Context, req value_objects.CreatePaymentReq) (value_objects.PaymentCreated, error)
	CreateCardPayment(ctx context.Context, req value_objects.CreatePaymentReq) (value_objects.PaymentCreated, error)
	GetPayment(ctx context.Context, paymentID string) (value_objects.PaymentStatus, error)
}
