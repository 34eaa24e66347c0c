package errors

import (
	"errors"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrPaymentNotFound     = errors.New("payment not found at gateway")
	ErrInvalidTransition   = errors.New("invalid status transition")
	// ErrStatusConflict is returned when a guarded status update lost the
	// race against another writer.
	ErrStatusConflict            = errors.New("transaction status changed concurrently")
	ErrInvalidPixCode            = errors.New("invalid pix code")
	ErrPixCodeImmutable          = errors.New("pix code already stored")
	ErrNoInviteLink              = errors.New("no invite link available")
	ErrInviteLinkInfoUnavailable = errors.New("invite link info unavailable")
	ErrInsufficientRights        = errors.New("bot lacks rights in chat")
	ErrMethodNotSupported        = errors.New("payment method not supported by gateway")
	ErrInvalidAmount             = errors.New("invalid amount")
	// ErrPaymentRefused is a gateway answer that repeating the request
	// cannot change, such as a 4xx validation error or a declined card.
	ErrPaymentRefused = errors.New("payment refused by gateway")
	ErrUnknownGateway            = errors.New("unknown gateway")
	ErrCatalogNotFound           = errors.New("catalog record not found")
	ErrMissingChat               = errors.New("no telegram chat for recipient")
)

// Is, As, New and Join mirror the standard library so callers importing this
// package under its default name keep errors.Is available.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target interface{}) bool { return errors.As(err, target) }

func New(text string) error { return errors.New(text) }

func Join(errs ...error) error { return errors.Join(errs...) }
