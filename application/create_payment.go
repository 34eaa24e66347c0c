package application

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"access-system/domain/constants"
	"access-system/domain/entities"
	"access-system/domain/repositories"
	"access-system/domain/value_objects"
	"access-system/errors"
	"access-system/utils/emv"
	"access-system/utils/helpers"
	"access-system/utils/retry"
)

type CreatePaymentRequest struct {
	BotID     string
	ContactID string
	PlanID    string
	CycleID   string
	// Gateway overrides the configured gateway for the payment method.
	Gateway   string
	CardToken string
	TaxID     string
}

// CreatePixPayment opens a pending PIX transaction and stores the code the
// gateway issued exactly as received. A code that fails validation fails
// the transaction; it is never repaired.
func (us *AccessApplication) CreatePixPayment(ctx context.Context, req CreatePaymentRequest) (*entities.Transaction, error) {
	tx, gateway, payment, err := us.openTransaction(ctx, req, entities.PaymentMethodPix, us.Config.Gateways.Default)
	if err != nil {
		return tx, err
	}
	return us.submitPix(ctx, tx, gateway, payment)
}

func (us *AccessApplication) submitPix(ctx context.Context, tx *entities.Transaction, gateway repositories.IGateway, payment value_objects.CreatePaymentReq) (*entities.Transaction, error) {
	var created value_objects.PaymentCreated
	err := retry.Do(ctx, us.Retry, func() error {
		var err error
		created, err = gateway.CreatePixPayment(ctx, payment)
		if refusedByGateway(err) {
			return retry.Permanent(err)
		}
		return err
	})
	if err != nil {
		return us.failCreation(ctx, tx, err)
	}

	now := us.now()
	code := emv.Sanitize(created.PixPayload)
	result := emv.ValidatePayload(code)
	audit := &entities.ChecksumAudit{
		Valid:         result.Valid,
		CRCValid:      result.CRCValid,
		CalculatedCRC: result.CalculatedCRC,
		FoundCRC:      result.FoundCRC,
		Errors:        result.Errors,
		CheckedAt:     now,
	}
	patch := entities.MetadataPatch{
		GatewayPaymentRef: &created.PaymentID,
		GatewayStatus:     &created.Status,
		PixCode:           &code,
		PixChecksum:       audit,
	}

	if !result.Valid {
		us.Logger.Error("invalid_pix_payload",
			zap.String("transaction_id", tx.ID),
			zap.String("payment_id", created.PaymentID),
			zap.Strings("errors", result.Errors),
		)
		reason := constants.FailureReasonInvalidPixPayload
		patch.FailureReason = &reason
		failed, terr := us.transition(ctx, tx, entities.StatusFailed, patch, now)
		if terr != nil {
			us.Logger.Error("fail_transaction_err", zap.String("transaction_id", tx.ID), zap.Error(terr))
			failed = tx
		}
		return failed, fmt.Errorf("%w: %s", errors.ErrInvalidPixCode, strings.Join(result.Errors, "; "))
	}

	if created.QRImage != "" {
		patch.PixQRImage = &created.QRImage
	}
	updated, _, err := us.Transactions.MergeMetadata(ctx, tx.ID, patch, now)
	if err != nil {
		us.Logger.Error("store_pix_code_err", zap.String("transaction_id", tx.ID), zap.Error(err))
		return tx, err
	}

	// The caller already holds the code; a lost pix_created message is not fatal.
	if err := us.Notify(ctx, KindPixCreated, updated, NotifyOptions{PixExpiresAt: created.ExpiresAt}); err != nil {
		us.Logger.Warn("pix_created_notification_err", zap.String("transaction_id", tx.ID), zap.Error(err))
	}
	return updated, nil
}

// CreateCardPayment charges a tokenised card; the status the gateway answers
// with is applied right away.
func (us *AccessApplication) CreateCardPayment(ctx context.Context, req CreatePaymentRequest) (*entities.Transaction, error) {
	if req.CardToken == "" {
		return nil, errCardTokenRequired
	}
	tx, gateway, payment, err := us.openTransaction(ctx, req, entities.PaymentMethodCard, us.Config.Gateways.Card)
	if err != nil {
		return tx, err
	}
	return us.submitCard(ctx, tx, gateway, payment)
}

func (us *AccessApplication) submitCard(ctx context.Context, tx *entities.Transaction, gateway repositories.IGateway, payment value_objects.CreatePaymentReq) (*entities.Transaction, error) {
	var created value_objects.PaymentCreated
	err := retry.Do(ctx, us.Retry, func() error {
		var err error
		created, err = gateway.CreateCardPayment(ctx, payment)
		if refusedByGateway(err) {
			return retry.Permanent(err)
		}
		return err
	})
	if err != nil {
		return us.failCreation(ctx, tx, err)
	}

	updated, _, err := us.Transactions.MergeMetadata(ctx, tx.ID, entities.MetadataPatch{GatewayPaymentRef: &created.PaymentID}, us.now())
	if err != nil {
		us.Logger.Error("store_card_payment_err", zap.String("transaction_id", tx.ID), zap.Error(err))
		return tx, err
	}
	return us.ApplyGatewayStatus(ctx, updated, created.Status, "")
}

// openTransaction validates the plan and stores a pending transaction ready
// for the gateway call.
func (us *AccessApplication) openTransaction(ctx context.Context, req CreatePaymentRequest, method entities.PaymentMethod, defaultGateway string) (*entities.Transaction, repositories.IGateway, value_objects.CreatePaymentReq, error) {
	var payment value_objects.CreatePaymentReq

	name := req.Gateway
	if name == "" {
		name = defaultGateway
	}
	gateway, err := us.GatewayFor(name)
	if err != nil {
		return nil, nil, payment, err
	}

	plan, err := us.Catalog.FindPlan(ctx, req.PlanID)
	if err != nil {
		return nil, nil, payment, err
	}
	if plan.Price <= 0 {
		return nil, nil, payment, fmt.Errorf("%w: plan %s costs %d", errors.ErrInvalidAmount, plan.ID, plan.Price)
	}
	contact, err := us.Catalog.FindContact(ctx, req.ContactID)
	if err != nil {
		return nil, nil, payment, err
	}

	botID := req.BotID
	if botID == "" {
		botID = plan.BotID
	}
	now := us.now()
	tx, err := us.Transactions.Create(ctx, &entities.Transaction{
		ID:            helpers.GetUUId(),
		Gateway:       gateway.Name(),
		Amount:        plan.Price,
		Currency:      constants.CurrencyBRL,
		PaymentMethod: method,
		Status:        entities.StatusPending,
		BotID:         botID,
		ContactID:     contact.ID,
		PlanID:        plan.ID,
		CycleID:       req.CycleID,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		us.Logger.Error("create_transaction_err", zap.String("plan_id", plan.ID), zap.Error(err))
		return nil, nil, payment, err
	}

	payment = paymentRequest(tx, plan, contact, req)
	us.Logger.Info("transaction_created",
		zap.String("transaction_id", tx.ID),
		zap.String("gateway", tx.Gateway),
		zap.String("method", string(method)),
		zap.Int64("amount", tx.Amount),
	)
	return tx, gateway, payment, nil
}

// paymentRequest keys the gateway call on the transaction id so a repeated
// submission resolves to the payment already registered.
func paymentRequest(tx *entities.Transaction, plan *entities.Plan, contact *entities.Contact, req CreatePaymentRequest) value_objects.CreatePaymentReq {
	return value_objects.CreatePaymentReq{
		IdempotencyKey: tx.ID,
		Amount:         tx.Amount,
		Currency:       tx.Currency,
		Description:    plan.Title,
		Payer: value_objects.Payer{
			Email:     contact.Email,
			FirstName: contact.Name,
			TaxID:     req.TaxID,
		},
		CardToken: req.CardToken,
	}
}

// ResumePayment submits again a pending transaction whose creation never got
// an answer from the gateway. req supplies what the transaction does not
// store: the card token and the payer tax id. A transaction that already has
// a gateway payment is refreshed instead.
func (us *AccessApplication) ResumePayment(ctx context.Context, id string, req CreatePaymentRequest) (*entities.Transaction, error) {
	tx, err := us.Transactions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tx.Status.IsPending() {
		return tx, fmt.Errorf("%w: transaction %s is %s", errors.ErrInvalidTransition, tx.ID, tx.Status)
	}
	gateway, err := us.GatewayFor(tx.Gateway)
	if err != nil {
		return tx, err
	}
	if tx.GatewayPaymentID != "" {
		return us.refreshFromGateway(ctx, gateway, tx)
	}
	if !tx.IsPix() && req.CardToken == "" {
		return tx, errCardTokenRequired
	}

	plan, err := us.Catalog.FindPlan(ctx, tx.PlanID)
	if err != nil {
		return tx, err
	}
	contact, err := us.Catalog.FindContact(ctx, tx.ContactID)
	if err != nil {
		return tx, err
	}

	us.Logger.Info("transaction_resumed", zap.String("transaction_id", tx.ID), zap.String("gateway", tx.Gateway))
	payment := paymentRequest(tx, plan, contact, req)
	if tx.IsPix() {
		return us.submitPix(ctx, tx, gateway, payment)
	}
	return us.submitCard(ctx, tx, gateway, payment)
}

var errCardTokenRequired = errors.New("card token required")

// refusedByGateway reports answers a retry with the same request repeats.
func refusedByGateway(err error) bool {
	return errors.Is(err, errors.ErrMethodNotSupported) ||
		errors.Is(err, errors.ErrInvalidAmount) ||
		errors.Is(err, errors.ErrPaymentRefused)
}

// failCreation closes a transaction the gateway refused. Any other error
// leaves it pending: the gateway may have registered the payment, and
// ResumePayment recovers it under the same idempotency key. The caller
// reports the error to the customer, so nothing is sent here.
func (us *AccessApplication) failCreation(ctx context.Context, tx *entities.Transaction, cause error) (*entities.Transaction, error) {
	if !refusedByGateway(cause) {
		us.Logger.Warn("create_gateway_payment_unavailable", zap.String("transaction_id", tx.ID), zap.String("gateway", tx.Gateway), zap.Error(cause))
		return tx, fmt.Errorf("submit transaction %s to %s: %w", tx.ID, tx.Gateway, cause)
	}
	us.Logger.Error("create_gateway_payment_err", zap.String("transaction_id", tx.ID), zap.String("gateway", tx.Gateway), zap.Error(cause))

	now := us.now()
	reason := constants.FailureReasonGatewayError
	failed, err := us.Transactions.UpdateStatus(ctx, tx.ID, entities.StatusPending, entities.StatusFailed, entities.MetadataPatch{FailureReason: &reason}, now)
	if err != nil {
		us.Logger.Error("fail_transaction_err", zap.String("transaction_id", tx.ID), zap.Error(err))
		return tx, cause
	}
	us.publishStatus(ctx, failed, entities.StatusPending, entities.StatusFailed, now)
	return failed, cause
}
