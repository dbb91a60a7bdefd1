package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	ordermodel "eurd-payments/internal/domains/order/model"
	orderrepo "eurd-payments/internal/domains/order/repository"
	"eurd-payments/internal/domains/payment/gateway"
	"eurd-payments/internal/domains/payment/model"
	"eurd-payments/internal/domains/payment/repository"
	"eurd-payments/internal/infrastructure/metrics"
	"eurd-payments/internal/shared"
	pkgcache "eurd-payments/pkg/cache"
	"eurd-payments/pkg/logger"
)

// Config carries the payment knobs the engine needs from config.Config
type Config struct {
	MaxAmount      decimal.Decimal
	RequestTTL     time.Duration
	LockTTL        time.Duration
	GatewayTimeout time.Duration
	PollInterval   time.Duration
	CallbackURL    string
	BaseURL        string
}

// gatewayCallsUnderLock: GetRequest, DeleteRequest, CreateRequest
const gatewayCallsUnderLock = 3

// =====================================================
// RECONCILIATION SERVICE IMPLEMENTATION
// =====================================================
type reconciliationService struct {
	orders   orderrepo.OrderRepository
	store    repository.PaymentRequestStore
	gateway  gateway.Client
	settings MethodSettings
	locker   pkgcache.Locker
	tasks    TaskEnqueuer
	tokens   PollTokenManager
	metrics  *metrics.Metrics
	cfg      Config

	now func() time.Time
}

func NewReconciliationService(
	orders orderrepo.OrderRepository,
	store repository.PaymentRequestStore,
	gw gateway.Client,
	settings MethodSettings,
	locker pkgcache.Locker,
	tasks TaskEnqueuer,
	tokens PollTokenManager,
	m *metrics.Metrics,
	cfg Config,
) ReconciliationService {
	return &reconciliationService{
		orders:   orders,
		store:    store,
		gateway:  gw,
		settings: settings,
		locker:   locker,
		tasks:    tasks,
		tokens:   tokens,
		metrics:  m,
		cfg:      cfg,
		now:      time.Now,
	}
}

// =====================================================
// GET OR CREATE PAYMENT REQUEST
// =====================================================

// GetOrCreateRequest
//
// Business Logic Flow:
// 1. Take the per-order lock (contention -> PAY006)
// 2. Existing code: fetch it from the gateway
//   - fetch fails -> clear local code, create a new one
//   - Paid -> return Paid=true
//   - Open with requested amount == order total -> reuse
//   - anything else -> delete remotely, clear locally, create a new one
//
// 3. Create with amount = order total, expiry now + request TTL
// 4. Persist the code and write an order note
//
// Edge Cases:
// - Redis down -> proceed without the lock
// - Remote delete fails -> logged, replacement continues
// - Create fails -> nothing persisted, note written, PAY003
func (s *reconciliationService) GetOrCreateRequest(
	ctx context.Context,
	order *ordermodel.Order,
	accountCode string,
) (*model.RequestResult, error) {
	// Step 1: Per-order lock
	release, acquired, err := s.locker.TryLock(ctx, model.LockKeyOrderRequest+order.ID.String(), s.lockTTL())
	switch {
	case err != nil:
		logger.Warn("Order lock unavailable, continuing without it", map[string]interface{}{
			"order_id": order.ID.String(),
			"error":    err.Error(),
		})
	case !acquired:
		s.metrics.ObserveRequestOutcome("in_progress")
		return nil, model.NewRequestInProgressError(order.ID.String())
	default:
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("Failed to release order lock", map[string]interface{}{
					"order_id": order.ID.String(),
					"error":    err.Error(),
				})
			}
		}()
	}

	// Step 2: Inspect existing request
	existing, err := s.store.GetCode(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read payment request code: %w", err)
	}

	if existing != "" {
		result, done := s.inspectExisting(ctx, order, existing)
		if done {
			return result, nil
		}
	}

	// Step 3: Create
	now := s.now()
	code, err := s.gateway.CreateRequest(ctx, gateway.CreateRequestInput{
		AccountCode: accountCode,
		Amount:      order.Total,
		ExpiresOn:   now.Add(s.cfg.RequestTTL),
		Message:     fmt.Sprintf("%d_orderId_%s", now.Unix(), order.OrderNumber),
		CallbackURL: s.cfg.CallbackURL,
	})
	if err != nil {
		s.metrics.ObserveRequestOutcome("failed")
		logger.ErrorWithFields("Failed to create EURD payment request", err, map[string]interface{}{
			"order_id": order.ID.String(),
		})
		s.addNote(ctx, order.ID, fmt.Sprintf(model.NoteRequestCreateFailed, err.Error()))
		return nil, model.NewGatewayFailureError("create payment request", err)
	}

	// Step 4: Persist
	if err := s.store.SetCode(ctx, order.ID, code); err != nil {
		return nil, fmt.Errorf("failed to store payment request code: %w", err)
	}
	s.addNote(ctx, order.ID, fmt.Sprintf(model.NoteRequestCreated, code))
	s.metrics.ObserveRequestOutcome("created")

	logger.Info("EURD payment request created", map[string]interface{}{
		"order_id": order.ID.String(),
		"code":     code,
		"amount":   order.Total.StringFixed(2),
	})

	return &model.RequestResult{Code: code, Created: true}, nil
}

// lockTTL never lets the lock expire before the slowest gateway sequence
// plus one timeout of slack for the storage writes
func (s *reconciliationService) lockTTL() time.Duration {
	floor := (gatewayCallsUnderLock + 1) * s.cfg.GatewayTimeout
	if s.cfg.LockTTL < floor {
		return floor
	}
	return s.cfg.LockTTL
}

// inspectExisting returns done=false when a new request must be created
func (s *reconciliationService) inspectExisting(
	ctx context.Context,
	order *ordermodel.Order,
	code string,
) (*model.RequestResult, bool) {
	pr, err := s.gateway.GetRequest(ctx, code)
	if err != nil {
		logger.Warn("Stored payment request could not be fetched, creating a new one", map[string]interface{}{
			"order_id": order.ID.String(),
			"code":     code,
			"error":    err.Error(),
		})
		s.clearCode(ctx, order.ID, code)
		return nil, false
	}

	if pr.IsPaid() {
		s.metrics.ObserveRequestOutcome("paid")
		return &model.RequestResult{Code: code, Paid: true}, true
	}

	if pr.IsOpen() && pr.RequestedAmount.Valid && pr.RequestedAmount.Decimal.Equal(order.Total) {
		s.metrics.ObserveRequestOutcome("reused")
		return &model.RequestResult{Code: code, Reused: true}, true
	}

	// Stale: expired, amount changed, or unknown status
	if err := s.gateway.DeleteRequest(ctx, code); err != nil {
		logger.ErrorWithFields("Failed to delete stale payment request", err, map[string]interface{}{
			"order_id": order.ID.String(),
			"code":     code,
		})
	}
	s.clearCode(ctx, order.ID, code)
	s.addNote(ctx, order.ID, fmt.Sprintf(model.NoteRequestReplaced, code, pr.Status))
	s.metrics.ObserveRequestOutcome("replaced")

	return nil, false
}

// =====================================================
// CONFIRM
// =====================================================

// Confirm
//
// Business Logic Flow:
// 1. Load the order; already paid -> AlreadyPaid
// 2. Reported request code must equal the stored one
// 3. Fetch the request; not found or not Paid -> NotYetPaid
// 4. First settlement must carry a transaction code and an amount
// 5. A reported transaction code must match the settlement
// 6. Settlement amount must equal the order total exactly
// 7. Conditional mark-paid; losing the race -> AlreadyPaid
//
// Mismatch and NotYetPaid are results. Only storage and transport failures are errors.
func (s *reconciliationService) Confirm(
	ctx context.Context,
	trigger model.Trigger,
	orderID uuid.UUID,
	reportedRequestCode string,
	reportedTransactionCode string,
) (result model.ConfirmResult, err error) {
	defer func() {
		s.observeConfirm(trigger, orderID, reportedRequestCode, result, err)
	}()

	// Step 1: Authoritative order read
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	if order.IsPaid() {
		return model.ConfirmAlreadyPaid, nil
	}

	// Retry and sweep runs stay out of the order notes
	annotate := trigger == model.TriggerWebhook || trigger == model.TriggerManual

	if !order.NeedsPayment() {
		logger.Warn("Order no longer needs payment", map[string]interface{}{
			"order_id": orderID.String(),
			"status":   order.Status,
		})
		if annotate {
			s.addNote(ctx, orderID, fmt.Sprintf(model.NoteOrderNotPayable, reportedRequestCode, order.Status))
		}
		return model.ConfirmMismatch, nil
	}
	if trigger == model.TriggerWebhook {
		s.addNote(ctx, orderID, fmt.Sprintf(model.NoteWebhookReceived, reportedRequestCode, reportedTransactionCode))
	}

	// Step 2: Request code must be the one on the order
	stored := order.RequestCode()
	if stored == "" || reportedRequestCode != stored {
		logger.Warn("Reported payment request code does not match order", map[string]interface{}{
			"order_id": orderID.String(),
			"reported": reportedRequestCode,
			"stored":   stored,
		})
		return model.ConfirmMismatch, nil
	}

	// Step 3: Gateway status
	pr, err := s.gateway.GetRequest(ctx, stored)
	if err != nil {
		if errors.Is(err, gateway.ErrRequestNotFound) {
			if annotate {
				s.addNote(ctx, orderID, fmt.Sprintf(model.NoteStatusNotPaid, stored, "not found"))
			}
			return model.ConfirmNotYetPaid, nil
		}
		return "", model.NewGatewayFailureError("get payment request", err)
	}
	if !pr.IsPaid() {
		if annotate {
			s.addNote(ctx, orderID, fmt.Sprintf(model.NoteStatusNotPaid, stored, pr.Status))
		}
		return model.ConfirmNotYetPaid, nil
	}

	// Step 4: Settlement details
	if len(pr.Payments) == 0 || pr.Payments[0].TransactionCode == "" || !pr.Payments[0].Amount.Valid {
		if annotate {
			s.addNote(ctx, orderID, fmt.Sprintf(model.NoteTransactionMissing, stored))
		}
		return model.ConfirmMismatch, nil
	}
	settlement := pr.Payments[0]

	// Step 5: Transaction code
	if reportedTransactionCode != "" && reportedTransactionCode != settlement.TransactionCode {
		if annotate {
			s.addNote(ctx, orderID, fmt.Sprintf(model.NoteTransactionMismatch, reportedTransactionCode, settlement.TransactionCode))
		}
		return model.ConfirmMismatch, nil
	}

	// Step 6: Exact amount
	if !settlement.Amount.Decimal.Equal(order.Total) {
		logger.Warn("EURD amount mismatch", map[string]interface{}{
			"order_id": orderID.String(),
			"expected": order.Total.StringFixed(2),
			"paid":     settlement.Amount.Decimal.StringFixed(2),
		})
		if annotate {
			s.addNote(ctx, orderID, fmt.Sprintf(model.NoteAmountMismatch,
				order.Total.StringFixed(2), settlement.Amount.Decimal.StringFixed(2)))
		}
		return model.ConfirmMismatch, nil
	}

	// Step 7: Compare-and-set
	marked, err := s.orders.MarkAsPaid(ctx, orderID, stored, settlement.TransactionCode,
		fmt.Sprintf(model.NotePaymentCompleted, settlement.TransactionCode))
	if err != nil {
		return "", fmt.Errorf("failed to mark order paid: %w", err)
	}
	if marked {
		return model.ConfirmPaid, nil
	}

	// Lost the race or the code changed underneath us
	latest, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	if latest.IsPaid() {
		return model.ConfirmAlreadyPaid, nil
	}
	return model.ConfirmMismatch, nil
}

func (s *reconciliationService) observeConfirm(
	trigger model.Trigger,
	orderID uuid.UUID,
	code string,
	result model.ConfirmResult,
	err error,
) {
	fields := map[string]interface{}{
		"order_id": orderID.String(),
		"code":     code,
		"trigger":  string(trigger),
	}

	if err != nil {
		s.metrics.ObserveConfirm(string(trigger), "error")
		logger.ErrorWithFields("EURD payment confirmation failed", err, fields)
		return
	}

	s.metrics.ObserveConfirm(string(trigger), string(result))
	fields["result"] = string(result)

	switch result {
	case model.ConfirmPaid:
		logger.Info("EURD payment completed", fields)
	case model.ConfirmMismatch:
		logger.Warn("EURD payment confirmation mismatch", fields)
	default:
		logger.Debug("EURD payment confirmation", fields)
	}
}

// =====================================================
// CHECKOUT
// =====================================================

// StartPayment prepares the pay page for an order.
//
// Business Logic Flow:
// 1. Load order; already paid -> paid session
// 2. Check method availability, currency and max amount
// 3. Move the order to awaiting payment
// 4. GetOrCreateRequest; an already settled request is confirmed right away
// 5. Build the session with pay url, confirm url and poll token
func (s *reconciliationService) StartPayment(ctx context.Context, orderID uuid.UUID) (*model.PaymentSession, error) {
	// Step 1: Load order
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsPaid() {
		return s.session(order, "", ""), nil
	}
	if !order.NeedsPayment() {
		return nil, model.NewOrderNotPayableError(order.Status)
	}

	// Step 2: Checkout rules
	if ok, reason := s.settings.IsAvailable(ctx); !ok {
		return nil, model.NewMethodUnavailableError(reason)
	}
	if order.Currency != model.SupportedCurrency {
		return nil, model.NewUnsupportedCurrencyError(order.Currency)
	}
	if !order.Total.IsPositive() {
		return nil, model.NewValidationError("order total must be positive")
	}
	if order.Total.GreaterThan(s.cfg.MaxAmount) {
		return nil, model.NewAmountExceededError(order.Total, s.cfg.MaxAmount)
	}

	accountCode, err := s.settings.AccountCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load merchant account: %w", err)
	}

	// Step 3: Awaiting payment
	if order.PaymentStatus == ordermodel.PaymentStatusUnpaid {
		if err := s.orders.MarkAwaitingPayment(ctx, orderID); err != nil {
			return nil, err
		}
		s.addNote(ctx, orderID, model.NoteAwaitingPayment)
	}

	// Step 4: Payment request
	req, err := s.GetOrCreateRequest(ctx, order, accountCode)
	if err != nil {
		return nil, err
	}

	if req.Paid {
		s.addNote(ctx, orderID, fmt.Sprintf(model.NoteRequestAlreadySettled, req.Code))
		if _, err := s.Confirm(ctx, model.TriggerCheckout, orderID, req.Code, ""); err != nil {
			return nil, err
		}
	}

	// Step 5: Session
	latest, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if latest.IsPaid() {
		return s.session(latest, req.Code, ""), nil
	}

	token, err := s.tokens.GeneratePollToken(orderID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to issue poll token: %w", err)
	}

	return s.session(latest, req.Code, token), nil
}

func (s *reconciliationService) session(order *ordermodel.Order, code, token string) *model.PaymentSession {
	session := &model.PaymentSession{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Amount:      order.Total,
		Currency:    order.Currency,
		Status:      order.Status,
		Paid:        order.IsPaid(),
	}

	if code == "" || session.Paid {
		session.PaymentRequestCode = code
		return session
	}

	session.PaymentRequestCode = code
	session.PaymentURL = s.gateway.PayURL(code)
	session.ConfirmURL = s.confirmURL(order.ID, code)
	session.PollToken = token
	session.PollIntervalSeconds = int(s.cfg.PollInterval / time.Second)

	return session
}

func (s *reconciliationService) confirmURL(orderID uuid.UUID, code string) string {
	return fmt.Sprintf("%s/api/v1/orders/%s/eurd/confirm?payment_request_code=%s",
		s.cfg.BaseURL, orderID.String(), url.QueryEscape(code))
}

// ManualConfirm handles the customer's "I have paid" click
func (s *reconciliationService) ManualConfirm(ctx context.Context, orderID uuid.UUID, requestCode string) (model.ConfirmResult, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return "", err
	}

	s.addNote(ctx, orderID, model.NoteManualConfirm)

	if order.IsPaid() {
		return model.ConfirmAlreadyPaid, nil
	}

	if requestCode == "" {
		requestCode = order.RequestCode()
	}
	if requestCode == "" {
		return "", model.NewValidationError("payment_request_code is required")
	}

	return s.Confirm(ctx, model.TriggerManual, orderID, requestCode, "")
}

// =====================================================
// READ PATHS
// =====================================================

func (s *reconciliationService) OrderStatus(ctx context.Context, orderID uuid.UUID) (string, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	return order.Status, nil
}

// CheckOrderStatus is the pay page poll: token first, then a plain read
func (s *reconciliationService) CheckOrderStatus(ctx context.Context, orderID uuid.UUID, token string) (string, error) {
	if err := s.tokens.ValidatePollToken(token, orderID.String()); err != nil {
		logger.Debug("Rejected poll token", map[string]interface{}{
			"order_id": orderID.String(),
			"error":    err.Error(),
		})
		return "", model.NewInvalidTokenError()
	}
	return s.OrderStatus(ctx, orderID)
}

func (s *reconciliationService) FindOrderByRequestCode(ctx context.Context, code string) (uuid.UUID, error) {
	id, err := s.orders.FindOrderIDByPaymentRequestCode(ctx, code)
	if err != nil {
		if errors.Is(err, ordermodel.ErrOrderNotFound) {
			return uuid.Nil, model.NewOrderNotFoundError(code)
		}
		return uuid.Nil, err
	}
	return id, nil
}

// =====================================================
// BACKGROUND
// =====================================================

func (s *reconciliationService) ScheduleConfirm(ctx context.Context, payload shared.ConfirmOrderPayload, delay time.Duration) error {
	return s.tasks.EnqueueConfirmOrder(ctx, payload, delay)
}

// ReconcileAwaiting enqueues a confirm task for every order still waiting
// on a request that may be alive. Per-order enqueue failures are logged.
func (s *reconciliationService) ReconcileAwaiting(ctx context.Context, limit int) (int, error) {
	since := s.now().Add(-s.cfg.RequestTTL)

	orders, err := s.orders.ListAwaitingPayment(ctx, since, limit)
	if err != nil {
		return 0, err
	}

	enqueued := 0
	for _, order := range orders {
		payload := shared.ConfirmOrderPayload{
			OrderID:            order.ID.String(),
			PaymentRequestCode: order.RequestCode(),
			Trigger:            string(model.TriggerSweep),
		}
		if err := s.tasks.EnqueueConfirmOrder(ctx, payload, 0); err != nil {
			logger.ErrorWithFields("Failed to enqueue sweep confirm", err, map[string]interface{}{
				"order_id": order.ID.String(),
			})
			continue
		}
		enqueued++
	}

	logger.Info("Awaiting orders reconciled", map[string]interface{}{
		"found":    len(orders),
		"enqueued": enqueued,
	})

	return enqueued, nil
}

// =====================================================
// HELPERS
// =====================================================

func (s *reconciliationService) loadOrder(ctx context.Context, orderID uuid.UUID) (*ordermodel.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ordermodel.ErrOrderNotFound) {
			return nil, model.NewOrderNotFoundError(orderID.String())
		}
		return nil, err
	}
	return order, nil
}

func (s *reconciliationService) clearCode(ctx context.Context, orderID uuid.UUID, code string) {
	if err := s.store.ClearCode(ctx, orderID, code); err != nil {
		logger.ErrorWithFields("Failed to clear payment request code", err, map[string]interface{}{
			"order_id": orderID.String(),
			"code":     code,
		})
	}
}

// addNote never fails the caller
func (s *reconciliationService) addNote(ctx context.Context, orderID uuid.UUID, note string) {
	if err := s.orders.AddNote(ctx, orderID, note); err != nil {
		logger.ErrorWithFields("Failed to add order note", err, map[string]interface{}{
			"order_id": orderID.String(),
		})
	}
}
