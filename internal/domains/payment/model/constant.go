package model

// =====================================================
// PAYMENT METHOD
// =====================================================
const (
	MethodID           = "eurd"
	DefaultTitle       = "EURD"
	DefaultDescription = "Pay with EURD via Quantoz Pay"
	SupportedCurrency  = "EUR"
)

// =====================================================
// CONFIRMATION RESULTS
// =====================================================

// ConfirmResult is the typed outcome of a confirmation attempt.
// Mismatch and NotYetPaid are results, not errors.
type ConfirmResult string

const (
	ConfirmPaid        ConfirmResult = "paid"
	ConfirmAlreadyPaid ConfirmResult = "already_paid"
	ConfirmNotYetPaid  ConfirmResult = "not_yet_paid"
	ConfirmMismatch    ConfirmResult = "mismatch"
)

// Trigger identifies which caller reached the confirmation path
type Trigger string

const (
	TriggerWebhook  Trigger = "webhook"
	TriggerManual   Trigger = "manual"
	TriggerCheckout Trigger = "checkout"
	TriggerRetry    Trigger = "retry"
	TriggerSweep    Trigger = "sweep"
)

// =====================================================
// WEBHOOK EVENTS
// =====================================================
const (
	WebhookTypePaymentRequestPaid = "PaymentRequestPaid"
	WebhookAckMessage             = "Webhook received successfully"
)

// =====================================================
// ORDER NOTES
// =====================================================
const (
	NoteRequestCreated        = "EURD payment request generated (code: %s)"
	NoteRequestCreateFailed   = "Failed to create EURD payment request: %s"
	NoteRequestReplaced       = "EURD payment request %s replaced (status: %s)"
	NoteWebhookReceived       = "EURD payment notification received (request: %s, transaction: %s)"
	NoteManualConfirm         = "EURD payment confirmation link clicked"
	NoteStatusNotPaid         = "EURD payment request %s status is %s, not Paid"
	NoteTransactionMissing    = "EURD payment request %s is Paid but transaction details are missing"
	NoteTransactionMismatch   = "EURD transaction code mismatch (reported: %s, gateway: %s)"
	NoteAmountMismatch        = "EURD amount mismatch (order total: %s, paid: %s)"
	NotePaymentCompleted      = "EURD payment completed (transaction: %s)"
	NoteAwaitingPayment       = "Awaiting EURD payment"
	NoteOrderNotPayable       = "EURD payment request %s reported paid but order is %s"
	NoteRequestAlreadySettled = "EURD payment request %s already paid, confirming order"
)

// =====================================================
// CACHE KEYS
// =====================================================
const (
	CacheKeySettings       = "payment:eurd:settings"
	CacheKeyAccounts       = "payment:eurd:accounts"
	CacheKeyAccountEnabled = "payment:eurd:account_enabled:"
	LockKeyOrderRequest    = "payment:eurd:lock:order:"
)

// =====================================================
// INTERNAL ERROR CODES
// =====================================================
const (
	ErrCodeValidation          = "PAY001"
	ErrCodeOrderNotFound       = "PAY002"
	ErrCodeGatewayFailure      = "PAY003"
	ErrCodeMethodUnavailable   = "PAY004"
	ErrCodeAmountExceeded      = "PAY005"
	ErrCodeRequestInProgress   = "PAY006"
	ErrCodeInvalidToken        = "PAY007"
	ErrCodeUnsupportedCurrency = "PAY008"
	ErrCodeOrderNotPayable     = "PAY009"
	ErrCodeInvalidAPIKey       = "PAY010"
	ErrCodeInternalError       = "PAY011"
)
