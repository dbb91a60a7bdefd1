package shared

// Task types
const (
	TypeConfirmOrderPayment = "payment:confirm_order"
	TypeReconcileAwaiting   = "payment:reconcile_awaiting"
)

// Queues
const (
	QueuePayment = "payment"
	QueueDefault = "default"
)

// ConfirmOrderPayload re-runs confirmation for one order
type ConfirmOrderPayload struct {
	OrderID            string `json:"orderId"`
	PaymentRequestCode string `json:"paymentRequestCode"`
	TransactionCode    string `json:"transactionCode,omitempty"`
	Trigger            string `json:"trigger"`
}

// ReconcileAwaitingPayload drives the periodic sweep of orders still waiting on the gateway
type ReconcileAwaitingPayload struct {
	Limit int `json:"limit"`
}
