package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"eurd-payments/internal/domains/payment/gateway"
)

// =====================================================
// IN-MEMORY QUANTOZ GATEWAY FOR TESTING AND LOCAL DEV
// =====================================================

type Gateway struct {
	mu       sync.Mutex
	requests map[string]gateway.PaymentRequest
	accounts []gateway.Account
	keys     map[string]bool
	disabled map[string]bool
	seq      int

	createCalls int
	getCalls    int
	deleteCalls int
	created     []gateway.CreateRequestInput
	deleted     []string

	// Set to make the matching call fail
	FailCreate error
	FailGet    error
	FailDelete error

	// Simulates a slow gateway on CreateRequest
	CreateDelay time.Duration
}

func NewGateway() *Gateway {
	return &Gateway{
		requests: make(map[string]gateway.PaymentRequest),
		accounts: []gateway.Account{{AccountCode: "MOCK-ACCOUNT", CustomName: "Mock account"}},
		keys:     map[string]bool{"mock-key": true},
		disabled: make(map[string]bool),
	}
}

var _ gateway.Client = (*Gateway)(nil)

func (g *Gateway) CreateRequest(ctx context.Context, req gateway.CreateRequestInput) (string, error) {
	if g.CreateDelay > 0 {
		time.Sleep(g.CreateDelay)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.createCalls++
	if g.FailCreate != nil {
		return "", g.FailCreate
	}

	g.seq++
	code := fmt.Sprintf("MOCK-PR-%d", g.seq)
	expires := req.ExpiresOn
	g.requests[code] = gateway.PaymentRequest{
		Code:            code,
		Status:          gateway.RequestStatusOpen,
		RequestedAmount: decimal.NewNullDecimal(req.Amount),
		ExpiresOn:       &expires,
	}
	g.created = append(g.created, req)

	return code, nil
}

func (g *Gateway) GetRequest(ctx context.Context, code string) (*gateway.PaymentRequest, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.getCalls++
	if g.FailGet != nil {
		return nil, g.FailGet
	}

	pr, ok := g.requests[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", gateway.ErrRequestNotFound, code)
	}

	pr.Payments = append([]gateway.Payment(nil), pr.Payments...)
	return &pr, nil
}

func (g *Gateway) DeleteRequest(ctx context.Context, code string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.deleteCalls++
	if g.FailDelete != nil {
		return g.FailDelete
	}

	delete(g.requests, code)
	g.deleted = append(g.deleted, code)
	return nil
}

func (g *Gateway) ListAccounts(ctx context.Context) ([]gateway.Account, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return append([]gateway.Account(nil), g.accounts...), nil
}

func (g *Gateway) AccountEnabled(ctx context.Context, accountCode string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, a := range g.accounts {
		if a.AccountCode == accountCode {
			return !g.disabled[accountCode], nil
		}
	}
	return false, nil
}

func (g *Gateway) ValidateKey(ctx context.Context, apiKey string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.keys[apiKey]
}

func (g *Gateway) PayURL(code string) string {
	return "https://pay.mock.local/" + code
}

// =====================================================
// TEST CONTROLS
// =====================================================

// Put stores or replaces a payment request as the gateway would report it
func (g *Gateway) Put(pr gateway.PaymentRequest) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests[pr.Code] = pr
}

// Settle marks code paid with a single settlement
func (g *Gateway) Settle(code, transactionCode string, amount decimal.Decimal) {
	g.mu.Lock()
	defer g.mu.Unlock()

	pr := g.requests[code]
	pr.Code = code
	pr.Status = gateway.RequestStatusPaid
	pr.Payments = []gateway.Payment{{
		TransactionCode: transactionCode,
		Amount:          decimal.NewNullDecimal(amount),
	}}
	g.requests[code] = pr
}

func (g *Gateway) AddKey(apiKey string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.keys[apiKey] = true
}

func (g *Gateway) DisableAccount(accountCode string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.disabled[accountCode] = true
}

func (g *Gateway) CreateCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.createCalls
}

func (g *Gateway) GetCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.getCalls
}

func (g *Gateway) DeleteCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.deleteCalls
}

func (g *Gateway) Created() []gateway.CreateRequestInput {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]gateway.CreateRequestInput(nil), g.created...)
}

func (g *Gateway) Deleted() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.deleted...)
}
