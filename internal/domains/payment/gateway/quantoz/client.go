package quantoz

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"eurd-payments/internal/domains/payment/gateway"
	"eurd-payments/internal/infrastructure/metrics"
	"eurd-payments/pkg/logger"
)

// KeyFunc resolves the merchant API key at call time so an admin can rotate
// it without restarting the service
type KeyFunc func(ctx context.Context) (string, error)

const maxResponseBytes = 1 << 20

var errNoAPIKey = errors.New("merchant api key is not configured")

// =====================================================
// QUANTOZ CLIENT
// =====================================================

type Client struct {
	config     *Config
	httpClient *http.Client
	apiKey     KeyFunc
	metrics    *metrics.Metrics
}

func NewClient(config *Config, apiKey KeyFunc, m *metrics.Metrics) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Quantoz config: %w", err)
	}
	if apiKey == nil {
		return nil, fmt.Errorf("api key resolver is required")
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		apiKey:  apiKey,
		metrics: m,
	}, nil
}

var _ gateway.Client = (*Client)(nil)

// =====================================================
// PAYMENT REQUESTS
// =====================================================

func (c *Client) CreateRequest(ctx context.Context, req gateway.CreateRequestInput) (string, error) {
	if req.AccountCode == "" {
		return "", &gateway.Error{Op: "create_request", Message: "account code is required"}
	}
	if !req.Amount.IsPositive() {
		return "", &gateway.Error{Op: "create_request", Message: "amount must be positive"}
	}

	body := createRequestBody{
		AccountCode: req.AccountCode,
		Amount:      json.Number(req.Amount.StringFixed(2)),
		Options: createOptions{
			ExpiresOn:                     req.ExpiresOn.Format(expiresOnLayout),
			ShareName:                     true,
			Message:                       req.Message,
			IsOneOffPayment:               true,
			PayerCanChangeRequestedAmount: false,
			CallbackURL:                   req.CallbackURL,
		},
	}

	var out envelope[createdRequest]
	if err := c.call(ctx, "create_request", http.MethodPost, "payment-request", nil, body, "", &out); err != nil {
		return "", err
	}
	if out.Value.Code == "" {
		return "", &gateway.Error{Op: "create_request", StatusCode: http.StatusOK, Message: "response did not contain a payment request code"}
	}

	return out.Value.Code, nil
}

// GetRequest lists the merchant's payment requests and picks code locally;
// the API has no single-request lookup.
func (c *Client) GetRequest(ctx context.Context, code string) (*gateway.PaymentRequest, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: empty code", gateway.ErrRequestNotFound)
	}

	var out envelope[paymentRequestList]
	if err := c.call(ctx, "get_request", http.MethodGet, "payment-request", nil, nil, "", &out); err != nil {
		return nil, err
	}

	for _, item := range out.Value.Items {
		if item.Code == code {
			return toPaymentRequest(item), nil
		}
	}

	return nil, fmt.Errorf("%w: %s", gateway.ErrRequestNotFound, code)
}

func (c *Client) DeleteRequest(ctx context.Context, code string) error {
	err := c.call(ctx, "delete_request", http.MethodDelete, "payment-request/"+url.PathEscape(code), nil, nil, "", nil)

	var gwErr *gateway.Error
	if errors.As(err, &gwErr) && gwErr.StatusCode == http.StatusNotFound {
		// Already gone remotely
		return nil
	}
	return err
}

// =====================================================
// ACCOUNTS
// =====================================================

func (c *Client) ListAccounts(ctx context.Context) ([]gateway.Account, error) {
	return c.listAccounts(ctx, "")
}

func (c *Client) listAccounts(ctx context.Context, apiKey string) ([]gateway.Account, error) {
	var out envelope[[]accountDTO]
	if err := c.call(ctx, "list_accounts", http.MethodGet, "account/list", nil, nil, apiKey, &out); err != nil {
		return nil, err
	}

	accounts := make([]gateway.Account, 0, len(out.Value))
	for _, a := range out.Value {
		accounts = append(accounts, gateway.Account{
			AccountCode: a.AccountCode,
			CustomName:  a.CustomName,
			AccountType: a.AccountType,
		})
	}
	return accounts, nil
}

func (c *Client) AccountEnabled(ctx context.Context, accountCode string) (bool, error) {
	query := url.Values{"accountCode": []string{accountCode}}

	var out envelope[balanceDTO]
	if err := c.call(ctx, "account_balance", http.MethodGet, "account/balance", query, nil, "", &out); err != nil {
		return false, err
	}
	return out.Value.Enabled, nil
}

func (c *Client) ValidateKey(ctx context.Context, apiKey string) bool {
	if strings.TrimSpace(apiKey) == "" {
		return false
	}

	accounts, err := c.listAccounts(ctx, apiKey)
	if err != nil {
		logger.Debug("Quantoz API key validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}
	return len(accounts) > 0
}

func (c *Client) PayURL(code string) string {
	return c.config.PayURL + url.PathEscape(code)
}

// =====================================================
// TRANSPORT
// =====================================================

// call executes one request. keyOverride, when set, replaces the configured key.
func (c *Client) call(
	ctx context.Context,
	op, method, path string,
	query url.Values,
	body interface{},
	keyOverride string,
	out interface{},
) (err error) {
	start := time.Now()
	outcome := "ok"
	defer func() {
		if err != nil && outcome == "ok" {
			outcome = "error"
		}
		c.metrics.ObserveGatewayCall(op, outcome, time.Since(start))
	}()

	apiKey := keyOverride
	if apiKey == "" {
		apiKey, err = c.apiKey(ctx)
		if err != nil {
			outcome = "no_key"
			return &gateway.Error{Op: op, Message: "resolve api key", Err: err}
		}
		if apiKey == "" {
			outcome = "no_key"
			return &gateway.Error{Op: op, Message: "resolve api key", Err: errNoAPIKey}
		}
	}

	endpoint := c.config.endpoint(path)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set(headerAPIKey, apiKey)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		outcome = "transport_error"
		return &gateway.Error{Op: op, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		outcome = "transport_error"
		return &gateway.Error{Op: op, StatusCode: resp.StatusCode, Message: "failed to read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome = fmt.Sprintf("http_%d", resp.StatusCode)
		return &gateway.Error{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		outcome = "decode_error"
		return &gateway.Error{Op: op, StatusCode: resp.StatusCode, Message: "invalid response body", Err: err}
	}

	return nil
}

// errorMessage prefers the provider's first error message, falling back to the raw body
func errorMessage(raw []byte) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil && len(body.Errors) > 0 && body.Errors[0].Message != "" {
		return body.Errors[0].Message
	}
	return strings.TrimSpace(string(raw))
}

func toPaymentRequest(dto paymentRequestDTO) *gateway.PaymentRequest {
	pr := &gateway.PaymentRequest{
		Code:            dto.Code,
		Status:          dto.Status,
		RequestedAmount: dto.RequestedAmount,
		Payments:        make([]gateway.Payment, 0, len(dto.Payments)),
	}

	if t, ok := parseExpiresOn(dto.ExpiresOn); ok {
		pr.ExpiresOn = &t
	}

	for _, p := range dto.Payments {
		pr.Payments = append(pr.Payments, gateway.Payment{
			TransactionCode: p.TransactionCode,
			Amount:          p.Amount,
		})
	}

	return pr
}

func parseExpiresOn(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, expiresOnLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
