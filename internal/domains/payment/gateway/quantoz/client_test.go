package quantoz

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eurd-payments/internal/domains/payment/gateway"
)

func staticKey(key string) KeyFunc {
	return func(context.Context) (string, error) { return key, nil }
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(NewConfig(srv.URL, "https://pay.example.test", 2*time.Second), staticKey("merchant-key"), nil)
	require.NoError(t, err)
	return c
}

func TestCreateRequest_SendsExpectedBody(t *testing.T) {
	var got map[string]interface{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/payment-request", r.URL.Path)
		assert.Equal(t, "merchant-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &got))

		_, _ = w.Write([]byte(`{"value":{"code":"PR-1"}}`))
	})

	expires := time.Date(2026, 3, 4, 17, 5, 9, 0, time.FixedZone("CET", 3600))
	code, err := c.CreateRequest(context.Background(), gateway.CreateRequestInput{
		AccountCode: "ACC-1",
		Amount:      decimal.RequireFromString("25"),
		ExpiresOn:   expires,
		Message:     "1700000000_orderId_1001",
		CallbackURL: "https://shop.example.test/api/v1/webhooks/quantoz",
	})
	require.NoError(t, err)
	assert.Equal(t, "PR-1", code)

	assert.Equal(t, "ACC-1", got["accountCode"])
	assert.Equal(t, 25.0, got["amount"])
	options := got["options"].(map[string]interface{})
	assert.Equal(t, "04/03/2026 17:05:09 +01:00", options["expiresOn"])
	assert.Equal(t, true, options["isOneOffPayment"])
	assert.Equal(t, false, options["payerCanChangeRequestedAmount"])
	assert.Equal(t, true, options["shareName"])
	assert.Equal(t, "1700000000_orderId_1001", options["message"])
	assert.Equal(t, "https://shop.example.test/api/v1/webhooks/quantoz", options["callbackUrl"])
}

func TestCreateRequest_ErrorMessageFromBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"Errors":[{"Code":"E1","Message":"Account is disabled"}]}`))
	})

	_, err := c.CreateRequest(context.Background(), gateway.CreateRequestInput{
		AccountCode: "ACC-1",
		Amount:      decimal.RequireFromString("10.00"),
		ExpiresOn:   time.Now(),
	})

	var gwErr *gateway.Error
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, http.StatusBadRequest, gwErr.StatusCode)
	assert.Equal(t, "Account is disabled", gwErr.Message)
}

func TestCreateRequest_ErrorFallsBackToRawBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	})

	_, err := c.CreateRequest(context.Background(), gateway.CreateRequestInput{
		AccountCode: "ACC-1",
		Amount:      decimal.RequireFromString("10.00"),
		ExpiresOn:   time.Now(),
	})

	var gwErr *gateway.Error
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, "upstream exploded", gwErr.Message)
}

func TestGetRequest_FiltersByCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/payment-request", r.URL.Path)
		_, _ = w.Write([]byte(`{"value":{"items":[
			{"code":"PR-0","status":"Open","requestedAmount":5,"payments":[]},
			{"code":"PR-1","status":"Paid","requestedAmount":25.00,"expiresOn":"2026-03-04T17:05:09+01:00",
			 "payments":[{"transactionCode":"TX-1","amount":25.00}]}
		]}}`))
	})

	pr, err := c.GetRequest(context.Background(), "PR-1")
	require.NoError(t, err)

	assert.Equal(t, "PR-1", pr.Code)
	assert.True(t, pr.IsPaid())
	require.True(t, pr.RequestedAmount.Valid)
	assert.True(t, pr.RequestedAmount.Decimal.Equal(decimal.RequireFromString("25")))
	require.NotNil(t, pr.ExpiresOn)
	require.Len(t, pr.Payments, 1)
	assert.Equal(t, "TX-1", pr.Payments[0].TransactionCode)
	assert.True(t, pr.Payments[0].Amount.Valid)
}

func TestGetRequest_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"value":{"items":[{"code":"PR-0","status":"Open"}]}}`))
	})

	_, err := c.GetRequest(context.Background(), "PR-404")
	assert.ErrorIs(t, err, gateway.ErrRequestNotFound)
}

func TestGetRequest_NullAmountStaysInvalid(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"value":{"items":[{"code":"PR-1","status":"Paid","payments":[{"transactionCode":"TX-1","amount":null}]}]}}`))
	})

	pr, err := c.GetRequest(context.Background(), "PR-1")
	require.NoError(t, err)
	assert.False(t, pr.RequestedAmount.Valid)
	assert.False(t, pr.Payments[0].Amount.Valid)
}

func TestDeleteRequest(t *testing.T) {
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		path = r.URL.Path
		if r.URL.Path == "/payment-request/PR-gone" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.DeleteRequest(context.Background(), "PR-1"))
	assert.Equal(t, "/payment-request/PR-1", path)

	assert.NoError(t, c.DeleteRequest(context.Background(), "PR-gone"))
}

func TestValidateKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/account/list", r.URL.Path)
		switch r.Header.Get("x-api-key") {
		case "good":
			_, _ = w.Write([]byte(`{"value":[{"accountCode":"ACC-1","customName":"Main"}]}`))
		case "empty":
			_, _ = w.Write([]byte(`{"value":[]}`))
		default:
			w.WriteHeader(http.StatusForbidden)
		}
	})

	ctx := context.Background()
	assert.True(t, c.ValidateKey(ctx, "good"))
	assert.False(t, c.ValidateKey(ctx, "empty"))
	assert.False(t, c.ValidateKey(ctx, "forbidden"))
	assert.False(t, c.ValidateKey(ctx, ""))
}

func TestListAccountsAndBalance(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/account/list":
			_, _ = w.Write([]byte(`{"value":[{"accountCode":"ACC-1","customName":"Main","accountType":"Business"}]}`))
		case "/account/balance":
			assert.Equal(t, "ACC-1", r.URL.Query().Get("accountCode"))
			_, _ = w.Write([]byte(`{"value":{"enabled":true,"balance":12.5}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	accounts, err := c.ListAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []gateway.Account{{AccountCode: "ACC-1", CustomName: "Main", AccountType: "Business"}}, accounts)

	enabled, err := c.AccountEnabled(context.Background(), "ACC-1")
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestCall_MissingKeyFailsWithoutRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c, err := NewClient(NewConfig(srv.URL, "", time.Second), staticKey(""), nil)
	require.NoError(t, err)

	_, err = c.ListAccounts(context.Background())
	assert.Error(t, err)
	assert.False(t, called)
}

func TestCall_TimeoutIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c, err := NewClient(NewConfig(srv.URL, "", 50*time.Millisecond), staticKey("k"), nil)
	require.NoError(t, err)

	_, err = c.GetRequest(context.Background(), "PR-1")
	var gwErr *gateway.Error
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, 0, gwErr.StatusCode)
	assert.NotErrorIs(t, err, gateway.ErrRequestNotFound)
}

func TestPayURL(t *testing.T) {
	c, err := NewClient(NewConfig("", "https://pay.quantozpay.com", 0), staticKey("k"), nil)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.quantozpay.com/PR-1", c.PayURL("PR-1"))
}
