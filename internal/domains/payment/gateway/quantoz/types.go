package quantoz

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Wire formats of the Quantoz Pay REST API. Every response wraps its payload in "value".

type envelope[T any] struct {
	Value T `json:"value"`
}

type errorBody struct {
	Errors []struct {
		Code    string `json:"Code"`
		Message string `json:"Message"`
	} `json:"Errors"`
}

type paymentRequestList struct {
	Items []paymentRequestDTO `json:"items"`
}

type paymentRequestDTO struct {
	Code            string              `json:"code"`
	Status          string              `json:"status"`
	RequestedAmount decimal.NullDecimal `json:"requestedAmount"`
	ExpiresOn       string              `json:"expiresOn"`
	Payments        []paymentDTO        `json:"payments"`
}

type paymentDTO struct {
	TransactionCode string              `json:"transactionCode"`
	Amount          decimal.NullDecimal `json:"amount"`
}

type createRequestBody struct {
	AccountCode string        `json:"accountCode"`
	Amount      json.Number   `json:"amount"`
	Options     createOptions `json:"options"`
}

type createOptions struct {
	ExpiresOn                     string `json:"expiresOn"`
	ShareName                     bool   `json:"shareName"`
	Message                       string `json:"message"`
	IsOneOffPayment               bool   `json:"isOneOffPayment"`
	PayerCanChangeRequestedAmount bool   `json:"payerCanChangeRequestedAmount"`
	CallbackURL                   string `json:"callbackUrl"`
}

type createdRequest struct {
	Code string `json:"code"`
}

type accountDTO struct {
	AccountCode string `json:"accountCode"`
	CustomName  string `json:"customName"`
	AccountType string `json:"accountType"`
}

type balanceDTO struct {
	Enabled bool `json:"enabled"`
}
