package model

// PaymentDetailResponse is the admin view of one order's EURD payment trail
type PaymentDetailResponse struct {
	Order Order       `json:"order"`
	Notes []OrderNote `json:"notes"`
}
