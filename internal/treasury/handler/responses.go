package handler

import "fundgate/internal/treasury"

// TreasuryListResponse is the HTTP response body for GET /treasuries.
type TreasuryListResponse struct {
	Treasuries []treasury.Treasury `json:"treasuries"`
}
