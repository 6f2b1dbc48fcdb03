package dto

import (
	"time"

	"kekspay-gateway/internal/core/domain"

	"github.com/shopspring/decimal"
)

// LoginRequest is the request body for admin login.
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required,max=128"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// CheckoutQuery authorises the receipt page for one order.
type CheckoutQuery struct {
	Key string `form:"key" binding:"required,max=64,safe_id"`
}

// StatusRequest is the customer's status poll, sent as form or JSON.
type StatusRequest struct {
	OrderID int64  `form:"order_id" json:"order_id" binding:"required,gt=0"`
	Nonce   string `form:"nonce" json:"nonce" binding:"required,max=64,safe_id"`
}

// RefundRequest is the request body for an admin refund.
// Amount accepts both a JSON number and a numeric string.
type RefundRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// CredentialsRequest is a partial write of one CID/TID/secret triple.
type CredentialsRequest struct {
	CID       *string `json:"cid" binding:"omitempty,max=64,safe_id"`
	TID       *string `json:"tid" binding:"omitempty,max=64,safe_id"`
	SecretKey *string `json:"secret_key" binding:"omitempty,max=64"`
}

// SettingsUpdateRequest is a partial settings write; omitted fields are kept.
type SettingsUpdateRequest struct {
	Enabled         *bool              `json:"enabled"`
	Title           *string            `json:"title" binding:"omitempty,max=100"`
	Description     *string            `json:"description" binding:"omitempty,max=500"`
	TestMode        *bool              `json:"test_mode"`
	Live            CredentialsRequest `json:"live"`
	Test            CredentialsRequest `json:"test"`
	PaidOrderStatus *string            `json:"paid_order_status" binding:"omitempty,max=32"`
	UseLogger       *bool              `json:"use_logger"`
}

// CredentialsResponse never carries the secret key itself.
type CredentialsResponse struct {
	CID          string `json:"cid"`
	TID          string `json:"tid"`
	SecretKeySet bool   `json:"secret_key_set"`
}

// SettingsResponse is the admin view of the gateway settings.
type SettingsResponse struct {
	Enabled         bool                `json:"enabled"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	TestMode        bool                `json:"test_mode"`
	Live            CredentialsResponse `json:"live"`
	Test            CredentialsResponse `json:"test"`
	PaidOrderStatus string              `json:"paid_order_status"`
	UseLogger       bool                `json:"use_logger"`
	RequiredKeysSet bool                `json:"required_keys_set"`
	UpdatedAt       string              `json:"updated_at"`
}

// CallbackURLResponse is the IPN URL to register with the provider.
type CallbackURLResponse struct {
	CallbackURL string `json:"callback_url"`
}

// NewSettingsResponse masks secrets out of s.
func NewSettingsResponse(s *domain.Settings) SettingsResponse {
	return SettingsResponse{
		Enabled:         s.Enabled,
		Title:           s.Title,
		Description:     s.Description,
		TestMode:        s.TestMode,
		Live:            newCredentialsResponse(s.Live),
		Test:            newCredentialsResponse(s.Test),
		PaidOrderStatus: string(s.PostPaymentStatus()),
		UseLogger:       s.UseLogger,
		RequiredKeysSet: s.RequiredKeysSet(),
		UpdatedAt:       s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func newCredentialsResponse(c domain.Credentials) CredentialsResponse {
	return CredentialsResponse{CID: c.CID, TID: c.TID, SecretKeySet: c.SecretKey != ""}
}
