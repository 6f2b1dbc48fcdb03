package domain

import "time"

// Credentials is one CID/TID/secret key triple issued by the provider.
type Credentials struct {
	CID       string `json:"cid"`
	TID       string `json:"tid"`
	SecretKey string `json:"secret_key,omitempty"`
}

// Complete reports whether all three values are present.
func (c Credentials) Complete() bool {
	return c.CID != "" && c.TID != "" && c.SecretKey != ""
}

// Settings is the gateway configuration persisted by the shop owner.
type Settings struct {
	Enabled         bool        `json:"enabled"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	TestMode        bool        `json:"test_mode"`
	Live            Credentials `json:"live"`
	Test            Credentials `json:"test"`
	AuthToken       string      `json:"auth_token,omitempty"`
	PaidOrderStatus OrderStatus `json:"paid_order_status"`
	UseLogger       bool        `json:"use_logger"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Credentials returns the triple for the active mode.
func (s *Settings) Credentials() Credentials {
	if s.TestMode {
		return s.Test
	}
	return s.Live
}

// RequiredKeysSet reports whether the active mode has CID, TID and secret key.
func (s *Settings) RequiredKeysSet() bool {
	return s.Credentials().Complete()
}

// PostPaymentStatus is the order status applied after a successful payment.
func (s *Settings) PostPaymentStatus() OrderStatus {
	if s.PaidOrderStatus == "" {
		return OrderStatusProcessing
	}
	return s.PaidOrderStatus
}
