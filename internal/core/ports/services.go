package ports

import (
	"context"
	"time"

	"kekspay-gateway/internal/core/domain"

	"github.com/shopspring/decimal"
)

// EncryptionService handles AES-256-GCM encryption/decryption.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// SignatureService handles HMAC-SHA256 signing and derives the callback
// auth token the provider presents on every IPN.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	CallbackToken(siteURL string) (string, error)
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(subject string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Subject string
}

// SettingsCache is the Redis layer in front of SettingsRepository.
type SettingsCache interface {
	// Get returns nil, nil on a cache miss.
	Get(ctx context.Context) (*domain.Settings, error)
	Set(ctx context.Context, settings *domain.Settings, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// NonceStore issues and checks status-poll nonces bound to an order.
type NonceStore interface {
	Issue(ctx context.Context, orderID int64, ttl time.Duration) (string, error)
	// Verify reports whether nonce was issued for orderID and is unexpired.
	Verify(ctx context.Context, orderID int64, nonce string) (bool, error)
}

// QRRenderer renders text into a PNG data URI.
type QRRenderer interface {
	DataURI(content string) (string, error)
}

// ProviderRefundRequest is the signed body of a keksrefund call.
type ProviderRefundRequest struct {
	BillID    string
	TID       string
	CID       string
	Amount    decimal.Decimal
	EpochTime int64
	Hash      string
	Algo      int
	Currency  string
}

// ProviderReply is the provider's parsed answer.
type ProviderReply struct {
	// Accepted is set only when status was the JSON integer 0.
	Accepted bool
	// Status is the status as sent, "" when absent or unreadable.
	Status  string
	Message string
}

// ProviderClient talks to the provider's merchant API.
type ProviderClient interface {
	// Refund returns RFD_001/002/003/005 AppErrors for transport, status,
	// body and encoding failures. A parsed reply is returned as-is.
	Refund(ctx context.Context, testMode bool, req ProviderRefundRequest) (*ProviderReply, error)
}

// --- Service Ports (Business Logic) ---

// SettingsService loads, updates and caches gateway settings.
type SettingsService interface {
	Load(ctx context.Context) (*domain.Settings, error)
	Update(ctx context.Context, upd SettingsUpdate) (*domain.Settings, error)
	// CallbackURL is the IPN endpoint including the auth token query.
	CallbackURL(ctx context.Context) (string, error)
}

// SettingsUpdate carries a partial settings write; nil fields are kept.
type SettingsUpdate struct {
	Enabled         *bool
	Title           *string
	Description     *string
	TestMode        *bool
	Live            CredentialsUpdate
	Test            CredentialsUpdate
	PaidOrderStatus *domain.OrderStatus
	UseLogger       *bool
}

// CredentialsUpdate is a partial write of one credential triple.
type CredentialsUpdate struct {
	CID       *string
	TID       *string
	SecretKey *string
}

// SellService builds the payment request the customer scans or opens.
type SellService interface {
	BuildSellPayload(settings *domain.Settings, order *domain.Order, includeCallbacks bool) (*domain.SellPayload, error)
	SellURL(settings *domain.Settings, order *domain.Order) (string, error)
	SellQR(settings *domain.Settings, order *domain.Order) (string, error)
}

// CheckoutService prepares the receipt page of an order awaiting payment.
type CheckoutService interface {
	Prepare(ctx context.Context, orderID int64, orderKey string) (*CheckoutView, error)
}

// CheckoutView is everything the receipt page needs.
type CheckoutView struct {
	OrderID   int64  `json:"order_id"`
	SellURL   string `json:"sell_url"`
	QR        string `json:"qr,omitempty"`
	Nonce     string `json:"nonce"`
	TestMode  bool   `json:"test_mode"`
	CancelURL string `json:"cancel_url"`
}

// RefundService orchestrates provider refunds.
type RefundService interface {
	Refund(ctx context.Context, orderID int64, amount decimal.Decimal) (*RefundResult, error)
}

// RefundResult describes a completed refund call.
type RefundResult struct {
	OrderID       int64                `json:"order_id"`
	Skipped       bool                 `json:"skipped"`
	Amount        decimal.Decimal      `json:"amount"`
	Currency      string               `json:"currency"`
	PaymentStatus domain.PaymentStatus `json:"payment_status,omitempty"`
}

// IPNService verifies and applies provider payment callbacks.
type IPNService interface {
	Handle(ctx context.Context, req CallbackRequest) (*CallbackResult, error)
}

// CallbackRequest is an inbound callback after transport decoding.
type CallbackRequest struct {
	Token    string
	Params   map[string]string
	ClientIP string
}

// CallbackResult reports what a verified callback did to the order.
type CallbackResult struct {
	OrderID       int64
	PaymentStatus domain.PaymentStatus
	Applied       bool
}

// StatusService answers the customer's status poll.
type StatusService interface {
	Check(ctx context.Context, orderID int64, nonce string) (*StatusView, error)
}

// StatusView is the status poll response.
type StatusView struct {
	Status   domain.PaymentStatus `json:"status"`
	Redirect *string              `json:"redirect"`
	Message  string               `json:"message,omitempty"`
}

// AuthService authenticates the shop administrator.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}

// AuditService records audit entries.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
