package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"kekspay-gateway/internal/core/domain"
	"kekspay-gateway/internal/core/ports"
	"kekspay-gateway/pkg/apperror"
	"kekspay-gateway/pkg/logger"

	"github.com/rs/zerolog"
)

// SupportedCurrency is the only currency the provider settles in.
const SupportedCurrency = "EUR"

const testModeOrderNote = "Narudžba napravljena u testnom načinu rada!"

// IsAvailable reports whether the gateway may be offered for a cart in
// currency: it must be enabled with the active credentials set.
func IsAvailable(settings *domain.Settings, currency string) bool {
	return settings.Enabled && settings.RequiredKeysSet() && currency == SupportedCurrency
}

// CheckoutServiceImpl implements ports.CheckoutService.
type CheckoutServiceImpl struct {
	orders   ports.OrderRepository
	settings ports.SettingsService
	sell     ports.SellService
	nonces   ports.NonceStore
	nonceTTL time.Duration
	log      zerolog.Logger
}

// NewCheckoutService creates a new CheckoutServiceImpl.
func NewCheckoutService(
	orders ports.OrderRepository,
	settings ports.SettingsService,
	sell ports.SellService,
	nonces ports.NonceStore,
	nonceTTL time.Duration,
	log zerolog.Logger,
) *CheckoutServiceImpl {
	return &CheckoutServiceImpl{
		orders:   orders,
		settings: settings,
		sell:     sell,
		nonces:   nonces,
		nonceTTL: nonceTTL,
		log:      log,
	}
}

// Prepare readies the receipt page of an order awaiting payment: it marks
// the payment pending, flags test mode orders, builds the deep link and QR
// code and issues the nonce the page polls status with.
func (s *CheckoutServiceImpl) Prepare(ctx context.Context, orderID int64, orderKey string) (*ports.CheckoutView, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}
	log := logger.ForOrder(s.log, settings.UseLogger, orderID)

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("load order %d: %w", orderID, err))
	}
	if order == nil || subtle.ConstantTimeCompare([]byte(order.OrderKey), []byte(orderKey)) != 1 {
		return nil, apperror.ErrNotFound("Order")
	}
	if !order.PaidWithKekspay() {
		return nil, apperror.Validation("Order was not placed with KEKS Pay")
	}
	if !settings.RequiredKeysSet() {
		return nil, apperror.ErrConfigIncomplete()
	}
	if !IsAvailable(settings, order.Currency) {
		return nil, apperror.Validation("KEKS Pay is not available for this order")
	}

	order, _, err = updateOrder(ctx, s.orders, log, orderID, func(o *domain.Order) (bool, error) {
		changed := false
		if o.PaymentStatus() == "" {
			o.SetMeta(domain.MetaPaymentStatus, string(domain.PaymentStatusPending))
			changed = true
		}
		if settings.TestMode && o.GetMeta(domain.MetaTestMode) != "yes" {
			o.AddNote(testModeOrderNote)
			o.SetMeta(domain.MetaTestMode, "yes")
			changed = true
		}
		return changed, nil
	})
	if err != nil {
		return nil, err
	}

	sellURL, err := s.sell.SellURL(settings, order)
	if err != nil {
		return nil, err
	}
	qr, err := s.sell.SellQR(settings, order)
	if err != nil {
		log.Warn().Err(err).Msg("QR code unavailable, showing deep link only")
		qr = ""
	}

	nonce, err := s.nonces.Issue(ctx, orderID, s.nonceTTL)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("issue status nonce: %w", err))
	}

	return &ports.CheckoutView{
		OrderID:   orderID,
		SellURL:   sellURL,
		QR:        qr,
		Nonce:     nonce,
		TestMode:  settings.TestMode,
		CancelURL: order.CancelURL,
	}, nil
}
