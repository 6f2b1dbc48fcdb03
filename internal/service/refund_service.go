package service

import (
	"context"
	"fmt"
	"time"

	"kekspay-gateway/internal/core/domain"
	"kekspay-gateway/internal/core/ports"
	"kekspay-gateway/pkg/apperror"
	"kekspay-gateway/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Legacy currency shim for orders placed before the kuna to euro changeover.
const (
	legacyCurrency   = "HRK"
	legacyTargetCode = "EUR"
)

// legacyConversionRate is the fixed HRK per EUR conversion rate.
var legacyConversionRate = decimal.RequireFromString("7.5345")

const (
	refundSuccessNote = "Uspješno izvršen povrat %s via KEKS Pay."
	refundFailureNote = "Dogodila se greška pri povratu %s via KEKS Pay."
)

// ConvertLegacyCurrency converts an HRK amount to EUR at the fixed rate,
// rounded to cents. Any other currency passes through unchanged.
func ConvertLegacyCurrency(amount decimal.Decimal, currency string) (decimal.Decimal, string) {
	if currency != legacyCurrency {
		return amount, currency
	}
	return amount.DivRound(legacyConversionRate, 2), legacyTargetCode
}

// RefundServiceImpl implements ports.RefundService.
type RefundServiceImpl struct {
	orders   ports.OrderRepository
	settings ports.SettingsService
	provider ports.ProviderClient
	log      zerolog.Logger
	now      func() time.Time
}

// NewRefundService creates a new RefundServiceImpl.
func NewRefundService(
	orders ports.OrderRepository,
	settings ports.SettingsService,
	provider ports.ProviderClient,
	log zerolog.Logger,
) *RefundServiceImpl {
	return &RefundServiceImpl{
		orders:   orders,
		settings: settings,
		provider: provider,
		log:      log,
		now:      time.Now,
	}
}

// Refund sends a signed refund for amount of the order to the provider and
// records the outcome on the order. Orders paid with another gateway are
// skipped. Transport failures, HTTP errors and an empty answer leave the
// order untouched; any answer without status 0 adds a note and returns
// ProviderDeclined.
func (s *RefundServiceImpl) Refund(ctx context.Context, orderID int64, amount decimal.Decimal) (*ports.RefundResult, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}
	log := logger.ForOrder(s.log, settings.UseLogger, orderID)

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("load order %d: %w", orderID, err))
	}
	if order == nil {
		return nil, apperror.ErrNotFound("Order")
	}
	if !order.PaidWithKekspay() {
		log.Debug().Str("payment_method", order.PaymentMethod).Msg("refund skipped, order not paid with KEKS Pay")
		return &ports.RefundResult{OrderID: orderID, Skipped: true}, nil
	}
	if !settings.RequiredKeysSet() {
		return nil, apperror.ErrConfigIncomplete()
	}

	if !amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}
	if amount.GreaterThan(order.RemainingRefundAmount()) {
		return nil, apperror.ErrRefundAmountExceedsOriginal()
	}

	creds := settings.Credentials()
	sendAmount, sendCurrency := ConvertLegacyCurrency(amount, order.Currency)
	if sendCurrency != order.Currency {
		log.Info().
			Str("amount", amount.String()).
			Str("converted", sendAmount.String()).
			Msg("converting legacy currency refund to EUR")
	}

	req := ports.ProviderRefundRequest{
		BillID:    domain.EncodeBillID(creds.TID, order.ID),
		TID:       creds.TID,
		CID:       creds.CID,
		Amount:    sendAmount,
		EpochTime: s.now().Unix(),
		Currency:  sendCurrency,
	}

	cipher, err := SelectCipher(creds.SecretKey)
	if err != nil {
		log.Error().Err(err).Msg("refund aborted, unusable secret key")
		return nil, apperror.ErrHashGenerationFailed(err)
	}
	req.Algo = cipher.AlgoCode
	req.Hash, err = ComputeHash(HashInput{
		BillID:    req.BillID,
		TID:       req.TID,
		Amount:    sendAmount.String(),
		Timestamp: req.EpochTime,
	}, creds.SecretKey)
	if err != nil {
		log.Error().Err(err).Msg("refund aborted, hash generation failed")
		return nil, err
	}

	log.Info().Str("bill_id", req.BillID).Str("amount", sendAmount.String()).Str("currency", sendCurrency).Msg("sending refund request")

	reply, err := s.provider.Refund(ctx, settings.TestMode, req)
	if err != nil {
		log.Error().Err(err).Msg("refund request failed")
		return nil, err
	}

	display := amount.StringFixed(2) + " " + order.Currency

	if !reply.Accepted {
		log.Warn().Str("status", reply.Status).Str("message", reply.Message).Msg("refund declined by provider")
		note := fmt.Sprintf(refundFailureNote, display)
		if reply.Message != "" {
			note += " " + reply.Message
		}
		if _, _, err := updateOrder(ctx, s.orders, log, orderID, func(o *domain.Order) (bool, error) {
			o.AddNote(note)
			return true, nil
		}); err != nil {
			log.Error().Err(err).Msg("failed to record declined refund")
		}
		return nil, apperror.ErrProviderDeclined(reply.Message)
	}

	var paymentStatus domain.PaymentStatus
	_, _, err = updateOrder(ctx, s.orders, log, orderID, func(o *domain.Order) (bool, error) {
		o.Refunded = o.Refunded.Add(amount)
		paymentStatus = domain.PaymentStatusRefunded
		if o.RemainingRefundAmount().IsPositive() {
			paymentStatus = domain.PaymentStatusRefundedPartially
		} else {
			o.Status = domain.OrderStatusRefunded
		}
		o.SetMeta(domain.MetaPaymentStatus, string(paymentStatus))
		o.AddNote(fmt.Sprintf(refundSuccessNote, display))
		return true, nil
	})
	if err != nil {
		// The provider already refunded; only the local record failed.
		log.Error().Err(err).Msg("refund accepted by provider but order update failed")
		return nil, err
	}

	log.Info().Str("payment_status", string(paymentStatus)).Msg("refund completed")

	return &ports.RefundResult{
		OrderID:       orderID,
		Amount:        sendAmount,
		Currency:      sendCurrency,
		PaymentStatus: paymentStatus,
	}, nil
}
