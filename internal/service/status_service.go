package service

import (
	"context"
	"fmt"

	"kekspay-gateway/internal/core/domain"
	"kekspay-gateway/internal/core/ports"
	"kekspay-gateway/pkg/apperror"

	"github.com/rs/zerolog"
)

const paymentFailedMessage = "Nešto je pošlo po zlu pri pokušaju naplate vaše narudžbe (#%d) putem KEKS Pay servisa, molimo pokušajte ponoviti narudžbu ili kontaktirajte administratora web trgovine za više informacija."

// StatusServiceImpl implements ports.StatusService.
type StatusServiceImpl struct {
	orders ports.OrderRepository
	nonces ports.NonceStore
	log    zerolog.Logger
}

// NewStatusService creates a new StatusServiceImpl.
func NewStatusService(orders ports.OrderRepository, nonces ports.NonceStore, log zerolog.Logger) *StatusServiceImpl {
	return &StatusServiceImpl{orders: orders, nonces: nonces, log: log}
}

// Check returns the payment status of the order and, once it resolved,
// where the customer's browser should go next.
func (s *StatusServiceImpl) Check(ctx context.Context, orderID int64, nonce string) (*ports.StatusView, error) {
	ok, err := s.nonces.Verify(ctx, orderID, nonce)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("verify nonce: %w", err))
	}
	if !ok {
		s.log.Warn().Int64("order_id", orderID).Msg("status poll with invalid nonce")
		return nil, apperror.ErrInvalidNonce()
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("load order %d: %w", orderID, err))
	}
	if order == nil {
		return nil, apperror.ErrNotFound("Order")
	}

	view := &ports.StatusView{Status: order.PaymentStatus()}
	switch view.Status {
	case domain.PaymentStatusFailed:
		redirect := order.CancelURL
		view.Redirect = &redirect
		view.Message = fmt.Sprintf(paymentFailedMessage, order.ID)
	case domain.PaymentStatusSuccess:
		redirect := order.ReturnURL
		view.Redirect = &redirect
	}
	return view, nil
}
