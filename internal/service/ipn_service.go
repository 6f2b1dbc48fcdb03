package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"strconv"
	"time"

	"kekspay-gateway/internal/core/domain"
	"kekspay-gateway/internal/core/ports"
	"kekspay-gateway/pkg/apperror"
	"kekspay-gateway/pkg/logger"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Callback parameters sent by the provider.
const (
	ParamBillID  = "bill_id"
	ParamStatus  = "status"
	ParamKeksID  = "keks_id"
	ParamTID     = "tid"
	ParamMessage = "message"
)

const (
	paymentSuccessNote = "Narudžba uspješno plaćena putem KEKS Pay aplikacije."
	paymentFailureNote = "Dogodila se greška pri naplati putem KEKS Pay aplikacije."
)

var requiredCallbackParams = []string{ParamBillID, ParamStatus, ParamKeksID, ParamTID}

// IPNServiceImpl implements ports.IPNService.
type IPNServiceImpl struct {
	orders   ports.OrderRepository
	settings ports.SettingsService
	audit    ports.AuditService
	log      zerolog.Logger
}

// NewIPNService creates a new IPNServiceImpl.
func NewIPNService(
	orders ports.OrderRepository,
	settings ports.SettingsService,
	audit ports.AuditService,
	log zerolog.Logger,
) *IPNServiceImpl {
	return &IPNServiceImpl{
		orders:   orders,
		settings: settings,
		audit:    audit,
		log:      log,
	}
}

// Handle authenticates a provider callback and applies the reported
// payment outcome to the order. Checks run in a fixed order and the order
// store is not touched until token, parameters and TID are verified.
func (s *IPNServiceImpl) Handle(ctx context.Context, req ports.CallbackRequest) (*ports.CallbackResult, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}
	log := logger.Gate(s.log, settings.UseLogger).With().Str("ip", req.ClientIP).Logger()

	result, err := s.handle(ctx, log, settings, req)
	s.record(ctx, req, result, err)
	if err != nil {
		log.Warn().Err(err).Str("bill_id", req.Params[ParamBillID]).Msg("callback rejected")
		return nil, err
	}
	return result, nil
}

func (s *IPNServiceImpl) handle(ctx context.Context, log zerolog.Logger, settings *domain.Settings, req ports.CallbackRequest) (*ports.CallbackResult, error) {
	if req.Token == "" {
		return nil, apperror.ErrTokenMissing()
	}
	if settings.AuthToken == "" || subtle.ConstantTimeCompare([]byte(req.Token), []byte(settings.AuthToken)) != 1 {
		return nil, apperror.ErrTokenMismatch()
	}

	if len(req.Params) == 0 {
		return nil, apperror.ErrMissingParameters()
	}
	for _, key := range requiredCallbackParams {
		if req.Params[key] == "" {
			return nil, apperror.ErrMissingRequiredFields()
		}
	}

	billID := req.Params[ParamBillID]
	tid := settings.Credentials().TID
	if req.Params[ParamTID] != tid {
		log.Warn().Str("received_tid", req.Params[ParamTID]).Str("expected_tid", tid).Msg("callback TID mismatch")
		return nil, apperror.ErrServiceIDMismatch(req.Params[ParamTID])
	}

	orderID, err := domain.DecodeBillID(tid, billID)
	if err != nil {
		return nil, apperror.ErrOrderNotFound(billID)
	}

	cb := callback{
		success: isSuccessStatus(req.Params[ParamStatus]),
		keksID:  req.Params[ParamKeksID],
		message: req.Params[ParamMessage],
		paid:    settings.PostPaymentStatus(),
	}
	order, applied, err := updateOrder(ctx, s.orders, log, orderID, func(o *domain.Order) (bool, error) {
		return cb.apply(o, log), nil
	})
	if apperror.HasCode(err, "PAY_004") {
		return nil, apperror.ErrOrderNotFound(billID)
	}
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("order_id", order.ID).
		Str("payment_status", string(order.PaymentStatus())).
		Bool("applied", applied).
		Msg("callback processed")

	return &ports.CallbackResult{
		OrderID:       order.ID,
		PaymentStatus: order.PaymentStatus(),
		Applied:       applied,
	}, nil
}

// isSuccessStatus reports whether the provider status code is 0.
func isSuccessStatus(raw string) bool {
	code, err := strconv.Atoi(raw)
	return err == nil && code == 0
}

// callback is one verified payment outcome.
type callback struct {
	success bool
	keksID  string
	message string
	paid    domain.OrderStatus
}

// apply records the outcome on o and reports whether o changed. Replays of
// an already recorded outcome leave the order as it is.
func (cb callback) apply(o *domain.Order, log zerolog.Logger) bool {
	current := o.PaymentStatus()

	switch current {
	case domain.PaymentStatusRefunded, domain.PaymentStatusRefundedPartially:
		log.Warn().Int64("order_id", o.ID).Str("payment_status", string(current)).Msg("callback for refunded order ignored")
		return false
	}

	if !cb.success {
		if current == domain.PaymentStatusSuccess {
			log.Warn().Int64("order_id", o.ID).Msg("failure callback after successful payment ignored")
			return false
		}
		if current == domain.PaymentStatusFailed {
			return false
		}
		note := paymentFailureNote
		if cb.message != "" {
			note += " " + cb.message
		}
		o.SetMeta(domain.MetaPaymentStatus, string(domain.PaymentStatusFailed))
		o.AddNote(note)
		return true
	}

	if current == domain.PaymentStatusSuccess && o.GetMeta(domain.MetaProviderID) == cb.keksID {
		return false
	}

	if o.IsTerminal() {
		log.Warn().Int64("order_id", o.ID).Str("order_status", string(o.Status)).Msg("order already final, status not changed")
	} else {
		o.SetStatus(cb.paid, paymentSuccessNote)
	}
	o.SetMeta(domain.MetaPaymentStatus, string(domain.PaymentStatusSuccess))
	o.SetMeta(domain.MetaProviderID, cb.keksID)
	return true
}

// record writes the callback outcome to the audit log.
func (s *IPNServiceImpl) record(ctx context.Context, req ports.CallbackRequest, result *ports.CallbackResult, handleErr error) {
	if s.audit == nil {
		return
	}

	details := map[string]string{
		ParamBillID: req.Params[ParamBillID],
		ParamStatus: req.Params[ParamStatus],
		ParamKeksID: req.Params[ParamKeksID],
		ParamTID:    req.Params[ParamTID],
	}
	entry := &domain.AuditLog{
		ID:           uuid.New(),
		Action:       domain.AuditActionCallback,
		ResourceType: "order",
		ResourceID:   req.Params[ParamBillID],
		IPAddress:    req.ClientIP,
		CreatedAt:    time.Now().UTC(),
	}
	if result != nil {
		orderID := result.OrderID
		entry.OrderID = &orderID
		details["outcome"] = string(result.PaymentStatus)
	}
	if handleErr != nil {
		details["rejected"] = handleErr.Error()
	}
	if b, err := json.Marshal(details); err == nil {
		entry.Details = string(b)
	}

	s.audit.Log(ctx, entry)
}
