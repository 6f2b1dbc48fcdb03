package service

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"kekspay-gateway/internal/core/domain"
	"kekspay-gateway/internal/core/ports"
	"kekspay-gateway/pkg/apperror"

	"github.com/rs/zerolog"
)

// Deep link path segments under the pay base URL.
const (
	sellPathLive = "pay"
	sellPathTest = "galebpay"
)

// SellServiceImpl implements ports.SellService.
type SellServiceImpl struct {
	payBaseURL string
	qr         ports.QRRenderer
	log        zerolog.Logger
}

// NewSellService creates a new SellServiceImpl. payBaseURL is the provider's
// web root the deep link path is appended to, e.g. "https://kekspay.hr/".
func NewSellService(payBaseURL string, qr ports.QRRenderer, log zerolog.Logger) *SellServiceImpl {
	if !strings.HasSuffix(payBaseURL, "/") {
		payBaseURL += "/"
	}
	return &SellServiceImpl{payBaseURL: payBaseURL, qr: qr, log: log}
}

// BuildSellPayload assembles the sell request for order from the active
// credentials. Callback URLs are included only when requested.
func (s *SellServiceImpl) BuildSellPayload(settings *domain.Settings, order *domain.Order, includeCallbacks bool) (*domain.SellPayload, error) {
	if !settings.RequiredKeysSet() {
		return nil, apperror.ErrConfigIncomplete()
	}
	creds := settings.Credentials()

	p := &domain.SellPayload{
		QRType:   domain.QRTypeSell,
		CID:      creds.CID,
		TID:      creds.TID,
		BillID:   domain.EncodeBillID(creds.TID, order.ID),
		Amount:   order.Total.StringFixed(2),
		Currency: order.Currency,
	}
	if includeCallbacks {
		p.SuccessURL = order.ReturnURL
		p.FailURL = order.CancelURL
	}
	return p, nil
}

// SellURL returns the deep link opening the provider app with the sell
// request, callbacks included.
func (s *SellServiceImpl) SellURL(settings *domain.Settings, order *domain.Order) (string, error) {
	p, err := s.BuildSellPayload(settings, order, true)
	if err != nil {
		return "", err
	}

	path := sellPathLive
	if settings.TestMode {
		path = sellPathTest
	}
	u, err := url.Parse(s.payBaseURL + path)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("parse pay base url: %w", err))
	}
	u.RawQuery = p.Query().Encode()
	return u.String(), nil
}

// SellQR renders the sell request, without callbacks, as a QR code PNG
// data URI. A rendering failure is logged and returned as QrRenderFailed;
// callers fall back to showing the deep link only.
func (s *SellServiceImpl) SellQR(settings *domain.Settings, order *domain.Order) (string, error) {
	p, err := s.BuildSellPayload(settings, order, false)
	if err != nil {
		return "", err
	}

	content, err := json.Marshal(p)
	if err != nil {
		s.log.Error().Err(err).Int64("order_id", order.ID).Msg("failed to encode sell payload for QR")
		return "", apperror.ErrQrRenderFailed(err)
	}

	uri, err := s.qr.DataURI(string(content))
	if err != nil {
		s.log.Error().Err(err).Int64("order_id", order.ID).Msg("failed to render QR code")
		return "", apperror.ErrQrRenderFailed(err)
	}
	return uri, nil
}
