package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"kekspay-gateway/internal/adapter/http/dto"
	"kekspay-gateway/internal/core/domain"
	"kekspay-gateway/internal/core/ports"
	"kekspay-gateway/internal/core/ports/mocks"
	"kekspay-gateway/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "response has no data envelope: %s", w.Body.String())
	return data
}

// --- Auth Handler Tests ---

func TestLogin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	expiry := time.Now().Add(12 * time.Hour)
	mockAuth.EXPECT().Login(gomock.Any(), "admin", "s3cret!").Return("jwt-token", expiry, nil)

	body, _ := json.Marshal(dto.LoginRequest{Username: "admin", Password: "s3cret!"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "jwt-token", data["token"])
	assert.Equal(t, float64(expiry.Unix()), data["expiry"])
}

func TestLogin_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewAuthHandler(mocks.NewMockAuthService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", strings.NewReader("{}"))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Login(gomock.Any(), "admin", "wrong").Return("", time.Time{}, apperror.ErrInvalidCredentials())

	body, _ := json.Marshal(dto.LoginRequest{Username: "admin", Password: "wrong"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- IPN Handler Tests ---

func ipnRouter(svc ports.IPNService) *gin.Engine {
	r := gin.New()
	h := NewIPNHandler(svc, zerolog.Nop())
	r.GET(CallbackPath, h.Handle)
	r.POST(CallbackPath, h.Handle)
	return r
}

func TestIPN_JSONBodyWithQueryToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockIPN := mocks.NewMockIPNService(ctrl)
	mockIPN.EXPECT().Handle(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req ports.CallbackRequest) (*ports.CallbackResult, error) {
			assert.Equal(t, "secret-token", req.Token)
			assert.Equal(t, map[string]string{
				"bill_id": "T1-42",
				"status":  "0",
				"keks_id": "K-900",
				"tid":     "T1",
			}, req.Params)
			return &ports.CallbackResult{OrderID: 42, PaymentStatus: domain.PaymentStatusSuccess, Applied: true}, nil
		},
	)

	body := `{"bill_id":"T1-42","status":0,"keks_id":"K-900","tid":"T1"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, CallbackPath+"?token=secret-token", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ipnRouter(mockIPN).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":0,"message":"Accepted"}`, w.Body.String())
}

func TestIPN_FormBodyWithAuthorizationToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockIPN := mocks.NewMockIPNService(ctrl)
	mockIPN.EXPECT().Handle(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req ports.CallbackRequest) (*ports.CallbackResult, error) {
			assert.Equal(t, "header-token", req.Token)
			assert.Equal(t, "T1-42", req.Params["bill_id"])
			assert.Equal(t, "-1", req.Params["status"])
			assert.Equal(t, "Odbijeno &lt;b&gt;", req.Params["message"])
			return &ports.CallbackResult{OrderID: 42, PaymentStatus: domain.PaymentStatusFailed}, nil
		},
	)

	form := url.Values{
		"bill_id": {"T1-42"},
		"status":  {"-1"},
		"keks_id": {"K-900"},
		"tid":     {"T1"},
		"message": {" Odbijeno <b> "},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, CallbackPath, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Token header-token")
	ipnRouter(mockIPN).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIPN_QueryParamsExcludeToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockIPN := mocks.NewMockIPNService(ctrl)
	mockIPN.EXPECT().Handle(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req ports.CallbackRequest) (*ports.CallbackResult, error) {
			assert.Equal(t, "secret-token", req.Token)
			assert.Empty(t, req.Params)
			return nil, apperror.ErrMissingParameters()
		},
	)

	w := httptest.NewRecorder()
	ipnRouter(mockIPN).ServeHTTP(w, httptest.NewRequest(http.MethodGet, CallbackPath+"?token=secret-token", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"status":-1,"message":"Missing parameters."}`, w.Body.String())
}

func TestIPN_TokenInFormBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockIPN := mocks.NewMockIPNService(ctrl)
	mockIPN.EXPECT().Handle(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req ports.CallbackRequest) (*ports.CallbackResult, error) {
			assert.Equal(t, "body-token", req.Token)
			assert.NotContains(t, req.Params, "token")
			assert.Equal(t, "T1-42", req.Params["bill_id"])
			return &ports.CallbackResult{OrderID: 42, PaymentStatus: domain.PaymentStatusSuccess, Applied: true}, nil
		},
	)

	form := url.Values{
		"token":   {"body-token"},
		"bill_id": {"T1-42"},
		"status":  {"0"},
		"keks_id": {"K-900"},
		"tid":     {"T1"},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, CallbackPath, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	ipnRouter(mockIPN).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIPN_TokenInJSONBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockIPN := mocks.NewMockIPNService(ctrl)
	mockIPN.EXPECT().Handle(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req ports.CallbackRequest) (*ports.CallbackResult, error) {
			assert.Equal(t, "body-token", req.Token)
			assert.Equal(t, map[string]string{
				"bill_id": "T1-42",
				"status":  "0",
				"keks_id": "K-900",
				"tid":     "T1",
			}, req.Params)
			return &ports.CallbackResult{OrderID: 42, PaymentStatus: domain.PaymentStatusSuccess, Applied: true}, nil
		},
	)

	body := `{"token":"body-token","bill_id":"T1-42","status":0,"keks_id":"K-900","tid":"T1"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, CallbackPath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ipnRouter(mockIPN).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIPN_QueryTokenWinsOverBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockIPN := mocks.NewMockIPNService(ctrl)
	mockIPN.EXPECT().Handle(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req ports.CallbackRequest) (*ports.CallbackResult, error) {
			assert.Equal(t, "query-token", req.Token)
			return &ports.CallbackResult{OrderID: 42}, nil
		},
	)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, CallbackPath+"?token=query-token",
		strings.NewReader(`{"token":"body-token","bill_id":"T1-42"}`))
	req.Header.Set("Authorization", "Token header-token")
	ipnRouter(mockIPN).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIPN_AuthorizationHeaderWithoutScheme(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockIPN := mocks.NewMockIPNService(ctrl)
	mockIPN.EXPECT().Handle(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req ports.CallbackRequest) (*ports.CallbackResult, error) {
			assert.Equal(t, "raw-token", req.Token)
			return &ports.CallbackResult{OrderID: 42}, nil
		},
	)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, CallbackPath, strings.NewReader(`{"bill_id":"T1-42"}`))
	req.Header.Set("Authorization", "raw-token")
	ipnRouter(mockIPN).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIPN_RejectionCarriesServiceMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockIPN := mocks.NewMockIPNService(ctrl)
	mockIPN.EXPECT().Handle(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrTokenMismatch())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, CallbackPath+"?token=nope", strings.NewReader(`{"bill_id":"T1-42"}`))
	ipnRouter(mockIPN).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"status":-1,"message":"Webshop authentication failed, token mismatch."}`, w.Body.String())
}

func TestIPN_InternalErrorAnswers500(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockIPN := mocks.NewMockIPNService(ctrl)
	mockIPN.EXPECT().Handle(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrDatabaseError(errors.New("down")))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, CallbackPath+"?token=t", strings.NewReader(`{"bill_id":"T1-42"}`))
	ipnRouter(mockIPN).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDecodeJSONParams_Stringifies(t *testing.T) {
	params := map[string]string{}
	require.NoError(t, decodeJSONParams([]byte(`{"a":1.50,"b":true,"c":null,"d":{"x":1},"e":"s"}`), params))

	assert.Equal(t, "1.50", params["a"])
	assert.Equal(t, "true", params["b"])
	assert.Equal(t, "", params["c"])
	assert.Equal(t, `{"x":1}`, params["d"])
	assert.Equal(t, "s", params["e"])
}

func TestDecodeJSONParams_Invalid(t *testing.T) {
	assert.Error(t, decodeJSONParams([]byte(`{"a":`), map[string]string{}))
}

// --- Kekspay Handler Tests ---

func TestCheckout_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCheckout := mocks.NewMockCheckoutService(ctrl)
	h := NewKekspayHandler(mockCheckout, mocks.NewMockStatusService(ctrl))

	mockCheckout.EXPECT().Prepare(gomock.Any(), int64(42), "wc_order_abc").Return(&ports.CheckoutView{
		OrderID: 42,
		SellURL: "https://kekspay.hr/galebpay?bill_id=TT1-42",
		Nonce:   "n-1",
	}, nil)

	r := gin.New()
	r.GET("/api/v1/kekspay/checkout/:id", h.Checkout)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/kekspay/checkout/42?key=wc_order_abc", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "n-1", data["nonce"])
	assert.Equal(t, "https://kekspay.hr/galebpay?bill_id=TT1-42", data["sell_url"])
}

func TestCheckout_BadInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewKekspayHandler(mocks.NewMockCheckoutService(ctrl), mocks.NewMockStatusService(ctrl))
	r := gin.New()
	r.GET("/api/v1/kekspay/checkout/:id", h.Checkout)

	for _, target := range []string{
		"/api/v1/kekspay/checkout/abc?key=wc_order_abc",
		"/api/v1/kekspay/checkout/0?key=wc_order_abc",
		"/api/v1/kekspay/checkout/42",
		"/api/v1/kekspay/checkout/42?key=bad%20key",
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestStatus_Form(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStatus := mocks.NewMockStatusService(ctrl)
	h := NewKekspayHandler(mocks.NewMockCheckoutService(ctrl), mockStatus)

	redirect := "https://shop.example.hr/checkout/order-received/42"
	mockStatus.EXPECT().Check(gomock.Any(), int64(42), "n-1").Return(&ports.StatusView{
		Status:   domain.PaymentStatusSuccess,
		Redirect: &redirect,
	}, nil)

	form := url.Values{"order_id": {"42"}, "nonce": {"n-1"}}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/kekspay/status", strings.NewReader(form.Encode()))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	h.Status(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "success", data["status"])
	assert.Equal(t, redirect, data["redirect"])
}

func TestStatus_JSONPendingHasNullRedirect(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStatus := mocks.NewMockStatusService(ctrl)
	h := NewKekspayHandler(mocks.NewMockCheckoutService(ctrl), mockStatus)

	mockStatus.EXPECT().Check(gomock.Any(), int64(42), "n-1").Return(&ports.StatusView{Status: domain.PaymentStatusPending}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/kekspay/status", strings.NewReader(`{"order_id":42,"nonce":"n-1"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Status(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Contains(t, data, "redirect")
	assert.Nil(t, data["redirect"])
}

func TestStatus_InvalidNonce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStatus := mocks.NewMockStatusService(ctrl)
	h := NewKekspayHandler(mocks.NewMockCheckoutService(ctrl), mockStatus)

	mockStatus.EXPECT().Check(gomock.Any(), int64(42), "stale").Return(nil, apperror.ErrInvalidNonce())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/kekspay/status", strings.NewReader(`{"order_id":42,"nonce":"stale"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Status(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

// --- Admin Handler Tests ---

type adminMocks struct {
	settings *mocks.MockSettingsService
	refund   *mocks.MockRefundService
	orders   *mocks.MockOrderRepository
	router   *gin.Engine
}

func newAdminMocks(t *testing.T) *adminMocks {
	ctrl := gomock.NewController(t)
	m := &adminMocks{
		settings: mocks.NewMockSettingsService(ctrl),
		refund:   mocks.NewMockRefundService(ctrl),
		orders:   mocks.NewMockOrderRepository(ctrl),
	}
	h := NewAdminHandler(m.settings, m.refund, m.orders)
	m.router = gin.New()
	m.router.GET("/settings", h.GetSettings)
	m.router.PUT("/settings", h.UpdateSettings)
	m.router.GET("/settings/callback-url", h.CallbackURL)
	m.router.GET("/orders/:id", h.GetOrder)
	m.router.POST("/orders/:id/refund", h.Refund)
	return m
}

func (m *adminMocks) do(method, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	m.router.ServeHTTP(w, req)
	return w
}

func TestGetSettings_MasksSecrets(t *testing.T) {
	m := newAdminMocks(t)
	m.settings.EXPECT().Load(gomock.Any()).Return(&domain.Settings{
		Enabled:   true,
		Live:      domain.Credentials{CID: "C1", TID: "T1", SecretKey: "abcdefghijklmnop"},
		AuthToken: "secret-token",
	}, nil)

	w := m.do(http.MethodGet, "/settings", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "abcdefghijklmnop")
	assert.NotContains(t, w.Body.String(), "secret-token")
	data := decodeData(t, w)
	live := data["live"].(map[string]interface{})
	assert.Equal(t, true, live["secret_key_set"])
	assert.Equal(t, true, data["required_keys_set"])
}

func TestUpdateSettings_MapsPartialWrite(t *testing.T) {
	m := newAdminMocks(t)
	m.settings.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, upd ports.SettingsUpdate) (*domain.Settings, error) {
			require.NotNil(t, upd.TestMode)
			assert.False(t, *upd.TestMode)
			require.NotNil(t, upd.Live.SecretKey)
			assert.Equal(t, "k&y<16bytes>abcd", *upd.Live.SecretKey)
			require.NotNil(t, upd.PaidOrderStatus)
			assert.Equal(t, domain.OrderStatusCompleted, *upd.PaidOrderStatus)
			assert.Nil(t, upd.Enabled)
			assert.Nil(t, upd.Test.CID)
			return &domain.Settings{PaidOrderStatus: domain.OrderStatusCompleted}, nil
		},
	)

	w := m.do(http.MethodPut, "/settings", `{"test_mode":false,"live":{"secret_key":"k&y<16bytes>abcd"},"paid_order_status":"completed"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "completed", decodeData(t, w)["paid_order_status"])
}

func TestUpdateSettings_RejectsUnsafeTID(t *testing.T) {
	m := newAdminMocks(t)

	w := m.do(http.MethodPut, "/settings", `{"live":{"tid":"T1; DROP"}}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCallbackURL(t *testing.T) {
	m := newAdminMocks(t)
	m.settings.EXPECT().CallbackURL(gomock.Any()).Return("https://shop.example.hr/wc-api/wc-kekspay?token=abc", nil)

	w := m.do(http.MethodGet, "/settings/callback-url", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://shop.example.hr/wc-api/wc-kekspay?token=abc", decodeData(t, w)["callback_url"])
}

func TestGetOrder(t *testing.T) {
	m := newAdminMocks(t)
	m.orders.EXPECT().GetByID(gomock.Any(), int64(42)).Return(&domain.Order{
		ID:       42,
		OrderKey: "wc_order_abc",
		Total:    decimal.RequireFromString("50.00"),
		Currency: "EUR",
		Status:   domain.OrderStatusProcessing,
	}, nil)
	m.orders.EXPECT().GetByID(gomock.Any(), int64(43)).Return(nil, nil)
	m.orders.EXPECT().GetByID(gomock.Any(), int64(44)).Return(nil, errors.New("connection reset"))

	w := m.do(http.MethodGet, "/orders/42", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "wc_order_abc")
	assert.Equal(t, "processing", decodeData(t, w)["status"])

	assert.Equal(t, http.StatusNotFound, m.do(http.MethodGet, "/orders/43", "").Code)
	assert.Equal(t, http.StatusInternalServerError, m.do(http.MethodGet, "/orders/44", "").Code)
}

func TestRefund_Success(t *testing.T) {
	m := newAdminMocks(t)
	m.refund.EXPECT().Refund(gomock.Any(), int64(42), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ int64, amount decimal.Decimal) (*ports.RefundResult, error) {
			assert.True(t, amount.Equal(decimal.RequireFromString("20.5")))
			return &ports.RefundResult{
				OrderID:       42,
				Amount:        amount,
				Currency:      "EUR",
				PaymentStatus: domain.PaymentStatusRefundedPartially,
			}, nil
		},
	)

	w := m.do(http.MethodPost, "/orders/42/refund", `{"amount":"20.50"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "refunded_partially", data["payment_status"])
	assert.Equal(t, "EUR", data["currency"])
}

func TestRefund_ErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"declined", apperror.ErrProviderDeclined("Refund declined"), http.StatusUnprocessableEntity},
		{"network", apperror.ErrNetworkError(errors.New("timeout")), http.StatusBadGateway},
		{"config", apperror.ErrConfigIncomplete(), http.StatusUnprocessableEntity},
		{"too much", apperror.ErrRefundAmountExceedsOriginal(), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newAdminMocks(t)
			m.refund.EXPECT().Refund(gomock.Any(), int64(42), gomock.Any()).Return(nil, tt.err)

			w := m.do(http.MethodPost, "/orders/42/refund", `{"amount":50}`)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestRefund_BadBody(t *testing.T) {
	m := newAdminMocks(t)

	assert.Equal(t, http.StatusBadRequest, m.do(http.MethodPost, "/orders/42/refund", `{"amount":"lots"}`).Code)
	assert.Equal(t, http.StatusBadRequest, m.do(http.MethodPost, "/orders/x/refund", `{"amount":1}`).Code)
}

// --- Health / Swagger ---

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Ping(context.Context) error { return s.err }
func (s stubChecker) Name() string               { return s.name }

func TestHealthCheck(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(stubChecker{name: "postgresql"}, stubChecker{name: "redis"})(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"healthy"`)
}

func TestHealthCheck_Degraded(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(stubChecker{name: "postgresql"}, stubChecker{name: "redis", err: errors.New("refused")})(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"degraded"`)
	assert.Contains(t, w.Body.String(), "refused")
}

func TestSwaggerUI(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/swagger", nil)

	SwaggerUI(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "KEKS Pay Gateway")
}

func TestSwaggerSpec_Loaded(t *testing.T) {
	SetSwaggerSpec([]byte("openapi: 3.0.3"))
	defer SetSwaggerSpec(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/swagger/spec", nil)

	SwaggerSpec(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "openapi: 3.0.3", w.Body.String())
}

func TestSwaggerSpec_NotLoaded(t *testing.T) {
	SetSwaggerSpec(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/swagger/spec", nil)

	SwaggerSpec(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
