package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kekspay-gateway/internal/core/domain"
	"kekspay-gateway/internal/core/ports/mocks"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAuditLog_RefundSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAudit := mocks.NewMockAuditService(ctrl)

	var got *domain.AuditLog
	mockAudit.EXPECT().Log(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, entry *domain.AuditLog) {
			got = entry
		},
	)

	r := gin.New()
	r.Use(AuditLog(mockAudit))
	r.POST(RouteAdminRefund, func(c *gin.Context) {
		c.Set(CtxAdmin, "admin")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/orders/42/refund", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, domain.AuditActionRefund, got.Action)
	assert.Equal(t, "order", got.ResourceType)
	assert.Equal(t, "42", got.ResourceID)
	require.NotNil(t, got.OrderID)
	assert.Equal(t, int64(42), *got.OrderID)
	assert.Contains(t, got.Details, `"admin":"admin"`)
	assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Second)
}

func TestAuditLog_SkipsGET(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAudit := mocks.NewMockAuditService(ctrl)
	// No expectations - Log should NOT be called for GET

	r := gin.New()
	r.Use(AuditLog(mockAudit))
	r.GET(RouteAdminSettings, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"enabled": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, RouteAdminSettings, nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuditLog_SkipsFailedRequests(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAudit := mocks.NewMockAuditService(ctrl)
	// No expectations - Log should NOT be called for 4xx

	r := gin.New()
	r.Use(AuditLog(mockAudit))
	r.POST(RouteAdminRefund, func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/orders/42/refund", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuditLog_SkipsUnmappedRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAudit := mocks.NewMockAuditService(ctrl)

	r := gin.New()
	r.Use(AuditLog(mockAudit))
	r.POST("/api/v1/kekspay/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "pending"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/kekspay/status", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMapRouteToAction(t *testing.T) {
	tests := []struct {
		route    string
		method   string
		action   domain.AuditAction
		resource string
	}{
		{RouteAdminLogin, http.MethodPost, domain.AuditActionLogin, "session"},
		{RouteAdminSettings, http.MethodPut, domain.AuditActionSettingsUpdate, "settings"},
		{RouteAdminRefund, http.MethodPost, domain.AuditActionRefund, "order"},
		{RouteAdminSettings, http.MethodPost, "", ""},
		{"/unknown", http.MethodPost, "", ""},
	}

	for _, tc := range tests {
		action, resource := mapRouteToAction(tc.route, tc.method)
		assert.Equal(t, tc.action, action, "route=%s method=%s", tc.route, tc.method)
		assert.Equal(t, tc.resource, resource, "route=%s method=%s", tc.route, tc.method)
	}
}
