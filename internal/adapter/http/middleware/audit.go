package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"kekspay-gateway/internal/core/domain"
	"kekspay-gateway/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Admin routes the audit log maps to actions.
const (
	RouteAdminLogin    = "/api/v1/admin/login"
	RouteAdminSettings = "/api/v1/admin/settings"
	RouteAdminRefund   = "/api/v1/admin/orders/:id/refund"
)

// AuditLog creates an audit middleware that logs successful admin writes.
// Routes are matched on their registered pattern, not the raw path.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}

		action, resourceType := mapRouteToAction(c.FullPath(), c.Request.Method)
		if action == "" {
			return
		}

		entry := &domain.AuditLog{
			ID:           uuid.New(),
			Action:       action,
			ResourceType: resourceType,
			ResourceID:   c.Param("id"),
			IPAddress:    c.ClientIP(),
			CreatedAt:    time.Now(),
		}
		if id, err := strconv.ParseInt(c.Param("id"), 10, 64); err == nil {
			entry.OrderID = &id
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
			"admin":  c.GetString(CtxAdmin),
		})
		entry.Details = string(details)

		auditSvc.Log(c.Request.Context(), entry)
	}
}

func mapRouteToAction(route, method string) (domain.AuditAction, string) {
	switch {
	case route == RouteAdminLogin && method == http.MethodPost:
		return domain.AuditActionLogin, "session"
	case route == RouteAdminSettings && method == http.MethodPut:
		return domain.AuditActionSettingsUpdate, "settings"
	case route == RouteAdminRefund && method == http.MethodPost:
		return domain.AuditActionRefund, "order"
	}
	return "", ""
}
