package handler

import (
	"fmt"

	"kekspay-gateway/internal/adapter/http/dto"
	"kekspay-gateway/internal/core/domain"
	"kekspay-gateway/internal/core/ports"
	"kekspay-gateway/pkg/apperror"
	"kekspay-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles the shop owner's gateway administration.
type AdminHandler struct {
	settingsSvc ports.SettingsService
	refundSvc   ports.RefundService
	orders      ports.OrderRepository
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(settingsSvc ports.SettingsService, refundSvc ports.RefundService, orders ports.OrderRepository) *AdminHandler {
	return &AdminHandler{settingsSvc: settingsSvc, refundSvc: refundSvc, orders: orders}
}

// GetSettings handles GET /api/v1/admin/settings.
func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsSvc.Load(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewSettingsResponse(settings))
}

// UpdateSettings handles PUT /api/v1/admin/settings.
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req dto.SettingsUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	upd := ports.SettingsUpdate{
		Enabled:     req.Enabled,
		Title:       req.Title,
		Description: req.Description,
		TestMode:    req.TestMode,
		Live:        toCredentialsUpdate(req.Live),
		Test:        toCredentialsUpdate(req.Test),
		UseLogger:   req.UseLogger,
	}
	if req.PaidOrderStatus != nil {
		status := domain.OrderStatus(*req.PaidOrderStatus)
		upd.PaidOrderStatus = &status
	}

	settings, err := h.settingsSvc.Update(c.Request.Context(), upd)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewSettingsResponse(settings))
}

// CallbackURL handles GET /api/v1/admin/settings/callback-url.
func (h *AdminHandler) CallbackURL(c *gin.Context) {
	u, err := h.settingsSvc.CallbackURL(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.CallbackURLResponse{CallbackURL: u})
}

// GetOrder handles GET /api/v1/admin/orders/:id.
func (h *AdminHandler) GetOrder(c *gin.Context) {
	orderID, err := orderIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	order, err := h.orders.GetByID(c.Request.Context(), orderID)
	if err != nil {
		response.Error(c, apperror.ErrDatabaseError(fmt.Errorf("get order %d: %w", orderID, err)))
		return
	}
	if order == nil {
		response.Error(c, apperror.ErrNotFound("Order"))
		return
	}
	response.OK(c, order)
}

// Refund handles POST /api/v1/admin/orders/:id/refund.
func (h *AdminHandler) Refund(c *gin.Context) {
	orderID, err := orderIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.refundSvc.Refund(c.Request.Context(), orderID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

func toCredentialsUpdate(req dto.CredentialsRequest) ports.CredentialsUpdate {
	return ports.CredentialsUpdate{
		CID:       req.CID,
		TID:       req.TID,
		SecretKey: req.SecretKey,
	}
}
