package handler

import (
	"strconv"

	"kekspay-gateway/internal/adapter/http/dto"
	"kekspay-gateway/internal/core/ports"
	"kekspay-gateway/pkg/apperror"
	"kekspay-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// KekspayHandler serves the customer-facing receipt page data and status poll.
type KekspayHandler struct {
	checkoutSvc ports.CheckoutService
	statusSvc   ports.StatusService
}

// NewKekspayHandler creates a new KekspayHandler.
func NewKekspayHandler(checkoutSvc ports.CheckoutService, statusSvc ports.StatusService) *KekspayHandler {
	return &KekspayHandler{checkoutSvc: checkoutSvc, statusSvc: statusSvc}
}

// Checkout handles GET /api/v1/kekspay/checkout/:id?key=...
func (h *KekspayHandler) Checkout(c *gin.Context) {
	orderID, err := orderIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var q dto.CheckoutQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	view, err := h.checkoutSvc.Prepare(c.Request.Context(), orderID, q.Key)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}

// Status handles POST /api/v1/kekspay/status with a form or JSON body.
func (h *KekspayHandler) Status(c *gin.Context) {
	var req dto.StatusRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	view, err := h.statusSvc.Check(c.Request.Context(), req.OrderID, req.Nonce)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}

func orderIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.Validation("order id must be a positive integer")
	}
	return id, nil
}
