package handlers

import (
	"net/http"

	"foodhub-api/middleware"
	"foodhub-api/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// IdempotencyKeyHeader lets clients retry POST /orders safely
const IdempotencyKeyHeader = "Idempotency-Key"

type OrderHandler struct {
	svc *services.OrderService
	log *logrus.Logger
}

func NewOrderHandler(svc *services.OrderService, log *logrus.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, log: log}
}

// PlaceOrder checks out the caller's cart. A replayed Idempotency-Key answers 200 with the original order.
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var in services.CreateOrderIn
	if !bindJSON(c, h.log, &in) {
		return
	}
	in.IdempotencyKey = c.GetHeader(IdempotencyKeyHeader)

	order, replayed, err := h.svc.CreateFromCart(c.Request.Context(), middleware.GetUserID(c), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if replayed {
		c.Header("Idempotent-Replayed", "true")
		respond(c, http.StatusOK, "Order already placed", order)
		return
	}
	respond(c, http.StatusCreated, "Order placed successfully", order)
}

func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	orders, err := h.svc.CustomerOrders(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Orders retrieved successfully", orders)
}

func (h *OrderHandler) GetProviderOrders(c *gin.Context) {
	orders, err := h.svc.ProviderOrders(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Orders retrieved successfully", orders)
}

func (h *OrderHandler) GetProviderStats(c *gin.Context) {
	stats, err := h.svc.ProviderStats(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Order statistics retrieved successfully", stats)
}

// GetOrderDetail is open to the order's customer and its provider
func (h *OrderHandler) GetOrderDetail(c *gin.Context) {
	id, ok := paramID(c, h.log, "id")
	if !ok {
		return
	}
	order, err := h.svc.GetByID(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Order retrieved successfully", order)
}

func (h *OrderHandler) UpdatePaymentStatus(c *gin.Context) {
	id, ok := paramID(c, h.log, "id")
	if !ok {
		return
	}
	var in services.PaymentStatusIn
	if !bindJSON(c, h.log, &in) {
		return
	}
	order, err := h.svc.UpdatePaymentStatus(c.Request.Context(), id, in.PaymentStatus, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Payment status updated successfully", order)
}

// UpdateOrderStatus handles the provider's delivery state transitions
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := paramID(c, h.log, "id")
	if !ok {
		return
	}
	var in services.DeliveryStatusIn
	if !bindJSON(c, h.log, &in) {
		return
	}
	order, err := h.svc.UpdateDeliveryStatus(c.Request.Context(), id, in, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Order status updated to "+string(order.DeliveryStatus), order)
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	id, ok := paramID(c, h.log, "id")
	if !ok {
		return
	}
	if err := h.svc.Cancel(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Order cancelled successfully", nil)
}
