package handlers

import (
	"io"

	"food-ordering-api/apperr"
	"food-ordering-api/middleware"
	"food-ordering-api/service"
	"food-ordering-api/statemachine"

	"github.com/gin-gonic/gin"
)

// maxWebhookBody bounds the payment provider's callback payload
const maxWebhookBody = 64 << 10

// SignatureHeader carries the payment provider's webhook signature
const SignatureHeader = "Stripe-Signature"

type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// List returns the caller's own orders
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.orders.GetOrders(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		c.Error(err)
		return
	}
	apperr.OK(c, gin.H{"orders": orders})
}

func (h *OrderHandler) CreateCheckoutSession(c *gin.Context) {
	var in service.CheckoutInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.Error(err)
		return
	}
	sess, err := h.orders.CreateCheckoutSession(c.Request.Context(), middleware.SessionFrom(c), in)
	if err != nil {
		c.Error(err)
		return
	}
	apperr.OK(c, gin.H{"session": sess})
}

// Webhook needs the raw body; the signature covers the exact bytes sent
func (h *OrderHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.Error(apperr.Validation("Failed to read request body"))
		return
	}
	if err := h.orders.HandleWebhook(c.Request.Context(), payload, c.GetHeader(SignatureHeader)); err != nil {
		c.Error(err)
		return
	}
	apperr.OK(c, gin.H{"received": true})
}

// Statuses lists the order statuses with their conventional successor
func (h *OrderHandler) Statuses(c *gin.Context) {
	apperr.OK(c, gin.H{"statuses": statemachine.Describe()})
}
