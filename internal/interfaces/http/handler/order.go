package handler

import (
	"github.com/gin-gonic/gin"
	apptrade "github.com/marketplace/backend/internal/application/trade"
)

// OrderHandler handles checkout, order history and operator status changes
type OrderHandler struct {
	BaseHandler
	basketService *apptrade.BasketService
	orderService  *apptrade.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(basketService *apptrade.BasketService, orderService *apptrade.OrderService) *OrderHandler {
	return &OrderHandler{basketService: basketService, orderService: orderService}
}

// List handles GET /order
func (h *OrderHandler) List(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	orders, err := h.orderService.ListMyOrders(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, orders)
}

// Get handles GET /order/{id}
func (h *OrderHandler) Get(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}
	id, ok := bindID(c)
	if !ok {
		return
	}

	order, err := h.orderService.GetMyOrder(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// Checkout handles POST /order
func (h *OrderHandler) Checkout(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	order, err := h.basketService.Checkout(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// ChangeStatus handles PATCH /order/{id}/status
func (h *OrderHandler) ChangeStatus(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}
	id, ok := bindID(c)
	if !ok {
		return
	}
	var req apptrade.ChangeStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.ChangeStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}
