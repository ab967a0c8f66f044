package handler

import (
	"github.com/gin-gonic/gin"
	apptrade "github.com/marketplace/backend/internal/application/trade"
)

// BasketHandler manages the caller's basket
type BasketHandler struct {
	BaseHandler
	basketService *apptrade.BasketService
}

// NewBasketHandler creates a new basket handler
func NewBasketHandler(basketService *apptrade.BasketService) *BasketHandler {
	return &BasketHandler{basketService: basketService}
}

// View handles GET /basket
func (h *BasketHandler) View(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	basket, err := h.basketService.ViewBasket(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, basket)
}

// Add handles POST /basket
func (h *BasketHandler) Add(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}
	var req apptrade.BasketItemsRequest
	if !bindJSON(c, &req) {
		return
	}

	basket, err := h.basketService.AddToBasket(c.Request.Context(), actor, req.ToItemQuantities())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, basket)
}

// Replace handles PUT /basket
func (h *BasketHandler) Replace(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}
	var req apptrade.BasketItemsRequest
	if !bindJSON(c, &req) {
		return
	}

	basket, err := h.basketService.ReplaceBasketItems(c.Request.Context(), actor, req.ToItemQuantities())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, basket)
}

// Remove handles DELETE /basket
func (h *BasketHandler) Remove(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}
	var req apptrade.RemoveBasketItemsRequest
	if !bindJSON(c, &req) {
		return
	}

	basket, err := h.basketService.RemoveBasketItems(c.Request.Context(), actor, req.Items)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, basket)
}

// Clear handles DELETE /basket/clear
func (h *BasketHandler) Clear(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	if err := h.basketService.ClearBasket(c.Request.Context(), actor); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
