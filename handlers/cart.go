package handlers

import (
	"net/http"

	"foodhub-api/middleware"
	"foodhub-api/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CartHandler struct {
	svc *services.CartService
	log *logrus.Logger
}

func NewCartHandler(svc *services.CartService, log *logrus.Logger) *CartHandler {
	return &CartHandler{svc: svc, log: log}
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var in services.AddToCartIn
	if !bindJSON(c, h.log, &in) {
		return
	}
	item, err := h.svc.AddItem(c.Request.Context(), middleware.GetUserID(c), in.MealID, in.Quantity)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, "Item added to cart", item)
}

func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.svc.GetCart(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Cart retrieved successfully", cart)
}

func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	itemID, ok := paramID(c, h.log, "itemId")
	if !ok {
		return
	}
	var in services.UpdateQuantityIn
	if !bindJSON(c, h.log, &in) {
		return
	}
	item, err := h.svc.UpdateQuantity(c.Request.Context(), middleware.GetUserID(c), itemID, in.Quantity)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Cart item updated", item)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	itemID, ok := paramID(c, h.log, "itemId")
	if !ok {
		return
	}
	if err := h.svc.RemoveItem(c.Request.Context(), middleware.GetUserID(c), itemID); err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Item removed from cart", nil)
}

func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.svc.Clear(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Cart cleared", nil)
}
