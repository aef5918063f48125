package handler

import (
	"errors"

	"github.com/bitfantasy/choco/internal/shop/repository"
	"github.com/bitfantasy/choco/internal/shop/service"
	"github.com/gin-gonic/gin"
)

// CartHandler shopping cart endpoints (all authenticated)
type CartHandler struct {
	svc *service.CartService
}

// NewCartHandler creates the cart handler
func NewCartHandler(svc *service.CartService) *CartHandler {
	return &CartHandler{svc: svc}
}

// Get GET /cart
func (h *CartHandler) Get(c *gin.Context) {
	cart, err := h.svc.Get(c.Request.Context(), GetUserID(c))
	if err != nil {
		InternalError(c, "Failed to load cart")
		return
	}
	Success(c, cart)
}

// AddItem POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req service.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}

	cart, err := h.svc.AddItem(c.Request.Context(), GetUserID(c), req)
	if err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			BadRequest(c, vErr.Error())
			return
		}
		InternalError(c, "Failed to add item")
		return
	}
	Success(c, cart)
}

// UpdateItemRequest quantity payload
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateItem PUT /cart/items/:id
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}

	cart, err := h.svc.UpdateItem(c.Request.Context(), GetUserID(c), c.Param("id"), req.Quantity)
	if err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.As(err, &vErr):
			BadRequest(c, vErr.Error())
		case errors.Is(err, repository.ErrNotFound):
			NotFound(c, "Cart item not found")
		default:
			InternalError(c, "Failed to update item")
		}
		return
	}
	Success(c, cart)
}

// RemoveItem DELETE /cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	cart, err := h.svc.RemoveItem(c.Request.Context(), GetUserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "Cart item not found")
			return
		}
		InternalError(c, "Failed to remove item")
		return
	}
	Success(c, cart)
}
