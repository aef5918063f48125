package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bitfantasy/choco/internal/shop/entity"
	"github.com/bitfantasy/choco/internal/shop/repository"
	"github.com/bitfantasy/choco/internal/shop/service"
	"github.com/gin-gonic/gin"
)

// OrderHandler order endpoints
type OrderHandler struct {
	svc *service.OrderService
}

// NewOrderHandler creates the order handler
func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// SubmitCustom POST /orders/custom. A configuration that fails catalog
// validation maps to 400; a failed atomic write maps to 500. An
// Idempotency-Key replay answers 200 with the original receipt instead of
// creating a second order.
func (h *OrderHandler) SubmitCustom(c *gin.Context) {
	var req service.SubmitCustomOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}

	receipt, replayed, err := h.svc.SubmitCustomOrder(
		c.Request.Context(),
		GetUserID(c),
		c.GetHeader("Idempotency-Key"),
		req,
	)
	if err != nil {
		var vErr *service.ValidationError
		var pErr *service.PersistenceError
		switch {
		case errors.As(err, &vErr):
			BadRequest(c, vErr.Error())
		case errors.As(err, &pErr):
			InternalError(c, "Failed to save order")
		default:
			InternalError(c, "Failed to submit order")
		}
		return
	}

	if replayed {
		Success(c, receipt)
		return
	}
	Created(c, receipt)
}

// Checkout POST /orders converts the open cart into an order
func (h *OrderHandler) Checkout(c *gin.Context) {
	order, err := h.svc.Checkout(c.Request.Context(), GetUserID(c))
	if err != nil {
		var vErr *service.ValidationError
		var pErr *service.PersistenceError
		switch {
		case errors.As(err, &vErr):
			BadRequest(c, vErr.Error())
		case errors.As(err, &pErr):
			InternalError(c, "Failed to place order")
		default:
			InternalError(c, "Failed to place order")
		}
		return
	}
	Created(c, order)
}

// List GET /orders lists the customer's own orders
func (h *OrderHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	orders, total, err := h.svc.ListForCustomer(c.Request.Context(), GetUserID(c), page, pageSize)
	if err != nil {
		InternalError(c, "Failed to list orders")
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	Success(c, ListResponse{
		Items: orders,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	})
}

// Get GET /orders/:id returns one of the customer's own orders
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.svc.GetForCustomer(c.Request.Context(), GetUserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "Order not found")
			return
		}
		InternalError(c, "Failed to load order")
		return
	}
	Success(c, order)
}

// AdminList GET /admin/orders
func (h *OrderHandler) AdminList(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"customer_id": c.Query("customer_id"),
		"status":      c.Query("status"),
		"from":        c.Query("from"),
		"to":          c.Query("to"),
	}

	orders, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "Failed to list orders")
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	Success(c, ListResponse{
		Items: orders,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	})
}

// UpdateStatusRequest status payload
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AdminUpdateStatus PUT /admin/orders/:id/status
func (h *OrderHandler) AdminUpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}

	switch req.Status {
	case entity.OrderStatusPaid, entity.OrderStatusShipped,
		entity.OrderStatusDelivered, entity.OrderStatusCancelled:
	default:
		BadRequest(c, "Unknown order status")
		return
	}

	err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.As(err, &vErr):
			BadRequest(c, vErr.Error())
		case errors.Is(err, repository.ErrNotFound):
			NotFound(c, "Order not found")
		default:
			InternalError(c, "Failed to update status")
		}
		return
	}
	Success(c, gin.H{"message": "Status updated"})
}

// AdminExport GET /admin/orders/export streams an xlsx workbook
func (h *OrderHandler) AdminExport(c *gin.Context) {
	filters := map[string]string{
		"customer_id": c.Query("customer_id"),
		"status":      c.Query("status"),
		"from":        c.Query("from"),
		"to":          c.Query("to"),
	}

	f, filename, err := h.svc.Export(c.Request.Context(), filters)
	if err != nil {
		InternalError(c, "Failed to export orders")
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
