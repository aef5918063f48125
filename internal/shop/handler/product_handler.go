package handler

import (
	"errors"

	"github.com/bitfantasy/choco/internal/shop/repository"
	"github.com/bitfantasy/choco/internal/shop/service"
	"github.com/gin-gonic/gin"
)

// ProductHandler ready-made product endpoints
type ProductHandler struct {
	svc *service.ProductService
}

// NewProductHandler creates the product handler
func NewProductHandler(svc *service.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// List GET /products
func (h *ProductHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"category_id": c.Query("category_id"),
		"search":      c.Query("search"),
	}

	products, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters, false)
	if err != nil {
		InternalError(c, "Failed to list products")
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	Success(c, ListResponse{
		Items: products,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	})
}

// Get GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "Product not found")
			return
		}
		InternalError(c, "Failed to load product")
		return
	}
	Success(c, product)
}

// ListCategories GET /products/categories
func (h *ProductHandler) ListCategories(c *gin.Context) {
	cats, err := h.svc.ListCategories(c.Request.Context())
	if err != nil {
		InternalError(c, "Failed to list categories")
		return
	}
	Success(c, gin.H{"categories": cats})
}

// AdminList GET /admin/products (includes inactive)
func (h *ProductHandler) AdminList(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"category_id": c.Query("category_id"),
		"status":      c.Query("status"),
		"search":      c.Query("search"),
	}

	products, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters, true)
	if err != nil {
		InternalError(c, "Failed to list products")
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	Success(c, ListResponse{
		Items: products,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	})
}

// AdminCreate POST /admin/products
func (h *ProductHandler) AdminCreate(c *gin.Context) {
	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			BadRequest(c, vErr.Error())
			return
		}
		InternalError(c, "Failed to create product")
		return
	}
	Created(c, product)
}

// AdminUpdate PUT /admin/products/:id
func (h *ProductHandler) AdminUpdate(c *gin.Context) {
	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.As(err, &vErr):
			BadRequest(c, vErr.Error())
		case errors.Is(err, repository.ErrNotFound):
			NotFound(c, "Product not found")
		default:
			InternalError(c, "Failed to update product")
		}
		return
	}
	Success(c, product)
}

// AdminDelete DELETE /admin/products/:id
func (h *ProductHandler) AdminDelete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "Product not found")
			return
		}
		InternalError(c, "Failed to delete product")
		return
	}
	Success(c, gin.H{"message": "Product deleted"})
}

// AdminCreateCategory POST /admin/products/categories
func (h *ProductHandler) AdminCreateCategory(c *gin.Context) {
	var req service.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}

	cat, err := h.svc.CreateCategory(c.Request.Context(), req)
	if err != nil {
		InternalError(c, "Failed to create category")
		return
	}
	Created(c, cat)
}
