package handler

import (
	"strconv"

	"github.com/bitfantasy/choco/internal/config"
	"github.com/bitfantasy/choco/internal/shop/pricing"
	"github.com/bitfantasy/choco/internal/shop/service"
	"github.com/bitfantasy/choco/internal/shop/sse"
	"github.com/gin-gonic/gin"
)

// Handlers aggregates all HTTP handlers
type Handlers struct {
	Auth    *AuthHandler
	Catalog *CatalogHandler
	Product *ProductHandler
	Cart    *CartHandler
	Order   *OrderHandler
	SSE     *SSEHandler
}

// NewHandlers creates the handler set
func NewHandlers(svc *service.Services, cfg *config.Config, pricingSvc *pricing.Service, hub *sse.Hub) *Handlers {
	return &Handlers{
		Auth:    NewAuthHandler(svc.Auth),
		Catalog: NewCatalogHandler(svc.Catalog, pricingSvc),
		Product: NewProductHandler(svc.Product),
		Cart:    NewCartHandler(svc.Cart),
		Order:   NewOrderHandler(svc.Order),
		SSE:     NewSSEHandler(hub),
	}
}

// Response generic response envelope
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse list response envelope
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// Pagination pagination info
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Success 200 response
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 201 response
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error error response. The app code's leading three digits are the HTTP
// status (40000 -> 400).
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 400 response
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// Unauthorized 401 response
func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

// Forbidden 403 response
func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

// NotFound 404 response
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// InternalError 500 response
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// GetUserID reads the authenticated user id from the context
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetPagination reads pagination params from the query string
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}
