package handler

import (
	"errors"

	"github.com/bitfantasy/choco/internal/shop/entity"
	"github.com/bitfantasy/choco/internal/shop/repository"
	"github.com/bitfantasy/choco/internal/shop/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler authentication endpoints
type AuthHandler struct {
	svc *service.AuthService
}

// NewAuthHandler creates the auth handler
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register creates a customer account
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}

	customer, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			BadRequest(c, "Email already registered")
			return
		}
		InternalError(c, "Failed to register")
		return
	}

	Created(c, customerJSON(customer))
}

// LoginRequest login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and returns a token pair
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}

	pair, customer, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			Unauthorized(c, "Invalid email or password")
		case errors.Is(err, service.ErrAccountDisabled):
			Forbidden(c, "Account disabled")
		default:
			InternalError(c, "Failed to log in")
		}
		return
	}

	Success(c, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"expires_in":    pair.ExpiresIn,
		"user":          customerJSON(customer),
	})
}

// RefreshTokenRequest refresh payload
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh rotates a refresh token
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}

	pair, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		Unauthorized(c, "Invalid or expired refresh token")
		return
	}

	Success(c, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"expires_in":    pair.ExpiresIn,
	})
}

// Logout revokes the refresh token
func (h *AuthHandler) Logout(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}

	if err := h.svc.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		Unauthorized(c, "Invalid refresh token")
		return
	}
	Success(c, gin.H{"message": "Logged out"})
}

// Me returns the current customer
func (h *AuthHandler) Me(c *gin.Context) {
	userID := GetUserID(c)
	if userID == "" {
		Unauthorized(c, "Not authenticated")
		return
	}

	customer, err := h.svc.GetCustomer(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "Customer not found")
			return
		}
		InternalError(c, "Failed to load customer")
		return
	}
	Success(c, customerJSON(customer))
}

func customerJSON(customer *entity.Customer) gin.H {
	return gin.H{
		"id":    customer.ID,
		"email": customer.Email,
		"name":  customer.Name,
		"phone": customer.Phone,
		"role":  customer.Role,
	}
}
