package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/choco/internal/config"
	"github.com/bitfantasy/choco/internal/middleware"
	"github.com/bitfantasy/choco/internal/shop/entity"
	"github.com/bitfantasy/choco/internal/shop/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrInvalidRefresh     = errors.New("invalid or revoked refresh token")
)

const refreshKeyPrefix = "auth:refresh:"

// AuthService customer/admin authentication. Refresh tokens are allowlisted
// in redis by jti so logout and rotation actually revoke them.
type AuthService struct {
	customerRepo *repository.CustomerRepository
	rdb          *redis.Client
	cfg          *config.Config
}

// NewAuthService creates the auth service
func NewAuthService(customerRepo *repository.CustomerRepository, rdb *redis.Client, cfg *config.Config) *AuthService {
	return &AuthService{
		customerRepo: customerRepo,
		rdb:          rdb,
		cfg:          cfg,
	}
}

// TokenPair access/refresh token pair
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RegisterRequest new account request
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
}

// Register creates a customer account
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*entity.Customer, error) {
	if _, err := s.customerRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	customer := &entity.Customer{
		ID:           uuid.New().String()[:32],
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Phone:        req.Phone,
		Role:         entity.RoleCustomer,
		Status:       entity.CustomerStatusActive,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return customer, nil
}

// Login verifies credentials and issues a token pair
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, *entity.Customer, error) {
	customer, err := s.customerRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if customer.Status != entity.CustomerStatusActive {
		return nil, nil, ErrAccountDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokenPair(ctx, customer)
	if err != nil {
		return nil, nil, err
	}

	if err := s.customerRepo.TouchLastLogin(ctx, customer.ID); err != nil {
		// Login still succeeds; the timestamp is informational.
		return pair, customer, nil
	}
	return pair, customer, nil
}

// Refresh rotates a refresh token into a new token pair
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(refreshToken, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidRefresh
	}

	userID, err := s.rdb.Get(ctx, refreshKeyPrefix+claims.ID).Result()
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	customer, err := s.customerRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrInvalidRefresh
	}
	if customer.Status != entity.CustomerStatusActive {
		return nil, ErrAccountDisabled
	}

	// Rotation: the presented token is single-use.
	s.rdb.Del(ctx, refreshKeyPrefix+claims.ID)

	return s.issueTokenPair(ctx, customer)
}

// GetCustomer loads a customer by id
func (s *AuthService) GetCustomer(ctx context.Context, id string) (*entity.Customer, error) {
	return s.customerRepo.FindByID(ctx, id)
}

// Logout revokes a refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(refreshToken, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.Secret), nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidRefresh
	}
	return s.rdb.Del(ctx, refreshKeyPrefix+claims.ID).Err()
}

func (s *AuthService) issueTokenPair(ctx context.Context, customer *entity.Customer) (*TokenPair, error) {
	now := time.Now()

	accessClaims := middleware.JWTClaims{
		UserID: customer.ID,
		Name:   customer.Name,
		Email:  customer.Email,
		Roles:  []string{customer.Role},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   customer.ID,
			Issuer:    s.cfg.JWT.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWT.AccessTokenExpire)),
			ID:        uuid.New().String(),
		},
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).
		SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshJTI := uuid.New().String()
	refreshClaims := jwt.RegisteredClaims{
		Subject:   customer.ID,
		Issuer:    s.cfg.JWT.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWT.RefreshTokenExpire)),
		ID:        refreshJTI,
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).
		SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := s.rdb.Set(ctx, refreshKeyPrefix+refreshJTI, customer.ID, s.cfg.JWT.RefreshTokenExpire).Err(); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.cfg.JWT.AccessTokenExpire.Seconds()),
	}, nil
}
