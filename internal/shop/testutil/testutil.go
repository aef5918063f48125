package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/bitfantasy/choco/internal/middleware"
	"github.com/bitfantasy/choco/internal/shop/entity"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TestSchema = "test_choco"
	JWTSecret  = "choco-jwt-secret-key-2025"
)

// projectRoot returns the project root directory by looking for go.mod
func projectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// loadEnv loads .env from the project root
func loadEnv() {
	root := projectRoot()
	if root != "" {
		godotenv.Load(filepath.Join(root, ".env"))
	}
}

// SetupTestDB creates a test database connection using a dedicated test schema.
// Each test gets an isolated schema that is cleaned up after the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	loadEnv()

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "choco")
	password := getEnv("DB_PASSWORD", "choco123")
	dbname := getEnv("DB_NAME", "choco_shop")

	baseDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	// Create a unique test schema for isolation
	schemaName := fmt.Sprintf("%s_%d", TestSchema, time.Now().UnixNano()%1000000)

	// First: create schema using a temporary connection
	setupDB, err := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to database for schema setup: %v", err)
	}
	setupDB.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schemaName))
	sqlSetup, _ := setupDB.DB()
	sqlSetup.Close()

	// Second: open connection with search_path in DSN so ALL pooled connections use test schema
	testDSN := fmt.Sprintf("%s search_path=%s", baseDSN, schemaName)
	db, err := gorm.Open(postgres.Open(testDSN), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Migrate test tables
	err = db.AutoMigrate(
		&entity.Customer{},
		&entity.BaseMaterial{},
		&entity.AddOn{},
		&entity.Shape{},
		&entity.PackagingOption{},
		&entity.PricingSettings{},
		&entity.ProductCategory{},
		&entity.Product{},
		&entity.Cart{},
		&entity.CartItem{},
		&entity.Order{},
		&entity.OrderItem{},
		&entity.CustomConfiguration{},
		&entity.CustomConfigAddOn{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	// Cleanup on test completion
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		// Reconnect to drop the schema
		cleanDB, cleanErr := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if cleanErr == nil {
			cleanDB.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schemaName))
			sqlClean, _ := cleanDB.DB()
			if sqlClean != nil {
				sqlClean.Close()
			}
		}
	})

	return db
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates a route group with JWT auth middleware for testing
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret))
}

// GenerateTestToken creates a valid JWT token for testing
func GenerateTestToken(userID, name, email string, roles []string) string {
	if roles == nil {
		roles = []string{}
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"uid":   userID,
		"name":  name,
		"email": email,
		"roles": roles,
		"iss":   "choco-shop",
		"iat":   now.Unix(),
		"exp":   now.Add(24 * time.Hour).Unix(),
		"jti":   fmt.Sprintf("test-jti-%d", now.UnixNano()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// CustomerTestToken returns a token for a plain customer
func CustomerTestToken(userID string) string {
	return GenerateTestToken(userID, "Test Customer", "customer@test.com", []string{"customer"})
}

// DefaultTestToken returns a token for a shop admin test user
func DefaultTestToken() string {
	return GenerateTestToken(
		"test-admin-001",
		"Test Admin",
		"admin@test.com",
		[]string{"shop_admin"},
	)
}

// DoRequest executes an HTTP request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	return DoRequestHeaders(r, method, path, body, token, nil)
}

// DoRequestHeaders executes an HTTP request with extra headers
func DoRequestHeaders(r *gin.Engine, method, path string, body interface{}, token string, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SeedTestCustomer creates a customer row
func SeedTestCustomer(t *testing.T, db *gorm.DB, id, name, email string) *entity.Customer {
	t.Helper()
	customer := &entity.Customer{
		ID:           id,
		Email:        email,
		PasswordHash: "x",
		Name:         name,
		Role:         entity.RoleCustomer,
		Status:       entity.CustomerStatusActive,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := db.Create(customer).Error; err != nil {
		t.Fatalf("Failed to seed test customer: %v", err)
	}
	return customer
}

// SeedCatalog populates the customization catalog with the standard rows
// used by most order and pricing tests.
func SeedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()

	materials := []entity.BaseMaterial{
		{ID: "bm-dark", Key: "dark", Name: "Dark Chocolate", Price: dec("6.99"), Active: true, SortOrder: 1},
		{ID: "bm-milk", Key: "milk", Name: "Milk Chocolate", Price: dec("5.99"), Active: true, SortOrder: 2},
		{ID: "bm-white", Key: "white", Name: "White Chocolate", Price: dec("6.49"), Active: true, SortOrder: 3},
	}
	shapes := []entity.Shape{
		{ID: "sh-square", Key: "square", Name: "Square", Price: dec("0"), Active: true, SortOrder: 1},
		{ID: "sh-round", Key: "round", Name: "Round", Price: dec("1.50"), Active: true, SortOrder: 2},
		{ID: "sh-heart", Key: "heart", Name: "Heart", Price: dec("2.50"), Active: true, SortOrder: 3},
	}
	addOns := []entity.AddOn{
		{ID: "ao-nuts", Key: "nuts", Name: "Mixed Nuts", Price: dec("1.99"), Active: true, SortOrder: 1},
		{ID: "ao-berries", Key: "berries", Name: "Dried Berries", Price: dec("2.49"), Active: true, SortOrder: 2},
		{ID: "ao-caramel", Key: "caramel", Name: "Caramel Swirl", Price: dec("1.79"), Active: true, SortOrder: 3},
	}
	packaging := []entity.PackagingOption{
		{ID: "pk-standard", Key: "standard", Name: "Standard Box", Price: dec("0"), Active: true, SortOrder: 1},
		{ID: "pk-gift", Key: "gift", Name: "Gift Box", Price: dec("3.99"), Active: true, SortOrder: 2},
		{ID: "pk-premium", Key: "premium", Name: "Premium Box", Price: dec("6.99"), Active: true, SortOrder: 3},
		{ID: "pk-eco", Key: "eco", Name: "Eco Wrap", Price: dec("1.99"), Active: true, SortOrder: 4},
	}

	for i := range materials {
		if err := db.Create(&materials[i]).Error; err != nil {
			t.Fatalf("Failed to seed base material: %v", err)
		}
	}
	for i := range shapes {
		if err := db.Create(&shapes[i]).Error; err != nil {
			t.Fatalf("Failed to seed shape: %v", err)
		}
	}
	for i := range addOns {
		if err := db.Create(&addOns[i]).Error; err != nil {
			t.Fatalf("Failed to seed add-on: %v", err)
		}
	}
	for i := range packaging {
		if err := db.Create(&packaging[i]).Error; err != nil {
			t.Fatalf("Failed to seed packaging: %v", err)
		}
	}

	settings := &entity.PricingSettings{
		ID:               "default",
		MessageBasePrice: dec("1.99"),
		MessageCharPrice: dec("0.15"),
	}
	if err := db.Create(settings).Error; err != nil {
		t.Fatalf("Failed to seed pricing settings: %v", err)
	}
}

// SeedTestProduct creates an active product row
func SeedTestProduct(t *testing.T, db *gorm.DB, id, name string, price string) *entity.Product {
	t.Helper()
	cat := &entity.ProductCategory{ID: "cat-" + id, Name: "Category " + id}
	if err := db.Create(cat).Error; err != nil {
		t.Fatalf("Failed to seed category: %v", err)
	}
	p := &entity.Product{
		ID:         id,
		CategoryID: cat.ID,
		Name:       name,
		Price:      dec(price),
		Status:     entity.ProductStatusActive,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("Failed to seed product: %v", err)
	}
	return p
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
