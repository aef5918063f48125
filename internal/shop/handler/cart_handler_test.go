package handler

import (
	"net/http"
	"testing"

	"github.com/bitfantasy/choco/internal/shop/repository"
	"github.com/bitfantasy/choco/internal/shop/service"
	"github.com/bitfantasy/choco/internal/shop/testutil"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func setupCartHandler(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.SeedTestCustomer(t, db, "cust-001", "Alice", "alice@test.com")
	testutil.SeedTestProduct(t, db, "prod-001", "Truffle Box", "12.50")

	repos := repository.NewRepositories(db)
	h := NewCartHandler(service.NewCartService(repos.Cart, repos.Product))

	r := testutil.SetupRouter()
	cart := testutil.AuthGroup(r, "/cart")
	cart.GET("", h.Get)
	cart.POST("/items", h.AddItem)
	cart.PUT("/items/:id", h.UpdateItem)
	cart.DELETE("/items/:id", h.RemoveItem)

	return r, db
}

func TestCartLifecycle(t *testing.T) {
	r, _ := setupCartHandler(t)
	token := testutil.CustomerTestToken("cust-001")

	// First read creates an empty cart
	w := testutil.DoRequest(r, http.MethodGet, "/cart", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["total"] != "0" {
		t.Errorf("expected empty cart total 0, got %v", data["total"])
	}

	// Add two of the product
	body := map[string]interface{}{"product_id": "prod-001", "quantity": 2}
	w = testutil.DoRequest(r, http.MethodPost, "/cart/items", body, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["total"] != "25" {
		t.Errorf("expected total 25, got %v", data["total"])
	}

	items := data["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected one cart line, got %d", len(items))
	}
	itemID := items[0].(map[string]interface{})["id"].(string)

	// Adding the same product again bumps quantity instead of duplicating
	w = testutil.DoRequest(r, http.MethodPost, "/cart/items", map[string]interface{}{"product_id": "prod-001"}, token)
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if got := len(data["items"].([]interface{})); got != 1 {
		t.Errorf("expected quantity bump, got %d lines", got)
	}
	if data["total"] != "37.5" {
		t.Errorf("expected total 37.5, got %v", data["total"])
	}

	// Setting quantity to zero removes the line
	w = testutil.DoRequest(r, http.MethodPut, "/cart/items/"+itemID, map[string]interface{}{"quantity": 0}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["total"] != "0" {
		t.Errorf("expected empty cart after removal, got total %v", data["total"])
	}
}

func TestCartAddUnknownProduct(t *testing.T) {
	r, _ := setupCartHandler(t)
	token := testutil.CustomerTestToken("cust-001")

	body := map[string]interface{}{"product_id": "nope"}
	w := testutil.DoRequest(r, http.MethodPost, "/cart/items", body, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown product, got %d", w.Code)
	}
}
