package handler

import (
	"net/http"
	"testing"

	"github.com/bitfantasy/choco/internal/shop/repository"
	"github.com/bitfantasy/choco/internal/shop/service"
	"github.com/bitfantasy/choco/internal/shop/testutil"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupOrderHandler(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.SeedCatalog(t, db)
	testutil.SeedTestCustomer(t, db, "cust-001", "Alice", "alice@test.com")

	repos := repository.NewRepositories(db)
	orderSvc := service.NewOrderService(repos.Order, repos.Catalog, repos.Cart, nil, zap.NewNop())
	h := NewOrderHandler(orderSvc)

	r := testutil.SetupRouter()
	orders := testutil.AuthGroup(r, "/orders")
	orders.POST("/custom", h.SubmitCustom)
	orders.GET("", h.List)
	orders.GET("/:id", h.Get)

	return r, db
}

func customOrderBody() map[string]interface{} {
	return map[string]interface{}{
		"baseMaterial": "dark",
		"addOns":       []string{"nuts"},
		"shape":        "heart",
		"packaging":    "gift",
		"message":      "Mom",
	}
}

func TestSubmitCustomOrderRequiresAuth(t *testing.T) {
	r, _ := setupOrderHandler(t)

	w := testutil.DoRequest(r, http.MethodPost, "/orders/custom", customOrderBody(), "")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}
}

func TestSubmitCustomOrderCreated(t *testing.T) {
	r, _ := setupOrderHandler(t)
	token := testutil.CustomerTestToken("cust-001")

	w := testutil.DoRequest(r, http.MethodPost, "/orders/custom", customOrderBody(), token)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data, ok := resp["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing data in response: %v", resp)
	}
	if data["orderId"] == "" || data["orderId"] == nil {
		t.Error("receipt missing orderId")
	}
	if data["customConfigId"] == "" || data["customConfigId"] == nil {
		t.Error("receipt missing customConfigId")
	}
	if total, _ := data["totalPrice"].(string); total != "17.91" {
		t.Errorf("expected server-computed total 17.91, got %v", data["totalPrice"])
	}
}

func TestSubmitCustomOrderUnknownKeyIs400(t *testing.T) {
	r, db := setupOrderHandler(t)
	token := testutil.CustomerTestToken("cust-001")

	body := customOrderBody()
	body["shape"] = "triangle"

	w := testutil.DoRequest(r, http.MethodPost, "/orders/custom", body, token)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown shape, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	db.Table("orders").Count(&count)
	if count != 0 {
		t.Errorf("rejected submission must not persist rows, got %d orders", count)
	}
}

func TestSubmitCustomOrderPersistenceFailureIs500(t *testing.T) {
	r, db := setupOrderHandler(t)
	token := testutil.CustomerTestToken("cust-001")

	if err := db.Exec("DROP TABLE custom_config_add_ons").Error; err != nil {
		t.Fatalf("failed to drop table: %v", err)
	}

	w := testutil.DoRequest(r, http.MethodPost, "/orders/custom", customOrderBody(), token)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 when the atomic write fails, got %d", w.Code)
	}
}

func TestSubmitCustomOrderIdempotencyReplayIs200(t *testing.T) {
	r, _ := setupOrderHandler(t)
	token := testutil.CustomerTestToken("cust-001")
	headers := map[string]string{"Idempotency-Key": "retry-1"}

	first := testutil.DoRequestHeaders(r, http.MethodPost, "/orders/custom", customOrderBody(), token, headers)
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201 on first submission, got %d", first.Code)
	}

	second := testutil.DoRequestHeaders(r, http.MethodPost, "/orders/custom", customOrderBody(), token, headers)
	if second.Code != http.StatusOK {
		t.Fatalf("expected 200 on replay, got %d", second.Code)
	}

	firstData := testutil.ParseResponse(first)["data"].(map[string]interface{})
	secondData := testutil.ParseResponse(second)["data"].(map[string]interface{})
	if firstData["orderId"] != secondData["orderId"] {
		t.Errorf("replay returned a different order: %v vs %v", firstData["orderId"], secondData["orderId"])
	}
}

func TestListOrdersOnlyOwn(t *testing.T) {
	r, db := setupOrderHandler(t)
	testutil.SeedTestCustomer(t, db, "cust-002", "Bob", "bob@test.com")

	aliceToken := testutil.CustomerTestToken("cust-001")
	bobToken := testutil.CustomerTestToken("cust-002")

	w := testutil.DoRequest(r, http.MethodPost, "/orders/custom", customOrderBody(), aliceToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	orderID := testutil.ParseResponse(w)["data"].(map[string]interface{})["orderId"].(string)

	// Bob sees an empty list and cannot read Alice's order
	listResp := testutil.DoRequest(r, http.MethodGet, "/orders", nil, bobToken)
	if listResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", listResp.Code)
	}
	data := testutil.ParseResponse(listResp)["data"].(map[string]interface{})
	if items, ok := data["items"].([]interface{}); ok && len(items) != 0 {
		t.Errorf("expected empty order list for other customer, got %d", len(items))
	}

	getResp := testutil.DoRequest(r, http.MethodGet, "/orders/"+orderID, nil, bobToken)
	if getResp.Code != http.StatusNotFound {
		t.Errorf("expected 404 for another customer's order, got %d", getResp.Code)
	}
}
