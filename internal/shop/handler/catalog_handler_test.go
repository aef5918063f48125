package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bitfantasy/choco/internal/middleware"
	"github.com/bitfantasy/choco/internal/shop/entity"
	"github.com/bitfantasy/choco/internal/shop/pricing"
	"github.com/bitfantasy/choco/internal/shop/repository"
	"github.com/bitfantasy/choco/internal/shop/service"
	"github.com/bitfantasy/choco/internal/shop/testutil"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupCatalogHandler(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.SeedCatalog(t, db)

	repos := repository.NewRepositories(db)
	catalogSvc := service.NewCatalogService(repos.Catalog, nil, time.Minute, zap.NewNop())
	pricingSvc := pricing.NewService(&pricing.StaticSource{Catalog: pricing.FallbackCatalog()}, time.Minute, zap.NewNop())
	t.Cleanup(pricingSvc.Close)
	h := NewCatalogHandler(catalogSvc, pricingSvc)

	r := testutil.SetupRouter()
	r.GET("/catalog/base-materials", h.ListBaseMaterials)
	r.GET("/catalog/add-ons", h.ListAddOns)
	r.GET("/catalog/shapes", h.ListShapes)
	r.GET("/catalog/packaging", h.ListPackaging)
	r.GET("/catalog/pricing", h.GetPricing)

	admin := r.Group("/admin/catalog", middleware.JWTAuth(testutil.JWTSecret), middleware.RequireRole(entity.RoleShopAdmin))
	admin.PUT("/message-pricing", h.AdminUpdateMessagePricing)
	admin.GET("/:group", h.AdminListComponents)
	admin.POST("/:group", h.AdminCreateComponent)
	admin.PUT("/:group/:id", h.AdminUpdateComponent)
	admin.DELETE("/:group/:id", h.AdminDeleteComponent)

	return r, db
}

func TestCatalogListShape(t *testing.T) {
	r, _ := setupCatalogHandler(t)

	w := testutil.DoRequest(r, http.MethodGet, "/catalog/shapes", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	shapes, ok := data["shapes"].([]interface{})
	if !ok || len(shapes) != 3 {
		t.Fatalf("expected 3 shapes, got %v", data["shapes"])
	}

	first := shapes[0].(map[string]interface{})
	for _, field := range []string{"id", "key", "name", "price"} {
		if _, ok := first[field]; !ok {
			t.Errorf("shape item missing field %q: %v", field, first)
		}
	}
}

func TestCatalogListExcludesInactive(t *testing.T) {
	r, db := setupCatalogHandler(t)

	db.Model(&entity.AddOn{}).Where("key = ?", "caramel").Update("active", false)

	w := testutil.DoRequest(r, http.MethodGet, "/catalog/add-ons", nil, "")
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	addOns := data["add_ons"].([]interface{})
	if len(addOns) != 2 {
		t.Errorf("inactive rows must not be listed, got %d add-ons", len(addOns))
	}
}

func TestCatalogPricingAggregate(t *testing.T) {
	r, _ := setupCatalogHandler(t)

	w := testutil.DoRequest(r, http.MethodGet, "/catalog/pricing", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	for _, group := range []string{"baseMaterial", "shapes", "addOns", "packaging"} {
		if _, ok := data[group].(map[string]interface{}); !ok {
			t.Errorf("pricing snapshot missing group %q", group)
		}
	}
	if base, _ := data["baseMaterial"].(map[string]interface{}); base["dark"] != "6.99" {
		t.Errorf("expected dark priced 6.99, got %v", base["dark"])
	}
	if data["messageBasePrice"] != "1.99" {
		t.Errorf("expected messageBasePrice 1.99, got %v", data["messageBasePrice"])
	}
}

func TestAdminCatalogRequiresRole(t *testing.T) {
	r, _ := setupCatalogHandler(t)
	customerToken := testutil.CustomerTestToken("cust-001")

	body := map[string]interface{}{"key": "hexagon", "name": "Hexagon", "price": "3.50"}

	w := testutil.DoRequest(r, http.MethodPost, "/admin/catalog/shapes", body, customerToken)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for customer role, got %d", w.Code)
	}

	w = testutil.DoRequest(r, http.MethodPost, "/admin/catalog/shapes", body, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}
}

func TestAdminCreateComponentAppearsInPublicList(t *testing.T) {
	r, _ := setupCatalogHandler(t)
	adminToken := testutil.DefaultTestToken()

	body := map[string]interface{}{"key": "hexagon", "name": "Hexagon", "price": "3.50", "sort_order": 9}
	w := testutil.DoRequest(r, http.MethodPost, "/admin/catalog/shapes", body, adminToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	list := testutil.DoRequest(r, http.MethodGet, "/catalog/shapes", nil, "")
	data := testutil.ParseResponse(list)["data"].(map[string]interface{})
	shapes := data["shapes"].([]interface{})
	if len(shapes) != 4 {
		t.Fatalf("expected 4 shapes after create, got %d", len(shapes))
	}

	found := false
	for _, s := range shapes {
		if s.(map[string]interface{})["key"] == "hexagon" {
			found = true
		}
	}
	if !found {
		t.Error("created shape not visible in public list")
	}
}

func TestAdminUpdateMessagePricing(t *testing.T) {
	r, db := setupCatalogHandler(t)
	adminToken := testutil.DefaultTestToken()

	body := map[string]interface{}{"base_price": "2.50", "char_price": "0.20"}
	w := testutil.DoRequest(r, http.MethodPut, "/admin/catalog/message-pricing", body, adminToken)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var settings entity.PricingSettings
	if err := db.First(&settings, "id = ?", "default").Error; err != nil {
		t.Fatalf("settings row missing: %v", err)
	}
	if settings.MessageBasePrice.String() != "2.5" {
		t.Errorf("expected base price 2.5, got %s", settings.MessageBasePrice)
	}

	// Negative prices are rejected
	bad := map[string]interface{}{"base_price": "-1", "char_price": "0.20"}
	w = testutil.DoRequest(r, http.MethodPut, "/admin/catalog/message-pricing", bad, adminToken)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for negative price, got %d", w.Code)
	}
}

func TestPricingEndpointFeedsCatalogLoader(t *testing.T) {
	r, _ := setupCatalogHandler(t)
	srv := httptest.NewServer(r)
	defer srv.Close()

	src := pricing.NewHTTPSource(srv.URL, time.Second)
	svc := pricing.NewService(src, time.Minute, zap.NewNop())
	defer svc.Close()

	catalog := svc.Init(context.Background())
	if !svc.Live() {
		t.Fatal("loader must go live against the storefront's own pricing endpoint")
	}
	if want := decimal.NewFromFloat(6.99); !catalog.Get(pricing.CategoryBaseMaterial, "dark").Equal(want) {
		t.Errorf("expected seeded price %s, got %s", want, catalog.Get(pricing.CategoryBaseMaterial, "dark"))
	}
	if want := decimal.NewFromFloat(2.50); !catalog.Get(pricing.CategoryShape, "heart").Equal(want) {
		t.Errorf("expected seeded price %s, got %s", want, catalog.Get(pricing.CategoryShape, "heart"))
	}
	if want := decimal.NewFromFloat(0.15); !catalog.MessageCharPrice.Equal(want) {
		t.Errorf("expected seeded char price %s, got %s", want, catalog.MessageCharPrice)
	}
}
