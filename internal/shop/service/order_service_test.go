package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bitfantasy/choco/internal/shop/entity"
	"github.com/bitfantasy/choco/internal/shop/repository"
	"github.com/bitfantasy/choco/internal/shop/testutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupOrderService(t *testing.T) (*OrderService, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.SeedCatalog(t, db)
	testutil.SeedTestCustomer(t, db, "cust-001", "Alice", "alice@test.com")

	repos := repository.NewRepositories(db)
	svc := NewOrderService(repos.Order, repos.Catalog, repos.Cart, nil, zap.NewNop())
	return svc, db
}

func validRequest() SubmitCustomOrderRequest {
	return SubmitCustomOrderRequest{
		BaseMaterial: "dark",
		AddOns:       []string{"nuts"},
		Shape:        "heart",
		Packaging:    "gift",
		Message:      "Mom",
	}
}

func TestSubmitCustomOrderRecomputesTotal(t *testing.T) {
	svc, db := setupOrderService(t)

	receipt, replayed, err := svc.SubmitCustomOrder(context.Background(), "cust-001", "", validRequest())
	if err != nil {
		t.Fatalf("SubmitCustomOrder failed: %v", err)
	}
	if replayed {
		t.Fatal("first submission must not be a replay")
	}

	// 6.99 + 2.50 + 1.99 + 3.99 + (1.99 + 3*0.15)
	if want := decimal.NewFromFloat(17.91); !receipt.TotalPrice.Equal(want) {
		t.Errorf("expected total %s, got %s", want, receipt.TotalPrice)
	}
	if receipt.OrderID == "" || receipt.CustomConfigID == "" {
		t.Errorf("receipt missing ids: %+v", receipt)
	}

	var order entity.Order
	if err := db.First(&order, "id = ?", receipt.OrderID).Error; err != nil {
		t.Fatalf("order row not persisted: %v", err)
	}
	if !order.Total.Equal(receipt.TotalPrice) {
		t.Errorf("persisted total %s differs from receipt %s", order.Total, receipt.TotalPrice)
	}

	var cfg entity.CustomConfiguration
	if err := db.First(&cfg, "id = ?", receipt.CustomConfigID).Error; err != nil {
		t.Fatalf("configuration row not persisted: %v", err)
	}
	if cfg.Message != "Mom" {
		t.Errorf("expected message persisted, got %q", cfg.Message)
	}

	var addOnCount int64
	db.Model(&entity.CustomConfigAddOn{}).Where("config_id = ?", cfg.ID).Count(&addOnCount)
	if addOnCount != 1 {
		t.Errorf("expected one add-on association, got %d", addOnCount)
	}
}

func TestSubmitCustomOrderCaseInsensitiveKeys(t *testing.T) {
	svc, _ := setupOrderService(t)

	req := validRequest()
	req.BaseMaterial = "DARK"
	req.Shape = "Heart"
	req.AddOns = []string{"NUTS"}

	receipt, _, err := svc.SubmitCustomOrder(context.Background(), "cust-001", "", req)
	if err != nil {
		t.Fatalf("case-variant keys should resolve: %v", err)
	}
	if want := decimal.NewFromFloat(17.91); !receipt.TotalPrice.Equal(want) {
		t.Errorf("expected total %s, got %s", want, receipt.TotalPrice)
	}
}

func TestSubmitCustomOrderUnknownComponent(t *testing.T) {
	svc, db := setupOrderService(t)

	req := validRequest()
	req.BaseMaterial = "ruby"

	_, _, err := svc.SubmitCustomOrder(context.Background(), "cust-001", "", req)

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.Field != "baseMaterial" {
		t.Errorf("expected field baseMaterial, got %s", vErr.Field)
	}

	var count int64
	db.Model(&entity.Order{}).Count(&count)
	if count != 0 {
		t.Errorf("no order rows may exist after a rejected submission, got %d", count)
	}
}

func TestSubmitCustomOrderInactiveComponent(t *testing.T) {
	svc, db := setupOrderService(t)

	db.Model(&entity.AddOn{}).Where("key = ?", "nuts").Update("active", false)

	_, _, err := svc.SubmitCustomOrder(context.Background(), "cust-001", "", validRequest())

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("inactive rows must not resolve, got %v", err)
	}
}

func TestSubmitCustomOrderNoneAddOnSkipped(t *testing.T) {
	svc, _ := setupOrderService(t)

	req := validRequest()
	req.AddOns = []string{"none"}
	req.Message = ""

	receipt, _, err := svc.SubmitCustomOrder(context.Background(), "cust-001", "", req)
	if err != nil {
		t.Fatalf("SubmitCustomOrder failed: %v", err)
	}

	// 6.99 + 2.50 + 0 + 3.99
	if want := decimal.NewFromFloat(13.48); !receipt.TotalPrice.Equal(want) {
		t.Errorf("'none' must not be priced, expected %s got %s", want, receipt.TotalPrice)
	}
}

func TestSubmitCustomOrderMessageTooLong(t *testing.T) {
	svc, _ := setupOrderService(t)

	req := validRequest()
	for len(req.Message) <= 100 {
		req.Message += "very long message "
	}

	_, _, err := svc.SubmitCustomOrder(context.Background(), "cust-001", "", req)

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for oversized message, got %v", err)
	}
	if vErr.Field != "message" {
		t.Errorf("expected field message, got %s", vErr.Field)
	}
}

func TestSubmitCustomOrderRollbackOnWriteFailure(t *testing.T) {
	svc, db := setupOrderService(t)

	// Dropping the association table forces the last write in the
	// transaction to fail; nothing from the submission may survive.
	if err := db.Exec("DROP TABLE custom_config_add_ons").Error; err != nil {
		t.Fatalf("failed to drop table: %v", err)
	}

	_, _, err := svc.SubmitCustomOrder(context.Background(), "cust-001", "", validRequest())

	var pErr *PersistenceError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}

	var orders, items, configs int64
	db.Model(&entity.Order{}).Count(&orders)
	db.Model(&entity.OrderItem{}).Count(&items)
	db.Model(&entity.CustomConfiguration{}).Count(&configs)
	if orders != 0 || items != 0 || configs != 0 {
		t.Errorf("rollback left rows behind: orders=%d items=%d configs=%d", orders, items, configs)
	}
}

func TestSubmitCustomOrderIdempotentReplay(t *testing.T) {
	svc, db := setupOrderService(t)

	first, replayed, err := svc.SubmitCustomOrder(context.Background(), "cust-001", "retry-key-1", validRequest())
	if err != nil {
		t.Fatalf("first submission failed: %v", err)
	}
	if replayed {
		t.Fatal("first submission must not be a replay")
	}

	second, replayed, err := svc.SubmitCustomOrder(context.Background(), "cust-001", "retry-key-1", validRequest())
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if !replayed {
		t.Fatal("second submission with the same key must be a replay")
	}
	if second.OrderID != first.OrderID {
		t.Errorf("replay returned a different order: %s vs %s", second.OrderID, first.OrderID)
	}
	if !second.TotalPrice.Equal(first.TotalPrice) {
		t.Errorf("replay returned a different total: %s vs %s", second.TotalPrice, first.TotalPrice)
	}

	var count int64
	db.Model(&entity.Order{}).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly one order after replay, got %d", count)
	}

	// A different customer may reuse the same key
	testutil.SeedTestCustomer(t, db, "cust-002", "Bob", "bob@test.com")
	_, replayed, err = svc.SubmitCustomOrder(context.Background(), "cust-002", "retry-key-1", validRequest())
	if err != nil {
		t.Fatalf("second customer with same key failed: %v", err)
	}
	if replayed {
		t.Error("idempotency keys are scoped per customer")
	}
}

func TestSubmitCustomOrderConcurrentSameKey(t *testing.T) {
	svc, db := setupOrderService(t)

	// All submissions race past the replay lookup together; losers trip the
	// unique (customer, key) index and must still get the winner's receipt.
	const workers = 8
	start := make(chan struct{})
	receipts := make([]*OrderReceipt, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			receipts[i], _, errs[i] = svc.SubmitCustomOrder(context.Background(), "cust-001", "burst-key-1", validRequest())
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("submission %d failed: %v", i, errs[i])
		}
		if receipts[i].OrderID != receipts[0].OrderID {
			t.Errorf("submission %d got order %s, want %s", i, receipts[i].OrderID, receipts[0].OrderID)
		}
		if !receipts[i].TotalPrice.Equal(receipts[0].TotalPrice) {
			t.Errorf("submission %d got total %s, want %s", i, receipts[i].TotalPrice, receipts[0].TotalPrice)
		}
	}

	var count int64
	db.Model(&entity.Order{}).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly one order after concurrent submissions, got %d", count)
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	svc, _ := setupOrderService(t)

	receipt, _, err := svc.SubmitCustomOrder(context.Background(), "cust-001", "", validRequest())
	if err != nil {
		t.Fatalf("SubmitCustomOrder failed: %v", err)
	}

	if err := svc.UpdateStatus(context.Background(), receipt.OrderID, entity.OrderStatusShipped); err == nil {
		t.Error("pending -> shipped must be rejected")
	}
	if err := svc.UpdateStatus(context.Background(), receipt.OrderID, entity.OrderStatusPaid); err != nil {
		t.Errorf("pending -> paid should succeed: %v", err)
	}
	if err := svc.UpdateStatus(context.Background(), receipt.OrderID, entity.OrderStatusShipped); err != nil {
		t.Errorf("paid -> shipped should succeed: %v", err)
	}
	if err := svc.UpdateStatus(context.Background(), receipt.OrderID, entity.OrderStatusCancelled); err == nil {
		t.Error("shipped -> cancelled must be rejected")
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc, _ := setupOrderService(t)

	_, err := svc.Checkout(context.Background(), "cust-001")

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for missing cart, got %v", err)
	}
}

func TestCheckoutConvertsCart(t *testing.T) {
	svc, db := setupOrderService(t)
	testutil.SeedTestProduct(t, db, "prod-001", "Truffle Box", "12.50")

	repos := repository.NewRepositories(db)
	cartSvc := NewCartService(repos.Cart, repos.Product)
	if _, err := cartSvc.AddItem(context.Background(), "cust-001", AddItemRequest{ProductID: "prod-001", Quantity: 2}); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	order, err := svc.Checkout(context.Background(), "cust-001")
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	if want := decimal.NewFromFloat(25.00); !order.Total.Equal(want) {
		t.Errorf("expected total %s, got %s", want, order.Total)
	}

	var cart entity.Cart
	db.First(&cart, "customer_id = ?", "cust-001")
	if cart.Status != entity.CartStatusCheckedOut {
		t.Errorf("cart must be closed by checkout, got status %s", cart.Status)
	}
}
