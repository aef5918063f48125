package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bitfantasy/choco/internal/shop/configurator"
	"github.com/bitfantasy/choco/internal/shop/entity"
	"github.com/bitfantasy/choco/internal/shop/pricing"
	"github.com/bitfantasy/choco/internal/shop/repository"
	"github.com/bitfantasy/choco/internal/shop/sse"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// OrderService assembles and manages orders. For custom orders it is the
// sole source of truth for price: every component is resolved against the
// server's own catalog rows and the total recomputed here, never taken from
// the client.
type OrderService struct {
	orderRepo   *repository.OrderRepository
	catalogRepo *repository.CatalogRepository
	cartRepo    *repository.CartRepository
	hub         *sse.Hub
	logger      *zap.Logger
}

// NewOrderService creates the order service
func NewOrderService(orderRepo *repository.OrderRepository, catalogRepo *repository.CatalogRepository, cartRepo *repository.CartRepository, hub *sse.Hub, logger *zap.Logger) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		catalogRepo: catalogRepo,
		cartRepo:    cartRepo,
		hub:         hub,
		logger:      logger,
	}
}

// SubmitCustomOrderRequest configuration submitted for purchase. Note the
// absence of any price field.
type SubmitCustomOrderRequest struct {
	BaseMaterial string   `json:"baseMaterial" binding:"required"`
	AddOns       []string `json:"addOns"`
	Shape        string   `json:"shape" binding:"required"`
	Packaging    string   `json:"packaging" binding:"required"`
	Message      string   `json:"message"`
	MessageStyle string   `json:"messageStyle"`
}

// OrderReceipt result of a successful submission
type OrderReceipt struct {
	OrderID        string          `json:"orderId"`
	CustomConfigID string          `json:"customConfigId"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
}

// SubmitCustomOrder validates the configuration against the active catalog,
// recomputes the price server-side and persists the order atomically. The
// returned bool is true when an idempotency-key replay matched an existing
// order and no new rows were written.
func (s *OrderService) SubmitCustomOrder(ctx context.Context, customerID, idempotencyKey string, req SubmitCustomOrderRequest) (*OrderReceipt, bool, error) {
	if idempotencyKey != "" {
		existing, err := s.orderRepo.FindByIdempotencyKey(ctx, customerID, idempotencyKey)
		if err == nil {
			return replayReceipt(existing), true, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, false, fmt.Errorf("idempotency lookup: %w", err)
		}
	}

	if n := len([]rune(req.Message)); n > configurator.MaxMessageLength {
		return nil, false, newValidationError("message", "message exceeds %d characters", configurator.MaxMessageLength)
	}

	material, err := s.catalogRepo.ResolveBaseMaterial(ctx, req.BaseMaterial)
	if err != nil {
		return nil, false, s.resolveErr("baseMaterial", req.BaseMaterial, err)
	}
	shape, err := s.catalogRepo.ResolveShape(ctx, req.Shape)
	if err != nil {
		return nil, false, s.resolveErr("shape", req.Shape, err)
	}
	packaging, err := s.catalogRepo.ResolvePackaging(ctx, req.Packaging)
	if err != nil {
		return nil, false, s.resolveErr("packaging", req.Packaging, err)
	}

	var addOnRows []entity.CustomConfigAddOn
	addOnsTotal := decimal.Zero
	seen := make(map[string]bool)
	for _, key := range req.AddOns {
		lower := strings.ToLower(key)
		// "none" is a UI sentinel, not a catalog row.
		if lower == "none" || seen[lower] {
			continue
		}
		seen[lower] = true

		addOn, err := s.catalogRepo.ResolveAddOn(ctx, key)
		if err != nil {
			return nil, false, s.resolveErr("addOns", key, err)
		}
		addOnRows = append(addOnRows, entity.CustomConfigAddOn{
			ID:      uuid.New().String()[:32],
			AddOnID: addOn.ID,
			Price:   addOn.Price,
		})
		addOnsTotal = addOnsTotal.Add(addOn.Price)
	}

	messageFee, err := s.messageFee(ctx, req.Message)
	if err != nil {
		return nil, false, err
	}

	total := material.Price.
		Add(shape.Price).
		Add(addOnsTotal).
		Add(packaging.Price).
		Add(messageFee)

	order := &entity.Order{
		ID:         uuid.New().String()[:32],
		CustomerID: customerID,
		Status:     entity.OrderStatusPending,
		Total:      total,
	}
	if idempotencyKey != "" {
		order.IdempotencyKey = &idempotencyKey
	}
	item := &entity.OrderItem{
		ID:        uuid.New().String()[:32],
		ItemType:  entity.OrderItemTypeCustom,
		Name:      fmt.Sprintf("Custom %s chocolate (%s)", material.Name, shape.Name),
		Quantity:  1,
		UnitPrice: total,
	}
	cfg := &entity.CustomConfiguration{
		ID:             uuid.New().String()[:32],
		BaseMaterialID: material.ID,
		ShapeID:        shape.ID,
		PackagingID:    packaging.ID,
		Message:        req.Message,
		MessageStyle:   req.MessageStyle,
		MessageFee:     messageFee,
	}

	if err := s.orderRepo.CreateCustomOrder(ctx, order, item, cfg, addOnRows); err != nil {
		// Two in-flight submissions with the same key race past the replay
		// lookup; the loser trips the unique index. Hand back the winner's
		// receipt instead of a write failure.
		if idempotencyKey != "" {
			if existing, lookupErr := s.orderRepo.FindByIdempotencyKey(ctx, customerID, idempotencyKey); lookupErr == nil {
				return replayReceipt(existing), true, nil
			}
		}
		return nil, false, &PersistenceError{Op: "create custom order", Err: err}
	}

	s.logger.Info("Custom order created",
		zap.String("order_id", order.ID),
		zap.String("customer_id", customerID),
		zap.String("total", total.StringFixed(2)),
	)
	if s.hub != nil {
		s.hub.PublishOrderCreated(order.ID, customerID, total.StringFixed(2))
	}

	return &OrderReceipt{
		OrderID:        order.ID,
		CustomConfigID: cfg.ID,
		TotalPrice:     total,
	}, false, nil
}

// replayReceipt rebuilds the original receipt from a previously persisted
// order.
func replayReceipt(existing *entity.Order) *OrderReceipt {
	receipt := &OrderReceipt{OrderID: existing.ID, TotalPrice: existing.Total}
	if len(existing.Items) > 0 && existing.Items[0].CustomConfig != nil {
		receipt.CustomConfigID = existing.Items[0].CustomConfig.ID
	}
	return receipt
}

func (s *OrderService) resolveErr(field, key string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return newValidationError(field, "no active catalog entry for %q", key)
	}
	return fmt.Errorf("resolve %s: %w", field, err)
}

// messageFee prices the personalization message from the pricing_settings
// row; a missing row falls back to the built-in defaults, which are the same
// values the client fallback catalog carries.
func (s *OrderService) messageFee(ctx context.Context, message string) (decimal.Decimal, error) {
	if message == "" {
		return decimal.Zero, nil
	}
	settings, err := s.catalogRepo.GetPricingSettings(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return decimal.Zero, fmt.Errorf("load pricing settings: %w", err)
		}
		fallback := pricing.FallbackCatalog()
		return pricing.MessageFee(fallback.MessageBasePrice, fallback.MessageCharPrice, message), nil
	}
	return pricing.MessageFee(settings.MessageBasePrice, settings.MessageCharPrice, message), nil
}

// Checkout converts the customer's open cart into an order atomically
func (s *OrderService) Checkout(ctx context.Context, customerID string) (*entity.Order, error) {
	cart, err := s.cartRepo.FindOpenByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newValidationError("cart", "no open cart")
		}
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, newValidationError("cart", "cart is empty")
	}

	total := decimal.Zero
	items := make([]entity.OrderItem, 0, len(cart.Items))
	for _, ci := range cart.Items {
		name := ""
		if ci.Product != nil {
			name = ci.Product.Name
		}
		productID := ci.ProductID
		items = append(items, entity.OrderItem{
			ID:        uuid.New().String()[:32],
			ItemType:  entity.OrderItemTypeProduct,
			ProductID: &productID,
			Name:      name,
			Quantity:  ci.Quantity,
			UnitPrice: ci.UnitPrice,
		})
		total = total.Add(ci.Subtotal())
	}

	order := &entity.Order{
		ID:         uuid.New().String()[:32],
		CustomerID: customerID,
		Status:     entity.OrderStatusPending,
		Total:      total,
	}
	if err := s.orderRepo.CreateFromCart(ctx, order, items, cart.ID); err != nil {
		return nil, &PersistenceError{Op: "checkout", Err: err}
	}

	if s.hub != nil {
		s.hub.PublishOrderCreated(order.ID, customerID, total.StringFixed(2))
	}
	return order, nil
}

// ListForCustomer lists the customer's own orders
func (s *OrderService) ListForCustomer(ctx context.Context, customerID string, page, pageSize int) ([]entity.Order, int64, error) {
	return s.orderRepo.FindAll(ctx, page, pageSize, map[string]string{"customer_id": customerID})
}

// GetForCustomer returns one of the customer's own orders
func (s *OrderService) GetForCustomer(ctx context.Context, customerID, orderID string) (*entity.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, repository.ErrNotFound
	}
	return order, nil
}

// List lists all orders (admin)
func (s *OrderService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Order, int64, error) {
	return s.orderRepo.FindAll(ctx, page, pageSize, filters)
}

var validStatusTransitions = map[string][]string{
	entity.OrderStatusPending: {entity.OrderStatusPaid, entity.OrderStatusCancelled},
	entity.OrderStatusPaid:    {entity.OrderStatusShipped, entity.OrderStatusCancelled},
	entity.OrderStatusShipped: {entity.OrderStatusDelivered},
}

// UpdateStatus advances an order through its lifecycle (admin)
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string) error {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	allowed := false
	for _, next := range validStatusTransitions[order.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return newValidationError("status", "cannot transition from %s to %s", order.Status, status)
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, status); err != nil {
		return err
	}
	if s.hub != nil {
		s.hub.PublishOrderStatus(orderID, status)
	}
	return nil
}

var orderExportHeaders = []string{
	"Order ID", "Customer", "Status", "Items", "Total", "Created At",
}

// Export writes the filtered orders to an xlsx workbook (admin)
func (s *OrderService) Export(ctx context.Context, filters map[string]string) (*excelize.File, string, error) {
	orders, _, err := s.orderRepo.FindAll(ctx, 1, 10000, filters)
	if err != nil {
		return nil, "", fmt.Errorf("list orders: %w", err)
	}

	f := excelize.NewFile()
	sheet := "Orders"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, h := range orderExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	grandTotal := decimal.Zero
	for rowIdx, order := range orders {
		row := rowIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), order.ID)
		customerName := order.CustomerID
		if order.Customer != nil {
			customerName = order.Customer.Name
		}
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), customerName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), order.Status)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), len(order.Items))
		total, _ := order.Total.Float64()
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), total)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), order.CreatedAt.Format(time.RFC3339))
		grandTotal = grandTotal.Add(order.Total)
	}

	summaryRow := len(orders) + 2
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow), "Total")
	f.SetCellValue(sheet, fmt.Sprintf("D%d", summaryRow), len(orders))
	sum, _ := grandTotal.Float64()
	f.SetCellValue(sheet, fmt.Sprintf("E%d", summaryRow), sum)
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("F%d", summaryRow), summaryStyle)

	colWidths := []float64{34, 20, 12, 8, 12, 22}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	filename := fmt.Sprintf("orders_%s.xlsx", time.Now().Format("20060102"))
	return f, filename, nil
}
