package handler

import (
	"errors"

	"github.com/bitfantasy/choco/internal/shop/pricing"
	"github.com/bitfantasy/choco/internal/shop/repository"
	"github.com/bitfantasy/choco/internal/shop/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CatalogHandler customization catalog endpoints. The public component lists
// and the pricing aggregate are what the storefront configurator consumes;
// the Admin* methods manage the underlying rows.
type CatalogHandler struct {
	svc     *service.CatalogService
	pricing *pricing.Service
}

// NewCatalogHandler creates the catalog handler
func NewCatalogHandler(svc *service.CatalogService, pricingSvc *pricing.Service) *CatalogHandler {
	return &CatalogHandler{svc: svc, pricing: pricingSvc}
}

type componentItem struct {
	ID       string          `json:"id"`
	Key      string          `json:"key"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Features []string        `json:"features,omitempty"`
}

// ListBaseMaterials GET /catalog/base-materials
func (h *CatalogHandler) ListBaseMaterials(c *gin.Context) {
	rows, err := h.svc.ListBaseMaterials(c.Request.Context(), false)
	if err != nil {
		InternalError(c, "Failed to list base materials")
		return
	}
	items := make([]componentItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, componentItem{ID: r.ID, Key: r.Key, Name: r.Name, Price: r.Price})
	}
	Success(c, gin.H{"base_materials": items})
}

// ListAddOns GET /catalog/add-ons
func (h *CatalogHandler) ListAddOns(c *gin.Context) {
	rows, err := h.svc.ListAddOns(c.Request.Context(), false)
	if err != nil {
		InternalError(c, "Failed to list add-ons")
		return
	}
	items := make([]componentItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, componentItem{ID: r.ID, Key: r.Key, Name: r.Name, Price: r.Price})
	}
	Success(c, gin.H{"add_ons": items})
}

// ListShapes GET /catalog/shapes
func (h *CatalogHandler) ListShapes(c *gin.Context) {
	rows, err := h.svc.ListShapes(c.Request.Context(), false)
	if err != nil {
		InternalError(c, "Failed to list shapes")
		return
	}
	items := make([]componentItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, componentItem{ID: r.ID, Key: r.Key, Name: r.Name, Price: r.Price})
	}
	Success(c, gin.H{"shapes": items})
}

// ListPackaging GET /catalog/packaging
func (h *CatalogHandler) ListPackaging(c *gin.Context) {
	rows, err := h.svc.ListPackaging(c.Request.Context(), false)
	if err != nil {
		InternalError(c, "Failed to list packaging options")
		return
	}
	items := make([]componentItem, 0, len(rows))
	for _, r := range rows {
		features := make([]string, 0, len(r.Features))
		for _, f := range r.Features {
			if s, ok := f.(string); ok {
				features = append(features, s)
			}
		}
		items = append(items, componentItem{
			ID: r.ID, Key: r.Key, Name: r.Name, Price: r.Price,
			Features: features,
		})
	}
	Success(c, gin.H{"packaging": items})
}

// GetPricing GET /catalog/pricing. Always answers with a usable catalog:
// DB snapshot first, loader's current catalog when the DB is unreachable.
func (h *CatalogHandler) GetPricing(c *gin.Context) {
	snapshot, err := h.svc.PricingSnapshot(c.Request.Context())
	if err != nil {
		snapshot = h.pricing.Current()
	}
	Success(c, snapshot)
}

func (h *CatalogHandler) componentRequest(c *gin.Context) (service.ComponentRequest, bool) {
	var req service.ComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return req, false
	}
	return req, true
}

func (h *CatalogHandler) writeComponentResult(c *gin.Context, created bool, data interface{}, err error) {
	if err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.As(err, &vErr):
			BadRequest(c, vErr.Error())
		case errors.Is(err, repository.ErrNotFound):
			NotFound(c, "Component not found")
		default:
			InternalError(c, "Failed to save component")
		}
		return
	}
	if created {
		Created(c, data)
		return
	}
	Success(c, data)
}

// AdminListComponents GET /admin/catalog/:group (includes inactive rows)
func (h *CatalogHandler) AdminListComponents(c *gin.Context) {
	ctx := c.Request.Context()
	switch c.Param("group") {
	case "base-materials":
		rows, err := h.svc.ListBaseMaterials(ctx, true)
		h.writeComponentResult(c, false, gin.H{"base_materials": rows}, err)
	case "add-ons":
		rows, err := h.svc.ListAddOns(ctx, true)
		h.writeComponentResult(c, false, gin.H{"add_ons": rows}, err)
	case "shapes":
		rows, err := h.svc.ListShapes(ctx, true)
		h.writeComponentResult(c, false, gin.H{"shapes": rows}, err)
	case "packaging":
		rows, err := h.svc.ListPackaging(ctx, true)
		h.writeComponentResult(c, false, gin.H{"packaging": rows}, err)
	default:
		NotFound(c, "Unknown catalog group")
	}
}

// AdminCreateComponent POST /admin/catalog/:group
func (h *CatalogHandler) AdminCreateComponent(c *gin.Context) {
	req, ok := h.componentRequest(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	switch c.Param("group") {
	case "base-materials":
		row, err := h.svc.CreateBaseMaterial(ctx, req)
		h.writeComponentResult(c, true, row, err)
	case "add-ons":
		row, err := h.svc.CreateAddOn(ctx, req)
		h.writeComponentResult(c, true, row, err)
	case "shapes":
		row, err := h.svc.CreateShape(ctx, req)
		h.writeComponentResult(c, true, row, err)
	case "packaging":
		row, err := h.svc.CreatePackaging(ctx, req)
		h.writeComponentResult(c, true, row, err)
	default:
		NotFound(c, "Unknown catalog group")
	}
}

// AdminUpdateComponent PUT /admin/catalog/:group/:id
func (h *CatalogHandler) AdminUpdateComponent(c *gin.Context) {
	req, ok := h.componentRequest(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")
	switch c.Param("group") {
	case "base-materials":
		row, err := h.svc.UpdateBaseMaterial(ctx, id, req)
		h.writeComponentResult(c, false, row, err)
	case "add-ons":
		row, err := h.svc.UpdateAddOn(ctx, id, req)
		h.writeComponentResult(c, false, row, err)
	case "shapes":
		row, err := h.svc.UpdateShape(ctx, id, req)
		h.writeComponentResult(c, false, row, err)
	case "packaging":
		row, err := h.svc.UpdatePackaging(ctx, id, req)
		h.writeComponentResult(c, false, row, err)
	default:
		NotFound(c, "Unknown catalog group")
	}
}

// AdminDeleteComponent DELETE /admin/catalog/:group/:id
func (h *CatalogHandler) AdminDeleteComponent(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	var err error
	switch c.Param("group") {
	case "base-materials":
		err = h.svc.DeleteBaseMaterial(ctx, id)
	case "add-ons":
		err = h.svc.DeleteAddOn(ctx, id)
	case "shapes":
		err = h.svc.DeleteShape(ctx, id)
	case "packaging":
		err = h.svc.DeletePackaging(ctx, id)
	default:
		NotFound(c, "Unknown catalog group")
		return
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "Component not found")
			return
		}
		InternalError(c, "Failed to delete component")
		return
	}
	Success(c, gin.H{"message": "Component deleted"})
}

// MessagePricingRequest message pricing payload
type MessagePricingRequest struct {
	BasePrice decimal.Decimal `json:"base_price"`
	CharPrice decimal.Decimal `json:"char_price"`
}

// AdminUpdateMessagePricing PUT /admin/catalog/message-pricing
func (h *CatalogHandler) AdminUpdateMessagePricing(c *gin.Context) {
	var req MessagePricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}

	settings, err := h.svc.UpdateMessagePricing(c.Request.Context(), req.BasePrice, req.CharPrice)
	if err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			BadRequest(c, vErr.Error())
			return
		}
		InternalError(c, "Failed to update message pricing")
		return
	}
	Success(c, settings)
}
