package handler

import (
	"github.com/gin-gonic/gin"
	appcatalog "github.com/marketplace/backend/internal/application/catalog"
	apptrade "github.com/marketplace/backend/internal/application/trade"
)

// ShopHandler serves shop listings and the shop owner's partner endpoints
type ShopHandler struct {
	BaseHandler
	catalogService *appcatalog.CatalogService
	ingestor       *appcatalog.FeedIngestor
	orderService   *apptrade.OrderService
}

// NewShopHandler creates a new shop handler
func NewShopHandler(
	catalogService *appcatalog.CatalogService,
	ingestor *appcatalog.FeedIngestor,
	orderService *apptrade.OrderService,
) *ShopHandler {
	return &ShopHandler{
		catalogService: catalogService,
		ingestor:       ingestor,
		orderService:   orderService,
	}
}

// List handles GET /shop
func (h *ShopHandler) List(c *gin.Context) {
	var filter appcatalog.ShopListFilter
	if !bindQuery(c, &filter) {
		return
	}

	page, err := h.catalogService.ListShops(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	Paginated(c, page)
}

// Get handles GET /shop/{id}
func (h *ShopHandler) Get(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	shop, err := h.catalogService.GetShop(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, shop)
}

// Mine handles GET /shop/mine
func (h *ShopHandler) Mine(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	shop, err := h.catalogService.GetMyShop(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, shop)
}

// Update handles POST /shop/update
func (h *ShopHandler) Update(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}
	var req appcatalog.IngestFeedRequest
	if !bindJSON(c, &req) {
		return
	}

	summary, err := h.ingestor.Ingest(c.Request.Context(), actor, req.URL)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// SetState handles PATCH /shop/state
func (h *ShopHandler) SetState(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}
	var req appcatalog.SetShopStateRequest
	if !bindJSON(c, &req) {
		return
	}

	shop, err := h.catalogService.SetShopState(c.Request.Context(), actor, *req.State)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, shop)
}

// Orders handles GET /shop/orders
func (h *ShopHandler) Orders(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}
	var filter apptrade.ShopOrdersFilter
	if !bindQuery(c, &filter) {
		return
	}

	orders, err := h.orderService.ListShopOrders(c.Request.Context(), actor, filter.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, orders)
}
