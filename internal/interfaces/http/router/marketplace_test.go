package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	appcatalog "github.com/marketplace/backend/internal/application/catalog"
	appidentity "github.com/marketplace/backend/internal/application/identity"
	apptrade "github.com/marketplace/backend/internal/application/trade"
	"github.com/marketplace/backend/internal/infrastructure/auth"
	"github.com/marketplace/backend/internal/infrastructure/cache"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/marketplace/backend/internal/infrastructure/feed"
	"github.com/marketplace/backend/internal/infrastructure/persistence"
	"github.com/marketplace/backend/internal/interfaces/http/handler"
	"github.com/marketplace/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const toolFeed = `shop: Tool Depot
goods:
  - external_id: 7
    category: Tools
    name: Widget
    price: 100
    price_rcc: 150
    quantity: 5
    parameters:
      color: red
  - external_id: 8
    category: Tools
    name: Hammer
    price: 300
    price_rcc: 320
    quantity: 2
`

type api struct {
	engine   *gin.Engine
	accounts *appidentity.AccountService
}

func newAPI(t *testing.T) *api {
	t.Helper()
	middleware.SetupValidator()

	db, err := persistence.NewDatabaseWithCustomLogger(&config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: "file::memory:",
	}, gormlogger.Default.LogMode(gormlogger.Silent))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })

	log := zap.NewNop()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "router-test-secret-with-32-characters!",
		AccessTokenExpiration: time.Hour,
		Issuer:                "marketplace-test",
	})
	blacklist := auth.NewInMemoryTokenBlacklist()

	shopRepo := persistence.NewGormShopRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	accounts := appidentity.NewAccountService(persistence.NewGormUserRepository(db.DB), jwtService, blacklist, log)
	catalogService := appcatalog.NewCatalogService(shopRepo, persistence.NewGormCategoryRepository(db.DB), persistence.NewGormProductRepository(db.DB))
	ingestor := appcatalog.NewFeedIngestor(
		persistence.NewGormCatalogTransactionScope(db.DB),
		feed.NewHTTPFetcher(config.FeedConfig{Timeout: 5 * time.Second, MaxSize: 1 << 20}, log),
		feed.NewYAMLDecoder(),
		cache.NewLocker(nil, config.FeedConfig{}, log),
		log,
	)
	baskets := apptrade.NewBasketService(persistence.NewGormTradeTransactionScope(db.DB), orderRepo, log)
	orders := apptrade.NewOrderService(orderRepo, shopRepo, persistence.NewGormShopOrderQuery(db.DB), log)

	engine := NewEngine(EngineConfig{Logger: log, Docs: true})
	r := NewRouter(engine)
	RegisterMarketplace(r, Handlers{
		User:    handler.NewUserHandler(accounts),
		Contact: handler.NewContactHandler(appidentity.NewContactService(persistence.NewGormContactRepository(db.DB))),
		Shop:    handler.NewShopHandler(catalogService, ingestor, orders),
		Catalog: handler.NewCatalogHandler(catalogService),
		Basket:  handler.NewBasketHandler(baskets),
		Order:   handler.NewOrderHandler(baskets, orders),
		System:  handler.NewSystemHandler("marketplace-backend", "test", db),
	}, Guards{
		Authenticate: middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			Logger:         log,
		}),
		Authenticated: []gin.HandlerFunc{middleware.TracingAttributeInjector()},
		AuthRateLimit: middleware.AuthRateLimit(middleware.NewRateLimiter(100, time.Minute), log),
	})
	r.Setup()

	return &api{engine: engine, accounts: accounts}
}

type reply struct {
	code int
	body map[string]any
}

func (r reply) data() map[string]any {
	return r.body["data"].(map[string]any)
}

func (r reply) list() []any {
	return r.body["data"].([]any)
}

func (r reply) errorCode() string {
	if e, ok := r.body["error"].(map[string]any); ok {
		return e["code"].(string)
	}
	return ""
}

func (a *api) call(t *testing.T, method, path, token string, body any) reply {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	out := reply{code: w.Code}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out.body), w.Body.String())
	}
	return out
}

func (a *api) signup(t *testing.T, email, userType string) string {
	t.Helper()
	res := a.call(t, http.MethodPost, "/user/register", "", gin.H{"email": email, "password": "secret123", "type": userType})
	require.Equal(t, http.StatusCreated, res.code, res.body)
	return a.login(t, email)
}

func (a *api) login(t *testing.T, email string) string {
	t.Helper()
	res := a.call(t, http.MethodPost, "/user/login", "", gin.H{"email": email, "password": "secret123"})
	require.Equal(t, http.StatusOK, res.code, res.body)
	return res.data()["access_token"].(string)
}

func feedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestMarketplace_OrderFlow(t *testing.T) {
	a := newAPI(t)
	feedURL := feedServer(t, toolFeed).URL + "/price.yaml"

	shopToken := a.signup(t, "depot@example.com", "shop")
	buyerToken := a.signup(t, "buyer@example.com", "buyer")
	_, err := a.accounts.CreateOperator(context.Background(), "operator@example.com", "secret123")
	require.NoError(t, err)
	adminToken := a.login(t, "operator@example.com")

	// Feed ingestion is reserved for shop accounts
	res := a.call(t, http.MethodPost, "/shop/update", buyerToken, gin.H{"url": feedURL})
	assert.Equal(t, http.StatusForbidden, res.code)
	assert.Equal(t, "NOT_SHOP_OWNER", res.errorCode())

	res = a.call(t, http.MethodPost, "/shop/update", shopToken, gin.H{"url": feedURL})
	require.Equal(t, http.StatusOK, res.code, res.body)
	assert.Equal(t, float64(2), res.data()["products_created"])
	shopID := int64(res.data()["shop_id"].(float64))

	res = a.call(t, http.MethodGet, fmt.Sprintf("/shop/%d", shopID), "", nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "Tool Depot", res.data()["name"])
	assert.Equal(t, feedURL, res.data()["url"])

	res = a.call(t, http.MethodGet, "/shop/mine", shopToken, nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, float64(shopID), res.data()["id"])

	res = a.call(t, http.MethodGet, "/categories", "", nil)
	require.Equal(t, http.StatusOK, res.code)
	require.Len(t, res.list(), 1)
	assert.Equal(t, "Tools", res.list()[0].(map[string]any)["name"])

	res = a.call(t, http.MethodGet, fmt.Sprintf("/products?shop_id=%d&order_by=name&order_dir=asc", shopID), "", nil)
	require.Equal(t, http.StatusOK, res.code, res.body)
	require.Len(t, res.list(), 2)
	productIDs := map[string]int64{}
	for _, p := range res.list() {
		product := p.(map[string]any)
		productIDs[product["name"].(string)] = int64(product["id"].(float64))
	}
	widget := productIDs["Widget"]

	res = a.call(t, http.MethodGet, fmt.Sprintf("/products/%d", widget), "", nil)
	require.Equal(t, http.StatusOK, res.code)
	params := res.data()["parameters"].([]any)
	require.Len(t, params, 1)
	assert.Equal(t, "color", params[0].(map[string]any)["parameter"])
	assert.Equal(t, "red", params[0].(map[string]any)["value"])

	// Repeated adds of the same product are summed
	res = a.call(t, http.MethodPost, "/basket", buyerToken, gin.H{"items": []gin.H{{"product": widget, "quantity": 2}}})
	require.Equal(t, http.StatusOK, res.code, res.body)
	res = a.call(t, http.MethodPost, "/basket", buyerToken, gin.H{"items": []gin.H{{"product": widget, "quantity": 3}}})
	require.Equal(t, http.StatusOK, res.code)
	lines := res.data()["items"].([]any)
	require.Len(t, lines, 1)
	assert.Equal(t, float64(5), lines[0].(map[string]any)["quantity"])
	assert.Equal(t, float64(750), res.data()["total_price"])

	res = a.call(t, http.MethodPut, "/basket", buyerToken, gin.H{"items": []gin.H{
		{"product": widget, "quantity": 5},
		{"product": productIDs["Hammer"], "quantity": 1},
	}})
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, float64(5*150+320), res.data()["total_price"])

	res = a.call(t, http.MethodDelete, "/basket", buyerToken, gin.H{"items": []int64{productIDs["Hammer"]}})
	require.Equal(t, http.StatusOK, res.code)
	assert.Len(t, res.data()["items"].([]any), 1)

	// Checkout needs a delivery contact
	res = a.call(t, http.MethodPost, "/order", buyerToken, nil)
	assert.Equal(t, http.StatusConflict, res.code)
	assert.Equal(t, "NO_CONTACT", res.errorCode())

	res = a.call(t, http.MethodPost, "/user/contact", buyerToken, gin.H{
		"city": "Moscow", "street": "Arbat", "house": "10", "phone": "+79990001122",
	})
	require.Equal(t, http.StatusCreated, res.code, res.body)

	res = a.call(t, http.MethodPost, "/order", buyerToken, nil)
	require.Equal(t, http.StatusCreated, res.code, res.body)
	assert.Equal(t, "new", res.data()["status"])
	orderID := int64(res.data()["id"].(float64))

	res = a.call(t, http.MethodGet, "/basket", buyerToken, nil)
	assert.Equal(t, true, res.data()["empty"])

	res = a.call(t, http.MethodPost, "/order", buyerToken, nil)
	assert.Equal(t, http.StatusConflict, res.code)
	assert.Equal(t, "EMPTY_BASKET", res.errorCode())

	// The shop sees the order with its own lines only
	res = a.call(t, http.MethodGet, "/shop/orders", shopToken, nil)
	require.Equal(t, http.StatusOK, res.code, res.body)
	require.Len(t, res.list(), 1)
	shopOrder := res.list()[0].(map[string]any)
	assert.Equal(t, float64(orderID), shopOrder["order_id"])
	assert.Equal(t, "buyer@example.com", shopOrder["user_email"])
	assert.Equal(t, "Moscow", shopOrder["contact"].(map[string]any)["city"])
	products := shopOrder["products"].([]any)
	require.Len(t, products, 1)
	assert.Equal(t, float64(7), products[0].(map[string]any)["external_id"])
	assert.Equal(t, float64(5), products[0].(map[string]any)["quantity"])

	res = a.call(t, http.MethodGet, "/shop/orders?status=confirmed", shopToken, nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Empty(t, res.list())

	res = a.call(t, http.MethodGet, "/shop/orders", buyerToken, nil)
	assert.Equal(t, http.StatusForbidden, res.code)

	// Status changes are reserved for operators
	path := fmt.Sprintf("/order/%d/status", orderID)
	res = a.call(t, http.MethodPatch, path, buyerToken, gin.H{"status": "confirmed"})
	assert.Equal(t, http.StatusForbidden, res.code)
	assert.Equal(t, "NOT_ADMIN", res.errorCode())

	res = a.call(t, http.MethodPatch, path, adminToken, gin.H{"status": "confirmed"})
	require.Equal(t, http.StatusOK, res.code, res.body)
	assert.Equal(t, "confirmed", res.data()["status"])

	res = a.call(t, http.MethodPatch, path, adminToken, gin.H{"status": "basket"})
	assert.Equal(t, http.StatusConflict, res.code)

	res = a.call(t, http.MethodGet, "/order", buyerToken, nil)
	require.Equal(t, http.StatusOK, res.code)
	require.Len(t, res.list(), 1)
	assert.Equal(t, "confirmed", res.list()[0].(map[string]any)["status"])

	res = a.call(t, http.MethodGet, fmt.Sprintf("/order/%d", orderID), buyerToken, nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, float64(750), res.data()["total_price"])

	res = a.call(t, http.MethodGet, fmt.Sprintf("/order/%d", orderID), shopToken, nil)
	assert.Equal(t, http.StatusNotFound, res.code, "orders are private to their buyer")
}

func TestMarketplace_ClosedShopHidesProducts(t *testing.T) {
	a := newAPI(t)
	shopToken := a.signup(t, "depot@example.com", "shop")

	res := a.call(t, http.MethodPost, "/shop/update", shopToken, gin.H{"url": feedServer(t, toolFeed).URL})
	require.Equal(t, http.StatusOK, res.code, res.body)

	res = a.call(t, http.MethodPatch, "/shop/state", shopToken, gin.H{"state": false})
	require.Equal(t, http.StatusOK, res.code, res.body)
	assert.Equal(t, false, res.data()["state"])

	res = a.call(t, http.MethodGet, "/products", "", nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Empty(t, res.list())

	res = a.call(t, http.MethodPatch, "/shop/state", shopToken, gin.H{})
	assert.Equal(t, http.StatusBadRequest, res.code, "state is required")
}

func TestMarketplace_Authentication(t *testing.T) {
	a := newAPI(t)

	res := a.call(t, http.MethodGet, "/basket", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.code)

	res = a.call(t, http.MethodGet, "/basket", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, res.code)
	assert.Equal(t, "TOKEN_INVALID", res.errorCode())

	token := a.signup(t, "buyer@example.com", "buyer")
	res = a.call(t, http.MethodGet, "/user/me", token, nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "buyer@example.com", res.data()["email"])

	res = a.call(t, http.MethodPost, "/user/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, res.code)

	res = a.call(t, http.MethodGet, "/basket", token, nil)
	assert.Equal(t, http.StatusUnauthorized, res.code)
	assert.Equal(t, "TOKEN_REVOKED", res.errorCode())

	fresh := a.login(t, "buyer@example.com")
	res = a.call(t, http.MethodGet, "/basket", fresh, nil)
	assert.Equal(t, http.StatusOK, res.code)
}

func TestMarketplace_SystemRoutes(t *testing.T) {
	a := newAPI(t)

	res := a.call(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "healthy", res.data()["status"])

	res = a.call(t, http.MethodGet, "/no-such-route", "", nil)
	assert.Equal(t, http.StatusNotFound, res.code)
	assert.Equal(t, "ROUTE_NOT_FOUND", res.errorCode())

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
