package router

import (
	"github.com/gin-gonic/gin"
	"github.com/marketplace/backend/internal/interfaces/http/handler"
	"github.com/marketplace/backend/internal/interfaces/http/middleware"
)

// Handlers groups the HTTP handlers of the marketplace API
type Handlers struct {
	User    *handler.UserHandler
	Contact *handler.ContactHandler
	Shop    *handler.ShopHandler
	Catalog *handler.CatalogHandler
	Basket  *handler.BasketHandler
	Order   *handler.OrderHandler
	System  *handler.SystemHandler
}

// Guards are the access middlewares applied per route
type Guards struct {
	// Authenticate resolves the bearer token into an actor
	Authenticate gin.HandlerFunc
	// Authenticated runs after Authenticate on protected routes, e.g. span
	// attributes and profiling labels that need the actor
	Authenticated []gin.HandlerFunc
	// AuthRateLimit throttles login and registration; optional
	AuthRateLimit gin.HandlerFunc
}

func (g Guards) chain(extra ...gin.HandlerFunc) []gin.HandlerFunc {
	handlers := make([]gin.HandlerFunc, 0, 1+len(g.Authenticated)+len(extra))
	handlers = append(handlers, g.Authenticate)
	handlers = append(handlers, g.Authenticated...)
	return append(handlers, extra...)
}

// RegisterMarketplace adds every marketplace route group to r
func RegisterMarketplace(r *Router, h Handlers, g Guards) {
	requireShop := middleware.RequireShop()
	credentials := func(next gin.HandlerFunc) []gin.HandlerFunc {
		if g.AuthRateLimit == nil {
			return []gin.HandlerFunc{next}
		}
		return []gin.HandlerFunc{g.AuthRateLimit, next}
	}

	userRoutes := NewDomainGroup("user", "/user")
	userRoutes.POST("/register", credentials(h.User.Register)...)
	userRoutes.POST("/login", credentials(h.User.Login)...)
	userRoutes.POST("/logout", g.chain(h.User.Logout)...)
	userRoutes.GET("/me", g.chain(h.User.Me)...)
	contactRoutes := userRoutes.Group("contact", "/contact").Use(g.chain()...)
	contactRoutes.GET("", h.Contact.Get).
		POST("", h.Contact.Create).
		PUT("", h.Contact.Update).
		DELETE("", h.Contact.Delete)

	shopRoutes := NewDomainGroup("shop", "/shop")
	shopRoutes.GET("", h.Shop.List)
	shopRoutes.GET("/mine", g.chain(requireShop, h.Shop.Mine)...)
	shopRoutes.GET("/orders", g.chain(requireShop, h.Shop.Orders)...)
	shopRoutes.POST("/update", g.chain(requireShop, h.Shop.Update)...)
	shopRoutes.PATCH("/state", g.chain(requireShop, h.Shop.SetState)...)
	shopRoutes.GET("/:id", h.Shop.Get)

	categoryRoutes := NewDomainGroup("categories", "/categories")
	categoryRoutes.GET("", h.Catalog.ListCategories)

	productRoutes := NewDomainGroup("products", "/products")
	productRoutes.GET("", h.Catalog.ListProducts)
	productRoutes.GET("/:id", h.Catalog.GetProduct)

	basketRoutes := NewDomainGroup("basket", "/basket").Use(g.chain()...)
	basketRoutes.GET("", h.Basket.View).
		POST("", h.Basket.Add).
		PUT("", h.Basket.Replace).
		DELETE("", h.Basket.Remove).
		DELETE("/clear", h.Basket.Clear)

	orderRoutes := NewDomainGroup("order", "/order").Use(g.chain()...)
	orderRoutes.GET("", h.Order.List).
		POST("", h.Order.Checkout).
		GET("/:id", h.Order.Get).
		PATCH("/:id/status", middleware.RequireAdmin(), h.Order.ChangeStatus)

	systemRoutes := NewDomainGroup("system", "")
	systemRoutes.GET("/health", h.System.Health)
	systemRoutes.GET("/system/info", h.System.GetSystemInfo)

	r.Register(userRoutes).
		Register(shopRoutes).
		Register(categoryRoutes).
		Register(productRoutes).
		Register(basketRoutes).
		Register(orderRoutes).
		Register(systemRoutes)
}
