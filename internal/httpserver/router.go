package httpserver

import (
	"log"

	cartsvc "bazaar/internal/service/cart"
	sessionsvc "bazaar/internal/service/session"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps carries the services the router exposes.
type Deps struct {
	SessionSvc      *sessionsvc.Service
	CartSvc         *cartsvc.Service
	DefaultCurrency string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.Default())

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	currency := deps.DefaultCurrency
	if currency == "" {
		currency = "USD"
	}
	h := &handlers{session: deps.SessionSvc, carts: deps.CartSvc, defaultCurrency: currency}

	router.POST("/signup", h.signup)
	router.POST("/login", h.login)
	router.POST("/refresh", h.refresh)
	router.POST("/logout", h.logout)

	carts := router.Group("/carts")
	carts.POST("", h.createCart)
	carts.GET("/:id", h.getCart)
	carts.POST("/:id/items", h.addItem)
	carts.DELETE("/:id/items", h.removeItem)
	carts.POST("/:id/discounts/:discountId", h.applyDiscount)
	carts.DELETE("/:id/discounts/:discountId", h.removeDiscount)

	me := router.Group("/me", h.requireAccessToken)
	me.GET("", h.currentCustomer)
	me.PUT("", h.updateCustomer)
	me.GET("/cart", h.currentCart)

	return router, nil
}
