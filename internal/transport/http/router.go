package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/unimart/internal/handlers"
	"github.com/Skotchmaster/unimart/internal/logging"
	middleware "github.com/Skotchmaster/unimart/pkg/middleware/auth"
)

type Deps struct {
	AuthHandler    *handlers.AuthHandler
	ProductHandler *handlers.ProductHandler
	CartHandler    *handlers.CartHandler
	AuthMW         *middleware.AutoRefreshMiddleware
	// Ready reports whether the backing stores answer. Nil means always ready.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready == nil {
			return c.NoContent(http.StatusOK)
		}
		if err := d.Ready(c.Request().Context()); err != nil {
			logging.FromContext(c.Request().Context()).Warn("not_ready", "error", err)
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	v1 := e.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.POST("/logout", d.AuthHandler.LogOut)

	catalog := v1.Group("/catalog")
	catalog.GET("/products", d.ProductHandler.Catalog)
	catalog.GET("/products/search", d.ProductHandler.Search)

	users := v1.Group("/users", d.AuthMW.RequireAuth)
	users.GET("/me", d.AuthHandler.Me)

	products := v1.Group("/products", d.AuthMW.RequireAuth)
	products.POST("", d.ProductHandler.CreateProduct)
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.PATCH("/:id", d.ProductHandler.PatchProduct)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct)

	cart := v1.Group("/cart", d.AuthMW.RequireAuth)
	cart.POST("", d.CartHandler.AddToCart)
	cart.GET("", d.CartHandler.GetCart)
	cart.DELETE("", d.CartHandler.ClearCart)
	cart.GET("/total", d.CartHandler.GetTotal)
	cart.GET("/:product_id", d.CartHandler.GetItem)
	cart.PATCH("/:product_id", d.CartHandler.UpdateItem)
	cart.DELETE("/:product_id", d.CartHandler.DeleteItem)
}
