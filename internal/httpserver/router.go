package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kmoroz/storefront/internal/handlers"
	mwauth "github.com/kmoroz/storefront/internal/middleware/auth"
	"github.com/kmoroz/storefront/internal/models"
	"github.com/kmoroz/storefront/internal/tokens"
)

type Deps struct {
	Codec *tokens.Codec

	AuthHandler     *handlers.AuthHandler
	ProductHandler  *handlers.ProductHandler
	CategoryHandler *handlers.CategoryHandler
	CartHandler     *handlers.CartHandler
	WishlistHandler *handlers.WishlistHandler
	OrderHandler    *handlers.OrderHandler
	ReviewHandler   *handlers.ReviewHandler
	UserHandler     *handlers.UserAdminHandler
	SearchHandler   *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.Validator = NewValidator()
	e.HTTPErrorHandler = HTTPErrorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	gate := mwauth.Middleware(d.Codec)
	customerOnly := mwauth.RequireRole(models.RoleCustomer)
	adminOnly := mwauth.RequireRole(models.RoleAdmin)

	v1 := e.Group("/api/v1")

	authG := v1.Group("/auth")
	authG.POST("/register", d.AuthHandler.Register)
	authG.POST("/login", d.AuthHandler.Login)
	authG.POST("/logout", d.AuthHandler.Logout)
	authG.GET("/me", d.AuthHandler.Me, gate)

	products := v1.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.GET("/:id/reviews", d.ReviewHandler.GetReviews)
	products.POST("/:id/reviews", d.ReviewHandler.CreateReview, gate, customerOnly)

	categories := v1.Group("/categories")
	categories.GET("", d.CategoryHandler.GetCategories)
	categories.GET("/:id", d.CategoryHandler.GetCategory)

	v1.GET("/search", d.SearchHandler.Search)

	cart := v1.Group("/cart", gate, customerOnly)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.POST("/order", d.CartHandler.MakeOrder)
	cart.DELETE("/:id", d.CartHandler.DeleteOneFromCart)
	cart.DELETE("/:id/all", d.CartHandler.DeleteAllFromCart)

	wishlist := v1.Group("/wishlist", gate, customerOnly)
	wishlist.GET("", d.WishlistHandler.GetWishlist)
	wishlist.POST("", d.WishlistHandler.AddToWishlist)
	wishlist.DELETE("/:id", d.WishlistHandler.RemoveFromWishlist)

	orders := v1.Group("/orders", gate, customerOnly)
	orders.GET("", d.OrderHandler.GetMyOrders)
	orders.GET("/:id", d.OrderHandler.GetMyOrder)

	admin := v1.Group("/admin", gate, adminOnly)
	admin.POST("/products", d.ProductHandler.CreateProduct)
	admin.PATCH("/products/:id", d.ProductHandler.PatchProduct)
	admin.DELETE("/products/:id", d.ProductHandler.DeleteProduct)
	admin.POST("/categories", d.CategoryHandler.CreateCategory)
	admin.PATCH("/categories/:id", d.CategoryHandler.PatchCategory)
	admin.DELETE("/categories/:id", d.CategoryHandler.DeleteCategory)
	admin.GET("/orders", d.OrderHandler.ListOrders)
	admin.PATCH("/orders/:id/status", d.OrderHandler.UpdateStatus)
	admin.DELETE("/reviews/:id", d.ReviewHandler.DeleteReview)
	admin.GET("/users", d.UserHandler.ListUsers)
	admin.PATCH("/users/:id/role", d.UserHandler.ChangeRole)
	admin.PATCH("/users/:id/status", d.UserHandler.ChangeStatus)
}
