package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/stationery_shop/internal/db"
	"github.com/Skotchmaster/stationery_shop/internal/logging"
	"github.com/Skotchmaster/stationery_shop/internal/middleware/auth"
	"github.com/Skotchmaster/stationery_shop/internal/middleware/csrf"
)

type Deps struct {
	Catalog  *CatalogHTTP
	Cart     *CartHTTP
	Checkout *CheckoutHTTP
	Wallet   *WalletHTTP
	Address  *AddressHTTP
	Orders   *OrderHTTP
	Auth     *AuthHTTP
	Contact  *ContactHTTP
	Admin    *AdminHTTP

	DB     *gorm.DB
	AuthMW *auth.AutoRefreshMiddleware
	CSRF   csrf.Config
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := db.Ping(c.Request().Context(), d.DB); err != nil {
			logging.FromContext(c.Request().Context()).Error("ready_check_failed", "status", 503, "error", err)
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	authGroup := e.Group("/auth")
	authGroup.POST("/register", d.Auth.Register)
	authGroup.POST("/login", d.Auth.Login)
	authGroup.POST("/refresh", d.Auth.Refresh)
	authGroup.POST("/logout", d.Auth.LogOut)

	authed := d.AuthMW.RequireAuth

	site := e.Group("", csrf.Middleware(d.CSRF))
	site.GET("/", d.Catalog.ListProducts)
	site.GET("/category/:slug", d.Catalog.ListProducts)
	site.GET("/categories", d.Catalog.ListCategories)
	site.GET("/search", d.Catalog.Search)
	site.GET("/product/:slug", d.Catalog.ProductPage)
	site.POST("/product/:slug", d.Catalog.ProductAction, authed)
	site.GET("/ajax/reviews", d.Catalog.ReviewsPage)
	site.GET("/ajax/load-subregions", d.Address.LoadSubRegions)
	site.GET("/contact", d.Contact.ContactInfo)
	site.POST("/contact", d.Contact.Send)

	site.GET("/cart", d.Cart.GetCart, authed)
	site.POST("/cart", d.Cart.CartAction, authed)
	site.GET("/checkout", d.Checkout.Summary, authed)
	site.POST("/checkout", d.Checkout.Checkout, authed)
	site.GET("/addresses", d.Address.ListAddresses, authed)
	site.POST("/addresses/add", d.Address.AddAddress, authed)
	site.POST("/addresses/remove/:id", d.Address.RemoveAddress, authed)
	site.GET("/settings/account", d.Auth.Account, authed)
	site.POST("/settings/account", d.Auth.UpdateAccount, authed)
	site.GET("/wallet", d.Wallet.GetWallet, authed)
	site.POST("/wallet", d.Wallet.TopUp, authed)
	site.GET("/addcard", d.Wallet.ListCards, authed)
	site.POST("/addcard", d.Wallet.AddCard, authed)
	site.DELETE("/cards/:id", d.Wallet.DeleteCard, authed)
	site.GET("/orders", d.Orders.ListOrders, authed)
	site.GET("/orders/:id", d.Orders.GetOrder, authed)
	site.POST("/orders/:id/refund", d.Orders.RequestRefund, authed)

	admin := site.Group("/admin", d.AuthMW.RequireAdmin)
	admin.POST("/products", d.Admin.CreateProduct)
	admin.PATCH("/products/:id", d.Admin.PatchProduct)
	admin.DELETE("/products/:id", d.Admin.DeleteProduct)
	admin.POST("/products/:id/image", d.Admin.UploadImage)
	admin.POST("/products/import", d.Admin.ImportProducts)
	admin.GET("/products/export", d.Admin.ExportProducts)
	admin.GET("/categories", d.Catalog.ListCategories)
	admin.POST("/categories", d.Admin.CreateCategory)
	admin.GET("/regions", d.Admin.ListRegions)
	admin.POST("/regions", d.Admin.CreateRegion)
	admin.POST("/regions/:id/subregions", d.Admin.CreateSubRegion)
	admin.POST("/orders/:id/ship", d.Admin.ShipOrder)
	admin.POST("/orders/:id/deliver", d.Admin.DeliverOrder)
	admin.POST("/orders/:id/refund/grant", d.Admin.GrantRefund)
}
