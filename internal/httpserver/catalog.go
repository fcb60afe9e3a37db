package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/stationery_shop/internal/logging"
	"github.com/Skotchmaster/stationery_shop/internal/service"
	"github.com/Skotchmaster/stationery_shop/internal/transport"
	"github.com/Skotchmaster/stationery_shop/internal/util"
)

const (
	actionAddToCart = "add_to_cart"
	actionReview    = "review"
)

type CatalogHTTP struct {
	Svc          *service.CatalogService
	Cart         *service.CartService
	Reviews      *service.ReviewService
	CookieSecure bool
}

func productList(pl *service.ProductList) transport.ProductListResponse {
	out := transport.ProductListResponse{Data: transport.Products(pl.Items), Meta: pl.Meta}
	if pl.Category != nil {
		cat := transport.Category(*pl.Category)
		out.Category = &cat
	}
	return out
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_products")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	list, err := h.Svc.ListProducts(ctx, c.Param("slug"), c.QueryParam("q"), page)
	if err != nil {
		return writeError(c, l, "list_products_failed", err)
	}

	return c.JSON(http.StatusOK, productList(list))
}

func (h *CatalogHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_categories")

	cats, err := h.Svc.ListCategories(ctx)
	if err != nil {
		return writeError(c, l, "list_categories_failed", err)
	}
	out := make([]transport.CategoryResponse, len(cats))
	for i, cat := range cats {
		out[i] = transport.Category(cat)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.ProductPageSize)

	list, err := h.Svc.Search(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		return writeError(c, l, "search_failed", err)
	}

	l.Info("search_success", "total", list.Meta.Total)
	return c.JSON(http.StatusOK, productList(list))
}

func (h *CatalogHTTP) ProductPage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.product_page")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	view, err := h.Svc.ProductPage(ctx, c.Param("slug"), page)
	if err != nil {
		return writeError(c, l, "product_page_failed", err)
	}

	return c.JSON(http.StatusOK, transport.ProductPageResponse{
		Product: transport.Product(*view.Product),
		Stats: transport.ReviewStatsResponse{
			Average: view.Stats.Average.StringFixed(1),
			Stars:   view.Stats.Stars,
			Count:   view.Stats.Count,
		},
		Reviews: transport.ReviewPageResponse{
			Data: transport.Reviews(view.Reviews.Items),
			Meta: view.Reviews.Meta,
		},
		Suggestions: transport.Products(view.Suggestions),
	})
}

// ProductAction handles the two forms of the product page.
func (h *CatalogHTTP) ProductAction(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.product_action")

	userID, err := GetID(c)
	if err != nil {
		return writeError(c, l, "product_action_failed", err)
	}

	var req transport.ProductActionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "product_action_failed", "invalid body", err)
	}

	p, err := h.Svc.GetProductBySlug(ctx, c.Param("slug"))
	if err != nil {
		return writeError(c, l, "product_action_failed", err)
	}

	switch req.Action {
	case actionAddToCart:
		cart, err := h.Cart.Add(ctx, userID, p.ID, req.Quantity)
		if err != nil {
			return writeError(c, l, "add_to_cart_failed", err)
		}
		setItemsTotal(c, cart.ItemsTotal, h.CookieSecure)

		l.Info("add_to_cart_success", "product_id", p.ID, "quantity", req.Quantity)
		resp := transport.Cart(cart.Order, cart.Items, cart.Total)
		resp.Message = "Item added to cart."
		return c.JSON(http.StatusOK, resp)

	case actionReview:
		rv, err := h.Reviews.Submit(ctx, p.ID, userID, service.ReviewForm{
			Subject: req.Subject,
			Comment: req.Comment,
			Rating:  req.Rating,
		})
		if err != nil {
			return writeError(c, l, "submit_review_failed", err)
		}

		l.Info("submit_review_success", "product_id", p.ID, "rating", rv.Rating)
		return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Thank you! Your review has been submitted."})
	}

	return badRequest(c, l, "product_action_failed", "unknown action", nil)
}

func (h *CatalogHTTP) ReviewsPage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.reviews_page")

	productID, ok := util.ParseUint(c.QueryParam("product_id"))
	if !ok {
		return badRequest(c, l, "reviews_page_failed", "product_id required", nil)
	}
	page := util.ParseIntDefault(c.QueryParam("page"), 1)

	rp, err := h.Reviews.List(ctx, productID, page)
	if err != nil {
		return writeError(c, l, "reviews_page_failed", err)
	}

	return c.JSON(http.StatusOK, transport.ReviewPageResponse{Data: transport.Reviews(rp.Items), Meta: rp.Meta})
}
