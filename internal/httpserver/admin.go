package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/stationery_shop/internal/logging"
	"github.com/Skotchmaster/stationery_shop/internal/models"
	"github.com/Skotchmaster/stationery_shop/internal/service"
	"github.com/Skotchmaster/stationery_shop/internal/transport"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminHTTP struct {
	Catalog  *service.CatalogService
	Importer *service.Importer
	Address  *service.AddressService
	Orders   *service.OrderService
}

func (h *AdminHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_product")

	var req service.ProductInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "product_create_failed", "invalid body", err)
	}

	p, err := h.Catalog.CreateProduct(ctx, req)
	if err != nil {
		return writeError(c, l, "product_create_failed", err)
	}

	l.Info("product_create_success", "product_id", p.ID)
	return c.JSON(http.StatusCreated, transport.Product(*p))
}

func (h *AdminHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.patch_product")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, l, "product_patch_failed", err.Error(), err)
	}
	var req service.ProductPatch
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "product_patch_failed", "invalid body", err)
	}

	p, err := h.Catalog.PatchProduct(ctx, id, req)
	if err != nil {
		return writeError(c, l, "product_patch_failed", err)
	}

	l.Info("product_patch_success", "product_id", id)
	return c.JSON(http.StatusOK, transport.Product(*p))
}

func (h *AdminHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_product")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, l, "product_delete_failed", err.Error(), err)
	}
	if err := h.Catalog.DeleteProduct(ctx, id); err != nil {
		return writeError(c, l, "product_delete_failed", err)
	}

	l.Info("product_delete_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHTTP) UploadImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.upload_image")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, l, "image_upload_failed", err.Error(), err)
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return badRequest(c, l, "image_upload_failed", "image file required", err)
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, l, "image_upload_failed", err)
	}
	defer f.Close()

	p, err := h.Catalog.UploadImage(ctx, id, fh.Filename, f)
	if err != nil {
		return writeError(c, l, "image_upload_failed", err)
	}

	l.Info("image_upload_success", "product_id", id, "image", p.Image)
	return c.JSON(http.StatusOK, transport.Product(*p))
}

func (h *AdminHTTP) ImportProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.import_products")

	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, l, "import_failed", "xlsx file required", err)
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, l, "import_failed", err)
	}
	defer f.Close()

	res, err := h.Importer.Import(ctx, f, fh.Size)
	if err != nil {
		return writeError(c, l, "import_failed", err)
	}

	l.Info("import_success", "created", res.Created, "updated", res.Updated, "skipped", res.Skipped)
	return c.JSON(http.StatusOK, transport.ImportResponse{Created: res.Created, Updated: res.Updated, Skipped: res.Skipped})
}

func (h *AdminHTTP) ExportProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.export_products")

	data, err := h.Importer.Export(ctx)
	if err != nil {
		return writeError(c, l, "export_failed", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.xlsx"`)
	return c.Blob(http.StatusOK, xlsxContentType, data)
}

func (h *AdminHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_category")

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "category_create_failed", "invalid body", err)
	}
	cat, err := h.Catalog.CreateCategory(ctx, req.Title, req.Slug, req.Ordering)
	if err != nil {
		return writeError(c, l, "category_create_failed", err)
	}

	l.Info("category_create_success", "category_id", cat.ID)
	return c.JSON(http.StatusCreated, transport.Category(*cat))
}

func (h *AdminHTTP) ListRegions(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_regions")

	regs, err := h.Address.Regions(ctx)
	if err != nil {
		return writeError(c, l, "list_regions_failed", err)
	}
	return c.JSON(http.StatusOK, regions(regs))
}

func (h *AdminHTTP) CreateRegion(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_region")

	var req transport.RegionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "region_create_failed", "invalid body", err)
	}
	reg, err := h.Address.CreateRegion(ctx, req.Name)
	if err != nil {
		return writeError(c, l, "region_create_failed", err)
	}

	l.Info("region_create_success", "region_id", reg.ID)
	return c.JSON(http.StatusCreated, transport.RegionResponse{ID: reg.ID, Name: reg.Name})
}

func (h *AdminHTTP) CreateSubRegion(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_subregion")

	regionID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, l, "subregion_create_failed", err.Error(), err)
	}
	var req transport.RegionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "subregion_create_failed", "invalid body", err)
	}
	sr, err := h.Address.CreateSubRegion(ctx, regionID, req.Name)
	if err != nil {
		return writeError(c, l, "subregion_create_failed", err)
	}

	l.Info("subregion_create_success", "subregion_id", sr.ID)
	return c.JSON(http.StatusCreated, transport.RegionResponse{ID: sr.ID, Name: sr.Name})
}

func (h *AdminHTTP) fulfil(c echo.Context, name string, step func(id uint) (*models.Order, error)) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "admin."+name)

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, l, name+"_failed", err.Error(), err)
	}
	o, err := step(id)
	if err != nil {
		return writeError(c, l, name+"_failed", err)
	}

	l.Info(name+"_success", "order_id", o.ID, "order_status", o.Status)
	return c.JSON(http.StatusOK, transport.Order(*o))
}

func (h *AdminHTTP) ShipOrder(c echo.Context) error {
	return h.fulfil(c, "ship_order", func(id uint) (*models.Order, error) {
		return h.Orders.Ship(c.Request().Context(), id)
	})
}

func (h *AdminHTTP) DeliverOrder(c echo.Context) error {
	return h.fulfil(c, "deliver_order", func(id uint) (*models.Order, error) {
		return h.Orders.Deliver(c.Request().Context(), id)
	})
}

func (h *AdminHTTP) GrantRefund(c echo.Context) error {
	return h.fulfil(c, "grant_refund", func(id uint) (*models.Order, error) {
		return h.Orders.GrantRefund(c.Request().Context(), id)
	})
}
