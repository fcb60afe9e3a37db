package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/stationery_shop/internal/logging"
	"github.com/Skotchmaster/stationery_shop/internal/models"
	"github.com/Skotchmaster/stationery_shop/internal/service"
	"github.com/Skotchmaster/stationery_shop/internal/transport"
	"github.com/Skotchmaster/stationery_shop/internal/util"
)

type AddressHTTP struct {
	Svc *service.AddressService
}

func regions(items []models.Region) []transport.RegionResponse {
	out := make([]transport.RegionResponse, len(items))
	for i, r := range items {
		out[i] = transport.RegionResponse{ID: r.ID, Name: r.Name}
	}
	return out
}

func subRegions(items []models.SubRegion) []transport.RegionResponse {
	out := make([]transport.RegionResponse, len(items))
	for i, r := range items {
		out[i] = transport.RegionResponse{ID: r.ID, Name: r.Name}
	}
	return out
}

// ListAddresses returns the address book together with the regions for the add form.
func (h *AddressHTTP) ListAddresses(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.list")

	userID, err := GetID(c)
	if err != nil {
		return writeError(c, l, "list_addresses_failed", err)
	}
	addrs, err := h.Svc.List(ctx, userID)
	if err != nil {
		return writeError(c, l, "list_addresses_failed", err)
	}
	regs, err := h.Svc.Regions(ctx)
	if err != nil {
		return writeError(c, l, "list_addresses_failed", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"addresses": transport.Addresses(addrs),
		"regions":   regions(regs),
	})
}

func (h *AddressHTTP) AddAddress(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.add")

	userID, err := GetID(c)
	if err != nil {
		return writeError(c, l, "add_address_failed", err)
	}
	var form service.AddressForm
	if err := c.Bind(&form); err != nil {
		return badRequest(c, l, "add_address_failed", "invalid body", err)
	}

	a, err := h.Svc.Add(ctx, userID, form)
	if err != nil {
		return writeError(c, l, "add_address_failed", err)
	}

	l.Info("add_address_success", "address_id", a.ID)
	return c.JSON(http.StatusCreated, transport.MessageResponse{Message: "Address added."})
}

func (h *AddressHTTP) RemoveAddress(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.remove")

	userID, err := GetID(c)
	if err != nil {
		return writeError(c, l, "remove_address_failed", err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, l, "remove_address_failed", err.Error(), err)
	}

	if err := h.Svc.Remove(ctx, userID, id); err != nil {
		return writeError(c, l, "remove_address_failed", err)
	}

	l.Info("remove_address_success", "address_id", id)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Address removed."})
}

func (h *AddressHTTP) LoadSubRegions(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.load_subregions")

	regionID, ok := util.ParseUint(c.QueryParam("region_id"))
	if !ok {
		return badRequest(c, l, "load_subregions_failed", "region_id required", nil)
	}
	items, err := h.Svc.SubRegions(ctx, regionID)
	if err != nil {
		return writeError(c, l, "load_subregions_failed", err)
	}
	return c.JSON(http.StatusOK, subRegions(items))
}
