package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/unimart/internal/logging"
	"github.com/Skotchmaster/unimart/internal/service"
)

type ProductHandler struct {
	Svc *service.ProductService
}

type productRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	IsActive    bool            `json:"is_active"`
}

type productPatchRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	IsActive    *bool            `json:"is_active"`
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	owner, err := principal(c)
	if err != nil {
		return fail(l, "create_product_failed", err)
	}
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_product_failed", "invalid body", err)
	}

	p, err := h.Svc.Add(ctx, owner, service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return fail(l, "create_product_failed", err)
	}

	l.Info("product_created", "product_id", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list")

	owner, err := principal(c)
	if err != nil {
		return fail(l, "get_products_failed", err)
	}
	items, err := h.Svc.GetAll(ctx, owner)
	if err != nil {
		return fail(l, "get_products_failed", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get")

	owner, err := principal(c)
	if err != nil {
		return fail(l, "get_product_failed", err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "get_product_failed", err)
	}
	p, err := h.Svc.Get(ctx, id, owner)
	if err != nil {
		return fail(l, "get_product_failed", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch")

	owner, err := principal(c)
	if err != nil {
		return fail(l, "patch_product_failed", err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "patch_product_failed", err)
	}
	var req productPatchRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "patch_product_failed", "invalid body", err)
	}

	p, err := h.Svc.Update(ctx, id, owner, service.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return fail(l, "patch_product_failed", err)
	}

	l.Info("product_updated", "product_id", p.ID)
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	owner, err := principal(c)
	if err != nil {
		return fail(l, "delete_product_failed", err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "delete_product_failed", err)
	}
	if err := h.Svc.Delete(ctx, id, owner); err != nil {
		return fail(l, "delete_product_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Catalog lists active products of every owner, paginated.
func (h *ProductHandler) Catalog(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list")

	page, size := pageParams(c)
	res, err := h.Svc.Catalog(ctx, page, size)
	if err != nil {
		return fail(l, "catalog_failed", err)
	}
	return c.JSON(http.StatusOK, pageResponse(res))
}

func (h *ProductHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search")

	page, size := pageParams(c)
	res, err := h.Svc.Search(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		return fail(l, "search_failed", err)
	}
	return c.JSON(http.StatusOK, pageResponse(res))
}
