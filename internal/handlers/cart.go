package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/unimart/internal/logging"
	"github.com/Skotchmaster/unimart/internal/service"
)

type CartHandler struct {
	Svc *service.CartService
}

// cartAddRequest is one line of POST /cart. A missing quantity means 1.
type cartAddRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  *int `json:"quantity"`
}

func (r cartAddRequest) toInput() service.CartAdd {
	q := 1
	if r.Quantity != nil {
		q = *r.Quantity
	}
	return service.CartAdd{ProductID: r.ProductID, Quantity: q}
}

type cartUpdateRequest struct {
	Quantity int `json:"quantity"`
}

// decodeCartAdd accepts either a single object or an array of objects.
func decodeCartAdd(body []byte) ([]cartAddRequest, bool, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var reqs []cartAddRequest
		if err := json.Unmarshal(body, &reqs); err != nil {
			return nil, true, err
		}
		return reqs, true, nil
	}
	var req cartAddRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, false, err
	}
	return []cartAddRequest{req}, false, nil
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	owner, err := principal(c)
	if err != nil {
		return fail(l, "add_to_cart_failed", err)
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return badRequest(l, "add_to_cart_failed", "invalid body", err)
	}
	reqs, batch, err := decodeCartAdd(body)
	if err != nil {
		return badRequest(l, "add_to_cart_failed", "invalid body", err)
	}

	if !batch {
		line, err := h.Svc.Add(ctx, owner, reqs[0].toInput())
		if err != nil {
			return fail(l, "add_to_cart_failed", err)
		}
		l.Info("cart_item_added", "product_id", line.ProductID)
		return c.JSON(http.StatusCreated, line)
	}

	in := make([]service.CartAdd, 0, len(reqs))
	for _, r := range reqs {
		in = append(in, r.toInput())
	}
	lines, err := h.Svc.AddMany(ctx, owner, in)
	if err != nil {
		return fail(l, "add_to_cart_failed", err)
	}
	l.Info("cart_items_added", "count", len(lines))
	return c.JSON(http.StatusCreated, lines)
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.list")

	owner, err := principal(c)
	if err != nil {
		return fail(l, "get_cart_failed", err)
	}
	items, err := h.Svc.GetAll(ctx, owner)
	if err != nil {
		return fail(l, "get_cart_failed", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CartHandler) GetTotal(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.total")

	owner, err := principal(c)
	if err != nil {
		return fail(l, "get_total_failed", err)
	}
	total, err := h.Svc.TotalPrice(ctx, owner)
	if err != nil {
		return fail(l, "get_total_failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"total_price": total})
}

func (h *CartHandler) GetItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	owner, err := principal(c)
	if err != nil {
		return fail(l, "get_cart_item_failed", err)
	}
	productID, err := parseID(c, "product_id")
	if err != nil {
		return fail(l, "get_cart_item_failed", err)
	}
	line, err := h.Svc.Get(ctx, owner, productID)
	if err != nil {
		return fail(l, "get_cart_item_failed", err)
	}
	return c.JSON(http.StatusOK, line)
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	owner, err := principal(c)
	if err != nil {
		return fail(l, "update_cart_item_failed", err)
	}
	productID, err := parseID(c, "product_id")
	if err != nil {
		return fail(l, "update_cart_item_failed", err)
	}
	var req cartUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_cart_item_failed", "invalid body", err)
	}

	line, err := h.Svc.Update(ctx, owner, productID, req.Quantity)
	if err != nil {
		return fail(l, "update_cart_item_failed", err)
	}
	return c.JSON(http.StatusOK, line)
}

func (h *CartHandler) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.delete")

	owner, err := principal(c)
	if err != nil {
		return fail(l, "delete_cart_item_failed", err)
	}
	productID, err := parseID(c, "product_id")
	if err != nil {
		return fail(l, "delete_cart_item_failed", err)
	}
	if err := h.Svc.Delete(ctx, owner, productID); err != nil {
		return fail(l, "delete_cart_item_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	owner, err := principal(c)
	if err != nil {
		return fail(l, "clear_cart_failed", err)
	}
	if err := h.Svc.DeleteAll(ctx, owner); err != nil {
		return fail(l, "clear_cart_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}
