package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/unimart/internal/apperr"
	"github.com/Skotchmaster/unimart/internal/util"
	middleware "github.com/Skotchmaster/unimart/pkg/middleware/auth"
)

// fail logs err under event and turns it into an HTTP error whose body is
// {"kind": ..., "message": ...}.
func fail(l *slog.Logger, event string, err error) error {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		l.Error(event, "status", status, "error", err)
	} else {
		l.Warn(event, "status", status, "error", err)
	}
	return echo.NewHTTPError(status, apperr.ToResponse(err))
}

func badRequest(l *slog.Logger, event, msg string, cause error) error {
	l.Warn(event, "status", http.StatusBadRequest, "error", cause)
	return echo.NewHTTPError(http.StatusBadRequest, apperr.ToResponse(fmt.Errorf("%s: %w", msg, apperr.ErrValidation)))
}

func principal(c echo.Context) (uint, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, fmt.Errorf("authentication required: %w", apperr.ErrUnauthorized)
	}
	return id, nil
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s: %w", name, apperr.ErrValidation)
	}
	return uint(id), nil
}

func pageParams(c echo.Context) (int, int) {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	return page, size
}

func pageResponse[T any](p util.Page[T]) echo.Map {
	return echo.Map{"data": p.Items, "meta": p.Meta()}
}
