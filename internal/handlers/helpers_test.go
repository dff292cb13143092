package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/unimart/internal/apperr"
	middleware "github.com/Skotchmaster/unimart/pkg/middleware/auth"
)

var quiet = slog.New(slog.NewJSONHandler(io.Discard, nil))

func TestFail_MapsKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err    error
		status int
		kind   string
		msg    string
	}{
		{fmt.Errorf("product not found: %w", apperr.ErrNotFound), http.StatusNotFound, apperr.KindNotFound, "product not found"},
		{fmt.Errorf("product is already in cart: %w", apperr.ErrConflict), http.StatusConflict, apperr.KindConflict, "product is already in cart"},
		{fmt.Errorf("bad: %w", apperr.ErrValidation), http.StatusBadRequest, apperr.KindValidation, "bad"},
		{errors.New("boom"), http.StatusInternalServerError, apperr.KindInternal, "internal error"},
	}
	for _, tc := range tests {
		err := fail(quiet, "event", tc.err)
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, tc.status, he.Code)
		assert.Equal(t, apperr.Response{Kind: tc.kind, Message: tc.msg}, he.Message)
	}
}

func TestDecodeCartAdd(t *testing.T) {
	t.Parallel()

	reqs, batch, err := decodeCartAdd([]byte(`{"product_id": 3}`))
	require.NoError(t, err)
	assert.False(t, batch)
	require.Len(t, reqs, 1)
	assert.Equal(t, 1, reqs[0].toInput().Quantity)

	reqs, batch, err = decodeCartAdd([]byte("  [{\"product_id\": 1, \"quantity\": 0}, {\"product_id\": 2, \"quantity\": 5}]"))
	require.NoError(t, err)
	assert.True(t, batch)
	require.Len(t, reqs, 2)
	assert.Equal(t, 0, reqs[0].toInput().Quantity)
	assert.Equal(t, uint(2), reqs[1].toInput().ProductID)

	_, _, err = decodeCartAdd([]byte(`{"product_id": "x"}`))
	assert.Error(t, err)
}

func TestPrincipalAndParseID(t *testing.T) {
	t.Parallel()

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, err := principal(c)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	c.Set(middleware.UserIDKey, uint(7))
	id, err := principal(c)
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)

	c.SetParamNames("id")
	c.SetParamValues("0")
	_, err = parseID(c, "id")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	c.SetParamValues("12")
	id, err = parseID(c, "id")
	require.NoError(t, err)
	assert.Equal(t, uint(12), id)
}
