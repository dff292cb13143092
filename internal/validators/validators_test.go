package validators

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/unimart/internal/apperr"
	"github.com/Skotchmaster/unimart/internal/models"
)

func TestProductInCart(t *testing.T) {
	t.Parallel()

	require.NoError(t, ProductInCart(nil))
	err := ProductInCart(&models.CartItem{ProductID: 1})
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "product is already in cart", apperr.Message(err))
}

func TestQuantity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		q         int
		addErr    bool
		updateErr bool
	}{
		{name: "negative", q: -1, addErr: true, updateErr: true},
		{name: "zero", q: 0, addErr: false, updateErr: true},
		{name: "positive", q: 3, addErr: false, updateErr: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if tc.addErr {
				require.ErrorIs(t, AddQuantity(tc.q), apperr.ErrValidation)
			} else {
				require.NoError(t, AddQuantity(tc.q))
			}
			if tc.updateErr {
				require.ErrorIs(t, UpdateQuantity(tc.q), apperr.ErrValidation)
			} else {
				require.NoError(t, UpdateQuantity(tc.q))
			}
		})
	}
}

func TestPriceAndName(t *testing.T) {
	t.Parallel()

	require.NoError(t, Price(decimal.Zero))
	require.ErrorIs(t, Price(decimal.NewFromInt(-1)), apperr.ErrValidation)
	require.NoError(t, Price(decimal.RequireFromString("10.50")))
	require.NoError(t, Price(decimal.RequireFromString("1.500")))
	require.ErrorIs(t, Price(decimal.RequireFromString("0.333")), apperr.ErrValidation)
	require.NoError(t, Price(decimal.RequireFromString("9999999999.99")))
	require.ErrorIs(t, Price(decimal.RequireFromString("10000000000")), apperr.ErrValidation)

	require.NoError(t, ProductName("lamp"))
	require.ErrorIs(t, ProductName("   "), apperr.ErrValidation)
	require.NoError(t, ProductName(strings.Repeat("я", MaxProductName)))
	require.ErrorIs(t, ProductName(strings.Repeat("a", MaxProductName+1)), apperr.ErrValidation)
}

func TestPassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		confirm  string
		wantErr  bool
	}{
		{name: "valid", password: "Secret!12", confirm: "Secret!12"},
		{name: "too short", password: "Se!1", confirm: "Se!1", wantErr: true},
		{name: "no uppercase", password: "secret!12", confirm: "secret!12", wantErr: true},
		{name: "no special", password: "Secret123", confirm: "Secret123", wantErr: true},
		{name: "mismatch", password: "Secret!12", confirm: "Secret!13", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := Password(tc.password, tc.confirm)
			if tc.wantErr {
				require.ErrorIs(t, err, apperr.ErrValidation)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTelephone(t *testing.T) {
	t.Parallel()

	for _, ok := range []string{"", "+79991234567"} {
		require.NoError(t, Telephone(ok), ok)
	}
	for _, bad := range []string{"89991234567", "+7999123456", "+799912345678", "+1 9991234567"} {
		require.ErrorIs(t, Telephone(bad), apperr.ErrValidation, bad)
	}
}

func TestEmail(t *testing.T) {
	t.Parallel()

	require.NoError(t, Email("a@b.c"))
	for _, bad := range []string{"", "@b.c", "a@", "a b@c.d"} {
		require.ErrorIs(t, Email(bad), apperr.ErrValidation, bad)
	}
}
