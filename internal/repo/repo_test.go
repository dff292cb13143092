package repo_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/unimart/internal/apperr"
	"github.com/Skotchmaster/unimart/internal/models"
	"github.com/Skotchmaster/unimart/internal/repo"
	"github.com/Skotchmaster/unimart/internal/testutil"
)

func TestRepository_OwnerIsolation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gdb := testutil.NewDB(t)
	alice := testutil.CreateUser(t, gdb)
	bob := testutil.CreateUser(t, gdb)

	products := repo.NewProductRepo(gdb)
	id, err := products.Add(ctx, &models.Product{
		Name:    "lamp",
		Price:   decimal.RequireFromString("12.50"),
		OwnerID: alice.ID,
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := products.Get(ctx, id, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "lamp", got.Name)

	_, err = products.Get(ctx, id, bob.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	list, err := products.GetAll(ctx, bob.ID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	_, err = products.Update(ctx, id, map[string]any{"name": "stolen"}, bob.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, products.Delete(ctx, id, bob.ID))
	got, err = products.Get(ctx, id, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "lamp", got.Name)
}

func TestRepository_UpdateStripsProtectedColumns(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gdb := testutil.NewDB(t)
	alice := testutil.CreateUser(t, gdb)
	bob := testutil.CreateUser(t, gdb)
	p := testutil.CreateProduct(t, gdb, alice.ID, "3.00")

	products := repo.NewProductRepo(gdb)
	id, err := products.Update(ctx, p.ID, map[string]any{
		"name":     "renamed",
		"owner_id": bob.ID,
		"id":       p.ID + 100,
	}, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, id)

	got, err := products.Get(ctx, p.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, alice.ID, got.OwnerID)

	// nothing writable left: acts as an existence check
	_, err = products.Update(ctx, p.ID, map[string]any{"owner_id": bob.ID}, alice.ID)
	require.NoError(t, err)
	_, err = products.Update(ctx, p.ID+100, map[string]any{}, alice.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRepository_DeleteIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gdb := testutil.NewDB(t)
	alice := testutil.CreateUser(t, gdb)
	p := testutil.CreateProduct(t, gdb, alice.ID, "1.00")

	products := repo.NewProductRepo(gdb)
	require.NoError(t, products.Delete(ctx, p.ID, alice.ID))
	require.NoError(t, products.Delete(ctx, p.ID, alice.ID))

	_, err := products.Get(ctx, p.ID, alice.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRepository_ConstraintViolation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gdb := testutil.NewDB(t)
	alice := testutil.CreateUser(t, gdb)

	users := repo.NewUserRepo(gdb)
	_, err := users.Add(ctx, &models.User{Email: alice.Email, PasswordHash: "x", Role: models.RoleUser})
	require.ErrorIs(t, err, apperr.ErrConstraintViolation)
	assert.ErrorIs(t, err, repo.ErrUniqueViolation)

	products := repo.NewProductRepo(gdb)
	_, err = products.Add(ctx, &models.Product{Name: "ghost", Price: decimal.NewFromInt(1), OwnerID: 9999})
	require.ErrorIs(t, err, apperr.ErrConstraintViolation)
	assert.ErrorIs(t, err, repo.ErrForeignKeyViolation)
	assert.NotErrorIs(t, err, repo.ErrUniqueViolation)
}

func TestUserRepo_ScopedBySelf(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gdb := testutil.NewDB(t)
	alice := testutil.CreateUser(t, gdb)
	bob := testutil.CreateUser(t, gdb)

	users := repo.NewUserRepo(gdb)
	me, err := users.Get(ctx, alice.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.Email, me.Email)

	_, err = users.Get(ctx, alice.ID, bob.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	byEmail, err := users.GetByEmail(ctx, bob.Email)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, byEmail.ID)

	exists, err := users.ExistsByEmailOrTelephone(ctx, "nobody@example.com", nil)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestProductRepo_Catalog(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gdb := testutil.NewDB(t)
	alice := testutil.CreateUser(t, gdb)
	bob := testutil.CreateUser(t, gdb)

	p1 := testutil.CreateProduct(t, gdb, alice.ID, "1.00")
	p2 := testutil.CreateProduct(t, gdb, bob.ID, "2.00")
	hidden := testutil.CreateProduct(t, gdb, bob.ID, "3.00")
	require.NoError(t, gdb.Model(hidden).Update("is_active", false).Error)

	products := repo.NewProductRepo(gdb)
	items, total, err := products.ListActive(ctx, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, p1.ID, items[0].ID)

	page, total, err := products.ListActive(ctx, 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, p2.ID, page[0].ID)

	many, err := products.GetManyActive(ctx, []uint{p2.ID, hidden.ID, 777, p1.ID})
	require.NoError(t, err)
	require.Len(t, many, 2)
	assert.Equal(t, p2.ID, many[0].ID)
	assert.Equal(t, p1.ID, many[1].ID)
}
