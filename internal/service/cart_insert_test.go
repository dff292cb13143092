package service_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/unimart/internal/apperr"
	"github.com/Skotchmaster/unimart/internal/cache"
	"github.com/Skotchmaster/unimart/internal/service"
	"github.com/Skotchmaster/unimart/internal/uow"
)

// newMockCart runs the cart service against a postgres dialect on sqlmock, so
// a test can let the duplicate pre-check pass and still fail the insert, as
// when another transaction commits the same line in between.
func newMockCart(t *testing.T) (*service.CartService, *recorder, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	factory := uow.NewFactory(gdb)
	events := &recorder{}
	products := &service.ProductService{UoW: factory, Events: events}
	return &service.CartService{UoW: factory, Products: products, Cache: cache.Noop{}, Events: events}, events, mock
}

func expectAddUpToInsert(mock sqlmock.Sqlmock, owner, productID uint) {
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "products"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "owner_id", "is_active"}).
			AddRow(productID, "kettle", "2.50", owner, true))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "cart_items"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "owner_id", "quantity", "price", "is_active"}))
}

func TestCart_AddInsertCollisionIsConflict(t *testing.T) {
	svc, events, mock := newMockCart(t)

	expectAddUpToInsert(mock, 1, 7)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "cart_items"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_cart_items_owner_product_active"})
	mock.ExpectRollback()

	line, err := svc.Add(context.Background(), 1, service.CartAdd{ProductID: 7, Quantity: 2})
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "product is already in cart", apperr.Message(err))
	assert.Nil(t, line)
	assert.Empty(t, events.All())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCart_AddInsertMissingProductIsNotFound(t *testing.T) {
	svc, events, mock := newMockCart(t)

	expectAddUpToInsert(mock, 1, 7)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "cart_items"`)).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "fk_cart_items_product"})
	mock.ExpectRollback()

	_, err := svc.Add(context.Background(), 1, service.CartAdd{ProductID: 7, Quantity: 1})
	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NotErrorIs(t, err, apperr.ErrConflict)
	assert.Empty(t, events.All())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCart_AddInsertCheckViolationStaysConstraint(t *testing.T) {
	svc, _, mock := newMockCart(t)

	expectAddUpToInsert(mock, 1, 7)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "cart_items"`)).
		WillReturnError(&pgconn.PgError{Code: "23514"})
	mock.ExpectRollback()

	_, err := svc.Add(context.Background(), 1, service.CartAdd{ProductID: 7, Quantity: 1})
	require.ErrorIs(t, err, apperr.ErrConstraintViolation)
	assert.Equal(t, apperr.KindConstraintViolation, apperr.Kind(err))
	require.NoError(t, mock.ExpectationsWereMet())
}
