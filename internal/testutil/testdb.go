// Package testutil builds throwaway stores for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/unimart/internal/models"
	"github.com/Skotchmaster/unimart/pkg/db"
)

// NewDB returns a migrated SQLite database living in t.TempDir().
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	dsn := filepath.Join(t.TempDir(), "shop.db") +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	gdb, err := db.Open(ctx, db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	require.NoError(t, db.Migrate(ctx, gdb))
	return gdb
}

func CreateUser(t *testing.T, gdb *gorm.DB) *models.User {
	t.Helper()
	u := &models.User{
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Role:         models.RoleUser,
		IsActive:     true,
	}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

func CreateProduct(t *testing.T, gdb *gorm.DB, owner uint, price string) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:     "product-" + uuid.NewString()[:8],
		Price:    decimal.RequireFromString(price),
		OwnerID:  owner,
		IsActive: true,
	}
	require.NoError(t, gdb.Create(p).Error)
	return p
}
