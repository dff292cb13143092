// Package uow scopes a set of repository operations to one transaction on
// one dedicated connection.
//
//	u, err := factory.Begin(ctx)
//	if err != nil { ... }
//	defer u.Close()
//	... u.Cart.Add(ctx, line) ...
//	return u.Commit()
//
// Close rolls back anything not committed and always releases the connection.
package uow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/unimart/internal/apperr"
	"github.com/Skotchmaster/unimart/internal/repo"
)

var ErrScopeDone = errors.New("unit of work already committed or closed")

type state int

const (
	stateActive state = iota
	stateCommitted
	stateRolledBack
	stateClosed
)

type Factory struct {
	db *gorm.DB
}

func NewFactory(db *gorm.DB) *Factory {
	return &Factory{db: db}
}

type UnitOfWork struct {
	Products *repo.ProductRepo
	Users    *repo.UserRepo
	Cart     *repo.CartRepo

	conn  *sql.Conn
	tx    *gorm.DB
	state state
}

// Begin takes a connection from the pool, opens a transaction on it and
// binds fresh repositories to that transaction.
func (f *Factory) Begin(ctx context.Context) (*UnitOfWork, error) {
	sqlDB, err := f.db.DB()
	if err != nil {
		return nil, fmt.Errorf("uow: %w: %w", err, apperr.ErrUnavailable)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("uow: acquire connection: %w: %w", err, apperr.ErrUnavailable)
	}

	session := f.db.WithContext(ctx)
	session.Statement.ConnPool = conn
	tx := session.Begin()
	if tx.Error != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("uow: begin: %w: %w", tx.Error, apperr.ErrUnavailable)
	}

	return &UnitOfWork{
		Products: repo.NewProductRepo(tx),
		Users:    repo.NewUserRepo(tx),
		Cart:     repo.NewCartRepo(tx),
		conn:     conn,
		tx:       tx,
	}, nil
}

func (u *UnitOfWork) Commit() error {
	if u.state != stateActive {
		return ErrScopeDone
	}
	u.state = stateCommitted
	if err := u.tx.Commit().Error; err != nil {
		return fmt.Errorf("uow: commit: %w", err)
	}
	return nil
}

// Rollback discards the scope's writes. It is a no-op once the scope has
// finished.
func (u *UnitOfWork) Rollback() error {
	if u.state != stateActive {
		return nil
	}
	u.state = stateRolledBack
	if err := u.tx.Rollback().Error; err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("uow: rollback: %w", err)
	}
	return nil
}

// Close rolls back an uncommitted scope and returns the connection to the
// pool, even when the rollback fails.
func (u *UnitOfWork) Close() error {
	if u.state == stateClosed {
		return nil
	}
	rbErr := u.Rollback()
	u.state = stateClosed
	var connErr error
	if err := u.conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		connErr = fmt.Errorf("uow: release connection: %w", err)
	}
	return errors.Join(rbErr, connErr)
}

// Do runs fn inside a fresh scope. fn commits explicitly; whatever it did not
// commit is rolled back, including when fn panics.
func (f *Factory) Do(ctx context.Context, fn func(u *UnitOfWork) error) (err error) {
	u, err := f.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = u.Close()
			panic(p)
		}
		if cerr := u.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	return fn(u)
}
