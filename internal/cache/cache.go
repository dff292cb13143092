package cache

import (
	"context"
	"errors"

	"github.com/Skotchmaster/unimart/internal/models"
)

// CartCache holds the read model of a user's cart lines.
type CartCache interface {
	Get(ctx context.Context, userID uint) ([]models.CartItem, error)
	Set(ctx context.Context, userID uint, items []models.CartItem) error
	Delete(ctx context.Context, userID uint) error
}

var ErrCacheMiss = errors.New("cache miss")

// Noop never hits. Used when REDIS_ADDR is empty.
type Noop struct{}

func (Noop) Get(context.Context, uint) ([]models.CartItem, error) { return nil, ErrCacheMiss }
func (Noop) Set(context.Context, uint, []models.CartItem) error  { return nil }
func (Noop) Delete(context.Context, uint) error                  { return nil }
