package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/unimart/internal/models"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client), mr
}

func TestSetThenGet(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	items := []models.CartItem{
		{ID: 1, ProductID: 10, OwnerID: 5, Quantity: 2, Price: decimal.RequireFromString("21.00"), IsActive: true},
	}
	require.NoError(t, c.Set(ctx, 5, items))
	assert.True(t, mr.Exists("cart:5"))

	got, err := c.Get(ctx, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.EqualValues(t, 10, got[0].ProductID)
	assert.True(t, decimal.NewFromInt(21).Equal(got[0].Price))
}

func TestGet_CacheMiss(t *testing.T) {
	c, _ := setupTestRedis(t)

	got, err := c.Get(context.Background(), 404)
	require.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, got)
}

func TestGet_InvalidJSON(t *testing.T) {
	c, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(cacheKey(3), "[{"))

	_, err := c.Get(context.Background(), 3)
	require.ErrorContains(t, err, "unmarshal cart failed")
}

func TestSet_TTLWithJitter(t *testing.T) {
	c, mr := setupTestRedis(t)
	require.NoError(t, c.Set(context.Background(), 9, []models.CartItem{}))

	ttl := mr.TTL(cacheKey(9))
	assert.GreaterOrEqual(t, ttl, 15*time.Minute)
	assert.LessOrEqual(t, ttl, 19*time.Minute)
}

func TestDelete(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, mr.Set(cacheKey(1), "[]"))

	require.NoError(t, c.Delete(ctx, 1))
	assert.False(t, mr.Exists(cacheKey(1)))
	require.NoError(t, c.Delete(ctx, 1))
}

func TestRedisUnavailable(t *testing.T) {
	c, mr := setupTestRedis(t)
	mr.Close()

	_, err := c.Get(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "cart:42", cacheKey(42))
}
