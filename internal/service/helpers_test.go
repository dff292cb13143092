package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Skotchmaster/unimart/internal/cache"
	"github.com/Skotchmaster/unimart/internal/models"
	"github.com/Skotchmaster/unimart/internal/service"
	"github.com/Skotchmaster/unimart/internal/testutil"
	"github.com/Skotchmaster/unimart/internal/uow"
)

type published struct {
	Topic string
	Key   string
	Event any
}

type recorder struct {
	mu     sync.Mutex
	events []published
}

func (r *recorder) PublishEvent(_ context.Context, topic, key string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, published{Topic: topic, Key: key, Event: event})
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) All() []published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]published(nil), r.events...)
}

type fakeIndex struct {
	mu      sync.Mutex
	indexed map[uint]models.Product
	hits    []uint
}

func (f *fakeIndex) IndexProduct(_ context.Context, p models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed[p.ID] = p
	return nil
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.indexed, id)
	return nil
}

func (f *fakeIndex) SearchProducts(_ context.Context, _ string, _, _ int) ([]uint, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits, int64(len(f.hits)), nil
}

type env struct {
	DB       *gorm.DB
	Products *service.ProductService
	Cart     *service.CartService
	Auth     *service.AuthService
	Events   *recorder
	Index    *fakeIndex
	Redis    *miniredis.Miniredis
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gdb := testutil.NewDB(t)
	factory := uow.NewFactory(gdb)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	events := &recorder{}
	index := &fakeIndex{indexed: map[uint]models.Product{}}
	carts := cache.NewRedisCache(rdb)
	products := &service.ProductService{UoW: factory, Events: events, Index: index, Carts: carts}

	return &env{
		DB:       gdb,
		Products: products,
		Cart: &service.CartService{
			UoW:      factory,
			Products: products,
			Cache:    carts,
			Events:   events,
		},
		Auth: &service.AuthService{
			UoW:           factory,
			AccessSecret:  []byte("test-jwt-secret"),
			RefreshSecret: []byte("test-refresh-secret"),
		},
		Events: events,
		Index:  index,
		Redis:  mr,
	}
}

func (e *env) cartRows(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := e.DB.Model(&models.CartItem{}).Count(&n).Error; err != nil {
		t.Fatalf("count cart rows: %v", err)
	}
	return n
}
