package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/unimart/internal/cache"
	"github.com/Skotchmaster/unimart/internal/config"
	"github.com/Skotchmaster/unimart/internal/es"
	"github.com/Skotchmaster/unimart/internal/handlers"
	"github.com/Skotchmaster/unimart/internal/logging"
	"github.com/Skotchmaster/unimart/internal/mykafka"
	"github.com/Skotchmaster/unimart/internal/service"
	httpserver "github.com/Skotchmaster/unimart/internal/transport/http"
	"github.com/Skotchmaster/unimart/internal/uow"
	pkgdb "github.com/Skotchmaster/unimart/pkg/db"
	middleware "github.com/Skotchmaster/unimart/pkg/middleware/auth"
	loggingmw "github.com/Skotchmaster/unimart/pkg/middleware/logging"
)

func main() {
	cfg := config.Load()
	config.MustValid(cfg)

	logger := logging.New(cfg.LogLevel, cfg.ServiceName)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(initCtx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		cancel()
		log.Fatalf("db open: %v", err)
	}
	if err := pkgdb.Migrate(initCtx, db); err != nil {
		cancel()
		log.Fatalf("db migrate: %v", err)
	}

	var events mykafka.Publisher = mykafka.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		prod, err := mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			cancel()
			log.Fatalf("kafka producer: %v", err)
		}
		events = prod
	}

	var (
		cartCache cache.CartCache = cache.Noop{}
		redisPing func(context.Context) error
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		rc := cache.NewRedisCache(rdb)
		if err := rc.Ping(initCtx); err != nil {
			logger.Warn("redis unavailable, cart cache disabled", "addr", cfg.RedisAddr, "error", err)
			_ = rdb.Close()
		} else {
			cartCache = rc
			redisPing = rc.Ping
			defer rdb.Close()
		}
	}

	var index service.ProductIndex
	if cfg.ES_URL != "" {
		client, err := es.NewClient(initCtx, cfg, logger)
		if err != nil {
			logger.Warn("elasticsearch unavailable, search disabled", "error", err)
		} else {
			index = es.NewIndexer(client, cfg.ES_INDEX)
		}
	}
	cancel()

	factory := uow.NewFactory(db)
	products := &service.ProductService{UoW: factory, Events: events, Index: index, Carts: cartCache}
	carts := &service.CartService{UoW: factory, Products: products, Cache: cartCache, Events: events}
	auth := &service.AuthService{UoW: factory, AccessSecret: cfg.JWTAccessSecret, RefreshSecret: cfg.JWTRefreshSecret}

	refresh := func(ctx context.Context, token string) (*middleware.Pair, error) {
		res, err := auth.Refresh(ctx, token)
		if err != nil {
			return nil, err
		}
		return &middleware.Pair{
			AccessToken:  res.AccessToken,
			RefreshToken: res.RefreshToken,
			AccessExp:    res.AccessExp,
			RefreshExp:   res.RefreshExp,
		}, nil
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:    &handlers.AuthHandler{Svc: auth},
		ProductHandler: &handlers.ProductHandler{Svc: products},
		CartHandler:    &handlers.CartHandler{Svc: carts},
		AuthMW:         middleware.NewAutoRefreshMiddleware(cfg.JWTAccessSecret, refresh),
		Ready: func(ctx context.Context) error {
			if err := pkgdb.Ping(ctx, db); err != nil {
				return err
			}
			if redisPing != nil {
				return redisPing(ctx)
			}
			return nil
		},
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if err := events.Close(); err != nil {
		logger.Error("kafka close", "error", err)
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db close", "error", err)
	}
	logger.Info("stopped")
}
