package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/stationery_shop/internal/cache"
	"github.com/Skotchmaster/stationery_shop/internal/config"
	"github.com/Skotchmaster/stationery_shop/internal/db"
	"github.com/Skotchmaster/stationery_shop/internal/events"
	"github.com/Skotchmaster/stationery_shop/internal/httpserver"
	"github.com/Skotchmaster/stationery_shop/internal/logging"
	"github.com/Skotchmaster/stationery_shop/internal/middleware/auth"
	"github.com/Skotchmaster/stationery_shop/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/stationery_shop/internal/middleware/logging"
	"github.com/Skotchmaster/stationery_shop/internal/repo"
	"github.com/Skotchmaster/stationery_shop/internal/search"
	"github.com/Skotchmaster/stationery_shop/internal/service"
)

func main() {
	cfg := config.Load()
	l := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	if err := cfg.Validate(); err != nil {
		l.Error("config_invalid", "error", err)
		os.Exit(1)
	}

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		l.Error("db_init_failed", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gdb); err != nil {
		l.Error("db_migrate_failed", "error", err)
		os.Exit(1)
	}

	publisher := events.New(cfg.KafkaBrokers)

	var suggestionCache cache.Cache = cache.Noop{}
	if cfg.RedisAddr != "" {
		rc := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rc.Ping(pingCtx); err != nil {
			l.Warn("redis_unavailable", "addr", cfg.RedisAddr, "error", err)
		} else {
			suggestionCache = rc
			defer rc.Close()
		}
		cancel()
	}

	var index service.Indexer
	if cfg.ESURL != "" {
		es, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			l.Warn("elasticsearch_unavailable", "url", cfg.ESURL, "error", err)
		} else {
			index = &search.Index{ES: es, Name: cfg.ESIndex}
		}
	}

	r := &repo.GormRepo{DB: gdb}
	locks := service.NewUserLocks()

	reviews := &service.ReviewService{Repo: r}
	catalog := &service.CatalogService{
		Repo:    r,
		Index:   index,
		Events:  publisher,
		Reviews: reviews,
		Recommender: &service.BasketRecommender{
			Repo:       r,
			Cache:      suggestionCache,
			MinSupport: cfg.RecommendMinSupport,
		},
		MediaRoot: cfg.MediaRoot,
	}
	cart := &service.CartService{Repo: r, Locks: locks, Events: publisher}
	checkout := &service.CheckoutService{Repo: r, Locks: locks, Events: publisher}
	wallet := &service.WalletService{Repo: r, Locks: locks, Events: publisher}
	addresses := &service.AddressService{Repo: r}
	orders := &service.OrderService{Repo: r, Events: publisher}
	authSvc := &service.AuthService{
		Repo:          r,
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		Events:        publisher,
	}
	contact := &service.ContactService{
		Mailer: &service.KafkaMailer{Events: publisher},
		To:     cfg.ContactEmail,
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(httpserver.Common(cfg.CORSOrigins)...)
	e.Use(loggingmw.RequestLogger(l))
	e.Static("/media", cfg.MediaRoot)

	csrfCfg := csrf.DefaultConfig()
	csrfCfg.Secure = cfg.CookieSecure

	httpserver.Register(e, &httpserver.Deps{
		Catalog:  &httpserver.CatalogHTTP{Svc: catalog, Cart: cart, Reviews: reviews, CookieSecure: cfg.CookieSecure},
		Cart:     &httpserver.CartHTTP{Svc: cart, CookieSecure: cfg.CookieSecure},
		Checkout: &httpserver.CheckoutHTTP{Svc: checkout, Wallet: wallet, CookieSecure: cfg.CookieSecure},
		Wallet:   &httpserver.WalletHTTP{Svc: wallet},
		Address:  &httpserver.AddressHTTP{Svc: addresses},
		Orders:   &httpserver.OrderHTTP{Svc: orders},
		Auth:     &httpserver.AuthHTTP{Svc: authSvc, CookieSecure: cfg.CookieSecure},
		Contact:  &httpserver.ContactHTTP{Svc: contact},
		Admin:    &httpserver.AdminHTTP{Catalog: catalog, Importer: &service.Importer{Repo: r, Catalog: catalog}, Address: addresses, Orders: orders},
		DB:       gdb,
		AuthMW:   auth.NewAutoRefreshMiddleware(cfg.JWTAccessSecret, authSvc, cfg.CookieSecure),
		CSRF:     csrfCfg,
	})

	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	go func() {
		l.Info("server_starting", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("server_failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	l.Info("server_shutting_down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		l.Error("server_shutdown_failed", "error", err)
	}
	if err := publisher.Close(); err != nil {
		l.Warn("kafka_close_failed", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		l.Warn("db_close_failed", "error", err)
	}

	l.Info("server_stopped")
}
