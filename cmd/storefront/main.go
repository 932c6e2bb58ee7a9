package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/fjod/go_storefront/internal/cartsync"
	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/client"
	h "github.com/fjod/go_storefront/internal/http"
	"github.com/fjod/go_storefront/internal/payment"
	"github.com/fjod/go_storefront/internal/store"
)

type Config struct {
	HTTPPort          string
	RedisAddr         string
	RedisPassword     string
	CartServiceURL    string
	PaymentGatewayURL string
	OrderServiceURL   string
	RequestTimeout    time.Duration
	CheckoutTimeout   time.Duration
	ShutdownTimeout   time.Duration
}

func loadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		CartServiceURL:    getEnv("CART_SERVICE_URL", ""),
		PaymentGatewayURL: getEnv("PAYMENT_GATEWAY_URL", "http://localhost:8090"),
		OrderServiceURL:   getEnv("ORDER_SERVICE_URL", "http://localhost:8091"),
		RequestTimeout:    10 * time.Second,
		// Must outlive the full payment confirmation window (10 x 5s).
		CheckoutTimeout: 90 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Cart persistence: redis when configured, in-process otherwise.
	var backend store.Backend
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal("redis connection failed", zap.Error(err))
		}
		logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
		backend = store.NewRedisBackend(redisClient)
	} else {
		logger.Info("no redis configured, carts are held in memory")
		backend = store.NewMemoryBackend()
	}

	httpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   10 * time.Second,
	}
	tokens := client.ContextTokens{}

	// Cart authority: the local store alone, or reconciled against a remote
	// cart service when one is configured.
	var carts h.Carts
	if cfg.CartServiceURL != "" {
		logger.Info("using remote cart authority", zap.String("url", cfg.CartServiceURL))
		carts = &remoteCarts{
			backend: backend,
			client:  client.NewCartService(cfg.CartServiceURL, httpClient, tokens),
			logger:  logger,
		}
	} else {
		logger.Info("using local cart authority")
		carts = &localCarts{backend: backend}
	}

	gateway := client.NewPaymentGateway(cfg.PaymentGatewayURL, httpClient, tokens)
	orders := client.NewOrderService(cfg.OrderServiceURL, httpClient, tokens)
	poller := payment.NewPoller(gateway, logger)
	checkoutSvc := checkout.New(poller, orders, logger)

	cartHandler := h.NewCartHandler(carts, cfg.RequestTimeout, logger)
	checkoutHandler := h.NewCheckoutHandler(carts, checkoutSvc, cfg.CheckoutTimeout, logger)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.AuthMiddleware)
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/add", cartHandler.AddItem)
			r.Put("/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/{product_id}", cartHandler.RemoveItem)
			r.Delete("/", cartHandler.ClearCart)
		})
		r.Post("/checkout", checkoutHandler.Checkout)
	})

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	go func() {
		logger.Info("storefront listening", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down storefront")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
	logger.Info("storefront stopped")
}

// localCarts serves the deployment without a remote cart service: the keyed
// storage is authoritative.
type localCarts struct {
	backend store.Backend
}

func (l *localCarts) Open(ctx context.Context, sessionID string) (h.CartSession, error) {
	return store.Open(ctx, sessionID, l.backend)
}

// remoteCarts layers the reconciliation contract on top of the local store:
// pull-on-open, replace-on-success pushes.
type remoteCarts struct {
	backend store.Backend
	client  *client.CartService
	logger  *zap.Logger
}

func (rc *remoteCarts) Open(ctx context.Context, sessionID string) (h.CartSession, error) {
	st, err := store.Open(ctx, sessionID, rc.backend)
	if err != nil {
		return nil, err
	}
	sync := cartsync.New(st, rc.client, rc.logger)
	if err := sync.Pull(ctx); err != nil {
		return nil, err
	}
	return sync, nil
}
