package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ticket-storefront/internal/cartstore"
	"ticket-storefront/internal/config"
	"ticket-storefront/internal/handlers"
	"ticket-storefront/internal/middleware"
	"ticket-storefront/internal/monitoring"
	"ticket-storefront/internal/services"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger, err := newLogger(cfg.Server.Env)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Cart store: redis when reachable, in-process map otherwise
	carts := newCartStore(cfg.Redis, logger)

	// Create session store
	sessionStore := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400, // 1 day; the cart itself expires much sooner
		HttpOnly: true,
		Secure:   cfg.Server.Env == "production",
		SameSite: http.SameSiteLaxMode,
	}

	// Initialize remote API clients
	backend := services.NewBackendClient(services.BackendConfig{
		BaseURL:      cfg.Backend.BaseURL,
		ServiceToken: cfg.Backend.ServiceToken,
	}, logger)

	gateway := services.NewGatewayClient(services.GatewayConfig{
		SecretKey:   cfg.Gateway.SecretKey,
		BaseURL:     cfg.Gateway.BaseURL,
		CallbackURL: cfg.Gateway.CallbackURL,
	}, logger)

	// Initialize services
	checkoutService := services.NewCheckoutService(backend, carts, logger)

	// Initialize handlers
	eventHandler := handlers.NewEventHandler(backend, logger)
	cartHandler := handlers.NewCartHandler(backend, carts, sessionStore, logger)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, carts, sessionStore, logger)
	paymentHandler := handlers.NewPaymentHandler(gateway, carts, sessionStore, cfg.Gateway.Currency, logger)

	authMiddleware := middleware.NewAuthMiddleware(cfg.Auth.SigningSecret)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(authMiddleware.LoadUser)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	router.Handle("/metrics", monitoring.Handler())

	router.Get("/events/{id}", eventHandler.GetEvent)

	router.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)

		r.Post("/events/{id}/cart", cartHandler.AddToCart)
		r.Get("/cart", cartHandler.ViewCart)
		r.Put("/cart/lines", cartHandler.UpdateCartLine)
		r.Post("/cart/promotion", cartHandler.ApplyPromotion)
		r.Delete("/cart/promotion", cartHandler.RemovePromotion)
		r.Delete("/cart", cartHandler.ClearCart)

		r.Get("/checkout", checkoutHandler.ShowCheckout)
		r.Post("/checkout", checkoutHandler.SubmitCheckout)

		r.Post("/payment/initiate", paymentHandler.InitiatePayment)
		r.Get("/payment/callback", paymentHandler.VerifyPayment)
	})

	// Gateway calls this directly; it is authenticated by signature, not token
	router.Post("/payment/webhook", paymentHandler.HandleWebhook)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Server.Env))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func newCartStore(cfg config.RedisConfig, logger *zap.Logger) cartstore.Store {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			logger.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		opts = parsed
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, falling back to in-memory cart store", zap.Error(err))
		return cartstore.NewMemoryStore()
	}

	logger.Info("redis connected", zap.String("addr", opts.Addr))
	return cartstore.NewRedisStore(client)
}
