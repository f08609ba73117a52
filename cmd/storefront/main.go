package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/handlers"
	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/cache"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/health"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/telemetry"
	"github.com/aaravmahajanofficial/storefront/pkg/genai"
	"github.com/aaravmahajanofficial/storefront/pkg/sendgrid"
	"github.com/aaravmahajanofficial/storefront/pkg/stripe"
	"github.com/aaravmahajanofficial/storefront/pkg/tryon"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	ctx := context.Background()

	// Tracing setup
	shutdownTracing, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		slog.Error("❌ Error setting up tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Database setup
	repos, productRepo, orderRepo, notificationRepo, err := repository.New(ctx, cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Database connection closed")
		}
	}()

	// Redis setup
	redisClient, err := repository.NewRedisClient(ctx, cfg)
	if err != nil {
		slog.Error("❌ Error accessing the redis instance", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer redisClient.Close()

	productCache := cache.NewRedisCache(redisClient, &cfg.Cache)
	cartRepo := repository.NewCartRepo(redisClient, cfg.SessionStore.CartTTL)
	pendingRepo := repository.NewPendingOrderRepo(redisClient, cfg.SessionStore.PendingOrderTTL)
	lockRepo := repository.NewLockRepo(redisClient)
	reconcileRepo := repository.NewReconciliationRepo(redisClient)
	rateLimitRepo := repository.NewRateLimitRepo(redisClient, &cfg.RateConfig)

	// Provider clients
	stripeClient := stripe.NewStripeClient(cfg.Stripe.APIKey)
	sendGridClient := sendgrid.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	chatClient := genai.NewClient(cfg.Chat.Endpoint, cfg.Chat.APIKey, cfg.Chat.Model)
	tryOnClient := tryon.NewClient(cfg.TryOn.Endpoint, cfg.TryOn.APIKey)

	// Services
	productService := service.NewProductService(productRepo, productCache)
	cartService := service.NewCartService(cartRepo, productService, lockRepo, cfg.SessionStore.LockTTL)
	checkoutService := service.NewCheckoutService(cartRepo, pendingRepo, stripeClient, &cfg.Stripe, &cfg.Checkout)
	orderService := service.NewOrderService(orderRepo)
	notificationService := service.NewNotificationService(notificationRepo, sendGridClient)
	finalizationService := service.NewFinalizationService(
		stripeClient,
		orderService,
		notificationService,
		cartRepo,
		pendingRepo,
		reconcileRepo,
		lockRepo,
		cfg.SessionStore.LockTTL,
	)
	chatService := service.NewChatService(chatClient, rateLimitRepo, &cfg.Chat)
	tryOnService := service.NewTryOnService(tryOnClient, rateLimitRepo, &cfg.TryOn)

	// Handlers
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, finalizationService)
	orderHandler := handlers.NewOrderHandler(orderService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	assistantHandler := handlers.NewAssistantHandler(chatService, tryOnService, cfg.TryOn.MaxPhotoSize)
	sessionMiddleware := middleware.NewSessionMiddleware([]byte(cfg.Security.SessionKey), cfg.Security.SessionExpiry, cfg.Env == "production")
	serviceAuth := middleware.NewServiceAuth([]byte(cfg.Security.ServiceKey))
	clientAddress := middleware.NewClientAddress(cfg.Security.TrustedProxies)

	healthHandler, err := health.NewHealthHandler(cfg, &health.Endpoints{StripeClient: stripeClient})
	if err != nil {
		slog.Error("❌ Error creating health checks", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("version", "1.0.0"))

	// API routes run inside a guest session
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /api/v1/products", productHandler.ListProducts())
	apiMux.HandleFunc("GET /api/v1/products/{id}", productHandler.GetProduct())
	apiMux.HandleFunc("GET /api/v1/cart", cartHandler.GetCart())
	apiMux.HandleFunc("DELETE /api/v1/cart", cartHandler.ClearCart())
	apiMux.HandleFunc("POST /api/v1/cart/items", cartHandler.AddItem())
	apiMux.HandleFunc("PUT /api/v1/cart/items", cartHandler.UpdateQuantity())
	apiMux.HandleFunc("DELETE /api/v1/cart/items", cartHandler.RemoveItem())
	apiMux.HandleFunc("POST /api/v1/checkout/sessions", checkoutHandler.CreateSession())
	apiMux.HandleFunc("GET /api/v1/checkout/return", checkoutHandler.Return())
	apiMux.HandleFunc("GET /api/v1/orders/{id}", orderHandler.GetOrder())
	apiMux.HandleFunc("POST /api/v1/chat", assistantHandler.Chat())
	apiMux.HandleFunc("POST /api/v1/try-on", assistantHandler.TryOn())

	routerMux := http.NewServeMux()
	routerMux.Handle("/api/", sessionMiddleware.Session(apiMux))
	// Back-office routes; orders are otherwise only written by checkout finalization
	routerMux.Handle("POST /api/v1/orders", serviceAuth.Authenticate(orderHandler.CreateOrder()))
	routerMux.Handle("GET /api/v1/notifications/{id}", serviceAuth.Authenticate(notificationHandler.GetNotification()))
	routerMux.Handle("GET /metrics", metrics.Handler())
	routerMux.Handle("GET /health", healthHandler.Handler())

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = otelhttp.NewHandler(handler, cfg.Otel.ServiceName)
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)
	handler = clientAddress.Middleware(handler)

	// Setup http server
	server := http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("❌ Failed to start server", slog.Any("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("⚠️ Failed to flush traces", slog.String("error", err.Error()))
	}

}
