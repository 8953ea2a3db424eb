package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rajagopika181204/website-backend/cache"
	"github.com/rajagopika181204/website-backend/controllers"
	"github.com/rajagopika181204/website-backend/initializers"
	"github.com/rajagopika181204/website-backend/metrics"
	"github.com/rajagopika181204/website-backend/middlewares"
	"github.com/rajagopika181204/website-backend/routes"
	"github.com/rajagopika181204/website-backend/services"
	"github.com/rajagopika181204/website-backend/storage"
	"github.com/rajagopika181204/website-backend/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	initializers.LoadEnv()
	cfg := initializers.LoadConfig()

	log, err := initializers.InitLogger(cfg.LogLevel, cfg.Server.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server stopped", zap.Error(err))
	}
}

func run(cfg *initializers.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Starting server", cfg.Fields()...)

	db, err := initializers.ConnectToDB(cfg.DB)
	if err != nil {
		return err
	}
	if err := initializers.SyncDatabase(db, log); err != nil {
		return err
	}

	var listingCache services.ListingCache
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn("Redis unavailable, serving the catalog uncached", zap.Error(err))
		} else {
			defer redisCache.Close()
			listingCache = redisCache
		}
	}

	images, err := imageStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           newRouter(cfg, db, listingCache, images, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func imageStore(ctx context.Context, cfg initializers.StorageConfig) (storage.ImageStore, error) {
	if cfg.Disk == "s3" {
		return storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Prefix:    cfg.S3Prefix,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}
	return storage.NewLocalStore(cfg.LocalRoot), nil
}

func newRouter(cfg *initializers.Config, db *gorm.DB, listingCache services.ListingCache, images storage.ImageStore, log *zap.Logger) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ledger := services.NewInventoryLedger(log)
	recorder := services.NewOrderRecorder(db, log)
	addresses := services.NewAddressBook(db, log)
	catalog := services.NewCatalog(db, listingCache, cfg.Redis.TTL, log)
	auth := services.NewAuthGate(db, services.AuthConfig{Secret: cfg.JWT.Secret, TTL: cfg.JWT.TTL}, log)
	carts := services.NewCartStore(db)

	var gateway *services.Razorpay
	var verifier services.PaymentVerifier
	if cfg.Payment.RazorpayKeySecret != "" {
		gateway = services.NewRazorpay(services.RazorpayConfig{
			KeyID:     cfg.Payment.RazorpayKeyID,
			KeySecret: cfg.Payment.RazorpayKeySecret,
			BaseURL:   cfg.Payment.RazorpayBaseURL,
		}, log)
		verifier = gateway
	}

	checkout := services.NewCheckout(db, ledger, recorder, addresses, verifier, log)
	checkout.OnCommit(func(ctx context.Context, _ services.CheckoutResult) {
		catalog.Invalidate(ctx)
	})
	if cfg.SMTP.Enabled() {
		checkout.OnCommit(services.OrderConfirmationHook(utils.NewMailer(cfg.SMTP), log))
	}

	server := gin.New()
	server.Use(gin.Recovery())
	server.Use(middlewares.RequestLogger(log))
	server.Use(metrics.Middleware())
	server.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", controllers.IdempotencyKeyHeader, middlewares.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middlewares.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	requireAuth := middlewares.RequireAuth(auth)

	routes.DefaultRoutes(server, db)
	routes.AuthRoutes(server, controllers.NewAuthController(auth))
	routes.ProductRoutes(server, controllers.NewProductController(catalog, ledger, images), requireAuth)
	routes.OrderRoutes(server,
		controllers.NewOrderController(checkout, recorder, cfg.CheckoutTimeout),
		controllers.NewAddressController(addresses),
		controllers.NewPaymentController(gateway, services.UPILinkBuilder{
			PayeeAddress: cfg.Payment.UPIPayeeAddress,
			PayeeName:    cfg.Payment.UPIPayeeName,
		}, cfg.Payment.Currency))
	routes.CartRoutes(server, controllers.NewCartController(carts), requireAuth)

	return server
}
