package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitfantasy/choco/internal/config"
	"github.com/bitfantasy/choco/internal/middleware"
	"github.com/bitfantasy/choco/internal/shop/entity"
	"github.com/bitfantasy/choco/internal/shop/handler"
	"github.com/bitfantasy/choco/internal/shop/pricing"
	"github.com/bitfantasy/choco/internal/shop/repository"
	"github.com/bitfantasy/choco/internal/shop/service"
	"github.com/bitfantasy/choco/internal/shop/sse"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting choco service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := migrate(db); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}
	if err := seedCatalog(db); err != nil {
		zapLogger.Fatal("Failed to seed catalog", zap.Error(err))
	}

	rdb := initRedis(cfg.Redis)

	hub := sse.NewHub()
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, cfg, zapLogger, hub)

	pricingSvc := pricing.NewService(pricingSource(cfg.Catalog), cfg.Catalog.RetryInterval, zapLogger)
	pricingSvc.Init(context.Background())
	defer pricingSvc.Close()

	handlers := handler.NewHandlers(services, cfg, pricingSvc, hub)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/admin/orders/events"})))

	registerRoutes(router, handlers, cfg, db, rdb)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:     router,
		ReadTimeout: cfg.Server.ReadTimeout,
		// WriteTimeout stays zero: SSE connections are long-lived.
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Customer{},
		&entity.BaseMaterial{},
		&entity.AddOn{},
		&entity.Shape{},
		&entity.PackagingOption{},
		&entity.PricingSettings{},
		&entity.ProductCategory{},
		&entity.Product{},
		&entity.Cart{},
		&entity.CartItem{},
		&entity.Order{},
		&entity.OrderItem{},
		&entity.CustomConfiguration{},
		&entity.CustomConfigAddOn{},
	)
}

// seedCatalog installs the default customization catalog on an empty
// database so the configurator works out of the box. Existing rows are
// never touched.
func seedCatalog(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.BaseMaterial{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		fallback := pricing.FallbackCatalog()
		seedGroup := func(prices map[string]decimal.Decimal, names map[string]string, create func(key string, price decimal.Decimal, name string, order int) error) error {
			order := 1
			for key, name := range names {
				if err := create(key, prices[key], name, order); err != nil {
					return err
				}
				order++
			}
			return nil
		}

		materialNames := map[string]string{"dark": "Dark Chocolate", "milk": "Milk Chocolate", "white": "White Chocolate"}
		if err := seedGroup(fallback.BaseMaterials, materialNames, func(key string, price decimal.Decimal, name string, order int) error {
			return db.Create(&entity.BaseMaterial{
				ID: uuid.New().String()[:32], Key: key, Name: name, Price: price, Active: true, SortOrder: order,
			}).Error
		}); err != nil {
			return err
		}

		shapeNames := map[string]string{"square": "Square", "round": "Round", "heart": "Heart"}
		if err := seedGroup(fallback.Shapes, shapeNames, func(key string, price decimal.Decimal, name string, order int) error {
			return db.Create(&entity.Shape{
				ID: uuid.New().String()[:32], Key: key, Name: name, Price: price, Active: true, SortOrder: order,
			}).Error
		}); err != nil {
			return err
		}

		addOnNames := map[string]string{"nuts": "Mixed Nuts", "berries": "Dried Berries", "caramel": "Caramel Swirl"}
		if err := seedGroup(fallback.AddOns, addOnNames, func(key string, price decimal.Decimal, name string, order int) error {
			return db.Create(&entity.AddOn{
				ID: uuid.New().String()[:32], Key: key, Name: name, Price: price, Active: true, SortOrder: order,
			}).Error
		}); err != nil {
			return err
		}

		packagingNames := map[string]string{"standard": "Standard Box", "gift": "Gift Box", "premium": "Premium Box", "eco": "Eco Wrap"}
		if err := seedGroup(fallback.Packaging, packagingNames, func(key string, price decimal.Decimal, name string, order int) error {
			return db.Create(&entity.PackagingOption{
				ID: uuid.New().String()[:32], Key: key, Name: name, Price: price, Active: true, SortOrder: order,
			}).Error
		}); err != nil {
			return err
		}
	}

	var settingsCount int64
	if err := db.Model(&entity.PricingSettings{}).Count(&settingsCount).Error; err != nil {
		return err
	}
	if settingsCount == 0 {
		fallback := pricing.FallbackCatalog()
		return db.Create(&entity.PricingSettings{
			ID:               "default",
			MessageBasePrice: fallback.MessageBasePrice,
			MessageCharPrice: fallback.MessageCharPrice,
		}).Error
	}
	return nil
}

func pricingSource(cfg config.CatalogConfig) pricing.Source {
	if cfg.SourceURL != "" {
		return pricing.NewHTTPSource(cfg.SourceURL, cfg.FetchTimeout)
	}
	return &pricing.StaticSource{Catalog: pricing.FallbackCatalog()}
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config, db *gorm.DB, rdb *redis.Client) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		if err := rdb.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// Public catalog endpoints consumed by the storefront configurator
	catalog := r.Group("/catalog")
	{
		catalog.GET("/base-materials", h.Catalog.ListBaseMaterials)
		catalog.GET("/add-ons", h.Catalog.ListAddOns)
		catalog.GET("/shapes", h.Catalog.ListShapes)
		catalog.GET("/packaging", h.Catalog.ListPackaging)
		catalog.GET("/pricing", h.Catalog.GetPricing)
	}

	// Public ready-made products
	r.GET("/products", h.Product.List)
	r.GET("/products/:id", h.Product.Get)
	r.GET("/product-categories", h.Product.ListCategories)

	// Authentication
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
	}

	authorized := r.Group("")
	authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		authorized.GET("/auth/me", h.Auth.Me)
		authorized.POST("/auth/logout", h.Auth.Logout)

		cart := authorized.Group("/cart")
		{
			cart.GET("", h.Cart.Get)
			cart.POST("/items", h.Cart.AddItem)
			cart.PUT("/items/:id", h.Cart.UpdateItem)
			cart.DELETE("/items/:id", h.Cart.RemoveItem)
		}

		orders := authorized.Group("/orders")
		{
			orders.POST("", h.Order.Checkout)
			orders.POST("/custom", h.Order.SubmitCustom)
			orders.GET("", h.Order.List)
			orders.GET("/:id", h.Order.Get)
		}

		admin := authorized.Group("/admin")
		admin.Use(middleware.RequireRole(entity.RoleShopAdmin))
		{
			adminCatalog := admin.Group("/catalog")
			{
				adminCatalog.PUT("/message-pricing", h.Catalog.AdminUpdateMessagePricing)
				adminCatalog.GET("/:group", h.Catalog.AdminListComponents)
				adminCatalog.POST("/:group", h.Catalog.AdminCreateComponent)
				adminCatalog.PUT("/:group/:id", h.Catalog.AdminUpdateComponent)
				adminCatalog.DELETE("/:group/:id", h.Catalog.AdminDeleteComponent)
			}

			adminProducts := admin.Group("/products")
			{
				adminProducts.GET("", h.Product.AdminList)
				adminProducts.POST("", h.Product.AdminCreate)
				adminProducts.PUT("/:id", h.Product.AdminUpdate)
				adminProducts.DELETE("/:id", h.Product.AdminDelete)
			}
			admin.POST("/product-categories", h.Product.AdminCreateCategory)

			adminOrders := admin.Group("/orders")
			{
				adminOrders.GET("", h.Order.AdminList)
				adminOrders.GET("/export", h.Order.AdminExport)
				adminOrders.GET("/events", h.SSE.Stream)
				adminOrders.PUT("/:id/status", h.Order.AdminUpdateStatus)
			}
		}
	}
}
