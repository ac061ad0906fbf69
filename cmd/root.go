package cmd

import (
	"context"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
	accountsApp "github.com/mervel/storefront/accounts/application"
	accountsRepo "github.com/mervel/storefront/accounts/repository"
	"github.com/mervel/storefront/accounts/security"
	analyticsApp "github.com/mervel/storefront/analytics/application"
	blogApp "github.com/mervel/storefront/blog/application"
	blogRepo "github.com/mervel/storefront/blog/repository"
	cartApp "github.com/mervel/storefront/cart/application"
	cartDomain "github.com/mervel/storefront/cart/domain"
	cartRepo "github.com/mervel/storefront/cart/repository"
	catalogApp "github.com/mervel/storefront/catalog/application"
	catalogDomain "github.com/mervel/storefront/catalog/domain"
	catalogRepo "github.com/mervel/storefront/catalog/repository"
	coreconfig "github.com/mervel/storefront/core/config"
	coreDB "github.com/mervel/storefront/core/database"
	settingsApp "github.com/mervel/storefront/core/settings/application"
	functionsApp "github.com/mervel/storefront/functions/application"
	functionsDomain "github.com/mervel/storefront/functions/domain"
	functionsRepo "github.com/mervel/storefront/functions/repository"
	imageryApp "github.com/mervel/storefront/imagery/application"
	imageryDomain "github.com/mervel/storefront/imagery/domain"
	imageryRepo "github.com/mervel/storefront/imagery/repository"
	"github.com/mervel/storefront/infrastructure/valkey"
	"github.com/mervel/storefront/integrations/aigateway"
	"github.com/mervel/storefront/integrations/gemini"
	ordersApp "github.com/mervel/storefront/orders/application"
	ordersRepo "github.com/mervel/storefront/orders/repository"
	"github.com/mervel/storefront/pkg/utils"
	"github.com/mervel/storefront/pkg/workerpool"
	sitemapApp "github.com/mervel/storefront/sitemap/application"
	"github.com/mervel/storefront/ui/websocket"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

const (
	cartSessionTTL  = 7 * 24 * time.Hour
	pageContentTTL  = 24 * time.Hour
	uploadMountPath = "/statics/uploads"
)

// aiBackend is satisfied by both the gateway and the Gemini clients.
type aiBackend interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Complete(ctx context.Context, prompt string) (string, error)
	Configured() bool
}

var (
	appCtx    context.Context
	appCancel context.CancelFunc

	db       *gorm.DB
	vkClient *valkey.Client
	pool     *workerpool.Pool
	serverID string

	// Services
	settingsService  *settingsApp.SettingsService
	productService   *catalogApp.ProductService
	uploadService    *catalogApp.UploadService
	cartService      *cartApp.CartService
	broadcaster      *ordersApp.Broadcaster
	checkoutService  *ordersApp.CheckoutService
	orderService     *ordersApp.OrderService
	trackingService  *ordersApp.TrackingService
	imageService     *imageryApp.ImageService
	proxyService     *functionsApp.ProxyService
	postService      *blogApp.PostService
	analyticsService *analyticsApp.AnalyticsService
	authService      *accountsApp.AuthService
	sitemapBuilder   *sitemapApp.Builder

	// Realtime
	hub *websocket.Hub

	schemas []interface {
		InitSchema(ctx context.Context) error
	}
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "MERVEL perfume storefront backend",
	Long: `Serves the MERVEL storefront API, the admin back office, the realtime order feed,
the AI image and content proxies, the sitemap and an MCP server for agents.`,
}

func init() {
	// Load environment variables first
	utils.LoadConfig(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()

	cobra.OnInitialize(initEnvConfig, initApp)
}

func initFlags() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("port", "p", "", "change port number with --port <number> | example: --port=8080")
	flags.BoolP("debug", "d", false, "hide or displaying log with --debug <true/false> | example: --debug=true")
	flags.String("base-path", "", `base path for subpath deployment --base-path <string> | example: --base-path="/shop"`)
	flags.StringSlice("trusted-proxies", nil, `trusted proxy IP ranges --trusted-proxies <string> | example: --trusted-proxies="10.0.0.0/8"`)
	flags.Int("workers", 0, "number of background workers --workers <number> | example: --workers=8")
	flags.String("ai-provider", "", `image/text backend --ai-provider <gateway|gemini>`)

	_ = viper.BindPFlag("app_port", flags.Lookup("port"))
	_ = viper.BindPFlag("app_debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("app_base_path", flags.Lookup("base-path"))
	_ = viper.BindPFlag("app_trusted_proxies", flags.Lookup("trusted-proxies"))
	_ = viper.BindPFlag("worker_pool_size", flags.Lookup("workers"))
	_ = viper.BindPFlag("ai_provider", flags.Lookup("ai-provider"))
}

// initEnvConfig builds the structured config and applies flag overrides on top.
func initEnvConfig() {
	cfg, err := coreconfig.LoadConfig()
	if err != nil {
		logrus.Fatalf("[CONFIG] Failed to load configuration: %v", err)
	}

	if v := viper.GetString("app_port"); v != "" {
		cfg.App.Port = v
	}
	if viper.GetBool("app_debug") {
		cfg.App.Debug = true
	}
	if v := viper.GetString("app_base_path"); v != "" {
		cfg.App.BasePath = v
	}
	if v := viper.GetStringSlice("app_trusted_proxies"); len(v) > 0 {
		cfg.App.TrustedProxies = v
	}
	if v := viper.GetInt("worker_pool_size"); v > 0 {
		cfg.WorkerPool.Size = v
	}
	if v := viper.GetString("ai_provider"); v != "" {
		cfg.AI.Provider = v
	}
}

func initApp() {
	cfg := coreconfig.Global
	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	//preparing folder if not exist
	if err := utils.CreateFolder(cfg.Paths.Storages, cfg.Paths.Statics, cfg.Paths.Uploads); err != nil {
		logrus.Errorln(err)
	}

	appCtx, appCancel = context.WithCancel(context.Background())

	var err error
	db, err = coreDB.NewDatabase(cfg)
	if err != nil {
		logrus.Fatalf("[DB] %v", err)
	}

	vkClient, err = valkey.NewClientFromConfig(cfg)
	if err != nil {
		logrus.WithError(err).Warn("[VALKEY] Unavailable, falling back to in-process caches")
		vkClient = nil
	}
	if vkClient != nil {
		logrus.Infof("[VALKEY] Connected to %s", cfg.Database.ValkeyAddress)
	}

	serverID = utils.GetPersistentServerID(cfg.App.ServerID, cfg.Paths.Storages)
	pool = workerpool.GetGlobalPool()

	// 1. Persistence
	settingsService = settingsApp.NewSettingsService(db, cfg)
	products := catalogRepo.NewProductGormRepository(db)
	orders := ordersRepo.NewOrderGormRepository(db)
	posts := blogRepo.NewPostGormRepository(db)
	users := accountsRepo.NewUserGormRepository(db)
	schemas = append(schemas, settingsService, products, orders, posts, users)

	// 2. Catalog and cart
	productService = catalogApp.NewProductService(products)
	uploadService = catalogApp.NewUploadService(cfg.Paths.Uploads, cfg.App.BaseUrl, uploadMountPath, cfg.Upload)
	cartService = cartApp.NewCartService(newCartStore(), productService, settingsService)

	// 3. Orders and the realtime feed
	broadcaster = ordersApp.NewBroadcaster(pool)
	checkoutService = ordersApp.NewCheckoutService(orders, cartService, broadcaster)
	orderService = ordersApp.NewOrderService(orders, broadcaster)
	trackingService = ordersApp.NewTrackingService(orders, productService)

	hub = websocket.NewHub()
	hub.SetValkeyClient(vkClient, serverID)
	broadcaster.Subscribe(hub)

	// 4. AI backends
	ai := newAIBackend(cfg.AI)
	imageService = imageryApp.NewImageService(newImageStore(cfg.Imagery.CacheBackend), ai, settingsService, imageryApp.Options{
		MaxConcurrent:   cfg.Imagery.MaxConcurrent,
		GenerateTimeout: cfg.Imagery.GenerateTimeout,
		DefaultPrefix:   cfg.Imagery.CachePrefix,
	})
	proxyService = functionsApp.NewProxyService(ai, ai, newContentCache(), pageContentTTL)

	productService.OnChange(func(ctx context.Context, action string, p *catalogDomain.Product) {
		if action == "create" {
			return
		}
		if err := imageService.Invalidate(ctx, p.Slug); err != nil {
			logrus.WithError(err).Warnf("[IMAGERY] Failed to invalidate image of %s", p.Slug)
		}
	})

	// 5. Content, reporting and accounts
	postService = blogApp.NewPostService(posts)
	analyticsService = analyticsApp.NewAnalyticsService(productService, orderService, cfg.Storefront.Currency)
	if cfg.Security.UsesDefaultJWTSecret() {
		logrus.Warn("[AUTH] APP_JWT_SECRET not set, signing tokens with the public default secret")
	}
	authService = accountsApp.NewAuthService(users, security.NewTokens(cfg.Security.JWTSecret, cfg.Security.TokenTTL))
	sitemapBuilder = sitemapApp.NewBuilder(cfg.Storefront.SiteURL, productService, postService)

	if err := initSchemas(appCtx); err != nil {
		logrus.Fatalf("[DB] Failed to prepare schema: %v", err)
	}
}

func initSchemas(ctx context.Context) error {
	for _, s := range schemas {
		if err := s.InitSchema(ctx); err != nil {
			return err
		}
	}
	return nil
}

func newAIBackend(cfg coreconfig.AIConfig) aiBackend {
	if cfg.Provider == "gemini" {
		logrus.Info("[AI] Using Gemini backend")
		return gemini.NewClient(cfg)
	}
	logrus.Infof("[AI] Using gateway backend at %s", cfg.GatewayURL)
	return aigateway.NewClient(cfg)
}

func newCartStore() cartDomain.SessionStore {
	if vkClient != nil {
		return cartRepo.NewValkeyStore(vkClient, cartSessionTTL)
	}
	return cartRepo.NewMemoryStore(cartSessionTTL)
}

func newContentCache() functionsDomain.ContentCache {
	if vkClient != nil {
		return functionsRepo.NewValkeyContentCache(vkClient)
	}
	return functionsRepo.NewMemoryContentCache()
}

func newImageStore(backend string) imageryDomain.ImageStore {
	switch backend {
	case "memory":
		return imageryRepo.NewMemoryStore()
	case "valkey":
		if vkClient != nil {
			return imageryRepo.NewValkeyStore(vkClient)
		}
		logrus.Warn("[IMAGERY] Valkey cache backend requested but Valkey is disabled, using database")
	}
	store := imageryRepo.NewGormStore(db)
	schemas = append(schemas, store)
	return store
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// StopApp performs a clean shutdown of all database connections and services.
func StopApp() {
	logrus.Info("[APP] Stopping application...")

	if appCancel != nil {
		appCancel()
	}

	// Drains pending order events
	workerpool.StopGlobalPool()

	if vkClient != nil {
		vkClient.Close()
	}

	if sqlDB, err := coreDB.SQLDB(); err == nil {
		_ = sqlDB.Close()
	}

	logrus.Info("[APP] Application stopped cleanly.")
}
