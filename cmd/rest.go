package cmd

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	accountsDomain "github.com/mervel/storefront/accounts/domain"
	accountsInfra "github.com/mervel/storefront/accounts/infrastructure"
	analyticsRest "github.com/mervel/storefront/analytics/adapter/rest"
	blogRest "github.com/mervel/storefront/blog/adapter/rest"
	cartRest "github.com/mervel/storefront/cart/adapter/rest"
	catalogRest "github.com/mervel/storefront/catalog/adapter/rest"
	coreconfig "github.com/mervel/storefront/core/config"
	coreDB "github.com/mervel/storefront/core/database"
	functionsRest "github.com/mervel/storefront/functions/adapter/rest"
	imageryRest "github.com/mervel/storefront/imagery/adapter/rest"
	ordersRest "github.com/mervel/storefront/orders/adapter/rest"
	sitemapRest "github.com/mervel/storefront/sitemap/adapter/rest"
	"github.com/mervel/storefront/ui/rest"
	"github.com/mervel/storefront/ui/rest/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Serve the storefront and admin API over http",
	Long:  `Starts the HTTP server: storefront API, admin back office, realtime order feed, AI proxies and sitemap.`,
	Run:   restServer,
}

func init() {
	restCmd.Flags().String("basic-auth", "", "Basic auth in front of /functions (format: user:pass,user2:pass2)")
	rootCmd.AddCommand(restCmd)
}

func restServer(cmd *cobra.Command, _ []string) {
	cfg := coreconfig.Global

	// Override basic auth if flag is provided
	if baFlag, _ := cmd.Flags().GetString("basic-auth"); baFlag != "" {
		cfg.App.BasicAuth = strings.Split(baFlag, ",")
	}

	fiberConfig := fiber.Config{
		EnableTrustedProxyCheck: true,
		BodyLimit:               int(cfg.Upload.MaxImageBytes) + 1024*1024,
		Network:                 "tcp",
		AppName:                 cfg.Storefront.Name + " Storefront",
		ServerHeader:            "Hidden",
	}

	// Configure proxy settings if trusted proxies are specified
	if len(cfg.App.TrustedProxies) > 0 {
		fiberConfig.TrustedProxies = cfg.App.TrustedProxies
		fiberConfig.ProxyHeader = fiber.HeaderXForwardedFor
	}

	app := fiber.New(fiberConfig)

	app.Use(requestid.New())

	origins := strings.Join(cfg.App.CorsAllowedOrigins, ", ")
	if !strings.Contains(origins, cfg.Storefront.SiteURL) {
		origins += ", " + cfg.Storefront.SiteURL
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Cart-Session, X-Request-ID, apikey, x-client-info",
	}))
	app.Use(middleware.Recovery())

	app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "SAMEORIGIN",
		HSTSMaxAge:                31536000, // 1 Year
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        600,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), cfg.App.BasePath+"/statics")
		},
	}))

	if cfg.App.Debug {
		app.Use(logger.New())
	}

	app.Static(cfg.App.BasePath+"/statics", cfg.Paths.Statics)

	base := app.Group(cfg.App.BasePath)
	rest.InitRestHealth(base, coreDB.GlobalDB, vkClient)
	sitemapRest.NewSitemapHandler(sitemapBuilder).RegisterRoutes(base)

	// Serverless-compatible proxies keep their own paths and error bodies
	functionsGroup := app.Group(cfg.App.BasePath + "/functions")
	if len(cfg.App.BasicAuth) > 0 {
		functionsGroup.Use(basicauth.New(basicauth.Config{
			Users: basicAuthUsers(cfg.App.BasicAuth),
			Next: func(c *fiber.Ctx) bool {
				// Allow CORS preflight without credentials.
				return c.Method() == fiber.MethodOptions
			},
		}))
	}
	functionsRest.NewFunctionsHandler(proxyService, trackingService).RegisterRoutes(functionsGroup)

	apiGroup := app.Group(cfg.App.BasePath+"/api", accountsInfra.OptionalAuth(authService))
	adminGroup := apiGroup.Group("/admin",
		accountsInfra.RequireAuth(authService),
		accountsInfra.RequireRole(accountsDomain.RoleAdmin),
	)

	rest.InitRestApp(apiGroup, adminGroup, settingsService)
	rest.SetBackgroundPool(pool)
	adminGroup.Get("/worker-pool/stats", rest.GetWorkerPoolStats)

	accountsInfra.NewAuthHandler(authService).RegisterRoutes(apiGroup)
	catalogRest.NewProductHandler(productService, uploadService).RegisterRoutes(apiGroup, adminGroup)
	cartRest.NewCartHandler(cartService).RegisterRoutes(apiGroup)
	ordersRest.NewOrderHandler(checkoutService, orderService, trackingService).RegisterRoutes(apiGroup, adminGroup)
	imageryRest.NewImageHandler(imageService, productService).RegisterRoutes(apiGroup, adminGroup)
	blogRest.NewBlogHandler(postService).RegisterRoutes(apiGroup, adminGroup)
	analyticsRest.NewAnalyticsHandler(analyticsService).RegisterRoutes(adminGroup)

	// Websocket
	hub.RegisterRoutes(adminGroup, orderService)
	go hub.Run(appCtx)

	if cfg.Imagery.PreloadOnBoot {
		go preloadCatalogImages()
	}

	// 404 Handler ONLY for API group
	apiGroup.All("/*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "API Endpoint not found",
			"path":  c.Path(),
		})
	})

	// Graceful shutdown handler
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[REST] Reception of termination signal, shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("[REST] Error during Fiber shutdown: %v", err)
		}

		StopApp()
	}()

	if err := app.Listen(":" + cfg.App.Port); err != nil {
		logrus.Fatalln("Failed to start: ", err.Error())
	}
}

func basicAuthUsers(credentials []string) map[string]string {
	account := make(map[string]string)
	for _, basicAuth := range credentials {
		ba := strings.SplitN(basicAuth, ":", 2)
		if len(ba) != 2 {
			logrus.Fatalln("Basic auth is not valid, please this following format <user>:<secret>")
		}
		account[ba[0]] = ba[1]
	}
	return account
}
