package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App        AppConfig
	MCP        MCPConfig
	Paths      PathsConfig
	Database   DatabaseConfig
	AI         AIConfig
	Imagery    ImageryConfig
	Storefront StorefrontConfig
	Upload     UploadConfig
	WorkerPool WorkerPoolConfig
	Security   SecurityConfig
}

type AppConfig struct {
	Version            string
	Port               string
	Debug              bool
	Environment        string
	BasicAuth          []string
	BasePath           string
	TrustedProxies     []string
	BaseUrl            string
	CorsAllowedOrigins []string
	ServerID           string
}

type MCPConfig struct {
	Port string
	Host string
}

type PathsConfig struct {
	BaseDir  string
	Statics  string
	Uploads  string
	Storages string
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string // File path for SQLite, DB Name for Postgres
	ValkeyEnabled   bool
	ValkeyAddress   string
	ValkeyPassword  string
	ValkeyDB        int
	ValkeyKeyPrefix string
}

// AIConfig describes the upstream generation backends.
// Provider "gateway" talks to an OpenAI-compatible endpoint, "gemini" uses the Gemini API directly.
type AIConfig struct {
	Provider     string
	GatewayURL   string
	GatewayKey   string
	GeminiKey    string
	ImageModel   string
	TextModel    string
	MaxRetries   int
	RetryDelay   time.Duration
	RequestLimit time.Duration
}

type ImageryConfig struct {
	MaxConcurrent   int
	CachePrefix     string
	CacheBackend    string // memory | valkey | database
	GenerateTimeout time.Duration
	PreloadOnBoot   bool
}

type StorefrontConfig struct {
	Name                  string
	SiteURL               string
	ShippingFee           int64
	FreeShippingThreshold int64
	ComboDiscount         float64
	Currency              string
}

type UploadConfig struct {
	MaxImageBytes int64
	AllowedTypes  []string
	MaxDimension  int
}

type WorkerPoolConfig struct {
	Size      int
	QueueSize int
}

// DefaultJWTSecret signs tokens when APP_JWT_SECRET is not set. It is public.
const DefaultJWTSecret = "changeme_please_change_me_in_prod_12345"

type SecurityConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
}

// UsesDefaultJWTSecret reports whether tokens are signed with the public default secret.
func (s SecurityConfig) UsesDefaultJWTSecret() bool {
	return s.JWTSecret == DefaultJWTSecret
}

// Global provides access to the loaded configuration globally
var Global *Config

// LoadConfig loads configuration from Environment Variables or defaults.
func LoadConfig() (*Config, error) {
	baseDir := getEnv("APP_BASE_DIR", "storages")

	debug := getEnvBool("APP_DEBUG", false) || getEnvBool("DEBUG", false)

	var basicAuth []string
	if v := os.Getenv("APP_BASIC_AUTH"); v != "" {
		basicAuth = strings.Split(v, ",")
	}

	corsOrigins := []string{"http://localhost:3000", "http://localhost:5173", "http://localhost:8080"}
	if v := os.Getenv("APP_CORS_ALLOWED_ORIGINS"); v != "" {
		corsOrigins = strings.Split(v, ",")
	}

	appCfg := AppConfig{
		Version:            "v1.4.0",
		Port:               getEnv("APP_PORT", "3000"),
		Debug:              debug,
		Environment:        getEnv("APP_ENV", "development"),
		BasicAuth:          basicAuth,
		BasePath:           getEnv("APP_BASE_PATH", ""),
		BaseUrl:            getEnv("APP_BASE_URL", "http://localhost:3000"),
		CorsAllowedOrigins: corsOrigins,
		ServerID:           getEnv("SERVER_ID", ""),
	}
	if v := os.Getenv("APP_TRUSTED_PROXIES"); v != "" {
		appCfg.TrustedProxies = strings.Split(v, ",")
	}

	statics := getEnv("PATH_STATICS", "statics")
	pathsCfg := PathsConfig{
		BaseDir:  baseDir,
		Statics:  statics,
		Uploads:  getEnv("PATH_UPLOADS", filepath.Join(statics, "uploads")),
		Storages: baseDir,
	}

	dbCfg := DatabaseConfig{
		Driver:          getEnv("DB_DRIVER", "sqlite"),
		Name:            getEnv("DB_NAME", filepath.Join(pathsCfg.Storages, "storefront.db")),
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		ValkeyEnabled:   getEnvBool("VALKEY_ENABLED", false),
		ValkeyAddress:   getEnv("VALKEY_ADDRESS", "localhost:6379"),
		ValkeyPassword:  getEnv("VALKEY_PASSWORD", ""),
		ValkeyDB:        getEnvInt("VALKEY_DB", 0),
		ValkeyKeyPrefix: getEnv("VALKEY_KEY_PREFIX", "mervel:"),
	}

	aiCfg := AIConfig{
		Provider:     getEnv("AI_PROVIDER", "gateway"),
		GatewayURL:   getEnv("AI_GATEWAY_URL", "https://ai.gateway.lovable.dev/v1/"),
		GatewayKey:   getEnv("AI_GATEWAY_API_KEY", os.Getenv("LOVABLE_API_KEY")),
		GeminiKey:    getEnv("GEMINI_API_KEY", ""),
		ImageModel:   getEnv("AI_IMAGE_MODEL", "google/gemini-2.5-flash-image"),
		TextModel:    getEnv("AI_TEXT_MODEL", "google/gemini-2.5-flash-lite"),
		MaxRetries:   getEnvInt("AI_MAX_RETRIES", 3),
		RetryDelay:   getEnvDuration("AI_RETRY_DELAY", 2*time.Second),
		RequestLimit: getEnvDuration("AI_REQUEST_TIMEOUT", 0),
	}

	imageryCfg := ImageryConfig{
		MaxConcurrent:   getEnvInt("IMAGERY_MAX_CONCURRENT", 4),
		CachePrefix:     getEnv("IMAGERY_CACHE_PREFIX", "mervel-img-v4-"),
		CacheBackend:    getEnv("IMAGERY_CACHE_BACKEND", "database"),
		GenerateTimeout: getEnvDuration("IMAGERY_GENERATE_TIMEOUT", 0),
		PreloadOnBoot:   getEnvBool("IMAGERY_PRELOAD_ON_BOOT", false),
	}

	storeCfg := StorefrontConfig{
		Name:                  getEnv("STORE_NAME", "MERVEL"),
		SiteURL:               strings.TrimSuffix(getEnv("STORE_SITE_URL", "https://mervel-perfume.vercel.app"), "/"),
		ShippingFee:           getEnvInt64("STORE_SHIPPING_FEE", 120),
		FreeShippingThreshold: getEnvInt64("STORE_FREE_SHIPPING_THRESHOLD", 8000),
		ComboDiscount:         getEnvFloat("STORE_COMBO_DISCOUNT", 0.1),
		Currency:              getEnv("STORE_CURRENCY", "BDT"),
	}

	uploadCfg := UploadConfig{
		MaxImageBytes: getEnvInt64("UPLOAD_MAX_IMAGE_BYTES", 5*1024*1024),
		AllowedTypes:  []string{"image/jpeg", "image/png", "image/webp", "image/avif"},
		MaxDimension:  getEnvInt("UPLOAD_MAX_DIMENSION", 1600),
	}

	cfg := &Config{
		App:        appCfg,
		MCP:        MCPConfig{Port: getEnv("MCP_PORT", "8080"), Host: getEnv("MCP_HOST", "localhost")},
		Paths:      pathsCfg,
		Database:   dbCfg,
		AI:         aiCfg,
		Imagery:    imageryCfg,
		Storefront: storeCfg,
		Upload:     uploadCfg,
		WorkerPool: WorkerPoolConfig{Size: getEnvInt("WORKER_POOL_SIZE", 4), QueueSize: getEnvInt("WORKER_POOL_QUEUE_SIZE", 250)},
		Security: SecurityConfig{
			JWTSecret:     getEnv("APP_JWT_SECRET", DefaultJWTSecret),
			TokenTTL:      getEnvDuration("APP_TOKEN_TTL", 24*time.Hour),
			AdminEmail:    getEnv("ADMIN_EMAIL", ""),
			AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		},
	}

	Global = cfg
	return cfg, nil
}
