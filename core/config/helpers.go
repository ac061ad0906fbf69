package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// GetAllSettings returns a map of the non-secret settings currently loaded in memory.
func GetAllSettings() map[string]any {
	if Global == nil {
		return map[string]any{}
	}
	return map[string]any{
		"app_version":                   Global.App.Version,
		"app_debug":                     Global.App.Debug,
		"ai_provider":                   Global.AI.Provider,
		"ai_image_model":                Global.AI.ImageModel,
		"ai_text_model":                 Global.AI.TextModel,
		"imagery_max_concurrent":        Global.Imagery.MaxConcurrent,
		"imagery_cache_prefix":          Global.Imagery.CachePrefix,
		"imagery_cache_backend":         Global.Imagery.CacheBackend,
		"store_shipping_fee":            Global.Storefront.ShippingFee,
		"store_free_shipping_threshold": Global.Storefront.FreeShippingThreshold,
		"store_combo_discount":          Global.Storefront.ComboDiscount,
		"upload_max_image_bytes":        Global.Upload.MaxImageBytes,
		"worker_pool_size":              Global.WorkerPool.Size,
		"worker_pool_queue_size":        Global.WorkerPool.QueueSize,
	}
}

// Helpers
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		vLower := strings.ToLower(v)
		return vLower == "1" || vLower == "true" || vLower == "yes" || vLower == "on"
	}
	return fallback
}

// getEnvDuration accepts Go durations ("2s") or plain milliseconds ("2000").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(n) * time.Millisecond
	}
	return fallback
}
