package config

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/i474232898/weather-lookup/internal/weather/providers"
)

type AppConfig struct {
	OpenWeatherAPIKey     string
	OpenWeatherBaseURL    string
	OpenWeatherGeocodeURL string

	// HTTPTimeout bounds each outbound provider call.
	HTTPTimeout time.Duration

	Port        string
	CORSOrigins string

	// StoreDriver is "sqlite" or "memory".
	StoreDriver     string
	StorePath       string
	StoreMaxHistory int           // memory driver: max history records per city (0 = unlimited)
	StoreMaxAge     time.Duration // memory driver: max age of history records (0 = unlimited)

	// RefreshInterval controls how often favorites are refreshed into history (0 = disabled).
	RefreshInterval time.Duration

	LogLevel  string
	LogFormat string
}

var defaults = map[string]string{
	"openweather.base_url":    providers.DefaultOpenWeatherBaseURL,
	"openweather.geocode_url": providers.DefaultOpenWeatherGeocodeURL,
	"http.timeout":            "10s",
	"port":                    "8080",
	"cors.origins":            "*",
	"store.driver":            "sqlite",
	"store.path":              "weather.db",
	"store.max_history":       "500",
	"store.max_age":           "720h",
	"refresh.interval":        "30m",
	"log.level":               "info",
	"log.format":              "json",
}

// envKeys maps environment variables to config keys.
var envKeys = map[string]string{
	"OPENWEATHER_API_KEY":     "openweather.api_key",
	"OPENWEATHER_BASE_URL":    "openweather.base_url",
	"OPENWEATHER_GEOCODE_URL": "openweather.geocode_url",
	"HTTP_TIMEOUT":            "http.timeout",
	"PORT":                    "port",
	"CORS_ORIGINS":            "cors.origins",
	"STORE_DRIVER":            "store.driver",
	"STORE_PATH":              "store.path",
	"STORE_MAX_HISTORY":       "store.max_history",
	"STORE_MAX_AGE":           "store.max_age",
	"REFRESH_INTERVAL":        "refresh.interval",
	"LOG_LEVEL":               "log.level",
	"LOG_FORMAT":              "log.format",
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"port":       "port",
	"store-path": "store.path",
	"log-level":  "log.level",
}

// Load reads configuration with increasing precedence from defaults, the
// optional config file, a .env file, the environment and finally flags.
// flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	k := koanf.New(".")
	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("set default %s: %w", key, err)
		}
	}

	if configFile != "" {
		parser, err := parserForFile(configFile)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configFile, err)
		}
	}

	// Empty variables are treated as unset.
	if err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		return envKeys[key], value
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	return fromKoanf(k)
}

func fromKoanf(k *koanf.Koanf) (*AppConfig, error) {
	cfg := &AppConfig{
		OpenWeatherAPIKey:     strings.TrimSpace(k.String("openweather.api_key")),
		OpenWeatherBaseURL:    strings.TrimRight(k.String("openweather.base_url"), "/"),
		OpenWeatherGeocodeURL: k.String("openweather.geocode_url"),
		Port:                  k.String("port"),
		CORSOrigins:           k.String("cors.origins"),
		StoreDriver:           strings.ToLower(k.String("store.driver")),
		StorePath:             k.String("store.path"),
		StoreMaxHistory:       k.Int("store.max_history"),
		LogLevel:              k.String("log.level"),
		LogFormat:             k.String("log.format"),
	}

	if cfg.OpenWeatherAPIKey == "" {
		return nil, weather.ErrMissingAPIKey
	}

	var err error
	if cfg.HTTPTimeout, err = duration(k, "http.timeout"); err != nil {
		return nil, err
	}
	if cfg.StoreMaxAge, err = duration(k, "store.max_age"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = duration(k, "refresh.interval"); err != nil {
		return nil, err
	}

	switch cfg.StoreDriver {
	case "sqlite", "memory":
	default:
		return nil, fmt.Errorf("invalid store.driver %q: want sqlite or memory", cfg.StoreDriver)
	}

	return cfg, nil
}

func duration(k *koanf.Koanf, key string) (time.Duration, error) {
	d, err := time.ParseDuration(k.String(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parserForFile(path string) (koanf.Parser, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	case ".env":
		return dotenv.Parser(), nil
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", ext)
	}
}
