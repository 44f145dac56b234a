package main

import (
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/logging"
	"github.com/i474232898/weather-lookup/internal/weather/providers"
)

// globalOptions are flags shared by every subcommand.
type globalOptions struct {
	configFile string
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "weather-lookup",
		Short: "City weather lookups with clothing suggestions",
		Long: `Looks up current weather for US cities through OpenWeatherMap, converts
temperatures to Fahrenheit and suggests what to wear.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (yaml, json, toml or .env)")
	cmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "D", false, "Enable debug logging")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newLookupCmd(opts))

	return cmd
}

// load reads configuration and builds the logger for a subcommand.
func (o *globalOptions) load(cmd *cobra.Command) (*config.AppConfig, *zap.Logger, error) {
	cfg, err := config.Load(o.configFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	if o.debug {
		cfg.LogLevel = "debug"
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func newOpenWeatherClient(cfg *config.AppConfig, logger *zap.Logger) (*providers.OpenWeatherClient, error) {
	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	return providers.NewOpenWeatherClient(httpClient, providers.OpenWeatherConfig{
		APIKey:     cfg.OpenWeatherAPIKey,
		BaseURL:    cfg.OpenWeatherBaseURL,
		GeocodeURL: cfg.OpenWeatherGeocodeURL,
	}, logger)
}
