package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/i474232898/weather-lookup/internal/weather"
)

func newLookupCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <city>",
		Short: "Look up current weather and clothing suggestions for a city",
		Example: `  weather-lookup lookup Chicago
  weather-lookup lookup "Chicago, IL"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			client, err := newOpenWeatherClient(cfg, logger)
			if err != nil {
				return err
			}
			// Lookups never touch the store.
			service := weather.NewService(nil, client, client, logger)

			city := strings.Join(args, " ")

			stop := startSpinner("Fetching weather for " + city)
			res := service.Lookup(cmd.Context(), city)
			stop()

			if !res.OK() {
				return errors.New(res.Err.Message)
			}
			renderResult(cmd.OutOrStdout(), city, res)
			return nil
		},
	}
}

func startSpinner(message string) func() {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message
	s.Start()
	return s.Stop
}

func renderResult(w io.Writer, city string, res weather.Result) {
	mainSection, ok := res.Weather["main"].(map[string]any)
	if !ok {
		fmt.Fprintf(w, "No temperature data returned for %s\n", city)
		return
	}

	temps := table.NewWriter()
	temps.SetOutputMirror(w)
	temps.SetTitle(city)
	temps.AppendHeader(table.Row{"", "°C", "°F"})
	temps.AppendRows([]table.Row{
		{"Current", mainSection["temp"], mainSection["temp_f"]},
		{"Feels like", mainSection["feels_like"], mainSection["feels_like_f"]},
		{"Min", mainSection["temp_min"], mainSection["temp_min_f"]},
		{"Max", mainSection["temp_max"], mainSection["temp_max_f"]},
	})
	temps.SetStyle(table.StyleLight)
	temps.Render()

	clothes, ok := res.Weather["clothing_suggestions"].(weather.ClothingSuggestions)
	if !ok {
		return
	}
	wear := table.NewWriter()
	wear.SetOutputMirror(w)
	wear.AppendHeader(table.Row{"Top", "Bottom", "Outerwear", "Accessories"})
	wear.AppendRow(table.Row{
		strings.Join(clothes.Top, "\n"),
		strings.Join(clothes.Bottom, "\n"),
		strings.Join(clothes.Outerwear, "\n"),
		strings.Join(clothes.Accessories, "\n"),
	})
	wear.SetStyle(table.StyleLight)
	wear.Render()
}
