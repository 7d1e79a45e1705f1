package cli

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	weatherLocation string
	weatherDate     string
)

var weatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Look up historical weather for a location and date",
	Long: `Weather runs the same lookup used to enrich report sections and prints
the normalized result as JSON.

Example:
  lossreport weather --location "123 Main St, Austin, TX" --date 2024-05-01`,
	RunE: runWeather,
}

func init() {
	rootCmd.AddCommand(weatherCmd)

	weatherCmd.Flags().StringVar(&weatherLocation, "location", "", "property address")
	weatherCmd.Flags().StringVar(&weatherDate, "date", "", "date of loss (YYYY-MM-DD)")
}

func runWeather(cmd *cobra.Command, args []string) error {
	a, err := newApp(nil, os.Stderr, false)
	if err != nil {
		return err
	}
	if a.weather == nil {
		return errors.New("weather enrichment is disabled (weather.enabled: false)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result := a.weather.Fetch(ctx, weatherLocation, weatherDate)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
