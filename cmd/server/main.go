package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sean-rowe/weather-report/internal/adapters/primary/rest"
	"github.com/sean-rowe/weather-report/internal/app"
	"github.com/sean-rowe/weather-report/internal/core/domain"
	"github.com/sean-rowe/weather-report/internal/core/ports"
	"github.com/sean-rowe/weather-report/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "weather-report",
		Short:        "Weather report service",
		Long:         "Serves current conditions, a 15-day forecast and a 120-hour series for an address or the caller's location",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Print one weather report as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			autoDetect, _ := cmd.Flags().GetBool("auto-detect")
			street, _ := cmd.Flags().GetString("street")
			city, _ := cmd.Flags().GetString("city")
			state, _ := cmd.Flags().GetString("state")

			return report(cmd.Context(), domain.LocationQuery{
				AutoDetect: autoDetect,
				Address:    domain.Address{Street: street, City: city, State: state},
			})
		},
	}

	reportCmd.Flags().Bool("auto-detect", false, "Locate by the public IP of this machine")
	reportCmd.Flags().String("street", "", "Street address")
	reportCmd.Flags().String("city", "", "City")
	reportCmd.Flags().String("state", "", "State")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
		},
	}

	rootCmd.AddCommand(serveCmd, reportCmd, versionCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	application, err := app.New()

	if err != nil {
		return err
	}

	if err := application.Start(ctx); err != nil {
		application.Logger().Error("failed to start application", zap.Error(err))

		return err
	}

	application.WaitForShutdown()
	application.Stop()

	return nil
}

func report(ctx context.Context, query domain.LocationQuery) error {
	application, err := app.New()

	if err != nil {
		return err
	}

	defer func() { _ = application.Logger().Sync() }()

	return writeReport(ctx, application.WeatherService(), query, os.Stdout)
}

// writeReport fetches one report and writes it to w as indented JSON, in the
// same shape /get_weather returns.
func writeReport(ctx context.Context, service ports.WeatherService, query domain.LocationQuery, w io.Writer) error {
	result, err := service.Report(ctx, query)

	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(rest.NewWeatherResponse(result))
}
