package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"tech-dispatch/internal/app"
	"tech-dispatch/internal/config"
)

var configPath string

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Station issue dispatch - send the nearest available technician",
		Long: `dispatch matches a reported station issue to the nearest available
technician and serves the result to the tracking UI.

Examples:
  dispatch serve
  dispatch assign --station "MG Road" --problem "Pump 3 not dispensing" --lat 12.9716 --lon 77.5946
  dispatch technicians list
  dispatch technicians set-status Ravi busy`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ./config.yaml)")

	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewAssignCommand())
	rootCmd.AddCommand(NewTechniciansCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *log.Logger {
	return log.New(os.Stderr, "", log.LstdFlags)
}

func loadWire(ctx context.Context, logger *log.Logger) (*app.Wire, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return app.NewWire(ctx, cfg, logger)
}
