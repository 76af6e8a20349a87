package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"tech-dispatch/internal/server"
)

func NewServeCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dispatch HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !debug {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := newLogger()
			w, err := loadWire(ctx, logger)
			if err != nil {
				return err
			}
			defer w.Close()

			return server.New(w, logger).Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Run gin in debug mode")
	return cmd
}
