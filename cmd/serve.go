package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"tracker/internal/logger"
	"tracker/internal/operations"
	"tracker/internal/server"
	"tracker/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP JSON API",
	Long: `Serve loads the data file once and keeps it cached. Operations commit
immediately; the server flushes anything pending on shutdown.

Environment variables:
  SERVER_ADDR      - Listen address (default :8080)
  CORS_ORIGINS     - Comma separated origins allowed to call the API
  SERVER_READ_ONLY - Reject every request that changes data`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides SERVER_ADDR)")
	serveCmd.Flags().Bool("read-only", false, "Reject every request that changes data")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	cfg, m, err := openStore(cmd)
	if err != nil {
		return err
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.ServerAddr
	}
	readOnly, _ := cmd.Flags().GetBool("read-only")

	unsubscribe := m.Subscribe(func(status store.SaveStatus, err error) {
		if status == store.StatusConflict {
			log.Warn().Err(err).Str("data_file", m.Path()).Msg("Remote document changed, cache reloaded")
		}
	})
	defer unsubscribe()

	if cfg.LogLevel != "debug" && cfg.LogLevel != "trace" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.NewRouter(operations.NewService(m), server.Options{
		CORSOrigins: cfg.CORSOrigins,
		ReadOnly:    readOnly || cfg.ServerReadOnly,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx, addr, router, m)
}
