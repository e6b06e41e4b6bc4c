// Package server exposes the operations and collections over an HTTP JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"tracker/internal/logger"
	"tracker/internal/operations"
	"tracker/internal/store"
)

// Options configures the router.
type Options struct {
	CORSOrigins []string
	// ReadOnly rejects every request that could change data.
	ReadOnly bool
}

type handler struct {
	svc   *operations.Service
	store *store.Manager
}

// NewRouter builds the gin engine serving svc and its store.
func NewRouter(svc *operations.Service, opts Options) *gin.Engine {
	h := &handler{
		svc:   svc,
		store: svc.Store(),
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  opts.CORSOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
			ExposeHeaders: []string{"Content-Length", requestIDHeader},
			MaxAge:        12 * time.Hour,
		}))
	}

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "online"}) })

	api := r.Group("/api")
	if opts.ReadOnly {
		api.Use(readOnly())
	}

	api.GET("/status", h.status)
	api.GET("/report", h.report)
	api.GET("/collections/:name", h.collection)
	api.GET("/files", h.files)
	api.POST("/files/switch", h.switchFile)
	api.POST("/flush", h.flush)

	s := h.svc
	api.POST("/products", create(s.CreateProduct))
	api.PUT("/products/:id", update(s.UpdateProduct))
	api.DELETE("/products/:id", remove(s.DeleteProduct))

	api.POST("/suppliers", create(s.CreateSupplier))
	api.PUT("/suppliers/:id", update(s.UpdateSupplier))
	api.DELETE("/suppliers/:id", remove(s.DeleteSupplier))

	api.POST("/partners", create(s.CreatePartner))
	api.DELETE("/partners/:id", remove(s.DeletePartner))

	api.POST("/containers", create(s.CreateContainer))
	api.PUT("/containers/:id", update(s.UpdateContainer))
	api.DELETE("/containers/:id", remove(s.DeleteContainer))

	api.POST("/payments", create(s.CreatePayment))
	api.PUT("/payments/:id", update(s.UpdatePayment))
	api.DELETE("/payments/:id", remove(s.DeletePayment))

	api.POST("/partner-transactions", create(s.CreatePartnerTransaction))
	api.PUT("/partner-transactions/:id", update(s.UpdatePartnerTransaction))
	api.DELETE("/partner-transactions/:id", remove(s.DeletePartnerTransaction))

	api.POST("/stock-adjustments", create(s.CreateStockAdjustment))
	api.DELETE("/stock-adjustments/:id", remove(s.DeleteStockAdjustment))

	api.POST("/sales", create(s.CreateSale))
	api.DELETE("/sales/:id", remove(s.DeleteSale))

	api.POST("/expenses", create(s.CreateExpense))
	api.DELETE("/expenses/:id", remove(s.DeleteExpense))

	return r
}

// Serve runs handler on addr until ctx is cancelled, then shuts down and
// flushes pending saves.
func Serve(ctx context.Context, addr string, handler http.Handler, m *store.Manager) error {
	const op = "Serve"

	log := logger.WithComponent("server")
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("data_file", m.Path()).Msg("Server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: %w", op, err)
		}
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: shutdown: %w", op, err)
		}
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := m.Close(closeCtx); err != nil {
		return fmt.Errorf("%s: final save: %w", op, err)
	}
	return nil
}
