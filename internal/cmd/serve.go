package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/matthieukhl/storefront/internal/metrics"
	"github.com/matthieukhl/storefront/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run"},
	Short:   "Start the storefront dev server",
	Long: `Start the storefront dev server which provides:
- the client state and its operations as a REST API
- a GET /products endpoint serving the bundled catalog
- Prometheus metrics on /metrics`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	fmt.Println("🚀 Storefront server starting...")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	fmt.Println("📝 Loading configuration and restoring state...")
	a, err := openApp(ctx, m)
	if err != nil {
		return err
	}
	defer a.close()

	st := a.store.Snapshot()
	fmt.Printf("✅ Storage ready (%s), signed in: %t, %d cart item(s)\n", a.cfg.Storage.Driver, st.IsAuthenticated, st.CartCount())

	var health server.HealthChecker
	if hc, ok := a.kv.(server.HealthChecker); ok {
		health = hc
	}

	if a.cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.NewServer(server.Config{
		Store:       a.store,
		Metrics:     m,
		Gatherer:    reg,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		Health:      health,
	})

	addr := a.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()
	fmt.Printf("🌐 Listening on %s\n", addr)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		fmt.Println("🛑 Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
	}
	return nil
}
