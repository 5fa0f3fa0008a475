package cmd

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/go-drift/nodeward/internal/server"
	"github.com/go-drift/nodeward/pkg/contact"
	"github.com/go-drift/nodeward/pkg/monitor"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the page catalog, page snapshots, the contact form and the
live monitoring feed.

Routes:
  GET  /api/content     page catalog
  GET  /api/page        snapshot at ?scroll=&elapsed=&width=&height=
  POST /api/contact     contact form submission
  GET  /api/events      recent live feed events
  POST /api/events      push a live feed event (?kind=attack for attacks)
  GET  /ws              live feed websocket
  GET  /metrics         Prometheus metrics
  GET  /healthz         liveness`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	catalog, err := loadCatalog(cfg.Content)
	if err != nil {
		return err
	}

	store, err := contact.Open(cfg.Contact.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	srv, err := server.New(server.Options{
		Config:     cfg.Server,
		Content:    cfg.Content,
		Logger:     logger,
		Catalog:    catalog,
		Feed:       monitor.NewFeed(cfg.Monitor.Limit),
		Store:      store,
		Registerer: prometheus.DefaultRegisterer,
		Gatherer:   prometheus.DefaultGatherer,
	})
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Server.Addr, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting nodeward",
		zap.String("version", Version),
		zap.String("content", catalog.Version),
		zap.String("database", cfg.Contact.Database))
	return srv.Run(ctx, ln)
}
