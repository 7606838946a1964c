package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/kardianos/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"eventfeed/internal/config"
	"eventfeed/internal/feed"
	"eventfeed/internal/metrics"
	"eventfeed/internal/view"
)

// Variables to hold flag values
var (
	expPort       string
	expInterval   time.Duration
	expTimeout    time.Duration
	expOrdering   string
	serviceAction string
)

// --- SERVICE WRAPPER ---

// program implements the kardianos/service interface
type program struct {
	addr      string
	feed      *feed.Feed
	table     *view.Table
	collector *metrics.FeedCollector
	logger    *slog.Logger

	server *http.Server
	cancel context.CancelFunc
	exit   chan struct{}
}

func newProgram(f *feed.Feed, table *view.Table, collector *metrics.FeedCollector, addr string, logger *slog.Logger) *program {
	return &program{
		addr:      addr,
		feed:      f,
		table:     table,
		collector: collector,
		logger:    logger,
	}
}

func (p *program) Start(s service.Service) error {
	// Start should not block. Do the actual work async.
	p.exit = make(chan struct{})
	p.server = &http.Server{
		Addr:              p.addr,
		Handler:           p.handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	if err := p.feed.Start(ctx); err != nil {
		cancel()
		return err
	}

	go p.run()
	return nil
}

func (p *program) handler() http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(p.collector)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := p.table.Render(w); err != nil {
			p.logger.Error("render table", "error", err)
		}
	})
	return mux
}

func (p *program) run() {
	defer close(p.exit)

	p.logger.Info("exporter listening", "addr", p.addr)
	if err := p.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		p.logger.Error("http server error", "error", err)
	}
}

func (p *program) Stop(s service.Service) error {
	p.logger.Info("stopping service")
	p.cancel()
	p.feed.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if p.server != nil {
		if err := p.server.Shutdown(ctx); err != nil {
			p.logger.Error("server forced to shutdown", "error", err)
		}
	}
	<-p.exit
	return nil
}

// serviceArguments pins every resolved setting on the service command line,
// so the installed service does not depend on the service user's config.
func serviceArguments(s config.Settings) []string {
	return []string{
		"exporter",
		"--host", s.BaseURL,
		"--port", s.MetricsPort,
		"--interval", s.Interval.String(),
		"--timeout", s.Timeout.String(),
		"--ordering", s.Ordering,
		"--log-level", s.LogLevel,
	}
}

// --- COMMAND ---

var exporterCmd = &cobra.Command{
	Use:   "exporter",
	Short: "Run the event feed as a Prometheus exporter service",
	Long: `Starts a long-running process that polls the backend, keeps the current
event table in memory and exposes it at / with feed metrics at /metrics.
Can be installed as a system service.`,
	Run: func(cmd *cobra.Command, args []string) {
		s := loadSettings()
		if cmd.Flags().Changed("port") {
			s.MetricsPort = expPort
		}
		if cmd.Flags().Changed("interval") {
			s.Interval = expInterval
		}
		if cmd.Flags().Changed("timeout") {
			s.Timeout = expTimeout
		}
		if cmd.Flags().Changed("ordering") {
			s.Ordering = expOrdering
		}
		if err := config.CheckInterval(s.Interval); err != nil {
			log.Fatal(err)
		}

		ordering, err := feed.ParseOrdering(s.Ordering)
		if err != nil {
			log.Fatal(err)
		}

		// 1. Define Service Configuration
		svcConfig := &service.Config{
			Name:        "eventfeed-exporter",
			DisplayName: "Event Feed Exporter",
			Description: "Polls detection events and exposes them to Prometheus",
			// Arguments passed to the binary when run as a service
			Arguments: serviceArguments(s),
		}

		// 2. Wire the feed
		logger := newLogger(s.LogLevel, os.Stderr)
		table := view.NewTable(nil)
		collector := metrics.NewFeedCollector()
		f := feed.New(newClient(s), table, feed.Options{
			Interval: s.Interval,
			Ordering: ordering,
			OnResult: collector.Observe,
			Logger:   logger,
		})
		prg := newProgram(f, table, collector, fmt.Sprintf(":%s", s.MetricsPort), logger)

		svc, err := service.New(prg, svcConfig)
		if err != nil {
			log.Fatal(err)
		}

		// 3. Handle Service Control Actions (Install, Start, Stop, Uninstall)
		if serviceAction != "" {
			if err := service.Control(svc, serviceAction); err != nil {
				log.Fatalf("Failed to %s service: %v", serviceAction, err)
			}
			fmt.Printf("Service action '%s' completed successfully.\n", serviceAction)
			return
		}

		// 4. Run the Service (Blocking)
		svcLogger, err := svc.Logger(nil)
		if err != nil {
			log.Fatal(err)
		}
		if err = svc.Run(); err != nil {
			_ = svcLogger.Error(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(exporterCmd)
	exporterCmd.Flags().StringVar(&expPort, "port", "9120", "Port to listen on")
	exporterCmd.Flags().DurationVar(&expInterval, "interval", feed.DefaultInterval, "Poll interval")
	exporterCmd.Flags().DurationVar(&expTimeout, "timeout", 0, "Per-request timeout (0 disables)")
	exporterCmd.Flags().StringVar(&expOrdering, "ordering", "latest-issued", "Overlapping refreshes: latest-issued or last-completed")
	exporterCmd.Flags().StringVar(&serviceAction, "service", "", "Service action: install, uninstall, start, stop")
}
