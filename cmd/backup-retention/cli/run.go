package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/raoulx24/backup-retention/internal/fs"
	"github.com/raoulx24/backup-retention/internal/journal"
	"github.com/raoulx24/backup-retention/internal/logging"
	"github.com/raoulx24/backup-retention/internal/metrics"
	"github.com/raoulx24/backup-retention/internal/retention"
	"github.com/raoulx24/backup-retention/internal/rules"
	"github.com/raoulx24/backup-retention/internal/watcher"
	"github.com/raoulx24/backup-retention/internal/worker"
)

const queueSize = 64

func NewRunCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Watch the incoming directory and keep the destination pruned",
		Long: `Run the retention daemon: new files in the incoming directory are admitted
into the destination and tagged, the destination is swept after every ingest
and on the configured schedule. SIGHUP reloads the configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context(), opts)
		},
	}
}

func runDaemon(parent context.Context, opts *Options) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := opts.Load()
	if err != nil {
		return err
	}

	log, closer, err := opts.logger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Metrics.Namespace, nil)
		srv := serveMetrics(cfg.Metrics.Listen, collector, log)
		defer shutdown(srv, log)
	}

	workerOpts := []worker.Option{
		worker.WithMetrics(collector),
		worker.WithRemoveSource(cfg.Source.RemoveAfterIngest),
	}
	if cfg.Journal.Path != "" {
		store, err := journal.OpenSQLite(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		workerOpts = append(workerOpts, worker.WithJournal(store))
	}

	fsys := fs.New()
	workerOpts = append(workerOpts, worker.WithFS(fsys))

	prune := retention.New(cfg.Destination.Retention.AutoPrune, fsys, log, retention.WithMetrics(collector))
	queue := worker.NewQueue(queueSize)
	w := worker.New(cfg.Destination, prune, rules.New(prune, log), queue, log, workerOpts...)
	watch := watcher.New(cfg.Source, queue, fsys, log)

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		w.Start(ctx)
	}()
	// Runs before the journal and log file are closed.
	defer func() {
		cancel()
		<-workerDone
	}()
	w.RequestSweep(worker.TriggerStartup)

	go func() {
		if err := watch.Start(ctx); err != nil {
			log.Error("watcher failed", "error", err)
			cancel()
		}
	}()

	sched, err := startScheduler(ctx, cfg.Destination.Retention.Schedule, w, log)
	if err != nil {
		return err
	}

	// Hot reload on SIGHUP
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			sched.Stop()
			log.Info("exit complete")
			return nil

		case <-hup:
			newCfg, err := opts.Load()
			if err != nil {
				log.Error("config reload failed", "error", err)
				continue
			}

			w.UpdateConfig(newCfg.Destination, newCfg.Source.RemoveAfterIngest)
			watch.UpdateConfig(newCfg.Source)

			if newCfg.Destination.Retention.Schedule != cfg.Destination.Retention.Schedule {
				sched.Stop()
				if sched, err = startScheduler(ctx, newCfg.Destination.Retention.Schedule, w, log); err != nil {
					return err
				}
			}
			cfg = newCfg

			log.Info("config reloaded")
		}
	}
}

func startScheduler(ctx context.Context, schedule string, w *worker.Worker, log logging.Logger) (*retention.Scheduler, error) {
	sched := retention.NewScheduler(schedule, func(context.Context) {
		w.RequestSweep(worker.TriggerSchedule)
	}, log)
	if err := sched.Start(ctx); err != nil {
		return nil, err
	}
	if next := sched.NextRun(); next != nil {
		log.Info("next scheduled sweep", "at", next.Format(time.RFC3339))
	}
	return sched, nil
}

func serveMetrics(addr string, c *metrics.Collector, log logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("metrics endpoint listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}

func shutdown(srv *http.Server, log logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("metrics server shutdown", "error", err)
	}
}
