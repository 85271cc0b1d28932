package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"csr-insights-go/internal/calls"
	"csr-insights-go/internal/classifier"
	"csr-insights-go/internal/config"
	"csr-insights-go/internal/customer"
	"csr-insights-go/internal/dataset"
	"csr-insights-go/internal/logger"
	"csr-insights-go/internal/notify"
	"csr-insights-go/internal/processor"
	"csr-insights-go/internal/router"
	"csr-insights-go/internal/trend"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	log.Logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
	log.Info("starting service")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := classifier.ParseBackend(cfg.Classifier.Backend)
	if err != nil {
		log.WithError(err).Fatal("invalid classifier backend")
	}
	opts := classifier.Options{
		Backend:   backend,
		ModelPath: cfg.Classifier.ModelPath,
		Log:       log.Component("classifier"),
	}
	if cfg.Classifier.NeuralURL != "" {
		opts.Neural = classifier.NewNeuralClient(cfg.Classifier.NeuralURL, cfg.Classifier.NeuralAPIKey)
	}
	clf := classifier.New(opts)

	roster := router.ReferenceRoster()
	if cfg.RosterPath != "" {
		roster, err = router.LoadRoster(cfg.RosterPath)
		if err != nil {
			log.WithError(err).Fatal("failed to load roster")
		}
	}
	rt, err := router.New(roster, log.Component("router"))
	if err != nil {
		log.WithError(err).Fatal("invalid roster")
	}

	var dir customer.Directory
	if cfg.DatabaseURL != "" {
		pg, err := customer.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to customer database")
		}
		defer pg.Close()
		if err := pg.EnsureSchema(ctx); err != nil {
			log.WithError(err).Fatal("failed to prepare customer schema")
		}
		dir = pg
		log.Info("customer directory: postgres")
	} else {
		dir = customer.NewMemoryDirectory(customer.ReferenceCustomers(time.Now())...)
		log.Info("customer directory: in-memory reference customers")
	}

	sinks := notify.Multi{notify.LogSink{Log: log.Component("notify")}}
	if cfg.Notify.WebhookURL != "" {
		sinks = append(sinks, notify.NewWebhookSink(cfg.Notify.WebhookURL))
	}
	if len(cfg.Notify.KafkaBrokers) > 0 {
		k := notify.NewKafkaSink(cfg.Notify.KafkaBrokers, cfg.Notify.KafkaTopic)
		defer k.Close()
		sinks = append(sinks, k)
	}

	var summary *dataset.DatasetSummary
	if _, err := os.Stat(cfg.DatasetPath); err == nil {
		ds, err := dataset.LoadAndSummarize(cfg.DatasetPath)
		if err != nil {
			log.WithError(err).Warn("dataset summary unavailable")
		} else {
			summary = &ds
		}
	}

	tracker := trend.NewTracker(log.Component("trend"))
	go pruneLoop(ctx, tracker, cfg.HistoryTTL, log)

	proc := processor.New(processor.Deps{
		Classifier: clf,
		Tracker:    tracker,
		Router:     rt,
		Directory:  dir,
		Calls:      calls.NewManager(log.Component("calls")),
		Sink:       sinks,
		Log:        log.Entry,
	})
	log.WithField("backend", clf.Backend()).WithField("csrs", len(roster)).Info("pipeline ready")

	s := &server{proc: proc, dir: dir, dataset: summary, log: log}

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
	log.Info("server stopped")
}

// pruneLoop drops trend histories of calls that went quiet.
func pruneLoop(ctx context.Context, t *trend.Tracker, ttl time.Duration, log *logger.Logger) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(ttl / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := t.Prune(ttl); n > 0 {
				log.WithField("pruned", n).Info("dropped stale call histories")
			}
		}
	}
}
