package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/vms/internal/audit"
	"github.com/your-org/vms/internal/config"
	"github.com/your-org/vms/internal/models"
	"github.com/your-org/vms/internal/observability"
	"github.com/your-org/vms/internal/queue"
	"github.com/your-org/vms/internal/storage"
)

// The auditor drains the audit stream into Postgres. It is the only
// writer of audit_events; API instances never touch that table.
func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("starting VMS auditor")

	// Connect to Postgres
	db, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		slog.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Connect to NATS
	producer, err := queue.NewProducer(cfg.NATS.URL)
	if err != nil {
		slog.Error("connect to nats producer", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	if err := producer.EnsureStream(context.Background()); err != nil {
		slog.Warn("ensure audit stream", "error", err)
	}

	consumer, err := queue.NewConsumer(cfg.NATS.URL)
	if err != nil {
		slog.Error("create consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := audit.NewStoreEmitter(db)

	// Durable consumer from the start of the stream; inserts are
	// idempotent on event id so redelivery is safe.
	err = consumer.ConsumeAudit(ctx, "auditor", func(ctx context.Context, msg jetstream.Msg) error {
		var ev models.AuditEvent
		if err := json.Unmarshal(msg.Data(), &ev); err != nil {
			slog.Error("unmarshal audit event", "error", err)
			return nil // Don't retry on unmarshal errors
		}

		if err := sink.Emit(ctx, ev); err != nil {
			return fmt.Errorf("persist audit event %s: %w", ev.ID, err)
		}
		return nil
	}, false)
	if err != nil {
		slog.Error("start audit consumer", "error", err)
		os.Exit(1)
	}

	// Metrics endpoint
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		slog.Info("auditor metrics listening", "addr", ":8082")
		if err := http.ListenAndServe(":8082", mux); err != nil {
			slog.Error("metrics server error", "error", err)
		}
	}()

	// Periodically report stream backlog
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pending, err := producer.PendingAudit(ctx)
				if err == nil {
					observability.AuditQueueDepth.Set(float64(pending))
				}
			}
		}
	}()

	// Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down auditor...")
	cancel()
	time.Sleep(2 * time.Second)
	slog.Info("auditor stopped")
}
