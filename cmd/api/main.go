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
	"runtime"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/your-org/vms/internal/api"
	"github.com/your-org/vms/internal/api/ws"
	"github.com/your-org/vms/internal/audit"
	"github.com/your-org/vms/internal/biometric"
	"github.com/your-org/vms/internal/capture"
	"github.com/your-org/vms/internal/config"
	"github.com/your-org/vms/internal/links"
	"github.com/your-org/vms/internal/models"
	"github.com/your-org/vms/internal/observability"
	"github.com/your-org/vms/internal/queue"
	"github.com/your-org/vms/internal/storage"
	"github.com/your-org/vms/internal/visits"
	"github.com/your-org/vms/pkg/dto"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("starting VMS API service", "port", cfg.Server.Port)

	settings, err := config.NewProvider(cfg)
	if err != nil {
		slog.Error("init settings provider", "error", err)
		os.Exit(1)
	}

	// Connect to Postgres
	db, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		slog.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Connect to MinIO
	photos, err := storage.NewPhotoStore(cfg.MinIO)
	if err != nil {
		slog.Error("connect to minio", "error", err)
		os.Exit(1)
	}
	if err := photos.EnsureBucket(context.Background()); err != nil {
		slog.Warn("ensure minio bucket", "error", err)
	}

	// Connect to NATS
	producer, err := queue.NewProducer(cfg.NATS.URL)
	if err != nil {
		slog.Error("connect to nats", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	if err := producer.EnsureStream(context.Background()); err != nil {
		slog.Warn("ensure audit stream", "error", err)
	}

	// Every audit event goes to the bus for the auditor service, and to
	// the local log for operators tailing the instance.
	emitter := audit.MultiEmitter{audit.SlogEmitter{}, audit.NewBusEmitter(producer)}

	// Engine components
	profiles := db.Profiles()
	sessions := db.Sessions()
	enroller := biometric.NewEnroller(profiles, settings, emitter)
	matcher := biometric.NewMatcher(profiles, settings)
	registry := links.NewRegistry(db.Links(), sessions, settings, emitter)
	manager := visits.NewManager(db, db.Links(), sessions, settings, emitter)

	// WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Consume the audit stream to feed the live visit dashboard.
	consumer, err := queue.NewConsumer(cfg.NATS.URL)
	if err != nil {
		slog.Error("create audit consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = consumer.ConsumeAudit(ctx, "api-feed", func(ctx context.Context, msg jetstream.Msg) error {
		var ev models.AuditEvent
		if err := json.Unmarshal(msg.Data(), &ev); err != nil {
			slog.Error("unmarshal audit event", "error", err)
			return nil // Don't retry on unmarshal errors
		}
		if ev.Action != models.ActionVisitTimeIn && ev.Action != models.ActionVisitTimeOut {
			return nil
		}

		evt := &dto.WSEvent{
			Type:      ev.Action,
			SessionID: ev.TargetID,
			VisitorID: ev.ActorID,
			Timestamp: ev.Timestamp.UTC().Format(time.RFC3339),
		}
		if s, ok := ev.Details["detainee_id"].(string); ok {
			if id, err := uuid.Parse(s); err == nil {
				evt.DetaineeID = id
			}
		}
		if s, ok := ev.Details["visit_type"].(string); ok {
			evt.VisitType = s
		}
		if s, ok := ev.Details["method"].(string); ok {
			evt.Method = s
		}
		hub.BroadcastEvent(evt)
		return nil
	}, true)
	if err != nil {
		slog.Warn("start audit feed consumer", "error", err)
	}

	// Initialize ONNX Runtime for photo-based enroll and identify
	var extractor capture.Extractor

	ort.SetSharedLibraryPath(getONNXLibPath())
	if err := ort.InitializeEnvironment(); err != nil {
		slog.Warn("onnx runtime init failed — photo endpoints will be unavailable", "error", err)
	} else {
		ex, err := capture.NewONNXExtractor(cfg.Capture.ModelPath, cfg.Capture.EmbeddingDim)
		if err != nil {
			slog.Warn("extractor init failed — photo endpoints will be unavailable", "error", err)
		} else {
			extractor = ex
			defer ex.Close()
			defer ort.DestroyEnvironment()
			slog.Info("embedding extractor ready", "dim", cfg.Capture.EmbeddingDim)
		}
	}

	// Setup router
	router := api.NewRouter(api.RouterConfig{
		APIKey:    cfg.Server.APIKey,
		DB:        db,
		Photos:    photos,
		Producer:  producer,
		Hub:       hub,
		Settings:  settings,
		Emitter:   emitter,
		Enroller:  enroller,
		Matcher:   matcher,
		Registry:  registry,
		Manager:   manager,
		Extractor: extractor,
	})

	// Start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("API server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down API server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("API server stopped")
}

// getONNXLibPath returns the ONNX Runtime shared library path.
func getONNXLibPath() string {
	switch runtime.GOOS {
	case "windows":
		return "onnxruntime.dll"
	case "linux":
		return "libonnxruntime.so"
	case "darwin":
		return "libonnxruntime.dylib"
	default:
		return "onnxruntime.dll"
	}
}
