// Worker consumes login-history events from Kafka and pushes them to Loki.
// Set KAFKA_BROKERS, HISTORY_KAFKA_TOPIC, KAFKA_GROUP_ID and LOKI_URL. SECRET_KEY is
// validated by the shared config but unused here.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"auth-session-service/internal/config"
	"auth-session-service/internal/platform/logging"
	"auth-session-service/internal/telemetry/loki"
)

const pushTimeout = 10 * time.Second

// messageReader is the subset of *kafka.Reader used by consume.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// eventPusher is the subset of *loki.Client used by consume.
type eventPusher interface {
	PushEventJSON(ctx context.Context, raw []byte) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "auth-history-worker"})

	brokers := cfg.KafkaBrokersList()
	if len(brokers) == 0 {
		logger.Error("KAFKA_BROKERS is required")
		os.Exit(1)
	}
	client, err := loki.NewClient(cfg.LokiURL, nil)
	if err != nil {
		logger.Error("LOKI_URL is required", "error", err)
		os.Exit(1)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          cfg.HistoryKafkaTopic,
		GroupID:        cfg.KafkaGroupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        time.Second,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("consuming login events", "topic", cfg.HistoryKafkaTopic, "group", cfg.KafkaGroupID, "loki", cfg.LokiURL)
	consume(ctx, reader, client, logger)
	logger.Info("worker stopped")
}

// consume forwards messages until ctx is done. Read and push failures are
// logged and skipped.
func consume(ctx context.Context, reader messageReader, pusher eventPusher, logger *slog.Logger) {
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("kafka read failed", "error", err)
			continue
		}
		pushCtx, cancel := context.WithTimeout(ctx, pushTimeout)
		if err := pusher.PushEventJSON(pushCtx, msg.Value); err != nil {
			logger.Warn("loki push failed", "offset", msg.Offset, "error", err)
		}
		cancel()
	}
}
