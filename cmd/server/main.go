// Server runs the auth/session HTTP API and, when GRPC_ADDR is set, the gRPC health endpoint.
// Without DATABASE_URL it runs on in-memory stores (refused when APP_ENV=production).
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"auth-session-service/internal/config"
	"auth-session-service/internal/db"
	healthhandler "auth-session-service/internal/health/handler"
	"auth-session-service/internal/history"
	historyrepo "auth-session-service/internal/history/repository"
	identityhandler "auth-session-service/internal/identity/handler"
	"auth-session-service/internal/identity/service"
	"auth-session-service/internal/platform/logging"
	"auth-session-service/internal/platform/rbac"
	rolehandler "auth-session-service/internal/role/handler"
	rolerepo "auth-session-service/internal/role/repository"
	"auth-session-service/internal/security"
	"auth-session-service/internal/server"
	sessionrepo "auth-session-service/internal/session/repository"
	"auth-session-service/internal/telemetry"
	telemetryotel "auth-session-service/internal/telemetry/otel"
	"auth-session-service/internal/telemetry/producer"
	userhandler "auth-session-service/internal/user/handler"
	userrepo "auth-session-service/internal/user/repository"
)

const shutdownTimeout = 15 * time.Second

type stores struct {
	conn     *sql.DB
	users    userrepo.Repository
	roles    rolerepo.Repository
	sessions sessionrepo.Repository
	history  historyrepo.Repository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: cfg.ServiceName})
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetryotel.NewProviders(ctx, telemetryotel.Options{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: cfg.ServiceName,
		Insecure:    cfg.OTLPInsecure,
	}, logger)
	if err != nil {
		return err
	}
	providers.SetGlobal()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if st.conn != nil {
		defer st.conn.Close()
	}

	emitters := telemetry.Fanout{telemetryotel.NewEventEmitter(providers.LoggerProvider)}
	kafkaProducer := producer.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.HistoryKafkaTopic)
	if kafkaProducer != nil {
		emitters = append(emitters, kafkaProducer)
		logger.Info("login events streaming to kafka", "topic", cfg.HistoryKafkaTopic)
	}

	codec, err := security.NewTokenCodec([]byte(cfg.SecretKey))
	if err != nil {
		return err
	}
	evaluator, err := rbac.NewOPAEvaluator(ctx)
	if err != nil {
		return err
	}
	recorder := history.NewRecorder(st.history, logger, history.WithEmitter(emitters))
	authSvc := service.NewAuthService(
		st.users, st.roles, st.sessions, recorder,
		security.NewHasher(cfg.BcryptCost), codec,
		cfg.AccessTTL(), cfg.RefreshTTL(),
		service.WithLogger(logger),
	)

	var pinger healthhandler.Pinger
	if st.conn != nil {
		pinger = st.conn
	}
	checker := healthhandler.NewChecker(pinger, evaluator, logger)

	httpSrv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: server.NewRouter(server.Deps{
			Logger:    logger,
			Codec:     codec,
			Evaluator: evaluator,
			AdminRole: cfg.AdminRole,
			Auth:      identityhandler.NewAuthHandler(authSvc, logger),
			Users:     userhandler.NewUserHandler(st.users, recorder, authSvc, logger),
			Roles:     rolehandler.NewRoleHandler(st.roles, st.users, logger),
			Health:    checker,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var grpcSrv *grpc.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return err
		}
		grpcSrv = server.NewGRPCServer(checker)
		go func() {
			logger.Info("gRPC health server listening", "addr", cfg.GRPCAddr)
			if err := grpcSrv.Serve(lis); err != nil {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		logger.Error("server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown", "error", err)
	}
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}

	// Let in-flight async emits finish before closing the sinks.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			logger.Warn("kafka producer close", "error", err)
		}
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		logger.Warn("otel shutdown", "error", err)
	}
	logger.Info("stopped")
	return nil
}

// openStores connects to Postgres when DATABASE_URL is set and falls back to in-memory stores otherwise.
func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set; using in-memory stores (data is lost on restart)")
		return &stores{
			users:    userrepo.NewMemoryRepository(),
			roles:    rolerepo.NewMemoryRepository(),
			sessions: sessionrepo.NewMemoryRepository(),
			history:  historyrepo.NewMemoryRepository(),
		}, nil
	}
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return &stores{
		conn:     conn,
		users:    userrepo.NewPostgresRepository(conn),
		roles:    rolerepo.NewPostgresRepository(conn),
		sessions: sessionrepo.NewPostgresRepository(conn),
		history:  historyrepo.NewPostgresRepository(conn),
	}, nil
}
