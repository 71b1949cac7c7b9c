package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jaehkim-quant/research-platform/internal/audit"
	audithandler "github.com/jaehkim-quant/research-platform/internal/audit/handler"
	auditrepo "github.com/jaehkim-quant/research-platform/internal/audit/repository"
	"github.com/jaehkim-quant/research-platform/internal/config"
	"github.com/jaehkim-quant/research-platform/internal/contact"
	contacthandler "github.com/jaehkim-quant/research-platform/internal/contact/handler"
	contactrepo "github.com/jaehkim-quant/research-platform/internal/contact/repository"
	contenthandler "github.com/jaehkim-quant/research-platform/internal/content/handler"
	contentrepo "github.com/jaehkim-quant/research-platform/internal/content/repository"
	contentservice "github.com/jaehkim-quant/research-platform/internal/content/service"
	"github.com/jaehkim-quant/research-platform/internal/db"
	"github.com/jaehkim-quant/research-platform/internal/devotp"
	devotphandler "github.com/jaehkim-quant/research-platform/internal/devotp/handler"
	healthhandler "github.com/jaehkim-quant/research-platform/internal/health/handler"
	identityhandler "github.com/jaehkim-quant/research-platform/internal/identity/handler"
	identityservice "github.com/jaehkim-quant/research-platform/internal/identity/service"
	"github.com/jaehkim-quant/research-platform/internal/logging"
	"github.com/jaehkim-quant/research-platform/internal/mail"
	otprepo "github.com/jaehkim-quant/research-platform/internal/otp/repository"
	"github.com/jaehkim-quant/research-platform/internal/platform/clock"
	"github.com/jaehkim-quant/research-platform/internal/policy/engine"
	"github.com/jaehkim-quant/research-platform/internal/security"
	"github.com/jaehkim-quant/research-platform/internal/server"
	sessionrepo "github.com/jaehkim-quant/research-platform/internal/session/repository"
	"github.com/jaehkim-quant/research-platform/internal/telemetry"
	telemetryotel "github.com/jaehkim-quant/research-platform/internal/telemetry/otel"
	"github.com/jaehkim-quant/research-platform/internal/telemetry/producer"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := logging.Must(os.Getenv("APP_ENV"))
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	if err := cfg.ValidateServer(); err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer conn.Close()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.OTLPInsecure, logger)
	if err != nil {
		logger.Fatal("otel", zap.Error(err))
	}
	providers.SetGlobal()

	var policy *engine.OPAEvaluator
	if cfg.PolicyFile != "" {
		policy, err = engine.LoadOPAEvaluator(ctx, cfg.PolicyFile, logger)
	} else {
		policy, err = engine.NewOPAEvaluator(ctx, engine.DefaultPolicy, logger)
	}
	if err != nil {
		logger.Fatal("policy", zap.Error(err))
	}

	emitters := []telemetry.EventEmitter{telemetryotel.NewEventEmitter(providers.LoggerProvider)}
	kafkaProducer := producer.NewKafkaProducer(cfg.TelemetryKafkaBrokersList(), cfg.TelemetryKafkaTopic, logger)
	if kafkaProducer != nil {
		emitters = append(emitters, kafkaProducer)
		logger.Info("telemetry: kafka enabled", zap.String("topic", cfg.TelemetryKafkaTopic))
	}
	events := telemetry.Multi(emitters...)

	clk := clock.Real{}
	auditRepo := auditrepo.NewPostgresRepository(conn)
	auditLogger := audit.NewLogger(auditRepo, audit.ClientIPFromContext, clk, logger)

	mailer, err := mail.New(cfg, logger)
	if err != nil {
		logger.Fatal("mail", zap.Error(err))
	}

	tokens, err := newTokenProvider(cfg)
	if err != nil {
		logger.Fatal("session tokens", zap.Error(err))
	}

	authOpts := []identityservice.Option{
		identityservice.WithAuditLogger(auditLogger),
		identityservice.WithEventEmitter(events),
		identityservice.WithLogger(logger),
	}
	var devHandler *devotphandler.Handler
	if cfg.DevOTPEnabled && !cfg.IsProduction() {
		store := devotp.NewMemoryStore(clk)
		authOpts = append(authOpts, identityservice.WithDevStore(store))
		devHandler = devotphandler.NewHandler(store)
		logger.Warn("dev OTP endpoint enabled at GET /dev/otp")
	}
	authService := identityservice.NewAuthService(
		identityservice.Admin{
			Username:     cfg.AdminUsername,
			PasswordHash: cfg.AdminPasswordHash,
			Email:        cfg.AdminEmail,
		},
		otprepo.NewPostgresRepository(conn),
		sessionrepo.NewPostgresRepository(conn),
		mailer,
		security.NewHasher(cfg.BcryptCost),
		tokens,
		cfg.OTPTTL(),
		authOpts...,
	)

	inquiries := contactrepo.NewPostgresRepository(conn)
	var sink contact.Sink
	switch cfg.ContactSink {
	case config.ContactSinkNotion:
		sink = contact.NewNotionSink(cfg.NotionAPIKey, cfg.NotionDatabaseID, logger)
	default:
		sink = contact.NewStoreSink(inquiries, mailer, cfg.AdminEmail, logger)
	}
	contactService := contact.NewService(sink, inquiries,
		contact.WithAuditLogger(auditLogger),
		contact.WithEventEmitter(events),
		contact.WithLogger(logger),
	)

	posts := contentrepo.NewPostgresPostRepository(conn)
	series := contentrepo.NewPostgresSeriesRepository(conn)
	contentOpts := []contentservice.Option{
		contentservice.WithEventEmitter(events),
		contentservice.WithLogger(logger),
	}
	contentHandler := contenthandler.NewHandler(
		contentservice.NewPostService(posts, series, contentOpts...),
		contentservice.NewSeriesService(series, contentOpts...),
		contentservice.NewCommentService(contentrepo.NewPostgresCommentRepository(conn), posts, contentOpts...),
		contentservice.NewLikeService(contentrepo.NewPostgresLikeRepository(conn), posts, contentOpts...),
		logger,
	)

	limiters, closeLimiters, err := server.NewLimiters(cfg.RateLimitRedisURL, cfg.RateLimitMax, cfg.RateLimitWindow(), clk, logger)
	if err != nil {
		logger.Fatal("rate limiter", zap.Error(err))
	}

	checker := healthhandler.NewChecker(conn, policy)
	cookieName := identityhandler.CookieNameFor(cfg.IsProduction())
	router := server.NewRouter(server.Deps{
		Auth:        identityhandler.NewHandler(authService, cfg.IsProduction(), cfg.SessionTTL(), logger),
		Contact:     contacthandler.NewHandler(contactService, logger),
		Content:     contentHandler,
		AuditLogs:   audithandler.NewHandler(auditRepo, logger),
		Health:      healthhandler.NewHTTPHandler(checker, logger),
		DevOTP:      devHandler,
		Sessions:    authService,
		CookieName:  cookieName,
		Policy:      policy,
		AuditLogger: auditLogger,
		Events:      events,
		Limiters:    limiters,
		CORSOrigins: cfg.CORSOrigins(),
		Logger:      logger,
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	grpcServer := server.NewGRPCServer(checker, logger)
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("listen grpc", zap.String("addr", cfg.GRPCAddr), zap.Error(err))
	}

	go func() {
		logger.Info("gRPC health server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc serve", zap.Error(err))
			stop()
		}
	}()
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
	if err := telemetry.Drain(shutdownCtx); err != nil {
		logger.Warn("telemetry drain", zap.Error(err))
	}
	if err := kafkaProducer.Close(); err != nil {
		logger.Warn("kafka close", zap.Error(err))
	}
	if err := closeLimiters(); err != nil {
		logger.Warn("rate limiter close", zap.Error(err))
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		logger.Warn("otel shutdown", zap.Error(err))
	}
	logger.Info("stopped")
}

// newTokenProvider signs sessions with the configured key pair, falling back to HS256 with SESSION_SECRET.
func newTokenProvider(cfg *config.Config) (*security.TokenProvider, error) {
	if cfg.HasSessionKeyPair() {
		priv, pub, err := security.LoadKeyPair(cfg.SessionPrivateKey, cfg.SessionPublicKey)
		if err != nil {
			return nil, err
		}
		return security.NewTokenProvider(priv, pub, cfg.SessionIssuer, cfg.SessionAudience, cfg.SessionTTL())
	}
	return security.NewHMACTokenProvider([]byte(cfg.SessionSecret), cfg.SessionIssuer, cfg.SessionAudience, cfg.SessionTTL())
}
