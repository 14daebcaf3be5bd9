package main

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/thlight-panel/internal/application/otp"
	"github.com/thlight-panel/internal/config"
	"github.com/thlight-panel/internal/infrastructure/dynamo"
	jwtinfra "github.com/thlight-panel/internal/infrastructure/jwt"
	"github.com/thlight-panel/internal/infrastructure/mailrelay"
	"github.com/thlight-panel/internal/infrastructure/preview"
	"github.com/thlight-panel/internal/infrastructure/redisstore"
	s3infra "github.com/thlight-panel/internal/infrastructure/s3"
	"github.com/thlight-panel/internal/infrastructure/smtp"
	"github.com/thlight-panel/internal/infrastructure/sns"
	"github.com/thlight-panel/internal/infrastructure/state"
	transporthttp "github.com/thlight-panel/internal/transport/http"
)

// Redis keeps OTP records this long past expiry so expired codes still
// produce the "expired" verification outcome.
const otpRetention = 10 * time.Minute

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	slog.SetDefault(newLogger(cfg))
	if envErr != nil {
		slog.Info("no .env file found, reading from environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := stateBackend(ctx, cfg)
	if err != nil {
		slog.Error("state backend", "backend", cfg.StateBackend, "err", err)
		os.Exit(1)
	}

	otpStore, previewLog, err := otpBackends(ctx, cfg)
	if err != nil {
		slog.Error("otp backend", "backend", cfg.OTPBackend, "err", err)
		os.Exit(1)
	}

	previews := preview.NewStore(preview.Config{
		Capacity:  cfg.Preview.Capacity,
		ListLimit: cfg.Preview.ListLimit,
		Freshness: cfg.Preview.Freshness,
	}, previewLog, nil)

	var transports []mailrelay.Transport
	if cfg.SMTPHost != "" {
		transports = append(transports, smtp.NewTransport(cfg))
	}
	if cfg.SNSTopicARN != "" {
		if t, err := sns.NewTransport(cfg); err == nil {
			transports = append(transports, t)
		} else {
			slog.Warn("SNS transport not available", "err", err)
		}
	}

	manager := otp.NewManager(otp.Config{
		TTL:         cfg.OTP.TTL,
		MaxAttempts: cfg.OTP.MaxAttempts,
	}, otpStore, mailrelay.New(previews, transports...), nil)
	if cfg.OTP.SweepInterval > 0 {
		go manager.RunJanitor(ctx, cfg.OTP.SweepInterval)
	}

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		slog.Warn("JWT keys not available, signing with an ephemeral key", "err", err)
		key, genErr := rsa.GenerateKey(rand.Reader, 2048)
		if genErr != nil {
			slog.Error("generate ephemeral key", "err", genErr)
			os.Exit(1)
		}
		jwtProvider = jwtinfra.NewProviderFromKeys(key, &key.PublicKey, cfg.JWTExpiry)
	}

	deps := &transporthttp.Deps{
		Panel:       state.NewStore(backend),
		OTP:         manager,
		Previews:    previews,
		JWTProvider: jwtProvider,
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(ctx, cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv,
			"state", cfg.StateBackend, "otp", cfg.OTPBackend, "transports", len(transports))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "err", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func stateBackend(ctx context.Context, cfg *config.Config) (state.Backend, error) {
	switch cfg.StateBackend {
	case "dynamo":
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		// Creates the table if it doesn't exist.
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		return dynamo.NewBlobRepo(client, cfg.DynamoTables.PanelState), nil
	case "s3":
		client, err := s3infra.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s3infra.NewStore(client, cfg.S3BucketName, cfg.S3StatePrefix), nil
	case "memory", "":
		return state.NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.StateBackend)
	}
}

func otpBackends(ctx context.Context, cfg *config.Config) (otp.Store, preview.Log, error) {
	switch cfg.OTPBackend {
	case "redis":
		client, err := redisstore.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return redisstore.NewOTPStore(client, otpRetention), redisstore.NewPreviewLog(client), nil
	case "memory", "":
		return otp.NewMemoryStore(), preview.NewMemoryLog(), nil
	default:
		return nil, nil, fmt.Errorf("unknown otp backend %q", cfg.OTPBackend)
	}
}
