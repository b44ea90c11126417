package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/ToneGuard/ToneGuard/pkg/app/analyzer"
	"github.com/ToneGuard/ToneGuard/pkg/app/rephraser"
	"github.com/ToneGuard/ToneGuard/pkg/cache"
	"github.com/ToneGuard/ToneGuard/pkg/common"
	"github.com/ToneGuard/ToneGuard/pkg/config"
	handlers "github.com/ToneGuard/ToneGuard/pkg/handlers/http"
	"github.com/ToneGuard/ToneGuard/pkg/infra/httpx"
	infraLogger "github.com/ToneGuard/ToneGuard/pkg/infra/logger"
	"github.com/ToneGuard/ToneGuard/pkg/infra/moderation/perspective"
	"github.com/ToneGuard/ToneGuard/pkg/infra/providers/factory"
	"github.com/ToneGuard/ToneGuard/pkg/infra/providers/huggingface"
	"github.com/ToneGuard/ToneGuard/pkg/middleware"
	"github.com/ToneGuard/ToneGuard/pkg/server"
	"github.com/ToneGuard/ToneGuard/pkg/version"
)

func main() {
	ctx := context.Background()
	envFile := os.Getenv("ENV_FILE")

	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger := infraLogger.NewLogger()

	// Load configuration
	if err := config.Load("./config"); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.GetConfig()

	// Memoization cache (local TTL maps, shared Redis when configured)
	cacheInstance, err := cache.NewCache(common.CacheConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TLS:      cfg.Redis.TLS,
	})
	if err != nil {
		logger.Fatalf("Failed to initialize cache: %v", err)
	}
	initializeMemoCache(cacheInstance)

	// Shared outbound transport
	httpClient := httpx.NewFastHTTPClient(
		httpx.WithTimeout(time.Duration(cfg.Rephrase.TimeoutSeconds)*time.Second),
		httpx.WithUserAgent(fmt.Sprintf("%s/%s", version.AppName, version.Version)),
	)
	inferenceBreaker := httpx.NewCircuitBreaker("inference", 30*time.Second, 5)

	// Upstream clients
	moderationClient := perspective.NewClient(
		logger,
		httpClient,
		perspective.WithEndpoint(cfg.Moderation.Endpoint),
		perspective.WithTimeout(time.Duration(cfg.Moderation.TimeoutSeconds)*time.Second),
		perspective.WithThreshold(cfg.Moderation.Threshold),
	)
	providerLocator := factory.NewProviderLocator(logger, httpClient, inferenceBreaker)

	// Credentials: environment > secrets file > per-request override
	credentials := config.NewCredentialResolver(config.GetSecrets())

	verifyInferenceToken(ctx, logger, cfg, credentials, httpClient)

	// Use cases
	analyzeText := analyzer.NewAnalyzeText(logger, moderationClient, credentials, cacheInstance)
	rephraseText := rephraser.NewRephraseText(logger, providerLocator, credentials, cacheInstance, cfg.Rephrase)

	// Middleware
	middlewareTransport := middleware.Transport{
		MetricsMiddleware:   middleware.NewMetricsMiddleware(logger),
		RequestIDMiddleware: middleware.NewRequestIDMiddleware(),
	}

	// Handler Transport
	handlerTransport := handlers.HandlerTransport{
		AnalyzeTextHandler:  handlers.NewAnalyzeTextHandler(logger, analyzeText, rephraseText, cfg.Rephrase.Enabled),
		RephraseTextHandler: handlers.NewRephraseTextHandler(logger, rephraseText),
		GetVersionHandler:   handlers.NewGetVersionHandler(logger),
	}

	srv := server.NewAPIServer(server.APIServerDI{
		MiddlewareTransport: middlewareTransport,
		HandlerTransport:    handlerTransport,
		Config:              cfg,
		Logger:              logger,
	})

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	fmt.Println("shutting down server...")
	if err := srv.Shutdown(); err != nil {
		fmt.Println("error shutting down server:", err)
		os.Exit(1)
	}
	fmt.Println("server gracefully stopped")
}

func initializeMemoCache(cacheInstance *cache.Cache) {
	_ = cacheInstance.CreateTTLMap(cache.ModerationTTLName, common.ModerationCacheTTL)
	_ = cacheInstance.CreateTTLMap(cache.RephraseTTLName, common.RephraseCacheTTL)
}

// verifyInferenceToken checks the inference token at startup so a bad or
// missing credential is reported once at boot instead of discovered on the
// first toxic request. Rephrasing stays enabled either way: requests may
// carry their own token override, and failures surface as classified
// errors per request.
func verifyInferenceToken(
	ctx context.Context,
	logger *logrus.Logger,
	cfg *config.Config,
	credentials *config.CredentialResolver,
	httpClient httpx.Client,
) {
	if !cfg.Rephrase.Enabled || cfg.Rephrase.Provider != factory.ProviderHuggingFace {
		return
	}

	token, source, ok := credentials.Resolve(config.EnvHuggingFaceToken, "")
	if !ok {
		logger.Warnf("rephrasing enabled, but %s is not set; requests must supply a token override", config.EnvHuggingFaceToken)
		return
	}

	if !cfg.Rephrase.VerifyToken {
		logger.Infof("inference token loaded from %s", source)
		return
	}

	verifier := huggingface.NewTokenVerifier(httpClient)
	verifyCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := verifier.Verify(verifyCtx, token); err != nil {
		logger.Warnf("inference token verification failed: %v", err)
		return
	}
	logger.Infof("inference token verified (loaded from %s)", source)
}
