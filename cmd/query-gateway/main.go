// cmd/query-gateway/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"

	"nlquery-gateway/internal/aiclient"
	"nlquery-gateway/internal/audit"
	"nlquery-gateway/internal/cache"
	"nlquery-gateway/internal/common/config"
	"nlquery-gateway/internal/common/database"
	commonhttp "nlquery-gateway/internal/common/http"
	"nlquery-gateway/internal/common/logger"
	"nlquery-gateway/internal/common/observability"
	"nlquery-gateway/internal/common/retry"
	"nlquery-gateway/internal/gateway"
	"nlquery-gateway/internal/notify"
	"nlquery-gateway/internal/orchestrator"
	"nlquery-gateway/internal/repository"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting query gateway...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New("query-gateway")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	rdb := database.NewRedis(cfg.Database.Redis)
	err = retryWithBackoff(func() error {
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Notification channels ---
	var sesClient notify.SESService
	var snsClient notify.SNSService
	if cfg.Notifications.AWSRegion != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Notifications.AWSRegion))
		if err != nil {
			zapLog.Fatal("aws config load failed", zap.Error(err))
		}
		sesClient = ses.NewFromConfig(awsCfg)
		snsClient = sns.NewFromConfig(awsCfg)
	}

	retrier := retry.NewExecutor(retry.Config{
		MaxRetries:        cfg.Retry.MaxRetries,
		InitialDelay:      time.Duration(cfg.Retry.InitialDelayMs) * time.Millisecond,
		MaxDelay:          time.Duration(cfg.Retry.MaxDelayMs) * time.Millisecond,
		BackoffMultiplier: cfg.Retry.BackoffMultiplier,
	}, log)

	dispatcher := notify.NewDispatcher(
		notify.Config{
			WebhookURL: cfg.Notifications.WebhookURL,
			SNSTopic:   cfg.Notifications.SNSTopic,
			EmailFrom:  cfg.Notifications.EmailFrom,
			EmailTo:    splitCSV(cfg.Notifications.EmailTo),
		},
		commonhttp.NewClient(10*time.Second),
		retrier,
		sesClient,
		snsClient,
		log,
	)

	// --- Orchestrator wiring ---
	aiTimeout := time.Duration(cfg.AI.Timeout) * time.Millisecond
	planner := aiclient.NewPlannerClient(cfg.AI.PlannerBaseURL, aiTimeout, log)
	executor := aiclient.NewExecutorClient(cfg.AI.ExecutorBaseURL, aiTimeout, log)

	var resultCache orchestrator.ResultCache
	if cfg.Query.CacheTTL > 0 {
		resultCache = cache.NewResultCache(rdb.Client, time.Duration(cfg.Query.CacheTTL)*time.Second, log)
	}

	orch := orchestrator.New(
		orchestrator.Config{
			MaxQuestionLength: cfg.Query.MaxQuestionLength,
			DefaultLimit:      cfg.Query.DefaultLimit,
			MaxLimit:          cfg.Query.MaxLimit,
		},
		planner,
		executor,
		repository.NewProviderRepo(pg.DB),
		repository.NewDatasourceRepo(pg.DB),
		repository.NewConversationRepo(pg.DB),
		resultCache,
		log,
	)

	auditSink := audit.NewIndexer(esClient.Client, cfg.Database.Elasticsearch.Index, log)

	handler := gateway.NewHandler(orch, auditSink, dispatcher, obs, map[string]gateway.Pinger{
		"postgres":      pg,
		"redis":         rdb,
		"elasticsearch": esClient,
	}, log)

	server := gateway.NewServer(cfg.Server, handler, log)

	// --- Run until signalled ---
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		zapLog.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			zapLog.Fatal("server failed", zap.Error(err))
		}
		return
	}

	if err := server.Shutdown(context.Background()); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}
	zapLog.Info("query gateway stopped")
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
