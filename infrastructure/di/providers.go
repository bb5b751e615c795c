package di

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ndstyle/mindflow2/application/commands/bus"
	commandhandlers "github.com/ndstyle/mindflow2/application/commands/handlers"
	"github.com/ndstyle/mindflow2/application/ports"
	querybus "github.com/ndstyle/mindflow2/application/queries/bus"
	queryhandlers "github.com/ndstyle/mindflow2/application/queries/handlers"
	"github.com/ndstyle/mindflow2/application/services"
	"github.com/ndstyle/mindflow2/infrastructure/config"
	"github.com/ndstyle/mindflow2/infrastructure/export"
	"github.com/ndstyle/mindflow2/infrastructure/llm"
	"github.com/ndstyle/mindflow2/infrastructure/messaging/eventbridge"
	"github.com/ndstyle/mindflow2/infrastructure/observability"
	"github.com/ndstyle/mindflow2/infrastructure/persistence/dynamodb"
	"github.com/ndstyle/mindflow2/infrastructure/persistence/memory"
	supabasestore "github.com/ndstyle/mindflow2/infrastructure/persistence/supabase"
	"github.com/ndstyle/mindflow2/interfaces/http/rest"
	"github.com/ndstyle/mindflow2/interfaces/http/rest/handlers"
	"github.com/ndstyle/mindflow2/pkg/auth"
	pkgerrors "github.com/ndstyle/mindflow2/pkg/errors"
)

// developmentJWTSecret signs local tokens when no auth backend is set up.
const developmentJWTSecret = "development-secret-change-in-production"

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}

	return zcfg.Build()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideSupabaseClient returns nil when Supabase is not configured.
func ProvideSupabaseClient(cfg *config.Config) (*supabase.Client, error) {
	if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
		return nil, nil
	}
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create Supabase client: %w", err)
	}
	return client, nil
}

// ProvideStore selects the document store named by STORE_PROVIDER.
func ProvideStore(cfg *config.Config, awsCfg aws.Config, client *supabase.Client, logger *zap.Logger) (ports.MindMapStore, error) {
	switch cfg.StoreProvider {
	case config.StoreSupabase:
		if client == nil {
			return nil, fmt.Errorf("supabase store selected without a Supabase client")
		}
		return supabasestore.NewStore(client, logger), nil
	case config.StoreDynamoDB:
		return dynamodb.NewStore(awsdynamodb.NewFromConfig(awsCfg), cfg.DynamoDBTable, logger), nil
	default:
		logger.Warn("Using in-memory store, documents are lost on restart")
		return memory.NewStore(logger), nil
	}
}

// ProvideReadiness exposes the store's Ping, if it has one.
func ProvideReadiness(store ports.MindMapStore) rest.Pinger {
	if p, ok := store.(rest.Pinger); ok {
		return p
	}
	return nil
}

// ProvideEventPublisher sends events to EventBridge when enabled and logs
// them otherwise.
func ProvideEventPublisher(cfg *config.Config, awsCfg aws.Config, logger *zap.Logger) ports.EventPublisher {
	if !cfg.EnableEvents {
		return eventbridge.NewLogPublisher(logger)
	}
	return eventbridge.NewPublisher(awseventbridge.NewFromConfig(awsCfg), cfg.EventBusName, logger)
}

// ProvideLLMProvider builds the completion provider chain: retries inside a
// circuit breaker.
func ProvideLLMProvider(cfg *config.Config, logger *zap.Logger) llm.Provider {
	if cfg.LLMProvider == "mock" {
		return llm.NewMockProvider()
	}
	if cfg.LLMAPIKey == "" {
		logger.Warn("OPENAI_API_KEY is not set, generation will use the mock provider")
		return llm.NewMockProvider()
	}

	var provider llm.Provider = llm.NewOpenAIProvider(cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMBaseURL, cfg.LLMTimeout)

	retry := llm.DefaultRetryConfig()
	retry.Timeout = cfg.LLMTimeout
	provider = llm.NewRetryProvider(provider, retry, logger)

	return llm.NewBreakerProvider(provider, llm.DefaultBreakerConfig("llm-"+cfg.LLMModel), logger)
}

// ProvideGenerator adapts the provider to the generator port.
func ProvideGenerator(provider llm.Provider, logger *zap.Logger) ports.Generator {
	return llm.NewGenerator(provider, logger)
}

// ProvideMetrics creates the Prometheus collector.
func ProvideMetrics() *observability.Collector {
	return observability.NewCollector("mindflow")
}

// ProvideLimitsWatcher returns nil when no limits file is configured.
func ProvideLimitsWatcher(cfg *config.Config, logger *zap.Logger) (*config.LimitsWatcher, error) {
	if cfg.LimitsFile == "" {
		return nil, nil
	}
	w, err := config.NewLimitsWatcher(cfg.LimitsFile, logger)
	if err != nil {
		return nil, err
	}
	w.Start()
	return w, nil
}

// ProvideTracerProvider returns nil when tracing is disabled.
func ProvideTracerProvider(ctx context.Context, cfg *config.Config) (*observability.TracerProvider, error) {
	if !cfg.EnableTracing {
		return nil, nil
	}
	return observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.TracingEndpoint,
	})
}

// ProvideMindMapService wires the application service.
func ProvideMindMapService(
	cfg *config.Config,
	store ports.MindMapStore,
	generator ports.Generator,
	publisher ports.EventPublisher,
	metrics *observability.Collector,
	watcher *config.LimitsWatcher,
	logger *zap.Logger,
) *services.MindMapService {
	opts := []services.Option{
		services.WithRecorder(metrics),
		services.WithRasterExporter(export.NewRasterExporter(export.NewPNGCapturer(2))),
	}
	if watcher != nil {
		opts = append(opts, services.WithLimits(watcher.Current))
	}
	return services.NewMindMapService(store, generator, publisher, cfg.ShareBaseURL, logger, opts...)
}

// ProvideCommandBus registers every command handler.
func ProvideCommandBus(service *services.MindMapService, logger *zap.Logger) (*bus.CommandBus, error) {
	b := bus.NewCommandBus(bus.LoggingMiddleware(logger))
	if err := commandhandlers.NewMindMapCommandHandler(service, logger).Register(b); err != nil {
		return nil, fmt.Errorf("failed to register command handlers: %w", err)
	}
	return b, nil
}

// ProvideQueryBus registers every query handler.
func ProvideQueryBus(cfg *config.Config, service *services.MindMapService, metrics *observability.Collector) (*querybus.QueryBus, error) {
	var m querybus.Metrics
	if cfg.EnableMetrics {
		m = metrics
	}
	b := querybus.NewQueryBus(m)
	if err := queryhandlers.NewMindMapQueryHandler(service).Register(b); err != nil {
		return nil, fmt.Errorf("failed to register query handlers: %w", err)
	}
	return b, nil
}

// ProvideVerifier accepts locally signed Supabase JWTs first and falls back
// to asking Supabase.
func ProvideVerifier(cfg *config.Config, client *supabase.Client, logger *zap.Logger) (auth.Verifier, error) {
	var chain auth.Chain

	secret := cfg.SupabaseJWTSecret
	if secret == "" && client == nil && !cfg.IsProduction() {
		logger.Warn("No auth backend configured, accepting tokens signed with the development secret")
		secret = developmentJWTSecret
	}
	if secret != "" {
		v, err := auth.NewJWTVerifier(auth.JWTConfig{Secret: secret, Audience: "authenticated"})
		if err != nil {
			return nil, err
		}
		chain = append(chain, v)
	}
	if client != nil {
		chain = append(chain, auth.NewSupabaseVerifier(client))
	}
	return chain, nil
}

// ProvideErrorHandler includes stack traces outside production.
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideRouter assembles the HTTP router.
func ProvideRouter(
	cfg *config.Config,
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	service *services.MindMapService,
	verifier auth.Verifier,
	errHandler *pkgerrors.ErrorHandler,
	metrics *observability.Collector,
	readiness rest.Pinger,
	logger *zap.Logger,
) *rest.Router {
	rc := rest.RouterConfig{
		MindMaps:       handlers.NewMindMapHandler(commandBus, queryBus, service, errHandler, logger),
		Verifier:       verifier,
		Errors:         errHandler,
		Readiness:      readiness,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	}
	if cfg.EnableMetrics {
		rc.Metrics = metrics
	}
	return rest.NewRouter(rc)
}
