package di

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"PriceTrust/internal/domain/repository"
	"PriceTrust/internal/handler/api"
	internalrepo "PriceTrust/internal/repository"
	"PriceTrust/internal/service/breaker"
	"PriceTrust/internal/service/lifecycle"
	"PriceTrust/internal/service/providers"
	"PriceTrust/internal/service/symbol"
	"PriceTrust/internal/usecase"
	pkgcache "PriceTrust/pkg/cache"
	pkgch "PriceTrust/pkg/clickhouse"
	"PriceTrust/pkg/config"
	phttp "PriceTrust/pkg/http"
	pkgkafka "PriceTrust/pkg/kafka"
	applogger "PriceTrust/pkg/logger"
	"PriceTrust/pkg/metrics"
	"PriceTrust/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: "stdout",
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client with the audit
// schema initialized.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideAuditStore creates the ClickHouse audit store with schema ready.
func ProvideAuditStore(chClient *pkgch.Client, log *applogger.Logger) (repository.AuditStore, error) {
	store := internalrepo.NewCHProofStore(chClient)
	store.SetLogger(log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.InitSchema(ctx); err != nil {
		return nil, fmt.Errorf("audit schema: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatch(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.Linger),
		pkgkafka.WithProducerTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideAuditPublisher creates the Kafka-backed audit publisher.
func ProvideAuditPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.AuditPublisher {
	return internalrepo.NewKafkaAuditPublisher(producer, cfg.Kafka.AuditTopic)
}

// ProvideKafkaConsumer creates the audit consumer.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideAuditIngestHandler registers the handler for the audit topic.
func ProvideAuditIngestHandler(store repository.AuditStore, log *applogger.Logger, cfg *config.Config) *usecase.AuditIngestHandler {
	return usecase.NewAuditIngestHandler(cfg.Kafka.AuditTopic, store, log)
}

// ProvideProviderEntries builds the waterfall in fixed trust order:
// licensed vendor, exchange feed, public chart API. Each gets its own
// breaker instance shared across requests.
func ProvideProviderEntries(cfg *config.Config) []usecase.ProviderEntry {
	newBreaker := func() *breaker.Breaker {
		return breaker.New(cfg.Verify.BreakerFailures, cfg.Verify.BreakerReset)
	}
	newClient := func(timeout time.Duration) *phttp.Client {
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		return phttp.NewClient(phttp.WithTimeout(timeout))
	}

	return []usecase.ProviderEntry{
		{
			Adapter: providers.NewVendor(cfg.Providers.Vendor.BaseURL, cfg.Providers.Vendor.APIKey,
				newClient(cfg.Providers.Vendor.Timeout)),
			Breaker: newBreaker(),
			IDKey:   symbol.IDBare,
		},
		{
			Adapter: providers.NewTWSE(cfg.Providers.TWSE.BaseURL, newClient(cfg.Providers.TWSE.Timeout)),
			Breaker: newBreaker(),
			IDKey:   symbol.IDBare,
		},
		{
			Adapter: providers.NewYahoo(cfg.Providers.Yahoo.BaseURL, newClient(cfg.Providers.Yahoo.Timeout)),
			Breaker: newBreaker(),
			IDKey:   symbol.IDYahoo,
		},
	}
}

// ProvideVerifier creates the waterfall coordinator.
func ProvideVerifier(entries []usecase.ProviderEntry, m repository.Metrics, log *applogger.Logger, cfg *config.Config) *usecase.Verifier {
	return usecase.NewVerifier(entries, usecase.VerifierConfig{
		LookbackDays:   cfg.Verify.LookbackDays,
		WideWindowDays: cfg.Verify.WideWindowDays,
		CrossTolerance: cfg.Verify.CrossTolerance,
	}, m, log)
}

// ProvideSession builds the market session from config, falling back to
// the Taiwan default for anything unset or unparseable.
func ProvideSession(cfg *config.Config) lifecycle.Session {
	s := lifecycle.DefaultSession()
	sc := cfg.Lifecycle.Session
	if sc.Timezone != "" {
		if loc, err := time.LoadLocation(sc.Timezone); err == nil {
			s.Loc = loc
		}
	}
	if h, m, ok := parseClock(sc.Open); ok {
		s.OpenHour, s.OpenMin = h, m
	}
	if h, m, ok := parseClock(sc.Close); ok {
		s.CloseHour, s.CloseMin = h, m
	}
	return s
}

func parseClock(s string) (int, int, bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

// ProvideTTLCalculator creates the session-aware TTL calculator.
func ProvideTTLCalculator(session lifecycle.Session) *lifecycle.Calculator {
	return lifecycle.NewCalculator(lifecycle.WithSession(session))
}

// ProvideLifecycleRegistry creates the descriptor registry from config.
func ProvideLifecycleRegistry(cfg *config.Config) *lifecycle.Registry {
	return lifecycle.NewRegistry(cfg.Lifecycle.Tools)
}

// ProvideCache creates the proof cache: layered over Redis when enabled,
// in-process memory otherwise.
func ProvideCache(cfg *config.Config, log *applogger.Logger) pkgcache.Service {
	if !cfg.Redis.Enabled {
		return pkgcache.NewMemoryCache()
	}
	redisCache, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Redis.Host),
		pkgcache.WithRedisPort(cfg.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
		pkgcache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		log.Warn("redis unavailable, falling back to memory cache", applogger.Error(err))
		return pkgcache.NewMemoryCache()
	}
	return pkgcache.NewLayeredCache(redisCache)
}

// ProvidePriceHandler creates the HTTP handler.
func ProvidePriceHandler(
	log *applogger.Logger,
	verifier *usecase.Verifier,
	cacheSvc pkgcache.Service,
	calc *lifecycle.Calculator,
	registry *lifecycle.Registry,
	audit repository.AuditPublisher,
	store repository.AuditStore,
) *api.PriceEchoHandler {
	return api.NewPriceEchoHandler(log, verifier, cacheSvc, calc, registry, audit, store)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	handler *api.PriceEchoHandler,
	consumer *pkgkafka.Consumer,
	ingest *usecase.AuditIngestHandler,
	publisher repository.AuditPublisher,
	chClient *pkgch.Client,
) *server.App {
	return server.New(cfg, log, handler, consumer, ingest, publisher, chClient)
}
