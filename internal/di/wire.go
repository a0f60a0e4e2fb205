//go:build wireinject
// +build wireinject

package di

import (
	"PriceTrust/pkg/config"
	"PriceTrust/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideCache,

		// Repositories
		ProvideAuditStore,
		ProvideAuditPublisher,

		// Verification pipeline
		ProvideProviderEntries,
		ProvideVerifier,
		ProvideSession,
		ProvideTTLCalculator,
		ProvideLifecycleRegistry,
		ProvideAuditIngestHandler,

		// HTTP surface
		ProvidePriceHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
