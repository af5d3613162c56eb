package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/email-trust/internal/adapters/dns"
	"github.com/mikey/email-trust/internal/adapters/httpapi"
	"github.com/mikey/email-trust/internal/adapters/listfetch"
	"github.com/mikey/email-trust/internal/adapters/override"
	"github.com/mikey/email-trust/internal/config"
	"github.com/mikey/email-trust/internal/core"
	"github.com/mikey/email-trust/internal/domainlist"
	"github.com/mikey/email-trust/internal/factory"
	"github.com/mikey/email-trust/internal/logging"
	"github.com/mikey/email-trust/internal/rolecheck"
	"github.com/mikey/email-trust/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config) (config.ListsConfig, error) {
		return cfg.GetLists()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config) (config.ServerConfig, error) {
		return cfg.GetServer()
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register list fetcher and domain cache
	if err := container.Provide(listfetch.NewFetcher); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *listfetch.Fetcher) core.ListFetcher {
		return f
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(fetcher core.ListFetcher, listsCfg config.ListsConfig, logger *zap.Logger) *domainlist.Cache {
		return domainlist.NewCache(fetcher, listsCfg.TTL, logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(c *domainlist.Cache) core.DomainListProvider {
		return c
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(c *domainlist.Cache) httpapi.ListStatusProvider {
		return c
	}); err != nil {
		return nil, err
	}

	// Register override store
	if err := container.Provide(factory.NewOverrideFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.OverrideFactory) (override.Store, error) {
		return f.CreateOverrideStore()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(store override.Store) core.OverrideResolver {
		return store
	}); err != nil {
		return nil, err
	}

	// Register MX checker
	if err := container.Provide(func(logger *zap.Logger) core.MXChecker {
		return dns.NewStubMXChecker(logger)
	}); err != nil {
		return nil, err
	}

	// Register role account checker and scorer
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *rolecheck.Checker {
		return rolecheck.NewChecker(cfg.GetStringSlice("scoring.role_prefixes"), logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewScorer); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return nil, err
	}

	// Register validator service
	if err := container.Provide(core.NewValidatorService); err != nil {
		return nil, err
	}

	// Register HTTP API server
	if err := container.Provide(func(
		service *core.ValidatorService,
		lists httpapi.ListStatusProvider,
		store override.Store,
		serverCfg config.ServerConfig,
		logger *zap.Logger,
	) *httpapi.Server {
		return httpapi.NewServer(service, lists, store, serverCfg, logger)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
