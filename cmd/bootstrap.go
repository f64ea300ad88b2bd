package cmd

import (
	"context"
	"fmt"

	"compliance-engine/core/compliance"
	"compliance-engine/core/config"
	"compliance-engine/core/database"
	"compliance-engine/core/ledger"
	"compliance-engine/core/logger"
	"compliance-engine/core/metrics"
	"compliance-engine/core/storage"
	complianceFeature "compliance-engine/feature/compliance"
	"compliance-engine/feature/inventory"
	"compliance-engine/feature/rules"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime is the wired engine shared by every command.
type runtime struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *gorm.DB
	client   storage.Client
	registry *prometheus.Registry
	repo     *inventory.Repository
	store    *ledger.Store
	catalog  *compliance.Catalog
	remote   *rules.RemoteProvider
	service  *complianceFeature.Service
}

// bootstrap loads configuration, connects the database and object store,
// optionally migrates the schema and builds the rule catalog. A failing first
// catalog sync is logged; bundled rules stay available.
func bootstrap(ctx context.Context, migrate bool) (*runtime, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if migrate {
		if err := ledger.Migrate(db); err != nil {
			return nil, err
		}
		if err := inventory.Migrate(db); err != nil {
			return nil, err
		}
	}

	rt := &runtime{
		cfg:      cfg,
		logger:   logg,
		db:       db,
		registry: prometheus.NewRegistry(),
	}
	rt.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(rt.registry)

	rt.repo = inventory.NewRepository(db, logg)
	rt.store = ledger.NewStore(db, logg)

	providers := []compliance.Provider{rules.NewBundledProvider(rt.repo)}
	if cfg.Engine.DynamicRules {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		rt.client = client
		rt.remote = rules.NewRemoteProvider(client, cfg.Storage.Bucket, cfg.Engine.RulesPrefix, rt.repo, logg)
		providers = append(providers, rt.remote)
	}
	rt.catalog = compliance.NewCatalog(logg, providers...)
	if err := rt.catalog.Sync(ctx); err != nil {
		logg.Warn("Initial rule sync incomplete", zap.Error(err))
	}

	executor := compliance.NewExecutor(logg, m, cfg.Engine.AuditTimeout())
	engine := compliance.NewEngine(executor, rt.store, logg, m)
	rt.service = complianceFeature.NewService(rt.catalog, engine, rt.store, rt.repo, cfg.Engine.Workers, logg, m)
	rt.repo.RegisterHook(rt.service.Validator().FullClean)

	return rt, nil
}

// close releases the database connection and flushes the logger.
func (rt *runtime) close() {
	if sqlDB, err := rt.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = rt.logger.Sync()
}
