package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/riftline/riftline/internal/api"
	"github.com/riftline/riftline/internal/config"
	"github.com/riftline/riftline/internal/crawl"
	"github.com/riftline/riftline/internal/logging"
	"github.com/riftline/riftline/internal/riot"
	"github.com/riftline/riftline/internal/storage/postgres"
)

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Starts the match-graph crawl",
		Long: `Bootstraps the schema, restores dedup state from Postgres, and runs one
crawl worker per configured credential until interrupted. Terminated worker
sets are restarted automatically with fresh seed players.`,
		RunE: runIngest,
	}
}

func runIngest(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	crawl.InitMetrics()

	riotCfg := riot.Config{
		PlatformHost:  cfg.Riot.PlatformHost,
		RegionHost:    cfg.Riot.RegionHost,
		DataDragonURL: cfg.Riot.DataDragonURL,
		RequestDelay:  cfg.RequestDelay(),
		RetryCount:    cfg.Riot.RetryCount,
		RetryWait:     cfg.RetryWait(),
		Timeout:       time.Duration(cfg.Riot.TimeoutSec) * time.Second,
	}
	storeCfg := postgres.StoreConfig{
		DSN:      cfg.DB.DSN,
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	}

	newStore := func(ctx context.Context) (crawl.Store, error) {
		return postgres.NewStore(ctx, storeCfg)
	}
	newClient := func(credential string) crawl.GameClient {
		return riot.NewClient(riotCfg, credential, logger)
	}

	if err := bootstrapStore(ctx, storeCfg, riotCfg, logger); err != nil {
		return err
	}

	orch, err := crawl.NewOrchestrator(
		crawl.OrchestratorConfig{
			Credentials: cfg.Crawl.Credentials,
			SeedPlayers: cfg.Crawl.SeedPlayers,
			RestartWait: cfg.RestartWait(),
			Worker: crawl.WorkerConfig{
				StarvationLimit: cfg.Crawl.StarvationLimit,
			},
		},
		newClient,
		newStore,
		logger,
	)
	if err != nil {
		return fmt.Errorf("build orchestrator: %w", err)
	}

	server := api.NewServer(orch, logger)
	go func() {
		logger.Info("status server listening", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(ctx, cfg.Server.Port); err != nil {
			logger.Error("status server failed", zap.Error(err))
		}
	}()

	if err := orch.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run crawl: %w", err)
	}
	logger.Info("crawl stopped")
	return nil
}

// bootstrapStore applies the schema and seeds the static champion table.
// A Data Dragon outage is logged, not fatal: champion reference rows are a
// convenience for downstream consumers, not a crawl dependency.
func bootstrapStore(ctx context.Context, storeCfg postgres.StoreConfig, riotCfg riot.Config, logger *zap.Logger) error {
	store, err := postgres.NewStore(ctx, storeCfg)
	if err != nil {
		return fmt.Errorf("connect store: %w", err)
	}
	defer store.Close()

	if err := store.Bootstrap(ctx); err != nil {
		return fmt.Errorf("bootstrap schema: %w", err)
	}

	// Data Dragon is unauthenticated; no credential needed.
	client := riot.NewClient(riotCfg, "", logger)
	champs, err := client.ChampionData(ctx)
	if err != nil {
		logger.Warn("fetching champion data failed, skipping reference seed", zap.Error(err))
		return nil
	}
	if err := store.InsertChampions(ctx, champs); err != nil {
		logger.Warn("seeding champion table failed", zap.Error(err))
	}
	return nil
}
