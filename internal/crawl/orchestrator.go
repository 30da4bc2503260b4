package crawl

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// defaultTagLine fills in seeds configured without an explicit #TAG.
const defaultTagLine = "NA1"

// OrchestratorConfig pairs credentials with seed players and sets the
// supervision cadence.
type OrchestratorConfig struct {
	Credentials []string
	SeedPlayers []string
	RestartWait time.Duration
	Worker      WorkerConfig
}

func (c OrchestratorConfig) validate() error {
	if len(c.Credentials) == 0 {
		return fmt.Errorf("no usable credentials")
	}
	if len(c.SeedPlayers) != len(c.Credentials) {
		return fmt.Errorf("have %d seed players for %d credentials",
			len(c.SeedPlayers), len(c.Credentials))
	}
	return nil
}

// Orchestrator bootstraps frontier state from storage, runs one worker per
// credential, and restarts the whole crawl after every worker set terminates.
// Worker termination is steady-state churn, not a program error.
type Orchestrator struct {
	cfg       OrchestratorConfig
	newClient func(credential string) GameClient
	newStore  func(ctx context.Context) (Store, error)
	logger    *zap.Logger

	mu       sync.Mutex
	runID    string
	frontier *Frontier
	workers  []*Worker
}

// NewOrchestrator validates config and builds an Orchestrator. The factories
// give every worker its own store connection and credentialed client.
func NewOrchestrator(
	cfg OrchestratorConfig,
	newClient func(credential string) GameClient,
	newStore func(ctx context.Context) (Store, error),
	logger *zap.Logger,
) (*Orchestrator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.RestartWait <= 0 {
		cfg.RestartWait = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		cfg:       cfg,
		newClient: newClient,
		newStore:  newStore,
		logger:    logger,
	}, nil
}

// Run supervises crawl cycles until the context ends.
func (o *Orchestrator) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		runID := uuid.NewString()
		if err := o.runCycle(ctx, runID); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			o.logger.Error("crawl cycle failed", zap.String("run_id", runID), zap.Error(err))
		}
		observeCycle()
		o.logger.Info("restarting crawl",
			zap.String("run_id", runID),
			zap.Duration("wait", o.cfg.RestartWait),
		)
		if err := pauseCtx(ctx, o.cfg.RestartWait); err != nil {
			return err
		}
	}
}

func (o *Orchestrator) runCycle(ctx context.Context, runID string) error {
	logger := o.logger.With(zap.String("run_id", runID))

	bootStore, err := o.newStore(ctx)
	if err != nil {
		return fmt.Errorf("open bootstrap store: %w", err)
	}

	state, err := bootStore.LoadSeenState(ctx)
	if err != nil {
		bootStore.Close()
		return fmt.Errorf("load seen state: %w", err)
	}

	frontier := NewFrontier()
	frontier.Restore(state)
	logger.Info("frontier restored",
		zap.Int("seen_matches", len(state.Matches)),
		zap.Int("seen_players", len(state.Players)),
		zap.Int("seen_mastery_owners", len(state.MasteryOwners)),
	)

	seeds := o.assignSeeds(ctx, bootStore, frontier, len(state.Matches) > 0, logger)
	bootStore.Close()

	workers := make([]*Worker, 0, len(o.cfg.Credentials))
	stores := make([]Store, 0, len(o.cfg.Credentials))
	for i, credential := range o.cfg.Credentials {
		store, err := o.newStore(ctx)
		if err != nil {
			logger.Error("open worker store failed", zap.Int("worker", i), zap.Error(err))
			continue
		}
		client := o.newClient(credential)
		workers = append(workers, NewWorker(i, seeds[i], frontier, client, store, o.cfg.Worker, logger))
		stores = append(stores, store)
	}
	if len(workers) == 0 {
		return fmt.Errorf("no workers could be started")
	}

	o.mu.Lock()
	o.runID = runID
	o.frontier = frontier
	o.workers = workers
	o.mu.Unlock()

	var wg sync.WaitGroup
	for _, w := range workers {
		wg.Add(1)
		go func(w *Worker) {
			defer wg.Done()
			w.Run(ctx)
		}(w)
	}
	wg.Wait()

	for _, s := range stores {
		s.Close()
	}

	stats := frontier.Snapshot()
	logger.Info("all workers terminated",
		zap.Int("seen_matches", stats.SeenMatches),
		zap.Int("seen_players", stats.SeenPlayers),
		zap.Int("pending", stats.Pending),
	)
	return nil
}

// assignSeeds picks one seed per credential. On first boot the configured
// display names are used; once the store holds matches, seeds are sampled
// from already-stored participants, preferring players whose history has not
// been expanded so no worker does zero-value work.
func (o *Orchestrator) assignSeeds(ctx context.Context, store Store, frontier *Frontier, resuming bool, logger *zap.Logger) []Seed {
	n := len(o.cfg.Credentials)
	configured := make([]Seed, 0, n)
	for _, raw := range o.cfg.SeedPlayers {
		configured = append(configured, ParseSeed(raw))
	}

	if !resuming {
		return configured
	}

	pool, err := store.SampleParticipants(ctx, n*8)
	if err != nil {
		logger.Warn("sampling seed players failed, using configured seeds", zap.Error(err))
		return configured
	}

	seeds := make([]Seed, 0, n)
	for _, puuid := range pool {
		if len(seeds) == n {
			break
		}
		if frontier.PlayerSeen(puuid) {
			continue
		}
		seeds = append(seeds, Seed{PUUID: puuid})
	}
	// Fall back to configured names for any slot the sample could not fill.
	for i := len(seeds); i < n; i++ {
		seeds = append(seeds, configured[i])
	}
	return seeds
}

// ParseSeed splits a configured "GameName#TagLine" entry.
func ParseSeed(raw string) Seed {
	name, tag, found := strings.Cut(raw, "#")
	if !found || tag == "" {
		tag = defaultTagLine
	}
	return Seed{GameName: strings.TrimSpace(name), TagLine: strings.TrimSpace(tag)}
}

// OrchestratorStatus is a snapshot of the current crawl cycle.
type OrchestratorStatus struct {
	RunID    string         `json:"run_id"`
	Frontier Stats          `json:"frontier"`
	Workers  []WorkerStatus `json:"workers"`
}

// Status reports the current cycle for the status API. Valid once the first
// cycle has started.
func (o *Orchestrator) Status() OrchestratorStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	status := OrchestratorStatus{RunID: o.runID}
	if o.frontier != nil {
		status.Frontier = o.frontier.Snapshot()
	}
	for _, w := range o.workers {
		status.Workers = append(status.Workers, w.Status())
	}
	return status
}
