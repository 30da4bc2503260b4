package crawl

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/riftline/riftline/internal/riot"
)

// State is a worker's position in its lifecycle.
type State int32

// Worker lifecycle states. A worker seeds once, then alternates between
// draining the frontier queue and refilling it from the last accepted match
// until a fatal error retires it.
const (
	StateSeeding State = iota
	StateDraining
	StateRefilling
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateSeeding:
		return "seeding"
	case StateDraining:
		return "draining"
	case StateRefilling:
		return "refilling"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// WorkerConfig bounds worker liveness behavior.
type WorkerConfig struct {
	// StarvationLimit is how many consecutive empty refills a worker
	// tolerates before retiring so the orchestrator can restart the crawl
	// with fresh seeds.
	StarvationLimit int
	// StarvationWait is the pause between starved refill attempts.
	StarvationWait time.Duration
}

func (c WorkerConfig) withDefaults() WorkerConfig {
	if c.StarvationLimit <= 0 {
		c.StarvationLimit = 3
	}
	if c.StarvationWait <= 0 {
		c.StarvationWait = 10 * time.Second
	}
	return c
}

// Worker drains the shared frontier with its own credentialed client and its
// own store connection. Exactly one goroutine runs Run; the exported status
// methods are safe to call from others.
type Worker struct {
	id       int
	seed     Seed
	frontier *Frontier
	client   GameClient
	store    Store
	cfg      WorkerConfig
	logger   *zap.Logger

	state    atomic.Int32
	accepted atomic.Int64
	rejected atomic.Int64
	skipped  atomic.Int64

	seedPUUID    string
	lastAccepted *riot.Match
}

// NewWorker builds a worker for one credential/seed pair.
func NewWorker(id int, seed Seed, frontier *Frontier, client GameClient, store Store, cfg WorkerConfig, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		id:       id,
		seed:     seed,
		frontier: frontier,
		client:   client,
		store:    store,
		cfg:      cfg.withDefaults(),
		logger:   logger.With(zap.Int("worker", id), zap.String("seed", seed.String())),
	}
}

// State returns the worker's current lifecycle state.
func (w *Worker) State() State {
	return State(w.state.Load())
}

func (w *Worker) setState(s State) {
	w.state.Store(int32(s))
}

// WorkerStatus is a snapshot for the status API.
type WorkerStatus struct {
	ID       int    `json:"id"`
	State    string `json:"state"`
	Seed     string `json:"seed"`
	Accepted int64  `json:"accepted"`
	Rejected int64  `json:"rejected"`
	Skipped  int64  `json:"skipped"`
}

// Status reports the worker's current state and counters.
func (w *Worker) Status() WorkerStatus {
	return WorkerStatus{
		ID:       w.id,
		State:    w.State().String(),
		Seed:     w.seed.String(),
		Accepted: w.accepted.Load(),
		Rejected: w.rejected.Load(),
		Skipped:  w.skipped.Load(),
	}
}

// Run executes the worker state machine until termination. It only returns
// when the worker is TERMINATED; the orchestrator decides what happens next.
func (w *Worker) Run(ctx context.Context) {
	observeActiveWorkers(1)
	defer observeActiveWorkers(-1)
	defer w.setState(StateTerminated)

	if err := w.seedFrontier(ctx); err != nil {
		w.terminate("seed_failed", err)
		return
	}

	emptyRefills := 0
	for {
		if ctx.Err() != nil {
			w.terminate("context", ctx.Err())
			return
		}

		w.setState(StateDraining)
		processed, err := w.drain(ctx)
		if err != nil {
			w.terminate("auth", err)
			return
		}
		if processed > 0 {
			emptyRefills = 0
		}

		w.setState(StateRefilling)
		added, err := w.refill(ctx)
		if err != nil {
			w.terminate("auth", err)
			return
		}
		if added == 0 && w.frontier.Snapshot().Pending == 0 {
			emptyRefills++
			if emptyRefills >= w.cfg.StarvationLimit {
				w.terminate("starved", nil)
				return
			}
			w.logger.Warn("refill produced no work, pausing",
				zap.Int("empty_refills", emptyRefills))
			if err := pauseCtx(ctx, w.cfg.StarvationWait); err != nil {
				w.terminate("context", err)
				return
			}
		}
	}
}

func (w *Worker) terminate(reason string, err error) {
	observeTermination(reason)
	if err != nil {
		w.logger.Error("worker terminated", zap.String("reason", reason), zap.Error(err))
		return
	}
	w.logger.Warn("worker terminated", zap.String("reason", reason))
}

// seedFrontier resolves the assigned seed player and queues their recent
// matches. Seed failures are fatal to the worker: without a starting point it
// has no graph to expand.
func (w *Worker) seedFrontier(ctx context.Context) error {
	w.setState(StateSeeding)

	puuid := w.seed.PUUID
	if puuid == "" {
		account, err := w.client.AccountByRiotID(ctx, w.seed.GameName, w.seed.TagLine)
		if err != nil {
			return err
		}
		puuid = account.PUUID
	}
	w.seedPUUID = puuid

	if !w.frontier.MarkPlayerSeen(puuid) {
		// Another worker (or a prior run) already expanded this player.
		// Nothing to seed; the shared queue may still hold work.
		w.logger.Info("seed player already expanded")
		return nil
	}
	if err := w.store.MarkPlayerSeen(ctx, puuid); err != nil {
		w.logger.Warn("persist seen player failed", zap.String("puuid", puuid), zap.Error(err))
	}

	ids, err := w.client.MatchIDsByPUUID(ctx, puuid)
	if err != nil {
		return err
	}
	queued := 0
	for _, id := range ids {
		if w.frontier.Enqueue(id) {
			queued++
		}
	}
	w.logger.Info("seeded frontier", zap.Int("queued", queued))
	return nil
}

// drain pops pending match ids until the queue is empty. Returns the number
// of ids it handled; a non-nil error means the credential is dead.
func (w *Worker) drain(ctx context.Context) (int, error) {
	processed := 0
	for {
		if ctx.Err() != nil {
			return processed, nil
		}
		matchID, ok := w.frontier.Dequeue()
		if !ok {
			return processed, nil
		}
		processed++
		observePending(w.frontier.Snapshot().Pending)

		if err := w.processMatch(ctx, matchID); err != nil {
			return processed, err
		}
	}
}

// processMatch fetches one match, filters it, and persists it with its
// participants' masteries. Only credential failures propagate; every other
// failure abandons just this match.
func (w *Worker) processMatch(ctx context.Context, matchID string) error {
	match, err := w.client.MatchByID(ctx, matchID)
	if err != nil {
		if Classify(err) == ActionTerminateWorker {
			return err
		}
		w.skipped.Add(1)
		observeMatch("error")
		w.logger.Warn("skipping match",
			zap.String("match_id", matchID),
			zap.String("kind", riot.KindOf(err).String()),
			zap.Error(err),
		)
		return nil
	}

	if !Acceptable(match) {
		w.rejected.Add(1)
		observeMatch("rejected")
		w.logger.Debug("rejected match",
			zap.String("match_id", matchID),
			zap.String("game_mode", match.Info.GameMode),
			zap.String("game_type", match.Info.GameType),
			zap.Int("participants", len(match.Info.Participants)),
		)
		return nil
	}

	record, participants, err := BuildRecords(match)
	if err != nil {
		w.skipped.Add(1)
		observeMatch("error")
		w.logger.Warn("building records failed", zap.String("match_id", matchID), zap.Error(err))
		return nil
	}
	if err := w.store.InsertMatch(ctx, record, participants); err != nil {
		w.skipped.Add(1)
		observeMatch("error")
		w.logger.Error("persist match failed", zap.String("match_id", matchID), zap.Error(err))
		return nil
	}

	w.lastAccepted = &match
	w.accepted.Add(1)
	observeMatch("accepted")
	w.logger.Debug("match persisted", zap.String("match_id", matchID))

	return w.fetchMasteries(ctx, match)
}

// fetchMasteries grabs mastery snapshots for participants no worker has
// fetched yet. The frontier flag is claimed before the network call so two
// workers never fetch the same player; a failed fetch gives up that player's
// snapshot rather than retrying.
func (w *Worker) fetchMasteries(ctx context.Context, match riot.Match) error {
	for _, p := range match.Info.Participants {
		if !w.frontier.MarkMasteryFetched(p.PUUID) {
			continue
		}
		records, err := w.client.MasteryByPUUID(ctx, p.PUUID)
		if err != nil {
			if Classify(err) == ActionTerminateWorker {
				return err
			}
			observeMastery("error")
			w.logger.Warn("skipping mastery",
				zap.String("puuid", p.PUUID),
				zap.String("kind", riot.KindOf(err).String()),
				zap.Error(err),
			)
			continue
		}
		if err := w.store.InsertMastery(ctx, p.PUUID, records); err != nil {
			observeMastery("error")
			w.logger.Error("persist mastery failed", zap.String("puuid", p.PUUID), zap.Error(err))
			continue
		}
		observeMastery("fetched")
	}
	return nil
}

// refill expands the graph from the most recently accepted match. Rejected
// matches never drive expansion: a degenerate lobby's participant list is not
// representative. With no accepted match yet the worker is starved and falls
// back to its original seed player.
func (w *Worker) refill(ctx context.Context) (int, error) {
	if w.lastAccepted == nil {
		w.logger.Warn("queue empty with no accepted match, re-seeding from original seed")
		return w.expandPlayer(ctx, w.seedPUUID)
	}

	added := 0
	for _, puuid := range w.lastAccepted.Metadata.Participants {
		if ctx.Err() != nil {
			return added, nil
		}
		if !w.frontier.MarkPlayerSeen(puuid) {
			continue
		}
		if err := w.store.MarkPlayerSeen(ctx, puuid); err != nil {
			w.logger.Warn("persist seen player failed", zap.String("puuid", puuid), zap.Error(err))
		}
		n, err := w.expandPlayer(ctx, puuid)
		if err != nil {
			return added, err
		}
		added += n
	}
	w.logger.Info("refilled queue", zap.Int("added", added))
	return added, nil
}

// expandPlayer queues a player's recent match ids. Unknown players and
// malformed histories skip just this expansion step.
func (w *Worker) expandPlayer(ctx context.Context, puuid string) (int, error) {
	if puuid == "" {
		return 0, nil
	}
	ids, err := w.client.MatchIDsByPUUID(ctx, puuid)
	if err != nil {
		if Classify(err) == ActionTerminateWorker {
			return 0, err
		}
		w.logger.Warn("skipping player expansion",
			zap.String("puuid", puuid),
			zap.String("kind", riot.KindOf(err).String()),
			zap.Error(err),
		)
		return 0, nil
	}
	added := 0
	for _, id := range ids {
		if w.frontier.Enqueue(id) {
			added++
		}
	}
	return added, nil
}

// pauseCtx sleeps for delay unless the context ends first.
func pauseCtx(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
