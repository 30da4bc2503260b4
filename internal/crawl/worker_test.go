package crawl

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/riftline/riftline/internal/riot"
)

// fastWorkerCfg keeps starvation pauses out of test runtime.
var fastWorkerCfg = WorkerConfig{StarvationLimit: 2, StarvationWait: time.Millisecond}

type fakeClient struct {
	mu           sync.Mutex
	accounts     map[string]riot.Account
	histories    map[string][]string
	matches      map[string]riot.Match
	masteries    map[string][]riot.MasteryRecord
	matchErr     map[string]error
	accountErr   error
	matchCalls   map[string]int
	masteryCalls map[string]int
	historyCalls map[string]int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		accounts:     map[string]riot.Account{},
		histories:    map[string][]string{},
		matches:      map[string]riot.Match{},
		masteries:    map[string][]riot.MasteryRecord{},
		matchErr:     map[string]error{},
		matchCalls:   map[string]int{},
		masteryCalls: map[string]int{},
		historyCalls: map[string]int{},
	}
}

func (c *fakeClient) AccountByRiotID(_ context.Context, gameName, tagLine string) (riot.Account, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accountErr != nil {
		return riot.Account{}, c.accountErr
	}
	account, ok := c.accounts[gameName+"#"+tagLine]
	if !ok {
		return riot.Account{}, &riot.APIError{Kind: riot.KindNotFound, StatusCode: 404, Endpoint: "account"}
	}
	return account, nil
}

func (c *fakeClient) MatchIDsByPUUID(_ context.Context, puuid string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.historyCalls[puuid]++
	ids, ok := c.histories[puuid]
	if !ok {
		return nil, &riot.APIError{Kind: riot.KindNotFound, StatusCode: 404, Endpoint: "match_ids"}
	}
	return ids, nil
}

func (c *fakeClient) MatchByID(_ context.Context, matchID string) (riot.Match, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.matchCalls[matchID]++
	if err, ok := c.matchErr[matchID]; ok {
		return riot.Match{}, err
	}
	match, ok := c.matches[matchID]
	if !ok {
		return riot.Match{}, &riot.APIError{Kind: riot.KindNotFound, StatusCode: 404, Endpoint: "match"}
	}
	return match, nil
}

func (c *fakeClient) MasteryByPUUID(_ context.Context, puuid string) ([]riot.MasteryRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.masteryCalls[puuid]++
	records, ok := c.masteries[puuid]
	if !ok {
		return nil, &riot.APIError{Kind: riot.KindNotFound, StatusCode: 404, Endpoint: "mastery"}
	}
	return records, nil
}

type fakeStore struct {
	mu           sync.Mutex
	matches      map[string][]ParticipantRecord
	masteries    map[string][]riot.MasteryRecord
	seenPlayers  map[string]struct{}
	seenState    SeenState
	participants []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		matches:     map[string][]ParticipantRecord{},
		masteries:   map[string][]riot.MasteryRecord{},
		seenPlayers: map[string]struct{}{},
	}
}

func (s *fakeStore) InsertMatch(_ context.Context, match MatchRecord, participants []ParticipantRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.matches[match.MatchID]; ok {
		return nil
	}
	s.matches[match.MatchID] = participants
	return nil
}

func (s *fakeStore) InsertMastery(_ context.Context, puuid string, records []riot.MasteryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.masteries[puuid] = records
	return nil
}

func (s *fakeStore) MarkPlayerSeen(_ context.Context, puuid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seenPlayers[puuid] = struct{}{}
	return nil
}

func (s *fakeStore) LoadSeenState(_ context.Context) (SeenState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seenState, nil
}

func (s *fakeStore) SampleParticipants(_ context.Context, n int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > len(s.participants) {
		n = len(s.participants)
	}
	return s.participants[:n], nil
}

func (s *fakeStore) Close() {}

func (s *fakeStore) matchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.matches)
}

// The spec's seed scenario: Ada's history returns a ranked match and an ARAM.
// Only the ranked match is persisted and only it drives graph expansion, but
// both ids end up in the seen set.
func TestWorker_AcceptRejectScenario(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.accounts["Ada#NA1"] = riot.Account{PUUID: "puuid-ada"}
	client.histories["puuid-ada"] = []string{"M1", "M2"}

	m1 := rankedMatch("M1", true)
	client.matches["M1"] = m1

	aram := rankedMatch("M2", true)
	aram.Info.GameMode = "ARAM"
	client.matches["M2"] = aram

	store := newFakeStore()
	frontier := NewFrontier()
	w := NewWorker(0, Seed{GameName: "Ada", TagLine: "NA1"}, frontier, client, store, fastWorkerCfg, zap.NewNop())

	w.Run(context.Background())

	require.Equal(t, StateTerminated, w.State())
	require.Equal(t, 1, store.matchCount(), "only the ranked match is persisted")
	require.Len(t, store.matches["M1"], 10)
	require.False(t, frontier.Enqueue("M1"))
	require.False(t, frontier.Enqueue("M2"), "the rejected match is still marked seen")

	// Expansion came from M1's participants only; the ARAM roster was
	// never used to refill the queue.
	for _, puuid := range m1.Metadata.Participants {
		require.Equal(t, 1, client.historyCalls[puuid])
	}
	for _, puuid := range aram.Metadata.Participants {
		require.Zero(t, client.historyCalls[puuid])
	}
}

// A player appearing in two accepted matches has their mastery fetched at
// most once per run.
func TestWorker_MasteryFetchOnce(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.accounts["Ada#NA1"] = riot.Account{PUUID: "puuid-ada"}
	client.histories["puuid-ada"] = []string{"M1", "M2"}

	m1 := rankedMatch("M1", true)
	m2 := rankedMatch("M2", false)
	// The same player shows up in both lobbies.
	shared := "shared-player"
	m1.Info.Participants[0].PUUID = shared
	m1.Metadata.Participants[0] = shared
	m2.Info.Participants[0].PUUID = shared
	m2.Metadata.Participants[0] = shared
	client.matches["M1"] = m1
	client.matches["M2"] = m2

	for _, m := range []riot.Match{m1, m2} {
		for _, p := range m.Info.Participants {
			client.masteries[p.PUUID] = []riot.MasteryRecord{{ChampionID: 1, ChampionLevel: 7, ChampionPoints: 210000}}
		}
	}

	store := newFakeStore()
	w := NewWorker(0, Seed{GameName: "Ada", TagLine: "NA1"}, NewFrontier(), client, store, fastWorkerCfg, zap.NewNop())
	w.Run(context.Background())

	require.Equal(t, 2, store.matchCount())
	require.Equal(t, 1, client.masteryCalls[shared], "mastery fetched at most once per player")
	require.Contains(t, store.masteries, shared)
}

// A Forbidden response retires only the worker holding that credential; a
// second worker with a valid credential keeps draining.
func TestWorker_FatalIsolation(t *testing.T) {
	t.Parallel()

	frontier := NewFrontier()
	store := newFakeStore()

	badClient := newFakeClient()
	badClient.accounts["Bad#NA1"] = riot.Account{PUUID: "puuid-bad"}
	badClient.histories["puuid-bad"] = []string{"MX"}
	badClient.matchErr["MX"] = &riot.APIError{Kind: riot.KindForbidden, StatusCode: 403, Endpoint: "match"}

	goodClient := newFakeClient()
	goodClient.accounts["Good#NA1"] = riot.Account{PUUID: "puuid-good"}
	goodClient.histories["puuid-good"] = []string{"M1"}
	goodClient.matches["M1"] = rankedMatch("M1", true)

	bad := NewWorker(0, Seed{GameName: "Bad", TagLine: "NA1"}, frontier, badClient, store, fastWorkerCfg, zap.NewNop())
	good := NewWorker(1, Seed{GameName: "Good", TagLine: "NA1"}, frontier, goodClient, store, fastWorkerCfg, zap.NewNop())

	var wg sync.WaitGroup
	for _, w := range []*Worker{bad, good} {
		wg.Add(1)
		go func(w *Worker) {
			defer wg.Done()
			w.Run(context.Background())
		}(w)
	}
	wg.Wait()

	require.Equal(t, StateTerminated, bad.State())
	require.Equal(t, StateTerminated, good.State())
	require.Contains(t, store.matches, "M1", "healthy worker keeps processing")
	require.NotContains(t, store.matches, "MX")
}

// With the frontier restored from storage, a match already committed is never
// re-fetched even though it is reachable from the seed's history.
func TestWorker_Resumability(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.accounts["Ada#NA1"] = riot.Account{PUUID: "puuid-ada"}
	client.histories["puuid-ada"] = []string{"M1", "M3"}
	client.matches["M1"] = rankedMatch("M1", true)
	client.matches["M3"] = rankedMatch("M3", true)

	frontier := NewFrontier()
	frontier.Restore(SeenState{Matches: []string{"M1"}})

	store := newFakeStore()
	w := NewWorker(0, Seed{GameName: "Ada", TagLine: "NA1"}, frontier, client, store, fastWorkerCfg, zap.NewNop())
	w.Run(context.Background())

	require.Zero(t, client.matchCalls["M1"], "committed match must not be re-fetched")
	require.Equal(t, 1, client.matchCalls["M3"])
	require.Contains(t, store.matches, "M3")
	require.NotContains(t, store.matches, "M1")
}

// A seed already carrying a PUUID (sampled on restart) skips name resolution.
func TestWorker_SeedWithPUUID(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.histories["puuid-sampled"] = []string{"M1"}
	client.matches["M1"] = rankedMatch("M1", true)

	store := newFakeStore()
	w := NewWorker(0, Seed{PUUID: "puuid-sampled"}, NewFrontier(), client, store, fastWorkerCfg, zap.NewNop())
	w.Run(context.Background())

	require.Contains(t, store.matches, "M1")
	require.Contains(t, store.seenPlayers, "puuid-sampled")
}

// An unknown seed player leaves the worker with no graph to expand; it
// terminates rather than spinning.
func TestWorker_SeedNotFoundTerminates(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	store := newFakeStore()
	w := NewWorker(0, Seed{GameName: "Nobody", TagLine: "NA1"}, NewFrontier(), client, store, fastWorkerCfg, zap.NewNop())
	w.Run(context.Background())

	require.Equal(t, StateTerminated, w.State())
	require.Zero(t, store.matchCount())
}

// When every dequeued match is rejected, the worker has no accepted match to
// expand from: it falls back to re-seeding from its original seed player.
func TestWorker_StarvationFallsBackToSeed(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.accounts["Ada#NA1"] = riot.Account{PUUID: "puuid-ada"}
	client.histories["puuid-ada"] = []string{"M1"}
	aram := rankedMatch("M1", true)
	aram.Info.GameMode = "ARAM"
	client.matches["M1"] = aram

	store := newFakeStore()
	w := NewWorker(0, Seed{GameName: "Ada", TagLine: "NA1"}, NewFrontier(), client, store, fastWorkerCfg, zap.NewNop())
	w.Run(context.Background())

	require.Equal(t, StateTerminated, w.State())
	// Initial seeding plus at least one starvation re-seed.
	require.GreaterOrEqual(t, client.historyCalls["puuid-ada"], 2)
	require.Zero(t, store.matchCount())
}

// Transient failures on individual matches abandon only that match.
func TestWorker_TransientSkipsSingleMatch(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.accounts["Ada#NA1"] = riot.Account{PUUID: "puuid-ada"}
	client.histories["puuid-ada"] = []string{"M1", "M2"}
	client.matchErr["M1"] = &riot.APIError{Kind: riot.KindTransient, StatusCode: 429, Attempts: 6, Endpoint: "match"}
	client.matches["M2"] = rankedMatch("M2", true)

	store := newFakeStore()
	w := NewWorker(0, Seed{GameName: "Ada", TagLine: "NA1"}, NewFrontier(), client, store, fastWorkerCfg, zap.NewNop())
	w.Run(context.Background())

	require.NotContains(t, store.matches, "M1")
	require.Contains(t, store.matches, "M2")
	status := w.Status()
	require.Equal(t, int64(1), status.Accepted)
	require.Equal(t, int64(1), status.Skipped)
}
