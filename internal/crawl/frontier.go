package crawl

import "sync"

// Frontier is the shared crawl state: three monotonic dedup sets and the
// pending-match queue, all guarded by one mutex. Every operation is a short
// pure in-memory critical section; network I/O never happens under the lock.
type Frontier struct {
	mu                sync.Mutex
	seenMatches       map[string]struct{}
	seenPlayers       map[string]struct{}
	seenMasteryOwners map[string]struct{}
	pending           []string
}

// NewFrontier builds an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		seenMatches:       make(map[string]struct{}),
		seenPlayers:       make(map[string]struct{}),
		seenMasteryOwners: make(map[string]struct{}),
	}
}

// Restore seeds the dedup sets from persisted state so a restarted process
// does not repeat committed work. The pending queue stays empty; it is
// per-run state.
func (f *Frontier) Restore(state SeenState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range state.Matches {
		f.seenMatches[id] = struct{}{}
	}
	for _, id := range state.Players {
		f.seenPlayers[id] = struct{}{}
	}
	for _, id := range state.MasteryOwners {
		f.seenMasteryOwners[id] = struct{}{}
	}
}

// Enqueue adds matchID to the pending queue unless it was already seen. The
// seen mark and the enqueue happen under one lock acquisition so two workers
// can never queue the same match twice. Returns whether the id was new.
func (f *Frontier) Enqueue(matchID string) bool {
	if matchID == "" {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.seenMatches[matchID]; ok {
		return false
	}
	f.seenMatches[matchID] = struct{}{}
	f.pending = append(f.pending, matchID)
	return true
}

// Dequeue pops the next pending match id. An empty queue is a normal state,
// reported via ok=false, not an error.
func (f *Frontier) Dequeue() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) == 0 {
		return "", false
	}
	id := f.pending[0]
	f.pending = f.pending[1:]
	return id, true
}

// MarkPlayerSeen records that a player's match history has been expanded.
// Returns true only for the first caller, so redundant history fetches are
// skipped.
func (f *Frontier) MarkPlayerSeen(puuid string) bool {
	if puuid == "" {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.seenPlayers[puuid]; ok {
		return false
	}
	f.seenPlayers[puuid] = struct{}{}
	return true
}

// MarkMasteryFetched is the same check-and-set scoped to mastery lookups,
// which are independent of match-history expansion.
func (f *Frontier) MarkMasteryFetched(puuid string) bool {
	if puuid == "" {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.seenMasteryOwners[puuid]; ok {
		return false
	}
	f.seenMasteryOwners[puuid] = struct{}{}
	return true
}

// PlayerSeen reports membership without mutating, used for seed assignment.
func (f *Frontier) PlayerSeen(puuid string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.seenPlayers[puuid]
	return ok
}

// Stats is a point-in-time snapshot of frontier sizes.
type Stats struct {
	SeenMatches       int `json:"seen_matches"`
	SeenPlayers       int `json:"seen_players"`
	SeenMasteryOwners int `json:"seen_mastery_owners"`
	Pending           int `json:"pending"`
}

// Snapshot returns current set and queue sizes for logging and the status API.
func (f *Frontier) Snapshot() Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Stats{
		SeenMatches:       len(f.seenMatches),
		SeenPlayers:       len(f.seenPlayers),
		SeenMasteryOwners: len(f.seenMasteryOwners),
		Pending:           len(f.pending),
	}
}
