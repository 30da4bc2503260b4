package crawl

import (
	"context"

	"github.com/riftline/riftline/internal/riot"
)

// GameClient is the remote data service surface a worker consumes. The
// concrete implementation owns rate pacing and transient retries; by the time
// an error reaches a worker it is already classified.
type GameClient interface {
	AccountByRiotID(ctx context.Context, gameName, tagLine string) (riot.Account, error)
	MatchIDsByPUUID(ctx context.Context, puuid string) ([]string, error)
	MatchByID(ctx context.Context, matchID string) (riot.Match, error)
	MasteryByPUUID(ctx context.Context, puuid string) ([]riot.MasteryRecord, error)
}

// Store is the persistence gateway. All writes are idempotent; primary-key
// constraints make double inserts silent no-ops.
type Store interface {
	InsertMatch(ctx context.Context, match MatchRecord, participants []ParticipantRecord) error
	InsertMastery(ctx context.Context, puuid string, records []riot.MasteryRecord) error
	MarkPlayerSeen(ctx context.Context, puuid string) error
	LoadSeenState(ctx context.Context) (SeenState, error)
	SampleParticipants(ctx context.Context, n int) ([]string, error)
	Close()
}
