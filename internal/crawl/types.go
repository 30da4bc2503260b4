// Package crawl implements the concurrent breadth-first match-graph crawler:
// the shared frontier, the per-credential worker state machine, and the
// orchestrator that supervises crawl cycles.
package crawl

import (
	"fmt"

	"github.com/riftline/riftline/internal/riot"
)

// Matches are accepted only when they are standard competitive games.
const (
	acceptedGameMode = "CLASSIC"
	acceptedGameType = "MATCHED_GAME"

	// matchTeamSize is the participant count a persistable match must have.
	matchTeamSize = 10

	// Winning side encoding carried over from the source data: 100 is the
	// blue side, 200 the red side.
	blueSide = 100
	redSide  = 200
)

// MatchRecord is the normalized match row handed to the persistence gateway.
type MatchRecord struct {
	MatchID      string
	GameVersion  string
	GameCreation int64
	GameDuration int64
	GameID       int64
	Winner       int
}

// ParticipantRecord is one per-player stat row, keyed to its match.
type ParticipantRecord struct {
	riot.Participant
	MatchID string
}

// SeenState holds the dedup sets rebuilt from durable storage at bootstrap.
type SeenState struct {
	Matches       []string
	Players       []string
	MasteryOwners []string
}

// Seed identifies where a worker starts its graph expansion. Configured seeds
// carry a display name that SEEDING resolves; seeds sampled from storage on
// restart already carry a PUUID.
type Seed struct {
	GameName string
	TagLine  string
	PUUID    string
}

func (s Seed) String() string {
	if s.PUUID != "" {
		return s.PUUID
	}
	return s.GameName + "#" + s.TagLine
}

// Acceptable reports whether a match detail payload should be persisted and
// used for graph expansion: ranked classic mode with a full lobby of humans.
func Acceptable(m riot.Match) bool {
	if m.Info.GameMode != acceptedGameMode || m.Info.GameType != acceptedGameType {
		return false
	}
	if len(m.Info.Participants) != matchTeamSize {
		return false
	}
	for _, p := range m.Info.Participants {
		if p.PUUID == "" || p.PUUID == "BOT" {
			return false
		}
	}
	return true
}

// BuildRecords converts an accepted match payload into its storage rows.
func BuildRecords(m riot.Match) (MatchRecord, []ParticipantRecord, error) {
	if len(m.Info.Participants) != matchTeamSize {
		return MatchRecord{}, nil, fmt.Errorf("match %s has %d participants, want %d",
			m.Metadata.MatchID, len(m.Info.Participants), matchTeamSize)
	}

	winner := redSide
	if len(m.Info.Teams) > 0 && m.Info.Teams[0].Win {
		winner = blueSide
	}

	record := MatchRecord{
		MatchID:      m.Metadata.MatchID,
		GameVersion:  m.Info.GameVersion,
		GameCreation: m.Info.GameCreation,
		GameDuration: m.Info.GameDuration,
		GameID:       m.Info.GameID,
		Winner:       winner,
	}

	participants := make([]ParticipantRecord, 0, matchTeamSize)
	for _, p := range m.Info.Participants {
		participants = append(participants, ParticipantRecord{
			Participant: p,
			MatchID:     m.Metadata.MatchID,
		})
	}
	return record, participants, nil
}
