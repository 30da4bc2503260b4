package postgres

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/riftline/riftline/internal/crawl"
	"github.com/riftline/riftline/internal/riot"
)

// anyArgs returns n pgxmock wildcard matchers, for expectations that do not
// care about argument values (pgxmock still requires the count to match).
func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func testMatch() (crawl.MatchRecord, []crawl.ParticipantRecord) {
	match := crawl.MatchRecord{
		MatchID:      "NA1_4466899000",
		GameVersion:  "12.19.473.2973",
		GameCreation: 1665000000000,
		GameDuration: 1865,
		GameID:       4466899000,
		Winner:       100,
	}
	participants := make([]crawl.ParticipantRecord, 10)
	for i := range participants {
		participants[i] = crawl.ParticipantRecord{
			Participant: riot.Participant{PUUID: "p" + string(rune('0'+i)), ChampionID: 100 + i},
			MatchID:     match.MatchID,
		}
	}
	return match, participants
}

func TestInsertMatch_WritesMatchAndTenParticipants(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewStoreWithPool(mock)
	require.NoError(t, err)

	match, participants := testMatch()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO matches").
		WithArgs(match.MatchID, match.GameVersion, match.GameCreation,
			match.GameDuration, match.GameID, match.Winner).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	for range participants {
		mock.ExpectExec("INSERT INTO participants").
			WithArgs(anyArgs(51)...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectCommit()

	require.NoError(t, store.InsertMatch(context.Background(), match, participants))
	require.NoError(t, mock.ExpectationsWereMet())
}

// A second insert for the same match id is a silent no-op: the conflict on
// the match row short-circuits before any participant write.
func TestInsertMatch_DuplicateIsNoOp(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewStoreWithPool(mock)
	require.NoError(t, err)

	match, participants := testMatch()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO matches").
		WithArgs(anyArgs(6)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectRollback()

	require.NoError(t, store.InsertMatch(context.Background(), match, participants))
	require.NoError(t, mock.ExpectationsWereMet())
}

// The completeness invariant: anything but exactly ten participants is
// rejected before the database is touched.
func TestInsertMatch_RejectsPartialLobby(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewStoreWithPool(mock)
	require.NoError(t, err)

	match, participants := testMatch()
	err = store.InsertMatch(context.Background(), match, participants[:9])
	require.ErrorContains(t, err, "want 10")
	require.NoError(t, mock.ExpectationsWereMet(), "no statement may reach the pool")
}

func TestInsertMastery_Idempotent(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewStoreWithPool(mock)
	require.NoError(t, err)

	records := []riot.MasteryRecord{
		{ChampionID: 103, ChampionLevel: 7, ChampionPoints: 210000},
		{ChampionID: 64, ChampionLevel: 5, ChampionPoints: 60000, PUUID: "puuid-ada"},
	}

	mock.ExpectExec("INSERT INTO champion_mastery").
		WithArgs("puuid-ada", 103, 7, 210000).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO champion_mastery").
		WithArgs("puuid-ada", 64, 5, 60000).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	require.NoError(t, store.InsertMastery(context.Background(), "puuid-ada", records))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPlayerSeen(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewStoreWithPool(mock)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO seen_players").
		WithArgs("puuid-ada").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.MarkPlayerSeen(context.Background(), "puuid-ada"))
	require.Error(t, store.MarkPlayerSeen(context.Background(), ""))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadSeenState(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewStoreWithPool(mock)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT match_id FROM matches").
		WillReturnRows(pgxmock.NewRows([]string{"match_id"}).AddRow("M1").AddRow("M2"))
	mock.ExpectQuery("SELECT puuid FROM seen_players").
		WillReturnRows(pgxmock.NewRows([]string{"puuid"}).AddRow("p1"))
	mock.ExpectQuery("SELECT DISTINCT puuid FROM champion_mastery").
		WillReturnRows(pgxmock.NewRows([]string{"puuid"}))

	state, err := store.LoadSeenState(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"M1", "M2"}, state.Matches)
	require.Equal(t, []string{"p1"}, state.Players)
	require.Empty(t, state.MasteryOwners)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSampleParticipants(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewStoreWithPool(mock)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT puuid FROM").
		WithArgs(2).
		WillReturnRows(pgxmock.NewRows([]string{"puuid"}).AddRow("p7").AddRow("p2"))

	players, err := store.SampleParticipants(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, []string{"p7", "p2"}, players)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBootstrap_AppliesSchema(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewStoreWithPool(mock)
	require.NoError(t, err)

	for range schemaDDL {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS").
			WillReturnResult(pgxmock.NewResult("CREATE", 0))
	}

	require.NoError(t, store.Bootstrap(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertChampions(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewStoreWithPool(mock)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO champions").
		WithArgs(103, "Ahri", "Mage,Assassin", 3, 4, 8, 5).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = store.InsertChampions(context.Background(), []riot.Champion{
		{ChampionID: 103, Name: "Ahri", Tags: "Mage,Assassin", Attack: 3, Defense: 4, Magic: 8, Difficulty: 5},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewStoreWithPool_RequiresPool(t *testing.T) {
	t.Parallel()

	_, err := NewStoreWithPool(nil)
	require.Error(t, err)
}
