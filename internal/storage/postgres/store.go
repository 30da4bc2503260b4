// Package postgres implements the persistence gateway over a pgx pool.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/riftline/riftline/internal/crawl"
	"github.com/riftline/riftline/internal/riot"
)

// StoreConfig controls the Postgres connection pool.
type StoreConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// dbPool is the narrow pool surface the store needs, satisfied by both
// pgxpool.Pool and the pgxmock pool used in tests.
type dbPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// Store is the Postgres-backed persistence gateway. Writes are idempotent:
// primary-key conflicts are silent no-ops so two workers racing past the
// frontier's dedup window cannot fail each other.
type Store struct {
	pool dbPool
}

// NewStore connects a pool using cfg.
func NewStore(ctx context.Context, cfg StoreConfig) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewStoreWithPool constructs a Store from an existing pool (primarily for
// testing).
func NewStoreWithPool(pool dbPool) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Bootstrap applies the schema DDL. Safe to run on every startup.
func (s *Store) Bootstrap(ctx context.Context) error {
	for _, stmt := range schemaDDL {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

const insertMatchSQL = `
INSERT INTO matches (match_id, game_version, game_creation, game_duration, game_id, winner)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (match_id) DO NOTHING`

const insertParticipantSQL = `
INSERT INTO participants (
	match_id, puuid, champion_id, team_id, team_position,
	assists, baron_kills, bounty_level, champ_experience, champ_level,
	consumables_purchased, damage_dealt_to_buildings, damage_dealt_to_objectives,
	damage_dealt_to_turrets, damage_self_mitigated, deaths, detector_wards_placed,
	double_kills, dragon_kills, first_blood_kill, gold_earned, gold_spent,
	inhibitor_kills, killing_sprees, kills, largest_killing_spree,
	largest_multi_kill, longest_time_spent_living, magic_damage_dealt,
	magic_damage_dealt_to_champions, magic_damage_taken, neutral_minions_killed,
	objectives_stolen, penta_kills, physical_damage_dealt,
	physical_damage_dealt_to_champions, physical_damage_taken, quadra_kills,
	time_ccing_others, total_damage_dealt, total_damage_dealt_to_champions,
	total_damage_taken, total_heal, total_minions_killed, triple_kills,
	true_damage_dealt, turret_kills, vision_score, wards_killed, wards_placed, win
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,
	$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33,$34,$35,$36,$37,$38,
	$39,$40,$41,$42,$43,$44,$45,$46,$47,$48,$49,$50,$51
)`

// InsertMatch writes a match and its ten participant rows in one transaction.
// A match id that already exists leaves the store untouched: the whole call
// is a silent no-op, not an error. A participant count other than ten is
// rejected before anything is written.
func (s *Store) InsertMatch(ctx context.Context, match crawl.MatchRecord, participants []crawl.ParticipantRecord) error {
	if len(participants) != 10 {
		return fmt.Errorf("match %s has %d participants, want 10", match.MatchID, len(participants))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin insert match: %w", err)
	}

	tag, err := tx.Exec(ctx, insertMatchSQL,
		match.MatchID, match.GameVersion, match.GameCreation,
		match.GameDuration, match.GameID, match.Winner,
	)
	if err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("insert match %s: %w", match.MatchID, err)
	}
	if tag.RowsAffected() == 0 {
		// Another worker won the race; their transaction owns the rows.
		_ = tx.Rollback(ctx)
		return nil
	}

	for _, p := range participants {
		if _, err := tx.Exec(ctx, insertParticipantSQL, participantArgs(p)...); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("insert participant for %s: %w", match.MatchID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit match %s: %w", match.MatchID, err)
	}
	return nil
}

func participantArgs(p crawl.ParticipantRecord) []any {
	return []any{
		p.MatchID, p.PUUID, p.ChampionID, p.TeamID, p.TeamPosition,
		p.Assists, p.BaronKills, p.BountyLevel, p.ChampExperience, p.ChampLevel,
		p.ConsumablesPurchased, p.DamageDealtToBuildings, p.DamageDealtToObjectives,
		p.DamageDealtToTurrets, p.DamageSelfMitigated, p.Deaths, p.DetectorWardsPlaced,
		p.DoubleKills, p.DragonKills, p.FirstBloodKill, p.GoldEarned, p.GoldSpent,
		p.InhibitorKills, p.KillingSprees, p.Kills, p.LargestKillingSpree,
		p.LargestMultiKill, p.LongestTimeSpentLiving, p.MagicDamageDealt,
		p.MagicDamageDealtToChampions, p.MagicDamageTaken, p.NeutralMinionsKilled,
		p.ObjectivesStolen, p.PentaKills, p.PhysicalDamageDealt,
		p.PhysicalDamageDealtToChampions, p.PhysicalDamageTaken, p.QuadraKills,
		p.TimeCCingOthers, p.TotalDamageDealt, p.TotalDamageDealtToChampions,
		p.TotalDamageTaken, p.TotalHeal, p.TotalMinionsKilled, p.TripleKills,
		p.TrueDamageDealt, p.TurretKills, p.VisionScore, p.WardsKilled,
		p.WardsPlaced, p.Win,
	}
}

const insertMasterySQL = `
INSERT INTO champion_mastery (puuid, champion_id, champion_level, champion_points)
VALUES ($1,$2,$3,$4)
ON CONFLICT (puuid, champion_id) DO NOTHING`

// InsertMastery writes a player's mastery snapshot. Idempotent per
// (player, champion); safe to call even if some rows already exist.
func (s *Store) InsertMastery(ctx context.Context, puuid string, records []riot.MasteryRecord) error {
	for _, r := range records {
		owner := r.PUUID
		if owner == "" {
			owner = puuid
		}
		if _, err := s.pool.Exec(ctx, insertMasterySQL,
			owner, r.ChampionID, r.ChampionLevel, r.ChampionPoints,
		); err != nil {
			return fmt.Errorf("insert mastery for %s: %w", puuid, err)
		}
	}
	return nil
}

const markSeenSQL = `
INSERT INTO seen_players (puuid) VALUES ($1)
ON CONFLICT (puuid) DO NOTHING`

// MarkPlayerSeen durably records that a player's history has been expanded.
func (s *Store) MarkPlayerSeen(ctx context.Context, puuid string) error {
	if puuid == "" {
		return fmt.Errorf("puuid is required")
	}
	if _, err := s.pool.Exec(ctx, markSeenSQL, puuid); err != nil {
		return fmt.Errorf("mark player seen: %w", err)
	}
	return nil
}

// LoadSeenState rebuilds the frontier dedup sets from durable storage so a
// restarted process does not repeat committed work.
func (s *Store) LoadSeenState(ctx context.Context) (crawl.SeenState, error) {
	matches, err := s.selectStrings(ctx, `SELECT match_id FROM matches`)
	if err != nil {
		return crawl.SeenState{}, fmt.Errorf("load seen matches: %w", err)
	}
	players, err := s.selectStrings(ctx, `SELECT puuid FROM seen_players`)
	if err != nil {
		return crawl.SeenState{}, fmt.Errorf("load seen players: %w", err)
	}
	owners, err := s.selectStrings(ctx, `SELECT DISTINCT puuid FROM champion_mastery`)
	if err != nil {
		return crawl.SeenState{}, fmt.Errorf("load mastery owners: %w", err)
	}
	return crawl.SeenState{Matches: matches, Players: players, MasteryOwners: owners}, nil
}

const sampleParticipantsSQL = `
SELECT puuid FROM (SELECT DISTINCT puuid FROM participants) p
ORDER BY random() LIMIT $1`

// SampleParticipants returns up to n random distinct player ids from stored
// participants, used to pick fresh seeds on restart.
func (s *Store) SampleParticipants(ctx context.Context, n int) ([]string, error) {
	rows, err := s.pool.Query(ctx, sampleParticipantsSQL, n)
	if err != nil {
		return nil, fmt.Errorf("sample participants: %w", err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

const insertChampionSQL = `
INSERT INTO champions (champion_id, name, tags, attack, defense, magic, difficulty)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (champion_id) DO NOTHING`

// InsertChampions seeds the static champion reference table.
func (s *Store) InsertChampions(ctx context.Context, champs []riot.Champion) error {
	for _, c := range champs {
		if _, err := s.pool.Exec(ctx, insertChampionSQL,
			c.ChampionID, c.Name, c.Tags, c.Attack, c.Defense, c.Magic, c.Difficulty,
		); err != nil {
			return fmt.Errorf("insert champion %d: %w", c.ChampionID, err)
		}
	}
	return nil
}

func (s *Store) selectStrings(ctx context.Context, query string) ([]string, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

func scanStrings(rows pgx.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
