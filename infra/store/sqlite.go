// Package store persists leagues, polls, pods and game results to SQLite.
// The optimizer itself knows nothing about storage; callers hand committed
// pods in and read history back out for stats.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jtrevag/lfg-discord-bot/core/model"
	"github.com/jtrevag/lfg-discord-bot/core/stats"
)

var (
	// ErrNoActiveLeague is returned when an operation needs a league and
	// none is active.
	ErrNoActiveLeague = errors.New("no active league")
	// ErrPodNotFound is returned when a game result references an unknown
	// pod.
	ErrPodNotFound = errors.New("pod not found")
	// ErrAlreadyReported is returned when a pod already has a result.
	ErrAlreadyReported = errors.New("result already reported for pod")
)

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS leagues (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT UNIQUE NOT NULL,
    start_date INTEGER NOT NULL,
    end_date INTEGER,
    is_active INTEGER NOT NULL DEFAULT 1,
    created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS players (
    discord_user_id TEXT PRIMARY KEY,
    real_name TEXT,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS polls (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    league_id INTEGER NOT NULL REFERENCES leagues(id),
    poll_uuid TEXT UNIQUE NOT NULL,
    question TEXT,
    days TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    completed_at INTEGER
);
CREATE TABLE IF NOT EXISTS pods (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    poll_id INTEGER NOT NULL REFERENCES polls(id),
    day TEXT NOT NULL,
    members TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'scheduled',
    created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS game_results (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    pod_id INTEGER UNIQUE NOT NULL REFERENCES pods(id),
    winner_id TEXT NOT NULL,
    reported_by TEXT NOT NULL,
    reported_at INTEGER NOT NULL,
    notes TEXT
);
CREATE TABLE IF NOT EXISTS player_stats (
    league_id INTEGER NOT NULL REFERENCES leagues(id),
    player_id TEXT NOT NULL,
    games_played INTEGER NOT NULL DEFAULT 0,
    games_won INTEGER NOT NULL DEFAULT 0,
    win_rate REAL NOT NULL DEFAULT 0,
    last_updated INTEGER NOT NULL,
    UNIQUE(league_id, player_id)
);`

// Open opens or creates the database at path, ensures the schema and creates
// a default league when none exists yet.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	s := &Store{db: db}
	if err := s.ensureDefaultLeague(); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (league err: %w)", cerr, err)
		}
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureDefaultLeague() error {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM leagues`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	now := time.Now()
	_, err := s.db.Exec(
		`INSERT INTO leagues (name, start_date, is_active, created_at) VALUES (?, ?, 1, ?)`,
		fmt.Sprintf("Season %d", now.Year()), now.Unix(), now.Unix())
	return err
}

// League is a season grouping games.
type League struct {
	ID        int64
	Name      string
	StartDate time.Time
	EndDate   *time.Time
	Active    bool
}

// ActiveLeague returns the currently active league.
func (s *Store) ActiveLeague(ctx context.Context) (League, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, start_date, end_date, is_active FROM leagues WHERE is_active = 1 LIMIT 1`)
	var l League
	var start int64
	var end sql.NullInt64
	if err := row.Scan(&l.ID, &l.Name, &start, &end, &l.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return League{}, ErrNoActiveLeague
		}
		return League{}, err
	}
	l.StartDate = time.Unix(start, 0)
	if end.Valid {
		t := time.Unix(end.Int64, 0)
		l.EndDate = &t
	}
	return l, nil
}

// RolloverLeague archives the active league and starts a new one.
func (s *Store) RolloverLeague(ctx context.Context, name string, start time.Time) (League, error) {
	now := time.Now()
	if _, err := s.db.ExecContext(ctx,
		`UPDATE leagues SET is_active = 0, end_date = ? WHERE is_active = 1`, now.Unix()); err != nil {
		return League{}, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO leagues (name, start_date, is_active, created_at) VALUES (?, ?, 1, ?)`,
		name, start.Unix(), now.Unix())
	if err != nil {
		return League{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return League{}, err
	}
	return League{ID: id, Name: name, StartDate: start, Active: true}, nil
}

// MapPlayer records or updates a player's real name.
func (s *Store) MapPlayer(ctx context.Context, id model.PlayerID, realName string) error {
	now := time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO players (discord_user_id, real_name, created_at, updated_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(discord_user_id) DO UPDATE SET real_name = excluded.real_name, updated_at = excluded.updated_at`,
		string(id), realName, now, now)
	return err
}

// RealName looks up a player's mapped real name. The second return value
// reports whether a mapping exists.
func (s *Store) RealName(ctx context.Context, id model.PlayerID) (string, bool, error) {
	var name sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT real_name FROM players WHERE discord_user_id = ?`, string(id)).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return name.String, name.Valid && name.String != "", nil
}

// DisplayName renders "<@id> (RealName)" when a mapping exists, the bare
// mention otherwise. It satisfies the renderer's NameResolver.
func (s *Store) DisplayName(id model.PlayerID) string {
	name, ok, err := s.RealName(context.Background(), id)
	if err != nil || !ok {
		return id.Mention()
	}
	return fmt.Sprintf("%s (%s)", id.Mention(), name)
}

// SavePoll records a completed poll and its committed pods under the active
// league, creating player rows for every pod member. It returns the poll's
// row id.
func (s *Store) SavePoll(ctx context.Context, pollUUID, question string, days []model.Day, pods []model.Pod) (int64, error) {
	league, err := s.ActiveLeague(ctx)
	if err != nil {
		return 0, err
	}
	dayNames := make([]string, len(days))
	for i, d := range days {
		dayNames[i] = string(d)
	}
	daysJSON, err := json.Marshal(dayNames)
	if err != nil {
		return 0, err
	}
	now := time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO polls (league_id, poll_uuid, question, days, created_at, completed_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		league.ID, pollUUID, question, string(daysJSON), now, now)
	if err != nil {
		return 0, err
	}
	pollID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, pod := range pods {
		members, err := json.Marshal(pod.Players)
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO pods (poll_id, day, members, status, created_at) VALUES (?, ?, ?, 'scheduled', ?)`,
			pollID, string(pod.Day), string(members), now); err != nil {
			return 0, err
		}
		for _, p := range pod.Players {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO players (discord_user_id, created_at, updated_at) VALUES (?, ?, ?)
                 ON CONFLICT(discord_user_id) DO NOTHING`,
				string(p), now, now); err != nil {
				return 0, err
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return pollID, nil
}

// ScheduledPod is a stored pod awaiting a result.
type ScheduledPod struct {
	ID      int64
	Day     model.Day
	Players []model.PlayerID
}

// ScheduledPods lists pods in the league that have no reported result yet.
func (s *Store) ScheduledPods(ctx context.Context, leagueID int64) ([]ScheduledPod, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.day, p.members FROM pods p
         JOIN polls ON polls.id = p.poll_id
         WHERE polls.league_id = ? AND p.status = 'scheduled'
         ORDER BY p.id`, leagueID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []ScheduledPod
	for rows.Next() {
		var sp ScheduledPod
		var day, members string
		if err := rows.Scan(&sp.ID, &day, &members); err != nil {
			return nil, err
		}
		sp.Day = model.Day(day)
		if err := json.Unmarshal([]byte(members), &sp.Players); err != nil {
			return nil, fmt.Errorf("unmarshal members: %w", err)
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

// RecordResult stores a game outcome, marks the pod completed and refreshes
// the league's cached stats.
func (s *Store) RecordResult(ctx context.Context, podID int64, winner, reportedBy model.PlayerID, notes string) error {
	var leagueID int64
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT polls.league_id, pods.status FROM pods
         JOIN polls ON polls.id = pods.poll_id WHERE pods.id = ?`, podID).Scan(&leagueID, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPodNotFound
	}
	if err != nil {
		return err
	}
	if status == "completed" {
		return ErrAlreadyReported
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO game_results (pod_id, winner_id, reported_by, reported_at, notes) VALUES (?, ?, ?, ?, ?)`,
		podID, string(winner), string(reportedBy), time.Now().Unix(), notes); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE pods SET status = 'completed' WHERE id = ?`, podID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	return s.RefreshStats(ctx, leagueID)
}

// GameRecords loads the completed games of a league in reporting order.
func (s *Store) GameRecords(ctx context.Context, leagueID int64) ([]stats.GameRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pods.day, pods.members, game_results.winner_id FROM game_results
         JOIN pods ON pods.id = game_results.pod_id
         JOIN polls ON polls.id = pods.poll_id
         WHERE polls.league_id = ?
         ORDER BY game_results.reported_at, game_results.id`, leagueID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []stats.GameRecord
	for rows.Next() {
		var day, members, winner string
		if err := rows.Scan(&day, &members, &winner); err != nil {
			return nil, err
		}
		rec := stats.GameRecord{Day: model.Day(day), Winner: model.PlayerID(winner)}
		if err := json.Unmarshal([]byte(members), &rec.Players); err != nil {
			return nil, fmt.Errorf("unmarshal members: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// RecentGames loads the most recently reported games of a league, newest
// first. limit <= 0 means no cap.
func (s *Store) RecentGames(ctx context.Context, leagueID int64, limit int) ([]stats.GameRecord, error) {
	query := `SELECT pods.day, pods.members, game_results.winner_id FROM game_results
              JOIN pods ON pods.id = game_results.pod_id
              JOIN polls ON polls.id = pods.poll_id
              WHERE polls.league_id = ?
              ORDER BY game_results.reported_at DESC, game_results.id DESC`
	args := []any{leagueID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []stats.GameRecord
	for rows.Next() {
		var day, members, winner string
		if err := rows.Scan(&day, &members, &winner); err != nil {
			return nil, err
		}
		rec := stats.GameRecord{Day: model.Day(day), Winner: model.PlayerID(winner)}
		if err := json.Unmarshal([]byte(members), &rec.Players); err != nil {
			return nil, fmt.Errorf("unmarshal members: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// RefreshStats recomputes the league's cached per-player tallies from its
// completed games.
func (s *Store) RefreshStats(ctx context.Context, leagueID int64) error {
	records, err := s.GameRecords(ctx, leagueID)
	if err != nil {
		return err
	}
	tallies := stats.Compute(records)
	now := time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM player_stats WHERE league_id = ?`, leagueID); err != nil {
		return err
	}
	for _, t := range tallies {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO player_stats (league_id, player_id, games_played, games_won, win_rate, last_updated)
             VALUES (?, ?, ?, ?, ?, ?)`,
			leagueID, string(t.Player), t.GamesPlayed, t.GamesWon, t.WinRate, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Leaderboard reads the cached standings for a league.
func (s *Store) Leaderboard(ctx context.Context, leagueID int64, minGames, limit int) ([]stats.PlayerStats, error) {
	query := `SELECT player_id, games_played, games_won, win_rate FROM player_stats
              WHERE league_id = ? AND games_played >= ?
              ORDER BY win_rate DESC, games_played DESC, player_id`
	args := []any{leagueID, minGames}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []stats.PlayerStats
	for rows.Next() {
		var ps stats.PlayerStats
		var id string
		if err := rows.Scan(&id, &ps.GamesPlayed, &ps.GamesWon, &ps.WinRate); err != nil {
			return nil, err
		}
		ps.Player = model.PlayerID(id)
		out = append(out, ps)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }
