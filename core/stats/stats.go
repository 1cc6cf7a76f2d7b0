// Package stats computes league standings from completed game results:
// per-player tallies, the leaderboard, head-to-head records and aggregate
// league summaries. It is pure computation; loading records is the store's
// job.
package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/jtrevag/lfg-discord-bot/core/model"
)

// GameRecord is one completed game: the pod members and who won.
type GameRecord struct {
	Day     model.Day
	Players []model.PlayerID
	Winner  model.PlayerID
}

// PlayerStats is the per-player tally for a league.
type PlayerStats struct {
	Player      model.PlayerID
	GamesPlayed int
	GamesWon    int
	// WinRate is a percentage in [0, 100].
	WinRate float64
}

// Compute tallies every player appearing in the records.
func Compute(records []GameRecord) map[model.PlayerID]PlayerStats {
	out := make(map[model.PlayerID]PlayerStats)
	for _, rec := range records {
		for _, p := range rec.Players {
			s := out[p]
			s.Player = p
			s.GamesPlayed++
			if p == rec.Winner {
				s.GamesWon++
			}
			out[p] = s
		}
	}
	for p, s := range out {
		if s.GamesPlayed > 0 {
			s.WinRate = float64(s.GamesWon) / float64(s.GamesPlayed) * 100
		}
		out[p] = s
	}
	return out
}

// Leaderboard ranks players by win rate, then games played, then lexical id.
// Players with fewer than minGames games are excluded; limit <= 0 means no
// cap.
func Leaderboard(records []GameRecord, minGames, limit int) []PlayerStats {
	tallies := Compute(records)
	board := make([]PlayerStats, 0, len(tallies))
	for _, s := range tallies {
		if s.GamesPlayed >= minGames {
			board = append(board, s)
		}
	}
	sort.Slice(board, func(i, j int) bool {
		a, b := board[i], board[j]
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		if a.GamesPlayed != b.GamesPlayed {
			return a.GamesPlayed > b.GamesPlayed
		}
		return a.Player < b.Player
	})
	if limit > 0 && len(board) > limit {
		board = board[:limit]
	}
	return board
}

// HeadToHead summarizes the games two players shared a pod in.
type HeadToHead struct {
	TotalGames  int
	Player1Wins int
	Player2Wins int
	OtherWins   int
}

// ComputeHeadToHead counts outcomes of games where both players sat at the
// table.
func ComputeHeadToHead(records []GameRecord, p1, p2 model.PlayerID) HeadToHead {
	var h2h HeadToHead
	for _, rec := range records {
		if !contains(rec.Players, p1) || !contains(rec.Players, p2) {
			continue
		}
		h2h.TotalGames++
		switch rec.Winner {
		case p1:
			h2h.Player1Wins++
		case p2:
			h2h.Player2Wins++
		default:
			h2h.OtherWins++
		}
	}
	return h2h
}

// Summary aggregates a league: how many players, how many games, and the
// spread of participation.
type Summary struct {
	Players     int
	TotalGames  int
	MeanGames   float64
	StdDevGames float64
	MeanWinRate float64
}

// Summarize computes the league aggregate from the records.
func Summarize(records []GameRecord) Summary {
	tallies := Compute(records)
	if len(tallies) == 0 {
		return Summary{TotalGames: len(records)}
	}
	games := make([]float64, 0, len(tallies))
	rates := make([]float64, 0, len(tallies))
	for _, s := range tallies {
		games = append(games, float64(s.GamesPlayed))
		rates = append(rates, s.WinRate)
	}
	sum := Summary{
		Players:     len(tallies),
		TotalGames:  len(records),
		MeanGames:   stat.Mean(games, nil),
		MeanWinRate: stat.Mean(rates, nil),
	}
	if len(games) > 1 {
		sum.StdDevGames = stat.StdDev(games, nil)
	}
	return sum
}

func contains(players []model.PlayerID, id model.PlayerID) bool {
	for _, p := range players {
		if p == id {
			return true
		}
	}
	return false
}
