package metrics

import "time"

// OptimizationEvent summarizes one optimizer run for observability.
type OptimizationEvent struct {
	PollID              string
	Pods                int
	PlayersWithGames    int
	PlayersWithoutGames int
	ChoiceScenarios     int
	VolunteerGap        bool
	Duration            time.Duration
	Time                time.Time
}

// MetricsSink records optimization outcomes.
type MetricsSink interface {
	RecordOptimization(ev OptimizationEvent) error
}

// VoteEvent records a single availability vote landing on a poll.
type VoteEvent struct {
	PollID string
	Day    string
	Time   time.Time
}

// VoteRecorder records poll votes when supported by the sink.
type VoteRecorder interface {
	RecordVote(ev VoteEvent) error
}

// GameResultEvent records a reported game outcome.
type GameResultEvent struct {
	Day  string
	Time time.Time
}

// GameResultRecorder records reported game results.
type GameResultRecorder interface {
	RecordGameResult(ev GameResultEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordOptimization(OptimizationEvent) error { return nil }
