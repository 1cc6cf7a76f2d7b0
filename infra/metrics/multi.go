package metrics

import coremetrics "github.com/jtrevag/lfg-discord-bot/core/metrics"

// MultiSink fans scheduling events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordOptimization forwards the event to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordOptimization(ev coremetrics.OptimizationEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordOptimization(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordVote forwards vote events to sinks that support them.
func (m *MultiSink) RecordVote(ev coremetrics.VoteEvent) error {
	for _, s := range m.Sinks {
		if vr, ok := s.(coremetrics.VoteRecorder); ok {
			if err := vr.RecordVote(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordGameResult forwards result events to sinks that support them.
func (m *MultiSink) RecordGameResult(ev coremetrics.GameResultEvent) error {
	for _, s := range m.Sinks {
		if gr, ok := s.(coremetrics.GameResultRecorder); ok {
			if err := gr.RecordGameResult(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
