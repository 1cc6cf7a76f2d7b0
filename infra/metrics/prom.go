package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/jtrevag/lfg-discord-bot/core/metrics"
)

// PromSink records scheduling events in Prometheus metrics.
type PromSink struct {
	optimizations *prometheus.CounterVec
	pods          prometheus.Counter
	withGames     prometheus.Gauge
	withoutGames  prometheus.Gauge
	choices       prometheus.Counter
	votes         *prometheus.CounterVec
	results       *prometheus.CounterVec
	duration      prometheus.Histogram
}

// NewPromSink registers scheduling metrics on the default Prometheus
// registerer. The Prometheus server should be started separately using
// cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		optimizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pod_optimizations_total",
			Help: "Total optimizer runs, labeled by whether a volunteer gap was open",
		}, []string{"volunteer_gap"}),
		pods: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pods_formed_total",
			Help: "Total committed pods across all runs",
		}),
		withGames: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "players_with_games",
			Help: "Players seated in the latest optimization",
		}),
		withoutGames: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "players_without_games",
			Help: "Players left out in the latest optimization",
		}),
		choices: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "choice_scenarios_total",
			Help: "Total unresolved choice scenarios surfaced to players",
		}),
		votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "poll_votes_total",
			Help: "Availability votes received, by day",
		}, []string{"day"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "game_results_total",
			Help: "Reported game results, by day",
		}, []string{"day"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "optimization_duration_seconds",
			Help:    "Time spent inside the optimizer",
			Buckets: prometheus.DefBuckets,
		}),
	}
	collectors := map[string]prometheus.Collector{
		"optimizations": s.optimizations,
		"pods":          s.pods,
		"with_games":    s.withGames,
		"without_games": s.withoutGames,
		"choices":       s.choices,
		"votes":         s.votes,
		"results":       s.results,
		"duration":      s.duration,
	}
	for name, c := range collectors {
		if err := reg.Register(c); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				switch name {
				case "optimizations":
					s.optimizations = are.ExistingCollector.(*prometheus.CounterVec)
				case "pods":
					s.pods = are.ExistingCollector.(prometheus.Counter)
				case "with_games":
					s.withGames = are.ExistingCollector.(prometheus.Gauge)
				case "without_games":
					s.withoutGames = are.ExistingCollector.(prometheus.Gauge)
				case "choices":
					s.choices = are.ExistingCollector.(prometheus.Counter)
				case "votes":
					s.votes = are.ExistingCollector.(*prometheus.CounterVec)
				case "results":
					s.results = are.ExistingCollector.(*prometheus.CounterVec)
				case "duration":
					s.duration = are.ExistingCollector.(prometheus.Histogram)
				}
				continue
			}
			return nil, err
		}
	}
	return s, nil
}

// RecordOptimization updates counters and gauges for one optimizer run.
func (s *PromSink) RecordOptimization(ev coremetrics.OptimizationEvent) error {
	s.optimizations.WithLabelValues(strconv.FormatBool(ev.VolunteerGap)).Inc()
	s.pods.Add(float64(ev.Pods))
	s.withGames.Set(float64(ev.PlayersWithGames))
	s.withoutGames.Set(float64(ev.PlayersWithoutGames))
	s.choices.Add(float64(ev.ChoiceScenarios))
	s.duration.Observe(ev.Duration.Seconds())
	return nil
}

// RecordVote increments the per-day vote counter.
func (s *PromSink) RecordVote(ev coremetrics.VoteEvent) error {
	s.votes.WithLabelValues(ev.Day).Inc()
	return nil
}

// RecordGameResult increments the per-day result counter.
func (s *PromSink) RecordGameResult(ev coremetrics.GameResultEvent) error {
	s.results.WithLabelValues(ev.Day).Inc()
	return nil
}
