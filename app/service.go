package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jtrevag/lfg-discord-bot/config"
	coremetrics "github.com/jtrevag/lfg-discord-bot/core/metrics"
	"github.com/jtrevag/lfg-discord-bot/core/model"
	"github.com/jtrevag/lfg-discord-bot/core/optimizer"
	"github.com/jtrevag/lfg-discord-bot/core/poll"
	"github.com/jtrevag/lfg-discord-bot/core/render"
	"github.com/jtrevag/lfg-discord-bot/core/schedule"
	"github.com/jtrevag/lfg-discord-bot/infra/logger"
	"github.com/jtrevag/lfg-discord-bot/infra/metrics"
	"github.com/jtrevag/lfg-discord-bot/infra/store"
	"github.com/jtrevag/lfg-discord-bot/internal/eventbus"
)

// ErrNoOpenPoll is returned when a vote or close arrives with no poll open.
var ErrNoOpenPoll = errors.New("no open poll")

// Notifier delivers announcements to players.
type Notifier interface {
	Announce(ctx context.Context, message string) error
}

// LogNotifier writes announcements to the log. It stands in until a chat
// transport is plugged in.
type LogNotifier struct {
	Log logger.Logger
}

func (n LogNotifier) Announce(_ context.Context, message string) error {
	n.Log.Infof("announcement:\n%s", message)
	return nil
}

// Service orchestrates the weekly poll lifecycle: open, collect votes,
// close, optimize, persist and announce.
type Service struct {
	cfg      *config.Config
	store    *store.Store
	sink     coremetrics.MetricsSink
	bus      *eventbus.Bus[any]
	notifier Notifier
	log      logger.Logger

	mu      sync.Mutex
	current *poll.Poll

	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logger.SetGlobalLevel(cfg.Logging.Level)
	logg := logger.New("service")

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			if cerr := st.Close(); cerr != nil {
				logg.Errorf("store close: %v", cerr)
			}
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	svc := &Service{
		cfg:         cfg,
		store:       st,
		sink:        sink,
		bus:         eventbus.New[any](),
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}
	svc.notifier = LogNotifier{Log: logg}
	return svc, nil
}

// SetNotifier replaces the announcement destination.
func (s *Service) SetNotifier(n Notifier) {
	if n != nil {
		s.notifier = n
	}
}

// Events exposes the lifecycle bus for subscribers.
func (s *Service) Events() *eventbus.Bus[any] { return s.bus }

// Store exposes league history for read-side commands.
func (s *Service) Store() *store.Store { return s.store }

// OpenPoll starts a new availability poll. An already open poll is closed
// and discarded first.
func (s *Service) OpenPoll(ctx context.Context) (*poll.Poll, error) {
	p, err := poll.New(s.cfg.Poll.Question, s.cfg.Poll.PollDays())
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.current != nil {
		s.log.Warnf("poll %s still open, discarding", s.current.ID)
		s.current.Close()
	}
	s.current = p
	s.mu.Unlock()

	s.bus.Publish(eventbus.PollOpened{
		PollID:   p.ID.String(),
		Question: p.Question,
		Days:     p.Days,
		OpenedAt: p.OpenedAt,
	})
	s.log.Infof("poll %s opened with %d day options", p.ID, len(p.Days))
	if err := s.notifier.Announce(ctx, p.Question); err != nil {
		s.log.Errorf("announce poll open: %v", err)
	}
	return p, nil
}

// CurrentPoll returns the open poll, or nil.
func (s *Service) CurrentPoll() *poll.Poll {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Vote records a player's availability on the open poll.
func (s *Service) Vote(player model.PlayerID, day model.Day) error {
	p := s.CurrentPoll()
	if p == nil {
		return ErrNoOpenPoll
	}
	if err := p.Vote(player, day); err != nil {
		return err
	}
	if rec, ok := s.sink.(coremetrics.VoteRecorder); ok {
		ev := coremetrics.VoteEvent{PollID: p.ID.String(), Day: string(day), Time: time.Now()}
		if err := rec.RecordVote(ev); err != nil {
			s.log.Errorf("record vote metric: %v", err)
		}
	}
	return nil
}

// Retract withdraws a player's availability on the open poll.
func (s *Service) Retract(player model.PlayerID, day model.Day) error {
	p := s.CurrentPoll()
	if p == nil {
		return ErrNoOpenPoll
	}
	return p.Retract(player, day)
}

// ClosePoll ends voting, runs the optimizer and announces the outcome.
// Committed pods are persisted to the league; a result with open choice
// scenarios is announced but not persisted.
func (s *Service) ClosePoll(ctx context.Context) (*optimizer.Result, error) {
	s.mu.Lock()
	p := s.current
	s.current = nil
	s.mu.Unlock()
	if p == nil {
		return nil, ErrNoOpenPoll
	}
	p.Close()
	s.bus.Publish(eventbus.PollClosed{
		PollID:   p.ID.String(),
		Voters:   len(p.Voters()),
		ClosedAt: time.Now(),
	})

	opt := optimizer.Optimizer{
		PodSize:     s.cfg.Poll.PodSize,
		Preferences: s.cfg.Poll.PlayerPreferences(),
	}
	start := time.Now()
	res, err := opt.Optimize(p.Availability())
	elapsed := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("optimize poll %s: %w", p.ID, err)
	}

	ev := coremetrics.OptimizationEvent{
		PollID:              p.ID.String(),
		Pods:                len(res.Pods),
		PlayersWithGames:    len(res.PlayersWithGames),
		PlayersWithoutGames: len(res.PlayersWithoutGames),
		ChoiceScenarios:     len(res.Choices),
		VolunteerGap:        res.Volunteer != nil,
		Duration:            elapsed,
		Time:                time.Now(),
	}
	if err := s.sink.RecordOptimization(ev); err != nil {
		s.log.Errorf("record optimization metric: %v", err)
	}

	// A result with an unresolved choice is announced only; pods are
	// persisted once a re-run commits them.
	if len(res.Pods) > 0 && len(res.Choices) == 0 {
		if _, err := s.store.SavePoll(ctx, p.ID.String(), p.Question, p.Days, res.Pods); err != nil {
			s.log.Errorf("persist poll %s: %v", p.ID, err)
		}
	}

	msg := render.Message(res, s.store)
	s.bus.Publish(eventbus.ResultComputed{
		PollID:   p.ID.String(),
		Result:   res,
		Message:  msg,
		Duration: elapsed,
	})
	s.log.Infof("poll %s closed: %d pods, %d choices, volunteer=%v",
		p.ID, len(res.Pods), len(res.Choices), res.Volunteer != nil)
	if err := s.notifier.Announce(ctx, msg); err != nil {
		s.log.Errorf("announce result: %v", err)
	}
	return res, nil
}

// ReportResult records a game outcome against a scheduled pod.
func (s *Service) ReportResult(ctx context.Context, podID int64, winner, reportedBy model.PlayerID, notes string) error {
	day, err := s.scheduledPodDay(ctx, podID)
	if err != nil {
		return err
	}
	if err := s.store.RecordResult(ctx, podID, winner, reportedBy, notes); err != nil {
		return err
	}
	if rec, ok := s.sink.(coremetrics.GameResultRecorder); ok {
		ev := coremetrics.GameResultEvent{Day: string(day), Time: time.Now()}
		if err := rec.RecordGameResult(ev); err != nil {
			s.log.Errorf("record game result metric: %v", err)
		}
	}
	return nil
}

func (s *Service) scheduledPodDay(ctx context.Context, podID int64) (model.Day, error) {
	league, err := s.store.ActiveLeague(ctx)
	if err != nil {
		return "", err
	}
	pods, err := s.store.ScheduledPods(ctx, league.ID)
	if err != nil {
		return "", err
	}
	for _, p := range pods {
		if p.ID == podID {
			return p.Day, nil
		}
	}
	return "", store.ErrPodNotFound
}

// Run starts the weekly cadence and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	open, cl, loc, err := s.cfg.Schedule.Anchors()
	if err != nil {
		return err
	}
	opener, err := schedule.New(open, loc, func(ctx context.Context, _ time.Time) {
		if _, err := s.OpenPoll(ctx); err != nil {
			s.log.Errorf("open poll: %v", err)
		}
	}, s.log)
	if err != nil {
		return err
	}
	closer, err := schedule.New(cl, loc, func(ctx context.Context, _ time.Time) {
		if _, err := s.ClosePoll(ctx); err != nil && !errors.Is(err, ErrNoOpenPoll) {
			s.log.Errorf("close poll: %v", err)
		}
	}, s.log)
	if err != nil {
		return err
	}

	go func() {
		if err := opener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Errorf("open scheduler: %v", err)
		}
	}()
	go func() {
		if err := closer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Errorf("close scheduler: %v", err)
		}
	}()
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	<-ctx.Done()
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if closer, ok := s.sink.(interface{ Close() }); ok {
		closer.Close()
	}
	return s.store.Close()
}
