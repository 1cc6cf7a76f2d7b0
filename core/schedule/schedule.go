package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/jtrevag/lfg-discord-bot/core/logger"
	"github.com/jtrevag/lfg-discord-bot/core/model"
)

// WeekdayAt anchors a recurring event to a weekday and wall-clock time.
type WeekdayAt struct {
	Day    model.Day
	Hour   int
	Minute int
}

// Validate checks the anchor is a real weekday and time of day.
func (w WeekdayAt) Validate() error {
	if !w.Day.Known() {
		return fmt.Errorf("unknown day %q", string(w.Day))
	}
	if w.Hour < 0 || w.Hour > 23 {
		return fmt.Errorf("hour %d out of range", w.Hour)
	}
	if w.Minute < 0 || w.Minute > 59 {
		return fmt.Errorf("minute %d out of range", w.Minute)
	}
	return nil
}

var weekdays = map[model.Day]time.Weekday{
	model.Monday:    time.Monday,
	model.Tuesday:   time.Tuesday,
	model.Wednesday: time.Wednesday,
	model.Thursday:  time.Thursday,
	model.Friday:    time.Friday,
	model.Saturday:  time.Saturday,
	model.Sunday:    time.Sunday,
}

// Next returns the first occurrence of the anchor strictly after now,
// evaluated in loc.
func Next(now time.Time, at WeekdayAt, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	target := weekdays[at.Day]
	candidate := time.Date(now.Year(), now.Month(), now.Day(), at.Hour, at.Minute, 0, 0, loc)
	daysAhead := (int(target) - int(now.Weekday()) + 7) % 7
	candidate = candidate.AddDate(0, 0, daysAhead)
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}

// Job is invoked at each fire time.
type Job func(ctx context.Context, fireAt time.Time)

// Scheduler fires a job at a weekly anchor.
type Scheduler struct {
	at  WeekdayAt
	loc *time.Location
	job Job
	log logger.Logger
	now func() time.Time
}

// New builds a scheduler. A nil location means UTC.
func New(at WeekdayAt, loc *time.Location, job Job, log logger.Logger) (*Scheduler, error) {
	if err := at.Validate(); err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("nil job")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{at: at, loc: loc, job: job, log: log, now: time.Now}, nil
}

// Run fires the job every week at the anchor until ctx is cancelled. It
// always returns ctx.Err().
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		now := s.now()
		fireAt := Next(now, s.at, s.loc)
		if s.log != nil {
			s.log.Infof("next %s fire at %s", s.at.Day, fireAt.Format(time.RFC3339))
		}
		timer := time.NewTimer(fireAt.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			s.job(ctx, fireAt)
		}
	}
}
