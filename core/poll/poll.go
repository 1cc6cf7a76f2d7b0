// Package poll accumulates availability votes for one scheduling period and
// resolves them into the matrix the optimizer consumes. It sits at the
// collector boundary: the hosting surface (Discord reactions, a CLI file, a
// test) feeds raw votes in, the optimizer gets a clean player-to-days map
// out.
package poll

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jtrevag/lfg-discord-bot/core/model"
)

var (
	// ErrDayNotOffered is returned for votes on days the poll does not offer.
	ErrDayNotOffered = errors.New("day not offered by poll")
	// ErrClosed is returned for votes arriving after the poll closed.
	ErrClosed = errors.New("poll is closed")
)

// Poll collects day-availability votes from players. All methods are safe for
// concurrent use; vote handlers run per incoming reaction.
type Poll struct {
	ID       uuid.UUID
	Question string
	Days     []model.Day
	OpenedAt time.Time

	mu       sync.Mutex
	closedAt time.Time
	votes    map[model.PlayerID]map[model.Day]bool
	pins     map[model.PlayerID]model.Day
}

// New opens a poll offering the given days. Days are deduplicated and stored
// in canonical order.
func New(question string, days []model.Day) (*Poll, error) {
	if len(days) == 0 {
		return nil, errors.New("poll needs at least one day")
	}
	seen := make(map[model.Day]bool, len(days))
	var offered []model.Day
	for _, d := range days {
		if !seen[d] {
			seen[d] = true
			offered = append(offered, d)
		}
	}
	sort.Slice(offered, func(i, j int) bool { return model.DayLess(offered[i], offered[j]) })
	return &Poll{
		ID:       uuid.New(),
		Question: question,
		Days:     offered,
		OpenedAt: time.Now(),
		votes:    make(map[model.PlayerID]map[model.Day]bool),
		pins:     make(map[model.PlayerID]model.Day),
	}, nil
}

func (p *Poll) offers(day model.Day) bool {
	for _, d := range p.Days {
		if d == day {
			return true
		}
	}
	return false
}

// Vote records that the player can play on the day. Voting twice for the same
// day is a no-op.
func (p *Poll) Vote(player model.PlayerID, day model.Day) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closedAt.IsZero() {
		return ErrClosed
	}
	if !p.offers(day) {
		return fmt.Errorf("%w: %s", ErrDayNotOffered, day)
	}
	if p.votes[player] == nil {
		p.votes[player] = make(map[model.Day]bool)
	}
	p.votes[player][day] = true
	return nil
}

// Retract removes the player's vote for the day. Retracting the last day
// drops the player from the matrix entirely.
func (p *Poll) Retract(player model.PlayerID, day model.Day) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closedAt.IsZero() {
		return ErrClosed
	}
	if days, ok := p.votes[player]; ok {
		delete(days, day)
		if len(days) == 0 {
			delete(p.votes, player)
		}
	}
	return nil
}

// Pin fixes the player's availability to a single day, overriding their
// votes. This is how a resolved choice scenario or a volunteer commitment is
// applied before a re-run.
func (p *Poll) Pin(player model.PlayerID, day model.Day) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.offers(day) {
		return fmt.Errorf("%w: %s", ErrDayNotOffered, day)
	}
	p.pins[player] = day
	return nil
}

// Unpin removes a pin, restoring the player's voted availability.
func (p *Poll) Unpin(player model.PlayerID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.pins, player)
}

// Close marks the poll closed. Further votes are rejected; pinning stays
// allowed so choices can be resolved after the window ends.
func (p *Poll) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closedAt.IsZero() {
		p.closedAt = time.Now()
	}
}

// Closed reports whether the voting window has ended.
func (p *Poll) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.closedAt.IsZero()
}

// Availability resolves the collected votes into the optimizer's input shape.
// Pinned players contribute exactly their pinned day. The returned map is a
// fresh copy on every call.
func (p *Poll) Availability() model.Availability {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(model.Availability, len(p.votes))
	for player, days := range p.votes {
		if pin, ok := p.pins[player]; ok {
			out[player] = []model.Day{pin}
			continue
		}
		list := make([]model.Day, 0, len(days))
		for d := range days {
			list = append(list, d)
		}
		sort.Slice(list, func(i, j int) bool { return model.DayLess(list[i], list[j]) })
		out[player] = list
	}
	for player, pin := range p.pins {
		if _, ok := out[player]; !ok {
			out[player] = []model.Day{pin}
		}
	}
	return out
}

// Voters returns everyone who currently has availability, in lexical order.
func (p *Poll) Voters() []model.PlayerID {
	p.mu.Lock()
	defer p.mu.Unlock()
	seen := make(map[model.PlayerID]bool, len(p.votes)+len(p.pins))
	for player := range p.votes {
		seen[player] = true
	}
	for player := range p.pins {
		seen[player] = true
	}
	out := make([]model.PlayerID, 0, len(seen))
	for player := range seen {
		out = append(out, player)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
