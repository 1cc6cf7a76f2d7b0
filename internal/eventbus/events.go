package eventbus

import (
	"time"

	"github.com/jtrevag/lfg-discord-bot/core/model"
	"github.com/jtrevag/lfg-discord-bot/core/optimizer"
)

// PollOpened fires when a new availability poll starts accepting votes.
type PollOpened struct {
	PollID   string
	Question string
	Days     []model.Day
	OpenedAt time.Time
}

// PollClosed fires when voting ends, before optimization runs.
type PollClosed struct {
	PollID   string
	Voters   int
	ClosedAt time.Time
}

// ResultComputed fires after the optimizer runs on a closed poll. Message
// carries the rendered announcement.
type ResultComputed struct {
	PollID   string
	Result   *optimizer.Result
	Message  string
	Duration time.Duration
}
