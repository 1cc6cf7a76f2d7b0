package schedule

import (
	"fmt"
	"time"

	"github.com/jtrevag/lfg-discord-bot/core/model"
)

// Config holds the poll cadence as loaded from configuration.
type Config struct {
	OpenDay    string `json:"open_day" yaml:"open_day"`
	OpenHour   int    `json:"open_hour" yaml:"open_hour"`
	OpenMinute int    `json:"open_minute" yaml:"open_minute"`

	CloseDay    string `json:"close_day" yaml:"close_day"`
	CloseHour   int    `json:"close_hour" yaml:"close_hour"`
	CloseMinute int    `json:"close_minute" yaml:"close_minute"`

	Timezone string `json:"timezone" yaml:"timezone"`
}

// SetDefaults fills unset fields: open Sunday 18:00, close Monday 12:00, UTC.
func (c *Config) SetDefaults() {
	if c.OpenDay == "" {
		c.OpenDay = string(model.Sunday)
		c.OpenHour = 18
	}
	if c.CloseDay == "" {
		c.CloseDay = string(model.Monday)
		c.CloseHour = 12
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
}

// Validate checks both anchors and the timezone.
func (c *Config) Validate() error {
	if _, _, err := c.anchors(); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}

func (c *Config) anchors() (WeekdayAt, WeekdayAt, error) {
	openDay, ok := model.ParseDay(c.OpenDay)
	if !ok {
		return WeekdayAt{}, WeekdayAt{}, fmt.Errorf("invalid open_day %q", c.OpenDay)
	}
	closeDay, ok := model.ParseDay(c.CloseDay)
	if !ok {
		return WeekdayAt{}, WeekdayAt{}, fmt.Errorf("invalid close_day %q", c.CloseDay)
	}
	open := WeekdayAt{Day: openDay, Hour: c.OpenHour, Minute: c.OpenMinute}
	if err := open.Validate(); err != nil {
		return WeekdayAt{}, WeekdayAt{}, fmt.Errorf("open anchor: %w", err)
	}
	cl := WeekdayAt{Day: closeDay, Hour: c.CloseHour, Minute: c.CloseMinute}
	if err := cl.Validate(); err != nil {
		return WeekdayAt{}, WeekdayAt{}, fmt.Errorf("close anchor: %w", err)
	}
	return open, cl, nil
}

// Anchors resolves the configured cadence into weekday anchors and a
// location.
func (c *Config) Anchors() (open, close WeekdayAt, loc *time.Location, err error) {
	open, close, err = c.anchors()
	if err != nil {
		return WeekdayAt{}, WeekdayAt{}, nil, err
	}
	loc, err = time.LoadLocation(c.Timezone)
	if err != nil {
		return WeekdayAt{}, WeekdayAt{}, nil, err
	}
	return open, close, loc, nil
}
