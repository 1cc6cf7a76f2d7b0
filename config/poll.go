package config

import (
	"fmt"

	"github.com/jtrevag/lfg-discord-bot/core/model"
)

// PreferenceConfig carries per-player scheduling preferences.
type PreferenceConfig struct {
	OneGameOnly   bool `json:"one_game_only"`
	NoConsecutive bool `json:"no_consecutive"`
}

// PollConfig defines the weekly availability poll.
type PollConfig struct {
	Question string `json:"question"`
	// Days offered in the poll, by weekday name.
	Days    []string `json:"days"`
	PodSize int      `json:"pod_size"`
	// Preferences maps player ids to their standing preferences.
	Preferences map[string]PreferenceConfig `json:"preferences"`
}

// SetDefaults applies sane defaults: a full week of options and pods of four.
func (c *PollConfig) SetDefaults() {
	if c.Question == "" {
		c.Question = "Which days can you play Commander this week?"
	}
	if len(c.Days) == 0 {
		for _, d := range model.Week {
			c.Days = append(c.Days, string(d))
		}
	}
	if c.PodSize == 0 {
		c.PodSize = 4
	}
}

// Validate checks the pod size and that every offered day is a real weekday.
func (c PollConfig) Validate() error {
	if c.PodSize < 1 {
		return fmt.Errorf("pod_size must be at least 1, got %d", c.PodSize)
	}
	seen := make(map[model.Day]bool)
	for _, name := range c.Days {
		d, ok := model.ParseDay(name)
		if !ok {
			return fmt.Errorf("unknown poll day %q", name)
		}
		if seen[d] {
			return fmt.Errorf("duplicate poll day %q", name)
		}
		seen[d] = true
	}
	return nil
}

// PollDays returns the offered days as parsed weekdays.
func (c PollConfig) PollDays() []model.Day {
	days := make([]model.Day, 0, len(c.Days))
	for _, name := range c.Days {
		if d, ok := model.ParseDay(name); ok {
			days = append(days, d)
		}
	}
	return days
}

// PlayerPreferences converts the configured map to domain preferences.
func (c PollConfig) PlayerPreferences() map[model.PlayerID]model.Preferences {
	if len(c.Preferences) == 0 {
		return nil
	}
	out := make(map[model.PlayerID]model.Preferences, len(c.Preferences))
	for id, p := range c.Preferences {
		out[model.PlayerID(id)] = model.Preferences{
			OneGameOnly:   p.OneGameOnly,
			NoConsecutive: p.NoConsecutive,
		}
	}
	return out
}
