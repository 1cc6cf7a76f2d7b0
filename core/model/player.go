package model

// PlayerID identifies a player. IDs are opaque to the optimizer; in the
// Discord deployment they are user snowflakes. Lexical order over the raw
// string is the canonical player ordering for tie-breaks.
type PlayerID string

func (p PlayerID) String() string { return string(p) }

// Mention renders the Discord mention form of the player.
func (p PlayerID) Mention() string { return "<@" + string(p) + ">" }

// Availability maps each player to the days they can play. The optimizer
// treats the day list as a set: duplicates are ignored and order carries no
// meaning. The map is owned by the caller and never mutated by the core.
type Availability map[PlayerID][]Day

// Preferences carries the scheduling constraints a player may opt into.
type Preferences struct {
	// OneGameOnly excludes the player from volunteer slots once they have a
	// game.
	OneGameOnly bool
	// NoConsecutive forbids games on adjacent nights, including the
	// Sunday-Monday wrap.
	NoConsecutive bool
}
