package model

// Pod is a committed game: exactly the configured number of distinct players
// assigned to one day. Members are kept in lexical order so identical inputs
// produce identical pods.
type Pod struct {
	Day     Day
	Players []PlayerID
}

// Contains reports whether the pod includes the player.
func (p Pod) Contains(id PlayerID) bool {
	for _, m := range p.Players {
		if m == id {
			return true
		}
	}
	return false
}
