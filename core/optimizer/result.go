package optimizer

import (
	"github.com/jtrevag/lfg-discord-bot/core/model"
)

// ChoiceScenario reports a player whose presence is individually required to
// complete pods on two different days. Committing either pod consumes the
// player, so neither is formed automatically; the caller asks the player and
// re-runs with their availability pinned to the chosen day.
type ChoiceScenario struct {
	// Player is the critical player the decision belongs to.
	Player model.PlayerID
	// Days are the two days in canonical order.
	Days [2]model.Day
	// Pods are the full candidate compositions, indexed like Days. Both
	// include Player.
	Pods [2]model.Pod
}

// VolunteerGap reports a day left one player short of a pod, where one or
// more flexible players who already have a game elsewhere could fill the
// slot. The optimizer never picks the volunteer; the caller collects a
// first-come commitment and re-runs with that player pinned.
type VolunteerGap struct {
	Day model.Day
	// Waiting are the unassigned players held up by the open slot.
	Waiting []model.PlayerID
	// Candidates are the eligible flexible players, in lexical order.
	Candidates []model.PlayerID
}

// Result is the complete outcome of one optimization run. It is immutable
// once returned: committed pods grouped by day in ranking order, the players
// who did and did not get a game, and any unresolved ambiguities.
type Result struct {
	Pods                []model.Pod
	PlayersWithGames    []model.PlayerID
	PlayersWithoutGames []model.PlayerID
	Choices             []ChoiceScenario
	Volunteer           *VolunteerGap
}

// HasGame reports whether the player landed in a committed pod.
func (r *Result) HasGame(id model.PlayerID) bool {
	for _, p := range r.PlayersWithGames {
		if p == id {
			return true
		}
	}
	return false
}

// PodsOn returns the committed pods for one day.
func (r *Result) PodsOn(day model.Day) []model.Pod {
	var pods []model.Pod
	for _, p := range r.Pods {
		if p.Day == day {
			pods = append(pods, p)
		}
	}
	return pods
}
