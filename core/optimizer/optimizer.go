package optimizer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jtrevag/lfg-discord-bot/core/model"
)

// ErrInvalidInput marks structurally invalid optimizer input: a pod size
// below one or a nil availability map. An empty map is valid and yields an
// empty result.
var ErrInvalidInput = errors.New("invalid input")

// Optimizer runs pod assignment for a fixed pod size. Preferences are
// optional per-player constraints honored when filling volunteer slots; a
// missing entry means no constraints.
type Optimizer struct {
	PodSize     int
	Preferences map[model.PlayerID]model.Preferences
}

// Optimize assigns players to pods of podSize from their availability. It is
// the plain entry point without player preferences.
func Optimize(availability model.Availability, podSize int) (*Result, error) {
	return Optimizer{PodSize: podSize}.Optimize(availability)
}

// Optimize produces the assignment for one scheduling period. The input is
// read only; the returned result is fresh on every call.
func (o Optimizer) Optimize(availability model.Availability) (*Result, error) {
	if o.PodSize < 1 {
		return nil, fmt.Errorf("%w: pod size must be at least 1, got %d", ErrInvalidInput, o.PodSize)
	}
	if availability == nil {
		return nil, fmt.Errorf("%w: availability map is nil", ErrInvalidInput)
	}

	players, daysOf, dayPlayers := index(availability)

	withheld := o.detectCriticalPlayers(players, daysOf, dayPlayers)
	choices := withheld.choices

	ranked := o.rankDays(daysOf, dayPlayers, withheld.players)
	pods, assigned := o.commitPods(ranked, daysOf)
	volunteer := o.findVolunteerGap(ranked, daysOf, assigned)

	return assemble(players, daysOf, pods, assigned, choices, volunteer), nil
}

// index normalizes the input: players in lexical order, each player's days
// deduplicated and canonically sorted, and the inverted day-to-players map
// with lexically sorted candidate lists.
func index(availability model.Availability) ([]model.PlayerID, map[model.PlayerID][]model.Day, map[model.Day][]model.PlayerID) {
	players := make([]model.PlayerID, 0, len(availability))
	daysOf := make(map[model.PlayerID][]model.Day, len(availability))
	dayPlayers := make(map[model.Day][]model.PlayerID)

	for p, days := range availability {
		players = append(players, p)
		seen := make(map[model.Day]bool, len(days))
		var distinct []model.Day
		for _, d := range days {
			if seen[d] {
				continue
			}
			seen[d] = true
			distinct = append(distinct, d)
		}
		sort.Slice(distinct, func(i, j int) bool { return model.DayLess(distinct[i], distinct[j]) })
		daysOf[p] = distinct
		for _, d := range distinct {
			dayPlayers[d] = append(dayPlayers[d], p)
		}
	}
	sort.Slice(players, func(i, j int) bool { return players[i] < players[j] })
	for d := range dayPlayers {
		list := dayPlayers[d]
		sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	}
	return players, daysOf, dayPlayers
}

type criticalSet struct {
	players map[model.PlayerID]bool
	choices []ChoiceScenario
}

// detectCriticalPlayers finds players available on exactly two days where
// each day holds exactly PodSize candidates counting the player once. Such a
// player is the sole remaining link closing out both pods, so neither is
// committed: the scenario is surfaced and the player withheld from automatic
// assignment. Counts exclude players already withheld, which guarantees at
// most one critical player per day pair.
func (o Optimizer) detectCriticalPlayers(
	players []model.PlayerID,
	daysOf map[model.PlayerID][]model.Day,
	dayPlayers map[model.Day][]model.PlayerID,
) criticalSet {
	cs := criticalSet{players: make(map[model.PlayerID]bool)}
	for _, p := range players {
		days := daysOf[p]
		if len(days) != 2 {
			continue
		}
		d1, d2 := days[0], days[1]
		pod1 := remaining(dayPlayers[d1], cs.players)
		pod2 := remaining(dayPlayers[d2], cs.players)
		if len(pod1) != o.PodSize || len(pod2) != o.PodSize {
			continue
		}
		cs.choices = append(cs.choices, ChoiceScenario{
			Player: p,
			Days:   [2]model.Day{d1, d2},
			Pods: [2]model.Pod{
				{Day: d1, Players: pod1},
				{Day: d2, Players: pod2},
			},
		})
		cs.players[p] = true
	}
	return cs
}

func remaining(candidates []model.PlayerID, excluded map[model.PlayerID]bool) []model.PlayerID {
	var out []model.PlayerID
	for _, p := range candidates {
		if !excluded[p] {
			out = append(out, p)
		}
	}
	return out
}

type rankedDay struct {
	day        model.Day
	candidates []model.PlayerID
	unique     int
}

// rankDays orders days for the greedy commit pass: most unique-availability
// players first, then days holding an exact multiple of PodSize, then highest
// total count, final ties by canonical day order. Exact-multiple days commit
// with no leftover players, so they outrank larger ragged days. The ordering
// is part of the contract; tests depend on it.
func (o Optimizer) rankDays(
	daysOf map[model.PlayerID][]model.Day,
	dayPlayers map[model.Day][]model.PlayerID,
	withheld map[model.PlayerID]bool,
) []rankedDay {
	ranked := make([]rankedDay, 0, len(dayPlayers))
	for day, candidates := range dayPlayers {
		rd := rankedDay{day: day, candidates: remaining(candidates, withheld)}
		for _, p := range rd.candidates {
			if len(daysOf[p]) == 1 {
				rd.unique++
			}
		}
		ranked = append(ranked, rd)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.unique != b.unique {
			return a.unique > b.unique
		}
		am := o.exactMultiple(len(a.candidates))
		bm := o.exactMultiple(len(b.candidates))
		if am != bm {
			return am
		}
		if len(a.candidates) != len(b.candidates) {
			return len(a.candidates) > len(b.candidates)
		}
		return model.DayLess(a.day, b.day)
	})
	return ranked
}

func (o Optimizer) exactMultiple(n int) bool {
	return n > 0 && n%o.PodSize == 0
}

// commitPods walks the ranked days and greedily forms pods. Within a day,
// players with the fewest available days are seated first so flexible
// players stay free for later days; remaining ties break on lexical player
// order. Pod members are stored lexically sorted.
func (o Optimizer) commitPods(
	ranked []rankedDay,
	daysOf map[model.PlayerID][]model.Day,
) ([]model.Pod, map[model.PlayerID]model.Day) {
	assigned := make(map[model.PlayerID]model.Day)
	var pods []model.Pod
	for _, rd := range ranked {
		for {
			var avail []model.PlayerID
			for _, p := range rd.candidates {
				if _, ok := assigned[p]; !ok {
					avail = append(avail, p)
				}
			}
			if len(avail) < o.PodSize {
				break
			}
			sort.SliceStable(avail, func(i, j int) bool {
				fi, fj := len(daysOf[avail[i]]), len(daysOf[avail[j]])
				if fi != fj {
					return fi < fj
				}
				return avail[i] < avail[j]
			})
			members := append([]model.PlayerID(nil), avail[:o.PodSize]...)
			sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
			pods = append(pods, model.Pod{Day: rd.day, Players: members})
			for _, m := range members {
				assigned[m] = rd.day
			}
		}
	}
	return pods, assigned
}

// findVolunteerGap looks for the first day, in ranking order, that is one
// player short of another pod and could be completed by a flexible player who
// already has a game elsewhere. The slot is surfaced rather than filled so
// the volunteer commitment stays a human decision. At most one gap is
// reported per run.
func (o Optimizer) findVolunteerGap(
	ranked []rankedDay,
	daysOf map[model.PlayerID][]model.Day,
	assigned map[model.PlayerID]model.Day,
) *VolunteerGap {
	if o.PodSize < 2 {
		return nil
	}
	for _, rd := range ranked {
		var waiting []model.PlayerID
		for _, p := range rd.candidates {
			if _, ok := assigned[p]; !ok {
				waiting = append(waiting, p)
			}
		}
		if len(waiting) != o.PodSize-1 {
			continue
		}
		var candidates []model.PlayerID
		for _, p := range rd.candidates {
			day, ok := assigned[p]
			if !ok || day == rd.day || len(daysOf[p]) < 2 {
				continue
			}
			prefs := o.Preferences[p]
			if prefs.OneGameOnly {
				continue
			}
			if prefs.NoConsecutive && model.Adjacent(day, rd.day) {
				continue
			}
			candidates = append(candidates, p)
		}
		if len(candidates) == 0 {
			continue
		}
		return &VolunteerGap{Day: rd.day, Waiting: waiting, Candidates: candidates}
	}
	return nil
}

// assemble builds the immutable result. Players consumed by an unresolved
// choice scenario (every day they listed belongs to the scenario and they got
// no game) are counted in neither the with- nor without-games set.
func assemble(
	players []model.PlayerID,
	daysOf map[model.PlayerID][]model.Day,
	pods []model.Pod,
	assigned map[model.PlayerID]model.Day,
	choices []ChoiceScenario,
	volunteer *VolunteerGap,
) *Result {
	pending := make(map[model.PlayerID]bool)
	for _, c := range choices {
		for _, pod := range c.Pods {
			for _, m := range pod.Players {
				if _, ok := assigned[m]; ok {
					continue
				}
				if daysWithin(daysOf[m], c.Days) {
					pending[m] = true
				}
			}
		}
	}

	res := &Result{Pods: pods, Choices: choices, Volunteer: volunteer}
	for _, p := range players {
		_, hasGame := assigned[p]
		switch {
		case hasGame:
			res.PlayersWithGames = append(res.PlayersWithGames, p)
		case pending[p]:
			// held by an unresolved choice scenario
		default:
			res.PlayersWithoutGames = append(res.PlayersWithoutGames, p)
		}
	}
	return res
}

func daysWithin(days []model.Day, scope [2]model.Day) bool {
	if len(days) == 0 {
		return false
	}
	for _, d := range days {
		if d != scope[0] && d != scope[1] {
			return false
		}
	}
	return true
}
