package optimizer

import (
	"errors"
	"reflect"
	"testing"

	"github.com/jtrevag/lfg-discord-bot/core/model"
)

func mustOptimize(t *testing.T, av model.Availability, podSize int) *Result {
	t.Helper()
	res, err := Optimize(av, podSize)
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	return res
}

func TestOptimize_BasicFourPlayerPod(t *testing.T) {
	av := model.Availability{
		"alice":   {model.Monday},
		"bob":     {model.Monday},
		"charlie": {model.Monday},
		"dave":    {model.Monday},
	}
	res := mustOptimize(t, av, 4)
	if len(res.Pods) != 1 {
		t.Fatalf("expected 1 pod, got %d", len(res.Pods))
	}
	if res.Pods[0].Day != model.Monday || len(res.Pods[0].Players) != 4 {
		t.Fatalf("unexpected pod %+v", res.Pods[0])
	}
	if len(res.PlayersWithGames) != 4 || len(res.PlayersWithoutGames) != 0 {
		t.Fatalf("expected all 4 players with games, got %d with / %d without",
			len(res.PlayersWithGames), len(res.PlayersWithoutGames))
	}
}

func TestOptimize_InsufficientPlayers(t *testing.T) {
	av := model.Availability{
		"alice":   {model.Monday},
		"bob":     {model.Monday},
		"charlie": {model.Monday},
	}
	res := mustOptimize(t, av, 4)
	if len(res.Pods) != 0 {
		t.Fatalf("expected no pods, got %d", len(res.Pods))
	}
	if len(res.PlayersWithoutGames) != 3 {
		t.Fatalf("expected 3 players without games, got %d", len(res.PlayersWithoutGames))
	}
}

func TestOptimize_MultiplePodsSameDay(t *testing.T) {
	av := model.Availability{}
	for _, p := range []model.PlayerID{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8"} {
		av[p] = []model.Day{model.Monday}
	}
	res := mustOptimize(t, av, 4)
	if len(res.Pods) != 2 {
		t.Fatalf("expected 2 pods, got %d", len(res.Pods))
	}
	if len(res.PlayersWithGames) != 8 {
		t.Fatalf("expected 8 players with games, got %d", len(res.PlayersWithGames))
	}
}

func TestOptimize_DisjointDays(t *testing.T) {
	av := model.Availability{
		"alice": {model.Monday}, "bob": {model.Monday},
		"charlie": {model.Monday}, "dave": {model.Monday},
		"eve": {model.Wednesday}, "frank": {model.Wednesday},
		"grace": {model.Wednesday}, "henry": {model.Wednesday},
	}
	res := mustOptimize(t, av, 4)
	if len(res.Pods) != 2 {
		t.Fatalf("expected 2 pods, got %d", len(res.Pods))
	}
	if len(res.PodsOn(model.Monday)) != 1 || len(res.PodsOn(model.Wednesday)) != 1 {
		t.Fatalf("expected one pod per day, got %+v", res.Pods)
	}
	if len(res.PlayersWithGames) != 8 || len(res.Choices) != 0 {
		t.Fatalf("expected 8 players and no choices, got %d / %d",
			len(res.PlayersWithGames), len(res.Choices))
	}
}

func TestOptimize_FivePlayersOneLeftOut(t *testing.T) {
	av := model.Availability{
		"p1": {model.Monday}, "p2": {model.Monday}, "p3": {model.Monday},
		"p4": {model.Monday}, "p5": {model.Monday},
	}
	res := mustOptimize(t, av, 4)
	if len(res.Pods) != 1 || len(res.PlayersWithGames) != 4 {
		t.Fatalf("expected one full pod, got %+v", res)
	}
	if len(res.PlayersWithoutGames) != 1 || res.PlayersWithoutGames[0] != "p5" {
		t.Fatalf("expected p5 left out by lexical tie-break, got %v", res.PlayersWithoutGames)
	}
}

func TestOptimize_EmptyInput(t *testing.T) {
	res := mustOptimize(t, model.Availability{}, 4)
	if len(res.Pods) != 0 || len(res.PlayersWithGames) != 0 ||
		len(res.PlayersWithoutGames) != 0 || len(res.Choices) != 0 || res.Volunteer != nil {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestOptimize_InvalidPodSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		_, err := Optimize(model.Availability{"a": {model.Monday}}, size)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("pod size %d: expected ErrInvalidInput, got %v", size, err)
		}
	}
}

func TestOptimize_NilAvailability(t *testing.T) {
	_, err := Optimize(nil, 4)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestOptimize_CriticalOverlap(t *testing.T) {
	av := model.Availability{
		"alice": {model.Monday, model.Wednesday},
		"bob":   {model.Monday}, "charlie": {model.Monday}, "dave": {model.Monday},
		"eve": {model.Wednesday}, "frank": {model.Wednesday}, "grace": {model.Wednesday},
	}
	res := mustOptimize(t, av, 4)
	if len(res.Pods) != 0 {
		t.Fatalf("expected no committed pods until the choice resolves, got %+v", res.Pods)
	}
	if len(res.Choices) != 1 {
		t.Fatalf("expected 1 choice scenario, got %d", len(res.Choices))
	}
	c := res.Choices[0]
	if c.Player != "alice" {
		t.Fatalf("expected alice as the critical player, got %s", c.Player)
	}
	if c.Days != [2]model.Day{model.Monday, model.Wednesday} {
		t.Fatalf("unexpected days %v", c.Days)
	}
	wantMon := []model.PlayerID{"alice", "bob", "charlie", "dave"}
	wantWed := []model.PlayerID{"alice", "eve", "frank", "grace"}
	if !reflect.DeepEqual(c.Pods[0].Players, wantMon) || !reflect.DeepEqual(c.Pods[1].Players, wantWed) {
		t.Fatalf("unexpected candidate pods %+v", c.Pods)
	}
	// Everyone is consumed by the unresolved choice: neither set lists them.
	if len(res.PlayersWithGames) != 0 || len(res.PlayersWithoutGames) != 0 {
		t.Fatalf("players held by a choice must not appear in either set: %+v", res)
	}
}

func TestOptimize_ChoiceResolvedByPinning(t *testing.T) {
	av := model.Availability{
		"alice": {model.Monday},
		"bob":   {model.Monday}, "charlie": {model.Monday}, "dave": {model.Monday},
		"eve": {model.Wednesday}, "frank": {model.Wednesday}, "grace": {model.Wednesday},
	}
	res := mustOptimize(t, av, 4)
	if len(res.Choices) != 0 {
		t.Fatalf("pinned re-run should have no choices, got %+v", res.Choices)
	}
	if len(res.Pods) != 1 || res.Pods[0].Day != model.Monday {
		t.Fatalf("expected the Monday pod after pinning, got %+v", res.Pods)
	}
	if len(res.PlayersWithoutGames) != 3 {
		t.Fatalf("expected Wednesday players without games, got %v", res.PlayersWithoutGames)
	}
}

// A player available on two days where only one day truly needs them should
// be held for that day by the fewest-alternatives selection, leaving both
// pods to form.
func TestOptimize_FlexiblePlayerPreserved(t *testing.T) {
	av := model.Availability{
		"alice": {model.Monday, model.Wednesday},
		"bob":   {model.Monday}, "charlie": {model.Monday}, "grace": {model.Monday},
		"dave": {model.Wednesday}, "eve": {model.Wednesday},
		"frank": {model.Wednesday}, "henry": {model.Wednesday},
	}
	res := mustOptimize(t, av, 4)
	if len(res.Pods) != 2 {
		t.Fatalf("expected 2 pods, got %+v", res.Pods)
	}
	if len(res.PlayersWithGames) != 8 || len(res.PlayersWithoutGames) != 0 {
		t.Fatalf("expected all 8 playing, got %d with / %d without",
			len(res.PlayersWithGames), len(res.PlayersWithoutGames))
	}
	mon := res.PodsOn(model.Monday)
	if len(mon) != 1 || !mon[0].Contains("alice") {
		t.Fatalf("expected alice seated on Monday, got %+v", mon)
	}
}

func TestOptimize_UniqueCountPriority(t *testing.T) {
	av := model.Availability{
		"alice": {model.Monday, model.Tuesday},
		"bob":   {model.Monday, model.Tuesday},
		"charlie": {model.Monday, model.Wednesday},
		"dave":    {model.Monday, model.Wednesday},
		"eve":     {model.Monday},
		"frank":   {model.Tuesday}, "grace": {model.Tuesday},
		"henry": {model.Wednesday}, "iris": {model.Wednesday},
	}
	res := mustOptimize(t, av, 4)
	if len(res.Pods) != 2 {
		t.Fatalf("expected 2 pods, got %+v", res.Pods)
	}
	if len(res.PlayersWithGames) != 8 || len(res.PlayersWithoutGames) != 1 {
		t.Fatalf("expected 8 playing and 1 out, got %d / %d",
			len(res.PlayersWithGames), len(res.PlayersWithoutGames))
	}
	if res.PlayersWithoutGames[0] != "eve" {
		t.Fatalf("expected eve stranded on the deprioritized day, got %v", res.PlayersWithoutGames)
	}
}

// A day holding exactly PodSize candidates outranks a larger day when unique
// counts tie: committing the complete day leaves no one stranded on it.
func TestOptimize_ExactMultipleDayPreferred(t *testing.T) {
	av := model.Availability{
		"a": {model.Monday, model.Tuesday},
		"b": {model.Monday, model.Tuesday},
		"c": {model.Monday, model.Tuesday},
		"d": {model.Monday, model.Tuesday},
		"e": {model.Monday, model.Wednesday},
	}
	res := mustOptimize(t, av, 4)
	if len(res.Pods) != 1 {
		t.Fatalf("expected 1 pod, got %+v", res.Pods)
	}
	// Monday has five candidates, Tuesday exactly four; with unique counts
	// tied everywhere the complete Tuesday commits first.
	if res.Pods[0].Day != model.Tuesday {
		t.Fatalf("expected the pod on the exact-multiple day, got %s", res.Pods[0].Day)
	}
	want := []model.PlayerID{"a", "b", "c", "d"}
	if !reflect.DeepEqual(res.Pods[0].Players, want) {
		t.Fatalf("unexpected pod members %v", res.Pods[0].Players)
	}
	if len(res.PlayersWithoutGames) != 1 || res.PlayersWithoutGames[0] != "e" {
		t.Fatalf("expected only e without a game, got %v", res.PlayersWithoutGames)
	}
}

func TestOptimize_EveryoneFlexible(t *testing.T) {
	av := model.Availability{}
	for _, p := range []model.PlayerID{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8"} {
		av[p] = []model.Day{model.Monday, model.Tuesday, model.Wednesday}
	}
	res := mustOptimize(t, av, 4)
	if len(res.Pods) != 2 {
		t.Fatalf("expected 2 pods, got %d", len(res.Pods))
	}
	for _, pod := range res.Pods {
		if pod.Day != model.Monday {
			t.Fatalf("canonical tie-break should pick Monday, got %s", pod.Day)
		}
	}
	if len(res.PlayersWithGames) != 8 {
		t.Fatalf("expected all 8 playing, got %d", len(res.PlayersWithGames))
	}
}

func TestOptimize_CascadingOverflow(t *testing.T) {
	av := model.Availability{}
	add := func(day model.Day, ids ...model.PlayerID) {
		for _, id := range ids {
			av[id] = []model.Day{day}
		}
	}
	add(model.Monday, "p01", "p02", "p03", "p04", "p05", "p06", "p07")
	add(model.Tuesday, "p08", "p09", "p10", "p11", "p12", "p13")
	add(model.Wednesday, "p14", "p15", "p16", "p17", "p18")
	res := mustOptimize(t, av, 4)
	if len(res.Pods) != 3 {
		t.Fatalf("expected 3 pods, got %d", len(res.Pods))
	}
	if len(res.PlayersWithGames) != 12 || len(res.PlayersWithoutGames) != 6 {
		t.Fatalf("expected 12 playing / 6 out, got %d / %d",
			len(res.PlayersWithGames), len(res.PlayersWithoutGames))
	}
}

func TestOptimize_PlayerWithNoDays(t *testing.T) {
	av := model.Availability{
		"ghost": {},
		"p1":    {model.Monday}, "p2": {model.Monday},
		"p3": {model.Monday}, "p4": {model.Monday},
	}
	res := mustOptimize(t, av, 4)
	if len(res.Pods) != 1 {
		t.Fatalf("expected 1 pod, got %d", len(res.Pods))
	}
	if len(res.PlayersWithoutGames) != 1 || res.PlayersWithoutGames[0] != "ghost" {
		t.Fatalf("expected ghost without a game, got %v", res.PlayersWithoutGames)
	}
}

func TestOptimize_DuplicateDaysIgnored(t *testing.T) {
	av := model.Availability{
		"p1": {model.Monday, model.Monday},
		"p2": {model.Monday}, "p3": {model.Monday}, "p4": {model.Monday},
	}
	res := mustOptimize(t, av, 4)
	if len(res.Pods) != 1 || len(res.Pods[0].Players) != 4 {
		t.Fatalf("duplicate day entries must not change the result: %+v", res)
	}
}

func TestOptimize_PodSizeThree(t *testing.T) {
	av := model.Availability{
		"p1": {model.Friday}, "p2": {model.Friday}, "p3": {model.Friday},
		"p4": {model.Friday}, "p5": {model.Friday}, "p6": {model.Friday},
	}
	res := mustOptimize(t, av, 3)
	if len(res.Pods) != 2 {
		t.Fatalf("expected 2 pods of 3, got %+v", res.Pods)
	}
	for _, pod := range res.Pods {
		if len(pod.Players) != 3 {
			t.Fatalf("expected pod of 3, got %d", len(pod.Players))
		}
	}
}

func TestOptimize_VolunteerGap(t *testing.T) {
	av := model.Availability{
		"superflex": {model.Monday, model.Tuesday, model.Wednesday},
		"alice":     {model.Monday}, "bob": {model.Monday}, "charlie": {model.Monday},
		"dave": {model.Tuesday}, "eve": {model.Tuesday}, "frank": {model.Tuesday},
		"grace": {model.Wednesday}, "henry": {model.Wednesday}, "iris": {model.Wednesday},
	}
	res := mustOptimize(t, av, 4)
	// Three days tie on unique count; Monday wins canonically and seats
	// superflex as its fourth. Tuesday is then one short with superflex the
	// only possible volunteer.
	if len(res.Pods) != 1 || res.Pods[0].Day != model.Monday {
		t.Fatalf("expected one Monday pod, got %+v", res.Pods)
	}
	if res.Volunteer == nil {
		t.Fatal("expected a volunteer gap")
	}
	if res.Volunteer.Day != model.Tuesday {
		t.Fatalf("expected the gap on Tuesday, got %s", res.Volunteer.Day)
	}
	wantWaiting := []model.PlayerID{"dave", "eve", "frank"}
	if !reflect.DeepEqual(res.Volunteer.Waiting, wantWaiting) {
		t.Fatalf("unexpected waiting list %v", res.Volunteer.Waiting)
	}
	if !reflect.DeepEqual(res.Volunteer.Candidates, []model.PlayerID{"superflex"}) {
		t.Fatalf("unexpected candidates %v", res.Volunteer.Candidates)
	}
}

func TestOptimize_VolunteerRespectsOneGameOnly(t *testing.T) {
	av := model.Availability{
		"superflex": {model.Monday, model.Tuesday, model.Wednesday},
		"alice":     {model.Monday}, "bob": {model.Monday}, "charlie": {model.Monday},
		"dave": {model.Tuesday}, "eve": {model.Tuesday}, "frank": {model.Tuesday},
	}
	opt := Optimizer{
		PodSize: 4,
		Preferences: map[model.PlayerID]model.Preferences{
			"superflex": {OneGameOnly: true},
		},
	}
	res, err := opt.Optimize(av)
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if res.Volunteer != nil {
		t.Fatalf("one-game-only player must not be solicited: %+v", res.Volunteer)
	}
}

func TestOptimize_VolunteerRespectsNoConsecutive(t *testing.T) {
	av := model.Availability{
		"superflex": {model.Monday, model.Tuesday, model.Wednesday},
		"alice":     {model.Monday}, "bob": {model.Monday}, "charlie": {model.Monday},
		"dave": {model.Tuesday}, "eve": {model.Tuesday}, "frank": {model.Tuesday},
		"grace": {model.Wednesday}, "henry": {model.Wednesday}, "iris": {model.Wednesday},
	}
	opt := Optimizer{
		PodSize: 4,
		Preferences: map[model.PlayerID]model.Preferences{
			"superflex": {NoConsecutive: true},
		},
	}
	res, err := opt.Optimize(av)
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if res.Volunteer == nil {
		t.Fatal("expected a volunteer gap")
	}
	// Tuesday is adjacent to superflex's Monday game, so the first eligible
	// gap is Wednesday.
	if res.Volunteer.Day != model.Wednesday {
		t.Fatalf("expected the gap to skip the adjacent night, got %s", res.Volunteer.Day)
	}
}

func TestOptimize_Idempotence(t *testing.T) {
	av := model.Availability{
		"alice": {model.Monday, model.Tuesday},
		"bob":   {model.Monday, model.Wednesday},
		"charlie": {model.Monday}, "dave": {model.Monday}, "eve": {model.Monday},
		"frank": {model.Tuesday}, "grace": {model.Tuesday}, "henry": {model.Tuesday},
		"iris": {model.Wednesday}, "jane": {model.Wednesday}, "kate": {model.Wednesday},
	}
	first := mustOptimize(t, av, 4)
	for i := 0; i < 5; i++ {
		again := mustOptimize(t, av, 4)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d diverged:\nfirst %+v\nagain %+v", i, first, again)
		}
	}
}

func TestOptimize_Conservation(t *testing.T) {
	fixtures := []model.Availability{
		{
			"alice": {model.Monday, model.Tuesday}, "bob": {model.Monday},
			"charlie": {model.Monday}, "dave": {model.Monday},
			"eve": {model.Tuesday}, "frank": {model.Tuesday}, "grace": {model.Tuesday},
		},
		{
			"p1": {model.Monday}, "p2": {model.Monday}, "p3": {model.Monday},
			"p4": {model.Monday}, "p5": {model.Monday}, "p6": {model.Tuesday},
		},
		{
			"a": {model.Monday, model.Wednesday}, "b": {model.Wednesday},
			"c": {model.Wednesday}, "d": {model.Wednesday}, "e": {},
		},
	}
	for i, av := range fixtures {
		res := mustOptimize(t, av, 4)
		seen := make(map[model.PlayerID]int)
		for _, pod := range res.Pods {
			if len(pod.Players) != 4 {
				t.Fatalf("fixture %d: pod size violated: %+v", i, pod)
			}
			for _, p := range pod.Players {
				seen[p]++
				found := false
				for _, d := range av[p] {
					if d == pod.Day {
						found = true
					}
				}
				if !found {
					t.Fatalf("fixture %d: %s assigned to a day they never listed", i, p)
				}
			}
		}
		for p, n := range seen {
			if n != 1 {
				t.Fatalf("fixture %d: %s appears in %d pods", i, p, n)
			}
		}
		if len(seen) != len(res.PlayersWithGames) {
			t.Fatalf("fixture %d: with-games set does not match pod membership", i)
		}
		accounted := len(res.PlayersWithGames) + len(res.PlayersWithoutGames)
		pending := len(av) - accounted
		if pending < 0 {
			t.Fatalf("fixture %d: more players in output sets than in input", i)
		}
		if pending > 0 && len(res.Choices) == 0 {
			t.Fatalf("fixture %d: %d players unaccounted without a choice scenario", i, pending)
		}
	}
}
