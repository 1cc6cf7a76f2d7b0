package model

import (
	"sort"
	"testing"
)

func TestParseDay(t *testing.T) {
	cases := map[string]Day{
		"Monday":    Monday,
		"monday":    Monday,
		"mon":       Monday,
		" Tues ":    Tuesday,
		"WEDNESDAY": Wednesday,
		"thurs":     Thursday,
		"fri":       Friday,
		"sat":       Saturday,
		"Sun":       Sunday,
	}
	for in, want := range cases {
		got, ok := ParseDay(in)
		if !ok || got != want {
			t.Errorf("ParseDay(%q) = %v, %v; want %v", in, got, ok, want)
		}
	}
	if _, ok := ParseDay("someday"); ok {
		t.Error("ParseDay should reject unknown names")
	}
}

func TestDayLess_CanonicalOrder(t *testing.T) {
	days := []Day{Sunday, Wednesday, Monday, Friday}
	sort.Slice(days, func(i, j int) bool { return DayLess(days[i], days[j]) })
	want := []Day{Monday, Wednesday, Friday, Sunday}
	for i := range want {
		if days[i] != want[i] {
			t.Fatalf("canonical sort = %v, want %v", days, want)
		}
	}
}

func TestDayLess_UnknownDaysSortLast(t *testing.T) {
	if !DayLess(Sunday, "Zeroday") {
		t.Error("known days must sort before unknown identifiers")
	}
	if !DayLess("Aday", "Bday") {
		t.Error("unknown identifiers must sort lexically")
	}
}

func TestAdjacent(t *testing.T) {
	if !Adjacent(Monday, Tuesday) || !Adjacent(Tuesday, Monday) {
		t.Error("Monday and Tuesday are adjacent")
	}
	if !Adjacent(Sunday, Monday) {
		t.Error("the week wraps: Sunday and Monday are adjacent")
	}
	if Adjacent(Monday, Wednesday) {
		t.Error("Monday and Wednesday are not adjacent")
	}
}
