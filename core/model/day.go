package model

import "strings"

// Day identifies a weekday a game can be scheduled on. The zero value is not a
// valid day.
type Day string

const (
	Monday    Day = "Monday"
	Tuesday   Day = "Tuesday"
	Wednesday Day = "Wednesday"
	Thursday  Day = "Thursday"
	Friday    Day = "Friday"
	Saturday  Day = "Saturday"
	Sunday    Day = "Sunday"
)

// Week lists the known days in canonical order.
var Week = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var dayRank = map[Day]int{
	Monday:    0,
	Tuesday:   1,
	Wednesday: 2,
	Thursday:  3,
	Friday:    4,
	Saturday:  5,
	Sunday:    6,
}

// adjacency includes the Sunday-Monday wrap so the no-consecutive-nights
// preference holds across week boundaries.
var adjacency = map[Day][2]Day{
	Monday:    {Sunday, Tuesday},
	Tuesday:   {Monday, Wednesday},
	Wednesday: {Tuesday, Thursday},
	Thursday:  {Wednesday, Friday},
	Friday:    {Thursday, Saturday},
	Saturday:  {Friday, Sunday},
	Sunday:    {Saturday, Monday},
}

var dayAliases = map[string]Day{
	"mon": Monday, "monday": Monday,
	"tue": Tuesday, "tues": Tuesday, "tuesday": Tuesday,
	"wed": Wednesday, "wednesday": Wednesday,
	"thu": Thursday, "thur": Thursday, "thurs": Thursday, "thursday": Thursday,
	"fri": Friday, "friday": Friday,
	"sat": Saturday, "saturday": Saturday,
	"sun": Sunday, "sunday": Sunday,
}

// ParseDay resolves a day name or common abbreviation, case-insensitively.
// Unknown names return false.
func ParseDay(s string) (Day, bool) {
	d, ok := dayAliases[strings.ToLower(strings.TrimSpace(s))]
	return d, ok
}

// Known reports whether the day belongs to the weekday enumeration.
func (d Day) Known() bool {
	_, ok := dayRank[d]
	return ok
}

// String returns the day name.
func (d Day) String() string { return string(d) }

// DayLess defines the canonical day ordering used for deterministic
// tie-breaks: known days sort in week order, unknown identifiers sort after
// them lexically. Callers and tests depend on this ordering staying stable.
func DayLess(a, b Day) bool {
	ra, aok := dayRank[a]
	rb, bok := dayRank[b]
	switch {
	case aok && bok:
		return ra < rb
	case aok:
		return true
	case bok:
		return false
	default:
		return a < b
	}
}

// Adjacent reports whether two days are consecutive nights.
func Adjacent(a, b Day) bool {
	n, ok := adjacency[a]
	if !ok {
		return false
	}
	return n[0] == b || n[1] == b
}
