// Package render turns optimization results into the Discord-markdown
// announcements the bot posts. It is pure string assembly: player identifiers
// are resolved to display names through NameResolver and nothing is sent
// anywhere.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jtrevag/lfg-discord-bot/core/model"
	"github.com/jtrevag/lfg-discord-bot/core/optimizer"
)

// NameResolver maps a player identifier to the text shown in messages.
type NameResolver interface {
	DisplayName(id model.PlayerID) string
}

// Mentions is the fallback resolver: plain Discord mentions.
type Mentions struct{}

func (Mentions) DisplayName(id model.PlayerID) string { return id.Mention() }

// ResolverFunc adapts a function to NameResolver.
type ResolverFunc func(id model.PlayerID) string

func (f ResolverFunc) DisplayName(id model.PlayerID) string { return f(id) }

// Message formats the full weekly announcement. A nil resolver falls back to
// mentions.
func Message(res *optimizer.Result, names NameResolver) string {
	if names == nil {
		names = Mentions{}
	}
	var b strings.Builder
	b.WriteString("**Pod Assignments for This Week**\n")

	if len(res.Choices) > 0 {
		writeChoices(&b, res.Choices, names)
		return b.String()
	}

	if len(res.Pods) == 0 && res.Volunteer == nil {
		b.WriteString("\nNo pods could be formed this week.\n")
		if len(res.PlayersWithoutGames) > 0 {
			fmt.Fprintf(&b, "\n**Players without games:** %s\n", joinPlayers(res.PlayersWithoutGames, names))
		}
		return b.String()
	}

	writePods(&b, res.Pods, names)

	if res.Volunteer != nil {
		b.WriteString("---\n")
		writeVolunteer(&b, res.Volunteer, names)
		return b.String()
	}

	fmt.Fprintf(&b, "**Total players with games:** %d\n", len(res.PlayersWithGames))
	if len(res.PlayersWithoutGames) > 0 {
		fmt.Fprintf(&b, "\n**Players without games this week:** %s\n", joinPlayers(res.PlayersWithoutGames, names))
	}
	return b.String()
}

func writePods(b *strings.Builder, pods []model.Pod, names NameResolver) {
	byDay := make(map[model.Day][]model.Pod)
	var days []model.Day
	for _, pod := range pods {
		if _, ok := byDay[pod.Day]; !ok {
			days = append(days, pod.Day)
		}
		byDay[pod.Day] = append(byDay[pod.Day], pod)
	}
	sort.Slice(days, func(i, j int) bool { return model.DayLess(days[i], days[j]) })
	for _, day := range days {
		fmt.Fprintf(b, "\n**%s:**\n", day)
		for i, pod := range byDay[day] {
			fmt.Fprintf(b, "  Pod %d: %s\n", i+1, joinPlayers(pod.Players, names))
		}
	}
	b.WriteString("\n")
}

func writeChoices(b *strings.Builder, choices []optimizer.ChoiceScenario, names NameResolver) {
	b.WriteString("\n**PLAYER CHOICE REQUIRED**\n")
	for _, c := range choices {
		fmt.Fprintf(b, "%s is needed for pods on both %s and %s. Please choose which day you prefer to play!\n",
			names.DisplayName(c.Player), c.Days[0], c.Days[1])
		b.WriteString("\n**Potential Pods:**\n")
		for i := range c.Pods {
			fmt.Fprintf(b, "**%s:** %s\n", c.Days[i], joinPlayers(c.Pods[i].Players, names))
		}
	}
	b.WriteString("\nPlease react or respond with your choice!\n")
}

func writeVolunteer(b *strings.Builder, gap *optimizer.VolunteerGap, names NameResolver) {
	fmt.Fprintf(b, "**Need 1 more player for %s!**\n\n", gap.Day)
	fmt.Fprintf(b, "Waiting to play: %s\n\n", joinPlayers(gap.Waiting, names))
	fmt.Fprintf(b, "Can any of these players join for a 2nd game?\n%s\n\n", joinPlayers(gap.Candidates, names))
	b.WriteString("React or reply if you can play twice this week!\n")
}

func joinPlayers(players []model.PlayerID, names NameResolver) string {
	parts := make([]string, len(players))
	for i, p := range players {
		parts[i] = names.DisplayName(p)
	}
	return strings.Join(parts, ", ")
}
