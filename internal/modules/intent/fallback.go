// README: Deterministic keyword fallback used when the reasoning service is down.
package intent

import (
	"regexp"
	"strings"
	"time"

	"smartride/internal/ai"
	"smartride/internal/types"
)

// actionKeywords is checked in order: destructive verbs first so that
// "cancel my booking" resolves to cancel, not book.
var actionKeywords = []struct {
	action   Action
	keywords []string
}{
	{ActionCancel, []string{"cancel", "delete", "remove"}},
	{ActionUpdate, []string{"change", "reschedule", "update", "modify"}},
	{ActionList, []string{"show", "list", "what rides", "my rides"}},
	{ActionCompare, []string{"compare", "options", "prices"}},
	{ActionBook, []string{"book", "schedule", "reserve"}},
}

var (
	fromToRe = regexp.MustCompile(`(?i)from\s+(.+?)\s+to\s+(.+?)(?:\s+at\s|\s+tomorrow|\s+today|$)`)
	toRe     = regexp.MustCompile(`(?i)\bto\s+(?:the\s+)?(.+?)(?:\s+at\s|\s+tomorrow|\s+today|$)`)
	rideIDRe = regexp.MustCompile(`(?i)\bride\s+([0-9a-f-]{6,})`)
)

// parseFallback is a rule-based reduction of the reasoning call. It handles
// the plain phrasings only; anything it cannot resolve returns nil and the
// caller surfaces the upstream failure instead.
func parseFallback(utterance string, now time.Time) *ai.IntentFields {
	lower := strings.ToLower(utterance)

	var action Action
	for _, entry := range actionKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				action = entry.action
				break
			}
		}
		if action != "" {
			break
		}
	}
	if action == "" {
		return nil
	}

	f := &ai.IntentFields{Action: string(action), Constraint: string(ConstraintNone)}

	switch {
	case strings.Contains(lower, "cheapest"), strings.Contains(lower, "cheap"):
		f.Constraint = string(ConstraintCheapest)
	case strings.Contains(lower, "fastest"), strings.Contains(lower, "quick"):
		f.Constraint = string(ConstraintFastest)
	case strings.Contains(lower, "best value"), strings.Contains(lower, "best"):
		f.Constraint = string(ConstraintBestValue)
	}
	if strings.Contains(lower, "no shared") || strings.Contains(lower, "no pool") || strings.Contains(lower, "private") {
		f.AvoidShared = true
	}

	if m := fromToRe.FindStringSubmatch(utterance); m != nil {
		origin, dest := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		f.Origin = &origin
		f.Destination = &dest
	} else if m := toRe.FindStringSubmatch(utterance); m != nil {
		dest := strings.TrimSpace(m[1])
		f.Destination = &dest
	}

	if m := rideIDRe.FindStringSubmatch(utterance); m != nil {
		f.RideID = &m[1]
	}

	if t := fallbackTime(lower, now); t != nil {
		iso := t.Format(time.RFC3339)
		f.ISOTime = &iso
	}

	// Without a reasoning call the fallback cannot resolve more than these
	// fields; missing requirements surface as clarifications downstream.
	return f
}

var clockRe = regexp.MustCompile(`\bat\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)

// fallbackTime resolves "tomorrow"/"today at H[:MM][am|pm]" phrasings.
func fallbackTime(lower string, now time.Time) *time.Time {
	day := now
	explicitDay := false
	if strings.Contains(lower, "tomorrow") {
		day = now.AddDate(0, 0, 1)
		explicitDay = true
	} else if strings.Contains(lower, "today") {
		explicitDay = true
	}

	m := clockRe.FindStringSubmatch(lower)
	if m == nil {
		if !explicitDay {
			return nil
		}
		t := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, now.Location())
		// "today" in the afternoon: the 9:00 default has already passed, so
		// push an hour out instead of producing a rejectable past time.
		if !t.After(now) {
			t = now.Add(time.Hour)
		}
		return &t
	}

	hour := atoiDefault(m[1], 9)
	minute := atoiDefault(m[2], 0)
	if m[3] == "pm" && hour < 12 {
		hour += 12
	}
	if m[3] == "am" && hour == 12 {
		hour = 0
	}
	t := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location())
	return &t
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return def
		}
		n = n*10 + int(c-'0')
	}
	return n
}

func locationFromLabel(label string) *types.Location {
	return &types.Location{Label: label}
}
