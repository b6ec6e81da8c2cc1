package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DefaultHour is the hour of day assumed when a note names a day but no time
const DefaultHour = 9

var explicitTimePattern = regexp.MustCompile(`(?i)(\d{1,2})[:.](\d{2})\s*(a\.?m\.?|p\.?m\.?)?`)

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

var relativeOffsetPatterns = []struct {
	pattern *regexp.Regexp
	unit    time.Duration
}{
	{regexp.MustCompile(`in (\d+) hour`), time.Hour},
	{regexp.MustCompile(`in (\d+) day`), 24 * time.Hour},
	{regexp.MustCompile(`in (\d+) week`), 7 * 24 * time.Hour},
	{regexp.MustCompile(`in (\d+) month`), 30 * 24 * time.Hour},
}

// ParseDate resolves a date and time mentioned in the note, or nil when it
// mentions none. An explicit clock time like "3:30pm" overrides whatever
// time of day the date expression implies; a bare day like "next Monday"
// defaults to 9:00.
func (e *Extractor) ParseDate(text string) *time.Time {
	now := e.now()

	var explicitHour, explicitMinute int
	haveExplicitTime := false
	if m := explicitTimePattern.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour <= 23 && minute <= 59 {
			meridiem := strings.ReplaceAll(strings.ToLower(m[3]), ".", "")
			if strings.HasPrefix(meridiem, "p") && hour != 12 {
				hour += 12
			} else if strings.HasPrefix(meridiem, "a") && hour == 12 {
				hour = 0
			}
			if hour <= 23 {
				explicitHour, explicitMinute = hour, minute
				haveExplicitTime = true
			}
		}
	}

	date := e.parseNaturalDate(text, now)
	if date == nil {
		date = e.parseRelativeDate(text, now)
	}
	if date == nil {
		if parsed, err := dateparse.ParseAny(text); err == nil {
			date = &parsed
		}
	}

	if haveExplicitTime {
		base := now
		if date != nil {
			base = *date
		}
		at := time.Date(base.Year(), base.Month(), base.Day(), explicitHour, explicitMinute, 0, 0, base.Location())
		return &at
	}

	return date
}

// parseNaturalDate runs the rule-based natural language parser. When the
// rules match a day but set no time of day, the result keeps the base
// clock's time; that case is snapped to the default hour.
func (e *Extractor) parseNaturalDate(text string, now time.Time) *time.Time {
	result, err := e.dateRules.Parse(text, now)
	if err != nil || result == nil {
		return nil
	}

	t := result.Time
	if t.Hour() == now.Hour() && t.Minute() == now.Minute() {
		t = time.Date(t.Year(), t.Month(), t.Day(), DefaultHour, 0, 0, 0, t.Location())
	}
	return &t
}

func (e *Extractor) parseRelativeDate(text string, now time.Time) *time.Time {
	lower := strings.ToLower(text)

	atDefaultHour := func(t time.Time) *time.Time {
		at := time.Date(t.Year(), t.Month(), t.Day(), DefaultHour, 0, 0, 0, t.Location())
		return &at
	}

	switch {
	case strings.Contains(lower, "today"):
		return atDefaultHour(now)
	case strings.Contains(lower, "tomorrow"):
		return atDefaultHour(now.AddDate(0, 0, 1))
	case strings.Contains(lower, "yesterday"):
		return atDefaultHour(now.AddDate(0, 0, -1))
	}

	switch {
	case strings.Contains(lower, "next week"):
		t := now.AddDate(0, 0, 7)
		return &t
	case strings.Contains(lower, "this week"):
		return &now
	case strings.Contains(lower, "next month"):
		t := now.AddDate(0, 0, 30)
		return &t
	case strings.Contains(lower, "this month"):
		return &now
	}

	for name, weekday := range weekdays {
		if !strings.Contains(lower, name) {
			continue
		}
		ahead := int(weekday - now.Weekday())
		if strings.Contains(lower, "next") {
			if ahead <= 0 {
				ahead += 7
			}
			return atDefaultHour(now.AddDate(0, 0, ahead))
		}
		if strings.Contains(lower, "this") || ahead > 0 {
			if ahead <= 0 {
				ahead += 7
			}
			return atDefaultHour(now.AddDate(0, 0, ahead))
		}
	}

	for _, rp := range relativeOffsetPatterns {
		if m := rp.pattern.FindStringSubmatch(lower); m != nil {
			n, _ := strconv.Atoi(m[1])
			t := now.Add(time.Duration(n) * rp.unit)
			return &t
		}
	}

	return nil
}
