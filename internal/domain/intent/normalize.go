package intent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Area is a canonical life/work category with accepted aliases.
type Area struct {
	ID      string
	Name    string
	Aliases []string
}

// DefaultAreas returns the built-in area catalogue.
func DefaultAreas() []Area {
	return []Area{
		{ID: "work", Name: "Work", Aliases: []string{"job", "career", "trabajo"}},
		{ID: "health", Name: "Health", Aliases: []string{"fitness", "salud"}},
		{ID: "family", Name: "Family", Aliases: []string{"home", "familia"}},
		{ID: "learning", Name: "Learning", Aliases: []string{"study", "education", "aprendizaje"}},
		{ID: "finance", Name: "Finance", Aliases: []string{"money", "finanzas"}},
	}
}

var yearRe = regexp.MustCompile(`\b(20\d{2})\b`)

// NormalizePeriod resolves a natural-language period expression into a
// canonical token: 2026-Q1..Q4, 2026-H1/H2, or a bare year. English and
// Spanish expressions are accepted; a missing year defaults to now's year.
func NormalizePeriod(raw string, now time.Time) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", fmt.Errorf("%w: empty period", ErrInvalidSlot)
	}

	year := now.Year()
	if m := yearRe.FindString(s); m != "" {
		year, _ = strconv.Atoi(m)
		s = strings.TrimSpace(strings.ReplaceAll(s, m, ""))
	}

	// Already canonical, e.g. "2026-q1" or "q1".
	if m := regexp.MustCompile(`^-?([qh][1-4])$`).FindStringSubmatch(s); m != nil {
		token := strings.ToUpper(m[1])
		if token[0] == 'H' && token[1] > '2' {
			return "", fmt.Errorf("%w: %q", ErrInvalidSlot, raw)
		}
		return fmt.Sprintf("%d-%s", year, token), nil
	}

	quarter := 0
	half := 0
	switch {
	case containsAny(s, "first quarter", "primer trimestre", "1st quarter"):
		quarter = 1
	case containsAny(s, "second quarter", "segundo trimestre", "2nd quarter"):
		quarter = 2
	case containsAny(s, "third quarter", "tercer trimestre", "3rd quarter"):
		quarter = 3
	case containsAny(s, "fourth quarter", "cuarto trimestre", "4th quarter"):
		quarter = 4
	case containsAny(s, "first half", "primer semestre", "1st half", "first semester"):
		half = 1
	case containsAny(s, "second half", "segundo semestre", "2nd half", "second semester"):
		half = 2
	case containsAny(s, "this quarter"):
		quarter = (int(now.Month())-1)/3 + 1
		year = now.Year()
	case containsAny(s, "this half", "this semester"):
		half = 1
		if now.Month() > time.June {
			half = 2
		}
		year = now.Year()
	case s == "" || containsAny(s, "year", "this year", "año", "anual"):
		return strconv.Itoa(year), nil
	default:
		return "", fmt.Errorf("%w: cannot interpret period %q", ErrInvalidSlot, raw)
	}

	if quarter > 0 {
		return fmt.Sprintf("%d-Q%d", year, quarter), nil
	}
	return fmt.Sprintf("%d-H%d", year, half), nil
}

var weekdays = map[string]time.Weekday{
	"monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
	"thursday": time.Thursday, "friday": time.Friday, "saturday": time.Saturday,
	"sunday": time.Sunday,
	"lunes": time.Monday, "martes": time.Tuesday, "miercoles": time.Wednesday,
	"jueves": time.Thursday, "viernes": time.Friday, "sabado": time.Saturday,
	"domingo": time.Sunday,
}

// NormalizeDate resolves relative and absolute date expressions to a
// calendar date. Relative expressions resolve forward from now.
func NormalizeDate(raw string, now time.Time) (time.Time, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch s {
	case "":
		return time.Time{}, fmt.Errorf("%w: empty date", ErrInvalidSlot)
	case "today", "hoy":
		return today, nil
	case "tomorrow", "mañana", "manana":
		return today.AddDate(0, 0, 1), nil
	case "next week":
		return today.AddDate(0, 0, 7), nil
	}

	if wd, ok := weekdays[s]; ok {
		days := (int(wd) - int(today.Weekday()) + 7) % 7
		if days == 0 {
			days = 7
		}
		return today.AddDate(0, 0, days), nil
	}

	for _, layout := range []string{"2006-01-02", "Jan 2 2006", "January 2 2006", "Jan 2", "January 2"} {
		if t, err := time.Parse(layout, titleCase(s)); err == nil {
			if t.Year() == 0 {
				t = time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
				if t.Before(today) {
					t = t.AddDate(1, 0, 0)
				}
			}
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: cannot interpret date %q", ErrInvalidSlot, raw)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

var timeRangeRe = regexp.MustCompile(`^\s*(\d{1,2})(?::(\d{2}))?\s*(?:-|to|–)\s*(\d{1,2})(?::(\d{2}))?\s*$`)

// NormalizeTimeRange parses "09:00-10:30" (or "9-10", "9:00 to 10:30") into
// minutes since midnight. End must be strictly after start.
func NormalizeTimeRange(raw string) (startMin, endMin int, err error) {
	m := timeRangeRe.FindStringSubmatch(strings.ToLower(raw))
	if m == nil {
		return 0, 0, fmt.Errorf("%w: cannot interpret time range %q", ErrInvalidSlot, raw)
	}
	sh, _ := strconv.Atoi(m[1])
	sm, _ := strconv.Atoi(m[2])
	eh, _ := strconv.Atoi(m[3])
	em, _ := strconv.Atoi(m[4])
	if sh > 23 || eh > 24 || sm > 59 || em > 59 {
		return 0, 0, fmt.Errorf("%w: time out of range in %q", ErrInvalidSlot, raw)
	}
	startMin = sh*60 + sm
	endMin = eh*60 + em
	if endMin <= startMin {
		return 0, 0, fmt.Errorf("%w: end must be after start in %q", ErrInvalidSlot, raw)
	}
	return startMin, endMin, nil
}

// NormalizeArea resolves a free-text label to a canonical area id using
// exact, alias, then unique-partial matching.
func NormalizeArea(raw string, areas []Area) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", fmt.Errorf("%w: empty area", ErrInvalidSlot)
	}

	for _, a := range areas {
		if s == strings.ToLower(a.ID) || s == strings.ToLower(a.Name) {
			return a.ID, nil
		}
	}
	for _, a := range areas {
		for _, alias := range a.Aliases {
			if s == strings.ToLower(alias) {
				return a.ID, nil
			}
		}
	}

	var partial []string
	for _, a := range areas {
		if strings.Contains(strings.ToLower(a.Name), s) || strings.Contains(strings.ToLower(a.ID), s) {
			partial = append(partial, a.ID)
		}
	}
	if len(partial) == 1 {
		return partial[0], nil
	}
	if len(partial) > 1 {
		return "", fmt.Errorf("%w: area %q is ambiguous (%s)", ErrInvalidSlot, raw, strings.Join(partial, ", "))
	}
	return "", fmt.Errorf("%w: unknown area %q", ErrInvalidSlot, raw)
}
