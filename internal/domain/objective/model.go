package objective

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Status represents the lifecycle status of an objective.
type Status string

const (
	StatusActive   Status = "active"
	StatusDone     Status = "done"
	StatusArchived Status = "archived"
)

// Objective is a strategic goal scoped to a period.
type Objective struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Period     string    `json:"period"` // canonical token: 2026-Q1, 2026-H1, 2026
	Status     Status    `json:"status"`
	AreaID     string    `json:"area_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// KeyResult is a measurable target owned by an objective.
type KeyResult struct {
	ID           string    `json:"id"`
	ObjectiveID  string    `json:"objective_id"`
	Title        string    `json:"title"`
	StartValue   float64   `json:"start_value"`
	TargetValue  float64   `json:"target_value"`
	CurrentValue float64   `json:"current_value"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Progress returns completion as a percentage clamped to [0, 100].
func (kr KeyResult) Progress() float64 {
	span := kr.TargetValue - kr.StartValue
	if span == 0 {
		return 0
	}
	pct := (kr.CurrentValue - kr.StartValue) / span * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// PeriodBounds returns the start and end of a canonical period token.
// Malformed tokens fall back to the token's year, or the current year when
// even that can't be parsed.
func PeriodBounds(period string, now time.Time) (time.Time, time.Time) {
	year := now.Year()
	token := ""
	if i := strings.IndexByte(period, '-'); i >= 0 {
		if y, err := strconv.Atoi(period[:i]); err == nil {
			year = y
		}
		token = period[i+1:]
	} else if y, err := strconv.Atoi(period); err == nil {
		year = y
	}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	switch token {
	case "Q1", "Q2", "Q3", "Q4":
		q := int(token[1] - '1')
		start = time.Date(year, time.Month(1+q*3), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 3, 0)
	case "H1":
		end = start.AddDate(0, 6, 0)
	case "H2":
		start = time.Date(year, time.July, 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 6, 0)
	}
	return start, end
}

// ExpectedProgress returns the percentage of the period elapsed at now,
// clamped to [0, 100].
func ExpectedProgress(period string, now time.Time) float64 {
	start, end := PeriodBounds(period, now)
	total := end.Sub(start)
	if total <= 0 {
		return 0
	}
	elapsed := now.Sub(start)
	pct := float64(elapsed) / float64(total) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// ValidatePeriod checks a canonical period token.
func ValidatePeriod(period string) error {
	parts := strings.SplitN(period, "-", 2)
	if _, err := strconv.Atoi(parts[0]); err != nil || len(parts[0]) != 4 {
		return fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
	if len(parts) == 1 {
		return nil
	}
	switch parts[1] {
	case "Q1", "Q2", "Q3", "Q4", "H1", "H2":
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
}
