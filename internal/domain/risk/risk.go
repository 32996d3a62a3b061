// Package risk derives per-objective risk assessments from key-result
// progress and staleness. The decision engine consumes these as a scoring
// input; a Provider may also be backed by an external source.
package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/ledeberg/tiller/internal/domain/objective"
)

// Level is the severity of a risk assessment.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Assessment describes why a key result is at risk.
type Assessment struct {
	Level   Level    `json:"level"`
	Reasons []string `json:"reasons,omitempty"`
}

// Signal binds an assessment to a key result.
type Signal struct {
	KeyResultID string     `json:"id"`
	Title       string     `json:"title"`
	Risk        Assessment `json:"risk"`
}

// Signals is the full risk picture for a planning pass.
type Signals struct {
	Risks     []Signal `json:"risks"`
	FocusWeek []string `json:"focus_week,omitempty"`
}

// ByKeyResult indexes signals by key result id.
func (s Signals) ByKeyResult() map[string]Signal {
	out := make(map[string]Signal, len(s.Risks))
	for _, sig := range s.Risks {
		out[sig.KeyResultID] = sig
	}
	return out
}

// Provider supplies risk signals. Consumed interface; the engine degrades to
// an empty signal set when a provider is unavailable.
type Provider interface {
	FetchRiskSignals(ctx context.Context) (Signals, error)
}

const (
	stalledAfterDays     = 7
	silentAfterDays      = 14
	behindScheduleMargin = 20 // percentage points behind expected progress
)

// Assessor derives signals from persisted objectives and key results.
type Assessor struct {
	now func() time.Time
}

// NewAssessor creates an assessor. A nil clock uses wall time.
func NewAssessor(now func() time.Time) *Assessor {
	if now == nil {
		now = time.Now
	}
	return &Assessor{now: now}
}

// Assess evaluates every key result whose objective still exists and is
// active. Key results orphaned by an objective deletion are skipped.
func (a *Assessor) Assess(objectives []objective.Objective, keyResults []objective.KeyResult) Signals {
	now := a.now()

	byID := make(map[string]objective.Objective, len(objectives))
	for _, obj := range objectives {
		byID[obj.ID] = obj
	}

	var signals Signals
	for _, kr := range keyResults {
		obj, ok := byID[kr.ObjectiveID]
		if !ok || obj.Status != objective.StatusActive {
			continue
		}

		var reasons []string
		level := LevelLow

		daysSinceUpdate := int(now.Sub(kr.UpdatedAt).Hours() / 24)
		progress := kr.Progress()

		if daysSinceUpdate >= silentAfterDays {
			level = LevelHigh
			reasons = append(reasons, fmt.Sprintf("no update in %d days", daysSinceUpdate))
		} else if daysSinceUpdate >= stalledAfterDays && kr.CurrentValue == kr.StartValue {
			level = LevelHigh
			reasons = append(reasons, fmt.Sprintf("stalled: no progress in %d days", daysSinceUpdate))
		}

		expected := objective.ExpectedProgress(obj.Period, now)
		if expected-progress >= behindScheduleMargin {
			if level != LevelHigh {
				level = LevelMedium
			}
			reasons = append(reasons, fmt.Sprintf("progress %.0f%% trails expected %.0f%%", progress, expected))
		}

		signals.Risks = append(signals.Risks, Signal{
			KeyResultID: kr.ID,
			Title:       kr.Title,
			Risk:        Assessment{Level: level, Reasons: reasons},
		})
	}
	return signals
}

// StaticProvider adapts a precomputed assessment to the Provider interface.
type StaticProvider struct {
	Signals Signals
}

func (p StaticProvider) FetchRiskSignals(ctx context.Context) (Signals, error) {
	return p.Signals, nil
}
