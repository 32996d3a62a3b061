// Package guardrail re-validates a pending mutation against a fresh snapshot
// at confirmation time. The preview was computed against older state; the
// guardrail is the last check before execution.
package guardrail

import (
	"fmt"

	"github.com/ledeberg/tiller/internal/domain/capacity"
	"github.com/ledeberg/tiller/internal/domain/preview"
	"github.com/ledeberg/tiller/internal/domain/task"
	"github.com/ledeberg/tiller/internal/repository"
)

// Verdict is the outcome of a guardrail check.
type Verdict struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Check vetoes a preview that would push the week over capacity, or that
// adds load to a week already over capacity. Load-reducing and load-neutral
// changes always pass.
func Check(snap *repository.Snapshot, p *preview.Preview) Verdict {
	delta := p.Impact.MinutesDelta
	if delta <= 0 {
		return Verdict{Allowed: true}
	}

	cfg := snap.Capacity
	week := task.WeekToken(snap.ReadAt)
	weekly := capacity.Weekly(cfg)
	committed := capacity.WeeklyLoad(snap.Tasks, week, cfg.DefaultTaskMinutes)

	overload := capacity.DetectOverload(committed, weekly.UsableMinutes)
	if overload.IsOverloaded {
		return Verdict{
			Allowed: false,
			Reason: fmt.Sprintf("This week is already over capacity (%d of %d usable minutes); adding %d more is blocked. Rebalance first.",
				committed, weekly.UsableMinutes, delta),
		}
	}

	if committed+delta > weekly.UsableMinutes {
		return Verdict{
			Allowed: false,
			Reason: fmt.Sprintf("Adding %d minutes would exceed this week's capacity (%d committed, %d usable).",
				delta, committed, weekly.UsableMinutes),
		}
	}

	return Verdict{Allowed: true}
}
