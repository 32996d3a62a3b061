package decision

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/ledeberg/tiller/internal/config"
	"github.com/ledeberg/tiller/internal/domain/capacity"
	"github.com/ledeberg/tiller/internal/domain/risk"
	"github.com/ledeberg/tiller/internal/domain/task"
)

// Tier names for the weekly plan pack.
type Tier string

const (
	TierMustDo      Tier = "must_do"
	TierShouldDo    Tier = "should_do"
	TierNotThisWeek Tier = "not_this_week"
)

// Candidate is a ranked, feasible task.
type Candidate struct {
	Task             task.Task `json:"task"`
	Score            Score     `json:"score"`
	EstimatedMinutes int       `json:"estimated_minutes"`
}

// PlanPack is the tiered weekly plan.
type PlanPack struct {
	Week          string      `json:"week"`
	MustDo        []Candidate `json:"must_do"`
	ShouldDo      []Candidate `json:"should_do"`
	NotThisWeek   []Candidate `json:"not_this_week"`
	CommittedLoad int         `json:"committed_load"`
	PlannedLoad   int         `json:"planned_load"`
	Usable        int         `json:"usable_minutes"`
	Degraded      string      `json:"degraded,omitempty"`
}

// Explainability is the payload surfaced next to a recommended action.
type Explainability struct {
	Reason     string `json:"reason"`
	Impact     string `json:"impact"`
	Tradeoff   string `json:"tradeoff,omitempty"`
	Confidence int    `json:"confidence"`
}

// Engine scores and tiers candidate tasks.
type Engine struct {
	provider risk.Provider
	logger   *slog.Logger
	now      func() time.Time
}

// NewEngine creates a decision engine. A nil clock uses wall time.
func NewEngine(provider risk.Provider, logger *slog.Logger, now func() time.Time) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{provider: provider, logger: logger, now: now}
}

// Rank scores uncommitted active tasks, drops infeasible ones (hard capacity
// constraint), and sorts by descending weighted score with task-id tie-break.
func (e *Engine) Rank(tasks []task.Task, remaining int, cfg config.CapacityConfig, signals risk.Signals) []Candidate {
	byKR := signals.ByKeyResult()
	now := e.now()
	week := task.WeekToken(now)

	var candidates []Candidate
	for _, t := range tasks {
		if t.Status != task.StatusActive || t.CommittedThisWeek(week) {
			continue
		}
		estimate := t.PlannedMinutes(cfg.DefaultTaskMinutes)
		if estimate <= 0 {
			continue
		}
		score := scoreTask(t, remaining, cfg.DefaultTaskMinutes, byKR, now)
		if score.CapacityFit == 0 {
			// infeasible: excluded before ranking, not merely scored low
			continue
		}
		candidates = append(candidates, Candidate{Task: t, Score: score, EstimatedMinutes: estimate})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score.Total != candidates[j].Score.Total {
			return candidates[i].Score.Total > candidates[j].Score.Total
		}
		return candidates[i].Task.ID < candidates[j].Task.ID
	})
	return candidates
}

// GenerateWeeklyPlanPack walks the ranked list greedily, tracking running
// used minutes from the current committed load. Greedy bin-packing is a
// deliberate simplification; it is order-dependent and not globally optimal.
func (e *Engine) GenerateWeeklyPlanPack(ctx context.Context, tasks []task.Task, cfg config.CapacityConfig) (*PlanPack, error) {
	signals, degraded := e.fetchSignals(ctx)

	now := e.now()
	week := task.WeekToken(now)
	weekly := capacity.Weekly(cfg)
	committed := capacity.WeeklyLoad(tasks, week, cfg.DefaultTaskMinutes)
	remaining := weekly.UsableMinutes - committed
	if remaining < 0 {
		remaining = 0
	}

	pack := &PlanPack{
		Week:          week,
		CommittedLoad: committed,
		PlannedLoad:   committed,
		Usable:        weekly.UsableMinutes,
		Degraded:      degraded,
	}

	ranked := e.Rank(tasks, remaining, cfg, signals)
	used := committed
	for _, c := range ranked {
		fits := used+c.EstimatedMinutes <= weekly.UsableMinutes
		switch {
		case fits && c.Score.Total >= 70 && (c.Score.Deadline >= 60 || c.Score.KRRisk >= 60):
			pack.MustDo = append(pack.MustDo, c)
			used += c.EstimatedMinutes
		case fits && c.Score.Total >= 40:
			pack.ShouldDo = append(pack.ShouldDo, c)
			used += c.EstimatedMinutes
		default:
			pack.NotThisWeek = append(pack.NotThisWeek, c)
		}
	}
	pack.PlannedLoad = used

	e.logger.Debug("weekly plan pack",
		"week", week,
		"must_do", len(pack.MustDo),
		"should_do", len(pack.ShouldDo),
		"not_this_week", len(pack.NotThisWeek),
		"planned_load", pack.PlannedLoad,
		"usable", pack.Usable)

	return pack, nil
}

// fetchSignals degrades to an empty signal set when the provider is down.
func (e *Engine) fetchSignals(ctx context.Context) (risk.Signals, string) {
	if e.provider == nil {
		return risk.Signals{}, ""
	}
	signals, err := e.provider.FetchRiskSignals(ctx)
	if err != nil {
		e.logger.Warn("risk provider unavailable, planning without risk signals", "error", err)
		return risk.Signals{}, "risk signals unavailable"
	}
	return signals, ""
}

// BuildExplainability narrates why a candidate was recommended.
func (e *Engine) BuildExplainability(c Candidate, remainingAfter int) Explainability {
	var reasons []string
	if c.Score.Deadline >= 60 {
		reasons = append(reasons, "its deadline is close")
	}
	if c.Score.KRRisk >= 60 {
		reasons = append(reasons, "its key result is at risk")
	}
	if c.Score.CapacityFit >= 80 {
		reasons = append(reasons, "it fits comfortably in remaining capacity")
	}
	if c.Score.Linkage >= 70 {
		reasons = append(reasons, "it advances a stated objective")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "it scores highest among feasible work")
	}

	expl := Explainability{
		Reason: fmt.Sprintf("Recommended because %s (score %.0f).", strings.Join(reasons, ", "), c.Score.Total),
		Impact: fmt.Sprintf("Committing %q adds %d minutes to this week.", c.Task.Title, c.EstimatedMinutes),
	}

	if remainingAfter < 60 {
		expl.Tradeoff = fmt.Sprintf("Only %d usable minutes would remain this week.", remainingAfter)
	} else if c.EstimatedMinutes > 120 {
		expl.Tradeoff = fmt.Sprintf("This is a large block of %d minutes.", c.EstimatedMinutes)
	}

	confidence := 50
	if c.Score.Deadline >= 60 {
		confidence += 20
	}
	if c.Score.KRRisk >= 60 {
		confidence += 20
	}
	if c.Score.CapacityFit >= 80 {
		confidence += 10
	}
	if confidence > 100 {
		confidence = 100
	}
	expl.Confidence = confidence

	return expl
}
