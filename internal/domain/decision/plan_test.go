package decision

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledeberg/tiller/internal/config"
	"github.com/ledeberg/tiller/internal/domain/risk"
	"github.com/ledeberg/tiller/internal/domain/task"
)

var planNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) // Monday, 2026-W10

func planClock() time.Time { return planNow }

func datePtr(t time.Time) *time.Time { return &t }

func newTestEngine(signals risk.Signals) *Engine {
	return NewEngine(risk.StaticProvider{Signals: signals}, nil, planClock)
}

func TestRank_ExcludesInfeasibleCandidates(t *testing.T) {
	e := newTestEngine(risk.Signals{})
	cfg := config.DefaultCapacity()

	tasks := []task.Task{
		{ID: "t1", Title: "small", Kind: task.KindSimple, Status: task.StatusActive, EstimatedMinutes: 30},
		{ID: "t2", Title: "huge", Kind: task.KindSimple, Status: task.StatusActive, EstimatedMinutes: 500},
	}

	ranked := e.Rank(tasks, 120, cfg, risk.Signals{})
	require.Len(t, ranked, 1)
	require.Equal(t, "t1", ranked[0].Task.ID)
	for _, c := range ranked {
		require.LessOrEqual(t, c.EstimatedMinutes, 120)
	}
}

func TestRank_DeterministicTieBreak(t *testing.T) {
	e := newTestEngine(risk.Signals{})
	cfg := config.DefaultCapacity()

	tasks := []task.Task{
		{ID: "b", Kind: task.KindSimple, Status: task.StatusActive, EstimatedMinutes: 30},
		{ID: "a", Kind: task.KindSimple, Status: task.StatusActive, EstimatedMinutes: 30},
	}

	ranked := e.Rank(tasks, 1000, cfg, risk.Signals{})
	require.Len(t, ranked, 2)
	require.Equal(t, "a", ranked[0].Task.ID)
	require.Equal(t, "b", ranked[1].Task.ID)
}

func TestRank_ScoreOrdering(t *testing.T) {
	signals := risk.Signals{Risks: []risk.Signal{
		{KeyResultID: "kr1", Risk: risk.Assessment{Level: risk.LevelHigh}},
	}}
	e := newTestEngine(signals)
	cfg := config.DefaultCapacity()

	tasks := []task.Task{
		{ID: "plain", Kind: task.KindSimple, Status: task.StatusActive, EstimatedMinutes: 60},
		{ID: "urgent", Kind: task.KindSimple, Status: task.StatusActive, EstimatedMinutes: 60,
			DueDate: datePtr(planNow), ObjectiveID: "o1", KeyResultID: "kr1"},
	}

	ranked := e.Rank(tasks, 1000, cfg, signals)
	require.Equal(t, "urgent", ranked[0].Task.ID)
	require.Equal(t, 90.0, ranked[0].Score.Deadline)
	require.Equal(t, 100.0, ranked[0].Score.KRRisk)
	require.Equal(t, 100.0, ranked[0].Score.Linkage)
}

func TestDeadlineScore_Buckets(t *testing.T) {
	cases := []struct {
		due  time.Time
		want float64
	}{
		{planNow.AddDate(0, 0, -1), 100},
		{planNow, 90},
		{planNow.AddDate(0, 0, 1), 80},
		{planNow.AddDate(0, 0, 3), 60},
		{planNow.AddDate(0, 0, 7), 30},
		{planNow.AddDate(0, 0, 14), 10},
	}
	for _, tc := range cases {
		got := deadlineScore(task.Task{DueDate: datePtr(tc.due)}, planNow)
		require.Equal(t, tc.want, got, "due %s", tc.due)
	}
	require.Equal(t, 0.0, deadlineScore(task.Task{}, planNow))
}

func TestGenerateWeeklyPlanPack_Tiers(t *testing.T) {
	signals := risk.Signals{Risks: []risk.Signal{
		{KeyResultID: "kr1", Risk: risk.Assessment{Level: risk.LevelHigh}},
	}}
	e := newTestEngine(signals)
	cfg := config.DefaultCapacity() // weekly usable 1680

	tasks := []task.Task{
		// already committed: 600 minutes of load
		{ID: "committed", Kind: task.KindSimple, Status: task.StatusActive,
			CommittedWeek: "2026-W10", EstimatedMinutes: 600},
		// must-do: due today and risky KR
		{ID: "critical", Kind: task.KindSimple, Status: task.StatusActive, EstimatedMinutes: 120,
			DueDate: datePtr(planNow), ObjectiveID: "o1", KeyResultID: "kr1"},
		// should-do: linked, no urgency
		{ID: "steady", Kind: task.KindSimple, Status: task.StatusActive, EstimatedMinutes: 200,
			ObjectiveID: "o1", KeyResultID: "kr1"},
		// not-this-week: no signal at all
		{ID: "filler", Kind: task.KindSimple, Status: task.StatusActive, EstimatedMinutes: 60},
	}

	pack, err := e.GenerateWeeklyPlanPack(context.Background(), tasks, cfg)
	require.NoError(t, err)
	require.Equal(t, "2026-W10", pack.Week)
	require.Equal(t, 600, pack.CommittedLoad)

	require.Len(t, pack.MustDo, 1)
	require.Equal(t, "critical", pack.MustDo[0].Task.ID)
	require.Len(t, pack.ShouldDo, 1)
	require.Equal(t, "steady", pack.ShouldDo[0].Task.ID)
	require.Len(t, pack.NotThisWeek, 1)
	require.Equal(t, "filler", pack.NotThisWeek[0].Task.ID)

	// no task in two tiers, and planned load within usable capacity
	seen := map[string]int{}
	total := pack.CommittedLoad
	for _, c := range pack.MustDo {
		seen[c.Task.ID]++
		total += c.EstimatedMinutes
	}
	for _, c := range pack.ShouldDo {
		seen[c.Task.ID]++
		total += c.EstimatedMinutes
	}
	for _, c := range pack.NotThisWeek {
		seen[c.Task.ID]++
	}
	for id, n := range seen {
		require.Equal(t, 1, n, "task %s tiered twice", id)
	}
	require.LessOrEqual(t, total, pack.Usable)
	require.Equal(t, total, pack.PlannedLoad)
}

func TestGenerateWeeklyPlanPack_DegradedWithoutProvider(t *testing.T) {
	e := NewEngine(failingProvider{}, nil, planClock)
	cfg := config.DefaultCapacity()

	tasks := []task.Task{
		{ID: "t1", Kind: task.KindSimple, Status: task.StatusActive, EstimatedMinutes: 60,
			DueDate: datePtr(planNow), ObjectiveID: "o1", KeyResultID: "kr1"},
	}

	pack, err := e.GenerateWeeklyPlanPack(context.Background(), tasks, cfg)
	require.NoError(t, err)
	require.Equal(t, "risk signals unavailable", pack.Degraded)
	// still a deterministic, data-backed plan; without risk signals the task
	// lands in should-do on urgency and linkage alone
	require.Empty(t, pack.MustDo)
	require.Len(t, pack.ShouldDo, 1)
}

type failingProvider struct{}

func (failingProvider) FetchRiskSignals(ctx context.Context) (risk.Signals, error) {
	return risk.Signals{}, context.DeadlineExceeded
}

func TestBuildExplainability(t *testing.T) {
	e := newTestEngine(risk.Signals{})

	c := Candidate{
		Task:             task.Task{ID: "t1", Title: "Write report"},
		EstimatedMinutes: 150,
		Score:            Score{Total: 82, Deadline: 90, KRRisk: 100, CapacityFit: 80},
	}

	expl := e.BuildExplainability(c, 400)
	require.Contains(t, expl.Reason, "deadline")
	require.Contains(t, expl.Impact, "150 minutes")
	require.Equal(t, 100, expl.Confidence) // 50+20+20+10 capped
	require.Contains(t, expl.Tradeoff, "large block")

	expl = e.BuildExplainability(c, 30)
	require.Contains(t, expl.Tradeoff, "30 usable minutes")
}
