package intent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var normNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) // Monday

func TestNormalizePeriod(t *testing.T) {
	cases := map[string]string{
		"Q1 2026":              "2026-Q1",
		"2026-Q3":              "2026-Q3",
		"q2":                   "2026-Q2",
		"first half 2026":      "2026-H1",
		"primer semestre 2026": "2026-H1",
		"segundo semestre":     "2026-H2",
		"segundo trimestre":    "2026-Q2",
		"this quarter":         "2026-Q1",
		"2027":                 "2027",
		"this year":            "2026",
	}
	for in, want := range cases {
		got, err := NormalizePeriod(in, normNow)
		require.NoError(t, err, "input %q", in)
		require.Equal(t, want, got, "input %q", in)
	}
}

func TestNormalizePeriod_Invalid(t *testing.T) {
	for _, in := range []string{"", "whenever", "h3", "Q5"} {
		_, err := NormalizePeriod(in, normNow)
		require.ErrorIs(t, err, ErrInvalidSlot, "input %q", in)
	}
}

func TestNormalizeDate(t *testing.T) {
	today := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	got, err := NormalizeDate("today", normNow)
	require.NoError(t, err)
	require.Equal(t, today, got)

	got, err = NormalizeDate("tomorrow", normNow)
	require.NoError(t, err)
	require.Equal(t, today.AddDate(0, 0, 1), got)

	// "friday" from a Monday resolves to the coming Friday
	got, err = NormalizeDate("friday", normNow)
	require.NoError(t, err)
	require.Equal(t, time.Friday, got.Weekday())
	require.Equal(t, today.AddDate(0, 0, 4), got)

	// naming today's weekday means next week, not today
	got, err = NormalizeDate("monday", normNow)
	require.NoError(t, err)
	require.Equal(t, today.AddDate(0, 0, 7), got)

	got, err = NormalizeDate("2026-03-06", normNow)
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC), got)

	_, err = NormalizeDate("someday", normNow)
	require.ErrorIs(t, err, ErrInvalidSlot)
}

func TestNormalizeTimeRange(t *testing.T) {
	start, end, err := NormalizeTimeRange("09:00-10:30")
	require.NoError(t, err)
	require.Equal(t, 540, start)
	require.Equal(t, 630, end)

	start, end, err = NormalizeTimeRange("9 to 11")
	require.NoError(t, err)
	require.Equal(t, 540, start)
	require.Equal(t, 660, end)

	_, _, err = NormalizeTimeRange("10:00-09:00")
	require.ErrorIs(t, err, ErrInvalidSlot)

	_, _, err = NormalizeTimeRange("whenever")
	require.ErrorIs(t, err, ErrInvalidSlot)
}

func TestNormalizeArea(t *testing.T) {
	areas := DefaultAreas()

	for in, want := range map[string]string{
		"Work":     "work",
		"trabajo":  "work",
		"lear":     "learning",
		"FINANCE":  "finance",
		"finanzas": "finance",
	} {
		got, err := NormalizeArea(in, areas)
		require.NoError(t, err, "input %q", in)
		require.Equal(t, want, got, "input %q", in)
	}

	_, err := NormalizeArea("gardening", areas)
	require.ErrorIs(t, err, ErrInvalidSlot)
}

func TestDraft_SlotFlow(t *testing.T) {
	d := Draft{Kind: KindCreateObjective, Title: "Learn Go"}

	missing := d.Missing()
	require.Equal(t, []Slot{SlotPeriod}, missing)

	err := d.Fill(SlotPeriod, "whenever", normNow, nil)
	require.ErrorIs(t, err, ErrInvalidSlot)
	require.Equal(t, []Slot{SlotPeriod}, d.Missing(), "failed fill must not consume the slot")

	err = d.Fill(SlotPeriod, "primer semestre 2026", normNow, nil)
	require.NoError(t, err)
	require.Empty(t, d.Missing())

	in, err := d.Build()
	require.NoError(t, err)
	co, ok := in.(CreateObjective)
	require.True(t, ok)
	require.Equal(t, "2026-H1", co.Period)
}

func TestDraft_BuildRejectsIncomplete(t *testing.T) {
	d := Draft{Kind: KindCreateBlock, Title: "Deep work"}
	_, err := d.Build()
	require.ErrorIs(t, err, ErrMissingSlot)
}

func TestDispatch_Exhaustive(t *testing.T) {
	v := kindRecorder{}
	for _, in := range []Intent{
		CreateTask{}, UpdateTask{}, CompleteTask{}, DeleteTask{}, CommitTask{},
		CreateObjective{}, UpdateKeyResult{}, ProcessInbox{}, CreateBlock{},
		DeleteBlock{}, PlanWeek{}, RebalanceWeek{}, SetCapacity{},
	} {
		kind, err := Dispatch(in, v)
		require.NoError(t, err)
		require.Equal(t, in.Kind(), kind)
	}
}

type kindRecorder struct{}

func (kindRecorder) CreateTask(i CreateTask) (Kind, error)           { return i.Kind(), nil }
func (kindRecorder) UpdateTask(i UpdateTask) (Kind, error)           { return i.Kind(), nil }
func (kindRecorder) CompleteTask(i CompleteTask) (Kind, error)       { return i.Kind(), nil }
func (kindRecorder) DeleteTask(i DeleteTask) (Kind, error)           { return i.Kind(), nil }
func (kindRecorder) CommitTask(i CommitTask) (Kind, error)           { return i.Kind(), nil }
func (kindRecorder) CreateObjective(i CreateObjective) (Kind, error) { return i.Kind(), nil }
func (kindRecorder) UpdateKeyResult(i UpdateKeyResult) (Kind, error) { return i.Kind(), nil }
func (kindRecorder) ProcessInbox(i ProcessInbox) (Kind, error)       { return i.Kind(), nil }
func (kindRecorder) CreateBlock(i CreateBlock) (Kind, error)         { return i.Kind(), nil }
func (kindRecorder) DeleteBlock(i DeleteBlock) (Kind, error)         { return i.Kind(), nil }
func (kindRecorder) PlanWeek(i PlanWeek) (Kind, error)               { return i.Kind(), nil }
func (kindRecorder) RebalanceWeek(i RebalanceWeek) (Kind, error)     { return i.Kind(), nil }
func (kindRecorder) SetCapacity(i SetCapacity) (Kind, error)         { return i.Kind(), nil }
