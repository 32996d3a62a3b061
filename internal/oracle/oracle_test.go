package oracle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledeberg/tiller/internal/domain/intent"
)

var oracleNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func TestToDraft_CreateTask(t *testing.T) {
	args := []byte(`{"title":"Write blog post","estimated_minutes":90,"date":"friday","commit":true}`)
	d, err := toDraft("create_task", args, oracleNow)
	require.NoError(t, err)
	require.Equal(t, intent.KindCreateTask, d.Kind)
	require.Equal(t, "Write blog post", d.Title)
	require.Equal(t, 90, d.EstimatedMinutes)
	require.True(t, d.Commit)
	require.NotNil(t, d.Date)
	require.Equal(t, time.Friday, d.Date.Weekday())
}

func TestToDraft_ObjectiveNormalizesPeriod(t *testing.T) {
	args := []byte(`{"title":"Learn Spanish","period":"primer semestre 2026"}`)
	d, err := toDraft("create_objective", args, oracleNow)
	require.NoError(t, err)
	require.Equal(t, "2026-H1", d.Period)
}

func TestToDraft_BlockNormalizesTimeRange(t *testing.T) {
	args := []byte(`{"title":"Deep work","date":"tomorrow","time_range":"09:00-10:30"}`)
	d, err := toDraft("create_block", args, oracleNow)
	require.NoError(t, err)
	require.True(t, d.HasTimeRange)
	require.Equal(t, 540, d.StartMin)
	require.Equal(t, 630, d.EndMin)
	require.Empty(t, d.Missing())
}

func TestToDraft_KeyResultValue(t *testing.T) {
	args := []byte(`{"target":"revenue","value":120,"has_value":true}`)
	d, err := toDraft("update_key_result", args, oracleNow)
	require.NoError(t, err)
	require.NotNil(t, d.Value)
	require.Equal(t, 120.0, *d.Value)
	require.Empty(t, d.Missing())
}

func TestToDraft_SetCapacityOverrides(t *testing.T) {
	args := []byte(`{"work_hours_per_day":6}`)
	d, err := toDraft("set_capacity", args, oracleNow)
	require.NoError(t, err)
	require.NotNil(t, d.Capacity)
	require.Equal(t, 6, d.Capacity.WorkHoursPerDay)
	require.Zero(t, d.Capacity.BufferPercent, "unmentioned fields stay zero so current settings survive the merge")
}

func TestToDraft_BadInputFailsOver(t *testing.T) {
	_, err := toDraft("order_pizza", []byte(`{}`), oracleNow)
	require.Error(t, err)

	_, err = toDraft("create_objective", []byte(`{"title":"X","period":"whenever"}`), oracleNow)
	require.Error(t, err)

	_, err = toDraft("create_task", []byte(`{not json`), oracleNow)
	require.Error(t, err)
}
