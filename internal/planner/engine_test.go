package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTaskStore struct {
	tasks     []Task
	scheduled map[int]time.Time
	failFetch bool
	failWrite bool
}

func (f *fakeTaskStore) IncompleteByUser(_ context.Context, _ int) ([]Task, error) {
	if f.failFetch {
		return nil, errors.New("connection refused")
	}
	return f.tasks, nil
}

func (f *fakeTaskStore) SetScheduledTime(_ context.Context, taskID int, at time.Time) error {
	if f.failWrite {
		return errors.New("write failed")
	}
	if f.scheduled == nil {
		f.scheduled = map[int]time.Time{}
	}
	f.scheduled[taskID] = at
	return nil
}

func (f *fakeTaskStore) MarkSlipped(_ context.Context, taskID, priority int) error {
	if f.failWrite {
		return errors.New("write failed")
	}
	for i := range f.tasks {
		if f.tasks[i].ID == taskID {
			f.tasks[i].Priority = priority
			f.tasks[i].ScheduledTime = nil
		}
	}
	return nil
}

type fakeRoutineStore struct {
	routines []Routine
	fail     bool
}

func (f *fakeRoutineStore) ActiveOn(_ context.Context, _ int, weekday time.Weekday) ([]Routine, error) {
	if f.fail {
		return nil, errors.New("connection refused")
	}
	var out []Routine
	for _, r := range f.routines {
		if r.OccursOn(weekday) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeReflectionStore struct {
	byID   map[int]Reflection
	recent []Reflection
	fail   bool
}

func (f *fakeReflectionStore) ByID(_ context.Context, id int) (Reflection, bool, error) {
	if f.fail {
		return Reflection{}, false, errors.New("connection refused")
	}
	r, ok := f.byID[id]
	return r, ok, nil
}

func (f *fakeReflectionStore) RecentByUser(_ context.Context, _ int, _ time.Time, _ int) ([]Reflection, error) {
	if f.fail {
		return nil, errors.New("connection refused")
	}
	return f.recent, nil
}

type fakeUserStore struct {
	hour int
}

func (f *fakeUserStore) OptimalStudyHour(_ context.Context, _ int) (int, error) {
	return f.hour, nil
}

func newTestEngine(ts *fakeTaskStore, rs *fakeRoutineStore, fs *fakeReflectionStore) *Engine {
	e := NewEngine(ts, rs, fs, &fakeUserStore{hour: 14})
	e.Now = func() time.Time { return noon }
	return e
}

func TestGenerateDailyBlueprint_PersistsFirstSessionOnly(t *testing.T) {
	ts := &fakeTaskStore{tasks: []Task{task(1, 3, 200)}}
	e := newTestEngine(ts, &fakeRoutineStore{}, &fakeReflectionStore{})

	bp := e.GenerateDailyBlueprint(context.Background(), 1, day)

	require.False(t, bp.Degraded)
	require.Len(t, bp.ScheduledTasks, 3) // 90 + 90 + 20

	// only the first session's start is written back
	require.Contains(t, ts.scheduled, 1)
	assert.Equal(t, bp.ScheduledTasks[0].Start, ts.scheduled[1])
}

func TestGenerateDailyBlueprint_DegradedOnFetchError(t *testing.T) {
	e := newTestEngine(&fakeTaskStore{failFetch: true}, &fakeRoutineStore{}, &fakeReflectionStore{})

	bp := e.GenerateDailyBlueprint(context.Background(), 1, day)

	assert.True(t, bp.Degraded)
	assert.NotEmpty(t, bp.Error)
	assert.NotNil(t, bp.Routines)
	assert.NotNil(t, bp.ScheduledTasks)
	assert.NotNil(t, bp.UnscheduledTasks)
	assert.Empty(t, bp.ScheduledTasks)
}

func TestGenerateDailyBlueprint_Conservation(t *testing.T) {
	// routine eats all but the last 30 minutes of the window
	long := Routine{ID: 9, Name: "Workshop", Type: "fixed_class",
		DaysOfWeek: []int{0, 1, 2, 3, 4, 5, 6}, StartTime: "06:00", Duration: 990}
	ts := &fakeTaskStore{tasks: []Task{task(1, 3, 30), task(2, 3, 30)}}
	e := newTestEngine(ts, &fakeRoutineStore{routines: []Routine{long}}, &fakeReflectionStore{})

	bp := e.GenerateDailyBlueprint(context.Background(), 1, day)

	scheduledIDs := map[int]bool{}
	for _, s := range bp.ScheduledTasks {
		scheduledIDs[s.TaskID] = true
	}
	assert.Equal(t, 2, len(scheduledIDs)+len(bp.UnscheduledTasks))
	assert.Len(t, bp.UnscheduledTasks, 1)
}

func TestGenerateDailyBlueprint_WriteFailureStillReturnsBlueprint(t *testing.T) {
	ts := &fakeTaskStore{tasks: []Task{task(1, 3, 60)}, failWrite: true}
	e := newTestEngine(ts, &fakeRoutineStore{}, &fakeReflectionStore{})

	bp := e.GenerateDailyBlueprint(context.Background(), 1, day)

	assert.False(t, bp.Degraded)
	assert.Len(t, bp.ScheduledTasks, 1)
}

func TestRescheduleSlippedTasks_NotFound(t *testing.T) {
	e := newTestEngine(&fakeTaskStore{}, &fakeRoutineStore{}, &fakeReflectionStore{byID: map[int]Reflection{}})

	res := e.RescheduleSlippedTasks(context.Background(), 42)

	assert.Equal(t, "reflection not found", res.Error)
	assert.Zero(t, res.UpdatedCount)
}

func TestRescheduleSlippedTasks_MissingTaskList(t *testing.T) {
	fs := &fakeReflectionStore{byID: map[int]Reflection{
		7: {ID: 7, UserID: 1, UncompletedTasks: nil},
	}}
	e := newTestEngine(&fakeTaskStore{}, &fakeRoutineStore{}, fs)

	res := e.RescheduleSlippedTasks(context.Background(), 7)

	assert.NotEmpty(t, res.Error)
}

func TestRescheduleSlippedTasks_Idempotent(t *testing.T) {
	old := at(8, 0)
	ts := &fakeTaskStore{tasks: []Task{
		func() Task { tk := task(1, 2, 60); tk.ScheduledTime = &old; return tk }(),
		func() Task { tk := task(2, 4, 60); tk.ScheduledTime = &old; return tk }(),
	}}
	fs := &fakeReflectionStore{byID: map[int]Reflection{
		7: {ID: 7, UserID: 1, UncompletedTasks: []int{1, 2}},
	}}
	e := newTestEngine(ts, &fakeRoutineStore{}, fs)

	first := e.RescheduleSlippedTasks(context.Background(), 7)
	second := e.RescheduleSlippedTasks(context.Background(), 7)

	assert.Equal(t, 2, first.UpdatedCount)
	assert.Equal(t, 2, second.UpdatedCount)
	for _, tk := range ts.tasks {
		assert.Equal(t, MaxPriority, tk.Priority)
		assert.Nil(t, tk.ScheduledTime)
	}
}

func TestRescheduleSlippedTasks_EmptyListSucceedsWithZero(t *testing.T) {
	fs := &fakeReflectionStore{byID: map[int]Reflection{
		7: {ID: 7, UserID: 1, UncompletedTasks: []int{}},
	}}
	e := newTestEngine(&fakeTaskStore{}, &fakeRoutineStore{}, fs)

	res := e.RescheduleSlippedTasks(context.Background(), 7)

	assert.Empty(t, res.Error)
	assert.Zero(t, res.UpdatedCount)
}

func TestPredictFocusScore_NoHistoryFlatNeutral(t *testing.T) {
	e := newTestEngine(&fakeTaskStore{}, &fakeRoutineStore{}, &fakeReflectionStore{})

	pred := e.PredictFocusScore(context.Background(), 1, nil)

	assert.False(t, pred.Degraded)
	assert.InDelta(t, 60.0, pred.Baseline, 0.001)
	require.Len(t, pred.Hours, 24)
	for _, h := range pred.Hours {
		assert.Equal(t, 60, h.Score)
	}
}

func TestPredictFocusScore_DegradedOnStoreError(t *testing.T) {
	e := newTestEngine(&fakeTaskStore{}, &fakeRoutineStore{}, &fakeReflectionStore{fail: true})

	pred := e.PredictFocusScore(context.Background(), 1, nil)

	assert.True(t, pred.Degraded)
	assert.NotEmpty(t, pred.Error)
	assert.InDelta(t, 60.0, pred.Baseline, 0.001)
	assert.Empty(t, pred.Hours)
}

func TestPredictFocusScore_WithHistoryBounds(t *testing.T) {
	e := newTestEngine(&fakeTaskStore{}, &fakeRoutineStore{}, &fakeReflectionStore{})

	// newest first, as the store would return them
	history := []Reflection{reflection(9, 8), reflection(4, 5), reflection(2, 3)}
	pred := e.PredictFocusScore(context.Background(), 1, history)

	assert.False(t, pred.Degraded)
	require.Len(t, pred.Hours, 24)
	for _, h := range pred.Hours {
		assert.GreaterOrEqual(t, h.Score, 0)
		assert.LessOrEqual(t, h.Score, 100)
	}
}

func TestPredictFocusScore_RecentReflectionWeighsMore(t *testing.T) {
	e := newTestEngine(&fakeTaskStore{}, &fakeRoutineStore{}, &fakeReflectionStore{})

	strongRecent := e.PredictFocusScore(context.Background(), 1, []Reflection{reflection(8, 8), reflection(1, 1)})
	weakRecent := e.PredictFocusScore(context.Background(), 1, []Reflection{reflection(1, 1), reflection(8, 8)})

	assert.Greater(t, strongRecent.Baseline, weakRecent.Baseline)
}

func TestDynamicAdjuster_UnderThreshold(t *testing.T) {
	e := newTestEngine(&fakeTaskStore{}, &fakeRoutineStore{}, &fakeReflectionStore{})

	res := e.DynamicAdjuster(context.Background(), 1, []Session{
		{TaskID: 1, Minutes: 1500, Priority: 3},
		{TaskID: 2, Minutes: 1500, Priority: 3},
	})

	assert.False(t, res.Overloaded)
	assert.Equal(t, 3000, res.TotalMinutes)
	assert.Nil(t, res.Suggestion)
}

func TestDynamicAdjuster_OverloadSuggestsDeferral(t *testing.T) {
	e := newTestEngine(&fakeTaskStore{}, &fakeRoutineStore{}, &fakeReflectionStore{})

	start := at(16, 0)
	sessions := []Session{
		{TaskID: 1, Title: "Thesis", Minutes: 1600, Priority: 5, Start: at(9, 0)},
		{TaskID: 2, Title: "Lab prep", Minutes: 1555, Priority: 4, Start: at(11, 0)},
		{TaskID: 3, Title: "Flashcards", Minutes: 45, Priority: 1, Start: start},
	}

	res := e.DynamicAdjuster(context.Background(), 1, sessions)

	assert.True(t, res.Overloaded)
	assert.Equal(t, 3200, res.TotalMinutes)
	require.NotNil(t, res.Suggestion)
	assert.Equal(t, 3, res.Suggestion.TaskID)
	assert.Equal(t, start.AddDate(0, 0, 1), res.Suggestion.SuggestedFor)
}

func TestDynamicAdjuster_OverloadNoCandidate(t *testing.T) {
	e := newTestEngine(&fakeTaskStore{}, &fakeRoutineStore{}, &fakeReflectionStore{})

	res := e.DynamicAdjuster(context.Background(), 1, []Session{
		{TaskID: 1, Minutes: 3100, Priority: 3},
	})

	assert.True(t, res.Overloaded)
	assert.Nil(t, res.Suggestion)
}
