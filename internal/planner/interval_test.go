package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-03-02 is a Monday.
var day = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 2, hour, min, 0, 0, time.UTC)
}

func iv(h1, m1, h2, m2 int) Interval {
	return Interval{Start: at(h1, m1), End: at(h2, m2)}
}

func TestMergeIntervals_Empty(t *testing.T) {
	assert.Empty(t, MergeIntervals(nil))
	assert.Empty(t, MergeIntervals([]Interval{}))
}

func TestMergeIntervals_Overlapping(t *testing.T) {
	merged := MergeIntervals([]Interval{
		iv(13, 0, 14, 0),
		iv(10, 0, 11, 0),
		iv(10, 30, 12, 0),
	})

	require.Len(t, merged, 2)
	assert.Equal(t, iv(10, 0, 12, 0), merged[0])
	assert.Equal(t, iv(13, 0, 14, 0), merged[1])
}

func TestMergeIntervals_TouchingMerge(t *testing.T) {
	merged := MergeIntervals([]Interval{
		iv(9, 0, 10, 0),
		iv(10, 0, 11, 0),
	})

	require.Len(t, merged, 1)
	assert.Equal(t, iv(9, 0, 11, 0), merged[0])
}

func TestMergeIntervals_Contained(t *testing.T) {
	merged := MergeIntervals([]Interval{
		iv(9, 0, 12, 0),
		iv(10, 0, 11, 0),
	})

	require.Len(t, merged, 1)
	assert.Equal(t, iv(9, 0, 12, 0), merged[0])
}

func TestMergeIntervals_SortedNonOverlapping(t *testing.T) {
	input := []Interval{
		iv(20, 0, 21, 0),
		iv(6, 30, 7, 15),
		iv(7, 0, 8, 0),
		iv(12, 0, 12, 45),
	}

	merged := MergeIntervals(input)

	for i := 1; i < len(merged); i++ {
		assert.True(t, merged[i-1].End.Before(merged[i].Start),
			"merged intervals must be sorted and disjoint")
	}

	// covered time is preserved
	want := iv(6, 30, 8, 0).Minutes() + iv(12, 0, 12, 45).Minutes() + iv(20, 0, 21, 0).Minutes()
	got := 0
	for _, m := range merged {
		got += m.Minutes()
	}
	assert.Equal(t, want, got)
}

func TestFreeSlots_Gaps(t *testing.T) {
	window := iv(6, 0, 23, 0)
	occupied := []Interval{iv(8, 0, 9, 0), iv(12, 0, 13, 0)}

	free := FreeSlots(occupied, window)

	require.Len(t, free, 3)
	assert.Equal(t, iv(6, 0, 8, 0), free[0])
	assert.Equal(t, iv(9, 0, 12, 0), free[1])
	assert.Equal(t, iv(13, 0, 23, 0), free[2])
}

func TestFreeSlots_EmptyOccupied(t *testing.T) {
	window := iv(6, 0, 23, 0)

	free := FreeSlots(nil, window)

	require.Len(t, free, 1)
	assert.Equal(t, window, free[0])
}

func TestFreeSlots_FullyOccupied(t *testing.T) {
	window := iv(6, 0, 23, 0)

	free := FreeSlots([]Interval{window}, window)

	assert.Empty(t, free)
}

// free slots plus occupied time must tile the window exactly
func TestFreeSlots_Completeness(t *testing.T) {
	window := iv(6, 0, 23, 0)
	occupied := MergeIntervals([]Interval{
		iv(7, 0, 8, 30),
		iv(8, 0, 9, 0),
		iv(14, 0, 15, 0),
	})

	free := FreeSlots(occupied, window)

	total := 0
	for _, f := range free {
		total += f.Minutes()
	}
	for _, o := range occupied {
		total += o.Minutes()
	}
	assert.Equal(t, window.Minutes(), total)

	for _, f := range free {
		for _, o := range occupied {
			assert.False(t, f.Start.Before(o.End) && o.Start.Before(f.End),
				"free slot %v overlaps occupied %v", f, o)
		}
	}
}

func TestFreeSlots_OccupiedOutsideWindowClipped(t *testing.T) {
	window := iv(6, 0, 23, 0)
	// sleep routine running past midnight into the next day
	occupied := []Interval{{Start: at(23, 0), End: at(23, 0).Add(7 * time.Hour)}}

	free := FreeSlots(occupied, window)

	require.Len(t, free, 1)
	assert.Equal(t, window, free[0])
}
