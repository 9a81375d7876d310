package planner

import "sort"

// MergeIntervals sorts the given intervals by start and collapses any
// overlap into a single interval. The result is sorted and pairwise
// non-overlapping. Empty input yields an empty result.
func MergeIntervals(intervals []Interval) []Interval {
	if len(intervals) == 0 {
		return []Interval{}
	}

	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := []Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}

	return merged
}

// FreeSlots walks sorted, merged occupied intervals and returns the gaps
// inside the window. Callers pad the occupied list with zero-length
// sentinels at the window edges before merging, so no boundary special
// cases are needed here.
func FreeSlots(occupied []Interval, window Interval) []Interval {
	free := []Interval{}
	cursor := window.Start

	for _, iv := range occupied {
		if iv.Start.After(cursor) {
			end := iv.Start
			if end.After(window.End) {
				end = window.End
			}
			if end.After(cursor) {
				free = append(free, Interval{Start: cursor, End: end})
			}
		}
		if iv.End.After(cursor) {
			cursor = iv.End
		}
	}

	if cursor.Before(window.End) {
		free = append(free, Interval{Start: cursor, End: window.End})
	}

	return free
}
