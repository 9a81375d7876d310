package routines

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	valid := createRequest{
		Name:       "Sleep",
		Type:       "sleep",
		DaysOfWeek: []int{0, 1, 2, 3, 4, 5, 6},
		StartTime:  "23:00",
		Duration:   420,
	}

	cases := []struct {
		name   string
		mutate func(*createRequest)
		want   string
	}{
		{"ok", func(_ *createRequest) {}, ""},
		{"blank name", func(b *createRequest) { b.Name = "  " }, "name is required"},
		{"unknown type", func(b *createRequest) { b.Type = "gaming" }, "invalid type"},
		{"no days", func(b *createRequest) { b.DaysOfWeek = nil }, "days_of_week is required"},
		{"day out of range", func(b *createRequest) { b.DaysOfWeek = []int{7} }, "days_of_week values must be 0..6"},
		{"duplicate day", func(b *createRequest) { b.DaysOfWeek = []int{1, 1} }, "days_of_week values must be unique"},
		{"bad time", func(b *createRequest) { b.StartTime = "25:99" }, "start_time must be HH:MM"},
		{"short duration", func(b *createRequest) { b.Duration = 3 }, "duration must be at least 5 minutes"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := valid
			tc.mutate(&body)
			assert.Equal(t, tc.want, validate(body))
		})
	}
}
