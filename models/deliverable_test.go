package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	days := func(n int) *time.Time {
		d := now.AddDate(0, 0, n)
		return &d
	}

	tests := []struct {
		name     string
		progress int
		deadline *time.Time
		want     string
	}{
		{"full progress is completed", 100, days(-10), DeliverableStatusCompleted},
		{"over full progress is completed", 120, nil, DeliverableStatusCompleted},
		{"zero progress is upcoming", 0, days(2), DeliverableStatusUpcoming},
		{"negative progress is upcoming", -5, nil, DeliverableStatusUpcoming},
		{"past deadline is at risk", 50, days(-1), DeliverableStatusAtRisk},
		{"due soon with low progress is at risk", 50, days(2), DeliverableStatusAtRisk},
		{"due soon with high progress is in progress", 80, days(2), DeliverableStatusInProgress},
		{"far deadline is in progress", 50, days(30), DeliverableStatusInProgress},
		{"no deadline is in progress", 50, nil, DeliverableStatusInProgress},
		{"completed beats past deadline", 100, days(-30), DeliverableStatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.progress, tt.deadline, now))
		})
	}
}
