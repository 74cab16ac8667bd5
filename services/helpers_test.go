package services

import (
	"testing"
	"time"

	"github.com/Dosada05/scrim-scheduler/models"
	"github.com/stretchr/testify/assert"
)

func TestIsValidStatusTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		current models.TournamentStatus
		next    models.TournamentStatus
		want    bool
	}{
		{models.StatusDraft, models.StatusScheduled, true},
		{models.StatusDraft, models.StatusCanceled, true},
		{models.StatusDraft, models.StatusCompleted, false},
		{models.StatusScheduled, models.StatusCompleted, true},
		{models.StatusScheduled, models.StatusCanceled, true},
		{models.StatusScheduled, models.StatusDraft, false},
		{models.StatusCompleted, models.StatusCanceled, false},
		{models.StatusCanceled, models.StatusScheduled, false},
		{models.StatusScheduled, models.StatusScheduled, true},
	}

	for _, tc := range tests {
		got := isValidStatusTransition(tc.current, tc.next)
		assert.Equal(t, tc.want, got, "%s -> %s", tc.current, tc.next)
	}
}

func TestTournamentEndDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		start time.Time
		days  int
		want  time.Time
	}{
		{
			name:  "single day ends on start date",
			start: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
			days:  1,
			want:  time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "full week",
			start: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
			days:  7,
			want:  time.Date(2026, 10, 7, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "crosses month boundary",
			start: time.Date(2026, 10, 30, 0, 0, 0, 0, time.UTC),
			days:  3,
			want:  time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tournamentEndDate(tc.start, tc.days))
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	t.Parallel()

	in := time.Date(2026, 10, 1, 17, 45, 12, 999, time.FixedZone("X", 3600))
	got := normalizeDate(in)

	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), got)
}
