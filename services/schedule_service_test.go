package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/scrim-scheduler/models"
	"github.com/Dosada05/scrim-scheduler/schedule"
	"github.com/Dosada05/scrim-scheduler/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScheduleService(
	tournamentRepo *fakeTournamentRepo,
	teamRepo *fakeTeamRepo,
	scheduleRepo *fakeScheduleRepo,
	uploader *fakeUploader,
) ScheduleService {
	// Нетипизированный nil, иначе интерфейс с nil-указателем внутри
	// не пройдёт проверку uploader == nil в сервисе.
	var up storage.FileUploader
	if uploader != nil {
		up = uploader
	}
	return NewScheduleService(nil, tournamentRepo, teamRepo, scheduleRepo,
		schedule.NewLeastPlayedGenerator(), up, nil, discardLogger())
}

func scheduledTournament(id, organizerID int) *models.Tournament {
	tournament := draftTournament(id, organizerID)
	tournament.Status = models.StatusScheduled
	return tournament
}

func twoDaySchedule() *models.Schedule {
	return &models.Schedule{Days: []models.ScheduleDay{
		{Day: 1, Matches: []models.ScheduledMatch{
			{ID: 1, Teams: []string{"Alpha", "Bravo"}},
			{ID: 2, Teams: []string{"Charlie", "Delta"}},
		}},
		{Day: 2, Matches: []models.ScheduledMatch{
			{ID: 3, Teams: []string{"Alpha", "Charlie"}},
			{ID: 4, Teams: []string{"Bravo", "Delta"}},
		}},
	}}
}

func TestGenerateForbiddenForNonOwner(t *testing.T) {
	t.Parallel()

	repo := &fakeTournamentRepo{
		getByIDFn: func(_ context.Context, id int) (*models.Tournament, error) {
			return draftTournament(id, 7), nil
		},
	}
	svc := newScheduleService(repo, &fakeTeamRepo{}, &fakeScheduleRepo{}, nil)

	_, err := svc.Generate(context.Background(), 5, 9, GenerateOptions{})
	require.ErrorIs(t, err, ErrForbiddenOperation)
}

func TestGenerateStatusRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  models.TournamentStatus
		wantErr error
	}{
		{"already scheduled", models.StatusScheduled, ErrScheduleAlreadyExists},
		{"canceled", models.StatusCanceled, ErrInvalidStatusTransition},
		{"completed", models.StatusCompleted, ErrInvalidStatusTransition},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			repo := &fakeTournamentRepo{
				getByIDFn: func(_ context.Context, id int) (*models.Tournament, error) {
					tournament := draftTournament(id, 7)
					tournament.Status = tc.status
					return tournament, nil
				},
			}
			svc := newScheduleService(repo, &fakeTeamRepo{}, &fakeScheduleRepo{}, nil)

			_, err := svc.Generate(context.Background(), 5, 7, GenerateOptions{})
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestGenerateIncompleteRoster(t *testing.T) {
	t.Parallel()

	repo := &fakeTournamentRepo{
		getByIDFn: func(_ context.Context, id int) (*models.Tournament, error) {
			return draftTournament(id, 7), nil
		},
	}
	teamRepo := &fakeTeamRepo{
		listByTournamentFn: func(_ context.Context, tournamentID int) ([]models.Team, error) {
			return rosterOf(tournamentID, 8), nil // нужно 10
		},
	}
	svc := newScheduleService(repo, teamRepo, &fakeScheduleRepo{}, nil)

	_, err := svc.Generate(context.Background(), 5, 7, GenerateOptions{})
	require.ErrorIs(t, err, ErrRosterIncomplete)
}

func TestGenerateDuplicateRosterNames(t *testing.T) {
	t.Parallel()

	repo := &fakeTournamentRepo{
		getByIDFn: func(_ context.Context, id int) (*models.Tournament, error) {
			return draftTournament(id, 7), nil
		},
	}
	teamRepo := &fakeTeamRepo{
		listByTournamentFn: func(_ context.Context, tournamentID int) ([]models.Team, error) {
			teams := rosterOf(tournamentID, 10)
			teams[9].Name = teams[0].Name
			return teams, nil
		},
	}
	svc := newScheduleService(repo, teamRepo, &fakeScheduleRepo{}, nil)

	_, err := svc.Generate(context.Background(), 5, 7, GenerateOptions{})
	require.ErrorIs(t, err, ErrDuplicateTeamName)
}

func TestRegenerateStatusRules(t *testing.T) {
	t.Parallel()

	t.Run("draft has nothing to regenerate", func(t *testing.T) {
		t.Parallel()
		repo := &fakeTournamentRepo{
			getByIDFn: func(_ context.Context, id int) (*models.Tournament, error) {
				return draftTournament(id, 7), nil
			},
		}
		svc := newScheduleService(repo, &fakeTeamRepo{}, &fakeScheduleRepo{}, nil)

		_, err := svc.Regenerate(context.Background(), 5, 7, GenerateOptions{})
		require.ErrorIs(t, err, ErrScheduleNotGenerated)
	})

	t.Run("canceled", func(t *testing.T) {
		t.Parallel()
		repo := &fakeTournamentRepo{
			getByIDFn: func(_ context.Context, id int) (*models.Tournament, error) {
				tournament := draftTournament(id, 7)
				tournament.Status = models.StatusCanceled
				return tournament, nil
			},
		}
		svc := newScheduleService(repo, &fakeTeamRepo{}, &fakeScheduleRepo{}, nil)

		_, err := svc.Regenerate(context.Background(), 5, 7, GenerateOptions{})
		require.ErrorIs(t, err, ErrRegenerateNotAllowed)
	})

	t.Run("locked once tournament started", func(t *testing.T) {
		t.Parallel()
		repo := &fakeTournamentRepo{
			getByIDFn: func(_ context.Context, id int) (*models.Tournament, error) {
				tournament := scheduledTournament(id, 7)
				tournament.StartDate = normalizeDate(time.Now().UTC()) // старт сегодня
				tournament.EndDate = tournament.StartDate.AddDate(0, 0, 1)
				return tournament, nil
			},
		}
		svc := newScheduleService(repo, &fakeTeamRepo{}, &fakeScheduleRepo{}, nil)

		_, err := svc.Regenerate(context.Background(), 5, 7, GenerateOptions{})
		require.ErrorIs(t, err, ErrRegenerateNotAllowed)
	})
}

func TestGetAssemblesView(t *testing.T) {
	t.Parallel()

	participation := []models.TeamParticipation{
		{TeamName: "Alpha", Matches: 2},
		{TeamName: "Bravo", Matches: 2},
		{TeamName: "Charlie", Matches: 2},
		{TeamName: "Delta", Matches: 2},
	}

	tournamentRepo := &fakeTournamentRepo{
		getByIDFn: func(_ context.Context, id int) (*models.Tournament, error) {
			return scheduledTournament(id, 7), nil
		},
	}
	scheduleRepo := &fakeScheduleRepo{
		getFn: func(_ context.Context, _ int) (*models.Schedule, error) {
			return twoDaySchedule(), nil
		},
		listCountsFn: func(_ context.Context, _ int) ([]models.TeamParticipation, error) {
			return participation, nil
		},
	}
	svc := newScheduleService(tournamentRepo, &fakeTeamRepo{}, scheduleRepo, nil)

	view, err := svc.Get(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, 5, view.TournamentID)
	assert.Equal(t, models.StatusScheduled, view.Status)
	assert.Equal(t, 4, view.TotalMatches)
	assert.InDelta(t, 2.0, view.ImpliedMatchesPerTeam, 1e-9)
	require.Len(t, view.Days, 2)
	assert.Equal(t, "01-10-2026", view.Days[0].Date)
	assert.Equal(t, "02-10-2026", view.Days[1].Date)
	assert.Equal(t, participation, view.Participation)
}

func TestGetScheduleNotGenerated(t *testing.T) {
	t.Parallel()

	tournamentRepo := &fakeTournamentRepo{
		getByIDFn: func(_ context.Context, id int) (*models.Tournament, error) {
			return draftTournament(id, 7), nil
		},
	}
	svc := newScheduleService(tournamentRepo, &fakeTeamRepo{}, &fakeScheduleRepo{}, nil)

	_, err := svc.Get(context.Background(), 5)
	require.ErrorIs(t, err, ErrScheduleNotGenerated)
}

func TestExportCSV(t *testing.T) {
	t.Parallel()

	tournamentRepo := &fakeTournamentRepo{
		getByIDFn: func(_ context.Context, id int) (*models.Tournament, error) {
			return scheduledTournament(id, 7), nil
		},
	}
	scheduleRepo := &fakeScheduleRepo{
		getFn: func(_ context.Context, _ int) (*models.Schedule, error) {
			return &models.Schedule{Days: []models.ScheduleDay{
				{Day: 1, Matches: []models.ScheduledMatch{
					{ID: 1, Teams: []string{"Alpha", "Bravo"}},
					{ID: 2, Teams: []string{"Charlie", "Delta"}},
				}},
			}}, nil
		},
	}
	svc := newScheduleService(tournamentRepo, &fakeTeamRepo{}, scheduleRepo, nil)

	data, filename, err := svc.ExportCSV(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, "tournament_5_schedule.csv", filename)
	want := "Day,Date,Match ID,Teams\n" +
		"Day 1,01-10-2026,1,\"Alpha, Bravo\"\n" +
		"Day 1,01-10-2026,2,\"Charlie, Delta\"\n"
	assert.Equal(t, want, string(data))
}

func TestPublishExportStorageDisabled(t *testing.T) {
	t.Parallel()

	tournamentRepo := &fakeTournamentRepo{
		getByIDFn: func(_ context.Context, id int) (*models.Tournament, error) {
			return scheduledTournament(id, 7), nil
		},
	}
	svc := newScheduleService(tournamentRepo, &fakeTeamRepo{}, &fakeScheduleRepo{}, nil)

	_, err := svc.PublishExport(context.Background(), 5, 7)
	require.ErrorIs(t, err, ErrExportStorageDisabled)
}

func TestPublishExport(t *testing.T) {
	t.Parallel()

	var savedKey string
	tournamentRepo := &fakeTournamentRepo{
		getByIDFn: func(_ context.Context, id int) (*models.Tournament, error) {
			return scheduledTournament(id, 7), nil
		},
		updateExportKeyFn: func(_ context.Context, _ int, exportKey string) error {
			savedKey = exportKey
			return nil
		},
	}
	scheduleRepo := &fakeScheduleRepo{
		getFn: func(_ context.Context, _ int) (*models.Schedule, error) {
			return twoDaySchedule(), nil
		},
	}
	svc := newScheduleService(tournamentRepo, &fakeTeamRepo{}, scheduleRepo, &fakeUploader{})

	location, err := svc.PublishExport(context.Background(), 5, 7)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(savedKey, "exports/5/"), savedKey)
	assert.True(t, strings.HasSuffix(savedKey, ".csv"), savedKey)
	assert.Equal(t, "https://cdn.example.com/"+savedKey, location)
}

func TestPublishExportReplacesPreviousObject(t *testing.T) {
	t.Parallel()

	oldKey := "exports/5/stale.csv"
	tournamentRepo := &fakeTournamentRepo{
		getByIDFn: func(_ context.Context, id int) (*models.Tournament, error) {
			tournament := scheduledTournament(id, 7)
			tournament.ExportKey = &oldKey
			return tournament, nil
		},
	}
	scheduleRepo := &fakeScheduleRepo{
		getFn: func(_ context.Context, _ int) (*models.Schedule, error) {
			return twoDaySchedule(), nil
		},
	}
	var deletedKey string
	uploader := &fakeUploader{
		deleteFn: func(_ context.Context, key string) error {
			deletedKey = key
			return nil
		},
	}
	svc := newScheduleService(tournamentRepo, &fakeTeamRepo{}, scheduleRepo, uploader)

	_, err := svc.PublishExport(context.Background(), 5, 7)
	require.NoError(t, err)
	assert.Equal(t, oldKey, deletedKey)
}

func TestParticipationFromCounts(t *testing.T) {
	t.Parallel()

	roster := []string{"Alpha", "Bravo", "Charlie", "Delta"}
	counts := models.MatchCount{"Alpha": 2, "Bravo": 1, "Charlie": 2, "Delta": 1}

	got := participationFromCounts(roster, counts)

	want := []models.TeamParticipation{
		{TeamName: "Alpha", Matches: 2},
		{TeamName: "Charlie", Matches: 2},
		{TeamName: "Bravo", Matches: 1},
		{TeamName: "Delta", Matches: 1},
	}
	assert.Equal(t, want, got)
}
