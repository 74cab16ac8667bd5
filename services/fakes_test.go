package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Dosada05/scrim-scheduler/models"
	"github.com/Dosada05/scrim-scheduler/repositories"
	"github.com/Dosada05/scrim-scheduler/storage"
)

// Фейки репозиториев на функциях-полях: тест задаёт только то, что ему
// нужно, остальные методы возвращают нули или not found.

type fakeUserRepo struct {
	createFn     func(ctx context.Context, user *models.User) error
	getByEmailFn func(ctx context.Context, email string) (*models.User, error)
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, user)
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getByEmailFn == nil {
		return nil, repositories.ErrUserNotFound
	}
	return f.getByEmailFn(ctx, email)
}

type fakeTournamentRepo struct {
	createFn          func(ctx context.Context, tournament *models.Tournament) error
	getByIDFn         func(ctx context.Context, id int) (*models.Tournament, error)
	listByOrganizerFn func(ctx context.Context, organizerID int, filter repositories.TournamentFilter) ([]*models.Tournament, error)
	updateDetailsFn   func(ctx context.Context, tournament *models.Tournament) error
	updateStatusFn    func(ctx context.Context, id int, status models.TournamentStatus) error
	updateExportKeyFn func(ctx context.Context, id int, exportKey string) error
	deleteFn          func(ctx context.Context, id int) error
	listEndedFn       func(ctx context.Context, before time.Time) ([]*models.Tournament, error)
	countFn           func(ctx context.Context, organizerID int, status *models.TournamentStatus) (int, error)
}

func (f *fakeTournamentRepo) Create(ctx context.Context, tournament *models.Tournament) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, tournament)
}

func (f *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	if f.getByIDFn == nil {
		return nil, repositories.ErrTournamentNotFound
	}
	return f.getByIDFn(ctx, id)
}

func (f *fakeTournamentRepo) ListByOrganizer(ctx context.Context, organizerID int, filter repositories.TournamentFilter) ([]*models.Tournament, error) {
	if f.listByOrganizerFn == nil {
		return []*models.Tournament{}, nil
	}
	return f.listByOrganizerFn(ctx, organizerID, filter)
}

func (f *fakeTournamentRepo) UpdateDetails(ctx context.Context, tournament *models.Tournament) error {
	if f.updateDetailsFn == nil {
		return nil
	}
	return f.updateDetailsFn(ctx, tournament)
}

func (f *fakeTournamentRepo) UpdateStatus(ctx context.Context, _ repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	if f.updateStatusFn == nil {
		return nil
	}
	return f.updateStatusFn(ctx, id, status)
}

func (f *fakeTournamentRepo) UpdateExportKey(ctx context.Context, id int, exportKey string) error {
	if f.updateExportKeyFn == nil {
		return nil
	}
	return f.updateExportKeyFn(ctx, id, exportKey)
}

func (f *fakeTournamentRepo) Delete(ctx context.Context, id int) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(ctx, id)
}

func (f *fakeTournamentRepo) ListScheduledEndedBefore(ctx context.Context, before time.Time) ([]*models.Tournament, error) {
	if f.listEndedFn == nil {
		return []*models.Tournament{}, nil
	}
	return f.listEndedFn(ctx, before)
}

func (f *fakeTournamentRepo) CountByOrganizer(ctx context.Context, organizerID int, status *models.TournamentStatus) (int, error) {
	if f.countFn == nil {
		return 0, nil
	}
	return f.countFn(ctx, organizerID, status)
}

type fakeTeamRepo struct {
	createFn            func(ctx context.Context, team *models.Team) error
	getByIDFn           func(ctx context.Context, id int) (*models.Team, error)
	listByTournamentFn  func(ctx context.Context, tournamentID int) ([]models.Team, error)
	deleteFn            func(ctx context.Context, id int) error
	countByTournamentFn func(ctx context.Context, tournamentID int) (int, error)
	countByOrganizerFn  func(ctx context.Context, organizerID int) (int, error)
}

func (f *fakeTeamRepo) Create(ctx context.Context, team *models.Team) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, team)
}

func (f *fakeTeamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	if f.getByIDFn == nil {
		return nil, repositories.ErrTeamNotFound
	}
	return f.getByIDFn(ctx, id)
}

func (f *fakeTeamRepo) ListByTournament(ctx context.Context, tournamentID int) ([]models.Team, error) {
	if f.listByTournamentFn == nil {
		return []models.Team{}, nil
	}
	return f.listByTournamentFn(ctx, tournamentID)
}

func (f *fakeTeamRepo) Delete(ctx context.Context, id int) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(ctx, id)
}

func (f *fakeTeamRepo) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	if f.countByTournamentFn == nil {
		return 0, nil
	}
	return f.countByTournamentFn(ctx, tournamentID)
}

func (f *fakeTeamRepo) CountByOrganizer(ctx context.Context, organizerID int) (int, error) {
	if f.countByOrganizerFn == nil {
		return 0, nil
	}
	return f.countByOrganizerFn(ctx, organizerID)
}

type fakeScheduleRepo struct {
	saveScheduleFn func(ctx context.Context, tournamentID int, sched *models.Schedule) error
	saveCountsFn   func(ctx context.Context, tournamentID int, roster []string, counts models.MatchCount) error
	getFn          func(ctx context.Context, tournamentID int) (*models.Schedule, error)
	listCountsFn   func(ctx context.Context, tournamentID int) ([]models.TeamParticipation, error)
	deleteFn       func(ctx context.Context, tournamentID int) error
	countMatchesFn func(ctx context.Context, organizerID int) (int, error)
	countOnDateFn  func(ctx context.Context, organizerID int, date time.Time) (int, error)
}

func (f *fakeScheduleRepo) SaveSchedule(ctx context.Context, _ repositories.SQLExecutor, tournamentID int, sched *models.Schedule) error {
	if f.saveScheduleFn == nil {
		return nil
	}
	return f.saveScheduleFn(ctx, tournamentID, sched)
}

func (f *fakeScheduleRepo) SaveTeamCounts(ctx context.Context, _ repositories.SQLExecutor, tournamentID int, roster []string, counts models.MatchCount) error {
	if f.saveCountsFn == nil {
		return nil
	}
	return f.saveCountsFn(ctx, tournamentID, roster, counts)
}

func (f *fakeScheduleRepo) GetByTournament(ctx context.Context, tournamentID int) (*models.Schedule, error) {
	if f.getFn == nil {
		return nil, repositories.ErrScheduleNotFound
	}
	return f.getFn(ctx, tournamentID)
}

func (f *fakeScheduleRepo) ListTeamCounts(ctx context.Context, tournamentID int) ([]models.TeamParticipation, error) {
	if f.listCountsFn == nil {
		return []models.TeamParticipation{}, nil
	}
	return f.listCountsFn(ctx, tournamentID)
}

func (f *fakeScheduleRepo) DeleteByTournament(ctx context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(ctx, tournamentID)
}

func (f *fakeScheduleRepo) CountMatchesByOrganizer(ctx context.Context, organizerID int) (int, error) {
	if f.countMatchesFn == nil {
		return 0, nil
	}
	return f.countMatchesFn(ctx, organizerID)
}

func (f *fakeScheduleRepo) CountMatchesOnDate(ctx context.Context, organizerID int, date time.Time) (int, error) {
	if f.countOnDateFn == nil {
		return 0, nil
	}
	return f.countOnDateFn(ctx, organizerID, date)
}

type fakeUploader struct {
	uploadFn func(ctx context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error)
	deleteFn func(ctx context.Context, key string) error
}

func (f *fakeUploader) Upload(ctx context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if f.uploadFn == nil {
		return &storage.UploadResult{Key: key, Location: "https://cdn.example.com/" + key}, nil
	}
	return f.uploadFn(ctx, key, contentType, reader)
}

func (f *fakeUploader) Delete(ctx context.Context, key string) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(ctx, key)
}

func (f *fakeUploader) GetPublicURL(key string) string { return "https://cdn.example.com/" + key }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validConfig() models.TournamentConfig {
	return models.TournamentConfig{
		TotalTeams:     10,
		TeamsPerMatch:  5,
		TournamentDays: 2,
		MatchesPerDay:  2,
		MatchesPerTeam: 2,
	}
}

func draftTournament(id, organizerID int) *models.Tournament {
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	cfg := validConfig()
	return &models.Tournament{
		ID:          id,
		Name:        "Autumn Scrims",
		Game:        "BGMI",
		OrganizerID: organizerID,
		Status:      models.StatusDraft,
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, cfg.TournamentDays-1),
		Config:      cfg,
	}
}

func rosterOf(tournamentID, n int) []models.Team {
	teams := make([]models.Team, 0, n)
	for i := 1; i <= n; i++ {
		teams = append(teams, models.Team{
			ID:           i,
			TournamentID: tournamentID,
			Name:         fmt.Sprintf("Team %02d", i),
			Slot:         i,
		})
	}
	return teams
}
