package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/scrim-scheduler/models"
	"github.com/Dosada05/scrim-scheduler/repositories"
	"github.com/Dosada05/scrim-scheduler/schedule"
	"github.com/Dosada05/scrim-scheduler/storage"
)

// startDateLayout - формат даты старта в API. В CSV-выгрузке даты идут в
// другом формате, см. пакет export.
const startDateLayout = "2006-01-02"

type CreateTournamentInput struct {
	Name      string                  `json:"name"`
	Game      string                  `json:"game"`
	StartDate string                  `json:"start_date"`
	Config    models.TournamentConfig `json:"config"`
}

// UpdateTournamentDetailsInput - частичное обновление, nil-поля не трогаем.
type UpdateTournamentDetailsInput struct {
	Name      *string                  `json:"name"`
	Game      *string                  `json:"game"`
	StartDate *string                  `json:"start_date"`
	Config    *models.TournamentConfig `json:"config"`
}

type ListTournamentsFilter struct {
	Status *models.TournamentStatus
	Limit  int
	Offset int
}

type AddTeamInput struct {
	Name string `json:"name"`
}

type statusChangedPayload struct {
	TournamentID int                     `json:"tournament_id"`
	Status       models.TournamentStatus `json:"status"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, organizerID int, input CreateTournamentInput) (*models.Tournament, error)
	GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, organizerID int, filter ListTournamentsFilter) ([]*models.Tournament, error)
	UpdateTournamentDetails(ctx context.Context, id int, currentUserID int, input UpdateTournamentDetailsInput) (*models.Tournament, error)
	CancelTournament(ctx context.Context, id int, currentUserID int) (*models.Tournament, error)
	DeleteTournament(ctx context.Context, id int, currentUserID int) error
	AddTeam(ctx context.Context, tournamentID int, currentUserID int, input AddTeamInput) (*models.Team, error)
	RemoveTeam(ctx context.Context, tournamentID, teamID, currentUserID int) error
	ListTeams(ctx context.Context, tournamentID int) ([]models.Team, error)
	CompleteFinishedTournaments(ctx context.Context) (int, error)
}

type tournamentService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	uploader       storage.FileUploader
	hub            *schedule.Hub
	logger         *slog.Logger
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	uploader storage.FileUploader,
	hub *schedule.Hub,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		db:             db,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		uploader:       uploader,
		hub:            hub,
		logger:         logger,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, organizerID int, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}

	game := strings.TrimSpace(input.Game)
	if game == "" {
		game = "BGMI"
	}

	if input.StartDate == "" {
		return nil, ErrStartDateRequired
	}
	startDate, err := time.Parse(startDateLayout, input.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrStartDateInvalid, input.StartDate)
	}

	if err := validateTournamentConfig(input.Config); err != nil {
		return nil, err
	}

	tournament := &models.Tournament{
		Name:        name,
		Game:        game,
		OrganizerID: organizerID,
		Status:      models.StatusDraft,
		StartDate:   normalizeDate(startDate),
		EndDate:     tournamentEndDate(normalizeDate(startDate), input.Config.TournamentDays),
		Config:      input.Config,
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTournamentNameConflict):
			return nil, ErrTournamentNameConflict
		case errors.Is(err, repositories.ErrTournamentOrganizerInvalid):
			return nil, fmt.Errorf("organizer %d is not valid: %w", organizerID, err)
		default:
			return nil, fmt.Errorf("failed to create tournament: %w", err)
		}
	}

	tournament.Teams = []models.Team{}
	return tournament, nil
}

func (s *tournamentService) GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.getTournament(ctx, id)
	if err != nil {
		return nil, err
	}

	teams, err := s.teamRepo.ListByTournament(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster for tournament %d: %w", id, err)
	}
	tournament.Teams = teams
	populateTournamentExportURL(tournament, s.uploader)

	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, organizerID int, filter ListTournamentsFilter) ([]*models.Tournament, error) {
	if filter.Status != nil && !isValidTournamentStatus(*filter.Status) {
		return nil, fmt.Errorf("%w: %q", ErrTournamentInvalidStatus, *filter.Status)
	}

	repoFilter := repositories.TournamentFilter{
		Status: filter.Status,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	tournaments, err := s.tournamentRepo.ListByOrganizer(ctx, organizerID, repoFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	for _, tournament := range tournaments {
		populateTournamentExportURL(tournament, s.uploader)
	}
	return tournaments, nil
}

func (s *tournamentService) UpdateTournamentDetails(ctx context.Context, id int, currentUserID int, input UpdateTournamentDetailsInput) (*models.Tournament, error) {
	tournament, err := s.getOwnedTournament(ctx, id, currentUserID)
	if err != nil {
		return nil, err
	}

	if tournament.Status != models.StatusDraft {
		return nil, ErrTournamentUpdateNotAllowed
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrTournamentNameRequired
		}
		tournament.Name = name
	}
	if input.Game != nil {
		game := strings.TrimSpace(*input.Game)
		if game != "" {
			tournament.Game = game
		}
	}
	if input.StartDate != nil {
		startDate, parseErr := time.Parse(startDateLayout, *input.StartDate)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: %q", ErrStartDateInvalid, *input.StartDate)
		}
		tournament.StartDate = normalizeDate(startDate)
	}
	if input.Config != nil {
		if err := validateTournamentConfig(*input.Config); err != nil {
			return nil, err
		}
		rosterSize, countErr := s.teamRepo.CountByTournament(ctx, id)
		if countErr != nil {
			return nil, fmt.Errorf("failed to count roster for tournament %d: %w", id, countErr)
		}
		if input.Config.TotalTeams < rosterSize {
			return nil, ErrTotalTeamsBelowRoster
		}
		tournament.Config = *input.Config
	}

	tournament.EndDate = tournamentEndDate(tournament.StartDate, tournament.Config.TournamentDays)

	if err := s.tournamentRepo.UpdateDetails(ctx, tournament); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTournamentNotFound):
			return nil, ErrTournamentNotFound
		case errors.Is(err, repositories.ErrTournamentNameConflict):
			return nil, ErrTournamentNameConflict
		default:
			return nil, fmt.Errorf("failed to update tournament %d: %w", id, err)
		}
	}
	return tournament, nil
}

func (s *tournamentService) CancelTournament(ctx context.Context, id int, currentUserID int) (*models.Tournament, error) {
	tournament, err := s.getOwnedTournament(ctx, id, currentUserID)
	if err != nil {
		return nil, err
	}

	if !isValidStatusTransition(tournament.Status, models.StatusCanceled) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, tournament.Status, models.StatusCanceled)
	}

	if tournament.Status != models.StatusCanceled {
		if err := s.tournamentRepo.UpdateStatus(ctx, s.db, id, models.StatusCanceled); err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return nil, ErrTournamentNotFound
			}
			return nil, fmt.Errorf("failed to cancel tournament %d: %w", id, err)
		}
		tournament.Status = models.StatusCanceled
		s.broadcastStatusChange(tournament)
	}

	populateTournamentExportURL(tournament, s.uploader)
	return tournament, nil
}

func (s *tournamentService) DeleteTournament(ctx context.Context, id int, currentUserID int) error {
	tournament, err := s.getOwnedTournament(ctx, id, currentUserID)
	if err != nil {
		return err
	}

	if tournament.Status != models.StatusDraft && tournament.Status != models.StatusCanceled {
		return ErrTournamentDeletionNotAllowed
	}

	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to delete tournament %d: %w", id, err)
	}

	// Опубликованный экспорт больше никому не нужен, чистим без фатальности.
	if tournament.ExportKey != nil && *tournament.ExportKey != "" && s.uploader != nil {
		if delErr := s.uploader.Delete(ctx, *tournament.ExportKey); delErr != nil {
			s.logger.Warn("failed to delete export object of removed tournament",
				slog.Int("tournament_id", id),
				slog.String("export_key", *tournament.ExportKey),
				slog.Any("error", delErr))
		}
	}
	return nil
}

func (s *tournamentService) AddTeam(ctx context.Context, tournamentID int, currentUserID int, input AddTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}

	tournament, err := s.getOwnedTournament(ctx, tournamentID, currentUserID)
	if err != nil {
		return nil, err
	}
	if tournament.Status != models.StatusDraft {
		return nil, ErrRosterLocked
	}

	rosterSize, err := s.teamRepo.CountByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count roster for tournament %d: %w", tournamentID, err)
	}
	if rosterSize >= tournament.Config.TotalTeams {
		return nil, ErrRosterFull
	}

	team := &models.Team{
		TournamentID: tournamentID,
		Name:         name,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamNameConflict):
			return nil, ErrDuplicateTeamName
		case errors.Is(err, repositories.ErrTeamTournamentInvalid):
			return nil, ErrTournamentNotFound
		default:
			return nil, fmt.Errorf("failed to add team to tournament %d: %w", tournamentID, err)
		}
	}
	return team, nil
}

func (s *tournamentService) RemoveTeam(ctx context.Context, tournamentID, teamID, currentUserID int) error {
	tournament, err := s.getOwnedTournament(ctx, tournamentID, currentUserID)
	if err != nil {
		return err
	}
	if tournament.Status != models.StatusDraft {
		return ErrRosterLocked
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to load team %d: %w", teamID, err)
	}
	// Команда из чужого турнира для этого эндпоинта не существует.
	if team.TournamentID != tournamentID {
		return ErrTeamNotFound
	}

	if err := s.teamRepo.Delete(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to remove team %d: %w", teamID, err)
	}
	return nil
}

func (s *tournamentService) ListTeams(ctx context.Context, tournamentID int) ([]models.Team, error) {
	if _, err := s.getTournament(ctx, tournamentID); err != nil {
		return nil, err
	}

	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for tournament %d: %w", tournamentID, err)
	}
	return teams, nil
}

// CompleteFinishedTournaments переводит scheduled-турниры с прошедшей датой
// окончания в completed. Вызывается периодически из main.
func (s *tournamentService) CompleteFinishedTournaments(ctx context.Context) (int, error) {
	today := normalizeDate(time.Now().UTC())

	ended, err := s.tournamentRepo.ListScheduledEndedBefore(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("failed to list ended tournaments: %w", err)
	}

	completed := 0
	for _, tournament := range ended {
		if err := s.tournamentRepo.UpdateStatus(ctx, s.db, tournament.ID, models.StatusCompleted); err != nil {
			s.logger.Error("failed to auto-complete tournament",
				slog.Int("tournament_id", tournament.ID),
				slog.Any("error", err))
			continue
		}
		tournament.Status = models.StatusCompleted
		s.broadcastStatusChange(tournament)
		completed++
	}

	if completed > 0 {
		s.logger.Info("auto-completed finished tournaments", slog.Int("count", completed))
	}
	return completed, nil
}

func (s *tournamentService) getTournament(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", id, err)
	}
	return tournament, nil
}

func (s *tournamentService) getOwnedTournament(ctx context.Context, id, currentUserID int) (*models.Tournament, error) {
	tournament, err := s.getTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	if tournament.OrganizerID != currentUserID {
		return nil, ErrForbiddenOperation
	}
	return tournament, nil
}

func (s *tournamentService) broadcastStatusChange(tournament *models.Tournament) {
	if s.hub == nil {
		return
	}
	roomID := schedule.TournamentRoomID(tournament.ID)
	s.hub.BroadcastToRoom(roomID, schedule.WebSocketMessage{
		Type: schedule.EventTournamentStatusChanged,
		Payload: statusChangedPayload{
			TournamentID: tournament.ID,
			Status:       tournament.Status,
		},
		RoomID: roomID,
	})
}
