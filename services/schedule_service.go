package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/Dosada05/scrim-scheduler/export"
	"github.com/Dosada05/scrim-scheduler/models"
	"github.com/Dosada05/scrim-scheduler/repositories"
	"github.com/Dosada05/scrim-scheduler/schedule"
	"github.com/Dosada05/scrim-scheduler/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// GenerateOptions - необязательные параметры генерации. Seed фиксирует
// источник случайности добора, основной отбор от него не зависит.
type GenerateOptions struct {
	Seed *int64 `json:"seed"`
}

type ScheduleDayView struct {
	Day     int                     `json:"day"`
	Date    string                  `json:"date"`
	Matches []models.ScheduledMatch `json:"matches"`
}

type ScheduleView struct {
	TournamentID          int                        `json:"tournament_id"`
	Status                models.TournamentStatus    `json:"status"`
	StartDate             time.Time                  `json:"start_date"`
	EndDate               time.Time                  `json:"end_date"`
	TotalMatches          int                        `json:"total_matches"`
	ImpliedMatchesPerTeam float64                    `json:"implied_matches_per_team"`
	Days                  []ScheduleDayView          `json:"days"`
	Participation         []models.TeamParticipation `json:"participation"`
}

type schedulePayload struct {
	TournamentID int `json:"tournament_id"`
	TotalMatches int `json:"total_matches"`
	Days         int `json:"days"`
}

type ScheduleService interface {
	Generate(ctx context.Context, tournamentID, currentUserID int, opts GenerateOptions) (*ScheduleView, error)
	Regenerate(ctx context.Context, tournamentID, currentUserID int, opts GenerateOptions) (*ScheduleView, error)
	Get(ctx context.Context, tournamentID int) (*ScheduleView, error)
	ExportCSV(ctx context.Context, tournamentID int) ([]byte, string, error)
	PublishExport(ctx context.Context, tournamentID, currentUserID int) (string, error)
}

type scheduleService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	scheduleRepo   repositories.ScheduleRepository
	generator      schedule.Generator
	uploader       storage.FileUploader
	hub            *schedule.Hub
	logger         *slog.Logger
}

func NewScheduleService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	scheduleRepo repositories.ScheduleRepository,
	generator schedule.Generator,
	uploader storage.FileUploader,
	hub *schedule.Hub,
	logger *slog.Logger,
) ScheduleService {
	return &scheduleService{
		db:             db,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		scheduleRepo:   scheduleRepo,
		generator:      generator,
		uploader:       uploader,
		hub:            hub,
		logger:         logger,
	}
}

func (s *scheduleService) Generate(ctx context.Context, tournamentID, currentUserID int, opts GenerateOptions) (*ScheduleView, error) {
	tournament, err := s.loadOwnedTournament(ctx, tournamentID, currentUserID)
	if err != nil {
		return nil, err
	}

	switch tournament.Status {
	case models.StatusDraft:
	case models.StatusScheduled:
		return nil, ErrScheduleAlreadyExists
	default:
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, tournament.Status, models.StatusScheduled)
	}

	roster, err := s.loadCompleteRoster(ctx, tournament)
	if err != nil {
		return nil, err
	}

	sched, counts, err := s.runGenerator(ctx, tournament, roster, opts)
	if err != nil {
		return nil, err
	}

	if err := s.persistSchedule(ctx, tournamentID, sched, roster, counts, models.StatusScheduled, false); err != nil {
		return nil, err
	}
	tournament.Status = models.StatusScheduled

	s.logger.Info("schedule generated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("matches", sched.TotalMatches()),
		slog.String("generator", s.generator.GetName()))
	s.broadcastScheduleEvent(schedule.EventScheduleGenerated, tournament, sched)

	return buildScheduleView(tournament, sched, participationFromCounts(roster, counts)), nil
}

func (s *scheduleService) Regenerate(ctx context.Context, tournamentID, currentUserID int, opts GenerateOptions) (*ScheduleView, error) {
	tournament, err := s.loadOwnedTournament(ctx, tournamentID, currentUserID)
	if err != nil {
		return nil, err
	}

	switch tournament.Status {
	case models.StatusScheduled:
	case models.StatusDraft:
		return nil, ErrScheduleNotGenerated
	default:
		return nil, fmt.Errorf("%w: tournament is %s", ErrRegenerateNotAllowed, tournament.Status)
	}
	// После старта расписание фиксируется, по нему уже играют.
	if !normalizeDate(time.Now().UTC()).Before(tournament.StartDate) {
		return nil, ErrRegenerateNotAllowed
	}

	roster, err := s.loadCompleteRoster(ctx, tournament)
	if err != nil {
		return nil, err
	}

	sched, counts, err := s.runGenerator(ctx, tournament, roster, opts)
	if err != nil {
		return nil, err
	}

	if err := s.persistSchedule(ctx, tournamentID, sched, roster, counts, "", true); err != nil {
		return nil, err
	}

	s.logger.Info("schedule regenerated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("matches", sched.TotalMatches()))
	s.broadcastScheduleEvent(schedule.EventScheduleRegenerated, tournament, sched)

	return buildScheduleView(tournament, sched, participationFromCounts(roster, counts)), nil
}

func (s *scheduleService) Get(ctx context.Context, tournamentID int) (*ScheduleView, error) {
	var (
		tournament    *models.Tournament
		sched         *models.Schedule
		participation []models.TeamParticipation
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := s.tournamentRepo.GetByID(gCtx, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
		}
		tournament = t
		return nil
	})

	g.Go(func() error {
		sc, err := s.scheduleRepo.GetByTournament(gCtx, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrScheduleNotFound) {
				return ErrScheduleNotGenerated
			}
			return fmt.Errorf("failed to load schedule for tournament %d: %w", tournamentID, err)
		}
		sched = sc
		return nil
	})

	g.Go(func() error {
		p, err := s.scheduleRepo.ListTeamCounts(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load team counts for tournament %d: %w", tournamentID, err)
		}
		participation = p
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return buildScheduleView(tournament, sched, participation), nil
}

func (s *scheduleService) ExportCSV(ctx context.Context, tournamentID int) ([]byte, string, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, "", ErrTournamentNotFound
		}
		return nil, "", fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}

	data, err := s.buildCSV(ctx, tournament)
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("tournament_%d_schedule.csv", tournamentID)
	return data, filename, nil
}

func (s *scheduleService) PublishExport(ctx context.Context, tournamentID, currentUserID int) (string, error) {
	tournament, err := s.loadOwnedTournament(ctx, tournamentID, currentUserID)
	if err != nil {
		return "", err
	}
	if s.uploader == nil {
		return "", ErrExportStorageDisabled
	}

	data, err := s.buildCSV(ctx, tournament)
	if err != nil {
		return "", err
	}

	// Свежий ключ на каждую публикацию, чтобы клиенты не получали
	// закэшированную версию файла.
	key := fmt.Sprintf("exports/%d/%s.csv", tournamentID, uuid.NewString())
	result, err := s.uploader.Upload(ctx, key, "text/csv", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to upload schedule export: %w", err)
	}

	if err := s.tournamentRepo.UpdateExportKey(ctx, tournamentID, key); err != nil {
		return "", fmt.Errorf("failed to store export key for tournament %d: %w", tournamentID, err)
	}

	// Прежний объект после смены ключа осиротел.
	if old := tournament.ExportKey; old != nil && *old != "" && *old != key {
		if delErr := s.uploader.Delete(ctx, *old); delErr != nil {
			s.logger.Warn("failed to delete previous export object",
				slog.Int("tournament_id", tournamentID),
				slog.String("export_key", *old),
				slog.Any("error", delErr))
		}
	}

	s.logger.Info("schedule export published",
		slog.Int("tournament_id", tournamentID),
		slog.String("key", result.Key))
	return result.Location, nil
}

// --- внутренняя кухня ---

func (s *scheduleService) loadOwnedTournament(ctx context.Context, tournamentID, currentUserID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	if tournament.OrganizerID != currentUserID {
		return nil, ErrForbiddenOperation
	}
	return tournament, nil
}

// loadCompleteRoster отдаёт имена команд в порядке слотов. Состав должен
// быть добран до TotalTeams, имена - уникальны.
func (s *scheduleService) loadCompleteRoster(ctx context.Context, tournament *models.Tournament) ([]string, error) {
	teams, err := s.teamRepo.ListByTournament(ctx, tournament.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster for tournament %d: %w", tournament.ID, err)
	}
	if len(teams) != tournament.Config.TotalTeams {
		return nil, fmt.Errorf("%w: have %d of %d teams", ErrRosterIncomplete, len(teams), tournament.Config.TotalTeams)
	}

	seen := make(map[string]struct{}, len(teams))
	names := make([]string, 0, len(teams))
	for _, team := range teams {
		if _, ok := seen[team.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTeamName, team.Name)
		}
		seen[team.Name] = struct{}{}
		names = append(names, team.Name)
	}
	return names, nil
}

func (s *scheduleService) runGenerator(ctx context.Context, tournament *models.Tournament, roster []string, opts GenerateOptions) (*models.Schedule, models.MatchCount, error) {
	params := schedule.GenerationParams{
		Roster:         roster,
		TeamsPerMatch:  tournament.Config.TeamsPerMatch,
		TournamentDays: tournament.Config.TournamentDays,
		MatchesPerDay:  tournament.Config.MatchesPerDay,
	}
	if opts.Seed != nil {
		params.Rand = rand.New(rand.NewSource(*opts.Seed))
	}

	sched, counts, err := s.generator.Generate(ctx, params)
	if err != nil {
		return nil, nil, fmt.Errorf("schedule generation failed: %w", err)
	}
	return sched, counts, nil
}

// persistSchedule пишет матчи и счётчики одной транзакцией. Пустой
// nextStatus оставляет статус турнира как есть, replace сначала сносит
// старое расписание.
func (s *scheduleService) persistSchedule(
	ctx context.Context,
	tournamentID int,
	sched *models.Schedule,
	roster []string,
	counts models.MatchCount,
	nextStatus models.TournamentStatus,
	replace bool,
) (err error) {
	tx, beginErr := s.db.BeginTx(ctx, nil)
	if beginErr != nil {
		return fmt.Errorf("failed to begin transaction: %w", beginErr)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("failed to roll back schedule transaction",
					slog.Int("tournament_id", tournamentID),
					slog.Any("error", rbErr))
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("failed to commit schedule transaction: %w", cErr)
		}
	}()

	if replace {
		if err = s.scheduleRepo.DeleteByTournament(ctx, tx, tournamentID); err != nil {
			return err
		}
	}
	if err = s.scheduleRepo.SaveSchedule(ctx, tx, tournamentID, sched); err != nil {
		return err
	}
	if err = s.scheduleRepo.SaveTeamCounts(ctx, tx, tournamentID, roster, counts); err != nil {
		return err
	}
	if nextStatus != "" {
		if err = s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, nextStatus); err != nil {
			return err
		}
	}
	return nil
}

func (s *scheduleService) buildCSV(ctx context.Context, tournament *models.Tournament) ([]byte, error) {
	sched, err := s.scheduleRepo.GetByTournament(ctx, tournament.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrScheduleNotFound) {
			return nil, ErrScheduleNotGenerated
		}
		return nil, fmt.Errorf("failed to load schedule for tournament %d: %w", tournament.ID, err)
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, export.Flatten(sched, tournament.StartDate)); err != nil {
		return nil, fmt.Errorf("failed to render schedule csv: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *scheduleService) broadcastScheduleEvent(eventType string, tournament *models.Tournament, sched *models.Schedule) {
	if s.hub == nil {
		return
	}
	roomID := schedule.TournamentRoomID(tournament.ID)
	s.hub.BroadcastToRoom(roomID, schedule.WebSocketMessage{
		Type: eventType,
		Payload: schedulePayload{
			TournamentID: tournament.ID,
			TotalMatches: sched.TotalMatches(),
			Days:         len(sched.Days),
		},
		RoomID: roomID,
	})
}

// participationFromCounts собирает сводку из свежих счётчиков без
// обращения к базе: порядок тот же, что вернёт ListTeamCounts.
func participationFromCounts(roster []string, counts models.MatchCount) []models.TeamParticipation {
	participation := make([]models.TeamParticipation, 0, len(roster))
	for _, teamName := range roster {
		participation = append(participation, models.TeamParticipation{
			TeamName: teamName,
			Matches:  counts[teamName],
		})
	}
	sort.SliceStable(participation, func(i, j int) bool {
		return participation[i].Matches > participation[j].Matches
	})
	return participation
}

func buildScheduleView(tournament *models.Tournament, sched *models.Schedule, participation []models.TeamParticipation) *ScheduleView {
	days := make([]ScheduleDayView, 0, len(sched.Days))
	for _, day := range sched.Days {
		date := tournament.StartDate.AddDate(0, 0, day.Day-1)
		days = append(days, ScheduleDayView{
			Day:     day.Day,
			Date:    date.Format(export.DateLayout),
			Matches: day.Matches,
		})
	}

	return &ScheduleView{
		TournamentID:          tournament.ID,
		Status:                tournament.Status,
		StartDate:             tournament.StartDate,
		EndDate:               tournament.EndDate,
		TotalMatches:          sched.TotalMatches(),
		ImpliedMatchesPerTeam: tournament.Config.ImpliedMatchesPerTeam(),
		Days:                  days,
		Participation:         participation,
	}
}
