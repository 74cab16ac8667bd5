package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/scrim-scheduler/models"
	"github.com/lib/pq"
)

var (
	ErrScheduleNotFound          = errors.New("schedule not found")
	ErrScheduleMatchConflict     = errors.New("schedule match conflict")
	ErrScheduleTournamentInvalid = errors.New("schedule tournament conflict or invalid")
)

type ScheduleRepository interface {
	SaveSchedule(ctx context.Context, exec SQLExecutor, tournamentID int, sched *models.Schedule) error
	SaveTeamCounts(ctx context.Context, exec SQLExecutor, tournamentID int, roster []string, counts models.MatchCount) error
	GetByTournament(ctx context.Context, tournamentID int) (*models.Schedule, error)
	ListTeamCounts(ctx context.Context, tournamentID int) ([]models.TeamParticipation, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
	CountMatchesByOrganizer(ctx context.Context, organizerID int) (int, error)
	CountMatchesOnDate(ctx context.Context, organizerID int, date time.Time) (int, error)
}

type postgresScheduleRepository struct {
	db *sql.DB
}

func NewPostgresScheduleRepository(db *sql.DB) ScheduleRepository {
	return &postgresScheduleRepository{db: db}
}

func (r *postgresScheduleRepository) SaveSchedule(ctx context.Context, exec SQLExecutor, tournamentID int, sched *models.Schedule) error {
	query := `
		INSERT INTO schedule_matches (tournament_id, day_number, match_number, teams)
		VALUES ($1, $2, $3, $4)`

	for _, day := range sched.Days {
		for _, match := range day.Matches {
			if _, err := exec.ExecContext(ctx, query,
				tournamentID,
				day.Day,
				match.ID,
				pq.Array(match.Teams),
			); err != nil {
				return r.handleScheduleError(err)
			}
		}
	}
	return nil
}

func (r *postgresScheduleRepository) SaveTeamCounts(ctx context.Context, exec SQLExecutor, tournamentID int, roster []string, counts models.MatchCount) error {
	query := `
		INSERT INTO schedule_team_counts (tournament_id, team_name, matches)
		VALUES ($1, $2, $3)`

	// Идём по ростеру, а не по карте: порядок вставки фиксирует порядок
	// слотов, и сводка участия разрешает ничьи так же, как генератор.
	for _, teamName := range roster {
		if _, err := exec.ExecContext(ctx, query, tournamentID, teamName, counts[teamName]); err != nil {
			return r.handleScheduleError(err)
		}
	}
	return nil
}

func (r *postgresScheduleRepository) GetByTournament(ctx context.Context, tournamentID int) (*models.Schedule, error) {
	query := `
		SELECT day_number, match_number, teams
		FROM schedule_matches
		WHERE tournament_id = $1
		ORDER BY match_number ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	sched := &models.Schedule{Days: make([]models.ScheduleDay, 0)}
	for rows.Next() {
		var dayNumber, matchNumber int
		var teams pq.StringArray
		if scanErr := rows.Scan(&dayNumber, &matchNumber, &teams); scanErr != nil {
			return nil, fmt.Errorf("failed to scan schedule match row: %w", scanErr)
		}

		// Матчи идут по возрастанию match_number, дни появляются по порядку.
		if len(sched.Days) == 0 || sched.Days[len(sched.Days)-1].Day != dayNumber {
			sched.Days = append(sched.Days, models.ScheduleDay{Day: dayNumber})
		}
		last := len(sched.Days) - 1
		sched.Days[last].Matches = append(sched.Days[last].Matches, models.ScheduledMatch{
			ID:    matchNumber,
			Teams: []string(teams),
		})
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during schedule rows iteration: %w", err)
	}
	if len(sched.Days) == 0 {
		return nil, ErrScheduleNotFound
	}
	return sched, nil
}

func (r *postgresScheduleRepository) ListTeamCounts(ctx context.Context, tournamentID int) ([]models.TeamParticipation, error) {
	// id ASC повторяет порядок вставки, то есть порядок слотов: при равных
	// счётчиках сводка стабильна.
	query := `
		SELECT team_name, matches
		FROM schedule_team_counts
		WHERE tournament_id = $1
		ORDER BY matches DESC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query team counts for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	participation := make([]models.TeamParticipation, 0)
	for rows.Next() {
		var p models.TeamParticipation
		if scanErr := rows.Scan(&p.TeamName, &p.Matches); scanErr != nil {
			return nil, fmt.Errorf("failed to scan team count row: %w", scanErr)
		}
		participation = append(participation, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during team count rows iteration: %w", err)
	}
	return participation, nil
}

func (r *postgresScheduleRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM schedule_team_counts WHERE tournament_id = $1`, tournamentID); err != nil {
		return fmt.Errorf("failed to delete team counts for tournament %d: %w", tournamentID, err)
	}
	if _, err := exec.ExecContext(ctx, `DELETE FROM schedule_matches WHERE tournament_id = $1`, tournamentID); err != nil {
		return fmt.Errorf("failed to delete schedule matches for tournament %d: %w", tournamentID, err)
	}
	return nil
}

func (r *postgresScheduleRepository) CountMatchesByOrganizer(ctx context.Context, organizerID int) (int, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM schedule_matches sm
		JOIN tournaments t ON t.id = sm.tournament_id
		WHERE t.organizer_id = $1`
	if err := r.db.QueryRowContext(ctx, query, organizerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count schedule matches for organizer %d: %w", organizerID, err)
	}
	return count, nil
}

func (r *postgresScheduleRepository) CountMatchesOnDate(ctx context.Context, organizerID int, date time.Time) (int, error) {
	// Дата матча вычисляется от старта турнира: день N приходится на
	// start_date + (N - 1) суток.
	var count int
	query := `
		SELECT COUNT(*)
		FROM schedule_matches sm
		JOIN tournaments t ON t.id = sm.tournament_id
		WHERE t.organizer_id = $1
		  AND t.status = $2
		  AND (t.start_date + (sm.day_number - 1) * INTERVAL '1 day')::date = $3::date`
	if err := r.db.QueryRowContext(ctx, query, organizerID, models.StatusScheduled, date).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches on date for organizer %d: %w", organizerID, err)
	}
	return count, nil
}

func (r *postgresScheduleRepository) handleScheduleError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505": // unique_violation
			if pqErr.Constraint == "schedule_matches_tournament_id_match_number_key" ||
				pqErr.Constraint == "schedule_team_counts_tournament_id_team_name_key" {
				return ErrScheduleMatchConflict
			}
		case "23503": // foreign_key_violation
			if pqErr.Constraint == "schedule_matches_tournament_id_fkey" ||
				pqErr.Constraint == "schedule_team_counts_tournament_id_fkey" {
				return ErrScheduleTournamentInvalid
			}
		}
	}
	return err
}
