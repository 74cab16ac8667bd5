package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/scrim-scheduler/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound         = errors.New("tournament not found")
	ErrTournamentNameConflict     = errors.New("tournament name conflict for this organizer")
	ErrTournamentOrganizerInvalid = errors.New("tournament organizer conflict or invalid")
)

// TournamentFilter ограничивает выборку ListByOrganizer.
type TournamentFilter struct {
	Status *models.TournamentStatus
	Limit  int
	Offset int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	ListByOrganizer(ctx context.Context, organizerID int, filter TournamentFilter) ([]*models.Tournament, error)
	UpdateDetails(ctx context.Context, tournament *models.Tournament) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	UpdateExportKey(ctx context.Context, id int, exportKey string) error
	Delete(ctx context.Context, id int) error
	ListScheduledEndedBefore(ctx context.Context, before time.Time) ([]*models.Tournament, error)
	CountByOrganizer(ctx context.Context, organizerID int, status *models.TournamentStatus) (int, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `
	id, name, game, organizer_id, status, start_date, end_date,
	total_teams, teams_per_match, tournament_days, matches_per_day, matches_per_team,
	export_key, created_at `

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTournament(s rowScanner) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := s.Scan(
		&t.ID,
		&t.Name,
		&t.Game,
		&t.OrganizerID,
		&t.Status,
		&t.StartDate,
		&t.EndDate,
		&t.Config.TotalTeams,
		&t.Config.TeamsPerMatch,
		&t.Config.TournamentDays,
		&t.Config.MatchesPerDay,
		&t.Config.MatchesPerTeam,
		&t.ExportKey,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) Create(ctx context.Context, tournament *models.Tournament) error {
	query := `
		INSERT INTO tournaments (
			name, game, organizer_id, status, start_date, end_date,
			total_teams, teams_per_match, tournament_days, matches_per_day, matches_per_team
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		tournament.Name,
		tournament.Game,
		tournament.OrganizerID,
		tournament.Status,
		tournament.StartDate,
		tournament.EndDate,
		tournament.Config.TotalTeams,
		tournament.Config.TeamsPerMatch,
		tournament.Config.TournamentDays,
		tournament.Config.MatchesPerDay,
		tournament.Config.MatchesPerTeam,
	).Scan(&tournament.ID, &tournament.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + `FROM tournaments WHERE id = $1`

	tournament, err := scanTournament(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament by id %d: %w", id, err)
	}
	return tournament, nil
}

func (r *postgresTournamentRepository) ListByOrganizer(ctx context.Context, organizerID int, filter TournamentFilter) ([]*models.Tournament, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT` + tournamentColumns + `FROM tournaments WHERE organizer_id = $1`)

	args := []interface{}{organizerID}
	placeholderIndex := 2

	if filter.Status != nil {
		queryBuilder.WriteString(" AND status = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.Status)
		placeholderIndex++
	}

	queryBuilder.WriteString(" ORDER BY start_date DESC, id DESC")

	if filter.Limit > 0 {
		queryBuilder.WriteString(" LIMIT $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, filter.Limit)
		placeholderIndex++
	}
	if filter.Offset > 0 {
		queryBuilder.WriteString(" OFFSET $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments for organizer %d: %w", organizerID, err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		tournament, scanErr := scanTournament(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, tournament)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) UpdateDetails(ctx context.Context, tournament *models.Tournament) error {
	query := `
		UPDATE tournaments
		SET name = $1, game = $2, start_date = $3, end_date = $4,
		    total_teams = $5, teams_per_match = $6, tournament_days = $7,
		    matches_per_day = $8, matches_per_team = $9
		WHERE id = $10`

	result, err := r.db.ExecContext(ctx, query,
		tournament.Name,
		tournament.Game,
		tournament.StartDate,
		tournament.EndDate,
		tournament.Config.TotalTeams,
		tournament.Config.TeamsPerMatch,
		tournament.Config.TournamentDays,
		tournament.Config.MatchesPerDay,
		tournament.Config.MatchesPerTeam,
		tournament.ID,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	query := `UPDATE tournaments SET status = $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update status for tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateExportKey(ctx context.Context, id int, exportKey string) error {
	query := `UPDATE tournaments SET export_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, exportKey, id)
	if err != nil {
		return fmt.Errorf("failed to update export key for tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM tournaments WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) ListScheduledEndedBefore(ctx context.Context, before time.Time) ([]*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + `FROM tournaments WHERE status = $1 AND end_date < $2 ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, models.StatusScheduled, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query ended tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		tournament, scanErr := scanTournament(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, tournament)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) CountByOrganizer(ctx context.Context, organizerID int, status *models.TournamentStatus) (int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT COUNT(*) FROM tournaments WHERE organizer_id = $1`)

	args := []interface{}{organizerID}
	if status != nil {
		queryBuilder.WriteString(" AND status = $2")
		args = append(args, *status)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, queryBuilder.String(), args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tournaments for organizer %d: %w", organizerID, err)
	}
	return count, nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505": // unique_violation
			if pqErr.Constraint == "tournaments_organizer_id_name_key" {
				return ErrTournamentNameConflict
			}
		case "23503": // foreign_key_violation
			if pqErr.Constraint == "tournaments_organizer_id_fkey" {
				return ErrTournamentOrganizerInvalid
			}
		}
	}
	return err
}
