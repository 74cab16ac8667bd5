package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/scrim-scheduler/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound          = errors.New("team not found")
	ErrTeamNameConflict      = errors.New("team name conflict within tournament")
	ErrTeamTournamentInvalid = errors.New("team tournament conflict or invalid")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Team, error)
	Delete(ctx context.Context, id int) error
	CountByTournament(ctx context.Context, tournamentID int) (int, error)
	CountByOrganizer(ctx context.Context, organizerID int) (int, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	// Слот выдаётся в порядке добавления. MAX+1 внутри INSERT, чтобы
	// конкурирующие вставки не получили один номер.
	query := `
		INSERT INTO teams (tournament_id, name, slot)
		VALUES ($1, $2, (SELECT COALESCE(MAX(slot), 0) + 1 FROM teams WHERE tournament_id = $1))
		RETURNING id, slot, created_at`

	err := r.db.QueryRowContext(ctx, query,
		team.TournamentID,
		team.Name,
	).Scan(&team.ID, &team.Slot, &team.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "teams_tournament_id_name_key" {
					return ErrTeamNameConflict
				}
			case "23503": // foreign_key_violation
				if pqErr.Constraint == "teams_tournament_id_fkey" {
					return ErrTeamTournamentInvalid
				}
			}
		}
		return err
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `
		SELECT id, tournament_id, name, slot, created_at
		FROM teams
		WHERE id = $1`

	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&team.ID,
		&team.TournamentID,
		&team.Name,
		&team.Slot,
		&team.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team by id %d: %w", id, err)
	}
	return team, nil
}

func (r *postgresTeamRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Team, error) {
	// Порядок слотов и есть порядок ростера для генератора.
	query := `
		SELECT id, tournament_id, name, slot, created_at
		FROM teams
		WHERE tournament_id = $1
		ORDER BY slot ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		var team models.Team
		if scanErr := rows.Scan(
			&team.ID,
			&team.TournamentID,
			&team.Name,
			&team.Slot,
			&team.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", scanErr)
		}
		teams = append(teams, team)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during team rows iteration: %w", err)
	}
	return teams, nil
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM teams WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM teams WHERE tournament_id = $1`
	if err := r.db.QueryRowContext(ctx, query, tournamentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count teams for tournament %d: %w", tournamentID, err)
	}
	return count, nil
}

func (r *postgresTeamRepository) CountByOrganizer(ctx context.Context, organizerID int) (int, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM teams te
		JOIN tournaments t ON t.id = te.tournament_id
		WHERE t.organizer_id = $1`
	if err := r.db.QueryRowContext(ctx, query, organizerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count teams for organizer %d: %w", organizerID, err)
	}
	return count, nil
}
