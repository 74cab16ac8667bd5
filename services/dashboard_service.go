package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Dosada05/scrim-scheduler/models"
	"github.com/Dosada05/scrim-scheduler/repositories"
	"golang.org/x/sync/errgroup"
)

type DashboardService interface {
	GetStats(ctx context.Context, organizerID int) (models.DashboardStats, error)
}

type dashboardService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	scheduleRepo   repositories.ScheduleRepository
}

func NewDashboardService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	scheduleRepo repositories.ScheduleRepository,
) DashboardService {
	return &dashboardService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		scheduleRepo:   scheduleRepo,
	}
}

// GetStats собирает сводку организатора. Счётчики независимы, поэтому
// ходим за ними параллельно.
func (s *dashboardService) GetStats(ctx context.Context, organizerID int) (models.DashboardStats, error) {
	var stats models.DashboardStats

	statusDraft := models.StatusDraft
	statusScheduled := models.StatusScheduled
	statusCompleted := models.StatusCompleted

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		count, err := s.tournamentRepo.CountByOrganizer(gCtx, organizerID, nil)
		if err != nil {
			return fmt.Errorf("failed to count tournaments: %w", err)
		}
		stats.TournamentsTotal = count
		return nil
	})
	g.Go(func() error {
		count, err := s.tournamentRepo.CountByOrganizer(gCtx, organizerID, &statusDraft)
		if err != nil {
			return fmt.Errorf("failed to count draft tournaments: %w", err)
		}
		stats.DraftTournaments = count
		return nil
	})
	g.Go(func() error {
		count, err := s.tournamentRepo.CountByOrganizer(gCtx, organizerID, &statusScheduled)
		if err != nil {
			return fmt.Errorf("failed to count scheduled tournaments: %w", err)
		}
		stats.ScheduledTournaments = count
		return nil
	})
	g.Go(func() error {
		count, err := s.tournamentRepo.CountByOrganizer(gCtx, organizerID, &statusCompleted)
		if err != nil {
			return fmt.Errorf("failed to count completed tournaments: %w", err)
		}
		stats.CompletedTournaments = count
		return nil
	})
	g.Go(func() error {
		count, err := s.teamRepo.CountByOrganizer(gCtx, organizerID)
		if err != nil {
			return fmt.Errorf("failed to count teams: %w", err)
		}
		stats.TeamsTotal = count
		return nil
	})
	g.Go(func() error {
		count, err := s.scheduleRepo.CountMatchesByOrganizer(gCtx, organizerID)
		if err != nil {
			return fmt.Errorf("failed to count scheduled matches: %w", err)
		}
		stats.MatchesScheduled = count
		return nil
	})
	g.Go(func() error {
		count, err := s.scheduleRepo.CountMatchesOnDate(gCtx, organizerID, normalizeDate(time.Now().UTC()))
		if err != nil {
			return fmt.Errorf("failed to count today's matches: %w", err)
		}
		stats.MatchesToday = count
		return nil
	})

	if err := g.Wait(); err != nil {
		return models.DashboardStats{}, err
	}
	return stats, nil
}
