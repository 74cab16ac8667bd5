// File: scrim-scheduler/services/helpers.go
package services

import (
	"time"

	"github.com/Dosada05/scrim-scheduler/models"
	"github.com/Dosada05/scrim-scheduler/storage"
)

// --- Общие хелперы ---

func isValidTournamentStatus(status models.TournamentStatus) bool {
	switch status {
	case models.StatusDraft, models.StatusScheduled, models.StatusCompleted, models.StatusCanceled:
		return true
	default:
		return false
	}
}

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.TournamentStatus][]models.TournamentStatus{
		models.StatusDraft:     {models.StatusScheduled, models.StatusCanceled},
		models.StatusScheduled: {models.StatusCompleted, models.StatusCanceled},
		models.StatusCompleted: {},
		models.StatusCanceled:  {},
	}
	for _, allowedNextStatus := range allowedTransitions[current] {
		if next == allowedNextStatus {
			return true
		}
	}
	return false
}

// validateTournamentConfig проверяет диапазоны конфигурации до того, как она
// попадёт в генератор: сам генератор предусловия не перепроверяет.
func validateTournamentConfig(cfg models.TournamentConfig) error {
	if cfg.TotalTeams < 10 || cfg.TotalTeams > 32 {
		return ErrTotalTeamsOutOfRange
	}
	if cfg.TotalTeams%2 != 0 {
		return ErrTotalTeamsOdd
	}
	if cfg.TeamsPerMatch < 2 || cfg.TeamsPerMatch > 16 {
		return ErrTeamsPerMatchOutOfRange
	}
	if cfg.TeamsPerMatch > cfg.TotalTeams {
		return ErrTeamsPerMatchExceedsRoster
	}
	if cfg.TournamentDays < 1 || cfg.TournamentDays > 7 {
		return ErrTournamentDaysOutOfRange
	}
	if cfg.MatchesPerDay < 1 || cfg.MatchesPerDay > 6 {
		return ErrMatchesPerDayOutOfRange
	}
	if cfg.MatchesPerTeam < 1 || cfg.MatchesPerTeam > 6 {
		return ErrMatchesPerTeamOutOfRange
	}
	return nil
}

// tournamentEndDate: день 1 приходится на дату старта, поэтому конец -
// это старт плюс (дни - 1).
func tournamentEndDate(start time.Time, days int) time.Time {
	return start.AddDate(0, 0, days-1)
}

// normalizeDate обнуляет время суток: расписанию важна только дата.
func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// --- Хелпер для заполнения URL опубликованного экспорта ---

func populateTournamentExportURL(tournament *models.Tournament, uploader storage.FileUploader) {
	if tournament != nil && tournament.ExportKey != nil && *tournament.ExportKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*tournament.ExportKey)
		if url != "" {
			tournament.ExportURL = &url
		}
	}
}
