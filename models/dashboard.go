package models

type DashboardStats struct {
	TournamentsTotal     int `json:"tournaments_total"`
	DraftTournaments     int `json:"draft_tournaments"`
	ScheduledTournaments int `json:"scheduled_tournaments"`
	CompletedTournaments int `json:"completed_tournaments"`
	TeamsTotal           int `json:"teams_total"`
	MatchesScheduled     int `json:"matches_scheduled"`
	MatchesToday         int `json:"matches_today"`
}
