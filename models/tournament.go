package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusDraft     TournamentStatus = "draft"
	StatusScheduled TournamentStatus = "scheduled"
	StatusCompleted TournamentStatus = "completed"
	StatusCanceled  TournamentStatus = "canceled"
)

// TournamentConfig хранит параметры, по которым строится расписание.
// Колонки лежат плоско в таблице tournaments.
type TournamentConfig struct {
	TotalTeams     int `json:"total_teams"`
	TeamsPerMatch  int `json:"teams_per_match"`
	TournamentDays int `json:"tournament_days"`
	MatchesPerDay  int `json:"matches_per_day"`
	MatchesPerTeam int `json:"matches_per_team"`
}

// Tournament представляет многодневный скрим-блок одного организатора.
// ExportKey хранится в БД, ExportURL выводится из него при чтении.
type Tournament struct {
	ID          int              `json:"id"`
	Name        string           `json:"name"`
	Game        string           `json:"game"`
	OrganizerID int              `json:"organizer_id"`
	Status      TournamentStatus `json:"status"`
	StartDate   time.Time        `json:"start_date"`
	EndDate     time.Time        `json:"end_date"`
	Config      TournamentConfig `json:"config"`
	ExportKey   *string          `json:"-"`
	ExportURL   *string          `json:"export_url,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`

	// Опционально подгружаемый состав (не мапится напрямую)
	Teams []Team `json:"teams,omitempty"`
}

// ImpliedMatchesPerTeam считает фактическую среднюю нагрузку на команду.
// MatchesPerTeam из конфига алгоритмом не используется, поэтому реальное
// значение может отличаться от запрошенного.
func (c TournamentConfig) ImpliedMatchesPerTeam() float64 {
	if c.TotalTeams == 0 {
		return 0
	}
	total := c.TournamentDays * c.MatchesPerDay * c.TeamsPerMatch
	return float64(total) / float64(c.TotalTeams)
}
