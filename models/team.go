package models

import "time"

// Team - запись состава турнира. Slot задаёт порядок ростера: генератор
// расписания разрешает ничьи по счётчикам именно в этом порядке.
type Team struct {
	ID           int       `json:"id"`
	TournamentID int       `json:"tournament_id"`
	Name         string    `json:"name"`
	Slot         int       `json:"slot"`
	CreatedAt    time.Time `json:"created_at"`
}
