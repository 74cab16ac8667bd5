package schedule

import (
	"context"
	"errors"
	"math/rand"

	"github.com/Dosada05/scrim-scheduler/models"
)

// ErrInsufficientTeams возвращается, когда добор не может укомплектовать
// матч: запрошенный размер лобби больше всего ростера. Такая конфигурация
// должна быть отклонена валидацией до запуска генерации.
var ErrInsufficientTeams = errors.New("not enough teams to fill a match")

type GenerationParams struct {
	// Roster - уникальные имена команд в порядке слотов. Уникальность
	// обеспечивает вызывающая сторона, генератор её не перепроверяет.
	Roster         []string
	TeamsPerMatch  int
	TournamentDays int
	MatchesPerDay  int

	// Rand используется только на пути случайного добора. nil допустим,
	// тогда генератор сидируется от времени.
	Rand *rand.Rand
}

type Generator interface {
	Generate(ctx context.Context, params GenerationParams) (*models.Schedule, models.MatchCount, error)

	GetName() string
}
