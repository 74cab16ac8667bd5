// scrim-scheduler/schedule/least_played.go
package schedule

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/Dosada05/scrim-scheduler/models"
)

// LeastPlayedGenerator жадно набирает в каждый матч команды с наименьшим
// числом уже сыгранных матчей. Балансировка локальная, по одному матчу:
// глобальной оптимальности по турниру нет и не требуется.
type LeastPlayedGenerator struct {
}

func NewLeastPlayedGenerator() Generator {
	return &LeastPlayedGenerator{}
}

func (g *LeastPlayedGenerator) GetName() string {
	return "LeastPlayed"
}

func (g *LeastPlayedGenerator) Generate(ctx context.Context, params GenerationParams) (*models.Schedule, models.MatchCount, error) {
	counts := make(models.MatchCount, len(params.Roster))
	for _, team := range params.Roster {
		counts[team] = 0
	}

	rnd := params.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	days := make([]models.ScheduleDay, 0, params.TournamentDays)
	matchID := 1

	for day := 1; day <= params.TournamentDays; day++ {
		matches := make([]models.ScheduledMatch, 0, params.MatchesPerDay)

		for m := 0; m < params.MatchesPerDay; m++ {
			selection, err := g.pickTeams(params.Roster, counts, params.TeamsPerMatch, rnd)
			if err != nil {
				return nil, nil, fmt.Errorf("day %d, match %d: %w", day, matchID, err)
			}

			for _, team := range selection {
				counts[team]++
			}

			matches = append(matches, models.ScheduledMatch{
				ID:    matchID,
				Teams: selection,
			})
			matchID++
		}

		days = append(days, models.ScheduleDay{
			Day:     day,
			Matches: matches,
		})
	}

	return &models.Schedule{Days: days}, counts, nil
}

// pickTeams выбирает состав одного матча: стабильная сортировка всего
// ростера по возрастанию счётчика (при равенстве сохраняется порядок
// слотов) и первые teamsPerMatch команд из неё.
func (g *LeastPlayedGenerator) pickTeams(roster []string, counts models.MatchCount, teamsPerMatch int, rnd *rand.Rand) ([]string, error) {
	ordered := make([]string, len(roster))
	copy(ordered, roster)

	sort.SliceStable(ordered, func(i, j int) bool {
		return counts[ordered[i]] < counts[ordered[j]]
	})

	if teamsPerMatch <= len(ordered) {
		selection := make([]string, teamsPerMatch)
		copy(selection, ordered[:teamsPerMatch])
		return selection, nil
	}

	// Ростер меньше лобби. Добираем недостающих случайно и без повторов из
	// ещё не выбранных команд; когда таких не осталось, матч укомплектовать
	// нечем.
	selection := append(make([]string, 0, teamsPerMatch), ordered...)
	remaining := make([]string, 0)
	picked := make(map[string]bool, len(selection))
	for _, team := range selection {
		picked[team] = true
	}
	for _, team := range roster {
		if !picked[team] {
			remaining = append(remaining, team)
		}
	}

	for len(selection) < teamsPerMatch {
		if len(remaining) == 0 {
			return nil, fmt.Errorf("%w: need %d, roster has %d", ErrInsufficientTeams, teamsPerMatch, len(roster))
		}
		idx := rnd.Intn(len(remaining))
		selection = append(selection, remaining[idx])
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}

	return selection, nil
}
