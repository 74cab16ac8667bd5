package models

// MatchCount - счётчики сыгранных матчей по командам за один прогон
// генерации. Инициализируется нулями для всего ростера и только растёт.
type MatchCount map[string]int

// ScheduledMatch - один матч расписания. ID сквозной по всему турниру,
// начинается с 1 и не сбрасывается между днями.
type ScheduledMatch struct {
	ID    int      `json:"id"`
	Teams []string `json:"teams"`
}

// ScheduleDay - матчи одного игрового дня. Day нумеруется с 1.
type ScheduleDay struct {
	Day     int              `json:"day"`
	Matches []ScheduledMatch `json:"matches"`
}

// Schedule - упорядоченный список дней на весь турнир.
type Schedule struct {
	Days []ScheduleDay `json:"days"`
}

// TotalMatches возвращает количество матчей во всём расписании.
func (s *Schedule) TotalMatches() int {
	total := 0
	for _, day := range s.Days {
		total += len(day.Matches)
	}
	return total
}

// TeamParticipation - итоговая строка сводки участия: сколько матчей
// запланировано команде.
type TeamParticipation struct {
	TeamName string `json:"team_name"`
	Matches  int    `json:"matches"`
}
