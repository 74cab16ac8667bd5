package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/scrim-scheduler/models"
)

// DateLayout - формат дат в выгрузке и в ответах API, день-месяц-год.
const DateLayout = "02-01-2006"

// Row - одна строка плоской выгрузки расписания.
type Row struct {
	Day     string
	Date    string
	MatchID string
	Teams   string
}

// Flatten разворачивает расписание в плоский список строк. Дата дня
// считается от даты старта турнира: день N приходится на start + N - 1.
func Flatten(sched *models.Schedule, startDate time.Time) []Row {
	rows := make([]Row, 0, sched.TotalMatches())
	for _, day := range sched.Days {
		date := startDate.AddDate(0, 0, day.Day-1).Format(DateLayout)
		for _, match := range day.Matches {
			rows = append(rows, Row{
				Day:     "Day " + strconv.Itoa(day.Day),
				Date:    date,
				MatchID: strconv.Itoa(match.ID),
				Teams:   strings.Join(match.Teams, ", "),
			})
		}
	}
	return rows
}

// WriteCSV пишет строки выгрузки в w с заголовком.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Day", "Date", "Match ID", "Teams"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write([]string{row.Day, row.Date, row.MatchID, row.Teams}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
