package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Dosada05/scrim-scheduler/middleware"
	"github.com/Dosada05/scrim-scheduler/services"
)

type ScheduleHandler struct {
	scheduleService services.ScheduleService
}

func NewScheduleHandler(ss services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: ss,
	}
}

// readGenerateOptions разбирает тело запроса генерации.
// Тело опционально: без него используются настройки по умолчанию.
func readGenerateOptions(w http.ResponseWriter, r *http.Request) (services.GenerateOptions, error) {
	var opts services.GenerateOptions
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &opts); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

// GenerateHandler обрабатывает POST /tournaments/{tournamentID}/schedule
// @Summary Сгенерировать расписание
// @Tags schedule
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param tournamentID path int true "ID турнира"
// @Param input body services.GenerateOptions false "Настройки генерации"
// @Success 201 {object} map[string]interface{}
// @Router /tournaments/{tournamentID}/schedule [post]
func (h *ScheduleHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to generate schedule")
		return
	}

	opts, err := readGenerateOptions(w, r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.scheduleService.Generate(r.Context(), tournamentID, currentUserID, opts)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"schedule": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RegenerateHandler обрабатывает POST /tournaments/{tournamentID}/schedule/regenerate
// @Summary Перегенерировать расписание
// @Tags schedule
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param tournamentID path int true "ID турнира"
// @Param input body services.GenerateOptions false "Настройки генерации"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Перегенерация доступна только до старта турнира"
// @Router /tournaments/{tournamentID}/schedule/regenerate [post]
func (h *ScheduleHandler) RegenerateHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to regenerate schedule")
		return
	}

	opts, err := readGenerateOptions(w, r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.scheduleService.Regenerate(r.Context(), tournamentID, currentUserID, opts)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"schedule": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetHandler обрабатывает GET /tournaments/{tournamentID}/schedule
// @Summary Получить расписание турнира
// @Tags schedule
// @Produce json
// @Param tournamentID path int true "ID турнира"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Расписание еще не сгенерировано"
// @Router /tournaments/{tournamentID}/schedule [get]
func (h *ScheduleHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.scheduleService.Get(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"schedule": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ExportCSVHandler обрабатывает GET /tournaments/{tournamentID}/schedule/export
// Отдаёт расписание файлом, а не JSON-конвертом.
// @Summary Скачать расписание в CSV
// @Tags schedule
// @Produce text/csv
// @Param tournamentID path int true "ID турнира"
// @Success 200 {string} string "CSV-файл"
// @Failure 404 {object} map[string]string "Расписание еще не сгенерировано"
// @Router /tournaments/{tournamentID}/schedule/export [get]
func (h *ScheduleHandler) ExportCSVHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	data, filename, err := h.scheduleService.ExportCSV(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write csv export", "error", err, "path", r.URL.Path)
	}
}

// PublishExportHandler обрабатывает POST /tournaments/{tournamentID}/schedule/export
// @Summary Опубликовать CSV-выгрузку в объектном хранилище
// @Tags schedule
// @Security BearerAuth
// @Produce json
// @Param tournamentID path int true "ID турнира"
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]string "Хранилище экспортов не настроено"
// @Router /tournaments/{tournamentID}/schedule/export [post]
func (h *ScheduleHandler) PublishExportHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to publish export")
		return
	}

	url, err := h.scheduleService.PublishExport(r.Context(), tournamentID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"export_url": url}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
