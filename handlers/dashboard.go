package handlers

import (
	"net/http"

	"github.com/Dosada05/scrim-scheduler/middleware"
	"github.com/Dosada05/scrim-scheduler/services"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(s services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: s}
}

// Stats обрабатывает GET /dashboard/stats: сводка по турнирам организатора
// @Summary Сводка по турнирам организатора
// @Tags dashboard
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to view dashboard")
		return
	}

	stats, err := h.dashboardService.GetStats(r.Context(), currentUserID)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"stats": stats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
