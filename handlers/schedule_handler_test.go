package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dosada05/scrim-scheduler/middleware"
	"github.com/Dosada05/scrim-scheduler/models"
	"github.com/Dosada05/scrim-scheduler/services"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testJWTSecret = []byte("handler-test-secret")

// fakeScheduleService задаёт через поля только нужные тесту методы.
type fakeScheduleService struct {
	generateFn   func(ctx context.Context, tournamentID, userID int, opts services.GenerateOptions) (*services.ScheduleView, error)
	regenerateFn func(ctx context.Context, tournamentID, userID int, opts services.GenerateOptions) (*services.ScheduleView, error)
	getFn        func(ctx context.Context, tournamentID int) (*services.ScheduleView, error)
	exportFn     func(ctx context.Context, tournamentID int) ([]byte, string, error)
	publishFn    func(ctx context.Context, tournamentID, userID int) (string, error)
}

func (f *fakeScheduleService) Generate(ctx context.Context, tournamentID, userID int, opts services.GenerateOptions) (*services.ScheduleView, error) {
	return f.generateFn(ctx, tournamentID, userID, opts)
}

func (f *fakeScheduleService) Regenerate(ctx context.Context, tournamentID, userID int, opts services.GenerateOptions) (*services.ScheduleView, error) {
	return f.regenerateFn(ctx, tournamentID, userID, opts)
}

func (f *fakeScheduleService) Get(ctx context.Context, tournamentID int) (*services.ScheduleView, error) {
	return f.getFn(ctx, tournamentID)
}

func (f *fakeScheduleService) ExportCSV(ctx context.Context, tournamentID int) ([]byte, string, error) {
	return f.exportFn(ctx, tournamentID)
}

func (f *fakeScheduleService) PublishExport(ctx context.Context, tournamentID, userID int) (string, error) {
	return f.publishFn(ctx, tournamentID, userID)
}

// scheduleRouter повторяет разбивку маршрутов из routes.SetupRoutes:
// чтение открыто, генерация за авторизацией.
func scheduleRouter(svc services.ScheduleService) *chi.Mux {
	h := NewScheduleHandler(svc)
	router := chi.NewRouter()
	router.Get("/tournaments/{tournamentID}/schedule", h.GetHandler)
	router.Get("/tournaments/{tournamentID}/schedule/export", h.ExportCSVHandler)
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(testJWTSecret))
		r.Post("/tournaments/{tournamentID}/schedule", h.GenerateHandler)
	})
	return router
}

func bearerToken(t *testing.T, userID int) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}).SignedString(testJWTSecret)
	require.NoError(t, err)
	return "Bearer " + token
}

func sampleView() *services.ScheduleView {
	return &services.ScheduleView{
		TournamentID: 5,
		Status:       models.StatusScheduled,
		TotalMatches: 2,
		Days: []services.ScheduleDayView{
			{Day: 1, Date: "01-10-2026", Matches: []models.ScheduledMatch{
				{ID: 1, Teams: []string{"Alpha", "Bravo"}},
				{ID: 2, Teams: []string{"Charlie", "Delta"}},
			}},
		},
	}
}

func TestGetHandler(t *testing.T) {
	t.Parallel()

	svc := &fakeScheduleService{
		getFn: func(_ context.Context, tournamentID int) (*services.ScheduleView, error) {
			assert.Equal(t, 5, tournamentID)
			return sampleView(), nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/tournaments/5/schedule", nil)
	rec := httptest.NewRecorder()
	scheduleRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"tournament_id": 5`)
}

func TestGetHandlerBadID(t *testing.T) {
	t.Parallel()

	svc := &fakeScheduleService{
		getFn: func(context.Context, int) (*services.ScheduleView, error) {
			t.Fatal("service must not be called for a malformed id")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/tournaments/abc/schedule", nil)
	rec := httptest.NewRecorder()
	scheduleRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetHandlerNotGenerated(t *testing.T) {
	t.Parallel()

	svc := &fakeScheduleService{
		getFn: func(context.Context, int) (*services.ScheduleView, error) {
			return nil, services.ErrScheduleNotGenerated
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/tournaments/5/schedule", nil)
	rec := httptest.NewRecorder()
	scheduleRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportCSVHandlerHeaders(t *testing.T) {
	t.Parallel()

	svc := &fakeScheduleService{
		exportFn: func(_ context.Context, tournamentID int) ([]byte, string, error) {
			return []byte("Day,Date,Match ID,Teams\n"), "tournament_5_schedule.csv", nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/tournaments/5/schedule/export", nil)
	rec := httptest.NewRecorder()
	scheduleRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="tournament_5_schedule.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "Day,Date,Match ID,Teams\n", rec.Body.String())
}

func TestGenerateHandlerRequiresAuth(t *testing.T) {
	t.Parallel()

	svc := &fakeScheduleService{
		generateFn: func(context.Context, int, int, services.GenerateOptions) (*services.ScheduleView, error) {
			t.Fatal("service must not be called without credentials")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/tournaments/5/schedule", nil)
	rec := httptest.NewRecorder()
	scheduleRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGenerateHandler(t *testing.T) {
	t.Parallel()

	svc := &fakeScheduleService{
		generateFn: func(_ context.Context, tournamentID, userID int, _ services.GenerateOptions) (*services.ScheduleView, error) {
			assert.Equal(t, 5, tournamentID)
			assert.Equal(t, 7, userID)
			return sampleView(), nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/tournaments/5/schedule", nil)
	req.Header.Set("Authorization", bearerToken(t, 7))
	rec := httptest.NewRecorder()
	scheduleRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_matches": 2`)
}

func TestGenerateHandlerMapsConflicts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"already generated", services.ErrScheduleAlreadyExists, http.StatusConflict},
		{"incomplete roster", services.ErrRosterIncomplete, http.StatusConflict},
		{"foreign tournament", services.ErrForbiddenOperation, http.StatusForbidden},
		{"missing tournament", services.ErrTournamentNotFound, http.StatusNotFound},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc := &fakeScheduleService{
				generateFn: func(context.Context, int, int, services.GenerateOptions) (*services.ScheduleView, error) {
					return nil, tc.err
				},
			}

			req := httptest.NewRequest(http.MethodPost, "/tournaments/5/schedule", nil)
			req.Header.Set("Authorization", bearerToken(t, 7))
			rec := httptest.NewRecorder()
			scheduleRouter(svc).ServeHTTP(rec, req)

			assert.Equal(t, tc.wantCode, rec.Code)
		})
	}
}
