package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/voterguide-backend/internal/data/db"
	"github.com/yungbote/voterguide-backend/internal/platform/logger"
)

func TestNewWithConfigServesRoutes(t *testing.T) {
	cfg := Config{
		Port:              "0",
		DB:                db.Config{Driver: db.DriverSQLite, SQLitePath: "file:app_wiring?mode=memory&cache=shared"},
		SessionSecret:     "wiring-secret",
		SessionCookieName: "voter-guide-session",
		ShareSecret:       "wiring-secret",
		AnalyticsIPSalt:   "wiring-salt",
	}
	a, err := NewWithConfig(context.Background(), logger.Nop(), cfg, Options{Migrate: true})
	require.NoError(t, err)
	t.Cleanup(a.Close)

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jurisdictions", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/guides", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, rec.Result().Cookies(), 1)
}
