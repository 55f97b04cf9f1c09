package nominatim

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yungbote/voterguide-backend/internal/platform/logger"
)

func TestGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != DefaultUserAgent {
			t.Errorf("unexpected user agent %q", got)
		}
		if r.URL.Query().Get("limit") != "1" || r.URL.Query().Get("format") != "json" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		if r.URL.Query().Get("q") == "nowhere" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`[{"lat":"47.6062","lon":"-122.3321","display_name":"Seattle"}]`))
	}))
	defer srv.Close()

	g, err := New(logger.Nop(), Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pt, err := g.Geocode(context.Background(), "Seattle, WA")
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	if pt.Lat != 47.6062 || pt.Lng != -122.3321 {
		t.Fatalf("Geocode: unexpected point %+v", pt)
	}
	if _, err := g.Geocode(context.Background(), "nowhere"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
