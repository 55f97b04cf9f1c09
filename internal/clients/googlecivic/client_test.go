package googlecivic

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/yungbote/voterguide-backend/internal/pkg/httpx"
	"github.com/yungbote/voterguide-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, key string, h http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(logger.Nop(), Config{APIKey: key, BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func apiKey(r *http.Request) string {
	if k := r.URL.Query().Get("key"); k != "" {
		return k
	}
	return r.Header.Get("X-Goog-Api-Key")
}

func TestVoterInfoDecodesContests(t *testing.T) {
	c := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/civicinfo/v2/voterinfo" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("electionId") != DefaultElectionID || apiKey(r) != "k" || q.Get("address") == "" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{
			"election": {"id": "9000", "name": "General", "electionDay": "2025-11-04"},
			"contests": [{"type": "General", "office": "Mayor", "candidates": [{"name": "A"}]}],
			"pollingLocations": [{"address": {"line1": "1 Main", "city": "Seattle", "state": "WA", "zip": "98101"}, "pollingHours": "7-8"}]
		}`))
	})

	out, err := c.VoterInfo(context.Background(), "1 Main St, Seattle, WA", "")
	if err != nil {
		t.Fatalf("VoterInfo: %v", err)
	}
	if out.Election.ElectionDay != "2025-11-04" || len(out.Contests) != 1 || out.Contests[0].Office != "Mayor" {
		t.Fatalf("VoterInfo: unexpected payload: %+v", out)
	}
	if len(out.PollingLocations) != 1 || out.PollingLocations[0].PollingHours != "7-8" {
		t.Fatalf("VoterInfo: polling locations lost: %+v", out.PollingLocations)
	}
}

func TestVoterInfoRateLimited(t *testing.T) {
	c := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota"}}`))
	})
	_, err := c.VoterInfo(context.Background(), "addr", "")
	if !httpx.IsRateLimited(err) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if !strings.Contains(err.Error(), "25,000") {
		t.Fatalf("expected rate limit hint, got %q", err.Error())
	}
}

func TestVoterInfoSurfacesAPIMessage(t *testing.T) {
	c := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"Election unknown"}}`))
	})
	_, err := c.VoterInfo(context.Background(), "addr", "123")
	var he *httpx.HTTPError
	if !errors.As(err, &he) || he.Message != "Election unknown" {
		t.Fatalf("expected upstream message, got %v", err)
	}
}

func TestVoterInfoWithoutKeyMakesNoRequest(t *testing.T) {
	var calls int32
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})
	if c.Configured() {
		t.Fatalf("expected unconfigured client")
	}
	if _, err := c.VoterInfo(context.Background(), "addr", ""); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("expected no request, got %d", calls)
	}
}

func TestVoterInfoIgnoresNonNumericElectionID(t *testing.T) {
	c := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("electionId"); got != DefaultElectionID {
			t.Errorf("expected default election id, got %q", got)
		}
		_, _ = w.Write([]byte(`{"election": {"id": "2000", "name": "VIP", "electionDay": "2031-06-06"}}`))
	})
	out, err := c.VoterInfo(context.Background(), "addr", "election-wa-king-2025-11-04")
	if err != nil {
		t.Fatalf("VoterInfo: %v", err)
	}
	if out.Election.ID != "2000" || len(out.Contests) != 0 {
		t.Fatalf("unexpected payload: %+v", out)
	}
}

func TestElectionsList(t *testing.T) {
	c := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/civicinfo/v2/elections" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"elections": [{"id": "2000", "name": "VIP Test Election", "electionDay": "2031-06-06", "ocdDivisionId": "ocd-division/country:us"}]}`))
	})
	out, err := c.Elections(context.Background())
	if err != nil {
		t.Fatalf("Elections: %v", err)
	}
	if len(out) != 1 || out[0].ID != "2000" || out[0].OCDDivisionID != "ocd-division/country:us" {
		t.Fatalf("unexpected elections: %+v", out)
	}
}

func TestTransportErrorDoesNotCarryKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	c, err := New(logger.Nop(), Config{APIKey: "SECRET-KEY-123", BaseURL: base})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.VoterInfo(context.Background(), "1 Main St, Seattle, WA", "")
	if err == nil {
		t.Fatalf("expected transport error")
	}
	if strings.Contains(err.Error(), "SECRET-KEY-123") {
		t.Fatalf("api key leaked in error: %q", err.Error())
	}
}
