package ballotready

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yungbote/voterguide-backend/internal/platform/logger"
)

func TestElectionsSendsGraphQL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/graphql" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer br-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		var body graphQLRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Variables["state"] != "CO" {
			t.Errorf("unexpected variables %v", body.Variables)
		}
		_, _ = w.Write([]byte(`{"data":{"elections":[{"id":"e1","name":"Coordinated","date":"2025-11-04",
			"contests":[{"id":"c1","title":"Commissioner","office":"Commissioner","candidates":[{"id":"x","name":"Pat"}]}]}]}}`))
	}))
	defer srv.Close()

	c, err := New(logger.Nop(), Config{APIKey: "br-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	elections, err := c.Elections(context.Background(), "CO", "Larimer County")
	if err != nil {
		t.Fatalf("Elections: %v", err)
	}
	if len(elections) != 1 || len(elections[0].Contests) != 1 || elections[0].Contests[0].Candidates[0].Name != "Pat" {
		t.Fatalf("Elections: unexpected payload %+v", elections)
	}
}

func TestElectionsGraphQLErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[{"message":"unknown jurisdiction"}]}`))
	}))
	defer srv.Close()

	c, _ := New(logger.Nop(), Config{APIKey: "k", BaseURL: srv.URL})
	if _, err := c.Elections(context.Background(), "CO", "Nowhere"); err == nil {
		t.Fatalf("expected graphql error")
	}
}
