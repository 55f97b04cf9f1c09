package ballotready

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/voterguide-backend/internal/pkg/httpx"
	"github.com/yungbote/voterguide-backend/internal/platform/envutil"
	"github.com/yungbote/voterguide-backend/internal/platform/logger"
)

const DefaultBaseURL = "https://api.ballotready.org"

var ErrMissingAPIKey = errors.New("ballotready: missing api key")

const electionsQuery = `query Elections($state: String!, $jurisdiction: String!) {
  elections(state: $state, jurisdiction: $jurisdiction) {
    id
    name
    date
    contests {
      id
      type
      title
      description
      office
      district
      candidates { id name party bio website photo }
      measures { id title description options }
    }
  }
}`

type Candidate struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Party   string `json:"party,omitempty"`
	Bio     string `json:"bio,omitempty"`
	Website string `json:"website,omitempty"`
	Photo   string `json:"photo,omitempty"`
}

type Measure struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Options     []string `json:"options,omitempty"`
}

type Contest struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Office      string      `json:"office,omitempty"`
	District    string      `json:"district,omitempty"`
	Candidates  []Candidate `json:"candidates,omitempty"`
	Measures    []Measure   `json:"measures,omitempty"`
}

type Election struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Date     string    `json:"date"`
	Contests []Contest `json:"contests"`
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type electionsResponse struct {
	Data struct {
		Elections []Election `json:"elections"`
	} `json:"data"`
	Errors []graphQLError `json:"errors,omitempty"`
}

type Client interface {
	Elections(ctx context.Context, state, jurisdiction string) ([]Election, error)
	Configured() bool
}

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:  envutil.String("BALLOTREADY_API_KEY", ""),
		BaseURL: envutil.String("BALLOTREADY_BASE_URL", ""),
		Timeout: envutil.Seconds("PROVIDER_TIMEOUT_SECONDS", 15*time.Second),
	}
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &client{
		log:        log.With("client", "BallotReadyClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (c *client) Configured() bool { return c.cfg.APIKey != "" }

func (c *client) Elections(ctx context.Context, state, jurisdiction string) ([]Election, error) {
	if !c.Configured() {
		return nil, ErrMissingAPIKey
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	out, err := httpx.DoJSON[electionsResponse](ctx, c.httpClient, httpx.Request{
		Method: http.MethodPost,
		URL:    c.cfg.BaseURL + "/graphql",
		Header: header,
		Body: graphQLRequest{
			Query: electionsQuery,
			Variables: map[string]any{
				"state":        state,
				"jurisdiction": jurisdiction,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ballotready elections: %w", err)
	}
	if len(out.Errors) > 0 {
		msgs := make([]string, 0, len(out.Errors))
		for _, e := range out.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("ballotready elections: %s", strings.Join(msgs, "; "))
	}
	return out.Data.Elections, nil
}
