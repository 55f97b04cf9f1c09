package democracyworks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yungbote/voterguide-backend/internal/pkg/httpx"
	"github.com/yungbote/voterguide-backend/internal/platform/envutil"
	"github.com/yungbote/voterguide-backend/internal/platform/logger"
)

const DefaultBaseURL = "https://api.democracy.works"

var ErrMissingAPIKey = errors.New("democracy works: missing api key")

type Deadlines struct {
	Registration    string `json:"registration,omitempty"`
	AbsenteeRequest string `json:"absenteeRequest,omitempty"`
	EarlyVoting     string `json:"earlyVoting,omitempty"`
	ElectionDay     string `json:"electionDay,omitempty"`
}

type Election struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Date         string    `json:"date"`
	Type         string    `json:"type"`
	State        string    `json:"state"`
	Jurisdiction string    `json:"jurisdiction"`
	Description  string    `json:"description,omitempty"`
	OfficialURL  string    `json:"officialUrl,omitempty"`
	Deadlines    Deadlines `json:"deadlines"`
}

type Candidate struct {
	Name  string `json:"name"`
	Party string `json:"party,omitempty"`
	Bio   string `json:"bio,omitempty"`
}

type Contest struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Candidates  []Candidate `json:"candidates,omitempty"`
	Options     []string    `json:"options,omitempty"`
}

type electionsResponse struct {
	Elections []Election `json:"elections"`
}

type ballotResponse struct {
	Contests []Contest `json:"contests"`
}

type Client interface {
	Elections(ctx context.Context, state, jurisdiction string) ([]Election, error)
	Ballot(ctx context.Context, electionID string) ([]Contest, error)
	Configured() bool
}

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:  envutil.String("DEMOCRACY_WORKS_API_KEY", ""),
		BaseURL: envutil.String("DEMOCRACY_WORKS_BASE_URL", ""),
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
		log:        log.With("client", "DemocracyWorksClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (c *client) Configured() bool { return c.cfg.APIKey != "" }

func (c *client) Elections(ctx context.Context, state, jurisdiction string) ([]Election, error) {
	if !c.Configured() {
		return nil, ErrMissingAPIKey
	}
	q := url.Values{}
	q.Set("state", state)
	q.Set("jurisdiction", jurisdiction)
	q.Set("api_key", c.cfg.APIKey)
	out, err := httpx.DoJSON[electionsResponse](ctx, c.httpClient, httpx.Request{
		URL: c.cfg.BaseURL + "/v1/elections?" + q.Encode(),
	})
	if err != nil {
		return nil, fmt.Errorf("democracy works elections: %w", err)
	}
	return out.Elections, nil
}

func (c *client) Ballot(ctx context.Context, electionID string) ([]Contest, error) {
	if !c.Configured() {
		return nil, ErrMissingAPIKey
	}
	q := url.Values{}
	q.Set("api_key", c.cfg.APIKey)
	out, err := httpx.DoJSON[ballotResponse](ctx, c.httpClient, httpx.Request{
		URL: c.cfg.BaseURL + "/v1/elections/" + url.PathEscape(electionID) + "/ballot?" + q.Encode(),
	})
	if err != nil {
		return nil, fmt.Errorf("democracy works ballot: %w", err)
	}
	return out.Contests, nil
}
