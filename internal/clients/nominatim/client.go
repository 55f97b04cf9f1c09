package nominatim

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/voterguide-backend/internal/pkg/httpx"
	"github.com/yungbote/voterguide-backend/internal/platform/envutil"
	"github.com/yungbote/voterguide-backend/internal/platform/logger"
)

const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "TheVoTerGuidEr/1.0"
)

// ErrNotFound means the geocoder returned no match for the query.
var ErrNotFound = errors.New("nominatim: address not found")

type Point struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	DisplayName string  `json:"displayName,omitempty"`
}

type Geocoder interface {
	Geocode(ctx context.Context, query string) (*Point, error)
}

type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		BaseURL:   envutil.String("NOMINATIM_BASE_URL", ""),
		UserAgent: envutil.String("GEOCODER_USER_AGENT", ""),
		Timeout:   envutil.Seconds("GEOCODER_TIMEOUT_SECONDS", 10*time.Second),
	}
}

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

func New(log *logger.Logger, cfg Config) (Geocoder, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	// The usage policy rejects requests without an identifying agent.
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &client{
		log:        log.With("client", "NominatimClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (c *client) Geocode(ctx context.Context, query string) (*Point, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("nominatim: query required")
	}
	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", query)
	q.Set("limit", "1")

	header := http.Header{}
	header.Set("User-Agent", c.cfg.UserAgent)

	places, err := httpx.DoJSON[[]place](ctx, c.httpClient, httpx.Request{
		URL:    c.cfg.BaseURL + "/search?" + q.Encode(),
		Header: header,
	})
	if err != nil {
		return nil, fmt.Errorf("nominatim search: %w", err)
	}
	if places == nil || len(*places) == 0 {
		return nil, ErrNotFound
	}
	first := (*places)[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("nominatim: bad lat %q: %w", first.Lat, err)
	}
	lng, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("nominatim: bad lon %q: %w", first.Lon, err)
	}
	return &Point{Lat: lat, Lng: lng, DisplayName: first.DisplayName}, nil
}
