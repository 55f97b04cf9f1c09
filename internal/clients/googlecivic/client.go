package googlecivic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	civicinfo "google.golang.org/api/civicinfo/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/yungbote/voterguide-backend/internal/pkg/httpx"
	"github.com/yungbote/voterguide-backend/internal/platform/envutil"
	"github.com/yungbote/voterguide-backend/internal/platform/logger"
)

const (
	// DefaultElectionID asks the API for whichever election covers the address.
	DefaultElectionID = "2000"

	RateLimitMessage = "Rate limit exceeded. Google Civic API allows 25,000 queries/day."
)

// ErrMissingAPIKey is returned before any request when no key is configured.
var ErrMissingAPIKey = errors.New("google civic: missing api key")

type Client interface {
	VoterInfo(ctx context.Context, address, electionID string) (*VoterInfoResponse, error)
	Elections(ctx context.Context) ([]Election, error)
	Configured() bool
}

type Config struct {
	APIKey string
	// BaseURL overrides the API root, e.g. for a local stand-in.
	BaseURL string
	Timeout time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:  envutil.String("GOOGLE_CIVIC_API_KEY", ""),
		BaseURL: envutil.String("GOOGLE_CIVIC_BASE_URL", ""),
		Timeout: envutil.Seconds("PROVIDER_TIMEOUT_SECONDS", 15*time.Second),
	}
}

type client struct {
	log *logger.Logger
	cfg Config
	svc *civicinfo.Service
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	c := &client{log: log.With("client", "GoogleCivicClient"), cfg: cfg}
	if cfg.APIKey == "" {
		return c, nil
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL+"/"))
	}
	svc, err := civicinfo.NewService(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("google civic: init service: %w", err)
	}
	c.svc = svc
	return c, nil
}

func (c *client) Configured() bool { return c.svc != nil }

func (c *client) VoterInfo(ctx context.Context, address, electionID string) (*VoterInfoResponse, error) {
	if !c.Configured() {
		return nil, ErrMissingAPIKey
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, fmt.Errorf("google civic: address required")
	}
	id, err := strconv.ParseInt(strings.TrimSpace(electionID), 10, 64)
	if err != nil {
		if strings.TrimSpace(electionID) != "" {
			c.log.Debug("Ignoring non-numeric election id", "election_id", electionID)
		}
		id, _ = strconv.ParseInt(DefaultElectionID, 10, 64)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	c.log.Debug("Fetching voter info", "election_id", id)
	resp, err := c.svc.Elections.VoterInfoQuery().Address(address).ElectionId(id).Context(ctx).Do()
	if err != nil {
		return nil, wrapErr("voterinfo", err)
	}
	return fromVoterInfo(resp), nil
}

func (c *client) Elections(ctx context.Context) ([]Election, error) {
	if !c.Configured() {
		return nil, ErrMissingAPIKey
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.svc.Elections.ElectionQuery().Context(ctx).Do()
	if err != nil {
		return nil, wrapErr("elections", err)
	}
	out := make([]Election, 0, len(resp.Elections))
	for _, e := range resp.Elections {
		if e != nil {
			out = append(out, fromElection(e))
		}
	}
	return out, nil
}

// wrapErr turns API errors into httpx.HTTPError so callers classify them
// the same way as the other providers, and strips the key from transport
// errors.
func wrapErr(op string, err error) error {
	var ge *googleapi.Error
	if errors.As(err, &ge) {
		he := &httpx.HTTPError{StatusCode: ge.Code, Body: ge.Body, Message: ge.Message}
		if ge.Code == http.StatusTooManyRequests {
			he.Message = RateLimitMessage
		}
		return fmt.Errorf("google civic %s: %w", op, he)
	}
	return fmt.Errorf("google civic %s: %w", op, httpx.RedactURLError(err))
}

func fromVoterInfo(r *civicinfo.CivicinfoApiprotosV2VoterInfoResponse) *VoterInfoResponse {
	out := &VoterInfoResponse{
		PollingLocations: fromLocations(r.PollingLocations),
		EarlyVoteSites:   fromLocations(r.EarlyVoteSites),
		DropOffLocations: fromLocations(r.DropOffLocations),
	}
	if r.Election != nil {
		out.Election = fromElection(r.Election)
	}
	for _, ct := range r.Contests {
		if ct == nil {
			continue
		}
		contest := Contest{
			Type:               ct.Type,
			Office:             ct.Office,
			ReferendumTitle:    ct.ReferendumTitle,
			ReferendumSubtitle: ct.ReferendumSubtitle,
			ReferendumText:     ct.ReferendumText,
			Title:              ct.BallotTitle,
			Description:        ct.ReferendumBrief,
		}
		if ct.District != nil {
			contest.District = &District{Name: ct.District.Name, Scope: ct.District.Scope, ID: ct.District.Id}
		}
		for _, cand := range ct.Candidates {
			if cand == nil {
				continue
			}
			contest.Candidates = append(contest.Candidates, Candidate{
				Name:         cand.Name,
				Party:        cand.Party,
				Email:        cand.Email,
				Phone:        cand.Phone,
				CandidateURL: cand.CandidateUrl,
				PhotoURL:     cand.PhotoUrl,
			})
		}
		out.Contests = append(out.Contests, contest)
	}
	return out
}

func fromElection(e *civicinfo.CivicinfoSchemaV2Election) Election {
	return Election{
		ID:            strconv.FormatInt(e.Id, 10),
		Name:          e.Name,
		ElectionDay:   e.ElectionDay,
		OCDDivisionID: e.OcdDivisionId,
	}
}

func fromLocations(locs []*civicinfo.CivicinfoSchemaV2PollingLocation) []Location {
	if len(locs) == 0 {
		return nil
	}
	out := make([]Location, 0, len(locs))
	for _, l := range locs {
		if l == nil {
			continue
		}
		loc := Location{Notes: l.Notes, PollingHours: l.PollingHours}
		if a := l.Address; a != nil {
			loc.Address = Address{LocationName: a.LocationName, Line1: a.Line1, City: a.City, State: a.State, Zip: a.Zip}
		}
		out = append(out, loc)
	}
	return out
}
