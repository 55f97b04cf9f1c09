package ballots

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/voterguide-backend/internal/clients/ballotready"
	"github.com/yungbote/voterguide-backend/internal/clients/democracyworks"
	"github.com/yungbote/voterguide-backend/internal/clients/googlecivic"
)

// Source is one provider in the fallback chain.
type Source interface {
	Name() string
	// Ready reports, without any I/O, whether the source can be attempted
	// for req. A non-nil error wraps ErrUnavailable.
	Ready(req FetchRequest) error
	Fetch(ctx context.Context, req FetchRequest) (*ElectionInfo, error)
}

type googleCivicSource struct {
	client googlecivic.Client
}

func NewGoogleCivicSource(client googlecivic.Client) Source {
	return &googleCivicSource{client: client}
}

func (s *googleCivicSource) Name() string { return SourceGoogleCivic }

func (s *googleCivicSource) Ready(req FetchRequest) error {
	if s.client == nil || !s.client.Configured() {
		return unavailable("GOOGLE_CIVIC_API_KEY not configured")
	}
	if strings.TrimSpace(req.Address) == "" {
		return unavailable("address required")
	}
	return nil
}

func (s *googleCivicSource) Fetch(ctx context.Context, req FetchRequest) (*ElectionInfo, error) {
	resp, err := s.client.VoterInfo(ctx, req.Address, req.ElectionID)
	if err != nil {
		return nil, err
	}
	if len(resp.Contests) == 0 {
		return nil, nil
	}
	date, err := parseElectionDate(resp.Election.ElectionDay)
	if err != nil {
		return nil, err
	}
	return &ElectionInfo{
		ProviderElectionID: resp.Election.ID,
		Title:              resp.Election.Name,
		Date:               date,
		Type:               "general",
		PollingLocations:   googleSites(resp.PollingLocations),
		EarlyVoteSites:     googleSites(resp.EarlyVoteSites),
		Items:              ConvertToBallotItems(resp.Contests, SourceGoogleCivic),
		Source:             SourceGoogleCivic,
	}, nil
}

func googleSites(locs []googlecivic.Location) []Site {
	if len(locs) == 0 {
		return nil
	}
	out := make([]Site, 0, len(locs))
	for _, l := range locs {
		a := l.Address
		out = append(out, Site{
			Address: FormatAddress(a.Line1, a.City, a.State, a.Zip),
			Hours:   l.PollingHours,
		})
	}
	return out
}

type democracyWorksSource struct {
	client democracyworks.Client
}

func NewDemocracyWorksSource(client democracyworks.Client) Source {
	return &democracyWorksSource{client: client}
}

func (s *democracyWorksSource) Name() string { return SourceDemocracyWorks }

func (s *democracyWorksSource) Ready(FetchRequest) error {
	if s.client == nil || !s.client.Configured() {
		return unavailable("DEMOCRACY_WORKS_API_KEY not configured")
	}
	return nil
}

func (s *democracyWorksSource) Fetch(ctx context.Context, req FetchRequest) (*ElectionInfo, error) {
	elections, err := s.client.Elections(ctx, req.State, req.JurisdictionName)
	if err != nil {
		return nil, err
	}
	if len(elections) == 0 {
		return nil, nil
	}
	// The first listed election is the nearest upcoming one.
	e := elections[0]
	contests, err := s.client.Ballot(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	date, err := parseElectionDate(e.Date)
	if err != nil {
		return nil, err
	}
	return &ElectionInfo{
		ProviderElectionID: e.ID,
		Title:              e.Name,
		Description:        e.Description,
		Date:               date,
		Type:               e.Type,
		OfficialURL:        e.OfficialURL,
		Deadlines: &Deadlines{
			Registration:    e.Deadlines.Registration,
			AbsenteeRequest: e.Deadlines.AbsenteeRequest,
			EarlyVoting:     e.Deadlines.EarlyVoting,
			ElectionDay:     e.Deadlines.ElectionDay,
		},
		Items:  DemocracyWorksItems(contests),
		Source: SourceDemocracyWorks,
	}, nil
}

type ballotReadySource struct {
	client ballotready.Client
}

func NewBallotReadySource(client ballotready.Client) Source {
	return &ballotReadySource{client: client}
}

func (s *ballotReadySource) Name() string { return SourceBallotReady }

func (s *ballotReadySource) Ready(FetchRequest) error {
	if s.client == nil || !s.client.Configured() {
		return unavailable("BALLOTREADY_API_KEY not configured")
	}
	return nil
}

func (s *ballotReadySource) Fetch(ctx context.Context, req FetchRequest) (*ElectionInfo, error) {
	elections, err := s.client.Elections(ctx, req.State, req.JurisdictionName)
	if err != nil {
		return nil, err
	}
	if len(elections) == 0 {
		return nil, nil
	}
	e := elections[0]
	date, err := parseElectionDate(e.Date)
	if err != nil {
		return nil, err
	}
	return &ElectionInfo{
		ProviderElectionID: e.ID,
		Title:              e.Name,
		Date:               date,
		Type:               "general",
		Items:              BallotReadyItems(e),
		Source:             SourceBallotReady,
	}, nil
}

var electionDateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

func parseElectionDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range electionDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable election date %q", raw)
}
