package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/voterguide-backend/internal/ballots"
	"github.com/yungbote/voterguide-backend/internal/clients/googlecivic"
	"github.com/yungbote/voterguide-backend/internal/pkg/httpx"
)

type stubSource struct {
	mu       sync.Mutex
	name     string
	byName   map[string]*ballots.ElectionInfo
	err      error
	requests []ballots.FetchRequest
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Ready(ballots.FetchRequest) error { return nil }

func (s *stubSource) Fetch(_ context.Context, req ballots.FetchRequest) (*ballots.ElectionInfo, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.byName[req.JurisdictionName], nil
}

type stubCivic struct {
	key       bool
	resp      *googlecivic.VoterInfoResponse
	err       error
	elections []googlecivic.Election
}

func (c *stubCivic) Configured() bool { return c.key }

func (c *stubCivic) VoterInfo(context.Context, string, string) (*googlecivic.VoterInfoResponse, error) {
	return c.resp, c.err
}

func (c *stubCivic) Elections(context.Context) ([]googlecivic.Election, error) {
	return c.elections, c.err
}

func kingCountyInfo() *ballots.ElectionInfo {
	return &ballots.ElectionInfo{
		Title:  "King County General",
		Date:   time.Date(2025, 11, 4, 0, 0, 0, 0, time.UTC),
		Type:   "general",
		Source: "stub",
		Items: []ballots.BallotItem{
			{Title: "Proposition 1", Type: "measure", Options: []string{"YES", "NO"}},
			{Title: "Mayor", Type: "candidate", Options: []string{"A", "Write-in"}},
		},
	}
}

func newBallotDataService(f *fixture, src ballots.Source, civic *stubCivic) BallotDataService {
	merger := ballots.NewMerger(f.db, f.log, f.elections, f.ballots)
	fetcher := ballots.NewFetcher(f.log, ballots.FetcherConfig{}, src)
	civicFetcher := ballots.NewFetcher(f.log, ballots.FetcherConfig{}, ballots.NewGoogleCivicSource(civic))
	return NewBallotDataService(f.log, f.jurisdictions, merger, fetcher, civicFetcher, civic)
}

func TestCollectDerivesAddressAndMerges(t *testing.T) {
	f := newFixture(t)
	src := &stubSource{name: "stub", byName: map[string]*ballots.ElectionInfo{"King County": kingCountyInfo()}}
	svc := newBallotDataService(f, src, &stubCivic{})

	res, err := svc.Collect(context.Background(), CollectRequest{JurisdictionID: "wa-king"})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "stub", res.Source)
	require.Equal(t, 2, res.Written)
	require.EqualValues(t, 1, res.SamplesDeleted)
	require.Len(t, res.Ballots, 2)
	require.Equal(t, testElectionID, res.Election.ID)

	require.Len(t, src.requests, 1)
	require.Equal(t, "Main St, King County, WA 98101", src.requests[0].Address)
	require.Equal(t, "WA", src.requests[0].State)
}

func TestCollectNoData(t *testing.T) {
	f := newFixture(t)
	src := &stubSource{name: "stub"}
	svc := newBallotDataService(f, src, &stubCivic{})

	_, err := svc.Collect(context.Background(), CollectRequest{JurisdictionID: "wa-king", Address: "1 Pine St, Seattle, WA"})
	ae := requireStatus(t, err, http.StatusNotFound)
	require.Equal(t, "no_ballot_data", ae.Code)
	require.True(t, errors.Is(err, ballots.ErrNoData))
	require.True(t, strings.HasPrefix(err.Error(), "No ballot data found"), err.Error())

	count, err := f.ballots.CountByElection(context.Background(), nil, testElectionID, true)
	require.NoError(t, err)
	require.EqualValues(t, 1, count, "samples must survive an empty fetch")
}

func TestCollectValidation(t *testing.T) {
	f := newFixture(t)
	svc := newBallotDataService(f, &stubSource{name: "stub"}, &stubCivic{})

	_, err := svc.Collect(context.Background(), CollectRequest{})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = svc.Collect(context.Background(), CollectRequest{JurisdictionID: "nowhere"})
	requireStatus(t, err, http.StatusNotFound)
}

func TestFetchRealBallotValidation(t *testing.T) {
	f := newFixture(t)
	src := &stubSource{name: "stub"}

	_, err := newBallotDataService(f, src, &stubCivic{key: true}).FetchRealBallot(context.Background(), CollectRequest{JurisdictionID: "wa-king"})
	requireStatus(t, err, http.StatusBadRequest)
	require.Equal(t, msgAddressRequired, err.Error())

	_, err = newBallotDataService(f, src, &stubCivic{}).FetchRealBallot(context.Background(), CollectRequest{JurisdictionID: "wa-king", Address: "1 Pine St"})
	requireStatus(t, err, http.StatusBadRequest)
	require.Contains(t, err.Error(), "GOOGLE_CIVIC_API_KEY")
	require.Empty(t, src.requests)
}

func TestFetchRealBallotOutcomes(t *testing.T) {
	f := newFixture(t)
	req := CollectRequest{JurisdictionID: "wa-king", Address: "500 4th Ave, Seattle, WA 98104"}

	limited := &stubCivic{key: true, err: &httpx.HTTPError{StatusCode: http.StatusTooManyRequests, Message: googlecivic.RateLimitMessage}}
	_, err := newBallotDataService(f, &stubSource{name: "stub"}, limited).FetchRealBallot(context.Background(), req)
	requireStatus(t, err, http.StatusTooManyRequests)
	require.Contains(t, err.Error(), "25,000 queries/day")

	empty := &stubCivic{key: true, resp: &googlecivic.VoterInfoResponse{}}
	_, err = newBallotDataService(f, &stubSource{name: "stub"}, empty).FetchRealBallot(context.Background(), req)
	requireStatus(t, err, http.StatusNotFound)
	require.Contains(t, err.Error(), "Try a more specific address with city and state.")

	live := &stubCivic{key: true, resp: &googlecivic.VoterInfoResponse{
		Election: googlecivic.Election{ID: "9000", Name: "General Election", ElectionDay: "2025-11-04"},
		Contests: []googlecivic.Contest{{Type: "Referendum", ReferendumTitle: "Charter Amendment 1"}},
	}}
	res, err := newBallotDataService(f, &stubSource{name: "stub"}, live).FetchRealBallot(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, ballots.SourceGoogleCivic, res.Source)
	require.Len(t, res.Ballots, 1)
	require.Equal(t, "Charter Amendment 1", res.Ballots[0].Title)
}

func TestRefreshAllContinuesPastMisses(t *testing.T) {
	f := newFixture(t)
	src := &stubSource{name: "stub", byName: map[string]*ballots.ElectionInfo{"King County": kingCountyInfo()}}
	svc := newBallotDataService(f, src, &stubCivic{})

	report, err := svc.RefreshAll(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, report.Entries, 2)
	require.Equal(t, 1, report.Succeeded)
	require.Equal(t, 1, report.NoData)
	require.Equal(t, 0, report.Failed)

	// Jurisdictions are visited ordered by state: CO before WA.
	require.Equal(t, "co-larimer", report.Entries[0].JurisdictionID)
	require.True(t, report.Entries[0].NoData)
	require.Equal(t, 2, report.Entries[1].Written)
}

func TestRefreshAllSelectedJurisdictions(t *testing.T) {
	f := newFixture(t)
	src := &stubSource{name: "stub"}
	svc := newBallotDataService(f, src, &stubCivic{})

	report, err := svc.RefreshAll(context.Background(), []string{"co-larimer"})
	require.NoError(t, err)
	require.Len(t, report.Entries, 1)
	require.Len(t, src.requests, 1)
	require.Equal(t, "Larimer County", src.requests[0].JurisdictionName)
}

func TestCivicElections(t *testing.T) {
	f := newFixture(t)
	_, err := newBallotDataService(f, &stubSource{name: "stub"}, &stubCivic{}).CivicElections(context.Background())
	requireStatus(t, err, http.StatusBadRequest)

	civic := &stubCivic{key: true, elections: []googlecivic.Election{{ID: "2000", Name: "VIP Test Election", ElectionDay: "2031-06-06"}}}
	out, err := newBallotDataService(f, &stubSource{name: "stub"}, civic).CivicElections(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
}

type leakySource struct{ name string }

func (s *leakySource) Name() string { return s.name }

func (s *leakySource) Ready(ballots.FetchRequest) error { return nil }

func (s *leakySource) Fetch(context.Context, ballots.FetchRequest) (*ballots.ElectionInfo, error) {
	return nil, &url.Error{Op: "Get", URL: "https://api.example.test/v1/elections?api_key=SECRET-KEY-123", Err: errors.New("connection refused")}
}

func TestCollectAttemptsNeverCarryProviderKeys(t *testing.T) {
	f := newFixture(t)
	good := &stubSource{name: "stub", byName: map[string]*ballots.ElectionInfo{"King County": kingCountyInfo()}}
	merger := ballots.NewMerger(f.db, f.log, f.elections, f.ballots)
	fetcher := ballots.NewFetcher(f.log, ballots.FetcherConfig{}, &leakySource{name: "leaky"}, good)
	civic := &stubCivic{}
	svc := NewBallotDataService(f.log, f.jurisdictions, merger, fetcher, ballots.NewFetcher(f.log, ballots.FetcherConfig{}, ballots.NewGoogleCivicSource(civic)), civic)

	res, err := svc.Collect(context.Background(), CollectRequest{JurisdictionID: "wa-king"})
	require.NoError(t, err)
	require.Len(t, res.Attempts, 2)
	require.Equal(t, ballots.OutcomeFailed, res.Attempts[0].Outcome)
	require.Equal(t, "request failed", res.Attempts[0].Reason)

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "SECRET-KEY-123")
}

func TestFetchRealBallotTransportErrorHidesKey(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	client, err := googlecivic.New(f.log, googlecivic.Config{APIKey: "SECRET-KEY-123", BaseURL: base, Timeout: 2 * time.Second})
	require.NoError(t, err)
	merger := ballots.NewMerger(f.db, f.log, f.elections, f.ballots)
	civicFetcher := ballots.NewFetcher(f.log, ballots.FetcherConfig{}, ballots.NewGoogleCivicSource(client))
	svc := NewBallotDataService(f.log, f.jurisdictions, merger, civicFetcher, civicFetcher, client)

	_, err = svc.FetchRealBallot(context.Background(), CollectRequest{JurisdictionID: "wa-king", Address: "500 4th Ave, Seattle, WA 98104"})
	ae := requireStatus(t, err, http.StatusBadGateway)
	require.Equal(t, "provider_error", ae.Code)
	require.NotContains(t, err.Error(), "SECRET-KEY-123")
	require.Contains(t, err.Error(), "request failed")
}

func TestCollectKeepsRequestedElectionID(t *testing.T) {
	f := newFixture(t)
	src := &stubSource{name: "stub", byName: map[string]*ballots.ElectionInfo{"King County": kingCountyInfo()}}
	svc := newBallotDataService(f, src, &stubCivic{})

	const custom = "election-wa-king-2025-11-04-special"
	res, err := svc.Collect(context.Background(), CollectRequest{JurisdictionID: "wa-king", ElectionID: custom})
	require.NoError(t, err)
	require.Equal(t, custom, res.Election.ID)
	require.EqualValues(t, 0, res.SamplesDeleted, "samples of another election stay")
	require.Equal(t, custom, src.requests[0].ElectionID)

	stored, err := f.ballots.CountByElection(context.Background(), nil, custom, false)
	require.NoError(t, err)
	require.EqualValues(t, 2, stored)
}

func TestCollectReturnsSitesAndDeadlines(t *testing.T) {
	f := newFixture(t)
	info := kingCountyInfo()
	info.PollingLocations = []ballots.Site{{Address: "500 4th Ave, Seattle, WA 98104", Hours: "7am-8pm"}}
	info.EarlyVoteSites = []ballots.Site{{Address: "919 SW Grady Way, Renton, WA 98057"}}
	info.Deadlines = &ballots.Deadlines{Registration: "2025-10-27"}
	src := &stubSource{name: "stub", byName: map[string]*ballots.ElectionInfo{"King County": info}}

	res, err := newBallotDataService(f, src, &stubCivic{}).Collect(context.Background(), CollectRequest{JurisdictionID: "wa-king"})
	require.NoError(t, err)
	require.False(t, res.Preview)
	require.Equal(t, info.PollingLocations, res.PollingLocations)
	require.Equal(t, info.EarlyVoteSites, res.EarlyVoteSites)
	require.Equal(t, "2025-10-27", res.Deadlines.Registration)
}

func TestFetchRealBallotPreviewDoesNotSave(t *testing.T) {
	f := newFixture(t)
	civic := &stubCivic{key: true, resp: &googlecivic.VoterInfoResponse{
		Election: googlecivic.Election{ID: "9000", Name: "General Election", ElectionDay: "2025-11-04"},
		Contests: []googlecivic.Contest{{Type: "Referendum", ReferendumTitle: "Charter Amendment 1"}},
		PollingLocations: []googlecivic.Location{{
			Address:      googlecivic.Address{Line1: "500 4th Ave", City: "Seattle", State: "WA", Zip: "98104"},
			PollingHours: "7am-8pm",
		}},
	}}
	svc := newBallotDataService(f, &stubSource{name: "stub"}, civic)

	res, err := svc.FetchRealBallot(context.Background(), CollectRequest{Address: "500 4th Ave, Seattle, WA 98104"})
	require.NoError(t, err)
	require.True(t, res.Preview)
	require.Equal(t, ballots.SourceGoogleCivic, res.Source)
	require.Nil(t, res.Election)
	require.Len(t, res.Info.Items, 1)
	require.Equal(t, "Charter Amendment 1", res.Info.Items[0].Title)
	require.Len(t, res.PollingLocations, 1)
	require.Equal(t, "7am-8pm", res.PollingLocations[0].Hours)

	samples, err := f.ballots.CountByElection(context.Background(), nil, testElectionID, true)
	require.NoError(t, err)
	require.EqualValues(t, 1, samples)
	merged, err := f.ballots.CountByElection(context.Background(), nil, testElectionID, false)
	require.NoError(t, err)
	require.Zero(t, merged)

	_, err = svc.FetchRealBallot(context.Background(), CollectRequest{})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestCollectGoogleOnlyWithoutAddress(t *testing.T) {
	f := newFixture(t)
	civic := &stubCivic{key: true, err: errors.New("must not be called")}
	svc := newBallotDataService(f, ballots.NewGoogleCivicSource(civic), civic)

	_, err := svc.Collect(context.Background(), CollectRequest{JurisdictionID: "co-larimer"})
	ae := requireStatus(t, err, http.StatusBadRequest)
	require.Equal(t, "address_required", ae.Code)
	var ve *ballots.ValidationError
	require.True(t, errors.As(err, &ve))
	require.Equal(t, "address", ve.Field)

	// No key configured means nothing could run: that stays a 404.
	unconfigured := &stubCivic{}
	_, err = newBallotDataService(f, ballots.NewGoogleCivicSource(unconfigured), unconfigured).Collect(context.Background(), CollectRequest{JurisdictionID: "co-larimer"})
	requireStatus(t, err, http.StatusNotFound)
}

type gatedSource struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (s *gatedSource) Name() string { return "gated" }

func (s *gatedSource) Ready(ballots.FetchRequest) error { return nil }

func (s *gatedSource) Fetch(ctx context.Context, _ ballots.FetchRequest) (*ballots.ElectionInfo, error) {
	if s.calls.Add(1) == 1 {
		close(s.started)
	}
	select {
	case <-s.release:
		return kingCountyInfo(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestCollectSurvivesFirstCallerCancel(t *testing.T) {
	f := newFixture(t)
	src := &gatedSource{started: make(chan struct{}), release: make(chan struct{})}
	svc := newBallotDataService(f, src, &stubCivic{})
	req := CollectRequest{JurisdictionID: "wa-king"}

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Collect(firstCtx, req)
		firstErr <- err
	}()
	<-src.started
	cancel()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	type outcome struct {
		res *CollectResult
		err error
	}
	second := make(chan outcome, 1)
	go func() {
		res, err := svc.Collect(context.Background(), req)
		second <- outcome{res, err}
	}()
	time.Sleep(50 * time.Millisecond)
	close(src.release)

	got := <-second
	require.NoError(t, got.err)
	require.Equal(t, 2, got.res.Written)
	require.EqualValues(t, 1, src.calls.Load(), "the second caller joins the running fetch")
}
