package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yungbote/voterguide-backend/internal/ballots"
	"github.com/yungbote/voterguide-backend/internal/clients/googlecivic"
	"github.com/yungbote/voterguide-backend/internal/data/repos"
	"github.com/yungbote/voterguide-backend/internal/data/repos/dberr"
	types "github.com/yungbote/voterguide-backend/internal/domain"
	"github.com/yungbote/voterguide-backend/internal/pkg/httpx"
	"github.com/yungbote/voterguide-backend/internal/platform/apierr"
	"github.com/yungbote/voterguide-backend/internal/platform/logger"
)

const (
	msgAddressRequired = "Address is required to fetch real ballot data"
	msgCivicKeyMissing = "Add GOOGLE_CIVIC_API_KEY to your environment to fetch real ballot data."
	msgNoRealBallot    = "No ballot data found for this address. Try a more specific address with city and state."
)

type CollectRequest struct {
	JurisdictionID string `json:"jurisdictionId"`
	Address        string `json:"address,omitempty"`
	ElectionID     string `json:"electionId,omitempty"`
}

// CollectResult is a merged refresh, or with Preview set, the provider
// data for an address that was not saved anywhere.
type CollectResult struct {
	Success          bool                  `json:"success"`
	Preview          bool                  `json:"preview,omitempty"`
	Election         *types.Election       `json:"election,omitempty"`
	Ballots          []*types.Ballot       `json:"ballots,omitempty"`
	Info             *ballots.ElectionInfo `json:"electionInfo,omitempty"`
	Source           string                `json:"source"`
	Written          int                   `json:"written"`
	SamplesDeleted   int64                 `json:"samplesDeleted"`
	PollingLocations []ballots.Site        `json:"pollingLocations,omitempty"`
	EarlyVoteSites   []ballots.Site        `json:"earlyVoteSites,omitempty"`
	Deadlines        *ballots.Deadlines    `json:"deadlines,omitempty"`
	Attempts         []ballots.Attempt     `json:"attempts,omitempty"`
}

type BulkEntry struct {
	JurisdictionID string `json:"jurisdictionId"`
	Name           string `json:"name"`
	Source         string `json:"source,omitempty"`
	Written        int    `json:"written"`
	SamplesDeleted int64  `json:"samplesDeleted"`
	NoData         bool   `json:"noData,omitempty"`
	Error          string `json:"error,omitempty"`
}

// BulkReport summarizes one RefreshAll run.
type BulkReport struct {
	Entries   []BulkEntry `json:"entries"`
	Succeeded int         `json:"succeeded"`
	NoData    int         `json:"noData"`
	Failed    int         `json:"failed"`
}

type BallotDataService interface {
	// Collect runs the full provider chain for one jurisdiction and merges
	// the result.
	Collect(ctx context.Context, req CollectRequest) (*CollectResult, error)
	// FetchRealBallot is Collect restricted to Google Civic with an
	// explicit address. Without a jurisdiction it previews the address
	// and stores nothing.
	FetchRealBallot(ctx context.Context, req CollectRequest) (*CollectResult, error)
	// RefreshAll collects each jurisdiction in turn. An empty list means
	// every stored jurisdiction.
	RefreshAll(ctx context.Context, jurisdictionIDs []string) (*BulkReport, error)
	CivicElections(ctx context.Context) ([]googlecivic.Election, error)
}

type ballotDataService struct {
	log           *logger.Logger
	jurisdictions repos.JurisdictionRepo
	merger        *ballots.Merger
	fetcher       *ballots.Fetcher
	civicFetcher  *ballots.Fetcher
	civic         googlecivic.Client
	inflight      singleflight.Group
}

func NewBallotDataService(
	log *logger.Logger,
	jurisdictions repos.JurisdictionRepo,
	merger *ballots.Merger,
	fetcher *ballots.Fetcher,
	civicFetcher *ballots.Fetcher,
	civic googlecivic.Client,
) BallotDataService {
	return &ballotDataService{
		log:           log.With("service", "BallotDataService"),
		jurisdictions: jurisdictions,
		merger:        merger,
		fetcher:       fetcher,
		civicFetcher:  civicFetcher,
		civic:         civic,
	}
}

func (s *ballotDataService) Collect(ctx context.Context, req CollectRequest) (*CollectResult, error) {
	if strings.TrimSpace(req.JurisdictionID) == "" {
		return nil, apierr.New(http.StatusBadRequest, "invalid_request", ballots.NewValidationError("jurisdictionId", "jurisdictionId is required"))
	}
	return s.collectOnce(ctx, req, s.fetcher)
}

func (s *ballotDataService) FetchRealBallot(ctx context.Context, req CollectRequest) (*CollectResult, error) {
	if strings.TrimSpace(req.Address) == "" {
		return nil, apierr.New(http.StatusBadRequest, "address_required", ballots.NewValidationError("address", msgAddressRequired))
	}
	if s.civic == nil || !s.civic.Configured() {
		return nil, apierr.New(http.StatusBadRequest, "api_key_missing", ballots.NewValidationError("apiKey", msgCivicKeyMissing))
	}
	return s.collectOnce(ctx, req, s.civicFetcher)
}

// collectOnce collapses identical concurrent requests into one fetch and
// merge. Callers waiting on a shared result get the same pointer. The
// shared work is detached from any one caller's cancellation; each caller
// stops waiting when its own context ends.
func (s *ballotDataService) collectOnce(ctx context.Context, req CollectRequest, fetcher *ballots.Fetcher) (*CollectResult, error) {
	key := strings.Join([]string{
		s.chainName(fetcher),
		strings.TrimSpace(req.JurisdictionID),
		strings.ToLower(strings.TrimSpace(req.Address)),
		strings.TrimSpace(req.ElectionID),
	}, "|")
	detached := context.WithoutCancel(ctx)
	ch := s.inflight.DoChan(key, func() (interface{}, error) {
		return s.collect(detached, req, fetcher)
	})
	select {
	case <-ctx.Done():
		s.log.Debug("Caller left in-flight collect", "jurisdiction", req.JurisdictionID, "error", ctx.Err())
		return nil, ctx.Err()
	case r := <-ch:
		if r.Shared {
			s.log.Debug("Joined in-flight collect", "jurisdiction", req.JurisdictionID)
		}
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*CollectResult), nil
	}
}

func (s *ballotDataService) chainName(fetcher *ballots.Fetcher) string {
	if fetcher == s.civicFetcher {
		return "civic"
	}
	return "all"
}

func (s *ballotDataService) collect(ctx context.Context, req CollectRequest, fetcher *ballots.Fetcher) (*CollectResult, error) {
	if strings.TrimSpace(req.JurisdictionID) == "" {
		return s.preview(ctx, req, fetcher)
	}
	j, err := s.jurisdictions.GetWithPrecincts(ctx, nil, strings.TrimSpace(req.JurisdictionID))
	if err != nil {
		if dberr.IsCode(dberr.MapError("get jurisdiction", err), dberr.CodeNotFound) {
			return nil, apierr.New(http.StatusNotFound, "jurisdiction_not_found", fmt.Errorf("jurisdiction %q not found", req.JurisdictionID))
		}
		return nil, apierr.New(http.StatusInternalServerError, "jurisdiction_lookup_failed", err)
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		address = ballots.DeriveAddress(j)
	}

	electionID := strings.TrimSpace(req.ElectionID)
	fetchReq := ballots.FetchRequest{
		JurisdictionName: j.Name,
		State:            j.State,
		Address:          address,
		ElectionID:       electionID,
	}
	if err := addressOnlyGap(fetcher, fetchReq); err != nil {
		return nil, err
	}

	info, report := fetcher.Fetch(ctx, fetchReq)
	if info == nil {
		return nil, s.noDataError(fetcher, report)
	}

	res, err := s.merger.Merge(ctx, ballots.MergeInput{
		JurisdictionID:   j.ID,
		JurisdictionName: j.Name,
		ElectionID:       electionID,
		Info:             info,
	})
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "persistence_failed", err)
	}
	return withSites(&CollectResult{
		Success:        true,
		Election:       res.Election,
		Ballots:        res.Ballots,
		Source:         report.Source,
		Written:        res.Written,
		SamplesDeleted: res.SamplesDeleted,
		Attempts:       report.Attempts,
	}, info), nil
}

// preview fetches for a bare address and returns the provider data as is.
func (s *ballotDataService) preview(ctx context.Context, req CollectRequest, fetcher *ballots.Fetcher) (*CollectResult, error) {
	fetchReq := ballots.FetchRequest{
		Address:    strings.TrimSpace(req.Address),
		ElectionID: strings.TrimSpace(req.ElectionID),
	}
	if err := addressOnlyGap(fetcher, fetchReq); err != nil {
		return nil, err
	}
	info, report := fetcher.Fetch(ctx, fetchReq)
	if info == nil {
		return nil, s.noDataError(fetcher, report)
	}
	s.log.Info("Ballot preview fetched", "source", report.Source, "items", len(info.Items))
	return withSites(&CollectResult{
		Success:  true,
		Preview:  true,
		Info:     info,
		Source:   report.Source,
		Attempts: report.Attempts,
	}, info), nil
}

func withSites(res *CollectResult, info *ballots.ElectionInfo) *CollectResult {
	res.PollingLocations = info.PollingLocations
	res.EarlyVoteSites = info.EarlyVoteSites
	res.Deadlines = info.Deadlines
	return res
}

// addressOnlyGap rejects a request whose only usable sources need an
// address it does not have.
func addressOnlyGap(fetcher *ballots.Fetcher, req ballots.FetchRequest) error {
	if req.Address != "" || fetcher.Ready(req) {
		return nil
	}
	withAddress := req
	withAddress.Address = "address"
	if !fetcher.Ready(withAddress) {
		return nil
	}
	return apierr.New(http.StatusBadRequest, "address_required", ballots.NewValidationError("address", msgAddressRequired))
}

func (s *ballotDataService) noDataError(fetcher *ballots.Fetcher, report *ballots.FetchReport) error {
	nd := &ballots.NoDataError{Report: report}
	if fetcher != s.civicFetcher {
		return apierr.New(http.StatusNotFound, "no_ballot_data", nd)
	}
	for _, a := range report.Attempts {
		switch a.Outcome {
		case ballots.OutcomeRateLimited:
			return apierr.New(http.StatusTooManyRequests, "rate_limited", nd)
		case ballots.OutcomeFailed:
			return apierr.New(http.StatusBadGateway, "provider_error", fmt.Errorf("%w: %s: %s", ballots.ErrNoData, a.Provider, a.Reason))
		}
	}
	return apierr.New(http.StatusNotFound, "no_ballot_data", fmt.Errorf("%w: %s", ballots.ErrNoData, msgNoRealBallot))
}

func (s *ballotDataService) RefreshAll(ctx context.Context, jurisdictionIDs []string) (*BulkReport, error) {
	var (
		list []*types.Jurisdiction
		err  error
	)
	if len(jurisdictionIDs) == 0 {
		list, err = s.jurisdictions.List(ctx, nil)
	} else {
		list, err = s.jurisdictions.GetByIDs(ctx, nil, jurisdictionIDs)
	}
	if err != nil {
		return nil, fmt.Errorf("load jurisdictions: %w", err)
	}
	if len(jurisdictionIDs) > 0 && len(list) < len(jurisdictionIDs) {
		s.log.Warn("Some requested jurisdictions do not exist", "requested", len(jurisdictionIDs), "found", len(list))
	}

	report := &BulkReport{Entries: make([]BulkEntry, 0, len(list))}
	started := time.Now()
	for _, j := range list {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		entry := BulkEntry{JurisdictionID: j.ID, Name: j.Name}
		res, err := s.collectOnce(ctx, CollectRequest{JurisdictionID: j.ID}, s.fetcher)
		switch {
		case err == nil:
			entry.Source = res.Source
			entry.Written = res.Written
			entry.SamplesDeleted = res.SamplesDeleted
			report.Succeeded++
		case errors.Is(err, ballots.ErrNoData):
			entry.NoData = true
			entry.Error = err.Error()
			report.NoData++
			s.log.Info("No ballot data for jurisdiction", "jurisdiction", j.Name)
		default:
			entry.Error = err.Error()
			report.Failed++
			s.log.Error("Jurisdiction refresh failed", "jurisdiction", j.Name, "error", err)
		}
		report.Entries = append(report.Entries, entry)
	}

	s.log.Info("Bulk refresh finished",
		"jurisdictions", len(list),
		"succeeded", report.Succeeded,
		"no_data", report.NoData,
		"failed", report.Failed,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return report, nil
}

func (s *ballotDataService) CivicElections(ctx context.Context) ([]googlecivic.Election, error) {
	if s.civic == nil || !s.civic.Configured() {
		return nil, apierr.New(http.StatusBadRequest, "api_key_missing", errors.New(msgCivicKeyMissing))
	}
	out, err := s.civic.Elections(ctx)
	if err != nil {
		status := http.StatusBadGateway
		if httpx.IsRateLimited(err) {
			status = http.StatusTooManyRequests
		}
		return nil, apierr.New(status, "provider_error", err)
	}
	return out, nil
}
