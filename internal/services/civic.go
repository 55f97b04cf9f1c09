package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/yungbote/voterguide-backend/internal/ballots"
	"github.com/yungbote/voterguide-backend/internal/clients/nominatim"
	"github.com/yungbote/voterguide-backend/internal/data/repos"
	"github.com/yungbote/voterguide-backend/internal/data/repos/dberr"
	types "github.com/yungbote/voterguide-backend/internal/domain"
	"github.com/yungbote/voterguide-backend/internal/domain/civic"
	"github.com/yungbote/voterguide-backend/internal/platform/apierr"
	"github.com/yungbote/voterguide-backend/internal/platform/logger"
)

// notFoundOr maps a repo error to 404 when the row is missing and to 500
// otherwise.
func notFoundOr(op, code, what string, err error) error {
	mapped := dberr.MapError(op, err)
	if dberr.IsCode(mapped, dberr.CodeNotFound) {
		return apierr.New(http.StatusNotFound, code, fmt.Errorf("%s not found", what))
	}
	return apierr.New(http.StatusInternalServerError, "internal_error", mapped)
}

type ElectionService interface {
	List(ctx context.Context, filter repos.ElectionFilter) ([]*types.Election, error)
	Get(ctx context.Context, id string) (*types.Election, error)
}

type electionService struct {
	log       *logger.Logger
	elections repos.ElectionRepo
}

func NewElectionService(log *logger.Logger, elections repos.ElectionRepo) ElectionService {
	return &electionService{log: log.With("service", "ElectionService"), elections: elections}
}

func (s *electionService) List(ctx context.Context, filter repos.ElectionFilter) ([]*types.Election, error) {
	filter.JurisdictionID = strings.TrimSpace(filter.JurisdictionID)
	filter.Status = strings.ToLower(strings.TrimSpace(filter.Status))
	switch filter.Status {
	case "", civic.ElectionStatusUpcoming, civic.ElectionStatusActive, civic.ElectionStatusCompleted:
	default:
		return nil, apierr.New(http.StatusBadRequest, "invalid_status", fmt.Errorf("unknown election status %q", filter.Status))
	}
	out, err := s.elections.List(ctx, nil, filter)
	if err != nil {
		s.log.Error("List elections failed", "error", err)
		return nil, apierr.New(http.StatusInternalServerError, "internal_error", err)
	}
	return out, nil
}

func (s *electionService) Get(ctx context.Context, id string) (*types.Election, error) {
	out, err := s.elections.GetWithBallots(ctx, nil, strings.TrimSpace(id))
	if err != nil {
		return nil, notFoundOr("get election", "election_not_found", "election", err)
	}
	return out, nil
}

type JurisdictionService interface {
	List(ctx context.Context) ([]*types.Jurisdiction, error)
	Get(ctx context.Context, id string) (*types.Jurisdiction, error)
}

type jurisdictionService struct {
	log           *logger.Logger
	jurisdictions repos.JurisdictionRepo
}

func NewJurisdictionService(log *logger.Logger, jurisdictions repos.JurisdictionRepo) JurisdictionService {
	return &jurisdictionService{log: log.With("service", "JurisdictionService"), jurisdictions: jurisdictions}
}

func (s *jurisdictionService) List(ctx context.Context) ([]*types.Jurisdiction, error) {
	out, err := s.jurisdictions.List(ctx, nil)
	if err != nil {
		s.log.Error("List jurisdictions failed", "error", err)
		return nil, apierr.New(http.StatusInternalServerError, "internal_error", err)
	}
	return out, nil
}

func (s *jurisdictionService) Get(ctx context.Context, id string) (*types.Jurisdiction, error) {
	out, err := s.jurisdictions.GetWithPrecincts(ctx, nil, strings.TrimSpace(id))
	if err != nil {
		return nil, notFoundOr("get jurisdiction", "jurisdiction_not_found", "jurisdiction", err)
	}
	return out, nil
}

type LocateResult struct {
	Precinct *types.Precinct `json:"precinct"`
	Point    nominatim.Point `json:"point"`
}

type PrecinctService interface {
	List(ctx context.Context, jurisdictionID string) ([]*types.Precinct, error)
	// Locate geocodes address and returns the jurisdiction's nearest
	// precinct center.
	Locate(ctx context.Context, jurisdictionID, address string) (*LocateResult, error)
	Geocode(ctx context.Context, query string) (*nominatim.Point, error)
}

type precinctService struct {
	log       *logger.Logger
	precincts repos.PrecinctRepo
	geocoder  nominatim.Geocoder
}

func NewPrecinctService(log *logger.Logger, precincts repos.PrecinctRepo, geocoder nominatim.Geocoder) PrecinctService {
	return &precinctService{
		log:       log.With("service", "PrecinctService"),
		precincts: precincts,
		geocoder:  geocoder,
	}
}

func (s *precinctService) List(ctx context.Context, jurisdictionID string) ([]*types.Precinct, error) {
	jurisdictionID = strings.TrimSpace(jurisdictionID)
	if jurisdictionID == "" {
		return nil, apierr.New(http.StatusBadRequest, "invalid_request", ballots.NewValidationError("jurisdictionId", "jurisdictionId is required"))
	}
	out, err := s.precincts.ListByJurisdiction(ctx, nil, jurisdictionID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "internal_error", err)
	}
	return out, nil
}

func (s *precinctService) Geocode(ctx context.Context, query string) (*nominatim.Point, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apierr.New(http.StatusBadRequest, "invalid_request", ballots.NewValidationError("q", "q is required"))
	}
	p, err := s.geocoder.Geocode(ctx, query)
	if err != nil {
		if errors.Is(err, nominatim.ErrNotFound) {
			return nil, apierr.New(http.StatusNotFound, "address_not_found", err)
		}
		s.log.Warn("Geocode failed", "error", err)
		return nil, apierr.New(http.StatusBadGateway, "geocoder_error", err)
	}
	return p, nil
}

func (s *precinctService) Locate(ctx context.Context, jurisdictionID, address string) (*LocateResult, error) {
	precincts, err := s.List(ctx, jurisdictionID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(address) == "" {
		return nil, apierr.New(http.StatusBadRequest, "invalid_request", ballots.NewValidationError("address", "address is required"))
	}
	point, err := s.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	candidates := make([]types.Precinct, 0, len(precincts))
	for _, p := range precincts {
		candidates = append(candidates, *p)
	}
	nearest, ok := ballots.NearestPrecinct(point.Lat, point.Lng, candidates)
	if !ok {
		return nil, apierr.New(http.StatusNotFound, "precinct_not_found", errors.New("no precinct with coordinates in this jurisdiction"))
	}
	return &LocateResult{Precinct: nearest, Point: *point}, nil
}
