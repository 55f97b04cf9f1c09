package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/voterguide-backend/internal/ballots"
	"github.com/yungbote/voterguide-backend/internal/observability"
	"github.com/yungbote/voterguide-backend/internal/platform/logger"
	"github.com/yungbote/voterguide-backend/internal/services"
)

type Services struct {
	BallotData    services.BallotDataService
	Elections     services.ElectionService
	Jurisdictions services.JurisdictionService
	Precincts     services.PrecinctService
	Sessions      services.SessionService
	Analytics     services.AnalyticsService
	Guides        services.GuideService
	Choices       services.ChoiceService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, clients Clients, reposet Repos, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	fetchCfg := ballots.FetcherConfig{
		AttemptTimeout: cfg.ProviderTimeout,
		Cache:          clients.ProviderCache,
		CacheTTL:       cfg.ProviderCacheTTL,
	}
	merger := ballots.NewMerger(db, log, reposet.Election, reposet.Ballot)
	if metrics != nil {
		fetchCfg.Observer = metrics
		merger.WithObserver(metrics)
	}

	civicSource := ballots.NewGoogleCivicSource(clients.GoogleCivic)
	fetcher := ballots.NewFetcher(log, fetchCfg,
		civicSource,
		ballots.NewDemocracyWorksSource(clients.DemocracyWorks),
		ballots.NewBallotReadySource(clients.BallotReady),
	)
	civicFetcher := ballots.NewFetcher(log, fetchCfg, civicSource)

	sessions, err := services.NewSessionService(log, cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return Services{}, fmt.Errorf("init session service: %w", err)
	}
	analytics := services.NewAnalyticsService(log, reposet.Analytics, reposet.Guide, cfg.AnalyticsIPSalt)

	return Services{
		BallotData:    services.NewBallotDataService(log, reposet.Jurisdiction, merger, fetcher, civicFetcher, clients.GoogleCivic),
		Elections:     services.NewElectionService(log, reposet.Election),
		Jurisdictions: services.NewJurisdictionService(log, reposet.Jurisdiction),
		Precincts:     services.NewPrecinctService(log, reposet.Precinct, clients.Geocoder),
		Sessions:      sessions,
		Analytics:     analytics,
		Guides:        services.NewGuideService(db, log, reposet.Guide, reposet.Election, analytics, cfg.ShareSecret),
		Choices:       services.NewChoiceService(db, log, reposet.Guide, reposet.Ballot, reposet.Choice),
	}, nil
}
