package app

import (
	"fmt"

	"github.com/yungbote/voterguide-backend/internal/clients/ballotready"
	"github.com/yungbote/voterguide-backend/internal/clients/democracyworks"
	"github.com/yungbote/voterguide-backend/internal/clients/googlecivic"
	"github.com/yungbote/voterguide-backend/internal/clients/nominatim"
	"github.com/yungbote/voterguide-backend/internal/clients/redis"
	"github.com/yungbote/voterguide-backend/internal/platform/logger"
)

type Clients struct {
	GoogleCivic    googlecivic.Client
	DemocracyWorks democracyworks.Client
	BallotReady    ballotready.Client
	Geocoder       nominatim.Geocoder
	ProviderCache  redis.Cache
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	civic, err := googlecivic.New(log, cfg.GoogleCivic)
	if err != nil {
		return Clients{}, fmt.Errorf("init google civic client: %w", err)
	}
	dw, err := democracyworks.New(log, cfg.DemocracyWorks)
	if err != nil {
		return Clients{}, fmt.Errorf("init democracy works client: %w", err)
	}
	br, err := ballotready.New(log, cfg.BallotReady)
	if err != nil {
		return Clients{}, fmt.Errorf("init ballotready client: %w", err)
	}
	geocoder, err := nominatim.New(log, cfg.Nominatim)
	if err != nil {
		return Clients{}, fmt.Errorf("init geocoder: %w", err)
	}

	// Redis is optional; a failed connection degrades to no caching.
	cache, err := redis.NewProviderCache(log, cfg.Redis)
	if err != nil {
		log.Warn("Provider cache unavailable; continuing without it", "error", err)
		cache = redis.NopCache{}
	}

	return Clients{
		GoogleCivic:    civic,
		DemocracyWorks: dw,
		BallotReady:    br,
		Geocoder:       geocoder,
		ProviderCache:  cache,
	}, nil
}

func (c Clients) Close() {
	if c.ProviderCache != nil {
		_ = c.ProviderCache.Close()
	}
}
