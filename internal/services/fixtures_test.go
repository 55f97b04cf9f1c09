package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/voterguide-backend/internal/data/repos"
	"github.com/yungbote/voterguide-backend/internal/data/repos/testutil"
	"github.com/yungbote/voterguide-backend/internal/platform/apierr"
	"github.com/yungbote/voterguide-backend/internal/platform/ctxutil"
	"github.com/yungbote/voterguide-backend/internal/platform/logger"
)

const (
	testElectionID = "election-wa-king-2025-11-04"
	testSampleID   = "ballot-election-wa-king-2025-11-04-sample-measure"
)

type fixture struct {
	db            *gorm.DB
	log           *logger.Logger
	jurisdictions repos.JurisdictionRepo
	precincts     repos.PrecinctRepo
	elections     repos.ElectionRepo
	ballots       repos.BallotRepo
	guides        repos.GuideRepo
	choices       repos.ChoiceRepo
	analytics     repos.AnalyticsRepo
}

// newFixture seeds King County with two precincts, one election and one
// sample ballot.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	f := &fixture{
		db:            db,
		log:           log,
		jurisdictions: repos.NewJurisdictionRepo(db, log),
		precincts:     repos.NewPrecinctRepo(db, log),
		elections:     repos.NewElectionRepo(db, log),
		ballots:       repos.NewBallotRepo(db, log),
		guides:        repos.NewGuideRepo(db, log),
		choices:       repos.NewChoiceRepo(db, log),
		analytics:     repos.NewAnalyticsRepo(db, log),
	}
	ctx := context.Background()

	testutil.SeedJurisdiction(t, ctx, db, "wa-king", "King County", "WA")
	testutil.SeedJurisdiction(t, ctx, db, "co-larimer", "Larimer County", "CO")
	testutil.SeedPrecinct(t, ctx, db, "wa-king", "1", "Downtown", 47.61, -122.33, "98101")
	testutil.SeedPrecinct(t, ctx, db, "wa-king", "2", "Ballard", 47.67, -122.38, "98107")
	testutil.SeedElection(t, ctx, db, testElectionID, "wa-king", time.Date(2025, 11, 4, 0, 0, 0, 0, time.UTC))
	testutil.SeedSampleBallot(t, ctx, db, testSampleID, testElectionID, "Sample Measure")
	return f
}

func withSession(sid string) context.Context {
	return ctxutil.WithSessionID(context.Background(), sid)
}

func requireStatus(t *testing.T, err error, status int) *apierr.Error {
	t.Helper()
	var ae *apierr.Error
	require.True(t, errors.As(err, &ae), "expected apierr, got %v", err)
	require.Equal(t, status, ae.Status, "unexpected status for %v", err)
	return ae
}
