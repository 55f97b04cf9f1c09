package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/voterguide-backend/internal/domain"
	"github.com/yungbote/voterguide-backend/internal/domain/civic"
	"github.com/yungbote/voterguide-backend/internal/domain/guides"
)

func SeedJurisdiction(tb testing.TB, ctx context.Context, tx *gorm.DB, id, name, state string) *types.Jurisdiction {
	tb.Helper()
	j := &types.Jurisdiction{ID: id, Name: name, State: state, Type: civic.JurisdictionTypeCounty}
	if err := tx.WithContext(ctx).Create(j).Error; err != nil {
		tb.Fatalf("seed jurisdiction: %v", err)
	}
	return j
}

// SeedPrecinct inserts a precinct with id "<jurisdiction>-p<number>".
// An empty name defaults to "Precinct <number>".
func SeedPrecinct(tb testing.TB, ctx context.Context, tx *gorm.DB, jurisdictionID, number, name string, lat, lng float64, zips ...string) *types.Precinct {
	tb.Helper()
	if name == "" {
		name = "Precinct " + number
	}
	p := &types.Precinct{
		ID:             jurisdictionID + "-p" + number,
		JurisdictionID: jurisdictionID,
		Name:           name,
		Number:         &number,
		Lat:            &lat,
		Lng:            &lng,
		ZipCodes:       datatypes.JSONSlice[string](zips),
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed precinct: %v", err)
	}
	return p
}

func SeedElection(tb testing.TB, ctx context.Context, tx *gorm.DB, id, jurisdictionID string, date time.Time) *types.Election {
	tb.Helper()
	e := &types.Election{
		ID:             id,
		JurisdictionID: jurisdictionID,
		Title:          "General Election",
		ElectionDate:   date,
		Type:           "general",
		Status:         civic.ElectionStatusUpcoming,
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed election: %v", err)
	}
	return e
}

// SeedSampleBallot inserts a placeholder ballot flagged isSample.
func SeedSampleBallot(tb testing.TB, ctx context.Context, tx *gorm.DB, id, electionID, title string) *types.Ballot {
	tb.Helper()
	b := &types.Ballot{
		ID:         id,
		ElectionID: electionID,
		Title:      title,
		Type:       civic.BallotTypeMeasure,
		Options:    datatypes.JSONSlice[string]{"YES", "NO"},
		Metadata:   datatypes.NewJSONType(civic.BallotMetadata{Source: "seed", IsSample: true}),
	}
	if err := tx.WithContext(ctx).Create(b).Error; err != nil {
		tb.Fatalf("seed sample ballot: %v", err)
	}
	return b
}

func SeedGuide(tb testing.TB, ctx context.Context, tx *gorm.DB, sessionID, electionID, shareToken string) *types.Guide {
	tb.Helper()
	g := &types.Guide{
		ID:             uuid.New(),
		SessionID:      sessionID,
		ElectionID:     electionID,
		Title:          "My Voter Guide",
		Visibility:     guides.VisibilityPrivate,
		ShareToken:     shareToken,
		LastAccessedAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Omit("Election", "Choices").Create(g).Error; err != nil {
		tb.Fatalf("seed guide: %v", err)
	}
	return g
}
