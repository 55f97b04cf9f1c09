package civic

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/voterguide-backend/internal/data/repos/testutil"
	types "github.com/yungbote/voterguide-backend/internal/domain"
	"github.com/yungbote/voterguide-backend/internal/domain/civic"
	"github.com/yungbote/voterguide-backend/internal/pkg/pointers"
	"gorm.io/datatypes"
)

func TestJurisdictionAndPrecinctRepos(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	jRepo := NewJurisdictionRepo(db, testutil.Logger(t))
	pRepo := NewPrecinctRepo(db, testutil.Logger(t))

	err := jRepo.Upsert(ctx, tx, []*types.Jurisdiction{
		{ID: "wa-king", Name: "King County", State: "WA", Type: civic.JurisdictionTypeCounty},
		{ID: "ca-la", Name: "Los Angeles County", State: "CA", Type: civic.JurisdictionTypeCounty},
		{ID: "ca-alameda", Name: "Alameda County", State: "CA", Type: civic.JurisdictionTypeCounty},
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	list, err := jRepo.List(ctx, tx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"ca-alameda", "ca-la", "wa-king"}
	if len(list) != len(want) {
		t.Fatalf("List: expected %d jurisdictions, got %d", len(want), len(list))
	}
	for i, id := range want {
		if list[i].ID != id {
			t.Fatalf("List: order mismatch at %d: got=%s want=%s", i, list[i].ID, id)
		}
	}

	err = pRepo.Upsert(ctx, tx, []*types.Precinct{
		{ID: "ca-la-2", JurisdictionID: "ca-la", Name: "Downtown", Number: pointers.String("002"), ZipCodes: datatypes.JSONSlice[string]{"90012"}},
		{ID: "ca-la-1", JurisdictionID: "ca-la", Name: "Westside", Number: pointers.String("001"), ZipCodes: datatypes.JSONSlice[string]{"90024", "90025"}},
	})
	if err != nil {
		t.Fatalf("Upsert precincts: %v", err)
	}

	got, err := jRepo.GetWithPrecincts(ctx, tx, "ca-la")
	if err != nil {
		t.Fatalf("GetWithPrecincts: %v", err)
	}
	if len(got.Precincts) != 2 || got.Precincts[0].ID != "ca-la-1" {
		t.Fatalf("GetWithPrecincts: unexpected precincts: %+v", got.Precincts)
	}
	if len(got.Precincts[0].ZipCodes) != 2 {
		t.Fatalf("GetWithPrecincts: zip codes not round-tripped: %+v", got.Precincts[0].ZipCodes)
	}

	// Re-seeding updates in place.
	if err := jRepo.Upsert(ctx, tx, []*types.Jurisdiction{
		{ID: "ca-la", Name: "LA County", State: "CA", Type: civic.JurisdictionTypeCounty},
	}); err != nil {
		t.Fatalf("Upsert again: %v", err)
	}
	again, err := jRepo.GetByID(ctx, tx, "ca-la")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if again.Name != "LA County" {
		t.Fatalf("GetByID: expected updated name, got %q", again.Name)
	}

	if _, err := jRepo.GetByID(ctx, tx, "missing"); err == nil {
		t.Fatalf("GetByID: expected error for missing jurisdiction")
	}
}

func TestBallotRepoUpsertAndSampleDelete(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	eRepo := NewElectionRepo(db, testutil.Logger(t))
	bRepo := NewBallotRepo(db, testutil.Logger(t))

	election := &types.Election{
		ID:             "election-ca-la-2025-11-04",
		JurisdictionID: "ca-la",
		Title:          "Statewide Special Election",
		ElectionDate:   time.Date(2025, 11, 4, 0, 0, 0, 0, time.UTC),
		Type:           "special",
		Status:         civic.ElectionStatusUpcoming,
	}
	if err := eRepo.Upsert(ctx, tx, election); err != nil {
		t.Fatalf("Upsert election: %v", err)
	}

	sample := &types.Ballot{
		ID:         "ca-prop50",
		ElectionID: election.ID,
		Title:      "Proposition 50",
		Type:       civic.BallotTypeProposition,
		Options:    datatypes.JSONSlice[string]{"YES", "NO"},
		Metadata:   datatypes.NewJSONType(civic.BallotMetadata{Source: "seed", IsSample: true}),
	}
	live := &types.Ballot{
		ID:         "ballot-" + election.ID + "-mayor",
		ElectionID: election.ID,
		Title:      "Mayor",
		Type:       civic.BallotTypeCandidate,
		Options:    datatypes.JSONSlice[string]{"A", "B", "Write-in"},
		Metadata: datatypes.NewJSONType(civic.BallotMetadata{
			Source:   "Google Civic Information API",
			District: "City",
			Candidates: []civic.CandidateInfo{
				{Name: "A", Party: "X"},
			},
		}),
	}
	if err := bRepo.Upsert(ctx, tx, []*types.Ballot{sample, live}); err != nil {
		t.Fatalf("Upsert ballots: %v", err)
	}

	samples, err := bRepo.CountByElection(ctx, tx, election.ID, true)
	if err != nil {
		t.Fatalf("CountByElection: %v", err)
	}
	if samples != 1 {
		t.Fatalf("CountByElection: expected 1 sample, got %d", samples)
	}

	// Full replace: the district from the previous write must not survive.
	live.Metadata = datatypes.NewJSONType(civic.BallotMetadata{Source: "Democracy Works"})
	live.Options = datatypes.JSONSlice[string]{"Write-in"}
	if err := bRepo.Upsert(ctx, tx, []*types.Ballot{live}); err != nil {
		t.Fatalf("Upsert replace: %v", err)
	}
	stored, err := bRepo.GetByID(ctx, tx, live.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	md := stored.Metadata.Data()
	if md.Source != "Democracy Works" || md.District != "" || len(md.Candidates) != 0 {
		t.Fatalf("GetByID: metadata not fully replaced: %+v", md)
	}
	if stored.Source != "Democracy Works" {
		t.Fatalf("GetByID: source column not mirrored: %q", stored.Source)
	}
	if len(stored.Options) != 1 {
		t.Fatalf("GetByID: options not replaced: %v", stored.Options)
	}

	deleted, err := bRepo.DeleteSamples(ctx, tx, election.ID)
	if err != nil {
		t.Fatalf("DeleteSamples: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("DeleteSamples: expected 1 row, got %d", deleted)
	}

	remaining, err := bRepo.ListByElection(ctx, tx, election.ID)
	if err != nil {
		t.Fatalf("ListByElection: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != live.ID {
		t.Fatalf("ListByElection: unexpected ballots: %+v", remaining)
	}
}

func TestElectionRepoUpsertKeepsStatus(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewElectionRepo(db, testutil.Logger(t))

	e := &types.Election{
		ID:             "co-larimer-2025",
		JurisdictionID: "co-larimer",
		Title:          "Coordinated Election",
		ElectionDate:   time.Date(2025, 11, 4, 0, 0, 0, 0, time.UTC),
		Type:           "general",
		Status:         civic.ElectionStatusUpcoming,
	}
	if err := repo.Upsert(ctx, tx, e); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	refreshed := &types.Election{
		ID:             e.ID,
		JurisdictionID: e.JurisdictionID,
		Title:          "Larimer County Coordinated Election",
		ElectionDate:   e.ElectionDate,
		Type:           "special",
		Status:         civic.ElectionStatusCompleted,
		OfficialURL:    pointers.String("https://www.larimer.gov/clerk/elections"),
	}
	if err := repo.Upsert(ctx, tx, refreshed); err != nil {
		t.Fatalf("Upsert again: %v", err)
	}

	list, err := repo.List(ctx, tx, ElectionFilter{JurisdictionID: "co-larimer", Status: civic.ElectionStatusUpcoming})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("List: expected one upcoming election, got %d", len(list))
	}
	got := list[0]
	if got.Title != refreshed.Title || got.OfficialURL == nil {
		t.Fatalf("List: mutable fields not refreshed: %+v", got)
	}
	if got.Type != "general" || got.Status != civic.ElectionStatusUpcoming {
		t.Fatalf("List: insert-only fields overwritten: type=%s status=%s", got.Type, got.Status)
	}
}
