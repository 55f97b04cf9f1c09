package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/voterguide-backend/internal/data/repos"
	"github.com/yungbote/voterguide-backend/internal/data/repos/testutil"
)

func TestDefaultSeedParses(t *testing.T) {
	f, err := Default()
	require.NoError(t, err)
	require.Len(t, f.Jurisdictions, 3)

	fips := map[string]string{}
	for _, j := range f.Jurisdictions {
		fips[j.ID] = j.FIPSCode
		require.NotEmpty(t, j.Precincts, j.ID)
		require.Len(t, j.Elections, 1, j.ID)
		require.Equal(t, "2025-11-04", j.Elections[0].Date)
		require.NotEmpty(t, j.Elections[0].Ballots, j.ID)
	}
	require.Equal(t, map[string]string{"ca-la": "06037", "wa-king": "53033", "co-larimer": "08069"}, fips)
}

func TestParseRejectsBadDate(t *testing.T) {
	_, err := Parse([]byte(`
jurisdictions:
  - id: x
    name: X
    state: WA
    elections:
      - title: Bad
        date: "11/04/2025"
`))
	require.Error(t, err)
}

func TestSeedIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()
	f, err := Default()
	require.NoError(t, err)

	s := NewSeeder(db, log)
	first, err := s.Seed(ctx, f)
	require.NoError(t, err)
	second, err := s.Seed(ctx, f)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 3, first.Jurisdictions)
	require.Equal(t, 9, first.Precincts)
	require.Equal(t, 3, first.Elections)

	jurisdictions, err := repos.NewJurisdictionRepo(db, log).List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, jurisdictions, 3)

	ballotRepo := repos.NewBallotRepo(db, log)
	list, err := ballotRepo.ListByElection(ctx, nil, "election-wa-king-2025-11-04")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.True(t, list[0].IsSample)
	require.True(t, list[0].Metadata.Data().IsSample)
	require.Equal(t, SourceSeed, list[0].Metadata.Data().Source)

	king, err := repos.NewJurisdictionRepo(db, log).GetWithPrecincts(ctx, nil, "wa-king")
	require.NoError(t, err)
	require.Len(t, king.Precincts, 3)
	require.NotNil(t, king.FIPSCode)
	require.Equal(t, "53033", *king.FIPSCode)
}
