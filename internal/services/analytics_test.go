package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/voterguide-backend/internal/domain/guides"
)

func TestHashIP(t *testing.T) {
	f := newFixture(t)
	a := NewAnalyticsService(f.log, f.analytics, f.guides, "salt-a")
	b := NewAnalyticsService(f.log, f.analytics, f.guides, "salt-b")

	require.Equal(t, a.HashIP("198.51.100.7"), a.HashIP(" 198.51.100.7 "))
	require.NotEqual(t, a.HashIP("198.51.100.7"), b.HashIP("198.51.100.7"))
	require.NotContains(t, a.HashIP("198.51.100.7"), "198.51")
	require.Len(t, a.HashIP("198.51.100.7"), 64)
	require.Empty(t, a.HashIP(""))
}

func TestRecordShareEvent(t *testing.T) {
	f := newFixture(t)
	svc := NewAnalyticsService(f.log, f.analytics, f.guides, "salt")
	g, err := newGuideService(f).Create(withSession(uuid.NewString()), CreateGuideInput{ElectionID: testElectionID})
	require.NoError(t, err)

	require.NoError(t, svc.Record(context.Background(), g.ID, "", ClientMeta{IP: "198.51.100.7"}))
	n, err := f.analytics.CountByGuide(context.Background(), nil, g.ID, guides.EventShare)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	err = svc.Record(context.Background(), g.ID, "like", ClientMeta{})
	requireStatus(t, err, http.StatusBadRequest)

	err = svc.Record(context.Background(), uuid.New(), guides.EventShare, ClientMeta{})
	requireStatus(t, err, http.StatusNotFound)
}
