package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/voterguide-backend/internal/platform/logger"
)

func TestSessionRoundTrip(t *testing.T) {
	svc, err := NewSessionService(logger.Nop(), "secret", 0)
	require.NoError(t, err)
	require.Equal(t, DefaultSessionTTL, svc.TTL())

	id, token, err := svc.Issue()
	require.NoError(t, err)
	got, err := svc.Parse(token)
	require.NoError(t, err)
	require.Equal(t, id, got)
}

func TestSessionRejectsTamperedAndForeignTokens(t *testing.T) {
	svc, err := NewSessionService(logger.Nop(), "secret", time.Hour)
	require.NoError(t, err)
	other, err := NewSessionService(logger.Nop(), "other-secret", time.Hour)
	require.NoError(t, err)

	_, token, err := other.Issue()
	require.NoError(t, err)
	_, err = svc.Parse(token)
	require.Error(t, err)

	_, err = svc.Parse("not-a-jwt")
	require.Error(t, err)
	_, err = svc.Parse("")
	require.Error(t, err)
}

func TestSessionExpiry(t *testing.T) {
	svc, err := NewSessionService(logger.Nop(), "secret", time.Hour)
	require.NoError(t, err)
	_, token, err := svc.Issue()
	require.NoError(t, err)

	svc.(*sessionService).now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Parse(token)
	require.Error(t, err)
}

func TestSessionRequiresSecret(t *testing.T) {
	_, err := NewSessionService(logger.Nop(), "  ", time.Hour)
	require.Error(t, err)
}
