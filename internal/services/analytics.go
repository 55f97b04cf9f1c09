package services

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/yungbote/voterguide-backend/internal/data/repos"
	types "github.com/yungbote/voterguide-backend/internal/domain"
	"github.com/yungbote/voterguide-backend/internal/domain/guides"
	"github.com/yungbote/voterguide-backend/internal/platform/apierr"
	"github.com/yungbote/voterguide-backend/internal/platform/logger"
)

// ClientMeta is what a request reveals about the viewer. IP is hashed
// before it is stored.
type ClientMeta struct {
	IP        string
	UserAgent string
	Referrer  string
}

type AnalyticsService interface {
	Record(ctx context.Context, guideID uuid.UUID, eventType string, meta ClientMeta) error
	HashIP(ip string) string
}

type analyticsService struct {
	log    *logger.Logger
	events repos.AnalyticsRepo
	guides repos.GuideRepo
	salt   []byte
}

func NewAnalyticsService(log *logger.Logger, events repos.AnalyticsRepo, guideRepo repos.GuideRepo, salt string) AnalyticsService {
	return &analyticsService{
		log:    log.With("service", "AnalyticsService"),
		events: events,
		guides: guideRepo,
		salt:   []byte(salt),
	}
}

func validEvent(eventType string) bool {
	switch eventType {
	case guides.EventShare, guides.EventView, guides.EventPrint:
		return true
	}
	return false
}

func (s *analyticsService) Record(ctx context.Context, guideID uuid.UUID, eventType string, meta ClientMeta) error {
	eventType = strings.ToLower(strings.TrimSpace(eventType))
	if eventType == "" {
		eventType = guides.EventShare
	}
	if !validEvent(eventType) {
		return apierr.New(http.StatusBadRequest, "invalid_event", fmt.Errorf("unknown event type %q", eventType))
	}
	if guideID == uuid.Nil {
		return apierr.New(http.StatusBadRequest, "invalid_request", fmt.Errorf("guideId is required"))
	}
	if _, err := s.guides.GetByID(ctx, nil, guideID); err != nil {
		return notFoundOr("get guide", "guide_not_found", "guide", err)
	}
	ev := &types.GuideAnalytics{
		GuideID:   guideID,
		EventType: eventType,
		IPHash:    s.HashIP(meta.IP),
		UserAgent: truncate(meta.UserAgent, 512),
		Referrer:  truncate(meta.Referrer, 1024),
	}
	if err := s.events.Create(ctx, nil, ev); err != nil {
		s.log.Error("Record analytics failed", "guide_id", guideID, "event", eventType, "error", err)
		return apierr.New(http.StatusInternalServerError, "internal_error", err)
	}
	return nil
}

// HashIP returns a keyed blake2b-256 digest of ip, or "" for an empty ip.
func (s *analyticsService) HashIP(ip string) string {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return ""
	}
	key := s.salt
	if len(key) > blake2b.Size {
		sum := blake2b.Sum256(key)
		key = sum[:]
	}
	h, err := blake2b.New256(key)
	if err != nil {
		return ""
	}
	_, _ = h.Write([]byte(ip))
	return hex.EncodeToString(h.Sum(nil))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
