package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/voterguide-backend/internal/data/repos"
	types "github.com/yungbote/voterguide-backend/internal/domain"
	"github.com/yungbote/voterguide-backend/internal/domain/guides"
	pkgerrors "github.com/yungbote/voterguide-backend/internal/pkg/errors"
	"github.com/yungbote/voterguide-backend/internal/platform/apierr"
	"github.com/yungbote/voterguide-backend/internal/platform/ctxutil"
	"github.com/yungbote/voterguide-backend/internal/platform/logger"
)

const (
	defaultGuideTitle = "My Voter Guide"
	shareTokenLength  = 22
	base62Alphabet    = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

type CreateGuideInput struct {
	ElectionID     string  `json:"electionId"`
	JurisdictionID *string `json:"jurisdictionId"`
	PrecinctID     *string `json:"precinctId"`
	Title          string  `json:"title"`
	Author         *string `json:"author"`
	Description    *string `json:"description"`
	Notes          string  `json:"notes"`
	Visibility     string  `json:"visibility"`
}

// UpdateGuideInput applies only the fields that are set.
type UpdateGuideInput struct {
	Title       *string        `json:"title"`
	Description OptionalString `json:"description"`
	Notes       *string        `json:"notes"`
	Visibility  *string        `json:"visibility"`
	PrecinctID  OptionalString `json:"precinctId"`
}

type GuideService interface {
	List(ctx context.Context) ([]*types.Guide, error)
	Create(ctx context.Context, in CreateGuideInput) (*types.Guide, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateGuideInput) (*types.Guide, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// GetShared resolves a share link. Private guides resolve only for the
	// owning session. Each successful resolve records a view event.
	GetShared(ctx context.Context, token string, meta ClientMeta) (*types.Guide, error)
}

type guideService struct {
	db        *gorm.DB
	log       *logger.Logger
	guides    repos.GuideRepo
	elections repos.ElectionRepo
	analytics AnalyticsService
	secret    []byte
	now       func() time.Time
}

func NewGuideService(
	db *gorm.DB,
	log *logger.Logger,
	guideRepo repos.GuideRepo,
	elections repos.ElectionRepo,
	analytics AnalyticsService,
	shareSecret string,
) GuideService {
	return &guideService{
		db:        db,
		log:       log.With("service", "GuideService"),
		guides:    guideRepo,
		elections: elections,
		analytics: analytics,
		secret:    []byte(shareSecret),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func requireSession(ctx context.Context) (string, error) {
	sid := ctxutil.SessionID(ctx)
	if sid == "" {
		return "", apierr.New(http.StatusUnauthorized, "session_required", errors.New("session required"))
	}
	return sid, nil
}

func guideNotFound() error {
	return apierr.New(http.StatusNotFound, "guide_not_found", fmt.Errorf("guide %w", pkgerrors.ErrNotFound))
}

func (s *guideService) List(ctx context.Context) ([]*types.Guide, error) {
	sid, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.guides.ListBySession(ctx, nil, sid)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "internal_error", err)
	}
	return out, nil
}

func (s *guideService) Create(ctx context.Context, in CreateGuideInput) (*types.Guide, error) {
	sid, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	in.ElectionID = strings.TrimSpace(in.ElectionID)
	if in.ElectionID == "" {
		return nil, apierr.New(http.StatusBadRequest, "invalid_request", errors.New("electionId is required"))
	}
	visibility := strings.ToLower(strings.TrimSpace(in.Visibility))
	if visibility == "" {
		visibility = guides.VisibilityPrivate
	}
	if !guides.ValidVisibility(visibility) {
		return nil, apierr.New(http.StatusBadRequest, "invalid_visibility", fmt.Errorf("unknown visibility %q", in.Visibility))
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = defaultGuideTitle
	}

	election, err := s.elections.GetByID(ctx, nil, in.ElectionID)
	if err != nil {
		return nil, notFoundOr("get election", "election_not_found", "election", err)
	}
	jurisdictionID := in.JurisdictionID
	if jurisdictionID == nil {
		jid := election.JurisdictionID
		jurisdictionID = &jid
	}

	now := s.now()
	g := &types.Guide{
		ID:             uuid.New(),
		SessionID:      sid,
		ElectionID:     election.ID,
		JurisdictionID: jurisdictionID,
		PrecinctID:     in.PrecinctID,
		Title:          title,
		Author:         in.Author,
		Description:    in.Description,
		Notes:          in.Notes,
		Visibility:     visibility,
		LastAccessedAt: now,
	}
	g.ShareToken = s.shareToken(g.ID)
	if err := s.guides.Create(ctx, nil, g); err != nil {
		s.log.Error("Create guide failed", "session_id", sid, "error", err)
		return nil, apierr.New(http.StatusInternalServerError, "internal_error", err)
	}
	s.log.Info("Guide created", "guide_id", g.ID, "election", g.ElectionID, "session_id", sid)
	return g, nil
}

func (s *guideService) Update(ctx context.Context, id uuid.UUID, in UpdateGuideInput) (*types.Guide, error) {
	sid, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apierr.New(http.StatusBadRequest, "invalid_request", errors.New("title cannot be empty"))
		}
		updates["title"] = title
	}
	if in.Description.Set {
		updates["description"] = in.Description.Value
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}
	if in.Visibility != nil {
		v := strings.ToLower(strings.TrimSpace(*in.Visibility))
		if !guides.ValidVisibility(v) {
			return nil, apierr.New(http.StatusBadRequest, "invalid_visibility", fmt.Errorf("unknown visibility %q", *in.Visibility))
		}
		updates["visibility"] = v
	}
	if in.PrecinctID.Set {
		updates["precinct_id"] = in.PrecinctID.Value
	}
	updates["last_accessed_at"] = s.now()

	var out *types.Guide
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.guides.UpdateFields(ctx, tx, id, sid, updates)
		if err != nil {
			return apierr.New(http.StatusInternalServerError, "internal_error", err)
		}
		if n == 0 {
			return guideNotFound()
		}
		out, err = s.guides.GetByID(ctx, tx, id)
		if err != nil {
			return apierr.New(http.StatusInternalServerError, "internal_error", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *guideService) Delete(ctx context.Context, id uuid.UUID) error {
	sid, err := requireSession(ctx)
	if err != nil {
		return err
	}
	n, err := s.guides.Delete(ctx, nil, id, sid)
	if err != nil {
		s.log.Error("Delete guide failed", "guide_id", id, "error", err)
		return apierr.New(http.StatusInternalServerError, "internal_error", err)
	}
	if n == 0 {
		return guideNotFound()
	}
	s.log.Info("Guide deleted", "guide_id", id, "session_id", sid)
	return nil
}

func (s *guideService) GetShared(ctx context.Context, token string, meta ClientMeta) (*types.Guide, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, guideNotFound()
	}
	g, err := s.guides.GetByShareToken(ctx, nil, token)
	if err != nil {
		return nil, notFoundOr("get guide by token", "guide_not_found", "guide", err)
	}
	owner := ctxutil.SessionID(ctx) == g.SessionID
	// A private guide looks missing to everyone but its owner.
	if g.Visibility == guides.VisibilityPrivate && !owner {
		return nil, guideNotFound()
	}
	if owner {
		if err := s.guides.Touch(ctx, nil, g.ID, s.now()); err != nil {
			s.log.Warn("Touch guide failed", "guide_id", g.ID, "error", err)
		}
	}
	if s.analytics != nil {
		if err := s.analytics.Record(ctx, g.ID, guides.EventView, meta); err != nil {
			s.log.Warn("Record view failed", "guide_id", g.ID, "error", err)
		}
	}
	return g, nil
}

// shareToken derives an unguessable, URL-safe token from the guide id.
func (s *guideService) shareToken(id uuid.UUID) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write(id[:])
	return base62(mac.Sum(nil), shareTokenLength)
}

func base62(b []byte, n int) string {
	v := new(big.Int).SetBytes(b)
	base := big.NewInt(62)
	mod := new(big.Int)
	out := make([]byte, 0, n)
	for len(out) < n {
		v.DivMod(v, base, mod)
		out = append(out, base62Alphabet[mod.Int64()])
	}
	return string(out)
}
