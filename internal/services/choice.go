package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/voterguide-backend/internal/data/repos"
	"github.com/yungbote/voterguide-backend/internal/data/repos/dberr"
	types "github.com/yungbote/voterguide-backend/internal/domain"
	pkgerrors "github.com/yungbote/voterguide-backend/internal/pkg/errors"
	"github.com/yungbote/voterguide-backend/internal/platform/apierr"
	"github.com/yungbote/voterguide-backend/internal/platform/logger"
)

type SaveChoiceInput struct {
	GuideID   uuid.UUID `json:"guideId"`
	BallotID  string    `json:"ballotId"`
	Selection string    `json:"selection"`
	Notes     *string   `json:"notes"`
}

type ChoiceService interface {
	// Save records one selection per (guide, ballot), replacing any
	// earlier one.
	Save(ctx context.Context, in SaveChoiceInput) (*types.Choice, error)
	Delete(ctx context.Context, guideID uuid.UUID, ballotID string) error
}

type choiceService struct {
	db      *gorm.DB
	log     *logger.Logger
	guides  repos.GuideRepo
	ballots repos.BallotRepo
	choices repos.ChoiceRepo
	now     func() time.Time
}

func NewChoiceService(db *gorm.DB, log *logger.Logger, guideRepo repos.GuideRepo, ballotRepo repos.BallotRepo, choiceRepo repos.ChoiceRepo) ChoiceService {
	return &choiceService{
		db:      db,
		log:     log.With("service", "ChoiceService"),
		guides:  guideRepo,
		ballots: ballotRepo,
		choices: choiceRepo,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ownedGuide loads a guide and hides it unless the session owns it.
func (s *choiceService) ownedGuide(ctx context.Context, tx *gorm.DB, id uuid.UUID, sid string) (*types.Guide, error) {
	g, err := s.guides.GetByID(ctx, tx, id)
	if err != nil {
		return nil, notFoundOr("get guide", "guide_not_found", "guide", err)
	}
	if g.SessionID != sid {
		s.log.Warn("Choice on foreign guide rejected", "guide_id", id, "session_id", sid)
		return nil, apierr.New(http.StatusForbidden, "forbidden", pkgerrors.ErrForbidden)
	}
	return g, nil
}

func (s *choiceService) Save(ctx context.Context, in SaveChoiceInput) (*types.Choice, error) {
	sid, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	in.BallotID = strings.TrimSpace(in.BallotID)
	if in.GuideID == uuid.Nil || in.BallotID == "" {
		return nil, apierr.New(http.StatusBadRequest, "invalid_request", fmt.Errorf("guideId and ballotId are required: %w", pkgerrors.ErrInvalidArgument))
	}
	if strings.TrimSpace(in.Selection) == "" {
		return nil, apierr.New(http.StatusBadRequest, "invalid_request", fmt.Errorf("selection is required: %w", pkgerrors.ErrInvalidArgument))
	}

	var out *types.Choice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		g, err := s.ownedGuide(ctx, tx, in.GuideID, sid)
		if err != nil {
			return err
		}
		b, err := s.ballots.GetByID(ctx, tx, in.BallotID)
		if err != nil {
			return notFoundOr("get ballot", "ballot_not_found", "ballot", err)
		}
		if b.ElectionID != g.ElectionID {
			return apierr.New(http.StatusBadRequest, "ballot_mismatch", errors.New("ballot does not belong to this guide's election"))
		}
		out, err = s.choices.Upsert(ctx, tx, &types.Choice{
			GuideID:   g.ID,
			BallotID:  b.ID,
			Selection: strings.TrimSpace(in.Selection),
			Notes:     in.Notes,
		})
		if err != nil {
			return apierr.New(http.StatusInternalServerError, "internal_error", dberr.MapError("upsert choice", err))
		}
		return s.guides.Touch(ctx, tx, g.ID, s.now())
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *choiceService) Delete(ctx context.Context, guideID uuid.UUID, ballotID string) error {
	sid, err := requireSession(ctx)
	if err != nil {
		return err
	}
	ballotID = strings.TrimSpace(ballotID)
	if guideID == uuid.Nil || ballotID == "" {
		return apierr.New(http.StatusBadRequest, "invalid_request", fmt.Errorf("guideId and ballotId are required: %w", pkgerrors.ErrInvalidArgument))
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		g, err := s.ownedGuide(ctx, tx, guideID, sid)
		if err != nil {
			return err
		}
		n, err := s.choices.Delete(ctx, tx, g.ID, ballotID)
		if err != nil {
			return apierr.New(http.StatusInternalServerError, "internal_error", err)
		}
		if n == 0 {
			return apierr.New(http.StatusNotFound, "choice_not_found", fmt.Errorf("choice %w", pkgerrors.ErrNotFound))
		}
		return s.guides.Touch(ctx, tx, g.ID, s.now())
	})
}
