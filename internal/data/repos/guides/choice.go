package guides

import (
	"context"
	"time"

	"github.com/google/uuid"
	types "github.com/yungbote/voterguide-backend/internal/domain"
	"github.com/yungbote/voterguide-backend/internal/platform/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChoiceRepo interface {
	// Upsert keys on (guide_id, ballot_id); a repeat updates selection and notes.
	Upsert(ctx context.Context, tx *gorm.DB, choice *types.Choice) (*types.Choice, error)
	Delete(ctx context.Context, tx *gorm.DB, guideID uuid.UUID, ballotID string) (int64, error)
	ListByGuide(ctx context.Context, tx *gorm.DB, guideID uuid.UUID) ([]*types.Choice, error)
}

type choiceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChoiceRepo(db *gorm.DB, baseLog *logger.Logger) ChoiceRepo {
	repoLog := baseLog.With("repo", "ChoiceRepo")
	return &choiceRepo{db: db, log: repoLog}
}

func (r *choiceRepo) Upsert(ctx context.Context, tx *gorm.DB, choice *types.Choice) (*types.Choice, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if choice.ID == uuid.Nil {
		choice.ID = uuid.New()
	}
	choice.UpdatedAt = time.Now().UTC()
	if err := transaction.WithContext(ctx).
		Omit("Ballot").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "guide_id"}, {Name: "ballot_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"selection", "notes", "updated_at"}),
		}).
		Create(choice).Error; err != nil {
		return nil, err
	}

	// The insert id is discarded on conflict, so read back the stored row.
	var stored types.Choice
	if err := transaction.WithContext(ctx).
		Where("guide_id = ? AND ballot_id = ?", choice.GuideID, choice.BallotID).
		First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *choiceRepo) Delete(ctx context.Context, tx *gorm.DB, guideID uuid.UUID, ballotID string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Where("guide_id = ? AND ballot_id = ?", guideID, ballotID).
		Delete(&types.Choice{})
	return res.RowsAffected, res.Error
}

func (r *choiceRepo) ListByGuide(ctx context.Context, tx *gorm.DB, guideID uuid.UUID) ([]*types.Choice, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Choice
	if err := transaction.WithContext(ctx).
		Where("guide_id = ?", guideID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
