package guides

import (
	"context"
	"time"

	"github.com/google/uuid"
	types "github.com/yungbote/voterguide-backend/internal/domain"
	"github.com/yungbote/voterguide-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type GuideRepo interface {
	Create(ctx context.Context, tx *gorm.DB, guide *types.Guide) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Guide, error)
	// GetByShareToken loads the guide with its election, choices and ballots.
	GetByShareToken(ctx context.Context, tx *gorm.DB, token string) (*types.Guide, error)
	ListBySession(ctx context.Context, tx *gorm.DB, sessionID string) ([]*types.Guide, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, sessionID string, updates map[string]interface{}) (int64, error)
	Touch(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID, sessionID string) (int64, error)
}

type guideRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGuideRepo(db *gorm.DB, baseLog *logger.Logger) GuideRepo {
	repoLog := baseLog.With("repo", "GuideRepo")
	return &guideRepo{db: db, log: repoLog}
}

func (r *guideRepo) Create(ctx context.Context, tx *gorm.DB, guide *types.Guide) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if guide.ID == uuid.Nil {
		guide.ID = uuid.New()
	}
	return transaction.WithContext(ctx).Omit("Election", "Choices").Create(guide).Error
}

func (r *guideRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Guide, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.Guide
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *guideRepo) GetByShareToken(ctx context.Context, tx *gorm.DB, token string) (*types.Guide, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.Guide
	if err := transaction.WithContext(ctx).
		Preload("Election").
		Preload("Election.Ballots", func(db *gorm.DB) *gorm.DB {
			return db.Order("number ASC").Order("title ASC")
		}).
		Preload("Choices").
		Preload("Choices.Ballot").
		Where("share_token = ?", token).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *guideRepo) ListBySession(ctx context.Context, tx *gorm.DB, sessionID string) ([]*types.Guide, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Guide
	if err := transaction.WithContext(ctx).
		Preload("Election").
		Preload("Choices").
		Where("session_id = ?", sessionID).
		Order("updated_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *guideRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, sessionID string, updates map[string]interface{}) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["updated_at"] = time.Now().UTC()
	res := transaction.WithContext(ctx).
		Model(&types.Guide{}).
		Where("id = ? AND session_id = ?", id, sessionID).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *guideRepo) Touch(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Guide{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_accessed_at": at,
			"updated_at":       at,
		}).Error
}

func (r *guideRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID, sessionID string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var affected int64
	err := transaction.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		res := inner.Where("id = ? AND session_id = ?", id, sessionID).Delete(&types.Guide{})
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		if affected == 0 {
			return nil
		}
		return inner.Where("guide_id = ?", id).Delete(&types.Choice{}).Error
	})
	return affected, err
}
