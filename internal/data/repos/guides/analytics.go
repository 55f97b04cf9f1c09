package guides

import (
	"context"

	"github.com/google/uuid"
	types "github.com/yungbote/voterguide-backend/internal/domain"
	"github.com/yungbote/voterguide-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type AnalyticsRepo interface {
	Create(ctx context.Context, tx *gorm.DB, event *types.GuideAnalytics) error
	CountByGuide(ctx context.Context, tx *gorm.DB, guideID uuid.UUID, eventType string) (int64, error)
}

type analyticsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnalyticsRepo(db *gorm.DB, baseLog *logger.Logger) AnalyticsRepo {
	repoLog := baseLog.With("repo", "AnalyticsRepo")
	return &analyticsRepo{db: db, log: repoLog}
}

func (r *analyticsRepo) Create(ctx context.Context, tx *gorm.DB, event *types.GuideAnalytics) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return transaction.WithContext(ctx).Create(event).Error
}

func (r *analyticsRepo) CountByGuide(ctx context.Context, tx *gorm.DB, guideID uuid.UUID, eventType string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Model(&types.GuideAnalytics{}).Where("guide_id = ?", guideID)
	if eventType != "" {
		q = q.Where("event_type = ?", eventType)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
