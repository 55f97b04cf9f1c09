package civic

import (
	"context"

	types "github.com/yungbote/voterguide-backend/internal/domain"
	"github.com/yungbote/voterguide-backend/internal/platform/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PrecinctRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, precincts []*types.Precinct) error
	ListByJurisdiction(ctx context.Context, tx *gorm.DB, jurisdictionID string) ([]*types.Precinct, error)
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*types.Precinct, error)
}

type precinctRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPrecinctRepo(db *gorm.DB, baseLog *logger.Logger) PrecinctRepo {
	repoLog := baseLog.With("repo", "PrecinctRepo")
	return &precinctRepo{db: db, log: repoLog}
}

func (r *precinctRepo) Upsert(ctx context.Context, tx *gorm.DB, precincts []*types.Precinct) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(precincts) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"jurisdiction_id", "name", "number", "lat", "lng", "zip_codes", "registered_voters", "updated_at",
			}),
		}).
		Create(&precincts).Error
}

func (r *precinctRepo) ListByJurisdiction(ctx context.Context, tx *gorm.DB, jurisdictionID string) ([]*types.Precinct, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Precinct
	if err := transaction.WithContext(ctx).
		Where("jurisdiction_id = ?", jurisdictionID).
		Order("number ASC").
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *precinctRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*types.Precinct, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.Precinct
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}
