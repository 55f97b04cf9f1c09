package civic

import (
	"context"

	types "github.com/yungbote/voterguide-backend/internal/domain"
	"github.com/yungbote/voterguide-backend/internal/platform/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type JurisdictionRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, jurisdictions []*types.Jurisdiction) error
	List(ctx context.Context, tx *gorm.DB) ([]*types.Jurisdiction, error)
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*types.Jurisdiction, error)
	GetWithPrecincts(ctx context.Context, tx *gorm.DB, id string) (*types.Jurisdiction, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*types.Jurisdiction, error)
}

type jurisdictionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJurisdictionRepo(db *gorm.DB, baseLog *logger.Logger) JurisdictionRepo {
	repoLog := baseLog.With("repo", "JurisdictionRepo")
	return &jurisdictionRepo{db: db, log: repoLog}
}

func (r *jurisdictionRepo) Upsert(ctx context.Context, tx *gorm.DB, jurisdictions []*types.Jurisdiction) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(jurisdictions) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "state", "county", "fips_code", "type", "updated_at"}),
		}).
		Create(&jurisdictions).Error
}

func (r *jurisdictionRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Jurisdiction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Jurisdiction
	if err := transaction.WithContext(ctx).
		Order("state ASC").
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *jurisdictionRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*types.Jurisdiction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.Jurisdiction
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *jurisdictionRepo) GetWithPrecincts(ctx context.Context, tx *gorm.DB, id string) (*types.Jurisdiction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.Jurisdiction
	if err := transaction.WithContext(ctx).
		Preload("Precincts", func(db *gorm.DB) *gorm.DB {
			return db.Order("number ASC").Order("name ASC")
		}).
		Where("id = ?", id).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *jurisdictionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*types.Jurisdiction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Jurisdiction
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Order("state ASC").
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
