package civic

import (
	"context"
	"strings"

	types "github.com/yungbote/voterguide-backend/internal/domain"
	"github.com/yungbote/voterguide-backend/internal/platform/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ElectionFilter struct {
	JurisdictionID string
	Status         string
}

type ElectionRepo interface {
	// Upsert inserts the election or refreshes its mutable fields.
	// Type and status are only written on insert.
	Upsert(ctx context.Context, tx *gorm.DB, election *types.Election) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*types.Election, error)
	GetWithBallots(ctx context.Context, tx *gorm.DB, id string) (*types.Election, error)
	List(ctx context.Context, tx *gorm.DB, filter ElectionFilter) ([]*types.Election, error)
}

type electionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewElectionRepo(db *gorm.DB, baseLog *logger.Logger) ElectionRepo {
	repoLog := baseLog.With("repo", "ElectionRepo")
	return &electionRepo{db: db, log: repoLog}
}

func (r *electionRepo) Upsert(ctx context.Context, tx *gorm.DB, election *types.Election) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "description", "election_date", "official_url", "updated_at"}),
		}).
		Create(election).Error
}

func (r *electionRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*types.Election, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.Election
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *electionRepo) GetWithBallots(ctx context.Context, tx *gorm.DB, id string) (*types.Election, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.Election
	if err := transaction.WithContext(ctx).
		Preload("Ballots", orderBallots).
		Where("id = ?", id).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *electionRepo) List(ctx context.Context, tx *gorm.DB, filter ElectionFilter) ([]*types.Election, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Preload("Ballots", orderBallots)
	if jid := strings.TrimSpace(filter.JurisdictionID); jid != "" {
		q = q.Where("jurisdiction_id = ?", jid)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		q = q.Where("status = ?", status)
	}
	var results []*types.Election
	if err := q.Order("election_date ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func orderBallots(db *gorm.DB) *gorm.DB {
	return db.Order("number ASC").Order("title ASC")
}
