package civic

import (
	"context"

	types "github.com/yungbote/voterguide-backend/internal/domain"
	"github.com/yungbote/voterguide-backend/internal/platform/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ballotReplaceColumns is every column a refresh overwrites.
var ballotReplaceColumns = []string{
	"election_id",
	"number",
	"title",
	"description",
	"type",
	"options",
	"metadata",
	"is_sample",
	"source",
	"updated_at",
}

type BallotRepo interface {
	// Upsert writes ballots keyed by id, replacing every content column
	// of an existing row.
	Upsert(ctx context.Context, tx *gorm.DB, ballots []*types.Ballot) error
	// DeleteSamples removes the election's sample ballots and any choices recorded against them.
	DeleteSamples(ctx context.Context, tx *gorm.DB, electionID string) (int64, error)
	ListByElection(ctx context.Context, tx *gorm.DB, electionID string) ([]*types.Ballot, error)
	CountByElection(ctx context.Context, tx *gorm.DB, electionID string, sample bool) (int64, error)
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*types.Ballot, error)
}

type ballotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBallotRepo(db *gorm.DB, baseLog *logger.Logger) BallotRepo {
	repoLog := baseLog.With("repo", "BallotRepo")
	return &ballotRepo{db: db, log: repoLog}
}

func (r *ballotRepo) Upsert(ctx context.Context, tx *gorm.DB, ballots []*types.Ballot) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ballots) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(ballotReplaceColumns),
		}).
		Create(&ballots).Error
}

func (r *ballotRepo) DeleteSamples(ctx context.Context, tx *gorm.DB, electionID string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	samples := transaction.WithContext(ctx).
		Model(&types.Ballot{}).
		Select("id").
		Where("election_id = ? AND is_sample = ?", electionID, true)
	// Choices reference ballots by id; drop the ones recorded against samples first.
	if err := transaction.WithContext(ctx).
		Where("ballot_id IN (?)", samples).
		Delete(&types.Choice{}).Error; err != nil {
		return 0, err
	}
	res := transaction.WithContext(ctx).
		Where("election_id = ? AND is_sample = ?", electionID, true).
		Delete(&types.Ballot{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *ballotRepo) ListByElection(ctx context.Context, tx *gorm.DB, electionID string) ([]*types.Ballot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Ballot
	if err := orderBallots(transaction.WithContext(ctx).Where("election_id = ?", electionID)).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *ballotRepo) CountByElection(ctx context.Context, tx *gorm.DB, electionID string, sample bool) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Ballot{}).
		Where("election_id = ? AND is_sample = ?", electionID, sample).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ballotRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*types.Ballot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.Ballot
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}
