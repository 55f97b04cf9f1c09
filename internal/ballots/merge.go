package ballots

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/voterguide-backend/internal/data/repos"
	"github.com/yungbote/voterguide-backend/internal/data/repos/dberr"
	types "github.com/yungbote/voterguide-backend/internal/domain"
	"github.com/yungbote/voterguide-backend/internal/domain/civic"
	"github.com/yungbote/voterguide-backend/internal/pkg/ctxutil"
	"github.com/yungbote/voterguide-backend/internal/platform/logger"
)

type MergeInput struct {
	JurisdictionID string
	// JurisdictionName labels errors; JurisdictionID is used when empty.
	JurisdictionName string
	// ElectionID overrides the derived election key when set.
	ElectionID string
	Info       *ElectionInfo
}

type MergeResult struct {
	Election       *types.Election `json:"election"`
	Ballots        []*types.Ballot `json:"ballots"`
	Written        int             `json:"written"`
	SamplesDeleted int64           `json:"samplesDeleted"`
}

// MergeObserver receives the result of every Merge call.
type MergeObserver interface {
	ObserveMerge(written int, samplesDeleted int64, err error)
}

// Merger reconciles an ElectionInfo into stored Election and Ballot rows.
type Merger struct {
	db        *gorm.DB
	log       *logger.Logger
	elections repos.ElectionRepo
	ballots   repos.BallotRepo
	observer  MergeObserver
	now       func() time.Time
}

func NewMerger(db *gorm.DB, log *logger.Logger, elections repos.ElectionRepo, ballots repos.BallotRepo) *Merger {
	return &Merger{
		db:        db,
		log:       log.With("service", "BallotMerger"),
		elections: elections,
		ballots:   ballots,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithObserver attaches o and returns m.
func (m *Merger) WithObserver(o MergeObserver) *Merger {
	m.observer = o
	return m
}

// Merge upserts the election, fully replaces each ballot keyed by its
// slug, and then deletes the election's sample ballots if at least one
// item was written. All of it commits or none of it does.
func (m *Merger) Merge(ctx context.Context, in MergeInput) (*MergeResult, error) {
	ctx = ctxutil.Default(ctx)
	if strings.TrimSpace(in.JurisdictionID) == "" {
		return nil, NewValidationError("jurisdictionId", "jurisdictionId is required")
	}
	if in.Info == nil {
		return nil, NewValidationError("electionInfo", "election info is required")
	}
	if in.Info.Date.IsZero() {
		return nil, NewValidationError("electionDate", "election date is required")
	}
	label := in.JurisdictionName
	if label == "" {
		label = in.JurisdictionID
	}

	electionID := strings.TrimSpace(in.ElectionID)
	if electionID == "" {
		electionID = ElectionKey(in.JurisdictionID, in.Info.Date)
	}

	ctx, span := otel.Tracer("voterguide/ballots").Start(ctx, "ballots.merge")
	span.SetAttributes(
		attribute.String("jurisdiction", in.JurisdictionID),
		attribute.String("election", electionID),
		attribute.Int("items", len(in.Info.Items)),
	)
	defer span.End()

	now := m.now()
	election := &types.Election{
		ID:             electionID,
		JurisdictionID: in.JurisdictionID,
		Title:          in.Info.Title,
		Description:    in.Info.Description,
		ElectionDate:   in.Info.Date,
		Type:           firstNonEmpty(in.Info.Type, "general"),
		Status:         civic.ElectionStatusUpcoming,
	}
	if in.Info.OfficialURL != "" {
		url := in.Info.OfficialURL
		election.OfficialURL = &url
	}
	rows := m.ballotRows(electionID, in.Info, now)

	res := &MergeResult{}
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := m.elections.Upsert(ctx, tx, election); err != nil {
			return &PersistenceError{Jurisdiction: label, Op: "upsert election", Err: dberr.MapError("upsert election", err)}
		}
		if err := m.ballots.Upsert(ctx, tx, rows); err != nil {
			return &PersistenceError{Jurisdiction: label, Op: "upsert ballots", Err: dberr.MapError("upsert ballots", err)}
		}
		res.Written = len(rows)

		// Samples stay until real content exists to replace them.
		if res.Written > 0 {
			n, err := m.ballots.DeleteSamples(ctx, tx, electionID)
			if err != nil {
				return &PersistenceError{Jurisdiction: label, Op: "delete samples", Err: dberr.MapError("delete samples", err)}
			}
			res.SamplesDeleted = n
		}

		stored, err := m.elections.GetByID(ctx, tx, electionID)
		if err != nil {
			return &PersistenceError{Jurisdiction: label, Op: "reload election", Err: dberr.MapError("reload election", err)}
		}
		list, err := m.ballots.ListByElection(ctx, tx, electionID)
		if err != nil {
			return &PersistenceError{Jurisdiction: label, Op: "reload ballots", Err: dberr.MapError("reload ballots", err)}
		}
		res.Election = stored
		res.Ballots = list
		return nil
	})
	if err != nil {
		var pe *PersistenceError
		if !errors.As(err, &pe) {
			err = &PersistenceError{Jurisdiction: label, Op: "commit", Err: dberr.MapError("commit", err)}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "merge failed")
		m.log.Error("Ballot merge failed", "jurisdiction", label, "election", electionID, "error", err)
		m.observe(0, 0, err)
		return nil, err
	}

	m.log.Info("Ballot data merged",
		"jurisdiction", label,
		"election", electionID,
		"written", res.Written,
		"samples_deleted", res.SamplesDeleted,
	)
	m.observe(res.Written, res.SamplesDeleted, nil)
	return res, nil
}

func (m *Merger) observe(written int, deleted int64, err error) {
	if m.observer != nil {
		m.observer.ObserveMerge(written, deleted, err)
	}
}

// ballotRows builds one row per distinct key. When two items share a
// key the later one wins, matching sequential upserts.
func (m *Merger) ballotRows(electionID string, info *ElectionInfo, now time.Time) []*types.Ballot {
	rows := make([]*types.Ballot, 0, len(info.Items))
	index := make(map[string]int, len(info.Items))
	for _, item := range info.Items {
		if strings.TrimSpace(item.Title) == "" {
			continue
		}
		md := item.Metadata
		md.IsSample = false
		if md.Source == "" {
			md.Source = info.Source
		}
		fetchedAt := now
		md.FetchedAt = &fetchedAt

		options := make(datatypes.JSONSlice[string], len(item.Options))
		copy(options, item.Options)

		row := &types.Ballot{
			ID:          BallotKey(electionID, item.Title),
			ElectionID:  electionID,
			Number:      item.Number,
			Title:       item.Title,
			Description: item.Description,
			Type:        item.Type,
			Options:     options,
			Metadata:    datatypes.NewJSONType(md),
		}
		if i, dup := index[row.ID]; dup {
			m.log.Warn("Duplicate ballot key in one fetch", "ballot", row.ID)
			rows[i] = row
			continue
		}
		index[row.ID] = len(rows)
		rows = append(rows, row)
	}
	return rows
}
