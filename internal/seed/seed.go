// Package seed loads the embedded sample jurisdictions, precincts,
// elections and ballots.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/voterguide-backend/internal/ballots"
	"github.com/yungbote/voterguide-backend/internal/data/repos"
	types "github.com/yungbote/voterguide-backend/internal/domain"
	"github.com/yungbote/voterguide-backend/internal/domain/civic"
	"github.com/yungbote/voterguide-backend/internal/platform/logger"
)

// SourceSeed tags every seeded ballot's metadata.
const SourceSeed = "seed"

//go:embed seed.yaml
var defaultData []byte

type File struct {
	Jurisdictions []Jurisdiction `yaml:"jurisdictions"`
}

type Jurisdiction struct {
	ID        string     `yaml:"id"`
	Name      string     `yaml:"name"`
	State     string     `yaml:"state"`
	County    string     `yaml:"county"`
	FIPSCode  string     `yaml:"fipsCode"`
	Type      string     `yaml:"type"`
	Precincts []Precinct `yaml:"precincts"`
	Elections []Election `yaml:"elections"`
}

type Precinct struct {
	Number   string   `yaml:"number"`
	Name     string   `yaml:"name"`
	Lat      *float64 `yaml:"lat"`
	Lng      *float64 `yaml:"lng"`
	ZipCodes []string `yaml:"zipCodes"`
}

type Election struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Date        string   `yaml:"date"`
	Type        string   `yaml:"type"`
	OfficialURL string   `yaml:"officialUrl"`
	Ballots     []Ballot `yaml:"ballots"`
}

type Ballot struct {
	Number      string         `yaml:"number"`
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Type        string         `yaml:"type"`
	Options     []string       `yaml:"options"`
	Extra       map[string]any `yaml:"extra"`
}

// Default parses the embedded seed data.
func Default() (*File, error) {
	return Parse(defaultData)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	for i, j := range f.Jurisdictions {
		if strings.TrimSpace(j.ID) == "" || strings.TrimSpace(j.Name) == "" || strings.TrimSpace(j.State) == "" {
			return nil, fmt.Errorf("seed jurisdiction %d: id, name and state are required", i)
		}
		for _, e := range j.Elections {
			if _, err := time.Parse("2006-01-02", e.Date); err != nil {
				return nil, fmt.Errorf("seed jurisdiction %s: election %q: bad date %q", j.ID, e.Title, e.Date)
			}
		}
	}
	return &f, nil
}

type Result struct {
	Jurisdictions int `json:"jurisdictions"`
	Precincts     int `json:"precincts"`
	Elections     int `json:"elections"`
	Ballots       int `json:"ballots"`
}

type Seeder struct {
	db            *gorm.DB
	log           *logger.Logger
	jurisdictions repos.JurisdictionRepo
	precincts     repos.PrecinctRepo
	elections     repos.ElectionRepo
	ballots       repos.BallotRepo
}

func NewSeeder(db *gorm.DB, log *logger.Logger) *Seeder {
	return &Seeder{
		db:            db,
		log:           log.With("service", "Seeder"),
		jurisdictions: repos.NewJurisdictionRepo(db, log),
		precincts:     repos.NewPrecinctRepo(db, log),
		elections:     repos.NewElectionRepo(db, log),
		ballots:       repos.NewBallotRepo(db, log),
	}
}

// Seed upserts everything in f in one transaction. Ids are derived, so
// running it twice leaves the same rows.
func (s *Seeder) Seed(ctx context.Context, f *File) (*Result, error) {
	res := &Result{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, j := range f.Jurisdictions {
			if err := s.seedJurisdiction(ctx, tx, j, res); err != nil {
				return fmt.Errorf("seed %s: %w", j.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Seed complete",
		"jurisdictions", res.Jurisdictions,
		"precincts", res.Precincts,
		"elections", res.Elections,
		"ballots", res.Ballots,
	)
	return res, nil
}

func (s *Seeder) seedJurisdiction(ctx context.Context, tx *gorm.DB, j Jurisdiction, res *Result) error {
	row := &types.Jurisdiction{
		ID:    j.ID,
		Name:  j.Name,
		State: strings.ToUpper(j.State),
		Type:  firstNonEmpty(j.Type, civic.JurisdictionTypeCounty),
	}
	if j.County != "" {
		row.County = &j.County
	}
	if j.FIPSCode != "" {
		row.FIPSCode = &j.FIPSCode
	}
	if err := s.jurisdictions.Upsert(ctx, tx, []*types.Jurisdiction{row}); err != nil {
		return err
	}
	res.Jurisdictions++

	precincts := make([]*types.Precinct, 0, len(j.Precincts))
	for _, p := range j.Precincts {
		number := p.Number
		precincts = append(precincts, &types.Precinct{
			ID:             j.ID + "-p" + ballots.Slugify(p.Number),
			JurisdictionID: j.ID,
			Name:           p.Name,
			Number:         &number,
			Lat:            p.Lat,
			Lng:            p.Lng,
			ZipCodes:       datatypes.JSONSlice[string](p.ZipCodes),
		})
	}
	if len(precincts) > 0 {
		if err := s.precincts.Upsert(ctx, tx, precincts); err != nil {
			return err
		}
		res.Precincts += len(precincts)
	}

	for _, e := range j.Elections {
		if err := s.seedElection(ctx, tx, j.ID, e, res); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedElection(ctx context.Context, tx *gorm.DB, jurisdictionID string, e Election, res *Result) error {
	date, _ := time.Parse("2006-01-02", e.Date)
	electionID := ballots.ElectionKey(jurisdictionID, date)
	election := &types.Election{
		ID:             electionID,
		JurisdictionID: jurisdictionID,
		Title:          e.Title,
		Description:    e.Description,
		ElectionDate:   date,
		Type:           firstNonEmpty(e.Type, "general"),
		Status:         civic.ElectionStatusUpcoming,
	}
	if e.OfficialURL != "" {
		election.OfficialURL = &e.OfficialURL
	}
	if err := s.elections.Upsert(ctx, tx, election); err != nil {
		return err
	}
	res.Elections++

	rows := make([]*types.Ballot, 0, len(e.Ballots))
	for _, b := range e.Ballots {
		row := &types.Ballot{
			ID:          ballots.BallotKey(electionID, b.Title),
			ElectionID:  electionID,
			Title:       b.Title,
			Description: b.Description,
			Type:        firstNonEmpty(b.Type, civic.BallotTypeMeasure),
			Options:     datatypes.JSONSlice[string](b.Options),
			Metadata: datatypes.NewJSONType(civic.BallotMetadata{
				Source:   SourceSeed,
				IsSample: true,
				Extra:    b.Extra,
			}),
		}
		if b.Number != "" {
			number := b.Number
			row.Number = &number
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil
	}
	if err := s.ballots.Upsert(ctx, tx, rows); err != nil {
		return err
	}
	res.Ballots += len(rows)
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
