package civic

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	BallotTypeProposition = "proposition"
	BallotTypeMeasure     = "measure"
	BallotTypeCandidate   = "candidate"
	BallotTypeReferendum  = "referendum"
	BallotTypeOffice      = "office"
)

// Ballot is one contest on an election's ballot.
type Ballot struct {
	ID          string                             `gorm:"primaryKey;column:id" json:"id"`
	ElectionID  string                             `gorm:"not null;index;column:election_id" json:"electionId"`
	Number      *string                            `gorm:"column:number" json:"number,omitempty"`
	Title       string                             `gorm:"not null;column:title" json:"title"`
	Description string                             `gorm:"column:description" json:"description"`
	Type        string                             `gorm:"not null;column:type" json:"type"`
	Options     datatypes.JSONSlice[string]        `gorm:"column:options" json:"options"`
	Metadata    datatypes.JSONType[BallotMetadata] `gorm:"column:metadata" json:"metadata"`

	// IsSample and Source mirror Metadata so they can be filtered on
	// without JSON operators.
	IsSample bool   `gorm:"not null;default:false;index;column:is_sample" json:"-"`
	Source   string `gorm:"column:source" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Ballot) TableName() string { return "ballot" }

func (b *Ballot) BeforeSave(tx *gorm.DB) error {
	md := b.Metadata.Data()
	b.IsSample = md.IsSample
	b.Source = md.Source
	return nil
}

// BallotMetadata is the provenance envelope stored with every ballot.
type BallotMetadata struct {
	Source      string          `json:"source"`
	IsSample    bool            `json:"isSample"`
	ContestType string          `json:"contestType,omitempty"`
	District    string          `json:"district,omitempty"`
	Office      string          `json:"office,omitempty"`
	Candidates  []CandidateInfo `json:"candidates,omitempty"`
	FetchedAt   *time.Time      `json:"fetchedAt,omitempty"`
	Extra       map[string]any  `json:"extra,omitempty"`
}

type CandidateInfo struct {
	Name  string `json:"name"`
	Party string `json:"party,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	URL   string `json:"url,omitempty"`
	Photo string `json:"photo,omitempty"`
	Bio   string `json:"bio,omitempty"`
}
