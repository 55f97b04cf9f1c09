package civic

import (
	"time"
)

const (
	ElectionStatusUpcoming  = "upcoming"
	ElectionStatusActive    = "active"
	ElectionStatusCompleted = "completed"
)

type Election struct {
	ID             string    `gorm:"primaryKey;column:id" json:"id"`
	JurisdictionID string    `gorm:"not null;index;column:jurisdiction_id" json:"jurisdictionId"`
	Title          string    `gorm:"not null;column:title" json:"title"`
	Description    string    `gorm:"column:description" json:"description"`
	ElectionDate   time.Time `gorm:"not null;index;column:election_date" json:"electionDate"`
	Type           string    `gorm:"not null;column:type" json:"type"`
	Status         string    `gorm:"not null;index;column:status" json:"status"`
	OfficialURL    *string   `gorm:"column:official_url" json:"officialUrl,omitempty"`

	Ballots []Ballot `gorm:"foreignKey:ElectionID" json:"ballots,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Election) TableName() string { return "election" }
