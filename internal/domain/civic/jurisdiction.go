package civic

import (
	"time"

	"gorm.io/datatypes"
)

const (
	JurisdictionTypePrecinct = "precinct"
	JurisdictionTypeCounty   = "county"
	JurisdictionTypeCity     = "city"
)

type Jurisdiction struct {
	ID       string  `gorm:"primaryKey;column:id" json:"id"`
	Name     string  `gorm:"not null;column:name" json:"name"`
	State    string  `gorm:"not null;index;column:state" json:"state"`
	County   *string `gorm:"column:county" json:"county,omitempty"`
	FIPSCode *string `gorm:"column:fips_code" json:"fipsCode,omitempty"`
	Type     string  `gorm:"not null;column:type" json:"type"`

	Precincts []Precinct `gorm:"foreignKey:JurisdictionID" json:"precincts,omitempty"`
	Elections []Election `gorm:"foreignKey:JurisdictionID" json:"elections,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Jurisdiction) TableName() string { return "jurisdiction" }

type Precinct struct {
	ID               string                      `gorm:"primaryKey;column:id" json:"id"`
	JurisdictionID   string                      `gorm:"not null;index;column:jurisdiction_id" json:"jurisdictionId"`
	Name             string                      `gorm:"not null;column:name" json:"name"`
	Number           *string                     `gorm:"column:number" json:"number,omitempty"`
	Lat              *float64                    `gorm:"column:lat" json:"lat,omitempty"`
	Lng              *float64                    `gorm:"column:lng" json:"lng,omitempty"`
	ZipCodes         datatypes.JSONSlice[string] `gorm:"column:zip_codes" json:"zipCodes"`
	RegisteredVoters *int                        `gorm:"column:registered_voters" json:"registeredVoters,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Precinct) TableName() string { return "precinct" }

// HasCenter reports whether the precinct carries a usable center point.
func (p Precinct) HasCenter() bool {
	return p.Lat != nil && p.Lng != nil
}
