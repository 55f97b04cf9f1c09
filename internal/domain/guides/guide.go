package guides

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/voterguide-backend/internal/domain/civic"
)

const (
	VisibilityPrivate = "private"
	VisibilityFriends = "friends"
	VisibilityPublic  = "public"
)

func ValidVisibility(v string) bool {
	switch v {
	case VisibilityPrivate, VisibilityFriends, VisibilityPublic:
		return true
	default:
		return false
	}
}

// Guide is a session's saved set of choices for one election.
type Guide struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	SessionID      string    `gorm:"not null;index;column:session_id" json:"-"`
	ElectionID     string    `gorm:"not null;index;column:election_id" json:"electionId"`
	JurisdictionID *string   `gorm:"column:jurisdiction_id" json:"jurisdictionId,omitempty"`
	PrecinctID     *string   `gorm:"column:precinct_id" json:"precinctId,omitempty"`
	Title          string    `gorm:"not null;column:title" json:"title"`
	Author         *string   `gorm:"column:author" json:"author,omitempty"`
	Description    *string   `gorm:"column:description" json:"description,omitempty"`
	Notes          string    `gorm:"column:notes" json:"notes"`
	Visibility     string    `gorm:"not null;default:private;column:visibility" json:"visibility"`
	ShareToken     string    `gorm:"not null;uniqueIndex;column:share_token" json:"shareToken"`
	LastAccessedAt time.Time `gorm:"not null;column:last_accessed_at" json:"lastAccessedAt"`

	Election *civic.Election `gorm:"foreignKey:ElectionID" json:"election,omitempty"`
	Choices  []Choice        `gorm:"foreignKey:GuideID" json:"choices,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updatedAt"`
}

func (Guide) TableName() string { return "guide" }

type Choice struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	GuideID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_choice_guide_ballot,priority:1;column:guide_id" json:"guideId"`
	BallotID  string    `gorm:"not null;uniqueIndex:idx_choice_guide_ballot,priority:2;column:ballot_id" json:"ballotId"`
	Selection string    `gorm:"not null;column:selection" json:"selection"`
	Notes     *string   `gorm:"column:notes" json:"notes,omitempty"`

	Ballot *civic.Ballot `gorm:"foreignKey:BallotID" json:"ballot,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Choice) TableName() string { return "choice" }

const (
	EventShare = "share"
	EventView  = "view"
	EventPrint = "print"
)

type GuideAnalytics struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	GuideID   uuid.UUID `gorm:"type:uuid;not null;index;column:guide_id" json:"guideId"`
	EventType string    `gorm:"not null;column:event_type" json:"eventType"`
	IPHash    string    `gorm:"column:ip_hash" json:"-"`
	UserAgent string    `gorm:"column:user_agent" json:"userAgent,omitempty"`
	Referrer  string    `gorm:"column:referrer" json:"referrer,omitempty"`
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}

func (GuideAnalytics) TableName() string { return "guide_analytics" }
