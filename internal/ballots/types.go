package ballots

import (
	"time"

	"github.com/yungbote/voterguide-backend/internal/domain/civic"
)

// Provider display names, recorded as metadata.source on every item.
const (
	SourceGoogleCivic    = "Google Civic Information API"
	SourceDemocracyWorks = "Democracy Works API"
	SourceBallotReady    = "BallotReady API"
)

const (
	OptionYes     = "YES"
	OptionNo      = "NO"
	OptionWriteIn = "Write-in"
)

// BallotItem is the provider-neutral shape of one contest.
type BallotItem struct {
	Number      *string              `json:"number,omitempty"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Type        string               `json:"type"`
	Options     []string             `json:"options"`
	Metadata    civic.BallotMetadata `json:"metadata"`
}

type Site struct {
	Address string `json:"address"`
	Hours   string `json:"hours,omitempty"`
}

type Deadlines struct {
	Registration    string `json:"registration,omitempty"`
	AbsenteeRequest string `json:"absenteeRequest,omitempty"`
	EarlyVoting     string `json:"earlyVoting,omitempty"`
	ElectionDay     string `json:"electionDay,omitempty"`
}

// ElectionInfo is what a successful provider attempt yields.
type ElectionInfo struct {
	// ProviderElectionID is the provider's own id, informational only.
	ProviderElectionID string       `json:"providerElectionId,omitempty"`
	Title              string       `json:"title"`
	Description        string       `json:"description,omitempty"`
	Date               time.Time    `json:"electionDate"`
	Type               string       `json:"type"`
	OfficialURL        string       `json:"officialUrl,omitempty"`
	Deadlines          *Deadlines   `json:"deadlines,omitempty"`
	PollingLocations   []Site       `json:"pollingLocations,omitempty"`
	EarlyVoteSites     []Site       `json:"earlyVoteSites,omitempty"`
	Items              []BallotItem `json:"ballots"`
	Source             string       `json:"source"`
}

// FetchRequest identifies what to look up. Address is optional for
// providers keyed by jurisdiction.
type FetchRequest struct {
	JurisdictionName string
	State            string
	Address          string
	ElectionID       string
}
