package googlecivic

// Contest is one entry of a voterinfo response's contests array.
type Contest struct {
	Type               string      `json:"type"`
	Office             string      `json:"office,omitempty"`
	ReferendumTitle    string      `json:"referendumTitle,omitempty"`
	ReferendumSubtitle string      `json:"referendumSubtitle,omitempty"`
	ReferendumText     string      `json:"referendumText,omitempty"`
	Title              string      `json:"title,omitempty"`
	Description        string      `json:"description,omitempty"`
	Candidates         []Candidate `json:"candidates,omitempty"`
	District           *District   `json:"district,omitempty"`
}

type Candidate struct {
	Name         string `json:"name"`
	Party        string `json:"party,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	CandidateURL string `json:"candidateUrl,omitempty"`
	PhotoURL     string `json:"photoUrl,omitempty"`
}

type District struct {
	Name  string `json:"name"`
	Scope string `json:"scope,omitempty"`
	ID    string `json:"id,omitempty"`
}

type Election struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ElectionDay   string `json:"electionDay"`
	OCDDivisionID string `json:"ocdDivisionId,omitempty"`
}

type Address struct {
	LocationName string `json:"locationName,omitempty"`
	Line1        string `json:"line1"`
	City         string `json:"city"`
	State        string `json:"state"`
	Zip          string `json:"zip"`
}

type Location struct {
	Address      Address `json:"address"`
	Notes        string  `json:"notes,omitempty"`
	PollingHours string  `json:"pollingHours,omitempty"`
}

type VoterInfoResponse struct {
	Election         Election   `json:"election"`
	Contests         []Contest  `json:"contests"`
	PollingLocations []Location `json:"pollingLocations,omitempty"`
	EarlyVoteSites   []Location `json:"earlyVoteSites,omitempty"`
	DropOffLocations []Location `json:"dropOffLocations,omitempty"`
}
