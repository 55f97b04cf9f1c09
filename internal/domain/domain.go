package domain

import (
	"github.com/yungbote/voterguide-backend/internal/domain/civic"
	"github.com/yungbote/voterguide-backend/internal/domain/guides"
)

type Jurisdiction = civic.Jurisdiction
type Precinct = civic.Precinct
type Election = civic.Election
type Ballot = civic.Ballot
type BallotMetadata = civic.BallotMetadata
type CandidateInfo = civic.CandidateInfo

type Guide = guides.Guide
type Choice = guides.Choice
type GuideAnalytics = guides.GuideAnalytics

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		&civic.Jurisdiction{},
		&civic.Precinct{},
		&civic.Election{},
		&civic.Ballot{},
		&guides.Guide{},
		&guides.Choice{},
		&guides.GuideAnalytics{},
	}
}
