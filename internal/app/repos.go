package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/voterguide-backend/internal/data/repos"
	"github.com/yungbote/voterguide-backend/internal/platform/logger"
)

type Repos struct {
	Jurisdiction repos.JurisdictionRepo
	Precinct     repos.PrecinctRepo
	Election     repos.ElectionRepo
	Ballot       repos.BallotRepo
	Guide        repos.GuideRepo
	Choice       repos.ChoiceRepo
	Analytics    repos.AnalyticsRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Jurisdiction: repos.NewJurisdictionRepo(db, log),
		Precinct:     repos.NewPrecinctRepo(db, log),
		Election:     repos.NewElectionRepo(db, log),
		Ballot:       repos.NewBallotRepo(db, log),
		Guide:        repos.NewGuideRepo(db, log),
		Choice:       repos.NewChoiceRepo(db, log),
		Analytics:    repos.NewAnalyticsRepo(db, log),
	}
}
