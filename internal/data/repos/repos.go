package repos

import (
	"github.com/yungbote/voterguide-backend/internal/data/repos/civic"
	"github.com/yungbote/voterguide-backend/internal/data/repos/guides"
	"github.com/yungbote/voterguide-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type JurisdictionRepo = civic.JurisdictionRepo
type PrecinctRepo = civic.PrecinctRepo
type ElectionRepo = civic.ElectionRepo
type BallotRepo = civic.BallotRepo
type ElectionFilter = civic.ElectionFilter

type GuideRepo = guides.GuideRepo
type ChoiceRepo = guides.ChoiceRepo
type AnalyticsRepo = guides.AnalyticsRepo

func NewJurisdictionRepo(db *gorm.DB, baseLog *logger.Logger) JurisdictionRepo {
	return civic.NewJurisdictionRepo(db, baseLog)
}

func NewPrecinctRepo(db *gorm.DB, baseLog *logger.Logger) PrecinctRepo {
	return civic.NewPrecinctRepo(db, baseLog)
}

func NewElectionRepo(db *gorm.DB, baseLog *logger.Logger) ElectionRepo {
	return civic.NewElectionRepo(db, baseLog)
}

func NewBallotRepo(db *gorm.DB, baseLog *logger.Logger) BallotRepo {
	return civic.NewBallotRepo(db, baseLog)
}

func NewGuideRepo(db *gorm.DB, baseLog *logger.Logger) GuideRepo {
	return guides.NewGuideRepo(db, baseLog)
}

func NewChoiceRepo(db *gorm.DB, baseLog *logger.Logger) ChoiceRepo {
	return guides.NewChoiceRepo(db, baseLog)
}

func NewAnalyticsRepo(db *gorm.DB, baseLog *logger.Logger) AnalyticsRepo {
	return guides.NewAnalyticsRepo(db, baseLog)
}
