package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/voterguide-backend/internal/http"
	httpH "github.com/yungbote/voterguide-backend/internal/http/handlers"
	httpMW "github.com/yungbote/voterguide-backend/internal/http/middleware"
	"github.com/yungbote/voterguide-backend/internal/observability"
	"github.com/yungbote/voterguide-backend/internal/platform/logger"
)

type Middleware struct {
	Session *httpMW.SessionMiddleware
}

type Handlers struct {
	Health        *httpH.HealthHandler
	BallotData    *httpH.BallotDataHandler
	Elections     *httpH.ElectionHandler
	Jurisdictions *httpH.JurisdictionHandler
	Precincts     *httpH.PrecinctHandler
	Guides        *httpH.GuideHandler
	Choices       *httpH.ChoiceHandler
	Analytics     *httpH.AnalyticsHandler
}

func wireMiddleware(log *logger.Logger, cfg Config, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Session: httpMW.NewSessionMiddleware(log, services.Sessions, cfg.SessionCookieName, cfg.CookieSecure),
	}
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:        httpH.NewHealthHandler(db),
		BallotData:    httpH.NewBallotDataHandler(services.BallotData),
		Elections:     httpH.NewElectionHandler(services.Elections),
		Jurisdictions: httpH.NewJurisdictionHandler(services.Jurisdictions),
		Precincts:     httpH.NewPrecinctHandler(services.Precincts),
		Guides:        httpH.NewGuideHandler(services.Guides),
		Choices:       httpH.NewChoiceHandler(services.Choices),
		Analytics:     httpH.NewAnalyticsHandler(services.Analytics),
	}
}

func wireRouter(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:                 log,
		ServiceName:         cfg.Otel.ServiceName,
		CORSOrigins:         cfg.CORSOrigins,
		Metrics:             metrics,
		SessionMiddleware:   middleware.Session,
		HealthHandler:       handlers.Health,
		BallotDataHandler:   handlers.BallotData,
		ElectionHandler:     handlers.Elections,
		JurisdictionHandler: handlers.Jurisdictions,
		PrecinctHandler:     handlers.Precincts,
		GuideHandler:        handlers.Guides,
		ChoiceHandler:       handlers.Choices,
		AnalyticsHandler:    handlers.Analytics,
	})
}
