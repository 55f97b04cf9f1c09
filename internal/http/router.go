package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/voterguide-backend/internal/http/handlers"
	httpMW "github.com/yungbote/voterguide-backend/internal/http/middleware"
	"github.com/yungbote/voterguide-backend/internal/observability"
	"github.com/yungbote/voterguide-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics

	SessionMiddleware *httpMW.SessionMiddleware

	HealthHandler       *httpH.HealthHandler
	BallotDataHandler   *httpH.BallotDataHandler
	ElectionHandler     *httpH.ElectionHandler
	JurisdictionHandler *httpH.JurisdictionHandler
	PrecinctHandler     *httpH.PrecinctHandler
	GuideHandler        *httpH.GuideHandler
	ChoiceHandler       *httpH.ChoiceHandler
	AnalyticsHandler    *httpH.AnalyticsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "voterguide"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Healthz)
		r.GET("/readyz", cfg.HealthHandler.Readyz)
	}

	api := r.Group("/api")
	if cfg.SessionMiddleware != nil {
		api.Use(cfg.SessionMiddleware.Attach())
	}
	{
		// Ballot data
		if cfg.BallotDataHandler != nil {
			api.POST("/ballot-data/collect", cfg.BallotDataHandler.Collect)
			api.POST("/fetch-real-ballot", cfg.BallotDataHandler.FetchRealBallot)
			api.GET("/civic/elections", cfg.BallotDataHandler.CivicElections)
		}

		// Elections
		if cfg.ElectionHandler != nil {
			api.GET("/elections", cfg.ElectionHandler.List)
			api.GET("/elections/:id", cfg.ElectionHandler.Get)
		}

		// Jurisdictions
		if cfg.JurisdictionHandler != nil {
			api.GET("/jurisdictions", cfg.JurisdictionHandler.List)
			api.GET("/jurisdictions/:id", cfg.JurisdictionHandler.Get)
		}

		// Precincts + geocoding
		if cfg.PrecinctHandler != nil {
			api.GET("/precincts", cfg.PrecinctHandler.List)
			api.POST("/precincts/locate", cfg.PrecinctHandler.Locate)
			api.GET("/geocode", cfg.PrecinctHandler.Geocode)
		}

		// Guides
		if cfg.GuideHandler != nil {
			api.GET("/guides", cfg.GuideHandler.List)
			api.GET("/guides/share/:token", cfg.GuideHandler.GetShared)
			api.POST("/guides", cfg.GuideHandler.Create)
			api.PATCH("/guides/:id", cfg.GuideHandler.Update)
			api.DELETE("/guides/:id", cfg.GuideHandler.Delete)
		}

		// Choices
		if cfg.ChoiceHandler != nil {
			api.POST("/choices", cfg.ChoiceHandler.Save)
			api.DELETE("/choices", cfg.ChoiceHandler.Delete)
		}

		// Analytics
		if cfg.AnalyticsHandler != nil {
			api.POST("/analytics", cfg.AnalyticsHandler.Track)
		}
	}

	return r
}
