package router

import (
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	"github.com/drelsherif/shaky/internal/config"
	"github.com/drelsherif/shaky/internal/handlers"
	"github.com/drelsherif/shaky/internal/models"
	"github.com/drelsherif/shaky/internal/session"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.String(http.StatusTooManyRequests, "Too many requests. Try again later.")
}

// Setup builds the gin engine with the assessment, stream, and chart routes.
func Setup(log *zap.Logger, sessionManager *session.Manager, protocol *models.Protocol) *gin.Engine {
	// Set up a new Gin router, add recovery middleware and request logging.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	store := cookie.NewStore([]byte(config.Conf.Server.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400,
	})
	router.Use(sessions.Sessions("shaky_session", store))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
		c.Next()
	})

	// Handlers and routes
	assessmentHandler := handlers.NewAssessmentHandler(log, sessionManager, protocol)
	streamHandler := handlers.NewStreamHandler(log, sessionManager)
	chartsHandler := handlers.NewChartsHandler(log, sessionManager)

	// Session creation is the only endpoint worth rate limiting; the
	// ingest endpoints are expected to run at sensor rate.
	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 10,
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})

	router.POST("/session", limiter, assessmentHandler.CreateSession)
	router.GET("/protocol", assessmentHandler.GetProtocol)

	router.POST("/phase/start", assessmentHandler.StartPhase)
	router.POST("/phase/stop", assessmentHandler.StopPhase)
	router.POST("/tap", assessmentHandler.Tap)
	router.POST("/samples", assessmentHandler.Samples)
	router.GET("/live", assessmentHandler.Live)

	router.GET("/results/:hand/:kind", assessmentHandler.Result)
	router.GET("/summary", assessmentHandler.Summary)
	router.GET("/charts/session", chartsHandler.SessionCharts)

	router.GET("/stream", streamHandler.Stream)

	return router
}
