// Package stubapi is a local stand-in for the Glycofy backend. It serves
// deterministic demo plans and keeps everything else in memory.
package stubapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Options configures a stub server. Zero values get defaults.
type Options struct {
	Secret            string
	AllowedOrigins    []string
	RequestsPerMinute int
	Burst             int
	Logger            *zap.Logger
	Now               func() time.Time
}

// Server is the stub backend.
type Server struct {
	engine *gin.Engine
	secret []byte
	logger *zap.Logger
	now    func() time.Time
	state  *state
}

// New builds a stub server with all routes registered.
func New(opts Options) *Server {
	if opts.Secret == "" {
		opts.Secret = "dev-secret"
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 600
	}
	if opts.Burst <= 0 {
		opts.Burst = 100
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		engine: gin.New(),
		secret: []byte(opts.Secret),
		logger: opts.Logger,
		now:    opts.Now,
		state:  newState(),
	}

	s.engine.Use(correlation(s.logger), recovery(s.logger), securityHeaders())
	if len(opts.AllowedOrigins) > 0 {
		s.engine.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type", "Accept", "X-Request-ID", correlationHeader},
			ExposeHeaders:    []string{correlationHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	s.engine.Use(rateLimit(newRateLimiterStore(opts.RequestsPerMinute, opts.Burst), s.logger))
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.engine
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
	})

	r.GET("/health/liveness", s.liveness)
	r.GET("/health/readiness", s.readiness)

	r.POST("/auth/login", s.login)
	r.POST("/auth/logout", s.logout)
	r.GET("/oauth/strava/status", s.stravaStatus)

	authed := r.Group("/", s.requireUser())
	{
		authed.GET("/users/me", s.getMe)
		authed.PUT("/users/me", s.putMe)
		authed.GET("/activities", s.listActivities)
		authed.GET("/summary/range", s.summaryRange)
		authed.GET("/summary", s.summaryRange)
		authed.POST("/sync/strava", s.syncStrava)

		plan := authed.Group("/v1/plan/:date")
		plan.GET("", s.planDay)
		plan.POST("/swap", s.planSwap)
		plan.POST("/lock", s.planLock)
		plan.GET("/grocery.txt", s.groceryText)
		plan.GET("/grocery.csv", s.groceryCSV)
	}
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// AddActivity stores a workout for sub and returns its id.
func (s *Server) AddActivity(sub string, a Activity) string {
	return s.state.addActivity(sub, a)
}

// LinkStrava marks a Strava account as connected for sub.
func (s *Server) LinkStrava(sub string, expiresAt int64) {
	s.state.linkStrava(sub, expiresAt)
}
