// Package http exposes the register operations over a gin HTTP API.
package http

import (
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/jrodas4044/signature-register/internal/config"
	"github.com/jrodas4044/signature-register/internal/http/adhesions"
	"github.com/jrodas4044/signature-register/internal/http/analytics"
	"github.com/jrodas4044/signature-register/internal/http/auth"
	"github.com/jrodas4044/signature-register/internal/http/common"
	"github.com/jrodas4044/signature-register/internal/http/dictamen"
	"github.com/jrodas4044/signature-register/internal/http/leaders"
	"github.com/jrodas4044/signature-register/internal/http/sheets"
	"github.com/jrodas4044/signature-register/internal/infra/authz"
	"github.com/jrodas4044/signature-register/internal/infra/db"
	"github.com/jrodas4044/signature-register/internal/infra/ratelimit"
	"github.com/jrodas4044/signature-register/internal/usecase"
)

type Server struct {
	cfg           config.Config
	r             *gin.Engine
	log           *zap.Logger
	limiter       ratelimit.Limiter
	metrics       *serverMetrics
	authenticator common.Authenticator

	allocator  *usecase.AllocatorService
	custody    *usecase.CustodyService
	recorder   *usecase.RecorderService
	reconciler *usecase.ReconcilerService
	analytics  *usecase.AnalyticsService
	leaders    *usecase.LeaderService
}

type ServerDeps struct {
	Allocator     *usecase.AllocatorService
	Custody       *usecase.CustodyService
	Recorder      *usecase.RecorderService
	Reconciler    *usecase.ReconcilerService
	Analytics     *usecase.AnalyticsService
	Leaders       *usecase.LeaderService
	Authenticator common.Authenticator
	Limiter       ratelimit.Limiter
}

// NewServer wires the full stack on top of an open database handle.
func NewServer(cfg config.Config, gdb *gorm.DB, limiter ratelimit.Limiter, log *zap.Logger) *Server {
	leaderRepo := db.NewLeaderRepository(gdb)
	sheetRepo := db.NewSheetRepository(gdb)
	adhesionRepo := db.NewAdhesionRepository(gdb)
	authorizer := authz.New()

	return NewServerWithDeps(cfg, log, ServerDeps{
		Allocator:     usecase.NewAllocatorService(sheetRepo, leaderRepo, authorizer, log),
		Custody:       usecase.NewCustodyService(sheetRepo, leaderRepo, authorizer, log),
		Recorder:      usecase.NewRecorderService(sheetRepo, adhesionRepo, authorizer, log),
		Reconciler:    usecase.NewReconcilerService(sheetRepo, adhesionRepo, authorizer, log),
		Analytics:     usecase.NewAnalyticsService(leaderRepo, sheetRepo, adhesionRepo, authorizer),
		Leaders:       usecase.NewLeaderService(leaderRepo, authorizer, log),
		Authenticator: auth.NewHeaderAuthenticator(),
		Limiter:       limiter,
	})
}

func NewServerWithDeps(cfg config.Config, log *zap.Logger, deps ServerDeps) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:           cfg,
		r:             r,
		log:           log,
		limiter:       deps.Limiter,
		metrics:       newServerMetrics(),
		authenticator: deps.Authenticator,
		allocator:     deps.Allocator,
		custody:       deps.Custody,
		recorder:      deps.Recorder,
		reconciler:    deps.Reconciler,
		analytics:     deps.Analytics,
		leaders:       deps.Leaders,
	}
	if s.authenticator == nil {
		s.authenticator = auth.NewHeaderAuthenticator()
	}
	r.Use(s.metrics.middleware())
	s.routes()
	return s
}

func (s *Server) Run() error {
	addr := s.cfg.HTTPAddr
	if addr == "" {
		addr = ":8080"
	}
	s.log.Info("register service listening", zap.String("addr", addr))
	return s.r.Run(addr)
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.r
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	s.r.GET("/metrics", s.metrics.handler())

	sheetHandler := sheets.NewHandler(s.allocator, s.custody)
	adhesionHandler := adhesions.NewHandler(s.recorder)
	dictamenHandler := dictamen.NewHandler(s.reconciler)
	analyticsHandler := analytics.NewHandler(s.analytics, s.cfg.FraudThreshold)
	leaderHandler := leaders.NewHandler(s.leaders)

	v1 := s.r.Group("/v1")
	v1.Use(common.PrincipalMiddleware(s.authenticator))
	{
		v1.POST("/sheets/assign", s.rateLimitMiddleware("sheets:assign"), sheetHandler.HandleAssignBulk)
		v1.GET("/sheets", sheetHandler.HandleList)
		v1.GET("/sheets/:number", sheetHandler.HandleGet)
		v1.POST("/sheets/:number/receive", s.rateLimitMiddleware("sheets:receive"), sheetHandler.HandleReceive)
		v1.POST("/sheets/override", s.rateLimitMiddleware("sheets:override"), sheetHandler.HandleOverride)

		v1.PUT("/sheets/:number/lines", s.rateLimitMiddleware("adhesions:save"), adhesionHandler.HandleSaveLines)
		v1.GET("/sheets/:number/lines", adhesionHandler.HandleGetSheetLines)
		v1.GET("/lines", adhesionHandler.HandleListLines)

		v1.POST("/dictamen/import", s.rateLimitMiddleware("dictamen:import"), dictamenHandler.HandleImport)

		v1.GET("/analytics/top-performers", analyticsHandler.HandleTopPerformers)
		v1.GET("/analytics/leaders/:id/kpis", analyticsHandler.HandleLeaderKPIs)
		v1.GET("/analytics/fraud-alerts", analyticsHandler.HandleFraudAlerts)
		v1.GET("/analytics/dashboard", analyticsHandler.HandleDashboard)

		v1.POST("/leaders", s.rateLimitMiddleware("leaders:create"), leaderHandler.HandleCreate)
		v1.GET("/leaders", leaderHandler.HandleList)
		v1.GET("/leaders/all", leaderHandler.HandleListAll)
		v1.GET("/leaders/:id", leaderHandler.HandleGet)
		v1.PUT("/leaders/:id", s.rateLimitMiddleware("leaders:update"), leaderHandler.HandleUpdate)
		v1.DELETE("/leaders/:id", s.rateLimitMiddleware("leaders:delete"), leaderHandler.HandleDelete)
	}
}
