package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/revshare/internal/attribution"
	"github.com/smallbiznis/revshare/internal/audit"
	auditdomain "github.com/smallbiznis/revshare/internal/audit/domain"
	"github.com/smallbiznis/revshare/internal/config"
	"github.com/smallbiznis/revshare/internal/locking"
	"github.com/smallbiznis/revshare/internal/observability"
	obsmiddleware "github.com/smallbiznis/revshare/internal/observability/logger"
	obstracing "github.com/smallbiznis/revshare/internal/observability/tracing"
	"github.com/smallbiznis/revshare/internal/partner"
	"github.com/smallbiznis/revshare/internal/period"
	perioddomain "github.com/smallbiznis/revshare/internal/period/domain"
	"github.com/smallbiznis/revshare/internal/providers/pdf"
	"github.com/smallbiznis/revshare/internal/revenue"
	"github.com/smallbiznis/revshare/internal/settlement"
	settlementdomain "github.com/smallbiznis/revshare/internal/settlement/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	observability.Module,
	locking.Module,
	audit.Module,
	partner.Module,
	attribution.Module,
	revenue.Module,
	pdf.Module,
	period.Module,
	settlement.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config) *gin.Engine {
	return NewEngine(obsCfg)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	genID         *snowflake.Node
	periodSvc     perioddomain.Service
	settlementSvc settlementdomain.Service
	auditSvc      auditdomain.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	GenID         *snowflake.Node
	PeriodSvc     perioddomain.Service
	SettlementSvc settlementdomain.Service
	AuditSvc      auditdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		genID:         p.GenID,
		periodSvc:     p.PeriodSvc,
		settlementSvc: p.SettlementSvc,
		auditSvc:      p.AuditSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Periods --------
	api.POST("/periods", s.CreatePeriod)
	api.GET("/periods", s.ListPeriods)
	api.GET("/periods/open", s.GetOpenPeriod)
	api.GET("/periods/:id", s.GetPeriodByID)
	api.POST("/periods/:id/calculate", s.CalculateSettlements)
	api.POST("/periods/:id/lock", s.LockPeriod)

	// -------- Settlements --------
	api.GET("/periods/:id/settlements", s.ListPeriodSettlements)
	api.GET("/periods/:id/export", s.ExportSettlements)
	api.POST("/settlements/adjustments", s.CreateAdjustment)

	// -------- Partner reporting --------
	api.GET("/partners/:id/report", s.GetPartnerReport)
	api.GET("/partners/:id/history", s.GetPartnerHistory)
	api.GET("/partners/:id/statement", s.GetPartnerStatement)

	// -------- Audit --------
	api.GET("/audit-logs", s.ListAuditLogs)
}
