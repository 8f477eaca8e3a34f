// @title CarScout API
// @version 1.0
// @description Used car listing search: page detection, Firecrawl extraction, cached CSV results
// @host localhost:8080
// @BasePath /

package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/time/rate"

	_ "carscout/docs"
	"carscout/internal/app"
	"carscout/internal/handlers"
	"carscout/internal/middleware"
	"carscout/internal/session"
	"carscout/internal/web"
)

const (
	sessionIdle     = 2 * time.Hour
	shutdownTimeout = 10 * time.Second
)

type Server struct {
	router *gin.Engine
	addr   string
	log    zerolog.Logger
}

// New builds the HTTP server. ctx bounds background work such as the rate
// limiter's sweeper.
func New(ctx context.Context, a *app.App) *Server {
	cfg := a.Config
	log := a.Log.With().Str("module", "server").Logger()
	release := cfg.GinMode == gin.ReleaseMode
	gin.SetMode(cfg.GinMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.SecurityHeaders(release))
	r.Use(middleware.SecurityScanDetection(log))
	r.Use(middleware.HTTPMethodFilter([]string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodOptions}, log))

	if err := r.SetTrustedProxies([]string{
		"127.0.0.1",
		"::1",
		"172.16.0.0/12",
		"10.0.0.0/8",
		"192.168.0.0/16",
	}); err != nil {
		log.Warn().Err(err).Msg("Could not set trusted proxies")
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", handlers.SessionHeader, middleware.AccessKeyHeader}
	corsConfig.ExposeHeaders = []string{handlers.SessionHeader, "Content-Disposition"}
	r.Use(cors.New(corsConfig))

	staticFS := http.FS(web.Static())
	r.StaticFS("/static", staticFS)
	r.GET("/", func(c *gin.Context) {
		c.FileFromFS("/", staticFS)
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	h := handlers.NewListingsHandler(a.Service, session.NewStore(sessionIdle), a.Files, a.DB, a.Log)
	limiter := middleware.NewRateLimiter(ctx, rate.Limit(cfg.APIRPS), cfg.APIBurst)
	lock := middleware.NewActionLock()

	api := r.Group("/api")
	{
		api.POST("/validate", h.Validate)
		api.GET("/cache", h.Cache)
		api.GET("/download/:filename", h.Download)
		api.GET("/session", h.Session)
		api.GET("/health", h.Health)

		actions := api.Group("", middleware.RateLimitMiddleware(limiter, log), middleware.AccessKeyMiddleware(cfg.AccessKeyHash))
		actions.POST("/detect-pages", middleware.ActionLockMiddleware(lock, "page detection"), h.DetectPages)
		actions.POST("/scrape", middleware.ActionLockMiddleware(lock, "scrape"), h.Scrape)
	}

	return &Server{
		router: r,
		addr:   ":" + cfg.Port,
		log:    log,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
