// Package server exposes the predictor over HTTP: the interactive form page,
// a JSON scoring API and health probes.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/glucoscope/predictor/internal/diagnosis"
	"github.com/glucoscope/predictor/internal/patient"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const maxBodyBytes = 1 << 20

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Assessor interface {
	Assess(r patient.Record) (diagnosis.Assessment, error)
}

// Repository is implemented by *store.Store. A nil Repository disables
// persistence.
type Repository interface {
	HealthChecker
	Save(ctx context.Context, a diagnosis.Assessment) error
	Recent(ctx context.Context, limit int) ([]diagnosis.Assessment, error)
}

type Server struct {
	assessor Assessor
	repo     Repository
	log      *zap.SugaredLogger
}

func New(assessor Assessor, repo Repository, log *zap.SugaredLogger) *Server {
	return &Server{assessor: assessor, repo: repo, log: log.Named("http")}
}

func (s *Server) Router() (*gin.Engine, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"percent": func(v float64) string { return strconv.FormatFloat(v*100, 'f', 1, 64) + "%" },
		"num":     func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	router.Use(
		requestLogger(s.log),
		gin.Recovery(),
		limitBodySize(maxBodyBytes),
		cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
			MaxAge:       12 * time.Hour,
		}),
	)

	router.StaticFS("/static", http.FS(static))

	router.GET("/", s.page)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/readyz", s.ready)

	api := router.Group("/api")
	api.GET("/fields", func(c *gin.Context) {
		c.JSON(http.StatusOK, patient.Fields())
	})
	api.POST("/predict", s.predict)
	api.GET("/assessments", s.recent)

	return router, nil
}

func (s *Server) ready(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.repo.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"db":     fmt.Sprintf("unhealthy: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok"})
}

func (s *Server) predict(c *gin.Context) {
	record := patient.Default()
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	a, err := s.assessor.Assess(record)
	if err != nil {
		var verr *patient.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation_failed",
				"details": verr.Violations,
			})
			return
		}
		s.log.Errorw("assessment failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed"})
		return
	}

	s.save(c.Request.Context(), a)
	c.JSON(http.StatusOK, a)
}

func (s *Server) recent(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence disabled"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	out, err := s.repo.Recent(c.Request.Context(), limit)
	if err != nil {
		s.log.Errorw("list assessments", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// save never fails the request; the assessment has already been computed.
func (s *Server) save(ctx context.Context, a diagnosis.Assessment) {
	if s.repo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := s.repo.Save(ctx, a); err != nil {
		s.log.Warnw("could not store assessment", "id", a.ID, "err", err)
	}
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func requestLogger(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			log.Errorw("request", append(fields, "errors", c.Errors.String())...)
			return
		}
		log.Infow("request", fields...)
	}
}
