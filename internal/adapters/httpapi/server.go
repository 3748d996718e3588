package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/quentinrf/ambient-backlight/internal/domain"
)

// DefaultHistoryWindow is used when /api/history has no since parameter
const DefaultHistoryWindow = time.Minute

// Server serves the JSON status endpoints
type Server struct {
	repo      domain.SampleRepository
	startTime time.Time
	now       func() time.Time
}

// NewServer creates a status server reading from repo
func NewServer(repo domain.SampleRepository) *Server {
	return &Server{
		repo:      repo,
		startTime: time.Now(),
		now:       time.Now,
	}
}

// NewEngine builds a gin engine with CORS and the status routes
func NewEngine(s *Server) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	s.SetupRoutes(r)
	return r
}

// SetupRoutes registers the status routes
func (s *Server) SetupRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/status", s.handleGetStatus)
		api.GET("/history", s.handleGetHistory)
		api.GET("/health", s.handleHealth)
	}
}

func (s *Server) handleGetStatus(c *gin.Context) {
	sample, err := s.repo.GetLatestSample(c.Request.Context())
	if errors.Is(err, domain.ErrSampleNotFound) {
		c.JSON(http.StatusNotFound, ApiResponse{
			Status: "error",
			Error:  "no samples recorded yet",
		})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to get latest sample")
		c.JSON(http.StatusInternalServerError, ApiResponse{
			Status: "error",
			Error:  "failed to get sample",
		})
		return
	}

	c.JSON(http.StatusOK, ApiResponse{
		Status: "success",
		Data:   toSampleResponse(sample),
	})
}

func (s *Server) handleGetHistory(c *gin.Context) {
	window := DefaultHistoryWindow
	if raw := c.Query("since"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			c.JSON(http.StatusBadRequest, ApiResponse{
				Status: "error",
				Error:  "since must be a positive duration such as 30s or 5m",
			})
			return
		}
		window = d
	}

	now := s.now()
	start := now.Add(-window)

	samples, err := s.repo.GetSamplesInRange(c.Request.Context(), start, now)
	if err != nil {
		log.Error().Err(err).Msg("failed to get samples")
		c.JSON(http.StatusInternalServerError, ApiResponse{
			Status: "error",
			Error:  "failed to get samples",
		})
		return
	}

	out := make([]SampleResponse, len(samples))
	for i, sample := range samples {
		out[i] = toSampleResponse(sample)
	}

	c.JSON(http.StatusOK, ApiResponse{
		Status: "success",
		Data: HistoryResponse{
			Since:   start,
			Samples: out,
			Total:   len(out),
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	now := s.now()
	resp := HealthResponse{Uptime: now.Sub(s.startTime).Truncate(time.Second).String()}

	if sample, err := s.repo.GetLatestSample(c.Request.Context()); err == nil {
		resp.LastSample = now.Sub(sample.Timestamp).Truncate(time.Millisecond).String()
	}

	c.JSON(http.StatusOK, ApiResponse{
		Status: "success",
		Data:   resp,
	})
}
