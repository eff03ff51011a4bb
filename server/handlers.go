package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lixenwraith/fusion-sim/advisor"
	"github.com/lixenwraith/fusion-sim/core"
)

const (
	defaultEpisodeLimit = 10
	maxEpisodeLimit     = 500
)

// StartRequest is the optional body of POST /api/control/start
type StartRequest struct {
	Reset bool `json:"reset"`
}

// ResetRequest is the optional body of POST /api/control/reset
type ResetRequest struct {
	Autostart bool `json:"autostart"`
}

// SettingsRequest is a partial settings update; nil fields are left unchanged
type SettingsRequest struct {
	Temperature     *float64 `json:"temperature"`
	Confinement     *float64 `json:"confinement"`
	ReactionMode    *string  `json:"reaction_mode"`
	PhysicsMode     *string  `json:"physics_mode"`
	ParticleCount   *int     `json:"particle_count"`
	EnergyThreshold *float64 `json:"energy_threshold"`
}

// GET /health
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "fusion-sim",
		"state":   s.ctrl.State().String(),
	})
}

// GET /api/state?particles=false
func (s *Server) getState(c *gin.Context) {
	snap := s.ctrl.Snapshot()
	if c.DefaultQuery("particles", "true") == "false" {
		snap.Particles = nil
	}
	c.JSON(http.StatusOK, snap)
}

// GET /api/telemetry
func (s *Server) getTelemetry(c *gin.Context) {
	c.JSON(http.StatusOK, s.ctrl.Telemetry())
}

// GET /api/telemetry/history?n=50
func (s *Server) getHistory(c *gin.Context) {
	n, err := intQuery(c, "n", 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	history := s.ctrl.History(n)
	c.JSON(http.StatusOK, gin.H{"count": len(history), "samples": history})
}

// GET /api/episodes?order=top|recent&limit=10
func (s *Server) getEpisodes(c *gin.Context) {
	if s.episodes == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "episode store not configured"})
		return
	}
	limit, err := intQuery(c, "limit", defaultEpisodeLimit)
	if err != nil || limit < 1 || limit > maxEpisodeLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
		return
	}

	var episodes []core.EpisodeSummary
	switch order := c.DefaultQuery("order", "top"); order {
	case "top":
		episodes, err = s.episodes.TopEpisodes(c.Request.Context(), limit)
	case "recent":
		episodes, err = s.episodes.RecentEpisodes(c.Request.Context(), limit)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "order must be top or recent"})
		return
	}
	if err != nil {
		s.logger.Warn("episode query failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(episodes), "episodes": episodes})
}

// GET /api/metrics
func (s *Server) getMetrics(c *gin.Context) {
	if s.registry == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "metrics registry not configured"})
		return
	}
	c.JSON(http.StatusOK, s.registry.Export())
}

// POST /api/control/start
func (s *Server) start(c *gin.Context) {
	var req StartRequest
	if !bindOptional(c, &req) {
		return
	}
	s.ctrl.Start(req.Reset)
	c.JSON(http.StatusOK, gin.H{"message": "Simulation started", "state": s.ctrl.State().String()})
}

// POST /api/control/stop
func (s *Server) stop(c *gin.Context) {
	summary, ok := s.ctrl.Stop()
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "simulation is not running"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Simulation stopped", "summary": summary})
}

// POST /api/control/reset
func (s *Server) reset(c *gin.Context) {
	var req ResetRequest
	if !bindOptional(c, &req) {
		return
	}
	s.ctrl.Reset(req.Autostart)
	c.JSON(http.StatusOK, gin.H{"message": "Simulation reset", "state": s.ctrl.State().String()})
}

// PUT /api/settings
func (s *Server) putSettings(c *gin.Context) {
	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// validate enums before mutating anything
	var reaction core.ReactionMode
	var physics core.PhysicsMode
	var err error
	if req.ReactionMode != nil {
		if reaction, err = core.ParseReactionMode(*req.ReactionMode); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.PhysicsMode != nil {
		if physics, err = core.ParsePhysicsMode(*req.PhysicsMode); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if req.Temperature != nil {
		s.ctrl.SetTemperature(*req.Temperature)
	}
	if req.Confinement != nil {
		s.ctrl.SetConfinement(*req.Confinement)
	}
	if req.ParticleCount != nil {
		s.ctrl.SetParticleCount(*req.ParticleCount)
	}
	if req.EnergyThreshold != nil {
		s.ctrl.SetEnergyThreshold(*req.EnergyThreshold)
	}
	if req.ReactionMode != nil {
		s.ctrl.SetReactionMode(reaction)
	}
	if req.PhysicsMode != nil {
		s.ctrl.SetPhysicsMode(physics)
	}

	c.JSON(http.StatusOK, s.ctrl.Settings())
}

// POST /api/advice applies an externally computed advice document
func (s *Server) postAdvice(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	adv, err := advisor.ParseAdvice(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	settings, err := s.ctrl.ApplyAdvice(adv)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": adv, "settings": settings})
}

// POST /api/advice/consult asks the configured advisor once
func (s *Server) consult(c *gin.Context) {
	if s.consulter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "advisor not configured"})
		return
	}
	adv, err := s.consulter.Consult(c.Request.Context())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"applied": adv, "settings": s.ctrl.Settings()})
	case errors.Is(err, advisor.ErrNoAdvisor):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}

// bindOptional decodes a JSON body when one is present
func bindOptional(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(key + " must be an integer")
	}
	return n, nil
}
