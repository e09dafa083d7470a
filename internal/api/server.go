// Package api exposes fleet operations over a small REST surface: satellite
// lifecycle, state snapshots, maneuver execution, conjunction screening, and
// manual ticks.
package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/signalsfoundry/conjunction-simulator/core"
	"github.com/signalsfoundry/conjunction-simulator/fleet"
	"github.com/signalsfoundry/conjunction-simulator/internal/logging"
	"github.com/signalsfoundry/conjunction-simulator/internal/observability"
	"github.com/signalsfoundry/conjunction-simulator/model"
)

// Service implements the fleet HTTP handlers backed by a Fleet instance.
type Service struct {
	fleet *fleet.Fleet
	cfg   Config
	log   logging.Logger
}

// NewService constructs a Service bound to a fleet.
func NewService(fl *fleet.Fleet, cfg Config, log logging.Logger) *Service {
	if log == nil {
		log = logging.Noop()
	}
	return &Service{fleet: fl, cfg: cfg, log: log}
}

// NewRouter builds the gin engine with CORS, metrics middleware, and all API
// routes. The collector may be nil in tests.
func NewRouter(svc *Service, collector *observability.SimCollector) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if collector != nil {
		r.Use(collector.GinMiddleware())
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     svc.cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: false,
	}))

	api := r.Group("/api")
	{
		api.POST("/satellites", svc.createSatellite)
		api.GET("/satellites", svc.listSatellites)
		api.GET("/satellites/:id", svc.getSatellite)
		api.DELETE("/satellites/:id", svc.deleteSatellite)
		api.POST("/satellites/:id/maneuver", svc.maneuver)
		api.POST("/screening", svc.screening)
		api.POST("/tick", svc.tick)
	}

	return r
}

// ---- request / response shapes ----

type satelliteRequest struct {
	ID         string `json:"id" binding:"required"`
	Name       string `json:"name"`
	OrbitClass string `json:"orbit_class"`

	AltitudeKm     float64 `json:"altitude_km"`
	InclinationDeg float64 `json:"inclination_deg"`
	VelocityKmS    float64 `json:"velocity_km_s"`

	Eccentricity    *float64 `json:"eccentricity"`
	ArgPeriapsisDeg *float64 `json:"arg_periapsis_deg"`
	RAANDeg         *float64 `json:"raan_deg"`
	MeanAnomalyDeg  *float64 `json:"mean_anomaly_deg"`

	TLELine1 string `json:"tle_line1"`
	TLELine2 string `json:"tle_line2"`
}

func (sr *satelliteRequest) toDefinition() *model.SatelliteDefinition {
	return &model.SatelliteDefinition{
		ID:             sr.ID,
		Name:           sr.Name,
		OrbitClass:     model.OrbitClass(sr.OrbitClass),
		AltitudeKm:     sr.AltitudeKm,
		InclinationDeg: sr.InclinationDeg,
		VelocityKmS:    sr.VelocityKmS,

		Eccentricity:    sr.Eccentricity,
		ArgPeriapsisDeg: sr.ArgPeriapsisDeg,
		RAANDeg:         sr.RAANDeg,
		MeanAnomalyDeg:  sr.MeanAnomalyDeg,

		TLELine1: sr.TLELine1,
		TLELine2: sr.TLELine2,
	}
}

type vec3JSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type stateResponse struct {
	ID             string   `json:"id"`
	Name           string   `json:"name,omitempty"`
	Position       vec3JSON `json:"position_km"`
	Velocity       vec3JSON `json:"velocity_km_s"`
	ElapsedSeconds float64  `json:"elapsed_seconds"`

	SemiMajorAxisKm float64 `json:"semi_major_axis_km,omitempty"`
	Eccentricity    float64 `json:"eccentricity,omitempty"`
	PeriodSeconds   float64 `json:"period_seconds,omitempty"`
}

func stateToResponse(id, name string, st core.State) stateResponse {
	return stateResponse{
		ID:              id,
		Name:            name,
		Position:        vec3JSON{X: st.Position.X, Y: st.Position.Y, Z: st.Position.Z},
		Velocity:        vec3JSON{X: st.Velocity.X, Y: st.Velocity.Y, Z: st.Velocity.Z},
		ElapsedSeconds:  st.ElapsedSeconds,
		SemiMajorAxisKm: st.Elements.SemiMajorAxisKm,
		Eccentricity:    st.Elements.Eccentricity,
		PeriodSeconds:   st.Elements.PeriodS,
	}
}

type maneuverRequest struct {
	DeltaVMetersPerSec *float64          `json:"delta_v_mps"`
	BurnDurationSec    *float64          `json:"burn_duration_s"`
	Replacement        *satelliteRequest `json:"replacement"`
}

type pairEstimateJSON struct {
	SatelliteA        string  `json:"satellite_a"`
	SatelliteB        string  `json:"satellite_b"`
	Risk              string  `json:"risk"`
	MinDistanceKm     float64 `json:"min_distance_km"`
	TimeOffsetSeconds float64 `json:"time_offset_seconds"`
	Probability       float64 `json:"probability"`
}

// ---- handlers ----

func (s *Service) createSatellite(c *gin.Context) {
	var req satelliteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.fleet.Add(req.toDefinition()); err != nil {
		if strings.Contains(err.Error(), "already exists") {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st, _ := s.fleet.State(req.ID)
	c.JSON(http.StatusCreated, gin.H{"data": stateToResponse(req.ID, req.Name, st)})
}

func (s *Service) listSatellites(c *gin.Context) {
	statuses := s.fleet.List()
	out := make([]stateResponse, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, stateToResponse(st.ID, st.Name, st.State))
	}
	c.JSON(http.StatusOK, gin.H{"data": out, "count": len(out)})
}

func (s *Service) getSatellite(c *gin.Context) {
	id := c.Param("id")
	st, err := s.fleet.State(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stateToResponse(id, "", st)})
}

func (s *Service) deleteSatellite(c *gin.Context) {
	id := c.Param("id")
	if err := s.fleet.Remove(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Service) maneuver(c *gin.Context) {
	id := c.Param("id")

	var req maneuverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cmd := &model.ManeuverCommand{
		DeltaVMetersPerSec: req.DeltaVMetersPerSec,
		BurnDurationSec:    req.BurnDurationSec,
	}
	if req.Replacement != nil {
		cmd.Replacement = req.Replacement.toDefinition()
		if cmd.Replacement.ID == "" {
			cmd.Replacement.ID = id
		}
	}

	success, err := s.fleet.Maneuver(id, cmd)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": success})
}

func (s *Service) screening(c *gin.Context) {
	horizon := s.cfg.DefaultHorizonSeconds
	if raw := c.Query("horizon"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "horizon must be a positive number of seconds"})
			return
		}
		horizon = parsed
	}

	pairs := s.fleet.Screen(c.Request.Context(), horizon)
	out := make([]pairEstimateJSON, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, pairEstimateJSON{
			SatelliteA:        p.SatelliteA,
			SatelliteB:        p.SatelliteB,
			Risk:              string(p.Estimate.Risk),
			MinDistanceKm:     p.Estimate.MinDistanceKm,
			TimeOffsetSeconds: p.Estimate.TimeOffsetSeconds,
			Probability:       p.Estimate.Probability,
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": out, "count": len(out), "horizon_seconds": horizon})
}

func (s *Service) tick(c *gin.Context) {
	dt := s.cfg.TickSeconds
	if raw := c.Query("dt"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dt must be a non-negative number of seconds"})
			return
		}
		dt = parsed
	}

	s.fleet.AdvanceAll(dt)
	c.JSON(http.StatusOK, gin.H{"advanced_seconds": dt, "satellites": s.fleet.Size()})
}
