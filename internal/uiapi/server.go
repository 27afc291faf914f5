package uiapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/blackoutkit/blackout/internal/engine"
	"github.com/blackoutkit/blackout/internal/outages"
	"github.com/blackoutkit/blackout/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// SoCSource supplies a live battery state-of-charge override. A nil
// source means no telemetry; the stored charge level is used as-is.
type SoCSource interface {
	Current() (float64, bool)
}

// Clock returns the reference hour for calculations. Swappable in tests.
type Clock func() float64

// WallClock derives the reference hour from the local wall clock,
// fractional part carrying the minutes.
func WallClock() float64 {
	now := time.Now()
	return float64(now.Hour()) + float64(now.Minute())/60
}

type Server struct {
	store   *store.Store
	outages *outages.Client
	soc     SoCSource
	clock   Clock
}

func NewServer(st *store.Store, outagesClient *outages.Client, soc SoCSource) *Server {
	return &Server{
		store:   st,
		outages: outagesClient,
		soc:     soc,
		clock:   WallClock,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS for local development
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/battery", s.handleGetBattery)
		r.Put("/battery", s.handleUpdateBattery)
		r.Get("/appliances", s.handleGetAppliances)
		r.Post("/appliances", s.handleCreateAppliance)
		r.Get("/appliances/{id}", s.handleGetAppliance)
		r.Put("/appliances/{id}", s.handleUpdateAppliance)
		r.Delete("/appliances/{id}", s.handleDeleteAppliance)
		r.Get("/schedule", s.handleGetSchedule)
		r.Put("/schedule", s.handleUpdateSchedule)
		r.Post("/schedule/refresh", s.handleRefreshSchedule)
		r.Get("/calculation", s.handleCalculation)
		r.Get("/situation", s.handleSituation)
		r.Get("/scenarios", s.handleScenarios)
		r.Post("/scenarios/{id}/apply", s.handleApplyScenario)
	})

	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	_, live := s.currentSoC()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "ok",
		"version":       "1.0.0",
		"liveTelemetry": live,
	})
}

// currentSoC returns the telemetry override when one is available.
func (s *Server) currentSoC() (float64, bool) {
	if s.soc == nil {
		return 0, false
	}
	return s.soc.Current()
}

// snapshot assembles a freshly-merged, already-resolved view of the
// inputs for one engine invocation.
func (s *Server) snapshot() (engine.BatterySettings, []engine.Appliance, engine.PowerSchedule, float64, error) {
	battery, err := s.store.GetBattery()
	if err != nil {
		return engine.BatterySettings{}, nil, engine.PowerSchedule{}, 0, err
	}
	if soc, ok := s.currentSoC(); ok {
		battery.CurrentCharge = soc
	}

	appliances, err := s.store.GetAppliances()
	if err != nil {
		return engine.BatterySettings{}, nil, engine.PowerSchedule{}, 0, err
	}

	schedule, err := s.store.GetSchedule()
	if err != nil {
		return engine.BatterySettings{}, nil, engine.PowerSchedule{}, 0, err
	}

	return battery, appliances, schedule, s.clock(), nil
}

func (s *Server) handleGetBattery(w http.ResponseWriter, r *http.Request) {
	battery, err := s.store.GetBattery()
	if err != nil {
		respondError(w, http.StatusNotFound, "battery settings not found")
		return
	}
	respondJSON(w, http.StatusOK, battery)
}

func (s *Server) handleUpdateBattery(w http.ResponseWriter, r *http.Request) {
	var battery engine.BatterySettings
	if err := json.NewDecoder(r.Body).Decode(&battery); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.SaveBattery(battery); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, battery)
}

func (s *Server) handleGetAppliances(w http.ResponseWriter, r *http.Request) {
	appliances, err := s.store.GetAppliances()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, appliances)
}

func (s *Server) handleCreateAppliance(w http.ResponseWriter, r *http.Request) {
	var appliance engine.Appliance
	if err := json.NewDecoder(r.Body).Decode(&appliance); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if appliance.ID == "" {
		appliance.ID = uuid.NewString()
	}

	existing, err := s.store.GetAppliances()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := s.store.SaveAppliance(appliance, len(existing)); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, appliance)
}

func (s *Server) handleGetAppliance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	appliance, err := s.store.GetAppliance(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "appliance not found")
		return
	}
	respondJSON(w, http.StatusOK, appliance)
}

func (s *Server) handleUpdateAppliance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var appliance engine.Appliance
	if err := json.NewDecoder(r.Body).Decode(&appliance); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	appliance.ID = id
	if err := s.store.SaveAppliance(appliance, 0); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, appliance)
}

func (s *Server) handleDeleteAppliance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteAppliance(id); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "deleted", "id": id})
}

func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := s.store.GetSchedule()
	if err != nil {
		respondError(w, http.StatusNotFound, "power schedule not found")
		return
	}
	respondJSON(w, http.StatusOK, schedule)
}

func (s *Server) handleUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var schedule engine.PowerSchedule
	if err := json.NewDecoder(r.Body).Decode(&schedule); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.SaveSchedule(schedule, "manual"); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, schedule)
}

func (s *Server) handleRefreshSchedule(w http.ResponseWriter, r *http.Request) {
	if s.outages == nil {
		respondError(w, http.StatusServiceUnavailable, "no outage provider configured")
		return
	}

	schedule, err := s.outages.FetchSchedule(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to fetch schedule: "+err.Error())
		return
	}

	if err := s.store.SaveSchedule(schedule, "provider"); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, schedule)
}

func (s *Server) handleCalculation(w http.ResponseWriter, r *http.Request) {
	battery, appliances, schedule, hour, err := s.snapshot()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, engine.CalculateBatteryStatus(battery, appliances, schedule, hour))
}

func (s *Server) handleSituation(w http.ResponseWriter, r *http.Request) {
	battery, _, schedule, hour, err := s.snapshot()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, engine.AnalyzeSituation(battery, schedule, hour))
}

func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	battery, appliances, schedule, hour, err := s.snapshot()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, engine.GenerateScenarios(battery, appliances, schedule, hour))
}

func (s *Server) handleApplyScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	battery, appliances, schedule, hour, err := s.snapshot()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	for _, scenario := range engine.GenerateScenarios(battery, appliances, schedule, hour) {
		if scenario.ID != id {
			continue
		}
		if err := s.store.ReplaceAppliances(scenario.Appliances); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, scenario)
		return
	}

	respondError(w, http.StatusNotFound, "scenario not available for the current situation")
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
