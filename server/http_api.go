package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tracktitans/citysim/simulation"
)

// installHTTPAPI registers the REST surface alongside the websocket/metrics
// routes, using gorilla/mux for path-parameter routing (the teacher itself
// used bare http.HandleFunc with manual path trimming; mux is adopted here
// per the corpus's own routing idiom elsewhere — see DESIGN.md).
func installHTTPAPI(mux_ *http.ServeMux, h *Hub) {
	r := mux.NewRouter()
	r.HandleFunc("/api/overview", h.serveOverview).Methods(http.MethodGet)
	r.HandleFunc("/api/intersections", h.serveIntersections).Methods(http.MethodGet)
	r.HandleFunc("/api/intersections/{id}", h.serveIntersection).Methods(http.MethodGet)
	r.HandleFunc("/api/suggestions", h.serveSuggestions).Methods(http.MethodGet)
	r.HandleFunc("/api/audit", h.serveAudit).Methods(http.MethodGet)
	mux_.Handle("/api/", r)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}

// serveOverview summarizes the whole run for a dashboard landing page.
func (h *Hub) serveOverview(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sim := h.sim
	writeJSON(w, map[string]interface{}{
		"running":          h.running,
		"now_ns":           int64(sim.Now().Sub(simulation.TimeZero)),
		"cars_active":      sim.CarCount(),
		"peds_active":      sim.PedCount(),
		"trips_completed":  sim.CompletedTripCount(),
		"suggestions_open": len(sim.Advisor().Current()),
	})
}

// serveIntersections lists every intersection with its control type and
// current accepted-agent count, for a map-overview panel.
func (h *Hub) serveIntersections(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	m := h.sim.Map()
	type out struct {
		ID       int    `json:"id"`
		Type     string `json:"type"`
		Accepted int    `json:"accepted"`
	}
	var list []out
	for _, i := range m.AllIntersections() {
		list = append(list, out{
			ID:       int(i.ID),
			Type:     intersectionTypeString(i.Type),
			Accepted: len(h.sim.IntersectionAcceptedAgents(i.ID)),
		})
	}
	writeJSON(w, list)
}

// serveIntersection reports one intersection's live arbitration state.
func (h *Hub) serveIntersection(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "bad intersection id", http.StatusBadRequest)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	m := h.sim.Map()
	i := m.Intersection(simulation.IntersectionID(id))
	if i == nil {
		http.Error(w, "intersection not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]interface{}{
		"id":       id,
		"type":     intersectionTypeString(i.Type),
		"accepted": h.sim.IntersectionAcceptedAgents(i.ID),
	})
}

func (h *Hub) serveSuggestions(w http.ResponseWriter, r *http.Request) {
	// RecomputeIfDue may rescan and mutate the advisor's suggestion list, so
	// this needs the write lock, not a read lock.
	h.mu.Lock()
	defer h.mu.Unlock()
	writeJSON(w, h.sim.Advisor().RecomputeIfDue())
}

func (h *Hub) serveAudit(w http.ResponseWriter, r *http.Request) {
	since := r.URL.Query().Get("since")
	writeJSON(w, h.audit.getSince(since))
}

func intersectionTypeString(t simulation.IntersectionType) string {
	switch t {
	case simulation.IntersectionFreeform:
		return "freeform"
	case simulation.IntersectionStopSign:
		return "stop_sign"
	case simulation.IntersectionTrafficSignal:
		return "traffic_signal"
	case simulation.IntersectionBorder:
		return "border"
	default:
		return "unknown"
	}
}
