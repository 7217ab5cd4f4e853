package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tracktitans/citysim/simulation"
)

// metrics are the Prometheus gauges/counters the observation shell exposes
// at /metrics, replacing the teacher's hand-rolled rolling-window
// kpiSnapshot bookkeeping (metrics.go) with the ecosystem-standard
// client_golang registry the rest of the example corpus reaches for.
var (
	carsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "citysim_cars_active",
		Help: "Number of cars currently on the road network.",
	})
	pedsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "citysim_pedestrians_active",
		Help: "Number of pedestrians currently on the sidewalk network.",
	})
	simTimeSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "citysim_sim_time_seconds",
		Help: "Current simulated time, in seconds since the epoch.",
	})
	simSpeedRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "citysim_sim_speed_ratio",
		Help: "Simulated seconds elapsed per real second, measured over the last tick window.",
	})
	suggestionsOpen = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "citysim_suggestions_open",
		Help: "Number of advisory suggestions currently outstanding.",
	})
	tripsCompleted = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "citysim_trips_completed",
		Help: "Total number of trips that have finished so far this run.",
	})
)

func init() {
	prometheus.MustRegister(carsActive, pedsActive, simTimeSeconds, simSpeedRatio, suggestionsOpen, tripsCompleted)
}

// sampleMetrics refreshes every gauge from the Hub's current state; called
// once per tick from tickLoop while h.mu is already held.
func (h *Hub) sampleMetrics() {
	sim := h.sim
	carsActive.Set(float64(sim.CarCount()))
	pedsActive.Set(float64(sim.PedCount()))
	simTimeSeconds.Set(sim.Now().Sub(simulation.TimeZero).Seconds())
	simSpeedRatio.Set(sim.MeasureSpeed())
	suggestionsOpen.Set(float64(len(sim.Advisor().Current())))
	tripsCompleted.Set(float64(sim.CompletedTripCount()))
}

// installMetricsRoute registers the /metrics endpoint on mux.
func installMetricsRoute(mux *http.ServeMux) {
	mux.Handle("/metrics", promhttp.Handler())
}
