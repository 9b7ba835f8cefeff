package qvectors

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the processing counters. It is dumped to a text file at the
// end of a run when a metrics file is configured.
var Registry = prometheus.NewRegistry()

var (
	eventsProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "qvectors",
		Name:      "events_processed_total",
		Help:      "Collisions turned into event records.",
	})
	eventsUncalibrated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "qvectors",
		Name:      "events_uncalibrated_total",
		Help:      "Event records with the calibrated flag unset.",
	})
	runReloads = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "qvectors",
		Name:      "run_reloads_total",
		Help:      "Conditions reloads triggered by a run change.",
	})
	selectedTracks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "qvectors",
		Name:      "selected_tracks_total",
		Help:      "Tracks passing the selection, counted once per event.",
	})
	calibrationFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "qvectors",
		Name:      "calibration_fallbacks_total",
		Help:      "Harmonics calibrated with the fallback harmonic table.",
	}, []string{"harmonic"})
	missingCalibrations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "qvectors",
		Name:      "calibration_missing_total",
		Help:      "Harmonics left uncalibrated after a run reload.",
	}, []string{"harmonic"})
	centrality = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "qvectors",
		Name:      "centrality_percent",
		Help:      "Centrality of the processed events.",
		Buckets:   prometheus.LinearBuckets(0, 10, 11),
	})
)

func init() {
	Registry.MustRegister(
		eventsProcessed,
		eventsUncalibrated,
		runReloads,
		selectedTracks,
		calibrationFallbacks,
		missingCalibrations,
		centrality,
	)
}

// WriteMetrics dumps the registry in the text exposition format.
func WriteMetrics(filename string) error {
	return prometheus.WriteToTextfile(filename, Registry)
}
