package metrics

import "github.com/prometheus/client_golang/prometheus"

// Slot fetch results.
const (
	FetchOK    = "ok"
	FetchEmpty = "empty"
	FetchError = "error"
	FetchStale = "stale"
)

// Submission outcomes.
const (
	SubmissionAccepted        = "accepted"
	SubmissionRejected        = "rejected"
	SubmissionTransportError  = "transport_error"
	SubmissionValidationError = "validation_error"
)

// BookingMetrics exposes counters/histograms for the booking workflow.
type BookingMetrics struct {
	slotFetchTotal  *prometheus.CounterVec
	submissionTotal *prometheus.CounterVec
	fetchLatency    prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		slotFetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "randevu",
			Subsystem: "booking",
			Name:      "slot_fetch_total",
			Help:      "Total slot availability fetches by result",
		}, []string{"result"}),
		submissionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "randevu",
			Subsystem: "booking",
			Name:      "submission_total",
			Help:      "Total booking submissions by outcome",
		}, []string{"outcome"}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "randevu",
			Subsystem: "booking",
			Name:      "slot_fetch_latency_seconds",
			Help:      "Latency of slot availability fetches",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.slotFetchTotal, m.submissionTotal, m.fetchLatency)
	return m
}

func (m *BookingMetrics) ObserveSlotFetch(result string) {
	if m == nil {
		return
	}
	m.slotFetchTotal.WithLabelValues(result).Inc()
}

func (m *BookingMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissionTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveFetchLatency(seconds float64) {
	if m == nil {
		return
	}
	m.fetchLatency.Observe(seconds)
}
