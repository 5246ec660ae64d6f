package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tzspd",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total admin HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tzspd",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Admin HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	datagramsReceived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tzspd",
			Subsystem: "relay",
			Name:      "datagrams_received_total",
			Help:      "Datagrams read from the input socket.",
		},
	)
	datagramsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tzspd",
			Subsystem: "relay",
			Name:      "datagrams_dropped_total",
			Help:      "Datagrams dropped before fan-out, by reason.",
		},
		[]string{"reason"},
	)
	datagramsRelayed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tzspd",
			Subsystem: "relay",
			Name:      "datagrams_relayed_total",
			Help:      "Datagrams that passed filtering and matched at least one destination.",
		},
	)
	sends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tzspd",
			Subsystem: "relay",
			Name:      "sends_total",
			Help:      "Per-destination loopback sends.",
		},
		[]string{"success"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			datagramsReceived,
			datagramsDropped,
			datagramsRelayed,
			sends,
		)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

// RelayRecorder is the hot-path view of the relay counters. Label lookups are
// resolved once so recording does not allocate.
type RelayRecorder struct {
	received   prometheus.Counter
	relayed    prometheus.Counter
	sendOK     prometheus.Counter
	sendFailed prometheus.Counter
	dropped    map[string]prometheus.Counter
}

func NewRelayRecorder(dropReasons ...string) *RelayRecorder {
	RegisterMetrics()
	r := &RelayRecorder{
		received:   datagramsReceived,
		relayed:    datagramsRelayed,
		sendOK:     sends.WithLabelValues("true"),
		sendFailed: sends.WithLabelValues("false"),
		dropped:    make(map[string]prometheus.Counter, len(dropReasons)),
	}
	for _, reason := range dropReasons {
		r.dropped[reason] = datagramsDropped.WithLabelValues(reason)
	}
	return r
}

func (r *RelayRecorder) Received() {
	r.received.Inc()
}

func (r *RelayRecorder) Relayed() {
	r.relayed.Inc()
}

func (r *RelayRecorder) Dropped(reason string) {
	c, ok := r.dropped[reason]
	if !ok {
		c = datagramsDropped.WithLabelValues(reason)
	}
	c.Inc()
}

func (r *RelayRecorder) Sent(ok bool) {
	if ok {
		r.sendOK.Inc()
		return
	}
	r.sendFailed.Inc()
}
