// Package metrics holds the prometheus collectors of the lottery service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ArowuTest/lucky-lottery/internal/lots"
)

const namespace = "lottery"

// Registry is the registry every collector below is registered with.
var Registry = prometheus.NewRegistry()

var (
	DrawsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "draws_total",
		Help:      "Completed draws by tail direction.",
	}, []string{"direction"})

	DrawFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "draw_failures_total",
		Help:      "Draws that returned an error, by reason.",
	}, []string{"reason"})

	DrawDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "draw_duration_seconds",
		Help:      "Time spent generating tails.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
	})

	DrawTails = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "draw_tails",
		Help:      "Number of tails produced per draw.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})

	CandidateRejections = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "candidate_rejections_total",
		Help:      "Random tail candidates discarded as out of range or overlapping.",
	})

	Rollbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rollbacks_total",
		Help:      "Tails discarded because they overshot the target.",
	})

	Replenished = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "replenished_tails_total",
		Help:      "Full-length tails added to close the gap to the target.",
	})

	ClaimsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "claims_total",
		Help:      "Section claims by outcome.",
	}, []string{"outcome"})

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		DrawsTotal,
		DrawFailures,
		DrawDuration,
		DrawTails,
		CandidateRejections,
		Rollbacks,
		Replenished,
		ClaimsTotal,
		HTTPRequests,
		HTTPDuration,
	)
}

// ObserveDraw records a successful draw.
func ObserveDraw(res lots.Result, elapsed time.Duration) {
	direction := "winning"
	if !res.Winning {
		direction = "losing"
	}
	DrawsTotal.WithLabelValues(direction).Inc()
	DrawDuration.Observe(elapsed.Seconds())
	DrawTails.Observe(float64(len(res.Tails)))
	CandidateRejections.Add(float64(res.Stats.Rejected))
	Rollbacks.Add(float64(res.Stats.Rollbacks))
	Replenished.Add(float64(res.Stats.Replenished))
}

// Handler serves the registry in the prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// GinMiddleware counts requests per matched route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
