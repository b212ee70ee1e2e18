package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/wanderwise/wanderwise-backend/internal/app/model"
	"github.com/wanderwise/wanderwise-backend/pkg/logger"
)

const namespace = "wanderwise"

var (
	ModerationActions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "moderation_actions_total",
		Help:      "Committed moderation actions by action",
	}, []string{"action"})

	ModeratedReviews = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "moderated_reviews_total",
		Help:      "Reviews whose status was changed by moderation, by action",
	}, []string{"action"})

	VotesCast = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "helpful_votes_total",
		Help:      "Helpful vote requests by token",
	}, []string{"vote"})

	RateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_requests_total",
		Help:      "Requests rejected by the rate limiter, by scope",
	}, []string{"scope"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status class",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	reviewsByStatusDesc = prometheus.NewDesc(
		namespace+"_reviews",
		"Current number of reviews by status",
		[]string{"status"},
		nil,
	)
)

// StatusCounter reports current review counts per status.
type StatusCounter interface {
	CountByStatus(ctx context.Context) (map[model.ReviewStatus]int64, error)
}

// ReviewStatusCollector reads review counts from the database on each scrape.
type ReviewStatusCollector struct {
	counter StatusCounter
	timeout time.Duration
}

func NewReviewStatusCollector(counter StatusCounter) *ReviewStatusCollector {
	return &ReviewStatusCollector{counter: counter, timeout: 5 * time.Second}
}

func (c *ReviewStatusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- reviewsByStatusDesc
}

func (c *ReviewStatusCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	counts, err := c.counter.CountByStatus(ctx)
	if err != nil {
		logger.Error("Failed to collect review status metrics", err)
		return
	}
	for status, n := range counts {
		ch <- prometheus.MustNewConstMetric(reviewsByStatusDesc, prometheus.GaugeValue, float64(n), string(status))
	}
}

var initOnce sync.Once

// Init registers every collector with reg. Safe to call more than once.
func Init(reg prometheus.Registerer, counter StatusCounter) {
	initOnce.Do(func() {
		reg.MustRegister(ModerationActions, ModeratedReviews, VotesCast, RateLimited, HTTPRequestDuration)
		if counter != nil {
			reg.MustRegister(NewReviewStatusCollector(counter))
		}
	})
}

// NewSessionGauge reports open websocket sessions as read from count at
// scrape time.
func NewSessionGauge(count func() int) prometheus.GaugeFunc {
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "websocket_sessions",
		Help:      "Open websocket sessions",
	}, func() float64 { return float64(count()) })
}

// ObserveSessions registers a session gauge with reg.
func ObserveSessions(reg prometheus.Registerer, count func() int) error {
	return reg.Register(NewSessionGauge(count))
}

func RecordModeration(action string, reviews int) {
	ModerationActions.WithLabelValues(action).Inc()
	ModeratedReviews.WithLabelValues(action).Add(float64(reviews))
}

func RecordVote(token string) {
	VotesCast.WithLabelValues(token).Inc()
}

func RecordRateLimited(scope string) {
	RateLimited.WithLabelValues(scope).Inc()
}
