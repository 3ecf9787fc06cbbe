package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

type Collector struct {
	registry          *prometheus.Registry
	requests          *prometheus.CounterVec
	latency           *prometheus.HistogramVec
	reportCache       *prometheus.CounterVec
	dashboardOutcomes *prometheus.CounterVec
	evaluations       *prometheus.CounterVec
	overdueReminders  prometheus.Counter
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "okr_http_requests_total",
			Help: "HTTP requests served, by method, route and status.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "okr_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"}),
		reportCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "okr_report_cache_total",
			Help: "Report cache lookups by result.",
		}, []string{"result"}),
		dashboardOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "okr_dashboard_outcomes_total",
			Help: "Dashboard builds by dashboard and outcome.",
		}, []string{"dashboard", "outcome"}),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "okr_evaluations_submitted_total",
			Help: "Submitted evaluations by evaluator type.",
		}, []string{"evaluator"}),
		overdueReminders: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "okr_overdue_reminders_total",
			Help: "Overdue review reminders sent.",
		}),
	}
	c.registry.MustRegister(
		c.requests,
		c.latency,
		c.reportCache,
		c.dashboardOutcomes,
		c.evaluations,
		c.overdueReminders,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

func (c *Collector) Record(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.latency.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) ReportCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.reportCache.WithLabelValues(result).Inc()
}

func (c *Collector) DashboardOutcome(dashboard, outcome string) {
	c.dashboardOutcomes.WithLabelValues(dashboard, outcome).Inc()
}

func (c *Collector) EvaluationSubmitted(evaluator string) {
	c.evaluations.WithLabelValues(evaluator).Inc()
}

func (c *Collector) OverdueReminders(n int) {
	c.overdueReminders.Add(float64(n))
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Snapshot summarizes request counters for the JSON health endpoint.
func (c *Collector) Snapshot() map[string]any {
	families, err := c.registry.Gather()
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	var total, errs, limited float64
	for _, family := range families {
		if family.GetName() != "okr_http_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			value := metric.GetCounter().GetValue()
			total += value
			status := labelValue(metric, "status")
			if len(status) == 3 && status[0] == '5' {
				errs += value
			}
			if status == "429" {
				limited += value
			}
		}
	}
	return map[string]any{
		"requestsTotal":    total,
		"errorsTotal":      errs,
		"rateLimitedTotal": limited,
	}
}

func labelValue(metric *dto.Metric, name string) string {
	for _, label := range metric.GetLabel() {
		if label.GetName() == name {
			return label.GetValue()
		}
	}
	return ""
}
