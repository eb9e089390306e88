package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/craftgraph/pkg/errors"
)

// PrometheusHooks records edit, book and HTTP events as Prometheus metrics.
// It implements [EditHooks], [BookHooks] and [HTTPHooks].
type PrometheusHooks struct {
	Edits        *prometheus.CounterVec
	EditDuration *prometheus.HistogramVec
	Rollbacks    *prometheus.CounterVec
	GraphNodes   prometheus.Gauge
	BookLoads    *prometheus.CounterVec
	BookRecipes  prometheus.Gauge
	Requests     *prometheus.CounterVec
	ReqDuration  *prometheus.HistogramVec
}

// NewPrometheusHooks creates the craftgraph metrics and registers them on reg.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	f := promauto.With(reg)
	return &PrometheusHooks{
		Edits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "craftgraph_edits_total",
			Help: "Total number of graph edits, labelled by operation and result code.",
		}, []string{"op", "result"}),
		EditDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "craftgraph_edit_duration_seconds",
			Help:    "Time spent applying one graph edit.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"op"}),
		Rollbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "craftgraph_rollbacks_total",
			Help: "Total number of edits undone by restoring the pre-edit snapshot.",
		}, []string{"op"}),
		GraphNodes: f.NewGauge(prometheus.GaugeOpts{
			Name: "craftgraph_graph_nodes",
			Help: "Number of nodes in the graph after the last edit.",
		}),
		BookLoads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "craftgraph_book_loads_total",
			Help: "Total number of recipe book loads, labelled by status.",
		}, []string{"status"}),
		BookRecipes: f.NewGauge(prometheus.GaugeOpts{
			Name: "craftgraph_book_recipes",
			Help: "Number of recipes in the last successfully loaded book.",
		}),
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "craftgraph_http_requests_total",
			Help: "Total number of API requests, labelled by method, route and status.",
		}, []string{"method", "route", "status"}),
		ReqDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "craftgraph_http_request_duration_seconds",
			Help:    "API request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (h *PrometheusHooks) OnEditStart(context.Context, string, uint64) {}

func (h *PrometheusHooks) OnEditComplete(_ context.Context, op string, nodes int, d time.Duration, err error) {
	h.Edits.WithLabelValues(op, resultLabel(err)).Inc()
	h.EditDuration.WithLabelValues(op).Observe(d.Seconds())
	h.GraphNodes.Set(float64(nodes))
}

func (h *PrometheusHooks) OnRollback(_ context.Context, op string, _ error) {
	h.Rollbacks.WithLabelValues(op).Inc()
}

func (h *PrometheusHooks) OnBookLoad(_ context.Context, _ string, recipes int, err error) {
	if err != nil {
		h.BookLoads.WithLabelValues("error").Inc()
		return
	}
	h.BookLoads.WithLabelValues("ok").Inc()
	h.BookRecipes.Set(float64(recipes))
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string) {}

func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.Requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.ReqDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// resultLabel maps an edit error to a low-cardinality label: "ok", the
// error code, or "error" for uncoded errors.
func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if errors.IsFatal(err) {
		return string(errors.ErrCodeInconsistentGraph)
	}
	if code := errors.GetCode(err); code != "" {
		return string(code)
	}
	return "error"
}
