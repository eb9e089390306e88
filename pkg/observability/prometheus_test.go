package observability

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/matzehuels/craftgraph/pkg/errors"
)

func TestPrometheusHooks_Edits(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := NewPrometheusHooks(reg)
	ctx := context.Background()

	h.OnEditComplete(ctx, "expand", 5, time.Millisecond, nil)
	h.OnEditComplete(ctx, "expand", 5, time.Millisecond, errors.New(errors.ErrCodeNoRecipes, "no recipe"))
	fatal := errors.Wrap(errors.ErrCodeInconsistentGraph, errors.New(errors.ErrCodeNoEdge, "gone"), "collapse")
	h.OnEditComplete(ctx, "collapse", 3, time.Millisecond, fatal)
	h.OnRollback(ctx, "collapse", fatal)

	assert.Equal(t, 1.0, testutil.ToFloat64(h.Edits.WithLabelValues("expand", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.Edits.WithLabelValues("expand", "NO_RECIPES")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.Edits.WithLabelValues("collapse", "INCONSISTENT_GRAPH")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.Rollbacks.WithLabelValues("collapse")))
	assert.Equal(t, 3.0, testutil.ToFloat64(h.GraphNodes))
	assert.Equal(t, 2, testutil.CollectAndCount(h.EditDuration))
}

func TestPrometheusHooks_BookAndHTTP(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := NewPrometheusHooks(reg)
	ctx := context.Background()

	h.OnBookLoad(ctx, "book.toml", 12, nil)
	h.OnBookLoad(ctx, "book.toml", 0, errors.New(errors.ErrCodeInvalidFormat, "bad"))
	h.OnResponse(ctx, "GET", "/graph", 200, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(h.BookLoads.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.BookLoads.WithLabelValues("error")))
	assert.Equal(t, 12.0, testutil.ToFloat64(h.BookRecipes))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.Requests.WithLabelValues("GET", "/graph", "200")))
}

func TestPrometheusHooks_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusHooks(reg)
	assert.Panics(t, func() { NewPrometheusHooks(reg) })
}
