package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/craftgraph/pkg/cache"
	"github.com/matzehuels/craftgraph/pkg/dag"
	"github.com/matzehuels/craftgraph/pkg/editor"
	"github.com/matzehuels/craftgraph/pkg/observability"
	"github.com/matzehuels/craftgraph/pkg/recipe"
	"github.com/matzehuels/craftgraph/pkg/render/nodelink"
)

// newTestServer serves: 1 gadget <- 2 A, 3 X; X is made from A, A from C.
func newTestServer(t *testing.T) (*Server, *prometheus.Registry) {
	t.Helper()
	it := func(n string) recipe.Item { return recipe.Item{Name: n} }
	book, err := recipe.NewBook([]*recipe.Recipe{
		{Name: "gadget", CraftingTime: 1,
			Ingredients: []recipe.Ingredient{{Item: it("A"), Amount: 1}, {Item: it("X"), Amount: 1}},
			Results:     []recipe.Product{{Item: it("gadget"), Amount: 1}}},
		{Name: "make-x", CraftingTime: 1,
			Ingredients: []recipe.Ingredient{{Item: it("A"), Amount: 1}},
			Results:     []recipe.Product{{Item: it("X"), Amount: 1}}},
		{Name: "make-a", CraftingTime: 1,
			Ingredients: []recipe.Ingredient{{Item: it("C"), Amount: 1}},
			Results:     []recipe.Product{{Item: it("A"), Amount: 1}}},
	}, []*recipe.Machine{{Name: "assembler", CraftingSpeed: 1, Categories: []string{"crafting"}}})
	require.NoError(t, err)
	root, _ := book.Recipe("gadget")
	g, err := dag.New(book, root, 1, dag.WithAllocator(dag.NewIDAllocator(1)))
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	hooks := observability.NewPrometheusHooks(reg)
	quiet := log.New(io.Discard)
	ed := editor.New(g, editor.WithHooks(hooks), editor.WithLogger(quiet))
	return New(ed, WithLogger(quiet), WithGatherer(reg)), reg
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","build":{"version":"dev","commit":"none","date":"unknown"}}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(SessionHeader))
}

func TestGetGraph(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/graph", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var v GraphView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.Equal(t, dag.NodeID(1), v.Root)
	assert.Equal(t, []int{1, 2}, v.Levels)
	require.Len(t, v.Nodes, 3)
	assert.Equal(t, "root", v.Nodes[0].Kind)
	assert.Equal(t, []dag.NodeID{2, 3}, v.Nodes[0].Children)
	assert.Equal(t, "terminal", v.Nodes[1].Kind)
	assert.Equal(t, []string{"make-a"}, v.Nodes[1].Recipes)
	assert.Equal(t, []dag.NodeID{}, v.Nodes[1].Children)
}

func TestPostEdits(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"expand", `{"op":"expand","node":3}`, http.StatusOK, ""},
		{"not found", `{"op":"expand","node":99}`, http.StatusNotFound, "NODE_NOT_FOUND"},
		{"expand shared item", `{"op":"expand","node":2}`, http.StatusOK, ""},
		{"unsupported", `{"op":"collapse","node":1}`, http.StatusUnprocessableEntity, "UNSUPPORTED_NODE"},
		{"incompatible", `{"op":"merge","node":2,"with":3}`, http.StatusConflict, "INCOMPATIBLE_NODE_ITEMS"},
		{"bad op", `{"op":"split","node":2}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad json", `{"op":`, http.StatusBadRequest, "INVALID_FORMAT"},
		{"unknown field", `{"op":"expand","node":2,"color":"red"}`, http.StatusBadRequest, "INVALID_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t)
			rec := do(t, s, http.MethodPost, "/edits", tt.body)

			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.code != "" {
				var e errorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
				assert.Equal(t, tt.code, e.Code)
				assert.False(t, e.RolledBack)
			}
		})
	}
}

func TestPostEdits_MergeSequence(t *testing.T) {
	s, _ := newTestServer(t)

	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/edits", `{"op":"expand","node":3}`).Code)
	rec := do(t, s, http.MethodPost, "/edits", `{"op":"merge","node":2,"with":4}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var v GraphView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.Equal(t, []int{1, 1, 1}, v.Levels)
	for _, n := range v.Nodes {
		if n.ID == 2 {
			assert.Equal(t, []dag.NodeID{1, 3}, n.Parents)
			assert.InDelta(t, 2.0, n.Rate, 1e-9)
			assert.Equal(t, 2, n.Depth)
		}
	}
}

func TestGraphDOT(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/graph.dot?detailed", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/vnd.graphviz", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"1" -> "2"`)
	assert.Contains(t, rec.Body.String(), "depth 1")
}

func TestGraphSVG_Cached(t *testing.T) {
	s, _ := newTestServer(t)
	c := cache.NewMemoryCache(4)
	WithRenderCache(c)(s)

	dot := nodelink.ToDOT(s.ed.Graph(), nodelink.Options{})
	require.NoError(t, c.Set(context.Background(), cache.RenderKey("svg", dot), []byte("<svg/>"), time.Hour))

	rec := do(t, s, http.MethodGet, "/graph.svg", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, "<svg/>", rec.Body.String())
}

func TestSummary(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var v SummaryView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	require.Len(t, v.Requirements, 2)
	assert.Equal(t, "A", v.Requirements[0].Item)
	assert.Equal(t, "X", v.Requirements[1].Item)
	require.Len(t, v.Production, 1)
	assert.Equal(t, "gadget", v.Production[0].Recipe)
}

func TestMetrics(t *testing.T) {
	s, _ := newTestServer(t)
	do(t, s, http.MethodPost, "/edits", `{"op":"expand","node":3}`)
	do(t, s, http.MethodPost, "/edits", `{"op":"collapse","node":2}`)

	rec := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `craftgraph_edits_total{op="expand",result="ok"} 1`)
	assert.Contains(t, body, `craftgraph_edits_total{op="collapse",result="UNSUPPORTED_NODE"} 1`)
	assert.Contains(t, body, "craftgraph_graph_nodes 4")
}

func TestStatusFor_Unknown(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(io.EOF))
}
