// Package editor applies edit intents to a graph with snapshot rollback.
//
// The graph core mutates in place and reports INCONSISTENT_GRAPH when an
// edit broke an invariant part way through. An [Editor] snapshots the graph
// before every edit and restores the snapshot in that case, so callers only
// ever observe consistent graphs.
//
// # Usage
//
//	ed := editor.New(g, editor.WithLogger(logger), editor.WithStrict(true))
//	if err := ed.Apply(ctx, editor.Expand(2)); err != nil {
//	    fmt.Println(errors.UserMessage(err))
//	}
//	g = ed.Graph()
package editor

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/craftgraph/pkg/dag"
	"github.com/matzehuels/craftgraph/pkg/errors"
	"github.com/matzehuels/craftgraph/pkg/observability"
)

// Editor owns one graph and serializes edits to it. It is not safe for
// concurrent use.
type Editor struct {
	id     string
	graph  *dag.Graph
	logger *log.Logger
	hooks  observability.EditHooks
	strict bool
	run    func(*dag.Graph, Intent) error
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithHooks sets the edit hooks. The default is the global observability.Edit().
func WithHooks(h observability.EditHooks) Option {
	return func(e *Editor) {
		if h != nil {
			e.hooks = h
		}
	}
}

// WithStrict makes the editor validate every invariant after each successful
// edit and roll back edits that fail validation.
func WithStrict(strict bool) Option {
	return func(e *Editor) { e.strict = strict }
}

// New creates an editor for g with a fresh session ID.
func New(g *dag.Graph, opts ...Option) *Editor {
	e := &Editor{
		id:     uuid.NewString(),
		graph:  g,
		logger: log.Default(),
		hooks:  observability.Edit(),
		run:    dispatch,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("session", e.id[:8])
	return e
}

// ID returns the session ID.
func (e *Editor) ID() string { return e.id }

// Graph returns the current graph. After a rollback this is the restored
// snapshot, not the graph passed to New.
func (e *Editor) Graph() *dag.Graph { return e.graph }

// Strict reports whether edits are validated.
func (e *Editor) Strict() bool { return e.strict }

// Apply applies one intent. Errors other than INCONSISTENT_GRAPH leave the
// graph unchanged. On INCONSISTENT_GRAPH the pre-edit snapshot is restored
// and the error is returned.
func (e *Editor) Apply(ctx context.Context, in Intent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return err
	}

	start := time.Now()
	e.hooks.OnEditStart(ctx, string(in.Op), uint64(in.Node))
	snapshot := e.graph.Clone()

	err := e.run(e.graph, in)
	if err == nil && e.strict {
		if verr := e.graph.Validate(); verr != nil {
			err = errors.Context(verr, "after %s", in)
		}
	}

	switch {
	case err == nil:
		e.logger.Debug("applied edit", "edit", in.String(), "nodes", e.graph.NodeCount(), "depth", e.graph.MaxDepth())
	case errors.IsFatal(err):
		e.graph = snapshot
		e.logger.Error("edit broke the graph, restored snapshot", "edit", in.String(), "err", err)
		e.hooks.OnRollback(ctx, string(in.Op), err)
	default:
		e.logger.Warn("edit rejected", "edit", in.String(), "code", errors.GetCode(err), "reason", errors.UserMessage(err))
	}
	e.hooks.OnEditComplete(ctx, string(in.Op), e.graph.NodeCount(), time.Since(start), err)
	return err
}

func dispatch(g *dag.Graph, in Intent) error {
	switch in.Op {
	case OpExpand:
		if in.Recipe != "" {
			return g.ExpandWith(in.Node, in.Recipe)
		}
		return g.Expand(in.Node)
	case OpCollapse:
		return g.Collapse(in.Node)
	case OpMerge:
		return g.Merge(in.Node, in.With)
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown edit %q", in.Op)
	}
}

// ApplyAll applies intents in order and stops at the first error. It returns
// the number of intents applied successfully.
func (e *Editor) ApplyAll(ctx context.Context, intents []Intent) (int, error) {
	for i, in := range intents {
		if err := e.Apply(ctx, in); err != nil {
			return i, errors.Context(err, "edit %d (%s)", i+1, in)
		}
	}
	return len(intents), nil
}

// CanMerge reports whether merging with into node would succeed.
func (e *Editor) CanMerge(node, with dag.NodeID) error {
	return e.graph.CanMerge(node, with)
}
