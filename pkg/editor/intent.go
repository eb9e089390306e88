package editor

import (
	"fmt"
	"strings"

	"github.com/matzehuels/craftgraph/pkg/dag"
	"github.com/matzehuels/craftgraph/pkg/errors"
)

// Op is one of the three structural edits.
type Op string

// Supported edit operations.
const (
	OpExpand   Op = "expand"
	OpCollapse Op = "collapse"
	OpMerge    Op = "merge"
)

// ParseOp parses an operation name (case-insensitive).
func ParseOp(s string) (Op, error) {
	switch op := Op(strings.ToLower(strings.TrimSpace(s))); op {
	case OpExpand, OpCollapse, OpMerge:
		return op, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown edit %q (must be expand, collapse or merge)", s)
	}
}

// Intent is an edit request naming nodes by ID: {expand: n}, {collapse: n}
// or {merge: n, with: m}. Recipe optionally picks the recipe for an expand
// of an item several recipes produce.
type Intent struct {
	Op     Op         `json:"op" yaml:"op" toml:"op"`
	Node   dag.NodeID `json:"node" yaml:"node" toml:"node"`
	With   dag.NodeID `json:"with,omitempty" yaml:"with,omitempty" toml:"with,omitempty"`
	Recipe string     `json:"recipe,omitempty" yaml:"recipe,omitempty" toml:"recipe,omitempty"`
}

// Expand returns an expand intent.
func Expand(id dag.NodeID) Intent { return Intent{Op: OpExpand, Node: id} }

// Collapse returns a collapse intent.
func Collapse(id dag.NodeID) Intent { return Intent{Op: OpCollapse, Node: id} }

// Merge returns an intent merging with into node.
func Merge(node, with dag.NodeID) Intent { return Intent{Op: OpMerge, Node: node, With: with} }

// Validate checks that the intent is well-formed. It does not look at any graph.
func (in Intent) Validate() error {
	if _, err := ParseOp(string(in.Op)); err != nil {
		return err
	}
	if in.Node == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "%s: node is required", in.Op)
	}
	switch {
	case in.Op == OpMerge && in.With == 0:
		return errors.New(errors.ErrCodeInvalidInput, "merge: with is required")
	case in.Op != OpMerge && in.With != 0:
		return errors.New(errors.ErrCodeInvalidInput, "%s: with is only valid for merge", in.Op)
	case in.Op != OpExpand && in.Recipe != "":
		return errors.New(errors.ErrCodeInvalidInput, "%s: recipe is only valid for expand", in.Op)
	}
	return nil
}

func (in Intent) String() string {
	switch {
	case in.Op == OpMerge:
		return fmt.Sprintf("merge %d with %d", in.Node, in.With)
	case in.Recipe != "":
		return fmt.Sprintf("%s %d using %s", in.Op, in.Node, in.Recipe)
	default:
		return fmt.Sprintf("%s %d", in.Op, in.Node)
	}
}
