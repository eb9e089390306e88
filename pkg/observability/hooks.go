// Package observability provides hooks for metrics and logging of graph edits.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends to the graph core.
// Consumers register hooks at startup to receive events about edits, recipe
// book reloads and API requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// [PrometheusHooks] implements every interface on a caller-supplied registry.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    hooks := observability.NewPrometheusHooks(prometheus.DefaultRegisterer)
//	    observability.SetEditHooks(hooks)
//	    observability.SetBookHooks(hooks)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Edit().OnEditStart(ctx, "expand", node)
//	// ... apply the edit ...
//	observability.Edit().OnEditComplete(ctx, "expand", nodes, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Edit Hooks
// =============================================================================

// EditHooks receives events from graph edit sessions.
type EditHooks interface {
	// OnEditStart records the start of an edit on a node.
	OnEditStart(ctx context.Context, op string, node uint64)

	// OnEditComplete records a finished edit. nodes is the graph size after
	// the edit (or after rollback).
	OnEditComplete(ctx context.Context, op string, nodes int, duration time.Duration, err error)

	// OnRollback records a graph restored from its snapshot.
	OnRollback(ctx context.Context, op string, err error)
}

// =============================================================================
// Book Hooks
// =============================================================================

// BookHooks receives events from recipe book loading.
type BookHooks interface {
	// OnBookLoad records a (re)load of a recipe book file.
	OnBookLoad(ctx context.Context, path string, recipes int, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the API server.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEditHooks is a no-op implementation of EditHooks.
type NoopEditHooks struct{}

func (NoopEditHooks) OnEditStart(context.Context, string, uint64)                         {}
func (NoopEditHooks) OnEditComplete(context.Context, string, int, time.Duration, error) {}
func (NoopEditHooks) OnRollback(context.Context, string, error)                           {}

// NoopBookHooks is a no-op implementation of BookHooks.
type NoopBookHooks struct{}

func (NoopBookHooks) OnBookLoad(context.Context, string, int, error) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	editHooks EditHooks = NoopEditHooks{}
	bookHooks BookHooks = NoopBookHooks{}
	httpHooks HTTPHooks = NoopHTTPHooks{}
	hooksMu   sync.RWMutex
)

// SetEditHooks registers custom edit hooks.
// This should be called once at application startup before any edits.
func SetEditHooks(h EditHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		editHooks = h
	}
}

// SetBookHooks registers custom book hooks.
func SetBookHooks(h BookHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		bookHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Edit returns the registered edit hooks.
func Edit() EditHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return editHooks
}

// Book returns the registered book hooks.
func Book() BookHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return bookHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	editHooks = NoopEditHooks{}
	bookHooks = NoopBookHooks{}
	httpHooks = NoopHTTPHooks{}
}
