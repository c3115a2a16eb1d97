// Package observability provides hooks for metrics and tracing of merge runs.
//
// Consumers register hooks at startup to receive events about pipeline
// stages without the pipeline depending on a specific backend:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    // ... run application
//	}
//
// The pipeline emits events around each stage:
//
//	observability.Pipeline().OnLoadStart(ctx, course, path)
//	// ... read the source ...
//	observability.Pipeline().OnLoadComplete(ctx, course, nodeCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the merge pipeline.
type PipelineHooks interface {
	// Load events, once per course source
	OnLoadStart(ctx context.Context, course, path string)
	OnLoadComplete(ctx context.Context, course string, nodeCount int, duration time.Duration, err error)

	// Link events, once per run when a cross-reference directory is set
	OnLinkComplete(ctx context.Context, sheets, edges int, duration time.Duration, err error)

	// Layout events
	OnLayoutComplete(ctx context.Context, nodeCount int, duration time.Duration)
}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string, string) {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnLinkComplete(context.Context, int, int, time.Duration, error) {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, int, time.Duration)           {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Reset restores the no-op hooks.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
}
