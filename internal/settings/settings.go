// Package settings supplies process-wide supplemental context variables for
// flattening, the concrete stand-in for the orchestrator's configuration
// subsystem. Variables come either from an HCL settings file or from a
// static mapping.
package settings

import (
	"context"
)

// Settings holds the loaded supplemental context variables.
type Settings struct {
	contextVars map[any]any
}

// Static returns Settings backed by a fixed mapping, for programmatic wiring
// and tests. The mapping is not copied; callers must not mutate it afterwards.
func Static(vars map[any]any) *Settings {
	return &Settings{contextVars: vars}
}

// ContextVars implements execctx.SupplementalProvider.
func (s *Settings) ContextVars(ctx context.Context) map[any]any {
	if s == nil {
		return nil
	}
	return s.contextVars
}
