package tools

import (
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/artifex/internal/common"

	"github.com/ternarybob/artifex/internal/interfaces"
	"github.com/ternarybob/artifex/internal/models"
)

// Registry maps tool names to handlers. Registration happens at
// process startup; after that the registry is read-only and safe for
// concurrent resolution without locking. Resolution is by exact key
// match only, substring routing is deliberately not supported.
type Registry struct {
	handlers  map[string]interfaces.ToolHandler
	tools     map[string]*models.Tool
	estimates *Estimates
	logger    arbor.ILogger
	sealed    bool
}

// NewRegistry creates an empty tool registry
func NewRegistry(estimates *Estimates, logger arbor.ILogger) *Registry {
	if logger == nil {
		logger = common.GetLogger()
	}
	if estimates == nil {
		estimates = DefaultEstimates()
	}
	return &Registry{
		handlers:  make(map[string]interfaces.ToolHandler),
		tools:     make(map[string]*models.Tool),
		estimates: estimates,
		logger:    logger,
	}
}

// Register adds a tool and its handler. Panics on duplicate names or
// registration after Seal; both are wiring bugs caught at startup.
func (r *Registry) Register(tool models.Tool, handler interfaces.ToolHandler) {
	if r.sealed {
		panic(fmt.Sprintf("tool %q registered after registry was sealed", tool.Name))
	}
	if tool.Name == "" {
		panic("tool registered with empty name")
	}
	if handler == nil {
		panic(fmt.Sprintf("tool %q registered with nil handler", tool.Name))
	}
	if _, exists := r.handlers[tool.Name]; exists {
		panic(fmt.Sprintf("tool %q registered twice", tool.Name))
	}

	tool.EstimatedSeconds = r.estimates.Seconds(tool.Name)

	r.handlers[tool.Name] = handler
	r.tools[tool.Name] = &tool

	r.logger.Debug().
		Str("tool", tool.Name).
		Str("category", string(tool.Category)).
		Msg("Tool registered")
}

// Seal marks registration complete. After sealing, the registry is
// immutable and safe for lock-free concurrent reads.
func (r *Registry) Seal() {
	r.sealed = true
	r.logger.Info().Int("tools", len(r.handlers)).Msg("Tool registry sealed")
}

// Resolve returns the handler and descriptor for an exact tool name,
// or an UnknownToolError wrapping models.ErrToolNotFound
func (r *Registry) Resolve(name string) (interfaces.ToolHandler, *models.Tool, error) {
	handler, ok := r.handlers[name]
	if !ok {
		return nil, nil, &models.UnknownToolError{Name: name}
	}
	return handler, r.tools[name], nil
}

// List returns all registered tools sorted by name
func (r *Registry) List() []*models.Tool {
	result := make([]*models.Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		result = append(result, tool)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// EstimatedSeconds returns the processing estimate for a tool name.
// Unregistered names still resolve against the estimate table so the
// streaming simulator can pace arbitrary tool ids.
func (r *Registry) EstimatedSeconds(name string) int {
	return r.estimates.Seconds(name)
}
