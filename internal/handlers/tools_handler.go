package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/artifex/internal/common"
	"github.com/ternarybob/artifex/internal/interfaces"
)

// ToolsHandler serves the tool catalog.
type ToolsHandler struct {
	registry interfaces.ToolRegistry
	logger   arbor.ILogger
}

func NewToolsHandler(registry interfaces.ToolRegistry, logger arbor.ILogger) *ToolsHandler {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &ToolsHandler{
		registry: registry,
		logger:   logger.WithPrefix("tools"),
	}
}

// ListHandler handles GET /api/tools.
func (h *ToolsHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	toolList := h.registry.List()
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"tools": toolList,
		"count": len(toolList),
	})
}
