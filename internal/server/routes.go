package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Job submission and uploads
	mux.HandleFunc("/api/process", s.handleProcessRoute) // POST - submit a tool job
	mux.HandleFunc("/api/upload", s.handleUploadRoute)   // POST - upload a file for later processing

	// API routes - Jobs
	mux.HandleFunc("/api/jobs/stats", s.app.JobHandler.StatsHandler)
	mux.HandleFunc("/api/jobs", s.app.JobHandler.ListHandler)
	mux.HandleFunc("/api/jobs/", s.handleJobRoutes) // Handles /api/jobs/{id} and /api/jobs/{id}/download

	// API routes - Progress simulation (SSE)
	mux.HandleFunc("/api/progress/", s.app.ProgressHandler.StreamHandler)

	// API routes - Tool catalog
	mux.HandleFunc("/api/tools", s.handleToolsRoute)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

func (s *Server) handleProcessRoute(w http.ResponseWriter, r *http.Request) {
	RouteByMethod(w, r, MethodRouter{
		"POST": s.app.ProcessHandler.ProcessHandler,
	})
}

func (s *Server) handleUploadRoute(w http.ResponseWriter, r *http.Request) {
	RouteByMethod(w, r, MethodRouter{
		"POST": s.app.UploadHandler.UploadHandler,
	})
}

func (s *Server) handleToolsRoute(w http.ResponseWriter, r *http.Request) {
	RouteByMethod(w, r, MethodRouter{
		"GET": s.app.ToolsHandler.ListHandler,
	})
}

// handleJobRoutes routes job-related requests to the appropriate handler
func (s *Server) handleJobRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// GET /api/jobs/{id}/download
	if strings.HasSuffix(r.URL.Path, "/download") {
		s.app.JobHandler.DownloadHandler(w, r)
		return
	}

	// GET /api/jobs/{id}
	s.app.JobHandler.StatusHandler(w, r)
}
