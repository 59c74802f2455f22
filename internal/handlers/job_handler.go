package handlers

import (
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/artifex/internal/common"
	"github.com/ternarybob/artifex/internal/jobs"
	"github.com/ternarybob/artifex/internal/models"
)

// JobHandler serves job status reads and artifact downloads over the
// in-memory store.
type JobHandler struct {
	store  *jobs.Store
	logger arbor.ILogger
}

func NewJobHandler(store *jobs.Store, logger arbor.ILogger) *JobHandler {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &JobHandler{
		store:  store,
		logger: logger.WithPrefix("jobs"),
	}
}

// jobResponse is the wire shape of a job status read.
type jobResponse struct {
	JobID         string                 `json:"job_id"`
	ToolName      string                 `json:"tool_name"`
	Status        string                 `json:"status"`
	Progress      int                    `json:"progress"`
	ElapsedTime   float64                `json:"elapsed_time"`
	EstimatedTime int                    `json:"estimated_time"`
	Result        map[string]interface{} `json:"result,omitempty"`
	Error         string                 `json:"error,omitempty"`
}

func toJobResponse(job *models.Job) jobResponse {
	resp := jobResponse{
		JobID:         job.ID,
		ToolName:      job.ToolName,
		Status:        string(job.Status),
		Progress:      job.Progress,
		ElapsedTime:   job.ElapsedSeconds(),
		EstimatedTime: job.EstimatedTime,
		Error:         job.Error,
	}
	if job.Result != nil {
		resp.Result = map[string]interface{}{
			"filename": job.Result.Filename,
			"data":     job.Result.Data,
		}
		if job.Result.OutputPath != "" {
			resp.Result["download_url"] = "/api/jobs/" + job.ID + "/download"
		}
	}
	return resp
}

// StatusHandler handles GET /api/jobs/{id}.
func (h *JobHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	jobID := pathSegment(r.URL.Path, "/api/jobs/")
	if jobID == "" {
		WriteError(w, http.StatusBadRequest, "job id is required")
		return
	}

	job, err := h.store.Get(jobID)
	if err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, toJobResponse(job))
}

// DownloadHandler handles GET /api/jobs/{id}/download. Artifacts are
// only served for completed jobs that produced one.
func (h *JobHandler) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	jobID := pathSegment(r.URL.Path, "/api/jobs/")

	job, err := h.store.Get(jobID)
	if err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	if job.Status != models.JobStatusCompleted {
		WriteError(w, http.StatusNotFound, models.ErrJobNotCompleted.Error())
		return
	}
	if job.Result == nil || job.Result.OutputPath == "" {
		WriteError(w, http.StatusNotFound, models.ErrNoArtifact.Error())
		return
	}

	filename := job.Result.Filename
	if filename == "" {
		filename = jobID
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	http.ServeFile(w, r, job.Result.OutputPath)
}

// ListHandler handles GET /api/jobs.
func (h *JobHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	jobList := h.store.List()
	responses := make([]jobResponse, 0, len(jobList))
	for _, job := range jobList {
		responses = append(responses, toJobResponse(job))
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  responses,
		"count": len(responses),
	})
}

// StatsHandler handles GET /api/jobs/stats.
func (h *JobHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, h.store.Stats())
}

// pathSegment returns the first path element after the prefix.
func pathSegment(path, prefix string) string {
	rest := strings.TrimPrefix(path, prefix)
	if rest == path {
		return ""
	}
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		return rest[:idx]
	}
	return rest
}
