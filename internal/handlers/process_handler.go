package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/artifex/internal/common"
	"github.com/ternarybob/artifex/internal/jobs"
	"github.com/ternarybob/artifex/internal/models"
)

var validate = validator.New()

// ProcessRequest is the submit payload. Files can arrive two ways:
// referenced by file_ids from a prior /api/upload call, or attached
// directly as multipart parts named "files".
type ProcessRequest struct {
	ToolName string            `json:"tool_name" validate:"required"`
	Text     string            `json:"text"`
	URL      string            `json:"url" validate:"omitempty,url"`
	FileIDs  []string          `json:"file_ids" validate:"omitempty,dive,required"`
	Options  map[string]string `json:"options"`
}

// ProcessHandler accepts tool execution requests and submits them to
// the job runner.
type ProcessHandler struct {
	runner    *jobs.Runner
	uploadDir string
	outputDir string
	maxUpload int64
	logger    arbor.ILogger
}

func NewProcessHandler(runner *jobs.Runner, cfg *common.Config, logger arbor.ILogger) *ProcessHandler {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &ProcessHandler{
		runner:    runner,
		uploadDir: cfg.Storage.UploadDir,
		outputDir: cfg.Storage.OutputDir,
		maxUpload: cfg.Storage.MaxUploadSize,
		logger:    logger.WithPrefix("process"),
	}
}

// ProcessHandler handles POST /api/process. The response carries the
// job id and the tool's estimated duration; 404 for unknown tools, 400
// for requests the tool cannot run.
func (h *ProcessHandler) ProcessHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	procReq, toolReq, err := h.parseRequest(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := validate.Struct(procReq); err != nil {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	// Unknown tool wins over a bad payload: resolve first so the 404
	// contract holds, then reject empty submissions here rather than on
	// the worker goroutine.
	_, tool, err := h.runner.Registry().Resolve(procReq.ToolName)
	if err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if tool.RequiresUpload && len(toolReq.InputPaths) == 0 {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("tool %s requires an uploaded file", tool.Name))
		return
	}
	if procReq.Text == "" && procReq.URL == "" && len(toolReq.InputPaths) == 0 && len(procReq.Options) == 0 {
		WriteError(w, http.StatusBadRequest, "no input provided: supply text, url, files, or options")
		return
	}

	job, err := h.runner.Submit(procReq.ToolName, toolReq)
	if err != nil {
		if errors.Is(err, models.ErrToolNotFound) {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"job_id":         job.ID,
		"estimated_time": job.EstimatedTime,
	})
}

// parseRequest builds the tool request from either a JSON body or a
// multipart form with attached files.
func (h *ProcessHandler) parseRequest(r *http.Request) (*ProcessRequest, *models.ToolRequest, error) {
	var procReq ProcessRequest
	var inputPaths []string

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(h.maxUpload); err != nil {
			return nil, nil, fmt.Errorf("failed to parse multipart form: %w", err)
		}

		procReq.ToolName = r.FormValue("tool_name")
		procReq.Text = r.FormValue("text")
		procReq.URL = r.FormValue("url")
		if optionsJSON := r.FormValue("options"); optionsJSON != "" {
			if err := json.Unmarshal([]byte(optionsJSON), &procReq.Options); err != nil {
				return nil, nil, fmt.Errorf("options must be a JSON object of strings: %w", err)
			}
		}

		if r.MultipartForm != nil {
			for _, header := range r.MultipartForm.File["files"] {
				path, err := h.saveUploadedFile(header, uuid.New().String())
				if err != nil {
					return nil, nil, err
				}
				inputPaths = append(inputPaths, path)
			}
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&procReq); err != nil {
			return nil, nil, fmt.Errorf("invalid JSON body: %w", err)
		}

		for _, fileID := range procReq.FileIDs {
			path, err := h.resolveUpload(fileID)
			if err != nil {
				return nil, nil, err
			}
			inputPaths = append(inputPaths, path)
		}
	}

	toolReq := &models.ToolRequest{
		ToolName:   procReq.ToolName,
		Text:       procReq.Text,
		URL:        procReq.URL,
		InputPaths: inputPaths,
		Options:    procReq.Options,
		OutputDir:  h.outputDir,
	}
	if len(inputPaths) > 0 {
		toolReq.InputPath = inputPaths[0]
	}

	return &procReq, toolReq, nil
}

// resolveUpload maps an upload file id back to the stored file. Ids are
// validated against path traversal before touching the filesystem.
func (h *ProcessHandler) resolveUpload(fileID string) (string, error) {
	if fileID == "" || strings.ContainsAny(fileID, `/\`) || strings.Contains(fileID, "..") {
		return "", fmt.Errorf("invalid file id %q", fileID)
	}

	matches, err := filepath.Glob(filepath.Join(h.uploadDir, fileID+"_*"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("uploaded file %s not found", fileID)
	}
	return matches[0], nil
}

func (h *ProcessHandler) saveUploadedFile(header *multipart.FileHeader, fileID string) (string, error) {
	if header.Size > h.maxUpload {
		return "", fmt.Errorf("file %s exceeds upload limit of %d bytes", header.Filename, h.maxUpload)
	}

	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	destPath := filepath.Join(h.uploadDir, fileID+"_"+SanitizeFilename(header.Filename))
	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, io.LimitReader(src, h.maxUpload)); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	return destPath, nil
}

// SanitizeFilename strips path components and characters that are not
// safe in a stored filename.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." || name == ".." {
		name = "upload"
	}
	return name
}
