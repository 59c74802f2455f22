package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/artifex/internal/common"
)

// UploadHandler stores input files ahead of a process request. The
// returned file_id is the handle a later submit references.
type UploadHandler struct {
	process *ProcessHandler
	logger  arbor.ILogger
}

func NewUploadHandler(process *ProcessHandler, logger arbor.ILogger) *UploadHandler {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &UploadHandler{
		process: process,
		logger:  logger.WithPrefix("upload"),
	}
}

// UploadHandler handles POST /api/upload.
func (h *UploadHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	if err := r.ParseMultipartForm(h.process.maxUpload); err != nil {
		WriteError(w, http.StatusBadRequest, "failed to parse multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "no file provided")
		return
	}
	file.Close()

	fileID := uuid.New().String()
	path, err := h.process.saveUploadedFile(header, fileID)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Info().
		Str("file_id", fileID).
		Str("filename", header.Filename).
		Int64("size", header.Size).
		Msg("File uploaded")

	WriteJSON(w, http.StatusOK, map[string]string{
		"file_id":  fileID,
		"filename": filepath.Base(path),
		"filepath": path,
	})
}
