package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/triggerNode/BuxTax/src/logger"
	"github.com/triggerNode/BuxTax/src/models"
	"github.com/triggerNode/BuxTax/src/processors"
	"github.com/triggerNode/BuxTax/src/security/validation"
	"github.com/triggerNode/BuxTax/src/services"
	"github.com/triggerNode/BuxTax/src/utils"
)

const exportFilename = "buxtax-payouts.csv"

type UploadHandler struct {
	uploadService      services.UploadService
	maxUploadSizeBytes int64
}

func NewUploadHandler(service services.UploadService, maxUploadSizeBytes int64) *UploadHandler {
	return &UploadHandler{
		uploadService:      service,
		maxUploadSizeBytes: maxUploadSizeBytes,
	}
}

// HandlePreview returns the headers of an uploaded file and the suggested column mapping.
func (h *UploadHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	file, fileHeader, ok := h.readUploadedFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	preview, err := h.uploadService.PreviewHeaders(file)
	if err != nil {
		sendServiceError(w, err, "preview")
		return
	}
	for i, header := range preview.Headers {
		preview.Headers[i] = validation.SanitizeHeader(header)
	}
	logger.L.Debug("Upload preview built", "filename", fileHeader.Filename, "headers", len(preview.Headers), "format", preview.Format)
	utils.SendJSON(w, preview, http.StatusOK)
}

// HandleUpload parses and stores a payout CSV. An optional "mapping" form field holds the
// user-confirmed ColumnMapping as JSON.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	file, fileHeader, ok := h.readUploadedFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	var mapping *models.ColumnMapping
	if raw := strings.TrimSpace(r.FormValue("mapping")); raw != "" {
		mapping = &models.ColumnMapping{}
		if err := json.Unmarshal([]byte(raw), mapping); err != nil {
			logger.L.Warn("Invalid mapping JSON in upload", "userID", userID, "error", err)
			utils.SendJSONError(w, "Invalid column mapping JSON", http.StatusBadRequest)
			return
		}
	}

	logger.L.Info("Processing upload request", "userID", userID, "filename", fileHeader.Filename, "explicitMapping", mapping != nil)
	result, err := h.uploadService.ProcessUpload(file, fileHeader.Filename, userID, mapping)
	if err != nil {
		sendServiceError(w, err, "upload")
		return
	}
	utils.SendJSON(w, result, http.StatusOK)
}

func (h *UploadHandler) HandleGetPayouts(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	upload, err := h.uploadService.GetLatestUpload(userID)
	if err != nil {
		sendServiceError(w, err, "payouts")
		return
	}
	sendJSONWithETag(w, r, upload, userID)
}

func (h *UploadHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var buf bytes.Buffer
	if err := h.uploadService.ExportLatest(&buf, userID); err != nil {
		sendServiceError(w, err, "export")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.L.Error("Error writing CSV export", "userID", userID, "error", err)
	}
}

func (h *UploadHandler) HandlePulse(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	summary, err := h.uploadService.GetPulse(userID, r.URL.Query().Get("range"))
	if err != nil {
		sendServiceError(w, err, "pulse")
		return
	}
	sendJSONWithETag(w, r, summary, userID)
}

// HandleGoalProgress reads ?target=<usd>&deadline=<YYYY-MM-DD>; the deadline is optional.
func (h *UploadHandler) HandleGoalProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	query := r.URL.Query()
	target, err := strconv.ParseFloat(query.Get("target"), 64)
	if err != nil {
		utils.SendJSONError(w, "target must be a number", http.StatusBadRequest)
		return
	}
	var deadline time.Time
	if raw := query.Get("deadline"); raw != "" {
		if deadline, err = utils.ParseDay(raw); err != nil {
			utils.SendJSONError(w, "deadline must be a YYYY-MM-DD date", http.StatusBadRequest)
			return
		}
	}

	progress, err := h.uploadService.GetGoalProgress(userID, target, deadline)
	if err != nil {
		sendServiceError(w, err, "goal")
		return
	}
	utils.SendJSON(w, progress, http.StatusOK)
}

func (h *UploadHandler) HandleDeletePayouts(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	n, err := h.uploadService.DeleteUploads(userID)
	if err != nil {
		sendServiceError(w, err, "delete")
		return
	}
	utils.SendJSON(w, map[string]int64{"deleted": n}, http.StatusOK)
}

func (h *UploadHandler) readUploadedFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, bool) {
	limitMB := h.maxUploadSizeBytes / (1024 * 1024)
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSizeBytes+(1<<20))
	if err := r.ParseMultipartForm(h.maxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "error", err, "limit", h.maxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", limitMB), http.StatusBadRequest)
		return nil, nil, false
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return nil, nil, false
	}

	if fileHeader.Size > h.maxUploadSizeBytes {
		file.Close()
		logger.L.Warn("Uploaded file header reports size too large", "fileSize", fileHeader.Size, "limit", h.maxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", limitMB), http.StatusBadRequest)
		return nil, nil, false
	}

	if err := validation.ValidateCSVUpload(file, fileHeader.Header.Get("Content-Type")); err != nil {
		file.Close()
		logger.L.Warn("Uploaded file failed content validation", "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return nil, nil, false
	}
	return file, fileHeader, true
}

// sendServiceError maps service and processor errors onto HTTP responses.
func sendServiceError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, services.ErrInvalidMapping):
		utils.SendJSONErrors(w, services.ErrInvalidMapping.Error(), services.ErrorDetails(err), http.StatusBadRequest)
	case errors.Is(err, services.ErrParsingFailed):
		details := services.ErrorDetails(err)
		if details == nil {
			details = []string{}
		}
		utils.SendJSONErrors(w, services.ErrParsingFailed.Error(), details, http.StatusBadRequest)
	case errors.Is(err, services.ErrNoUploadData):
		utils.SendJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, processors.ErrInvalidWindow), errors.Is(err, processors.ErrInvalidTarget):
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		logger.L.Error("Internal error handling payouts request", "action", action, "error", err)
		utils.SendJSONError(w, "An internal error occurred. Please try again later.", http.StatusInternalServerError)
	}
}

// sendJSONWithETag answers 304 when If-None-Match carries the current ETag of data.
func sendJSONWithETag(w http.ResponseWriter, r *http.Request, data interface{}, userID string) {
	w.Header().Set("Cache-Control", "no-cache, private")

	currentETag, err := utils.GenerateETag(data)
	if err != nil {
		logger.L.Error("Failed to generate ETag", "userID", userID, "error", err)
		utils.SendJSON(w, data, http.StatusOK)
		return
	}

	quotedETag := fmt.Sprintf("\"%s\"", currentETag)
	w.Header().Set("ETag", quotedETag)
	for _, clientETag := range strings.Split(r.Header.Get("If-None-Match"), ",") {
		if strings.TrimSpace(clientETag) == quotedETag {
			logger.L.Debug("ETag match", "userID", userID, "path", r.URL.Path)
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	utils.SendJSON(w, data, http.StatusOK)
}
