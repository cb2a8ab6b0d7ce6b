package receipt

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/zombor/receipt-maker/internal/imaging"
	"github.com/zombor/receipt-maker/internal/record"
)

// maxUploadSize caps templates and screenshots; phone photos can be large
const maxUploadSize = int64(50 << 20)

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// jsonError writes a JSON {"error": ...} response with CORS headers set
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// writeJSON writes v as a JSON response
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// readUpload reads the "file" field of a multipart form
func readUpload(w http.ResponseWriter, r *http.Request) (*multipart.FileHeader, []byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		errorMsg := "Error parsing form"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			errorMsg = "File is too large. Maximum size is 50MB."
		}
		jsonError(w, errorMsg, http.StatusBadRequest)
		return nil, nil, "", false
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		errorMsg := "No file provided"
		if errors.Is(err, http.ErrMissingFile) {
			errorMsg = "No file was selected. Please choose a file to upload."
		}
		jsonError(w, errorMsg, http.StatusBadRequest)
		return nil, nil, "", false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return nil, nil, "", false
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = imaging.ContentTypeFromExt(filepath.Ext(header.Filename))
	}
	return header, data, strings.ToLower(strings.TrimSpace(contentType)), true
}

// handleIndex serves the HTML interface
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleStaticCSS serves the CSS file
func (s *Server) handleStaticCSS(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/css")
	w.Write(appCSS)
}

// handleStaticJS serves the JavaScript file
func (s *Server) handleStaticJS(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Write(appJS)
}

// handleUploadTemplate stores a new receipt template for the session
func (s *Server) handleUploadTemplate(w http.ResponseWriter, r *http.Request) {
	header, data, contentType, ok := readUpload(w, r)
	if !ok {
		return
	}

	template, err := s.service.UploadTemplate(sessionID(r), header.Filename, data, contentType)
	if err != nil {
		slog.Error("Error uploading template", "filename", header.Filename, "error", err)
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, template)
}

// handleGetTemplate returns the session's template as PNG
func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.TemplatePNG(sessionID(r))
	if err != nil {
		if !errors.Is(err, ErrNoTemplate) {
			slog.Error("Error getting template", "error", err)
		}
		corsError(w, "Template not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}

// handleParseRecords parses a pasted payment list
func (s *Server) handleParseRecords(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		jsonError(w, "Paste a list to analyze", http.StatusBadRequest)
		return
	}

	records, err := s.service.ParseList(sessionID(r), req.Text)
	if err != nil {
		slog.Error("Error parsing list", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// handleScanRecords transcribes and parses a screenshot of a payment list
func (s *Server) handleScanRecords(w http.ResponseWriter, r *http.Request) {
	header, data, contentType, ok := readUpload(w, r)
	if !ok {
		return
	}

	records, err := s.service.ScanList(sessionID(r), data, contentType)
	if err != nil {
		if errors.Is(err, ErrScannerDisabled) {
			jsonError(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		slog.Error("Error scanning list", "filename", header.Filename, "error", err)
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// handleListRecords returns the session's records
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.Records(sessionID(r))
	if err != nil {
		slog.Error("Error listing records", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// handleUpdateRecords replaces the session's records with the edited table
func (s *Server) handleUpdateRecords(w http.ResponseWriter, r *http.Request) {
	var records []record.PaymentRecord
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.service.UpdateRecords(sessionID(r), records); err != nil {
		slog.Error("Error updating records", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if records == nil {
		records = []record.PaymentRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// handleClearRecords empties the session's list
func (s *Server) handleClearRecords(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ClearRecords(sessionID(r)); err != nil {
		slog.Error("Error clearing records", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleRenderSingle renders one receipt as a JPEG download
func (s *Server) handleRenderSingle(w http.ResponseWriter, r *http.Request) {
	var rec record.PaymentRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	data, filename, err := s.service.RenderSingle(sessionID(r), rec)
	if err != nil {
		s.renderError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(data)
}

// handleRenderBulk renders every record into a ZIP download. The body may
// carry the edited records; an empty body renders the session's records.
func (s *Server) handleRenderBulk(w http.ResponseWriter, r *http.Request) {
	var records []record.PaymentRecord
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil && !errors.Is(err, io.EOF) {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	id := sessionID(r)
	data, err := s.service.RenderBulk(id, records, func(done, total int) {
		slog.Debug("Rendered receipt", "session", id, "done", done, "total", total)
	})
	if err != nil {
		s.renderError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ArchiveFilename))
	w.Write(data)
}

// renderError maps render failures to status codes
func (s *Server) renderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, record.ErrMissingReceiptNumber):
		jsonError(w, "Please fill in the Receipt Number (RN) for all rows. "+err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNoRecords):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNoTemplate):
		jsonError(w, "Please upload a receipt template first.", http.StatusConflict)
	default:
		slog.Error("Error rendering receipts", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
	}
}
