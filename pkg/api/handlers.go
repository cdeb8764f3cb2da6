package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ssargent/plyfile/pkg/archive"
	"github.com/ssargent/plyfile/pkg/ply"
)

// Server holds the API server state
type Server struct {
	store   DocumentStore
	config  ServerConfig
	metrics *Metrics
	logger  *slog.Logger
}

// NewServer creates a new API server
func NewServer(store DocumentStore, config ServerConfig, metrics *Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Server{
		store:   store,
		config:  config,
		metrics: metrics,
		logger:  logger,
	}
}

func (s *Server) recordOperation(operation string, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.RecordArchiveOperation(operation, err == nil, time.Since(start))
	}
}

// sendArchiveError maps archive and decode failures to status codes
func (s *Server) sendArchiveError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, archive.ErrNotFound):
		sendError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, archive.ErrInvalidID):
		sendError(w, err.Error(), http.StatusBadRequest)
	default:
		s.logger.Error("archive operation failed", "action", action, "error", err)
		sendError(w, fmt.Sprintf("Failed to %s: %v", action, err), http.StatusInternalServerError)
	}
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	APIResponse
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.metrics != nil {
		s.metrics.RecordHealthCheck(true)
	}
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handlePutDocument godoc
//
//	@Summary		Archive a document
//	@Description	Decode a polygon file in any encoding and store it
//	@Tags			documents
//	@Accept			octet-stream
//	@Produce		json
//	@Param			body	body		[]byte	true	"Polygon file"
//	@Success		201		{object}	APIResponse{data=archive.Entry}
//	@Failure		400		{object}	APIResponse
//	@Failure		413		{object}	APIResponse
//	@Failure		500		{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/documents [post]
func (s *Server) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes))
	if err != nil {
		s.recordOperation("put", start, err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sendError(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		sendError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	f, err := ply.Decode(bytes.NewReader(body))
	if err != nil {
		s.recordOperation("put", start, err)
		sendError(w, fmt.Sprintf("Invalid document: %v", err), http.StatusBadRequest)
		return
	}
	f.SetLogger(s.logger)

	entry, err := s.store.Put(f)
	s.recordOperation("put", start, err)
	if err != nil {
		s.sendArchiveError(w, "store document", err)
		return
	}

	s.logger.Info("document archived", "id", entry.ID, "format", entry.Summary.Format, "size", entry.Size)
	sendCreated(w, entry)
}

// handleListDocuments godoc
//
//	@Summary		List documents
//	@Description	List the entries of every archived document, oldest first
//	@Tags			documents
//	@Produce		json
//	@Success		200	{object}	APIResponse{data=[]archive.Entry}
//	@Failure		500	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/documents [get]
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	entries, err := s.store.List()
	s.recordOperation("list", start, err)
	if err != nil {
		s.sendArchiveError(w, "list documents", err)
		return
	}
	sendSuccess(w, entries)
}

// handleGetDocument godoc
//
//	@Summary		Get a document entry
//	@Description	Get the entry and schema summary of an archived document
//	@Tags			documents
//	@Produce		json
//	@Param			id	path		string	true	"Document ID"
//	@Success		200	{object}	APIResponse{data=archive.Entry}
//	@Failure		400	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/documents/{id} [get]
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	entry, err := s.store.Info(chi.URLParam(r, "id"))
	s.recordOperation("info", start, err)
	if err != nil {
		s.sendArchiveError(w, "get document", err)
		return
	}
	sendSuccess(w, entry)
}

// handleGetContent godoc
//
//	@Summary		Download a document
//	@Description	Download an archived document, optionally re-encoded
//	@Tags			documents
//	@Produce		octet-stream
//	@Param			id		path		string	true	"Document ID"
//	@Param			format	query		string	false	"ascii, binary_little_endian or binary_big_endian"
//	@Success		200		{file}		binary
//	@Failure		400		{object}	APIResponse
//	@Failure		404		{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/documents/{id}/content [get]
func (s *Server) handleGetContent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")

	formatName := r.URL.Query().Get("format")
	if formatName == "" {
		data, err := s.store.Raw(id)
		s.recordOperation("raw", start, err)
		if err != nil {
			s.sendArchiveError(w, "get document", err)
			return
		}
		writeDocument(w, id, data)
		return
	}

	format, ok := ply.ParseFormat(formatName)
	if !ok {
		sendError(w, fmt.Sprintf("Unknown format: %s", formatName), http.StatusBadRequest)
		return
	}
	f, err := s.store.Get(id)
	s.recordOperation("get", start, err)
	if err != nil {
		s.sendArchiveError(w, "get document", err)
		return
	}
	f.Format = format

	var buf bytes.Buffer
	if err := f.Encode(&buf); err != nil {
		s.sendArchiveError(w, "encode document", err)
		return
	}
	writeDocument(w, id, buf.Bytes())
}

func writeDocument(w http.ResponseWriter, id string, data []byte) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".ply"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleDeleteDocument godoc
//
//	@Summary		Delete a document
//	@Tags			documents
//	@Produce		json
//	@Param			id	path		string	true	"Document ID"
//	@Success		200	{object}	APIResponse
//	@Failure		400	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/documents/{id} [delete]
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")
	err := s.store.Delete(id)
	s.recordOperation("delete", start, err)
	if err != nil {
		s.sendArchiveError(w, "delete document", err)
		return
	}
	s.logger.Info("document deleted", "id", id)
	sendSuccess(w, map[string]string{"id": id, "status": "deleted"})
}

// handleStats godoc
//
//	@Summary		Archive statistics
//	@Tags			diagnostics
//	@Produce		json
//	@Success		200	{object}	APIResponse{data=archive.Stats}
//	@Failure		500	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/stats [get]
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats()
	if err != nil {
		s.sendArchiveError(w, "get stats", err)
		return
	}
	if s.metrics != nil {
		s.metrics.UpdateArchiveStats(stats.Documents, stats.Bytes, stats.StoredBytes)
	}
	sendSuccess(w, stats)
}
