package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/cardcsv/pkg/config"
	"github.com/yurifrl/cardcsv/pkg/models"
	"github.com/yurifrl/cardcsv/pkg/parser"
	"github.com/yurifrl/cardcsv/pkg/service"
	"github.com/yurifrl/cardcsv/pkg/transform"
)

// maxUploadSize bounds request bodies; card dumps are read fully into memory.
const maxUploadSize = 256 << 20

// Server converts uploaded card dumps over HTTP.
type Server struct {
	config    *config.Config
	logger    *log.Logger
	mux       *http.ServeMux
	parser    *parser.Parser
	processor *service.Processor
	files     sync.Map
}

// New creates a new HTTP server
func New(config *config.Config, logger *log.Logger) *Server {
	s := &Server{
		config:    config,
		logger:    logger,
		mux:       http.NewServeMux(),
		parser:    parser.New(logger),
		processor: service.NewProcessor(config, logger),
	}
	s.setupRoutes()
	return s
}

// Handler returns the routed handler, for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/convert", s.withLogging(s.handleConvert))
	s.mux.HandleFunc("/api/files/", s.withLogging(s.handleFiles))
	s.mux.HandleFunc("/api/profiles", s.withLogging(s.handleProfiles))
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	profiles := make([]models.Profile, 0)
	for _, name := range models.ProfileNames() {
		p, err := models.LookupProfile(name)
		if err != nil {
			continue
		}
		profiles = append(profiles, p)
	}

	if err := s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "success",
		"profiles": profiles,
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

// handleConvert accepts either a multipart upload in the "cards" field or a
// raw request body, and answers with the CSV document.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	data, filename, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "failed to read upload", err)
		return
	}

	job, err := s.jobFromQuery(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	records, err := s.parser.ProcessBytes(data, filename)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "failed to process file", err)
		return
	}

	var buf bytes.Buffer
	res, err := s.processor.ConvertRecords(records, &buf, job)
	if err != nil {
		var recErr *transform.RecordError
		if errors.As(err, &recErr) {
			s.respondError(w, r, http.StatusUnprocessableEntity, recErr.Error(), err)
			return
		}
		s.respondError(w, r, http.StatusInternalServerError, "conversion failed", err)
		return
	}

	name := strings.TrimSuffix(parser.StripCompression(filename), filepath.Ext(parser.StripCompression(filename))) + ".csv"
	s.files.Store(name, buf.Bytes())
	s.logger.Info("converted upload", "file", filename, "rows", res.Rows, "profile", job.Profile.Name)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", name))
	w.Header().Set("X-Rows", strconv.Itoa(res.Rows))
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Warn("failed to write csv response", "err", err)
	}
}

func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		file, header, err := r.FormFile("cards")
		if err != nil {
			return nil, "", err
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		return data, header.Filename, err
	case "application/x-ndjson", "application/jsonl":
		data, err := io.ReadAll(r.Body)
		return data, "upload.ndjson", err
	default:
		data, err := io.ReadAll(r.Body)
		return data, "upload.json", err
	}
}

// jobFromQuery starts from the server configuration and applies the
// profile, clean_reminder_text and keywords_only query parameters.
func (s *Server) jobFromQuery(r *http.Request) (service.Job, error) {
	job, err := s.processor.DefaultJob()
	if err != nil {
		return job, err
	}

	q := r.URL.Query()
	if name := q.Get("profile"); name != "" {
		p, err := models.LookupProfile(name)
		if err != nil {
			return job, err
		}
		job.Profile = p
	}
	for key, dst := range map[string]*bool{
		"clean_reminder_text": &job.Options.StripReminderText,
		"keywords_only":       &job.Options.KeywordsOnly,
	} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return job, fmt.Errorf("invalid %s value %q", key, v)
		}
		*dst = b
	}
	return job, nil
}

// handleFiles serves the CSV of a previously converted upload.
func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	filename := strings.TrimPrefix(r.URL.Path, "/api/files/")
	if filename == "" {
		s.respondError(w, r, http.StatusBadRequest, "filename required", nil)
		return
	}

	value, ok := s.files.Load(filename)
	if !ok {
		s.respondError(w, r, http.StatusNotFound, "file not found", nil)
		return
	}
	data, ok := value.([]byte)
	if !ok {
		s.respondError(w, r, http.StatusInternalServerError, "internal type assertion error", nil)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("failed to write csv response", "err", err)
	}
}

// --- helpers ---

// writeJSON encodes v as JSON with the given status and writes headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// respondError logs the error and returns a minimal JSON error body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if err != nil {
		s.logger.Warn("request error", "status", status, "msg", message, "err", err, "method", r.Method, "path", r.URL.Path)
	} else {
		s.logger.Warn("request error", "status", status, "msg", message, "method", r.Method, "path", r.URL.Path)
	}
	_ = s.writeJSON(w, status, map[string]string{
		"status":  "error",
		"message": message,
	})
}

// withLogging wraps a handler to log request start/end and recover panics.
func (s *Server) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", "panic", rec, "method", r.Method, "path", r.URL.Path)
				s.respondError(w, r, http.StatusInternalServerError, "internal server error", fmt.Errorf("panic: %v", rec))
			}
		}()
		next(w, r)
	}
}
