package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"codeberg.org/mutker/hwhealth/internal/errors"
	"codeberg.org/mutker/hwhealth/internal/logger"
	"codeberg.org/mutker/hwhealth/internal/report"
	"codeberg.org/mutker/hwhealth/internal/scan"
	"codeberg.org/mutker/hwhealth/internal/telemetry"
	"github.com/gorilla/handlers"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScan runs a scan. Query parameters: components (comma-separated,
// default the configured selection) and format (default json).
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	domains := s.domains()
	if raw, ok := q["components"]; ok {
		parsed, err := telemetry.ParseDomains(splitQuery(raw))
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		domains = parsed
	}

	format := report.FormatJSON
	if raw := q.Get("format"); raw != "" {
		f, err := report.ParseFormat(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		format = f
	}

	s.runAndWrite(w, r, domains, format)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.runAndWrite(w, r, s.domains(), report.FormatPrometheus)
}

func (s *Server) runAndWrite(w http.ResponseWriter, r *http.Request, domains []telemetry.Domain, format report.Format) {
	out := s.scanner.Run(r.Context(), domains)
	if out.Err != nil {
		status := http.StatusInternalServerError
		if errors.HasCode(out.Err, scan.ErrScanUnavailable) {
			status = http.StatusServiceUnavailable
		}
		s.writeError(w, status, out.Err)
		return
	}

	w.Header().Set("Content-Type", report.ContentType(format))
	if out.ScanID != "" {
		w.Header().Set("X-Scan-ID", out.ScanID)
	}
	w.WriteHeader(http.StatusOK)
	if err := report.Write(w, format, out.Result); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to write scan response")
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.recorder == nil || !s.recorder.Enabled() {
		s.writeError(w, http.StatusNotFound, errors.New().New(ErrHistoryDisabled))
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			s.writeError(w, http.StatusBadRequest, errors.New().WithData(ErrInvalidLimit, raw))
			return
		}
		limit = n
	}

	entries, err := s.recorder.Recent(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Int("status", status).Msg("Request failed")
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Code: string(errors.CodeOf(err))})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func splitQuery(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, strings.Split(v, ",")...)
	}
	return out
}

func (s *Server) logRequest(_ io.Writer, p handlers.LogFormatterParams) {
	s.logger.Debug().
		Str("method", p.Request.Method).
		Str("path", p.URL.Path).
		Int("status", p.StatusCode).
		Int("size", p.Size).
		Dur("duration", time.Since(p.TimeStamp)).
		Msg("HTTP request")
}

// recoveryLogger adapts Logger to handlers.RecoveryHandlerLogger.
type recoveryLogger struct {
	log logger.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.log.Error().Msg(fmt.Sprint(v...))
}
