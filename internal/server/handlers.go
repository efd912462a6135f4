package server

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/optimode/emailaddr"
	"github.com/optimode/emailaddr/internal/logger"
)

type batchRequest struct {
	Emails []string `json:"emails"`
}

type batchResponse struct {
	XMLName xml.Name            `json:"-" xml:"results"`
	Valid   int                 `json:"valid" xml:"valid,attr"`
	Total   int                 `json:"total" xml:"total,attr"`
	Results []emailaddr.Context `json:"results" xml:"emailAddress"`
}

type healthResponse struct {
	XMLName xml.Name `json:"-" xml:"health"`
	Status  string   `json:"status" xml:"status"`
}

type errorResponse struct {
	XMLName xml.Name `json:"-" xml:"error"`
	Message string   `json:"error" xml:",chardata"`
}

// handleValidate serves GET /v1/validate?email=...
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("email") {
		writeError(w, r, http.StatusBadRequest, "missing email parameter")
		return
	}

	c := s.validator.Validate(q.Get("email"))
	s.metrics.observe(c)

	reqLog := logger.FromContext(r.Context())
	reqLog.Debug().
		Str("email", c.NormalizedEmailAddress).
		Bool("valid", c.Valid).
		Msg("validated")

	writeBody(w, r, http.StatusOK, c)
}

// handleValidateBatch serves POST /v1/validate with {"emails": [...]}.
func (s *Server) handleValidateBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req batchRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	if len(req.Emails) > s.cfg.MaxBatch {
		writeError(w, r, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("batch exceeds %d addresses", s.cfg.MaxBatch))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout())
	defer cancel()

	results, err := s.validator.ValidateMany(ctx, req.Emails, emailaddr.ConcurrencyOptions{Workers: s.workers})
	if err != nil {
		reqLog := logger.FromContext(r.Context())
		reqLog.Warn().Err(err).Int("count", len(req.Emails)).Msg("batch validation aborted")
		writeError(w, r, http.StatusServiceUnavailable, "validation aborted")
		return
	}
	for _, c := range results {
		s.metrics.observe(c)
	}

	if results == nil {
		results = []emailaddr.Context{}
	}
	writeBody(w, r, http.StatusOK, batchResponse{
		Valid:   emailaddr.ValidCount(results),
		Total:   len(results),
		Results: results,
	})
}

// wantsXML reports whether the client asked for XML via ?format=xml
// or an Accept header.
func wantsXML(r *http.Request) bool {
	if f := r.URL.Query().Get("format"); f != "" {
		return strings.EqualFold(f, "xml")
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/xml") || strings.Contains(accept, "text/xml")
}

func writeBody(w http.ResponseWriter, r *http.Request, status int, body any) {
	if wantsXML(r) {
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(xml.Header))
		if err := xml.NewEncoder(w).Encode(body); err != nil {
			reqLog := logger.FromContext(r.Context())
			reqLog.Error().Err(err).Msg("encode xml response")
		}
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		reqLog := logger.FromContext(r.Context())
		reqLog.Error().Err(err).Msg("encode json response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeBody(w, r, status, errorResponse{Message: msg})
}
