package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"csr-insights-go/internal/calls"
	"csr-insights-go/internal/customer"
	"csr-insights-go/internal/dataset"
	"csr-insights-go/internal/logger"
	"csr-insights-go/internal/metrics"
	"csr-insights-go/internal/processor"
	"csr-insights-go/internal/transcript"
	"csr-insights-go/internal/trend"
	"csr-insights-go/internal/types"
)

type server struct {
	proc    *processor.Processor
	dir     customer.Directory
	dataset *dataset.DatasetSummary
	log     *logger.Logger
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		s.log.WithRequest(r).Debug("health check")
		fmt.Fprint(w, "ok")
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("POST /api/analyze", s.analyze)
	mux.HandleFunc("GET /api/customer/{phone}", s.customer)
	mux.HandleFunc("GET /api/csrs", s.csrs)
	mux.HandleFunc("POST /api/route", s.route)
	mux.HandleFunc("GET /api/calls/pending", s.pending)
	mux.HandleFunc("POST /api/calls/{id}/accept", s.accept)
	mux.HandleFunc("POST /api/calls/{id}/transcript", s.transcriptChunk)
	mux.HandleFunc("POST /api/calls/{id}/end", s.end)
	mux.HandleFunc("GET /api/calls/{id}", s.call)
	mux.HandleFunc("GET /api/calls/{id}/summary", s.summary)
	mux.HandleFunc("GET /api/stats", s.stats)
	mux.HandleFunc("GET /api/insights", s.insights)
	mux.HandleFunc("GET /api/dataset", s.datasetSummary)
	return mux
}

type analyzeRequest struct {
	TranscriptID   string `json:"transcript_id"`
	CustomerText   string `json:"customer_text"`
	AgentText      string `json:"agent_text"`
	FullTranscript string `json:"full_transcript"`
}

func (s *server) analyze(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "analyze")
	var req analyzeRequest
	if !decode(w, r, reqLog, &req) {
		return
	}
	if req.CustomerText == "" && req.FullTranscript == "" {
		writeError(w, reqLog, http.StatusBadRequest, "customer_text or full_transcript is required")
		return
	}
	pred := s.proc.Analyze(types.Transcript{
		ID:             req.TranscriptID,
		CustomerText:   req.CustomerText,
		AgentText:      req.AgentText,
		FullTranscript: req.FullTranscript,
		Timestamp:      time.Now(),
	})
	writeJSON(w, reqLog, http.StatusOK, pred)
}

func (s *server) customer(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "customer")
	c, err := s.dir.Lookup(r.Context(), r.PathValue("phone"))
	switch {
	case errors.Is(err, customer.ErrNotFound):
		writeError(w, reqLog, http.StatusNotFound, "customer not found")
	case err != nil:
		reqLog.WithField("error", err.Error()).Error("customer lookup failed")
		writeError(w, reqLog, http.StatusInternalServerError, "customer lookup failed")
	default:
		writeJSON(w, reqLog, http.StatusOK, c)
	}
}

func (s *server) csrs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.log.WithRequest(r), http.StatusOK, s.proc.Router.List())
}

func (s *server) route(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "route")
	var req processor.RouteRequest
	if !decode(w, r, reqLog, &req) {
		return
	}
	res, err := s.proc.RouteCall(r.Context(), req)
	if errors.Is(err, processor.ErrEmptyText) {
		writeError(w, reqLog, http.StatusBadRequest, "customer_text is required")
		return
	}
	if err != nil {
		reqLog.WithField("error", err.Error()).Error("routing failed")
		writeError(w, reqLog, http.StatusInternalServerError, "routing failed")
		return
	}
	writeJSON(w, reqLog, http.StatusOK, res)
}

func (s *server) pending(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.log.WithRequest(r), http.StatusOK, s.proc.PendingNotices())
}

func (s *server) accept(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "accept")
	c, err := s.proc.AcceptCall(r.PathValue("id"))
	if err != nil {
		writeCallError(w, reqLog, err)
		return
	}
	writeJSON(w, reqLog, http.StatusOK, c)
}

type chunkRequest struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	Partial bool   `json:"is_partial"`
}

func (s *server) transcriptChunk(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "transcript")
	var req chunkRequest
	if !decode(w, r, reqLog, &req) {
		return
	}
	speaker, ok := transcript.ParseSpeaker(req.Speaker)
	if !ok {
		writeError(w, reqLog, http.StatusBadRequest, fmt.Sprintf("unknown speaker %q", req.Speaker))
		return
	}
	up, err := s.proc.AddTranscript(r.PathValue("id"), speaker, req.Text, req.Partial)
	if err != nil {
		writeCallError(w, reqLog, err)
		return
	}
	writeJSON(w, reqLog, http.StatusOK, up)
}

func (s *server) end(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "end")
	res, err := s.proc.EndCall(r.PathValue("id"))
	if err != nil {
		writeCallError(w, reqLog, err)
		return
	}
	writeJSON(w, reqLog, http.StatusOK, res)
}

func (s *server) call(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "call")
	d, err := s.proc.CallDetail(r.PathValue("id"))
	if err != nil {
		writeCallError(w, reqLog, err)
		return
	}
	writeJSON(w, reqLog, http.StatusOK, d)
}

func (s *server) summary(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "summary")
	sum, err := s.proc.CallSummary(r.PathValue("id"))
	if err != nil {
		writeCallError(w, reqLog, err)
		return
	}
	writeJSON(w, reqLog, http.StatusOK, sum)
}

func (s *server) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.log.WithRequest(r), http.StatusOK, s.proc.Stats())
}

func (s *server) insights(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.log.WithRequest(r), http.StatusOK, s.proc.Insights())
}

func (s *server) datasetSummary(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "dataset")
	if s.dataset == nil {
		writeError(w, reqLog, http.StatusNotFound, "no dataset loaded")
		return
	}
	writeJSON(w, reqLog, http.StatusOK, s.dataset)
}

func decode(w http.ResponseWriter, r *http.Request, log *logrus.Entry, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, log, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// writeCallError maps call lifecycle errors onto status codes.
func writeCallError(w http.ResponseWriter, log *logrus.Entry, err error) {
	switch {
	case errors.Is(err, calls.ErrCallNotFound), errors.Is(err, trend.ErrCallNotFound):
		writeError(w, log, http.StatusNotFound, "call not found")
	case errors.Is(err, calls.ErrNotPending), errors.Is(err, calls.ErrNotActive):
		writeError(w, log, http.StatusConflict, err.Error())
	case errors.Is(err, processor.ErrEmptyText):
		writeError(w, log, http.StatusBadRequest, err.Error())
	default:
		log.WithField("error", err.Error()).Error("request failed")
		writeError(w, log, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, log *logrus.Entry, status int, msg string) {
	log.WithField("status", status).Warn(msg)
	writeJSON(w, log, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, log *logrus.Entry, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.WithField("error", err.Error()).Error("failed to write response")
	}
}
