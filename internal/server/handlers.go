package server

import (
	_ "embed"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/mutuals/pkg/buildinfo"
	"github.com/matzehuels/mutuals/pkg/errors"
	"github.com/matzehuels/mutuals/pkg/graph"
	"github.com/matzehuels/mutuals/pkg/selection"
	"github.com/matzehuels/mutuals/pkg/style"
)

// maxBodyBytes bounds event request bodies.
const maxBodyBytes = 64 << 10

//go:embed index.html
var indexHTML []byte

// ViewResponse is returned by every view endpoint.
type ViewResponse struct {
	ID     string           `json:"id"`
	Output selection.Output `json:"output"`
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "code", code, "err", err)
	}
	writeJSON(w, status, ErrorResponse{Error: ErrorBody{Code: code, Message: errors.UserMessage(err)}})
}

// model returns the current model or an error before the first load.
func (s *Server) model() (*graph.Model, error) {
	res := s.result.Load()
	if res == nil {
		return nil, errors.New(errors.ErrCodeInternal, "model not loaded")
	}
	return res.Model, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
		"views":  s.views.Len(),
	}
	status := http.StatusOK
	if res := s.result.Load(); res != nil {
		body["stats"] = res.Model.Stats()
		body["source"] = res.Source
	} else {
		body["status"] = "loading"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, body)
}

func (s *Server) handleElements(w http.ResponseWriter, r *http.Request) {
	m, err := s.model()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, graph.Document{Elements: m.Elements(), Stats: m.Stats()})
}

func (s *Server) handleStylesheet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, style.Base())
}

func (s *Server) handleCreateView(w http.ResponseWriter, r *http.Request) {
	v, err := s.views.Create()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Debug("view created", "view", v.ID)
	writeJSON(w, http.StatusCreated, ViewResponse{ID: v.ID, Output: v.Current()})
}

func (s *Server) lookupView(w http.ResponseWriter, r *http.Request) (*View, bool) {
	v, err := s.views.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return v, true
}

func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	v, ok := s.lookupView(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ViewResponse{ID: v.ID, Output: v.Current()})
}

func (s *Server) handleDeleteView(w http.ResponseWriter, r *http.Request) {
	v, ok := s.lookupView(w, r)
	if !ok {
		return
	}
	s.views.Delete(v.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTap(w http.ResponseWriter, r *http.Request) {
	v, ok := s.lookupView(w, r)
	if !ok {
		return
	}
	var tap selection.Tap
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&tap); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid tap body"))
		return
	}
	s.applyEvent(w, r, v, tap)
}

func (s *Server) handleDeselect(w http.ResponseWriter, r *http.Request) {
	v, ok := s.lookupView(w, r)
	if !ok {
		return
	}
	s.applyEvent(w, r, v, selection.Deselect{})
}

func (s *Server) applyEvent(w http.ResponseWriter, r *http.Request, v *View, ev selection.Event) {
	out, err := v.Handle(r.Context(), ev)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ViewResponse{ID: v.ID, Output: out})
}
