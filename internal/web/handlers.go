package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"streamfinder/internal/discovery"
	"streamfinder/internal/logging"
	"streamfinder/internal/lookup"
	"streamfinder/internal/services"
)

type pageData struct {
	Title       string
	Choices     discovery.Choices
	Request     discovery.Request
	Movies      []discovery.Movie
	Link        string
	Message     string
	Suggestions []string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "index.html", pageData{Title: "Search", Choices: s.choices})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, services.Wrap(services.ErrValidation, "web", "search", "malformed form", err))
		return
	}
	req, err := requestFromValues(r.PostForm.Get("service"), r.PostForm.Get("genre"), r.PostForm.Get("language"), r.PostForm.Get("duration"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	movies, err := s.discovery.Search(r.Context(), req)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "results.html", pageData{Title: "Results", Request: req, Movies: movies})
}

func (s *Server) handleOpenStreamingLink(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, services.Wrap(services.ErrValidation, "web", "open_streaming_link", "malformed form", err))
		return
	}
	id, err := parseMovieID(r.PostForm.Get("tmdb_id"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	link, err := s.discovery.StreamingLink(r.Context(), id, r.PostForm.Get("service"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	if discovery.IsAvailable(link) {
		http.Redirect(w, r, link, http.StatusFound)
		return
	}
	s.render(w, r, http.StatusOK, "open_streaming_link.html", pageData{Title: "Streaming link", Link: link})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAPIOptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.choices)
}

type searchResponse struct {
	Request discovery.Request `json:"request"`
	Movies  []discovery.Movie `json:"movies"`
}

func (s *Server) handleAPISearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req, err := requestFromValues(q.Get("service"), q.Get("genre"), q.Get("language"), q.Get("duration"))
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	movies, err := s.discovery.Search(r.Context(), req)
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Request: req, Movies: movies})
}

type linkResponse struct {
	ID        int64  `json:"tmdb_id"`
	Service   string `json:"service"`
	Link      string `json:"link"`
	Available bool   `json:"available"`
}

func (s *Server) handleAPILink(w http.ResponseWriter, r *http.Request) {
	id, err := parseMovieID(mux.Vars(r)["id"])
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	service := r.URL.Query().Get("service")
	link, err := s.discovery.StreamingLink(r.Context(), id, service)
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, linkResponse{ID: id, Service: service, Link: link, Available: discovery.IsAvailable(link)})
}

func requestFromValues(service, genre, language, duration string) (discovery.Request, error) {
	req := discovery.Request{
		Service:  strings.TrimSpace(service),
		Genre:    strings.TrimSpace(genre),
		Language: strings.TrimSpace(language),
	}
	if strings.TrimSpace(duration) != "" {
		band, err := discovery.ParseBand(duration)
		if err != nil {
			return discovery.Request{}, err
		}
		req.Band = band
	}
	if err := req.Validate(); err != nil {
		return discovery.Request{}, err
	}
	return req, nil
}

func parseMovieID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, services.Wrap(services.ErrValidation, "web", "parse_id", "invalid tmdb id", nil)
	}
	return id, nil
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		logging.WithContext(r.Context(), s.logger).Error("render template failed",
			logging.String("template", name),
			logging.Error(err))
	}
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := s.logFailure(r, err)
	data := pageData{Title: "Error", Message: userMessage(err)}
	var nf *lookup.NotFoundError
	if errors.As(err, &nf) {
		data.Suggestions = nf.Suggestions
	}
	s.render(w, r, status, "error.html", data)
}

func (s *Server) writeAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := s.logFailure(r, err)
	body := map[string]any{"error": userMessage(err)}
	var nf *lookup.NotFoundError
	if errors.As(err, &nf) && len(nf.Suggestions) > 0 {
		body["suggestions"] = nf.Suggestions
	}
	writeJSON(w, status, body)
}

func (s *Server) logFailure(r *http.Request, err error) int {
	status := services.HTTPStatus(err)
	logger := logging.WithContext(r.Context(), s.logger)
	if status >= http.StatusInternalServerError {
		logging.ErrorWithContext(logger, "request failed", "web_request_failed",
			logging.Int("status", status),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check upstream API availability and credentials"))
	} else {
		logger.Info("request rejected",
			logging.Int("status", status),
			logging.Error(err))
	}
	return status
}

// userMessage hides upstream detail from end users while keeping validation
// and lookup messages intact.
func userMessage(err error) string {
	var nf *lookup.NotFoundError
	switch {
	case errors.As(err, &nf):
		return nf.Error()
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrNotFound):
		return err.Error()
	case errors.Is(err, services.ErrTimeout):
		return "A movie service took too long to respond. Please try again."
	case errors.Is(err, services.ErrConfiguration):
		return "This server is missing configuration for that feature."
	default:
		return "A movie service is unavailable right now. Please try again later."
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
