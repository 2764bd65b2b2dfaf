package panelhttp

import (
	"encoding/json"
	"errors"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"travel-panel/internal/domain"
	"travel-panel/internal/usecase/session"
)

// Server exposes the recommendation session over a small REST surface.
type Server struct {
	session *session.Session
	log     zerolog.Logger
}

type Option func(*Server)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type actionRequest struct {
	UserID *string `json:"userId"`
	CityID *string `json:"cityId"`
}

type feedbackRequest struct {
	Liked bool `json:"liked"`
}

type settingsRequest struct {
	UserID     *string `json:"userId"`
	CityID     *string `json:"cityId"`
	Limit      any     `json:"limit"`
	ABVersion  *string `json:"abVersion"`
	ABStrategy *string `json:"abStrategy"`
}

func NewServer(sess *session.Session, opts ...Option) *Server {
	srv := &Server{session: sess, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

// Mount attaches the panel routes to a router.
func (s *Server) Mount(r chi.Router) {
	r.Get("/api/v1/state", s.handleState)
	r.Put("/api/v1/settings", s.handleSettings)
	r.Post("/api/v1/actions/{action}", s.handleAction)
	r.Post("/api/v1/feedback", s.handleFeedback)
	r.Post("/api/v1/media/{mediaID}/comments/toggle", s.handleToggleComments)
	r.Post("/api/v1/train", s.handleTrain)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.UserID != nil {
		s.session.SetUser(*req.UserID)
	}
	if req.CityID != nil {
		s.session.SetCity(*req.CityID)
	}
	if req.Limit != nil {
		s.session.SetLimit(req.Limit)
	}
	if req.ABVersion != nil {
		s.session.SetABVersion(*req.ABVersion)
	}
	if req.ABStrategy != nil {
		s.session.SetABStrategy(*req.ABStrategy)
	}
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	action := domain.Action(chi.URLParam(r, "action"))
	if !domain.IsKnown(action) {
		writeError(w, http.StatusNotFound, "unknown action")
		return
	}
	var req actionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
	}
	if req.CityID != nil {
		// the nearest-city confirmation commits the chosen city
		s.session.SetCity(*req.CityID)
	}

	var err error
	if domain.PrimaryActions[action] {
		err = s.session.CallPrimary(r.Context(), action, session.Overrides{UserID: req.UserID, CityID: req.CityID})
	} else {
		err = s.session.CallUtility(r.Context(), action)
	}
	if err != nil {
		// the session already recorded the failure into its status block;
		// the snapshot stays renderable either way
		s.log.Warn().Err(err).Str("action", string(action)).Msg("panel: action failed")
	}
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	err := s.session.SubmitFeedback(r.Context(), req.Liked)
	switch {
	case errors.Is(err, domain.ErrNoUser), errors.Is(err, domain.ErrNotEligible), errors.Is(err, domain.ErrFeedbackLocked):
		writeJSON(w, http.StatusUnprocessableEntity, s.session.Snapshot())
	case err != nil:
		s.log.Warn().Err(err).Msg("panel: feedback submit failed")
		writeJSON(w, http.StatusBadGateway, s.session.Snapshot())
	default:
		writeJSON(w, http.StatusOK, s.session.Snapshot())
	}
}

func (s *Server) handleToggleComments(w http.ResponseWriter, r *http.Request) {
	mediaID := chi.URLParam(r, "mediaID")
	if err := s.session.ToggleComments(r.Context(), mediaID); err != nil {
		s.log.Warn().Err(err).Str("media_id", mediaID).Msg("panel: comments fetch failed")
	}
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	err := s.session.TrainModel(r.Context())
	switch {
	case errors.Is(err, domain.ErrTrainBusy):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		s.log.Warn().Err(err).Msg("panel: training failed")
		writeJSON(w, http.StatusBadGateway, s.session.Snapshot())
	default:
		writeJSON(w, http.StatusOK, s.session.Snapshot())
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
