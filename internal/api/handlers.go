package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"codeshare/internal/models"
	"codeshare/internal/session"
	"codeshare/internal/utils"
)

type Handlers struct {
	log         *utils.Logger
	store       *session.Store
	registry    *session.Registry
	broadcaster *session.Broadcaster
	sweeper     *session.Sweeper
}

func NewHandlers(log *utils.Logger, store *session.Store, registry *session.Registry, broadcaster *session.Broadcaster, sweeper *session.Sweeper) *Handlers {
	return &Handlers{
		log:         log,
		store:       store,
		registry:    registry,
		broadcaster: broadcaster,
		sweeper:     sweeper,
	}
}

func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.store.Create()
	// A freshly created session is empty; it expires after the grace period
	// unless someone joins.
	h.sweeper.ScheduleEmptyCheck(s.ID)
	h.log.Info("created session", "sessionId", s.ID)
	writeJSON(w, http.StatusCreated, models.CreateSessionResponse{
		SessionID: s.ID,
		URL:       shareURL(r, s.ID),
	})
}

func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, ok := h.store.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Session not found"})
		return
	}
	content, language := s.Snapshot()
	writeJSON(w, http.StatusOK, models.SessionInfoResponse{
		ID:           s.ID,
		Code:         content,
		Language:     language,
		Participants: s.MemberCount(),
	})
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:   "healthy",
		Sessions: h.store.Count(),
	})
}

func shareURL(r *http.Request, sessionID string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/session/" + sessionID
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
