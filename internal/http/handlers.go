package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/wicketkeeper/internal/editor"
	"github.com/mauv0809/wicketkeeper/internal/http/handlers"
	"github.com/mauv0809/wicketkeeper/internal/matchapi"
	"github.com/mauv0809/wicketkeeper/internal/scoring"
)

func (s *Server) LiveStateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteJSON(w, http.StatusOK, s.Live.Snapshot())
	}
}

// SubscribeHandler loads the full match snapshot and then follows its live
// feed. Any previous subscription is closed first.
func (s *Server) SubscribeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("matchID")
		if matchID == "" {
			http.Error(w, "matchID is required", http.StatusBadRequest)
			return
		}
		log.Info("Subscribing to match", "matchID", matchID)

		s.liveMu.Lock()
		defer s.liveMu.Unlock()
		s.Subscriptions.Unsubscribe()
		s.Live.SetLoading(true)
		match, err := s.MatchClient.GetMatch(r.Context(), matchID)
		if err != nil {
			s.Live.SetLoading(false)
			s.Live.SetError(err.Error())
			log.Error("Failed to fetch match", "matchID", matchID, "error", err)
			if errors.Is(err, matchapi.ErrMatchNotFound) {
				http.Error(w, "Match not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to fetch match", http.StatusBadGateway)
			return
		}
		s.Live.SetMatchScore(match)

		// The request context ends with the response; the feed must not.
		if err := s.Subscriptions.Subscribe(s.feedCtx, matchID); err != nil {
			log.Error("Failed to subscribe to live feed", "matchID", matchID, "error", err)
			http.Error(w, "Failed to connect to live feed", http.StatusBadGateway)
			return
		}
		handlers.WriteJSON(w, http.StatusOK, s.Live.Snapshot())
	}
}

func (s *Server) UnsubscribeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.liveMu.Lock()
		defer s.liveMu.Unlock()
		matchID := s.Subscriptions.MatchID()
		s.Subscriptions.Unsubscribe()
		s.Live.ClearLiveScore()
		log.Info("Unsubscribed from live feed", "matchID", matchID)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := scoring.MatchStatus(r.URL.Query().Get("status"))
		matches, err := s.MatchClient.ListMatches(r.Context(), status)
		if err != nil {
			http.Error(w, "Failed to get matches", http.StatusBadGateway)
			log.Error("Failed to list matches", "error", err)
			return
		}
		if matches == nil {
			matches = []matchapi.MatchSummary{}
		}
		handlers.WriteJSON(w, http.StatusOK, matches)
	}
}

func (s *Server) CreateSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.MatchID == "" || len(req.Batsmen) == 0 {
			http.Error(w, "matchId and batsmen are required", http.StatusBadRequest)
			return
		}
		if req.InningsNumber <= 0 {
			req.InningsNumber = 1
		}

		session := &editor.Session{
			ID:      s.newID(),
			MatchID: req.MatchID,
			Editor:  editor.New(req.InningsNumber, req.Batsmen),
		}
		if err := s.Sessions.SaveSession(session); err != nil {
			http.Error(w, "Failed to save session", http.StatusInternalServerError)
			log.Error("Failed to save editor session", "error", err)
			return
		}
		log.Info("Editor session created", "sessionID", session.ID, "matchID", session.MatchID, "innings", req.InningsNumber)
		handlers.WriteJSON(w, http.StatusCreated, sessionResponse{Session: session, Summary: session.Editor.Summary()})
	}
}

func (s *Server) ListSessionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, err := s.Sessions.ListSessions()
		if err != nil {
			http.Error(w, "Failed to get sessions", http.StatusInternalServerError)
			log.Error("Failed to list editor sessions", "error", err)
			return
		}
		if sessions == nil {
			sessions = []editor.Session{}
		}
		handlers.WriteJSON(w, http.StatusOK, sessions)
	}
}

func (s *Server) GetSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.Sessions.GetSession(r.PathValue("id"))
		if err != nil {
			writeEditorError(w, err)
			return
		}
		handlers.WriteJSON(w, http.StatusOK, sessionResponse{Session: session, Summary: session.Editor.Summary()})
	}
}

func (s *Server) DeleteSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.sessionsMu.Lock()
		defer s.sessionsMu.Unlock()
		if err := s.Sessions.DeleteSession(r.PathValue("id")); err != nil {
			writeEditorError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// AddBallHandler records one delivery, persists the session and forwards the
// resulting ball event to the live view.
func (s *Server) AddBallHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ballRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		s.sessionsMu.Lock()
		defer s.sessionsMu.Unlock()

		session, err := s.Sessions.GetSession(r.PathValue("id"))
		if err != nil {
			writeEditorError(w, err)
			return
		}
		ev, err := session.Editor.AddBallRun(req.Token)
		if err != nil {
			writeEditorError(w, err)
			return
		}
		if err := s.Sessions.SaveSession(session); err != nil {
			http.Error(w, "Failed to save session", http.StatusInternalServerError)
			log.Error("Failed to save editor session", "sessionID", session.ID, "error", err)
			return
		}

		applied := s.Processor.RecordBall(session, ev, s.isDryRun(r))
		handlers.WriteJSON(w, http.StatusOK, ballResponse{
			sessionResponse: sessionResponse{Session: session, Summary: session.Editor.Summary()},
			Event:           ev,
			AppliedToLive:   applied,
		})
	}
}

func (s *Server) EditBallHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		over, err := strconv.Atoi(r.PathValue("over"))
		if err != nil {
			http.Error(w, "over must be a number", http.StatusBadRequest)
			return
		}
		ball, err := strconv.Atoi(r.PathValue("ball"))
		if err != nil {
			http.Error(w, "ball must be a number", http.StatusBadRequest)
			return
		}
		var req ballRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		s.mutateSession(w, r.PathValue("id"), func(ed *editor.Editor) error {
			return ed.EditBallRun(over, ball, req.Token)
		})
	}
}

func (s *Server) UndoBallHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mutateSession(w, r.PathValue("id"), func(ed *editor.Editor) error {
			return ed.UndoLastBall()
		})
	}
}

// mutateSession loads a session, applies fn and saves the result. Edits are
// not forwarded to the live view; the feed carries corrected totals.
func (s *Server) mutateSession(w http.ResponseWriter, id string, fn func(*editor.Editor) error) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()

	session, err := s.Sessions.GetSession(id)
	if err != nil {
		writeEditorError(w, err)
		return
	}
	if err := fn(session.Editor); err != nil {
		writeEditorError(w, err)
		return
	}
	if err := s.Sessions.SaveSession(session); err != nil {
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		log.Error("Failed to save editor session", "sessionID", session.ID, "error", err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, sessionResponse{Session: session, Summary: session.Editor.Summary()})
}

func writeEditorError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, editor.ErrSessionNotFound), errors.Is(err, editor.ErrBallNotFound):
		status = http.StatusNotFound
	case errors.Is(err, editor.ErrNoStriker), errors.Is(err, editor.ErrUnknownToken):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, editor.ErrNothingToUndo):
		status = http.StatusConflict
	default:
		log.Error("Editor request failed", "error", err)
	}
	http.Error(w, err.Error(), status)
}
