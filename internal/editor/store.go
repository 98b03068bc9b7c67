package editor

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// store keeps editor sessions in the editor_sessions table.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore creates a new session Store.
func NewStore(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

var _ Store = (*store)(nil)

// SaveSession inserts a session or overwrites the state of an existing one.
func (s *store) SaveSession(session *Session) error {
	if session == nil || session.Editor == nil {
		return errors.New("session has no editor state")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stateJSON, err := json.Marshal(session.Editor)
	if err != nil {
		return fmt.Errorf("failed to encode editor state: %w", err)
	}
	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	_, err = s.db.Exec(`
		INSERT INTO editor_sessions (id, match_id, innings_number, state_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state_json = excluded.state_json,
			innings_number = excluded.innings_number,
			updated_at = excluded.updated_at;
	`, session.ID, session.MatchID, session.Editor.InningsNumber, string(stateJSON), session.CreatedAt.UnixMilli(), session.UpdatedAt.UnixMilli())
	if err != nil {
		log.Error("Failed to save editor session", "error", err, "sessionID", session.ID)
		return err
	}
	log.Debug("Saved editor session", "sessionID", session.ID, "matchID", session.MatchID)
	return nil
}

// GetSession loads a single session by id.
func (s *store) GetSession(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`SELECT id, match_id, state_json, created_at, updated_at FROM editor_sessions WHERE id = ?`, id)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return session, nil
}

// ListSessions returns all sessions, most recently updated first.
func (s *store) ListSessions() ([]Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT id, match_id, state_json, created_at, updated_at FROM editor_sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			log.Error("Failed to scan editor session row", "error", err)
			continue
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

// DeleteSession removes a session, returning ErrSessionNotFound for an unknown id.
func (s *store) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.Exec("DELETE FROM editor_sessions WHERE id = ?", id)
	if err != nil {
		log.Error("Failed to delete editor session", "error", err, "sessionID", id)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func scanSession(scanner interface{ Scan(...any) error }) (*Session, error) {
	var (
		session              Session
		stateJSON            string
		createdAt, updatedAt int64
	)
	if err := scanner.Scan(&session.ID, &session.MatchID, &stateJSON, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	session.CreatedAt = time.UnixMilli(createdAt)
	session.UpdatedAt = time.UnixMilli(updatedAt)

	var ed Editor
	if err := json.Unmarshal([]byte(stateJSON), &ed); err != nil {
		return nil, fmt.Errorf("failed to decode editor state for session %s: %w", session.ID, err)
	}
	session.Editor = &ed
	return &session, nil
}
