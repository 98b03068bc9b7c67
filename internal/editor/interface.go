package editor

// Store persists editor sessions between requests.
type Store interface {
	SaveSession(session *Session) error
	GetSession(id string) (*Session, error)
	ListSessions() ([]Session, error)
	DeleteSession(id string) error
}
