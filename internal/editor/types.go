package editor

import (
	"errors"
	"time"
)

var (
	// ErrNoStriker is returned when no batsman is flagged as the striker.
	// The delivery is rejected and the editor state is left untouched.
	ErrNoStriker = errors.New("no batsman is on strike")
	// ErrUnknownToken is returned for an outcome the editor does not understand.
	ErrUnknownToken = errors.New("unknown ball outcome")
	// ErrBallNotFound is returned when an edit addresses a ball that was never recorded.
	ErrBallNotFound = errors.New("ball not found")
	// ErrNothingToUndo is returned by UndoLastBall on an empty innings.
	ErrNothingToUndo = errors.New("no balls recorded")
	// ErrSessionNotFound is returned by a Store for an unknown session id.
	ErrSessionNotFound = errors.New("editor session not found")
)

// Batsman is a batter's line in the manual editor.
type Batsman struct {
	Name    string `json:"name"`
	Runs    int    `json:"runs"`
	Balls   int    `json:"balls"`
	Striker bool   `json:"striker"`
}

// Over is the list of outcome tokens recorded in one over, extras included.
type Over struct {
	Balls []string `json:"balls"`
}

// Editor records deliveries one outcome at a time and keeps the overs, the
// team score and the strike assignment in step. It is not safe for concurrent use.
type Editor struct {
	InningsNumber  int       `json:"inningsNumber"`
	Overs          []Over    `json:"overs"`
	BattingScore   int       `json:"battingScore"`
	BattingWickets int       `json:"battingWickets"`
	Batsmen        []Batsman `json:"batsmen"`
	// Opening is the batsmen line-up the session started with. Edits replay from it.
	Opening []Batsman `json:"opening"`

	now func() time.Time
}

// Summary is a compact view of the editor state.
type Summary struct {
	Score       string   `json:"score"`
	Overs       string   `json:"overs"`
	RunRate     string   `json:"runRate"`
	Striker     string   `json:"striker"`
	CurrentOver []string `json:"currentOver"`
}

// Session is a persisted editing session for one innings of a match.
type Session struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"matchId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Editor    *Editor   `json:"editor"`
}
