package editor

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/wicketkeeper/internal/scoring"
)

const legalBallsPerOver = 6

// New creates an editor for the given innings with the opening batsmen.
// Exactly one of them is expected to be flagged as striker.
func New(inningsNumber int, batsmen []Batsman) *Editor {
	e := &Editor{
		InningsNumber: inningsNumber,
		Opening:       append([]Batsman(nil), batsmen...),
	}
	e.reset()
	return e
}

func (e *Editor) reset() {
	e.Overs = []Over{{Balls: []string{}}}
	e.BattingScore = 0
	e.BattingWickets = 0
	e.Batsmen = append([]Batsman(nil), e.Opening...)
}

func (e *Editor) clock() time.Time {
	if e.now != nil {
		return e.now()
	}
	return time.Now()
}

// AddBallRun records one delivery and returns the ball event it produced.
func (e *Editor) AddBallRun(token string) (scoring.BallEvent, error) {
	tok, err := normalizeToken(token)
	if err != nil {
		return scoring.BallEvent{}, err
	}
	if e.strikerIndex() == -1 {
		log.Warn("Ball entry rejected, no striker flagged", "innings", e.InningsNumber, "token", tok)
		return scoring.BallEvent{}, ErrNoStriker
	}
	ev := e.apply(tok)
	log.Debug("Ball recorded", "innings", e.InningsNumber, "token", tok, "over", ev.OverIndex, "ball", ev.BallIndex, "score", e.BattingScore, "wickets", e.BattingWickets)
	return ev, nil
}

// apply assumes tok is normalized and a striker exists.
func (e *Editor) apply(tok string) scoring.BallEvent {
	if len(e.Overs) == 0 {
		e.Overs = []Over{{Balls: []string{}}}
	}
	last := len(e.Overs) - 1
	e.Overs[last].Balls = append(e.Overs[last].Balls, tok)

	ev := scoring.BallEvent{
		Innings:     e.InningsNumber,
		Token:       scoring.BallType(tok),
		IsLegalBall: scoring.IsLegalDelivery(scoring.BallType(tok)),
		OverIndex:   last,
		BallIndex:   len(e.Overs[last].Balls) - 1,
		Timestamp:   e.clock(),
	}

	if legalBalls(e.Overs[last].Balls) >= legalBallsPerOver {
		e.Overs = append(e.Overs, Over{Balls: []string{}})
		ev.IsOverComplete = true
	}

	if tok == string(scoring.BallWicket) {
		e.BattingWickets++
		ev.IsWicket = true
	}

	if runs, err := strconv.Atoi(tok); err == nil {
		striker := e.strikerIndex()
		e.BattingScore += runs
		e.Batsmen[striker].Runs += runs
		e.Batsmen[striker].Balls++
		ev.RunsAdded = runs
		if runs%2 == 1 {
			for i := range e.Batsmen {
				e.Batsmen[i].Striker = !e.Batsmen[i].Striker
			}
			ev.ShouldFlipStrike = true
		}
	}
	return ev
}

// EditBallRun replaces a recorded outcome and replays the innings from the
// opening line-up so score, wickets and strike reflect the corrected ball.
// Over boundaries may move when a legal ball becomes an extra or vice versa.
func (e *Editor) EditBallRun(overIndex, ballIndex int, token string) error {
	tok, err := normalizeToken(token)
	if err != nil {
		return err
	}
	if overIndex < 0 || overIndex >= len(e.Overs) || ballIndex < 0 || ballIndex >= len(e.Overs[overIndex].Balls) {
		return fmt.Errorf("over %d ball %d: %w", overIndex, ballIndex, ErrBallNotFound)
	}

	history := e.History()
	pos := ballIndex
	for i := 0; i < overIndex; i++ {
		pos += len(e.Overs[i].Balls)
	}
	old := history[pos]
	history[pos] = tok

	if err := e.replay(history); err != nil {
		return err
	}
	log.Info("Ball edited and innings replayed", "innings", e.InningsNumber, "over", overIndex, "ball", ballIndex, "from", old, "to", tok)
	return nil
}

// UndoLastBall removes the most recent delivery.
func (e *Editor) UndoLastBall() error {
	history := e.History()
	if len(history) == 0 {
		return ErrNothingToUndo
	}
	return e.replay(history[:len(history)-1])
}

// replay rebuilds the state from the opening line-up. On failure the editor
// is left as it was.
func (e *Editor) replay(tokens []string) error {
	next := &Editor{InningsNumber: e.InningsNumber, Opening: e.Opening, now: e.now}
	next.reset()
	for _, tok := range tokens {
		if next.strikerIndex() == -1 {
			return ErrNoStriker
		}
		next.apply(tok)
	}
	e.Overs = next.Overs
	e.BattingScore = next.BattingScore
	e.BattingWickets = next.BattingWickets
	e.Batsmen = next.Batsmen
	return nil
}

// History returns every recorded token in delivery order.
func (e *Editor) History() []string {
	var out []string
	for _, o := range e.Overs {
		out = append(out, o.Balls...)
	}
	return out
}

// LegalBalls is the number of legal deliveries bowled so far.
func (e *Editor) LegalBalls() int {
	n := 0
	for _, o := range e.Overs {
		n += legalBalls(o.Balls)
	}
	return n
}

// Striker returns the batsman on strike, or nil.
func (e *Editor) Striker() *Batsman {
	if i := e.strikerIndex(); i != -1 {
		return &e.Batsmen[i]
	}
	return nil
}

// Summary returns the scoreboard line for the editor state.
func (e *Editor) Summary() Summary {
	s := Summary{
		Score:       fmt.Sprintf("%d/%d", e.BattingScore, e.BattingWickets),
		Overs:       scoring.OversString(e.LegalBalls()),
		RunRate:     scoring.RunRate(e.BattingScore, scoring.OversFromBalls(e.LegalBalls())),
		CurrentOver: []string{},
	}
	if st := e.Striker(); st != nil {
		s.Striker = st.Name
	}
	if len(e.Overs) > 0 {
		s.CurrentOver = append(s.CurrentOver, e.Overs[len(e.Overs)-1].Balls...)
	}
	return s
}

func (e *Editor) strikerIndex() int {
	for i, b := range e.Batsmen {
		if b.Striker {
			return i
		}
	}
	return -1
}

func legalBalls(balls []string) int {
	n := 0
	for _, b := range balls {
		if scoring.IsLegalDelivery(scoring.BallType(b)) {
			n++
		}
	}
	return n
}

func normalizeToken(token string) (string, error) {
	tok := strings.ToUpper(strings.TrimSpace(token))
	switch scoring.BallType(tok) {
	case scoring.BallDot, scoring.BallOne, scoring.BallTwo, scoring.BallThree, scoring.BallFour,
		scoring.BallFive, scoring.BallSix, scoring.BallWicket, scoring.BallWide, scoring.BallNoBall,
		scoring.BallLegBye, scoring.BallBye:
		return tok, nil
	}
	return "", fmt.Errorf("%q: %w", token, ErrUnknownToken)
}
