package livescore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mauv0809/wicketkeeper/internal/scoring"
	"github.com/vmihailenco/msgpack/v5"
)

// FlexID is an identifier that producers send either as a JSON string or as a
// number. It always compares as a string.
type FlexID string

func (f *FlexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*f = FlexID(normalizeNumber(n.String()))
	return nil
}

func (f FlexID) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeString(string(f))
}

func (f *FlexID) DecodeMsgpack(dec *msgpack.Decoder) error {
	v, err := dec.DecodeInterfaceLoose()
	if err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*f = ""
	case string:
		*f = FlexID(t)
	case int64:
		*f = FlexID(strconv.FormatInt(t, 10))
	case uint64:
		*f = FlexID(strconv.FormatUint(t, 10))
	case float64:
		*f = FlexID(normalizeNumber(strconv.FormatFloat(t, 'f', -1, 64)))
	default:
		return fmt.Errorf("id must be a string or a number, got %T", v)
	}
	return nil
}

// normalizeNumber drops a zero fraction so 5 and 5.0 name the same innings.
func normalizeNumber(s string) string {
	if i := strings.IndexByte(s, '.'); i != -1 && strings.Trim(s[i+1:], "0") == "" {
		return s[:i]
	}
	return s
}

// RunsOrWicket is the outcome of a ball on the wire: a run count, or "W".
type RunsOrWicket struct {
	Runs   int
	Wicket bool
}

func (r RunsOrWicket) MarshalJSON() ([]byte, error) {
	if r.Wicket {
		return []byte(`"W"`), nil
	}
	return []byte(strconv.Itoa(r.Runs)), nil
}

func (r *RunsOrWicket) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		return r.parse(s)
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("runsOrWicket must be a number or \"W\": %w", err)
	}
	*r = RunsOrWicket{Runs: n}
	return nil
}

func (r RunsOrWicket) EncodeMsgpack(enc *msgpack.Encoder) error {
	if r.Wicket {
		return enc.EncodeString(string(scoring.BallWicket))
	}
	return enc.EncodeInt(int64(r.Runs))
}

func (r *RunsOrWicket) DecodeMsgpack(dec *msgpack.Decoder) error {
	v, err := dec.DecodeInterfaceLoose()
	if err != nil {
		return err
	}
	switch t := v.(type) {
	case string:
		return r.parse(t)
	case int64:
		*r = RunsOrWicket{Runs: int(t)}
	case uint64:
		*r = RunsOrWicket{Runs: int(t)}
	case float64:
		*r = RunsOrWicket{Runs: int(t)}
	default:
		return fmt.Errorf("runsOrWicket must be a number or \"W\", got %T", v)
	}
	return nil
}

func (r *RunsOrWicket) parse(s string) error {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, string(scoring.BallWicket)) {
		*r = RunsOrWicket{Wicket: true}
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("runsOrWicket %q is neither a number nor \"W\"", s)
	}
	*r = RunsOrWicket{Runs: n}
	return nil
}

// InningsPayload is one live message: a snapshot of a single innings. Pointer
// and nil-able fields distinguish "omitted" from "zero".
type InningsPayload struct {
	ID            FlexID              `json:"id"`
	IsCompleted   *bool               `json:"isCompleted,omitempty"`
	InningsNumber *int                `json:"inningsNumber,omitempty"`
	BattingTeam   *string             `json:"battingTeam,omitempty"`
	BowlingTeam   *string             `json:"bowlingTeam,omitempty"`
	Score         *ScorePayload       `json:"score,omitempty"`
	Batting       *BattingPayload     `json:"batting,omitempty"`
	Dismissed     []DismissedPayload  `json:"dismissed,omitempty"`
	Bowling       []BowlerPayload     `json:"bowling,omitempty"`
	CurrentOver   *CurrentOverPayload `json:"currentOver,omitempty"`
}

type ScorePayload struct {
	Runs    int `json:"runs"`
	Wickets int `json:"wickets"`
	Balls   int `json:"balls"`
}

type BattingPayload struct {
	Striker    *BatsmanPayload `json:"striker,omitempty"`
	NonStriker *BatsmanPayload `json:"nonStriker,omitempty"`
}

type BatsmanPayload struct {
	Name       string `json:"name"`
	Runs       int    `json:"runs"`
	Balls      int    `json:"balls"`
	Fours      int    `json:"fours,omitempty"`
	Sixes      int    `json:"sixes,omitempty"`
	StrikeRate string `json:"strikeRate,omitempty"`
}

type DismissedPayload struct {
	BatsmanPayload
	Dismissal scoring.Dismissal `json:"dismissal"`
}

type BowlerPayload struct {
	ID      FlexID `json:"id,omitempty"`
	Name    string `json:"name"`
	Balls   int    `json:"balls"`
	Runs    int    `json:"runs"`
	Wickets int    `json:"wickets"`
	Maidens int    `json:"maidens,omitempty"`
	Economy string `json:"economy,omitempty"`
}

type CurrentOverPayload struct {
	OverNumber        int           `json:"overNumber"`
	IsOverComplete    bool          `json:"isOverComplete"`
	BowlerID          FlexID        `json:"bowlerId,omitempty"`
	BallsCount        int           `json:"ballsCount"`
	IllegalBallsCount int           `json:"illegalBallsCount"`
	Balls             []BallPayload `json:"balls"`
}

type BallPayload struct {
	BallNumber   int              `json:"ballNumber"`
	Type         scoring.BallType `json:"type,omitempty"`
	RunsOrWicket RunsOrWicket     `json:"runsOrWicket"`
}

// Partial holds the canonical fields carried by a payload. Nil means the
// payload did not carry the field.
type Partial struct {
	IsCompleted   *bool
	InningsNumber *int
	BattingTeam   *string
	BowlingTeam   *string
	Score         *scoring.Score
	Batting       *scoring.Batting
	Dismissed     []scoring.DismissedBatter
	Bowling       []scoring.Bowler
	CurrentOver   *scoring.CurrentOver
}

// ToPartial converts the wire shape into canonical pieces, deriving the overs
// string and any strike rate or economy the producer did not pre-format.
func (p InningsPayload) ToPartial() Partial {
	out := Partial{
		IsCompleted:   p.IsCompleted,
		InningsNumber: p.InningsNumber,
		BattingTeam:   p.BattingTeam,
		BowlingTeam:   p.BowlingTeam,
	}
	if p.Score != nil {
		out.Score = &scoring.Score{
			Runs:    p.Score.Runs,
			Wickets: p.Score.Wickets,
			Balls:   p.Score.Balls,
			Overs:   scoring.OversString(p.Score.Balls),
		}
	}
	if p.Batting != nil {
		out.Batting = &scoring.Batting{
			Striker:    p.Batting.Striker.toBatsman(),
			NonStriker: p.Batting.NonStriker.toBatsman(),
		}
	}
	if p.Dismissed != nil {
		out.Dismissed = make([]scoring.DismissedBatter, 0, len(p.Dismissed))
		for i := range p.Dismissed {
			d := p.Dismissed[i]
			out.Dismissed = append(out.Dismissed, scoring.DismissedBatter{
				Batsman:   *d.BatsmanPayload.toBatsman(),
				Dismissal: d.Dismissal,
			})
		}
	}
	if p.Bowling != nil {
		out.Bowling = make([]scoring.Bowler, 0, len(p.Bowling))
		for _, b := range p.Bowling {
			out.Bowling = append(out.Bowling, b.toBowler())
		}
	}
	if p.CurrentOver != nil {
		out.CurrentOver = p.CurrentOver.toCurrentOver()
	}
	return out
}

// Over lays the partial over a prior innings. Fields the payload carried win;
// the rest are kept from prior.
func (pt Partial) Over(prior scoring.Innings) scoring.Innings {
	next := prior
	if pt.IsCompleted != nil {
		next.IsCompleted = *pt.IsCompleted
	}
	if pt.InningsNumber != nil {
		next.InningsNumber = *pt.InningsNumber
	}
	if pt.BattingTeam != nil {
		next.BattingTeam = *pt.BattingTeam
	}
	if pt.BowlingTeam != nil {
		next.BowlingTeam = *pt.BowlingTeam
	}
	if pt.Score != nil {
		next.Score = *pt.Score
	}
	if pt.Batting != nil {
		next.Batting = *pt.Batting
	}
	if pt.Dismissed != nil {
		next.Dismissed = pt.Dismissed
	}
	if pt.Bowling != nil {
		next.Bowling = pt.Bowling
	}
	if pt.CurrentOver != nil {
		next.CurrentOver = *pt.CurrentOver
	}
	return next
}

func (b *BatsmanPayload) toBatsman() *scoring.Batsman {
	if b == nil {
		return nil
	}
	sr := b.StrikeRate
	if sr == "" {
		sr = scoring.StrikeRate(b.Runs, b.Balls)
	}
	return &scoring.Batsman{
		Name:       b.Name,
		Runs:       b.Runs,
		Balls:      b.Balls,
		Fours:      b.Fours,
		Sixes:      b.Sixes,
		StrikeRate: sr,
	}
}

func (b BowlerPayload) toBowler() scoring.Bowler {
	econ := b.Economy
	if econ == "" {
		econ = scoring.Economy(b.Runs, b.Balls)
	}
	return scoring.Bowler{
		ID:      string(b.ID),
		Name:    b.Name,
		Balls:   b.Balls,
		Runs:    b.Runs,
		Wickets: b.Wickets,
		Maidens: b.Maidens,
		Overs:   scoring.OversString(b.Balls),
		Economy: econ,
	}
}

func (c *CurrentOverPayload) toCurrentOver() *scoring.CurrentOver {
	balls := make([]scoring.Ball, 0, len(c.Balls))
	for _, b := range c.Balls {
		typ := b.Type
		if typ == "" {
			if b.RunsOrWicket.Wicket {
				typ = scoring.BallWicket
			} else {
				typ = scoring.BallType(strconv.Itoa(b.RunsOrWicket.Runs))
			}
		}
		balls = append(balls, scoring.Ball{
			BallNumber: b.BallNumber,
			Type:       typ,
			Runs:       b.RunsOrWicket.Runs,
			IsWicket:   b.RunsOrWicket.Wicket,
		})
	}
	return &scoring.CurrentOver{
		OverNumber:        c.OverNumber,
		IsOverComplete:    c.IsOverComplete,
		BowlerID:          string(c.BowlerID),
		BallsCount:        c.BallsCount,
		IllegalBallsCount: c.IllegalBallsCount,
		Balls:             balls,
	}
}

// MatchPayload is the full match snapshot returned by the match API.
type MatchPayload struct {
	ID      FlexID           `json:"id"`
	TeamA   scoring.Team     `json:"teamA"`
	TeamB   scoring.Team     `json:"teamB"`
	Meta    scoring.Meta     `json:"meta"`
	Innings []InningsPayload `json:"innings"`
}

// ToMatch converts the fetched snapshot into the canonical match.
func (p MatchPayload) ToMatch() *scoring.Match {
	m := &scoring.Match{
		ID:      string(p.ID),
		TeamA:   p.TeamA,
		TeamB:   p.TeamB,
		Meta:    p.Meta,
		Innings: make([]scoring.Innings, 0, len(p.Innings)),
	}
	for i, ip := range p.Innings {
		in := ip.ToPartial().Over(scoring.Innings{ID: string(ip.ID), InningsNumber: i + 1})
		in.Derive()
		m.Innings = append(m.Innings, in)
	}
	return m
}
