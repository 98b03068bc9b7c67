package scoring

import "time"

// BallType is the outcome tag recorded for a single delivery.
type BallType string

const (
	BallDot    BallType = "0"
	BallOne    BallType = "1"
	BallTwo    BallType = "2"
	BallThree  BallType = "3"
	BallFour   BallType = "4"
	BallFive   BallType = "5"
	BallSix    BallType = "6"
	BallWicket BallType = "W"
	BallWide   BallType = "WD"
	BallNoBall BallType = "NB"
	BallLegBye BallType = "LB"
	BallBye    BallType = "B"
)

// DismissalType describes how a batter left the innings.
type DismissalType string

const (
	DismissalBowled      DismissalType = "bowled"
	DismissalCaught      DismissalType = "caught"
	DismissalLBW         DismissalType = "lbw"
	DismissalRunOut      DismissalType = "run_out"
	DismissalStumped     DismissalType = "stumped"
	DismissalHitWicket   DismissalType = "hit_wicket"
	DismissalRetiredHurt DismissalType = "retired_hurt"
	DismissalRetiredOut  DismissalType = "retired_out"
)

// MatchStatus is the lifecycle state reported by the feed for a match.
type MatchStatus string

const (
	MatchStatusUpcoming  MatchStatus = "upcoming"
	MatchStatusLive      MatchStatus = "live"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusAbandoned MatchStatus = "abandoned"
)

// Match is the full snapshot of a match as held by the live view.
type Match struct {
	ID      string    `json:"id"`
	TeamA   Team      `json:"teamA"`
	TeamB   Team      `json:"teamB"`
	Meta    Meta      `json:"meta"`
	Innings []Innings `json:"innings"`
}

// Team identifies one side of a match.
type Team struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName,omitempty"`
}

// Meta holds match level metadata.
type Meta struct {
	Format      string      `json:"format"`
	Status      MatchStatus `json:"status"`
	Venue       string      `json:"venue"`
	TotalOvers  int         `json:"totalOvers,omitempty"`
	LastUpdated time.Time   `json:"lastUpdated"`
	Winner      string      `json:"winner,omitempty"`
	Margin      string      `json:"margin,omitempty"`
}

// Innings is one team's turn batting.
type Innings struct {
	ID            string            `json:"id"`
	InningsNumber int               `json:"inningsNumber"`
	BattingTeam   string            `json:"battingTeam"`
	BowlingTeam   string            `json:"bowlingTeam"`
	IsCompleted   bool              `json:"isCompleted"`
	Score         Score             `json:"score"`
	Batting       Batting           `json:"batting"`
	Dismissed     []DismissedBatter `json:"dismissed"`
	Bowling       []Bowler          `json:"bowling"`
	CurrentOver   CurrentOver       `json:"currentOver"`
}

// Score is the running total for an innings. Balls counts legal deliveries only.
type Score struct {
	Runs    int    `json:"runs"`
	Wickets int    `json:"wickets"`
	Balls   int    `json:"balls"`
	Overs   string `json:"overs"`
}

// Batting is the pair of batters currently at the crease.
type Batting struct {
	Striker    *Batsman `json:"striker"`
	NonStriker *Batsman `json:"nonStriker"`
}

// Batsman is a batter's stat line.
type Batsman struct {
	Name       string `json:"name"`
	Runs       int    `json:"runs"`
	Balls      int    `json:"balls"`
	Fours      int    `json:"fours"`
	Sixes      int    `json:"sixes"`
	StrikeRate string `json:"strikeRate"`
}

// DismissedBatter is a batter who has left the innings.
type DismissedBatter struct {
	Batsman
	Dismissal Dismissal `json:"dismissal"`
}

// Dismissal describes the wicket that ended a batter's innings.
type Dismissal struct {
	Type    DismissalType `json:"type"`
	Bowler  string        `json:"bowler,omitempty"`
	Fielder string        `json:"fielder,omitempty"`
}

// Bowler is a bowler's figures for the innings.
type Bowler struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Balls   int    `json:"balls"`
	Runs    int    `json:"runs"`
	Wickets int    `json:"wickets"`
	Maidens int    `json:"maidens"`
	Overs   string `json:"overs"`
	Economy string `json:"economy"`
}

// CurrentOver is the over in progress.
type CurrentOver struct {
	OverNumber        int    `json:"overNumber"`
	IsOverComplete    bool   `json:"isOverComplete"`
	BowlerID          string `json:"bowlerId,omitempty"`
	BallsCount        int    `json:"ballsCount"`
	IllegalBallsCount int    `json:"illegalBallsCount"`
	Balls             []Ball `json:"balls"`
}

// Ball is a single delivery within the current over.
type Ball struct {
	BallNumber int      `json:"ballNumber"`
	Type       BallType `json:"type"`
	Runs       int      `json:"runs"`
	IsWicket   bool     `json:"isWicket"`
}

// BallEvent describes the effect of one delivery on an innings. Producers compute
// IsOverComplete and ShouldFlipStrike; consumers trust them.
type BallEvent struct {
	Innings          int       `json:"innings"`
	RunsAdded        int       `json:"runsAdded"`
	IsLegalBall      bool      `json:"isLegalBall"`
	IsWicket         bool      `json:"isWicket"`
	IsOverComplete   bool      `json:"isOverComplete"`
	ShouldFlipStrike bool      `json:"shouldFlipStrike"`
	OverIndex        int       `json:"overIndex"`
	BallIndex        int       `json:"ballIndex"`
	Token            BallType  `json:"token"`
	Timestamp        time.Time `json:"timestamp"`
}
