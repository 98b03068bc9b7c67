package scoring

import (
	"fmt"
	"strconv"
	"strings"
)

const ballsPerOver = 6

// zeroRate is returned by every rate when its denominator is zero.
const zeroRate = "0.00"

// OversString formats a legal ball count as overs, e.g. 13 -> "2.1" and 12 -> "2".
func OversString(balls int) string {
	if balls < 0 {
		balls = 0
	}
	overs := balls / ballsPerOver
	rem := balls % ballsPerOver
	if rem == 0 {
		return strconv.Itoa(overs)
	}
	return fmt.Sprintf("%d.%d", overs, rem)
}

// OversFromBalls converts a legal ball count to fractional overs for rate maths.
func OversFromBalls(balls int) float64 {
	if balls <= 0 {
		return 0
	}
	return float64(balls) / ballsPerOver
}

// StrikeRate is runs per hundred balls faced.
func StrikeRate(runs, balls int) string {
	if balls <= 0 {
		return zeroRate
	}
	return formatRate(float64(runs) / float64(balls) * 100)
}

// Economy is runs conceded per over bowled.
func Economy(runs, balls int) string {
	if balls <= 0 {
		return zeroRate
	}
	return formatRate(float64(runs) / OversFromBalls(balls))
}

// RunRate is runs scored per over faced.
func RunRate(runs int, oversFaced float64) string {
	if oversFaced <= 0 {
		return zeroRate
	}
	return formatRate(float64(runs) / oversFaced)
}

// RequiredRunRate is the rate the chasing side needs over the remaining overs.
// It is only meaningful while oversFaced < totalOvers.
func RequiredRunRate(target, runs int, totalOvers, oversFaced float64) string {
	remaining := totalOvers - oversFaced
	if remaining <= 0 {
		return zeroRate
	}
	needed := target - runs
	if needed <= 0 {
		return zeroRate
	}
	return formatRate(float64(needed) / remaining)
}

func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// IsLegalDelivery reports whether a ball counts toward the six-ball over.
// Wides and no-balls do not; leg-byes and byes do.
func IsLegalDelivery(t BallType) bool {
	switch BallType(strings.ToUpper(string(t))) {
	case BallWide, BallNoBall:
		return false
	}
	return true
}

// Derive fills the display strings of an innings that the producer left empty.
func (in *Innings) Derive() {
	if in.Score.Overs == "" {
		in.Score.Overs = OversString(in.Score.Balls)
	}
	if in.Batting.Striker != nil && in.Batting.Striker.StrikeRate == "" {
		in.Batting.Striker.StrikeRate = StrikeRate(in.Batting.Striker.Runs, in.Batting.Striker.Balls)
	}
	if in.Batting.NonStriker != nil && in.Batting.NonStriker.StrikeRate == "" {
		in.Batting.NonStriker.StrikeRate = StrikeRate(in.Batting.NonStriker.Runs, in.Batting.NonStriker.Balls)
	}
	for i := range in.Dismissed {
		if in.Dismissed[i].StrikeRate == "" {
			in.Dismissed[i].StrikeRate = StrikeRate(in.Dismissed[i].Runs, in.Dismissed[i].Balls)
		}
	}
	for i := range in.Bowling {
		if in.Bowling[i].Overs == "" {
			in.Bowling[i].Overs = OversString(in.Bowling[i].Balls)
		}
		if in.Bowling[i].Economy == "" {
			in.Bowling[i].Economy = Economy(in.Bowling[i].Runs, in.Bowling[i].Balls)
		}
	}
}

// RunRate returns the innings' current run rate.
func (in Innings) RunRate() string {
	return RunRate(in.Score.Runs, OversFromBalls(in.Score.Balls))
}
