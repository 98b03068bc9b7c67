package scoring

import "github.com/charmbracelet/log"

// ApplyBallEvent folds a ball event into the innings with the matching innings
// number, mutating it in place. An event for an innings that is not present is
// ignored and reported as not applied; events can race ahead of the snapshot.
//
// Strike rotation and over rollover are the producer's job. The flags on the
// event are trusted as is.
func ApplyBallEvent(innings []Innings, ev BallEvent) bool {
	idx := -1
	for i := range innings {
		if innings[i].InningsNumber == ev.Innings {
			idx = i
			break
		}
	}
	if idx == -1 {
		log.Debug("Ball event for unknown innings ignored", "innings", ev.Innings)
		return false
	}

	in := &innings[idx]
	in.Score.Runs += ev.RunsAdded
	if ev.IsLegalBall {
		in.Score.Balls++
	}
	if ev.IsWicket {
		in.Score.Wickets++
	}
	in.Score.Overs = OversString(in.Score.Balls)
	return true
}
