package slack

import (
	"context"
	"errors"
	"testing"

	"github.com/mauv0809/wicketkeeper/internal/metrics"
	"github.com/mauv0809/wicketkeeper/internal/scoring"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	postMessageContextFunc func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.postMessageContextFunc != nil {
		return m.postMessageContextFunc(ctx, channelID, options...)
	}
	return "C12345", "123456789.12345", nil
}

func fixture() (*scoring.Match, scoring.Innings) {
	match := &scoring.Match{
		ID:    "m1",
		TeamA: scoring.Team{ID: "a", Name: "Lions"},
		TeamB: scoring.Team{ID: "b", Name: "Tigers"},
	}
	in := scoring.Innings{
		ID:            "5",
		InningsNumber: 1,
		BattingTeam:   "a",
		BowlingTeam:   "b",
		Score:         scoring.Score{Runs: 86, Wickets: 3, Balls: 61, Overs: "10.1"},
		Bowling: []scoring.Bowler{
			{Name: "Starc", Balls: 24, Runs: 30, Wickets: 1},
			{Name: "Cummins", Balls: 24, Runs: 18, Wickets: 2},
			{Name: "Lyon", Balls: 13, Runs: 12, Wickets: 2},
		},
	}
	return match, in
}

func TestSendMessage_DryRun(t *testing.T) {
	metrics := metrics.NewMock()
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	notifier := NewNotifierWithAPI(nil, "C123", metrics)

	message := slackapi.NewBlockMessage()
	_, _, err := notifier.sendMessage(message, true)
	require.NoError(t, err)
	assert.Equal(t, 0, metrics.SlackNotifSent())
}

func TestSendMessage_Success(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			assert.Equal(t, "C123", channelID)
			return "C123", "ts123", nil
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage(slackapi.NewSectionBlock(slackapi.NewTextBlockObject("plain_text", "hello", false, false), nil, nil))
	_, _, err := notifier.sendMessage(message, false)

	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 1, metrics.SlackNotifSent())
	assert.Equal(t, 0, metrics.SlackNotifFailed())
}

func TestSendMessage_Failure(t *testing.T) {
	expectedErr := errors.New("slack API is down")
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			return "", "", expectedErr
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	_, _, err := notifier.sendMessage(slackapi.NewBlockMessage(), false)

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 0, metrics.SlackNotifSent())
	assert.Equal(t, 1, metrics.SlackNotifFailed())
}

func TestSendWicketNotification_CallsSender(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			return "C123", "ts123", nil
		},
	}
	notifier := NewNotifierWithAPI(api, "C123", metrics.NewMock())
	match, in := fixture()

	err := notifier.SendWicketNotification(match, in, scoring.DismissedBatter{Batsman: scoring.Batsman{Name: "Root"}}, false)
	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called via SendWicketNotification")
}

func TestFormatWicket(t *testing.T) {
	match, in := fixture()
	out := scoring.DismissedBatter{
		Batsman:   scoring.Batsman{Name: "Root", Runs: 42, Balls: 35},
		Dismissal: scoring.Dismissal{Type: scoring.DismissalCaught, Bowler: "Cummins", Fielder: "Smith"},
	}
	client := &Notifier{channelID: "C123"}
	msg := client.formatWicket(match, in, out)
	require.Len(t, msg.Blocks.BlockSet, 3)

	header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
	require.True(t, ok, "First block should be a HeaderBlock")
	assert.Equal(t, "🏏 Wicket!", header.Text.Text)

	details, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Equal(t, "Root c Smith b Cummins 42 (35)", details.Text.Text)

	contextBlock, ok := msg.Blocks.BlockSet[2].(*slackapi.ContextBlock)
	require.True(t, ok)
	score, ok := contextBlock.ContextElements.Elements[0].(*slackapi.TextBlockObject)
	require.True(t, ok)
	assert.Equal(t, "Lions 86/3 (10.1 ov)", score.Text)
}

func TestDismissalText(t *testing.T) {
	cases := []struct {
		d    scoring.Dismissal
		want string
	}{
		{scoring.Dismissal{Type: scoring.DismissalBowled, Bowler: "Starc"}, "b Starc"},
		{scoring.Dismissal{Type: scoring.DismissalLBW, Bowler: "Starc"}, "lbw b Starc"},
		{scoring.Dismissal{Type: scoring.DismissalCaught, Bowler: "Lyon", Fielder: "Lyon"}, "c & b Lyon"},
		{scoring.Dismissal{Type: scoring.DismissalStumped, Bowler: "Lyon", Fielder: "Carey"}, "st Carey b Lyon"},
		{scoring.Dismissal{Type: scoring.DismissalRunOut}, "run out"},
		{scoring.Dismissal{Type: scoring.DismissalRunOut, Fielder: "Head"}, "run out (Head)"},
		{scoring.Dismissal{Type: scoring.DismissalRetiredOut}, "retired out"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, dismissalText(c.d))
	}
}

func TestFormatMilestone(t *testing.T) {
	match, in := fixture()
	client := &Notifier{channelID: "C123"}
	msg := client.formatMilestone(match, in, scoring.Batsman{Name: "Root", Runs: 101, Balls: 80, Fours: 10, Sixes: 2, StrikeRate: "126.25"}, 100)
	require.Len(t, msg.Blocks.BlockSet, 3)

	header := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
	assert.Equal(t, "🏏 Hundred for Root!", header.Text.Text)
	details := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	assert.Equal(t, "101 off 80 balls (4s: 10, 6s: 2, SR 126.25)", details.Text.Text)
}

func TestFormatInningsComplete(t *testing.T) {
	match, in := fixture()
	client := &Notifier{channelID: "C123"}
	msg := client.formatInningsComplete(match, in)
	require.Len(t, msg.Blocks.BlockSet, 3)

	header := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
	assert.Equal(t, "🏏 Innings 1 complete", header.Text.Text)

	summary := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	assert.Equal(t, "Lions 86/3 (10.1 ov)\nRun rate: 8.46", summary.Text.Text)

	bowling := msg.Blocks.BlockSet[2].(*slackapi.ContextBlock)
	best := bowling.ContextElements.Elements[0].(*slackapi.TextBlockObject)
	assert.Equal(t, "Best bowling: Lyon 2/12 (2.1)", best.Text)

	t.Run("no bowling figures", func(t *testing.T) {
		in.Bowling = nil
		msg := client.formatInningsComplete(match, in)
		assert.Len(t, msg.Blocks.BlockSet, 2)
	})
}

func TestFormatScoreResponse(t *testing.T) {
	notifier := NewNotifierWithAPI(&mockSlackAPI{}, "C123", metrics.NewMock())

	t.Run("no live match", func(t *testing.T) {
		msg, err := notifier.FormatScoreResponse(nil)
		require.NoError(t, err)
		slackMsg, ok := msg.(slackapi.Message)
		require.True(t, ok)
		require.Len(t, slackMsg.Blocks.BlockSet, 1)
	})

	t.Run("live match", func(t *testing.T) {
		match, in := fixture()
		match.Meta = scoring.Meta{Status: scoring.MatchStatusLive, Venue: "Oval"}
		in.Batting = scoring.Batting{
			Striker:    &scoring.Batsman{Name: "Opener A", Runs: 40, Balls: 30},
			NonStriker: &scoring.Batsman{Name: "No4", Runs: 10, Balls: 8},
		}
		match.Innings = []scoring.Innings{in, {ID: "6", InningsNumber: 2, BattingTeam: "b"}}

		msg, err := notifier.FormatScoreResponse(match)
		require.NoError(t, err)
		slackMsg, ok := msg.(slackapi.Message)
		require.True(t, ok)

		blocks := slackMsg.Blocks.BlockSet
		require.Len(t, blocks, 4, "header, one scored innings, crease, status")
		header, ok := blocks[0].(*slackapi.HeaderBlock)
		require.True(t, ok)
		assert.Equal(t, "🏏 Lions vs Tigers", header.Text.Text)
		section, ok := blocks[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, section.Text.Text, "Lions 86/3 (10.1 ov)")
	})
}
