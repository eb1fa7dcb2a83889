package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}\n```":     `{"a":1}`,
		`{"a":1}`:                 `{"a":1}`,
		"  {\"a\":1}  ":           `{"a":1}`,
	}
	for in, want := range cases {
		assert.Equal(t, want, stripFences(in))
	}
}

func TestParseEvaluation(t *testing.T) {
	raw := "```json\n" + `{
		"score": 85,
		"recommendation": "Apply",
		"priority": 2,
		"match_reasons": ["go experience", "remote"],
		"concerns": ["no salary listed"],
		"salary_assessment": "unknown"
	}` + "\n```"

	eval, err := parseEvaluation(raw)
	require.NoError(t, err)
	assert.Equal(t, 85, eval.Score)
	assert.Equal(t, "apply", eval.Recommendation)
	assert.Equal(t, 2, eval.Priority)
	assert.Equal(t, []string{"go experience", "remote"}, eval.MatchReasons)
	assert.Equal(t, []string{"no salary listed"}, eval.Concerns)
}

func TestParseEvaluation_ClampsScore(t *testing.T) {
	eval, err := parseEvaluation(`{"score": 150, "recommendation": "apply"}`)
	require.NoError(t, err)
	assert.Equal(t, 100, eval.Score)

	eval, err = parseEvaluation(`{"score": -5, "recommendation": "skip"}`)
	require.NoError(t, err)
	assert.Equal(t, 0, eval.Score)
}

func TestParseEvaluation_Malformed(t *testing.T) {
	_, err := parseEvaluation("the vacancy looks great, I would apply")
	assert.Error(t, err)
}

func TestParseEvaluation_IgnoresExtraFields(t *testing.T) {
	eval, err := parseEvaluation(`{"score": 50, "recommendation": "consider", "model_notes": "ignored"}`)
	require.NoError(t, err)
	assert.Equal(t, 50, eval.Score)
	assert.Equal(t, "consider", eval.Recommendation)
}

func TestParseSearchTags_RoundTrip(t *testing.T) {
	raw := `{"suggested_queries": ["rust developer", "backend engineer"]}`
	queries, err := parseSearchTags(raw)
	require.NoError(t, err)
	require.Equal(t, []string{"rust developer", "backend engineer"}, queries)

	// Re-serialising preserves order and membership.
	encoded, err := json.Marshal(searchTagsReply{SuggestedQueries: queries})
	require.NoError(t, err)

	decoded, err := parseSearchTags(string(encoded))
	require.NoError(t, err)
	assert.Equal(t, queries, decoded)
}

func TestParseMessageAnalysis(t *testing.T) {
	analysis, err := parseMessageAnalysis("```json\n" +
		`{"sentiment": "positive", "intent": "schedule call", "is_bot": false, "should_invite_telegram": true}` +
		"\n```")
	require.NoError(t, err)
	assert.Equal(t, "positive", analysis.Sentiment)
	assert.Equal(t, "schedule call", analysis.Intent)
	assert.False(t, analysis.IsBot)
	assert.True(t, analysis.ShouldInviteTelegram)
}

func TestParseMessageAnalysis_MissingKeysDefault(t *testing.T) {
	analysis, err := parseMessageAnalysis(`{"sentiment": "neutral"}`)
	require.NoError(t, err)
	assert.False(t, analysis.IsBot)
	assert.False(t, analysis.ShouldInviteTelegram)
}

func TestIsBotMessage(t *testing.T) {
	assert.True(t, IsBotMessage("Это автоматическое сообщение, не отвечайте на него."))
	assert.True(t, IsBotMessage("Please fill out the form at https://example.com/survey"))
	assert.True(t, IsBotMessage("THIS IS AN AUTOMATED message from our hiring system"))
	assert.False(t, IsBotMessage("Hi! Can we schedule a call tomorrow?"))
	assert.False(t, IsBotMessage("Добрый день, когда вам удобно созвониться?"))
}

func TestFormatSalary(t *testing.T) {
	from, to := 100000, 150000
	assert.Equal(t, "100000 - 150000", formatSalary(&from, &to))
	assert.Equal(t, "from 100000", formatSalary(&from, nil))
	assert.Equal(t, "up to 150000", formatSalary(nil, &to))
	assert.Equal(t, "not specified", formatSalary(nil, nil))
}
