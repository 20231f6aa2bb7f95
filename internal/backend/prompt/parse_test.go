package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nlpd/internal/lang"
)

func TestExtractJSON(t *testing.T) {
	got, err := ExtractJSON("Sure!\n```json\n{\"answer\": \"Paris\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, `{"answer": "Paris"}`, got)

	got, err = ExtractJSON(`[{"label":"a"}] trailing`)
	require.NoError(t, err)
	assert.Equal(t, `[{"label":"a"}]`, got)

	_, err = ExtractJSON("no json here")
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestParseAnswerLocatesSpan(t *testing.T) {
	ctx := "Amy lives in Zürich and works in Amsterdam."
	a, err := ParseAnswer(`{"answer": "amsterdam", "score": 0.93}`, ctx)
	require.NoError(t, err)
	assert.Equal(t, "Amsterdam", a.Answer)
	// "ü" is one character, so rune offsets differ from byte offsets.
	assert.EqualValues(t, 33, a.Start)
	assert.EqualValues(t, 42, a.End)
	assert.InDelta(t, 0.93, a.Score, 1e-6)
	assert.Equal(t, "Amsterdam", string([]rune(ctx)[a.Start:a.End]))
}

func TestParseAnswerRejectsInventedSpan(t *testing.T) {
	_, err := ParseAnswer(`{"answer": "Berlin", "score": 0.5}`, "Amy lives in Zürich.")
	assert.Error(t, err)
	_, err = ParseAnswer(`{"answer": "", "score": 0.5}`, "Amy lives in Zürich.")
	assert.Error(t, err)
}

func TestParseLabelsKeepsCandidatesOnly(t *testing.T) {
	labels, err := ParseLabels(
		`[{"label":"Politics","score":0.2},{"label":"sports","score":0.7},{"label":"weather","score":0.1}]`,
		[]string{"politics", "sports", "economy"},
	)
	require.NoError(t, err)
	require.Len(t, labels, 3)
	assert.Equal(t, "sports", labels[0].Label)
	assert.Equal(t, "politics", labels[1].Label)
	assert.Equal(t, "economy", labels[2].Label)
	assert.Zero(t, labels[2].Score)
}

func TestParseLabelsSingleObjectAndNoMatch(t *testing.T) {
	labels, err := ParseLabels(`{"label":"b","score":2}`, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "b", labels[0].Label)
	assert.EqualValues(t, 1, labels[0].Score)

	_, err = ParseLabels(`[{"label":"z","score":1}]`, []string{"a", "b"})
	assert.Error(t, err)
}

func TestParseEntitiesOffsets(t *testing.T) {
	text := "Amy moved from Paris to Paris, Texas with Acme."
	ents, err := ParseEntities(`[
		{"word":"Amy","label":"per","score":0.99},
		{"word":"Paris","label":"LOC","score":0.9},
		{"word":"Paris","label":"LOC","score":0.8},
		{"word":"Texas","label":"LOC","score":0.85},
		{"word":"Gotham","label":"LOC","score":0.4},
		{"word":"Acme","label":"ORG","score":1.7}
	]`, text)
	require.NoError(t, err)
	require.Len(t, ents, 5)
	assert.Equal(t, "PER", ents[0].Label)
	assert.EqualValues(t, 0, ents[0].Offset)
	assert.EqualValues(t, strings.Index(text, "Paris"), ents[1].Offset)
	assert.EqualValues(t, strings.LastIndex(text, "Paris"), ents[2].Offset)
	assert.Equal(t, "Acme", ents[4].Word)
	assert.EqualValues(t, 1, ents[4].Score)
}

func TestParseEntitiesEmpty(t *testing.T) {
	ents, err := ParseEntities("[]", "nothing here")
	require.NoError(t, err)
	assert.Empty(t, ents)
}

func TestPromptsMentionInputs(t *testing.T) {
	assert.Contains(t, Translate(lang.Dutch, lang.English), "from Dutch to English")
	assert.Contains(t, Classify([]string{"a b", "c"}), `"a b", "c"`)
	assert.Contains(t, AnswerInput("who?", "ctx"), "Question:\nwho?")
}
