package anthropic

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replytomic/replytomic/internal/ai"
)

var parseNow = time.UnixMilli(1700000000000)

func TestParseReplies_PlainJSON(t *testing.T) {
	payload := `[
		{"tone": "helpful", "text": "Here is a tip."},
		{"tone": "witty", "text": "Ha, good one!"}
	]`

	replies, err := ParseReplies(payload, []string{"helpful", "witty"}, 280, parseNow)
	require.NoError(t, err)
	require.Len(t, replies, 2)

	assert.Equal(t, "helpful", replies[0].Tone)
	assert.Equal(t, "Here is a tip.", replies[0].Text)
	assert.Equal(t, "reply-1700000000000-0", replies[0].ID)
	assert.Equal(t, "reply-1700000000000-1", replies[1].ID)
}

func TestParseReplies_StripsCodeFences(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"json fence", "```json\n[{\"tone\":\"casual\",\"text\":\"hey\"}]\n```"},
		{"bare fence", "```\n[{\"tone\":\"casual\",\"text\":\"hey\"}]\n```"},
		{"fence without newline", "```json[{\"tone\":\"casual\",\"text\":\"hey\"}]```"},
		{"surrounding whitespace", "  \n[{\"tone\":\"casual\",\"text\":\"hey\"}]\n  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			replies, err := ParseReplies(tt.payload, []string{"casual"}, 100, parseNow)
			require.NoError(t, err)
			require.Len(t, replies, 1)
			assert.Equal(t, "hey", replies[0].Text)
		})
	}
}

func TestParseReplies_MalformedOutput(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"prose instead of json", "Sure! Here are five great replies for you."},
		{"object instead of array", `{"tone":"helpful","text":"hi"}`},
		{"truncated array", `[{"tone":"helpful","text":"hi"`},
		{"empty array", `[]`},
		{"empty string", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReplies(tt.payload, []string{"helpful"}, 280, parseNow)
			require.Error(t, err)
			assert.ErrorIs(t, err, ai.ErrMalformedOutput)
		})
	}
}

func TestParseReplies_ToneBackfill(t *testing.T) {
	payload := `[
		{"text": "one"},
		{"tone": "witty", "text": "two"},
		{"text": "three"},
		{"text": "four"}
	]`

	replies, err := ParseReplies(payload, []string{"helpful", "casual"}, 280, parseNow)
	require.NoError(t, err)
	require.Len(t, replies, 4)

	// Missing tones cycle through the requested list by index.
	assert.Equal(t, "helpful", replies[0].Tone)
	assert.Equal(t, "witty", replies[1].Tone)
	assert.Equal(t, "helpful", replies[2].Tone)
	assert.Equal(t, "casual", replies[3].Tone)
}

func TestParseReplies_ToneBackfillWithoutRequestedTones(t *testing.T) {
	replies, err := ParseReplies(`[{"text":"hi"}]`, nil, 280, parseNow)
	require.NoError(t, err)
	assert.Equal(t, "helpful", replies[0].Tone)
}

func TestParseReplies_LengthIsRuneCount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"ascii", "hello", 5},
		{"accents", "café", 4},
		{"emoji", "nice 🎉🎉", 7},
		{"cjk", "返信ありがとう", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			replies, err := ParseReplies(`[{"tone":"helpful","text":"`+tt.text+`"}]`, []string{"helpful"}, 280, parseNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, replies[0].Length)
		})
	}
}

func TestParseReplies_WithinLimitBoundary(t *testing.T) {
	atLimit := strings.Repeat("a", 100)
	overLimit := strings.Repeat("a", 101)

	replies, err := ParseReplies(
		`[{"tone":"helpful","text":"`+atLimit+`"},{"tone":"casual","text":"`+overLimit+`"}]`,
		[]string{"helpful", "casual"}, 100, parseNow)
	require.NoError(t, err)

	assert.True(t, replies[0].WithinLimit, "text exactly at the limit counts as within it")
	assert.False(t, replies[1].WithinLimit)
	assert.Equal(t, 101, replies[1].Length, "over-limit text is kept, only flagged")
}
