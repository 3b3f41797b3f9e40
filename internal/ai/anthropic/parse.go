package anthropic

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/replytomic/replytomic/internal/ai"
	"github.com/replytomic/replytomic/internal/domain"
)

// rawReply is one element of the JSON array the model is instructed to
// return. The provider-supplied length is ignored; length is recomputed
// from the text.
type rawReply struct {
	Tone string `json:"tone"`
	Text string `json:"text"`
}

// ParseReplies turns the model's textual payload into reply candidates.
//
// The payload may be wrapped in markdown code fences; those are stripped
// before parsing. Each element gets:
//   - a length computed from the text (character count, not bytes)
//   - a within-limit flag against the platform's ceiling
//   - an id unique within the response, derived from now and the index
//   - a tone backfilled from the requested list (index modulo its length)
//     when the model omitted one
func ParseReplies(payload string, tones []string, maxLength int, now time.Time) ([]domain.Reply, error) {
	cleaned := stripCodeFences(payload)

	var raw []rawReply
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ai.ErrMalformedOutput, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty reply array", ai.ErrMalformedOutput)
	}

	millis := now.UnixMilli()
	replies := make([]domain.Reply, 0, len(raw))
	for i, r := range raw {
		tone := r.Tone
		if tone == "" && len(tones) > 0 {
			tone = tones[i%len(tones)]
		}
		if tone == "" {
			tone = "helpful"
		}

		length := utf8.RuneCountInString(r.Text)
		replies = append(replies, domain.Reply{
			ID:          fmt.Sprintf("reply-%d-%d", millis, i),
			Tone:        tone,
			Text:        r.Text,
			Length:      length,
			WithinLimit: length <= maxLength,
		})
	}

	return replies, nil
}

// stripCodeFences removes surrounding ```json / ``` markers when present.
func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
