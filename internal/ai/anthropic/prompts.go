package anthropic

import (
	"fmt"
	"strings"

	"github.com/replytomic/replytomic/internal/ai"
)

// buildReplyPrompt creates the instruction template for one generation
// call, parameterized by the target platform's rules and the requested
// tones. The template is deterministic for a given input.
func buildReplyPrompt(params ai.GenerateParams) string {
	p := params.Platform

	originalPost := params.OriginalPost
	if originalPost == "" {
		originalPost = "Not provided"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert at crafting engaging social media replies for %s.\n\n", p.Name)
	fmt.Fprintf(&b, "ORIGINAL POST (for context):\n%s\n\n", originalPost)
	fmt.Fprintf(&b, "COMMENT TO REPLY TO:\n%q\n\n", params.Comment)
	fmt.Fprintf(&b, "PLATFORM: %s\n", p.Name)
	fmt.Fprintf(&b, "CHARACTER LIMIT: %d\n", p.MaxLength)
	fmt.Fprintf(&b, "RECOMMENDED LENGTH: %d\n", p.RecommendedLength)
	fmt.Fprintf(&b, "STYLE: %s\n", p.Style)
	fmt.Fprintf(&b, "EMOJI LEVEL: %s\n\n", p.EmojiLevel)
	fmt.Fprintf(&b, "%s\n\n", p.SystemPrompt)
	fmt.Fprintf(&b, "Generate 5 unique reply options in these tones: %s\n\n", strings.Join(params.Tones, ", "))

	fmt.Fprintf(&b, `CRITICAL REQUIREMENTS:
- Stay under %d characters STRICTLY
- Match the platform's typical communication style
- Sound natural and authentic, never robotic
- Add value or build the relationship
- Encourage further engagement when appropriate
- Use appropriate emojis for %s (%s usage)
- If original post is provided, reference it naturally
- Avoid generic responses like "Great post!" or "Thanks for sharing!"

TONE DEFINITIONS:
- helpful: Provide value, answer questions, be informative
- casual: Friendly, laid-back, conversational
- witty: Clever, funny, memorable
- professional: Polished, industry-aware, thoughtful
- engaging: Ask questions, encourage discussion, build community

Return ONLY a JSON array with this exact format:
[
  {
    "tone": "helpful",
    "text": "reply text here",
    "length": 142
  },
  ...
]

NO preamble, NO markdown formatting, ONLY the JSON array.`, p.MaxLength, p.Name, p.EmojiLevel)

	return b.String()
}
