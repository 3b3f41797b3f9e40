// Package platform defines the per-platform reply rules: character
// ceilings, style descriptors, and emoji density used to parameterize the
// generation prompt and to derive each reply's within-limit flag.
package platform

// Config holds the reply rules for one social platform.
type Config struct {
	Key               string   `json:"key"`
	Name              string   `json:"name"`
	MaxLength         int      `json:"maxLength"`
	RecommendedLength int      `json:"recommendedLength"`
	Style             string   `json:"style"`
	SystemPrompt      string   `json:"-"`
	Tones             []string `json:"tones"`
	EmojiLevel        string   `json:"emojiLevel"`
	Tips              string   `json:"tips"`
}

// Keys lists the supported platform keys in display order.
var Keys = []string{
	"youtube", "instagram", "tiktok", "twitter",
	"linkedin", "facebook", "reddit", "discord",
}

var configs = map[string]Config{
	"youtube": {
		Key:               "youtube",
		Name:              "YouTube",
		MaxLength:         500,
		RecommendedLength: 150,
		Style:             "conversational, helpful, detailed",
		SystemPrompt:      "Generate YouTube comment replies that are friendly, detailed, and encourage further engagement. Include timestamps when relevant. Use emojis sparingly (1-2 per reply). Aim for 50-150 words. Be helpful and build community.",
		Tones:             []string{"helpful", "casual", "witty", "engaging", "supportive"},
		EmojiLevel:        "low",
		Tips:              "YouTube favors longer, more detailed responses. Ask follow-up questions to boost engagement.",
	},
	"instagram": {
		Key:               "instagram",
		Name:              "Instagram",
		MaxLength:         150,
		RecommendedLength: 50,
		Style:             "casual, friendly, emoji-heavy",
		SystemPrompt:      "Generate Instagram comment replies that are casual, authentic, and emoji-rich. Keep it short and punchy (20-50 words). Match influencer energy. Use 3-5 emojis. Be fun and personable.",
		Tones:             []string{"casual", "witty", "supportive", "hype", "relatable"},
		EmojiLevel:        "high",
		Tips:              "Instagram loves quick, fun responses with lots of emojis. Reply within first hour for best algorithm boost.",
	},
	"tiktok": {
		Key:               "tiktok",
		Name:              "TikTok",
		MaxLength:         100,
		RecommendedLength: 30,
		Style:             "trendy, playful, gen-z",
		SystemPrompt:      "Generate TikTok comment replies using Gen Z language, current slang, and humor. Be playful, authentic, and trend-aware. Heavy emoji use (3-6 per reply). Keep it super short (10-30 words). Can be chaotic and fun.",
		Tones:             []string{"trendy", "funny", "relatable", "unhinged", "hype"},
		EmojiLevel:        "very-high",
		Tips:              "TikTok is fast-paced. Short, funny replies perform best. Use trending phrases and sounds.",
	},
	"twitter": {
		Key:               "twitter",
		Name:              "Twitter/X",
		MaxLength:         280,
		RecommendedLength: 150,
		Style:             "punchy, clever, concise",
		SystemPrompt:      "Generate Twitter/X replies that are concise, witty, and engaging. Must be under 280 characters. Can be spicy, thoughtful, or humorous depending on tone. Minimal emojis (0-2). Be clever and quotable.",
		Tones:             []string{"witty", "insightful", "spicy", "helpful", "casual"},
		EmojiLevel:        "very-low",
		Tips:              "Twitter rewards clever, quotable responses. Keep it punchy. Less is more.",
	},
	"linkedin": {
		Key:               "linkedin",
		Name:              "LinkedIn",
		MaxLength:         400,
		RecommendedLength: 120,
		Style:             "professional, insightful, conversational",
		SystemPrompt:      "Generate professional LinkedIn replies that add value and encourage discussion. Be thoughtful and industry-relevant. Use 50-150 words. Minimal emojis (0-1). Build professional relationships.",
		Tones:             []string{"professional", "insightful", "thoughtful", "collaborative", "helpful"},
		EmojiLevel:        "very-low",
		Tips:              "LinkedIn values thoughtful, professional responses. Add insights, not just agreement.",
	},
	"facebook": {
		Key:               "facebook",
		Name:              "Facebook",
		MaxLength:         300,
		RecommendedLength: 80,
		Style:             "warm, community-focused, personal",
		SystemPrompt:      "Generate friendly Facebook replies that build community. Be warm, conversational, and personal. Use 30-100 words. Moderate emoji use (1-3). Focus on connection and relationships.",
		Tones:             []string{"friendly", "supportive", "conversational", "warm", "helpful"},
		EmojiLevel:        "medium",
		Tips:              "Facebook is about community. Be warm and personable. Build relationships.",
	},
	"reddit": {
		Key:               "reddit",
		Name:              "Reddit",
		MaxLength:         1000,
		RecommendedLength: 200,
		Style:             "informative, authentic, no-bs",
		SystemPrompt:      "Generate Reddit replies that are authentic, informative, and conversational. Redditors hate corporate speak. Be real, add value, cite sources when possible. Use 50-200 words. Almost no emojis (max 1). Be helpful or funny, never salesy.",
		Tones:             []string{"helpful", "informative", "witty", "honest", "casual"},
		EmojiLevel:        "none",
		Tips:              "Reddit values authenticity and substance. No corporate speak. Add real value or humor.",
	},
	"discord": {
		Key:               "discord",
		Name:              "Discord",
		MaxLength:         2000,
		RecommendedLength: 100,
		Style:             "casual, friendly, community-oriented",
		SystemPrompt:      "Generate Discord replies that are casual, friendly, and community-oriented. Can be more relaxed and conversational. Use emojis moderately (2-4). Keep it conversational and helpful.",
		Tones:             []string{"casual", "friendly", "helpful", "supportive", "witty"},
		EmojiLevel:        "medium",
		Tips:              "Discord is about community building. Be friendly and helpful.",
	},
}

// Lookup returns the config for a platform key.
func Lookup(key string) (Config, bool) {
	cfg, ok := configs[key]
	return cfg, ok
}

// All returns the configs for every supported platform in display order.
func All() []Config {
	out := make([]Config, 0, len(Keys))
	for _, key := range Keys {
		out = append(out, configs[key])
	}
	return out
}

// ToneOption is a selectable tone with its display label.
type ToneOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ToneOptions lists the tones selectable in a generation request.
var ToneOptions = []ToneOption{
	{Value: "helpful", Label: "Helpful/Detailed"},
	{Value: "casual", Label: "Casual/Friendly"},
	{Value: "witty", Label: "Witty/Humorous"},
	{Value: "professional", Label: "Professional"},
	{Value: "engaging", Label: "Engaging/Question-based"},
}
