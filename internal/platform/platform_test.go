package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		key           string
		wantOK        bool
		wantMaxLength int
	}{
		{key: "twitter", wantOK: true, wantMaxLength: 280},
		{key: "instagram", wantOK: true, wantMaxLength: 150},
		{key: "tiktok", wantOK: true, wantMaxLength: 100},
		{key: "reddit", wantOK: true, wantMaxLength: 1000},
		{key: "discord", wantOK: true, wantMaxLength: 2000},
		{key: "myspace", wantOK: false},
		{key: "Twitter", wantOK: false},
		{key: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cfg, ok := Lookup(tt.key)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.key, cfg.Key)
				assert.Equal(t, tt.wantMaxLength, cfg.MaxLength)
			}
		})
	}
}

func TestAll_PreservesDisplayOrder(t *testing.T) {
	all := All()
	require.Len(t, all, len(Keys))
	for i, cfg := range all {
		assert.Equal(t, Keys[i], cfg.Key)
	}
}

func TestConfigsAreComplete(t *testing.T) {
	for _, cfg := range All() {
		assert.NotEmpty(t, cfg.Name, "platform %s missing name", cfg.Key)
		assert.NotEmpty(t, cfg.SystemPrompt, "platform %s missing system prompt", cfg.Key)
		assert.NotEmpty(t, cfg.Tones, "platform %s missing tones", cfg.Key)
		assert.Greater(t, cfg.MaxLength, 0, "platform %s missing max length", cfg.Key)
		assert.LessOrEqual(t, cfg.RecommendedLength, cfg.MaxLength, "platform %s recommended exceeds max", cfg.Key)
	}
}
