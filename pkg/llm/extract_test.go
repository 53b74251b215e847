package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routePayload struct {
	Agent  string `json:"agent"`
	Reason string `json:"reason"`
}

// TestExtractJSON_Plain tests a clean JSON reply.
func TestExtractJSON_Plain(t *testing.T) {
	var dst routePayload
	ok := ExtractJSON(`{"agent": "profile", "reason": "general"}`, &dst)

	require.True(t, ok)
	assert.Equal(t, "profile", dst.Agent)
}

// TestExtractJSON_Fenced tests markdown code fences are stripped.
func TestExtractJSON_Fenced(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"json fence", "```json\n{\"agent\": \"learning\"}\n```"},
		{"bare fence", "```\n{\"agent\": \"learning\"}\n```"},
		{"fence with prose", "Sure! Here you go:\n```json\n{\"agent\": \"learning\"}\n```\nHope that helps."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst routePayload
			require.True(t, ExtractJSON(tt.raw, &dst))
			assert.Equal(t, "learning", dst.Agent)
		})
	}
}

// TestExtractJSON_EmbeddedObject tests chatter around the object is
// ignored.
func TestExtractJSON_EmbeddedObject(t *testing.T) {
	var dst routePayload
	ok := ExtractJSON(`The right choice is {"agent": "job-search", "reason": "openings"} in this case.`, &dst)

	require.True(t, ok)
	assert.Equal(t, "job-search", dst.Agent)
}

// TestExtractJSON_Malformed tests failure modes report false, never panic.
func TestExtractJSON_Malformed(t *testing.T) {
	tests := []string{
		"",
		"no json here",
		"{broken",
		"}{",
		"``````",
	}
	for _, raw := range tests {
		var dst routePayload
		assert.False(t, ExtractJSON(raw, &dst), "raw: %q", raw)
	}
}

// TestFirstLine tests single-word reply normalization.
func TestFirstLine(t *testing.T) {
	assert.Equal(t, "learning", FirstLine("learning\nbecause courses"))
	assert.Equal(t, "profile", FirstLine("  profile  "))
	assert.Equal(t, "", FirstLine("\n\n"))
}
