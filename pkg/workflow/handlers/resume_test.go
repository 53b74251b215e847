package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careergini/orchestrator/pkg/llm"
)

// TestResume_GeneratedContent tests the completion path with profile
// context in the prompt.
func TestResume_GeneratedContent(t *testing.T) {
	client := llm.NewMockClient("- Led migration of billing service, cutting p99 latency 40%")
	h := NewResume(client)

	result, err := h.Run(context.Background(), stateWith("punch up my resume bullets", sampleProfile()))

	require.NoError(t, err)
	assert.Contains(t, result.Summary, "Led migration")
	assert.Contains(t, client.LastCall().SystemPrompt, "Backend Developer")
	assert.Equal(t, llm.ProfileReasoning, client.LastCall().Profile)
}

// TestResume_JobDescriptionTailoring tests the pasted posting reaches the
// prompt and flags the result as tailored.
func TestResume_JobDescriptionTailoring(t *testing.T) {
	client := llm.NewMockClient("Tailored bullets here")
	h := NewResume(client)

	message := "tailor my resume for this --- Senior Data Scientist at DataCo. Requires python, ml, sql."
	result, err := h.Run(context.Background(), stateWith(message, sampleProfile()))

	require.NoError(t, err)
	assert.Equal(t, true, result.Data["tailored"])
	assert.Contains(t, client.LastCall().SystemPrompt, "Senior Data Scientist")
	// The request half stays out of the job description block.
	assert.Equal(t, "tailor my resume for this", client.LastCall().Messages[0].Content)
}

// TestResume_CompletionFailureFallsBack tests the checklist answer
// survives a completion outage.
func TestResume_CompletionFailureFallsBack(t *testing.T) {
	client := llm.NewMockClient("").WithError(errors.New("model loading"))
	h := NewResume(client)

	result, err := h.Run(context.Background(), stateWith("fix my resume", nil))

	require.NoError(t, err)
	assert.False(t, result.Failed())
	assert.Contains(t, result.Summary, "checklist")
}

// TestSplitJobDescription tests delimiter handling.
func TestSplitJobDescription(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		request  string
		jobDesc  string
	}{
		{"no delimiter", "help with my resume", "help with my resume", ""},
		{"with delimiter", "tailor this --- Posting text", "tailor this", "Posting text"},
		{"delimiter only", "---", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request, jobDesc := splitJobDescription(tt.message)
			assert.Equal(t, tt.request, request)
			assert.Equal(t, tt.jobDesc, jobDesc)
		})
	}
}
