package handlers

import (
	"context"
	"strings"

	"github.com/careergini/orchestrator/pkg/llm"
	"github.com/careergini/orchestrator/pkg/workflow"
)

const resumePrompt = `You are an expert resume writer. Produce concrete, specific resume
guidance for the candidate: bullet points they can paste in, phrased
with strong action verbs and quantified impact. If a target job
description is provided, tailor the language to it and call out the
keywords an applicant tracking system would scan for. Stay under 300
words.`

// jobDescriptionDelimiter separates the user's request from a pasted
// job description in a single message.
const jobDescriptionDelimiter = "---"

// resumeChecklist is the degraded answer when generation is
// unavailable. Generic but always actionable.
const resumeChecklist = `Here's a quick resume checklist while I'm unable to generate tailored content:

1. Lead each bullet with an action verb and end with a measurable result.
2. Mirror the exact skill keywords from the job description you're targeting.
3. Keep it to one page per decade of experience.
4. Put your most relevant experience in the top third of the page.
5. Cut anything that doesn't support the role you're applying for.`

// Resume generates tailored resume content and feedback.
type Resume struct {
	client llm.Client
}

// NewResume creates the resume handler. client may be nil.
func NewResume(client llm.Client) *Resume {
	return &Resume{client: client}
}

func (h *Resume) ID() string { return workflow.HandlerResume }

func (h *Resume) Run(ctx context.Context, state *workflow.State) (workflow.PartialResult, error) {
	request, jobDescription := splitJobDescription(state.LatestUserMessage())

	result := workflow.PartialResult{
		Summary: resumeChecklist,
		Data:    map[string]any{"tailored": jobDescription != ""},
	}

	if h.client == nil {
		return result, nil
	}

	prompt := resumePrompt
	if state.ProfileSnapshot != nil {
		prompt += "\n\nCandidate profile:\n" + describeProfile(state.ProfileSnapshot)
	}
	if jobDescription != "" {
		prompt += "\n\nTarget job description:\n" + jobDescription
	}

	resp, err := h.client.Complete(ctx, llm.Request{
		SystemPrompt: prompt,
		Profile:      llm.ProfileReasoning,
		MaxTokens:    2048,
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: request}},
	})
	if err != nil || strings.TrimSpace(resp.Content) == "" {
		return result, nil
	}

	result.Summary = resp.Content
	return result, nil
}

// splitJobDescription separates "help me with X --- <pasted posting>"
// into the request and the posting. Without the delimiter the whole
// message is the request.
func splitJobDescription(message string) (request, jobDescription string) {
	before, after, found := strings.Cut(message, jobDescriptionDelimiter)
	if !found {
		return strings.TrimSpace(message), ""
	}
	return strings.TrimSpace(before), strings.TrimSpace(after)
}
