package llm

import (
	"encoding/json"
	"strings"
)

// ExtractJSON parses structured data out of raw model output into dst.
// Local models wrap JSON in markdown fences, prose, or both; this strips
// fences, locates the outermost object, and unmarshals it.
//
// Returns false when no parseable object exists. Never panics.
func ExtractJSON(raw string, dst any) bool {
	candidate := stripFences(raw)

	start := strings.IndexByte(candidate, '{')
	end := strings.LastIndexByte(candidate, '}')
	if start < 0 || end <= start {
		return false
	}

	return json.Unmarshal([]byte(candidate[start:end+1]), dst) == nil
}

// stripFences removes a markdown code fence around the payload, if any.
func stripFences(raw string) string {
	if i := strings.Index(raw, "```json"); i >= 0 {
		rest := raw[i+len("```json"):]
		if j := strings.Index(rest, "```"); j >= 0 {
			return rest[:j]
		}
		return rest
	}
	if i := strings.Index(raw, "```"); i >= 0 {
		rest := raw[i+3:]
		if j := strings.Index(rest, "```"); j >= 0 {
			return rest[:j]
		}
		return rest
	}
	return raw
}

// FirstLine returns the first non-empty line of raw, trimmed of whitespace
// and surrounding quotes. Used for single-word classification replies.
func FirstLine(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.Trim(line, `"'`)
		if line != "" {
			return line
		}
	}
	return ""
}
