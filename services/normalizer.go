package services

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// fencedJSONPattern matches a markdown code fence tagged as JSON and captures
// its interior
var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json|JSON)\\s*\n?(.*?)\n?\\s*```")

// NormalizeResponse extracts a JSON value from an untrusted text blob
// returned by a text-generation call. The upstream model is not contract
// bound to valid JSON, so extraction is best-effort with ordered attempts:
//
//  1. the interior of a json-tagged code fence
//  2. the first greedy {...} or [...] bracket substring
//  3. the whole input
//
// Returns the parsed value, or nil when no attempt yields valid JSON. Parse
// failures are logged and never surface as errors.
func NormalizeResponse(rawText string) json.RawMessage {
	if candidate, ok := fencedBlock(rawText); ok {
		if value, ok := parseJSON(candidate); ok {
			return value
		}
	}

	if candidate, ok := bracketSubstring(rawText); ok {
		if value, ok := parseJSON(candidate); ok {
			return value
		}
	}

	if value, ok := parseJSON(rawText); ok {
		return value
	}

	preview := rawText
	if len(preview) > 200 {
		preview = preview[:200]
	}
	logrus.WithFields(logrus.Fields{
		"component":      "normalizer",
		"response_start": preview,
	}).Warn("Could not parse JSON from AI response")

	return nil
}

// AsItemList coerces a normalized value into a list of raw items. Accepts a
// direct array, or an object wrapping the array under an "ipos" or "data"
// field. Any other shape (including a nil value) yields an empty list.
func AsItemList(value json.RawMessage) []json.RawMessage {
	if value == nil {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(value, &items); err == nil {
		return items
	}

	var wrapper struct {
		IPOs []json.RawMessage `json:"ipos"`
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(value, &wrapper); err == nil {
		if wrapper.IPOs != nil {
			return wrapper.IPOs
		}
		if wrapper.Data != nil {
			return wrapper.Data
		}
	}

	logrus.WithField("component", "normalizer").
		Warn("Parsed AI response is not list-shaped, treating as empty")
	return nil
}

// fencedBlock returns the interior of the first json-tagged code fence
func fencedBlock(text string) (string, bool) {
	matches := fencedJSONPattern.FindStringSubmatch(text)
	if len(matches) > 1 {
		return matches[1], true
	}
	return "", false
}

// bracketSubstring returns the first greedy object or array substring:
// from the earliest opening bracket to the last matching closing bracket.
// Balance is not verified here; the parse attempt decides.
func bracketSubstring(text string) (string, bool) {
	objStart := strings.Index(text, "{")
	arrStart := strings.Index(text, "[")

	// Whichever opener appears first wins, mirroring greedy alternation
	if objStart >= 0 && (arrStart < 0 || objStart < arrStart) {
		if end := strings.LastIndex(text, "}"); end > objStart {
			return text[objStart : end+1], true
		}
	}
	if arrStart >= 0 {
		if end := strings.LastIndex(text, "]"); end > arrStart {
			return text[arrStart : end+1], true
		}
	}
	return "", false
}

// parseJSON validates and captures a candidate substring as a JSON value
func parseJSON(candidate string) (json.RawMessage, bool) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return nil, false
	}

	var value json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &value); err != nil {
		return nil, false
	}
	return value, true
}
