// Package llm reshapes free-form provider output into the canonical
// ValidationResult contract and rejects anything that does not satisfy it
// after normalization. No result is ever guessed or silently fixed beyond the
// fixed normalization tables below.
package llm

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ExtractJSON pulls the JSON object out of a provider response that may wrap
// it in a markdown code fence or surrounding prose. Returns "" when no object
// boundary can be found.
func ExtractJSON(response string) string {
	trimmed := strings.TrimSpace(response)
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		return trimmed
	}

	start := strings.Index(response, "{")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(response, "}")
	if end <= start {
		// Truncated output: take everything from the first brace and let
		// the repair pass close the structures.
		return response[start:]
	}
	return response[start : end+1]
}

// parseObject decodes raw provider content into a generic map, extracting
// embedded JSON and repairing malformed output before giving up.
func parseObject(raw string) (map[string]any, error) {
	jsonStr := ExtractJSON(raw)
	if jsonStr == "" {
		jsonStr = raw
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &obj); err == nil {
		return obj, nil
	}

	repaired, err := jsonrepair.JSONRepair(jsonStr)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(repaired), &obj); err != nil {
		return nil, err
	}
	return obj, nil
}
