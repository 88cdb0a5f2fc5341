package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeJSON extracts the JSON payload from an LLM reply and unmarshals it.
func decodeJSON(content string, result any) error {
	if err := json.Unmarshal([]byte(extractJSON(content)), result); err != nil {
		return fmt.Errorf("parsing JSON response: %w (content: %s)", err, content)
	}
	return nil
}

// extractJSON returns the JSON document inside s. Models often wrap the
// payload in a fenced code block or surround it with prose.
func extractJSON(s string) string {
	if body, ok := fenced(s, "```json"); ok {
		return body
	}
	if body, ok := fenced(s, "```"); ok {
		return body
	}

	// Raw JSON: from the first { or [ to its matching close.
	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return s
	}
	opening, closing := s[start], byte('}')
	if opening == '[' {
		closing = ']'
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == opening:
			depth++
		case c == closing:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return s[start:]
}

func fenced(s, marker string) (string, bool) {
	idx := strings.Index(s, marker)
	if idx == -1 {
		return "", false
	}
	rest := strings.TrimLeft(s[idx+len(marker):], "\r\n")
	end := strings.Index(rest, "```")
	if end == -1 {
		return "", false
	}
	return strings.TrimRight(rest[:end], "\r\n"), true
}
