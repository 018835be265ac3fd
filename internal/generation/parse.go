package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Parse decodes model output as JSON. A surrounding markdown code fence is stripped first.
// The returned error is always a *MalformedOutputError; callers set its Scope.
func Parse(text string) (any, error) {
	body := stripFence(text)
	if body == "" {
		return nil, &MalformedOutputError{Err: errors.New("empty output")}
	}
	var v any
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return nil, &MalformedOutputError{Err: fmt.Errorf("decoding json: %w", err)}
	}
	return v, nil
}

func stripFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	// drop the opening fence line, which may carry a language tag
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
