package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrMalformedReply is returned when a model reply carries no usable JSON object.
var ErrMalformedReply = errors.New("model reply is not a JSON object")

// ExtractJSON returns the text between the first '{' and the last '}' of s,
// which is how models tend to wrap JSON in prose or code fences.
func ExtractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", ErrMalformedReply
	}
	candidate := s[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return "", ErrMalformedReply
	}
	return candidate, nil
}
