package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Decode strategies, in the order they are attempted.
const (
	StrategyDirect   = "direct"
	StrategyObject   = "object"
	StrategyArray    = "array"
	StrategyRepaired = "repaired"
)

// DecodeJSON recovers a JSON value from raw model output. It tries a direct
// parse, then the widest {...} span, then the widest [...] span, and finally
// runs the object/array candidates through jsonrepair. It reports which
// strategy succeeded.
func DecodeJSON(raw string) (any, string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, "", fmt.Errorf("%w: empty response", ErrMalformedOutput)
	}

	var value any
	if err := json.Unmarshal([]byte(text), &value); err == nil {
		return value, StrategyDirect, nil
	}

	object := span(text, '{', '}')
	if object != "" {
		if err := json.Unmarshal([]byte(object), &value); err == nil {
			return value, StrategyObject, nil
		}
	}

	array := span(text, '[', ']')
	if array != "" {
		if err := json.Unmarshal([]byte(array), &value); err == nil {
			return value, StrategyArray, nil
		}
	}

	for _, candidate := range []string{object, array} {
		if candidate == "" {
			continue
		}
		repaired, err := jsonrepair.JSONRepair(candidate)
		if err != nil {
			continue
		}
		if err := json.Unmarshal([]byte(repaired), &value); err == nil {
			return value, StrategyRepaired, nil
		}
	}

	return nil, "", fmt.Errorf("%w: no JSON payload in %d bytes: %s", ErrMalformedOutput, len(raw), truncateForLog(text, 120))
}

// span returns text from the first openChar to the last closeChar, inclusive.
func span(text string, openChar, closeChar byte) string {
	start := strings.IndexByte(text, openChar)
	end := strings.LastIndexByte(text, closeChar)
	if start == -1 || end <= start {
		return ""
	}
	return text[start : end+1]
}

func truncateForLog(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen] + "..."
}
