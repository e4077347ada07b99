// Package outputparse extracts a skill's structured JSON output from its
// raw stdout, and turns opaque sandbox stderr into a stable, user-facing
// failure label (§4.8).
package outputparse

import (
	"encoding/json"
	"strings"
)

// Strategy selects how ExtractJSON locates the JSON payload in stdout.
type Strategy string

const (
	// StrategyFull parses the entire trimmed stdout as one JSON value.
	StrategyFull Strategy = "full"
	// StrategyLine scans from the last line backward for the first line
	// that parses as JSON on its own.
	StrategyLine Strategy = "line"
	// StrategyBrace scans for the outermost balanced {...} or [...] span.
	StrategyBrace Strategy = "brace"
	// StrategyAuto tries full, then line, then brace, in that order.
	StrategyAuto Strategy = "auto"
)

// ExtractJSON applies strategy to stdout and returns the decoded value plus
// which concrete strategy actually produced it (meaningful when strategy is
// StrategyAuto). ok is false when no strategy could parse a JSON value.
func ExtractJSON(stdout string, strategy Strategy) (value any, used Strategy, ok bool) {
	switch strategy {
	case StrategyFull:
		v, ok := extractFull(stdout)
		return v, StrategyFull, ok
	case StrategyLine:
		v, ok := extractLine(stdout)
		return v, StrategyLine, ok
	case StrategyBrace:
		v, ok := extractBrace(stdout)
		return v, StrategyBrace, ok
	default:
		if v, ok := extractFull(stdout); ok {
			return v, StrategyFull, true
		}
		if v, ok := extractLine(stdout); ok {
			return v, StrategyLine, true
		}
		if v, ok := extractBrace(stdout); ok {
			return v, StrategyBrace, true
		}
		return nil, "", false
	}
}

func extractFull(stdout string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(strings.TrimSpace(stdout)), &v); err != nil {
		return nil, false
	}
	return v, true
}

func extractLine(stdout string) (any, bool) {
	lines := strings.Split(stdout, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(line), &v); err == nil {
			return v, true
		}
	}
	return nil, false
}

// extractBrace scans stdout for every top-level, string-aware balanced
// {...}/[...] span, then tries them starting from the *last* one — mirroring
// the last-'{'-to-last-'}' envelope convention of §4.8/§4.5.5 (and the
// original's rfind('{')/rfind('}') in python-sdk/skilllite/sandbox/utils.py)
// rather than locking onto whichever span happens to open first. An earlier
// span (e.g. a debug dict repr printed before the real envelope) is only
// considered if every later span fails to parse.
func extractBrace(stdout string) (any, bool) {
	type span struct{ start, end int }
	var spans []span

	depth := 0
	start := -1
	inString := false
	escaped := false
	for i := 0; i < len(stdout); i++ {
		c := stdout[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// inside a string literal, braces/brackets don't count
		case c == '{' || c == '[':
			if depth == 0 {
				start = i
			}
			depth++
		case c == '}' || c == ']':
			if depth > 0 {
				depth--
				if depth == 0 && start != -1 {
					spans = append(spans, span{start, i})
				}
			}
		}
	}

	for i := len(spans) - 1; i >= 0; i-- {
		s := spans[i]
		var v any
		if err := json.Unmarshal([]byte(stdout[s.start:s.end+1]), &v); err == nil {
			return v, true
		}
	}
	return nil, false
}
