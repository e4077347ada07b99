package outputparse

import (
	"reflect"
	"testing"
)

func TestExtractJSON_Full(t *testing.T) {
	v, used, ok := ExtractJSON(`  {"ok": true, "n": 3}  `, StrategyAuto)
	if !ok {
		t.Fatal("want ok = true")
	}
	if used != StrategyFull {
		t.Errorf("used = %q, want %q", used, StrategyFull)
	}
	m, ok := v.(map[string]any)
	if !ok || m["ok"] != true {
		t.Errorf("decoded value = %+v", v)
	}
}

func TestExtractJSON_LineFallsBackWhenFullFails(t *testing.T) {
	stdout := "starting up\nloading model...\n{\"result\": 42}\n"
	v, used, ok := ExtractJSON(stdout, StrategyAuto)
	if !ok {
		t.Fatal("want ok = true")
	}
	if used != StrategyLine {
		t.Errorf("used = %q, want %q", used, StrategyLine)
	}
	m := v.(map[string]any)
	if m["result"].(float64) != 42 {
		t.Errorf("result = %v, want 42", m["result"])
	}
}

func TestExtractJSON_BraceFallsBackWhenTrailingGarbage(t *testing.T) {
	stdout := `log: starting
{"a": 1,
 "b": [1,2,3]}
log: done, exit 0`
	v, used, ok := ExtractJSON(stdout, StrategyAuto)
	if !ok {
		t.Fatal("want ok = true")
	}
	if used != StrategyBrace {
		t.Errorf("used = %q, want %q", used, StrategyBrace)
	}
	m := v.(map[string]any)
	if !reflect.DeepEqual(m["a"], 1.0) {
		t.Errorf("a = %v", m["a"])
	}
}

func TestExtractJSON_BraceIgnoresBracesInsideStrings(t *testing.T) {
	stdout := `{"msg": "a { nested } brace in a string", "n": 2}`
	v, _, ok := ExtractJSON(stdout, StrategyBrace)
	if !ok {
		t.Fatal("want ok = true even with braces embedded in a string literal")
	}
	m := v.(map[string]any)
	if m["n"].(float64) != 2 {
		t.Errorf("n = %v, want 2", m["n"])
	}
}

func TestExtractJSON_BraceSkipsEarlierUnparsableFragment(t *testing.T) {
	stdout := "Loaded config: {'key': 'value'}\n{\"result\": 42}\n"
	v, _, ok := ExtractJSON(stdout, StrategyBrace)
	if !ok {
		t.Fatal("want ok = true, the real envelope follows an unparsable debug fragment")
	}
	m := v.(map[string]any)
	if m["result"].(float64) != 42 {
		t.Errorf("result = %v, want 42 (picked up the later envelope, not the earlier fragment)", m["result"])
	}
}

func TestExtractJSON_BracePrefersLastOfTwoEnvelopes(t *testing.T) {
	stdout := `{"partial":true}
more output
{"result":42}`
	v, _, ok := ExtractJSON(stdout, StrategyBrace)
	if !ok {
		t.Fatal("want ok = true")
	}
	m := v.(map[string]any)
	if m["result"].(float64) != 42 || m["partial"] != nil {
		t.Errorf("decoded value = %+v, want only the last envelope", v)
	}
}

func TestExtractJSON_NoJSONFound(t *testing.T) {
	_, _, ok := ExtractJSON("just some plain text, no json here", StrategyAuto)
	if ok {
		t.Fatal("want ok = false when stdout carries no JSON")
	}
}

func TestExtractJSON_ExplicitStrategyDoesNotFallBack(t *testing.T) {
	stdout := "prefix\n{\"a\":1}\n"
	_, _, ok := ExtractJSON(stdout, StrategyFull)
	if ok {
		t.Fatal("StrategyFull must not fall back to line/brace extraction")
	}
}

func TestFormatSandboxError_KnownSignature(t *testing.T) {
	got := FormatSandboxError("  Traceback...\nPermission denied: '/etc/shadow'\n")
	if got != "sandbox denied a restricted operation" {
		t.Errorf("FormatSandboxError = %q", got)
	}
}

func TestFormatSandboxError_UnknownPassesThroughTrimmed(t *testing.T) {
	got := FormatSandboxError("  custom script error: bad config  \n")
	if got != "custom script error: bad config" {
		t.Errorf("FormatSandboxError = %q", got)
	}
}
