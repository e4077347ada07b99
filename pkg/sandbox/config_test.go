package sandbox

import "testing"

func TestFilterEnv_StripsBlockedPrefixes(t *testing.T) {
	env := FilterEnv(map[string]string{
		"AWS_SECRET_ACCESS_KEY": "leak-me-not",
		"OPENAI_API_KEY":        "sk-also-not",
		"MY_APP_CONFIG":         "fine",
	})

	for _, kv := range env {
		if hasAnyPrefix(kv, "AWS_SECRET_ACCESS_KEY=", "OPENAI_API_KEY=") {
			t.Fatalf("FilterEnv leaked a blocked-prefix variable: %q", kv)
		}
	}

	found := false
	for _, kv := range env {
		if kv == "MY_APP_CONFIG=fine" {
			found = true
		}
	}
	if !found {
		t.Fatal("FilterEnv dropped an unrelated, non-blocked variable")
	}
}

func TestFilterEnv_AlwaysIncludesBaseline(t *testing.T) {
	env := FilterEnv(nil)
	hasPath := false
	for _, kv := range env {
		if hasAnyPrefix(kv, "PATH=") {
			hasPath = true
		}
	}
	if !hasPath {
		t.Fatal("FilterEnv must always include a PATH baseline")
	}
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if len(s) >= len(p) && s[:len(p)] == p {
			return true
		}
	}
	return false
}

func TestDefaultConfig_Validates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig() must validate, got %v", err)
	}
}

func TestConfig_ValidateRejectsNoRuntimes(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatal("want an error when no runtimes are configured")
	}
}
