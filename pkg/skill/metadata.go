// Package skill reads a skill bundle's SKILL.md manifest and derives the
// metadata the rest of the core needs: language, entry point, network
// policy, and bash-tool allow-list patterns.
package skill

import "strings"

// Language is the interpreted runtime a skill's entry point requires.
type Language string

const (
	LangPython  Language = "python"
	LangNode    Language = "node"
	LangBash    Language = "bash"
	LangUnknown Language = "unknown"
)

// NetworkPolicy describes whether a skill is permitted outbound network
// access, and (reserved for future lockfile-driven allow-lists) which hosts.
type NetworkPolicy struct {
	Enabled  bool
	Outbound []string
}

// BashToolPattern is one `Bash(<prefix>:<glob>)` entry from allowed-tools.
// The validator only ever compares against CommandPrefix; RawPattern is kept
// for diagnostics.
type BashToolPattern struct {
	CommandPrefix string
	RawPattern    string
}

// Metadata is the parsed, normalized view of a skill's SKILL.md.
type Metadata struct {
	Name                        string
	Description                 string
	EntryPoint                  string
	Language                    Language
	Compatibility               string
	NetworkPolicy               NetworkPolicy
	AllowedBashPatterns         []BashToolPattern
	RequiresElevatedPermissions bool
	ResolvedPackages            []string

	// InputSchema is an optional JSON-Schema-shaped declaration of the
	// skill's expected input, validated by C6 (jsonschema/v6) before the
	// skill is advertised via list_tools_with_meta. Nil when SKILL.md
	// carries no input_schema field.
	InputSchema map[string]any
}

// IsBashToolSkill reports whether this skill exposes an allow-listed shell
// command instead of a script entry point.
func (m *Metadata) IsBashToolSkill() bool {
	return len(m.AllowedBashPatterns) > 0 && m.EntryPoint == ""
}

// networkKeywords are scanned case-insensitively against the compatibility
// string to decide whether network access is declared.
var networkKeywords = []string{"network", "internet", "http", "api", "web"}

func detectNetworkPolicy(compatibility string) NetworkPolicy {
	lower := strings.ToLower(compatibility)
	for _, kw := range networkKeywords {
		if strings.Contains(lower, kw) {
			return NetworkPolicy{Enabled: true}
		}
	}
	return NetworkPolicy{Enabled: false}
}
