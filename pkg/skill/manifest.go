package skill

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/agentskill/skilllite/pkg/skillerr"
)

const manifestFile = "SKILL.md"

// frontMatter is the raw YAML shape consumed from SKILL.md, decoded with
// yaml.v3 rather than a hand-rolled line scanner — the manifest is a
// well-formed YAML document delimited by `---` fences, and yaml.v3 already
// handles quoting, flow sequences, and comments correctly.
type frontMatter struct {
	Name                        string         `yaml:"name"`
	Description                 string         `yaml:"description"`
	EntryPoint                  string         `yaml:"entry_point"`
	Language                    string         `yaml:"language"`
	Compatibility               string         `yaml:"compatibility"`
	AllowedTools                allowedTools   `yaml:"allowed-tools"`
	RequiresElevatedPermissions bool           `yaml:"requires_elevated_permissions"`
	InputSchema                 map[string]any `yaml:"input_schema"`
}

// allowedTools accepts either a single scalar string or a YAML sequence of
// strings for `allowed-tools`, since both forms appear in the wild.
type allowedTools []string

func (a *allowedTools) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*a = allowedTools{s}
		return nil
	default:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*a = allowedTools(list)
		return nil
	}
}

var nameRE = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Load reads and parses dir/SKILL.md, deriving language, entry point,
// network policy, and bash-tool patterns per §4.1.
func Load(dir string) (*Metadata, error) {
	path := filepath.Join(dir, manifestFile)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, skillerr.Wrap(skillerr.MissingManifest, path, err)
		}
		return nil, skillerr.Wrap(skillerr.InvalidManifest, path, err)
	}

	yamlBlock, _ := extractFrontMatter(raw)

	var fm frontMatter
	if len(yamlBlock) > 0 {
		if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
			return nil, skillerr.Wrap(skillerr.InvalidManifest, path, err)
		}
	}

	base := filepath.Base(filepath.Clean(dir))
	name := fm.Name
	if name == "" {
		name = base
	}
	if len(name) > 64 || !nameRE.MatchString(name) {
		return nil, skillerr.New(skillerr.InvalidManifest, "skill name must be lowercase, hyphen-separated, <=64 chars, no leading/trailing/consecutive hyphens: "+name)
	}
	if name != base {
		return nil, skillerr.New(skillerr.InvalidManifest, fmt.Sprintf("skill directory basename %q must equal name field %q", base, name))
	}

	patterns := parseBashPatterns(strings.Join(fm.AllowedTools, " "))

	meta := &Metadata{
		Name:                        name,
		Description:                 fm.Description,
		EntryPoint:                  fm.EntryPoint,
		Compatibility:               fm.Compatibility,
		NetworkPolicy:               detectNetworkPolicy(fm.Compatibility),
		AllowedBashPatterns:         patterns,
		RequiresElevatedPermissions: fm.RequiresElevatedPermissions,
		InputSchema:                 fm.InputSchema,
	}

	if meta.EntryPoint == "" && !meta.IsBashToolSkill() {
		ep, err := detectEntryPoint(dir)
		if err != nil {
			return nil, err
		}
		meta.EntryPoint = ep
	}

	meta.Language = detectLanguage(fm.Language, fm.Compatibility, meta.EntryPoint)

	return meta, nil
}

// extractFrontMatter extracts the leading `---\n...\n---` YAML block.
// Absence is tolerated: callers receive an empty slice and proceed with
// zero-value metadata.
func extractFrontMatter(content []byte) (yamlBlock []byte, body []byte) {
	text := string(content)
	if !strings.HasPrefix(text, "---") {
		return nil, content
	}
	rest := text[3:]
	rest = strings.TrimPrefix(rest, "\n")
	idx := strings.Index(rest, "\n---")
	if idx < 0 {
		return nil, content
	}
	return []byte(rest[:idx]), []byte(rest[idx+4:])
}

var bashToolRE = regexp.MustCompile(`Bash\(([^)]*)\)`)

// parseBashPatterns finds every `Bash(<inner>)` occurrence across one or
// more allowed-tools entries and derives a CommandPrefix from each, per
// §4.1: split inner at the first `:`; the left side (trimmed, non-empty)
// becomes the prefix.
func parseBashPatterns(raw string) []BashToolPattern {
	matches := bashToolRE.FindAllStringSubmatch(raw, -1)
	var out []BashToolPattern
	for _, m := range matches {
		inner := m[1]
		prefix := inner
		if idx := strings.Index(inner, ":"); idx >= 0 {
			prefix = inner[:idx]
		}
		prefix = strings.TrimSpace(prefix)
		if prefix == "" {
			continue
		}
		out = append(out, BashToolPattern{
			CommandPrefix: prefix,
			RawPattern:    "Bash(" + inner + ")",
		})
	}
	return out
}

// detectLanguage implements the inference order: explicit language field →
// keyword scan of compatibility → extension of entry point.
func detectLanguage(explicit, compatibility, entryPoint string) Language {
	switch strings.ToLower(strings.TrimSpace(explicit)) {
	case "python":
		return LangPython
	case "node", "javascript", "js":
		return LangNode
	case "bash", "shell", "sh":
		return LangBash
	}

	lower := strings.ToLower(compatibility)
	switch {
	case strings.Contains(lower, "python"):
		return LangPython
	case strings.Contains(lower, "node") || strings.Contains(lower, "javascript"):
		return LangNode
	case strings.Contains(lower, "bash") || strings.Contains(lower, "shell"):
		return LangBash
	}

	switch strings.ToLower(filepath.Ext(entryPoint)) {
	case ".py":
		return LangPython
	case ".js", ".ts":
		return LangNode
	case ".sh":
		return LangBash
	}

	return LangUnknown
}

var preferredEntryBasenames = []string{"main", "index", "run", "entry"}
var entryExtensions = []string{".py", ".js", ".ts", ".sh"}

// detectEntryPoint looks in scripts/ for a preferred basename with a known
// extension, else falls back to the unique non-test script.
func detectEntryPoint(dir string) (string, error) {
	scriptsDir := filepath.Join(dir, "scripts")
	entries, err := os.ReadDir(scriptsDir)
	if err != nil {
		return "", skillerr.Wrap(skillerr.MissingEntryPoint, scriptsDir, err)
	}

	var candidates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if isTestScript(name) {
			continue
		}
		candidates = append(candidates, name)
	}

	for _, base := range preferredEntryBasenames {
		for _, ext := range entryExtensions {
			want := base + ext
			for _, c := range candidates {
				if c == want {
					return filepath.Join("scripts", c), nil
				}
			}
		}
	}

	if len(candidates) == 1 {
		return filepath.Join("scripts", candidates[0]), nil
	}

	return "", skillerr.New(skillerr.MissingEntryPoint, "no explicit entry_point and scripts/ has no unique non-test script")
}

func isTestScript(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	if strings.HasPrefix(name, "test_") {
		return true
	}
	if strings.HasSuffix(name, "_test.py") {
		return true
	}
	if name == "__init__.py" {
		return true
	}
	return false
}
