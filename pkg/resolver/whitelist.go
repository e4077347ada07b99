package resolver

import (
	_ "embed"
	"encoding/json"
	"regexp"
	"strings"
	"sync"

	"github.com/agentskill/skilllite/pkg/skill"
)

//go:embed packages_whitelist.json
var whitelistJSON []byte

type whitelistData struct {
	Python        []string          `json:"python"`
	PythonAliases map[string]string `json:"python_aliases"`
	Node          []string          `json:"node"`
}

var (
	whitelistOnce sync.Once
	whitelist     whitelistData
)

func loadWhitelist() whitelistData {
	whitelistOnce.Do(func() {
		_ = json.Unmarshal(whitelistJSON, &whitelist)
	})
	return whitelist
}

// packagesFor returns the known-package list for a language, same whitelist
// consulted regardless of which resolution step is asking — mirrors the
// Python SDK's packages_whitelist module being the single source of truth
// shared by every language binding.
func packagesFor(lang skill.Language) []string {
	w := loadWhitelist()
	switch lang {
	case skill.LangPython:
		return w.Python
	case skill.LangNode:
		return w.Node
	default:
		return nil
	}
}

// aliasesFor returns the distribution-name → import-name aliases for a
// language (currently only Python has any), so a compatibility string that
// mentions the import name (e.g. "cv2") still matches the whitelist entry
// for its distribution name ("opencv-python").
func aliasesFor(lang skill.Language) map[string]string {
	if lang == skill.LangPython {
		return loadWhitelist().PythonAliases
	}
	return nil
}

// whitelistMatch performs a word-boundary, case-insensitive search of the
// compatibility string against known package names (and their aliases),
// returning the matched distribution names in whitelist order.
func whitelistMatch(compatibility string, lang skill.Language) []string {
	var found []string
	for _, pkg := range packagesFor(lang) {
		if containsWord(compatibility, pkg) {
			found = append(found, pkg)
		}
	}
	for alias, imp := range aliasesFor(lang) {
		if containsWord(compatibility, imp) && !contains(found, alias) {
			found = append(found, alias)
		}
	}
	return found
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsWord(haystack, word string) bool {
	pattern := `(?i)\b` + regexp.QuoteMeta(word) + `\b`
	re := regexp.MustCompile(pattern)
	return re.MatchString(haystack)
}

// IsWhitelisted reports whether pkg (stripped of any `[extras]` suffix) is a
// known package for the given language.
func IsWhitelisted(pkg string, lang skill.Language) bool {
	name := stripExtras(pkg)
	for _, known := range packagesFor(lang) {
		if strings.EqualFold(known, name) {
			return true
		}
	}
	return false
}

func stripExtras(pkg string) string {
	if idx := strings.Index(pkg, "["); idx >= 0 {
		return pkg[:idx]
	}
	return pkg
}
