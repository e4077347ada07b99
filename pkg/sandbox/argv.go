package sandbox

import (
	"fmt"
	"sort"
	"strings"
)

// positionalKeys become leading positional args rather than --flags,
// per §4.5.3.
var positionalKeys = map[string]int{
	"skill_name": 0,
	"name":       1,
	"input":      2,
	"file":       3,
	"filename":   4,
}

const maxArgvInputBytes = 100 * 1024 // 100 KiB

// BuildArgv converts a JSON object into argv per §4.5.3: positional keys
// lead in a fixed order, the remainder become --kebab-cased-key value
// pairs, true booleans become bare flags, false is omitted, and lists
// become comma-joined values.
func BuildArgv(input map[string]any) []string {
	var positional []struct {
		order int
		value string
	}
	type flagEntry struct {
		key   string
		value any
	}
	var flags []flagEntry

	for k, v := range input {
		if order, ok := positionalKeys[k]; ok {
			positional = append(positional, struct {
				order int
				value string
			}{order, fmt.Sprint(v)})
			continue
		}
		flags = append(flags, flagEntry{k, v})
	}

	sort.Slice(positional, func(i, j int) bool { return positional[i].order < positional[j].order })
	sort.Slice(flags, func(i, j int) bool { return flags[i].key < flags[j].key })

	var argv []string
	for _, p := range positional {
		argv = append(argv, p.value)
	}

	for _, f := range flags {
		flagName := "--" + kebabCase(f.key)
		switch val := f.value.(type) {
		case bool:
			if val {
				argv = append(argv, flagName)
			}
			// false booleans are omitted entirely.
		case []any:
			parts := make([]string, len(val))
			for i, item := range val {
				parts[i] = fmt.Sprint(item)
			}
			argv = append(argv, flagName, strings.Join(parts, ","))
		default:
			argv = append(argv, flagName, fmt.Sprint(val))
		}
	}

	return argv
}

func kebabCase(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "_", "-")
}

// ShouldUseStdin reports whether input is large enough that argv delivery
// risks ARG_MAX, per §4.5.3: "stdin delivery for larger inputs".
func ShouldUseStdin(inputJSON []byte) bool {
	return len(inputJSON) >= maxArgvInputBytes
}
