package dispatch

import (
	"context"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/agentskill/skilllite/pkg/skill"
)

// ToolInfo is one entry of list_tools's enumeration: a skill directory and
// its bare name, no metadata parse cost beyond what list_tools_with_meta
// needs.
type ToolInfo struct {
	Name string `json:"name"`
	Dir  string `json:"dir"`
}

// ToolMeta extends ToolInfo with the parsed SKILL.md fields callers need
// to decide how to invoke a skill, plus input-schema validity.
type ToolMeta struct {
	ToolInfo
	Description       string         `json:"description"`
	Language          string         `json:"language"`
	EntryPoint        string         `json:"entry_point,omitempty"`
	IsBashTool        bool           `json:"is_bash_tool"`
	InputSchema       map[string]any `json:"input_schema,omitempty"`
	InputSchemaError  string         `json:"input_schema_error,omitempty"`
}

// ListTools enumerates immediate subdirectories of skillsDir that carry a
// SKILL.md, per §4.6 `list_tools`.
func ListTools(skillsDir string) ([]ToolInfo, error) {
	entries, err := os.ReadDir(skillsDir)
	if err != nil {
		return nil, err
	}
	var out []ToolInfo
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(skillsDir, e.Name())
		if _, err := os.Stat(filepath.Join(dir, "SKILL.md")); err != nil {
			continue
		}
		out = append(out, ToolInfo{Name: e.Name(), Dir: dir})
	}
	return out, nil
}

// ListToolsWithMeta is `list_tools_with_meta`: it loads each skill's
// metadata and, when SKILL.md declares an input_schema, compiles it with
// jsonschema/v6 to confirm the declaration is itself valid JSON Schema
// before advertising the skill to callers — a malformed declared schema
// is surfaced as InputSchemaError rather than silently dropped.
func ListToolsWithMeta(ctx context.Context, skillsDir string) ([]ToolMeta, error) {
	infos, err := ListTools(skillsDir)
	if err != nil {
		return nil, err
	}

	out := make([]ToolMeta, 0, len(infos))
	for _, info := range infos {
		meta, err := skill.Load(info.Dir)
		if err != nil {
			out = append(out, ToolMeta{ToolInfo: info, InputSchemaError: err.Error()})
			continue
		}
		tm := ToolMeta{
			ToolInfo:    info,
			Description: meta.Description,
			Language:    string(meta.Language),
			EntryPoint:  meta.EntryPoint,
			IsBashTool:  meta.IsBashToolSkill(),
			InputSchema: meta.InputSchema,
		}
		if meta.InputSchema != nil {
			if err := validateSchema(meta.InputSchema); err != nil {
				tm.InputSchemaError = err.Error()
			}
		}
		out = append(out, tm)
	}
	return out, nil
}

// validateSchema compiles a skill-declared input_schema to confirm it is
// well-formed JSON Schema. It never validates an actual input value, and
// run/exec requests do not validate their input against the schema either.
func validateSchema(schema map[string]any) error {
	compiler := jsonschema.NewCompiler()
	const resourceName = "input_schema.json"
	if err := compiler.AddResource(resourceName, schema); err != nil {
		return err
	}
	_, err := compiler.Compile(resourceName)
	return err
}
