package sandbox

import (
	"strings"

	"github.com/agentskill/skilllite/pkg/skill"
	"github.com/agentskill/skilllite/pkg/skillerr"
)

// ValidateBashCommand implements §4.5.4: tokenise the command and require
// its leading tokens to equal, token for token, the tokens of one of the
// skill's declared command prefixes (for a one-word prefix such as "git",
// that is an exact match on the first token). No shell expansion or
// pipeline inspection is performed beyond the prefix tokens — a deliberate
// trust choice (§9 Open Questions): once the prefix matches, the command is
// wholly trusted to parse its own arguments.
func ValidateBashCommand(command string, patterns []skill.BashToolPattern) error {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return skillerr.New(skillerr.DisallowedBashCommand, "empty command")
	}
	for _, p := range patterns {
		prefix := strings.Fields(p.CommandPrefix)
		if len(prefix) == 0 || len(prefix) > len(fields) {
			continue
		}
		matched := true
		for i, tok := range prefix {
			if fields[i] != tok {
				matched = false
				break
			}
		}
		if matched {
			return nil
		}
	}
	return skillerr.New(skillerr.DisallowedBashCommand, fields[0])
}
