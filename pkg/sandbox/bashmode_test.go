package sandbox

import (
	"testing"

	"github.com/agentskill/skilllite/pkg/skill"
	"github.com/agentskill/skilllite/pkg/skillerr"
)

func TestValidateBashCommand(t *testing.T) {
	patterns := []skill.BashToolPattern{
		{CommandPrefix: "git status"},
		{CommandPrefix: "git log"},
	}

	cases := []struct {
		name    string
		command string
		wantErr bool
	}{
		{"allowed exact prefix", "git status --short", false},
		{"allowed other prefix", "git log -n 5", false},
		{"disallowed command", "git push origin main", true},
		{"command shorter than a multi-word prefix does not match", "git", true},
		{"empty command", "", true},
		{"unrelated command", "rm -rf /", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateBashCommand(tc.command, patterns)
			if tc.wantErr && err == nil {
				t.Fatalf("ValidateBashCommand(%q) = nil, want error", tc.command)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("ValidateBashCommand(%q) = %v, want nil", tc.command, err)
			}
			if tc.wantErr && err != nil && skillerr.KindOf(err) != skillerr.DisallowedBashCommand {
				t.Fatalf("want DisallowedBashCommand kind, got %v", skillerr.KindOf(err))
			}
		})
	}
}
