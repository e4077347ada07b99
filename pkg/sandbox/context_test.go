package sandbox

import "testing"

func TestDefaultContext_Baseline(t *testing.T) {
	c := DefaultContext()
	if c.SandboxLevel != Level3 {
		t.Errorf("SandboxLevel = %q, want %q", c.SandboxLevel, Level3)
	}
	if c.AllowNetwork {
		t.Error("AllowNetwork must default to false")
	}
	if c.TimeoutSecs != defaultTimeoutSecs {
		t.Errorf("TimeoutSecs = %d, want %d", c.TimeoutSecs, defaultTimeoutSecs)
	}
}

func TestWithUserConfirmation_DowngradesToLevel2(t *testing.T) {
	c := DefaultContext().WithUserConfirmation("scan-123")
	if c.SandboxLevel != Level2 {
		t.Errorf("SandboxLevel = %q, want %q", c.SandboxLevel, Level2)
	}
	if !c.Confirmed {
		t.Error("want Confirmed = true")
	}
	if c.ScanID != "scan-123" {
		t.Errorf("ScanID = %q, want scan-123", c.ScanID)
	}
}

func TestWithUserConfirmation_DoesNotMutateReceiver(t *testing.T) {
	base := DefaultContext()
	_ = base.WithUserConfirmation("scan-123")
	if base.SandboxLevel != Level3 || base.Confirmed {
		t.Fatal("ExecutionContext must be immutable: the original value was mutated")
	}
}

func TestWithElevatedPermissions_SetsLevel1(t *testing.T) {
	c := DefaultContext().WithElevatedPermissions()
	if c.SandboxLevel != Level1 {
		t.Errorf("SandboxLevel = %q, want %q", c.SandboxLevel, Level1)
	}
	if !c.RequiresElevated {
		t.Error("want RequiresElevated = true")
	}
}

func TestEnvBool_ParsesVocabulary(t *testing.T) {
	cases := map[string]bool{
		"true": true, "1": true, "yes": true, "on": true,
		"false": false, "0": false, "no": false, "off": false,
	}
	for in, want := range cases {
		t.Setenv("TEST_ENV_BOOL", in)
		if got := envBool("TEST_ENV_BOOL", !want); got != want {
			t.Errorf("envBool(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestEnvBool_FallsBackOnGarbage(t *testing.T) {
	t.Setenv("TEST_ENV_BOOL_GARBAGE", "maybe")
	if got := envBool("TEST_ENV_BOOL_GARBAGE", true); got != true {
		t.Errorf("envBool(garbage) = %v, want fallback true", got)
	}
}

func TestEnvInt_FallsBackOnUnset(t *testing.T) {
	if got := envInt("TEST_ENV_INT_UNSET_VAR", 42); got != 42 {
		t.Errorf("envInt(unset) = %d, want 42", got)
	}
}
