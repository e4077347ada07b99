package skillerr

import (
	"errors"
	"testing"
)

func TestKindOf_WrapsStdlibErrorAsInternal(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != InternalError {
		t.Errorf("KindOf(stdlib error) = %q, want %q", got, InternalError)
	}
}

func TestKindOf_Nil(t *testing.T) {
	if got := KindOf(nil); got != "" {
		t.Errorf("KindOf(nil) = %q, want empty", got)
	}
}

func TestKindOf_TypedError(t *testing.T) {
	err := New(HardBlocked, "subprocess.run is hard-blocked")
	if got := KindOf(err); got != HardBlocked {
		t.Errorf("KindOf = %q, want %q", got, HardBlocked)
	}
}

func TestWrap_UnwrapReachesCause(t *testing.T) {
	cause := errors.New("file not found")
	err := Wrap(MissingManifest, "/skills/foo/SKILL.md", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the wrapped cause via Unwrap")
	}
	if err.Error() == "" {
		t.Error("Error() must not be empty")
	}
}

func TestAs_RoundTrip(t *testing.T) {
	var err error = New(Timeout, "exceeded 30s")
	se, ok := As(err)
	if !ok {
		t.Fatal("As should succeed for a *Error")
	}
	if se.Kind != Timeout {
		t.Errorf("Kind = %q, want %q", se.Kind, Timeout)
	}

	_, ok = As(errors.New("plain"))
	if ok {
		t.Error("As should fail for a non-*Error")
	}
}
