package sandbox

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

// dockerFrame builds one multiplexed log frame as the Docker daemon would
// emit it: a 1-byte stream id, 3 padding bytes, a 4-byte big-endian length,
// then the payload.
func dockerFrame(stream byte, payload string) []byte {
	header := make([]byte, 8)
	header[0] = stream
	binary.BigEndian.PutUint32(header[4:], uint32(len(payload)))
	return append(header, []byte(payload)...)
}

func TestDemuxDockerLog_SplitsStdoutAndStderr(t *testing.T) {
	var raw bytes.Buffer
	raw.Write(dockerFrame(1, "hello stdout\n"))
	raw.Write(dockerFrame(2, "oops stderr\n"))
	raw.Write(dockerFrame(1, "more stdout\n"))

	var stdout, stderr bytes.Buffer
	_, err := demuxDockerLog(&raw, &stdout, &stderr)
	if err != io.EOF && err != nil {
		t.Fatalf("demuxDockerLog: %v", err)
	}

	if got := stdout.String(); got != "hello stdout\nmore stdout\n" {
		t.Errorf("stdout = %q", got)
	}
	if got := stderr.String(); got != "oops stderr\n" {
		t.Errorf("stderr = %q", got)
	}
}

func TestDemuxDockerLog_EmptyStreamYieldsEOF(t *testing.T) {
	var stdout, stderr bytes.Buffer
	_, err := demuxDockerLog(&bytes.Buffer{}, &stdout, &stderr)
	if err != io.EOF {
		t.Fatalf("want io.EOF on an empty stream, got %v", err)
	}
	if stdout.Len() != 0 || stderr.Len() != 0 {
		t.Error("want no output from an empty stream")
	}
}

func TestEnvSlice_FiltersBlockedPrefixesAndFormatsKeyValue(t *testing.T) {
	env := map[string]string{
		"PATH":            "/usr/bin",
		"AWS_SECRET_KEY":  "shh",
		"SKILLBOX_TOKEN":  "shh2",
		"MY_SKILL_OPTION": "42",
	}
	got := envSlice(env)

	seen := map[string]bool{}
	for _, kv := range got {
		seen[kv] = true
	}
	if !seen["PATH=/usr/bin"] {
		t.Errorf("want PATH passed through, got %v", got)
	}
	if !seen["MY_SKILL_OPTION=42"] {
		t.Errorf("want MY_SKILL_OPTION passed through, got %v", got)
	}
	for _, kv := range got {
		if len(kv) >= 4 && kv[:4] == "AWS_" {
			t.Errorf("want blocked-prefix env vars filtered out, found %q", kv)
		}
		if len(kv) >= 9 && kv[:9] == "SKILLBOX_" {
			t.Errorf("want blocked-prefix env vars filtered out, found %q", kv)
		}
	}
	if len(got) != 2 {
		t.Errorf("envSlice returned %d entries, want 2 after filtering: %v", len(got), got)
	}
}
