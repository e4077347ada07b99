package daemon

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestReadRequests_ParsesOneRequestPerLine(t *testing.T) {
	input := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"list_tools","params":{}}` + "\n" +
		`{"jsonrpc":"2.0","id":2,"method":"run","params":{"skill_dir":"x"}}` + "\n")

	out := make(chan Request, 8)
	malformed := make(chan Response, 8)
	readRequests(input, out, malformed)

	var got []Request
	for req := range out {
		got = append(got, req)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 requests, got %d", len(got))
	}
	if got[0].ID != 1 || got[0].Method != "list_tools" {
		t.Errorf("first request = %+v", got[0])
	}
	if got[1].ID != 2 || got[1].Method != "run" {
		t.Errorf("second request = %+v", got[1])
	}
}

func TestReadRequests_SkipsBlankLinesAndReportsMalformedJSON(t *testing.T) {
	input := strings.NewReader("\n" + `not valid json` + "\n" + `{"jsonrpc":"2.0","id":1,"method":"list_tools"}` + "\n")

	out := make(chan Request, 8)
	malformed := make(chan Response, 8)
	readRequests(input, out, malformed)

	var reqs []Request
	for req := range out {
		reqs = append(reqs, req)
	}
	if len(reqs) != 1 {
		t.Fatalf("want 1 valid request, got %d", len(reqs))
	}

	select {
	case resp := <-malformed:
		if resp.Error == nil || resp.Error.Code != -32700 {
			t.Errorf("want a parse-error response, got %+v", resp)
		}
	default:
		t.Fatal("want a malformed-JSON response on the malformed channel")
	}
}

func TestWriteResponses_OneJSONObjectPerLine(t *testing.T) {
	in := make(chan Response, 2)
	in <- successResponse(1, map[string]any{"ok": true})
	in <- errorResponse(2, -32000, "boom")
	close(in)

	var buf bytes.Buffer
	if err := writeResponses(&buf, in); err != nil {
		t.Fatalf("writeResponses: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 output lines, got %d: %q", len(lines), buf.String())
	}
	var first Response
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 1 not valid JSON: %v", err)
	}
	if first.ID != 1 {
		t.Errorf("first.ID = %d, want 1", first.ID)
	}
	var second Response
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("line 2 not valid JSON: %v", err)
	}
	if second.Error == nil || second.Error.Code != -32000 {
		t.Errorf("second = %+v, want an error response with code -32000", second)
	}
}
