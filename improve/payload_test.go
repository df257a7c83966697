package improve

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestBuildPayloadRoundTrip(t *testing.T) {
	p := BuildPayload("Improve this.", "some draft text")

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}

	var decoded Payload
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}

	if len(decoded.Contents) != 1 {
		t.Fatalf("expected exactly one content entry, got %d", len(decoded.Contents))
	}
	if len(decoded.Contents[0].Parts) != 1 {
		t.Fatalf("expected exactly one part, got %d", len(decoded.Contents[0].Parts))
	}
	want := "Improve this.\n\nsome draft text"
	if got := decoded.Contents[0].Parts[0].Text; got != want {
		t.Errorf("expected part text %q, got %q", want, got)
	}
}

func TestBuildPayloadWireShape(t *testing.T) {
	data, err := json.Marshal(BuildPayload("a", "b"))
	if err != nil {
		t.Fatal(err)
	}
	want := `{"contents":[{"parts":[{"text":"a\n\nb"}]}]}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
}

func TestTruncateUnderLimit(t *testing.T) {
	got, cut := Truncate("short", 30000)
	if cut || got != "short" {
		t.Errorf("expected no truncation, got %q (cut=%v)", got, cut)
	}
}

func TestTruncateOverLimitExactLength(t *testing.T) {
	input := strings.Repeat("x", 30010)
	got, cut := Truncate(input, 30000)
	if !cut {
		t.Error("expected truncation to be reported")
	}
	if len(got) != 30000 {
		t.Errorf("expected effective length exactly 30000, got %d", len(got))
	}
}

func TestTruncatePreservesRuneBoundary(t *testing.T) {
	// 10 two-byte runes; an odd limit lands mid-rune and must back off.
	input := strings.Repeat("é", 10)
	got, cut := Truncate(input, 5)
	if !cut {
		t.Error("expected truncation to be reported")
	}
	if got != "éé" {
		t.Errorf("expected cut at previous rune boundary, got %q", got)
	}
	if len(got) > 5 {
		t.Errorf("expected at most 5 bytes, got %d", len(got))
	}
	if !utf8.ValidString(got) {
		t.Errorf("expected valid UTF-8 after truncation, got %q", got)
	}
}

func TestTruncateOnRuneBoundaryKeepsLimit(t *testing.T) {
	input := strings.Repeat("é", 10)
	got, cut := Truncate(input, 6)
	if !cut || got != "ééé" {
		t.Errorf("expected full 6 bytes when limit is on a boundary, got %q (cut=%v)", got, cut)
	}
}

func TestTruncateDisabled(t *testing.T) {
	input := strings.Repeat("x", 100)
	got, cut := Truncate(input, 0)
	if cut || len(got) != 100 {
		t.Errorf("expected truncation disabled for limit 0, got len %d (cut=%v)", len(got), cut)
	}
}
