package improve

import (
	"strings"
	"testing"

	quill "github.com/quill-vim/quill"
)

func TestParseResponseSuccess(t *testing.T) {
	raw := `{"candidates":[{"content":{"parts":[{"text":"Hello"}]}}]}`
	text, fault := ParseResponse([]byte(raw))
	if fault != nil {
		t.Fatalf("unexpected fault: %v", fault)
	}
	if text != "Hello" {
		t.Errorf("expected %q, got %q", "Hello", text)
	}
}

func TestParseResponseEmptyText(t *testing.T) {
	// A present-but-empty text field is still a successful parse.
	raw := `{"candidates":[{"content":{"parts":[{"text":""}]}}]}`
	text, fault := ParseResponse([]byte(raw))
	if fault != nil {
		t.Fatalf("unexpected fault: %v", fault)
	}
	if text != "" {
		t.Errorf("expected empty text, got %q", text)
	}
}

func TestParseResponseAPIError(t *testing.T) {
	raw := `{"error":{"message":"quota exceeded"}}`
	_, fault := ParseResponse([]byte(raw))
	if fault == nil {
		t.Fatal("expected fault")
	}
	if fault.Code != quill.ErrAPI {
		t.Errorf("expected code %s, got %s", quill.ErrAPI, fault.Code)
	}
	if !strings.Contains(fault.Message, "quota exceeded") {
		t.Errorf("expected message to contain service error, got %q", fault.Message)
	}
}

func TestParseResponseMalformedJSON(t *testing.T) {
	raw := "not json"
	_, fault := ParseResponse([]byte(raw))
	if fault == nil {
		t.Fatal("expected fault")
	}
	if fault.Code != quill.ErrMalformedResponse {
		t.Errorf("expected code %s, got %s", quill.ErrMalformedResponse, fault.Code)
	}
	if !strings.Contains(fault.Message, "malformed JSON") {
		t.Errorf("expected decode-error indicator, got %q", fault.Message)
	}
	if fault.Detail != raw {
		t.Errorf("expected raw body preserved in detail, got %q", fault.Detail)
	}
}

func TestParseResponseIsTotal(t *testing.T) {
	// Any input must yield success or a fault, never a panic.
	cases := []struct {
		name string
		raw  string
		code string
	}{
		{"empty object", `{}`, quill.ErrUnexpectedShape},
		{"null", `null`, quill.ErrUnexpectedShape},
		{"json string", `"just a string"`, quill.ErrMalformedResponse},
		{"json array", `[1,2,3]`, quill.ErrMalformedResponse},
		{"empty candidates", `{"candidates":[]}`, quill.ErrUnexpectedShape},
		{"candidate without content", `{"candidates":[{}]}`, quill.ErrUnexpectedShape},
		{"content without parts", `{"candidates":[{"content":{}}]}`, quill.ErrUnexpectedShape},
		{"empty parts", `{"candidates":[{"content":{"parts":[]}}]}`, quill.ErrUnexpectedShape},
		{"part without text", `{"candidates":[{"content":{"parts":[{}]}}]}`, quill.ErrUnexpectedShape},
		{"error without message", `{"error":{}}`, quill.ErrUnexpectedShape},
		{"truncated json", `{"candidates":[{"content"`, quill.ErrMalformedResponse},
		{"empty input", ``, quill.ErrMalformedResponse},
	}

	for _, tc := range cases {
		_, fault := ParseResponse([]byte(tc.raw))
		if fault == nil {
			t.Errorf("%s: expected fault", tc.name)
			continue
		}
		if fault.Code != tc.code {
			t.Errorf("%s: expected code %s, got %s", tc.name, tc.code, fault.Code)
		}
	}
}

func TestParseResponseUnexpectedShapePreservesBody(t *testing.T) {
	raw := `{"candidates":[{"finish_reason":"SAFETY"}]}`
	_, fault := ParseResponse([]byte(raw))
	if fault == nil {
		t.Fatal("expected fault")
	}
	if fault.Code != quill.ErrUnexpectedShape {
		t.Errorf("expected code %s, got %s", quill.ErrUnexpectedShape, fault.Code)
	}
	if fault.Detail != raw {
		t.Errorf("expected raw body preserved in detail, got %q", fault.Detail)
	}
}

func TestParseResponseFirstCandidateWins(t *testing.T) {
	raw := `{"candidates":[
		{"content":{"parts":[{"text":"first"}]}},
		{"content":{"parts":[{"text":"second"}]}}
	]}`
	text, fault := ParseResponse([]byte(raw))
	if fault != nil {
		t.Fatalf("unexpected fault: %v", fault)
	}
	if text != "first" {
		t.Errorf("expected first candidate, got %q", text)
	}
}
