// Package sink delivers improvement results back to the editing surface:
// in-place range replacement or a fresh scratch view.
package sink

import (
	"fmt"
	"strings"

	quill "github.com/quill-vim/quill"
)

// lineSeparator is used to flatten document lines for transmission and to
// re-split result text for display. Both directions must use the same
// separator so a replaced range splices back cleanly.
const lineSeparator = "\n"

// Flatten joins document lines into one request body string.
func Flatten(lines []string) string {
	return strings.Join(lines, lineSeparator)
}

// Split breaks result text into display lines.
func Split(text string) []string {
	return strings.Split(text, lineSeparator)
}

// Extract returns the text inside the half-open range [r.Start, r.End).
func Extract(doc []string, r quill.Range) (string, error) {
	if err := checkRange(doc, r); err != nil {
		return "", err
	}
	if r.Start.Line == r.End.Line {
		return doc[r.Start.Line][r.Start.Col:r.End.Col], nil
	}
	var sb strings.Builder
	sb.WriteString(doc[r.Start.Line][r.Start.Col:])
	for i := r.Start.Line + 1; i < r.End.Line; i++ {
		sb.WriteString(lineSeparator)
		sb.WriteString(doc[i])
	}
	sb.WriteString(lineSeparator)
	sb.WriteString(doc[r.End.Line][:r.End.Col])
	return sb.String(), nil
}

// Replace splices text into the range [r.Start, r.End) of doc and returns
// the updated document lines. Bytes outside the range are untouched.
func Replace(doc []string, r quill.Range, text string) ([]string, error) {
	if err := checkRange(doc, r); err != nil {
		return nil, err
	}
	prefix := doc[r.Start.Line][:r.Start.Col]
	suffix := doc[r.End.Line][r.End.Col:]
	mid := Split(prefix + text + suffix)

	out := make([]string, 0, r.Start.Line+len(mid)+len(doc)-r.End.Line-1)
	out = append(out, doc[:r.Start.Line]...)
	out = append(out, mid...)
	out = append(out, doc[r.End.Line+1:]...)
	return out, nil
}

// NewView wraps result text in a scratch view: read-only, no backing
// file, never prompted for saving.
func NewView(name, text string) *quill.View {
	if name == "" {
		name = "quill-result"
	}
	return &quill.View{
		Name:      name,
		Lines:     Split(text),
		ReadOnly:  true,
		Ephemeral: true,
	}
}

func checkRange(doc []string, r quill.Range) error {
	if r.Start.Line < 0 || r.End.Line >= len(doc) || r.Start.Line > r.End.Line {
		return fmt.Errorf("range lines [%d, %d] outside document of %d lines", r.Start.Line, r.End.Line, len(doc))
	}
	if r.Start.Col < 0 || r.Start.Col > len(doc[r.Start.Line]) {
		return fmt.Errorf("start col %d outside line %d of length %d", r.Start.Col, r.Start.Line, len(doc[r.Start.Line]))
	}
	if r.End.Col < 0 || r.End.Col > len(doc[r.End.Line]) {
		return fmt.Errorf("end col %d outside line %d of length %d", r.End.Col, r.End.Line, len(doc[r.End.Line]))
	}
	if r.Start.Line == r.End.Line && r.Start.Col > r.End.Col {
		return fmt.Errorf("range start col %d after end col %d", r.Start.Col, r.End.Col)
	}
	return nil
}
