package improve

import "unicode/utf8"

// Payload is the request body for the generateContent API:
// {"contents":[{"parts":[{"text":"..."}]}]}
type Payload struct {
	Contents []Content `json:"contents"`
}

// Content is one content entry of a payload.
type Content struct {
	Parts []Part `json:"parts"`
}

// Part is one text part of a content entry.
type Part struct {
	Text string `json:"text"`
}

// promptSeparator joins the instruction and the body text inside a part.
const promptSeparator = "\n\n"

// BuildPayload combines instruction and body text into the API's nested
// contents/parts shape. bodyText must be non-empty; callers reject empty
// input before building.
func BuildPayload(instruction, bodyText string) Payload {
	return Payload{
		Contents: []Content{
			{Parts: []Part{{Text: instruction + promptSeparator + bodyText}}},
		},
	}
}

// Truncate caps text at limit bytes, reporting whether truncation
// happened. The cut never splits a UTF-8 rune: when the limit lands
// inside one, the cut backs off to the previous rune boundary, so the
// result is valid UTF-8 and at most limit bytes. A non-positive limit
// disables truncation.
func Truncate(text string, limit int) (string, bool) {
	if limit <= 0 || len(text) <= limit {
		return text, false
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut], true
}
