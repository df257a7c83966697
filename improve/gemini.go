package improve

import (
	"encoding/json"
	"fmt"

	quill "github.com/quill-vim/quill"
)

// Fault is a pipeline error carrying the IPC error code. Detail holds
// diagnostic context such as the raw response body.
type Fault struct {
	Code    string
	Message string
	Detail  string
}

func (f *Fault) Error() string {
	return f.Message
}

// IPCError converts the fault to the wire error type.
func (f *Fault) IPCError() *quill.Error {
	return &quill.Error{Code: f.Code, Message: f.Message, Detail: f.Detail}
}

// generateResponse mirrors the generateContent response body. Every
// field is optional so navigation stays defensive.
type generateResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponse decodes a generateContent response body and extracts the
// generated text from the first candidate. It is total: any input yields
// either text or a Fault, never a panic.
func ParseResponse(raw []byte) (string, *Fault) {
	var resp generateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", &Fault{
			Code:    quill.ErrMalformedResponse,
			Message: fmt.Sprintf("malformed JSON: %v", err),
			Detail:  string(raw),
		}
	}

	if resp.Error != nil && resp.Error.Message != "" {
		return "", &Fault{
			Code:    quill.ErrAPI,
			Message: "API error: " + resp.Error.Message,
		}
	}

	// candidates[0].content.parts[0].text; any missing link falls through
	if len(resp.Candidates) > 0 {
		c := resp.Candidates[0]
		if c.Content != nil && len(c.Content.Parts) > 0 && c.Content.Parts[0].Text != nil {
			return *c.Content.Parts[0].Text, nil
		}
	}

	return "", &Fault{
		Code:    quill.ErrUnexpectedShape,
		Message: "unexpected response shape",
		Detail:  string(raw),
	}
}
