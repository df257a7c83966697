// Package quill defines the request/response types for quill IPC.
// Messages are JSON-encoded and sent over a Unix domain socket, one per line.
// The editor plugin is the client; quilld is the server.
package quill

// Request actions understood by the daemon.
const (
	// ActionImprove sends document text (or a selection of it) to the
	// generation API and returns the rewritten text.
	ActionImprove = "improve"
	// ActionSetDefaultPrompt replaces the process-wide default prompt.
	ActionSetDefaultPrompt = "set_default_prompt"
	// ActionSetPrompt sets the per-document prompt override.
	ActionSetPrompt = "set_prompt"
	// ActionGetPrompt returns the prompt that would govern a request
	// for the given document.
	ActionGetPrompt = "get_prompt"
	// ActionPresets lists the named prompt presets loaded from disk.
	ActionPresets = "presets"
)

// Request is sent from the editor plugin to the daemon.
type Request struct {
	// RequestID is a per-session incrementing identifier assigned by the
	// plugin. The daemon echoes it back in the response for ordering.
	RequestID int `json:"request_id"`
	// Action selects the operation; see the Action* constants.
	Action string `json:"action"`
	// DocID identifies the editor document (buffer) this request concerns.
	DocID string `json:"doc_id,omitempty"`
	// Prompt carries instruction text for set_default_prompt / set_prompt.
	Prompt string `json:"prompt,omitempty"`
	// Preset names a prompt preset to use instead of a literal Prompt.
	Preset string `json:"preset,omitempty"`
	// Lines is the full document content, one entry per display line.
	Lines []string `json:"lines,omitempty"`
	// Range limits an improve action to a selection. nil means the
	// whole document.
	Range *Range `json:"range,omitempty"`
	// NewView requests the result in a scratch view instead of an
	// in-place replacement.
	NewView bool `json:"new_view,omitempty"`
}

// Position is a location inside a document: zero-based line index and
// byte offset within that line.
type Position struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// Range is a half-open [Start, End) span of a document.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// View describes a scratch display surface for the new-view result mode.
type View struct {
	// Name is the display title for the view.
	Name string `json:"name"`
	// Lines is the view content.
	Lines []string `json:"lines"`
	// ReadOnly marks the view as non-editable.
	ReadOnly bool `json:"read_only"`
	// Ephemeral marks the view as non-persistent: no backing file,
	// no save prompts, no swap file.
	Ephemeral bool `json:"ephemeral"`
}

// Response is sent from the daemon back to the editor plugin.
type Response struct {
	// RequestID is echoed from the request for ordering on the client side.
	RequestID int `json:"request_id"`
	// Lines is the updated full document content for in-place improve
	// results, or absent for other actions.
	Lines []string `json:"lines,omitempty"`
	// View is set for new-view improve results.
	View *View `json:"view,omitempty"`
	// Prompt is the active prompt text (for get_prompt).
	Prompt string `json:"prompt,omitempty"`
	// Presets maps preset names to instruction text (for presets).
	Presets map[string]string `json:"presets,omitempty"`
	// Warnings contains non-fatal notices, e.g. input truncation.
	Warnings []string `json:"warnings,omitempty"`
	// Error is set when the daemon cannot fulfill the request.
	Error *Error `json:"error,omitempty"`
}

// Error codes returned by the daemon.
const (
	// ErrBadRequest: the IPC request itself is malformed or incomplete.
	ErrBadRequest = "bad_request"
	// ErrMissingCredential: no API key configured; no request was sent.
	ErrMissingCredential = "missing_credential"
	// ErrEmptyInput: the document or selection contains no text.
	ErrEmptyInput = "empty_input"
	// ErrTransport: connection failure or non-zero transport exit.
	ErrTransport = "transport_error"
	// ErrEmptyResponse: the transport succeeded but returned no body.
	ErrEmptyResponse = "empty_response"
	// ErrMalformedResponse: the response body is not valid JSON.
	ErrMalformedResponse = "malformed_response"
	// ErrAPI: the service returned a well-formed error payload.
	ErrAPI = "api_error"
	// ErrUnexpectedShape: valid JSON matching neither the success nor
	// the error shape.
	ErrUnexpectedShape = "unexpected_shape"
)

// Error describes a daemon-side error returned to the editor plugin.
type Error struct {
	// Code is a machine-readable error identifier; see the Err* constants.
	Code string `json:"code"`
	// Message is a human-readable error description.
	Message string `json:"message"`
	// Detail carries diagnostic context, e.g. the raw response body for
	// malformed_response and unexpected_shape.
	Detail string `json:"detail,omitempty"`
}
