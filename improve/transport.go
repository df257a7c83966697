package improve

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os/exec"
	"strings"
	"time"

	quill "github.com/quill-vim/quill"
)

// Transport issues a single POST and returns the raw response body
// together with the HTTP status code, when the transport can observe
// one (0 means unknown). Exactly one attempt per call; no retries.
type Transport interface {
	Post(ctx context.Context, endpoint string, body []byte) (respBody []byte, status int, err error)
}

// HTTPTransport issues requests with the built-in HTTP client.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates an HTTP transport with the given per-attempt
// timeout. A non-positive timeout falls back to 60 seconds.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPTransport{client: &http.Client{Timeout: timeout}}
}

// Post sends the body and returns the response bytes. Non-2xx responses
// still return the body: well-formed service errors are classified by
// the response parser, not here.
func (t *HTTPTransport) Post(ctx context.Context, endpoint string, body []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response (status %d): %w", resp.StatusCode, err)
	}
	return out, resp.StatusCode, nil
}

// CurlTransport issues requests by spawning an external curl process.
// The request body is piped to stdin; stdout and stderr accumulate in
// per-invocation buffers until the process exits.
type CurlTransport struct {
	// Binary is the curl executable; empty means "curl" from PATH.
	Binary string
}

// Post runs one curl invocation. A non-zero exit surfaces the exit code
// and the captured stderr content. The reported status is always 0:
// without -f, curl exits 0 for HTTP-level errors and the status is not
// observable here.
func (t *CurlTransport) Post(ctx context.Context, endpoint string, body []byte) ([]byte, int, error) {
	bin := t.Binary
	if bin == "" {
		bin = "curl"
	}

	cmd := exec.CommandContext(ctx, bin,
		"-s", "-S",
		"-X", "POST",
		"-H", "Content-Type: application/json",
		"--data-binary", "@-",
		endpoint,
	)
	cmd.Stdin = bytes.NewReader(body)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, 0, fmt.Errorf("%s exited with code %d: %s",
				bin, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return nil, 0, fmt.Errorf("spawn %s: %w", bin, err)
	}
	return stdout.Bytes(), 0, nil
}

// Client sends payloads to the generation API and parses the result.
type Client struct {
	endpoint  string
	transport Transport
	apiKey    func() string // read at call time, not construction time
}

// NewClient wires a client. apiKey is consulted on every call so
// credential changes in the environment take effect without restart.
func NewClient(endpoint string, transport Transport, apiKey func() string) *Client {
	return &Client{endpoint: endpoint, transport: transport, apiKey: apiKey}
}

// Generate sends one improvement request and returns the generated text.
// The credential check is a precondition: without a key no request is
// attempted.
func (c *Client) Generate(ctx context.Context, payload Payload) (string, *Fault) {
	key := c.apiKey()
	if key == "" {
		return "", &Fault{
			Code:    quill.ErrMissingCredential,
			Message: "missing credential: set QUILL_API_KEY or GEMINI_API_KEY",
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", &Fault{
			Code:    quill.ErrBadRequest,
			Message: "encode payload: " + err.Error(),
		}
	}

	reqURL := c.endpoint + "?key=" + url.QueryEscape(key)
	raw, status, err := c.transport.Post(ctx, reqURL, data)
	if err != nil {
		return "", &Fault{
			Code:    quill.ErrTransport,
			Message: "transport error: " + err.Error(),
		}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return "", &Fault{
			Code:    quill.ErrEmptyResponse,
			Message: "empty response" + statusNote(status),
		}
	}

	text, fault := ParseResponse(raw)
	if fault != nil {
		// A body the parser cannot classify is easier to diagnose with
		// the HTTP status attached, e.g. an HTML error page from a proxy.
		switch fault.Code {
		case quill.ErrMalformedResponse, quill.ErrUnexpectedShape:
			fault.Message += statusNote(status)
		}
	}
	return text, fault
}

// statusNote renders a diagnostic suffix for non-2xx HTTP statuses.
func statusNote(status int) string {
	if status == 0 || (status >= 200 && status <= 299) {
		return ""
	}
	return fmt.Sprintf(" (HTTP status %d)", status)
}
