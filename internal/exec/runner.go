package exec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrSandboxUnavailable reports that the external execution sandbox could
// not serve the request. Callers surface it to the user as an opaque
// execution failure; it never affects room state.
var ErrSandboxUnavailable = errors.New("sandbox unavailable")

// Runner is a client for the external code-execution sandbox. The sandbox
// is strictly call-and-response: one request, one {output} or {error}.
type Runner struct {
	client       *http.Client
	baseURL      string
	clientID     string
	clientSecret string
}

func NewRunner(baseURL, clientID, clientSecret string) *Runner {
	return &Runner{
		client:       &http.Client{Timeout: 15 * time.Second},
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

type sandboxRequest struct {
	ClientID     string `json:"clientId,omitempty"`
	ClientSecret string `json:"clientSecret,omitempty"`
	Script       string `json:"script"`
	Language     string `json:"language"`
	VersionIndex string `json:"versionIndex"`
}

type sandboxResponse struct {
	Output string `json:"output"`
	Error  string `json:"error"`
}

// Execute posts the script to the sandbox and returns its output.
func (r *Runner) Execute(ctx context.Context, script, language, versionIndex string) (string, error) {
	body, err := json.Marshal(sandboxRequest{
		ClientID:     r.clientID,
		ClientSecret: r.clientSecret,
		Script:       script,
		Language:     language,
		VersionIndex: versionIndex,
	})
	if err != nil {
		return "", fmt.Errorf("encode sandbox request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build sandbox request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSandboxUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return "", fmt.Errorf("%w: status %d", ErrSandboxUnavailable, resp.StatusCode)
	}

	var out sandboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode sandbox response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error != "" {
			return "", errors.New(out.Error)
		}
		return "", fmt.Errorf("sandbox returned status %d", resp.StatusCode)
	}
	if out.Error != "" {
		return "", errors.New(out.Error)
	}
	return out.Output, nil
}
