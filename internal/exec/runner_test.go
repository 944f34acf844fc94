package exec

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExecuteSuccess(t *testing.T) {
	var got sandboxRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("failed decoding request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(sandboxResponse{Output: "hello\n"})
	}))
	defer server.Close()

	runner := &Runner{client: server.Client(), baseURL: server.URL, clientID: "id", clientSecret: "secret"}
	output, err := runner.Execute(context.Background(), "print('hello')", "python3", "0")
	if err != nil {
		t.Fatalf("execute error: %v", err)
	}
	if output != "hello\n" {
		t.Fatalf("unexpected output %q", output)
	}
	if got.Script != "print('hello')" || got.Language != "python3" || got.VersionIndex != "0" {
		t.Fatalf("unexpected request sent: %#v", got)
	}
	if got.ClientID != "id" || got.ClientSecret != "secret" {
		t.Fatalf("expected credentials forwarded: %#v", got)
	}
}

func TestExecuteSandboxError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sandboxResponse{Error: "compilation failed"})
	}))
	defer server.Close()

	runner := &Runner{client: server.Client(), baseURL: server.URL}
	_, err := runner.Execute(context.Background(), "broken", "java", "0")
	if err == nil || err.Error() != "compilation failed" {
		t.Fatalf("expected sandbox error surfaced, got %v", err)
	}
}

func TestExecuteSandboxUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	runner := &Runner{client: server.Client(), baseURL: server.URL}
	_, err := runner.Execute(context.Background(), "code", "python3", "0")
	if !errors.Is(err, ErrSandboxUnavailable) {
		t.Fatalf("expected ErrSandboxUnavailable, got %v", err)
	}
}

func TestExecuteConnectionRefused(t *testing.T) {
	runner := NewRunner("http://127.0.0.1:1", "", "")
	_, err := runner.Execute(context.Background(), "code", "python3", "0")
	if !errors.Is(err, ErrSandboxUnavailable) {
		t.Fatalf("expected ErrSandboxUnavailable, got %v", err)
	}
}

func TestExecuteBadStatusWithBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(sandboxResponse{Error: "invalid credentials"})
	}))
	defer server.Close()

	runner := &Runner{client: server.Client(), baseURL: server.URL}
	_, err := runner.Execute(context.Background(), "code", "python3", "0")
	if err == nil || err.Error() != "invalid credentials" {
		t.Fatalf("expected credential error, got %v", err)
	}
}

func TestExecuteContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sandboxResponse{Output: "late"})
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &Runner{client: server.Client(), baseURL: server.URL}
	if _, err := runner.Execute(ctx, "code", "python3", "0"); err == nil {
		t.Fatalf("expected context cancellation error")
	}
}
